package model

import "runtime"

// SourceKind discriminates the two source variants.
type SourceKind string

const (
	// SourceKindGit is a git repository tested at a list of revisions.
	SourceKindGit SourceKind = "git"
	// SourceKindRegistry is a mooncakes.io package tested at a list of versions.
	SourceKindRegistry SourceKind = "registry"
)

// Source is one package or repository entry to be tested. The variant set is
// closed: every consumer switches exhaustively on Kind.
type Source struct {
	Kind SourceKind `json:"kind"`
	// Package name on the registry (registry variant only)
	Name string `json:"name,omitempty"`
	// Clone URL (git variant only)
	URL string `json:"url,omitempty"`
	// Versions (registry) or revisions (git) to test, in declaration order
	Versions []string `json:"versions"`
	// Operating systems this source is allowed to run on
	RunningOS []OS `json:"running_os"`
	// Backends this source is allowed to target
	RunningBackends []Backend `json:"running_backend"`
	// Position in the source list; the join key into the result lists.
	// Assigned once at list construction and never reused or reordered.
	Index int `json:"index"`
}

// DisplayName returns the name used in progress output: the package name for
// registry sources, the clone URL for git sources.
func (s Source) DisplayName() string {
	switch s.Kind {
	case SourceKindRegistry:
		return s.Name
	default:
		return s.URL
	}
}

// Backend is a moon compilation backend. The flag string doubles as the
// `--target` CLI argument and the serialization tag.
type Backend string

const (
	BackendWasm   Backend = "wasm"
	BackendWasmGC Backend = "wasm-gc"
	BackendJS     Backend = "js"
	BackendNative Backend = "native"
)

// Flag returns the canonical lowercase flag string.
func (b Backend) Flag() string { return string(b) }

// OS is an operating system a source can be scheduled on.
type OS string

const (
	OSLinux   OS = "linux"
	OSMacOS   OS = "macos"
	OSWindows OS = "windows"
)

// Flag returns the canonical lowercase flag string.
func (o OS) Flag() string { return string(o) }

// PartitionName returns the directory name used to partition dashboard
// snapshots by host. Kept distinct from Flag: macOS snapshots live in "mac".
func (o OS) PartitionName() string {
	if o == OSMacOS {
		return "mac"
	}
	return string(o)
}

// HostOS maps runtime.GOOS onto the dashboard OS enum. The matrix only runs
// cells whose OS entry equals the host.
func HostOS() OS {
	switch runtime.GOOS {
	case "darwin":
		return OSMacOS
	case "windows":
		return OSWindows
	default:
		return OSLinux
	}
}

// DefaultRunningOS is the OS allow-set applied when a declaration omits one.
func DefaultRunningOS() []OS {
	return []OS{OSLinux, OSMacOS, OSWindows}
}

// DefaultRunningBackends is the backend allow-set applied when a declaration
// omits one.
func DefaultRunningBackends() []Backend {
	return []Backend{BackendWasmGC, BackendWasm, BackendJS, BackendNative}
}

// RepoDecl is one git repository declaration.
type RepoDecl struct {
	URL             string
	Branch          string
	RunningOS       []OS
	RunningBackends []Backend
}

// PackageDecl is one registry package declaration.
type PackageDecl struct {
	Name            string
	Version         string
	RunningOS       []OS
	RunningBackends []Backend
}

// BuildSources assembles the ordered source list: an optional ad-hoc
// repository URL first, then declared repositories, then declared packages.
// Indices are assigned sequentially from zero across the combined list and
// missing OS/backend allow-sets get the defaults.
func BuildSources(adhocRepoURL string, repos []RepoDecl, packages []PackageDecl) []Source {
	var sources []Source

	if adhocRepoURL != "" {
		sources = append(sources, Source{
			Kind:            SourceKindGit,
			URL:             adhocRepoURL,
			Versions:        []string{},
			RunningOS:       DefaultRunningOS(),
			RunningBackends: DefaultRunningBackends(),
			Index:           0,
		})
	}

	for _, r := range repos {
		sources = append(sources, Source{
			Kind:            SourceKindGit,
			URL:             r.URL,
			Versions:        []string{r.Branch},
			RunningOS:       orDefaultOS(r.RunningOS),
			RunningBackends: orDefaultBackends(r.RunningBackends),
			Index:           len(sources),
		})
	}

	for _, p := range packages {
		sources = append(sources, Source{
			Kind:            SourceKindRegistry,
			Name:            p.Name,
			Versions:        []string{p.Version},
			RunningOS:       orDefaultOS(p.RunningOS),
			RunningBackends: orDefaultBackends(p.RunningBackends),
			Index:           len(sources),
		})
	}

	return sources
}

func orDefaultOS(os []OS) []OS {
	if len(os) == 0 {
		return DefaultRunningOS()
	}
	return os
}

func orDefaultBackends(backends []Backend) []Backend {
	if len(backends) == 0 {
		return DefaultRunningBackends()
	}
	return backends
}
