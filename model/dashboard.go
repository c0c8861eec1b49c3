package model

import "time"

// CommandKind is one of the three moon subcommands the matrix exercises.
type CommandKind string

const (
	CommandCheck CommandKind = "check"
	CommandBuild CommandKind = "build"
	CommandTest  CommandKind = "test"
)

// CommandKinds returns the three command kinds in execution order.
func CommandKinds() []CommandKind {
	return []CommandKind{CommandCheck, CommandBuild, CommandTest}
}

// Command is one (subcommand, backend) cell of the matrix.
type Command struct {
	Kind    CommandKind
	Backend Backend
}

// Args resolves the moon argument vector for this command. Test runs fully
// for first-party sources and compile-only (--build-only) for everything
// else.
func (c Command) Args(firstParty bool) []string {
	switch c.Kind {
	case CommandTest:
		if firstParty {
			return []string{"test", "-q", "--target", c.Backend.Flag()}
		}
		return []string{"test", "-q", "--build-only", "--target", c.Backend.Flag()}
	default:
		return []string{string(c.Kind), "-q", "--target", c.Backend.Flag()}
	}
}

// Status classifies the outcome of one matrix cell.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailure Status = "Failure"
	// StatusSkipped marks cells that were never attempted (OS did not match
	// the host, or the backend was not selected).
	StatusSkipped Status = "Skipped"
)

// ExecuteResult is the outcome of one toolchain invocation.
type ExecuteResult struct {
	Status Status `json:"status"`
	// Wall-clock start, formatted "2006-01-02 15:04:05.000" at UTC+8
	StartTime string `json:"start_time"`
	// Elapsed wall-clock milliseconds
	Elapsed uint64 `json:"elapsed"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// resultZone is the fixed UTC+8 offset every start_time is rendered in, so
// snapshots from different hosts line up on the dashboard.
var resultZone = time.FixedZone("UTC+8", 8*3600)

// FormatStartTime renders a cell start time in the dashboard wire format.
func FormatStartTime(t time.Time) string {
	return t.In(resultZone).Format("2006-01-02 15:04:05.000")
}

// SkipResult is the sentinel filling matrix cells that never ran.
func SkipResult() ExecuteResult {
	return ExecuteResult{
		Status:    StatusSkipped,
		StartTime: "",
		Elapsed:   0,
		Stdout:    "",
		Stderr:    "",
	}
}

// BackendState holds one command's result for every backend.
type BackendState struct {
	Wasm   ExecuteResult `json:"wasm"`
	WasmGC ExecuteResult `json:"wasm_gc"`
	JS     ExecuteResult `json:"js"`
	Native ExecuteResult `json:"native"`
}

// Get returns the result slot for a backend.
func (s *BackendState) Get(b Backend) ExecuteResult {
	switch b {
	case BackendWasm:
		return s.Wasm
	case BackendWasmGC:
		return s.WasmGC
	case BackendJS:
		return s.JS
	default:
		return s.Native
	}
}

// Set overwrites the result slot for a backend.
func (s *BackendState) Set(b Backend, r ExecuteResult) {
	switch b {
	case BackendWasm:
		s.Wasm = r
	case BackendWasmGC:
		s.WasmGC = r
	case BackendJS:
		s.JS = r
	case BackendNative:
		s.Native = r
	}
}

// CBT is the check/build/test result set for one fetched version of one
// source: twelve cells, three commands by four backends.
type CBT struct {
	Check BackendState `json:"check"`
	Build BackendState `json:"build"`
	Test  BackendState `json:"test"`
}

// NewSkippedCBT returns a CBT with every cell set to the Skipped sentinel.
func NewSkippedCBT() *CBT {
	skipped := BackendState{
		Wasm:   SkipResult(),
		WasmGC: SkipResult(),
		JS:     SkipResult(),
		Native: SkipResult(),
	}
	return &CBT{Check: skipped, Build: skipped, Test: skipped}
}

// State returns the BackendState for a command kind.
func (c *CBT) State(kind CommandKind) *BackendState {
	switch kind {
	case CommandCheck:
		return &c.Check
	case CommandBuild:
		return &c.Build
	default:
		return &c.Test
	}
}

// BuildState is one source's results: one entry per declared
// version/revision, in declaration order. A nil entry means the fetch for
// that position failed; the list is never shortened.
type BuildState struct {
	Source int    `json:"source"`
	CBTs   []*CBT `json:"cbts"`
}

// ToolChainLabel names a toolchain release channel.
type ToolChainLabel string

const (
	ToolChainStable   ToolChainLabel = "Stable"
	ToolChainBleeding ToolChainLabel = "Bleeding"
)

// ToolChainVersion records the toolchain versions a channel ran with.
type ToolChainVersion struct {
	Label        ToolChainLabel `json:"label"`
	MoonVersion  string         `json:"moon_version"`
	MooncVersion string         `json:"moonc_version"`
}

// Dashboard is the root document emitted once per run. The stable and
// bleeding result lists are index-aligned with Sources.
type Dashboard struct {
	RunID     string `json:"run_id"`
	RunNumber string `json:"run_number"`
	StartTime string `json:"start_time"`

	Sources []Source `json:"sources"`

	StableToolchainVersion ToolChainVersion `json:"stable_toolchain_version"`
	StableReleaseData      []BuildState     `json:"stable_release_data"`

	BleedingToolchainVersion ToolChainVersion `json:"bleeding_toolchain_version"`
	BleedingReleaseData      []BuildState     `json:"bleeding_release_data"`
}
