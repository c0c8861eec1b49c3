package cli

// This file contains the build-matrix pipeline: source collection, the
// per-cell command execution, the OS/backend matrix, the per-source build
// orchestration and the two-channel dashboard assembly.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/moonstat/moonstat/config"
	"github.com/moonstat/moonstat/model"
)

// StatOptions carries everything the dashboard assembly needs, including the
// environment-derived run metadata, so the core never reads the environment
// itself.
type StatOptions struct {
	// File is the repos declaration file; empty means no declared sources.
	File string
	// RepoURL is an optional ad-hoc repository injected at index 0.
	RepoURL string
	// SkipInstall skips toolchain installation for both channels.
	SkipInstall bool
	// SkipUpdate skips the registry index update.
	SkipUpdate bool
	// RunID and RunNumber identify the CI run that produced the snapshot.
	RunID     string
	RunNumber string
}

func (a *App) statCommand(ctx *cli.Context) error {
	opts := StatOptions{
		File:        ctx.String("file"),
		RepoURL:     ctx.String("repo-url"),
		SkipInstall: ctx.Bool("skip-install"),
		SkipUpdate:  ctx.Bool("skip-update"),
		RunID:       envOrZero("GITHUB_ACTION_RUN_ID"),
		RunNumber:   envOrZero("GITHUB_ACTION_RUN_NUMBER"),
	}

	dashboard, err := a.stat(opts)
	if err != nil {
		return err
	}

	path, err := a.writeDashboard(dashboard, ctx.String("output-dir"))
	if err != nil {
		return err
	}

	a.logger.Info().Str("path", path).Msg("Dashboard snapshot written")
	return nil
}

func envOrZero(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return "0"
}

// collectSources assembles the ordered source list from the ad-hoc URL and
// the declaration file.
func (a *App) collectSources(opts StatOptions) ([]model.Source, error) {
	var repos []model.RepoDecl
	var packages []model.PackageDecl

	if opts.File != "" {
		cfg, err := config.LoadRepos(opts.File)
		if err != nil {
			return nil, err
		}
		repos, packages = cfg.Declarations()
	}

	return model.BuildSources(opts.RepoURL, repos, packages), nil
}

// stat runs the full matrix for both toolchain channels and assembles the
// dashboard. Any error here is fatal: no partial dashboard is emitted.
func (a *App) stat(opts StatOptions) (*model.Dashboard, error) {
	sources, err := a.collectSources(opts)
	if err != nil {
		return nil, err
	}

	stableVersion, stableData, err := a.runChannel(model.ToolChainStable, sources, opts)
	if err != nil {
		return nil, err
	}

	bleedingVersion, bleedingData, err := a.runChannel(model.ToolChainBleeding, sources, opts)
	if err != nil {
		return nil, err
	}

	return &model.Dashboard{
		RunID:                    opts.RunID,
		RunNumber:                opts.RunNumber,
		StartTime:                time.Now().Format(time.RFC3339),
		Sources:                  sources,
		StableToolchainVersion:   stableVersion,
		StableReleaseData:        stableData,
		BleedingToolchainVersion: bleedingVersion,
		BleedingReleaseData:      bleedingData,
	}, nil
}

// runChannel installs and updates one toolchain channel, records its version
// strings, and builds every source against it in declaration order.
func (a *App) runChannel(label model.ToolChainLabel, sources []model.Source, opts StatOptions) (model.ToolChainVersion, []model.BuildState, error) {
	if !opts.SkipInstall {
		var err error
		if label == model.ToolChainBleeding {
			err = a.moon.InstallBleeding()
		} else {
			err = a.moon.InstallStable()
		}
		if err != nil {
			return model.ToolChainVersion{}, nil, fmt.Errorf("failed to install %s toolchain: %w", label, err)
		}
	}
	if !opts.SkipUpdate {
		if err := a.moon.Update(); err != nil {
			return model.ToolChainVersion{}, nil, err
		}
	}

	moonVersion, err := a.moon.Version()
	if err != nil {
		return model.ToolChainVersion{}, nil, err
	}
	mooncVersion, err := a.moon.MooncVersion()
	if err != nil {
		return model.ToolChainVersion{}, nil, err
	}
	version := model.ToolChainVersion{
		Label:        label,
		MoonVersion:  moonVersion,
		MooncVersion: mooncVersion,
	}

	data := make([]model.BuildState, 0, len(sources))
	for _, src := range sources {
		state, err := a.buildSource(src)
		if err != nil {
			return model.ToolChainVersion{}, nil, fmt.Errorf("failed to build %s: %w", src.DisplayName(), err)
		}
		data = append(data, state)
	}

	return version, data, nil
}

// buildSource fetches and runs every declared version/revision of one
// source. A fetch failure is tolerated and leaves a nil CBT at that
// position; the result list always matches the declared version count. The
// source's temp directory is removed on every path.
func (a *App) buildSource(src model.Source) (model.BuildState, error) {
	tmp, err := os.MkdirTemp("", AppName+"-*")
	if err != nil {
		return model.BuildState{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	cbts := make([]*model.CBT, 0, len(src.Versions))

	switch src.Kind {
	case model.SourceKindGit:
		// One clone serves all revisions of this source.
		if err := a.git.CloneTo(src.URL, tmp, "checkout"); err != nil {
			return model.BuildState{}, err
		}
		workdir := filepath.Join(tmp, "checkout")
		for _, rev := range src.Versions {
			if err := a.git.Checkout(workdir, rev); err != nil {
				a.logger.Error().Err(err).Str("rev", rev).Str("url", src.URL).Msg("Failed to checkout revision")
				cbts = append(cbts, nil)
				continue
			}
			cbt, err := a.runMatrix(workdir, src)
			if err != nil {
				return model.BuildState{}, err
			}
			cbts = append(cbts, cbt)
		}

	case model.SourceKindRegistry:
		for _, version := range src.Versions {
			if err := a.registry.DownloadTo(src.Name, version, tmp); err != nil {
				a.logger.Error().Err(err).Str("version", version).Str("name", src.Name).Msg("Failed to download package")
				cbts = append(cbts, nil)
				continue
			}
			cbt, err := a.runMatrix(filepath.Join(tmp, version), src)
			if err != nil {
				return model.BuildState{}, err
			}
			cbts = append(cbts, cbt)
		}
	}

	return model.BuildState{Source: src.Index, CBTs: cbts}, nil
}

// runMatrix fills one CBT for a fetched working directory. Every cell starts
// as the Skipped sentinel; OS entries that do not match the host leave their
// cells untouched. When a repeated OS entry matches the host again, its
// backends re-run and the later results win.
func (a *App) runMatrix(workdir string, src model.Source) (*model.CBT, error) {
	cbt := model.NewSkippedCBT()
	host := model.HostOS()

	for _, osEntry := range src.RunningOS {
		if osEntry != host {
			continue
		}
		for _, backend := range src.RunningBackends {
			for _, kind := range model.CommandKinds() {
				result, err := a.statCell(workdir, src, model.Command{Kind: kind, Backend: backend})
				if err != nil {
					return nil, err
				}
				cbt.State(kind).Set(backend, result)
			}
		}
	}

	return cbt, nil
}

// statCell runs one matrix cell: a best-effort clean, then the command
// itself. A non-zero exit is recorded as a Failure, never returned as an
// error; only a process spawn failure propagates.
func (a *App) statCell(workdir string, src model.Source, cmd model.Command) (model.ExecuteResult, error) {
	// Clean is best-effort; a stale target must not poison the cell.
	if _, err := a.moon.Invoke(workdir, []string{"clean"}); err != nil {
		a.logger.Debug().Err(err).Msg("moon clean failed")
	}

	startTime := model.FormatStartTime(time.Now())

	out, err := a.moon.Invoke(workdir, cmd.Args(a.firstParty(src)))
	if err != nil {
		return model.ExecuteResult{}, err
	}

	status := model.StatusFailure
	if out.Success {
		status = model.StatusSuccess
	}

	return model.ExecuteResult{
		Status:    status,
		StartTime: startTime,
		Elapsed:   uint64(out.Duration.Milliseconds()),
		Stdout:    out.Stdout,
		Stderr:    out.Stderr,
	}, nil
}
