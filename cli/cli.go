package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/moonstat/moonstat/cli/moon"
	"github.com/moonstat/moonstat/model"
)

const AppName = "moonstat"

// moonInvoker is the moon toolchain surface the stat pipeline consumes.
// Tests substitute a deterministic fake.
type moonInvoker interface {
	Invoke(workdir string, args []string) (moon.Output, error)
	Version() (string, error)
	MooncVersion() (string, error)
	Update() error
	InstallStable() error
	InstallBleeding() error
}

// gitClient fetches git sources.
type gitClient interface {
	CloneTo(url, dir, name string) error
	Checkout(workdir, rev string) error
}

// registryFetcher fetches registry package archives.
type registryFetcher interface {
	DownloadTo(name, version, dst string) error
}

type App struct {
	logger zerolog.Logger
	cli    *cli.App

	moon     moonInvoker
	git      gitClient
	registry registryFetcher
	// firstParty decides whether a source gets full test execution or
	// compile-only tests.
	firstParty func(model.Source) bool
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger:     logger,
		moon:       moon.NewRunner(logger),
		git:        execGit{},
		registry:   mooncakesFetcher{},
		firstParty: isMoonbitCommunity,
		cli: &cli.App{
			Name: AppName,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "stat",
		Usage:  "Run the build matrix over all declared sources and emit a dashboard snapshot",
		Action: app.statCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to the repos declaration file (YAML)",
			},
			&cli.StringFlag{
				Name:  "repo-url",
				Usage: "Ad-hoc repository URL to test in addition to the declaration file",
			},
			&cli.BoolFlag{
				Name:  "skip-install",
				Usage: "Skip toolchain installation (use the already installed moon)",
			},
			&cli.BoolFlag{
				Name:  "skip-update",
				Usage: "Skip the registry index update",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for dashboard snapshots",
				Value: "webapp/public",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List the latest version of every package in the local registry index",
		Action: app.listCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "exclude",
				Usage: "Path to the exclusion file (YAML)",
			},
		},
	})
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

// isMoonbitCommunity classifies first-party sources by organization name.
func isMoonbitCommunity(src model.Source) bool {
	switch src.Kind {
	case model.SourceKindRegistry:
		return strings.Contains(src.Name, "moonbitlang")
	default:
		return strings.Contains(src.URL, "moonbitlang")
	}
}
