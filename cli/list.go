package cli

// This file contains the registry listing command: print the latest
// published version of every package in the locally synced index, honoring
// the exclusion file.

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/moonstat/moonstat/config"
	"github.com/moonstat/moonstat/registry"
)

func (a *App) listCommand(ctx *cli.Context) error {
	exclude := make(map[string]struct{})
	if path := ctx.String("exclude"); path != "" {
		cfg, err := config.LoadExclude(path)
		if err != nil {
			return err
		}
		for _, name := range cfg.Exclude {
			exclude[name] = struct{}{}
		}
	}

	indexDir, err := registry.Index()
	if err != nil {
		return err
	}

	db, err := registry.LoadAll(indexDir)
	if err != nil {
		return err
	}

	for _, entry := range db.LatestVersions(exclude) {
		fmt.Printf("%s %s\n", entry.Name, entry.Version)
	}

	return nil
}
