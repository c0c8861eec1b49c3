package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moonstat/moonstat/model"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRepos(t *testing.T) {
	path := writeTempFile(t, "repos.yml", `
github-repos:
  - name: core
    link: https://github.com/example/core
    branch: main
  - name: experiment
    link: https://github.com/example/experiment
    branch: dev
    running_os: [linux]
    running_backend: [wasm, js]
mooncakes:
  - name: a/b
    version: 2.0.0
  - name: a/c
    version: 0.1.0
    running_backend: [native]
`)

	cfg, err := LoadRepos(path)
	require.NoError(t, err)

	require.Len(t, cfg.GithubRepos, 2)
	require.Equal(t, "https://github.com/example/core", cfg.GithubRepos[0].Link)
	require.Equal(t, "main", cfg.GithubRepos[0].Branch)
	require.Empty(t, cfg.GithubRepos[0].RunningOS, "no override declared")
	require.Equal(t, []model.OS{model.OSLinux}, cfg.GithubRepos[1].RunningOS)
	require.Equal(t, []model.Backend{model.BackendWasm, model.BackendJS}, cfg.GithubRepos[1].RunningBackend)

	require.Len(t, cfg.Mooncakes, 2)
	require.Equal(t, "a/b", cfg.Mooncakes[0].Name)
	require.Equal(t, []model.Backend{model.BackendNative}, cfg.Mooncakes[1].RunningBackend)
}

func TestLoadReposMissingFile(t *testing.T) {
	_, err := LoadRepos(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadExclude(t *testing.T) {
	path := writeTempFile(t, "exclude.yml", `
exclude:
  - a/b
  - c/d
`)

	cfg, err := LoadExclude(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a/b", "c/d"}, cfg.Exclude)
}

func TestDeclarationsOrder(t *testing.T) {
	cfg := ReposConfig{
		GithubRepos: []GithubRepo{
			{Link: "https://github.com/example/a", Branch: "main"},
			{Link: "https://github.com/example/b", Branch: "main", RunningOS: []model.OS{model.OSMacOS}},
		},
		Mooncakes: []Mooncake{
			{Name: "x/y", Version: "1.0.0"},
		},
	}

	repos, packages := cfg.Declarations()
	require.Len(t, repos, 2)
	require.Len(t, packages, 1)
	require.Equal(t, "https://github.com/example/a", repos[0].URL)
	require.Equal(t, []model.OS{model.OSMacOS}, repos[1].RunningOS)
	require.Equal(t, "x/y", packages[0].Name)
	require.Equal(t, "1.0.0", packages[0].Version)
}
