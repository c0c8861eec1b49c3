// Package config parses the YAML source declaration files: the repos file
// listing git repositories and registry packages to test, and the exclude
// file listing fully-qualified package names to omit from auto-discovered
// registry listings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moonstat/moonstat/model"
)

// GithubRepo is one git repository declaration.
type GithubRepo struct {
	Name   string `yaml:"name"`
	Link   string `yaml:"link"`
	Branch string `yaml:"branch"`
	// Optional overrides; defaults apply when omitted
	RunningOS      []model.OS      `yaml:"running_os,omitempty"`
	RunningBackend []model.Backend `yaml:"running_backend,omitempty"`
}

// Mooncake is one registry package declaration.
type Mooncake struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	// Optional overrides; defaults apply when omitted
	RunningOS      []model.OS      `yaml:"running_os,omitempty"`
	RunningBackend []model.Backend `yaml:"running_backend,omitempty"`
}

// ReposConfig is the full source declaration file.
type ReposConfig struct {
	GithubRepos []GithubRepo `yaml:"github-repos"`
	Mooncakes   []Mooncake   `yaml:"mooncakes"`
}

// ExcludeConfig lists fully-qualified package names to skip.
type ExcludeConfig struct {
	Exclude []string `yaml:"exclude"`
}

// LoadRepos reads and parses a repos declaration file.
func LoadRepos(path string) (ReposConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReposConfig{}, fmt.Errorf("failed to read repos config: %w", err)
	}

	var cfg ReposConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ReposConfig{}, fmt.Errorf("failed to parse repos config %q: %w", path, err)
	}

	return cfg, nil
}

// LoadExclude reads and parses an exclusion file.
func LoadExclude(path string) (ExcludeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExcludeConfig{}, fmt.Errorf("failed to read exclude config: %w", err)
	}

	var cfg ExcludeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ExcludeConfig{}, fmt.Errorf("failed to parse exclude config %q: %w", path, err)
	}

	return cfg, nil
}

// Declarations converts the parsed file into the model declaration lists
// consumed by model.BuildSources, preserving declaration order.
func (c ReposConfig) Declarations() ([]model.RepoDecl, []model.PackageDecl) {
	repos := make([]model.RepoDecl, 0, len(c.GithubRepos))
	for _, r := range c.GithubRepos {
		repos = append(repos, model.RepoDecl{
			URL:             r.Link,
			Branch:          r.Branch,
			RunningOS:       r.RunningOS,
			RunningBackends: r.RunningBackend,
		})
	}

	packages := make([]model.PackageDecl, 0, len(c.Mooncakes))
	for _, m := range c.Mooncakes {
		packages = append(packages, model.PackageDecl{
			Name:            m.Name,
			Version:         m.Version,
			RunningOS:       m.RunningOS,
			RunningBackends: m.RunningBackend,
		})
	}

	return repos, packages
}
