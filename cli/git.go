package cli

// This file contains the git fetch adapter: cloning a source repository and
// checking out the revisions under test.

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/moonstat/moonstat/registry"
)

// execGit runs git through the host binary.
type execGit struct{}

// CloneTo clones url into dir/name.
func (execGit) CloneTo(url, dir, name string) error {
	cmd := exec.Command("git", "clone", url, name)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w: %s", url, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Checkout switches the working tree at workdir to the given revision.
func (execGit) Checkout(workdir, rev string) error {
	cmd := exec.Command("git", "checkout", rev)
	cmd.Dir = workdir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w: %s", rev, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// mooncakesFetcher adapts the registry package to the fetch interface.
type mooncakesFetcher struct{}

func (mooncakesFetcher) DownloadTo(name, version, dst string) error {
	return registry.DownloadTo(name, version, dst)
}
