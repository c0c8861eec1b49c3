// Package registry fetches package archives from mooncakes.io and reads the
// locally synced registry index.
package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

const baseURL = "https://moonbitlang-mooncakes.s3.us-west-2.amazonaws.com/user"

// DownloadTo fetches one package version archive and extracts it into
// dst/<version>. The download and extraction are delegated to platform
// tools: curl and unzip on unix, PowerShell on windows.
func DownloadTo(name, version, dst string) error {
	versionEnc := url.QueryEscape(version)
	archiveURL := fmt.Sprintf("%s/%s/%s.zip", baseURL, name, versionEnc)
	outputZip := filepath.Join(dst, version) + ".zip"
	outputDir := filepath.Join(dst, version)

	if runtime.GOOS == "windows" {
		return downloadToWindows(archiveURL, outputZip, outputDir)
	}
	return downloadToUnix(archiveURL, outputZip, outputDir)
}

func downloadToUnix(archiveURL, outputZip, outputDir string) error {
	out, err := exec.Command("curl", "-o", outputZip, archiveURL).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to download %s: %w: %s", archiveURL, err, strings.TrimSpace(string(out)))
	}

	out, err = exec.Command("unzip", outputZip, "-d", outputDir).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w: %s", outputZip, err, strings.TrimSpace(string(out)))
	}

	return nil
}

func downloadToWindows(archiveURL, outputZip, outputDir string) error {
	fetch := fmt.Sprintf("Invoke-WebRequest -Uri %s -OutFile %s",
		shellescape.Quote(archiveURL), shellescape.Quote(outputZip))
	out, err := exec.Command("powershell", "-Command", fetch).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to download %s: %w: %s", archiveURL, err, strings.TrimSpace(string(out)))
	}

	extract := fmt.Sprintf("Expand-Archive -Path %s -DestinationPath %s",
		shellescape.Quote(outputZip), shellescape.Quote(outputDir))
	out, err = exec.Command("powershell", "-Command", extract).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w: %s", outputZip, err, strings.TrimSpace(string(out)))
	}

	return nil
}

// Home resolves the moon home directory: $MOON_HOME if set, otherwise
// ~/.moon (created if missing).
func Home() (string, error) {
	if moonHome := os.Getenv("MOON_HOME"); moonHome != "" {
		return moonHome, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	moonHome := filepath.Join(home, ".moon")
	if err := os.MkdirAll(moonHome, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", moonHome, err)
	}
	return moonHome, nil
}

// Index returns the local registry index directory.
func Index() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "registry", "index"), nil
}

// DB maps fully-qualified package names to their published versions in
// index order (oldest first).
type DB struct {
	Versions map[string][]string
}

// Names returns the package names in sorted order.
func (db *DB) Names() []string {
	names := make([]string, 0, len(db.Versions))
	for name := range db.Versions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LatestVersion returns the newest published version of a package.
func (db *DB) LatestVersion(name string) (string, error) {
	versions, ok := db.Versions[name]
	if !ok || len(versions) == 0 {
		return "", fmt.Errorf("package not found in index: %s", name)
	}
	return versions[len(versions)-1], nil
}

// Latest is one package at its newest version.
type Latest struct {
	Name    string
	Version string
}

// LatestVersions derives the latest-version listing, omitting excluded
// package names. Results are sorted by name.
func (db *DB) LatestVersions(exclude map[string]struct{}) []Latest {
	var latest []Latest
	for _, name := range db.Names() {
		if _, skip := exclude[name]; skip {
			continue
		}
		versions := db.Versions[name]
		latest = append(latest, Latest{Name: name, Version: versions[len(versions)-1]})
	}
	return latest
}

// indexEntry is one line of a per-package .index file.
type indexEntry struct {
	Version  string   `json:"version"`
	Keywords []string `json:"keywords"`
}

// LoadAll walks the local registry index and builds the version DB.
// Packages keyworded "mooncakes-test" are registry self-test fixtures and
// are dropped.
func LoadAll(indexDir string) (*DB, error) {
	db := &DB{Versions: make(map[string][]string)}
	userDir := filepath.Join(indexDir, "user")

	err := filepath.WalkDir(userDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".index" {
			return nil
		}

		rel, err := filepath.Rel(userDir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), ".index")

		versions, isTest, err := readIndexFile(path)
		if err != nil {
			return err
		}
		if !isTest {
			db.Versions[name] = versions
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk registry index: %w", err)
	}

	return db, nil
}

func readIndexFile(path string) (versions []string, isTest bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry indexEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, false, fmt.Errorf("failed to parse index line in %s: %w", path, err)
		}
		versions = append(versions, entry.Version)
		for _, kw := range entry.Keywords {
			if kw == "mooncakes-test" {
				isTest = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, false, err
	}

	return versions, isTest, nil
}
