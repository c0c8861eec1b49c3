package cli

// This file contains the dashboard snapshot sink: one gzip-compressed JSON
// line per run, partitioned by host OS and date, with a "latest" copy
// overwritten each run.

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/moonstat/moonstat/model"
)

// writeDashboard appends the dashboard as one JSON line to the dated
// snapshot file and refreshes the latest copy. It returns the dated file
// path.
func (a *App) writeDashboard(dashboard *model.Dashboard, outDir string) (string, error) {
	dir := filepath.Join(outDir, model.HostOS().PartitionName())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(dir, date+"_data.jsonl.gz")

	if err := appendSnapshot(path, dashboard); err != nil {
		return "", err
	}

	latest := filepath.Join(dir, "latest_data.jsonl.gz")
	if err := copyFile(path, latest); err != nil {
		return "", fmt.Errorf("failed to refresh latest snapshot: %w", err)
	}

	return path, nil
}

// appendSnapshot writes one gzip member holding a single JSON line. Gzip
// members concatenate, so the dated file stays a valid .jsonl.gz across
// multiple runs on the same day.
func appendSnapshot(path string, dashboard *model.Dashboard) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}

	w := gzip.NewWriter(f)
	if _, err := w.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
