// Package moon drives the moon toolchain binary: single-command invocation
// with output capture for the build matrix, plus version discovery and
// toolchain updates.
package moon

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output is the captured result of one moon invocation. Success reflects the
// process exit status; a non-zero exit is not an error at this layer.
type Output struct {
	Duration time.Duration
	Stdout   string
	Stderr   string
	Success  bool
}

// Runner invokes moon commands in a working directory.
type Runner struct {
	logger zerolog.Logger
}

// NewRunner returns a Runner that logs progress through the given logger.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Invoke runs `moon <args...>` in workdir, blocking until it exits. It
// returns an error only when the process cannot be started; a failing
// command is reported through Output.Success.
func (r *Runner) Invoke(workdir string, args []string) (Output, error) {
	start := time.Now()

	r.logger.Info().
		Str("workdir", workdir).
		Strs("args", args).
		Msg("RUN moon")

	cmd := exec.Command("moon", args...)
	cmd.Dir = workdir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	elapsed := time.Since(start)

	success := err == nil
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			// The binary is missing or could not start; this is distinct
			// from a non-zero exit and aborts the caller.
			return Output{}, fmt.Errorf("failed to execute moon %s: %w", strings.Join(args, " "), err)
		}
	}

	r.logger.Info().
		Strs("args", args).
		Int64("elapsed_ms", elapsed.Milliseconds()).
		Bool("success", success).
		Msg("moon finished")

	return Output{
		Duration: elapsed,
		Stdout:   strings.ToValidUTF8(stdoutBuf.String(), "�"),
		Stderr:   strings.ToValidUTF8(stderrBuf.String(), "�"),
		Success:  success,
	}, nil
}

// Version returns the trimmed output of `moon version`.
func (r *Runner) Version() (string, error) {
	return versionOutput("moon", "version")
}

// MooncVersion returns the trimmed output of `moonc -v`.
func (r *Runner) MooncVersion() (string, error) {
	return versionOutput("moonc", "-v")
}

func versionOutput(bin string, args ...string) (string, error) {
	out, err := exec.Command(bin, args...).Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s %s: %w", bin, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Update runs `moon update` to refresh the registry index.
func (r *Runner) Update() error {
	out, err := exec.Command("moon", "update").CombinedOutput()
	if err != nil {
		return fmt.Errorf("moon update failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
