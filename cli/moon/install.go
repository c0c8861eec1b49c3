package moon

// install.go installs the moon toolchain from the official release
// channels. Unix hosts pipe the install script from curl into bash; windows
// hosts run the PowerShell installer.

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

const unixInstallURL = "https://cli.moonbitlang.com/install/unix.sh"

// InstallStable installs the stable toolchain release.
func (r *Runner) InstallStable() error {
	return r.install(false)
}

// InstallBleeding installs the bleeding (pre-release) toolchain.
func (r *Runner) InstallBleeding() error {
	return r.install(true)
}

func (r *Runner) install(bleeding bool) error {
	r.logger.Info().Bool("bleeding", bleeding).Msg("Installing moon toolchain")

	var err error
	if runtime.GOOS == "windows" {
		err = installWindows(bleeding)
	} else {
		err = installUnix(bleeding)
	}
	if err != nil {
		return err
	}

	// Report what we ended up with; a toolchain that cannot answer
	// `moon version --all` is not usable.
	out, err := exec.Command("moon", "version", "--all").CombinedOutput()
	if err != nil {
		return fmt.Errorf("moon version --all failed after install: %w", err)
	}
	r.logger.Info().Str("versions", strings.TrimSpace(string(out))).Msg("Toolchain installed")

	return nil
}

func installUnix(bleeding bool) error {
	bashArgs := "-s"
	if bleeding {
		bashArgs = "-s bleeding"
	}
	pipeline := fmt.Sprintf("curl -fsSL %s | bash %s", shellescape.Quote(unixInstallURL), bashArgs)

	out, err := exec.Command("bash", "-c", pipeline).CombinedOutput()
	if err != nil {
		return fmt.Errorf("install script failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func installWindows(bleeding bool) error {
	script := "Set-ExecutionPolicy RemoteSigned -Scope CurrentUser; irm https://cli.moonbitlang.com/install/powershell.ps1 | iex"
	cmd := exec.Command("powershell", "-Command", script)
	if bleeding {
		cmd.Env = append(os.Environ(), "MOONBIT_INSTALL_VERSION=bleeding")
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("install script failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
