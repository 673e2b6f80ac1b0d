// Package paths resolves the source and destination directories the CLI
// operates on. Environment overrides always win; the config file is next;
// conventional defaults come last.
package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kitforge-dev/kitforge/internal/branding"
	"github.com/kitforge-dev/kitforge/internal/config"
	"github.com/kitforge-dev/kitforge/internal/registry"
)

// Subdirectory names inside a source root.
const (
	CommandsDir = "commands"
	HooksDir    = "hooks"
	AgentsDir   = "agents"
)

// UserRoot returns the user-level install root. It checks the
// KITFORGE_USER_DIR environment variable, then the config file, then
// falls back to ~/.kitforge.
func UserRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("USER_DIR")); v != "" {
		return v, nil
	}
	if v := config.Get(config.KeyUserDir); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// ProjectRoot returns the project-level install root for dir (the
// project's .kitforge directory). The KITFORGE_PROJECT_DIR environment
// variable and the config file override the convention.
func ProjectRoot(dir string) (string, error) {
	if v := os.Getenv(branding.EnvVar("PROJECT_DIR")); v != "" {
		return v, nil
	}
	if v := config.Get(config.KeyProjectDir); v != "" {
		return v, nil
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
	}
	return filepath.Join(dir, branding.HomeDir()), nil
}

// SourceRoot returns the directory holding the component catalog
// (commands/, hooks/, agents/ subdirectories). Resolution order:
// KITFORGE_SOURCE_DIR, config file, then ./src next to the executable,
// then ./src under the working directory.
func SourceRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("SOURCE_DIR")); v != "" {
		return v, nil
	}
	if v := config.Get(config.KeySourceDir); v != "" {
		return v, nil
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "src")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	candidate := filepath.Join(wd, "src")
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate, nil
	}

	return "", fmt.Errorf("no component source found; set %s or %q in %s",
		branding.EnvVar("SOURCE_DIR"), config.KeySourceDir, config.FilePath())
}

// ScanRoots maps a source root to the scanner's per-kind roots.
func ScanRoots(sourceRoot string) registry.Roots {
	return registry.Roots{
		CommandDir: filepath.Join(sourceRoot, CommandsDir),
		HookDir:    filepath.Join(sourceRoot, HooksDir),
		AgentDir:   filepath.Join(sourceRoot, AgentsDir),
	}
}
