//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kitforge-dev/kitforge/internal/registry"
)

// testEnv holds the isolated directories one end-to-end run works in.
type testEnv struct {
	SourceDir  string // component sources (commands/, hooks/, agents/)
	UserDir    string // user install root
	ProjectDir string // project install root
}

// setupTestEnv creates isolated temp directories and points the environment
// at them so every operation is sandboxed.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		SourceDir:  t.TempDir(),
		UserDir:    t.TempDir(),
		ProjectDir: t.TempDir(),
	}

	t.Setenv("KITFORGE_SOURCE_DIR", env.SourceDir)
	t.Setenv("KITFORGE_USER_DIR", env.UserDir)
	t.Setenv("KITFORGE_PROJECT_DIR", env.ProjectDir)

	return env
}

// setupSources populates the source tree with one component of each kind,
// linked by dependencies: the agent bundles the hook, the hook depends on
// the command.
func setupSources(t *testing.T, sourceDir string) {
	t.Helper()

	writeFile(t, filepath.Join(sourceDir, "commands", "check-types.md"), `---
description: Run the typecheck step
category: validation
---
Run the project type checker and report failures.
`)
	writeFile(t, filepath.Join(sourceDir, "hooks", "lint-changed.sh"), `#!/usr/bin/env bash
# Description: Run linters on changed files
# Category: validation
# Dependencies: check-types
set -euo pipefail
git diff --name-only
`)
	writeFile(t, filepath.Join(sourceDir, "agents", "reviewer.md"), `---
name: Reviewer
description: Reviews changes using the lint hook
bundle:
  - lint-changed
---
You review code changes.
`)
}

func scanRoots(env *testEnv) registry.Roots {
	return registry.Roots{
		CommandDir: filepath.Join(env.SourceDir, "commands"),
		HookDir:    filepath.Join(env.SourceDir, "hooks"),
		AgentDir:   filepath.Join(env.SourceDir, "agents"),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be absent (err=%v)", path, err)
	}
}

func assertExecutable(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected executable %s: %v", path, err)
		return
	}
	if info.Mode().Perm()&0111 == 0 {
		t.Errorf("%s is not executable (mode %o)", path, info.Mode().Perm())
	}
}
