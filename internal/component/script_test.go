package component

import (
	"strings"
	"testing"
)

const lintHook = `#!/usr/bin/env bash
# Description: Run linters on changed files
# Category: validation
# Dependencies: check-types
# Version: 2.0.1
set -euo pipefail

changed=$(git diff --name-only)
"$KITFORGE_DIR/hooks/check-format.sh" "$changed"
npm run lint -- $changed
`

func TestParseHook(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lint-changed.sh", lintHook)

	def, err := ParseHook(path, "lint-changed.sh")
	if err != nil {
		t.Fatalf("ParseHook: %v", err)
	}

	if def.ID != "lint-changed" {
		t.Errorf("ID = %q, want lint-changed", def.ID)
	}
	if def.Kind != KindHook {
		t.Errorf("Kind = %q, want hook", def.Kind)
	}
	if def.Description != "Run linters on changed files" {
		t.Errorf("Description = %q", def.Description)
	}
	if def.Category != "validation" {
		t.Errorf("Category = %q, want validation", def.Category)
	}
	if def.Version != "2.0.1" {
		t.Errorf("Version = %q", def.Version)
	}
	if def.Hook == nil {
		t.Fatal("Hook meta is nil")
	}
	if len(def.Hook.ShellOptions) != 2 || def.Hook.ShellOptions[0] != "-euo" || def.Hook.ShellOptions[1] != "pipefail" {
		t.Errorf("ShellOptions = %v, want [-euo pipefail]", def.Hook.ShellOptions)
	}
}

func TestParseHookDependencySignals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lint-changed.sh", lintHook)

	def, err := ParseHook(path, "lint-changed.sh")
	if err != nil {
		t.Fatalf("ParseHook: %v", err)
	}

	// Banner dep, sibling hook invocation, and two allow-listed tools.
	want := []string{"check-format", "check-types", "git", "npm"}
	if len(def.Dependencies) != len(want) {
		t.Fatalf("Dependencies = %v, want %v", def.Dependencies, want)
	}
	for i, dep := range want {
		if def.Dependencies[i] != dep {
			t.Errorf("Dependencies[%d] = %q, want %q", i, def.Dependencies[i], dep)
		}
	}

	if len(def.Hook.ExternalTools) != 2 {
		t.Errorf("ExternalTools = %v, want [git npm]", def.Hook.ExternalTools)
	}
}

func TestParseHookMissingShebang(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.sh", "# Description: no shebang\necho hi\n")

	if _, err := ParseHook(path, "plain.sh"); err == nil {
		t.Fatal("expected error for missing shebang")
	}
}

func TestParseHookMissingDescription(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bare.sh", "#!/bin/sh\necho hi\n")

	if _, err := ParseHook(path, "bare.sh"); err == nil {
		t.Fatal("expected error for missing Description banner field")
	}
}

func TestParseHookBinaryContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "blob.sh", "#!/bin/sh\n\x00\x01\x02")

	if _, err := ParseHook(path, "blob.sh"); err == nil {
		t.Fatal("expected error for binary content")
	}
}

func TestParseHookUnknownBannerField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "odd.sh", `#!/bin/sh
# Description: Hook with an odd banner field
# Timeout: 30
echo done
`)

	def, err := ParseHook(path, "odd.sh")
	if err != nil {
		t.Fatalf("ParseHook: %v", err)
	}
	found := false
	for _, w := range def.Warnings {
		if strings.Contains(w, "timeout") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want unknown banner field warning", def.Warnings)
	}
}

func TestParseHookSelfReferenceIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "loop.sh", `#!/bin/sh
# Description: Hook that mentions its own path
echo "see hooks/loop.sh for details"
`)

	def, err := ParseHook(path, "loop.sh")
	if err != nil {
		t.Fatalf("ParseHook: %v", err)
	}
	for _, dep := range def.Dependencies {
		if dep == "loop" {
			t.Errorf("self-reference recorded as dependency: %v", def.Dependencies)
		}
	}
}
