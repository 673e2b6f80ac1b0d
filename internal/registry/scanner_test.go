package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sourceRoots(t *testing.T) Roots {
	t.Helper()
	src := t.TempDir()

	writeFile(t, src, "commands/git/commit.md", `---
description: Create a conventional git commit
category: git
---
Commit the staged changes.
`)
	writeFile(t, src, "commands/check-types.md", `---
description: Run the typecheck step
---
`)
	writeFile(t, src, "hooks/lint-changed.sh", `#!/usr/bin/env bash
# Description: Run linters on changed files
# Dependencies: check-types
git diff --name-only
`)
	writeFile(t, src, "agents/helper.md", `---
name: Helper
description: Agent bundling validation helpers
bundle:
  - lint-changed
---
`)

	return Roots{
		CommandDir: filepath.Join(src, "commands"),
		HookDir:    filepath.Join(src, "hooks"),
		AgentDir:   filepath.Join(src, "agents"),
	}
}

func TestScanFindsAllKinds(t *testing.T) {
	roots := sourceRoots(t)

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []string{"check-types", "git-commit", "helper", "lint-changed"}
	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs = %v, want %v", got, want)
		}
	}

	if deps := reg.Dependencies("helper"); len(deps) != 1 || deps[0] != "lint-changed" {
		t.Errorf("Dependencies(helper) = %v, want [lint-changed]", deps)
	}
	if ext := reg.External(); len(ext) != 1 || ext[0] != "git" {
		t.Errorf("External = %v, want [git]", ext)
	}
}

func TestScanMissingRootIsEmpty(t *testing.T) {
	roots := Roots{
		CommandDir: filepath.Join(t.TempDir(), "does-not-exist"),
	}

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(reg.Components) != 0 {
		t.Errorf("Components = %v, want empty", reg.IDs())
	}
	if len(reg.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none for a missing root", reg.Warnings)
	}
}

func TestScanUnparsableFileWarns(t *testing.T) {
	roots := sourceRoots(t)
	writeFile(t, filepath.Dir(roots.CommandDir), "commands/notes.md", "# Just notes, no front matter\n")

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, ok := reg.Get("notes"); ok {
		t.Error("unparsable file should not produce a component")
	}
	found := false
	for _, w := range reg.Warnings {
		if strings.Contains(w, "notes.md") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a skip warning for notes.md", reg.Warnings)
	}
}

func TestScanWrongExtensionWarns(t *testing.T) {
	roots := sourceRoots(t)
	writeFile(t, filepath.Dir(roots.HookDir), "hooks/helper.py", "print('hi')\n")

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	found := false
	for _, w := range reg.Warnings {
		if strings.Contains(w, "helper.py") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want wrong-extension warning", reg.Warnings)
	}
}

func TestScanIgnoresDotfilesAndNodeModules(t *testing.T) {
	roots := sourceRoots(t)
	src := filepath.Dir(roots.CommandDir)
	writeFile(t, src, "commands/.hidden.md", "---\ndescription: hidden\n---\n")
	writeFile(t, src, "commands/node_modules/dep/cmd.md", "---\ndescription: vendored\n---\n")

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, id := range reg.IDs() {
		if strings.Contains(id, "hidden") || strings.Contains(id, "node_modules") {
			t.Errorf("ignored path leaked into registry: %s", id)
		}
	}
}

func TestScanDisabledComponents(t *testing.T) {
	roots := sourceRoots(t)
	writeFile(t, filepath.Dir(roots.CommandDir), "commands/old.md", `---
description: Retired command
disabled: true
---
`)

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, ok := reg.Get("old"); ok {
		t.Error("disabled component listed without IncludeDisabled")
	}

	reg, err = scan(roots, Options{IncludeDisabled: true})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	def, ok := reg.Get("old")
	if !ok {
		t.Fatal("disabled component missing with IncludeDisabled")
	}
	if def.Enabled {
		t.Error("Enabled = true, want false")
	}
}

func TestScanDuplicateIDFirstWins(t *testing.T) {
	roots := sourceRoots(t)
	src := filepath.Dir(roots.CommandDir)
	writeFile(t, src, "commands/helper.md", "---\ndescription: Command shadowing the agent id\n---\n")

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	// Commands are merged before agents, so the command keeps the id.
	def, ok := reg.Get("helper")
	if !ok {
		t.Fatal("helper missing")
	}
	if def.Kind != "command" {
		t.Errorf("Kind = %q, want command (first occurrence wins)", def.Kind)
	}
	found := false
	for _, w := range reg.Warnings {
		if strings.Contains(w, "duplicate component id") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want duplicate-id warning", reg.Warnings)
	}
}

func TestScanSearchAndByKind(t *testing.T) {
	roots := sourceRoots(t)

	reg, err := scan(roots, Options{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	hits := reg.Search("lint")
	if len(hits) != 1 || hits[0].ID != "lint-changed" {
		ids := make([]string, len(hits))
		for i, d := range hits {
			ids[i] = d.ID
		}
		t.Errorf("Search(lint) = %v, want [lint-changed]", ids)
	}

	hooks := reg.ByKind("hook")
	if len(hooks) != 1 || hooks[0].ID != "lint-changed" {
		t.Errorf("ByKind(hook) returned %d definitions, want lint-changed only", len(hooks))
	}

	gitIDs := reg.ByCategory("git")
	if len(gitIDs) != 1 || gitIDs[0] != "git-commit" {
		t.Errorf("ByCategory(git) = %v, want [git-commit]", gitIDs)
	}
}
