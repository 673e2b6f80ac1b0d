package install

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kitforge-dev/kitforge/internal/plan"
	"github.com/kitforge-dev/kitforge/internal/registry"
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

const hookSource = `#!/usr/bin/env bash
# Description: Run linters on changed files
# Dependencies: check-types
echo lint
`

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	src := t.TempDir()

	writeFile(t, src, "commands/check-types.md", `---
description: Run the typecheck step
---
`)
	writeFile(t, src, "hooks/lint-changed.sh", hookSource)

	reg, err := registry.NewScanner(nil).Scan(registry.Roots{
		CommandDir: filepath.Join(src, "commands"),
		HookDir:    filepath.Join(src, "hooks"),
	}, registry.Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return reg
}

func lintRequest() plan.Installation {
	return plan.Installation{
		Components:          []string{"lint-changed"},
		Target:              plan.TargetUser,
		InstallDependencies: true,
	}
}

func TestInstallFresh(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	res, err := New().Install(reg, lintRequest(), roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false: errors %v", res.Errors)
	}

	if len(res.InstalledComponents) != 2 {
		t.Errorf("InstalledComponents = %v, want check-types and lint-changed", res.InstalledComponents)
	}
	if len(res.CreatedDirs) == 0 {
		t.Error("CreatedDirs is empty for a fresh install")
	}
	if len(res.ModifiedFiles) != 2 {
		t.Errorf("ModifiedFiles = %v, want two new files", res.ModifiedFiles)
	}

	hook := filepath.Join(roots.UserDir, "hooks", "lint-changed.sh")
	info, err := os.Stat(hook)
	if err != nil {
		t.Fatalf("hook not installed: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("hook mode = %o, want 0755", info.Mode().Perm())
	}
	if _, err := os.Stat(filepath.Join(roots.UserDir, "commands", "check-types.md")); err != nil {
		t.Errorf("dependency not installed: %v", err)
	}
}

func TestInstallIdempotent(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	if res, err := New().Install(reg, lintRequest(), roots); err != nil || !res.Success {
		t.Fatalf("first install failed: %v / %v", err, res)
	}

	res, err := New().Install(reg, lintRequest(), roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false on re-run: %v", res.Errors)
	}
	if len(res.ModifiedFiles) != 0 {
		t.Errorf("ModifiedFiles = %v, want none when content is unchanged", res.ModifiedFiles)
	}
	if len(res.CreatedDirs) != 0 {
		t.Errorf("CreatedDirs = %v, want none on re-run", res.CreatedDirs)
	}
}

func TestInstallBackupPreservesOldContent(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	old := "#!/bin/sh\necho previous version\n"
	writeFile(t, roots.UserDir, "hooks/lint-changed.sh", old)

	inst := lintRequest()
	inst.Backup = true
	res, err := New().Install(reg, inst, roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false: %v", res.Errors)
	}
	if len(res.BackupFiles) != 1 {
		t.Fatalf("BackupFiles = %v, want one backup", res.BackupFiles)
	}

	saved, err := os.ReadFile(res.BackupFiles[0])
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(saved) != old {
		t.Errorf("backup content = %q, want the pre-install content", saved)
	}

	current, err := os.ReadFile(filepath.Join(roots.UserDir, "hooks", "lint-changed.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if string(current) != hookSource {
		t.Errorf("installed content = %q, want the source content", current)
	}
}

func TestInstallOverwriteWithoutBackup(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}
	writeFile(t, roots.UserDir, "hooks/lint-changed.sh", "stale\n")

	res, err := New().Install(reg, lintRequest(), roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false: %v", res.Errors)
	}
	if len(res.BackupFiles) != 0 {
		t.Errorf("BackupFiles = %v, want none without --backup", res.BackupFiles)
	}
	found := false
	for _, f := range res.ModifiedFiles {
		if strings.HasSuffix(f, "lint-changed.sh") {
			found = true
		}
	}
	if !found {
		t.Errorf("ModifiedFiles = %v, want the overwritten hook", res.ModifiedFiles)
	}
}

func TestInstallDryRunTouchesNothing(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: filepath.Join(t.TempDir(), "fresh")}

	inst := lintRequest()
	inst.DryRun = true
	res, err := New().Install(reg, inst, roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false: %v", res.Errors)
	}

	if _, err := os.Stat(roots.UserDir); !os.IsNotExist(err) {
		t.Errorf("dry run created the destination root: %v", err)
	}

	// The simulated run reports the same outcome a live run would.
	if len(res.InstalledComponents) != 2 {
		t.Errorf("InstalledComponents = %v, want two", res.InstalledComponents)
	}
	if len(res.ModifiedFiles) != 2 {
		t.Errorf("ModifiedFiles = %v, want both planned copies", res.ModifiedFiles)
	}
	if len(res.CreatedDirs) == 0 {
		t.Error("CreatedDirs is empty, want the planned directories")
	}
}

func TestInstallDryRunMatchesLiveRun(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	inst := lintRequest()
	inst.DryRun = true
	simulated, err := New().Install(reg, inst, roots)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	live, err := New().Install(reg, lintRequest(), roots)
	if err != nil {
		t.Fatalf("live run: %v", err)
	}

	if len(simulated.ModifiedFiles) != len(live.ModifiedFiles) {
		t.Errorf("ModifiedFiles: dry %v vs live %v", simulated.ModifiedFiles, live.ModifiedFiles)
	}
	if len(simulated.CreatedDirs) != len(live.CreatedDirs) {
		t.Errorf("CreatedDirs: dry %v vs live %v", simulated.CreatedDirs, live.CreatedDirs)
	}
	for i := range simulated.ModifiedFiles {
		if simulated.ModifiedFiles[i] != live.ModifiedFiles[i] {
			t.Errorf("ModifiedFiles[%d]: dry %q vs live %q", i, simulated.ModifiedFiles[i], live.ModifiedFiles[i])
		}
	}
}

func TestInstallValidationFailure(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	// Removing a source after the scan makes the plan invalid.
	def, ok := reg.Get("check-types")
	if !ok {
		t.Fatal("check-types missing from registry")
	}
	if err := os.Remove(def.SourcePath); err != nil {
		t.Fatal(err)
	}

	res, err := New().Install(reg, lintRequest(), roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if res.Success {
		t.Fatal("Success = true for a plan with a missing source")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "source not found") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want source-not-found problem", res.Errors)
	}
	if _, err := os.Stat(filepath.Join(roots.UserDir, "hooks")); !os.IsNotExist(err) {
		t.Error("validation failure must not touch the filesystem")
	}
}

func TestInstallUnknownComponentFails(t *testing.T) {
	reg := testRegistry(t)

	_, err := New().Install(reg, plan.Installation{
		Components: []string{"missing"},
	}, plan.Roots{UserDir: t.TempDir()})

	var nf *plan.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

// faultFS fails the Nth copy to exercise rollback.
type faultFS struct {
	osFS
	failAt int
	copies int
}

func (f *faultFS) CopyFile(src, dst string) error {
	f.copies++
	if f.copies == f.failAt {
		return errors.New("injected copy failure")
	}
	return f.osFS.CopyFile(src, dst)
}

func TestInstallRollbackOnFailure(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	res, err := newWithFS(&faultFS{failAt: 2}).Install(reg, lintRequest(), roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if res.Success {
		t.Fatal("Success = true despite an injected failure")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "injected copy failure") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want the injected failure", res.Errors)
	}

	// The first copy and both created directories are undone.
	if _, err := os.Stat(filepath.Join(roots.UserDir, "commands", "check-types.md")); !os.IsNotExist(err) {
		t.Error("rollback left the first copied file behind")
	}
	for _, sub := range []string{"commands", "hooks"} {
		if _, err := os.Stat(filepath.Join(roots.UserDir, sub)); !os.IsNotExist(err) {
			t.Errorf("rollback left directory %s behind", sub)
		}
	}
	if _, err := os.Stat(roots.UserDir); err != nil {
		t.Errorf("rollback removed the pre-existing root: %v", err)
	}
}

// truncateFaultFS simulates a disk-full overwrite: the destination is
// truncated (as O_TRUNC would) and the copy then fails. Backup copies go
// to a different destination and pass through untouched.
type truncateFaultFS struct {
	osFS
	failDst string
}

func (f *truncateFaultFS) CopyFile(src, dst string) error {
	if dst == f.failDst {
		os.Truncate(dst, 0)
		return errors.New("no space left on device")
	}
	return f.osFS.CopyFile(src, dst)
}

func TestRollbackRestoresBackupWhenOverwriteItselfFails(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	old := "precious old content\n"
	dest := filepath.Join(roots.UserDir, "commands", "check-types.md")
	writeFile(t, roots.UserDir, "commands/check-types.md", old)

	inst := lintRequest()
	inst.Backup = true
	res, err := newWithFS(&truncateFaultFS{failDst: dest}).Install(reg, inst, roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if res.Success {
		t.Fatal("Success = true despite the failed overwrite")
	}

	// The backup made before the failed overwrite is restored, not orphaned.
	current, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("destination missing after rollback: %v", err)
	}
	if string(current) != old {
		t.Errorf("destination after rollback = %q, want %q", current, old)
	}

	entries, err := os.ReadDir(filepath.Join(roots.UserDir, "commands"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".backup.") {
			t.Errorf("orphaned backup left behind: %s", e.Name())
		}
	}
}

func TestRollbackRestoresOverwrite(t *testing.T) {
	reg := testRegistry(t)
	roots := plan.Roots{UserDir: t.TempDir()}

	old := "original command body\n"
	writeFile(t, roots.UserDir, "commands/check-types.md", old)

	// Copy 1 overwrites check-types (with backup), copy 3 is the backup of
	// nothing; count real copies: backup copy, overwrite copy, hook copy.
	// Fail the hook copy so the overwrite has to be restored.
	inst := lintRequest()
	inst.Backup = true
	res, err := newWithFS(&faultFS{failAt: 3}).Install(reg, inst, roots)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if res.Success {
		t.Fatal("Success = true despite an injected failure")
	}

	current, err := os.ReadFile(filepath.Join(roots.UserDir, "commands", "check-types.md"))
	if err != nil {
		t.Fatalf("overwritten file missing after rollback: %v", err)
	}
	if string(current) != old {
		t.Errorf("content after rollback = %q, want the original", current)
	}
}
