package install

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kitforge-dev/kitforge/internal/plan"
	"github.com/kitforge-dev/kitforge/internal/registry"
)

// Result captures the outcome of one install run.
type Result struct {
	Success             bool
	InstalledComponents []string
	ModifiedFiles       []string
	CreatedDirs         []string
	BackupFiles         []string
	Warnings            []string
	Errors              []string
	Duration            time.Duration
}

// Installer executes install plans. The zero value is not usable; use New.
type Installer struct {
	fs  fsOps
	now func() time.Time
}

// New returns an Installer that mutates the real filesystem.
func New() *Installer {
	return &Installer{fs: osFS{}, now: time.Now}
}

// newWithFS is the test seam for fault injection.
func newWithFS(fs fsOps) *Installer {
	return &Installer{fs: fs, now: time.Now}
}

// actionKind tags journal entries. Every entry is reversible (or explicitly
// known not to be, for overwrites without backup).
type actionKind int

const (
	actionMkdir actionKind = iota
	actionCopyNew
	actionOverwrite
	actionChmod
)

type action struct {
	kind       actionKind
	path       string
	backupPath string // actionOverwrite only; empty means irreversible
	prevMode   os.FileMode
	hasPrev    bool
}

// Install builds, validates, and executes a plan for the request. Request
// resolution failures (unknown component, dependency cycle) return an
// error; validation and execution failures return a Result with
// Success=false and the accumulated problems. DryRun walks the identical
// control flow against a record-only filesystem.
func (in *Installer) Install(reg *registry.Registry, inst plan.Installation, roots plan.Roots) (*Result, error) {
	start := in.now()

	p, err := plan.Build(reg, inst, roots)
	if err != nil {
		return nil, err
	}

	res := &Result{Warnings: append([]string{}, p.Warnings...)}
	defer func() { res.Duration = in.now().Sub(start) }()

	if !inst.Force {
		if problems := plan.Validate(p); len(problems) > 0 {
			for _, prob := range problems {
				res.Errors = append(res.Errors, prob.String())
			}
			return res, nil
		}
	}

	fs := in.fs
	if inst.DryRun {
		fs = &recordFS{}
	}

	var journal []action
	created := make(map[string]bool) // dirs already made in this run
	for _, step := range p.Steps {
		// A failing step can still have journaled mutations (a written
		// backup, partially created ancestors); they must be part of the
		// rollback.
		applied, err := applyStep(fs, step, inst.Backup, in.now(), created)
		journal = append(journal, applied...)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("step failed: %s: %v", step, err))
			res.Warnings = append(res.Warnings, rollback(fs, journal)...)
			return res, nil
		}
	}

	for _, act := range journal {
		switch act.kind {
		case actionMkdir:
			res.CreatedDirs = append(res.CreatedDirs, act.path)
		case actionCopyNew:
			res.ModifiedFiles = append(res.ModifiedFiles, act.path)
		case actionOverwrite:
			res.ModifiedFiles = append(res.ModifiedFiles, act.path)
			if act.backupPath != "" {
				res.BackupFiles = append(res.BackupFiles, act.backupPath)
			}
		}
	}
	for _, def := range p.Components {
		res.InstalledComponents = append(res.InstalledComponents, def.ID)
	}
	res.Success = true
	return res, nil
}

// applyStep performs one step and returns the journal entries it produced.
// Copying onto an identical destination is an idempotent no-op that leaves
// no journal entry.
func applyStep(fs fsOps, step plan.Step, backup bool, now time.Time, created map[string]bool) ([]action, error) {
	switch step.Kind {
	case plan.StepCreateDir:
		return ensureDir(fs, step.Path, created)

	case plan.StepCopyFile:
		if _, err := os.Stat(step.Path); err == nil {
			if sameContent(step.Source, step.Path) {
				return nil, nil
			}
			entry := action{kind: actionOverwrite, path: step.Path}
			if backup {
				entry.backupPath = backupName(step.Path, now)
				if err := fs.CopyFile(step.Path, entry.backupPath); err != nil {
					return nil, fmt.Errorf("backing up %s: %w", step.Path, err)
				}
			}
			// The entry is journaled even when the copy fails: a failed
			// overwrite may already have truncated the destination, and the
			// backup (if any) must be restored by rollback.
			if err := fs.CopyFile(step.Source, step.Path); err != nil {
				return []action{entry}, err
			}
			return []action{entry}, nil
		}
		if err := fs.CopyFile(step.Source, step.Path); err != nil {
			return nil, err
		}
		return []action{{kind: actionCopyNew, path: step.Path}}, nil

	case plan.StepSetPermission:
		entry := action{kind: actionChmod, path: step.Path}
		if info, err := os.Stat(step.Path); err == nil {
			entry.prevMode = info.Mode().Perm()
			entry.hasPrev = true
		}
		if err := fs.Chmod(step.Path, step.Mode); err != nil {
			return nil, err
		}
		return []action{entry}, nil

	default:
		return nil, fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

// ensureDir creates every missing ancestor of dir individually so each one
// lands in the journal and can be removed on rollback, deepest last. The
// created set keeps dry runs (which never see their own mkdirs on disk)
// from journaling a directory twice.
func ensureDir(fs fsOps, dir string, created map[string]bool) ([]action, error) {
	var missing []string
	for p := dir; ; p = filepath.Dir(p) {
		if created[p] {
			break
		}
		if _, err := os.Stat(p); err == nil {
			break
		}
		missing = append(missing, p)
		if filepath.Dir(p) == p {
			break
		}
	}

	var journal []action
	// missing is deepest-first; create shallowest-first.
	for i := len(missing) - 1; i >= 0; i-- {
		if err := fs.Mkdir(missing[i], 0755); err != nil && !os.IsExist(err) {
			return journal, err
		}
		created[missing[i]] = true
		journal = append(journal, action{kind: actionMkdir, path: missing[i]})
	}
	return journal, nil
}

// rollback replays the journal in reverse, undoing each mutation. It is
// best-effort: problems are reported as warnings, never as new failures.
func rollback(fs fsOps, journal []action) []string {
	var warnings []string
	for i := len(journal) - 1; i >= 0; i-- {
		act := journal[i]
		switch act.kind {
		case actionCopyNew:
			if err := fs.Remove(act.path); err != nil {
				warnings = append(warnings, fmt.Sprintf("rollback: removing %s: %v", act.path, err))
			}
		case actionOverwrite:
			if act.backupPath == "" {
				warnings = append(warnings, fmt.Sprintf(
					"rollback: %s was overwritten without backup and cannot be restored", act.path))
				continue
			}
			if err := fs.Remove(act.path); err != nil && !os.IsNotExist(err) {
				warnings = append(warnings, fmt.Sprintf("rollback: removing %s: %v", act.path, err))
			}
			if err := fs.Rename(act.backupPath, act.path); err != nil {
				warnings = append(warnings, fmt.Sprintf(
					"rollback: restoring %s from %s: %v", act.path, act.backupPath, err))
			}
		case actionChmod:
			if act.hasPrev {
				if err := fs.Chmod(act.path, act.prevMode); err != nil {
					warnings = append(warnings, fmt.Sprintf("rollback: chmod %s: %v", act.path, err))
				}
			}
		case actionMkdir:
			if err := fs.RemoveDirIfEmpty(act.path); err != nil {
				warnings = append(warnings, fmt.Sprintf("rollback: rmdir %s: %v", act.path, err))
			}
		}
	}
	return warnings
}

// backupName derives a timestamped sibling path for a backup copy.
func backupName(path string, now time.Time) string {
	return path + ".backup." + now.Format("20060102-150405")
}
