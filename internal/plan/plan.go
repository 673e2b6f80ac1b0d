package plan

import (
	"fmt"
	"os"

	"github.com/kitforge-dev/kitforge/internal/component"
	"github.com/kitforge-dev/kitforge/internal/project"
)

// Target selects which install roots a plan covers.
type Target string

const (
	TargetUser    Target = "user"
	TargetProject Target = "project"
	TargetBoth    Target = "both"
)

// Valid reports whether t is a recognized target.
func (t Target) Valid() bool {
	switch t {
	case TargetUser, TargetProject, TargetBoth:
		return true
	}
	return false
}

// Roots holds the destination directories for the two install targets.
type Roots struct {
	UserDir    string
	ProjectDir string
}

// dirs returns the destination roots covered by a target, user first.
func (r Roots) dirs(t Target) []string {
	switch t {
	case TargetUser:
		return []string{r.UserDir}
	case TargetProject:
		return []string{r.ProjectDir}
	default:
		return []string{r.UserDir, r.ProjectDir}
	}
}

// StepKind tags the install step variants.
type StepKind string

const (
	StepCreateDir     StepKind = "create-directory"
	StepCopyFile      StepKind = "copy-file"
	StepSetPermission StepKind = "set-permission"
)

// Step is one planned filesystem operation. Path is the directory to
// create, the copy destination, or the chmod target depending on Kind.
type Step struct {
	Kind        StepKind
	Path        string
	Source      string      // copy-file only
	Mode        os.FileMode // set-permission only
	ComponentID string      // empty for shared directory steps
}

func (s Step) String() string {
	switch s.Kind {
	case StepCreateDir:
		return fmt.Sprintf("create-directory %s", s.Path)
	case StepCopyFile:
		return fmt.Sprintf("copy-file %s -> %s", s.Source, s.Path)
	case StepSetPermission:
		return fmt.Sprintf("set-permission %s %o", s.Path, s.Mode)
	default:
		return string(s.Kind)
	}
}

// Plan is an ordered, dependency-respecting description of an install.
type Plan struct {
	Components []*component.Definition // resolved, dependency-ordered
	Target     Target
	Steps      []Step
	Warnings   []string
}

// Installation is an install request.
type Installation struct {
	Components          []string // requested ids
	Target              Target
	Backup              bool
	DryRun              bool
	Force               bool // bypass validation
	InstallDependencies bool
	Project             *project.Context
}

// NotFoundError reports an explicitly requested id missing from the registry.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("component %q not found", e.ID)
}
