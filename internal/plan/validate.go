package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kitforge-dev/kitforge/internal/platform"
)

// Problem is one blocking issue found while validating a plan.
type Problem struct {
	Step   Step
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Step, p.Reason)
}

// Validate inspects a plan against the live filesystem and returns every
// blocking problem found. It is strictly read-only and never fails fast:
// all problems are accumulated so the caller can report them at once.
func Validate(p *Plan) []Problem {
	var problems []Problem

	for _, step := range p.Steps {
		switch step.Kind {
		case StepCreateDir:
			if reason, ok := creatable(step.Path); !ok {
				problems = append(problems, Problem{Step: step, Reason: reason})
			}
		case StepCopyFile:
			if info, err := os.Stat(step.Source); err != nil {
				problems = append(problems, Problem{Step: step, Reason: "source not found"})
			} else if info.IsDir() {
				problems = append(problems, Problem{Step: step, Reason: "source is a directory"})
			} else if !platform.Readable(step.Source) {
				problems = append(problems, Problem{Step: step, Reason: "source is not readable"})
			}
			if reason, ok := writableDest(step.Path); !ok {
				problems = append(problems, Problem{Step: step, Reason: reason})
			}
		case StepSetPermission:
			// The target is produced by an earlier copy step; only its
			// parent needs to be reachable, which the copy check covers.
		}
	}

	return problems
}

// creatable reports whether dir exists or can be created, by walking up to
// the nearest existing ancestor and checking it is a writable directory.
func creatable(dir string) (string, bool) {
	anc := nearestExisting(dir)
	info, err := os.Stat(anc)
	if err != nil {
		return fmt.Sprintf("cannot inspect %s", anc), false
	}
	if !info.IsDir() {
		return fmt.Sprintf("%s is not a directory", anc), false
	}
	if !platform.Writable(anc) {
		return "no write permission", false
	}
	return "", true
}

// writableDest checks the copy destination: the file itself when present,
// otherwise its nearest existing ancestor directory.
func writableDest(dest string) (string, bool) {
	if _, err := os.Stat(dest); err == nil {
		if !platform.Writable(dest) {
			return "no write permission", false
		}
		return "", true
	}
	return creatable(filepath.Dir(dest))
}

// nearestExisting walks up from path to the closest path that exists.
func nearestExisting(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
