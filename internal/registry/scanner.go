package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kitforge-dev/kitforge/internal/component"
)

// Roots names the three source directories scanned for components. Empty
// entries are skipped.
type Roots struct {
	CommandDir string
	HookDir    string
	AgentDir   string
}

// Options control a scan.
type Options struct {
	IncludeDisabled bool
	ForceRefresh    bool
	IgnoreGlobs     []string // doublestar patterns, merged with defaults
}

// defaultIgnoreGlobs are always skipped during a walk.
var defaultIgnoreGlobs = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/.*",
}

// parserFunc is the per-kind parse entry point.
type parserFunc func(path, relPath string) (*component.Definition, error)

// rootSpec pairs a root directory with its kind, extension, and parser.
type rootSpec struct {
	dir    string
	kind   component.Kind
	ext    string
	parser parserFunc
}

func (r Roots) specs() []rootSpec {
	return []rootSpec{
		{r.CommandDir, component.KindCommand, ".md", component.ParseCommand},
		{r.HookDir, component.KindHook, ".sh", component.ParseHook},
		{r.AgentDir, component.KindAgent, ".md", component.ParseAgent},
	}
}

// scanResult is the per-root fan-in payload.
type scanResult struct {
	defs     []*component.Definition
	warnings []string
}

// scan walks all roots and builds a fresh Registry snapshot. Each root is
// walked in its own goroutine; parsing within a root stays sequential.
// Files that fail to parse are skipped with a warning, never fatal.
func scan(roots Roots, opts Options) (*Registry, error) {
	specs := roots.specs()
	results := make([]scanResult, len(specs))
	ignore := append(append([]string{}, defaultIgnoreGlobs...), opts.IgnoreGlobs...)

	var wg sync.WaitGroup
	for i, spec := range specs {
		if spec.dir == "" {
			continue
		}
		wg.Add(1)
		go func(i int, spec rootSpec) {
			defer wg.Done()
			results[i] = walkRoot(spec, ignore, opts)
		}(i, spec)
	}
	wg.Wait()

	components := make(map[string]*component.Definition)
	var warnings []string
	for _, res := range results {
		warnings = append(warnings, res.warnings...)
		for _, def := range res.defs {
			if prev, ok := components[def.ID]; ok {
				warnings = append(warnings, fmt.Sprintf(
					"duplicate component id %q (%s shadows %s)",
					def.ID, prev.SourcePath, def.SourcePath))
				continue
			}
			components[def.ID] = def
		}
	}
	sort.Strings(warnings)

	return newRegistry(components, warnings), nil
}

// walkRoot walks one source root, parsing every candidate file.
func walkRoot(spec rootSpec, ignore []string, opts Options) scanResult {
	var res scanResult

	if _, err := os.Stat(spec.dir); err != nil {
		if !os.IsNotExist(err) {
			res.warnings = append(res.warnings, fmt.Sprintf("skipping %s: %v", spec.dir, err))
		}
		return res
	}

	err := filepath.WalkDir(spec.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			res.warnings = append(res.warnings, fmt.Sprintf("skipping %s: %v", path, err))
			return nil
		}

		rel, relErr := filepath.Rel(spec.dir, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if ignored(rel, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), spec.ext) {
			res.warnings = append(res.warnings, fmt.Sprintf(
				"skipped %s: not a %s file", path, string(spec.kind)))
			return nil
		}

		def, parseErr := spec.parser(path, rel)
		if parseErr != nil {
			res.warnings = append(res.warnings, fmt.Sprintf("skipped: %v", parseErr))
			return nil
		}
		if !def.Enabled && !opts.IncludeDisabled {
			return nil
		}
		for _, w := range def.Warnings {
			res.warnings = append(res.warnings, fmt.Sprintf("%s: %s", def.ID, w))
		}
		res.defs = append(res.defs, def)
		return nil
	})
	if err != nil {
		res.warnings = append(res.warnings, fmt.Sprintf("walking %s: %v", spec.dir, err))
	}

	return res
}

// ignored matches a root-relative path against the ignore globs.
func ignored(rel string, globs []string) bool {
	if rel == "." {
		return false
	}
	for _, glob := range globs {
		if ok, err := doublestar.Match(glob, rel); err == nil && ok {
			return true
		}
	}
	return false
}
