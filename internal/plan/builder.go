package plan

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/kitforge-dev/kitforge/internal/component"
	"github.com/kitforge-dev/kitforge/internal/platform"
	"github.com/kitforge-dev/kitforge/internal/project"
	"github.com/kitforge-dev/kitforge/internal/registry"
)

// Build produces an install plan for the requested components against the
// given destination roots. Explicitly requested ids must exist; missing
// dependencies become warnings (or are auto-added when inst.
// InstallDependencies is set). A cycle in the requested subgraph is fatal.
func Build(reg *registry.Registry, inst Installation, roots Roots) (*Plan, error) {
	target := inst.Target
	if target == "" {
		target = TargetUser
	}
	if !target.Valid() {
		return nil, fmt.Errorf("unknown install target %q", target)
	}

	for _, id := range inst.Components {
		if _, ok := reg.Get(id); !ok {
			return nil, &NotFoundError{ID: id}
		}
	}

	p := &Plan{Target: target}

	ids, warnings := expand(reg, inst)
	p.Warnings = append(p.Warnings, warnings...)

	order, err := reg.Graph.ResolveOrder(ids)
	if err != nil {
		return nil, err
	}

	// ResolveOrder returns the whole reachable subgraph; keep only the
	// expanded selection so unselected dependencies stay out of the plan.
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	for _, id := range order {
		if !selected[id] {
			continue
		}
		def, ok := reg.Get(id)
		if !ok {
			continue // external or unresolved dependency, already warned
		}
		if skip, why := platformExcluded(def); skip {
			p.Warnings = append(p.Warnings, why)
			continue
		}
		p.Components = append(p.Components, def)
	}

	for _, root := range roots.dirs(target) {
		appendRootSteps(p, root)
	}

	if inst.Project != nil {
		p.Warnings = append(p.Warnings, contextWarnings(*inst.Project, p.Components)...)
	}

	return p, nil
}

// expand resolves the requested set: with InstallDependencies the full
// transitive closure is included; otherwise missing selections are only
// reported. Dependencies absent from the registry warn in both modes.
func expand(reg *registry.Registry, inst Installation) ([]string, []string) {
	requested := make(map[string]bool)
	for _, id := range inst.Components {
		requested[id] = true
	}

	var warnings []string
	ids := make([]string, 0, len(requested))

	if inst.InstallDependencies {
		var visit func(id string)
		visit = func(id string) {
			if requested[id] {
				return
			}
			requested[id] = true
			for _, dep := range reg.Graph.Dependencies(id) {
				visit(dep)
			}
		}
		for _, id := range inst.Components {
			for _, dep := range reg.Graph.Dependencies(id) {
				visit(dep)
			}
		}
		for id := range requested {
			if _, ok := reg.Get(id); !ok {
				warnings = append(warnings, fmt.Sprintf(
					"dependency %q is not in the registry and will not be installed", id))
				delete(requested, id)
			}
		}
	} else {
		for _, id := range inst.Components {
			for _, dep := range reg.Graph.Dependencies(id) {
				if !requested[dep] {
					warnings = append(warnings, fmt.Sprintf(
						"%s depends on %q, which is not selected", id, dep))
				}
			}
		}
	}

	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	sort.Strings(warnings)
	return ids, warnings
}

// appendRootSteps emits the steps for one destination root: deduplicated
// directory creation first, then copies in dependency order, then
// permission fixes for hooks.
func appendRootSteps(p *Plan, root string) {
	dirSet := make(map[string]bool)
	var dirs []string
	for _, def := range p.Components {
		dir := filepath.Dir(destPath(root, def))
		if !dirSet[dir] {
			dirSet[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		p.Steps = append(p.Steps, Step{Kind: StepCreateDir, Path: dir})
	}

	for _, def := range p.Components {
		p.Steps = append(p.Steps, Step{
			Kind:        StepCopyFile,
			Source:      def.SourcePath,
			Path:        destPath(root, def),
			ComponentID: def.ID,
		})
	}

	for _, def := range p.Components {
		if def.Kind != component.KindHook {
			continue
		}
		p.Steps = append(p.Steps, Step{
			Kind:        StepSetPermission,
			Path:        destPath(root, def),
			Mode:        platform.ExecutableMode,
			ComponentID: def.ID,
		})
	}
}

// destPath computes <root>/<kind-subdir>/<relative-name> for a component.
func destPath(root string, def *component.Definition) string {
	return filepath.Join(root, def.Kind.Subdir(), filepath.FromSlash(def.RelPath))
}

// platformExcluded reports whether a component's platform list excludes the
// current GOOS.
func platformExcluded(def *component.Definition) (bool, string) {
	if len(def.Platforms) == 0 {
		return false, ""
	}
	for _, p := range def.Platforms {
		if strings.EqualFold(p, runtime.GOOS) {
			return false, ""
		}
	}
	return true, fmt.Sprintf("%s is not supported on %s and was skipped", def.ID, runtime.GOOS)
}

// contextWarnings compares the selection against detected project tooling.
// These are purely informational and never block an install.
func contextWarnings(ctx project.Context, components []*component.Definition) []string {
	matches := func(category, keyword string) bool {
		for _, def := range components {
			if def.Category != category {
				continue
			}
			text := strings.ToLower(def.ID + " " + def.Description)
			if strings.Contains(text, keyword) {
				return true
			}
		}
		return false
	}

	var warnings []string
	if ctx.TypeChecker != "" && !matches(component.CategoryValidation, "typecheck") {
		warnings = append(warnings, fmt.Sprintf(
			"type checker (%s) detected but no type-checking component selected", ctx.TypeChecker))
	}
	if ctx.Linter != "" && !matches(component.CategoryValidation, "lint") {
		warnings = append(warnings, fmt.Sprintf(
			"linter (%s) detected but no lint component selected", ctx.Linter))
	}
	if ctx.TestFramework != "" && !matches(component.CategoryTesting, "test") {
		warnings = append(warnings, fmt.Sprintf(
			"test framework (%s) detected but no test component selected", ctx.TestFramework))
	}
	if ctx.PackageManager != "" {
		for _, def := range components {
			if def.Hook == nil {
				continue
			}
			for _, tool := range def.Hook.ExternalTools {
				if packageManagers[tool] && tool != ctx.PackageManager {
					warnings = append(warnings, fmt.Sprintf(
						"%s invokes %s but the project uses %s", def.ID, tool, ctx.PackageManager))
				}
			}
		}
	}
	return warnings
}

// packageManagers are the tool names that identify a package manager among
// a hook's external tools.
var packageManagers = map[string]bool{
	"npm": true, "pnpm": true, "yarn": true, "bun": true,
}
