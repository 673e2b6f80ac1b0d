package registry

import (
	"sort"
	"strings"
	"time"

	"github.com/kitforge-dev/kitforge/internal/component"
)

// Registry is the queryable result of a scan: components indexed by id,
// grouped by category, with a precomputed dependency graph. A Registry is
// a read-only snapshot; a rescan replaces it wholesale.
type Registry struct {
	Components map[string]*component.Definition
	Categories map[string][]string // category -> sorted ids
	Graph      *Graph
	Warnings   []string // skip/parse warnings accumulated during the scan
	LastScan   time.Time
	CacheValid bool // true when this snapshot was served from the cache
}

// newRegistry indexes a component set and builds its graph.
func newRegistry(components map[string]*component.Definition, warnings []string) *Registry {
	categories := make(map[string][]string)
	for id, def := range components {
		categories[def.Category] = append(categories[def.Category], id)
	}
	for cat := range categories {
		sort.Strings(categories[cat])
	}

	return &Registry{
		Components: components,
		Categories: categories,
		Graph:      buildGraph(components),
		Warnings:   warnings,
		LastScan:   time.Now(),
	}
}

// Get returns the component with the given id.
func (r *Registry) Get(id string) (*component.Definition, bool) {
	def, ok := r.Components[id]
	return def, ok
}

// IDs returns all component ids in ascending order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.Components))
	for id := range r.Components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ByCategory returns the sorted ids in a category.
func (r *Registry) ByCategory(category string) []string {
	return append([]string{}, r.Categories[category]...)
}

// ByKind returns all definitions of the given kind, sorted by id.
func (r *Registry) ByKind(kind component.Kind) []*component.Definition {
	var out []*component.Definition
	for _, id := range r.IDs() {
		if def := r.Components[id]; def.Kind == kind {
			out = append(out, def)
		}
	}
	return out
}

// Search returns definitions whose id, name, or description contains the
// query (case-insensitive substring), sorted by id. An empty query matches
// everything.
func (r *Registry) Search(query string) []*component.Definition {
	query = strings.ToLower(query)
	var out []*component.Definition
	for _, id := range r.IDs() {
		def := r.Components[id]
		if query == "" ||
			strings.Contains(strings.ToLower(def.ID), query) ||
			strings.Contains(strings.ToLower(def.Name), query) ||
			strings.Contains(strings.ToLower(def.Description), query) {
			out = append(out, def)
		}
	}
	return out
}

// Dependencies returns the direct dependency ids of a component.
func (r *Registry) Dependencies(id string) []string {
	return r.Graph.Dependencies(id)
}

// Dependents returns the ids that directly depend on a component.
func (r *Registry) Dependents(id string) []string {
	return r.Graph.Dependents(id)
}

// External returns the sorted ids of dependency targets that no scanned
// component provides.
func (r *Registry) External() []string {
	var out []string
	for id, node := range r.Graph.Nodes {
		if node.External {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
