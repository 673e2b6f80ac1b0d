package component

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Kind identifies the component flavor. The set is closed: commands and
// agents are declarative markdown definitions, hooks are shell scripts.
type Kind string

const (
	KindCommand Kind = "command"
	KindHook    Kind = "hook"
	KindAgent   Kind = "agent"
)

// Subdir returns the per-kind subdirectory name used inside install roots.
func (k Kind) Subdir() string {
	switch k {
	case KindCommand:
		return "commands"
	case KindHook:
		return "hooks"
	case KindAgent:
		return "agents"
	default:
		return string(k) + "s"
	}
}

// Category values assigned explicitly or by the keyword classifier.
const (
	CategoryGit        = "git"
	CategoryValidation = "validation"
	CategoryTesting    = "testing"
	CategoryWorkflow   = "workflow"
	CategoryUtility    = "utility"
)

// Categories lists all recognized category names.
var Categories = []string{
	CategoryGit,
	CategoryValidation,
	CategoryTesting,
	CategoryWorkflow,
	CategoryUtility,
}

// Definition is a parsed component. Exactly one of Command, Agent, or Hook
// is non-nil, matching Kind.
type Definition struct {
	ID           string
	Kind         Kind
	Name         string
	Description  string
	Category     string
	Dependencies []string // component ids, sorted and deduplicated
	Platforms    []string // GOOS names; empty means all platforms
	Version      string
	Author       string
	Enabled      bool
	SourcePath   string // absolute path of the source file
	RelPath      string // path relative to the scan root, slash-separated
	LastModified time.Time
	Warnings     []string // non-fatal issues found while parsing

	Command *CommandMeta
	Agent   *AgentMeta
	Hook    *HookMeta
}

// CommandMeta holds command-specific front-matter fields.
type CommandMeta struct {
	AllowedTools []string
	ArgumentHint string
}

// AgentMeta holds agent-specific front-matter fields.
type AgentMeta struct {
	AllowedTools []string
	ArgumentHint string
	DisplayName  string
	Color        string
	Bundle       []string // ids of components this agent bundles
}

// HookMeta holds hook-specific header metadata.
type HookMeta struct {
	ShellOptions  []string // captured verbatim from the `set` line
	ExternalTools []string // allow-listed tool names seen in the body
}

// IDFromRelPath derives a component id from a root-relative path:
// separators are flattened to hyphens and the extension is stripped.
// "git/commit.md" -> "git-commit".
func IDFromRelPath(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(rel, "/", "-")
}

// dedupeSorted returns a sorted copy of ids with duplicates and empty
// strings removed.
func dedupeSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
