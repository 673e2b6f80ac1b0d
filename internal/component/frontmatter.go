package component

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"
)

// frontMatter mirrors the YAML header of command and agent files.
type frontMatter struct {
	Description  string     `yaml:"description"`
	AllowedTools stringList `yaml:"allowed-tools"`
	ArgumentHint string     `yaml:"argument-hint"`
	Category     string     `yaml:"category"`
	Version      string     `yaml:"version"`
	Author       string     `yaml:"author"`
	Platforms    []string   `yaml:"platforms"`
	Dependencies []string   `yaml:"dependencies"`
	Disabled     bool       `yaml:"disabled"`

	// Agent-only extensions.
	Name   string   `yaml:"name"`
	Color  string   `yaml:"color"`
	Bundle []string `yaml:"bundle"`
}

// commandKeys and agentKeys are the recognized front-matter keys per kind.
// Anything else is preserved as a warning on the definition.
var commandKeys = map[string]bool{
	"description": true, "allowed-tools": true, "argument-hint": true,
	"category": true, "version": true, "author": true,
	"platforms": true, "dependencies": true, "disabled": true,
}

var agentKeys = map[string]bool{
	"description": true, "allowed-tools": true, "argument-hint": true,
	"category": true, "version": true, "author": true,
	"platforms": true, "dependencies": true, "disabled": true,
	"name": true, "color": true, "bundle": true,
}

// stringList accepts either a YAML sequence or a single comma-separated
// scalar. Command files commonly write `allowed-tools: Bash(git:*), Read`.
type stringList []string

func (s *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*s = splitCommaList(raw)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*s = items
		return nil
	default:
		return fmt.Errorf("expected string or list, got yaml kind %d", value.Kind)
	}
}

// ParseCommand parses a command markdown file into a Definition.
func ParseCommand(path, relPath string) (*Definition, error) {
	return parseDeclarative(path, relPath, KindCommand)
}

// ParseAgent parses an agent markdown file into a Definition.
func ParseAgent(path, relPath string) (*Definition, error) {
	return parseDeclarative(path, relPath, KindAgent)
}

func parseDeclarative(path, relPath string, kind Kind) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	header, err := extractFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return nil, fmt.Errorf("parsing front-matter of %s: %w", path, err)
	}
	if strings.TrimSpace(fm.Description) == "" {
		return nil, fmt.Errorf("%s: front-matter is missing required field %q", path, "description")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	id := IDFromRelPath(relPath)
	def := &Definition{
		ID:           id,
		Kind:         kind,
		Name:         id,
		Description:  strings.TrimSpace(fm.Description),
		Category:     fm.Category,
		Dependencies: dedupeSorted(fm.Dependencies),
		Platforms:    fm.Platforms,
		Version:      fm.Version,
		Author:       fm.Author,
		Enabled:      !fm.Disabled,
		SourcePath:   path,
		RelPath:      toSlashRel(relPath),
		LastModified: info.ModTime(),
	}

	switch kind {
	case KindCommand:
		def.Command = &CommandMeta{
			AllowedTools: fm.AllowedTools,
			ArgumentHint: fm.ArgumentHint,
		}
	case KindAgent:
		if fm.Name != "" {
			def.Name = fm.Name
		}
		def.Agent = &AgentMeta{
			AllowedTools: fm.AllowedTools,
			ArgumentHint: fm.ArgumentHint,
			DisplayName:  fm.Name,
			Color:        fm.Color,
			Bundle:       dedupeSorted(fm.Bundle),
		}
	}

	def.Warnings = append(def.Warnings, unknownKeyWarnings(header, kind)...)
	checkVersion(def)

	// Explicit category always wins; the classifier only fills gaps.
	if def.Category == "" {
		def.Category = Classify(def.ID, def.Description)
	}

	return def, nil
}

// extractFrontMatter returns the YAML bytes between the leading "---"
// delimiters. The body after the closing delimiter is free-form text and
// is not interpreted here.
func extractFrontMatter(data []byte) ([]byte, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return nil, fmt.Errorf("no front-matter block found")
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, fmt.Errorf("front-matter block is not terminated")
	}
	return []byte(rest[:end+1]), nil
}

// unknownKeyWarnings diffs the header keys against the known set for the
// kind. Unknown keys are advisory only; strict schema linting is a
// separate concern.
func unknownKeyWarnings(header []byte, kind Kind) []string {
	known := commandKeys
	if kind == KindAgent {
		known = agentKeys
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(header, &raw); err != nil {
		return nil
	}

	var keys []string
	for k := range raw {
		if !known[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	var warnings []string
	for _, k := range dedupeSorted(keys) {
		warnings = append(warnings, fmt.Sprintf("unknown front-matter key %q", k))
	}
	return warnings
}

// checkVersion validates the optional version field with semver, tolerating
// a leading "v". An unparseable version is a warning, never an error.
func checkVersion(def *Definition) {
	if def.Version == "" {
		return
	}
	v := strings.TrimPrefix(def.Version, "v")
	if _, err := semver.NewVersion(v); err != nil {
		def.Warnings = append(def.Warnings,
			fmt.Sprintf("version %q is not valid semver", def.Version))
	}
}

// splitCommaList splits a comma-separated scalar into trimmed items.
func splitCommaList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toSlashRel(rel string) string {
	return strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./")
}
