package component

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// wellKnownTools is the fixed allow-list of external tool names that count
// as dependency signals when invoked in a hook body. They resolve to
// external graph nodes, not installable components.
var wellKnownTools = []string{"git", "npm", "pnpm", "yarn", "bun"}

// hookPathPattern matches invocations of sibling hooks by path, e.g.
// "$KITFORGE_DIR/hooks/lint-changed.sh" or "./hooks/git/pre-push.sh".
var hookPathPattern = regexp.MustCompile(`hooks/([A-Za-z0-9._/-]+)\.sh`)

// bannerFields maps recognized banner keys to their Definition slot.
const (
	bannerDescription  = "description"
	bannerCategory     = "category"
	bannerDependencies = "dependencies"
	bannerVersion      = "version"
)

// ParseHook parses a hook shell script into a Definition. The expected
// layout is a shebang line, a banner comment with Description/Category/
// Dependencies/Version fields, and an optional `set` line whose flags are
// captured verbatim.
func ParseHook(path, relPath string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("%s: binary content", path)
	}
	if !bytes.HasPrefix(data, []byte("#!")) {
		return nil, fmt.Errorf("%s: missing shebang line", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	id := IDFromRelPath(relPath)
	def := &Definition{
		ID:           id,
		Kind:         KindHook,
		Name:         id,
		Enabled:      true,
		SourcePath:   path,
		RelPath:      toSlashRel(relPath),
		LastModified: info.ModTime(),
		Hook:         &HookMeta{},
	}

	var deps []string
	parseBanner(data, def, &deps)
	if def.Description == "" {
		return nil, fmt.Errorf("%s: banner is missing required field %q", path, "Description")
	}

	// Body heuristics: sibling hook invocations and allow-listed tools.
	body := string(data)
	for _, m := range hookPathPattern.FindAllStringSubmatch(body, -1) {
		depID := IDFromRelPath(m[1] + ".sh")
		if depID != id {
			deps = append(deps, depID)
		}
	}
	for _, tool := range wellKnownTools {
		if invokesTool(body, tool) {
			deps = append(deps, tool)
			def.Hook.ExternalTools = append(def.Hook.ExternalTools, tool)
		}
	}

	def.Dependencies = dedupeSorted(deps)
	checkVersion(def)

	if def.Category == "" {
		def.Category = Classify(def.ID, def.Description)
	}

	return def, nil
}

// parseBanner reads the leading comment block (after the shebang) and the
// first `set` line. Scanning stops at the first line that is neither a
// comment, a `set` line, nor blank.
func parseBanner(data []byte, def *Definition, deps *[]string) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			continue // shebang
		}
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "set "):
			def.Hook.ShellOptions = strings.Fields(line)[1:]
			continue
		case strings.HasPrefix(line, "#"):
			key, value, ok := bannerField(line)
			if !ok {
				continue
			}
			switch key {
			case bannerDescription:
				def.Description = value
			case bannerCategory:
				def.Category = value
			case bannerDependencies:
				*deps = append(*deps, splitCommaList(value)...)
			case bannerVersion:
				def.Version = value
			default:
				def.Warnings = append(def.Warnings,
					fmt.Sprintf("unknown banner field %q", key))
			}
			continue
		default:
			return // first body line ends the banner
		}
	}
}

// bannerField splits "# Description: run linters" into ("description",
// "run linters", true). Plain comments without a colon are not fields.
func bannerField(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(strings.TrimLeft(line, "#"))
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	value = strings.TrimSpace(line[idx+1:])
	// Only single-word keys are banner fields; anything else is prose.
	if strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, value, true
}

// toolPatterns match allow-listed tools as standalone command words.
var toolPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(wellKnownTools))
	for _, tool := range wellKnownTools {
		m[tool] = regexp.MustCompile(`(?m)(^|[\s;|&$(])` + regexp.QuoteMeta(tool) + `(\s|$)`)
	}
	return m
}()

// invokesTool reports whether body contains tool as a standalone word.
func invokesTool(body, tool string) bool {
	return toolPatterns[tool].MatchString(body)
}
