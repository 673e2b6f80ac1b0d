// Package project models the characteristics of a target project that the
// planner consults for advisory warnings. The engine treats the Context
// value as opaque; Detect is a convenience sniffing common config files.
package project

import (
	"os"
	"path/filepath"
)

// Context describes tools detected in a target project. Empty fields mean
// "not detected". The planner only ever derives warnings from it.
type Context struct {
	TypeChecker    string
	Linter         string
	TestFramework  string
	PackageManager string
}

// Empty reports whether nothing was detected.
func (c Context) Empty() bool {
	return c == Context{}
}

// marker associates a filename with the tool it indicates. Slices keep
// detection order deterministic when several markers coexist.
type marker struct {
	file string
	tool string
}

var (
	typeCheckerMarkers = []marker{
		{"tsconfig.json", "tsc"},
	}
	linterMarkers = []marker{
		{".eslintrc", "eslint"},
		{".eslintrc.json", "eslint"},
		{".eslintrc.js", "eslint"},
		{"eslint.config.js", "eslint"},
		{"eslint.config.mjs", "eslint"},
		{"biome.json", "biome"},
	}
	testMarkers = []marker{
		{"vitest.config.ts", "vitest"},
		{"vitest.config.js", "vitest"},
		{"jest.config.js", "jest"},
		{"jest.config.ts", "jest"},
	}
	packageManagerMarkers = []marker{
		{"pnpm-lock.yaml", "pnpm"},
		{"yarn.lock", "yarn"},
		{"bun.lockb", "bun"},
		{"package-lock.json", "npm"},
	}
)

// Detect sniffs well-known marker files in dir and returns the resulting
// Context. Missing directories yield an empty Context, never an error.
func Detect(dir string) Context {
	return Context{
		TypeChecker:    firstMarker(dir, typeCheckerMarkers),
		Linter:         firstMarker(dir, linterMarkers),
		TestFramework:  firstMarker(dir, testMarkers),
		PackageManager: firstMarker(dir, packageManagerMarkers),
	}
}

func firstMarker(dir string, markers []marker) string {
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
			return m.tool
		}
	}
	return ""
}
