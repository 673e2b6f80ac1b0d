// Package component defines the component data model and the per-kind
// parsers that turn a source file into a Definition. Commands and agents
// are markdown files with a YAML front-matter header; hooks are shell
// scripts with a banner comment. Parse failures are reported as errors so
// the scanner can skip the file with a warning instead of aborting.
package component
