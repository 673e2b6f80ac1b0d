// Package config manages the user-level config file (~/.kitforge/
// config.yaml) through Viper, with environment variable overrides under
// the KITFORGE_ prefix. Loaded files are checked against an embedded JSON
// schema; issues are surfaced as warnings and never block the CLI.
package config
