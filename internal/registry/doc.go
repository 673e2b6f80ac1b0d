// Package registry handles component discovery and indexing. It scans the
// command, hook, and agent source roots, builds a dependency graph with
// cycle detection, and exposes the result as an immutable Registry
// snapshot. Snapshots are memoized per root tuple by Cache.
package registry
