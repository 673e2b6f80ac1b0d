// Package install applies a validated plan step by step, tracking every
// mutation in an append-only journal so that a failing step triggers a
// reverse-order rollback. Execution is deliberately sequential; rollback
// correctness depends on a strict, reversible order of mutations. A
// record-only filesystem backs dry runs, which walk the exact same code
// path without touching disk.
package install
