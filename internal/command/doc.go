// Package command renders and runs external platform packaging tools.
//
// A Command keeps flags in the exact order the caller supplied them, which
// makes rendered invocations deterministic: the same inputs always produce
// the same command line, both for human-readable logs and for test
// assertions against the per-format documented argument order.
package command
