// Package version exposes build metadata (semantic version, commit, build
// time) injected at link time and a cobra subcommand that prints it.
package version
