// Package metadata defines the project metadata view consumed by every
// packaging backend: product naming, versioning, install locations and
// per-format platform identifiers, including the deterministic placeholder
// identifier derivation used when none is configured.
package metadata
