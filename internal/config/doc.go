// Package config defines the global packaging settings consumed read-only by
// every format backend: base directories for artifacts and scratch space plus
// code-signing toggles. Settings are an explicit struct passed into packagers
// rather than ambient process state, so builds stay testable in isolation.
package config
