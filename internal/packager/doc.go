// Package packager turns a staged install tree plus project metadata into a
// platform-native installer artifact.
//
// Every format backend implements the same contract: validate required
// metadata, resolve per-format staging and temp directories, generate the
// platform's metadata documents, and drive the native packaging tool with a
// fixed, deterministic argument order. Backends never retry; failures are
// surfaced to the driver as typed errors carrying enough context to act on.
package packager
