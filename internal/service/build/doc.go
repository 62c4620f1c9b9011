// Package build drives a packaging run: it loads global settings and project
// metadata, selects the backend for each requested format and builds the
// artifacts sequentially, logging planned and produced filenames.
package build
