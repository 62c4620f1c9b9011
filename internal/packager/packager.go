package packager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/pkgsmith/internal/command"
	"github.com/oshokin/pkgsmith/internal/config"
	"github.com/oshokin/pkgsmith/internal/metadata"
)

// Supported package formats. The set is closed on purpose: an unknown format
// fails at selection time instead of surfacing halfway through a build.
const (
	FormatPkg      = "pkg"
	FormatDmg      = "dmg"
	FormatDeb      = "deb"
	FormatRPM      = "rpm"
	FormatMSI      = "msi"
	FormatMakeself = "makeself"
	FormatSolaris  = "solaris"
)

// Packager is the contract every format backend implements.
// Build runs the same four-step protocol in every backend:
// validate, stage files, generate metadata documents, invoke native tools.
type Packager interface {
	// Format returns the format name this backend produces.
	Format() string
	// Validate checks that required metadata for this format is present.
	Validate() error
	// ArtifactName is a pure function of project metadata returning the
	// final artifact filename. It is callable before any build step.
	ArtifactName() string
	// Build produces the artifact and returns its absolute path.
	// Any failure aborts the remaining steps; retry policy belongs to
	// the caller.
	Build(ctx context.Context) (string, error)
}

// Formats lists the supported format names in a stable order.
func Formats() []string {
	return []string{
		FormatPkg,
		FormatDmg,
		FormatDeb,
		FormatRPM,
		FormatMSI,
		FormatMakeself,
		FormatSolaris,
	}
}

// New returns the backend for the requested format.
func New(format string, project *metadata.Project, settings *config.Settings, runner command.Runner) (Packager, error) {
	b := base{
		project:  project,
		settings: settings,
		runner:   runner,
		format:   format,
	}

	switch format {
	case FormatPkg:
		return &macPkg{base: b}, nil
	case FormatDmg:
		return &macDmg{base: b}, nil
	case FormatDeb:
		return &deb{base: b}, nil
	case FormatRPM:
		return &rpm{base: b}, nil
	case FormatMSI:
		return &msi{base: b}, nil
	case FormatMakeself:
		return &makeself{base: b}, nil
	case FormatSolaris:
		return &solaris{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// base carries the state shared by every backend: the borrowed project view,
// global settings, the tool runner and the per-format directory layout.
type base struct {
	project  *metadata.Project
	settings *config.Settings
	runner   command.Runner
	format   string

	// stagingDir and tempDir are resolved absolute paths under
	// <package_tmp>/<format>/; outputDir is the resolved package_dir.
	stagingDir string
	tempDir    string
	outputDir  string
}

// resolvePaths computes and creates the staging, temp and output directories.
// Each format owns its own subtree, so concurrent format builds never write
// the same path.
func (b *base) resolvePaths() error {
	tempDir, err := filepath.Abs(filepath.Join(b.settings.PackageTmp, b.format))
	if err != nil {
		return &PathResolutionError{Path: b.settings.PackageTmp, Err: err}
	}

	outputDir, err := filepath.Abs(b.settings.PackageDir)
	if err != nil {
		return &PathResolutionError{Path: b.settings.PackageDir, Err: err}
	}

	b.tempDir = tempDir
	b.stagingDir = filepath.Join(tempDir, "staging")
	b.outputDir = outputDir

	for _, dir := range []string{b.outputDir, b.tempDir, b.stagingDir} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	return nil
}

// outputPath joins the resolved package directory with an artifact filename.
func (b *base) outputPath(name string) string {
	return filepath.Join(b.outputDir, name)
}

// ensureDir creates the directory when absent and verifies it is usable.
func ensureDir(path string) error {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return &PathResolutionError{Path: path, Err: errNotADirectory}
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return &PathResolutionError{Path: path, Err: err}
	}

	// Probe writability so a read-only base directory fails here instead of
	// halfway through a native tool run.
	probe, err := os.CreateTemp(path, ".pkgsmith-probe-*")
	if err != nil {
		return &PathResolutionError{Path: path, Err: err}
	}

	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return nil
}

// writeDocument persists a generated metadata document with owner-only
// permissions. Regenerating from identical metadata reproduces the file
// byte for byte.
func writeDocument(path string, contents []byte) error {
	if err := os.WriteFile(path, contents, config.DefaultFilePermissions); err != nil {
		return &DocumentError{Document: filepath.Base(path), Err: err}
	}

	return nil
}
