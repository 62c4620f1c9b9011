package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Project is the read-only metadata view of the software product being
// packaged. It is loaded once by the driver and borrowed by every packager
// for the duration of a run.
type Project struct {
	// Name is the machine-friendly project name used in artifact filenames.
	Name string `yaml:"name"`
	// FriendlyName is the human-readable product name shown in installer UIs.
	FriendlyName string `yaml:"friendly_name"`
	// Version is the product version string, e.g. "23.4.2".
	Version string `yaml:"version"`
	// Iteration is the package revision for a given version, starting at 1.
	Iteration int `yaml:"iteration"`
	// Maintainer identifies the package vendor, e.g. "Jane Doe <jane@example.com>".
	Maintainer string `yaml:"maintainer"`
	// InstallDir is the absolute directory the package installs into.
	InstallDir string `yaml:"install_dir"`
	// FilesPath is the staged install tree produced by the upstream build.
	FilesPath string `yaml:"files_path"`
	// PackageScriptsPath holds per-format maintainer scripts (postinst, etc.).
	PackageScriptsPath string `yaml:"package_scripts_path"`
	// Identifiers holds optional per-format platform identifiers,
	// e.g. a reverse-domain bundle id keyed by "pkg".
	Identifiers map[string]string `yaml:"identifiers"`
}

// MissingFieldError reports a required project field that is absent and has
// no safe fallback. It carries an example value so the failure is actionable
// without re-running at higher verbosity.
type MissingFieldError struct {
	// Field is the metadata field name as spelled in the project file.
	Field string
	// Example is a valid sample value for the field.
	Example string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required project field %q is not set (example: %s)", e.Field, e.Example)
}

// Load reads project metadata from the provided YAML path and validates it.
func Load(path string) (*Project, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read project metadata: %w", err)
	}

	var project Project
	if err := yaml.Unmarshal(contents, &project); err != nil {
		return nil, fmt.Errorf("unmarshal project metadata: %w", err)
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	project.applyDefaults()

	return &project, nil
}

// applyDefaults fills optional fields after validation, so the loaded view
// is complete before backends borrow it.
func (p *Project) applyDefaults() {
	if p.Iteration <= 0 {
		p.Iteration = 1
	}

	if p.FriendlyName == "" {
		p.FriendlyName = p.Name
	}
}

// Validate checks all required fields at once and returns every missing one
// as a combined error, so the user fixes the project file in a single pass
// instead of discovering gaps one failed build at a time. It never mutates
// the project: backends re-check the borrowed read-only view freely.
//
// Identifiers are deliberately not required: a missing identifier falls back
// to a deterministic placeholder (see Identifier).
func (p *Project) Validate() error {
	var errs error

	if p.Name == "" {
		errs = multierr.Append(errs, &MissingFieldError{Field: "name", Example: "myproject"})
	}

	if p.Version == "" {
		errs = multierr.Append(errs, &MissingFieldError{Field: "version", Example: "1.2.3"})
	}

	if p.Maintainer == "" {
		errs = multierr.Append(errs, &MissingFieldError{Field: "maintainer", Example: "Jane Doe <jane@example.com>"})
	}

	if p.InstallDir == "" {
		errs = multierr.Append(errs, &MissingFieldError{Field: "install_dir", Example: "/opt/myproject"})
	}

	if p.FilesPath == "" {
		errs = multierr.Append(errs, &MissingFieldError{Field: "files_path", Example: "/var/cache/build/install"})
	}

	return errs
}
