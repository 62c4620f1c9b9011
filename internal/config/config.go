package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds global packaging parameters shared by all format backends.
// It is constructed once per run and passed explicitly to every packager,
// which reads it and never mutates it.
type Settings struct {
	// PackageDir is the directory where final installer artifacts are written.
	PackageDir string `yaml:"package_dir"`
	// PackageTmp is the base directory for per-format staging and temp subtrees.
	PackageTmp string `yaml:"package_tmp"`
	// SignPkg toggles code-signing of final artifacts where the format supports it.
	SignPkg bool `yaml:"sign_pkg"`
	// SigningIdentity is the certificate name used by the macOS product build.
	SigningIdentity string `yaml:"signing_identity"`
	// WindowsCertSubject is the certificate subject passed to signtool on Windows.
	WindowsCertSubject string `yaml:"windows_cert_subject"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "pkgsmith-settings.yaml"

	// DefaultPackageDir is used when package_dir is not configured.
	DefaultPackageDir = "pkg"

	// DefaultPackageTmp is used when package_tmp is not configured.
	DefaultPackageTmp = "pkg-tmp"

	// DefaultFilePermissions is the default file permission for config files
	// and generated metadata documents.
	DefaultFilePermissions = 0o600
)

// errSettingsAreNotSet is returned when a nil settings value is provided.
var errSettingsAreNotSet = errors.New("settings are not set")

// Default returns settings populated with default base directories.
func Default() *Settings {
	return &Settings{
		PackageDir: DefaultPackageDir,
		PackageTmp: DefaultPackageTmp,
	}
}

// Load reads settings from the provided path and fills in defaults.
// An empty path yields default settings without touching the filesystem.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(contents, &settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Save writes settings to the provided path with restricted permissions.
func Save(path string, settings *Settings) error {
	if settings == nil {
		return errSettingsAreNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(settings); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for unset base directories.
// Signing toggles are deliberately not validated here: an enabled sign_pkg
// with no identity means the signing flag is omitted (see the pkg backend).
func Validate(settings *Settings) error {
	if settings == nil {
		return errSettingsAreNotSet
	}

	if settings.PackageDir == "" {
		settings.PackageDir = DefaultPackageDir
	}

	if settings.PackageTmp == "" {
		settings.PackageTmp = DefaultPackageTmp
	}

	return nil
}
