package packager

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oshokin/pkgsmith/internal/command"
)

// macPkg builds a macOS installer pair: a single-payload component package
// assembled by pkgbuild, wrapped into the user-facing product package by
// productbuild together with a generated Distribution document.
type macPkg struct {
	base
}

// Format returns the format name.
func (p *macPkg) Format() string {
	return FormatPkg
}

// Validate checks required metadata fields. The identifier is never required:
// a missing one falls back to a deterministic placeholder.
func (p *macPkg) Validate() error {
	return p.project.Validate()
}

// ArtifactName returns the product package filename, <name>-<version>-<iteration>.pkg.
func (p *macPkg) ArtifactName() string {
	return fmt.Sprintf("%s-%s-%d.pkg", p.project.Name, p.project.Version, p.project.Iteration)
}

// componentName returns the intermediate component package filename.
func (p *macPkg) componentName() string {
	return p.project.Name + "-core.pkg"
}

// resourcesDir is the staged location of optional installer resources
// (background image, welcome and license texts).
func (p *macPkg) resourcesDir() string {
	return filepath.Join(p.project.FilesPath, "Resources")
}

// Build runs the component build, writes the Distribution document and
// assembles the product package.
func (p *macPkg) Build(ctx context.Context) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := p.resolvePaths(); err != nil {
		return "", err
	}

	componentPath := filepath.Join(p.stagingDir, p.componentName())
	if err := p.buildComponent(ctx, componentPath); err != nil {
		return "", err
	}

	distributionPath := filepath.Join(p.tempDir, "Distribution")
	if err := p.writeDistribution(distributionPath); err != nil {
		return "", err
	}

	return p.buildProduct(ctx, distributionPath)
}

// buildComponent invokes pkgbuild with the documented flag order:
// identifier, version, scripts, root, install-location, output filename.
func (p *macPkg) buildComponent(ctx context.Context, componentPath string) error {
	cmd := command.New("pkgbuild").
		WithFlag("--identifier", p.project.Identifier(FormatPkg)).
		WithFlag("--version", p.project.Version)

	if p.project.PackageScriptsPath != "" {
		cmd.WithFlag("--scripts", p.project.PackageScriptsPath)
	}

	cmd.WithFlag("--root", p.project.FilesPath).
		WithFlag("--install-location", p.project.InstallDir).
		WithArgs(componentPath)

	_, err := p.runner.Run(ctx, cmd)

	return err
}

// writeDistribution renders the Distribution document for the product build.
func (p *macPkg) writeDistribution(path string) error {
	contents, err := renderDistribution(p.project, p.resourcesDir(), p.componentName())
	if err != nil {
		return err
	}

	return writeDocument(path, contents)
}

// buildProduct invokes productbuild. The signing flag is appended only when
// signing is enabled and an identity is configured; it is never emitted with
// an empty value.
func (p *macPkg) buildProduct(ctx context.Context, distributionPath string) (string, error) {
	outputPath := p.outputPath(p.ArtifactName())

	cmd := command.New("productbuild").
		WithFlag("--distribution", distributionPath).
		WithFlag("--resources", p.resourcesDir())

	if p.settings.SignPkg && p.settings.SigningIdentity != "" {
		cmd.WithFlag("--sign", p.settings.SigningIdentity)
	}

	cmd.WithArgs(outputPath)

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return "", err
	}

	return outputPath, nil
}
