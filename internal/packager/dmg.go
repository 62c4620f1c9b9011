package packager

import (
	"context"
	"fmt"

	"github.com/oshokin/pkgsmith/internal/command"
)

// macDmg builds a compressed macOS disk image directly from the staged
// install tree via hdiutil.
type macDmg struct {
	base
}

// Format returns the format name.
func (p *macDmg) Format() string {
	return FormatDmg
}

// Validate checks required metadata fields.
func (p *macDmg) Validate() error {
	return p.project.Validate()
}

// ArtifactName returns <name>-<version>-<iteration>.dmg.
func (p *macDmg) ArtifactName() string {
	return fmt.Sprintf("%s-%s-%d.dmg", p.project.Name, p.project.Version, p.project.Iteration)
}

// Build creates the disk image with a fixed flag order:
// srcfolder, volname, filesystem, format, output path.
func (p *macDmg) Build(ctx context.Context) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := p.resolvePaths(); err != nil {
		return "", err
	}

	outputPath := p.outputPath(p.ArtifactName())

	cmd := command.New("hdiutil").
		WithArgs("create").
		WithFlag("-srcfolder", p.project.FilesPath).
		WithFlag("-volname", p.project.FriendlyName).
		WithFlag("-fs", "HFS+").
		WithFlag("-format", "UDZO").
		WithArgs(outputPath)

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return "", err
	}

	return outputPath, nil
}
