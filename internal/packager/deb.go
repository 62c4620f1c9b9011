package packager

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/oshokin/pkgsmith/internal/command"
)

// deb builds a Debian archive: the staged install tree plus a generated
// DEBIAN/control file, assembled by dpkg-deb.
type deb struct {
	base
}

// maintainerPattern is the control-file maintainer format, "Name <email>".
var maintainerPattern = regexp.MustCompile(`^.+ <[^@>\s]+@[^>\s]+>$`)

// controlTemplate renders the DEBIAN/control file. Field order is fixed, so
// identical metadata reproduces identical bytes.
var controlTemplate = template.Must(template.New("control").Parse(
	`Package: {{.Name}}
Version: {{.Version}}-{{.Iteration}}
Architecture: {{.Arch}}
Maintainer: {{.Maintainer}}
Installed-Size: {{.InstalledSize}}
Section: misc
Priority: extra
Description: {{.FriendlyName}}
`))

// debMaintainerScripts are the script names dpkg recognizes in DEBIAN/.
var debMaintainerScripts = []string{"preinst", "postinst", "prerm", "postrm"}

// Format returns the format name.
func (p *deb) Format() string {
	return FormatDeb
}

// Validate checks required fields and the control-file maintainer format.
func (p *deb) Validate() error {
	if err := p.project.Validate(); err != nil {
		return err
	}

	if !maintainerPattern.MatchString(p.project.Maintainer) {
		return fmt.Errorf("maintainer %q is not in control-file format (example: Jane Doe <jane@example.com>)",
			p.project.Maintainer)
	}

	return nil
}

// ArtifactName returns <name>_<version>-<iteration>_<arch>.deb.
func (p *deb) ArtifactName() string {
	return fmt.Sprintf("%s_%s-%d_%s.deb", p.project.Name, p.project.Version, p.project.Iteration, debArch())
}

// Build stages the install tree, generates the control file, copies
// maintainer scripts and invokes dpkg-deb.
func (p *deb) Build(ctx context.Context) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := p.resolvePaths(); err != nil {
		return "", err
	}

	if err := copyTree(p.project.FilesPath, installRoot(p.stagingDir, p.project.InstallDir)); err != nil {
		return "", fmt.Errorf("stage install tree: %w", err)
	}

	controlDir := filepath.Join(p.stagingDir, "DEBIAN")
	if err := os.MkdirAll(controlDir, 0o755); err != nil {
		return "", &PathResolutionError{Path: controlDir, Err: err}
	}

	contents, err := p.renderControl()
	if err != nil {
		return "", err
	}

	if err := writeDocument(filepath.Join(controlDir, "control"), contents); err != nil {
		return "", err
	}

	if err := p.copyMaintainerScripts(controlDir); err != nil {
		return "", err
	}

	outputPath := p.outputPath(p.ArtifactName())

	cmd := command.New("dpkg-deb").
		WithSwitch("-z9").
		WithSwitch("-Zgzip").
		WithSwitch("-D").
		WithFlag("--build", p.stagingDir).
		WithArgs(outputPath)

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return "", err
	}

	return outputPath, nil
}

// renderControl produces the control file contents from project metadata and
// the staged tree size.
func (p *deb) renderControl() ([]byte, error) {
	installedSize, err := treeSizeKB(p.stagingDir)
	if err != nil {
		return nil, &DocumentError{Document: "control", Err: err}
	}

	var buf bytes.Buffer

	err = controlTemplate.Execute(&buf, struct {
		Name          string
		Version       string
		Iteration     int
		Arch          string
		Maintainer    string
		InstalledSize int64
		FriendlyName  string
	}{
		Name:          p.project.Name,
		Version:       p.project.Version,
		Iteration:     p.project.Iteration,
		Arch:          debArch(),
		Maintainer:    p.project.Maintainer,
		InstalledSize: installedSize,
		FriendlyName:  p.project.FriendlyName,
	})
	if err != nil {
		return nil, &DocumentError{Document: "control", Err: err}
	}

	return buf.Bytes(), nil
}

// copyMaintainerScripts copies recognized scripts from the project scripts
// path into DEBIAN/ with executable permissions. Missing scripts are skipped.
func (p *deb) copyMaintainerScripts(controlDir string) error {
	if !dirExists(p.project.PackageScriptsPath) {
		return nil
	}

	for _, name := range debMaintainerScripts {
		src := filepath.Join(p.project.PackageScriptsPath, name)
		if !fileExists(src) {
			continue
		}

		if err := copyFile(src, filepath.Join(controlDir, name), 0o755); err != nil {
			return fmt.Errorf("copy maintainer script %s: %w", name, err)
		}
	}

	return nil
}
