package packager

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/oshokin/pkgsmith/internal/command"
)

// solaris builds a System V package: generated pkginfo and prototype
// documents describe the staged tree, pkgmk assembles the package and
// pkgtrans converts it into a single-file datastream.
type solaris struct {
	base
}

// pkginfoTemplate renders the pkginfo document.
var pkginfoTemplate = template.Must(template.New("pkginfo").Parse(
	`CLASSES=none
BASEDIR={{.InstallDir}}
PATH=/sbin:/usr/sbin:/usr/bin:/usr/sadm/install/bin
PKG={{.Name}}
NAME={{.FriendlyName}}
ARCH={{.Arch}}
VERSION={{.Version}}-{{.Iteration}}
CATEGORY=application
DESC={{.FriendlyName}} installer package
VENDOR={{.Maintainer}}
`))

// Format returns the format name.
func (p *solaris) Format() string {
	return FormatSolaris
}

// Validate checks required metadata fields.
func (p *solaris) Validate() error {
	return p.project.Validate()
}

// ArtifactName returns <name>-<version>-<iteration>.solaris.
func (p *solaris) ArtifactName() string {
	return fmt.Sprintf("%s-%s-%d.solaris", p.project.Name, p.project.Version, p.project.Iteration)
}

// Build stages the tree, generates pkginfo and prototype, then runs pkgmk
// and pkgtrans.
func (p *solaris) Build(ctx context.Context) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := p.resolvePaths(); err != nil {
		return "", err
	}

	if err := copyTree(p.project.FilesPath, p.stagingDir); err != nil {
		return "", fmt.Errorf("stage install tree: %w", err)
	}

	pkginfoPath := filepath.Join(p.tempDir, "pkginfo")

	pkginfoContents, err := p.renderPkginfo()
	if err != nil {
		return "", err
	}

	if err := writeDocument(pkginfoPath, pkginfoContents); err != nil {
		return "", err
	}

	prototypePath := filepath.Join(p.tempDir, "Prototype")

	prototypeContents, err := renderPrototype(pkginfoPath, p.stagingDir)
	if err != nil {
		return "", err
	}

	if err := writeDocument(prototypePath, prototypeContents); err != nil {
		return "", err
	}

	makeCmd := command.New("pkgmk").
		WithSwitch("-o").
		WithFlag("-r", p.stagingDir).
		WithFlag("-d", p.tempDir).
		WithFlag("-f", prototypePath)

	if _, err := p.runner.Run(ctx, makeCmd); err != nil {
		return "", err
	}

	outputPath := p.outputPath(p.ArtifactName())

	transCmd := command.New("pkgtrans").
		WithFlag("-s", p.tempDir).
		WithArgs(outputPath, p.project.Name)

	if _, err := p.runner.Run(ctx, transCmd); err != nil {
		return "", err
	}

	return outputPath, nil
}

// renderPkginfo produces the pkginfo document from project metadata.
func (p *solaris) renderPkginfo() ([]byte, error) {
	var buf bytes.Buffer

	err := pkginfoTemplate.Execute(&buf, struct {
		Name         string
		FriendlyName string
		Version      string
		Iteration    int
		Arch         string
		InstallDir   string
		Maintainer   string
	}{
		Name:         p.project.Name,
		FriendlyName: p.project.FriendlyName,
		Version:      p.project.Version,
		Iteration:    p.project.Iteration,
		Arch:         solarisArch(),
		InstallDir:   p.project.InstallDir,
		Maintainer:   p.project.Maintainer,
	})
	if err != nil {
		return nil, &DocumentError{Document: "pkginfo", Err: err}
	}

	return buf.Bytes(), nil
}

// renderPrototype lists every staged path for pkgmk. Traversal is lexical,
// so identical trees render identical prototypes.
func renderPrototype(pkginfoPath, stagingDir string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "i pkginfo=%s\n", pkginfoPath)

	err := filepath.WalkDir(stagingDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == stagingDir {
			return nil
		}

		rel, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		kind := "f"
		if d.IsDir() {
			kind = "d"
		}

		fmt.Fprintf(&buf, "%s none %s %04o root root\n", kind, rel, info.Mode().Perm())

		return nil
	})
	if err != nil {
		return nil, &DocumentError{Document: "Prototype", Err: err}
	}

	return buf.Bytes(), nil
}
