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

// rpm builds an RPM archive: the staged install tree is used as the
// buildroot, a generated spec file describes it, and rpmbuild assembles the
// final package under a private topdir tree.
type rpm struct {
	base
}

// specTemplate renders the RPM spec file. Scriptlet sections appear only
// when the corresponding script file exists in the project scripts path.
var specTemplate = template.Must(template.New("spec").Parse(
	`Name: {{.Name}}
Version: {{.Version}}
Release: {{.Iteration}}
Summary: {{.FriendlyName}}
BuildArch: {{.Arch}}
License: Proprietary
Group: default
Prefix: {{.InstallDir}}
AutoReqProv: no

%description
{{.FriendlyName}} installer package.
{{range .Scriptlets}}
%{{.Name}}
{{.Contents}}
{{end}}
%files
%dir {{.InstallDir}}
{{.InstallDir}}/*
`))

// rpmScriptlets maps spec scriptlet sections to script filenames in the
// project scripts path.
var rpmScriptlets = []string{"pre", "post", "preun", "postun"}

// rpmTopdirs are the directories rpmbuild expects under its topdir.
var rpmTopdirs = []string{"BUILD", "RPMS", "SOURCES", "SPECS", "SRPMS"}

// Format returns the format name.
func (p *rpm) Format() string {
	return FormatRPM
}

// Validate checks required metadata fields.
func (p *rpm) Validate() error {
	return p.project.Validate()
}

// ArtifactName returns <name>-<version>-<iteration>.<arch>.rpm.
func (p *rpm) ArtifactName() string {
	return fmt.Sprintf("%s-%s-%d.%s.rpm", p.project.Name, p.project.Version, p.project.Iteration, rpmArch())
}

// Build stages the buildroot, generates the spec file, runs rpmbuild and
// moves the result into the package directory.
func (p *rpm) Build(ctx context.Context) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := p.resolvePaths(); err != nil {
		return "", err
	}

	for _, dir := range rpmTopdirs {
		if err := ensureDir(filepath.Join(p.tempDir, dir)); err != nil {
			return "", err
		}
	}

	if err := copyTree(p.project.FilesPath, installRoot(p.stagingDir, p.project.InstallDir)); err != nil {
		return "", fmt.Errorf("stage buildroot: %w", err)
	}

	specPath := filepath.Join(p.tempDir, "SPECS", p.project.Name+".spec")

	contents, err := p.renderSpec()
	if err != nil {
		return "", err
	}

	if err := writeDocument(specPath, contents); err != nil {
		return "", err
	}

	cmd := command.New("rpmbuild").
		WithSwitch("-bb").
		WithFlag("--buildroot", p.stagingDir).
		WithFlag("--define", "_topdir "+p.tempDir).
		WithArgs(specPath)

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return "", err
	}

	// rpmbuild drops the package under RPMS/<arch>/; publish it from the
	// configured package directory like every other backend. A zero exit
	// without the expected file (arch or release naming mismatch) is still
	// a failure: never report an artifact path that does not exist.
	builtPath := filepath.Join(p.tempDir, "RPMS", rpmArch(), p.ArtifactName())
	outputPath := p.outputPath(p.ArtifactName())

	if !fileExists(builtPath) {
		return "", fmt.Errorf("built rpm %s: %w", builtPath, os.ErrNotExist)
	}

	if err := copyFile(builtPath, outputPath, 0o644); err != nil {
		return "", fmt.Errorf("publish rpm: %w", err)
	}

	return outputPath, nil
}

// scriptlet is one rendered spec scriptlet section.
type scriptlet struct {
	// Name is the spec section name, e.g. "post".
	Name string
	// Contents is the script body embedded verbatim.
	Contents string
}

// renderSpec produces the spec file contents from project metadata and any
// scriptlets present in the scripts path.
func (p *rpm) renderSpec() ([]byte, error) {
	scriptlets, err := p.loadScriptlets()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	err = specTemplate.Execute(&buf, struct {
		Name         string
		Version      string
		Iteration    int
		FriendlyName string
		Arch         string
		InstallDir   string
		Scriptlets   []scriptlet
	}{
		Name:         p.project.Name,
		Version:      p.project.Version,
		Iteration:    p.project.Iteration,
		FriendlyName: p.project.FriendlyName,
		Arch:         rpmArch(),
		InstallDir:   p.project.InstallDir,
		Scriptlets:   scriptlets,
	})
	if err != nil {
		return nil, &DocumentError{Document: p.project.Name + ".spec", Err: err}
	}

	return buf.Bytes(), nil
}

// loadScriptlets reads recognized scriptlet files in a fixed order.
func (p *rpm) loadScriptlets() ([]scriptlet, error) {
	if !dirExists(p.project.PackageScriptsPath) {
		return nil, nil
	}

	var scriptlets []scriptlet

	for _, name := range rpmScriptlets {
		path := filepath.Join(p.project.PackageScriptsPath, name)
		if !fileExists(path) {
			continue
		}

		contents, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, &DocumentError{Document: p.project.Name + ".spec", Err: err}
		}

		scriptlets = append(scriptlets, scriptlet{Name: name, Contents: string(contents)})
	}

	return scriptlets, nil
}
