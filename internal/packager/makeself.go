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

// makeself builds a self-extracting shell archive: the staged tree plus a
// generated installer script, wrapped by makeself.sh.
type makeself struct {
	base
}

// installerScriptName is the startup script makeself runs after extraction.
const installerScriptName = "makeselfinst"

// installerScriptTemplate copies the extracted payload into the install
// directory and runs an optional postinstall hook.
var installerScriptTemplate = template.Must(template.New("makeselfinst").Parse(
	`#!/bin/sh
# Installs {{.FriendlyName}} into {{.InstallDir}}.
DEST="{{.InstallDir}}"

mkdir -p "$DEST"
cp -R . "$DEST"
rm -f "$DEST/{{.ScriptName}}"
{{if .HasPostinstall}}
"$DEST/postinstall"
{{end}}
exit 0
`))

// Format returns the format name.
func (p *makeself) Format() string {
	return FormatMakeself
}

// Validate checks required metadata fields.
func (p *makeself) Validate() error {
	return p.project.Validate()
}

// ArtifactName returns <name>-<version>_<iteration>.sh.
func (p *makeself) ArtifactName() string {
	return fmt.Sprintf("%s-%s_%d.sh", p.project.Name, p.project.Version, p.project.Iteration)
}

// Build stages the tree, generates the installer script and wraps both with
// makeself.sh. Checksums are disabled: artifact integrity is the publishing
// pipeline's concern.
func (p *makeself) Build(ctx context.Context) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := p.resolvePaths(); err != nil {
		return "", err
	}

	if err := copyTree(p.project.FilesPath, p.stagingDir); err != nil {
		return "", fmt.Errorf("stage install tree: %w", err)
	}

	// The postinstall hook ships with the payload so the installer script
	// finds it under the install directory after extraction.
	postinstall := filepath.Join(p.project.PackageScriptsPath, "postinstall")
	if p.project.PackageScriptsPath != "" && fileExists(postinstall) {
		if err := copyFile(postinstall, filepath.Join(p.stagingDir, "postinstall"), 0o755); err != nil {
			return "", fmt.Errorf("stage postinstall hook: %w", err)
		}
	}

	contents, err := p.renderInstallerScript()
	if err != nil {
		return "", err
	}

	// The installer script ships inside the archive and is executed after
	// extraction, so unlike metadata documents it must be executable.
	scriptPath := filepath.Join(p.stagingDir, installerScriptName)
	if err := os.WriteFile(scriptPath, contents, 0o755); err != nil { //nolint:gosec // Script runs after extraction.
		return "", &DocumentError{Document: installerScriptName, Err: err}
	}

	outputPath := p.outputPath(p.ArtifactName())

	cmd := command.New("makeself.sh").
		WithSwitch("--gzip").
		WithSwitch("--nomd5").
		WithSwitch("--nocrc").
		WithArgs(p.stagingDir, outputPath, p.project.FriendlyName, "./"+installerScriptName)

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return "", err
	}

	return outputPath, nil
}

// renderInstallerScript produces the startup script from project metadata.
func (p *makeself) renderInstallerScript() ([]byte, error) {
	hasPostinstall := p.project.PackageScriptsPath != "" &&
		fileExists(filepath.Join(p.project.PackageScriptsPath, "postinstall"))

	var buf bytes.Buffer

	err := installerScriptTemplate.Execute(&buf, struct {
		FriendlyName   string
		InstallDir     string
		ScriptName     string
		HasPostinstall bool
	}{
		FriendlyName:   p.project.FriendlyName,
		InstallDir:     p.project.InstallDir,
		ScriptName:     installerScriptName,
		HasPostinstall: hasPostinstall,
	})
	if err != nil {
		return nil, &DocumentError{Document: installerScriptName, Err: err}
	}

	return buf.Bytes(), nil
}
