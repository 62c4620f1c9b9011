package packager

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // Not used cryptographically; derives a stable GUID from the identifier.
	"encoding/xml"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/oshokin/pkgsmith/internal/command"
)

// msi builds a Windows installer with the WiX toolset: heat harvests the
// staged install tree, candle compiles the generated sources and light links
// the final package. Signing via signtool is conditional on configuration.
type msi struct {
	base
}

// wxsTemplate renders the WiX product source. The upgrade code is derived
// deterministically from the platform identifier so rebuilt packages upgrade
// each other. Metadata values are XML-escaped; the maintainer field commonly
// carries an email in angle brackets.
var wxsTemplate = template.Must(template.New("wxs").Funcs(template.FuncMap{
	"xml": xmlEscape,
}).Parse(
	`<?xml version="1.0" encoding="UTF-8"?>
<Wix xmlns="http://schemas.microsoft.com/wix/2006/wi">
  <Product Id="*" Name="{{xml .FriendlyName}}" Language="1033" Version="{{.MSIVersion}}" Manufacturer="{{xml .Maintainer}}" UpgradeCode="{{.UpgradeCode}}">
    <Package InstallerVersion="200" Compressed="yes" InstallScope="perMachine"/>
    <MajorUpgrade DowngradeErrorMessage="A newer version of {{xml .FriendlyName}} is already installed."/>
    <MediaTemplate EmbedCab="yes"/>
    <Directory Id="TARGETDIR" Name="SourceDir">
      <Directory Id="ProgramFiles64Folder">
        <Directory Id="PROJECTLOCATION" Name="{{.Name}}"/>
      </Directory>
    </Directory>
    <Feature Id="Complete" Title="{{xml .FriendlyName}}" Level="1">
      <ComponentGroupRef Id="ProjectDir"/>
    </Feature>
  </Product>
</Wix>
`))

// Format returns the format name.
func (p *msi) Format() string {
	return FormatMSI
}

// Validate checks required metadata fields.
func (p *msi) Validate() error {
	return p.project.Validate()
}

// ArtifactName returns <name>-<version>-<iteration>.msi.
func (p *msi) ArtifactName() string {
	return fmt.Sprintf("%s-%s-%d.msi", p.project.Name, p.project.Version, p.project.Iteration)
}

// msiVersion returns the four-part numeric version Windows Installer
// requires, <version>.<iteration>.
func (p *msi) msiVersion() string {
	return fmt.Sprintf("%s.%d", p.project.Version, p.project.Iteration)
}

// Build harvests the install tree, generates the product source, compiles
// and links the installer, then signs it when configured.
func (p *msi) Build(ctx context.Context) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if err := p.resolvePaths(); err != nil {
		return "", err
	}

	filesWxs := filepath.Join(p.tempDir, "project-files.wxs")
	productWxs := filepath.Join(p.tempDir, p.project.Name+".wxs")

	if err := p.harvest(ctx, filesWxs); err != nil {
		return "", err
	}

	contents, err := p.renderProductSource()
	if err != nil {
		return "", err
	}

	if err := writeDocument(productWxs, contents); err != nil {
		return "", err
	}

	if err := p.compile(ctx, filesWxs, productWxs); err != nil {
		return "", err
	}

	outputPath, err := p.link(ctx)
	if err != nil {
		return "", err
	}

	if p.settings.SignPkg && p.settings.WindowsCertSubject != "" {
		if err := p.sign(ctx, outputPath); err != nil {
			return "", err
		}
	}

	return outputPath, nil
}

// harvest runs heat over the staged install tree, producing component
// definitions referenced by the product source.
func (p *msi) harvest(ctx context.Context, filesWxs string) error {
	cmd := command.New("heat.exe").
		WithArgs("dir", p.project.FilesPath).
		WithSwitch("-nologo").
		WithSwitch("-srd").
		WithSwitch("-sreg").
		WithSwitch("-gg").
		WithFlag("-cg", "ProjectDir").
		WithFlag("-dr", "PROJECTLOCATION").
		WithFlag("-var", "var.ProjectSourceDir").
		WithFlag("-out", filesWxs)

	_, err := p.runner.Run(ctx, cmd)

	return err
}

// compile runs candle over the harvested and generated sources.
func (p *msi) compile(ctx context.Context, filesWxs, productWxs string) error {
	cmd := command.New("candle.exe").
		WithSwitch("-nologo").
		WithSwitch("-dProjectSourceDir=" + p.project.FilesPath).
		WithFlag("-out", p.tempDir+string(filepath.Separator)).
		WithArgs(filesWxs, productWxs)

	_, err := p.runner.Run(ctx, cmd)

	return err
}

// link runs light to produce the final installer in the package directory.
func (p *msi) link(ctx context.Context) (string, error) {
	outputPath := p.outputPath(p.ArtifactName())

	cmd := command.New("light.exe").
		WithSwitch("-nologo").
		WithFlag("-ext", "WixUIExtension").
		WithFlag("-out", outputPath).
		WithArgs(
			filepath.Join(p.tempDir, "project-files.wixobj"),
			filepath.Join(p.tempDir, p.project.Name+".wixobj"),
		)

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return "", err
	}

	return outputPath, nil
}

// sign runs signtool against the produced installer. Reached only when
// signing is enabled and a certificate subject is configured.
func (p *msi) sign(ctx context.Context, outputPath string) error {
	cmd := command.New("signtool.exe").
		WithArgs("sign").
		WithFlag("/n", p.settings.WindowsCertSubject).
		WithArgs(outputPath)

	_, err := p.runner.Run(ctx, cmd)

	return err
}

// renderProductSource produces the WiX product source from project metadata.
func (p *msi) renderProductSource() ([]byte, error) {
	var buf bytes.Buffer

	err := wxsTemplate.Execute(&buf, struct {
		Name         string
		FriendlyName string
		Maintainer   string
		MSIVersion   string
		UpgradeCode  string
	}{
		Name:         p.project.Name,
		FriendlyName: p.project.FriendlyName,
		Maintainer:   p.project.Maintainer,
		MSIVersion:   p.msiVersion(),
		UpgradeCode:  stableGUID(p.project.Identifier(FormatMSI)),
	})
	if err != nil {
		return nil, &DocumentError{Document: p.project.Name + ".wxs", Err: err}
	}

	return buf.Bytes(), nil
}

// xmlEscape renders a metadata value safely inside an XML attribute.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))

	return buf.String()
}

// stableGUID derives a GUID-shaped value from a string. The same input
// always yields the same GUID.
func stableGUID(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // Stable derivation, not security.

	return fmt.Sprintf("%X-%X-%X-%X-%X", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}
