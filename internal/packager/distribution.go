package packager

import (
	"encoding/xml"
	"path/filepath"

	"github.com/oshokin/pkgsmith/internal/metadata"
)

// distribution is the installer-gui-script document consumed by productbuild.
// Field order matches the serialized element order, so marshalling the same
// metadata always reproduces the same bytes.
type distribution struct {
	XMLName        xml.Name            `xml:"installer-gui-script"`
	MinSpecVersion string              `xml:"minSpecVersion,attr"`
	Title          string              `xml:"title"`
	Background     *resourceReference  `xml:"background"`
	Welcome        *resourceReference  `xml:"welcome"`
	License        *resourceReference  `xml:"license"`
	Options        distributionOptions `xml:"options"`
	ChoicesOutline choicesOutline      `xml:"choices-outline"`
	Choice         distributionChoice  `xml:"choice"`
	PackageRef     packageReference    `xml:"pkg-ref"`
}

// resourceReference points at an optional decorative file shipped in the
// resources directory.
type resourceReference struct {
	File      string `xml:"file,attr"`
	MimeType  string `xml:"mime-type,attr,omitempty"`
	Alignment string `xml:"alignment,attr,omitempty"`
	Scaling   string `xml:"scaling,attr,omitempty"`
}

// distributionOptions disables installer customization and script requirements.
type distributionOptions struct {
	Customize      string `xml:"customize,attr"`
	RequireScripts string `xml:"require-scripts,attr"`
}

// choicesOutline lists the single install choice.
type choicesOutline struct {
	Lines []outlineLine `xml:"line"`
}

// outlineLine names a choice in the outline.
type outlineLine struct {
	Choice string `xml:"choice,attr"`
}

// distributionChoice binds the install choice to the package reference.
type distributionChoice struct {
	ID     string      `xml:"id,attr"`
	Title  string      `xml:"title,attr"`
	PkgRef innerPkgRef `xml:"pkg-ref"`
}

// innerPkgRef is the bare reference inside a choice element.
type innerPkgRef struct {
	ID string `xml:"id,attr"`
}

// packageReference binds the identifier to the component artifact and its
// version. OnConclusion "none" tells the installer no restart or further
// action is required after install.
type packageReference struct {
	ID           string `xml:"id,attr"`
	Version      string `xml:"version,attr"`
	OnConclusion string `xml:"onConclusion,attr"`
	Component    string `xml:",chardata"`
}

// Distribution resource filenames looked up in the resources directory.
const (
	backgroundFilename = "background.png"
	welcomeFilename    = "welcome.html"
	licenseFilename    = "license.html"
)

// renderDistribution builds the Distribution document for the given project.
// Decorative references are included only when the corresponding files exist
// under resourcesDir; everything else is a pure function of the metadata.
func renderDistribution(project *metadata.Project, resourcesDir, componentName string) ([]byte, error) {
	identifier := project.Identifier(FormatPkg)

	doc := distribution{
		MinSpecVersion: "1",
		Title:          project.FriendlyName,
		Options: distributionOptions{
			Customize:      "never",
			RequireScripts: "false",
		},
		ChoicesOutline: choicesOutline{
			Lines: []outlineLine{{Choice: project.Name}},
		},
		Choice: distributionChoice{
			ID:     project.Name,
			Title:  project.FriendlyName,
			PkgRef: innerPkgRef{ID: identifier},
		},
		PackageRef: packageReference{
			ID:           identifier,
			Version:      project.Version,
			OnConclusion: "none",
			Component:    componentName,
		},
	}

	if fileExists(filepath.Join(resourcesDir, backgroundFilename)) {
		doc.Background = &resourceReference{
			File:      backgroundFilename,
			Alignment: "bottomleft",
			Scaling:   "none",
		}
	}

	if fileExists(filepath.Join(resourcesDir, welcomeFilename)) {
		doc.Welcome = &resourceReference{
			File:     welcomeFilename,
			MimeType: "text/html",
		}
	}

	if fileExists(filepath.Join(resourcesDir, licenseFilename)) {
		doc.License = &resourceReference{
			File:     licenseFilename,
			MimeType: "text/html",
		}
	}

	contents, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, &DocumentError{Document: "Distribution", Err: err}
	}

	return append([]byte(xml.Header), append(contents, '\n')...), nil
}
