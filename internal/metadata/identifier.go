package metadata

import "strings"

// fallbackIdentifierPrefix marks derived identifiers as placeholders.
// A derived identifier is syntactically valid for every platform installer
// but is not unique; production builds should configure a real one.
const fallbackIdentifierPrefix = "test"

// Identifier returns the platform identifier for the given format.
// A configured per-format override wins; otherwise a deterministic
// placeholder is derived as test.<maintainer>.pkg.<name> with both
// tokens sanitized. It never fails, so packaging can always proceed.
func (p *Project) Identifier(format string) string {
	if id, ok := p.Identifiers[format]; ok && id != "" {
		return id
	}

	return fallbackIdentifierPrefix +
		"." + sanitizeIdentifierToken(p.Maintainer) +
		".pkg." + sanitizeIdentifierToken(p.Name)
}

// sanitizeIdentifierToken strips everything but alphanumerics and lowercases
// the rest, guaranteeing a token acceptable to platform installer frameworks.
func sanitizeIdentifierToken(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}

	return b.String()
}
