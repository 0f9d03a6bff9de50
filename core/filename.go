package core

import (
	"strings"
)

// DefaultArtifactName is the upload filename used when no name can be
// extracted from the edited config document. Extracting a name is a
// best-effort convenience, never a gate on the upload.
const DefaultArtifactName = "generated-config.yaml"

// MaxArtifactNameLength caps the derived portion of an artifact filename.
const MaxArtifactNameLength = 50

// SanitizeArtifactName converts a config name into a safe filename stem:
// every non-alphanumeric character becomes '-' and the result is capped at
// MaxArtifactNameLength. Returns "" for a name with no usable characters.
func SanitizeArtifactName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	s := b.String()
	if len(s) > MaxArtifactNameLength {
		s = s[:MaxArtifactNameLength]
	}
	if strings.Trim(s, "-") == "" {
		return ""
	}
	return s
}

// ArtifactFileName derives the upload filename for a config document from
// its name field. An empty or unusable name falls back to DefaultArtifactName.
func ArtifactFileName(name string) string {
	stem := SanitizeArtifactName(name)
	if stem == "" {
		return DefaultArtifactName
	}
	return stem + ".yaml"
}
