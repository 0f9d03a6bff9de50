package workflow

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ExtractConfigName pulls the top-level "name" field out of a YAML config
// document. Returns "" when the document does not parse or carries no name;
// callers fall back to a default filename rather than failing the operation.
func ExtractConfigName(document string) string {
	var doc struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal([]byte(document), &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Name)
}
