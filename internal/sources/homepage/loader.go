package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// LoadServices reads and parses a Homepage services.yaml.
func LoadServices(path string) (ServicesConfig, error) {
	var config ServicesConfig
	if err := loadYAML(path, &config); err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}
	return config, nil
}

// LoadBookmarks reads and parses a Homepage bookmarks.yaml.
func LoadBookmarks(path string) (BookmarksConfig, error) {
	var config BookmarksConfig
	if err := loadYAML(path, &config); err != nil {
		return nil, fmt.Errorf("bookmarks: %w", err)
	}
	return config, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	data = stripTemplateVariables(data)

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
