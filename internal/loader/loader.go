// Package loader provides functions for loading storage proposal settings
// from YAML or JSON files.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/schema"
)

// LoadFromFile loads settings from a YAML or JSON file and validates them
// against the settings schema.
func LoadFromFile(path string) (*v1alpha1.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return LoadFromYAML(data)
}

// LoadFromYAML loads settings from YAML bytes. JSON is accepted as well.
// The document must match the settings schema.
func LoadFromYAML(data []byte) (*v1alpha1.Settings, error) {
	doc, err := ToJSON(data)
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var s v1alpha1.Settings
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &s, nil
}

// ParseFile reads settings from a YAML or JSON file without schema validation.
func ParseFile(path string) (*v1alpha1.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return ParseYAML(data)
}

// ParseYAML decodes settings without schema validation. Malformed sections
// are dropped instead of reported.
func ParseYAML(data []byte) (*v1alpha1.Settings, error) {
	var s v1alpha1.Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return &s, nil
}

// ToJSON converts a YAML (or JSON) document to JSON.
func ToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	return out, nil
}

// SaveToFile saves settings to a YAML file.
func SaveToFile(s *v1alpha1.Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
