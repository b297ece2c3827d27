package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/issue"
	"github.com/jbweber/diskplan/internal/storage"
)

// JSONFormatter formats proposal data as JSON.
type JSONFormatter struct{}

// FormatSettings formats wire settings as JSON.
func (f *JSONFormatter) FormatSettings(s *v1alpha1.Settings) (string, error) {
	return marshalJSON("settings", s)
}

// FormatVolumes formats volumes in their wire form as a JSON array.
func (f *JSONFormatter) FormatVolumes(vols []storage.Volume) (string, error) {
	return marshalJSON("volumes", encodeVolumes(vols))
}

// FormatIssues formats issues as a JSON array.
func (f *JSONFormatter) FormatIssues(issues []issue.Issue) (string, error) {
	if issues == nil {
		issues = []issue.Issue{}
	}
	return marshalJSON("issues", issues)
}

// FormatActions formats actions as a JSON array.
func (f *JSONFormatter) FormatActions(actions []engine.Action) (string, error) {
	if actions == nil {
		actions = []engine.Action{}
	}
	return marshalJSON("actions", actions)
}

// FormatDevices formats devices as a JSON array.
func (f *JSONFormatter) FormatDevices(devices []engine.Device) (string, error) {
	if devices == nil {
		devices = []engine.Device{}
	}
	return marshalJSON("devices", devices)
}

// FormatReport formats a calculation report as a JSON object.
func (f *JSONFormatter) FormatReport(r *Report) (string, error) {
	return marshalJSON("report", r.normalized())
}

func marshalJSON(what string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}

	return string(data) + "\n", nil
}
