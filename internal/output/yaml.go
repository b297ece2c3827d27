package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/codec"
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/issue"
	"github.com/jbweber/diskplan/internal/storage"
)

// YAMLFormatter formats proposal data as YAML.
type YAMLFormatter struct{}

// FormatSettings formats wire settings as YAML.
func (f *YAMLFormatter) FormatSettings(s *v1alpha1.Settings) (string, error) {
	return marshalYAML("settings", s)
}

// FormatVolumes formats volumes in their wire form.
func (f *YAMLFormatter) FormatVolumes(vols []storage.Volume) (string, error) {
	return marshalYAML("volumes", encodeVolumes(vols))
}

// FormatIssues formats issues as a YAML list.
func (f *YAMLFormatter) FormatIssues(issues []issue.Issue) (string, error) {
	if issues == nil {
		issues = []issue.Issue{}
	}
	return marshalYAML("issues", issues)
}

// FormatActions formats actions as a YAML list.
func (f *YAMLFormatter) FormatActions(actions []engine.Action) (string, error) {
	if actions == nil {
		actions = []engine.Action{}
	}
	return marshalYAML("actions", actions)
}

// FormatDevices formats devices as a YAML list.
func (f *YAMLFormatter) FormatDevices(devices []engine.Device) (string, error) {
	if devices == nil {
		devices = []engine.Device{}
	}
	return marshalYAML("devices", devices)
}

// FormatReport formats a calculation report as a YAML document.
func (f *YAMLFormatter) FormatReport(r *Report) (string, error) {
	return marshalYAML("report", r.normalized())
}

func marshalYAML(what string, v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to YAML: %w", what, err)
	}
	return string(data), nil
}

// encodeVolumes converts volumes to their wire form. Never nil.
func encodeVolumes(vols []storage.Volume) []v1alpha1.VolumeSchema {
	out := make([]v1alpha1.VolumeSchema, 0, len(vols))
	for i := range vols {
		out = append(out, codec.EncodeVolume(&vols[i]))
	}
	return out
}
