// Package output provides formatters for displaying proposal settings,
// volumes, issues and actions in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/issue"
	"github.com/jbweber/diskplan/internal/storage"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format for declarative configs.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats proposal data for output.
type Formatter interface {
	// FormatSettings formats wire settings.
	FormatSettings(s *v1alpha1.Settings) (string, error)

	// FormatVolumes formats volumes, e.g. the templates of a product.
	FormatVolumes(vols []storage.Volume) (string, error)

	// FormatIssues formats the issues of a proposal.
	FormatIssues(issues []issue.Issue) (string, error)

	// FormatActions formats the actions of a proposal.
	FormatActions(actions []engine.Action) (string, error)

	// FormatDevices formats the disks available for installation.
	FormatDevices(devices []engine.Device) (string, error)

	// FormatReport formats the outcome of a calculation.
	FormatReport(r *Report) (string, error)
}

// Report is the outcome of a proposal calculation.
type Report struct {
	ID       string             `json:"id" yaml:"id"`
	Success  bool               `json:"success" yaml:"success"`
	Settings *v1alpha1.Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
	Issues   []issue.Issue      `json:"issues" yaml:"issues"`
	Actions  []engine.Action    `json:"actions" yaml:"actions"`
}

func (r *Report) normalized() *Report {
	out := *r
	if out.Issues == nil {
		out.Issues = []issue.Issue{}
	}
	if out.Actions == nil {
		out.Actions = []engine.Action{}
	}
	return &out
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	f := Format(format)
	switch f {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
