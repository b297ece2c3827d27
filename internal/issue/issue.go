// Package issue derives diagnostic issues from a calculated proposal.
package issue

import (
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/storage"
)

// Source tells where an issue comes from.
type Source string

const (
	SourceConfig Source = "config" // The settings must change
	SourceSystem Source = "system" // The system must change
)

// Severity is how bad an issue is.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue messages.
const (
	MsgNoBootDevice  = "No device selected for installation"
	MsgMissingDevice = "Selected device is not found in the system"
	MsgInfeasible    = "Cannot accommodate the required file systems for installation"
)

// Issue is a problem found in a proposal.
type Issue struct {
	Description string   `json:"description" yaml:"description"`
	Source      Source   `json:"source" yaml:"source"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// IsError returns true for issues with error severity.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// Detect returns the issues of a proposal calculated with settings.
//
// The checks run in a fixed order and every matching check adds one issue:
//  1. boot is configured but no boot device can be deduced
//  2. boot is configured and the boot device is not an available device
//  3. the engine gave no result or a failed one
//
// A nil result counts as failed. A new slice is returned on every call.
func Detect(settings *storage.ProposalSettings, result *engine.Result, available []engine.Device) []Issue {
	issues := []Issue{}

	if settings != nil && settings.Boot.Configure {
		device := settings.BootDevice()
		if device == "" {
			issues = append(issues, configError(MsgNoBootDevice))
		}
		if !contains(available, device) {
			issues = append(issues, configError(MsgMissingDevice))
		}
	}

	if result == nil || result.Failed {
		issues = append(issues, configError(MsgInfeasible))
	}
	return issues
}

// HasErrors returns true if any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.IsError() {
			return true
		}
	}
	return false
}

func configError(msg string) Issue {
	return Issue{Description: msg, Source: SourceConfig, Severity: SeverityError}
}

func contains(devices []engine.Device, name string) bool {
	for _, d := range devices {
		if d.Name == name {
			return true
		}
	}
	return false
}
