package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/issue"
	"github.com/jbweber/diskplan/internal/naming"
	"github.com/jbweber/diskplan/internal/storage"
)

// TableFormatter formats proposal data as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

func newTabWriter(buf *bytes.Buffer) *tabwriter.Writer {
	return tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
}

// FormatSettings formats wire settings as a two-column summary.
func (f *TableFormatter) FormatSettings(s *v1alpha1.Settings) (string, error) {
	if s == nil {
		return "No settings\n", nil
	}

	var buf bytes.Buffer
	w := newTabWriter(&buf)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "SETTING\tVALUE")
	}

	_, _ = fmt.Fprintf(w, "target\t%s\n", formatTarget(s.Target))

	boot := "no"
	if s.IsConfigure() {
		boot = "yes"
		if s.Boot != nil && s.Boot.Device != "" {
			boot += " (" + s.Boot.Device + ")"
		}
	}
	_, _ = fmt.Fprintf(w, "boot\t%s\n", boot)

	encryption := "none"
	if s.IsEncrypted() {
		encryption = s.Encryption.Method
		if s.Encryption.PBKDFunction != "" {
			encryption += " (" + s.Encryption.PBKDFunction + ")"
		}
	}
	_, _ = fmt.Fprintf(w, "encryption\t%s\n", encryption)

	space := orDash(s.GetSpacePolicy())
	if s.Space != nil && len(s.Space.Actions) > 0 {
		space += fmt.Sprintf(" (%d actions)", len(s.Space.Actions))
	}
	_, _ = fmt.Fprintf(w, "space\t%s\n", space)

	_, _ = fmt.Fprintf(w, "volumes\t%s\n", orDash(strings.Join(s.VolumePaths(), ", ")))

	_ = w.Flush()
	return buf.String(), nil
}

// FormatVolumes formats volumes as a table.
func (f *TableFormatter) FormatVolumes(vols []storage.Volume) (string, error) {
	if len(vols) == 0 {
		return "No volumes found\n", nil
	}

	var buf bytes.Buffer
	w := newTabWriter(&buf)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "MOUNT\tFILESYSTEM\tSIZE\tLOCATION\tSNAPSHOTS")
	}

	for i := range vols {
		v := &vols[i]

		snapshots := "-"
		if v.FSType == storage.FSTypeBtrfs {
			snapshots = "no"
			if v.Btrfs.Snapshots {
				snapshots = "yes"
			}
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			orDash(v.MountPath), orDash(string(v.FSType)), formatSize(v), formatLocation(v.Location), snapshots)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatIssues formats issues as a table.
func (f *TableFormatter) FormatIssues(issues []issue.Issue) (string, error) {
	if len(issues) == 0 {
		return "No issues found\n", nil
	}

	var buf bytes.Buffer
	w := newTabWriter(&buf)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "SEVERITY\tSOURCE\tDESCRIPTION")
	}
	for _, i := range issues {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", i.Severity, i.Source, i.Description)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatActions formats actions as a numbered list. Destructive actions are
// flagged in the DELETE column.
func (f *TableFormatter) FormatActions(actions []engine.Action) (string, error) {
	if len(actions) == 0 {
		return "No actions\n", nil
	}

	var buf bytes.Buffer
	w := newTabWriter(&buf)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "#\tACTION\tDELETE")
	}
	for i, a := range actions {
		del := ""
		if a.Delete {
			del = "yes"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, a.Text, del)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatDevices formats devices as a table.
func (f *TableFormatter) FormatDevices(devices []engine.Device) (string, error) {
	if len(devices) == 0 {
		return "No devices found\n", nil
	}

	var buf bytes.Buffer
	w := newTabWriter(&buf)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tSIZE\tDESCRIPTION")
	}
	for _, d := range devices {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Size, naming.DeviceLabel(d))
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatReport formats a calculation report as titled sections.
func (f *TableFormatter) FormatReport(r *Report) (string, error) {
	var buf bytes.Buffer

	status := "failed"
	if r.Success {
		status = "succeeded"
	}
	_, _ = fmt.Fprintf(&buf, "Proposal %s %s\n", orDash(r.ID), status)

	sections := []struct {
		title  string
		format func() (string, error)
	}{
		{"Settings", func() (string, error) { return f.FormatSettings(r.Settings) }},
		{"Issues", func() (string, error) { return f.FormatIssues(r.Issues) }},
		{"Actions", func() (string, error) { return f.FormatActions(r.Actions) }},
	}
	for _, s := range sections {
		out, err := s.format()
		if err != nil {
			return "", err
		}
		_, _ = fmt.Fprintf(&buf, "\n%s\n%s\n%s", s.title, strings.Repeat("-", len(s.title)), out)
	}

	return buf.String(), nil
}

func formatTarget(t *v1alpha1.Target) string {
	if t == nil {
		return "-"
	}
	switch t.Kind {
	case v1alpha1.TargetNewLvmVg:
		if len(t.PVDevices) == 0 {
			return "new LVM volume group"
		}
		return "new LVM volume group on " + strings.Join(t.PVDevices, ", ")
	default:
		if t.Disk == "" {
			return "disk"
		}
		return "disk " + t.Disk
	}
}

// formatSize returns "auto", "min - max" or "min+" for unlimited volumes.
func formatSize(v *storage.Volume) string {
	if v.AutoSize {
		return "auto"
	}
	if v.MaxSize.IsUnlimited() {
		return v.MinSize.String() + "+"
	}
	return v.MinSize.String() + " - " + v.MaxSize.String()
}

func formatLocation(l storage.VolumeLocation) string {
	if l.Target == "" || l.Target == storage.LocationDefault {
		return "default"
	}
	return fmt.Sprintf("%s %s", l.Target, l.Device)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
