package engine

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskplan/internal/storage"
)

// Fixture is a Backend read from a YAML document:
//
//	disks:
//	  - name: /dev/sda
//	    size: 500 GiB
//	    transport: usb
//	    systems: [Windows]
//	fail: false
//	actions:
//	  - text: Delete partition /dev/sda1
//	    device: /dev/sda1
//	    delete: true
//
// The proposal fails when Fail is set or when the minimum sizes of the
// proposed volumes do not fit on the selected disks. Otherwise every proposed
// volume gets a planned device and a create action.
type Fixture struct {
	Disks   []Device `yaml:"disks"`
	Fail    bool     `yaml:"fail,omitempty"`
	Actions []Action `yaml:"actions,omitempty"`
}

type fixtureGraph struct {
	disks []Device
}

// LoadFixture reads a fixture from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture parses a fixture document.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for i, d := range f.Disks {
		if d.Name == "" {
			return nil, fmt.Errorf("disks[%d]: name is required", i)
		}
	}
	return &f, nil
}

// CandidateDisks implements DiskAnalyzer.
func (f *Fixture) CandidateDisks() []Device {
	return append([]Device(nil), f.Disks...)
}

// ProbedDeviceGraph implements Backend.
func (f *Fixture) ProbedDeviceGraph() DeviceGraph {
	return &fixtureGraph{disks: f.CandidateDisks()}
}

// DiskAnalyzer implements Backend.
func (f *Fixture) DiskAnalyzer() DiskAnalyzer {
	return f
}

// Propose implements Engine.
func (f *Fixture) Propose(ctx context.Context, settings Settings, _ DeviceGraph, analyzer DiskAnalyzer) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	disks := selectDisks(settings, analyzer.CandidateDisks())

	var capacity, required storage.DiskSize
	for _, d := range disks {
		capacity = addSize(capacity, d.Size)
	}
	for _, v := range settings.Volumes {
		if v.Proposed && v.ReuseName == "" {
			required = addSize(required, v.MinSize)
		}
	}

	if f.Fail || len(disks) == 0 || required > capacity {
		return &Result{Failed: true}, nil
	}

	result := &Result{Actions: append([]Action(nil), f.Actions...)}
	for _, a := range settings.SpaceActions {
		if a.Action == string(storage.ActionResize) {
			result.Actions = append(result.Actions, Action{
				Text:   fmt.Sprintf("Shrink %s", a.Device),
				Device: a.Device,
			})
			continue
		}
		result.Actions = append(result.Actions, Action{
			Text:   fmt.Sprintf("Delete %s", a.Device),
			Device: a.Device,
			Delete: true,
		})
	}

	for i, v := range settings.Volumes {
		if !v.Proposed {
			continue
		}
		result.PlannedDevices = append(result.PlannedDevices, planVolume(settings, disks[0].Name, i, v))
		result.Actions = append(result.Actions, createActions(v)...)
	}
	return result, nil
}

// selectDisks returns the candidate disks named by the settings, in settings
// order. Unknown names are skipped.
func selectDisks(settings Settings, candidates []Device) []Device {
	byName := make(map[string]Device, len(candidates))
	for _, d := range candidates {
		byName[d.Name] = d
	}
	var out []Device
	for _, name := range settings.CandidateDevices {
		if d, ok := byName[name]; ok {
			out = append(out, d)
		}
	}
	if len(settings.CandidateDevices) == 0 {
		out = candidates
	}
	return out
}

func planVolume(settings Settings, disk string, i int, v VolumeSpec) PlannedDevice {
	name := fmt.Sprintf("%s%d", disk, i+1)
	switch {
	case v.ReuseName != "":
		name = v.ReuseName
	case v.SeparateVGName != "":
		name = fmt.Sprintf("/dev/%s/lv", v.SeparateVGName)
	case settings.LVM:
		name = fmt.Sprintf("/dev/system/lv%d", i+1)
	}
	return PlannedDevice{
		Name:      name,
		MountPath: v.MountPoint,
		FSType:    v.FSType,
		Size:      v.MinSize,
	}
}

func createActions(v VolumeSpec) []Action {
	if v.ReuseName != "" && !v.Reformat {
		return []Action{{Text: fmt.Sprintf("Mount %s at %s", v.ReuseName, v.MountPoint), Device: v.ReuseName}}
	}
	actions := []Action{{
		Text: fmt.Sprintf("Create %s file system for %s (%s)", v.FSType, v.MountPoint, v.MinSize),
	}}
	for _, sv := range v.Subvolumes {
		actions = append(actions, Action{
			Text:      fmt.Sprintf("Create subvolume %s", sv),
			Subvolume: true,
		})
	}
	return actions
}

func addSize(a, b storage.DiskSize) storage.DiskSize {
	if a.IsUnlimited() || b.IsUnlimited() || a+b < a {
		return storage.Unlimited
	}
	return a + b
}
