package engine

import (
	"context"

	"github.com/jbweber/diskplan/internal/storage"
)

// Engine plans a disk layout.
//
// Propose returns a Result even when no layout fits (Result.Failed). An
// error means the engine could not run at all, e.g. the context was canceled.
type Engine interface {
	Propose(ctx context.Context, settings Settings, graph DeviceGraph, analyzer DiskAnalyzer) (*Result, error)
}

// DiskAnalyzer reports the disks eligible for installation.
type DiskAnalyzer interface {
	CandidateDisks() []Device
}

// Backend bundles the engine with the probing collaborators it needs.
type Backend interface {
	Engine

	// ProbedDeviceGraph returns the devices found on the system.
	ProbedDeviceGraph() DeviceGraph

	// DiskAnalyzer returns the analyzer of the probed devices.
	DiskAnalyzer() DiskAnalyzer
}

// DeviceGraph is the engine's model of the storage devices. It is opaque to
// this module and only handed back to the engine.
type DeviceGraph interface{}

// Device is a disk reported by the disk analyzer.
type Device struct {
	Name      string           `yaml:"name" json:"name"`
	Size      storage.DiskSize `yaml:"size" json:"size"`
	Transport string           `yaml:"transport,omitempty" json:"transport,omitempty"`
	Vendor    string           `yaml:"vendor,omitempty" json:"vendor,omitempty"`
	Model     string           `yaml:"model,omitempty" json:"model,omitempty"`

	// Systems lists the operating systems installed on the device.
	Systems []string `yaml:"systems,omitempty" json:"systems,omitempty"`
}

// Settings is the input of the engine.
type Settings struct {
	LVM              bool     `yaml:"lvm" json:"lvm"`
	CandidateDevices []string `yaml:"candidate_devices,omitempty" json:"candidateDevices,omitempty"`
	RootDevice       string   `yaml:"root_device,omitempty" json:"rootDevice,omitempty"`
	ConfigureBoot    bool     `yaml:"configure_boot" json:"configureBoot"`
	BootDevice       string   `yaml:"boot_device,omitempty" json:"bootDevice,omitempty"`

	// Encryption is nil when devices are not encrypted.
	Encryption *Encryption `yaml:"encryption,omitempty" json:"encryption,omitempty"`

	SpacePolicy  string        `yaml:"space_policy" json:"spacePolicy"`
	SpaceActions []SpaceAction `yaml:"space_actions,omitempty" json:"spaceActions,omitempty"`

	Volumes []VolumeSpec `yaml:"volumes" json:"volumes"`
}

// Encryption configures encrypted devices.
type Encryption struct {
	Password     string `yaml:"password" json:"password"`
	Method       string `yaml:"method" json:"method"`
	PBKDFunction string `yaml:"pbkd_function,omitempty" json:"pbkdFunction,omitempty"`
}

// SpaceAction tells what to do with an existing device.
type SpaceAction struct {
	Device string `yaml:"device" json:"device"`
	Action string `yaml:"action" json:"action"` // resize, delete or force_delete
}

// VolumeSpec describes one file system the engine should create or reuse.
type VolumeSpec struct {
	MountPoint   string         `yaml:"mount_point" json:"mountPoint"`
	MountOptions []string       `yaml:"mount_options,omitempty" json:"mountOptions,omitempty"`
	FSType       storage.FSType `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`

	// Proposed is false for volumes known to the product but not requested.
	// The engine still uses them to resolve size fallbacks.
	Proposed             bool `yaml:"proposed" json:"proposed"`
	ProposedConfigurable bool `yaml:"proposed_configurable" json:"proposedConfigurable"`

	MinSize storage.DiskSize `yaml:"min_size" json:"minSize"`
	MaxSize storage.DiskSize `yaml:"max_size" json:"maxSize"`

	Snapshots               bool     `yaml:"snapshots" json:"snapshots"`
	SnapshotsConfigurable   bool     `yaml:"snapshots_configurable" json:"snapshotsConfigurable"`
	SnapshotsAffectSizes    bool     `yaml:"snapshots_affect_sizes" json:"snapshotsAffectSizes"`
	SnapshotsSizePercentage uint     `yaml:"snapshots_size_percentage,omitempty" json:"snapshotsSizePercentage,omitempty"`
	Subvolumes              []string `yaml:"subvolumes,omitempty" json:"subvolumes,omitempty"`
	DefaultSubvolume        string   `yaml:"default_subvolume,omitempty" json:"defaultSubvolume,omitempty"`
	BtrfsReadOnly           bool     `yaml:"btrfs_read_only,omitempty" json:"btrfsReadOnly,omitempty"`

	AdjustByRAM        bool   `yaml:"adjust_by_ram" json:"adjustByRam"`
	FallbackForMinSize string `yaml:"fallback_for_min_size,omitempty" json:"fallbackForMinSize,omitempty"`
	FallbackForMaxSize string `yaml:"fallback_for_max_size,omitempty" json:"fallbackForMaxSize,omitempty"`

	// Fixed sizes disable every automatic adjustment.
	IgnoreFallbackSizes  bool `yaml:"ignore_fallback_sizes" json:"ignoreFallbackSizes"`
	IgnoreSnapshotsSizes bool `yaml:"ignore_snapshots_sizes" json:"ignoreSnapshotsSizes"`
	IgnoreAdjustByRAM    bool `yaml:"ignore_adjust_by_ram" json:"ignoreAdjustByRam"`

	// Location
	Device         string `yaml:"device,omitempty" json:"device,omitempty"`
	SeparateVGName string `yaml:"separate_vg_name,omitempty" json:"separateVgName,omitempty"`
	ReuseName      string `yaml:"reuse_name,omitempty" json:"reuseName,omitempty"`
	Reformat       bool   `yaml:"reformat,omitempty" json:"reformat,omitempty"`
}

// Result is the outcome of a proposal.
type Result struct {
	Failed         bool            `yaml:"failed" json:"failed"`
	PlannedDevices []PlannedDevice `yaml:"planned_devices,omitempty" json:"plannedDevices,omitempty"`
	Actions        []Action        `yaml:"actions" json:"actions"`
}

// PlannedDevice is a device the proposal would create or reuse.
type PlannedDevice struct {
	Name      string           `yaml:"name" json:"name"`
	MountPath string           `yaml:"mount_path,omitempty" json:"mountPath,omitempty"`
	FSType    storage.FSType   `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	Size      storage.DiskSize `yaml:"size" json:"size"`
}

// Action is an entry of the engine's action graph.
type Action struct {
	Text      string `yaml:"text" json:"text"`
	Device    string `yaml:"device,omitempty" json:"device,omitempty"`
	Delete    bool   `yaml:"delete,omitempty" json:"delete,omitempty"`
	Subvolume bool   `yaml:"subvolume,omitempty" json:"subvolume,omitempty"`
}
