package storage

import (
	"fmt"
	"strings"
)

// FSType is a filesystem type.
type FSType string

const (
	FSTypeBtrfs FSType = "btrfs"
	FSTypeExt2  FSType = "ext2"
	FSTypeExt3  FSType = "ext3"
	FSTypeExt4  FSType = "ext4"
	FSTypeXFS   FSType = "xfs"
	FSTypeSwap  FSType = "swap"
	FSTypeVFAT  FSType = "vfat"
)

var fsTypes = []FSType{FSTypeBtrfs, FSTypeExt2, FSTypeExt3, FSTypeExt4, FSTypeXFS, FSTypeSwap, FSTypeVFAT}

// ParseFSType returns the filesystem type with the given name (case-insensitive).
func ParseFSType(s string) (FSType, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range fsTypes {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// LocationTarget says where a volume is created.
type LocationTarget string

const (
	LocationDefault      LocationTarget = "default"       // Wherever the device target puts it
	LocationNewPartition LocationTarget = "new_partition" // New partition on Device
	LocationNewVG        LocationTarget = "new_vg"        // Dedicated volume group on Device
	LocationDevice       LocationTarget = "device"        // Reuse (and format) Device directly
	LocationFilesystem   LocationTarget = "filesystem"    // Reuse the filesystem already on Device
)

// VolumeLocation is the LocationTarget plus its device, if any.
type VolumeLocation struct {
	Target LocationTarget
	Device string
}

// BtrfsSettings holds btrfs specific volume settings.
type BtrfsSettings struct {
	Snapshots        bool
	ReadOnly         bool
	DefaultSubvolume string
	Subvolumes       []string
}

// Outline describes which settings are valid for a volume. It comes from the
// product configuration and is never changed by conversions.
type Outline struct {
	Required              bool     // The volume cannot be removed from the proposal
	FSTypes               []FSType // Filesystems the volume may use
	SupportAutoSize       bool     // Sizes can be computed by the engine
	AdjustByRAM           bool     // Auto sizes grow with the RAM size
	SnapshotsConfigurable bool     // Users may toggle btrfs snapshots
	SnapshotsAffectSizes  bool     // Enabling snapshots grows auto sizes
	SnapshotsPercentage   uint     // Size increment (percent) when snapshots are on
	BaseMinSize           DiskSize // Min size before auto-size adjustments
	BaseMaxSize           DiskSize // Max size before auto-size adjustments
	MaxFallbackFor        []string // Mount paths whose max size falls back to this volume
	MinFallbackFor        []string // Mount paths whose min size falls back to this volume
}

// SupportsFSType reports whether the outline allows the filesystem type.
func (o *Outline) SupportsFSType(t FSType) bool {
	for _, ft := range o.FSTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// SizeRelevantVolumes returns the mount paths whose presence changes this
// volume's automatic size, without duplicates.
func (o *Outline) SizeRelevantVolumes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range append(append([]string(nil), o.MaxFallbackFor...), o.MinFallbackFor...) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Volume is the configuration of a single mount point.
type Volume struct {
	MountPath    string   // Empty for volumes without mount point
	MountOptions []string // Passed to fstab as-is
	FSType       FSType   // Empty when not decided
	AutoSize     bool     // Let the engine compute the sizes
	MinSize      DiskSize
	MaxSize      DiskSize // Unlimited for no upper bound
	Location     VolumeLocation
	Btrfs        BtrfsSettings
	Outline      Outline
}

// AutoSizeSupported reports whether the volume's outline allows automatic sizes.
func (v *Volume) AutoSizeSupported() bool {
	return v.Outline.SupportAutoSize
}

// SnapshotsConfigurable reports whether the snapshots flag of the volume is meaningful.
func (v *Volume) SnapshotsConfigurable() bool {
	return v.FSType == FSTypeBtrfs && v.Outline.SnapshotsConfigurable
}

// Validate checks the size and auto-size invariants of the volume.
func (v *Volume) Validate() error {
	if !v.MaxSize.IsUnlimited() && v.MinSize > v.MaxSize {
		return fmt.Errorf("min size %s is bigger than max size %s", v.MinSize, v.MaxSize)
	}
	if v.AutoSize && !v.AutoSizeSupported() {
		return fmt.Errorf("auto size is not supported for %q", v.MountPath)
	}
	if v.FSType != "" && len(v.Outline.FSTypes) > 0 && !v.Outline.SupportsFSType(v.FSType) {
		return fmt.Errorf("filesystem %s is not allowed for %q", v.FSType, v.MountPath)
	}
	switch v.Location.Target {
	case "", LocationDefault:
	case LocationNewPartition, LocationNewVG, LocationDevice, LocationFilesystem:
		if v.Location.Device == "" {
			return fmt.Errorf("location %s requires a device", v.Location.Target)
		}
	default:
		return fmt.Errorf("unknown location target %q", v.Location.Target)
	}
	return nil
}

// Clone returns a deep copy of the volume.
func (v Volume) Clone() Volume {
	c := v
	c.MountOptions = cloneStrings(v.MountOptions)
	c.Btrfs.Subvolumes = cloneStrings(v.Btrfs.Subvolumes)
	if v.Outline.FSTypes != nil {
		c.Outline.FSTypes = append([]FSType(nil), v.Outline.FSTypes...)
	}
	c.Outline.MaxFallbackFor = cloneStrings(v.Outline.MaxFallbackFor)
	c.Outline.MinFallbackFor = cloneStrings(v.Outline.MinFallbackFor)
	return c
}
