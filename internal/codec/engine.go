package codec

import (
	"github.com/jbweber/diskplan/internal/config"
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/naming"
	"github.com/jbweber/diskplan/internal/storage"
	"github.com/jbweber/diskplan/internal/templates"
)

// ToEngine converts domain settings into the engine input.
//
// The volumes of the settings are proposed. Product templates for other
// mount paths are appended as not proposed, so the engine can resolve the
// size fallbacks between volumes.
func ToEngine(s *storage.ProposalSettings, product *config.Product) engine.Settings {
	out := engine.Settings{
		ConfigureBoot: s.Boot.Configure,
		BootDevice:    s.BootDevice(),
		SpacePolicy:   string(s.Space.Policy),
	}

	switch t := s.Device.(type) {
	case storage.DiskTarget:
		if t.Name != "" {
			out.CandidateDevices = []string{t.Name}
		}
		out.RootDevice = t.Name
	case storage.NewLvmVgTarget:
		out.LVM = true
		out.CandidateDevices = append([]string(nil), t.CandidatePVDevices...)
		if len(t.CandidatePVDevices) > 0 {
			out.RootDevice = t.CandidatePVDevices[0]
		}
	}

	if s.Encryption.Encrypt {
		out.Encryption = &engine.Encryption{
			Password:     s.Encryption.Password,
			Method:       string(s.Encryption.Method),
			PBKDFunction: string(s.Encryption.PBKDFunction),
		}
	}

	for _, a := range s.Space.Actions {
		out.SpaceActions = append(out.SpaceActions, engine.SpaceAction{
			Device: a.Device,
			Action: string(a.Kind),
		})
	}

	volumes := make([]storage.Volume, 0, len(s.Volumes))
	volumes = append(volumes, s.Volumes...)
	proposed := len(volumes)
	for _, tpl := range templates.All(product) {
		if s.Volume(tpl.MountPath) == nil {
			volumes = append(volumes, tpl)
		}
	}

	for i := range volumes {
		spec := volumeSpec(&volumes[i], volumes)
		spec.Proposed = i < proposed
		out.Volumes = append(out.Volumes, spec)
	}
	return out
}

func volumeSpec(v *storage.Volume, all []storage.Volume) engine.VolumeSpec {
	spec := engine.VolumeSpec{
		MountPoint:           v.MountPath,
		MountOptions:         append([]string(nil), v.MountOptions...),
		FSType:               v.FSType,
		ProposedConfigurable: !v.Outline.Required,
		MinSize:              v.MinSize,
		MaxSize:              v.MaxSize,

		Snapshots:               v.Btrfs.Snapshots,
		SnapshotsConfigurable:   v.Outline.SnapshotsConfigurable,
		SnapshotsAffectSizes:    v.Outline.SnapshotsAffectSizes,
		SnapshotsSizePercentage: v.Outline.SnapshotsPercentage,
		Subvolumes:              append([]string(nil), v.Btrfs.Subvolumes...),
		DefaultSubvolume:        v.Btrfs.DefaultSubvolume,
		BtrfsReadOnly:           v.Btrfs.ReadOnly,

		AdjustByRAM:        v.Outline.AdjustByRAM,
		FallbackForMinSize: fallbackFor(v.MountPath, all, func(o *storage.Outline) []string { return o.MinFallbackFor }),
		FallbackForMaxSize: fallbackFor(v.MountPath, all, func(o *storage.Outline) []string { return o.MaxFallbackFor }),

		IgnoreFallbackSizes:  !v.AutoSize,
		IgnoreSnapshotsSizes: !v.AutoSize,
		IgnoreAdjustByRAM:    !v.AutoSize,
	}

	if v.FSType != storage.FSTypeBtrfs {
		spec.Snapshots = false
	}

	switch v.Location.Target {
	case storage.LocationNewPartition:
		spec.Device = v.Location.Device
	case storage.LocationNewVG:
		spec.Device = v.Location.Device
		spec.SeparateVGName = naming.VGName(v.MountPath)
	case storage.LocationDevice:
		spec.ReuseName = v.Location.Device
		spec.Reformat = true
	case storage.LocationFilesystem:
		spec.ReuseName = v.Location.Device
	}
	return spec
}

// fallbackFor returns the mount path of the volume whose outline lists
// mountPath as a fallback, or "".
func fallbackFor(mountPath string, all []storage.Volume, list func(*storage.Outline) []string) string {
	if mountPath == "" {
		return ""
	}
	for i := range all {
		for _, p := range list(&all[i].Outline) {
			if p == mountPath {
				return all[i].MountPath
			}
		}
	}
	return ""
}
