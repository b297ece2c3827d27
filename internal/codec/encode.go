package codec

import (
	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/storage"
)

// Encode converts domain settings into the wire schema.
//
// Encoding a decoded document gives back every field the document set,
// although short and object forms may differ (a btrfs volume with
// configurable snapshots always uses the object form).
func Encode(s *storage.ProposalSettings) *v1alpha1.Settings {
	out := v1alpha1.NewSettings()
	if s == nil {
		return out
	}

	target := encodeTarget(s.Device)
	out.Target = &target
	out.Boot = &v1alpha1.Boot{
		Configure: s.Boot.Configure,
		Device:    s.Boot.Device,
	}
	if s.Encryption.Encrypt {
		out.Encryption = &v1alpha1.Encryption{
			Password:     s.Encryption.Password,
			Method:       string(s.Encryption.Method),
			PBKDFunction: string(s.Encryption.PBKDFunction),
		}
	}

	out.Space = &v1alpha1.Space{
		Policy:  string(s.Space.Policy),
		Actions: make([]v1alpha1.SpaceAction, 0, len(s.Space.Actions)),
	}
	for _, a := range s.Space.Actions {
		out.Space.Actions = append(out.Space.Actions, v1alpha1.SpaceAction{
			Action: actionKey(a.Kind),
			Device: a.Device,
		})
	}

	for i := range s.Volumes {
		out.Volumes = append(out.Volumes, EncodeVolume(&s.Volumes[i]))
	}
	return out
}

func encodeTarget(t storage.DeviceTarget) v1alpha1.Target {
	switch t := t.(type) {
	case storage.NewLvmVgTarget:
		return v1alpha1.Target{
			Kind:      v1alpha1.TargetNewLvmVg,
			PVDevices: append([]string(nil), t.CandidatePVDevices...),
		}
	case storage.DiskTarget:
		return v1alpha1.Target{Kind: v1alpha1.TargetDisk, Disk: t.Name}
	}
	return v1alpha1.Target{Kind: v1alpha1.TargetDisk}
}

func actionKey(kind storage.ActionKind) v1alpha1.ActionKey {
	switch kind {
	case storage.ActionResize:
		return v1alpha1.ActionKeyResize
	case storage.ActionForceDelete:
		return v1alpha1.ActionKeyForceDelete
	default:
		return v1alpha1.ActionKeyDelete
	}
}

// EncodeVolume converts a domain volume into its wire form.
func EncodeVolume(v *storage.Volume) v1alpha1.VolumeSchema {
	out := v1alpha1.VolumeSchema{
		Mount: &v1alpha1.Mount{
			Path:    v.MountPath,
			Options: append([]string(nil), v.MountOptions...),
		},
	}

	switch {
	case v.FSType == "":
	case v.SnapshotsConfigurable():
		out.Filesystem = &v1alpha1.Filesystem{
			Type:  v1alpha1.FilesystemBtrfs,
			Btrfs: &v1alpha1.BtrfsSchema{Snapshots: v1alpha1.BoolPtr(v.Btrfs.Snapshots)},
		}
	default:
		out.Filesystem = &v1alpha1.Filesystem{Type: string(v.FSType)}
	}

	if v.AutoSize {
		out.Size = &v1alpha1.Size{Auto: true}
	} else {
		out.Size = &v1alpha1.Size{Min: v.MinSize.Bytes()}
		if !v.MaxSize.IsUnlimited() {
			out.Size.Max = v1alpha1.Uint64Ptr(v.MaxSize.Bytes())
		}
	}

	out.Target = &v1alpha1.VolumeTarget{Kind: locationKind(v.Location.Target)}
	if out.Target.Kind != v1alpha1.VolumeTargetDefault {
		out.Target.Device = v.Location.Device
	}
	return out
}

func locationKind(t storage.LocationTarget) v1alpha1.VolumeTargetKind {
	switch t {
	case storage.LocationNewPartition:
		return v1alpha1.VolumeTargetNewPartition
	case storage.LocationNewVG:
		return v1alpha1.VolumeTargetNewVg
	case storage.LocationDevice:
		return v1alpha1.VolumeTargetDevice
	case storage.LocationFilesystem:
		return v1alpha1.VolumeTargetFilesystem
	}
	return v1alpha1.VolumeTargetDefault
}
