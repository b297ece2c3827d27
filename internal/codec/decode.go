// Package codec converts proposal settings between the wire schema, the
// domain model and the engine input.
//
// Decoding never fails. Missing or malformed sections fall back to product
// defaults and every volume starts from its template.
package codec

import (
	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/config"
	"github.com/jbweber/diskplan/internal/storage"
	"github.com/jbweber/diskplan/internal/templates"
)

// DefaultSettings returns the settings proposed when the user says nothing:
// the product device target (a new LVM volume group for LVM products, an
// engine-chosen disk otherwise), boot configured, no encryption, the product
// space policy and the product default volumes.
func DefaultSettings(product *config.Product) *storage.ProposalSettings {
	s := storage.NewProposalSettings()
	s.Device = product.DefaultDeviceTarget()
	s.Encryption.Method = product.DefaultEncryptionMethod()
	s.Encryption.PBKDFunction = product.DefaultPBKDFunction()
	s.Space.Policy = product.DefaultSpacePolicy()
	s.Volumes = templates.Defaults(product)
	return s
}

// Decode converts wire settings into the domain model.
//
// A nil schema yields DefaultSettings. A nil volume list also takes the
// product default volumes, while an explicit empty list stays empty.
func Decode(schema *v1alpha1.Settings, product *config.Product) *storage.ProposalSettings {
	s := DefaultSettings(product)
	if schema == nil {
		return s
	}

	if schema.Target != nil {
		s.Device = decodeTarget(*schema.Target)
	}
	if schema.Boot != nil {
		s.Boot = storage.BootSettings{
			Configure: schema.Boot.Configure,
			Device:    schema.Boot.Device,
		}
	}
	if schema.Encryption != nil {
		decodeEncryption(&s.Encryption, *schema.Encryption)
	}
	if schema.Space != nil {
		decodeSpace(&s.Space, *schema.Space)
	}
	if schema.Volumes != nil {
		s.Volumes = make([]storage.Volume, 0, len(schema.Volumes))
		for _, vs := range schema.Volumes {
			s.Volumes = append(s.Volumes, DecodeVolume(vs, product))
		}
	}
	return s
}

func decodeTarget(t v1alpha1.Target) storage.DeviceTarget {
	switch t.Kind {
	case v1alpha1.TargetNewLvmVg:
		return storage.NewLvmVgTarget{CandidatePVDevices: append([]string(nil), t.PVDevices...)}
	default:
		return storage.DiskTarget{Name: t.Disk}
	}
}

func decodeEncryption(e *storage.EncryptionSettings, schema v1alpha1.Encryption) {
	e.Password = schema.Password
	e.Encrypt = schema.Password != ""
	if m, ok := storage.ParseEncryptionMethod(schema.Method); ok {
		e.Method = m
	}
	if f, ok := storage.ParsePBKDFunction(schema.PBKDFunction); ok {
		e.PBKDFunction = f
	}
}

func decodeSpace(s *storage.SpaceSettings, schema v1alpha1.Space) {
	if p, ok := storage.ParseSpacePolicy(schema.Policy); ok {
		s.Policy = p
	}
	s.Actions = nil
	for _, a := range schema.Actions {
		kind, ok := actionKind(a.Action)
		if !ok {
			continue
		}
		s.Actions = append(s.Actions, storage.SpaceAction{Device: a.Device, Kind: kind})
	}
}

func actionKind(key v1alpha1.ActionKey) (storage.ActionKind, bool) {
	switch key {
	case v1alpha1.ActionKeyResize:
		return storage.ActionResize, true
	case v1alpha1.ActionKeyDelete:
		return storage.ActionDelete, true
	case v1alpha1.ActionKeyForceDelete:
		return storage.ActionForceDelete, true
	}
	return "", false
}

// DecodeVolume applies a wire volume on top of the template of its mount path.
func DecodeVolume(schema v1alpha1.VolumeSchema, product *config.Product) storage.Volume {
	var path string
	if schema.Mount != nil {
		path = schema.Mount.Path
	}
	v := templates.Resolve(path, product)

	if schema.Mount != nil && schema.Mount.Options != nil {
		v.MountOptions = append([]string(nil), schema.Mount.Options...)
	}
	if schema.Filesystem != nil {
		decodeFilesystem(&v, *schema.Filesystem)
	}
	if schema.Size != nil {
		decodeSize(&v, *schema.Size)
	}
	if schema.Target != nil {
		v.Location = decodeLocation(*schema.Target)
	}
	return v
}

// Only filesystems listed in the outline are accepted.
func decodeFilesystem(v *storage.Volume, schema v1alpha1.Filesystem) {
	if schema.Btrfs == nil {
		if fs, ok := storage.ParseFSType(schema.Type); ok && v.Outline.SupportsFSType(fs) {
			v.FSType = fs
		}
		return
	}

	if v.Outline.SupportsFSType(storage.FSTypeBtrfs) {
		v.FSType = storage.FSTypeBtrfs
	}
	if schema.Btrfs.Snapshots != nil && v.Outline.SnapshotsConfigurable {
		v.Btrfs.Snapshots = *schema.Btrfs.Snapshots
	}
}

func decodeSize(v *storage.Volume, schema v1alpha1.Size) {
	if schema.Auto {
		if v.AutoSizeSupported() {
			v.AutoSize = true
		}
		return
	}

	v.AutoSize = false
	v.MinSize = storage.DiskSize(schema.Min)
	v.MaxSize = storage.Unlimited
	if schema.Max != nil {
		v.MaxSize = storage.DiskSize(*schema.Max)
	}
}

func decodeLocation(schema v1alpha1.VolumeTarget) storage.VolumeLocation {
	switch schema.Kind {
	case v1alpha1.VolumeTargetNewPartition:
		return storage.VolumeLocation{Target: storage.LocationNewPartition, Device: schema.Device}
	case v1alpha1.VolumeTargetNewVg:
		return storage.VolumeLocation{Target: storage.LocationNewVG, Device: schema.Device}
	case v1alpha1.VolumeTargetDevice:
		return storage.VolumeLocation{Target: storage.LocationDevice, Device: schema.Device}
	case v1alpha1.VolumeTargetFilesystem:
		return storage.VolumeLocation{Target: storage.LocationFilesystem, Device: schema.Device}
	default:
		return storage.VolumeLocation{Target: storage.LocationDefault}
	}
}
