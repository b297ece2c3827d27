package v1alpha1

import (
	"gopkg.in/yaml.v3"
)

// VolumeSchema is the wire representation of one volume. Every field is
// optional; missing fields come from the volume template of the mount path.
type VolumeSchema struct {
	// +optional
	Mount *Mount `json:"mount,omitempty" yaml:"mount,omitempty"`

	// Filesystem is either a filesystem name or {btrfs: {snapshots: bool}}.
	// +optional
	Filesystem *Filesystem `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`

	// Size is either "auto" or {min, max}.
	// +optional
	Size *Size `json:"size,omitempty" yaml:"size,omitempty"`

	// Target is "default" or a one-key object naming the device.
	// +optional
	Target *VolumeTarget `json:"target,omitempty" yaml:"target,omitempty"`
}

// Mount holds the mount point of a volume.
type Mount struct {
	Path string `json:"path" yaml:"path"`

	// +optional
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// FilesystemBtrfs is the filesystem type selected by the object form.
const FilesystemBtrfs = "btrfs"

// Filesystem is "<type>" | {btrfs: {snapshots?: bool}}.
//
// When Btrfs is set the object form is used and Type is always "btrfs".
type Filesystem struct {
	Type  string
	Btrfs *BtrfsSchema
}

// BtrfsSchema holds the btrfs options of the object filesystem form.
type BtrfsSchema struct {
	// +optional
	Snapshots *bool `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
}

// SizeAuto is the string form of Size.
const SizeAuto = "auto"

// Size is "auto" | {min: <bytes>, max?: <bytes>}. A nil Max means unlimited.
type Size struct {
	Auto bool
	Min  uint64
	Max  *uint64
}

// VolumeTargetKind names the location of a volume.
type VolumeTargetKind string

const (
	VolumeTargetDefault      VolumeTargetKind = "default"
	VolumeTargetNewPartition VolumeTargetKind = "newPartition"
	VolumeTargetNewVg        VolumeTargetKind = "newVg"
	VolumeTargetDevice       VolumeTargetKind = "device"
	VolumeTargetFilesystem   VolumeTargetKind = "filesystem"
)

// volumeTargetKeys is the lookup order for target objects. When several keys
// are present the first one wins.
var volumeTargetKeys = []VolumeTargetKind{
	VolumeTargetNewPartition,
	VolumeTargetNewVg,
	VolumeTargetDevice,
	VolumeTargetFilesystem,
}

// VolumeTarget is "default" | {newPartition|newVg|device|filesystem: <deviceName>}.
type VolumeTarget struct {
	Kind   VolumeTargetKind
	Device string
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *VolumeSchema) UnmarshalJSON(data []byte) error {
	raw, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	*v, _ = volumeFromValue(raw)
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (v *VolumeSchema) UnmarshalYAML(node *yaml.Node) error {
	raw, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	*v, _ = volumeFromValue(raw)
	return nil
}

func volumeFromValue(v interface{}) (VolumeSchema, bool) {
	m, ok := asMap(v)
	if !ok {
		return VolumeSchema{}, false
	}

	var vol VolumeSchema
	if mount, ok := mountFromValue(m["mount"]); ok {
		vol.Mount = &mount
	}
	if fs, ok := filesystemFromValue(m["filesystem"]); ok {
		vol.Filesystem = &fs
	}
	if size, ok := sizeFromValue(m["size"]); ok {
		vol.Size = &size
	}
	if target, ok := volumeTargetFromValue(m["target"]); ok {
		vol.Target = &target
	}
	return vol, true
}

func mountFromValue(v interface{}) (Mount, bool) {
	m, ok := asMap(v)
	if !ok {
		return Mount{}, false
	}
	path, ok := asString(m["path"])
	if !ok {
		return Mount{}, false
	}
	mount := Mount{Path: path}
	if opts, ok := asStrings(m["options"]); ok {
		mount.Options = opts
	}
	return mount, true
}

func filesystemFromValue(v interface{}) (Filesystem, bool) {
	if s, ok := asString(v); ok {
		return Filesystem{Type: s}, true
	}

	m, ok := asMap(v)
	if !ok {
		return Filesystem{}, false
	}
	btrfs, ok := asMap(m[FilesystemBtrfs])
	if !ok {
		return Filesystem{}, false
	}
	fs := Filesystem{Type: FilesystemBtrfs, Btrfs: &BtrfsSchema{}}
	if snapshots, ok := asBool(btrfs["snapshots"]); ok {
		fs.Btrfs.Snapshots = &snapshots
	}
	return fs, true
}

func (f Filesystem) toValue() interface{} {
	if f.Btrfs == nil {
		return f.Type
	}
	btrfs := map[string]interface{}{}
	if f.Btrfs.Snapshots != nil {
		btrfs["snapshots"] = *f.Btrfs.Snapshots
	}
	return map[string]interface{}{FilesystemBtrfs: btrfs}
}

// MarshalJSON implements the json.Marshaler interface.
func (f Filesystem) MarshalJSON() ([]byte, error) {
	return marshalJSONValue(f.toValue())
}

// MarshalYAML implements the yaml.Marshaler interface.
func (f Filesystem) MarshalYAML() (interface{}, error) {
	return f.toValue(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *Filesystem) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	parsed, ok := filesystemFromValue(v)
	if !ok {
		return unionError("filesystem", v)
	}
	*f = parsed
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (f *Filesystem) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	parsed, ok := filesystemFromValue(v)
	if !ok {
		return unionError("filesystem", v)
	}
	*f = parsed
	return nil
}

// An object without a usable min is malformed. A null or missing max is
// unlimited.
func sizeFromValue(v interface{}) (Size, bool) {
	if s, ok := asString(v); ok {
		if s == SizeAuto {
			return Size{Auto: true}, true
		}
		return Size{}, false
	}

	m, ok := asMap(v)
	if !ok {
		return Size{}, false
	}
	minSize, ok := asUint64(m["min"])
	if !ok {
		return Size{}, false
	}
	size := Size{Min: minSize}
	if maxSize, ok := asUint64(m["max"]); ok {
		size.Max = &maxSize
	}
	return size, true
}

func (s Size) toValue() interface{} {
	if s.Auto {
		return SizeAuto
	}
	out := map[string]interface{}{"min": s.Min}
	if s.Max != nil {
		out["max"] = *s.Max
	}
	return out
}

// MarshalJSON implements the json.Marshaler interface.
func (s Size) MarshalJSON() ([]byte, error) {
	return marshalJSONValue(s.toValue())
}

// MarshalYAML implements the yaml.Marshaler interface.
func (s Size) MarshalYAML() (interface{}, error) {
	return s.toValue(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Size) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	parsed, ok := sizeFromValue(v)
	if !ok {
		return unionError("size", v)
	}
	*s = parsed
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	parsed, ok := sizeFromValue(v)
	if !ok {
		return unionError("size", v)
	}
	*s = parsed
	return nil
}

func volumeTargetFromValue(v interface{}) (VolumeTarget, bool) {
	if s, ok := asString(v); ok {
		if VolumeTargetKind(s) == VolumeTargetDefault {
			return VolumeTarget{Kind: VolumeTargetDefault}, true
		}
		return VolumeTarget{}, false
	}

	m, ok := asMap(v)
	if !ok {
		return VolumeTarget{}, false
	}
	for _, key := range volumeTargetKeys {
		if device, ok := asString(m[string(key)]); ok {
			return VolumeTarget{Kind: key, Device: device}, true
		}
	}
	return VolumeTarget{}, false
}

func (t VolumeTarget) toValue() interface{} {
	if t.Kind == VolumeTargetDefault || t.Kind == "" {
		return string(VolumeTargetDefault)
	}
	return map[string]interface{}{string(t.Kind): t.Device}
}

// MarshalJSON implements the json.Marshaler interface.
func (t VolumeTarget) MarshalJSON() ([]byte, error) {
	return marshalJSONValue(t.toValue())
}

// MarshalYAML implements the yaml.Marshaler interface.
func (t VolumeTarget) MarshalYAML() (interface{}, error) {
	return t.toValue(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *VolumeTarget) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	parsed, ok := volumeTargetFromValue(v)
	if !ok {
		return unionError("volume target", v)
	}
	*t = parsed
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (t *VolumeTarget) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	parsed, ok := volumeTargetFromValue(v)
	if !ok {
		return unionError("volume target", v)
	}
	*t = parsed
	return nil
}
