package v1alpha1

import (
	"gopkg.in/yaml.v3"
)

// Settings is the wire representation of the storage proposal settings.
//
// Every section is optional on input; the conversion fills gaps from the
// product configuration. Volumes distinguishes "not given" (nil) from an
// explicit empty list.
type Settings struct {
	// Target selects the installation device.
	// +optional
	Target *Target `json:"target,omitempty" yaml:"target,omitempty"`

	// Boot configures the boot partitions.
	// +optional
	Boot *Boot `json:"boot,omitempty" yaml:"boot,omitempty"`

	// Encryption is only present when devices are encrypted.
	// +optional
	Encryption *Encryption `json:"encryption,omitempty" yaml:"encryption,omitempty"`

	// Space configures how to make room for the new system.
	// +optional
	Space *Space `json:"space,omitempty" yaml:"space,omitempty"`

	// Volumes lists the file systems to create.
	Volumes []VolumeSchema `json:"volumes" yaml:"volumes"`
}

// TargetKind is the short form of a Target.
type TargetKind string

const (
	// TargetDisk installs on a disk.
	TargetDisk TargetKind = "disk"

	// TargetNewLvmVg installs on a new LVM volume group.
	TargetNewLvmVg TargetKind = "newLvmVg"
)

// Target is "disk" | "newLvmVg" | {disk: name} | {newLvmVg: [names]}.
//
// The short string form is used when neither Disk nor PVDevices is set.
type Target struct {
	Kind      TargetKind
	Disk      string   // Only for TargetDisk
	PVDevices []string // Only for TargetNewLvmVg
}

// Boot configures the boot partitions.
type Boot struct {
	// Configure tells whether boot partitions are proposed.
	Configure bool `json:"configure" yaml:"configure"`

	// Device holds the boot partitions. Defaults to the target device.
	// +optional
	Device string `json:"device,omitempty" yaml:"device,omitempty"`
}

// Encryption configures device encryption.
type Encryption struct {
	Password string `json:"password" yaml:"password"`
	Method   string `json:"method" yaml:"method"`

	// PBKDFunction is the LUKS2 key derivation function (pbkdf2, argon2i, argon2id).
	// +optional
	PBKDFunction string `json:"pbkdFunction,omitempty" yaml:"pbkdFunction,omitempty"`
}

// Space configures how to make room for the new system.
type Space struct {
	// Policy is one of delete, resize, keep or custom.
	Policy string `json:"policy" yaml:"policy"`

	// Actions are applied in order.
	Actions []SpaceAction `json:"actions" yaml:"actions"`
}

// ActionKey is the key of a space action record.
type ActionKey string

const (
	ActionKeyResize      ActionKey = "resize"
	ActionKeyDelete      ActionKey = "delete"
	ActionKeyForceDelete ActionKey = "forceDelete"
)

// actionKeys is the lookup order for records carrying more than one key.
var actionKeys = []ActionKey{ActionKeyResize, ActionKeyDelete, ActionKeyForceDelete}

// SpaceAction is a one-key record: {<actionKey>: <deviceName>}.
type SpaceAction struct {
	Action ActionKey
	Device string
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Unknown keys and malformed sections are dropped.
func (s *Settings) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	*s = settingsFromValue(v)
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
// Unknown keys and malformed sections are dropped.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	*s = settingsFromValue(v)
	return nil
}

func settingsFromValue(v interface{}) Settings {
	var s Settings
	m, ok := asMap(v)
	if !ok {
		return s
	}

	if t, ok := targetFromValue(m["target"]); ok {
		s.Target = &t
	}
	if b, ok := bootFromValue(m["boot"]); ok {
		s.Boot = &b
	}
	if e, ok := encryptionFromValue(m["encryption"]); ok {
		s.Encryption = &e
	}
	if sp, ok := spaceFromValue(m["space"]); ok {
		s.Space = &sp
	}
	if list, ok := m["volumes"].([]interface{}); ok {
		s.Volumes = make([]VolumeSchema, 0, len(list))
		for _, item := range list {
			if vol, ok := volumeFromValue(item); ok {
				s.Volumes = append(s.Volumes, vol)
			}
		}
	}
	return s
}

func targetFromValue(v interface{}) (Target, bool) {
	if s, ok := asString(v); ok {
		switch TargetKind(s) {
		case TargetDisk, TargetNewLvmVg:
			return Target{Kind: TargetKind(s)}, true
		}
		return Target{}, false
	}

	m, ok := asMap(v)
	if !ok {
		return Target{}, false
	}
	if disk, ok := asString(m[string(TargetDisk)]); ok {
		return Target{Kind: TargetDisk, Disk: disk}, true
	}
	if pvs, ok := asStrings(m[string(TargetNewLvmVg)]); ok {
		return Target{Kind: TargetNewLvmVg, PVDevices: pvs}, true
	}
	return Target{}, false
}

func (t Target) toValue() interface{} {
	switch t.Kind {
	case TargetNewLvmVg:
		if len(t.PVDevices) == 0 {
			return string(TargetNewLvmVg)
		}
		return map[string]interface{}{string(TargetNewLvmVg): append([]string(nil), t.PVDevices...)}
	default:
		if t.Disk == "" {
			return string(TargetDisk)
		}
		return map[string]interface{}{string(TargetDisk): t.Disk}
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (t Target) MarshalJSON() ([]byte, error) {
	return marshalJSONValue(t.toValue())
}

// MarshalYAML implements the yaml.Marshaler interface.
func (t Target) MarshalYAML() (interface{}, error) {
	return t.toValue(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Target) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	parsed, ok := targetFromValue(v)
	if !ok {
		return unionError("target", v)
	}
	*t = parsed
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	parsed, ok := targetFromValue(v)
	if !ok {
		return unionError("target", v)
	}
	*t = parsed
	return nil
}

// A boot section without "configure" proposes boot partitions.
func bootFromValue(v interface{}) (Boot, bool) {
	m, ok := asMap(v)
	if !ok {
		return Boot{}, false
	}
	b := Boot{Configure: true}
	if configure, ok := asBool(m["configure"]); ok {
		b.Configure = configure
	}
	if device, ok := asString(m["device"]); ok {
		b.Device = device
	}
	return b, true
}

func encryptionFromValue(v interface{}) (Encryption, bool) {
	m, ok := asMap(v)
	if !ok {
		return Encryption{}, false
	}
	var e Encryption
	e.Password, _ = asString(m["password"])
	e.Method, _ = asString(m["method"])
	e.PBKDFunction, _ = asString(m["pbkdFunction"])
	return e, true
}

func spaceFromValue(v interface{}) (Space, bool) {
	m, ok := asMap(v)
	if !ok {
		return Space{}, false
	}
	var s Space
	s.Policy, _ = asString(m["policy"])
	if list, ok := m["actions"].([]interface{}); ok {
		s.Actions = make([]SpaceAction, 0, len(list))
		for _, item := range list {
			if a, ok := spaceActionFromValue(item); ok {
				s.Actions = append(s.Actions, a)
			}
		}
	}
	return s, true
}

func spaceActionFromValue(v interface{}) (SpaceAction, bool) {
	m, ok := asMap(v)
	if !ok {
		return SpaceAction{}, false
	}
	for _, key := range actionKeys {
		if device, ok := asString(m[string(key)]); ok {
			return SpaceAction{Action: key, Device: device}, true
		}
	}
	return SpaceAction{}, false
}

func (a SpaceAction) toValue() interface{} {
	return map[string]interface{}{string(a.Action): a.Device}
}

// MarshalJSON implements the json.Marshaler interface.
func (a SpaceAction) MarshalJSON() ([]byte, error) {
	return marshalJSONValue(a.toValue())
}

// MarshalYAML implements the yaml.Marshaler interface.
func (a SpaceAction) MarshalYAML() (interface{}, error) {
	return a.toValue(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *SpaceAction) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	parsed, ok := spaceActionFromValue(v)
	if !ok {
		return unionError("space action", v)
	}
	*a = parsed
	return nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *SpaceAction) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	parsed, ok := spaceActionFromValue(v)
	if !ok {
		return unionError("space action", v)
	}
	*a = parsed
	return nil
}
