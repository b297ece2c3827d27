package storage

import "fmt"

// DeviceTarget selects the device the system is installed on.
// Implemented by DiskTarget and NewLvmVgTarget only.
type DeviceTarget interface {
	isDeviceTarget()
}

// DiskTarget installs on partitions of a single disk.
type DiskTarget struct {
	Name string // Disk name (e.g., "/dev/sda"); empty lets the engine choose
}

func (DiskTarget) isDeviceTarget() {}

// NewLvmVgTarget installs on logical volumes of a new LVM volume group.
type NewLvmVgTarget struct {
	CandidatePVDevices []string // Devices for the physical volumes; empty lets the engine choose
}

func (NewLvmVgTarget) isDeviceTarget() {}

// BootSettings configures the boot partitions.
type BootSettings struct {
	Configure bool   // Whether boot partitions are proposed
	Device    string // Device for the boot partitions; only meaningful when Configure is set
}

// EncryptionMethod is the method used to encrypt devices.
type EncryptionMethod string

const (
	EncryptionLUKS1          EncryptionMethod = "luks1"
	EncryptionLUKS2          EncryptionMethod = "luks2"
	EncryptionPervasiveLUKS2 EncryptionMethod = "pervasive_luks2"
	EncryptionTPMFDE         EncryptionMethod = "tpm_fde"
	EncryptionProtectedSwap  EncryptionMethod = "protected_swap"
	EncryptionSecureSwap     EncryptionMethod = "secure_swap"
	EncryptionRandomSwap     EncryptionMethod = "random_swap"
)

// DefaultEncryptionMethod is used when neither settings nor product name one.
const DefaultEncryptionMethod = EncryptionLUKS2

var encryptionMethods = []EncryptionMethod{
	EncryptionLUKS1,
	EncryptionLUKS2,
	EncryptionPervasiveLUKS2,
	EncryptionTPMFDE,
	EncryptionProtectedSwap,
	EncryptionSecureSwap,
	EncryptionRandomSwap,
}

// ParseEncryptionMethod returns the method with the given id.
func ParseEncryptionMethod(s string) (EncryptionMethod, bool) {
	for _, m := range encryptionMethods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// PBKDFunction is the password-based key derivation function for LUKS2.
type PBKDFunction string

const (
	PBKDFunctionNone     PBKDFunction = ""
	PBKDFunctionPBKDF2   PBKDFunction = "pbkdf2"
	PBKDFunctionArgon2i  PBKDFunction = "argon2i"
	PBKDFunctionArgon2id PBKDFunction = "argon2id"
)

// ParsePBKDFunction returns the function with the given value.
func ParsePBKDFunction(s string) (PBKDFunction, bool) {
	switch f := PBKDFunction(s); f {
	case PBKDFunctionPBKDF2, PBKDFunctionArgon2i, PBKDFunctionArgon2id:
		return f, true
	}
	return PBKDFunctionNone, false
}

// EncryptionSettings configures device encryption.
type EncryptionSettings struct {
	Encrypt      bool
	Password     string
	Method       EncryptionMethod
	PBKDFunction PBKDFunction // PBKDFunctionNone lets the engine pick
}

// Validate checks that an enabled encryption carries password and method.
func (e *EncryptionSettings) Validate() error {
	if !e.Encrypt {
		return nil
	}
	if e.Password == "" {
		return fmt.Errorf("encryption password is required")
	}
	if e.Method == "" {
		return fmt.Errorf("encryption method is required")
	}
	return nil
}

// SpacePolicy decides how to make room for the new system.
type SpacePolicy string

const (
	SpacePolicyDelete SpacePolicy = "delete" // Delete everything on the target devices
	SpacePolicyResize SpacePolicy = "resize" // Shrink existing partitions as needed
	SpacePolicyKeep   SpacePolicy = "keep"   // Use only the available free space
	SpacePolicyCustom SpacePolicy = "custom" // Apply the explicit actions only
)

// DefaultSpacePolicy is used when neither settings nor product name one.
const DefaultSpacePolicy = SpacePolicyKeep

// ParseSpacePolicy returns the policy with the given id.
func ParseSpacePolicy(s string) (SpacePolicy, bool) {
	switch p := SpacePolicy(s); p {
	case SpacePolicyDelete, SpacePolicyResize, SpacePolicyKeep, SpacePolicyCustom:
		return p, true
	}
	return "", false
}

// ActionKind is what to do with an existing device when making space.
type ActionKind string

const (
	ActionResize      ActionKind = "resize"
	ActionDelete      ActionKind = "delete"
	ActionForceDelete ActionKind = "force_delete"
)

// SpaceAction applies an ActionKind to a device.
type SpaceAction struct {
	Device string
	Kind   ActionKind
}

// SpaceSettings configures space reclamation. Actions are applied in order.
type SpaceSettings struct {
	Policy  SpacePolicy
	Actions []SpaceAction
}

// ProposalSettings is the complete input of a proposal calculation.
type ProposalSettings struct {
	Device     DeviceTarget
	Boot       BootSettings
	Encryption EncryptionSettings
	Space      SpaceSettings
	Volumes    []Volume
}

// NewProposalSettings returns settings with the defaults used when the input
// says nothing: engine-chosen disk, boot configured, no encryption.
func NewProposalSettings() *ProposalSettings {
	return &ProposalSettings{
		Device: DiskTarget{},
		Boot:   BootSettings{Configure: true},
		Encryption: EncryptionSettings{
			Method: DefaultEncryptionMethod,
		},
		Space: SpaceSettings{Policy: DefaultSpacePolicy},
	}
}

// BootDevice returns the device that must hold the boot partitions.
// Returns "" when boot is not configured or no device can be deduced.
//
// An explicit boot device wins. Otherwise the target disk, or the first
// candidate physical volume of a new volume group, is used.
func (s *ProposalSettings) BootDevice() string {
	if !s.Boot.Configure {
		return ""
	}
	if s.Boot.Device != "" {
		return s.Boot.Device
	}
	return s.DefaultBootDevice()
}

// DefaultBootDevice returns the boot device implied by the device target.
func (s *ProposalSettings) DefaultBootDevice() string {
	switch t := s.Device.(type) {
	case DiskTarget:
		return t.Name
	case NewLvmVgTarget:
		if len(t.CandidatePVDevices) > 0 {
			return t.CandidatePVDevices[0]
		}
	}
	return ""
}

// Volume returns the volume mounted at path, or nil.
func (s *ProposalSettings) Volume(path string) *Volume {
	for i := range s.Volumes {
		if s.Volumes[i].MountPath == path {
			return &s.Volumes[i]
		}
	}
	return nil
}

// Validate checks cross-field invariants of the settings.
// Conversions never call it; it is for callers assembling settings by hand.
func (s *ProposalSettings) Validate() error {
	if s.Device == nil {
		return fmt.Errorf("device target is required")
	}
	if err := s.Encryption.Validate(); err != nil {
		return fmt.Errorf("encryption: %w", err)
	}
	seen := make(map[string]bool)
	for i := range s.Volumes {
		v := &s.Volumes[i]
		if err := v.Validate(); err != nil {
			return fmt.Errorf("volumes[%d]: %w", i, err)
		}
		if v.MountPath == "" {
			continue
		}
		if seen[v.MountPath] {
			return fmt.Errorf("volumes[%d]: duplicate mount path %q", i, v.MountPath)
		}
		seen[v.MountPath] = true
	}
	return nil
}

// Clone returns a deep copy of the settings.
func (s *ProposalSettings) Clone() *ProposalSettings {
	if s == nil {
		return nil
	}
	c := *s
	switch t := s.Device.(type) {
	case NewLvmVgTarget:
		c.Device = NewLvmVgTarget{CandidatePVDevices: cloneStrings(t.CandidatePVDevices)}
	case DiskTarget:
		c.Device = t
	}
	if s.Space.Actions != nil {
		c.Space.Actions = append([]SpaceAction(nil), s.Space.Actions...)
	}
	if s.Volumes != nil {
		c.Volumes = make([]Volume, len(s.Volumes))
		for i := range s.Volumes {
			c.Volumes[i] = s.Volumes[i].Clone()
		}
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
