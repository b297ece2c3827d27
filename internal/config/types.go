// Package config loads the product configuration: the volume templates and
// storage defaults a product ships with. diskplan only reads it.
package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskplan/internal/storage"
)

// Product is the complete product configuration.
type Product struct {
	Name    string        `yaml:"name,omitempty"`
	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig holds the storage section of a product.
type StorageConfig struct {
	LVM             bool                   `yaml:"lvm,omitempty"`          // Default to a new LVM volume group
	SpacePolicy     string                 `yaml:"space_policy,omitempty"` // delete, resize, keep or custom
	Encryption      EncryptionConfig       `yaml:"encryption,omitempty"`
	Volumes         []string               `yaml:"volumes,omitempty"` // Mount paths proposed by default
	VolumeTemplates []VolumeTemplateConfig `yaml:"volume_templates,omitempty"`
}

// EncryptionConfig holds product encryption defaults.
type EncryptionConfig struct {
	Method       string `yaml:"method,omitempty"`
	PBKDFunction string `yaml:"pbkd_function,omitempty"`
}

// VolumeTemplateConfig is the template for the volume mounted at MountPath.
// A template with an empty MountPath applies to any path without its own template.
type VolumeTemplateConfig struct {
	MountPath    string        `yaml:"mount_path"`
	MountOptions []string      `yaml:"mount_options,omitempty"`
	Filesystem   string        `yaml:"filesystem,omitempty"`
	Btrfs        BtrfsConfig   `yaml:"btrfs,omitempty"`
	Size         SizeConfig    `yaml:"size,omitempty"`
	Outline      OutlineConfig `yaml:"outline,omitempty"`
}

// BtrfsConfig holds btrfs defaults of a template.
type BtrfsConfig struct {
	Snapshots        bool     `yaml:"snapshots,omitempty"`
	ReadOnly         bool     `yaml:"read_only,omitempty"`
	DefaultSubvolume string   `yaml:"default_subvolume,omitempty"`
	Subvolumes       []string `yaml:"subvolumes,omitempty"`
}

// SizeConfig holds the default sizes of a template.
// Max defaults to unlimited when omitted.
type SizeConfig struct {
	Auto bool              `yaml:"auto,omitempty"`
	Min  storage.DiskSize  `yaml:"min,omitempty"`
	Max  *storage.DiskSize `yaml:"max,omitempty"`
}

// OutlineConfig describes which settings users may change for a template.
type OutlineConfig struct {
	Required              bool            `yaml:"required,omitempty"`
	Filesystems           []string        `yaml:"filesystems,omitempty"`
	SnapshotsConfigurable bool            `yaml:"snapshots_configurable,omitempty"`
	AutoSize              *AutoSizeConfig `yaml:"auto_size,omitempty"`
}

// AutoSizeConfig describes how the engine computes automatic sizes.
type AutoSizeConfig struct {
	BaseMin            storage.DiskSize  `yaml:"base_min,omitempty"`
	BaseMax            *storage.DiskSize `yaml:"base_max,omitempty"`
	SnapshotsIncrement string            `yaml:"snapshots_increment,omitempty"` // e.g. "250%"
	AdjustByRAM        bool              `yaml:"adjust_by_ram,omitempty"`
	MaxFallbackFor     []string          `yaml:"max_fallback_for,omitempty"`
	MinFallbackFor     []string          `yaml:"min_fallback_for,omitempty"`
}

// SnapshotsPercentage parses SnapshotsIncrement ("250%" -> 250).
// Returns 0 when unset or malformed.
func (a *AutoSizeConfig) SnapshotsPercentage() uint {
	v := strings.TrimSuffix(strings.TrimSpace(a.SnapshotsIncrement), "%")
	if v == "" {
		return 0
	}
	var n uint
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0
	}
	return n
}

// Template returns the template configured for mountPath.
// The lookup is exact after path cleaning.
func (p *Product) Template(mountPath string) (*VolumeTemplateConfig, bool) {
	if p == nil {
		return nil, false
	}
	want := CleanMountPath(mountPath)
	for i := range p.Storage.VolumeTemplates {
		if p.Storage.VolumeTemplates[i].MountPath == want {
			return &p.Storage.VolumeTemplates[i], true
		}
	}
	return nil, false
}

// DefaultDeviceTarget returns where the proposal goes when the user picks
// nothing: a new LVM volume group for LVM products, otherwise a disk chosen
// by the engine.
func (p *Product) DefaultDeviceTarget() storage.DeviceTarget {
	if p != nil && p.Storage.LVM {
		return storage.NewLvmVgTarget{}
	}
	return storage.DiskTarget{}
}

// DefaultSpacePolicy returns the product space policy, or the global default.
func (p *Product) DefaultSpacePolicy() storage.SpacePolicy {
	if p != nil {
		if policy, ok := storage.ParseSpacePolicy(p.Storage.SpacePolicy); ok {
			return policy
		}
	}
	return storage.DefaultSpacePolicy
}

// DefaultEncryptionMethod returns the product encryption method, or the global default.
func (p *Product) DefaultEncryptionMethod() storage.EncryptionMethod {
	if p != nil {
		if m, ok := storage.ParseEncryptionMethod(p.Storage.Encryption.Method); ok {
			return m
		}
	}
	return storage.DefaultEncryptionMethod
}

// DefaultPBKDFunction returns the product key derivation function, if any.
func (p *Product) DefaultPBKDFunction() storage.PBKDFunction {
	if p != nil {
		if f, ok := storage.ParsePBKDFunction(p.Storage.Encryption.PBKDFunction); ok {
			return f
		}
	}
	return storage.PBKDFunctionNone
}

// CleanMountPath normalizes a mount path ("/home/" -> "/home").
// Non-absolute values such as "swap" are only trimmed.
func CleanMountPath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		return p
	}
	return path.Clean(p)
}

// Normalize sanitizes user input to consistent formats.
// This is called automatically by LoadFromFile before validation.
func (p *Product) Normalize() {
	s := &p.Storage
	s.SpacePolicy = strings.ToLower(strings.TrimSpace(s.SpacePolicy))
	s.Encryption.Method = strings.ToLower(strings.TrimSpace(s.Encryption.Method))
	s.Encryption.PBKDFunction = strings.ToLower(strings.TrimSpace(s.Encryption.PBKDFunction))

	for i := range s.Volumes {
		s.Volumes[i] = CleanMountPath(s.Volumes[i])
	}

	for i := range s.VolumeTemplates {
		tpl := &s.VolumeTemplates[i]
		tpl.MountPath = CleanMountPath(tpl.MountPath)
		tpl.Filesystem = strings.ToLower(strings.TrimSpace(tpl.Filesystem))
		for j := range tpl.Outline.Filesystems {
			tpl.Outline.Filesystems[j] = strings.ToLower(strings.TrimSpace(tpl.Outline.Filesystems[j]))
		}
		if tpl.Outline.AutoSize != nil {
			a := tpl.Outline.AutoSize
			for j := range a.MaxFallbackFor {
				a.MaxFallbackFor[j] = CleanMountPath(a.MaxFallbackFor[j])
			}
			for j := range a.MinFallbackFor {
				a.MinFallbackFor[j] = CleanMountPath(a.MinFallbackFor[j])
			}
		}
	}
}

// Validate checks the configuration for errors.
func (p *Product) Validate() error {
	s := &p.Storage

	if s.SpacePolicy != "" {
		if _, ok := storage.ParseSpacePolicy(s.SpacePolicy); !ok {
			return fmt.Errorf("storage.space_policy: unknown policy %q", s.SpacePolicy)
		}
	}
	if s.Encryption.Method != "" {
		if _, ok := storage.ParseEncryptionMethod(s.Encryption.Method); !ok {
			return fmt.Errorf("storage.encryption.method: unknown method %q", s.Encryption.Method)
		}
	}
	if s.Encryption.PBKDFunction != "" {
		if _, ok := storage.ParsePBKDFunction(s.Encryption.PBKDFunction); !ok {
			return fmt.Errorf("storage.encryption.pbkd_function: unknown function %q", s.Encryption.PBKDFunction)
		}
	}

	pathsSeen := make(map[string]bool)
	for i := range s.VolumeTemplates {
		tpl := &s.VolumeTemplates[i]
		if err := tpl.Validate(); err != nil {
			return fmt.Errorf("storage.volume_templates[%d]: %w", i, err)
		}
		if pathsSeen[tpl.MountPath] {
			return fmt.Errorf("storage.volume_templates[%d]: duplicate mount_path %q", i, tpl.MountPath)
		}
		pathsSeen[tpl.MountPath] = true
	}

	for i, v := range s.Volumes {
		if v == "" {
			return fmt.Errorf("storage.volumes[%d]: mount path is required", i)
		}
	}

	return nil
}

// Validate checks a single volume template.
func (t *VolumeTemplateConfig) Validate() error {
	for j, fs := range t.Outline.Filesystems {
		if _, ok := storage.ParseFSType(fs); !ok {
			return fmt.Errorf("outline.filesystems[%d]: unknown filesystem %q", j, fs)
		}
	}
	if t.Filesystem != "" {
		fs, ok := storage.ParseFSType(t.Filesystem)
		if !ok {
			return fmt.Errorf("filesystem: unknown filesystem %q", t.Filesystem)
		}
		if len(t.Outline.Filesystems) > 0 && !containsString(t.Outline.Filesystems, string(fs)) {
			return fmt.Errorf("filesystem: %q is not listed in outline.filesystems", t.Filesystem)
		}
	}
	if t.Size.Max != nil && !t.Size.Max.IsUnlimited() && t.Size.Min > *t.Size.Max {
		return fmt.Errorf("size: min %s is bigger than max %s", t.Size.Min, *t.Size.Max)
	}
	if t.Size.Auto && t.Outline.AutoSize == nil {
		return fmt.Errorf("size: auto requires outline.auto_size")
	}
	if a := t.Outline.AutoSize; a != nil && a.SnapshotsIncrement != "" && a.SnapshotsPercentage() == 0 {
		return fmt.Errorf("outline.auto_size.snapshots_increment: invalid percentage %q", a.SnapshotsIncrement)
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// LoadFromFile loads a product configuration from a YAML file.
func LoadFromFile(path string) (*Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read product file: %w", err)
	}
	return LoadFromYAML(data)
}

// LoadFromYAML loads a product configuration from YAML bytes.
func LoadFromYAML(data []byte) (*Product, error) {
	var product Product
	if err := yaml.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Normalize user input before validation
	product.Normalize()

	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product configuration: %w", err)
	}

	return &product, nil
}
