package v1alpha1

// Version is the version of the settings schema.
const Version = "v1alpha1"

// NewSettings returns settings with an explicit, empty volume list.
func NewSettings() *Settings {
	return &Settings{Volumes: []VolumeSchema{}}
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// Uint64Ptr returns a pointer to n.
func Uint64Ptr(n uint64) *uint64 {
	return &n
}

// IsConfigure returns true if boot partitions are configured.
// Handles nil pointer by returning default value (true).
func (s *Settings) IsConfigure() bool {
	if s.Boot == nil {
		return true // default
	}
	return s.Boot.Configure
}

// GetSpacePolicy returns the space policy, or "" when the space section is missing.
func (s *Settings) GetSpacePolicy() string {
	if s.Space == nil {
		return ""
	}
	return s.Space.Policy
}

// VolumePaths returns the mount paths of the volumes that carry one.
func (s *Settings) VolumePaths() []string {
	var paths []string
	for _, v := range s.Volumes {
		if v.Mount != nil {
			paths = append(paths, v.Mount.Path)
		}
	}
	return paths
}

// IsEncrypted returns true if the settings carry an encryption password.
func (s *Settings) IsEncrypted() bool {
	return s.Encryption != nil && s.Encryption.Password != ""
}
