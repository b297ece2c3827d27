package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// DiskSize is a size in bytes.
type DiskSize uint64

// Unlimited is the sentinel for an unbounded size.
const Unlimited DiskSize = math.MaxUint64

// Common size units.
const (
	KiB DiskSize = 1 << 10
	MiB DiskSize = 1 << 20
	GiB DiskSize = 1 << 30
	TiB DiskSize = 1 << 40
)

// IsUnlimited reports whether the size is the Unlimited sentinel.
func (s DiskSize) IsUnlimited() bool {
	return s == Unlimited
}

// Bytes returns the size as a plain byte count.
func (s DiskSize) Bytes() uint64 {
	return uint64(s)
}

// String formats the size with binary units (e.g., "5.0 GiB") or "unlimited".
func (s DiskSize) String() string {
	if s.IsUnlimited() {
		return "unlimited"
	}
	return humanize.IBytes(uint64(s))
}

// ParseDiskSize parses a byte count, a human readable size ("5 GiB", "1.5 TB")
// or the literal "unlimited".
func ParseDiskSize(s string) (DiskSize, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, fmt.Errorf("empty size")
	}
	if strings.EqualFold(v, "unlimited") {
		return Unlimited, nil
	}
	if n, err := strconv.ParseUint(v, 10, 64); err == nil {
		return DiskSize(n), nil
	}
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return DiskSize(n), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
// Accepts integers (bytes) and strings understood by ParseDiskSize.
func (s *DiskSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}
	parsed, err := ParseDiskSize(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
// Writes a byte count, or "unlimited" for the sentinel.
func (s DiskSize) MarshalYAML() (interface{}, error) {
	if s.IsUnlimited() {
		return "unlimited", nil
	}
	return uint64(s), nil
}

// MarshalJSON implements the json.Marshaler interface.
// Writes a byte count, or "unlimited" for the sentinel.
func (s DiskSize) MarshalJSON() ([]byte, error) {
	if s.IsUnlimited() {
		return []byte(`"unlimited"`), nil
	}
	return strconv.AppendUint(nil, uint64(s), 10), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Accepts numbers (bytes) and strings understood by ParseDiskSize.
func (s *DiskSize) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("size must be a byte count or a string: %s", data)
		}
		*s = DiskSize(n)
		return nil
	}
	parsed, err := ParseDiskSize(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
