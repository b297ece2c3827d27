// Package naming provides naming conventions for proposed storage devices
// and human readable device labels.
package naming

import (
	"fmt"
	"strings"

	"github.com/jbweber/diskplan/internal/engine"
)

// VGPrefix is the prefix of volume groups dedicated to a single volume.
const VGPrefix = "vg-"

// VGName returns the name of the volume group dedicated to the volume
// mounted at mountPath.
// Format: vg-{path without leading slash, "/" replaced by "_"}
//
// Example: "/" → vg-root, "/var/lib" → vg-var_lib, "swap" → vg-swap
func VGName(mountPath string) string {
	trimmed := strings.Trim(strings.TrimSpace(mountPath), "/")
	if trimmed == "" {
		return VGPrefix + "root"
	}
	return VGPrefix + strings.ReplaceAll(trimmed, "/", "_")
}

// DeviceLabel returns a one-line description of a disk.
// Format: {name}, {size}[, {TRANSPORT}][, {vendor model}][, {systems}]
//
// Example: "/dev/sda, 250 GiB, USB, Windows"
func DeviceLabel(d engine.Device) string {
	parts := []string{d.Name, d.Size.String()}

	if d.Transport != "" {
		parts = append(parts, strings.ToUpper(d.Transport))
	}
	if model := strings.TrimSpace(fmt.Sprintf("%s %s", d.Vendor, d.Model)); model != "" {
		parts = append(parts, model)
	}
	if len(d.Systems) > 0 {
		parts = append(parts, strings.Join(d.Systems, ", "))
	}
	return strings.Join(parts, ", ")
}
