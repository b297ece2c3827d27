// Package templates builds default volumes from the product configuration.
//
// Every volume read from the wire schema starts as a template and gets the
// schema values applied on top of it, so the template decides everything the
// schema leaves out (filesystem, sizes, btrfs layout, outline).
package templates

import (
	"github.com/jbweber/diskplan/internal/config"
	"github.com/jbweber/diskplan/internal/storage"
)

// Resolve returns the default volume for mountPath.
//
// Lookup order:
//  1. the template configured for the (cleaned) mount path
//  2. the product catch-all template (empty mount path), moved to mountPath
//  3. a generic volume: no filesystem, no auto size, unlimited max, empty outline
//
// The result never shares memory with the product configuration.
func Resolve(mountPath string, product *config.Product) storage.Volume {
	path := config.CleanMountPath(mountPath)

	if tpl, ok := product.Template(path); ok {
		return fromConfig(tpl)
	}
	if tpl, ok := product.Template(""); ok {
		v := fromConfig(tpl)
		v.MountPath = path
		return v
	}
	return Generic(path)
}

// Generic returns the volume used when the product has no template at all.
func Generic(mountPath string) storage.Volume {
	return storage.Volume{
		MountPath: mountPath,
		MaxSize:   storage.Unlimited,
		Location:  storage.VolumeLocation{Target: storage.LocationDefault},
	}
}

// All returns one volume per configured template, in configuration order.
// The catch-all template is skipped.
func All(product *config.Product) []storage.Volume {
	if product == nil {
		return nil
	}
	var out []storage.Volume
	for i := range product.Storage.VolumeTemplates {
		tpl := &product.Storage.VolumeTemplates[i]
		if tpl.MountPath == "" {
			continue
		}
		out = append(out, fromConfig(tpl))
	}
	return out
}

// Defaults returns the volumes the product proposes when the user does not
// list any, in the order of the product "volumes" list.
func Defaults(product *config.Product) []storage.Volume {
	if product == nil {
		return nil
	}
	out := make([]storage.Volume, 0, len(product.Storage.Volumes))
	for _, path := range product.Storage.Volumes {
		out = append(out, Resolve(path, product))
	}
	return out
}

func fromConfig(tpl *config.VolumeTemplateConfig) storage.Volume {
	v := Generic(tpl.MountPath)

	if len(tpl.MountOptions) > 0 {
		v.MountOptions = append([]string(nil), tpl.MountOptions...)
	}
	if fs, ok := storage.ParseFSType(tpl.Filesystem); ok {
		v.FSType = fs
	}

	v.Btrfs = storage.BtrfsSettings{
		Snapshots:        tpl.Btrfs.Snapshots,
		ReadOnly:         tpl.Btrfs.ReadOnly,
		DefaultSubvolume: tpl.Btrfs.DefaultSubvolume,
	}
	if len(tpl.Btrfs.Subvolumes) > 0 {
		v.Btrfs.Subvolumes = append([]string(nil), tpl.Btrfs.Subvolumes...)
	}

	v.Outline = outlineFromConfig(tpl)

	v.MinSize = tpl.Size.Min
	if tpl.Size.Max != nil {
		v.MaxSize = *tpl.Size.Max
	}
	v.AutoSize = tpl.Size.Auto && v.AutoSizeSupported()

	return v
}

func outlineFromConfig(tpl *config.VolumeTemplateConfig) storage.Outline {
	o := storage.Outline{
		Required:              tpl.Outline.Required,
		SnapshotsConfigurable: tpl.Outline.SnapshotsConfigurable,
		BaseMaxSize:           storage.Unlimited,
	}

	for _, name := range tpl.Outline.Filesystems {
		if fs, ok := storage.ParseFSType(name); ok {
			o.FSTypes = append(o.FSTypes, fs)
		}
	}

	a := tpl.Outline.AutoSize
	if a == nil {
		return o
	}

	o.AdjustByRAM = a.AdjustByRAM
	o.SnapshotsPercentage = a.SnapshotsPercentage()
	o.SnapshotsAffectSizes = o.SnapshotsPercentage > 0
	o.BaseMinSize = a.BaseMin
	if a.BaseMax != nil {
		o.BaseMaxSize = *a.BaseMax
	}
	if len(a.MaxFallbackFor) > 0 {
		o.MaxFallbackFor = append([]string(nil), a.MaxFallbackFor...)
	}
	if len(a.MinFallbackFor) > 0 {
		o.MinFallbackFor = append([]string(nil), a.MinFallbackFor...)
	}

	// Sizes can only adapt when something drives the adaptation.
	o.SupportAutoSize = o.AdjustByRAM || o.SnapshotsAffectSizes || len(o.SizeRelevantVolumes()) > 0

	return o
}
