// Package storage provides the domain model for installation storage settings.
//
// The model is what the rest of diskplan reasons about. It sits between the
// wire schema (api/v1alpha1) and the engine-facing settings (internal/engine):
//
//   - ProposalSettings: the complete input of a proposal run
//   - DeviceTarget: where the system is installed (a disk or a new LVM volume group)
//   - BootSettings, EncryptionSettings, SpaceSettings
//   - Volume: one mount point with its filesystem, size range and location
//   - Outline: per-volume metadata telling which filesystems and sizing modes are valid
//
// Device Targets:
//
// DeviceTarget is a sealed interface. The two implementations are DiskTarget
// and NewLvmVgTarget; every conversion site uses a type switch over both so a
// new variant shows up in every place that has to handle it:
//
//	switch t := settings.Device.(type) {
//	case storage.DiskTarget:
//	    // t.Name may be empty: the engine chooses the disk
//	case storage.NewLvmVgTarget:
//	    // t.CandidatePVDevices may be empty: the engine chooses the PVs
//	}
//
// Sizes:
//
// DiskSize counts bytes. Unlimited is the sentinel for an unbounded maximum.
// Sizes parse from integers, human readable strings ("5 GiB", "500 MB") and the
// literal "unlimited".
//
// Immutability:
//
// A ProposalSettings value handed to a proposal run is frozen: the orchestrator
// keeps a Clone and never mutates it. Callers that want different settings build
// a new value.
package storage
