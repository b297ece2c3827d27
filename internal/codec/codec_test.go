package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/config"
	"github.com/jbweber/diskplan/internal/storage"
)

const productYAML = `name: Test
storage:
  space_policy: delete
  encryption:
    method: luks2
    pbkd_function: argon2id
  volumes: [/, swap]
  volume_templates:
    - mount_path: /
      filesystem: btrfs
      btrfs:
        snapshots: true
        default_subvolume: "@"
        subvolumes: [home, var]
      size:
        auto: true
        min: 5 GiB
        max: 10 GiB
      outline:
        required: true
        filesystems: [btrfs, ext4, xfs]
        snapshots_configurable: true
        auto_size:
          base_min: 5 GiB
          base_max: 10 GiB
          snapshots_increment: 250%
          max_fallback_for: [/home]
          min_fallback_for: [/home]
    - mount_path: swap
      filesystem: swap
      size:
        auto: true
        min: 1 GiB
        max: 2 GiB
      outline:
        filesystems: [swap]
        auto_size:
          base_min: 1 GiB
    - mount_path: /home
      filesystem: xfs
      size:
        min: 10 GiB
      outline:
        filesystems: [xfs, ext4]
    - mount_path: /srv
      filesystem: ext4
      size:
        min: 1 GiB
      outline:
        filesystems: [ext4]
`

func testProduct(t *testing.T) *config.Product {
	t.Helper()
	return loadProduct(t, productYAML)
}

func testLVMProduct(t *testing.T) *config.Product {
	t.Helper()
	return loadProduct(t, strings.Replace(productYAML, "storage:\n", "storage:\n  lvm: true\n", 1))
}

func loadProduct(t *testing.T, data string) *config.Product {
	t.Helper()
	product, err := config.LoadFromYAML([]byte(data))
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}
	return product
}

func decodeJSON(t *testing.T, doc string) *v1alpha1.Settings {
	t.Helper()
	var s v1alpha1.Settings
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return &s
}

func decodeVolumeJSON(t *testing.T, doc string) v1alpha1.VolumeSchema {
	t.Helper()
	var vs v1alpha1.VolumeSchema
	if err := json.Unmarshal([]byte(doc), &vs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return vs
}

func marshalJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return string(data)
}

const fullSettings = `{
  "target": {"newLvmVg": ["/dev/sda", "/dev/sdb"]},
  "boot": {"configure": true, "device": "/dev/sda"},
  "encryption": {"password": "nots3cr3t", "method": "luks1", "pbkdFunction": "pbkdf2"},
  "space": {"policy": "custom", "actions": [{"forceDelete": "/dev/sda1"}, {"resize": "/dev/sda2"}, {"delete": "/dev/sdb1"}]},
  "volumes": [
    {
      "mount": {"path": "/", "options": ["compress=zstd"]},
      "filesystem": {"btrfs": {"snapshots": false}},
      "size": "auto",
      "target": "default"
    },
    {
      "mount": {"path": "/home", "options": ["noatime"]},
      "filesystem": "ext4",
      "size": {"min": 8500000000, "max": 20000000000},
      "target": {"newPartition": "/dev/sdb"}
    }
  ]
}`

func TestDecode_Full(t *testing.T) {
	product := testProduct(t)

	s := Decode(decodeJSON(t, fullSettings), product)

	assert.Equal(t, storage.NewLvmVgTarget{CandidatePVDevices: []string{"/dev/sda", "/dev/sdb"}}, s.Device)
	if s.Boot != (storage.BootSettings{Configure: true, Device: "/dev/sda"}) {
		t.Errorf("Unexpected boot: %+v", s.Boot)
	}
	wantEncryption := storage.EncryptionSettings{
		Encrypt:      true,
		Password:     "nots3cr3t",
		Method:       storage.EncryptionLUKS1,
		PBKDFunction: storage.PBKDFunctionPBKDF2,
	}
	if s.Encryption != wantEncryption {
		t.Errorf("Unexpected encryption: %+v", s.Encryption)
	}
	assert.Equal(t, storage.SpaceSettings{
		Policy: storage.SpacePolicyCustom,
		Actions: []storage.SpaceAction{
			{Device: "/dev/sda1", Kind: storage.ActionForceDelete},
			{Device: "/dev/sda2", Kind: storage.ActionResize},
			{Device: "/dev/sdb1", Kind: storage.ActionDelete},
		},
	}, s.Space)

	if len(s.Volumes) != 2 {
		t.Fatalf("Expected 2 volumes, got %d", len(s.Volumes))
	}

	root := s.Volumes[0]
	if root.MountPath != "/" || root.FSType != storage.FSTypeBtrfs {
		t.Errorf("Unexpected root volume: %q %q", root.MountPath, root.FSType)
	}
	if len(root.MountOptions) != 1 || root.MountOptions[0] != "compress=zstd" {
		t.Errorf("Unexpected mount options: %v", root.MountOptions)
	}
	if root.Btrfs.Snapshots {
		t.Error("Expected snapshots to be disabled")
	}
	if root.Btrfs.DefaultSubvolume != "@" {
		t.Errorf("Template values must survive the overlay, got default subvolume %q", root.Btrfs.DefaultSubvolume)
	}
	if !root.AutoSize || root.Location.Target != storage.LocationDefault {
		t.Errorf("Unexpected root sizing or location: %v %+v", root.AutoSize, root.Location)
	}

	home := s.Volumes[1]
	if home.FSType != storage.FSTypeExt4 || home.AutoSize {
		t.Errorf("Unexpected home volume: %q auto=%v", home.FSType, home.AutoSize)
	}
	if home.MinSize != 8500000000 || home.MaxSize != 20000000000 {
		t.Errorf("Unexpected home sizes: %d-%d", home.MinSize, home.MaxSize)
	}
	if home.Location != (storage.VolumeLocation{Target: storage.LocationNewPartition, Device: "/dev/sdb"}) {
		t.Errorf("Unexpected home location: %+v", home.Location)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	product := testProduct(t)

	encoded := Encode(Decode(decodeJSON(t, fullSettings), product))

	assert.JSONEq(t, fullSettings, marshalJSON(t, encoded))
}

func TestEncode_DiskTargetForms(t *testing.T) {
	tests := []struct {
		name   string
		device storage.DeviceTarget
		want   string
	}{
		{name: "disk without name", device: storage.DiskTarget{}, want: `"disk"`},
		{name: "disk with name", device: storage.DiskTarget{Name: "/dev/vda"}, want: `{"disk":"/dev/vda"}`},
		{name: "lvm without devices", device: storage.NewLvmVgTarget{}, want: `"newLvmVg"`},
		{name: "lvm with devices", device: storage.NewLvmVgTarget{CandidatePVDevices: []string{"/dev/sda", "/dev/sdb"}}, want: `{"newLvmVg":["/dev/sda","/dev/sdb"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewProposalSettings()
			s.Device = tt.device

			if got := marshalJSON(t, Encode(s).Target); got != tt.want {
				t.Errorf("Encode().Target = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncode_OmitsDisabledEncryption(t *testing.T) {
	s := storage.NewProposalSettings()
	s.Encryption.Password = "leftover"

	if out := Encode(s); out.Encryption != nil {
		t.Errorf("Expected no encryption section, got %+v", out.Encryption)
	}

	s.Encryption.Encrypt = true
	out := Encode(s)
	if out.Encryption == nil {
		t.Fatal("Expected encryption section")
	}
	if out.Encryption.Method != "luks2" || out.Encryption.PBKDFunction != "" {
		t.Errorf("Unexpected encryption: %+v", out.Encryption)
	}
}

func TestEncode_ForceDeleteKey(t *testing.T) {
	s := storage.NewProposalSettings()
	s.Space.Actions = []storage.SpaceAction{{Device: "/dev/sda1", Kind: storage.ActionForceDelete}}

	assert.JSONEq(t, `{"policy":"keep","actions":[{"forceDelete":"/dev/sda1"}]}`, marshalJSON(t, Encode(s).Space))
}

func TestEncode_Nil(t *testing.T) {
	out := Encode(nil)
	if out == nil {
		t.Fatal("Expected settings, got nil")
	}
	if out.Volumes == nil || len(out.Volumes) != 0 {
		t.Errorf("Expected explicit empty volumes, got %#v", out.Volumes)
	}
}

func TestDecode_Defaults(t *testing.T) {
	product := testProduct(t)
	lvmProduct := testLVMProduct(t)

	tests := []struct {
		name       string
		schema     *v1alpha1.Settings
		product    *config.Product
		wantDevice storage.DeviceTarget
	}{
		{name: "nil schema", schema: nil, product: product, wantDevice: storage.DiskTarget{}},
		{name: "empty document", schema: decodeJSON(t, `{}`), product: product, wantDevice: storage.DiskTarget{}},
		{name: "lvm product", schema: nil, product: lvmProduct, wantDevice: storage.NewLvmVgTarget{}},
		{name: "lvm product with empty document", schema: decodeJSON(t, `{}`), product: lvmProduct, wantDevice: storage.NewLvmVgTarget{}},
		{name: "lvm product with disk target", schema: decodeJSON(t, `{"target": "disk"}`), product: lvmProduct, wantDevice: storage.DiskTarget{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Decode(tt.schema, tt.product)

			assert.Equal(t, tt.wantDevice, s.Device)
			if !s.Boot.Configure {
				t.Error("Expected boot to be configured")
			}
			if s.Encryption.Encrypt {
				t.Error("Expected encryption to be disabled")
			}
			if s.Encryption.Method != storage.EncryptionLUKS2 || s.Encryption.PBKDFunction != storage.PBKDFunctionArgon2id {
				t.Errorf("Unexpected encryption defaults: %+v", s.Encryption)
			}
			if s.Space.Policy != storage.SpacePolicyDelete {
				t.Errorf("Expected delete policy, got %q", s.Space.Policy)
			}

			if len(s.Volumes) != 2 || s.Volumes[0].MountPath != "/" || s.Volumes[1].MountPath != "swap" {
				t.Errorf("Unexpected default volumes: %+v", s.Volumes)
			}
		})
	}
}

func TestDefaultSettings_LVM(t *testing.T) {
	lvmProduct := testLVMProduct(t)

	if _, ok := DefaultSettings(lvmProduct).Device.(storage.NewLvmVgTarget); !ok {
		t.Errorf("Expected new LVM volume group target, got %#v", DefaultSettings(lvmProduct).Device)
	}
	if _, ok := DefaultSettings(nil).Device.(storage.DiskTarget); !ok {
		t.Errorf("Expected disk target without product, got %#v", DefaultSettings(nil).Device)
	}
}

func TestDecode_ExplicitEmptyVolumes(t *testing.T) {
	s := Decode(decodeJSON(t, `{"volumes": [], "boot": {"configure": false}}`), testProduct(t))

	if s.Volumes == nil || len(s.Volumes) != 0 {
		t.Errorf("Expected explicit empty volumes, got %#v", s.Volumes)
	}
	if s.Boot.Configure {
		t.Error("Expected boot not to be configured")
	}
	if got := s.BootDevice(); got != "" {
		t.Errorf("Expected no boot device, got %q", got)
	}
}

func TestDecode_Fallbacks(t *testing.T) {
	doc := `{
	  "encryption": {"password": "", "method": "rot13", "pbkdFunction": "md5"},
	  "space": {"policy": "wipe", "actions": [{"delete": "/dev/sda3"}]}
	}`

	s := Decode(decodeJSON(t, doc), testProduct(t))

	if s.Encryption.Encrypt {
		t.Error("Empty password must disable encryption")
	}
	if s.Encryption.Method != storage.EncryptionLUKS2 || s.Encryption.PBKDFunction != storage.PBKDFunctionArgon2id {
		t.Errorf("Expected product encryption defaults, got %+v", s.Encryption)
	}
	if s.Space.Policy != storage.SpacePolicyDelete {
		t.Errorf("Expected product space policy, got %q", s.Space.Policy)
	}
	assert.Equal(t, []storage.SpaceAction{{Device: "/dev/sda3", Kind: storage.ActionDelete}}, s.Space.Actions)
}

func TestDecodeVolume(t *testing.T) {
	product := testProduct(t)

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, v storage.Volume)
	}{
		{
			name:  "auto size supported",
			input: `{"mount": {"path": "/"}, "size": "auto"}`,
			check: func(t *testing.T, v storage.Volume) {
				if !v.AutoSize {
					t.Error("Expected auto size")
				}
			},
		},
		{
			name:  "auto size not supported",
			input: `{"mount": {"path": "swap"}, "size": "auto"}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.AutoSize {
					t.Error("Expected fixed size")
				}
				if v.MinSize != storage.GiB {
					t.Errorf("MinSize = %s, want %s", v.MinSize, storage.GiB)
				}
			},
		},
		{
			name:  "explicit size without max",
			input: `{"mount": {"path": "/"}, "size": {"min": 8500000000, "max": null}}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.AutoSize {
					t.Error("Expected fixed size")
				}
				if v.MinSize != 8500000000 {
					t.Errorf("MinSize = %d, want 8500000000", v.MinSize)
				}
				if !v.MaxSize.IsUnlimited() {
					t.Errorf("Expected unlimited max size, got %s", v.MaxSize)
				}
			},
		},
		{
			name:  "filesystem outside outline ignored",
			input: `{"mount": {"path": "/home"}, "filesystem": "btrfs"}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.FSType != storage.FSTypeXFS {
					t.Errorf("FSType = %q, want %q", v.FSType, storage.FSTypeXFS)
				}
			},
		},
		{
			name:  "unknown filesystem ignored",
			input: `{"mount": {"path": "/"}, "filesystem": "zfs"}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.FSType != storage.FSTypeBtrfs {
					t.Errorf("FSType = %q, want %q", v.FSType, storage.FSTypeBtrfs)
				}
			},
		},
		{
			name:  "btrfs object without btrfs in outline",
			input: `{"mount": {"path": "/home"}, "filesystem": {"btrfs": {"snapshots": true}}}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.FSType != storage.FSTypeXFS {
					t.Errorf("FSType = %q, want %q", v.FSType, storage.FSTypeXFS)
				}
				if v.Btrfs.Snapshots {
					t.Error("Snapshots are not configurable for /home")
				}
			},
		},
		{
			name:  "string filesystem from outline",
			input: `{"mount": {"path": "/"}, "filesystem": "ext4"}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.FSType != storage.FSTypeExt4 {
					t.Errorf("FSType = %q, want %q", v.FSType, storage.FSTypeExt4)
				}
				if v.SnapshotsConfigurable() {
					t.Error("Snapshots must not be configurable on ext4")
				}
			},
		},
		{
			name:  "unknown mount path uses generic template",
			input: `{"mount": {"path": "/opt"}, "filesystem": "ext4", "size": "auto"}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.MountPath != "/opt" {
					t.Errorf("MountPath = %q, want /opt", v.MountPath)
				}
				if v.FSType != "" {
					t.Errorf("Generic outline allows no filesystem, got %q", v.FSType)
				}
				if v.AutoSize {
					t.Error("Expected fixed size")
				}
				if !v.MaxSize.IsUnlimited() {
					t.Errorf("Expected unlimited max size, got %s", v.MaxSize)
				}
			},
		},
		{
			name:  "first matching target key wins",
			input: `{"mount": {"path": "/srv"}, "target": {"filesystem": "/dev/sdc1", "device": "/dev/sdc2"}}`,
			check: func(t *testing.T, v storage.Volume) {
				want := storage.VolumeLocation{Target: storage.LocationDevice, Device: "/dev/sdc2"}
				if v.Location != want {
					t.Errorf("Location = %+v, want %+v", v.Location, want)
				}
			},
		},
		{
			name:  "missing mount",
			input: `{"size": {"min": 1024}}`,
			check: func(t *testing.T, v storage.Volume) {
				if v.MountPath != "" {
					t.Errorf("Expected no mount path, got %q", v.MountPath)
				}
				if v.MinSize != storage.KiB {
					t.Errorf("MinSize = %s, want %s", v.MinSize, storage.KiB)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DecodeVolume(decodeVolumeJSON(t, tt.input), product))
		})
	}
}

func TestEncodeVolume(t *testing.T) {
	product := testProduct(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "swap keeps explicit size",
			input: `{"mount": {"path": "swap"}, "size": "auto"}`,
			want:  `{"mount":{"path":"swap"},"filesystem":"swap","size":{"min":1073741824,"max":2147483648},"target":"default"}`,
		},
		{
			name:  "root uses btrfs object",
			input: `{"mount": {"path": "/"}}`,
			want:  `{"mount":{"path":"/"},"filesystem":{"btrfs":{"snapshots":true}},"size":"auto","target":"default"}`,
		},
		{
			name:  "generic volume has no filesystem and no max",
			input: `{"mount": {"path": "/opt"}, "target": {"newVg": "/dev/sdb"}}`,
			want:  `{"mount":{"path":"/opt"},"size":{"min":0},"target":{"newVg":"/dev/sdb"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DecodeVolume(decodeVolumeJSON(t, tt.input), product)
			assert.JSONEq(t, tt.want, marshalJSON(t, EncodeVolume(&v)))
		})
	}
}
