package v1alpha1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestSize_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Size
		wantErr bool
	}{
		{name: "auto", input: `"auto"`, want: Size{Auto: true}},
		{name: "min and max", input: `{"min": 1024, "max": 2048}`, want: Size{Min: 1024, Max: Uint64Ptr(2048)}},
		{name: "max null", input: `{"min": 8500000000, "max": null}`, want: Size{Min: 8500000000}},
		{name: "max missing", input: `{"min": 8500000000}`, want: Size{Min: 8500000000}},
		{name: "exponent", input: `{"min": 1e3}`, want: Size{Min: 1000}},
		{name: "large", input: `{"min": 18446744073709551615}`, want: Size{Min: 18446744073709551615}},
		{name: "negative min", input: `{"min": -1}`, wantErr: true},
		{name: "fraction", input: `{"min": 1.5}`, wantErr: true},
		{name: "unknown string", input: `"big"`, wantErr: true},
		{name: "missing min", input: `{"max": 10}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Size
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSize_Marshal(t *testing.T) {
	tests := []struct {
		size Size
		want string
	}{
		{size: Size{Auto: true}, want: `"auto"`},
		{size: Size{Min: 1024}, want: `{"min":1024}`},
		{size: Size{Min: 1024, Max: Uint64Ptr(4096)}, want: `{"max":4096,"min":1024}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.size)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%+v) = %s, want %s", tt.size, data, tt.want)
		}
	}
}

func TestSize_YAML(t *testing.T) {
	var got Size
	if err := yaml.Unmarshal([]byte("min: 1073741824\nmax: ~\n"), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	assert.Equal(t, Size{Min: 1073741824}, got)
}

func TestFilesystem_Forms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Filesystem
	}{
		{name: "string", input: `"ext4"`, want: Filesystem{Type: "ext4"}},
		{name: "btrfs snapshots", input: `{"btrfs": {"snapshots": false}}`, want: Filesystem{Type: "btrfs", Btrfs: &BtrfsSchema{Snapshots: BoolPtr(false)}}},
		{name: "btrfs empty", input: `{"btrfs": {}}`, want: Filesystem{Type: "btrfs", Btrfs: &BtrfsSchema{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Filesystem
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			assert.Equal(t, tt.want, got)

			data, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			assert.JSONEq(t, tt.input, string(data))
		})
	}

	var fs Filesystem
	if err := json.Unmarshal([]byte(`{"xfs": {}}`), &fs); err == nil {
		t.Error("Expected error for object form other than btrfs")
	}
}

func TestVolumeTarget_FirstMatchWins(t *testing.T) {
	tests := []struct {
		input string
		want  VolumeTarget
	}{
		{input: `"default"`, want: VolumeTarget{Kind: VolumeTargetDefault}},
		{input: `{"newPartition": "/dev/sda"}`, want: VolumeTarget{Kind: VolumeTargetNewPartition, Device: "/dev/sda"}},
		{input: `{"newVg": "/dev/sda"}`, want: VolumeTarget{Kind: VolumeTargetNewVg, Device: "/dev/sda"}},
		{input: `{"device": "/dev/sda1"}`, want: VolumeTarget{Kind: VolumeTargetDevice, Device: "/dev/sda1"}},
		{input: `{"filesystem": "/dev/sda1"}`, want: VolumeTarget{Kind: VolumeTargetFilesystem, Device: "/dev/sda1"}},
		{input: `{"device": "/dev/sda1", "newPartition": "/dev/sdb"}`, want: VolumeTarget{Kind: VolumeTargetNewPartition, Device: "/dev/sdb"}},
		{input: `{"filesystem": "/dev/sda1", "newVg": "/dev/sdb"}`, want: VolumeTarget{Kind: VolumeTargetNewVg, Device: "/dev/sdb"}},
	}

	for _, tt := range tests {
		var got VolumeTarget
		if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestVolumeTarget_Marshal(t *testing.T) {
	data, err := yaml.Marshal(VolumeTarget{Kind: VolumeTargetNewVg, Device: "/dev/sdb"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "newVg: /dev/sdb\n" {
		t.Errorf("Unexpected YAML: %q", data)
	}

	data, err = json.Marshal(VolumeTarget{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"default"` {
		t.Errorf("Expected zero target to marshal as default, got %s", data)
	}
}

func TestVolumeSchema_YAML(t *testing.T) {
	input := `
mount:
  path: /var
  options: [noatime]
filesystem: ext4
size:
  min: 1073741824
target:
  device: /dev/sda3
`
	var v VolumeSchema
	if err := yaml.Unmarshal([]byte(input), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	assert.Equal(t, VolumeSchema{
		Mount:      &Mount{Path: "/var", Options: []string{"noatime"}},
		Filesystem: &Filesystem{Type: "ext4"},
		Size:       &Size{Min: 1073741824},
		Target:     &VolumeTarget{Kind: VolumeTargetDevice, Device: "/dev/sda3"},
	}, v)
}

func TestVolumeSchema_MalformedParts(t *testing.T) {
	var v VolumeSchema
	input := `{"mount": {"options": ["ro"]}, "filesystem": 4, "size": "huge", "target": {"raid": "/dev/md0"}}`
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	assert.Equal(t, VolumeSchema{}, v)
}
