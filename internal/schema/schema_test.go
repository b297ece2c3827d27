package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jbweber/diskplan/api/v1alpha1"
)

func TestValidate_Valid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: `{}`},
		{name: "short target", doc: `{"target": "newLvmVg", "volumes": []}`},
		{
			name: "full",
			doc: `{
			  "target": {"disk": "/dev/sda"},
			  "boot": {"configure": true, "device": "/dev/sda"},
			  "encryption": {"password": "s3cret", "method": "luks2", "pbkdFunction": "argon2id"},
			  "space": {"policy": "custom", "actions": [{"forceDelete": "/dev/sda1"}, {"resize": "/dev/sda2"}]},
			  "volumes": [
			    {"mount": {"path": "/"}, "filesystem": {"btrfs": {"snapshots": true}}, "size": "auto", "target": "default"},
			    {"mount": {"path": "/home", "options": ["noatime"]}, "filesystem": "xfs",
			     "size": {"min": 8500000000, "max": null}, "target": {"newVg": "/dev/sdb"}}
			  ]
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate([]byte(tt.doc)); err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "unknown top-level key", doc: `{"bootloader": {}}`, wantField: "(root)"},
		{name: "unknown target", doc: `{"target": "raid"}`, wantField: "target"},
		{name: "boot without configure", doc: `{"boot": {"device": "/dev/sda"}}`, wantField: "boot"},
		{name: "unknown policy", doc: `{"space": {"policy": "wipe"}}`, wantField: "space.policy"},
		{name: "action with two keys", doc: `{"space": {"policy": "custom", "actions": [{"delete": "a", "resize": "b"}]}}`, wantField: "space.actions.0"},
		{name: "encryption without method", doc: `{"encryption": {"password": "x"}}`, wantField: "encryption"},
		{name: "negative size", doc: `{"volumes": [{"size": {"min": -1}}]}`, wantField: "volumes.0.size"},
		{name: "size without min", doc: `{"volumes": [{"size": {"max": 10}}]}`, wantField: "volumes.0.size"},
		{name: "two volume targets", doc: `{"volumes": [{"target": {"device": "a", "filesystem": "b"}}]}`, wantField: "volumes.0.target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T: %v", err, err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected an error for field %q, got %+v", tt.wantField, verr.Errors)
			}
			if !strings.HasPrefix(err.Error(), "settings validation failed: ") {
				t.Errorf("Unexpected message: %v", err)
			}
		})
	}
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate([]byte(`target: disk`))
	if err == nil {
		t.Fatal("Expected error for non-JSON input")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Errorf("Expected a plain error, got %v", err)
	}
}

func TestValidateValue(t *testing.T) {
	s := v1alpha1.NewSettings()
	s.Target = &v1alpha1.Target{Kind: v1alpha1.TargetNewLvmVg, PVDevices: []string{"/dev/sda"}}
	s.Space = &v1alpha1.Space{Policy: "keep", Actions: []v1alpha1.SpaceAction{{Action: v1alpha1.ActionKeyForceDelete, Device: "/dev/sda1"}}}
	s.Volumes = append(s.Volumes, v1alpha1.VolumeSchema{
		Mount: &v1alpha1.Mount{Path: "/"},
		Size:  &v1alpha1.Size{Min: 1 << 30},
	})

	if err := ValidateValue(s); err != nil {
		t.Errorf("Expected marshalled settings to match the schema: %v", err)
	}
}

func TestSource(t *testing.T) {
	var doc map[string]interface{}
	if err := json.Unmarshal(Source(), &doc); err != nil {
		t.Fatalf("Embedded schema is not JSON: %v", err)
	}
	if doc["title"] != "Storage proposal settings" {
		t.Errorf("Unexpected schema title: %v", doc["title"])
	}
}
