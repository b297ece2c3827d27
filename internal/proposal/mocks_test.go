package proposal

import (
	"context"

	"github.com/jbweber/diskplan/internal/engine"
)

// mockBackend is a mock implementation of engine.Backend for testing.
type mockBackend struct {
	// Configurable behavior
	proposeFunc func(ctx context.Context, settings engine.Settings) (*engine.Result, error)
	disks       []engine.Device

	// Call tracking
	proposeCalls    []engine.Settings
	candidateCalls  int
	probedGraphCall int
}

// newMockBackend creates a mock backend with one disk and successful proposals.
func newMockBackend() *mockBackend {
	m := &mockBackend{
		disks: []engine.Device{{Name: "/dev/sda", Size: 500 << 30}},
	}

	// Default: proposal succeeds
	m.proposeFunc = func(ctx context.Context, settings engine.Settings) (*engine.Result, error) {
		return &engine.Result{
			Actions: []engine.Action{
				{Text: "Create subvolume @/home", Subvolume: true},
				{Text: "Create partition /dev/sda1", Device: "/dev/sda1"},
				{Text: "Delete partition /dev/sda3", Device: "/dev/sda3", Delete: true},
			},
		}, nil
	}
	return m
}

func (m *mockBackend) Propose(ctx context.Context, settings engine.Settings, graph engine.DeviceGraph, analyzer engine.DiskAnalyzer) (*engine.Result, error) {
	m.proposeCalls = append(m.proposeCalls, settings)
	return m.proposeFunc(ctx, settings)
}

func (m *mockBackend) ProbedDeviceGraph() engine.DeviceGraph {
	m.probedGraphCall++
	return struct{}{}
}

func (m *mockBackend) DiskAnalyzer() engine.DiskAnalyzer {
	return m
}

func (m *mockBackend) CandidateDisks() []engine.Device {
	m.candidateCalls++
	return m.disks
}

// failProposals makes every proposal return a failed result.
func (m *mockBackend) failProposals() {
	m.proposeFunc = func(ctx context.Context, settings engine.Settings) (*engine.Result, error) {
		return &engine.Result{Failed: true}, nil
	}
}
