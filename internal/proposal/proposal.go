// Package proposal drives the lifecycle of a storage proposal.
//
// A Proposal converts settings for the engine, invokes it, keeps a snapshot of
// the settings and result, and notifies observers. Callers serialize access:
// a Proposal must not be used from several goroutines at once.
package proposal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jbweber/diskplan/api/v1alpha1"
	"github.com/jbweber/diskplan/internal/codec"
	"github.com/jbweber/diskplan/internal/config"
	"github.com/jbweber/diskplan/internal/engine"
	"github.com/jbweber/diskplan/internal/issue"
	"github.com/jbweber/diskplan/internal/storage"
)

// Outcome describes a committed calculation. Observers receive it after the
// proposal state has been updated.
type Outcome struct {
	ID      string
	Success bool
	Result  *engine.Result
}

// Observer is called after every calculation.
type Observer func(Outcome)

// Option configures a Proposal.
type Option func(*Proposal)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Proposal) {
		p.logger = logger
	}
}

// WithMetrics records calculations in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Proposal) {
		p.metrics = m
	}
}

// Proposal owns the calculate/invalidate lifecycle.
type Proposal struct {
	backend engine.Backend
	product *config.Product
	logger  zerolog.Logger
	metrics *Metrics

	observers []Observer

	// State committed by Calculate
	phase    Phase
	id       string
	settings *storage.ProposalSettings
	result   *engine.Result
}

// New returns an uncalculated proposal backed by backend.
func New(backend engine.Backend, product *config.Product, opts ...Option) *Proposal {
	p := &Proposal{
		backend: backend,
		product: product,
		logger:  zerolog.Nop(),
		phase:   PhaseUncalculated,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Calculate runs the engine with a frozen copy of settings.
//
// It returns whether the proposal succeeded. An engine error is returned as
// is and leaves the proposal untouched: no state is committed and no observer
// is notified. A failed proposal is not an error; see Issues.
func (p *Proposal) Calculate(ctx context.Context, settings *storage.ProposalSettings) (bool, error) {
	if settings == nil {
		return false, fmt.Errorf("settings are required")
	}

	frozen := settings.Clone()
	input := codec.ToEngine(frozen, p.product)

	p.logger.Debug().
		Int("volumes", len(frozen.Volumes)).
		Str("space_policy", input.SpacePolicy).
		Bool("lvm", input.LVM).
		Msg("Calculating proposal")

	start := time.Now()
	result, err := p.backend.Propose(ctx, input, p.backend.ProbedDeviceGraph(), p.backend.DiskAnalyzer())
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.recordCalculation(resultError, elapsed.Seconds())
		p.logger.Error().Err(err).Dur("duration", elapsed).Msg("Proposal engine failed")
		return false, fmt.Errorf("failed to calculate proposal: %w", err)
	}
	if result == nil {
		result = &engine.Result{Failed: true}
	}

	// Commit
	p.phase = transitionToCalculated(p.phase)
	p.id = uuid.NewString()
	p.settings = frozen
	p.result = result

	outcome := Outcome{ID: p.id, Success: p.Success(), Result: result}

	label := resultSuccess
	if !outcome.Success {
		label = resultFailed
	}
	p.metrics.recordCalculation(label, elapsed.Seconds())
	p.metrics.recordIssues(len(p.Issues()))

	p.logger.Info().
		Str("proposal_id", p.id).
		Bool("success", outcome.Success).
		Bool("failed", result.Failed).
		Dur("duration", elapsed).
		Msg("Proposal calculated")

	for _, observer := range p.observers {
		observer(outcome)
	}

	return p.Success(), nil
}

// CalculateSchema decodes wire settings and calculates them.
func (p *Proposal) CalculateSchema(ctx context.Context, schema *v1alpha1.Settings) (bool, error) {
	return p.Calculate(ctx, codec.Decode(schema, p.product))
}

// Invalidate marks the current result as outdated, e.g. because the devices
// changed. Calling it again has no effect.
func (p *Proposal) Invalidate() {
	next, changed := transitionToInvalidated(p.phase)
	p.phase = next
	if !changed {
		return
	}
	p.metrics.recordInvalidation()
	p.logger.Info().Str("proposal_id", p.id).Msg("Proposal invalidated")
}

// OnCalculate registers an observer. Observers run in registration order on
// the goroutine calling Calculate.
func (p *Proposal) OnCalculate(observer Observer) {
	p.observers = append(p.observers, observer)
}

// Phase returns the lifecycle phase.
func (p *Proposal) Phase() Phase {
	return p.phase
}

// Calculated returns true if a result is available.
func (p *Proposal) Calculated() bool {
	return p.phase.HasResult()
}

// Invalidated returns true if the last result was invalidated.
func (p *Proposal) Invalidated() bool {
	return p.phase == PhaseInvalidated
}

// Success returns true if the proposal is calculated, not invalidated and
// the engine found a layout.
func (p *Proposal) Success() bool {
	return p.Calculated() && p.result != nil && !p.result.Failed
}

// ID returns the identifier of the last calculation, or "" when there is no
// result.
func (p *Proposal) ID() string {
	if !p.Calculated() {
		return ""
	}
	return p.id
}

// Settings returns a copy of the settings of the last calculation, or nil
// when there is no result.
func (p *Proposal) Settings() *storage.ProposalSettings {
	if !p.Calculated() {
		return nil
	}
	return p.settings.Clone()
}

// SchemaSettings returns Settings in wire form, or nil.
func (p *Proposal) SchemaSettings() *v1alpha1.Settings {
	s := p.Settings()
	if s == nil {
		return nil
	}
	return codec.Encode(s)
}

// Result returns the engine result of the last calculation, or nil.
func (p *Proposal) Result() *engine.Result {
	if !p.Calculated() {
		return nil
	}
	return p.result
}

// AvailableDevices returns the disks eligible for installation. It does not
// depend on the lifecycle phase.
func (p *Proposal) AvailableDevices() []engine.Device {
	return p.backend.DiskAnalyzer().CandidateDisks()
}

// Issues returns the issues of the last calculation. It is empty when there
// is no result.
func (p *Proposal) Issues() []issue.Issue {
	if !p.Calculated() {
		return []issue.Issue{}
	}
	return issue.Detect(p.settings, p.result, p.AvailableDevices())
}

// Actions returns the actions of the last calculation with subvolume actions
// last, or nil when there is no result.
func (p *Proposal) Actions() []engine.Action {
	result := p.Result()
	if result == nil || len(result.Actions) == 0 {
		return nil
	}
	actions := append([]engine.Action(nil), result.Actions...)
	sort.SliceStable(actions, func(i, j int) bool {
		return !actions[i].Subvolume && actions[j].Subvolume
	})
	return actions
}
