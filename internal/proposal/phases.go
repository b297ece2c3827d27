package proposal

// Phase is the lifecycle phase of a Proposal.
//
// A Proposal starts Uncalculated. Calculate always moves it to Calculated,
// whatever the engine reports, and Invalidate moves it to Invalidated from
// any phase. Invalidated lasts until the next Calculate.
type Phase string

const (
	PhaseUncalculated Phase = "Uncalculated"
	PhaseCalculated   Phase = "Calculated"
	PhaseInvalidated  Phase = "Invalidated"
)

// HasResult returns true if results of the phase can be queried.
func (p Phase) HasResult() bool {
	return p == PhaseCalculated
}

// IsStale returns true if a new calculation is needed before querying.
func (p Phase) IsStale() bool {
	return p == PhaseUncalculated || p == PhaseInvalidated
}

// transitionToCalculated returns the phase after a committed calculation.
func transitionToCalculated(Phase) Phase {
	return PhaseCalculated
}

// transitionToInvalidated returns the phase after an invalidation and
// whether the phase changed.
func transitionToInvalidated(from Phase) (Phase, bool) {
	return PhaseInvalidated, from != PhaseInvalidated
}
