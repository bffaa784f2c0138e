// Package policy tracks every intervention introduced into the simulated
// population and maintains the running realized and potential scores under a
// hard cap.
package policy

// Bias narrows which direction of policy may be produced.
type Bias int

const (
	BiasAny Bias = iota
	BiasNonDiscriminatory
	BiasDiscriminatory
)

// Policy is the collaborator contract for a single intervention. The effect
// curve behind AdvanceEffect is the implementation's own; the ledger consumes
// only the effect state.
type Policy interface {
	Score() float64
	IsDiscriminatory() bool
	CurrentEffect() float64
	PreviousEffect() float64

	// AdvanceEffect moves the realized effect to the given tick, bounded in
	// magnitude by the cap.
	AdvanceEffect(time int, cap float64)
}

// Factory constructs a policy at the given tick. A nil score leaves the
// target magnitude to the implementation, steered by the bias.
type Factory func(time int, score *float64, bias Bias) Policy

// Ledger holds every policy ever admitted, split into those whose effects
// are still maturing and those fully realized. Completion is permanent.
type Ledger struct {
	cap       float64
	potential float64
	score     float64

	incomplete []Policy
	complete   []Policy
}

// NewLedger fixes the policy cap at 10 points per simulated tick of the
// configured span.
func NewLedger(timeSpan int) *Ledger {
	return &Ledger{cap: 10 * float64(timeSpan)}
}

func (l *Ledger) Cap() float64 {
	return l.cap
}

func (l *Ledger) Score() float64 {
	return l.score
}

// PotentialScore is the sum of every admitted policy's target score: the
// realized score once all incomplete policies mature.
func (l *Ledger) PotentialScore() float64 {
	return l.potential
}

func (l *Ledger) Incomplete() []Policy {
	return append([]Policy(nil), l.incomplete...)
}

func (l *Ledger) Complete() []Policy {
	return append([]Policy(nil), l.complete...)
}

// Add records a policy unconditionally. Admission control happens before
// this call, in Enforce or Admit.
func (l *Ledger) Add(p Policy) {
	l.potential += p.Score()
	l.incomplete = append(l.incomplete, p)
}

// Admit applies the cap gate to an externally proposed policy and records it
// on acceptance. Returns whether the policy was admitted.
func (l *Ledger) Admit(p Policy) bool {
	if l.score+p.Score() > l.cap {
		return false
	}
	l.Add(p)
	return true
}

// Enforce constructs and admits a policy with an explicit target score, or
// with a bias mapped from onlyDiscriminatory when no score is given.
// Rejects silently when the score would push the realized total over the
// cap. Returns whether a policy was admitted.
func (l *Ledger) Enforce(time int, score *float64, onlyDiscriminatory bool, newPolicy Factory) bool {
	target := 0.0
	if score != nil {
		target = *score
	}
	if l.score+target > l.cap {
		return false
	}

	var enforced Policy
	if score != nil {
		enforced = newPolicy(time, score, BiasAny)
	} else {
		bias := BiasNonDiscriminatory
		if onlyDiscriminatory {
			bias = BiasDiscriminatory
		}
		enforced = newPolicy(time, nil, bias)
	}
	l.Add(enforced)
	return true
}

// UpdateScore advances every incomplete policy's effect curve to the given
// tick and folds the change into the running score: the previous realized
// effect is subtracted, and either the full target score (on maturity) or
// the current effect is added back. A matured policy moves to the complete
// set and never returns.
func (l *Ledger) UpdateScore(time int) {
	remaining := l.incomplete[:0]
	for _, p := range l.incomplete {
		p.AdvanceEffect(time, l.cap)

		l.score -= p.PreviousEffect()
		if matured(p) {
			l.score += p.Score()
			l.complete = append(l.complete, p)
		} else {
			l.score += p.CurrentEffect()
			remaining = append(remaining, p)
		}
	}
	l.incomplete = remaining
}

// A non-discriminatory policy matures when its effect reaches its target
// from below; a discriminatory one trends downward toward a negative target.
func matured(p Policy) bool {
	if p.IsDiscriminatory() {
		return p.CurrentEffect() <= p.Score()
	}
	return p.CurrentEffect() >= p.Score()
}
