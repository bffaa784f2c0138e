package policy

import "math/rand"

// Effect curves ramp linearly and reach the target after this many ticks.
const billMaturityTicks = 10

// Bill is the reference policy implementation: a fixed target score realized
// through a linear effect ramp. Non-discriminatory bills carry positive
// targets, discriminatory ones negative.
type Bill struct {
	time           int
	score          float64
	discriminatory bool

	curEffect  float64
	prevEffect float64
}

// NewBill creates a bill at the given tick. With a nil score the target is
// drawn from rng in [1,10], negated for a discriminatory bias; BiasAny draws
// the sign at random as well.
func NewBill(time int, score *float64, bias Bias, rng *rand.Rand) *Bill {
	b := &Bill{time: time}
	if score != nil {
		b.score = *score
		b.discriminatory = *score < 0
		return b
	}

	magnitude := 1 + 9*rng.Float64()
	switch bias {
	case BiasDiscriminatory:
		b.score = -magnitude
	case BiasNonDiscriminatory:
		b.score = magnitude
	default:
		b.score = magnitude
		if rng.Float64() < 0.5 {
			b.score = -magnitude
		}
	}
	b.discriminatory = b.score < 0
	return b
}

// NewBillFactory adapts NewBill to the ledger's factory contract.
func NewBillFactory(rng *rand.Rand) Factory {
	return func(time int, score *float64, bias Bias) Policy {
		return NewBill(time, score, bias, rng)
	}
}

func (b *Bill) Score() float64          { return b.score }
func (b *Bill) IsDiscriminatory() bool  { return b.discriminatory }
func (b *Bill) CurrentEffect() float64  { return b.curEffect }
func (b *Bill) PreviousEffect() float64 { return b.prevEffect }

// AdvanceEffect moves the realized effect along the linear ramp toward the
// target, clamped in magnitude by the cap.
func (b *Bill) AdvanceEffect(time int, cap float64) {
	elapsed := time - b.time
	if elapsed < 0 {
		elapsed = 0
	}
	frac := float64(elapsed) / float64(billMaturityTicks)
	if frac > 1 {
		frac = 1
	}

	b.prevEffect = b.curEffect
	b.curEffect = b.score * frac
	if b.curEffect > cap {
		b.curEffect = cap
	}
	if b.curEffect < -cap {
		b.curEffect = -cap
	}
}

// Proposer decides each tick whether a policy is introduced, parameterized
// by the current cap.
type Proposer interface {
	Propose(time int, cap float64, rng *rand.Rand) (Policy, bool)
}

// BillProposer proposes a randomly scored bill with a fixed per-tick
// probability.
type BillProposer struct {
	// Probability of a proposal on any given tick. Zero disables proposals.
	Rate float64
}

func (p BillProposer) Propose(time int, cap float64, rng *rand.Rand) (Policy, bool) {
	if p.Rate <= 0 || rng.Float64() >= p.Rate {
		return nil, false
	}
	return NewBill(time, nil, BiasAny, rng), true
}
