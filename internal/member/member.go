// Package member provides the reference agent implementation and the seed
// population builder used by the CLI and the sensitivity harness.
package member

import (
	"agora/internal/society"
)

const (
	depressionThreshold = 0.25
	concealThreshold    = 0.5

	// Per-tick drift scale for the standard evolution rules.
	driftRate = 0.01
)

// Member is a standard agent: attributes evolve from network exposure
// scaled by the impact magnitudes, unless overridden for an experiment.
type Member struct {
	id       int
	registry *society.Registry

	ses            float64
	attitude       float64
	minority       bool
	concealed      bool
	probConceal    float64
	support        float64
	discrimination float64
	depression     float64
	discriminatory bool
}

func (m *Member) CurrentSES() float64        { return m.ses }
func (m *Member) Attitude() float64          { return m.attitude }
func (m *Member) IsMinority() bool           { return m.minority }
func (m *Member) IsConcealed() bool          { return m.concealed }
func (m *Member) ProbConceal() float64       { return m.probConceal }
func (m *Member) Support() float64           { return m.support }
func (m *Member) Discrimination() float64    { return m.discrimination }
func (m *Member) CurrentDepression() float64 { return m.depression }
func (m *Member) IsDepressed() bool          { return m.depression > depressionThreshold }
func (m *Member) IsDiscriminatory() bool     { return m.discriminatory }

func (m *Member) SetDiscriminatory(discriminatory bool) {
	m.discriminatory = discriminatory
}

// UpdateAgent applies one tick of the standard evolution rules, replacing
// any rule whose override is set. Isolated agents (no neighbors) see no
// network exposure and drift on their own attributes only.
func (m *Member) UpdateAgent(_ int, impacts society.Impacts, overrides society.Overrides) {
	connectedSupport, err := m.registry.PercentConnectedMinority(m.id, false, true)
	if err != nil {
		connectedSupport = 0
	}
	nonAccepting, err := m.registry.PercentNonAccepting(m.id)
	if err != nil {
		nonAccepting = 0
	}
	localAttitude, err := m.registry.LocalAverage(m.id, society.Agent.Attitude)
	if err != nil {
		localAttitude = m.attitude
	}

	if overrides.Support != nil {
		m.support = *overrides.Support
	} else {
		m.support = clamp01(m.support + driftRate*(connectedSupport-nonAccepting))
	}

	if overrides.Discrimination != nil {
		m.discrimination = *overrides.Discrimination
	} else {
		exposure := impacts.ConcealDiscriminate*m.probConceal + nonAccepting
		m.discrimination = clamp01(m.discrimination + driftRate*(exposure-m.support))
	}

	if overrides.Conceal != nil {
		m.probConceal = clamp01(*overrides.Conceal)
	} else if m.minority {
		pressure := impacts.DiscriminateConceal*m.discrimination - m.support
		m.probConceal = clamp01(m.probConceal + driftRate*pressure)
	}

	if overrides.Attitude != nil {
		m.attitude = *overrides.Attitude
	} else {
		m.attitude += 5 * driftRate * (localAttitude - m.attitude)
		if m.discriminatory {
			m.attitude -= driftRate
		}
	}

	if overrides.Depression != nil {
		m.depression = *overrides.Depression
	} else {
		load := impacts.DiscriminateDepression*m.discrimination +
			impacts.ConcealDepression*m.probConceal -
			impacts.SupportDepression*m.support
		m.depression = clamp01(m.depression + driftRate*load)
	}

	m.concealed = m.minority && m.probConceal > concealThreshold
}

// BillInfluence is the agent's pull on a bill of the given rank:
// attitude x (SES/rank)^2.
func (m *Member) BillInfluence(rank float64) float64 {
	if rank == 0 {
		return m.attitude * m.ses * m.ses
	}
	scaled := m.ses / rank
	return m.attitude * scaled * scaled
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
