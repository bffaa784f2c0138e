package society

// Impacts carries the impact magnitudes applied on every agent update. Each
// field scales how strongly one attribute's network exposure feeds another.
type Impacts struct {
	SupportDepression      float64
	ConcealDiscriminate    float64
	DiscriminateConceal    float64
	DiscriminateDepression float64
	ConcealDepression      float64
}

// Overrides force attribute values during an update for controlled
// sensitivity experiments. A nil field means the agent applies its own
// standard time-evolution rule for that attribute.
type Overrides struct {
	Support        *float64
	Conceal        *float64
	Discrimination *float64
	Attitude       *float64
	Depression     *float64
}

// Agent is the per-agent collaborator contract. The registry holds agents by
// reference only; creation and attribute mutation belong to the
// implementation behind this interface.
type Agent interface {
	CurrentSES() float64
	Attitude() float64
	IsMinority() bool
	IsConcealed() bool
	ProbConceal() float64
	Support() float64
	Discrimination() float64
	CurrentDepression() float64
	IsDepressed() bool
	IsDiscriminatory() bool
	SetDiscriminatory(bool)

	UpdateAgent(time int, impacts Impacts, overrides Overrides)
	BillInfluence(rank float64) float64
}
