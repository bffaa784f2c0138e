package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunConfig records the parameters a simulation run was started with.
type RunConfig struct {
	VersionedRecord
	RunID           string  `json:"run_id"`
	Agents          int     `json:"agents"`
	TimeSpan        int     `json:"time_span"`
	Seed            int64   `json:"seed"`
	PercentMinority float64 `json:"percent_minority"`
	MeanDegree      int     `json:"mean_degree"`
	NeighborHops    int     `json:"neighbor_hops"`

	SupportDepressionImpact      float64 `json:"support_depression_impact"`
	ConcealDiscriminateImpact    float64 `json:"conceal_discriminate_impact"`
	DiscriminateConcealImpact    float64 `json:"discriminate_conceal_impact"`
	DiscriminateDepressionImpact float64 `json:"discriminate_depression_impact"`
	ConcealDepressionImpact      float64 `json:"conceal_depression_impact"`

	ForcedPolicyScore *float64 `json:"forced_policy_score,omitempty"`
	PolicyBias        int      `json:"policy_bias,omitempty"`
}

// TickDiagnostics snapshots the population aggregates after one tick.
type TickDiagnostics struct {
	Time                  int     `json:"time"`
	PolicyScore           float64 `json:"policy_score"`
	PotentialScore        float64 `json:"potential_score"`
	DepressionPct         float64 `json:"depression_pct"`
	ConcealmentPct        float64 `json:"concealment_pct"`
	MinorityDepressionAvg float64 `json:"minority_depression_avg"`
}

// AgentSnapshot is a persisted view of one agent's attributes.
type AgentSnapshot struct {
	VersionedRecord
	ID             int     `json:"id"`
	SES            float64 `json:"ses"`
	Attitude       float64 `json:"attitude"`
	Support        float64 `json:"support"`
	Discrimination float64 `json:"discrimination"`
	Depression     float64 `json:"depression"`
	ProbConceal    float64 `json:"prob_conceal"`
	Minority       bool    `json:"minority"`
	Concealed      bool    `json:"concealed"`
	Depressed      bool    `json:"depressed"`
	Discriminatory bool    `json:"discriminatory"`
}

// OddsResult is one odds-ratio benchmark outcome against its literature
// range.
type OddsResult struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	InRange bool    `json:"in_range"`
}

// CorrelationResult records one parameter's sensitivity sweep: the levels
// tried and the Pearson correlation of each outcome against them.
type CorrelationResult struct {
	Label          string    `json:"label"`
	Levels         []float64 `json:"levels"`
	DepressionPcts []float64 `json:"depression_pcts"`
	ConcealPcts    []float64 `json:"conceal_pcts"`
	DepressionR    float64   `json:"depression_r"`
	ConcealmentR   float64   `json:"concealment_r"`
}
