package sim

import (
	"errors"
	"math"
	"testing"

	"agora/internal/policy"
	"agora/internal/society"
)

// testAgent is a fixed-attribute society.Agent for the statistics tests.
type testAgent struct {
	ses            float64
	attitude       float64
	support        float64
	discrimination float64
	depression     float64
	probConceal    float64
	minority       bool
	concealed      bool
	discriminatory bool

	updates int
}

func (a *testAgent) CurrentSES() float64        { return a.ses }
func (a *testAgent) Attitude() float64          { return a.attitude }
func (a *testAgent) IsMinority() bool           { return a.minority }
func (a *testAgent) IsConcealed() bool          { return a.concealed }
func (a *testAgent) ProbConceal() float64       { return a.probConceal }
func (a *testAgent) Support() float64           { return a.support }
func (a *testAgent) Discrimination() float64    { return a.discrimination }
func (a *testAgent) CurrentDepression() float64 { return a.depression }
func (a *testAgent) IsDepressed() bool          { return a.depression > 0.25 }
func (a *testAgent) IsDiscriminatory() bool     { return a.discriminatory }

func (a *testAgent) SetDiscriminatory(discriminatory bool) {
	a.discriminatory = discriminatory
}

func (a *testAgent) UpdateAgent(int, society.Impacts, society.Overrides) {
	a.updates++
}

func (a *testAgent) BillInfluence(rank float64) float64 {
	if rank == 0 {
		return a.attitude * a.ses * a.ses
	}
	scaled := a.ses / rank
	return a.attitude * scaled * scaled
}

func newTestNetwork(t *testing.T, agents []society.Agent) *Network {
	t.Helper()
	registry := society.NewRegistry()
	registry.SetAgents(agents)
	g := society.NewGraph()
	for i := range agents {
		g.AddEdge(i, (i+1)%len(agents))
	}
	registry.SetGraph(g)

	n, err := NewNetwork(Config{
		Registry: registry,
		Ledger:   policy.NewLedger(10),
		Seed:     1,
	})
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	return n
}

func TestPercentAttrDepressionPercentage(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{minority: true, depression: 0.1},
		&testAgent{minority: true, depression: 0.2},
		&testAgent{depression: 0.9},
	})

	got, err := n.PercentAttr(AttrDepression, true)
	if err != nil {
		t.Fatalf("percent attr: %v", err)
	}
	want := (0.1 + 0.2) / (2 * 0.25)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPercentAttrFractionUsesPredicate(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{minority: true, depression: 0.5},
		&testAgent{minority: true, depression: 0.1},
		&testAgent{minority: true, concealed: true},
		&testAgent{depression: 0.9},
	})

	got, err := n.PercentAttr(AttrDepression, false)
	if err != nil {
		t.Fatalf("percent attr: %v", err)
	}
	if math.Abs(got-1.0/3.0) > 1e-12 {
		t.Fatalf("expected 1/3 depressed, got %v", got)
	}

	got, err = n.PercentAttr(AttrConcealment, false)
	if err != nil {
		t.Fatalf("percent attr concealment: %v", err)
	}
	if math.Abs(got-1.0/3.0) > 1e-12 {
		t.Fatalf("expected 1/3 concealed, got %v", got)
	}
}

func TestPercentAttrDiscriminationHasNoPredicate(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{minority: true},
		&testAgent{},
	})

	if _, err := n.PercentAttr(AttrDiscrimination, false); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	if _, err := n.PercentAttr(Attr("age"), true); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection for unknown attribute, got %v", err)
	}
}

func TestPercentAttrNoMinority(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{depression: 0.9},
		&testAgent{depression: 0.8},
	})

	got, err := n.PercentAttr(AttrDepression, true)
	if err != nil {
		t.Fatalf("percent attr: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 with no minority agents, got %v", got)
	}
}

func TestDepressionOddsWholePopulation(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{depression: 0.1},
		&testAgent{depression: 0.2},
		&testAgent{depression: 0.3},
		&testAgent{depression: 0.4},
	})

	got, err := n.DepressionOdds(SelectAll, SelectAll, false)
	if err != nil {
		t.Fatalf("depression odds: %v", err)
	}
	want := 0.25 / 0.75
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected odds %v, got %v", want, got)
	}
}

func TestDepressionOddsInvalidSelection(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{&testAgent{}, &testAgent{}})

	if _, err := n.DepressionOdds(Selection(9), SelectAll, false); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection for minority, got %v", err)
	}
	if _, err := n.DepressionOdds(SelectAll, Selection(-1), false); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection for support, got %v", err)
	}
}

func TestDepressionOddsEmptySubsetIsZero(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{depression: 0.4},
		&testAgent{depression: 0.2},
	})

	got, err := n.DepressionOdds(SelectWith, SelectAll, false)
	if err != nil {
		t.Fatalf("depression odds: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 for empty minority subset, got %v", got)
	}
}

func TestSupportZScoreUsesMinorityCache(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{minority: true, support: 0.2},
		&testAgent{minority: true, support: 0.6},
		&testAgent{support: 0.9},
	})

	z, err := n.SupportZScore(1)
	if err != nil {
		t.Fatalf("support z-score: %v", err)
	}
	// Minority mean 0.4, population std 0.2.
	if math.Abs(z-1.0) > 1e-12 {
		t.Fatalf("expected z=1 for the high-support minority agent, got %v", z)
	}

	z, err = n.SupportZScore(2)
	if err != nil {
		t.Fatalf("support z-score: %v", err)
	}
	if math.Abs(z-2.5) > 1e-12 {
		t.Fatalf("expected z=2.5 against the minority cache, got %v", z)
	}
}

func TestZScoreDegeneratePopulation(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{minority: true, support: 0.5},
		&testAgent{minority: true, support: 0.5},
	})

	_, err := n.SupportZScore(0)
	if !errors.Is(err, ErrZeroStdDev) {
		t.Fatalf("expected ErrZeroStdDev, got %v", err)
	}
}

func TestComputeSupportStatsPopulationDoesNotCache(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{minority: true, support: 0.2},
		&testAgent{minority: true, support: 0.6},
		&testAgent{support: 1.0},
	})

	mean, std := n.ComputeSupportStats(false)
	if math.Abs(mean-0.6) > 1e-12 {
		t.Fatalf("expected population mean 0.6, got %v", mean)
	}
	if std == 0 {
		t.Fatal("expected nonzero population std")
	}

	// The minority cache was untouched; the z-score below reflects the
	// minority-only statistics computed on demand.
	z, err := n.SupportZScore(1)
	if err != nil {
		t.Fatalf("support z-score: %v", err)
	}
	if math.Abs(z-1.0) > 1e-12 {
		t.Fatalf("expected minority-cache z=1, got %v", z)
	}
}

func TestDensityZScore(t *testing.T) {
	// Ring of four: agents 0 and 2 are open minority with probConceal 0.5.
	n := newTestNetwork(t, []society.Agent{
		&testAgent{minority: true, probConceal: 0.5},
		&testAgent{},
		&testAgent{minority: true, probConceal: 0.5},
		&testAgent{},
	})

	if err := n.ComputeDensityStats(); err != nil {
		t.Fatalf("compute density stats: %v", err)
	}

	// Densities alternate between 0 (minority agents, whose contacts are all
	// non-minority) and 0.25: mean 0.125, std 0.125.
	z, err := n.DensityZScore(0)
	if err != nil {
		t.Fatalf("density z-score: %v", err)
	}
	if math.Abs(z-(-1.0)) > 1e-12 {
		t.Fatalf("expected z=-1 for a zero-density agent, got %v", z)
	}

	z, err = n.DensityZScore(1)
	if err != nil {
		t.Fatalf("density z-score: %v", err)
	}
	if math.Abs(z-1.0) > 1e-12 {
		t.Fatalf("expected z=1 for a high-density agent, got %v", z)
	}
}

func TestNetworkAggregates(t *testing.T) {
	n := newTestNetwork(t, []society.Agent{
		&testAgent{ses: 2, attitude: 0.5, minority: true, depression: 0.3},
		&testAgent{ses: 4, attitude: -0.1, minority: true, depression: 0.1},
		&testAgent{ses: 6, attitude: 0.2},
	})

	if got := n.NetworkSES(); math.Abs(got-4) > 1e-12 {
		t.Fatalf("expected mean SES 4, got %v", got)
	}
	if got := n.NetworkAttitude(); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("expected mean attitude 0.2, got %v", got)
	}
	if got := n.MinorityDepressionAvg(); math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("expected minority depression mean 0.2, got %v", got)
	}
}
