package member

import (
	"math"
	"testing"

	"agora/internal/society"
)

func floatPtr(v float64) *float64 { return &v }

// pairRegistry wires two members as each other's only contact.
func pairRegistry(a, b *Member) *society.Registry {
	r := society.NewRegistry()
	a.registry = r
	b.registry = r
	r.SetAgents([]society.Agent{a, b})
	g := society.NewGraph()
	g.AddEdge(0, 1)
	r.SetGraph(g)
	return r
}

func TestUpdateAgentOverridesWinOverDrift(t *testing.T) {
	m := &Member{id: 0, support: 0.5, depression: 0.1, attitude: 0.2}
	other := &Member{id: 1, attitude: 0.8}
	pairRegistry(m, other)

	overrides := society.Overrides{
		Support:        floatPtr(0.9),
		Discrimination: floatPtr(0.3),
		Conceal:        floatPtr(0.7),
		Attitude:       floatPtr(-0.1),
		Depression:     floatPtr(0.6),
	}
	m.UpdateAgent(1, society.Impacts{}, overrides)

	if m.Support() != 0.9 {
		t.Fatalf("expected support override 0.9, got %v", m.Support())
	}
	if m.Discrimination() != 0.3 {
		t.Fatalf("expected discrimination override 0.3, got %v", m.Discrimination())
	}
	if m.ProbConceal() != 0.7 {
		t.Fatalf("expected conceal override 0.7, got %v", m.ProbConceal())
	}
	if m.Attitude() != -0.1 {
		t.Fatalf("expected attitude override -0.1, got %v", m.Attitude())
	}
	if m.CurrentDepression() != 0.6 {
		t.Fatalf("expected depression override 0.6, got %v", m.CurrentDepression())
	}
	if !m.IsDepressed() {
		t.Fatal("expected agent depressed above the threshold")
	}
}

func TestConcealOverrideSetsConcealedFlag(t *testing.T) {
	m := &Member{id: 0, minority: true}
	other := &Member{id: 1}
	pairRegistry(m, other)

	m.UpdateAgent(1, society.Impacts{}, society.Overrides{Conceal: floatPtr(0.8)})
	if !m.IsConcealed() {
		t.Fatal("expected minority agent concealed above the threshold")
	}

	m.UpdateAgent(2, society.Impacts{}, society.Overrides{Conceal: floatPtr(0.2)})
	if m.IsConcealed() {
		t.Fatal("expected agent no longer concealed below the threshold")
	}
}

func TestNonMinorityNeverConceals(t *testing.T) {
	m := &Member{id: 0, probConceal: 0.9}
	other := &Member{id: 1}
	pairRegistry(m, other)

	m.UpdateAgent(1, society.Impacts{}, society.Overrides{})
	if m.IsConcealed() {
		t.Fatal("concealment applies to minority agents only")
	}
	if m.ProbConceal() != 0.9 {
		t.Fatalf("non-minority concealment probability must not drift, got %v", m.ProbConceal())
	}
}

func TestDepressionDriftFollowsImpacts(t *testing.T) {
	m := &Member{id: 0, discrimination: 0.4, probConceal: 0.2, support: 0.1, depression: 0.3}
	other := &Member{id: 1}
	pairRegistry(m, other)

	impacts := society.Impacts{
		DiscriminateDepression: 2,
		ConcealDepression:      1,
		SupportDepression:      3,
	}
	// Freeze the other attributes so only depression drifts.
	overrides := society.Overrides{
		Support:        floatPtr(0.1),
		Discrimination: floatPtr(0.4),
		Conceal:        floatPtr(0.2),
		Attitude:       floatPtr(0),
	}
	m.UpdateAgent(1, impacts, overrides)

	load := 2*0.4 + 1*0.2 - 3*0.1
	want := 0.3 + 0.01*load
	if math.Abs(m.CurrentDepression()-want) > 1e-12 {
		t.Fatalf("expected depression %v, got %v", want, m.CurrentDepression())
	}
}

func TestDiscriminatoryAttitudeErodes(t *testing.T) {
	m := &Member{id: 0, attitude: 0.5, discriminatory: true}
	other := &Member{id: 1, attitude: 0.5}
	pairRegistry(m, other)

	m.UpdateAgent(1, society.Impacts{}, society.Overrides{})
	if m.Attitude() >= 0.5 {
		t.Fatalf("expected discriminatory attitude to erode, got %v", m.Attitude())
	}
}

func TestBillInfluence(t *testing.T) {
	m := &Member{attitude: 0.5, ses: 4}

	if got := m.BillInfluence(2); math.Abs(got-2.0) > 1e-12 {
		t.Fatalf("expected influence 2.0 at rank 2, got %v", got)
	}
	if got := m.BillInfluence(0); math.Abs(got-8.0) > 1e-12 {
		t.Fatalf("expected unranked influence 8.0, got %v", got)
	}
}

func TestClampKeepsAttributesInUnitRange(t *testing.T) {
	m := &Member{id: 0, support: 0.99, depression: 0.001}
	other := &Member{id: 1, attitude: 0.9, support: 1.0, minority: true, probConceal: 0.4}
	pairRegistry(m, other)

	for tick := 1; tick <= 200; tick++ {
		m.UpdateAgent(tick, society.Impacts{SupportDepression: 5}, society.Overrides{})
	}

	if m.Support() < 0 || m.Support() > 1 {
		t.Fatalf("support out of range: %v", m.Support())
	}
	if m.CurrentDepression() < 0 || m.CurrentDepression() > 1 {
		t.Fatalf("depression out of range: %v", m.CurrentDepression())
	}
}
