package sim

import (
	"math/rand"
	"testing"

	"agora/internal/policy"
	"agora/internal/society"
)

type recordingProposer struct {
	ticks []int
}

func (p *recordingProposer) Propose(time int, _ float64, _ *rand.Rand) (policy.Policy, bool) {
	p.ticks = append(p.ticks, time)
	return nil, false
}

func newStepNetwork(t *testing.T, proposer policy.Proposer, factory policy.Factory) (*Network, []*testAgent) {
	t.Helper()
	agents := []*testAgent{
		{minority: true, probConceal: 0.3},
		{},
		{},
	}
	arena := make([]society.Agent, len(agents))
	for i, agent := range agents {
		arena[i] = agent
	}
	registry := society.NewRegistry()
	registry.SetAgents(arena)
	g := society.NewGraph()
	for i := range arena {
		g.AddEdge(i, (i+1)%len(arena))
	}
	registry.SetGraph(g)

	n, err := NewNetwork(Config{
		Registry: registry,
		Ledger:   policy.NewLedger(20),
		Factory:  factory,
		Proposer: proposer,
		Seed:     1,
	})
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	return n, agents
}

func TestNewNetworkValidation(t *testing.T) {
	if _, err := NewNetwork(Config{Ledger: policy.NewLedger(10)}); err == nil {
		t.Fatal("expected error for missing registry")
	}
	if _, err := NewNetwork(Config{Registry: society.NewRegistry()}); err == nil {
		t.Fatal("expected error for missing ledger")
	}
}

func TestStepUpdatesEveryAgent(t *testing.T) {
	proposer := &recordingProposer{}
	n, agents := newStepNetwork(t, proposer, nil)

	if err := n.Run(3, society.Impacts{}, StepOverrides{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for id, agent := range agents {
		if agent.updates != 3 {
			t.Fatalf("agent %d: expected 3 updates, got %d", id, agent.updates)
		}
	}
	if len(proposer.ticks) != 3 {
		t.Fatalf("expected proposer consulted every tick, got %v", proposer.ticks)
	}
}

func TestStepEnforcesOnlyOnGapTicks(t *testing.T) {
	var enforcedAt []int
	factory := func(time int, score *float64, bias policy.Bias) policy.Policy {
		enforcedAt = append(enforcedAt, time)
		return policy.NewBill(time, score, bias, nil)
	}
	proposer := &recordingProposer{}
	n, _ := newStepNetwork(t, proposer, factory)

	target := 3.0
	overrides := StepOverrides{PolicyScore: &target}
	if err := n.Run(12, society.Impacts{}, overrides); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []int{5, 10}
	if len(enforcedAt) != len(want) {
		t.Fatalf("expected enforcement at %v, got %v", want, enforcedAt)
	}
	for i := range want {
		if enforcedAt[i] != want[i] {
			t.Fatalf("expected enforcement at %v, got %v", want, enforcedAt)
		}
	}

	// Off-gap ticks under a forced score fall through to the proposer.
	if len(proposer.ticks) != 10 {
		t.Fatalf("expected 10 proposer ticks, got %d", len(proposer.ticks))
	}
}

func TestStepBiasAloneForcesPolicy(t *testing.T) {
	var biases []policy.Bias
	factory := func(time int, score *float64, bias policy.Bias) policy.Policy {
		biases = append(biases, bias)
		return policy.NewBill(time, score, bias, rand.New(rand.NewSource(1)))
	}
	n, _ := newStepNetwork(t, &recordingProposer{}, factory)

	overrides := StepOverrides{Bias: policy.BiasNonDiscriminatory}
	if err := n.Run(5, society.Impacts{}, overrides); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(biases) != 1 || biases[0] != policy.BiasNonDiscriminatory {
		t.Fatalf("expected one non-discriminatory enforcement, got %v", biases)
	}
}

func TestStepOverridesReachAgents(t *testing.T) {
	n, _ := newStepNetwork(t, &recordingProposer{}, nil)

	depression := 0.9
	captured := false
	arena := []society.Agent{&overrideCheckAgent{t: t, wantDepression: &depression, seen: &captured}}
	n.registry.SetAgents(arena)
	g := society.NewGraph()
	g.AddNode(0)
	n.registry.SetGraph(g)

	if err := n.Step(1, society.Impacts{}, StepOverrides{Depression: &depression}); err != nil {
		t.Fatalf("step: %v", err)
	}
	if !captured {
		t.Fatal("expected the override to reach the agent update")
	}
}

type overrideCheckAgent struct {
	testAgent
	t              *testing.T
	wantDepression *float64
	seen           *bool
}

func (a *overrideCheckAgent) UpdateAgent(_ int, _ society.Impacts, overrides society.Overrides) {
	if overrides.Depression == nil || *overrides.Depression != *a.wantDepression {
		a.t.Errorf("expected depression override %v, got %v", *a.wantDepression, overrides.Depression)
	}
	*a.seen = true
}

func TestVisualAttributes(t *testing.T) {
	n, _ := newStepNetwork(t, &recordingProposer{}, nil)
	arena := []society.Agent{
		&testAgent{depression: 0.5, minority: true, concealed: true},
		&testAgent{depression: 0.1},
	}
	n.registry.SetAgents(arena)

	styles := n.VisualAttributes()
	if len(styles) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(styles))
	}
	if styles[0].Color != "red" || styles[0].Shape != "s" || styles[0].Opacity != 0.5 {
		t.Fatalf("unexpected style for depressed concealed minority: %+v", styles[0])
	}
	if styles[1].Color != "blue" || styles[1].Shape != "o" || styles[1].Opacity != 1.0 {
		t.Fatalf("unexpected style for baseline agent: %+v", styles[1])
	}
}

func TestTotalInfluenceBounds(t *testing.T) {
	n, _ := newStepNetwork(t, &recordingProposer{}, nil)
	arena := []society.Agent{
		&testAgent{ses: 2, attitude: 1},
		&testAgent{ses: 3, attitude: 1, minority: true, support: 0.5, probConceal: 0.5},
	}
	n.registry.SetAgents(arena)

	if got := n.MaxTotalInfluence(); got != 13 {
		t.Fatalf("expected max influence 13, got %v", got)
	}
	total := n.TotalInfluence(1)
	if total <= 0 || total > n.MaxTotalInfluence() {
		t.Fatalf("expected influence in (0, max], got %v", total)
	}
}
