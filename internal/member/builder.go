package member

import (
	"fmt"
	"math/rand"

	"agora/internal/model"
	"agora/internal/society"
)

// PopulationConfig seeds a registry with a synthetic population and contact
// graph. Graph topology here is deliberately plain: a ring lattice with a
// sprinkle of random shortcuts, enough for the simulation and its tests.
type PopulationConfig struct {
	Agents          int
	PercentMinority float64
	MeanDegree      int
	NeighborHops    int
	Seed            int64
}

// BuildPopulation constructs the registry, agents, and contact graph.
func BuildPopulation(cfg PopulationConfig) (*society.Registry, error) {
	if cfg.Agents < 2 {
		return nil, fmt.Errorf("population needs at least 2 agents, got %d", cfg.Agents)
	}
	if cfg.PercentMinority < 0 || cfg.PercentMinority > 1 {
		return nil, fmt.Errorf("percent minority must be in [0,1], got %v", cfg.PercentMinority)
	}
	meanDegree := cfg.MeanDegree
	if meanDegree < 2 {
		meanDegree = 2
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	registry := society.NewRegistry()
	if cfg.NeighborHops > 1 {
		registry.SetNeighborHops(cfg.NeighborHops)
	}

	agents := make([]society.Agent, cfg.Agents)
	for id := range agents {
		agents[id] = newSeedMember(id, registry, cfg.PercentMinority, rng)
	}
	registry.SetAgents(agents)
	registry.SetGraph(buildContactGraph(cfg.Agents, meanDegree, rng))
	registry.ChooseDiscriminatory(rng)
	return registry, nil
}

func newSeedMember(id int, registry *society.Registry, percentMinority float64, rng *rand.Rand) *Member {
	m := &Member{
		id:             id,
		registry:       registry,
		ses:            1 + 9*rng.Float64(),
		attitude:       1.5*rng.Float64() - 0.5,
		support:        rng.Float64(),
		discrimination: 0.25 * rng.Float64(),
		depression:     0.25 * rng.Float64(),
	}
	if rng.Float64() < percentMinority {
		m.minority = true
		m.probConceal = 0.5 * rng.Float64()
		m.concealed = m.probConceal > concealThreshold
	}
	return m
}

// buildContactGraph wires a ring lattice of the given mean degree plus a few
// random shortcuts. Every agent ends up with at least two contacts.
func buildContactGraph(n, meanDegree int, rng *rand.Rand) *society.Graph {
	g := society.NewGraph()
	half := meanDegree / 2
	if half < 1 {
		half = 1
	}
	for id := 0; id < n; id++ {
		for k := 1; k <= half; k++ {
			g.AddEdge(id, (id+k)%n)
		}
	}

	shortcuts := n / 10
	for i := 0; i < shortcuts; i++ {
		a := rng.Intn(n)
		b := rng.Intn(n)
		if a != b {
			g.AddEdge(a, b)
		}
	}
	return g
}

// Snapshot captures an agent's attributes for persistence.
func Snapshot(id int, agent society.Agent) model.AgentSnapshot {
	return model.AgentSnapshot{
		ID:             id,
		SES:            agent.CurrentSES(),
		Attitude:       agent.Attitude(),
		Support:        agent.Support(),
		Discrimination: agent.Discrimination(),
		Depression:     agent.CurrentDepression(),
		ProbConceal:    agent.ProbConceal(),
		Minority:       agent.IsMinority(),
		Concealed:      agent.IsConcealed(),
		Depressed:      agent.IsDepressed(),
		Discriminatory: agent.IsDiscriminatory(),
	}
}
