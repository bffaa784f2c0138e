package society

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrAgentNotFound = errors.New("agent not found")

// Registry is the arena holding the population: agents by stable index and
// the contact graph over those indices. Single-writer; the orchestrator is
// the only mutator inside a tick.
type Registry struct {
	graph  *Graph
	agents []Agent

	// Neighbor traversal depth for the "social network" queries. Defaults
	// to first-degree; wider traversal is an explicit opt-in.
	neighborHops int
}

func NewRegistry() *Registry {
	return &Registry{graph: NewGraph(), neighborHops: 1}
}

// SetGraph replaces the whole contact graph. No merge semantics.
func (r *Registry) SetGraph(g *Graph) {
	r.graph = g
}

// SetAgents replaces the whole agent arena. Index in the slice is the
// agent's identifier for the simulation's lifetime.
func (r *Registry) SetAgents(agents []Agent) {
	r.agents = agents
}

// SetNeighborHops widens the social-network traversal to the given degree.
// Values below 1 are clamped to first-degree.
func (r *Registry) SetNeighborHops(hops int) {
	if hops < 1 {
		hops = 1
	}
	r.neighborHops = hops
}

func (r *Registry) Graph() *Graph {
	return r.graph
}

func (r *Registry) AddEdges(pairs []Edge) {
	r.graph.AddEdges(pairs)
}

func (r *Registry) RemoveEdge(a, b int) error {
	return r.graph.RemoveEdge(a, b)
}

func (r *Registry) Agent(id int) (Agent, error) {
	if id < 0 || id >= len(r.agents) || r.agents[id] == nil {
		return nil, fmt.Errorf("%w: %d", ErrAgentNotFound, id)
	}
	return r.agents[id], nil
}

func (r *Registry) NumAgents() int {
	return len(r.agents)
}

// Agents returns the full population in index order. The order is stable but
// carries no semantic meaning.
func (r *Registry) Agents() []Agent {
	out := make([]Agent, len(r.agents))
	copy(out, r.agents)
	return out
}

// MinorityNodes partitions the population by the minority flag and returns
// the indices of the matching side.
func (r *Registry) MinorityNodes(wantMinority bool) []int {
	out := make([]int, 0, len(r.agents))
	for id, agent := range r.agents {
		if agent == nil {
			continue
		}
		if agent.IsMinority() == wantMinority {
			out = append(out, id)
		}
	}
	return out
}

// MaxSES returns the maximum socio-economic status in the population.
func (r *Registry) MaxSES() float64 {
	maxSES := 0.0
	first := true
	for _, agent := range r.agents {
		if agent == nil {
			continue
		}
		if first || agent.CurrentSES() > maxSES {
			maxSES = agent.CurrentSES()
			first = false
		}
	}
	return maxSES
}

// ChooseDiscriminatory marks agents in the lower half of the SES range as
// discriminatory with probability 0.25, and clears the flag on the rest.
func (r *Registry) ChooseDiscriminatory(rng *rand.Rand) {
	const probDiscriminatory = 0.25

	topCap := r.MaxSES() / 2
	for _, agent := range r.agents {
		if agent == nil {
			continue
		}
		if agent.CurrentSES() < topCap && rng.Float64() < probDiscriminatory {
			agent.SetDiscriminatory(true)
		} else {
			agent.SetDiscriminatory(false)
		}
	}
}
