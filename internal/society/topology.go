package society

import (
	"errors"
	"fmt"
)

var ErrNoNeighbors = errors.New("agent has no neighbors")

// Attitude above which a non-minority contact counts as supportive.
const supportAttitude = 0.25

// FirstNeighbors returns the direct graph neighbors of the agent.
func (r *Registry) FirstNeighbors(id int) []int {
	return r.graph.Neighbors(id)
}

// Neighbors returns the agent's social network: everyone within the
// configured traversal depth. With the default depth this equals the direct
// neighbors.
func (r *Registry) Neighbors(id int) []int {
	if r.neighborHops <= 1 {
		return r.graph.Neighbors(id)
	}

	visited := map[int]struct{}{id: {}}
	frontier := []int{id}
	out := make([]int, 0)
	for hop := 0; hop < r.neighborHops; hop++ {
		next := make([]int, 0)
		for _, cur := range frontier {
			for _, neighbor := range r.graph.Neighbors(cur) {
				if _, seen := visited[neighbor]; seen {
					continue
				}
				visited[neighbor] = struct{}{}
				out = append(out, neighbor)
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return out
}

// PercentConnectedMinority computes the visibility-weighted fraction of an
// agent's contacts who are openly minority. Each visible minority contact
// contributes probConceal squared rather than a flat count; with allSupport,
// non-minority contacts with attitude above 0.25 also count as supportive.
// Fails when the agent has no neighbors.
func (r *Registry) PercentConnectedMinority(id int, firstDegree, allSupport bool) (float64, error) {
	var neighbors []int
	if firstDegree {
		neighbors = r.FirstNeighbors(id)
	} else {
		neighbors = r.Neighbors(id)
	}
	if len(neighbors) == 0 {
		return 0, fmt.Errorf("%w: %d", ErrNoNeighbors, id)
	}

	minorityCount := 0.0
	for _, neighborID := range neighbors {
		neighbor, err := r.Agent(neighborID)
		if err != nil {
			return 0, err
		}
		if neighbor.IsMinority() && !neighbor.IsConcealed() {
			minorityCount += neighbor.ProbConceal() * neighbor.ProbConceal()
		} else if allSupport && neighbor.Attitude() > supportAttitude {
			minorityCount++
		}
	}
	return minorityCount / float64(len(neighbors)), nil
}

// PercentNonAccepting computes the fraction of the agent's social network
// with attitude below 0.5. Fails when the agent has no neighbors.
func (r *Registry) PercentNonAccepting(id int) (float64, error) {
	neighbors := r.Neighbors(id)
	if len(neighbors) == 0 {
		return 0, fmt.Errorf("%w: %d", ErrNoNeighbors, id)
	}

	nonAccepting := 0
	for _, neighborID := range neighbors {
		neighbor, err := r.Agent(neighborID)
		if err != nil {
			return 0, err
		}
		if neighbor.Attitude() < 0.5 {
			nonAccepting++
		}
	}
	return float64(nonAccepting) / float64(len(neighbors)), nil
}

// LocalAverage computes the mean of the accessor over the agent's social
// network. Fails when the agent has no neighbors.
func (r *Registry) LocalAverage(id int, value func(Agent) float64) (float64, error) {
	neighbors := r.Neighbors(id)
	if len(neighbors) == 0 {
		return 0, fmt.Errorf("%w: %d", ErrNoNeighbors, id)
	}

	total := 0.0
	for _, neighborID := range neighbors {
		neighbor, err := r.Agent(neighborID)
		if err != nil {
			return 0, err
		}
		total += value(neighbor)
	}
	return total / float64(len(neighbors)), nil
}

// Attitudes splits the social network's attitudes into positive and
// negative sides and returns the mean of each. An empty side averages to 0.
func (r *Registry) Attitudes(id int) (posAvg, negAvg float64, err error) {
	var posTotal, negTotal float64
	var posCount, negCount int

	for _, neighborID := range r.Neighbors(id) {
		neighbor, err := r.Agent(neighborID)
		if err != nil {
			return 0, 0, err
		}
		attitude := neighbor.Attitude()
		if attitude > 0 {
			posTotal += attitude
			posCount++
		} else {
			negTotal += attitude
			negCount++
		}
	}
	if posCount > 0 {
		posAvg = posTotal / float64(posCount)
	}
	if negCount > 0 {
		negAvg = negTotal / float64(negCount)
	}
	return posAvg, negAvg, nil
}
