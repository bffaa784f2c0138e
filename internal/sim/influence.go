package sim

// TotalInfluence accumulates each agent's bill influence at the given rank.
// Minority agents additionally contribute their support/discrimination
// balance, attenuated by concealment: a positive running total is scaled by
// (1-probConceal)^2, a non-positive one by probConceal^2.
func (n *Network) TotalInfluence(billRank float64) float64 {
	total := 0.0
	for _, agent := range n.registry.Agents() {
		total += agent.BillInfluence(billRank)
		if agent.IsMinority() {
			total += agent.Support() - agent.Discrimination()
			if total > 0 {
				visible := 1 - agent.ProbConceal()
				total *= visible * visible
			} else {
				total *= agent.ProbConceal() * agent.ProbConceal()
			}
		}
	}
	return total
}

// MaxTotalInfluence is the ceiling of TotalInfluence: the sum of squared
// socio-economic status over the population.
func (n *Network) MaxTotalInfluence() float64 {
	total := 0.0
	for _, agent := range n.registry.Agents() {
		total += agent.CurrentSES() * agent.CurrentSES()
	}
	return total
}
