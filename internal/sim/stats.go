package sim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"agora/internal/society"
)

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrZeroStdDev       = errors.New("zero standard deviation")
)

// Selection picks a side of a boolean property: everyone, only those
// without it, or only those with it.
type Selection int

const (
	SelectAll Selection = iota
	SelectWithout
	SelectWith
)

func (s Selection) String() string {
	switch s {
	case SelectAll:
		return "all"
	case SelectWithout:
		return "without"
	case SelectWith:
		return "with"
	default:
		return fmt.Sprintf("selection(%d)", int(s))
	}
}

// Attr names a minority-population attribute for the percentage aggregates.
type Attr string

const (
	AttrDepression     Attr = "depression"
	AttrConcealment    Attr = "concealed"
	AttrDiscrimination Attr = "discrimination"
)

// Maximum scaled values per attribute, used as percentage denominators.
const (
	maxDepression   = 0.25
	maxConcealment  = 0.125
	maxDiscriminate = 0.25
)

// Support z-score below which an agent counts as unsupported.
const noSupportZ = 0.75

// Acceptance band for the density conditioning; z-scores are never exactly
// on the cutoff, so a widened band stands in for "z equals 0.90".
var densityCutoffRange = [2]float64{0.90, 1.10}

// ComputeDensityStats computes and caches the population mean and standard
// deviation of first-degree minority density. Computed once per run.
func (n *Network) ComputeDensityStats() error {
	densities := make([]float64, 0, n.registry.NumAgents())
	for id := 0; id < n.registry.NumAgents(); id++ {
		density, err := n.registry.PercentConnectedMinority(id, true, false)
		if err != nil {
			return err
		}
		densities = append(densities, density)
	}

	n.densityMean = stat.Mean(densities, nil)
	n.densityStd = stat.PopStdDev(densities, nil)
	return nil
}

// ComputeSupportStats computes the mean and standard deviation of agent
// support. With onlyMinority the result is cached as the network's support
// statistics; otherwise it is returned without touching the cache.
func (n *Network) ComputeSupportStats(onlyMinority bool) (mean, std float64) {
	var supports []float64
	if onlyMinority {
		for _, id := range n.registry.MinorityNodes(true) {
			agent, err := n.registry.Agent(id)
			if err != nil {
				continue
			}
			supports = append(supports, agent.Support())
		}
	} else {
		for _, agent := range n.registry.Agents() {
			supports = append(supports, agent.Support())
		}
	}

	mean = stat.Mean(supports, nil)
	std = stat.PopStdDev(supports, nil)
	if onlyMinority {
		n.supportMean = mean
		n.supportStd = std
	}
	return mean, std
}

// DensityZScore returns how many standard deviations the agent's local
// minority density sits from the cached population mean. Fails when the
// cached standard deviation is zero.
func (n *Network) DensityZScore(id int) (float64, error) {
	if n.densityMean == 0 || n.densityStd == 0 {
		if err := n.ComputeDensityStats(); err != nil {
			return 0, err
		}
	}

	current, err := n.registry.PercentConnectedMinority(id, false, false)
	if err != nil {
		return 0, err
	}
	return zScore(current, n.densityMean, n.densityStd)
}

// SupportZScore returns how many standard deviations the agent's support
// sits from the cached minority mean. Fails when the cached standard
// deviation is zero.
func (n *Network) SupportZScore(id int) (float64, error) {
	if n.supportMean == 0 || n.supportStd == 0 {
		n.ComputeSupportStats(true)
	}

	agent, err := n.registry.Agent(id)
	if err != nil {
		return 0, err
	}
	return zScore(agent.Support(), n.supportMean, n.supportStd)
}

func zScore(value, mean, std float64) (float64, error) {
	if std == 0 {
		return 0, fmt.Errorf("%w: degenerate population", ErrZeroStdDev)
	}
	return (value - mean) / std, nil
}

// PercentAttr aggregates an attribute over the minority population. As a
// percentage it returns the attribute total against the scaled maximum; as
// a fraction it returns the share of minority agents satisfying the
// attribute's boolean predicate (discrimination has none). Zero minority
// agents yields 0.
func (n *Network) PercentAttr(attr Attr, asPercentage bool) (float64, error) {
	var scale float64
	var value func(society.Agent) float64
	var predicate func(society.Agent) bool

	switch attr {
	case AttrDepression:
		scale = maxDepression
		value = society.Agent.CurrentDepression
		predicate = society.Agent.IsDepressed
	case AttrConcealment:
		scale = maxConcealment
		value = society.Agent.ProbConceal
		predicate = society.Agent.IsConcealed
	case AttrDiscrimination:
		scale = maxDiscriminate
		value = society.Agent.Discrimination
	default:
		return 0, fmt.Errorf("%w: unknown attribute %q", ErrInvalidSelection, attr)
	}

	minority := n.registry.MinorityNodes(true)
	if len(minority) == 0 {
		return 0, nil
	}

	if asPercentage {
		total := 0.0
		for _, id := range minority {
			agent, err := n.registry.Agent(id)
			if err != nil {
				return 0, err
			}
			total += value(agent)
		}
		return total / (float64(len(minority)) * scale), nil
	}

	if predicate == nil {
		return 0, fmt.Errorf("%w: attribute %q has no boolean predicate", ErrInvalidSelection, attr)
	}
	matching := 0
	for _, id := range minority {
		agent, err := n.registry.Agent(id)
		if err != nil {
			return 0, err
		}
		if predicate(agent) {
			matching++
		}
	}
	return float64(matching) / float64(len(minority)), nil
}

// DepressionOdds computes p/(1-p) where p is mean depression over the
// subset selected by minority status and conditioned on support z-score.
// With checkDensity (only meaningful when support is unconditioned) the
// subset narrows to agents whose density z-score clears the cutoff band.
// An empty subset yields 0.
func (n *Network) DepressionOdds(minority, support Selection, checkDensity bool) (float64, error) {
	var agents []int
	switch minority {
	case SelectWith:
		agents = n.registry.MinorityNodes(true)
	case SelectWithout:
		agents = n.registry.MinorityNodes(false)
	case SelectAll:
		agents = make([]int, n.registry.NumAgents())
		for id := range agents {
			agents[id] = id
		}
	default:
		return 0, fmt.Errorf("%w: minority selection must be all, without, or with, got %d", ErrInvalidSelection, int(minority))
	}

	count := len(agents)
	totalDepression := 0.0
	switch support {
	case SelectWith:
		for _, id := range agents {
			z, err := n.SupportZScore(id)
			if err != nil {
				return 0, err
			}
			if z > noSupportZ {
				agent, err := n.registry.Agent(id)
				if err != nil {
					return 0, err
				}
				totalDepression += agent.CurrentDepression()
			}
		}
	case SelectWithout:
		for _, id := range agents {
			z, err := n.SupportZScore(id)
			if err != nil {
				return 0, err
			}
			if z <= noSupportZ {
				agent, err := n.registry.Agent(id)
				if err != nil {
					return 0, err
				}
				totalDepression += agent.CurrentDepression()
			}
		}
	case SelectAll:
		if checkDensity {
			count = 0
			for _, id := range agents {
				z, err := n.DensityZScore(id)
				if err != nil {
					return 0, err
				}
				if z > densityCutoffRange[0] {
					agent, err := n.registry.Agent(id)
					if err != nil {
						return 0, err
					}
					totalDepression += agent.CurrentDepression()
					count++
				}
			}
		} else {
			for _, id := range agents {
				agent, err := n.registry.Agent(id)
				if err != nil {
					return 0, err
				}
				totalDepression += agent.CurrentDepression()
			}
		}
	default:
		return 0, fmt.Errorf("%w: support selection must be all, without, or with, got %d", ErrInvalidSelection, int(support))
	}

	if count == 0 {
		return 0, nil
	}
	prob := totalDepression / float64(count)
	return prob / (1 - prob), nil
}

// NetworkSES is the population mean socio-economic status.
func (n *Network) NetworkSES() float64 {
	return n.populationMean(society.Agent.CurrentSES)
}

// NetworkAttitude is the population mean attitude toward the minority.
func (n *Network) NetworkAttitude() float64 {
	return n.populationMean(society.Agent.Attitude)
}

// MinorityDepressionAvg is the mean depression among minority agents.
func (n *Network) MinorityDepressionAvg() float64 {
	minority := n.registry.MinorityNodes(true)
	if len(minority) == 0 {
		return 0
	}
	total := 0.0
	for _, id := range minority {
		agent, err := n.registry.Agent(id)
		if err != nil {
			continue
		}
		total += agent.CurrentDepression()
	}
	return total / float64(len(minority))
}

func (n *Network) populationMean(value func(society.Agent) float64) float64 {
	agents := n.registry.Agents()
	if len(agents) == 0 {
		return 0
	}
	total := 0.0
	for _, agent := range agents {
		total += value(agent)
	}
	return total / float64(len(agents))
}
