// Package sim drives the population tick loop and derives the cached
// statistics and odds ratios used to benchmark the simulation.
package sim

import (
	"fmt"
	"math/rand"

	"agora/internal/policy"
	"agora/internal/society"
)

// Ticks between externally enforced policies.
const enforcedPolicyGap = 5

type Config struct {
	Registry *society.Registry
	Ledger   *policy.Ledger
	Factory  policy.Factory
	Proposer policy.Proposer
	Seed     int64
}

// StepOverrides forces parts of a tick for controlled experiments. A nil
// field leaves the corresponding attribute to its standard evolution rule.
// PolicyScore and Bias force policy introduction on the enforcement ticks.
type StepOverrides struct {
	Support        *float64
	Conceal        *float64
	Discrimination *float64
	Attitude       *float64
	Depression     *float64

	PolicyScore *float64
	Bias        policy.Bias
}

// Network owns the population registry and policy ledger and advances both
// one tick at a time. It also carries the one-shot statistic caches: once a
// mean/std pair is computed it stays fixed for the rest of the run, even as
// agents keep mutating. A zero value means "not yet computed".
type Network struct {
	registry *society.Registry
	ledger   *policy.Ledger
	factory  policy.Factory
	proposer policy.Proposer
	rng      *rand.Rand

	densityMean float64
	densityStd  float64
	supportMean float64
	supportStd  float64
}

func NewNetwork(cfg Config) (*Network, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("policy ledger is required")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	factory := cfg.Factory
	if factory == nil {
		factory = policy.NewBillFactory(rng)
	}
	proposer := cfg.Proposer
	if proposer == nil {
		proposer = policy.BillProposer{Rate: 0.1}
	}
	return &Network{
		registry: cfg.Registry,
		ledger:   cfg.Ledger,
		factory:  factory,
		proposer: proposer,
		rng:      rng,
	}, nil
}

func (n *Network) Registry() *society.Registry {
	return n.registry
}

func (n *Network) Ledger() *policy.Ledger {
	return n.ledger
}

// Step advances the whole population by one tick: introduce a policy
// (enforced or proposed), fold policy effects into the running score, then
// update every agent. A missing agent is a fatal registry inconsistency.
func (n *Network) Step(time int, impacts society.Impacts, overrides StepOverrides) error {
	forced := overrides.PolicyScore != nil || overrides.Bias != policy.BiasAny
	if forced && time%enforcedPolicyGap == 0 {
		onlyDiscriminatory := overrides.Bias != policy.BiasNonDiscriminatory
		n.ledger.Enforce(time, overrides.PolicyScore, onlyDiscriminatory, n.factory)
	} else {
		if proposed, ok := n.proposer.Propose(time, n.ledger.Cap(), n.rng); ok {
			n.ledger.Admit(proposed)
		}
	}

	n.ledger.UpdateScore(time)

	agentOverrides := society.Overrides{
		Support:        overrides.Support,
		Conceal:        overrides.Conceal,
		Discrimination: overrides.Discrimination,
		Attitude:       overrides.Attitude,
		Depression:     overrides.Depression,
	}
	for id := 0; id < n.registry.NumAgents(); id++ {
		agent, err := n.registry.Agent(id)
		if err != nil {
			return fmt.Errorf("registry inconsistent at tick %d: %w", time, err)
		}
		agent.UpdateAgent(time, impacts, agentOverrides)
	}
	return nil
}

// Run steps the network over ticks 1..timeSpan with constant impacts and
// overrides.
func (n *Network) Run(timeSpan int, impacts society.Impacts, overrides StepOverrides) error {
	for t := 1; t <= timeSpan; t++ {
		if err := n.Step(t, impacts, overrides); err != nil {
			return err
		}
	}
	return nil
}
