// Package sensitivity benchmarks simulation outcomes against
// literature-derived odds-ratio ranges and measures how strongly each
// impact parameter drives the final depression and concealment levels.
package sensitivity

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"agora/internal/model"
	"agora/internal/sim"
	"agora/internal/society"
)

// Literature ranges the simulated odds ratios are expected to land in.
var literatureRanges = map[string][2]float64{
	"Minority_Discrimination_Prevalence": {0.175, 0.259},
	"Minority_Depress":                   {1.55, 2.65},
	"Support_Depress":                    {1.5, 4.7},
	"Density_Depress":                    {0.4, 1.2},
}

// OddsRatioTests computes the benchmark odds ratios on the final network:
// discrimination prevalence among the minority, then the
// minority/support/density depression ratios, each the quotient of a
// conditioned pair.
func OddsRatioTests(n *sim.Network) ([]model.OddsResult, error) {
	results := make([]model.OddsResult, 0, 4)

	prevalence, err := n.PercentAttr(sim.AttrDiscrimination, true)
	if err != nil {
		return nil, fmt.Errorf("discrimination prevalence: %w", err)
	}
	results = append(results, newResult("Minority_Discrimination_Prevalence", prevalence))

	minorityOR, err := oddsQuotient(n,
		oddsArgs{minority: sim.SelectWith},
		oddsArgs{minority: sim.SelectWithout})
	if err != nil {
		return nil, fmt.Errorf("minority odds ratio: %w", err)
	}
	results = append(results, newResult("Minority_Depress", minorityOR))

	supportOR, err := oddsQuotient(n,
		oddsArgs{support: sim.SelectWithout},
		oddsArgs{support: sim.SelectWith})
	if err != nil {
		return nil, fmt.Errorf("support odds ratio: %w", err)
	}
	results = append(results, newResult("Support_Depress", supportOR))

	densityOR, err := oddsQuotient(n,
		oddsArgs{checkDensity: true},
		oddsArgs{})
	if err != nil {
		return nil, fmt.Errorf("density odds ratio: %w", err)
	}
	results = append(results, newResult("Density_Depress", densityOR))

	return results, nil
}

type oddsArgs struct {
	minority     sim.Selection
	support      sim.Selection
	checkDensity bool
}

func oddsQuotient(n *sim.Network, numerator, denominator oddsArgs) (float64, error) {
	num, err := n.DepressionOdds(numerator.minority, numerator.support, numerator.checkDensity)
	if err != nil {
		return 0, err
	}
	den, err := n.DepressionOdds(denominator.minority, denominator.support, denominator.checkDensity)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

func newResult(label string, value float64) model.OddsResult {
	bounds := literatureRanges[label]
	return model.OddsResult{
		Label:   label,
		Value:   value,
		Low:     bounds[0],
		High:    bounds[1],
		InRange: bounds[0] < value && value < bounds[1],
	}
}

// Params are the independent variables of the correlation sweep.
type Params struct {
	PercentMinority float64
	Impacts         society.Impacts
}

// RunFunc executes a fresh simulation with the given parameters and returns
// the final minority depression and concealment percentages.
type RunFunc func(Params) (depressionPct, concealPct float64, err error)

var sweepMultipliers = []float64{0.5, 1.0, 2.0, 3.0, 4.0, 5.0}

type sweepVariable struct {
	label string
	get   func(*Params) float64
	set   func(*Params, float64)
}

func sweepVariables() []sweepVariable {
	return []sweepVariable{
		{"Minority_Percentage",
			func(p *Params) float64 { return p.PercentMinority },
			func(p *Params, v float64) { p.PercentMinority = v }},
		{"SupportDepression_Impact",
			func(p *Params) float64 { return p.Impacts.SupportDepression },
			func(p *Params, v float64) { p.Impacts.SupportDepression = v }},
		{"ConcealDiscrimination_Impact",
			func(p *Params) float64 { return p.Impacts.ConcealDiscriminate },
			func(p *Params, v float64) { p.Impacts.ConcealDiscriminate = v }},
		{"DiscriminateConceal_Impact",
			func(p *Params) float64 { return p.Impacts.DiscriminateConceal },
			func(p *Params, v float64) { p.Impacts.DiscriminateConceal = v }},
		{"DiscriminationDepression_Impact",
			func(p *Params) float64 { return p.Impacts.DiscriminateDepression },
			func(p *Params, v float64) { p.Impacts.DiscriminateDepression = v }},
		{"ConcealDepression_Impact",
			func(p *Params) float64 { return p.Impacts.ConcealDepression },
			func(p *Params, v float64) { p.Impacts.ConcealDepression = v }},
	}
}

// CorrelationSweep varies each parameter in turn across the multiplier
// levels, re-runs the simulation at every level, and reports the Pearson
// correlation of both outcomes against the levels tried.
func CorrelationSweep(base Params, run RunFunc) ([]model.CorrelationResult, error) {
	out := make([]model.CorrelationResult, 0, 6)
	for _, variable := range sweepVariables() {
		levels := make([]float64, 0, len(sweepMultipliers))
		depressions := make([]float64, 0, len(sweepMultipliers))
		concealments := make([]float64, 0, len(sweepMultipliers))

		for _, multiplier := range sweepMultipliers {
			trial := base
			level := variable.get(&trial) * multiplier
			variable.set(&trial, level)
			levels = append(levels, level)

			if trial.PercentMinority > 1.0 {
				trial.PercentMinority = 1.0
			}
			depressionPct, concealPct, err := run(trial)
			if err != nil {
				return nil, fmt.Errorf("sweep %s level %v: %w", variable.label, level, err)
			}
			depressions = append(depressions, depressionPct)
			concealments = append(concealments, concealPct)
		}

		out = append(out, model.CorrelationResult{
			Label:          variable.label,
			Levels:         levels,
			DepressionPcts: depressions,
			ConcealPcts:    concealments,
			DepressionR:    stat.Correlation(levels, depressions, nil),
			ConcealmentR:   stat.Correlation(levels, concealments, nil),
		})
	}
	return out, nil
}

// AllInRange reports whether every benchmark landed inside its literature
// range, with the labels of those that did not.
func AllInRange(results []model.OddsResult) (bool, []string) {
	var failed []string
	for _, result := range results {
		if !result.InRange {
			failed = append(failed, result.Label)
		}
	}
	return len(failed) == 0, failed
}
