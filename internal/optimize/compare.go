package optimize

import (
	"context"
	"fmt"
)

// Scenario is one named request variant to compare side by side.
type Scenario struct {
	Name    string
	Request Request
}

// ComparisonResult holds the response and headline statistics for a single
// scenario. A scenario whose run failed carries the error instead of a
// response.
type ComparisonResult struct {
	Scenario    Scenario
	Response    Response
	Err         error
	MRRCm3Min   float64
	Fitness     float64
	SafetyScore float64
	Generations int
}

// CompareScenarios runs each scenario in order and returns the results in
// scenario order. This enables side-by-side comparison of different
// algorithm settings (population size, generation budget, rate schedules).
func CompareScenarios(ctx context.Context, f *Facade, scenarios []Scenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		resp, err := f.Run(ctx, scenario.Request)
		cr := ComparisonResult{Scenario: scenario, Response: resp, Err: err}
		if err == nil {
			cr.MRRCm3Min = resp.Evaluation.MRRCm3Min
			cr.Fitness = resp.Evaluation.Fitness
			cr.Generations = resp.Generations
			if resp.Review != nil {
				cr.SafetyScore = resp.Review.SafetyScore
			}
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios from a base
// request, varying key algorithm parameters to show what-if alternatives.
func BuildDefaultScenarios(base Request) []Scenario {
	scenarios := []Scenario{
		{Name: "Current Settings", Request: base},
	}

	// Scenario: adaptive rate schedule
	if !base.AdaptiveRates {
		adaptive := base
		adaptive.AdaptiveRates = true
		scenarios = append(scenarios, Scenario{
			Name:    "Adaptive Rates",
			Request: adaptive,
		})
	}

	// Scenario: double the population override, or 1000 when the base uses
	// the engine default; skipped above the allowed range
	pop := populationSizeMin * 10
	if base.PopulationSize != nil {
		pop = *base.PopulationSize * 2
	}
	if pop <= populationSizeMax {
		larger := base
		larger.PopulationSize = &pop
		scenarios = append(scenarios, Scenario{
			Name:    fmt.Sprintf("Population %d", pop),
			Request: larger,
		})
	}

	// Scenario: longer generation budget
	gens := generationsMax / 2
	if base.Generations != nil && *base.Generations*2 <= generationsMax {
		gens = *base.Generations * 2
	}
	longer := base
	longer.Generations = &gens
	scenarios = append(scenarios, Scenario{
		Name:    fmt.Sprintf("Generations %d", gens),
		Request: longer,
	})

	return scenarios
}
