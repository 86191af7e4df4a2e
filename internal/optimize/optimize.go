// Package optimize is the orchestration facade: it resolves the four
// domain records through the repository, runs the Planner, configures and
// drives the MGA engine, grades the incumbent with the Reviewer, and
// assembles the single response aggregate callers consume.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/luanshen/mga-optimizer/internal/advisor"
	"github.com/luanshen/mga-optimizer/internal/dna"
	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/luanshen/mga-optimizer/internal/mga"
	"github.com/luanshen/mga-optimizer/internal/physics"
	"github.com/luanshen/mga-optimizer/internal/planner"
	"github.com/luanshen/mga-optimizer/internal/repository"
	"github.com/luanshen/mga-optimizer/internal/reviewer"
)

// Override validity ranges.
const (
	populationSizeMin = 100
	populationSizeMax = 100000
	generationsMin    = 10
	generationsMax    = 1000
)

// Request identifies the records one optimization runs against, plus the
// optional algorithm overrides. Nil override pointers mean "use the engine
// default"; a zero rate is a valid explicit override (it freezes the
// population), so presence cannot be inferred from the value.
type Request struct {
	MaterialID string `json:"material_id"`
	ToolID     string `json:"tool_id"`
	MachineID  string `json:"machine_id"`
	StrategyID string `json:"strategy_id"`

	PopulationSize *int     `json:"population_size,omitempty"`
	Generations    *int     `json:"generations,omitempty"`
	CrossoverRate  *float64 `json:"crossover_rate,omitempty"`
	MutationRate   *float64 `json:"mutation_rate,omitempty"`
	AdaptiveRates  bool     `json:"adaptive_rates,omitempty"`

	Seed        int64 `json:"seed"`
	SkipPlanner bool  `json:"skip_planner,omitempty"`
	SkipReview  bool  `json:"skip_review,omitempty"`
}

// Response is the facade's single result aggregate: the rounded Evaluation,
// the search box with its reason, the review report, and the advice strings.
type Response struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Aborted bool   `json:"aborted"`
	// Unreliable marks a run whose final scalar re-evaluation produced a
	// non-finite quantity; the incumbent is still attached for postmortem.
	Unreliable bool   `json:"unreliable"`
	Message    string `json:"message"`

	Evaluation  domain.Evaluation `json:"evaluation"`
	Generations int               `json:"generations"`

	SearchBox     domain.SearchBox     `json:"search_box"`
	SearchReason  string               `json:"search_reason,omitempty"`
	SafetyFactors map[string]float64   `json:"safety_factors,omitempty"`
	Advice        map[string]string    `json:"advice,omitempty"`
	Review        *domain.ReviewReport `json:"review,omitempty"`
}

// Facade wires the repository and advisor collaborators to the optimization
// pipeline. Timeout, when positive, bounds the whole run wall-clock; expiry
// triggers the engine's cooperative cancellation.
type Facade struct {
	Repo    repository.Repository
	Advisor advisor.Advisor
	Timeout time.Duration
}

// New builds a Facade with the no-op advisor; callers wanting language-model
// commentary swap in their own Advisor.
func New(repo repository.Repository) *Facade {
	return &Facade{Repo: repo, Advisor: advisor.NoOp{}}
}

// Run executes one optimization end to end. The incumbent-bearing Response
// is returned even on cancellation and numeric failure, with the error
// carrying the dedicated status.
func (f *Facade) Run(ctx context.Context, req Request) (Response, error) {
	tool, mat, mach, strat, err := f.resolve(req)
	if err != nil {
		return Response{}, err
	}
	if err := validate(req, tool, mat, mach, strat); err != nil {
		return Response{}, err
	}

	resp := Response{ID: domain.NewResultID()}

	if req.SkipPlanner {
		resp.SearchBox = envelopeBox(tool, strat)
	} else {
		plan := planner.Plan(tool, mat, mach, strat)
		if axis, empty := plan.Box.Empty(); empty {
			return Response{}, &domain.InfeasibleConfigurationError{Axis: axis}
		}
		resp.SearchBox = plan.Box
		resp.SearchReason = plan.Reason
		resp.SafetyFactors = plan.SafetyFactors
		resp.Advice = plan.Advice
	}
	cutWidth := chooseCutWidth(strat, resp.SearchBox)

	cfg := engineConfig(req)
	ranges := dna.Ranges{
		SpeedMaxRPM:   resp.SearchBox.SpeedMaxRPM,
		FeedMaxMMMin:  resp.SearchBox.FeedMaxMMMin,
		CutDepthMaxMM: resp.SearchBox.CutDepthMaxMM,
	}

	runCtx := ctx
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	engine := mga.New(cfg, strat.Method, ranges, cutWidth, inputs(tool, mat, mach, strat), rand.New(rand.NewSource(req.Seed)))
	result := engine.Run(runCtx)

	resp.Evaluation = result.BestEvaluation.Round()
	resp.Generations = result.Generations

	if !finiteEvaluation(result.BestEvaluation) {
		resp.Unreliable = true
		resp.Message = "optimization produced a non-finite evaluation; result is unreliable"
		return resp, &domain.NumericFailureError{Incumbent: result.BestEvaluation}
	}

	if result.Aborted {
		resp.Aborted = true
		resp.Message = "optimization cancelled; returning the incumbent at the moment of cancellation"
		return resp, fmt.Errorf("run %s: %w", resp.ID, domain.ErrCancelled)
	}

	if !req.SkipReview {
		report := reviewer.Review(tool, mat, mach, strat, result.BestEvaluation)
		resp.Review = &report
	}

	f.annotate(ctx, &resp, result.BestEvaluation)

	resp.Success = true
	resp.Message = fmt.Sprintf("optimization converged after %d generations", result.Generations)
	return resp, nil
}

// resolve looks up the four records; a missing identity surfaces the
// repository's wrapped NotFound untouched.
func (f *Facade) resolve(req Request) (domain.ToolParams, domain.MaterialProps, domain.MachineCaps, domain.Strategy, error) {
	tool, err := f.Repo.Tool(req.ToolID)
	if err != nil {
		return tool, domain.MaterialProps{}, domain.MachineCaps{}, domain.Strategy{}, err
	}
	mat, err := f.Repo.Material(req.MaterialID)
	if err != nil {
		return tool, mat, domain.MachineCaps{}, domain.Strategy{}, err
	}
	mach, err := f.Repo.Machine(req.MachineID)
	if err != nil {
		return tool, mat, mach, domain.Strategy{}, err
	}
	strat, err := f.Repo.Strategy(req.StrategyID)
	if err != nil {
		return tool, mat, mach, strat, err
	}
	return tool, mat, mach, strat, nil
}

func validate(req Request, tool domain.ToolParams, mat domain.MaterialProps, mach domain.MachineCaps, strat domain.Strategy) error {
	if err := tool.Validate(); err != nil {
		return err
	}
	if err := mat.Validate(); err != nil {
		return err
	}
	if err := mach.Validate(); err != nil {
		return err
	}
	if err := strat.Validate(); err != nil {
		return err
	}
	if strat.Method == domain.Turning {
		return fmt.Errorf("%w: TURNING has no evaluator variant; use MILLING, DRILLING, or BORING", domain.ErrInvalidInput)
	}

	if v := req.PopulationSize; v != nil && (*v < populationSizeMin || *v > populationSizeMax) {
		return fmt.Errorf("%w: population_size %d outside [%d, %d]", domain.ErrInvalidInput, *v, populationSizeMin, populationSizeMax)
	}
	if v := req.Generations; v != nil && (*v < generationsMin || *v > generationsMax) {
		return fmt.Errorf("%w: generations %d outside [%d, %d]", domain.ErrInvalidInput, *v, generationsMin, generationsMax)
	}
	if v := req.CrossoverRate; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("%w: crossover_rate %g outside [0, 1]", domain.ErrInvalidInput, *v)
	}
	if v := req.MutationRate; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("%w: mutation_rate %g outside [0, 1]", domain.ErrInvalidInput, *v)
	}
	return nil
}

func engineConfig(req Request) mga.Config {
	cfg := mga.DefaultConfig()
	if req.PopulationSize != nil {
		cfg.PopulationSize = *req.PopulationSize
	}
	if req.Generations != nil {
		cfg.Generations = *req.Generations
	}
	if req.CrossoverRate != nil {
		cfg.CrossoverRate = *req.CrossoverRate
	}
	if req.MutationRate != nil {
		cfg.MutationRate = *req.MutationRate
	}
	cfg.AdaptiveRates = req.AdaptiveRates
	return cfg
}

// envelopeBox is the search box used when the planner is skipped: the
// vendor envelope maxima bound every axis directly.
func envelopeBox(tool domain.ToolParams, strat domain.Strategy) domain.SearchBox {
	box := domain.SearchBox{
		SpeedMinRPM:   tool.RecommendedSpeedMinRPM,
		SpeedMaxRPM:   tool.RecommendedSpeedMaxRPM,
		FeedMinMMMin:  tool.RecommendedFeedMinMMMin,
		FeedMaxMMMin:  tool.RecommendedFeedMaxMMMin,
		CutDepthMinMM: 0.1,
		CutDepthMaxMM: tool.RecommendedCutDepthMaxMM,
		CutWidthMinMM: 0.1,
		CutWidthMaxMM: tool.RecommendedCutWidthMaxMM,
	}
	if strat.Method == domain.Drilling {
		box.CutWidthMinMM, box.CutWidthMaxMM = 0, 0
		box.CutDepthMaxMM = tool.DiameterMM * 2.5
	}
	return box
}

// chooseCutWidth fixes the ae the whole run evaluates with: the strategy's
// nominal cut width when set, clamped to the box, otherwise the box's own
// upper bound. ae is not part of the genome.
func chooseCutWidth(strat domain.Strategy, box domain.SearchBox) float64 {
	if strat.Method == domain.Drilling {
		return 0
	}
	ae := strat.NominalCutWidthMM
	if ae <= 0 || ae > box.CutWidthMaxMM {
		ae = box.CutWidthMaxMM
	}
	return ae
}

func inputs(tool domain.ToolParams, mat domain.MaterialProps, mach domain.MachineCaps, strat domain.Strategy) physics.Inputs {
	return physics.Inputs{Tool: tool, Material: mat, Machine: mach, Strategy: strat}
}

// annotate calls the advisor exactly once; any failure is absorbed
// silently, and a successful annotation is merged into the planner's
// advice rather than replacing it.
func (f *Facade) annotate(ctx context.Context, resp *Response, ev domain.Evaluation) {
	adv := f.Advisor
	if adv == nil {
		return
	}
	var report domain.ReviewReport
	if resp.Review != nil {
		report = *resp.Review
	}
	text, err := adv.Annotate(ctx, ev, report)
	if err != nil || text == "" {
		return
	}
	if resp.Advice == nil {
		resp.Advice = map[string]string{}
	}
	resp.Advice["assistant"] = text
}

func finiteEvaluation(ev domain.Evaluation) bool {
	vals := []float64{
		ev.FeedPerToothMM, ev.CuttingSpeedMMin, ev.MRRCm3Min, ev.ToolLifeMin,
		ev.RzUM, ev.RxUM, ev.PowerKW, ev.TorqueNm, ev.FeedForceN,
		ev.DeflectionMM, ev.Fitness,
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return ev.Fitness > -1e299
}

// IsNotFound reports whether err is the repository's missing-record error,
// for callers mapping it to a 404 at their own boundary.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
