// Package physics implements the method-dispatched cutting-mechanics
// kernel: it maps a candidate parameter triple to derived machining
// quantities and a constraint-penalized fitness. Method dispatch is a
// closed set of three pure functions, one per machining method, picked
// once per population rather than per individual.
package physics

import (
	"math"

	"github.com/luanshen/mga-optimizer/internal/domain"
)

// Numeric safety floors applied before any fractional or negative power.
const (
	epsV  = 1e-3
	epsFz = 1e-3
	epsH  = 1e-3
	epsN  = 1e-7 // added to denominators involving n
)

// Inputs bundles the immutable context every evaluation needs.
type Inputs struct {
	Tool     domain.ToolParams
	Material domain.MaterialProps
	Machine  domain.MachineCaps
	Strategy domain.Strategy
}

// Candidate is one (n, f, ap) triple plus the derived cut width ae used for
// this evaluation. ae is not part of the genome; the caller fixes it for
// the whole run (internal/optimize uses the strategy's nominal cut width
// clamped to the search box), and it is forced to zero for DRILLING.
type Candidate struct {
	SpeedRPM   float64
	FeedMMMin  float64
	CutDepthMM float64
	CutWidthMM float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func safeguard(c Candidate) (n, f, ap float64) {
	n = c.SpeedRPM
	if n < 1 {
		n = 1
	}
	f = c.FeedMMMin
	if f < 0.1 {
		f = 0.1
	}
	ap = c.CutDepthMM
	if ap < 0 {
		ap = 0
	}
	return n, f, ap
}

// Evaluate is the scalar evaluator: it is used for the final re-evaluation
// of the incumbent and, indirectly, by EvaluateBatch for behavior parity.
func Evaluate(method domain.Method, c Candidate, in Inputs) domain.Evaluation {
	n, f, ap := safeguard(c)
	ae := c.CutWidthMM

	var ev domain.Evaluation
	switch method {
	case domain.Drilling:
		ev = evaluateDrilling(n, f, ap, in)
	case domain.Boring:
		ev = evaluateBoring(n, f, ap, in)
	default:
		ev = evaluateMilling(n, f, ap, ae, in)
	}

	ev.SpeedRPM = n
	ev.FeedMMMin = f
	ev.CutDepthMM = ap
	ev.CutWidthMM = ae
	// Drilling removes material over the full cross-section; depth and
	// width have no per-pass meaning and report as zero.
	if method == domain.Drilling {
		ev.CutDepthMM = 0
		ev.CutWidthMM = 0
	}

	penalty := accumulatePenalty(method, ev, in)
	ev.Penalty = penalty
	ev.Feasible = penalty == 0
	ev.Fitness = ev.MRRCm3Min - kappa*penalty
	if !finite(ev) {
		ev.Fitness = sentinelFitness
		ev.Feasible = false
	}
	return ev
}

// kappa lexicographically dominates MRR for any constraint violation, so
// every infeasible candidate sits numerically below every feasible one.
// Selection in internal/mga and internal/fitness uses the feasibility-first
// comparator instead; this scalar survives because fitness is a response
// field external callers read.
const kappa = 1e29

// sentinelFitness is the catastrophic-failure value C4's contract requires
// for any candidate whose derived quantities go non-finite.
const sentinelFitness = -1e300

func finite(ev domain.Evaluation) bool {
	vals := []float64{
		ev.FeedPerToothMM, ev.CuttingSpeedMMin, ev.MRRCm3Min, ev.ToolLifeMin,
		ev.RzUM, ev.RxUM, ev.PowerKW, ev.TorqueNm, ev.FeedForceN, ev.DeflectionMM,
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func toolLife(vc, fz float64, in Inputs) float64 {
	vc = math.Max(vc, epsV)
	fz = math.Max(fz, epsFz)
	wear := in.Strategy.WearMultiplier
	if wear <= 0 {
		wear = 1
	}
	return in.Tool.WearCt * math.Pow(vc, in.Tool.WearAs) * math.Pow(fz, in.Tool.WearAf) * wear
}
