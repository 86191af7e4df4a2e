// Package fitness implements the dense population evaluator: it
// decodes an entire population of genomes, evaluates them with the
// vectorized physics kernel, and returns per-individual fitness together
// with the feasibility-first ordering internal/mga selects on.
package fitness

import (
	"math"

	"github.com/luanshen/mga-optimizer/internal/dna"
	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/luanshen/mga-optimizer/internal/physics"
)

// Candidate is one evaluated individual: its genome, the decoded and
// evaluated quantities, and the comparison key internal/mga's selection
// rule uses.
type Candidate struct {
	Genome     dna.Genome
	Evaluation domain.Evaluation
}

// Less implements the feasibility-first comparator:
// a beats b iff a is feasible and b is not, or both are feasible and a's
// MRR is larger, or both are infeasible and a's penalty is smaller.
// Returns true when a should be preferred over b.
func Less(a, b Candidate) bool {
	af, bf := a.Evaluation.Feasible, b.Evaluation.Feasible
	switch {
	case af && !bf:
		return true
	case !af && bf:
		return false
	case af && bf:
		return a.Evaluation.MRRCm3Min > b.Evaluation.MRRCm3Min
	default:
		return a.Evaluation.Penalty < b.Evaluation.Penalty
	}
}

// Diagnostics is an optional per-batch debug count of constraint
// violations. It never influences fitness values.
type Diagnostics struct {
	NonFinite int
	Violated  int
}

// Batch decodes and evaluates an entire population in one pass, returning
// one Candidate per genome plus aggregate diagnostics.
func Batch(method domain.Method, genomes []dna.Genome, ranges dna.Ranges, cutWidth float64, in physics.Inputs) ([]Candidate, Diagnostics) {
	triples := dna.DecodeBatch(genomes, ranges)
	candidates := make([]physics.Candidate, len(triples))
	for i, t := range triples {
		width := cutWidth
		if method == domain.Drilling {
			width = 0
		}
		candidates[i] = physics.Candidate{
			SpeedRPM:   t.SpeedRPM,
			FeedMMMin:  t.FeedMMMin,
			CutDepthMM: t.CutDepthMM,
			CutWidthMM: width,
		}
	}

	evals := physics.EvaluateBatch(method, candidates, in)

	out := make([]Candidate, len(genomes))
	var diag Diagnostics
	for i, ev := range evals {
		if math.IsNaN(ev.Fitness) || math.IsInf(ev.Fitness, 0) {
			diag.NonFinite++
		}
		if !ev.Feasible {
			diag.Violated++
		}
		out[i] = Candidate{Genome: genomes[i], Evaluation: ev}
	}
	return out, diag
}
