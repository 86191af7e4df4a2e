// Package mga implements the Microbial Genetic Algorithm engine: a
// pairwise-tournament search over the packed-uint64 genome population, with
// winner-into-loser crossover/mutation, adaptive rates, early stop, and
// cooperative cancellation.
package mga

import (
	"context"
	"math/rand"

	"github.com/luanshen/mga-optimizer/internal/dna"
	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/luanshen/mga-optimizer/internal/fitness"
	"github.com/luanshen/mga-optimizer/internal/physics"
)

// Result is what one Run call produces: the incumbent genome, its fully
// derived Evaluation, the last best_fitness, the generation at which the
// run stopped, and whether it was aborted by cancellation.
type Result struct {
	BestGenome     dna.Genome
	BestEvaluation domain.Evaluation
	BestFitness    float64
	Generations    int
	Aborted        bool
}

// Engine owns the mutable state of one MGA run: the population buffer, the
// incumbent pair, the RNG, and the stagnation counter. None of this is
// shared with the Planner or Reviewer.
type Engine struct {
	cfg    Config
	method domain.Method
	ranges dna.Ranges
	width  float64
	phys   physics.Inputs

	rng        *rand.Rand
	population []dna.Genome

	bestGenome  dna.Genome
	bestEval    domain.Evaluation
	bestFitness float64
	haveBest    bool
}

// New builds an Engine with a seeded RNG: identical seed and inputs
// reproduce identical populations and incumbents. rng is an injected
// collaborator, never the global generator.
func New(cfg Config, method domain.Method, ranges dna.Ranges, cutWidth float64, phys physics.Inputs, rng *rand.Rand) *Engine {
	if cfg.PopulationSize%2 != 0 {
		cfg.PopulationSize++
	}
	e := &Engine{
		cfg:        cfg,
		method:     method,
		ranges:     ranges,
		width:      cutWidth,
		phys:       phys,
		rng:        rng,
		population: make([]dna.Genome, cfg.PopulationSize),
	}
	for i := range e.population {
		e.population[i] = e.randomGenome()
	}
	return e
}

func (e *Engine) randomGenome() dna.Genome {
	return dna.Genome(e.rng.Uint64() & ((uint64(1) << dna.TotalBits) - 1))
}

// Population exposes a read-only view of the current population, for tests
// asserting the conserved-size and determinism properties.
func (e *Engine) Population() []dna.Genome {
	out := make([]dna.Genome, len(e.population))
	copy(out, e.population)
	return out
}

// Run drives the generation loop until the generation budget is exhausted,
// early stop fires, or ctx is cancelled between generations. It
// evaluates the initial population once before generation 0 runs, so that
// Generations == 0 still returns the best of the initial population.
func (e *Engine) Run(ctx context.Context) Result {
	e.evaluateAndTrackInitial()

	stagnation := 0
	prevBest := e.bestFitness
	gen := 0

	for ; gen < e.cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return e.finish(gen, true)
		default:
		}

		pc, pm := e.cfg.ratesAt(gen, e.cfg.Generations)
		e.runGeneration(pc, pm)

		if e.cfg.EarlyStopPatience > 0 {
			improvement := e.bestFitness - prevBest
			if improvement < 0 {
				improvement = -improvement
			}
			if improvement < e.cfg.EarlyStopEpsilon {
				stagnation++
			} else {
				stagnation = 0
			}
			prevBest = e.bestFitness
			if stagnation >= e.cfg.EarlyStopPatience {
				gen++
				break
			}
		}
	}

	return e.finish(gen, false)
}

// evaluateAndTrackInitial evaluates generation 0's population and seeds the
// incumbent, so a zero-generation run still has a best candidate.
func (e *Engine) evaluateAndTrackInitial() {
	candidates, _ := fitness.Batch(e.method, e.population, e.ranges, e.width, e.phys)
	for _, c := range candidates {
		e.considerIncumbent(c)
	}
}

// runGeneration processes the population in contiguous batches of
// BatchSize, each batch owning a disjoint index range. Batches are fanned
// out across a worker pool; each batch
// reduces its own local best, and the engine merges per-batch bests with
// the feasibility-first comparator (fitness.Less), ties broken by ascending
// batch order (first occurrence).
func (e *Engine) runGeneration(pc, pm float64) {
	n := len(e.population)
	batchSize := e.cfg.BatchSize
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}

	type batchResult struct {
		order int
		best  fitness.Candidate
		have  bool
	}

	nBatches := (n + batchSize - 1) / batchSize
	results := make([]batchResult, nBatches)

	pool := newWorkerPool(nBatches)
	for b := 0; b < nBatches; b++ {
		start := b * batchSize
		end := start + batchSize
		if end > n {
			end = n
		}
		batchIdx := b
		// Each batch gets its own RNG sub-stream derived from the engine's
		// RNG in a fixed sub-order, so determinism holds under a fixed seed
		// even though batches run concurrently.
		batchSeed := e.rng.Int63()
		pool.submit(func() {
			localRNG := rand.New(rand.NewSource(batchSeed))
			best, ok := e.processBatch(start, end, pc, pm, localRNG)
			if ok {
				results[batchIdx] = batchResult{order: batchIdx, best: best, have: true}
			}
		})
	}
	pool.wait()
	pool.close()

	for _, r := range results {
		if r.have {
			e.considerIncumbent(r.best)
		}
	}
}

// processBatch runs the pairwise-tournament microbial rule over
// population[start:end): for each contiguous pair, the loser is
// crossed-over and mutated in place from the winner, and the winner is
// left untouched. Returns the batch's own local best winner, if any pair
// was processed.
func (e *Engine) processBatch(start, end int, pc, pm float64, rng *rand.Rand) (fitness.Candidate, bool) {
	genomes := make([]dna.Genome, end-start)
	copy(genomes, e.population[start:end])

	candidates, _ := fitness.Batch(e.method, genomes, e.ranges, e.width, e.phys)

	var localBest fitness.Candidate
	haveLocal := false

	for i := 0; i+1 < len(candidates); i += 2 {
		a, b := candidates[i], candidates[i+1]

		var winner, loser fitness.Candidate
		var loserLocalIdx int
		if fitness.Less(a, b) {
			winner, loser, loserLocalIdx = a, b, i+1
		} else {
			winner, loser, loserLocalIdx = b, a, i
		}

		newLoserGenome := crossoverAndMutate(loser.Genome, winner.Genome, pc, pm, rng)
		e.population[start+loserLocalIdx] = newLoserGenome

		if !haveLocal || fitness.Less(winner, localBest) {
			localBest = winner
			haveLocal = true
		}
	}

	return localBest, haveLocal
}

// crossoverAndMutate applies the microbial selection rule's genetic
// operators bit-by-bit: each bit of the loser is independently replaced by
// the winner's bit with probability pc, then independently flipped with
// probability pm.
func crossoverAndMutate(loser, winner dna.Genome, pc, pm float64, rng *rand.Rand) dna.Genome {
	result := loser
	for bit := 0; bit < dna.TotalBits; bit++ {
		if rng.Float64() < pc {
			result = result.WithBit(bit, winner.Bit(bit))
		}
	}
	for bit := 0; bit < dna.TotalBits; bit++ {
		if rng.Float64() < pm {
			result = result.WithBit(bit, result.Bit(bit)^1)
		}
	}
	return result
}

// considerIncumbent promotes c to the incumbent if it beats the current
// best, per fitness.Less's feasibility-first comparator.
func (e *Engine) considerIncumbent(c fitness.Candidate) {
	if !e.haveBest || fitness.Less(c, fitness.Candidate{Genome: e.bestGenome, Evaluation: e.bestEval}) {
		e.bestGenome = c.Genome
		e.bestEval = c.Evaluation
		e.bestFitness = c.Evaluation.Fitness
		e.haveBest = true
	}
}

// finish re-decodes and re-evaluates the incumbent with the scalar
// evaluator so the reported Evaluation carries every derived quantity.
func (e *Engine) finish(gen int, aborted bool) Result {
	triple := dna.Decode(e.bestGenome, e.ranges)
	width := e.width
	if e.method == domain.Drilling {
		width = 0
	}
	candidate := physics.Candidate{
		SpeedRPM:   triple.SpeedRPM,
		FeedMMMin:  triple.FeedMMMin,
		CutDepthMM: triple.CutDepthMM,
		CutWidthMM: width,
	}
	ev := physics.Evaluate(e.method, candidate, e.phys)

	return Result{
		BestGenome:     e.bestGenome,
		BestEvaluation: ev,
		BestFitness:    e.bestFitness,
		Generations:    gen,
		Aborted:        aborted,
	}
}
