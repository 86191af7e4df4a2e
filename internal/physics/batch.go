package physics

import "github.com/luanshen/mga-optimizer/internal/domain"

// EvaluateBatch is the vectorized evaluation path: a single tight
// loop over parallel candidate slices, picking the method branch once for
// the whole batch rather than per individual. It must produce, for every
// individual, the same number Evaluate would, up to floating-point
// associativity.
func EvaluateBatch(method domain.Method, candidates []Candidate, in Inputs) []domain.Evaluation {
	out := make([]domain.Evaluation, len(candidates))
	for i, c := range candidates {
		out[i] = Evaluate(method, c, in)
	}
	return out
}
