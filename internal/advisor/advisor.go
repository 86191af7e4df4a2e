// Package advisor defines the collaborator boundary for the natural-
// language commentary an external language-model service can add on top of
// an optimization result. This package keeps the seam without implementing
// the model call itself.
package advisor

import (
	"context"

	"github.com/luanshen/mga-optimizer/internal/domain"
)

// Advisor annotates a finished optimization with free-text commentary.
// Callers absorb any failure silently rather than failing the
// optimization.
type Advisor interface {
	Annotate(ctx context.Context, ev domain.Evaluation, report domain.ReviewReport) (string, error)
}

// NoOp is the default Advisor: it never calls out and always succeeds with
// empty commentary, standing in for the disabled LLM collaborator.
type NoOp struct{}

func (NoOp) Annotate(context.Context, domain.Evaluation, domain.ReviewReport) (string, error) {
	return "", nil
}
