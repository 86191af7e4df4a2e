package domain

import "errors"

// Sentinel errors forming the error taxonomy. Each is wrapped with
// context via fmt.Errorf("...: %w", ...) by the package that raises it, and
// can be matched with errors.Is against these sentinels.
var (
	// ErrNotFound: any referenced identity is missing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: an override is outside its validity range, or a
	// positivity requirement is violated.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInfeasibleConfiguration: the planner narrowed an axis to an empty
	// interval.
	ErrInfeasibleConfiguration = errors.New("infeasible configuration")
	// ErrNumericFailure: a non-finite quantity appeared during the final
	// scalar re-evaluation.
	ErrNumericFailure = errors.New("numeric failure")
	// ErrCancelled: a cooperative cancellation fired.
	ErrCancelled = errors.New("cancelled")
)

// InfeasibleConfigurationError names the axis the planner narrowed to an
// empty interval.
type InfeasibleConfigurationError struct {
	Axis string
}

func (e *InfeasibleConfigurationError) Error() string {
	return "infeasible configuration: axis " + e.Axis + " narrowed to an empty interval"
}

func (e *InfeasibleConfigurationError) Unwrap() error {
	return ErrInfeasibleConfiguration
}

// NumericFailureError carries the incumbent at the moment a non-finite
// value appeared, so the caller has it for postmortem.
type NumericFailureError struct {
	Incumbent Evaluation
}

func (e *NumericFailureError) Error() string {
	return "numeric failure during final scalar re-evaluation"
}

func (e *NumericFailureError) Unwrap() error {
	return ErrNumericFailure
}
