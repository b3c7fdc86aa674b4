package results

import "errors"

// OperationResult carries the outcome of a service operation. Exactly one of
// Success or Failure is set for a completed operation; infrastructure errors
// travel separately as a Go error.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a success payload.
func SuccessResult[S any, F any](success S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &success}
}

// FailureResult wraps a domain failure.
func FailureResult[S any, F any](failure F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &failure}
}

// IsSuccess reports whether the result holds a success payload.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the result holds a domain failure.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// FailureError carries a domain failure across a service boundary that
// returns plain errors. Transports use IsFailure to tell it apart from
// infrastructure errors.
type FailureError struct {
	Err error
}

func (e *FailureError) Error() string { return e.Err.Error() }

func (e *FailureError) Unwrap() error { return e.Err }

// AsError wraps a failure payload in a FailureError. A nil failure stays nil.
func AsError(failure error) error {
	if failure == nil {
		return nil
	}
	return &FailureError{Err: failure}
}

// IsFailure reports whether err is, or wraps, a domain failure.
func IsFailure(err error) bool {
	var f *FailureError
	return errors.As(err, &f)
}
