package types

import "fmt"

// ErrValidation is returned when a caller passes a malformed or out-of-domain
// parameter. An operation that returns it has not changed any state.
type ErrValidation struct {
	Parameter string
	Value     any
	Reason    string
}

func (e ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Parameter, e.Value, e.Reason)
}

func NewErrValidation(parameter string, value any, reasonFormat string, args ...any) *ErrValidation {
	return &ErrValidation{
		Parameter: parameter,
		Value:     value,
		Reason:    fmt.Sprintf(reasonFormat, args...),
	}
}
