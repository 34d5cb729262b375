package impedance

import (
	"errors"
	"fmt"
)

// ErrFaultImpedanceDomain is returned when the fault impedance of a test
// has no real solution for the given inputs.
var ErrFaultImpedanceDomain = errors.New("fault impedance domain error")

// DomainError reports a per-test numeric precondition violation.
type DomainError struct {
	TestID int
	Reason string
	Err    error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("test %d: %v: %s", e.TestID, e.Err, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func domainError(id int, format string, args ...any) *DomainError {
	return &DomainError{TestID: id, Reason: fmt.Sprintf(format, args...), Err: ErrFaultImpedanceDomain}
}
