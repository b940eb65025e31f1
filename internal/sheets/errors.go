package sheets

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Step names the synchronization stage a failure happened in
type Step string

// Synchronization steps, in execution order
const (
	StepResolve Step = "resolve"
	StepDiff    Step = "diff"
	StepGrow    Step = "grow"
	StepAppend  Step = "append"
)

var (
	// ErrTableNotFound is returned when a table is still absent after being created
	ErrTableNotFound = fmt.Errorf("table not found")
	// ErrCapacityExceeded is returned by stores that reject writes beyond the grid width
	ErrCapacityExceeded = fmt.Errorf("column capacity exceeded")
	// ErrResizeRejected is returned by stores that refuse a column resize
	ErrResizeRejected = fmt.Errorf("resize rejected")
)

// SyncError is a remote store failure during one synchronization
type SyncError struct {
	Hostname string
	Step     Step
	Op       string
	Cause    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s failed at %s (%s): %v", e.Hostname, e.Step, e.Op, e.Cause)
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

// ConsistencyError means the table's header or capacity is not what this process just
// wrote. It usually indicates a concurrent writer on the same table.
type ConsistencyError struct {
	Hostname string
	Step     Step
	Message  string
	Expected []string
	Actual   []string
	Cause    error
}

func (e *ConsistencyError) Error() string {
	msg := fmt.Sprintf("consistency error for %s at %s: %s", e.Hostname, e.Step, e.Message)
	if e.Expected != nil || e.Actual != nil {
		msg += fmt.Sprintf(" (expected %d columns, found %d)", len(e.Expected), len(e.Actual))
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ConsistencyError) Unwrap() error {
	return e.Cause
}

// IsConsistencyError reports whether err is, or wraps, a ConsistencyError
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

// FailedStep returns the step recorded on a SyncError or ConsistencyError, or "" otherwise
func FailedStep(err error) Step {
	var ce *ConsistencyError
	if errors.As(err, &ce) {
		return ce.Step
	}
	var se *SyncError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

// IsRejection reports whether err is the store refusing a request, as opposed to the request
// never getting a verdict (transport failure, timeout, server error).
func IsRejection(err error) bool {
	if errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrResizeRejected) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError
	}
	return false
}
