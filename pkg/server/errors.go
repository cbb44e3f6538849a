package server

import "fmt"

// AlreadyStartedError is returned by Start when a previous call has begun
// or completed successfully.
type AlreadyStartedError struct {
	State State
}

func (e *AlreadyStartedError) Error() string {
	return fmt.Sprintf("server already started (state %s)", e.State)
}

// AlreadyFailedError is returned by Start after a previous start failed.
// A failed server cannot be restarted; construct a new one.
type AlreadyFailedError struct {
	Cause error
}

func (e *AlreadyFailedError) Error() string {
	return fmt.Sprintf("server already failed: %v", e.Cause)
}

func (e *AlreadyFailedError) Unwrap() error {
	return e.Cause
}

// StageError wraps the failure of one start stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
