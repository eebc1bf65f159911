package domain

import (
	"errors"
	"fmt"
)

// ErrNotRunning is returned when a telling has already been stopped.
var ErrNotRunning = errors.New("telling is not running")

// ErrUnknownType is returned when a node type name is not registered.
var ErrUnknownType = errors.New("unknown node type")

// ErrInstanceDone is returned when an operation targets an instance that was torn down.
var ErrInstanceDone = errors.New("instance already torn down")

// DuplicateTypeError is returned when a node type name is registered twice.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("node type %q already defined", e.Name)
}

// InvalidNodeError is returned when a literal cannot be coerced into a node definition.
type InvalidNodeError struct {
	Value  any    // The offending literal
	Reason string // Human-readable reason
}

func (e *InvalidNodeError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid node: %s", e.Reason)
	}
	return fmt.Sprintf("invalid node: %s (got %T)", e.Reason, e.Value)
}

// UnknownStateError is reported when a Switch has no task for a state and no wildcard.
type UnknownStateError struct {
	State string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("no task for state %q and no wildcard", e.State)
}

// ActivationMisuseError is returned when an API that needs a current instance
// is called outside any lifecycle callback.
type ActivationMisuseError struct {
	Op string
}

func (e *ActivationMisuseError) Error() string {
	return fmt.Sprintf("%s called with no active instance", e.Op)
}

// Phase names the lifecycle callback that was running.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseUpdate   Phase = "update"
	PhaseTeardown Phase = "teardown"
	PhaseHandle   Phase = "handle"
	PhaseRequest  Phase = "request"
	PhaseCallback Phase = "callback"
)

// LifecycleError wraps a failure raised by a lifecycle callback.
// Panics are recovered and reported with Panic set.
type LifecycleError struct {
	Type  string
	Name  string
	Phase Phase
	Panic bool
	Err   error
}

func (e *LifecycleError) Error() string {
	label := e.Type
	if e.Name != "" {
		label = fmt.Sprintf("%s(@%s)", e.Type, e.Name)
	}
	if e.Panic {
		return fmt.Sprintf("%s %s panicked: %v", label, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", label, e.Phase, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}
