// Package apperr defines the closed error taxonomy used to decide how the
// orchestrator reacts to a failure and what exit code the process returns.
package apperr

import "fmt"

// Category classifies an error into one of the process-level failure modes.
type Category int

const (
	// Configuration covers invalid numeric ranges, unknown enum values, and
	// contradictory settings discovered while building Config.
	Configuration Category = iota
	// Environment covers missing devices, missing model files, or an
	// unavailable accelerator.
	Environment
	// Load covers model/runtime initialization failures.
	Load
	// Transient covers per-chunk inference/decode/parser errors that are
	// logged and dropped unless they cross the escalation thresholds.
	Transient
	// CaptureRuntime covers a capture stream closing unexpectedly or
	// persistent read errors.
	CaptureRuntime
	// Sink covers best-effort broadcast failures; never fatal.
	Sink
)

func (c Category) String() string {
	switch c {
	case Configuration:
		return "configuration"
	case Environment:
		return "environment"
	case Load:
		return "load"
	case Transient:
		return "transient"
	case CaptureRuntime:
		return "capture_runtime"
	case Sink:
		return "sink"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code associated with a fatal category.
// Transient and Sink are never fatal on their own and return 0.
func (c Category) ExitCode() int {
	switch c {
	case Configuration:
		return 2
	case Environment:
		return 3
	case Load:
		return 4
	case CaptureRuntime:
		return 5
	default:
		return 0
	}
}

// Fatal reports whether this category, by itself, should stop the session.
func (c Category) Fatal() bool {
	switch c {
	case Configuration, Environment, Load, CaptureRuntime:
		return true
	default:
		return false
	}
}

// Error is the single error type every stage converts its local failures
// into before reporting them on the orchestrator's error channel.
type Error struct {
	Category  Category
	Component string
	Op        string
	Err       error
	Fields    map[string]any
}

// New builds an Error for the given category and wraps cause.
func New(cat Category, component, op string, cause error) *Error {
	return &Error{Category: cat, Component: component, Op: op, Err: cause}
}

// WithField attaches a diagnostic key/value and returns the same Error for chaining.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Component, e.Op, e.Category, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, e.Op, e.Category)
}

func (e *Error) Unwrap() error { return e.Err }
