package installer

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is returned when a run was interrupted before it finished.
	ErrCancelled = errors.New("operation cancelled")

	// ErrMissingVariable matches a ConfigError for a variable that is not set.
	ErrMissingVariable = errors.New("missing variable")
)

// ConfigError reports a missing or invalid variable. It is raised before
// anything is changed on disk.
type ConfigError struct {
	Variable string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration error: %s is not set", e.Variable)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Variable, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	if e.Reason == "" {
		return ErrMissingVariable
	}
	return nil
}

// MissingVariable returns a ConfigError for a required variable that is
// empty.
func MissingVariable(name string) error {
	return &ConfigError{Variable: name}
}

// Status is the outcome of a run. It leaves StatusUnfinished exactly once.
type Status int

const (
	StatusUnfinished Status = iota
	StatusCanceledByUser
	StatusFailed
	StatusSucceeded
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUnfinished:
		return "Unfinished"
	case StatusCanceledByUser:
		return "CanceledByUser"
	case StatusFailed:
		return "Failed"
	case StatusSucceeded:
		return "Succeeded"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// StepResult represents the outcome of a step execution.
type StepResult struct {
	// Skip indicates the step was skipped (already done, not needed).
	// When Skip is true, the step is counted as successful.
	Skip bool

	// Info contains a success or informational message.
	// For skipped steps, this explains why it was skipped.
	Info string

	// Err contains the error if the step failed.
	Err error
}

// Success creates a successful StepResult with an optional info message.
func Success(info string) StepResult {
	return StepResult{Info: info}
}

// Skipped creates a StepResult indicating the step was skipped.
func Skipped(reason string) StepResult {
	return StepResult{Skip: true, Info: reason}
}

// Failed creates a StepResult with an error.
func Failed(err error) StepResult {
	return StepResult{Err: err}
}

// Step is a named housekeeping action run around the task list, such as
// registering the product or removing the uninstaller.
type Step struct {
	Name string

	// Optional steps turn failures into warnings.
	Optional bool

	Action func() StepResult
}

// SimpleStep creates a Step from a function that returns error.
func SimpleStep(name string, action func() error) Step {
	return Step{
		Name: name,
		Action: func() StepResult {
			if err := action(); err != nil {
				return Failed(err)
			}
			return Success("")
		},
	}
}

// OptionalStep is like SimpleStep, but a failure only produces a warning.
func OptionalStep(name string, action func() error) Step {
	s := SimpleStep(name, action)
	s.Optional = true
	return s
}
