package demag

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Domain errors. Validation errors surface before any integration work
// begins; solver errors abort the run and discard partial output.
var (
	// ErrUnsupportedMaterial indicates a material name outside the supported set.
	ErrUnsupportedMaterial = errors.New("demag: unsupported material")

	// ErrInvalidParameter indicates an out-of-range or missing simulation input.
	ErrInvalidParameter = errors.New("demag: invalid parameter")

	// ErrInvalidStructure indicates a malformed layer count or geometry.
	ErrInvalidStructure = errors.New("demag: invalid structure")

	// ErrDivergence indicates numerical instability beyond tolerance or step limits.
	ErrDivergence = errors.New("demag: solver diverged")

	// ErrTimeout indicates the step or wall-clock budget was exceeded.
	ErrTimeout = errors.New("demag: solver budget exceeded")

	// ErrCancelled indicates the run was aborted on request.
	ErrCancelled = errors.New("demag: solver cancelled")
)

type UnsupportedMaterialError struct {
	Name      string
	Supported []string
}

func (e *UnsupportedMaterialError) Error() string {
	return fmt.Sprintf("unsupported material %q (supported: %s)",
		e.Name, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedMaterialError) Unwrap() error { return ErrUnsupportedMaterial }

type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

type InvalidStructureError struct {
	Reason string
}

func (e *InvalidStructureError) Error() string {
	return "invalid structure: " + e.Reason
}

func (e *InvalidStructureError) Unwrap() error { return ErrInvalidStructure }

// DivergenceError reports which subsystem went unstable and when.
type DivergenceError struct {
	Subsystem string
	Time      float64
	Step      int
	Reason    string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("solver diverged in %s subsystem at t=%.4gs (step %d): %s",
		e.Subsystem, e.Time, e.Step, e.Reason)
}

func (e *DivergenceError) Unwrap() error { return ErrDivergence }

type TimeoutError struct {
	Time    float64
	Steps   int
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("solver budget exceeded at t=%.4gs after %d steps (%s elapsed)",
		e.Time, e.Steps, e.Elapsed)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

type CancelledError struct {
	Time float64
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("solver cancelled at t=%.4gs", e.Time)
}

func (e *CancelledError) Unwrap() error { return ErrCancelled }
