package builder

import (
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNoFiles indicates discovery found nothing to analyze.
	ErrNoFiles = errors.New("no files discovered")

	// ErrScanTimeout indicates the overall scan deadline expired; the graph
	// holds everything gathered before the deadline.
	ErrScanTimeout = errors.New("scan deadline exceeded, partial result")

	// ErrFileTimeout indicates a single file's extraction deadline expired.
	ErrFileTimeout = errors.New("file extraction deadline exceeded")
)

// Phase identifies the build phase an error belongs to.
type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseExtract  Phase = "extract"
	PhaseResolve  Phase = "resolve"
	PhaseEnrich   Phase = "enrich"
	PhaseFinalize Phase = "finalize"
)

// BuildError is one recorded failure. Path is empty for scan-level errors.
type BuildError struct {
	Phase Phase
	Path  string
	Err   error
}

// Error implements the error interface.
func (e BuildError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Phase, e.Path, e.Err)
}

// Unwrap exposes the underlying error for errors.Is checks.
func (e BuildError) Unwrap() error {
	return e.Err
}
