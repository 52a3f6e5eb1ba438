package builder

import (
	"log/slog"
	"runtime"
	"time"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultTimeout bounds a whole scan.
	DefaultTimeout = 5 * time.Minute

	// DefaultFileTimeout bounds extraction of one file.
	DefaultFileTimeout = 10 * time.Second

	// MaxWorkers caps the extraction worker pool.
	MaxWorkers = 8
)

// ProgressFunc reports per-phase progress as (completed, total) units.
type ProgressFunc func(phase Phase, completed, total int)

// =============================================================================
// Options
// =============================================================================

// Options configures one graph build.
type Options struct {
	// IncludeHistory enables the optional enrichment phase.
	IncludeHistory bool

	// Timeout is the overall scan deadline (default 5 minutes).
	Timeout time.Duration

	// FileTimeout is the per-file extraction deadline (default 10 seconds).
	FileTimeout time.Duration

	// Workers is the extraction pool size (default min(NumCPU, 8)).
	Workers int

	// OnProgress receives per-phase progress updates. May be nil.
	OnProgress ProgressFunc

	// Logger receives structured build logs. Nil means slog.Default().
	Logger *slog.Logger
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.FileTimeout <= 0 {
		o.FileTimeout = DefaultFileTimeout
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Workers > MaxWorkers {
		o.Workers = MaxWorkers
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// progress invokes the callback when set.
func (o Options) progress(phase Phase, completed, total int) {
	if o.OnProgress != nil {
		o.OnProgress(phase, completed, total)
	}
}
