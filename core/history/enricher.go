package history

import (
	"context"
	"log/slog"
)

// ProgressFunc reports enrichment progress as (completed, total) files.
type ProgressFunc func(completed, total int)

// =============================================================================
// Enricher
// =============================================================================

// Enricher mines per-file history for a set of scanned paths.
type Enricher struct {
	logger *slog.Logger
}

// NewEnricher creates an Enricher. A nil logger means slog.Default().
func NewEnricher(logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{logger: logger}
}

// Enrich mines history for every path. Returns ErrNotRepository when the
// root is not under version control so the caller can warn instead of
// reporting a pristine repository. Missing or unreadable history for one
// file is skipped and never aborts the batch. The context stops further
// files from being queried; files already mined are kept.
func (e *Enricher) Enrich(ctx context.Context, root string, paths []string, progress ProgressFunc) (map[string]*FileHistory, error) {
	client, err := NewClient(root)
	if err != nil {
		return nil, err
	}
	if !client.IsRepository() {
		return map[string]*FileHistory{}, ErrNotRepository
	}

	results := make(map[string]*FileHistory, len(paths))
	total := len(paths)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}

		h, err := client.FileHistory(path)
		if err != nil {
			e.logger.Debug("history lookup failed", "path", path, "error", err)
		} else if h.ModificationCount > 0 {
			results[path] = h
		}

		if progress != nil {
			progress(i+1, total)
		}
	}

	return results, nil
}
