// Package builder orchestrates graph construction: file discovery, parallel
// symbol extraction under per-file and whole-scan deadlines, relationship
// resolution, optional history enrichment, and finalization into one
// immutable snapshot. Failures are collected, never thrown: per-file errors
// skip the file, scan-level errors accompany a best-effort graph.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/adalundhe/codeatlas/core/discover"
	"github.com/adalundhe/codeatlas/core/extract"
	"github.com/adalundhe/codeatlas/core/graph"
	"github.com/adalundhe/codeatlas/core/history"
	"github.com/adalundhe/codeatlas/core/parser"
	"github.com/adalundhe/codeatlas/core/resolve"
)

// =============================================================================
// Collaborator Interfaces
// =============================================================================

// DiscoverFunc returns the repository-relative paths to analyze. The
// glob/exclude policy lives with the implementation, not the builder.
type DiscoverFunc func(ctx context.Context, root string) ([]string, error)

// Enricher mines per-file version-control history.
type Enricher interface {
	Enrich(ctx context.Context, root string, paths []string, progress history.ProgressFunc) (map[string]*history.FileHistory, error)
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of one build: a best-effort graph plus separately
// inspectable errors and warnings.
type Result struct {
	// Graph is the snapshot, possibly empty, never nil on a returned Result.
	Graph *graph.KnowledgeGraph

	// Errors lists per-file and scan-level failures.
	Errors []BuildError

	// Warnings lists informational conditions (e.g. no version control).
	Warnings []string
}

// =============================================================================
// Builder
// =============================================================================

// Builder runs the graph construction pipeline.
type Builder struct {
	registry  *parser.Registry
	extractor *extract.Extractor
	resolver  *resolve.Resolver
	enricher  Enricher
	discover  DiscoverFunc
}

// Option configures a Builder.
type Option func(*Builder)

// WithRegistry replaces the default parser registry.
func WithRegistry(r *parser.Registry) Option {
	return func(b *Builder) { b.registry = r }
}

// WithDiscoverFunc replaces the default scanner-backed discovery.
func WithDiscoverFunc(fn DiscoverFunc) Option {
	return func(b *Builder) { b.discover = fn }
}

// WithEnricher replaces the default go-git history enricher.
func WithEnricher(e Enricher) Option {
	return func(b *Builder) { b.enricher = e }
}

// NewBuilder creates a Builder with default collaborators.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		registry:  parser.DefaultRegistry(),
		extractor: extract.NewExtractor(),
		resolver:  resolve.NewResolver(),
		enricher:  history.NewEnricher(nil),
	}
	b.discover = func(ctx context.Context, root string) ([]string, error) {
		scanner, err := discover.NewScanner(discover.Config{RootPath: root, UseGitignore: true})
		if err != nil {
			return nil, err
		}
		return scanner.Scan(ctx)
	}

	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the pipeline phases in order: Init, Extract, Resolve, Enrich
// (optional), Finalize. It always returns a Result; failures are recorded
// on it rather than returned as errors.
func (b *Builder) Build(ctx context.Context, root string, opts Options) *Result {
	opts = opts.withDefaults()
	started := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	result := &Result{}

	scanCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	// Init
	paths, err := b.discover(scanCtx, absRoot)
	if err != nil {
		result.Errors = append(result.Errors, BuildError{Phase: PhaseInit, Err: err})
		result.Graph = b.emptyGraph(absRoot, started)
		return result
	}
	if len(paths) == 0 {
		result.Errors = append(result.Errors, BuildError{Phase: PhaseInit, Err: ErrNoFiles})
		result.Graph = b.emptyGraph(absRoot, started)
		return result
	}
	opts.progress(PhaseInit, len(paths), len(paths))

	// Extract
	files := b.runExtract(scanCtx, absRoot, paths, opts, result)

	// Resolve
	resolved := b.resolver.Resolve(files)
	opts.progress(PhaseResolve, len(files), len(files))

	// Enrich (optional, never fails the build)
	if opts.IncludeHistory {
		b.runEnrich(scanCtx, absRoot, files, opts, result)
	}

	// Finalize
	result.Graph = b.finalize(absRoot, started, files, resolved, result)
	opts.progress(PhaseFinalize, 1, 1)

	return result
}

// emptyGraph returns an explicitly empty snapshot for failed scans.
func (b *Builder) emptyGraph(root string, started time.Time) *graph.KnowledgeGraph {
	g, _ := graph.New(graph.Metadata{
		ScanID:    uuid.NewString(),
		ScannedAt: started,
		Duration:  time.Since(started),
		RootPath:  root,
		Languages: map[string]int{},
	}, nil, nil)
	return g
}

// =============================================================================
// Extract Phase
// =============================================================================

// runExtract fans paths out across a bounded worker pool. Each worker
// accumulates into a private buffer; buffers are merged and sorted at the
// end so the outcome is independent of scheduling.
func (b *Builder) runExtract(ctx context.Context, root string, paths []string, opts Options, result *Result) []*extract.Result {
	jobs := make(chan string)
	var completed atomic.Int64

	type workerOutput struct {
		files  []*extract.Result
		errors []BuildError
	}
	outputs := make([]workerOutput, opts.Workers)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for path := range jobs {
				// A fired overall deadline stops new files; work in
				// flight elsewhere is abandoned, not merged.
				if ctx.Err() != nil {
					continue
				}

				file, err := b.extractOne(ctx, root, path, opts.FileTimeout)
				if err != nil {
					if ctx.Err() == nil {
						outputs[slot].errors = append(outputs[slot].errors, BuildError{Phase: PhaseExtract, Path: path, Err: err})
					}
					continue
				}

				outputs[slot].files = append(outputs[slot].files, file)
				opts.progress(PhaseExtract, int(completed.Add(1)), len(paths))
			}
		}(w)
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	var files []*extract.Result
	for _, out := range outputs {
		files = append(files, out.files...)
		result.Errors = append(result.Errors, out.errors...)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].File.Path < files[j].File.Path
	})
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Path < result.Errors[j].Path
	})

	if ctx.Err() != nil && len(files) < len(paths) {
		result.Errors = append(result.Errors, BuildError{Phase: PhaseExtract, Err: ErrScanTimeout})
	}

	return files
}

// extractOne parses and extracts a single file under its own deadline.
// The parse runs in a separate goroutine raced against the deadline; on
// timeout the file contributes nothing and its partial output is dropped.
// A panic inside extraction is converted to a per-file error.
func (b *Builder) extractOne(ctx context.Context, root, rel string, timeout time.Duration) (*extract.Result, error) {
	p, err := b.registry.ForFile(rel)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		file *extract.Result
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("extraction panic: %v", r)}
			}
		}()

		pf, err := p.Parse(fileCtx, content, filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			done <- outcome{err: err}
			return
		}
		defer pf.Close()
		pf.RelPath = rel

		file, err := b.extractor.Extract(pf)
		done <- outcome{file: file, err: err}
	}()

	select {
	case out := <-done:
		return out.file, out.err
	case <-fileCtx.Done():
		return nil, fmt.Errorf("%w: %s", ErrFileTimeout, rel)
	}
}

// =============================================================================
// Enrich Phase
// =============================================================================

// runEnrich attaches history to file nodes. A missing repository becomes a
// warning; any other failure becomes a non-fatal enrich error.
func (b *Builder) runEnrich(ctx context.Context, root string, files []*extract.Result, opts Options, result *Result) {
	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.File.Path
	}

	records, err := b.enricher.Enrich(ctx, root, paths, func(completed, total int) {
		opts.progress(PhaseEnrich, completed, total)
	})
	if err == history.ErrNotRepository {
		result.Warnings = append(result.Warnings, "root is not under version control, history skipped")
		return
	}
	if err != nil {
		result.Errors = append(result.Errors, BuildError{Phase: PhaseEnrich, Err: err})
		return
	}

	for _, file := range files {
		record, ok := records[file.File.Path]
		if !ok {
			continue
		}
		file.File.History = &graph.History{
			LastModified:      record.LastModified,
			ModificationCount: record.ModificationCount,
			Contributors:      record.Contributors,
		}
	}
}

// =============================================================================
// Finalize Phase
// =============================================================================

// finalize assembles the snapshot from what was actually collected: nodes,
// contains edges, import edges, heritage edges, and aggregate metadata.
func (b *Builder) finalize(root string, started time.Time, files []*extract.Result, resolved *resolve.Result, result *Result) *graph.KnowledgeGraph {
	var nodes []graph.Node
	var symbols []graph.Node
	var edges []graph.Edge

	totalLines := 0
	languages := make(map[string]int)

	for _, file := range files {
		nodes = append(nodes, file.File)
		totalLines += file.File.LineCount
		languages[file.File.Language]++

		for _, sym := range file.Symbols {
			nodes = append(nodes, sym)
			symbols = append(symbols, sym)
			edges = append(edges, graph.Edge{
				Source: file.File.ID,
				Target: sym.Base().ID,
				Type:   graph.EdgeContains,
			})
		}
	}

	edges = append(edges, resolved.Edges...)
	edges = append(edges, resolve.HeritageEdges(symbols)...)

	meta := graph.Metadata{
		ScanID:     uuid.NewString(),
		ScannedAt:  started,
		Duration:   time.Since(started),
		RootPath:   root,
		FileCount:  len(files),
		TotalLines: totalLines,
		Languages:  languages,
	}

	g, err := graph.New(meta, nodes, edges)
	if err != nil {
		result.Errors = append(result.Errors, BuildError{Phase: PhaseFinalize, Err: err})
		return b.emptyGraph(root, started)
	}
	return g
}
