package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/adalundhe/codeatlas/core/embed"
	"github.com/adalundhe/codeatlas/core/graph"
	"github.com/adalundhe/codeatlas/core/storage"
)

// Session is the working state for one repository: the artifact store, the
// lazily loaded graph and index, and a file-stat cache. All methods are safe
// for concurrent use.
type Session struct {
	root   string
	store  *storage.Store
	cache  *Cache
	logger *slog.Logger

	mu      sync.Mutex
	graph   *graph.KnowledgeGraph
	index   *embed.Index
	watcher *Watcher
}

// New creates a session over the repository at root, persisting artifacts
// through store. logger may be nil.
func New(root string, store *storage.Store, logger *slog.Logger) (*Session, error) {
	cache, err := NewCache(DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		root:   root,
		store:  store,
		cache:  cache,
		logger: logger,
	}, nil
}

// Root returns the repository root path.
func (s *Session) Root() string {
	return s.root
}

// Store returns the artifact store.
func (s *Session) Store() *storage.Store {
	return s.store
}

// Cache returns the file-stat cache.
func (s *Session) Cache() *Cache {
	return s.cache
}

// Graph returns the persisted graph, loading it once and memoizing it until
// Invalidate is called.
func (s *Session) Graph() (*graph.KnowledgeGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph != nil {
		return s.graph, nil
	}
	g, err := s.store.LoadGraph()
	if err != nil {
		return nil, err
	}
	s.graph = g
	return g, nil
}

// Index returns the persisted embedding index, loading it once and memoizing
// it until Invalidate is called.
func (s *Session) Index() (*embed.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index, nil
	}
	idx, err := s.store.LoadIndex()
	if err != nil {
		return nil, err
	}
	s.index = idx
	return idx, nil
}

// SetGraph replaces the memoized graph after a rebuild.
func (s *Session) SetGraph(g *graph.KnowledgeGraph) {
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()
}

// SetIndex replaces the memoized index after a rebuild.
func (s *Session) SetIndex(idx *embed.Index) {
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
}

// Invalidate drops the memoized artifacts and purges the file-stat cache.
// The next Graph or Index call reloads from disk.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.graph = nil
	s.index = nil
	s.mu.Unlock()
	s.cache.Purge()
}

// Watch starts monitoring the repository root. Any source change invalidates
// the changed file's cache entry and the memoized artifacts, so subsequent
// reads observe that a rescan is needed.
func (s *Session) Watch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return nil
	}

	w, err := NewWatcher(s.root, func(path string) {
		s.logger.Debug("source change detected", "path", path)
		s.cache.Invalidate(path)
		s.mu.Lock()
		s.graph = nil
		s.index = nil
		s.mu.Unlock()
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	s.watcher = w
	return nil
}

// Close stops watching. The session remains usable for artifact reads.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
}
