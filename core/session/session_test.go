package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/codeatlas/core/graph"
	"github.com/adalundhe/codeatlas/core/storage"
)

// =============================================================================
// Cache Tests
// =============================================================================

func TestCacheStatAndReuse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree"), 0o644))

	cache, err := NewCache(8)
	require.NoError(t, err)

	stat, err := cache.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, 3, stat.LineCount)
	assert.Equal(t, 1, cache.Len())

	again, err := cache.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, stat, again)
}

func TestCacheDetectsModification(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))

	cache, err := NewCache(8)
	require.NoError(t, err)

	stat, err := cache.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, 1, stat.LineCount)

	// Rewrite with different size; mtime alone can be too coarse to differ.
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644))

	stat, err = cache.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, 3, stat.LineCount)
}

func TestCacheEviction(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cache, err := NewCache(2)
	require.NoError(t, err)

	for _, name := range []string{"a.ts", "b.ts", "c.ts"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
		_, err := cache.Stat(path)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cache.Len())
}

func TestCacheRejectsBadCapacity(t *testing.T) {
	t.Parallel()

	_, err := NewCache(0)
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
}

func TestCountFileLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one line no newline", 1},
		{"a\nb\n", 2},
		{"a\nb\nc", 3},
	}

	for i, tc := range cases {
		path := filepath.Join(dir, "f"+string(rune('a'+i)))
		require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
		got, err := countFileLines(path)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "content %q", tc.content)
	}
}

// =============================================================================
// Session Tests
// =============================================================================

func testSession(t *testing.T) (*Session, *storage.Store) {
	t.Helper()

	store := storage.NewStore(t.TempDir())
	s, err := New(t.TempDir(), store, nil)
	require.NoError(t, err)
	return s, store
}

func saveTestGraph(t *testing.T, store *storage.Store) {
	t.Helper()

	g, err := graph.New(graph.Metadata{ScanID: "scan-1"}, []graph.Node{
		&graph.FileNode{
			BaseNode: graph.BaseNode{ID: "a.ts", Name: "a.ts", Path: "a.ts", StartLine: 1, EndLine: 1},
			Language: "typescript", LineCount: 1,
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveGraph(g))
}

func TestSessionGraphMemoized(t *testing.T) {
	t.Parallel()

	s, store := testSession(t)
	saveTestGraph(t, store)

	first, err := s.Graph()
	require.NoError(t, err)

	// Removing the artifact does not affect the memoized snapshot.
	require.NoError(t, os.Remove(store.GraphPath()))

	second, err := s.Graph()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestSessionInvalidateForcesReload(t *testing.T) {
	t.Parallel()

	s, store := testSession(t)
	saveTestGraph(t, store)

	_, err := s.Graph()
	require.NoError(t, err)

	s.Invalidate()
	require.NoError(t, os.Remove(store.GraphPath()))

	_, err = s.Graph()
	assert.ErrorIs(t, err, storage.ErrNoArtifact)
}

func TestSessionMissingIndex(t *testing.T) {
	t.Parallel()

	s, _ := testSession(t)
	_, err := s.Index()
	assert.ErrorIs(t, err, storage.ErrNoArtifact)
}

func TestSessionWatchInvalidates(t *testing.T) {
	t.Parallel()

	s, store := testSession(t)
	saveTestGraph(t, store)

	_, err := s.Graph()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))
	defer s.Close()

	// Touch a file under the watched root.
	path := filepath.Join(s.Root(), "new.ts")
	require.NoError(t, os.WriteFile(path, []byte("export const x = 1;\n"), 0o644))

	// The memoized graph drops once the event is dispatched.
	require.NoError(t, os.Remove(store.GraphPath()))
	require.Eventually(t, func() bool {
		_, err := s.Graph()
		return err != nil
	}, 3*time.Second, 20*time.Millisecond)
}
