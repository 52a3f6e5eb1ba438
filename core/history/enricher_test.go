package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// =============================================================================
// Test Helpers
// =============================================================================

// initTestRepo creates a repository with two commits touching a.ts (by two
// authors) and one commit touching b.ts.
func initTestRepo(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	repo, err := gogit.PlainInit(root, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	commit := func(path, content, author string, when time.Time) {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := wt.Add(path); err != nil {
			t.Fatalf("add: %v", err)
		}
		sig := &object.Signature{Name: author, Email: author + "@example.com", When: when}
		if _, err := wt.Commit("update "+path, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	commit("src/a.ts", "v1", "ada", base)
	commit("src/a.ts", "v2", "grace", base.Add(time.Hour))
	commit("src/b.ts", "v1", "ada", base.Add(2*time.Hour))

	return root
}

// =============================================================================
// Enricher Tests
// =============================================================================

func TestEnrich_MinesPerFileHistory(t *testing.T) {
	t.Parallel()

	root := initTestRepo(t)
	enricher := NewEnricher(nil)

	results, err := enricher.Enrich(context.Background(), root, []string{"src/a.ts", "src/b.ts"}, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	a := results["src/a.ts"]
	if a == nil {
		t.Fatal("expected history for src/a.ts")
	}
	if a.ModificationCount != 2 {
		t.Errorf("expected 2 modifications, got %d", a.ModificationCount)
	}
	if len(a.Contributors) != 2 || a.Contributors[0] != "grace" {
		t.Errorf("expected [grace ada], got %v", a.Contributors)
	}
	if a.LastModified.IsZero() {
		t.Error("expected last modified set")
	}

	b := results["src/b.ts"]
	if b == nil || b.ModificationCount != 1 {
		t.Errorf("unexpected history for src/b.ts: %+v", b)
	}
}

func TestEnrich_UnknownFileDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	root := initTestRepo(t)
	enricher := NewEnricher(nil)

	results, err := enricher.Enrich(context.Background(), root, []string{"src/missing.ts", "src/a.ts"}, nil)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if _, ok := results["src/missing.ts"]; ok {
		t.Error("missing file should yield no record")
	}
	if _, ok := results["src/a.ts"]; !ok {
		t.Error("remaining files should still be enriched")
	}
}

func TestEnrich_NotARepository(t *testing.T) {
	t.Parallel()

	enricher := NewEnricher(nil)

	results, err := enricher.Enrich(context.Background(), t.TempDir(), []string{"src/a.ts"}, nil)
	if err != ErrNotRepository {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
	if len(results) != 0 {
		t.Error("expected empty result set")
	}
}

func TestEnrich_ProgressReported(t *testing.T) {
	t.Parallel()

	root := initTestRepo(t)
	enricher := NewEnricher(nil)

	var calls [][2]int
	_, err := enricher.Enrich(context.Background(), root, []string{"src/a.ts", "src/b.ts"}, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 progress calls, got %d", len(calls))
	}
	if calls[0] != [2]int{1, 2} || calls[1] != [2]int{2, 2} {
		t.Errorf("unexpected progress sequence %v", calls)
	}
}

func TestNewClient_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(""); err != ErrEmptyPath {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
}
