package discover

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// =============================================================================
// Test Helpers
// =============================================================================

// writeTree creates files under a temp root and returns the root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

// =============================================================================
// Scanner Tests
// =============================================================================

func TestScanner_DefaultsToSourceFiles(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"src/app.ts":    "export const a = 1;",
		"src/ui.tsx":    "export const b = 2;",
		"lib/util.js":   "module.exports = {};",
		"README.md":     "# readme",
		"assets/x.json": "{}",
	})

	s, err := NewScanner(Config{RootPath: root})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	paths, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []string{"lib/util.js", "src/app.ts", "src/ui.tsx"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("expected %v, got %v", want, paths)
	}
}

func TestScanner_SkipsExcludedDirs(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"src/app.ts":              "export const a = 1;",
		"node_modules/pkg/idx.ts": "x",
		"dist/out.js":             "x",
		".hidden/secret.ts":       "x",
	})

	s, err := NewScanner(Config{RootPath: root})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	paths, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(paths) != 1 || paths[0] != "src/app.ts" {
		t.Errorf("expected only src/app.ts, got %v", paths)
	}
}

func TestScanner_ExcludePatterns(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"src/app.ts":      "x",
		"src/app.spec.ts": "x",
	})

	s, err := NewScanner(Config{
		RootPath:        root,
		ExcludePatterns: []string{"*.spec.ts"},
	})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	paths, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(paths) != 1 || paths[0] != "src/app.ts" {
		t.Errorf("expected only src/app.ts, got %v", paths)
	}
}

func TestScanner_Gitignore(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		".gitignore":      "generated/\n*.min.js\n",
		"src/app.ts":      "x",
		"generated/g.ts":  "x",
		"lib/app.min.js":  "x",
		"lib/app.full.js": "x",
	})

	s, err := NewScanner(Config{RootPath: root, UseGitignore: true})
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}

	paths, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	want := []string{"lib/app.full.js", "src/app.ts"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("expected %v, got %v", want, paths)
	}
}

func TestScanner_EmptyRootRejected(t *testing.T) {
	t.Parallel()

	if _, err := NewScanner(Config{}); err != ErrRootPathEmpty {
		t.Errorf("expected ErrRootPathEmpty, got %v", err)
	}
}

func TestScanner_InvalidPatternRejected(t *testing.T) {
	t.Parallel()

	_, err := NewScanner(Config{RootPath: t.TempDir(), IncludePatterns: []string{"[bad"}})
	if err == nil {
		t.Error("expected error for invalid pattern")
	}
}
