package parser

import (
	"context"
	"testing"
)

// =============================================================================
// SourceParser Tests
// =============================================================================

func TestSourceParser_Extensions(t *testing.T) {
	t.Parallel()

	p := NewSourceParser()
	extensions := p.Extensions()

	want := map[string]bool{".ts": true, ".tsx": true, ".js": true, ".jsx": true}
	found := 0
	for _, ext := range extensions {
		if want[ext] {
			found++
		}
	}
	if found != len(want) {
		t.Errorf("missing core extensions in %v", extensions)
	}
}

func TestSourceParser_ParseTypeScript(t *testing.T) {
	t.Parallel()

	p := NewSourceParser()
	content := []byte("export function greet(name: string): string {\n  return `hi ${name}`;\n}\n")

	pf, err := p.Parse(context.Background(), content, "src/greet.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer pf.Close()

	if pf.Language != "typescript" {
		t.Errorf("expected typescript, got %s", pf.Language)
	}
	if pf.LineCount != 3 {
		t.Errorf("expected 3 lines, got %d", pf.LineCount)
	}
	if pf.Root().Type() != "program" {
		t.Errorf("expected program root, got %s", pf.Root().Type())
	}
}

func TestSourceParser_CanceledContext(t *testing.T) {
	t.Parallel()

	p := NewSourceParser()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Parse(ctx, []byte("const x = 1;"), "a.ts"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want string
	}{
		{"a.ts", "typescript"},
		{"a.tsx", "typescript"},
		{"a.js", "javascript"},
		{"a.mjs", "javascript"},
		{"a.rs", "unknown"},
	}

	for _, tc := range cases {
		if got := DetectLanguage(tc.path); got != tc.want {
			t.Errorf("DetectLanguage(%s) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

// =============================================================================
// Registry Tests
// =============================================================================

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	if _, err := r.ForFile("src/app.ts"); err != nil {
		t.Errorf("expected parser for .ts: %v", err)
	}
	if _, err := r.ForFile("README.md"); err != ErrNoParser {
		t.Errorf("expected ErrNoParser, got %v", err)
	}
	if !r.Has(".tsx") {
		t.Error("expected .tsx registered")
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestCountLines(t *testing.T) {
	t.Parallel()

	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one line", 1},
		{"a\nb\n", 2},
		{"a\nb", 2},
	}

	for _, tc := range cases {
		if got := CountLines([]byte(tc.content)); got != tc.want {
			t.Errorf("CountLines(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
}
