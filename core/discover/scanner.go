// Package discover walks a repository root and yields the set of source
// files to analyze. Inclusion and exclusion are pattern-based; .gitignore
// rules are honored when present.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	gitignore "github.com/sabhiram/go-gitignore"
)

// =============================================================================
// Configuration
// =============================================================================

// DefaultMaxFileSize is the largest file the scanner will include (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// defaultIncludePatterns cover the analyzable source extensions.
var defaultIncludePatterns = []string{
	"*.ts", "*.tsx", "*.mts", "*.cts", "*.js", "*.jsx", "*.mjs", "*.cjs",
}

// defaultExcludedDirs contains directories that are always skipped.
var defaultExcludedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"coverage":     {},
	".next":        {},
	".cache":       {},
	".idea":        {},
	".vscode":      {},
}

// Config holds scanner configuration.
type Config struct {
	// RootPath is the directory to scan (required).
	RootPath string

	// IncludePatterns are glob patterns matched against file base names.
	// Empty means the default source extensions.
	IncludePatterns []string

	// ExcludePatterns are glob patterns matched against relative paths.
	ExcludePatterns []string

	// MaxFileSize is the maximum file size in bytes (default 10MB).
	MaxFileSize int64

	// UseGitignore honors a .gitignore at the root when present.
	UseGitignore bool
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrRootPathEmpty indicates the root path was not specified.
	ErrRootPathEmpty = errors.New("root path cannot be empty")

	// ErrRootPathNotDir indicates the root path is not a directory.
	ErrRootPathNotDir = errors.New("root path is not a directory")

	// ErrInvalidPattern indicates a glob pattern could not be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// =============================================================================
// Scanner
// =============================================================================

// Scanner walks a directory tree collecting files matching the configured
// patterns.
type Scanner struct {
	config   Config
	includes []glob.Glob
	excludes []glob.Glob
	ignore   *gitignore.GitIgnore
}

// NewScanner creates a Scanner, compiling its patterns eagerly so pattern
// errors surface before any walking starts.
func NewScanner(config Config) (*Scanner, error) {
	if config.RootPath == "" {
		return nil, ErrRootPathEmpty
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}

	includePatterns := config.IncludePatterns
	if len(includePatterns) == 0 {
		includePatterns = defaultIncludePatterns
	}

	s := &Scanner{config: config}

	for _, pattern := range includePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
		s.includes = append(s.includes, g)
	}
	for _, pattern := range config.ExcludePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
		s.excludes = append(s.excludes, g)
	}

	if config.UseGitignore {
		ignorePath := filepath.Join(config.RootPath, ".gitignore")
		if _, err := os.Stat(ignorePath); err == nil {
			ignore, err := gitignore.CompileIgnoreFile(ignorePath)
			if err == nil {
				s.ignore = ignore
			}
		}
	}

	return s, nil
}

// Scan walks the tree and returns matching paths relative to the root,
// sorted for determinism.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.config.RootPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrRootPathNotDir
	}

	var paths []string

	err = filepath.WalkDir(s.config.RootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(s.config.RootPath, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if rel == "." {
				return nil
			}
			if s.skipDir(entry.Name(), rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.matches(entry, rel, path) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// skipDir reports whether a directory should be pruned from the walk.
func (s *Scanner) skipDir(name, rel string) bool {
	if _, ok := defaultExcludedDirs[name]; ok {
		return true
	}
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	if s.ignore != nil && s.ignore.MatchesPath(rel) {
		return true
	}
	return false
}

// matches reports whether a file passes include, exclude, gitignore, and
// size checks.
func (s *Scanner) matches(entry fs.DirEntry, rel, abs string) bool {
	name := entry.Name()

	included := false
	for _, g := range s.includes {
		if g.Match(name) {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, g := range s.excludes {
		if g.Match(rel) || g.Match(name) {
			return false
		}
	}

	if s.ignore != nil && s.ignore.MatchesPath(rel) {
		return false
	}

	info, err := entry.Info()
	if err != nil || info.Size() > s.config.MaxFileSize {
		return false
	}

	return true
}
