// Package history mines version-control log data for scanned files:
// last-modified times, modification counts, and contributor lists. It uses
// go-git/v5 and never shells out.
package history

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrEmptyPath indicates the repository path was not specified.
	ErrEmptyPath = errors.New("repository path cannot be empty")

	// ErrNotRepository indicates the root is not under version control.
	// Distinct from empty history: callers warn on it instead of reporting
	// a pristine repository.
	ErrNotRepository = errors.New("path is not a git repository")
)

// =============================================================================
// Client
// =============================================================================

// Client wraps one opened repository.
type Client struct {
	repoPath string
	repo     *gogit.Repository
	isRepo   bool
}

// NewClient opens the repository at the given root. A valid client is
// returned even when the root is not a repository; IsRepository reports
// which case applies.
func NewClient(root string) (*Client, error) {
	if root == "" {
		return nil, ErrEmptyPath
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	c := &Client{repoPath: abs}
	if repo, err := gogit.PlainOpen(abs); err == nil {
		c.repo = repo
		c.isRepo = true
	}
	return c, nil
}

// IsRepository returns true if the root is under version control.
func (c *Client) IsRepository() bool {
	return c.isRepo
}

// RepoPath returns the absolute repository path.
func (c *Client) RepoPath() string {
	return c.repoPath
}

// =============================================================================
// FileHistory
// =============================================================================

// FileHistory is the mined history for one file.
type FileHistory struct {
	// LastModified is the author time of the newest commit touching the file.
	LastModified time.Time

	// ModificationCount is the number of commits touching the file.
	ModificationCount int

	// Contributors lists author display names in order of first appearance,
	// newest commit first.
	Contributors []string
}

// FileHistory walks the commit log for one repository-relative path.
// Returns ErrNotRepository when the root is not under version control.
func (c *Client) FileHistory(path string) (*FileHistory, error) {
	if !c.isRepo {
		return nil, ErrNotRepository
	}

	iter, err := c.repo.Log(&gogit.LogOptions{FileName: &path})
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", path, err)
	}
	defer iter.Close()

	h := &FileHistory{}
	seen := make(map[string]struct{})

	err = iter.ForEach(func(commit *object.Commit) error {
		if h.ModificationCount == 0 {
			h.LastModified = commit.Author.When
		}
		h.ModificationCount++

		name := commit.Author.Name
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			h.Contributors = append(h.Contributors, name)
		}
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return h, nil
}
