package repo

import (
	"context"
	"fmt"
	"strings"
)

// Worktree is a linked working tree attached to a repository.
type Worktree struct {
	Path   string
	Branch string
}

// AddWorktree creates a linked worktree at path on a new branch based on
// baseRef.
func (r *Repository) AddWorktree(ctx context.Context, path, branch, baseRef string) (*Worktree, error) {
	_, err := r.run(ctx, []string{"worktree", "add", "-B", branch, path, baseRef}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create worktree: %w", err)
	}
	return &Worktree{Path: path, Branch: branch}, nil
}

// RemoveWorktree removes a linked worktree and prunes stale registrations.
func (r *Repository) RemoveWorktree(ctx context.Context, path string) error {
	if _, err := r.run(ctx, []string{"worktree", "remove", path, "--force"}, nil); err != nil {
		return fmt.Errorf("failed to remove worktree: %w", err)
	}
	if _, err := r.run(ctx, []string{"worktree", "prune"}, nil); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}
	return nil
}

// Branches returns all branch names, with the remote prefix stripped.
func (r *Repository) Branches(ctx context.Context) ([]string, error) {
	raw, err := r.run(ctx, []string{"branch", "-a", "--format=%(refname:short)"}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	var branches []string
	for _, line := range strings.Split(raw.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		branches = append(branches, strings.TrimPrefix(line, "origin/"))
	}
	return branches, nil
}
