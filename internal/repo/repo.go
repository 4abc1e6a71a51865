// Package repo is a small typed surface over the runner for the commands
// the gitrun CLI needs. Each method builds an argument list, delegates to
// the runner, and parses the captured stdout. The full git command catalog
// is deliberately not modeled here.
package repo

import (
	"context"
	"strconv"
	"strings"

	"github.com/Calder-Labs/gitrun/internal/argv"
	"github.com/Calder-Labs/gitrun/internal/porcelain"
	"github.com/Calder-Labs/gitrun/internal/progress"
	"github.com/Calder-Labs/gitrun/internal/runner"
)

// Repository targets one repository through an execution context.
type Repository struct {
	runner *runner.Runner
	ctx    argv.Context
}

// Open returns a repository rooted at a working directory.
func Open(r *runner.Runner, workdir string) *Repository {
	return &Repository{runner: r, ctx: argv.WorktreeContext(workdir)}
}

// OpenBare returns a repository addressed by its metadata directory.
func OpenBare(r *runner.Runner, gitDir string) *Repository {
	return &Repository{runner: r, ctx: argv.BareContext(gitDir)}
}

// run executes args against this repository's context.
func (r *Repository) run(ctx context.Context, args []string, onProgress func(progress.Event)) (*runner.RawResult, error) {
	return r.runner.Run(ctx, args, runner.Options{
		Context:    r.ctx,
		OnProgress: onProgress,
	})
}

// Status reports the working tree state using the porcelain v2 format.
func (r *Repository) Status(ctx context.Context) (porcelain.Status, error) {
	raw, err := r.run(ctx, []string{"status", "--porcelain=v2", "--branch"}, nil)
	if err != nil {
		return porcelain.Status{}, err
	}
	return porcelain.ParseStatus(raw.Stdout), nil
}

// LogOptions bounds a Log call.
type LogOptions struct {
	// MaxCount limits the number of commits; zero means no limit.
	MaxCount int
	// Revision is the revision range or ref to walk; empty walks HEAD.
	Revision string
	// Path restricts history to one path.
	Path string
}

// Log returns commit history in newest-first order.
func (r *Repository) Log(ctx context.Context, opts LogOptions) ([]porcelain.Commit, error) {
	args := []string{"log", porcelain.LogFormat}
	if opts.MaxCount > 0 {
		args = append(args, "--max-count", strconv.Itoa(opts.MaxCount))
	}
	if opts.Revision != "" {
		args = append(args, opts.Revision)
	}
	if opts.Path != "" {
		args = append(args, "--", opts.Path)
	}

	raw, err := r.run(ctx, args, nil)
	if err != nil {
		return nil, err
	}
	return porcelain.ParseLog(raw.Stdout), nil
}

// DiffNameStatus summarizes changes between two revisions as status-letter
// entries, following renames.
func (r *Repository) DiffNameStatus(ctx context.Context, from, to string) (porcelain.Diff, error) {
	return r.diff(ctx, porcelain.DiffModeNameStatus, from, to, "--name-status", "-M")
}

// DiffNameOnly lists only the paths that changed between two revisions.
func (r *Repository) DiffNameOnly(ctx context.Context, from, to string) (porcelain.Diff, error) {
	return r.diff(ctx, porcelain.DiffModeNameOnly, from, to, "--name-only")
}

// DiffNumstat summarizes changes with per-path addition/deletion counts.
func (r *Repository) DiffNumstat(ctx context.Context, from, to string) (porcelain.Diff, error) {
	return r.diff(ctx, porcelain.DiffModeNumstat, from, to, "--numstat")
}

// diff appends revisions only when given: an empty string handed to git as
// a literal argument is an ambiguous-revision error, not "default".
func (r *Repository) diff(ctx context.Context, mode porcelain.DiffMode, from, to string, flags ...string) (porcelain.Diff, error) {
	args := append([]string{"diff"}, flags...)
	if from != "" {
		args = append(args, from)
	}
	if to != "" {
		args = append(args, to)
	}
	raw, err := r.run(ctx, args, nil)
	if err != nil {
		return porcelain.Diff{}, err
	}
	return porcelain.ParseDiff(raw.Stdout, mode), nil
}

// RevParse resolves a revision to a full object hash.
func (r *Repository) RevParse(ctx context.Context, rev string) (string, error) {
	raw, err := r.run(ctx, []string{"rev-parse", rev}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw.Stdout), nil
}

// Fetch updates remote-tracking refs, streaming progress when a callback is
// given.
func (r *Repository) Fetch(ctx context.Context, remote string, onProgress func(progress.Event)) error {
	args := []string{"fetch", "--progress"}
	if remote != "" {
		args = append(args, remote)
	}
	_, err := r.run(ctx, args, onProgress)
	return err
}

// Version reports the git binary's version string.
func Version(ctx context.Context, r *runner.Runner) (string, error) {
	raw, err := r.Run(ctx, []string{"version"}, runner.Options{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw.Stdout), nil
}
