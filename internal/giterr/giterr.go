// Package giterr defines the typed error taxonomy for git invocations and
// the classifier that maps a captured process result onto it.
//
// Classification of execution failures is strict: every non-zero exit or
// spawn failure surfaces as a *GitError carrying the full invocation context.
// This is deliberately separate from output parsing, which is best-effort and
// never produces errors.
package giterr

import (
	"fmt"
	"regexp"
	"strings"
)

// SpawnFailureExitCode is the sentinel exit code the spawn adapter reports
// when the child process could not be started at all.
const SpawnFailureExitCode = -1

// Kind is the primary classification of a failed invocation.
type Kind string

const (
	// KindAborted means caller-initiated cancellation won the race. It takes
	// priority over any text-based classification.
	KindAborted Kind = "aborted"
	// KindSpawnFailed means the git binary could not be started, or failed
	// in a way indicating it is missing or misconfigured.
	KindSpawnFailed Kind = "spawn-failed"
	// KindNonZeroExit means the process ran and exited with a failure code.
	KindNonZeroExit Kind = "non-zero-exit"
)

// Category is an advisory grouping derived from stderr keywords. It exists
// for UX decisions (retry prompts, credential prompts) and never changes the
// Kind.
type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryNetwork    Category = "network"
	CategoryConflict   Category = "conflict"
	CategoryPermission Category = "permission"
	CategoryUnknown    Category = "unknown"
)

// Context captures everything about the invocation that produced the error.
type Context struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	// Dir is the worktree or git directory the invocation targeted, empty
	// for global invocations.
	Dir string
}

// GitError is the typed error returned for every failed invocation.
type GitError struct {
	Kind     Kind
	Message  string
	Category Category
	Context  Context
}

// Error implements the error interface.
func (e *GitError) Error() string {
	return fmt.Sprintf("git %s: %s", e.Kind, e.Message)
}

// Result is the subset of a raw process result the classifier needs.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Aborted  bool
}

var (
	fatalLineRe = regexp.MustCompile(`(?im)^\s*fatal:\s*(.+)$`)
	errorLineRe = regexp.MustCompile(`(?im)^\s*error:\s*(.+)$`)
)

// spawnFailurePhrases mark stderr text that indicates the binary itself is
// missing or unrunnable rather than a git-level failure.
var spawnFailurePhrases = []string{
	"command not found",
	"not recognized as an internal or external command",
	"no such file or directory",
	"executable file not found",
}

// Classify maps a captured result to a typed error, or nil on success.
// Aborted always wins: a cancelled invocation is never reported as an
// ordinary failure, whatever the exit code or stderr say.
func Classify(res Result, args []string, dir string) *GitError {
	if res.Aborted {
		return &GitError{
			Kind:     KindAborted,
			Message:  "git invocation was aborted",
			Category: CategoryUnknown,
			Context:  contextOf(res, args, dir),
		}
	}

	if res.ExitCode == 0 {
		return nil
	}

	kind := KindNonZeroExit
	if res.ExitCode == SpawnFailureExitCode || matchesSpawnFailure(res.Stderr) {
		kind = KindSpawnFailed
	}

	return &GitError{
		Kind:     kind,
		Message:  extractMessage(res.Stderr, res.ExitCode),
		Category: categorize(res.Stderr),
		Context:  contextOf(res, args, dir),
	}
}

func contextOf(res Result, args []string, dir string) Context {
	return Context{
		Args:     args,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Dir:      dir,
	}
}

func matchesSpawnFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, phrase := range spawnFailurePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// extractMessage pulls the most useful human message out of stderr: the
// first `fatal:` line, then the first `error:` line, then the first
// non-empty line, then a generic exit-code message.
func extractMessage(stderr string, exitCode int) string {
	if m := fatalLineRe.FindStringSubmatch(stderr); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := errorLineRe.FindStringSubmatch(stderr); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, line := range strings.Split(stderr, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return fmt.Sprintf("git exited with code %d", exitCode)
}

// categoryKeywords maps stderr substrings (lower-cased) to advisory
// categories. First match wins in the order below.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryAuth, []string{"401", "403", "authentication", "could not read username", "could not read password", "invalid credentials", "permission denied (publickey"}},
	{CategoryNetwork, []string{"enotfound", "econnrefused", "etimedout", "could not resolve host", "network", "connection timed out", "connection refused"}},
	{CategoryConflict, []string{"conflict", "needs merge", "not uptodate"}},
	{CategoryPermission, []string{"eacces", "eperm", "permission denied", "operation not permitted"}},
}

func categorize(stderr string) Category {
	lower := strings.ToLower(stderr)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return CategoryUnknown
}
