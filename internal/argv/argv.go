// Package argv builds git argument vectors and process environments from an
// execution context. Everything here is pure: no I/O, no errors, the same
// inputs always produce the same argv and environment.
package argv

import (
	"os"
	"path/filepath"
	"strings"
)

// ContextKind selects which location flag, if any, targets the invocation.
type ContextKind int

const (
	// Global runs git with no location flag at all.
	Global ContextKind = iota
	// Worktree runs git against a working directory via -C.
	Worktree
	// Bare runs git directly against a repository metadata directory
	// via --git-dir.
	Bare
)

// Context describes where a git invocation is aimed. It is constructed per
// call and never mutated.
type Context struct {
	Kind ContextKind

	// Workdir is the working directory for Worktree contexts.
	Workdir string

	// GitDir is the metadata directory for Bare contexts.
	GitDir string
}

// GlobalContext returns a context with no location flag.
func GlobalContext() Context {
	return Context{Kind: Global}
}

// WorktreeContext returns a context targeting a working directory.
func WorktreeContext(workdir string) Context {
	return Context{Kind: Worktree, Workdir: workdir}
}

// BareContext returns a context targeting a bare repository directory.
func BareContext(gitDir string) Context {
	return Context{Kind: Bare, GitDir: gitDir}
}

// Dir returns the directory the context points at, or "" for Global.
func (c Context) Dir() string {
	switch c.Kind {
	case Worktree:
		return c.Workdir
	case Bare:
		return c.GitDir
	default:
		return ""
	}
}

// BuildOptions carries the caller overrides that shape argv and environment.
type BuildOptions struct {
	// CredentialHelper, when non-empty, is the path of a credential helper
	// injected via `-c credential.helper=...`. Its directory is also
	// prepended to PATH.
	CredentialHelper string

	// Home, when non-empty, overrides HOME and USERPROFILE together.
	Home string

	// PathPrefixes are directories prepended to PATH, after the credential
	// helper's directory.
	PathPrefixes []string
}

// BuildArgs assembles the final argument vector: the binary name, the
// credential-helper config pair if configured, the context's location flag
// pair, then the caller's base arguments. The context variant alone decides
// the location flag; callers must not add a second one.
func BuildArgs(binary string, ctx Context, base []string, opts BuildOptions) []string {
	args := make([]string, 0, len(base)+5)
	args = append(args, binary)

	if opts.CredentialHelper != "" {
		args = append(args, "-c", "credential.helper="+opts.CredentialHelper)
	}

	switch ctx.Kind {
	case Worktree:
		args = append(args, "-C", ctx.Workdir)
	case Bare:
		args = append(args, "--git-dir", ctx.GitDir)
	}

	return append(args, base...)
}

// BuildEnv produces the process environment for an invocation. The base map
// is copied, never mutated. A home override sets HOME and USERPROFILE
// together so the same options work on every platform. PATH is rebuilt by
// joining the credential helper's directory, the explicit prefixes, and the
// original PATH with the platform list separator.
func BuildEnv(base map[string]string, opts BuildOptions) map[string]string {
	env := make(map[string]string, len(base)+2)
	for k, v := range base {
		env[k] = v
	}

	if opts.Home != "" {
		env["HOME"] = opts.Home
		env["USERPROFILE"] = opts.Home
	}

	var prefixes []string
	if opts.CredentialHelper != "" {
		prefixes = append(prefixes, filepath.Dir(opts.CredentialHelper))
	}
	prefixes = append(prefixes, opts.PathPrefixes...)

	if len(prefixes) > 0 {
		sep := string(os.PathListSeparator)
		if orig := env["PATH"]; orig != "" {
			env["PATH"] = strings.Join(prefixes, sep) + sep + orig
		} else {
			env["PATH"] = strings.Join(prefixes, sep)
		}
	}

	return env
}

// Flatten converts an environment map to the KEY=VALUE slice form expected
// by os/exec.
func Flatten(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
