// Package runner orchestrates git invocations end to end: it builds the
// argument vector and environment for an execution context, spawns the
// process, demultiplexes stderr into progress and trace events while the
// command runs, classifies failures, and emits audit events.
//
// A Runner is safe for concurrent use. Every Run call owns its own
// line-accumulation state; nothing per-invocation lives on the Runner
// itself.
package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Calder-Labs/gitrun/internal/argv"
	"github.com/Calder-Labs/gitrun/internal/config"
	"github.com/Calder-Labs/gitrun/internal/events"
	"github.com/Calder-Labs/gitrun/internal/giterr"
	"github.com/Calder-Labs/gitrun/internal/logger"
	"github.com/Calder-Labs/gitrun/internal/progress"
	"github.com/Calder-Labs/gitrun/internal/spawn"
)

// RawResult is the terminal outcome of one invocation: full captured
// output, the exit code, and whether cancellation won.
type RawResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Aborted  bool
}

// Options shapes a single invocation.
type Options struct {
	// Context decides the location flag. The zero value is a global
	// invocation.
	Context argv.Context

	// Env is the base environment for the child. nil inherits the current
	// process environment.
	Env map[string]string

	// OnProgress receives progress events parsed from stderr (and, in
	// sidecar mode, from the LFS progress file) in arrival order, one at
	// a time, all delivered before Run returns.
	OnProgress func(progress.Event)

	// OnTrace receives GIT_TRACE lines. Setting it enables trace capture
	// for the invocation.
	OnTrace func(progress.Trace)
}

// Runner executes git commands. Construct with New; the zero value is not
// usable.
type Runner struct {
	cfg     *config.Config
	spawner spawn.Spawner
	emitter events.Emitter
	log     *logger.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSpawner substitutes the process spawn adapter.
func WithSpawner(s spawn.Spawner) Option {
	return func(r *Runner) { r.spawner = s }
}

// WithEmitter sets the audit event emitter.
func WithEmitter(e events.Emitter) Option {
	return func(r *Runner) { r.emitter = e }
}

// WithLogger sets the structured logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// New creates a Runner from configuration.
func New(cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Runner{
		cfg:     cfg,
		spawner: spawn.ExecSpawner{},
		emitter: events.NopEmitter{},
		log:     logger.Get(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one git command and resolves with its raw result. Execution
// failures come back as a *giterr.GitError alongside the raw result;
// adapter-level faults propagate unchanged after best-effort audit
// emission. Progress and trace events are fully delivered, including the
// flush of a trailing partial stderr line, before Run returns.
func (r *Runner) Run(ctx context.Context, args []string, opts Options) (*RawResult, error) {
	invocationID := uuid.NewString()
	started := time.Now()

	buildOpts := argv.BuildOptions{
		CredentialHelper: r.cfg.CredentialHelper,
		Home:             r.cfg.Home,
		PathPrefixes:     r.cfg.PathPrefixes,
	}
	fullArgs := argv.BuildArgs(r.cfg.GitPath, opts.Context, args, buildOpts)

	env, sidecarPath := r.buildEnv(opts, buildOpts)

	// In sidecar mode progress arrives from two goroutines: the stderr
	// copier and the file watcher. The caller sees one serialized stream
	// either way.
	onProgress := opts.OnProgress
	if sidecarPath != "" && onProgress != nil {
		var mu sync.Mutex
		inner := onProgress
		onProgress = func(ev progress.Event) {
			mu.Lock()
			defer mu.Unlock()
			inner(ev)
		}
	}

	// The demultiplexer is scoped to this activation: concurrent Run calls
	// must never share a partial-line buffer.
	demux := progress.NewDemux(progress.Handler{
		OnProgress: onProgress,
		OnTrace:    r.traceHandler(invocationID, opts.OnTrace),
	})

	var watcher *progress.SidecarWatcher
	if sidecarPath != "" {
		w, err := progress.WatchSidecar(sidecarPath, onProgress)
		if err != nil {
			r.log.WithFields(map[string]interface{}{
				"invocation": invocationID,
				"error":      err,
			}).Warn("failed to watch LFS progress file")
		} else {
			watcher = w
		}
	}

	r.emitter.CommandStarted(events.CommandStarted{
		InvocationID: invocationID,
		Args:         fullArgs,
		Dir:          opts.Context.Dir(),
		Time:         started,
	})

	res, spawnErr := r.spawner.Spawn(ctx, spawn.Spec{
		Args: fullArgs,
		Env:  env,
		Dir:  opts.Context.Dir(),
	}, demux.Feed)

	// Flush the trailing partial line before the terminal result becomes
	// visible to the caller.
	demux.Close()
	if watcher != nil {
		if err := watcher.Close(); err != nil {
			r.log.WithFields(map[string]interface{}{
				"invocation": invocationID,
				"error":      err,
			}).Warn("failed to close LFS progress watcher")
		}
		_ = os.Remove(sidecarPath)
	}

	r.emitter.CommandFinished(events.CommandFinished{
		InvocationID: invocationID,
		Args:         fullArgs,
		ExitCode:     res.ExitCode,
		Aborted:      res.Aborted,
		Duration:     time.Since(started),
		Time:         time.Now(),
	})

	if spawnErr != nil {
		return nil, spawnErr
	}

	raw := &RawResult{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Aborted:  res.Aborted,
	}

	if gerr := giterr.Classify(giterr.Result{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Aborted:  res.Aborted,
	}, fullArgs, opts.Context.Dir()); gerr != nil {
		return raw, gerr
	}
	return raw, nil
}

// buildEnv assembles the child environment and, in sidecar mode, allocates
// the progress-file path the watcher will tail. It returns a nil map when
// the parent environment can be inherited untouched.
func (r *Runner) buildEnv(opts Options, buildOpts argv.BuildOptions) (map[string]string, string) {
	needsTrace := opts.OnTrace != nil || r.cfg.Trace
	sidecar := opts.OnProgress != nil && r.cfg.TransferProgress == config.TransferProgressSidecar

	hasOverrides := buildOpts.CredentialHelper != "" || buildOpts.Home != "" ||
		len(buildOpts.PathPrefixes) > 0 || needsTrace || sidecar

	if opts.Env == nil && !hasOverrides {
		return nil, ""
	}

	base := opts.Env
	if base == nil {
		base = environMap()
	}
	env := argv.BuildEnv(base, buildOpts)

	if needsTrace {
		env["GIT_TRACE"] = "1"
	}

	var sidecarPath string
	if sidecar {
		sidecarPath = filepath.Join(os.TempDir(), "gitrun-lfs-"+uuid.NewString())
		env["GIT_LFS_PROGRESS"] = sidecarPath
	}

	return env, sidecarPath
}

// traceHandler bridges demux trace lines to the caller callback and the
// audit emitter. Returns nil when neither the caller nor the configuration
// asked for traces, so ordinary stderr is never misread as trace output.
func (r *Runner) traceHandler(invocationID string, onTrace func(progress.Trace)) func(progress.Trace) {
	if onTrace == nil && !r.cfg.Trace {
		return nil
	}
	return func(tr progress.Trace) {
		r.emitter.TraceLine(events.TraceLine{
			InvocationID: invocationID,
			Clock:        tr.Clock,
			Text:         tr.Text,
			Time:         time.Now(),
		})
		if onTrace != nil {
			onTrace(tr)
		}
	}
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, found := strings.Cut(kv, "="); found {
			env[key] = value
		}
	}
	return env
}
