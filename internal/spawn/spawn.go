// Package spawn executes a single external process and captures its output.
//
// The Spawner interface is the one boundary the execution core depends on:
// anything that can run an argv with an environment, stream stderr chunks in
// arrival order, honor cancellation, and resolve with captured output can
// stand in for the default os/exec implementation. Tests substitute fakes.
package spawn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/Calder-Labs/gitrun/internal/giterr"
)

// Spec describes one process invocation. It is built per call and never
// reused.
type Spec struct {
	// Args is the full argument vector; Args[0] is the binary.
	Args []string

	// Env is the complete process environment. nil inherits the parent
	// environment; an empty non-nil map runs with an empty environment.
	Env map[string]string

	// Dir is the working directory; empty means the parent's.
	Dir string
}

// Result is the terminal outcome of one invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int

	// Aborted is true when cancellation terminated the process (or
	// prevented it from starting). It takes priority over ExitCode during
	// classification.
	Aborted bool
}

// Spawner runs a process to completion.
//
// Implementations must deliver stderr chunks to onStderr (when non-nil) in
// arrival order, make no further calls after Spawn returns, terminate the
// child and report Aborted when ctx is cancelled, and report Aborted without
// starting the child when ctx is already cancelled on entry. A failure to
// start the process resolves with ExitCode giterr.SpawnFailureExitCode
// rather than an error; the error return is reserved for adapter-level
// faults and propagates to the caller unchanged.
type Spawner interface {
	Spawn(ctx context.Context, spec Spec, onStderr func(chunk []byte)) (Result, error)
}

// waitDelay bounds how long Wait blocks on output pipes after the child is
// killed; grandchildren may hold the pipes open indefinitely otherwise.
const waitDelay = 10 * time.Second

// ExecSpawner is the default Spawner on top of os/exec.
type ExecSpawner struct{}

var _ Spawner = ExecSpawner{}

// chunkWriter forwards every write to the stderr callback.
type chunkWriter struct {
	fn func([]byte)
}

func (w chunkWriter) Write(p []byte) (int, error) {
	w.fn(p)
	return len(p), nil
}

// Spawn implements Spawner. Stdout is fully buffered; stderr is both
// buffered and streamed through onStderr as it arrives.
func (ExecSpawner) Spawn(ctx context.Context, spec Spec, onStderr func(chunk []byte)) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: giterr.SpawnFailureExitCode, Aborted: true}, nil
	}

	cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
	cmd.Dir = spec.Dir
	cmd.WaitDelay = waitDelay
	configureProcessGroup(cmd)
	if spec.Env != nil {
		cmd.Env = flatten(spec.Env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if onStderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, chunkWriter{fn: onStderr})
	} else {
		cmd.Stderr = &stderr
	}

	// Run waits for the stderr copy goroutine, so no onStderr call can
	// happen after this returns.
	runErr := cmd.Run()

	res := Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Aborted: ctx.Err() != nil,
	}

	switch {
	case runErr == nil:
		res.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// The process never started (binary missing, permission,
			// bad directory). The sentinel exit code carries that to the
			// classifier; the start error becomes the stderr text.
			res.ExitCode = giterr.SpawnFailureExitCode
			if res.Stderr == "" {
				res.Stderr = runErr.Error()
			}
		}
	}

	return res, nil
}

func flatten(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
