// Package events provides audit event emission for git invocations. An
// emitter observes the lifecycle of every command the runner executes:
// started, finished, and any trace lines git printed along the way. The
// package includes a zap-backed emitter, a no-op emitter, and a recording
// emitter for tests.
package events

import (
	"sync"
	"time"

	"github.com/Calder-Labs/gitrun/internal/logger"
)

// CommandStarted describes an invocation about to spawn.
type CommandStarted struct {
	// InvocationID correlates the started/finished pair and all traces in
	// between.
	InvocationID string
	Args         []string
	Dir          string
	Time         time.Time
}

// CommandFinished describes a resolved invocation.
type CommandFinished struct {
	InvocationID string
	Args         []string
	ExitCode     int
	Aborted      bool
	Duration     time.Duration
	Time         time.Time
}

// TraceLine is one GIT_TRACE line attributed to an invocation.
type TraceLine struct {
	InvocationID string
	// Clock is the HH:MM:SS.micros prefix git printed on the line.
	Clock string
	Text  string
	Time  time.Time
}

// Emitter receives audit events. Implementations must be safe for
// concurrent use; the runner may have several invocations in flight.
type Emitter interface {
	CommandStarted(ev CommandStarted)
	CommandFinished(ev CommandFinished)
	TraceLine(ev TraceLine)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) CommandStarted(CommandStarted)   {}
func (NopEmitter) CommandFinished(CommandFinished) {}
func (NopEmitter) TraceLine(TraceLine)             {}

// LogEmitter writes audit events to the structured logger.
type LogEmitter struct {
	log *logger.Logger
}

// NewLogEmitter creates an emitter that logs through l, or the global
// logger when l is nil.
func NewLogEmitter(l *logger.Logger) *LogEmitter {
	if l == nil {
		l = logger.Get()
	}
	return &LogEmitter{log: l}
}

func (e *LogEmitter) CommandStarted(ev CommandStarted) {
	e.log.WithFields(map[string]interface{}{
		"invocation": ev.InvocationID,
		"args":       ev.Args,
		"dir":        ev.Dir,
	}).Debug("git command started")
}

func (e *LogEmitter) CommandFinished(ev CommandFinished) {
	e.log.WithFields(map[string]interface{}{
		"invocation": ev.InvocationID,
		"args":       ev.Args,
		"exit_code":  ev.ExitCode,
		"aborted":    ev.Aborted,
		"duration":   ev.Duration.String(),
	}).Debug("git command finished")
}

func (e *LogEmitter) TraceLine(ev TraceLine) {
	e.log.WithFields(map[string]interface{}{
		"invocation": ev.InvocationID,
		"clock":      ev.Clock,
	}).Debug(ev.Text)
}

// RecordingEmitter records every event for verification in tests.
type RecordingEmitter struct {
	mu       sync.Mutex
	Started  []CommandStarted
	Finished []CommandFinished
	Traces   []TraceLine
}

func (r *RecordingEmitter) CommandStarted(ev CommandStarted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = append(r.Started, ev)
}

func (r *RecordingEmitter) CommandFinished(ev CommandFinished) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finished = append(r.Finished, ev)
}

func (r *RecordingEmitter) TraceLine(ev TraceLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Traces = append(r.Traces, ev)
}

// Snapshot returns copies of the recorded slices, safe to inspect while
// other goroutines keep emitting.
func (r *RecordingEmitter) Snapshot() ([]CommandStarted, []CommandFinished, []TraceLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CommandStarted(nil), r.Started...),
		append([]CommandFinished(nil), r.Finished...),
		append([]TraceLine(nil), r.Traces...)
}
