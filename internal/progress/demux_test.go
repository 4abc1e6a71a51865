package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectEvents returns a Demux wired to record every progress event and
// trace it dispatches.
func collectEvents() (*Demux, *[]Event, *[]Trace) {
	var events []Event
	var traces []Trace
	d := NewDemux(Handler{
		OnProgress: func(ev Event) { events = append(events, ev) },
		OnTrace:    func(tr Trace) { traces = append(traces, tr) },
	})
	return d, &events, &traces
}

func TestDemux_splitMidLineAcrossChunks(t *testing.T) {
	// A stream delivered as three chunks with a deliberate split mid-line
	// must produce exactly two lines: nothing dropped, nothing duplicated.
	d, events, _ := collectEvents()
	d.Feed([]byte("Phase a:  50% (1/2)\nPhase b: 75"))
	d.Feed([]byte("% (3/4)\n"))
	d.Feed([]byte(""))
	d.Close()

	require.Len(t, *events, 2)
	a := (*events)[0].(ToolProgress)
	b := (*events)[1].(ToolProgress)
	assert.Equal(t, "Phase a", a.Phase)
	assert.Equal(t, 50, a.Percent)
	assert.Equal(t, "Phase b", b.Phase)
	assert.Equal(t, 75, b.Percent)
}

func TestDemux_carriageReturnTerminatesLines(t *testing.T) {
	// git progress bars redraw in place with CR, no LF until done.
	d, events, _ := collectEvents()
	d.Feed([]byte("Receiving objects:  10% (1/10)\rReceiving objects:  20% (2/10)\r"))
	d.Close()

	require.Len(t, *events, 2)
	assert.Equal(t, 10, (*events)[0].(ToolProgress).Percent)
	assert.Equal(t, 20, (*events)[1].(ToolProgress).Percent)
}

func TestDemux_flushesTrailingPartialLine(t *testing.T) {
	d, events, _ := collectEvents()
	d.Feed([]byte("Resolving deltas: 100% (5/5)"))
	require.Empty(t, *events, "no newline yet, nothing should be dispatched")

	d.Close()
	require.Len(t, *events, 1)
	assert.Equal(t, "Resolving deltas", (*events)[0].(ToolProgress).Phase)
}

func TestDemux_emptyAndBlankLinesSkipped(t *testing.T) {
	d, events, _ := collectEvents()
	d.Feed([]byte("\n\r\n   \nReceiving objects:  50% (5/10)\n"))
	d.Close()

	assert.Len(t, *events, 1)
}

func TestDemux_traceWinsOverProgress(t *testing.T) {
	d, events, traces := collectEvents()
	d.Feed([]byte("11:22:33.444555 trace: run_command: git status\n"))
	d.Feed([]byte("Receiving objects:  50% (5/10)\n"))
	d.Close()

	require.Len(t, *traces, 1)
	assert.Equal(t, "trace: run_command: git status", (*traces)[0].Text)
	require.Len(t, *events, 1)
}

func TestDemux_unmatchedLinesDropped(t *testing.T) {
	d, events, traces := collectEvents()
	d.Feed([]byte("remote: Enumerating objects: 12, done.\nfatal: oops\n"))
	d.Close()

	assert.Empty(t, *events)
	assert.Empty(t, *traces)
}

func TestDemux_closeWithEmptyBufferIsNoop(t *testing.T) {
	d, events, _ := collectEvents()
	d.Feed([]byte("Receiving objects:  50% (5/10)\n"))
	d.Close()
	assert.Len(t, *events, 1)
}

func TestDemux_independentInstancesDoNotShareBuffers(t *testing.T) {
	// Two concurrent invocations each own a Demux; a partial line in one
	// must be invisible to the other.
	d1, events1, _ := collectEvents()
	d2, events2, _ := collectEvents()

	d1.Feed([]byte("Receiving objects:  5"))
	d2.Feed([]byte("Resolving deltas: 100% (9/9)\n"))
	d1.Feed([]byte("0% (5/10)\n"))
	d1.Close()
	d2.Close()

	require.Len(t, *events1, 1)
	assert.Equal(t, "Receiving objects", (*events1)[0].(ToolProgress).Phase)
	require.Len(t, *events2, 1)
	assert.Equal(t, "Resolving deltas", (*events2)[0].(ToolProgress).Phase)
}
