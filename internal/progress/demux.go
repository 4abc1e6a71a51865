package progress

import "strings"

// Handler receives the classified lines a Demux produces. Either callback
// may be nil.
type Handler struct {
	OnTrace    func(Trace)
	OnProgress func(Event)
}

// Demux splits an arriving stderr byte stream into lines and routes each
// complete line through the trace classifier and the progress parsers.
//
// A Demux holds the partial-line tail between chunks, so one Demux belongs
// to exactly one invocation. It must never live on a shared object: two
// concurrent invocations feeding the same buffer would interleave their
// partial lines and corrupt both streams.
type Demux struct {
	handler Handler
	tail    strings.Builder
}

// NewDemux creates a demultiplexer for a single invocation.
func NewDemux(handler Handler) *Demux {
	return &Demux{handler: handler}
}

// Feed appends one stderr chunk, dispatching every complete line it closes.
// Progress bars redraw with carriage returns, so both CR and LF terminate a
// line. The trailing incomplete fragment is retained for the next chunk.
func (d *Demux) Feed(chunk []byte) {
	d.tail.Write(chunk)
	data := d.tail.String()
	d.tail.Reset()

	for {
		idx := strings.IndexAny(data, "\r\n")
		if idx < 0 {
			break
		}
		d.dispatch(data[:idx])
		data = data[idx+1:]
	}
	d.tail.WriteString(data)
}

// Close flushes any remaining partial line as one final line. Call exactly
// once, after the last chunk and before the invocation resolves.
func (d *Demux) Close() {
	if d.tail.Len() == 0 {
		return
	}
	line := d.tail.String()
	d.tail.Reset()
	d.dispatch(line)
}

// dispatch classifies one complete line. Trace wins over progress; a line
// matching neither grammar is dropped, never an error.
func (d *Demux) dispatch(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if d.handler.OnTrace != nil {
		if trace, ok := ParseTraceLine(line); ok {
			d.handler.OnTrace(trace)
			return
		}
	}

	if d.handler.OnProgress == nil {
		return
	}
	if ev, ok := ParseLine(line); ok {
		d.handler.OnProgress(ev)
	}
}
