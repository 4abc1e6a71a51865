// Package progress turns stderr lines from a running git invocation into
// structured progress events.
//
// Two independent grammars are recognized: git's own phase progress
// ("Receiving objects:  50% (5/10)") and the large-file transfer progress
// emitted by the LFS sidecar, which historically exists in two textual
// variants (an inline stderr line and a progress-file line). Parsing is
// strictly best-effort: a line that matches no grammar produces no event and
// no error, so new output from future git versions passes through harmlessly.
package progress

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Event is a progress event parsed from one stderr or sidecar line.
// Concrete types are ToolProgress and TransferProgress.
type Event interface {
	isEvent()
}

// ToolProgress reports one of git's own progress phases.
type ToolProgress struct {
	// Phase is the human label, e.g. "Receiving objects".
	Phase   string
	Current int
	Total   int
	Percent int
	// Message is the full trimmed line the event was parsed from.
	Message string
}

func (ToolProgress) isEvent() {}

// Direction distinguishes transfer progress flows.
type Direction string

const (
	DirectionDownload Direction = "download"
	DirectionUpload   Direction = "upload"
	DirectionCheckout Direction = "checkout"
)

// PercentUnknown marks a TransferProgress whose source variant does not
// carry a percentage.
const PercentUnknown = -1

// TransferProgress reports large-file transfer progress. Depending on which
// textual variant produced it, some fields are unavailable: the stderr-line
// form has no byte total, the sidecar form has no percentage or bitrate.
type TransferProgress struct {
	Direction  Direction
	BytesSoFar int64
	// BytesTotal is 0 when the variant does not report it.
	BytesTotal int64
	// Bitrate is the raw rate text, e.g. "1.2 MB/s"; empty if absent.
	Bitrate        string
	FilesCompleted int
	FilesTotal     int
	// Percent is PercentUnknown for the sidecar variant.
	Percent int
	// Path is the file being transferred; only the sidecar variant has it.
	Path string
}

func (TransferProgress) isEvent() {}

var (
	// "Receiving objects:  50% (5/10), 1.2 MiB | 2.3 MiB/s"
	toolProgressRe = regexp.MustCompile(`^(.+?):\s+(\d+)% \((\d+)/(\d+)\)`)

	// "Downloading LFS objects:  66% (2/3), 2.0 MB | 1.2 MB/s"
	transferStderrRe = regexp.MustCompile(
		`^(Uploading|Downloading) LFS objects:\s+(\d+)% \((\d+)/(\d+)\), ([\d.]+) ([KMGT]?i?B)(?: \| (\S+ ?\S*/s))?`)

	// "download 1/20 180/12340 big file.dat"
	transferSidecarRe = regexp.MustCompile(
		`^(download|upload|checkout) (\d+)/(\d+) (\d+)/(\d+) (.+)$`)
)

// ParseLine attempts both grammars against one trimmed line, trying the
// transfer grammar first because it is the more specific of the two. At most
// one event is returned; unmatched lines yield (nil, false).
func ParseLine(line string) (Event, bool) {
	if ev, ok := ParseTransferLine(line); ok {
		return ev, true
	}
	if ev, ok := ParseToolLine(line); ok {
		return ev, true
	}
	return nil, false
}

// ParseToolLine parses git's native phase progress grammar.
func ParseToolLine(line string) (Event, bool) {
	m := toolProgressRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	percent, _ := strconv.Atoi(m[2])
	current, _ := strconv.Atoi(m[3])
	total, _ := strconv.Atoi(m[4])
	return ToolProgress{
		Phase:   m[1],
		Percent: percent,
		Current: current,
		Total:   total,
		Message: line,
	}, true
}

// ParseTransferLine parses both transfer-progress variants, the inline
// stderr form first.
func ParseTransferLine(line string) (Event, bool) {
	if m := transferStderrRe.FindStringSubmatch(line); m != nil {
		direction := DirectionDownload
		if m[1] == "Uploading" {
			direction = DirectionUpload
		}
		percent, _ := strconv.Atoi(m[2])
		completed, _ := strconv.Atoi(m[3])
		total, _ := strconv.Atoi(m[4])
		return TransferProgress{
			Direction:      direction,
			Percent:        percent,
			FilesCompleted: completed,
			FilesTotal:     total,
			BytesSoFar:     parseByteSize(m[5], m[6]),
			Bitrate:        m[7],
		}, true
	}

	if m := transferSidecarRe.FindStringSubmatch(line); m != nil {
		completed, _ := strconv.Atoi(m[2])
		total, _ := strconv.Atoi(m[3])
		soFar, _ := strconv.ParseInt(m[4], 10, 64)
		totalBytes, _ := strconv.ParseInt(m[5], 10, 64)
		return TransferProgress{
			Direction:      Direction(m[1]),
			FilesCompleted: completed,
			FilesTotal:     total,
			BytesSoFar:     soFar,
			BytesTotal:     totalBytes,
			Percent:        PercentUnknown,
			Path:           m[6],
		}, true
	}

	return nil, false
}

// byteUnits covers the labels git and git-lfs print. Both binary and
// decimal labels are treated as 1024-based, matching how the tools compute
// the numbers they print.
var byteUnits = map[string]float64{
	"B":   1,
	"KB":  1 << 10,
	"KiB": 1 << 10,
	"MB":  1 << 20,
	"MiB": 1 << 20,
	"GB":  1 << 30,
	"GiB": 1 << 30,
	"TB":  1 << 40,
	"TiB": 1 << 40,
}

func parseByteSize(number, unit string) int64 {
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0
	}
	factor, ok := byteUnits[unit]
	if !ok {
		return 0
	}
	return int64(math.Round(value * factor))
}

// traceRe matches GIT_TRACE output, which is prefixed with a wall-clock
// timestamp: "11:22:33.444555 git.c:455 trace: built-in: git status".
var traceRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d+)\s+(.+)$`)

// Trace is one GIT_TRACE line. Trace lines are mutually exclusive with
// progress lines.
type Trace struct {
	// Clock is the raw HH:MM:SS.micros prefix git printed.
	Clock string
	// Text is the remainder of the line.
	Text string
}

// ParseTraceLine matches the fixed timestamp-prefixed trace pattern.
func ParseTraceLine(line string) (Trace, bool) {
	m := traceRe.FindStringSubmatch(line)
	if m == nil {
		return Trace{}, false
	}
	return Trace{Clock: m[1], Text: strings.TrimSpace(m[2])}, true
}
