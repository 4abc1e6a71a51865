// Package porcelain parses git's stable, script-friendly output formats:
// porcelain v2 status, the NUL-delimited commit log format, and the diff
// summary layouts.
//
// All parsers here are best-effort and never return errors. Lines that do
// not match a known shape are dropped, which keeps the parsers forward
// compatible with output added by future git versions. Whether the
// underlying command actually succeeded is the runner's concern, not the
// parser's.
package porcelain

import (
	"regexp"
	"strconv"
	"strings"
)

// StatusEntry is one changed, unmerged, untracked, or ignored path.
type StatusEntry struct {
	Path string

	// IndexState and WorkdirState are the two characters of the porcelain
	// XY field. Untracked entries carry '?' in both, ignored entries '!'.
	IndexState   byte
	WorkdirState byte

	// OriginalPath is set only for renames and copies.
	OriginalPath string
}

// Status is the parsed result of a porcelain v2 status invocation.
type Status struct {
	// Branch is the current branch name, or the detached-HEAD sentinel
	// "(detached)" as emitted by git.
	Branch   string
	Upstream string
	Ahead    int
	Behind   int

	// Entries preserve input line order.
	Entries []StatusEntry
}

var branchABRe = regexp.MustCompile(`^\+(\d+) -(\d+)$`)

// ParseStatus parses `git status --porcelain=v2 --branch` output. Unknown
// lines are ignored.
func ParseStatus(output string) Status {
	var st Status

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "# "):
			parseStatusHeader(line[2:], &st)
		case strings.HasPrefix(line, "1 "):
			if entry, ok := parseChangedEntry(line[2:]); ok {
				st.Entries = append(st.Entries, entry)
			}
		case strings.HasPrefix(line, "2 "):
			if entry, ok := parseRenamedEntry(line[2:]); ok {
				st.Entries = append(st.Entries, entry)
			}
		case strings.HasPrefix(line, "u "):
			if entry, ok := parseUnmergedEntry(line[2:]); ok {
				st.Entries = append(st.Entries, entry)
			}
		case strings.HasPrefix(line, "? "):
			st.Entries = append(st.Entries, StatusEntry{
				Path:         line[2:],
				IndexState:   '?',
				WorkdirState: '?',
			})
		case strings.HasPrefix(line, "! "):
			st.Entries = append(st.Entries, StatusEntry{
				Path:         line[2:],
				IndexState:   '!',
				WorkdirState: '!',
			})
		}
	}

	return st
}

func parseStatusHeader(rest string, st *Status) {
	key, value, found := strings.Cut(rest, " ")
	if !found {
		return
	}
	switch key {
	case "branch.head":
		st.Branch = value
	case "branch.upstream":
		st.Upstream = value
	case "branch.ab":
		if m := branchABRe.FindStringSubmatch(value); m != nil {
			st.Ahead, _ = strconv.Atoi(m[1])
			st.Behind, _ = strconv.Atoi(m[2])
		}
	}
}

// parseChangedEntry handles ordinary changed entries:
//
//	<XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>
//
// The path is everything after the eighth field and may contain spaces.
func parseChangedEntry(rest string) (StatusEntry, bool) {
	fields, path, ok := splitFields(rest, 7)
	if !ok {
		return StatusEntry{}, false
	}
	xy := fields[0]
	if len(xy) != 2 {
		return StatusEntry{}, false
	}
	return StatusEntry{
		Path:         path,
		IndexState:   xy[0],
		WorkdirState: xy[1],
	}, true
}

// parseRenamedEntry handles rename/copy entries:
//
//	<XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path><TAB><origPath>
func parseRenamedEntry(rest string) (StatusEntry, bool) {
	fields, paths, ok := splitFields(rest, 8)
	if !ok {
		return StatusEntry{}, false
	}
	xy := fields[0]
	if len(xy) != 2 {
		return StatusEntry{}, false
	}
	newPath, origPath, found := strings.Cut(paths, "\t")
	if !found {
		return StatusEntry{}, false
	}
	return StatusEntry{
		Path:         newPath,
		IndexState:   xy[0],
		WorkdirState: xy[1],
		OriginalPath: origPath,
	}, true
}

// parseUnmergedEntry handles unmerged entries:
//
//	<XY> <sub> <m1> <m2> <m3> <mW> <h1> <h2> <h3> <path>
func parseUnmergedEntry(rest string) (StatusEntry, bool) {
	fields, path, ok := splitFields(rest, 9)
	if !ok {
		return StatusEntry{}, false
	}
	xy := fields[0]
	if len(xy) != 2 {
		return StatusEntry{}, false
	}
	return StatusEntry{
		Path:         path,
		IndexState:   xy[0],
		WorkdirState: xy[1],
	}, true
}

// splitFields splits off n space-separated fields and returns them together
// with the untouched remainder. Returns ok=false when fewer than n fields
// precede the remainder.
func splitFields(s string, n int) (fields []string, rest string, ok bool) {
	fields = make([]string, 0, n)
	rest = s
	for i := 0; i < n; i++ {
		field, remainder, found := strings.Cut(rest, " ")
		if !found {
			return nil, "", false
		}
		fields = append(fields, field)
		rest = remainder
	}
	if rest == "" {
		return nil, "", false
	}
	return fields, rest, true
}
