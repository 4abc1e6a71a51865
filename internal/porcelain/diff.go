package porcelain

import (
	"strconv"
	"strings"
)

// DiffStatus is the single-letter change status git assigns to a path.
type DiffStatus string

const (
	DiffAdded       DiffStatus = "added"
	DiffDeleted     DiffStatus = "deleted"
	DiffModified    DiffStatus = "modified"
	DiffRenamed     DiffStatus = "renamed"
	DiffCopied      DiffStatus = "copied"
	DiffTypeChanged DiffStatus = "type-changed"
	DiffUnmerged    DiffStatus = "unmerged"
	DiffUnknown     DiffStatus = "unknown"
)

// CountUnknown marks additions/deletions for binary files, where numstat
// emits "-" instead of a number.
const CountUnknown = -1

// DiffEntry is one path-level change from a diff summary.
type DiffEntry struct {
	Path   string
	Status DiffStatus

	// OldPath is set only for renames and copies.
	OldPath string

	// Additions and Deletions are populated only by numstat mode;
	// CountUnknown for binary files.
	Additions int
	Deletions int
}

// DiffMode selects which textual layout a diff invocation produced.
type DiffMode string

const (
	DiffModeNameStatus DiffMode = "name-status"
	DiffModeNameOnly   DiffMode = "name-only"
	DiffModeNumstat    DiffMode = "numstat"
)

// Diff holds structured entries when the output mode is understood, and
// always carries the raw text so unknown modes stay usable.
type Diff struct {
	Raw     string
	Entries []DiffEntry
}

// ParseDiff parses diff summary output in the given mode. Modes other than
// name-status, name-only, and numstat return the raw text with no
// structured entries. Malformed lines are skipped.
func ParseDiff(output string, mode DiffMode) Diff {
	d := Diff{Raw: output}
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		var (
			entry DiffEntry
			ok    bool
		)
		switch mode {
		case DiffModeNameStatus:
			entry, ok = parseNameStatusLine(line)
		case DiffModeNameOnly:
			entry, ok = DiffEntry{Path: line, Status: DiffModified}, true
		case DiffModeNumstat:
			entry, ok = parseNumstatLine(line)
		}
		if ok {
			d.Entries = append(d.Entries, entry)
		}
	}
	return d
}

// statusFromLetter maps the first character of a name-status code.
func statusFromLetter(c byte) DiffStatus {
	switch c {
	case 'A':
		return DiffAdded
	case 'D':
		return DiffDeleted
	case 'M':
		return DiffModified
	case 'R':
		return DiffRenamed
	case 'C':
		return DiffCopied
	case 'T':
		return DiffTypeChanged
	case 'U':
		return DiffUnmerged
	default:
		return DiffUnknown
	}
}

// parseNameStatusLine handles `<code><TAB><path>` and, for renames/copies,
// `<code><score><TAB><oldPath><TAB><newPath>`.
func parseNameStatusLine(line string) (DiffEntry, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 || parts[0] == "" {
		return DiffEntry{}, false
	}

	status := statusFromLetter(parts[0][0])
	if status == DiffRenamed || status == DiffCopied {
		if len(parts) < 3 {
			return DiffEntry{}, false
		}
		return DiffEntry{
			Path:    parts[2],
			OldPath: parts[1],
			Status:  status,
		}, true
	}

	return DiffEntry{Path: parts[1], Status: status}, true
}

// parseNumstatLine handles `<additions><TAB><deletions><TAB><path>` where
// either numeric column may be "-" for binary files.
func parseNumstatLine(line string) (DiffEntry, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return DiffEntry{}, false
	}

	additions, ok := parseNumstatCount(parts[0])
	if !ok {
		return DiffEntry{}, false
	}
	deletions, ok := parseNumstatCount(parts[1])
	if !ok {
		return DiffEntry{}, false
	}

	return DiffEntry{
		Path:      parts[2],
		Status:    DiffModified,
		Additions: additions,
		Deletions: deletions,
	}, true
}

func parseNumstatCount(field string) (int, bool) {
	if field == "-" {
		return CountUnknown, true
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, false
	}
	return n, true
}
