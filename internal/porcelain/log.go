package porcelain

import (
	"strconv"
	"strings"
)

// The log wire format packs ten fixed fields per commit, separated by NUL,
// with a 0x01 byte terminating each record. Both bytes are effectively
// impossible in ordinary commit metadata, but the body legitimately reuses
// the field separator as a paragraph marker and must be reassembled. Any
// change to the field order or the separators must be made here and in
// LogFormat together.
const (
	logFieldSep  = "\x00"
	logRecordSep = "\x01"

	// logFixedFields is the count of fields before the body begins.
	logFixedFields = 10
)

// LogFormat is the --pretty format string that produces the wire format
// ParseLog consumes.
const LogFormat = "--pretty=format:" +
	"%H%x00%h%x00%P%x00" +
	"%an%x00%ae%x00%at%x00" +
	"%cn%x00%ce%x00%ct%x00" +
	"%s%x00%b%x01"

// Signature identifies an author or committer.
type Signature struct {
	Name  string
	Email string
	// Time is unix seconds.
	Time int64
}

// Commit is one parsed log record.
type Commit struct {
	Hash       string
	AbbrevHash string
	// Parents is empty for a root commit.
	Parents   []string
	Author    Signature
	Committer Signature
	Subject   string
	Body      string
}

// ParseLog parses log output produced with LogFormat. Records with fewer
// than ten fields or a missing hash are dropped. Empty input yields an
// empty slice.
func ParseLog(output string) []Commit {
	if output == "" {
		return nil
	}

	var commits []Commit
	for _, record := range strings.Split(output, logRecordSep) {
		// git emits a newline between records; the terminator also leaves
		// an empty trailing fragment.
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		if commit, ok := parseLogRecord(record); ok {
			commits = append(commits, commit)
		}
	}
	return commits
}

func parseLogRecord(record string) (Commit, bool) {
	fields := strings.Split(record, logFieldSep)
	if len(fields) < logFixedFields {
		return Commit{}, false
	}
	if fields[0] == "" || fields[1] == "" {
		return Commit{}, false
	}

	// Everything past the fixed fields is the body. It was split apart
	// because the body may contain the field separator as a paragraph
	// marker; rejoin rather than truncate at the first occurrence.
	body := strings.Join(fields[logFixedFields:], logFieldSep)

	return Commit{
		Hash:       fields[0],
		AbbrevHash: fields[1],
		Parents:    splitParents(fields[2]),
		Author: Signature{
			Name:  fields[3],
			Email: fields[4],
			Time:  parseUnix(fields[5]),
		},
		Committer: Signature{
			Name:  fields[6],
			Email: fields[7],
			Time:  parseUnix(fields[8]),
		},
		Subject: fields[9],
		Body:    strings.TrimSpace(body),
	}, true
}

func splitParents(field string) []string {
	var parents []string
	for _, p := range strings.Split(field, " ") {
		if p != "" {
			parents = append(parents, p)
		}
	}
	return parents
}

func parseUnix(field string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	return n
}
