package porcelain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus_branchHeadersAndEntries(t *testing.T) {
	output := "# branch.head main\n" +
		"# branch.ab +2 -1\n" +
		"1 M. N... 100644 100644 100644 hash hash file.txt\n" +
		"? new.txt\n"

	st := ParseStatus(output)

	assert.Equal(t, "main", st.Branch)
	assert.Equal(t, 2, st.Ahead)
	assert.Equal(t, 1, st.Behind)

	require.Len(t, st.Entries, 2)
	assert.Equal(t, "file.txt", st.Entries[0].Path)
	assert.Equal(t, byte('M'), st.Entries[0].IndexState)
	assert.Equal(t, byte('.'), st.Entries[0].WorkdirState)
	assert.Equal(t, "new.txt", st.Entries[1].Path)
	assert.Equal(t, byte('?'), st.Entries[1].IndexState)
	assert.Equal(t, byte('?'), st.Entries[1].WorkdirState)
}

func TestParseStatus_upstream(t *testing.T) {
	st := ParseStatus("# branch.head feature\n# branch.upstream origin/feature\n")
	assert.Equal(t, "feature", st.Branch)
	assert.Equal(t, "origin/feature", st.Upstream)
}

func TestParseStatus_detachedHead(t *testing.T) {
	st := ParseStatus("# branch.head (detached)\n")
	assert.Equal(t, "(detached)", st.Branch)
}

func TestParseStatus_renameEntry(t *testing.T) {
	line := "2 R. N... 100644 100644 100644 abc def R100 new-name.txt\told-name.txt\n"

	st := ParseStatus(line)

	require.Len(t, st.Entries, 1)
	entry := st.Entries[0]
	assert.Equal(t, "new-name.txt", entry.Path)
	assert.Equal(t, "old-name.txt", entry.OriginalPath)
	assert.Equal(t, byte('R'), entry.IndexState)
	assert.Equal(t, byte('.'), entry.WorkdirState)
}

func TestParseStatus_unmergedEntry(t *testing.T) {
	line := "u UU N... 100644 100644 100644 100644 h1 h2 h3 conflicted.go\n"

	st := ParseStatus(line)

	require.Len(t, st.Entries, 1)
	assert.Equal(t, "conflicted.go", st.Entries[0].Path)
	assert.Equal(t, byte('U'), st.Entries[0].IndexState)
	assert.Equal(t, byte('U'), st.Entries[0].WorkdirState)
	assert.Empty(t, st.Entries[0].OriginalPath)
}

func TestParseStatus_ignoredEntry(t *testing.T) {
	st := ParseStatus("! build/out.bin\n")
	require.Len(t, st.Entries, 1)
	assert.Equal(t, "build/out.bin", st.Entries[0].Path)
	assert.Equal(t, byte('!'), st.Entries[0].IndexState)
	assert.Equal(t, byte('!'), st.Entries[0].WorkdirState)
}

func TestParseStatus_pathsWithSpaces(t *testing.T) {
	st := ParseStatus("1 .M N... 100644 100644 100644 h1 h2 my file.txt\n? another file.md\n")
	require.Len(t, st.Entries, 2)
	assert.Equal(t, "my file.txt", st.Entries[0].Path)
	assert.Equal(t, "another file.md", st.Entries[1].Path)
}

func TestParseStatus_preservesEntryOrder(t *testing.T) {
	output := "? c.txt\n" +
		"1 M. N... 100644 100644 100644 h h a.txt\n" +
		"? b.txt\n"

	st := ParseStatus(output)

	require.Len(t, st.Entries, 3)
	assert.Equal(t, "c.txt", st.Entries[0].Path)
	assert.Equal(t, "a.txt", st.Entries[1].Path)
	assert.Equal(t, "b.txt", st.Entries[2].Path)
}

func TestParseStatus_unknownLinesIgnored(t *testing.T) {
	output := "# branch.oid abcdef\n" +
		"x totally made up\n" +
		"? real.txt\n"

	st := ParseStatus(output)
	require.Len(t, st.Entries, 1)
	assert.Equal(t, "real.txt", st.Entries[0].Path)
}

func TestParseStatus_malformedAheadBehindIgnored(t *testing.T) {
	st := ParseStatus("# branch.ab nonsense\n")
	assert.Zero(t, st.Ahead)
	assert.Zero(t, st.Behind)
}

func TestParseStatus_emptyInput(t *testing.T) {
	st := ParseStatus("")
	assert.Empty(t, st.Entries)
	assert.Empty(t, st.Branch)
}
