package porcelain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiff_nameStatus(t *testing.T) {
	output := "M\tmain.go\n" +
		"A\tnew.go\n" +
		"D\tgone.go\n" +
		"T\tsymlink\n" +
		"U\tconflicted.go\n"

	d := ParseDiff(output, DiffModeNameStatus)

	require.Len(t, d.Entries, 5)
	assert.Equal(t, DiffEntry{Path: "main.go", Status: DiffModified}, d.Entries[0])
	assert.Equal(t, DiffEntry{Path: "new.go", Status: DiffAdded}, d.Entries[1])
	assert.Equal(t, DiffEntry{Path: "gone.go", Status: DiffDeleted}, d.Entries[2])
	assert.Equal(t, DiffEntry{Path: "symlink", Status: DiffTypeChanged}, d.Entries[3])
	assert.Equal(t, DiffEntry{Path: "conflicted.go", Status: DiffUnmerged}, d.Entries[4])
}

func TestParseDiff_nameStatusRename(t *testing.T) {
	d := ParseDiff("R100\told.txt\tnew.txt\n", DiffModeNameStatus)

	require.Len(t, d.Entries, 1)
	assert.Equal(t, DiffRenamed, d.Entries[0].Status)
	assert.Equal(t, "old.txt", d.Entries[0].OldPath)
	assert.Equal(t, "new.txt", d.Entries[0].Path)
}

func TestParseDiff_nameStatusCopy(t *testing.T) {
	d := ParseDiff("C75\ta.txt\tb.txt\n", DiffModeNameStatus)

	require.Len(t, d.Entries, 1)
	assert.Equal(t, DiffCopied, d.Entries[0].Status)
	assert.Equal(t, "a.txt", d.Entries[0].OldPath)
	assert.Equal(t, "b.txt", d.Entries[0].Path)
}

func TestParseDiff_nameStatusUnknownLetter(t *testing.T) {
	d := ParseDiff("X\tweird.txt\n", DiffModeNameStatus)
	require.Len(t, d.Entries, 1)
	assert.Equal(t, DiffUnknown, d.Entries[0].Status)
}

func TestParseDiff_nameStatusRenameMissingPathDropped(t *testing.T) {
	d := ParseDiff("R100\tonly-one-path.txt\n", DiffModeNameStatus)
	assert.Empty(t, d.Entries)
}

func TestParseDiff_nameOnly(t *testing.T) {
	d := ParseDiff("a.go\nsub dir/b.go\n", DiffModeNameOnly)

	require.Len(t, d.Entries, 2)
	assert.Equal(t, DiffEntry{Path: "a.go", Status: DiffModified}, d.Entries[0])
	assert.Equal(t, DiffEntry{Path: "sub dir/b.go", Status: DiffModified}, d.Entries[1])
}

func TestParseDiff_numstat(t *testing.T) {
	d := ParseDiff("10\t3\tmain.go\n-\t-\timage.png\n", DiffModeNumstat)

	require.Len(t, d.Entries, 2)
	assert.Equal(t, 10, d.Entries[0].Additions)
	assert.Equal(t, 3, d.Entries[0].Deletions)
	assert.Equal(t, "main.go", d.Entries[0].Path)

	// Binary files report "-" in both columns.
	assert.Equal(t, CountUnknown, d.Entries[1].Additions)
	assert.Equal(t, CountUnknown, d.Entries[1].Deletions)
	assert.Equal(t, "image.png", d.Entries[1].Path)
}

func TestParseDiff_numstatMalformedLinesSkipped(t *testing.T) {
	d := ParseDiff("not a numstat line\n5\t2\tok.go\n", DiffModeNumstat)
	require.Len(t, d.Entries, 1)
	assert.Equal(t, "ok.go", d.Entries[0].Path)
}

func TestParseDiff_unknownModeReturnsRawOnly(t *testing.T) {
	d := ParseDiff("raw patch text", DiffMode("patch"))
	assert.Equal(t, "raw patch text", d.Raw)
	assert.Empty(t, d.Entries)
}

func TestParseDiff_emptyInput(t *testing.T) {
	for _, mode := range []DiffMode{DiffModeNameStatus, DiffModeNameOnly, DiffModeNumstat} {
		d := ParseDiff("", mode)
		assert.Empty(t, d.Entries, "mode %s", mode)
	}
}
