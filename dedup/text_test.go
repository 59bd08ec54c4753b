package dedup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"postrecovery/inventory"
	"postrecovery/types"
)

var txtMatcher = inventory.Suffixes(".txt")

func TestRemoveTextDuplicates_NormalizedEquivalence(t *testing.T) {
	dir := t.TempDir()

	records := []*types.FileRecord{
		// Same text modulo line endings, case and trailing whitespace
		writeFile(t, dir, "a-crlf.txt", []byte("Hello\r\nWorld\r\n")),
		writeFile(t, dir, "b-lf.txt", []byte("hello\nworld")),
		writeFile(t, dir, "c-tabs.txt", []byte("\tHello \t World \n\n")),
		// Different text of a similar shape
		writeFile(t, dir, "d-other.txt", []byte("hella world")),
	}

	result := RemoveTextDuplicates(records, txtMatcher, DefaultOptions(), NopReporter{})

	assert.Equal(t, 2, result.Removed)
	assert.False(t, records[0].Removed, "first in path order within the class survives")
	assert.True(t, records[1].Removed)
	assert.True(t, records[2].Removed)
	assert.False(t, records[3].Removed, "distinct normalized content survives")

	_, err := os.Stat(records[1].Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveTextDuplicates_MatcherScopesPhase(t *testing.T) {
	dir := t.TempDir()

	records := []*types.FileRecord{
		writeFile(t, dir, "a.txt", []byte("shared content")),
		writeFile(t, dir, "b.dat", []byte("shared content")),
	}

	result := RemoveTextDuplicates(records, txtMatcher, DefaultOptions(), NopReporter{})

	assert.Equal(t, 0, result.Removed, "files outside the matcher never participate")
	assert.False(t, records[1].Removed)
}

func TestRemoveTextDuplicates_UnreadableNeverMatches(t *testing.T) {
	dir := t.TempDir()

	ghost1 := &types.FileRecord{Path: filepath.Join(dir, "ghost1.txt"), Extension: ".txt"}
	ghost2 := &types.FileRecord{Path: filepath.Join(dir, "ghost2.txt"), Extension: ".txt"}
	real := writeFile(t, dir, "real.txt", []byte("actual content"))

	result := RemoveTextDuplicates([]*types.FileRecord{ghost1, ghost2, real}, txtMatcher, DefaultOptions(), NopReporter{})

	// Two unreadable files share the sentinel feature but must not be treated
	// as duplicates of each other
	assert.Equal(t, 0, result.Removed)
	assert.False(t, ghost1.Removed)
	assert.False(t, ghost2.Removed)
	assert.False(t, real.Removed)
}

func TestRemoveTextDuplicates_EndpointPrefilter(t *testing.T) {
	dir := t.TempDir()

	// Equal normalized length, differing first byte: the endpoint check must
	// reject the pair before the full comparison
	records := []*types.FileRecord{
		writeFile(t, dir, "a.txt", []byte("abcdefgh")),
		writeFile(t, dir, "b.txt", []byte("xbcdefgh")),
	}

	result := RemoveTextDuplicates(records, txtMatcher, DefaultOptions(), NopReporter{})

	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, 0, result.FullComparisons)
}

func TestRemoveTextDuplicates_LongestFirstOrder(t *testing.T) {
	dir := t.TempDir()

	long := writeFile(t, dir, "long.txt", []byte("a much longer distinct text"))
	short1 := writeFile(t, dir, "short1.txt", []byte("same"))
	short2 := writeFile(t, dir, "short2.txt", []byte("SAME"))

	result := RemoveTextDuplicates([]*types.FileRecord{short2, long, short1}, txtMatcher, DefaultOptions(), NopReporter{})

	assert.Equal(t, 1, result.Removed)
	assert.False(t, long.Removed)
	assert.False(t, short1.Removed)
	assert.True(t, short2.Removed)
}
