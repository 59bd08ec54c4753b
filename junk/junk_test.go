package junk

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postrecovery/types"
)

func record(t *testing.T, dir, name string, content []byte) *types.FileRecord {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return &types.FileRecord{Path: path, Size: int64(len(content)), Extension: filepath.Ext(name)}
}

func gzipped(t *testing.T, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRemoveKnownJunk(t *testing.T) {
	dir := t.TempDir()

	pyc := record(t, dir, "module.pyc", []byte("\x16\x0d\x0d\x0a bytecode"))
	mimeXML := record(t, dir, "generated.xml",
		[]byte("<?xml?>\n<!-- Created automatically by update-mime-database -->\n<mime/>"))
	realXML := record(t, dir, "config.xml", []byte("<?xml?>\n<settings/>"))
	javadoc := record(t, dir, "index.html",
		[]byte("<html>\n<!-- Generated by javadoc (11) -->\n</html>"))
	realHTML := record(t, dir, "page.html", []byte("<html><body>hand written</body></html>"))
	glibcxxHeader := record(t, dir, "header.c",
		[]byte("// header\n#define _GLIBCXX_VECTOR 1\n"))
	realC := record(t, dir, "program.c", []byte("int main(void) { return 0; }\n"))

	truncatedGz := record(t, dir, "broken.gz", []byte("\x1f\x8b\x08 cut off mid-str"))
	validGz := record(t, dir, "fine.gz", gzipped(t, []byte("intact archive")))

	records := []*types.FileRecord{
		pyc, mimeXML, realXML, javadoc, realHTML, glibcxxHeader, realC, truncatedGz, validGz,
	}

	removed := RemoveKnownJunk(records)

	assert.Equal(t, 5, removed)
	assert.True(t, pyc.Removed)
	assert.True(t, mimeXML.Removed)
	assert.False(t, realXML.Removed)
	assert.True(t, javadoc.Removed)
	assert.False(t, realHTML.Removed)
	assert.True(t, glibcxxHeader.Removed)
	assert.False(t, realC.Removed)
	assert.True(t, truncatedGz.Removed)
	assert.False(t, validGz.Removed)

	_, err := os.Stat(pyc.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(validGz.Path)
	assert.NoError(t, err)
}

func TestRemoveKnownJunk_SkipsRemovedRecords(t *testing.T) {
	dir := t.TempDir()
	pyc := record(t, dir, "gone.pyc", []byte("x"))
	pyc.MarkRemoved()

	assert.Equal(t, 0, RemoveKnownJunk([]*types.FileRecord{pyc}))
}

func TestIsJunk_HTMLGzExempt(t *testing.T) {
	dir := t.TempDir()

	// Truncated .html.gz files are kept: a cut-off compressed page may still
	// hold recoverable text
	path := filepath.Join(dir, "page.html.gz")
	require.NoError(t, os.WriteFile(path, []byte("\x1f\x8b\x08 truncated"), 0644))
	assert.False(t, isJunk(path))
}

func TestFileContains_MarkerAcrossChunks(t *testing.T) {
	dir := t.TempDir()
	marker := []byte("\n#define _GLIBCXX_")

	// Place the marker across the chunk boundary so the overlap logic is the
	// only way to find it
	content := bytes.Repeat([]byte{'a'}, 256*1024-8)
	content = append(content, marker...)
	content = append(content, []byte(" 1")...)

	path := filepath.Join(dir, "big.c")
	require.NoError(t, os.WriteFile(path, content, 0644))

	found, err := fileContains(path, marker)
	require.NoError(t, err)
	assert.True(t, found)
}
