package renamer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBencodeNameField(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		data := []byte("d8:announce30:http://tracker.example.invalid4:name11:My Data Set12:piece lengthi262144ee")
		name, ok := bencodeNameField(data)
		require.True(t, ok)
		assert.Equal(t, "My Data Set", string(name))
	})

	t.Run("no name field", func(t *testing.T) {
		_, ok := bencodeNameField([]byte("d8:announce3:abce"))
		assert.False(t, ok)
	})

	t.Run("length runs past the data", func(t *testing.T) {
		_, ok := bencodeNameField([]byte("4:name99:short"))
		assert.False(t, ok)
	})

	t.Run("missing colon", func(t *testing.T) {
		_, ok := bencodeNameField([]byte("4:name11"))
		assert.False(t, ok)
	})

	t.Run("zero length", func(t *testing.T) {
		_, ok := bencodeNameField([]byte("4:name0:"))
		assert.False(t, ok)
	})
}

func TestTorrentName(t *testing.T) {
	dir := t.TempDir()

	t.Run("name before the piece hashes", func(t *testing.T) {
		path := filepath.Join(dir, "f1234567.torrent")
		data := []byte("d4:infod4:name9:Great ISO12:piece lengthi262144e6:pieces20:\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10\x11\x12\x13\x14ee")
		require.NoError(t, os.WriteFile(path, data, 0644))

		assert.Equal(t, "Great ISO.torrent", torrentName(path))
	})

	t.Run("truncated carve still yields a name", func(t *testing.T) {
		path := filepath.Join(dir, "f7654321.torrent")
		data := []byte("d4:infod4:name8:Cut Shor")
		require.NoError(t, os.WriteFile(path, data, 0644))

		assert.Equal(t, "Cut Shor.torrent", torrentName(path))
	})

	t.Run("nameless fragment", func(t *testing.T) {
		path := filepath.Join(dir, "f1111111.torrent")
		require.NoError(t, os.WriteFile(path, []byte("d8:announce3:abce"), 0644))

		assert.Equal(t, "", torrentName(path))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Equal(t, "", torrentName(filepath.Join(dir, "nope.torrent")))
	})
}
