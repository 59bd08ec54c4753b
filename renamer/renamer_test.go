package renamer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postrecovery/types"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
	return path
}

func TestFixCarverNames(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		fixed    bool
		wantBase string
	}{
		{"f1234567_report.pdf", true, "report.pdf"},
		{"f7654321_setup_exe", true, "setup.exe"},
		{"f1000000_library.dll", true, "library.dll"},
		{"f1000001_shell32_dll_mui", true, "shell32.dll.mui"},
		{"f2000000_archive_zip", true, "archive.zip"},
		// Untouched: too few digits, no embedded name, unrelated extension
		{"f123_report.pdf", false, ""},
		{"f1234567.pdf", false, ""},
		{"f1234567_notes.txt", false, ""},
		{"regular-name.pdf", false, ""},
	}

	var records []*types.FileRecord
	for _, tc := range tests {
		records = append(records, &types.FileRecord{Path: touch(t, dir, tc.name)})
	}

	fixed := FixCarverNames(records)

	wantFixed := 0
	for i, tc := range tests {
		if tc.fixed {
			wantFixed++
			assert.Equal(t, tc.wantBase, filepath.Base(records[i].Path), "input %s", tc.name)
		} else {
			assert.Equal(t, tc.name, filepath.Base(records[i].Path), "input %s must stay", tc.name)
		}
	}
	assert.Equal(t, wantFixed, fixed)
}

func TestFixCarverNames_SkipsRemoved(t *testing.T) {
	dir := t.TempDir()
	record := &types.FileRecord{Path: touch(t, dir, "f1234567_report.pdf"), Removed: true}
	assert.Equal(t, 0, FixCarverNames([]*types.FileRecord{record}))
	assert.Equal(t, "f1234567_report.pdf", filepath.Base(record.Path))
}

func TestResolutionTag(t *testing.T) {
	tests := []struct {
		height string
		want   string
	}{
		{"2160", "4K"},
		{"1080", "1080p"},
		{"720", "720p"},
		{"480", "480p"},
		{"360", "360p"},
		{"240", ""},
		{"", ""},
		{"1080 pixels", "1080p"},
		{"garbage", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, resolutionTag(tc.height), "height %q", tc.height)
	}
}

func TestFinishName(t *testing.T) {
	assert.Equal(t, "Artist - Title.mp3", finishName("Artist - Title", ".mp3"))
	assert.Equal(t, "AC - DC - Song.mp3", finishName("AC/DC - Song", ".mp3"))
	assert.Equal(t, "", finishName("x", ".mp3"), "single characters are not names")
	assert.Equal(t, "", finishName("  ", ".mp3"))
}
