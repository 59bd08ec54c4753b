// Package renamer rebuilds meaningful filenames from metadata embedded in the
// files themselves: EXIF for photos, tags for audio and video, document info
// for PDFs and office documents, page titles for HTML, name tables for fonts,
// the name field for torrents. Carving tools hand back files named
// f1234567.jpg; the content usually knows better.
package renamer

import (
	"fmt"
	"path/filepath"
	"strings"

	"postrecovery/logging"
	"postrecovery/types"
	"postrecovery/utils"

	exiftool "github.com/barasher/go-exiftool"
)

var pictureExtensions = extensionSet(
	".jpg", ".jpeg", ".jpe", ".png", ".gif", ".bmp", ".dib", ".webp",
	".tif", ".tiff", ".heic", ".psd", ".jp2", ".jxr", ".ico", ".xcf",
	".pcx", ".tga", ".dds", ".mng", ".apng",
)

var audioExtensions = extensionSet(
	".mp3", ".mp2", ".mp1", ".mpc", ".m4a", ".m4b", ".m4p", ".mka",
	".wma", ".wav", ".wv", ".flac", ".aac", ".ac3", ".ape", ".au",
	".dts", ".oga", ".ogg", ".tta", ".ra", ".spx", ".mid", ".midi",
)

var videoExtensions = extensionSet(
	".mp4", ".m4v", ".mkv", ".mov", ".avi", ".flv", ".wmv", ".mpg",
	".mpeg", ".ogv", ".qt", ".rmvb", ".viv", ".mqv", ".webm",
)

var fontExtensions = extensionSet(
	".ttf", ".otf", ".ttc", ".otc", ".tte", ".dfont", ".woff",
)

func extensionSet(extensions ...string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[ext] = true
	}
	return set
}

// Renamer holds a running exiftool instance for metadata extraction. Close
// must be called to stop the helper process.
type Renamer struct {
	et *exiftool.Exiftool
}

// New starts the exiftool helper. An absent exiftool binary is a whole-phase
// setup failure, reported to the caller rather than per file.
func New() (*Renamer, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("cannot start exiftool: %v", err)
	}
	return &Renamer{et: et}, nil
}

// Close stops the exiftool helper
func (r *Renamer) Close() {
	if r.et != nil {
		r.et.Close()
		r.et = nil
	}
}

// Apply reconstructs filenames from embedded metadata for every surviving
// record, updating record paths in place, and returns the number of files
// renamed. Files whose metadata yields nothing usable keep their names; no
// rename ever overwrites an existing file.
func (r *Renamer) Apply(records []*types.FileRecord) int {
	renamed := 0
	for _, record := range records {
		if record.Removed {
			continue
		}

		newBase := r.suggestName(record.Path)
		if newBase == "" || newBase == filepath.Base(record.Path) {
			continue
		}

		newPath, err := utils.MoveNotReplacing(record.Path, filepath.Join(filepath.Dir(record.Path), newBase))
		if err != nil {
			logging.LogWarning("cannot rename %s: %v", record.Path, err)
			continue
		}
		logging.LogFileRenamed(record.Path, newPath)
		record.Path = newPath
		renamed++
	}
	return renamed
}

// suggestName returns a metadata-derived basename for the file, or "" when
// the file type is not handled or the metadata yields nothing usable
func (r *Renamer) suggestName(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case pictureExtensions[ext]:
		return r.imageName(path, ext)
	case audioExtensions[ext]:
		return r.songName(path, ext)
	case videoExtensions[ext]:
		return r.videoName(path, ext)
	case ext == ".pdf":
		return r.documentName(path)
	case officeExtensions[ext]:
		return r.officeName(path, ext)
	case htmlExtensions[ext]:
		return r.htmlName(path, ext)
	case ext == ".gz" && strings.HasSuffix(strings.ToLower(path), ".html.gz"):
		return htmlGzName(path)
	case fontExtensions[ext]:
		return fontName(path, ext)
	case ext == ".torrent":
		return torrentName(path)
	}
	return ""
}

