package renamer

import (
	"regexp"
	"strings"

	"postrecovery/logging"
	"postrecovery/textnorm"

	exiftool "github.com/barasher/go-exiftool"
)

// extract runs exiftool on one file; a per-file extraction failure is logged
// and swallowed, never propagated
func (r *Renamer) extract(path string) *exiftool.FileMetadata {
	metas := r.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return nil
	}
	if metas[0].Err != nil {
		logging.DebugLog("metadata extraction failed for %s: %v", path, metas[0].Err)
		return nil
	}
	return &metas[0]
}

// stringField returns the first non-empty value among the given tags
func stringField(meta *exiftool.FileMetadata, keys ...string) string {
	for _, key := range keys {
		if value, err := meta.GetString(key); err == nil {
			if value = strings.TrimSpace(value); value != "" {
				return value
			}
		}
	}
	return ""
}

var parenthesized = regexp.MustCompile(`(\s+|\(.*?\))`)

// imageName builds "<CameraModel> <Date>.<ext>" from EXIF, falling back to
// "<Author> - <Title>.<ext>" for images without a usable timestamp
func (r *Renamer) imageName(path, ext string) string {
	meta := r.extract(path)
	if meta == nil {
		return ""
	}

	model := stringField(meta, "Model", "UniqueCameraModel", "LocalizedCameraModel", "Make")
	model = parenthesized.ReplaceAllString(model, "")

	date := stringField(meta, "DateTimeOriginal", "CreateDate", "ModifyDate")
	date = strings.ReplaceAll(date, ":", "-")

	if len(date) >= 8 {
		return finishName(model+" "+date, ext)
	}

	author := stringField(meta, "Artist", "XPAuthor")
	title := stringField(meta, "ImageDescription", "XPTitle")
	if len(title) < 2 {
		return ""
	}
	if author != "" {
		title = author + " - " + title
	}
	return finishName(title, ext)
}

// songName builds "<Artist> - <Album> - <Title> [<bitrate>].<ext>" from tags
func (r *Renamer) songName(path, ext string) string {
	meta := r.extract(path)
	if meta == nil {
		return ""
	}
	return r.songNameFromMeta(meta, ext)
}

func (r *Renamer) songNameFromMeta(meta *exiftool.FileMetadata, ext string) string {
	title := stringField(meta, "Title", "TrackName")
	if title == "" {
		return ""
	}

	name := title
	if album := stringField(meta, "Album"); album != "" {
		name = album + " - " + name
	}
	if artist := stringField(meta, "Artist", "Performer", "Composer", "AlbumArtist"); artist != "" {
		name = artist + " - " + name
	}
	if bitrate := stringField(meta, "AudioBitrate", "AvgBitrate"); bitrate != "" {
		name += " [" + bitrate + "]"
	}

	return finishName(name, ext)
}

// videoName builds "<Artist> - <Title> [<resolution>].<ext>" from tags. An
// .mp4 with no video stream is really an .m4a and is named as a song.
func (r *Renamer) videoName(path, ext string) string {
	meta := r.extract(path)
	if meta == nil {
		return ""
	}

	height := stringField(meta, "ImageHeight")
	if height == "" && ext == ".mp4" {
		return r.songNameFromMeta(meta, ".m4a")
	}

	title := stringField(meta, "Title", "MovieName", "TrackName")
	if title == "" {
		return ""
	}
	if artist := stringField(meta, "Artist", "Director", "Composer", "Author"); artist != "" {
		title = artist + " - " + title
	}
	if tag := resolutionTag(height); tag != "" {
		title += " [" + tag + "]"
	}

	return finishName(title, ext)
}

// documentName builds "<Author> - <Title>.pdf" from the document info
func (r *Renamer) documentName(path string) string {
	meta := r.extract(path)
	if meta == nil {
		return ""
	}

	title := stringField(meta, "Title")
	if len(title) < 2 {
		return ""
	}
	if author := stringField(meta, "Author"); author != "" {
		title = author + " - " + title
	}

	return finishName(title, ".pdf")
}

// resolutionTag maps a pixel height to the usual shorthand
func resolutionTag(height string) string {
	h := 0
	for _, c := range height {
		if c < '0' || c > '9' {
			break
		}
		h = h*10 + int(c-'0')
	}

	switch {
	case h > 2000:
		return "4K"
	case h > 800:
		return "1080p"
	case h > 500:
		return "720p"
	case h > 380:
		return "480p"
	case h > 250:
		return "360p"
	}
	return ""
}

// finishName sanitizes a metadata-derived name and appends the extension;
// names too short to mean anything are discarded
func finishName(name, ext string) string {
	name = textnorm.SafeFilename(name)
	if len(name) < 2 {
		return ""
	}
	return name + ext
}
