package renamer

import (
	"compress/gzip"
	"io"
	"os"
	"regexp"

	"postrecovery/textnorm"
)

var officeExtensions = extensionSet(
	".doc", ".xls", ".ppt", ".docx", ".xlsx", ".pptx",
	".odt", ".ods", ".odp", ".odg", ".fodt", ".fods", ".fodp", ".fodg",
)

var htmlExtensions = extensionSet(".html", ".htm", ".xhtml")

// officeName builds "<Title> (<Author>).<ext>" from the document properties
// of OLE, OpenXML and OpenDocument files
func (r *Renamer) officeName(path, ext string) string {
	meta := r.extract(path)
	if meta == nil {
		return ""
	}

	title := stringField(meta, "Title")
	if len(title) < 2 {
		return ""
	}
	if author := stringField(meta, "Creator", "Author", "InitialCreator", "LastModifiedBy"); author != "" {
		title += " (" + author + ")"
	}

	return finishName(title, ext)
}

// htmlName names an HTML page after its title
func (r *Renamer) htmlName(path, ext string) string {
	meta := r.extract(path)
	if meta == nil {
		return ""
	}
	return finishName(stringField(meta, "Title"), ext)
}

var (
	htmlTitleTag  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	htmlMetaTitle = regexp.MustCompile(`(?is)<meta\s+(?:name="(?:parsely-)?title"|property="og:title")\s+content="([^"]+)"`)
)

// htmlGzName names a gzipped HTML page after its title. The page head is read
// directly from the stream; exiftool cannot see inside the archive.
func htmlGzName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return ""
	}
	defer zr.Close()

	head := make([]byte, 256*1024)
	n, err := io.ReadFull(zr, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ""
	}
	content := textnorm.DecodeBytes(head[:n])

	title := ""
	if m := htmlTitleTag.FindStringSubmatch(content); m != nil {
		title = m[1]
	} else if m := htmlMetaTitle.FindStringSubmatch(content); m != nil {
		title = m[1]
	}

	name := textnorm.SafeFilename(title)
	if len(name) < 2 {
		return ""
	}
	return name + ".html.gz"
}
