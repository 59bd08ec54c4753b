// Package junk removes machine-generated files that carving tools routinely
// resurrect and nobody wants back: compiled caches, generated documentation,
// unpacked system headers and truncated archives.
package junk

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"postrecovery/logging"
	"postrecovery/types"
)

// contentMarker ties a filename suffix to a byte sequence identifying
// machine-generated content.
type contentMarker struct {
	suffix string
	marker []byte
}

var markers = []contentMarker{
	{".xml", []byte("<!-- Created automatically by update-mime-database")},
	{".html", []byte("\n<!-- Generated by javadoc")},
	{".c", []byte("\n#define _GLIBCXX_")},
	{".c", []byte("\n#define _BOOST_")},
}

// RemoveKnownJunk deletes recognized junk files among the surviving records
// and returns the number removed. A file that cannot be inspected is kept.
func RemoveKnownJunk(records []*types.FileRecord) int {
	removed := 0
	for _, record := range records {
		if record.Removed || !isJunk(record.Path) {
			continue
		}
		if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
			logging.LogWarning("cannot remove junk file %s: %v", record.Path, err)
			continue
		}
		record.MarkRemoved()
		logging.LogFileRemoved("junk", record.Path)
		removed++
	}
	return removed
}

func isJunk(path string) bool {
	lower := strings.ToLower(path)

	// Python bytecode is always regenerable
	if strings.HasSuffix(lower, ".pyc") {
		return true
	}

	for _, m := range markers {
		if !strings.HasSuffix(lower, m.suffix) {
			continue
		}
		if found, err := fileContains(path, m.marker); err == nil && found {
			return true
		}
	}

	// Carving tends to truncate gzip streams; an unreadable .gz is a lost cause
	if strings.HasSuffix(lower, ".gz") && !strings.HasSuffix(lower, ".html.gz") {
		return !gzipReadable(path)
	}

	return false
}

// fileContains scans a file for a byte sequence without loading it whole
func fileContains(path string, marker []byte) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	const chunkSize = 256 * 1024
	overlap := len(marker) - 1
	if overlap < 0 {
		overlap = 0
	}

	buf := make([]byte, chunkSize+overlap)
	kept := 0
	for {
		n, err := f.Read(buf[kept:])
		if n > 0 {
			if bytes.Contains(buf[:kept+n], marker) {
				return true, nil
			}
			// Keep the tail so a marker split across reads is still found
			kept = copy(buf, tail(buf[:kept+n], overlap))
		}
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}

func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}

// gzipReadable reports whether the file opens as a gzip stream
func gzipReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return false
	}
	zr.Close()
	return true
}
