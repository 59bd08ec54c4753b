// Package sorter moves survivors into category subdirectories (Audio,
// Documents, Fonts, Pictures, Videos, Plain Text, Code, Misc), splits
// oversized categories into numbered chunks and sweeps away the empty
// directories the carver left behind.
package sorter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"postrecovery/inventory"
	"postrecovery/logging"
	"postrecovery/utils"
)

// MaxFilesPerDir caps how many files a category directory may hold before it
// is split into numbered subdirectories.
const MaxFilesPerDir = 250

// category pairs a directory name with the matcher selecting its files.
// Order matters: the first match wins.
type category struct {
	name    string
	matcher inventory.Matcher
}

var categories = []category{
	{"Plain Text", inventory.Suffixes(".txt", ".log", ".ini", ".cfg", ".srt", ".md")},
	{"Fonts", inventory.Suffixes(".ttf", ".otf", ".ttc", ".otc", ".tte", ".dfont", ".woff")},
	{"Videos", inventory.Suffixes(
		".avi", ".flv", ".wmv", ".m4v", ".mkv", ".mov", ".mp4", ".mpg", ".mpeg",
		".ogv", ".qt", ".rmvb", ".webm", ".viv", ".mqv")},
	{"Audio", inventory.Suffixes(
		".mp3", ".mp2", ".mp1", ".mpc", ".m4a", ".m4b", ".m4p", ".mka", ".wma",
		".wav", ".wv", ".flac", ".aac", ".ac3", ".ape", ".au", ".dts", ".oga",
		".ogg", ".tta", ".ra", ".spx", ".mid", ".midi", ".gsm", ".snd")},
	{"Documents", inventory.Suffixes(
		".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".odt",
		".ods", ".odp", ".odg", ".epub", ".mobi", ".djvu", ".djv", ".chm",
		".rtf", ".csv", ".tsv", ".html", ".htm", ".xhtml", ".css", ".ps", ".eps")},
	{"Pictures", inventory.Suffixes(
		".jpg", ".jpeg", ".jpe", ".png", ".gif", ".bmp", ".dib", ".webp",
		".tif", ".tiff", ".heic", ".psd", ".ico", ".icns", ".svg", ".svgz",
		".xcf", ".pcx", ".tga", ".dds", ".mng", ".apng", ".jp2", ".jxr", ".cur")},
	{"Code", inventory.Suffixes(
		".c", ".h", ".cpp", ".hpp", ".cc", ".cs", ".java", ".py", ".go", ".js",
		".ts", ".rb", ".php", ".sh", ".pl", ".pm", ".lua", ".rs", ".swift",
		".kt", ".scala", ".sql", ".vb", ".pas", ".asm", ".bat", ".cmd")},
}

// Sort moves every file under root into its category subdirectory, then
// splits categories holding more than MaxFilesPerDir files and removes the
// directories left empty. Returns the number of files moved.
func Sort(root string) int {
	// Collect first, move after: walking and moving at once would revisit
	// files in their new locations
	var files []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})

	for _, cat := range categories {
		os.Mkdir(filepath.Join(root, cat.name), 0755)
	}
	os.Mkdir(filepath.Join(root, "Misc"), 0755)

	moved := 0
	for _, file := range files {
		target := filepath.Join(root, categoryFor(file))
		if strings.HasPrefix(file, target+string(os.PathSeparator)) {
			continue // already sorted, possibly inside a numbered chunk
		}
		if _, err := utils.MoveNotReplacing(file, filepath.Join(target, filepath.Base(file))); err != nil {
			logging.LogWarning("cannot sort %s: %v", file, err)
			continue
		}
		moved++
	}

	splitLargeDirectories(root)
	removeEmptyDirectories(root)

	return moved
}

// categoryFor picks the category directory name for a file
func categoryFor(path string) string {
	for _, cat := range categories {
		if cat.matcher.Matches(path) {
			return cat.name
		}
	}
	return "Misc"
}

// splitLargeDirectories breaks any first-level directory holding more than
// MaxFilesPerDir files into numbered chunks, smallest files first
func splitLargeDirectories(root string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		var files []string
		sizes := make(map[string]int64)
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range dirEntries {
			if de.IsDir() {
				continue
			}
			path := filepath.Join(dir, de.Name())
			info, err := de.Info()
			if err != nil {
				continue
			}
			files = append(files, path)
			sizes[path] = info.Size()
		}

		if len(files) <= MaxFilesPerDir {
			continue
		}

		sort.Slice(files, func(a, b int) bool {
			if sizes[files[a]] != sizes[files[b]] {
				return sizes[files[a]] < sizes[files[b]]
			}
			return files[a] < files[b]
		})

		for chunk := 0; chunk*MaxFilesPerDir < len(files); chunk++ {
			subdir := filepath.Join(dir, fmt.Sprintf("%d", chunk+1))
			if err := os.Mkdir(subdir, 0755); err != nil && !os.IsExist(err) {
				continue
			}
			end := (chunk + 1) * MaxFilesPerDir
			if end > len(files) {
				end = len(files)
			}
			for _, file := range files[chunk*MaxFilesPerDir : end] {
				if _, err := utils.MoveNotReplacing(file, filepath.Join(subdir, filepath.Base(file))); err != nil {
					logging.LogWarning("cannot move %s into chunk: %v", file, err)
				}
			}
		}
	}
}

// removeEmptyDirectories removes every empty directory under root, deepest
// first; root itself is kept
func removeEmptyDirectories(root string) {
	var dirs []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && info.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	// Deepest directories first, so emptied parents go too
	sort.Slice(dirs, func(a, b int) bool {
		return strings.Count(dirs[a], string(os.PathSeparator)) > strings.Count(dirs[b], string(os.PathSeparator))
	})

	for _, dir := range dirs {
		os.Remove(dir) // fails on non-empty directories, which is the point
	}
}

