// Package classify inspects file content to repair what a block-level carver
// can only guess at: plain-text files that are really logs, XML, subtitles or
// JSON get their extension corrected, files whose content carries its own name
// (desktop entries, printer drivers, playlists, code) get renamed after it,
// and machine-generated text nobody will ever miss is weeded out.
package classify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"postrecovery/logging"
	"postrecovery/textnorm"
	"postrecovery/types"
	"postrecovery/utils"
)

// Result summarizes one content-analysis pass.
type Result struct {
	Reclassified int // extensions corrected from content
	Renamed      int // filenames rebuilt from content
	Removed      int // junk files deleted
}

// Line-shape detectors for plain-text files. A file qualifies as a log when
// nearly every line opens with a timestamp in one of the common styles.
var (
	logDateLine = regexp.MustCompile(`(?:^|\n)(?:19|2[01])[0-9]{2}-(?:0[1-9]|1[012])-(?:[012][0-9]|3[01])[\t ][0-9]{2}:[0-9]{2}:[0-9]{2}`)
	logTimeLine = regexp.MustCompile(`(?:^|\n)\[(?:[01][0-9]|2[0-4]):(?:[0-5][0-9]|60):(?:[0-5][0-9]|60)\.[0-9]{3}`)
	logFullLine = regexp.MustCompile(`(?:^|\n)\[(?:19|2[01])[0-9]{2}-?(?:0[1-9]|1[012])-?(?:[012][0-9]|3[01])[\t ](?:[01][0-9]|2[0-4]):(?:[0-5][0-9]|60):(?:[0-5][0-9]|60)\.[0-9]{3}\]`)

	xmlLine = regexp.MustCompile(`(?:^|\n)[\t ]*<`)
	tclLine = regexp.MustCompile(`(?:^|\n)(?:#+ -\*- tcl -\*-|package require Tcl)`)
	srtCue  = regexp.MustCompile(`\r?\n\r?\n[0-9]+\r?\n[0-9]{2}:[0-9]{2}:[0-9]{2},[0-9]{3} --> [0-9]{2}:[0-9]{2}:[0-9]{2},[0-9]{3}`)
	ssaLine = regexp.MustCompile(`(?:^|\n)Dialogue: [0-9]+,[0-9]+:(?:[0-5][0-9]|60):(?:[0-5][0-9]|60)\.[0-9]{2}`)

	driverNameLine = regexp.MustCompile(`\n\*(?:PC|GPD)FileName:[\t ]*"(.*\.[GgPp][Pp][Dd])"`)
	windowsXMLLine = regexp.MustCompile(`<(?:assemblyIdentity|component) name="Microsoft-Windows-`)

	desktopExecLine = regexp.MustCompile(`\nExec=([^\n\t ]+)`)
	desktopNameLine = regexp.MustCompile(`\nName=([^\n#]*)`)
)

const inkscapeMarker = "<!-- Created with Inkscape (http://www.inkscape.org/) -->"

// AnalyzeContent runs the content pass over every surviving record. Junk
// deletion inside the pass is gated by removeJunk; reclassification and
// renaming always run. Unreadable files are left untouched.
func AnalyzeContent(records []*types.FileRecord, removeJunk bool) Result {
	var result Result

	for _, record := range records {
		if record.Removed {
			continue
		}

		switch strings.ToLower(filepath.Ext(record.Path)) {
		case ".txt":
			analyzeText(record, removeJunk, &result)
		case ".ini":
			analyzeINI(record, removeJunk, &result)
		case ".java", ".c", ".cs":
			analyzeCode(record, &result)
		case ".wpl":
			renamePlaylist(record, &result)
		case ".cue":
			renameCueSheet(record, &result)
		}
	}

	return result
}

// analyzeText decides what a .txt file really is. The checks run in
// decreasing order of confidence; the first hit wins.
func analyzeText(record *types.FileRecord, removeJunk bool, result *Result) {
	content, ok := decodedContent(record.Path)
	if !ok {
		return
	}
	content = strings.TrimSpace(content)
	lineCount := strings.Count(content, "\n")

	switch {
	case lineCount > 6 &&
		(matchCount(logDateLine, content) >= lineCount-1 ||
			matchCount(logTimeLine, content) >= lineCount-1 ||
			matchCount(logFullLine, content) >= lineCount-1):
		reclassify(record, ".log", result)

	case strings.HasPrefix(content, "<?xml"):
		reclassify(record, ".xml", result)

	case matchCount(srtCue, content) > max(1, lineCount/8):
		reclassify(record, ".srt", result)

	case strings.Contains(content, inkscapeMarker) && strings.Contains(content, "</svg>"):
		reclassify(record, ".svg", result)

	case matchCount(tclLine, content) > 0:
		reclassify(record, ".tcl", result)

	case looksLikeJSON(content):
		reclassify(record, ".json", result)

	default:
		// Printer driver definitions carry their own filename
		if m := driverNameLine.FindStringSubmatch(content); m != nil {
			newBase := textnorm.SafeFilename(m[1])
			newBase = strings.TrimSuffix(newBase, filepath.Ext(newBase)) + strings.ToLower(filepath.Ext(newBase))
			if len(newBase) > len(filepath.Ext(newBase)) {
				renameTo(record, newBase, result)
			}
			return
		}
		if removeJunk && isTextJunk(content, lineCount) {
			removeFile(record, result)
		}
	}
}

// isTextJunk recognizes machine-generated text: Windows component manifests,
// Sphinx autogen output, and near-constant byte filler
func isTextJunk(content string, lineCount int) bool {
	if strings.HasPrefix(content, "# Autogenerated by Sphinx") {
		return true
	}
	if lineCount > 6 &&
		matchCount(xmlLine, content) >= lineCount-1 &&
		matchCount(windowsXMLLine, content) > lineCount/6 {
		return true
	}
	length := len([]rune(content))
	limit := 12
	if half := (length + 1) / 2; half < limit {
		limit = half
	}
	return distinctRunes(content) < limit
}

// analyzeINI decides what a .ini file really is: SubStation subtitles, a
// desktop entry naming itself, or the MIME cache nothing will miss.
func analyzeINI(record *types.FileRecord, removeJunk bool, result *Result) {
	content, ok := decodedContent(record.Path)
	if !ok {
		return
	}
	content = strings.TrimSpace(content)
	lineCount := strings.Count(content, "\n")

	switch {
	case strings.HasPrefix(content, "[Script Info]"):
		if matchCount(ssaLine, content) > max(1, lineCount/3-25) {
			reclassify(record, ".ass", result)
		}

	case strings.HasPrefix(content, "[MIME Cache]"):
		if removeJunk {
			removeFile(record, result)
		}

	case strings.HasPrefix(content, "[Desktop Entry]"):
		name := ""
		if m := desktopExecLine.FindStringSubmatch(content); m != nil {
			name = textnorm.SafeFilename(filepath.Base(m[1]))
		} else if m := desktopNameLine.FindStringSubmatch(content); m != nil {
			name = textnorm.SafeFilename(strings.Join(strings.Fields(strings.ToLower(m[1])), "-"))
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(record.Path), filepath.Ext(record.Path))
		}
		renameTo(record, name+".desktop", result)
	}
}

// looksLikeJSON accepts content that both starts like a JSON document and
// parses as one
func looksLikeJSON(content string) bool {
	if !strings.HasPrefix(content, "[") && !strings.HasPrefix(content, "{") {
		return false
	}
	return json.Valid([]byte(content))
}

// decodedContent reads and decodes one file; false means the file could not
// be read and must be left alone
func decodedContent(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.DebugLog("cannot read %s for content analysis: %v", path, err)
		return "", false
	}
	return textnorm.DecodeBytes(data), true
}

// reclassify swaps the extension of a misclassified file
func reclassify(record *types.FileRecord, newExt string, result *Result) {
	base := filepath.Base(record.Path)
	newBase := strings.TrimSuffix(base, filepath.Ext(base)) + newExt
	newPath, err := utils.MoveNotReplacing(record.Path, filepath.Join(filepath.Dir(record.Path), newBase))
	if err != nil {
		logging.LogWarning("cannot reclassify %s: %v", record.Path, err)
		return
	}
	logging.LogFileRenamed(record.Path, newPath)
	record.Path = newPath
	if record.Extension != "" {
		record.Extension = newExt
	}
	result.Reclassified++
}

// renameTo gives a file a content-derived basename
func renameTo(record *types.FileRecord, newBase string, result *Result) {
	if newBase == filepath.Base(record.Path) {
		return
	}
	newPath, err := utils.MoveNotReplacing(record.Path, filepath.Join(filepath.Dir(record.Path), newBase))
	if err != nil {
		logging.LogWarning("cannot rename %s: %v", record.Path, err)
		return
	}
	logging.LogFileRenamed(record.Path, newPath)
	record.Path = newPath
	if record.Extension != "" {
		record.Extension = strings.ToLower(filepath.Ext(newBase))
	}
	result.Renamed++
}

// removeFile deletes a junk file found during content analysis
func removeFile(record *types.FileRecord, result *Result) {
	if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
		logging.LogWarning("cannot remove junk file %s: %v", record.Path, err)
		return
	}
	record.MarkRemoved()
	logging.LogFileRemoved("content", record.Path)
	result.Removed++
}

func matchCount(re *regexp.Regexp, content string) int {
	return len(re.FindAllStringIndex(content, -1))
}

func distinctRunes(content string) int {
	seen := make(map[rune]struct{})
	for _, r := range content {
		seen[r] = struct{}{}
	}
	return len(seen)
}
