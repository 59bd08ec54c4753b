package classify

import (
	"regexp"

	"postrecovery/textnorm"
	"postrecovery/types"
)

var (
	wplTitle = regexp.MustCompile(`<title>(.*?)</title>`)

	cueTitle     = regexp.MustCompile(`\nTITLE "(.*)"`)
	cuePerformer = regexp.MustCompile(`\nPERFORMER "(.*)"`)
	cueFile      = regexp.MustCompile(`\nFILE "(.*)\.[a-zA-Z0-9+]{1,4}"`)
)

// renamePlaylist names a Windows Media playlist after its title element
func renamePlaylist(record *types.FileRecord, result *Result) {
	content, ok := decodedContent(record.Path)
	if !ok {
		return
	}

	m := wplTitle.FindStringSubmatch(content)
	if m == nil {
		return
	}
	name := textnorm.SafeFilename(m[1])
	if len(name) < 2 {
		return
	}
	renameTo(record, name+".wpl", result)
}

// renameCueSheet names a cue sheet "<performer> - <title>.cue", falling back
// to the referenced media filename when the sheet has no title
func renameCueSheet(record *types.FileRecord, result *Result) {
	content, ok := decodedContent(record.Path)
	if !ok {
		return
	}

	title := ""
	if m := cueTitle.FindStringSubmatch(content); m != nil && m[1] != "" {
		title = m[1]
		if p := cuePerformer.FindStringSubmatch(content); p != nil && p[1] != "" {
			title = p[1] + " - " + title
		}
	} else if m := cueFile.FindStringSubmatch(content); m != nil && m[1] != "" {
		title = m[1]
	} else {
		return
	}

	name := textnorm.SafeFilename(title)
	if len(name) < 2 {
		return
	}
	renameTo(record, name+".cue", result)
}
