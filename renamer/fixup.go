package renamer

import (
	"path/filepath"
	"regexp"
	"strings"

	"postrecovery/logging"
	"postrecovery/types"
	"postrecovery/utils"
)

// PhotoRec occasionally recovers part of the original name and welds it onto
// its own numbering, as in f1234567_report_pdf or f1234567_setup_exe_mui.
var carverPrename = regexp.MustCompile(`^f[0-9]{5,}_(.+)[._]((?i:dll(?:_mui)?|exe(?:_mui)?|d2s|zip|sys|doc|pdf))$`)

// FixCarverNames strips the carver numbering from such files and restores the
// embedded name and extension. Returns the number of files fixed.
func FixCarverNames(records []*types.FileRecord) int {
	fixed := 0
	for _, record := range records {
		if record.Removed {
			continue
		}

		base := filepath.Base(record.Path)
		m := carverPrename.FindStringSubmatch(base)
		if m == nil {
			continue
		}

		newBase := m[1] + "." + strings.ToLower(strings.ReplaceAll(m[2], "_", "."))
		newPath, err := utils.MoveNotReplacing(record.Path, filepath.Join(filepath.Dir(record.Path), newBase))
		if err != nil {
			logging.LogWarning("cannot fix carver name %s: %v", record.Path, err)
			continue
		}
		logging.LogFileRenamed(record.Path, newPath)
		record.Path = newPath
		fixed++
	}
	return fixed
}
