package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"postrecovery/logging"
	"postrecovery/types"
)

// Scan walks the target directory and builds one FileRecord per regular file.
// When ignoreExtensions is set the extension key is left empty, so later
// bucketing groups files by size alone. Unreadable entries are skipped, not
// fatal; only an unreadable root aborts the scan.
func Scan(root string, ignoreExtensions bool) ([]*types.FileRecord, error) {
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("cannot access target directory %s: %v", root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("target path is not a directory: %s", root)
	}

	var records []*types.FileRecord
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.LogWarning("cannot access %s: %v", path, err)
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		extension := ""
		if !ignoreExtensions {
			extension = strings.ToLower(filepath.Ext(path))
		}

		records = append(records, &types.FileRecord{
			Path:      path,
			Size:      info.Size(),
			Extension: extension,
		})
		return nil
	})

	return records, nil
}

// RemoveEmpty deletes all zero-byte files and marks their records removed.
// Returns the number of files deleted.
func RemoveEmpty(records []*types.FileRecord) int {
	removed := 0
	for _, record := range records {
		if record.Removed || record.Size != 0 {
			continue
		}
		if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
			logging.LogWarning("cannot remove empty file %s: %v", record.Path, err)
			continue
		}
		record.MarkRemoved()
		logging.LogFileRemoved("empty", record.Path)
		removed++
	}
	return removed
}

// Filter returns the surviving records accepted by the matcher, as a new
// slice; the input is never modified in place.
func Filter(records []*types.FileRecord, matcher Matcher) []*types.FileRecord {
	out := make([]*types.FileRecord, 0, len(records))
	for _, record := range records {
		if !record.Removed && matcher.Matches(record.Path) {
			out = append(out, record)
		}
	}
	return out
}

// Partition splits the surviving records into those accepted by the matcher
// and the rest, both as new slices.
func Partition(records []*types.FileRecord, matcher Matcher) (matched, rest []*types.FileRecord) {
	for _, record := range records {
		if record.Removed {
			continue
		}
		if matcher.Matches(record.Path) {
			matched = append(matched, record)
		} else {
			rest = append(rest, record)
		}
	}
	return matched, rest
}
