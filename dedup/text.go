package dedup

import (
	"os"
	"sort"
	"time"

	"postrecovery/inventory"
	"postrecovery/logging"
	"postrecovery/textnorm"
	"postrecovery/types"
)

// textFeature holds the normalized form of a text file. Unreadable files
// leave valid unset and are never matched, even against each other.
type textFeature struct {
	valid   bool
	content string
	length  int
}

// extractTextFeature reads and normalizes one file; run inside the
// precomputation pool
func extractTextFeature(path string) textFeature {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.DebugLog("cannot read text file %s: %v", path, err)
		return textFeature{}
	}

	content := textnorm.Normalize(textnorm.DecodeBytes(data))
	return textFeature{valid: true, content: content, length: len(content)}
}

// RemoveTextDuplicates deletes files whose content is identical after
// normalization (line-ending style, encoding artifacts, letter case and
// whitespace runs do not count as differences). The relation is exact over
// the normalized form: a full comparison of the normalized content always
// gates removal. The survivor of each equivalence class is the record the
// scan encounters first in (length descending, path) order.
func RemoveTextDuplicates(records []*types.FileRecord, matcher inventory.Matcher, opts Options, reporter Reporter) PhaseResult {
	start := time.Now()
	var result PhaseResult

	candidates := inventory.Filter(records, matcher)
	paths := make([]string, len(candidates))
	for i, record := range candidates {
		paths[i] = record.Path
	}

	features := Precompute(paths, opts.Workers, extractTextFeature, reporter, "Scanning text files...")

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		fa, fb := features[order[a]], features[order[b]]
		if fa.length != fb.length {
			return fa.length > fb.length
		}
		return candidates[order[a]].Path < candidates[order[b]].Path
	})

	total := len(order)
	for ii := 0; ii < total; ii++ {
		i := order[ii]
		reporter.Progress("Deduplicating text files...", ii+1, total)

		seed := candidates[i]
		seedFeature := features[i]
		if seed.Removed || !seedFeature.valid {
			continue
		}

		for jj := ii + 1; jj < total; jj++ {
			j := order[jj]
			other := candidates[j]
			otherFeature := features[j]
			if otherFeature.length != seedFeature.length {
				break // the equal-length run is over
			}
			if other.Removed || !otherFeature.valid {
				continue
			}

			// Cheap endpoint check before the full comparison
			if seedFeature.length > 0 {
				if seedFeature.content[0] != otherFeature.content[0] {
					continue
				}
				if seedFeature.content[seedFeature.length-1] != otherFeature.content[otherFeature.length-1] {
					continue
				}
			}

			result.FullComparisons++
			if seedFeature.content != otherFeature.content {
				continue
			}

			// Removal is only valid while the survivor is confirmed on disk
			if fileVanished(seed.Path) {
				break
			}

			if err := os.Remove(other.Path); err != nil && !os.IsNotExist(err) {
				logging.LogWarning("cannot remove duplicate text file %s: %v", other.Path, err)
				continue
			}
			other.MarkRemoved()
			logging.LogFileRemoved("text", other.Path)
			result.Removed++
		}
	}

	result.Elapsed = time.Since(start)
	reporter.Summary("%d duplicate text files removed (%v)", result.Removed, result.Elapsed.Round(time.Millisecond))
	return result
}
