package dedup

import (
	"math"
	"os"
	"sort"
	"time"

	"postrecovery/imageprocessor"
	"postrecovery/inventory"
	"postrecovery/logging"
	"postrecovery/types"
)

// orientationClass separates landscape, portrait and square images; images
// from different classes are never compared.
type orientationClass int8

const (
	classInvalid orientationClass = iota
	classLandscape
	classPortrait
	classSquare
)

// squareKey is the fixed orientation key for square images
const squareKey = 1000

// imageFeature holds the precomputed per-image features. A failed decode
// leaves valid unset, the sentinel that matches nothing, so an unreadable
// image is never deleted or merged.
type imageFeature struct {
	valid       bool
	class       orientationClass
	orientation int // ±(aspect ratio × 1000), positive landscape, negative portrait
	width       int
	height      int

	// average color, computed on demand and cached
	avgColor    *imageprocessor.RGB
	avgColorErr bool
}

func (f imageFeature) pixels() int {
	return f.width * f.height
}

// extractImageFeature probes one image; run inside the precomputation pool
func extractImageFeature(path string) imageFeature {
	width, height, err := imageprocessor.Probe(path)
	if err != nil {
		logging.DebugLog("image probe failed for %s: %v", path, err)
		return imageFeature{}
	}

	feature := imageFeature{valid: true, width: width, height: height}
	switch {
	case width == height:
		feature.class = classSquare
		feature.orientation = squareKey
	case width > height:
		feature.class = classLandscape
		feature.orientation = int(math.Round(float64(width) / float64(height) * 1000))
	default:
		feature.class = classPortrait
		feature.orientation = -int(math.Round(float64(height) / float64(width) * 1000))
	}
	return feature
}

// RemoveImageDuplicates deletes visually equivalent images, keeping the copy
// with the most pixels (ties broken by file size). The relation is
// intentionally approximate: two images match when their aspect ratios agree
// within the configured tolerance, their average colors pass the cheap
// prefilter and the full resized comparison lands under the pixel-difference
// tolerance. Groups may grow beyond two members before any file is deleted.
func RemoveImageDuplicates(records []*types.FileRecord, matcher inventory.Matcher, opts Options, reporter Reporter) PhaseResult {
	start := time.Now()
	var result PhaseResult

	candidates := inventory.Filter(records, matcher)
	paths := make([]string, len(candidates))
	for i, record := range candidates {
		paths[i] = record.Path
	}

	features := Precompute(paths, opts.Workers, extractImageFeature, reporter, "Scanning images...")

	// Sort candidates so images of the same aspect ratio and orientation are
	// adjacent, largest first.
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		fa, fb := features[order[a]], features[order[b]]
		if fa.orientation != fb.orientation {
			return fa.orientation > fb.orientation
		}
		// A landscape key can round to the square key; keep classes
		// contiguous so a group scan never breaks one class mid-run
		if fa.class != fb.class {
			return fa.class > fb.class
		}
		if sa, sb := fa.width+fa.height, fb.width+fb.height; sa != sb {
			return sa > sb
		}
		return candidates[order[a]].Path < candidates[order[b]].Path
	})

	averageColorFor := func(idx int) (imageprocessor.RGB, bool) {
		feature := &features[idx]
		if feature.avgColorErr {
			return imageprocessor.RGB{}, false
		}
		if feature.avgColor == nil {
			color, err := imageprocessor.AverageColor(candidates[idx].Path)
			if err != nil {
				logging.DebugLog("average color failed for %s: %v", candidates[idx].Path, err)
				feature.avgColorErr = true
				return imageprocessor.RGB{}, false
			}
			feature.avgColor = &color
		}
		return *feature.avgColor, true
	}

	// grouped marks candidates consumed by a duplicate group, so no record is
	// compared against one an earlier decision already claimed
	grouped := make([]bool, len(candidates))

	total := len(order)
	for ii := 0; ii < total; ii++ {
		i := order[ii]
		reporter.Progress("Deduplicating images...", ii+1, total)

		seed := candidates[i]
		seedFeature := features[i]
		if seed.Removed || grouped[i] || !seedFeature.valid {
			continue
		}

		group := []int{i}

		for jj := ii + 1; jj < total; jj++ {
			j := order[jj]
			if !ratioCompatible(seedFeature, features[j], opts) {
				break // sorted by orientation, so nothing further can match
			}
			if candidates[j].Removed || grouped[j] {
				continue
			}

			seedColor, ok := averageColorFor(i)
			if !ok {
				break // seed undecodable past its header: abandon the group
			}
			otherColor, ok := averageColorFor(j)
			if !ok {
				continue
			}
			if colorsDiffer(seedColor, otherColor, opts) {
				continue
			}

			result.FullComparisons++
			diff, err := imageprocessor.MeanAbsDiff(seed.Path, candidates[j].Path)
			if err != nil {
				if fileVanished(seed.Path) {
					break
				}
				continue
			}
			if diff >= pixelTolerance(seedFeature, features[j], opts) {
				continue
			}

			grouped[j] = true
			group = append(group, j)
		}

		if len(group) < 2 {
			continue
		}

		// Survivor: most pixels, ties broken by the largest file
		survivor := group[0]
		for _, member := range group[1:] {
			if betterSurvivor(features[member], candidates[member], features[survivor], candidates[survivor]) {
				survivor = member
			}
		}

		for _, member := range group {
			if member == survivor {
				continue
			}
			if err := os.Remove(candidates[member].Path); err != nil && !os.IsNotExist(err) {
				logging.LogWarning("cannot remove duplicate image %s: %v", candidates[member].Path, err)
				continue
			}
			candidates[member].MarkRemoved()
			logging.LogFileRemoved("image", candidates[member].Path)
			result.Removed++
		}
	}

	result.Elapsed = time.Since(start)
	reporter.Summary("%d duplicate images removed (%v)", result.Removed, result.Elapsed.Round(time.Millisecond))
	return result
}

// ratioCompatible reports whether two images share an orientation class and
// an aspect ratio within the configured tolerance
func ratioCompatible(a, b imageFeature, opts Options) bool {
	if !a.valid || !b.valid || a.class != b.class {
		return false
	}
	ka := math.Abs(float64(a.orientation))
	kb := math.Abs(float64(b.orientation))
	limit := opts.RatioTolerance * math.Max(ka, kb)
	return math.Abs(ka-kb) <= limit
}

// colorsDiffer is the cheap average-color prefilter: reject when any channel
// differs by more than ChannelDelta or the channels together exceed SumDelta
func colorsDiffer(a, b imageprocessor.RGB, opts Options) bool {
	dr := math.Abs(a.R - b.R)
	dg := math.Abs(a.G - b.G)
	db := math.Abs(a.B - b.B)
	if dr > opts.ChannelDelta || dg > opts.ChannelDelta || db > opts.ChannelDelta {
		return true
	}
	return dr+dg+db > opts.SumDelta
}

// pixelTolerance grows the base matching tolerance by up to PixelDiffExtra as
// the pixel-count ratio between the two images approaches PixelRatioCap,
// admitting heavily downscaled duplicates without loosening the comparison of
// same-sized images.
func pixelTolerance(a, b imageFeature, opts Options) float64 {
	pa, pb := float64(a.pixels()), float64(b.pixels())
	if pa <= 0 || pb <= 0 {
		return opts.PixelDiffBase
	}

	ratio := pa / pb
	if ratio < 1 {
		ratio = 1 / ratio
	}

	scale := 1.0
	if opts.PixelRatioCap > 1 {
		scale = (ratio - 1) / (opts.PixelRatioCap - 1)
	}
	if scale > 1 {
		scale = 1
	}
	if scale < 0 {
		scale = 0
	}

	return opts.PixelDiffBase + opts.PixelDiffExtra*scale
}

// betterSurvivor reports whether candidate a should outlive b
func betterSurvivor(fa imageFeature, ra *types.FileRecord, fb imageFeature, rb *types.FileRecord) bool {
	if fa.pixels() != fb.pixels() {
		return fa.pixels() > fb.pixels()
	}
	return ra.Size > rb.Size
}
