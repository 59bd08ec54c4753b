// Package dedup removes redundancy from a set of carved files: byte-identical
// copies, visually equivalent images and textually equivalent documents.
// Phases run strictly sequentially; only per-file feature extraction is
// parallel. Per-file faults never escape a phase entry point: a file that
// cannot be read or decoded is skipped, never deleted.
package dedup

import (
	"time"

	"postrecovery/signalhandler"
)

// Options gates the deduplication phases and carries the perceptual matching
// tolerances. The tolerance defaults are empirical values inherited from long
// use against real recovery sessions; they are configuration, not invariants.
type Options struct {
	ExactDedup      bool
	ImageDedup      bool
	TextDedup       bool
	IgnoreExtension bool // bucket exact dedup by size only

	Workers int // feature extraction pool size

	// Perceptual image matching tolerances
	RatioTolerance float64 // max relative aspect-ratio mismatch within a group
	ChannelDelta   float64 // max per-channel average color difference for the cheap prefilter
	SumDelta       float64 // max summed average color difference for the cheap prefilter
	PixelDiffBase  float64 // mean absolute pixel difference tolerance at equal resolutions
	PixelDiffExtra float64 // additional tolerance granted as resolutions diverge
	PixelRatioCap  float64 // pixel-count ratio at which the extra tolerance fully applies
}

// DefaultOptions returns the standard configuration: all phases on,
// extension-aware bucketing, pool sized for the machine.
func DefaultOptions() Options {
	return Options{
		ExactDedup:     true,
		ImageDedup:     true,
		TextDedup:      true,
		Workers:        signalhandler.GetOptimalProcs(),
		RatioTolerance: 0.01,
		ChannelDelta:   10,
		SumDelta:       15,
		PixelDiffBase:  5,
		PixelDiffExtra: 5,
		PixelRatioCap:  10,
	}
}

// PhaseResult summarizes one deduplication phase.
type PhaseResult struct {
	Removed         int           // files deleted
	FullComparisons int           // comparisons that went past the cheap prefilters
	Elapsed         time.Duration // wall time for the phase
}
