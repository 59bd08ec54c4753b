package dedup

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"
	"time"

	"postrecovery/logging"
	"postrecovery/types"
)

// exactSignature is a cheap prefilter derived lazily per record: the first
// and last four bytes of the file, read as fixed-width integers. Matching
// signatures prove nothing; differing signatures rule a pair out without a
// full comparison.
type exactSignature struct {
	head uint32
	tail uint32
}

// RemoveExactDuplicates deletes byte-identical files. Candidates are sorted
// by (size, extension key, path) and compared within maximal runs of equal
// (size, extension key); the earliest record in sort order survives. A full
// byte-for-byte comparison always gates removal; the signature prefilter
// only skips work, never decides it. Filesystem errors never abort the
// batch: a pair that cannot be compared is treated as not a duplicate, and a
// seed file that vanished mid-scan is abandoned so the next survivor reseeds
// the bucket.
func RemoveExactDuplicates(records []*types.FileRecord, opts Options, reporter Reporter) PhaseResult {
	start := time.Now()
	var result PhaseResult

	candidates := types.Surviving(records)
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Size != candidates[b].Size {
			return candidates[a].Size < candidates[b].Size
		}
		if candidates[a].Extension != candidates[b].Extension {
			return candidates[a].Extension < candidates[b].Extension
		}
		return candidates[a].Path < candidates[b].Path
	})

	// Lazily computed signature cache, aligned with candidates
	signatures := make([]*exactSignature, len(candidates))
	signatureErrors := make([]error, len(candidates))
	signatureFor := func(idx int) (exactSignature, error) {
		if signatures[idx] == nil && signatureErrors[idx] == nil {
			sig, err := readSignature(candidates[idx].Path)
			if err != nil {
				signatureErrors[idx] = err
			} else {
				signatures[idx] = &sig
			}
		}
		if signatureErrors[idx] != nil {
			return exactSignature{}, signatureErrors[idx]
		}
		return *signatures[idx], nil
	}

	total := len(candidates)
	for i := 0; i < total; i++ {
		seed := candidates[i]
		reporter.Progress("Deduplicating files...", i+1, total)
		if seed.Removed || seed.Size == 0 {
			continue
		}

		for j := i + 1; j < total; j++ {
			other := candidates[j]
			if other.Size != seed.Size {
				break // the size run is over
			}
			if other.Extension != seed.Extension {
				break // sorted, so the (size, extension) bucket is over
			}
			if other.Removed {
				continue
			}

			seedSig, err := signatureFor(i)
			if err != nil {
				// The seed is gone or unreadable; abandon it for the rest
				// of the bucket and let the next survivor reseed.
				if !os.IsNotExist(err) {
					logging.LogWarning("cannot read signature of %s: %v", seed.Path, err)
				}
				break
			}

			otherSig, err := signatureFor(j)
			if err != nil {
				if os.IsNotExist(err) {
					// Deleted out of band: already handled
					other.MarkRemoved()
				} else {
					logging.LogWarning("cannot read signature of %s: %v", other.Path, err)
				}
				continue
			}

			if seedSig != otherSig {
				continue // distinct without further work
			}

			result.FullComparisons++
			equal, err := filesEqual(seed.Path, other.Path)
			if err != nil {
				if fileVanished(seed.Path) {
					break
				}
				// Downgrade the pair to "not a duplicate"
				logging.LogWarning("cannot compare %s and %s: %v", seed.Path, other.Path, err)
				continue
			}
			if !equal {
				continue
			}

			if err := os.Remove(other.Path); err != nil && !os.IsNotExist(err) {
				logging.LogWarning("cannot remove duplicate %s: %v", other.Path, err)
				continue
			}
			other.MarkRemoved()
			logging.LogFileRemoved("exact", other.Path)
			result.Removed++
		}
	}

	result.Elapsed = time.Since(start)
	reporter.Summary("%d duplicates removed (%v)", result.Removed, result.Elapsed.Round(time.Millisecond))
	return result
}

// readSignature reads the first and last four bytes of a file. Shorter files
// are zero-padded; within a size bucket every file is padded identically.
func readSignature(path string) (exactSignature, error) {
	f, err := os.Open(path)
	if err != nil {
		return exactSignature{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return exactSignature{}, err
	}

	var head, tail [4]byte
	headLen := info.Size()
	if headLen > 4 {
		headLen = 4
	}
	if _, err := io.ReadFull(f, head[:headLen]); err != nil {
		return exactSignature{}, err
	}

	tailOffset := info.Size() - 4
	if tailOffset < 0 {
		tailOffset = 0
	}
	tailLen := info.Size() - tailOffset
	if tailLen > 0 {
		if _, err := f.ReadAt(tail[:tailLen], tailOffset); err != nil {
			return exactSignature{}, err
		}
	}

	return exactSignature{
		head: binary.BigEndian.Uint32(head[:]),
		tail: binary.BigEndian.Uint32(tail[:]),
	}, nil
}

// filesEqual compares two files byte for byte
func filesEqual(pathA, pathB string) (bool, error) {
	fa, err := os.Open(pathA)
	if err != nil {
		return false, err
	}
	defer fa.Close()

	fb, err := os.Open(pathB)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	const chunkSize = 64 * 1024
	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)

	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)

		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}

		endA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		endB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if endA || endB {
			return endA == endB, nil
		}
		if errA != nil {
			return false, errA
		}
		if errB != nil {
			return false, errB
		}
	}
}

// fileVanished reports whether a path no longer exists
func fileVanished(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}
