package dedup

import (
	"sync"
	"sync/atomic"

	"postrecovery/logging"
)

// Precompute applies fn to every path using a bounded pool of parallel
// workers and returns the results aligned index-for-index with the input, so
// callers can zip inputs and outputs without a correlation key. Each worker
// reads only its own file and writes only its own output slot; the shared
// progress counter is the only cross-worker state. A panic inside fn is
// recovered and converted to the zero value of T, so one bad file can never
// abort the batch.
func Precompute[T any](paths []string, workers int, fn func(path string) T, reporter Reporter, message string) []T {
	if workers < 1 {
		workers = 1
	}

	results := make([]T, len(paths))
	total := len(paths)

	var done atomic.Int64
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for idx := range paths {
		wg.Add(1)
		// Acquire semaphore
		semaphore <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore when done

			results[i] = safeApply(fn, paths[i])
			reporter.Progress(message, int(done.Add(1)), total)
		}(idx)
	}

	wg.Wait()
	return results
}

// safeApply runs fn and converts a panic into the zero value of T. Feature
// functions are expected to handle their own decode/read failures; this is
// the backstop that keeps a worker crash from taking the pool down.
func safeApply[T any](fn func(path string) T, path string) (result T) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogError("feature extraction failed for %s: %v", path, r)
			var zero T
			result = zero
		}
	}()
	return fn(path)
}
