package concurrent

import (
	"golang.org/x/sync/errgroup"
)

// Chunks splits [0, n) into at most workers contiguous ranges of near-equal size.
// The split depends only on n and workers, never on scheduling.
func Chunks(n, workers int) [][2]int {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	out := make([][2]int, 0, workers)
	size, rest := n/workers, n%workers
	lo := 0
	for w := 0; w < workers; w++ {
		hi := lo + size
		if w < rest {
			hi++
		}
		out = append(out, [2]int{lo, hi})
		lo = hi
	}
	return out
}

// ForEachChunk runs action over contiguous ranges of [0, n) on up to workers goroutines.
// It waits for all goroutines to finish and returns the first error encountered.
// With workers <= 1 the action runs inline on the caller's goroutine.
func ForEachChunk(n, workers int, action func(lo, hi int) error) error {
	chunks := Chunks(n, workers)
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) == 1 {
		return action(chunks[0][0], chunks[0][1])
	}

	errGroup := errgroup.Group{}
	errGroup.SetLimit(len(chunks))
	for _, c := range chunks {
		errGroup.Go(func() error {
			return action(c[0], c[1])
		})
	}

	return errGroup.Wait()
}
