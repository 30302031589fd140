// Package parallel splits element ranges across goroutines for the CPU backend.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum elements per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1 << 14,
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{}
}

// Chunks calls f with disjoint half-open ranges [lo, hi) covering [0, n).
// Falls back to a single call when parallelism is disabled or n is too small.
// f must only touch elements inside its range.
func Chunks(n int, cfg Config, f func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n), chunked like Chunks.
func For(n int, f func(i int), cfg Config) {
	Chunks(n, cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			f(i)
		}
	})
}
