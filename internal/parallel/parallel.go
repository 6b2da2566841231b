// Package parallel provides the chunked parallel-for used to materialize
// expression results component by component.
package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrBadConfig is returned by Config.Validate.
var ErrBadConfig = errors.New("parallel: invalid config")

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`               // Whether parallel execution is enabled.
	NumWorkers   int  `yaml:"num_workers" json:"num_workers"`       // Number of worker goroutines to use.
	MinChunkSize int  `yaml:"min_chunk_size" json:"min_chunk_size"` // Minimum components per goroutine.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 256, // One output component costs a full summation.
	}
}

// Sequential returns a config that never spawns goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// Validate reports whether the config can drive For.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("%w: num_workers must be positive, got %d", ErrBadConfig, c.NumWorkers)
	}
	if c.MinChunkSize < 1 {
		return fmt.Errorf("%w: min_chunk_size must be positive, got %d", ErrBadConfig, c.MinChunkSize)
	}
	return nil
}

// chunkSize returns the chunk length for n items, or n when the work should
// run on the calling goroutine.
func (c Config) chunkSize(n int) int {
	if !c.Enabled || c.NumWorkers < 2 || n < max(c.MinChunkSize, 1)*2 {
		return n
	}
	return max((n+c.NumWorkers-1)/c.NumWorkers, c.MinChunkSize)
}

// ForChunks calls f(start, end) over disjoint ranges covering [0, n).
// Each call runs on one goroutine, so f may keep per-chunk scratch buffers.
// Falls back to a single call on the caller's goroutine if parallelism is
// disabled or n is too small.
func ForChunks(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	size := cfg.chunkSize(n)
	if size >= n {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// For executes f(i) for i in [0, n) with optional parallelism.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}
