package scan

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SlicesPerWorker controls how finely a chunk is divided. Cost per integer grows
// with magnitude and varies with parity, so several slices per worker keep the
// goroutines busy until the chunk ends.
const SlicesPerWorker = 4

// Pool evaluates chunks with a fixed number of goroutines.
type Pool struct {
	workers int
}

// NewPool returns a pool of the given size. workers <= 0 selects GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Evaluate calls match for every integer in c and returns those it accepts in
// increasing order. It returns only after every goroutine has finished; there is
// no cancellation inside a chunk.
func (p *Pool) Evaluate(c Chunk, match func(uint64) bool) []uint64 {
	slices := Partition(c, p.workers*SlicesPerWorker)
	if len(slices) == 0 {
		return nil
	}

	results := make([][]uint64, len(slices))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, s := range slices {
		g.Go(func() error {
			var local []uint64
			for n := s.Lo; n < s.Hi; n++ {
				if match(n) {
					local = append(local, n)
				}
			}
			results[i] = local
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	if total == 0 {
		return nil
	}
	merged := make([]uint64, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}
