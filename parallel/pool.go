package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

// Pool runs submitted functions on a fixed set of goroutines. With a single
// worker, Do runs the function inline and Wait is a no-op.
type Pool struct {
	wg     sync.WaitGroup
	size   int
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		size: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// DoBands splits [0, total) into one band per worker and submits fn for
// each. It does not wait for them to finish.
func (p *Pool) DoBands(total int, fn func(Band)) {
	for _, band := range Bands(total, p.size) {
		p.Do(func() { fn(band) })
	}
}

// Band is the half-open range [Min, Max).
type Band struct {
	Min, Max int
}

// Bands splits [0, total) into at most parts contiguous, non-empty ranges
// whose sizes differ by at most one.
func Bands(total, parts int) []Band {
	if total <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	parts = min(parts, total)

	bands := make([]Band, 0, parts)
	size, extra := total/parts, total%parts
	start := 0
	for i := range parts {
		end := start + size
		if i < extra {
			end++
		}
		bands = append(bands, Band{Min: start, Max: end})
		start = end
	}
	return bands
}
