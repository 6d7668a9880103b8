package parallel

import (
	"runtime"
	"sync"
)

// Pool runs submitted funcs on a fixed number of goroutines. A pool with a
// single worker runs every func inline on the caller's goroutine.
type Pool struct {
	wg    sync.WaitGroup
	work  chan func()
	close func()
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{close: func() {}}
	if numWorkers == 1 {
		return pool
	}

	pool.work = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.work {
				f()
			}
		})
	}
	pool.close = sync.OnceFunc(func() { close(pool.work) })

	return pool
}

// Do queues f. It blocks while all workers are busy and the queue is full.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait stops accepting work and returns once every queued func has run.
func (p *Pool) Wait() {
	p.close()
	p.wg.Wait()
}

// For calls fn for every i in [0,n) on numWorkers goroutines and waits for
// all calls to return. Calls must not share mutable state.
func For(n, numWorkers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	pool := Start(min(numWorkers, n))
	for i := range n {
		pool.Do(func() { fn(i) })
	}
	pool.Wait()
}
