// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for
// row-band parallel disparity computation. A Pool is created once and reused
// across many images, so per-call goroutine spawning is avoided.
//
// Work handed to the pool carries a worker slot index. Within one call each
// slot is served by exactly one goroutine, which lets callers keep mutable
// scratch state per slot without locks.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	spaces := make([]*Scratch, pool.NumWorkers())
//	pool.ParallelForWorker(numBands, func(worker, band int) {
//	    if spaces[worker] == nil {
//	        spaces[worker] = newScratch()
//	    }
//	    processBand(band, spaces[worker])
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs parallel loops on a fixed set of goroutines started by New.
type Pool struct {
	numWorkers int
	tasks      chan task

	// mu is held for reading while a loop sends tasks and for writing by
	// Close, so tasks is never sent on after it is closed.
	mu     sync.RWMutex
	closed atomic.Bool
}

// task is one slot's share of a parallel loop.
type task struct {
	slot int
	body func(slot int)
	done *sync.WaitGroup
}

// New starts numWorkers goroutines, or GOMAXPROCS of them when numWorkers
// is not positive. They live until Close.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan task, numWorkers),
	}
	for range numWorkers {
		go p.serve()
	}
	return p
}

func (p *Pool) serve() {
	for t := range p.tasks {
		t.body(t.slot)
		t.done.Done()
	}
}

// NumWorkers returns the number of goroutines of the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers. It waits for loops in flight, is idempotent and
// may run concurrently with loops; a closed pool still accepts loops and
// runs them on the caller.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed.Load() {
		p.closed.Store(true)
		close(p.tasks)
	}
}

// Slots returns how many worker slots a loop over n items will use.
// Callers size per-worker state with it.
func (p *Pool) Slots(n int) int {
	if p == nil || p.closed.Load() || n <= 1 {
		return 1
	}
	return min(p.numWorkers, n)
}

// dispatch runs body once per slot in [0, slots) and waits for all of them.
// A single slot, or a pool closed since slots was computed, runs on the
// calling goroutine.
func (p *Pool) dispatch(slots int, body func(slot int)) {
	if slots > 1 {
		p.mu.RLock()
		defer p.mu.RUnlock()
	}
	if slots == 1 || p.closed.Load() {
		for slot := range slots {
			body(slot)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(slots)
	for slot := range slots {
		p.tasks <- task{slot: slot, body: body, done: &wg}
	}
	wg.Wait()
}

// ParallelFor splits [0, n) into one contiguous chunk per slot and calls fn
// with the [start, end) bounds of each. Blocks until all chunks are done.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	slots := p.Slots(n)
	chunk := (n + slots - 1) / slots
	p.dispatch(slots, func(slot int) {
		start := slot * chunk
		if start < n {
			fn(start, min(start+chunk, n))
		}
	})
}

// ParallelForWorker calls fn(worker, i) for every i in [0, n). Slots take
// the next index from a shared counter, so bands of uneven cost balance
// out. worker is in [0, Slots(n)) and the indices given to one worker run
// in sequence on one goroutine. A nil or closed pool runs everything on
// slot 0.
func (p *Pool) ParallelForWorker(n int, fn func(worker, i int)) {
	if n <= 0 {
		return
	}
	var next atomic.Int64
	p.dispatch(p.Slots(n), func(slot int) {
		for {
			i := int(next.Add(1) - 1)
			if i >= n {
				return
			}
			fn(slot, i)
		}
	})
}
