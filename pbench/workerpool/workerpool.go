// Copyright 2025 The go-parbench Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent worker pool that plays the role
// of a fixed team of threads: the pool is sized once to the worker count
// under test, and every parallel kernel issued while that count is active
// shares the same goroutines. Changing the worker count means closing the
// pool and creating a new one, so a count never changes under a running
// kernel.
//
// Usage:
//
//	pool := workerpool.New(threads)
//	defer pool.Close()
//
//	pool.ParallelFor(len(c), func(start, end int) {
//	    for i := start; i < end; i++ {
//	        c[i] = a[i] + b[i]
//	    }
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation and
// reused by every ParallelFor call until Close.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem is one chunk of a parallel loop.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a pool with the specified number of workers.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers),
	}

	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Pending chunks still run.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Chunks returns how many chunks ParallelFor and ParallelForIndexed split
// n indices into. It is the length callers need for per-chunk partials.
func (p *Pool) Chunks(n int) int {
	if n <= 0 {
		return 0
	}
	if p.closed.Load() {
		return 1
	}
	workers := min(p.numWorkers, n)
	chunkSize := (n + workers - 1) / workers
	return (n + chunkSize - 1) / chunkSize
}

// ParallelFor executes fn over [0, n) with each worker processing one
// contiguous chunk. Blocks until all chunks complete.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	p.ParallelForIndexed(n, func(_, start, end int) {
		fn(start, end)
	})
}

// ParallelForIndexed is ParallelFor with the chunk number passed to fn.
// Chunk numbers are dense in [0, Chunks(n)) and each is used exactly once,
// so fn may write a private result slot without synchronization.
func (p *Pool) ParallelForIndexed(n int, fn func(chunk, start, end int)) {
	if n <= 0 {
		return
	}

	if p.closed.Load() {
		// Fallback to sequential if pool is closed
		fn(0, 0, n)
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers
	chunks := (n + chunkSize - 1) / chunkSize

	var wg sync.WaitGroup
	wg.Add(chunks)

	for i := 0; i < chunks; i++ {
		i := i
		start := i * chunkSize
		end := min(start+chunkSize, n)
		p.workC <- workItem{
			fn: func() {
				fn(i, start, end)
			},
			barrier: &wg,
		}
	}

	wg.Wait()
}
