// Copyright 2025 The go-parbench Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(3)
	defer pool.Close()

	if pool.NumWorkers() != 3 {
		t.Errorf("NumWorkers() = %d, want 3", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelFor(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 4} {
		pool := New(workers)

		n := 100003
		results := make([]float64, n)
		pool.ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				results[i] += float64(i) * 2
			}
		})
		pool.Close()

		for i := 0; i < n; i++ {
			if results[i] != float64(i)*2 {
				t.Fatalf("workers=%d: results[%d] = %v, want %v", workers, i, results[i], float64(i)*2)
			}
		}
	}
}

func TestParallelForIndexedChunks(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	for _, n := range []int{1, 3, 4, 5, 10, 1000, 1001} {
		chunks := pool.Chunks(n)
		seen := make([]int32, chunks)
		var covered atomic.Int64

		pool.ParallelForIndexed(n, func(chunk, start, end int) {
			atomic.AddInt32(&seen[chunk], 1)
			covered.Add(int64(end - start))
		})

		for c, count := range seen {
			if count != 1 {
				t.Errorf("n=%d: chunk %d used %d times, want 1", n, c, count)
			}
		}
		if covered.Load() != int64(n) {
			t.Errorf("n=%d: covered %d indices, want %d", n, covered.Load(), n)
		}
	}
}

func TestParallelForPrivatePartials(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 10000
	partials := make([]int, pool.Chunks(n))
	pool.ParallelForIndexed(n, func(chunk, start, end int) {
		s := 0
		for i := start; i < end; i++ {
			s += i
		}
		partials[chunk] = s
	})

	total := 0
	for _, s := range partials {
		total += s
	}
	if want := n * (n - 1) / 2; total != want {
		t.Errorf("total = %d, want %d", total, want)
	}
}

func TestParallelForUsesWorkers(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	// Every chunk blocks until all four have started, which only completes
	// if four distinct workers run them at once.
	var started sync.WaitGroup
	started.Add(4)
	pool.ParallelFor(4, func(start, end int) {
		started.Done()
		started.Wait()
	})
}

func TestParallelForSmallN(t *testing.T) {
	pool := New(8)
	defer pool.Close()

	// Test with n smaller than workers
	n := 3
	var count atomic.Int32

	pool.ParallelFor(n, func(start, end int) {
		count.Add(int32(end - start))
	})

	if count.Load() != int32(n) {
		t.Errorf("count = %d, want %d", count.Load(), n)
	}
	if pool.Chunks(n) != n {
		t.Errorf("Chunks(%d) = %d, want %d", n, pool.Chunks(n), n)
	}
}

func TestParallelForZeroN(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var called bool
	pool.ParallelFor(0, func(start, end int) {
		called = true
	})

	if called {
		t.Error("ParallelFor with n=0 should not call fn")
	}
	if pool.Chunks(0) != 0 {
		t.Errorf("Chunks(0) = %d, want 0", pool.Chunks(0))
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close() // Should not panic
}

func TestClosedPoolFallback(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 100
	results := make([]int, n)

	// Should still work (sequential fallback)
	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
	if pool.Chunks(n) != 1 {
		t.Errorf("Chunks(%d) on closed pool = %d, want 1", n, pool.Chunks(n))
	}
}

func BenchmarkParallelFor(b *testing.B) {
	pool := New(0) // Use GOMAXPROCS
	defer pool.Close()

	n := 100000
	data := make([]float64, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.ParallelFor(n, func(start, end int) {
			for j := start; j < end; j++ {
				data[j] = float64(j) * 0.5
			}
		})
	}
}

// BenchmarkPoolOverhead measures the cost of a parallel region with no work.
func BenchmarkPoolOverhead(b *testing.B) {
	for _, workers := range []int{2, 4} {
		pool := New(workers)
		b.Run(fmt.Sprintf("Workers%d", workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				pool.ParallelFor(workers, func(start, end int) {
					// Minimal work
				})
			}
		})
		pool.Close()
	}
}
