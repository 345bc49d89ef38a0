// Copyright 2025 go-parbench Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernels

import (
	"math"
	"sync"

	"github.com/ajroetker/go-parbench/pbench"
	"github.com/ajroetker/go-parbench/pbench/workerpool"
	"golang.org/x/sync/errgroup"
)

// FillValue returns the value the fill kernels store at index i:
// sin(i-50) + cos(i/2), where i/2 is integer division.
func FillValue(i int) float64 {
	return math.Sin(float64(i-50)) + math.Cos(float64(i/2))
}

// FillSequential sets a[i] = FillValue(i) for every index on the calling
// goroutine.
func FillSequential(a []float64) {
	for i := range a {
		a[i] = FillValue(i)
	}
}

// FillParallel is FillSequential with the indices distributed over the
// workers of pool. Iterations are independent, so no ordering is needed.
func FillParallel(pool *workerpool.Pool, a []float64) {
	pool.ParallelFor(len(a), func(start, end int) {
		for i := start; i < end; i++ {
			a[i] = FillValue(i)
		}
	})
}

// SumSequential computes c[i] = a[i] + b[i] for every index of c.
//
// a and b must be at least as long as c.
func SumSequential(a, b, c []float64) {
	for i := range c {
		c[i] = a[i] + b[i]
	}
}

// SumParallelFor is SumSequential with each pool worker owning one
// contiguous chunk of c.
func SumParallelFor(pool *workerpool.Pool, a, b, c []float64) {
	pool.ParallelFor(len(c), func(start, end int) {
		sumRange(a, b, c, start, end)
	})
}

// SumSections is SumSequential split by hand into
// min(workers, pbench.MaxSections) sections. Each section is handed to its
// own goroutine for the whole call, and the call returns once all of them
// finish.
func SumSections(workers int, a, b, c []float64) {
	var g errgroup.Group
	for _, r := range pbench.Sections(len(c), workers) {
		r := r
		g.Go(func() error {
			sumRange(a, b, c, r.Start, r.End)
			return nil
		})
	}
	_ = g.Wait()
}

func sumRange(a, b, c []float64, start, end int) {
	a, b, c = a[start:end], b[start:end], c[start:end]
	for i := range c {
		c[i] = a[i] + b[i]
	}
}

// ReduceSequential returns the sum of all elements of c, added left to right.
//
// Returns 0 if the slice is empty.
func ReduceSequential(c []float64) float64 {
	var sum float64
	for _, v := range c {
		sum += v
	}
	return sum
}

// ReduceCombine returns the sum of all elements of c. Every chunk is summed
// into a private partial by its worker, and the partials are added in chunk
// order once the parallel loop finishes. The result may differ from
// ReduceSequential in the last bits because the additions are regrouped.
func ReduceCombine(pool *workerpool.Pool, c []float64) float64 {
	partials := make([]float64, pool.Chunks(len(c)))
	pool.ParallelForIndexed(len(c), func(chunk, start, end int) {
		partials[chunk] = ReduceSequential(c[start:end])
	})
	return ReduceSequential(partials)
}

// ReduceCritical returns the sum of all elements of c. Workers share one
// accumulator and every single addition to it happens under a mutex, so no
// update is lost but the adds are fully serialized.
func ReduceCritical(pool *workerpool.Pool, c []float64) float64 {
	var (
		mu  sync.Mutex
		sum float64
	)
	pool.ParallelFor(len(c), func(start, end int) {
		for i := start; i < end; i++ {
			mu.Lock()
			sum += c[i]
			mu.Unlock()
		}
	})
	return sum
}
