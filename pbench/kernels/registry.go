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
	"time"

	"github.com/ajroetker/go-parbench/pbench"
	"github.com/ajroetker/go-parbench/pbench/workerpool"
)

// Buffers holds the three arrays the kernels work on. Fill kernels write A,
// sum kernels read A and B and write C, reductions read C.
type Buffers struct {
	A, B, C []float64
}

// NewBuffers allocates zeroed buffers of the given size.
func NewBuffers(size int) *Buffers {
	return &Buffers{
		A: make([]float64, size),
		B: make([]float64, size),
		C: make([]float64, size),
	}
}

// Size returns the number of elements in each buffer.
func (b *Buffers) Size() int {
	return len(b.C)
}

// Resize sets every buffer to the given size, reusing the backing arrays when
// they are large enough. Elements kept from a previous size are not cleared.
func (b *Buffers) Resize(size int) {
	b.A = resize(b.A, size)
	b.B = resize(b.B, size)
	b.C = resize(b.C, size)
}

func resize(s []float64, size int) []float64 {
	if cap(s) >= size {
		return s[:size]
	}
	grown := make([]float64, size)
	copy(grown, s)
	return grown
}

// Seed fills B with FillValue so that sum and reduction kernels see the same
// input for a given size. It is not part of any timing.
func (b *Buffers) Seed() {
	FillSequential(b.B)
}

// Env carries the parallel execution settings into a kernel call. Threads is
// the worker count under test, and Pool has exactly that many workers.
type Env struct {
	Pool    *workerpool.Pool
	Threads int
}

// Kernel is one timed kernel variant.
type Kernel struct {
	// Name is the display name used in reports.
	Name string

	// Mode decides at which worker counts the kernel is measured.
	Mode pbench.Mode

	// Run executes the kernel once over bufs and returns the elapsed
	// wall-clock time of the kernel body alone.
	Run func(env Env, bufs *Buffers) time.Duration
}

// sink keeps reduction results observable so the loops are not eliminated.
var sink float64

// Result returns the value computed by the most recent timed reduction.
func Result() float64 {
	return sink
}

// Registry returns the eight kernels in their fixed report order. The slice
// is freshly allocated on every call.
func Registry() []Kernel {
	return []Kernel{
		{
			Name: "Consistent filling",
			Mode: pbench.Sequential,
			Run: func(_ Env, bufs *Buffers) time.Duration {
				start := time.Now()
				FillSequential(bufs.A)
				return time.Since(start)
			},
		},
		{
			Name: "Parallel filling using loop FOR",
			Mode: pbench.Parallel,
			Run: func(env Env, bufs *Buffers) time.Duration {
				start := time.Now()
				FillParallel(env.Pool, bufs.A)
				return time.Since(start)
			},
		},
		{
			Name: "Consistent sum two vectors",
			Mode: pbench.Sequential,
			Run: func(_ Env, bufs *Buffers) time.Duration {
				start := time.Now()
				SumSequential(bufs.A, bufs.B, bufs.C)
				return time.Since(start)
			},
		},
		{
			Name: "Parallel sum two vectors using loop FOR",
			Mode: pbench.Parallel,
			Run: func(env Env, bufs *Buffers) time.Duration {
				start := time.Now()
				SumParallelFor(env.Pool, bufs.A, bufs.B, bufs.C)
				return time.Since(start)
			},
		},
		{
			Name: "Parallel sum two vectors using Sections",
			Mode: pbench.Parallel,
			Run: func(env Env, bufs *Buffers) time.Duration {
				start := time.Now()
				SumSections(env.Threads, bufs.A, bufs.B, bufs.C)
				return time.Since(start)
			},
		},
		{
			Name: "Consistent sum the last vector",
			Mode: pbench.Sequential,
			Run: func(_ Env, bufs *Buffers) time.Duration {
				start := time.Now()
				sink = ReduceSequential(bufs.C)
				return time.Since(start)
			},
		},
		{
			Name: "Parallel sum last vector using Reduction",
			Mode: pbench.Parallel,
			Run: func(env Env, bufs *Buffers) time.Duration {
				start := time.Now()
				sink = ReduceCombine(env.Pool, bufs.C)
				return time.Since(start)
			},
		},
		{
			Name: "Parallel sum the last vectors using Critical Sections",
			Mode: pbench.Parallel,
			Run: func(env Env, bufs *Buffers) time.Duration {
				start := time.Now()
				sink = ReduceCritical(env.Pool, bufs.C)
				return time.Since(start)
			},
		},
	}
}
