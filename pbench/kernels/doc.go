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

// Package kernels provides the fixed set of array kernels whose parallel
// variants are compared against their sequential baselines.
//
// There are three operations, each with a sequential baseline and one or
// more parallel strategies:
//
//   - Fill: a[i] = sin(i-50) + cos(i/2). Sequential and parallel-for.
//   - Sum: c[i] = a[i] + b[i]. Sequential, parallel-for, and hand-made
//     sections (at most pbench.MaxSections of them).
//   - Reduce: sum of all elements of c. Sequential, private partials
//     combined at the end, and a shared accumulator guarded by a mutex.
//
// The untimed functions (FillSequential, SumParallelFor, ReduceCritical,
// ...) are usable on their own. Registry wraps each of them into a Kernel
// that measures its own wall-clock time:
//
//	bufs := kernels.NewBuffers(100000)
//	bufs.Seed()
//
//	pool := workerpool.New(4)
//	defer pool.Close()
//	env := kernels.Env{Pool: pool, Threads: 4}
//
//	for _, k := range kernels.Registry() {
//	    if k.Mode.AppliesTo(env.Threads) {
//	        fmt.Println(k.Name, k.Run(env, bufs))
//	    }
//	}
package kernels
