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

package pbench

// Mode tags a kernel with the execution strategy it measures.
type Mode int

const (
	// Sequential kernels run on the calling goroutine only. Their timings do
	// not depend on the worker count, so they are measured once, with one
	// worker, and that value stands for every worker count.
	Sequential Mode = iota

	// Parallel kernels spread their work over the workers of a pool and are
	// measured separately for each worker count above one.
	Parallel
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// AppliesTo reports whether a kernel of this mode is measured when the sweep
// runs with the given number of workers.
func (m Mode) AppliesTo(workers int) bool {
	switch m {
	case Sequential:
		return workers == 1
	case Parallel:
		return workers > 1
	default:
		return false
	}
}

// Canonical returns the worker count under which results of this mode are
// stored for a sweep running with the given number of workers.
func (m Mode) Canonical(workers int) int {
	if m == Sequential {
		return 1
	}
	return workers
}
