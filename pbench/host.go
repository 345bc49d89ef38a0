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

// Package pbench holds the pieces shared by every parallel kernel benchmark:
// a description of the host the timings were taken on, the capability tag
// that decides at which worker counts a kernel is run, and the contiguous
// range partitioning used by the sectioned kernels.
//
// Basic usage:
//
//	import "github.com/ajroetker/go-parbench/pbench"
//
//	host := pbench.CurrentHost()
//	fmt.Println(host) // amd64 cpus=8 procs=8 [sse4.2 avx2 fma]
//
//	for _, r := range pbench.Partition(len(data), min(threads, pbench.MaxSections)) {
//	    process(data[r.Start:r.End])
//	}
package pbench

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Host describes the machine a sweep runs on.
type Host struct {
	// Arch is runtime.GOARCH.
	Arch string

	// NumCPU is the number of logical CPUs usable by the process.
	NumCPU int

	// MaxProcs is GOMAXPROCS at the time CurrentHost was called.
	MaxProcs int

	// Features lists the vector extensions reported by golang.org/x/sys/cpu,
	// for example "avx2" or "asimd". Empty on architectures we don't probe.
	Features []string
}

// hostFeatures is set by init() in host_*.go files.
var hostFeatures []string

// CurrentHost returns a description of the running machine.
func CurrentHost() Host {
	return Host{
		Arch:     runtime.GOARCH,
		NumCPU:   runtime.NumCPU(),
		MaxProcs: runtime.GOMAXPROCS(0),
		Features: append([]string(nil), hostFeatures...),
	}
}

// String returns a one-line summary suitable for report headers.
func (h Host) String() string {
	return fmt.Sprintf("%s cpus=%d procs=%d [%s]", h.Arch, h.NumCPU, h.MaxProcs, strings.Join(h.Features, " "))
}

// Oversubscribed reports whether running with the given number of workers
// asks for more goroutines than GOMAXPROCS can schedule at once. Timings
// taken oversubscribed measure scheduling rather than the kernel.
func (h Host) Oversubscribed(workers int) bool {
	return workers > h.MaxProcs
}

// NoFeatureProbeEnv checks if the PBENCH_NO_CPU_PROBE environment variable is
// set. When set, Features is left empty regardless of CPU capabilities, which
// keeps report headers stable across machines.
func NoFeatureProbeEnv() bool {
	return os.Getenv("PBENCH_NO_CPU_PROBE") != ""
}
