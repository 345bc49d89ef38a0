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

// Package sweep runs every kernel over the matrix of array sizes and worker
// counts, collects trusted-mean timings into a Table, and writes the report.
//
// The driver itself is single-threaded. All concurrency lives inside the
// timed kernel calls, which share one worker pool per worker count.
package sweep

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ajroetker/go-parbench/pbench/kernels"
	"github.com/ajroetker/go-parbench/pbench/stats"
	"github.com/ajroetker/go-parbench/pbench/workerpool"
)

// Driver runs a sweep.
type Driver struct {
	// Config is the validated sweep configuration.
	Config *Config

	// Kernels is the registry iterated for every size and worker count.
	Kernels []kernels.Kernel

	// Progress receives the per-run markers and per-combination means.
	Progress io.Writer

	// Logger receives structured progress events.
	Logger *slog.Logger

	// Metrics, if non-nil, receives every measurement.
	Metrics *Metrics
}

// NewDriver validates cfg and returns a driver over the standard kernel
// registry that discards progress output and logs.
func NewDriver(cfg *Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{
		Config:   cfg,
		Kernels:  kernels.Registry(),
		Progress: io.Discard,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Run measures every applicable (size, worker count, kernel) combination.
// Sizes are the outer loop: buffers are resized and B reseeded once per size.
// Kernels always run to completion; ctx is checked between combinations, and
// the partially filled table is returned with the context error.
func (d *Driver) Run(ctx context.Context) (*Table, error) {
	table := NewTable(d.Kernels)
	bufs := kernels.NewBuffers(0)

	for _, size := range d.Config.Sizes {
		bufs.Resize(size)
		bufs.Seed()
		d.Logger.Info("sweeping size", "size", size)

		for _, threads := range d.Config.Threads {
			if err := d.runThreads(ctx, table, bufs, threads); err != nil {
				return table, err
			}
		}
	}
	return table, nil
}

// runThreads measures every kernel applicable at the given worker count on
// a pool created for that count alone.
func (d *Driver) runThreads(ctx context.Context, table *Table, bufs *kernels.Buffers, threads int) error {
	pool := workerpool.New(threads)
	defer pool.Close()
	env := kernels.Env{Pool: pool, Threads: threads}

	for idx, k := range d.Kernels {
		if !k.Mode.AppliesTo(threads) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		m := stats.Measure(d.Config.Iterations, func() time.Duration {
			return k.Run(env, bufs)
		}, d.Progress)
		if err := table.Set(bufs.Size(), idx, threads, m.Trusted); err != nil {
			return err
		}
		d.Metrics.Observe(k, bufs.Size(), threads, m)

		d.Logger.Debug("measured kernel",
			"kernel", k.Name,
			"size", bufs.Size(),
			"threads", threads,
			"mean_ms", m.Mean,
			"trusted_ms", m.Trusted,
			"elapsed", time.Since(start))
	}
	return nil
}
