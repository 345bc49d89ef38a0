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

package sweep

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ajroetker/go-parbench/pbench"
	"github.com/ajroetker/go-parbench/pbench/kernels"
	"github.com/ajroetker/go-parbench/pbench/stats"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry mirrors the modes of the real registry with kernels that
// report a fixed duration and record which worker counts they ran at.
func fakeRegistry(d time.Duration, calls map[string][]int) []kernels.Kernel {
	reg := kernels.Registry()
	for i := range reg {
		name := reg[i].Name
		reg[i].Run = func(env kernels.Env, _ *kernels.Buffers) time.Duration {
			if calls != nil {
				calls[name] = append(calls[name], env.Threads)
			}
			return d
		}
	}
	return reg
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []int{100000, 150000, 200000, 250000}, cfg.Sizes)
	assert.Equal(t, []int{1, 2, 3, 4}, cfg.Threads)
	assert.Equal(t, 100, cfg.Iterations)
	assert.Equal(t, "output.txt", cfg.Output)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative iterations", func(c *Config) { c.Iterations = -1 }},
		{"no sizes", func(c *Config) { c.Sizes = nil }},
		{"zero size", func(c *Config) { c.Sizes = []int{100, 0} }},
		{"negative size", func(c *Config) { c.Sizes = []int{-5} }},
		{"no threads", func(c *Config) { c.Threads = []int{} }},
		{"zero threads", func(c *Config) { c.Threads = []int{0, 1} }},
		{"no output", func(c *Config) { c.Output = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			_, err = NewDriver(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigValidateSortsAndDedupes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{300, 100, 200, 100}
	cfg.Threads = []int{4, 1, 4, 2}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{100, 200, 300}, cfg.Sizes)
	assert.Equal(t, []int{1, 2, 4}, cfg.Threads)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sizes: [1000, 2000]\niterations: 5\nmetrics_file: m.prom\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000}, cfg.Sizes)
	assert.Equal(t, 5, cfg.Iterations)
	assert.Equal(t, "m.prom", cfg.MetricsFile)
	// Untouched fields keep their defaults.
	assert.Equal(t, []int{1, 2, 3, 4}, cfg.Threads)
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sizes: [oops"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("iterations: 0\n"), 0o644))
	_, err = LoadConfig(invalid)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTable(t *testing.T) {
	table := NewTable(kernels.Registry())

	// Kernel 0 is sequential, kernel 1 parallel.
	require.NoError(t, table.Set(1000, 0, 1, 1.5))
	require.NoError(t, table.Set(1000, 1, 2, 0.75))

	for _, threads := range []int{1, 2, 3, 4} {
		v, ok := table.Lookup(1000, 0, threads)
		assert.Truef(t, ok, "sequential kernel at threads=%d", threads)
		assert.Equal(t, 1.5, v)
	}

	v, ok := table.Lookup(1000, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, 0.75, v)

	_, ok = table.Lookup(1000, 1, 3)
	assert.False(t, ok, "unset parallel cell")
	_, ok = table.Lookup(2000, 0, 1)
	assert.False(t, ok, "unset size")
	_, ok = table.Lookup(1000, 99, 1)
	assert.False(t, ok, "unknown kernel")

	assert.ErrorIs(t, table.Set(1000, 0, 1, 2), ErrDuplicateResult)
	assert.ErrorIs(t, table.Set(1000, 0, 3, 2), ErrDuplicateResult, "sequential cells are shared")
	assert.ErrorIs(t, table.Set(1000, -1, 1, 2), ErrUnknownKernel)
	assert.Equal(t, 2, table.Len())
}

func TestRunApplicability(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{10, 20}
	cfg.Iterations = 3
	d, err := NewDriver(cfg)
	require.NoError(t, err)

	calls := make(map[string][]int)
	d.Kernels = fakeRegistry(time.Millisecond, calls)

	table, err := d.Run(context.Background())
	require.NoError(t, err)

	for _, k := range d.Kernels {
		switch k.Mode {
		case pbench.Sequential:
			// 2 sizes x 3 iterations, always with one worker.
			assert.Equal(t, []int{1, 1, 1, 1, 1, 1}, calls[k.Name], k.Name)
		case pbench.Parallel:
			assert.Equal(t, []int{2, 2, 2, 3, 3, 3, 4, 4, 4, 2, 2, 2, 3, 3, 3, 4, 4, 4}, calls[k.Name], k.Name)
		}
	}
	// 3 sequential kernels + 5 parallel kernels x 3 worker counts, per size.
	assert.Equal(t, 2*(3+5*3), table.Len())
}

func TestReportDefaultSweepLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = filepath.Join(t.TempDir(), "output.txt")
	cfg.Iterations = 2
	d, err := NewDriver(cfg)
	require.NoError(t, err)
	d.Kernels = fakeRegistry(1500*time.Microsecond, nil)

	table, err := d.Run(context.Background())
	require.NoError(t, err)

	var console bytes.Buffer
	require.NoError(t, d.WriteReport(table, &console))

	lines := readLines(t, cfg.Output)
	assert.Len(t, lines, 72)
	assert.Equal(t, 72, d.Lines())
	for _, line := range lines {
		assert.Equal(t, "1.5", line)
	}

	out := console.String()
	assert.True(t, strings.HasPrefix(out, "Thread 1 --------------\n\n----------100000 elements of array----------\nConsistent filling\t1.5 ms.\n"))
	assert.Contains(t, out, "Thread 4 --------------\n")
	assert.Contains(t, out, "----------250000 elements of array----------\n")
	assert.Contains(t, out, "Parallel sum the last vectors using Critical Sections\t1.5 ms.\n")
	assert.Equal(t, 4, strings.Count(out, "Consistent filling\t"))
	assert.Equal(t, 12, strings.Count(out, "Parallel filling using loop FOR\t"))
}

func TestReportOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{10, 20}
	cfg.Threads = []int{1, 2}
	d, err := NewDriver(cfg)
	require.NoError(t, err)

	// Fill the table by hand with values that encode their position.
	table := NewTable(d.Kernels)
	for _, size := range cfg.Sizes {
		for _, threads := range cfg.Threads {
			for idx, k := range d.Kernels {
				if k.Mode.AppliesTo(threads) {
					require.NoError(t, table.Set(size, idx, threads, float64(threads*1000+size+idx)))
				}
			}
		}
	}

	var file bytes.Buffer
	require.NoError(t, d.Report(table, &bytes.Buffer{}, &file))
	want := []string{
		"1010", "1012", "1015", // threads 1, size 10: kernels 0, 2, 5
		"1020", "1022", "1025",
		"2011", "2013", "2014", "2016", "2017", // threads 2, size 10
		"2021", "2023", "2024", "2026", "2027",
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", file.String())
}

func TestReportMissingResult(t *testing.T) {
	cfg := DefaultConfig()
	d, err := NewDriver(cfg)
	require.NoError(t, err)

	err = d.Report(NewTable(d.Kernels), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrMissingResult)
}

func TestWriteReportCreateError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = filepath.Join(t.TempDir(), "no-such-dir", "output.txt")
	d, err := NewDriver(cfg)
	require.NoError(t, err)

	err = d.WriteReport(NewTable(d.Kernels), &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestReportWriteError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{10}
	cfg.Threads = []int{1}
	d, err := NewDriver(cfg)
	require.NoError(t, err)
	table := NewTable(d.Kernels)
	for _, idx := range []int{0, 2, 5} {
		require.NoError(t, table.Set(10, idx, 1, 1))
	}

	err = d.Report(table, &bytes.Buffer{}, failingWriter{})
	assert.ErrorContains(t, err, "disk full")
}

func TestRunCanceled(t *testing.T) {
	d, err := NewDriver(DefaultConfig())
	require.NoError(t, err)
	d.Kernels = fakeRegistry(time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	table, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, table.Len())
}

func TestEndToEndSingleCombination(t *testing.T) {
	cfg := &Config{
		Sizes:      []int{100000},
		Threads:    []int{1},
		Iterations: 1,
		Output:     filepath.Join(t.TempDir(), "output.txt"),
	}
	d, err := NewDriver(cfg)
	require.NoError(t, err)

	var progress bytes.Buffer
	d.Progress = &progress
	table, err := d.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, d.WriteReport(table, &bytes.Buffer{}))

	lines := readLines(t, cfg.Output)
	require.Len(t, lines, 3)
	for _, line := range lines {
		v, err := strconv.ParseFloat(line, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.Equal(t, 3, strings.Count(progress.String(), "AvgTimeTrusted:"))
}

func TestMetrics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sizes = []int{10}
	cfg.Threads = []int{1, 2}
	cfg.Iterations = 4
	d, err := NewDriver(cfg)
	require.NoError(t, err)
	d.Kernels = fakeRegistry(2*time.Millisecond, nil)
	d.Metrics = NewMetrics("test-run")

	_, err = d.Run(context.Background())
	require.NoError(t, err)

	// One series per measured combination: 3 sequential + 5 parallel.
	assert.Equal(t, 8, testutil.CollectAndCount(d.Metrics.trusted))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.trusted.WithLabelValues("Consistent filling", "sequential", "10", "1")))
	assert.Equal(t, 4.0, testutil.ToFloat64(d.Metrics.kept.WithLabelValues("Parallel filling using loop FOR", "parallel", "10", "2")))

	path := filepath.Join(t.TempDir(), "pbench.prom")
	require.NoError(t, d.Metrics.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pbench_kernel_run_duration_seconds_count")
	assert.Contains(t, string(data), `run_id="test-run"`)
}

func TestNilMetricsObserve(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe(kernels.Registry()[0], 10, 1, stats.Measurement{})
	})
}
