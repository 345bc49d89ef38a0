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
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Default sweep parameters.
const (
	DefaultMinSize    = 100000
	DefaultMaxSize    = 250000
	DefaultSizeStep   = 50000
	DefaultMaxThreads = 4
	DefaultIterations = 100
	DefaultOutput     = "output.txt"
)

var (
	// ErrInvalidConfig indicates a sweep configuration that cannot be run.
	ErrInvalidConfig = errors.New("invalid sweep configuration")

	configValidate = validator.New()
)

// Config describes one sweep: which array sizes and worker counts to cover,
// how many times to run each kernel, and where to write results.
type Config struct {
	// Sizes are the array lengths, run in ascending order.
	Sizes []int `yaml:"sizes" validate:"required,min=1,dive,gt=0"`

	// Threads are the worker counts, run in ascending order. Sequential
	// kernels are only measured when 1 is included.
	Threads []int `yaml:"threads" validate:"required,min=1,dive,gt=0"`

	// Iterations is the number of timed runs per combination.
	Iterations int `yaml:"iterations" validate:"gt=0"`

	// Output is the path of the flat results file, overwritten on each run.
	Output string `yaml:"output" validate:"required"`

	// MetricsFile, if set, receives the Prometheus text exposition of the
	// sweep once it completes.
	MetricsFile string `yaml:"metrics_file"`
}

// DefaultConfig returns the standard sweep: sizes 100000 to 250000 in steps
// of 50000, 1 to 4 workers, 100 iterations, results in output.txt.
func DefaultConfig() *Config {
	cfg := &Config{
		Iterations: DefaultIterations,
		Output:     DefaultOutput,
	}
	for size := DefaultMinSize; size <= DefaultMaxSize; size += DefaultSizeStep {
		cfg.Sizes = append(cfg.Sizes, size)
	}
	for threads := 1; threads <= DefaultMaxThreads; threads++ {
		cfg.Threads = append(cfg.Threads, threads)
	}
	return cfg
}

// LoadConfig reads a YAML sweep configuration. Fields absent from the file
// keep their DefaultConfig values. The result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the sweep config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the sweep config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field has an acceptable value, then sorts Sizes
// and Threads and drops duplicates so that each combination is run once.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	slices.Sort(c.Sizes)
	c.Sizes = slices.Compact(c.Sizes)
	slices.Sort(c.Threads)
	c.Threads = slices.Compact(c.Threads)
	return nil
}
