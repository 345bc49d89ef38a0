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

	"github.com/ajroetker/go-parbench/pbench"
	"github.com/ajroetker/go-parbench/pbench/kernels"
)

var (
	// ErrDuplicateResult indicates a second write to the same table cell.
	ErrDuplicateResult = errors.New("result already recorded")

	// ErrUnknownKernel indicates a kernel index outside the registry.
	ErrUnknownKernel = errors.New("unknown kernel")

	// ErrMissingResult indicates a report asked for a cell the sweep never
	// filled.
	ErrMissingResult = errors.New("result not computed")
)

// Key identifies one table cell.
type Key struct {
	Size    int
	Kernel  int
	Threads int
}

// Table holds trusted-mean times in milliseconds for each measured
// (size, kernel, worker count) combination.
//
// Sequential kernels are stored once, under one worker, and reading them at
// any worker count returns that value. Not safe for concurrent use.
type Table struct {
	modes []pbench.Mode
	cells map[Key]float64
}

// NewTable returns an empty table for the given kernel registry.
func NewTable(reg []kernels.Kernel) *Table {
	modes := make([]pbench.Mode, len(reg))
	for i, k := range reg {
		modes[i] = k.Mode
	}
	return &Table{modes: modes, cells: make(map[Key]float64)}
}

func (t *Table) key(size, kernel, threads int) (Key, error) {
	if kernel < 0 || kernel >= len(t.modes) {
		return Key{}, fmt.Errorf("%w: index %d", ErrUnknownKernel, kernel)
	}
	return Key{Size: size, Kernel: kernel, Threads: t.modes[kernel].Canonical(threads)}, nil
}

// Set records the time for a combination. Each cell may be written once.
func (t *Table) Set(size, kernel, threads int, ms float64) error {
	k, err := t.key(size, kernel, threads)
	if err != nil {
		return err
	}
	if _, ok := t.cells[k]; ok {
		return fmt.Errorf("%w: size %d, kernel %d, threads %d", ErrDuplicateResult, size, kernel, threads)
	}
	t.cells[k] = ms
	return nil
}

// Lookup returns the time for a combination and whether it was measured.
func (t *Table) Lookup(size, kernel, threads int) (float64, bool) {
	k, err := t.key(size, kernel, threads)
	if err != nil {
		return 0, false
	}
	v, ok := t.cells[k]
	return v, ok
}

// Len returns the number of recorded cells.
func (t *Table) Len() int {
	return len(t.cells)
}
