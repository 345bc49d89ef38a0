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
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// ErrMismatch indicates that a parallel kernel disagrees with its
// sequential baseline.
var ErrMismatch = errors.New("kernel output differs from sequential baseline")

// ReduceTolerance is the relative tolerance allowed between a regrouped
// parallel reduction and the sequential sum.
const ReduceTolerance = 1e-9

// Verify runs every parallel variant over freshly seeded buffers of the given
// size and compares it with the sequential baseline. Fill and sum outputs
// must match exactly; reductions must agree within ReduceTolerance relative
// to the sum of magnitudes.
func Verify(env Env, size int) error {
	want := NewBuffers(size)
	want.Seed()
	FillSequential(want.A)
	SumSequential(want.A, want.B, want.C)
	wantSum := ReduceSequential(want.C)

	got := NewBuffers(size)
	got.Seed()

	FillParallel(env.Pool, got.A)
	if !floats.Equal(got.A, want.A) {
		return fmt.Errorf("fill parallel-for, size %d: %w", size, ErrMismatch)
	}

	SumParallelFor(env.Pool, got.A, got.B, got.C)
	if !floats.Equal(got.C, want.C) {
		return fmt.Errorf("sum parallel-for, size %d: %w", size, ErrMismatch)
	}

	clear(got.C)
	SumSections(env.Threads, got.A, got.B, got.C)
	if !floats.Equal(got.C, want.C) {
		return fmt.Errorf("sum sections, size %d: %w", size, ErrMismatch)
	}

	scale := floats.Norm(want.C, 1)
	tol := ReduceTolerance * math.Max(scale, 1)
	if s := ReduceCombine(env.Pool, got.C); !scalar.EqualWithinAbs(s, wantSum, tol) {
		return fmt.Errorf("reduce combine, size %d: got %v, want %v: %w", size, s, wantSum, ErrMismatch)
	}
	if s := ReduceCritical(env.Pool, got.C); !scalar.EqualWithinAbs(s, wantSum, tol) {
		return fmt.Errorf("reduce critical, size %d: got %v, want %v: %w", size, s, wantSum, ErrMismatch)
	}
	return nil
}
