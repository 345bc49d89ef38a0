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

// MaxSections is the largest number of statically assigned sections a
// sectioned kernel splits its index range into.
const MaxSections = 4

// Range is the half-open index interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Partition splits [0, n) into parts contiguous, disjoint ranges that
// together cover every index. Range k is [k*n/parts, (k+1)*n/parts), so the
// sizes differ by at most one.
//
// Returns nil if n <= 0. parts is clamped to [1, n].
func Partition(n, parts int) []Range {
	if n <= 0 {
		return nil
	}
	parts = min(max(parts, 1), n)

	ranges := make([]Range, parts)
	for k := 0; k < parts; k++ {
		// 64-bit products keep k*n from overflowing on 32-bit platforms.
		ranges[k] = Range{
			Start: int(int64(n) * int64(k) / int64(parts)),
			End:   int(int64(n) * int64(k+1) / int64(parts)),
		}
	}
	return ranges
}

// Sections returns the section ranges a sectioned kernel uses for n indices
// when running with the given number of workers: min(workers, MaxSections)
// ranges from Partition.
func Sections(n, workers int) []Range {
	return Partition(n, min(workers, MaxSections))
}
