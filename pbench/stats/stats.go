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

// Package stats turns repeated kernel timings into a trusted average: the
// mean of the runs that fall within one sample standard deviation of the raw
// mean. Runs disturbed by the scheduler, page faults or frequency changes
// land in the tails and are dropped.
package stats

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// StdDevAbout returns the sample standard deviation of sample around the
// given mean, with Bessel's correction (n-1 denominator).
//
// Returns NaN if the sample has fewer than two values.
func StdDevAbout(mean float64, sample []float64) float64 {
	n := float64(len(sample))
	if n < 2 {
		return math.NaN()
	}
	// MomentAbout divides by n; rescale to n-1.
	return math.Sqrt(stat.MomentAbout(2, sample, mean, nil) * n / (n - 1))
}

// Within returns the values of sample in [mean-sd, mean+sd], in order.
func Within(mean, sd float64, sample []float64) []float64 {
	low, high := mean-sd, mean+sd
	return lo.Filter(sample, func(v float64, _ int) bool {
		return low <= v && v <= high
	})
}

// TrustedMean returns the mean of the values of sample that lie within one
// sample standard deviation of mean, bounds included.
//
// If no value qualifies, which happens for a single-value sample or when the
// deviation is NaN, the raw mean is returned instead.
func TrustedMean(mean float64, sample []float64) float64 {
	kept := Within(mean, StdDevAbout(mean, sample), sample)
	if len(kept) == 0 {
		return mean
	}
	return stat.Mean(kept, nil)
}

// Measurement is the outcome of timing one kernel repeatedly.
type Measurement struct {
	// Samples holds the per-run times in milliseconds.
	Samples []float64

	// Mean is the arithmetic mean of Samples.
	Mean float64

	// Trusted is TrustedMean(Mean, Samples).
	Trusted float64
}

// Milliseconds converts d to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Measure calls run iterations times back to back and summarizes the
// timings. One "+" is written to progress per run, followed by the raw and
// trusted means. progress may be nil.
//
// iterations must be positive.
func Measure(iterations int, run func() time.Duration, progress io.Writer) Measurement {
	if progress == nil {
		progress = io.Discard
	}

	samples := make([]float64, iterations)
	fmt.Fprintln(progress)
	for i := range samples {
		samples[i] = Milliseconds(run())
		fmt.Fprint(progress, "+")
	}
	fmt.Fprintln(progress)

	m := Measurement{Samples: samples, Mean: stat.Mean(samples, nil)}
	fmt.Fprintf(progress, "AvgTime:%s\n", FormatMillis(m.Mean))
	m.Trusted = TrustedMean(m.Mean, samples)
	fmt.Fprintf(progress, "AvgTimeTrusted:%s\n", FormatMillis(m.Trusted))
	return m
}

// FormatMillis formats a millisecond value with six significant digits,
// the notation used for both console and file reports.
func FormatMillis(ms float64) string {
	return fmt.Sprintf("%.6g", ms)
}
