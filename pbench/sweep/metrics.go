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
	"fmt"
	"strconv"

	"github.com/ajroetker/go-parbench/pbench/kernels"
	"github.com/ajroetker/go-parbench/pbench/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricLabels = []string{"kernel", "mode", "size", "threads"}

// Metrics collects sweep results into a private Prometheus registry that can
// be dumped in the text exposition format, for example into a node_exporter
// textfile directory. A nil *Metrics ignores observations.
type Metrics struct {
	registry *prometheus.Registry

	runDuration *prometheus.HistogramVec
	meanMillis  *prometheus.GaugeVec
	trusted     *prometheus.GaugeVec
	kept        *prometheus.GaugeVec
}

// NewMetrics creates the collectors, labelled with the given run id.
func NewMetrics(runID string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"run_id": runID}

	return &Metrics{
		registry: reg,
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "pbench_kernel_run_duration_seconds",
			Help:        "Wall-clock time of single kernel runs",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
		}, metricLabels),
		meanMillis: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pbench_kernel_mean_milliseconds",
			Help:        "Raw mean kernel time over all runs of a combination",
			ConstLabels: constLabels,
		}, metricLabels),
		trusted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pbench_kernel_trusted_mean_milliseconds",
			Help:        "Mean kernel time over runs within one standard deviation of the raw mean",
			ConstLabels: constLabels,
		}, metricLabels),
		kept: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pbench_kernel_trusted_runs",
			Help:        "Number of runs that entered the trusted mean",
			ConstLabels: constLabels,
		}, metricLabels),
	}
}

// Registry returns the registry holding the sweep collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records the measurement of one kernel at one size and worker count.
func (m *Metrics) Observe(k kernels.Kernel, size, threads int, meas stats.Measurement) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"kernel":  k.Name,
		"mode":    k.Mode.String(),
		"size":    strconv.Itoa(size),
		"threads": strconv.Itoa(threads),
	}

	hist := m.runDuration.With(labels)
	for _, ms := range meas.Samples {
		hist.Observe(ms / 1000)
	}
	m.meanMillis.With(labels).Set(meas.Mean)
	m.trusted.With(labels).Set(meas.Trusted)
	sd := stats.StdDevAbout(meas.Mean, meas.Samples)
	m.kept.With(labels).Set(float64(len(stats.Within(meas.Mean, sd, meas.Samples))))
}

// WriteTextfile writes all collected metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
