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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ajroetker/go-parbench/pbench/stats"
)

// Report writes the table in nested order: worker count, then size, then
// kernel in registry order, skipping kernels not applicable at that worker
// count. console gets headers and "<name>\t<ms> ms." lines; file gets the
// bare values, one per line. Write errors on file are returned.
func (d *Driver) Report(table *Table, console, file io.Writer) error {
	for _, threads := range d.Config.Threads {
		fmt.Fprintf(console, "Thread %d --------------\n", threads)

		for _, size := range d.Config.Sizes {
			fmt.Fprintf(console, "\n----------%d elements of array----------\n", size)

			for idx, k := range d.Kernels {
				if !k.Mode.AppliesTo(threads) {
					continue
				}
				ms, ok := table.Lookup(size, idx, threads)
				if !ok {
					return fmt.Errorf("%w: %q at size %d, threads %d", ErrMissingResult, k.Name, size, threads)
				}
				value := stats.FormatMillis(ms)
				fmt.Fprintf(console, "%s\t%s ms.\n", k.Name, value)
				if _, err := fmt.Fprintln(file, value); err != nil {
					return fmt.Errorf("failed to write result: %w", err)
				}
			}
		}
	}
	return nil
}

// WriteReport creates or truncates Config.Output and writes the report to it
// and to console.
func (d *Driver) WriteReport(table *Table, console io.Writer) (err error) {
	f, err := os.Create(d.Config.Output)
	if err != nil {
		return fmt.Errorf("failed to create the output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close the output file: %w", cerr))
		}
	}()

	w := bufio.NewWriter(f)
	if err := d.Report(table, console, w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write the output file: %w", err)
	}
	return nil
}

// Lines returns how many values Report writes for the configured sweep.
func (d *Driver) Lines() int {
	n := 0
	for _, threads := range d.Config.Threads {
		for _, k := range d.Kernels {
			if k.Mode.AppliesTo(threads) {
				n += len(d.Config.Sizes)
			}
		}
	}
	return n
}
