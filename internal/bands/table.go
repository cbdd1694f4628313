// Copyright 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bands reads cytogenetic band tables and decides the outline of
// each band.
package bands

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/googlegenomics/karyotype/genomics"
)

// minimumNameLength filters out malformed and empty chromosome names.
const minimumNameLength = 3

type row struct {
	chr  string
	band genomics.Band
}

// Table is a parsed band annotation table.  The zero value is an empty table.
type Table struct {
	rows []row
	// Warnings lists rows that were skipped while parsing.
	Warnings []error
}

// Parse reads a tab separated band table from r.  Each row holds the
// chromosome, band start, band end, band name and staining label.  Lines
// that start with '#' are comments.
func Parse(r io.Reader) (*Table, error) {
	table := &Table{}
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\t' })
		if len(fields) < 5 {
			table.Warnings = append(table.Warnings, fmt.Errorf("line %d: expected 5 fields, got %d", line, len(fields)))
			continue
		}
		min, err := strconv.Atoi(fields[1])
		if err != nil {
			table.Warnings = append(table.Warnings, fmt.Errorf("line %d: parsing start: %v", line, err))
			continue
		}
		max, err := strconv.Atoi(fields[2])
		if err != nil {
			table.Warnings = append(table.Warnings, fmt.Errorf("line %d: parsing end: %v", line, err))
			continue
		}
		if max < min {
			table.Warnings = append(table.Warnings, fmt.Errorf("line %d: end %d before start %d", line, max, min))
			continue
		}
		table.rows = append(table.rows, row{
			chr:  fields[0],
			band: genomics.Band{ID: fields[3], Min: min, Max: max, Label: fields[4]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading band table: %v", err)
	}
	return table, nil
}

// NewTable returns a table holding bands for a single chromosome.  It is
// mostly useful for hosts that supply band data directly.
func NewTable(chr string, bands []genomics.Band) *Table {
	table := &Table{}
	for _, b := range bands {
		table.rows = append(table.rows, row{chr, b})
	}
	return table
}

// Len returns the number of bands in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Bands returns the bands of chr sorted by start position.
func (t *Table) Bands(chr string) []genomics.Band {
	if t == nil {
		return nil
	}
	var out []genomics.Band
	for _, r := range t.rows {
		if r.chr == chr {
			out = append(out, r.band)
		}
	}
	Sort(out)
	return out
}

// Length returns the largest band end of chr, or zero for an unknown
// chromosome.
func (t *Table) Length(chr string) int {
	if t == nil {
		return 0
	}
	var length int
	for _, r := range t.rows {
		if r.chr == chr && r.band.Max > length {
			length = r.band.Max
		}
	}
	return length
}

// Sizes returns the length of every chromosome in the table.
func (t *Table) Sizes() map[string]int {
	sizes := make(map[string]int)
	if t == nil {
		return sizes
	}
	for _, r := range t.rows {
		if len(r.chr) < minimumNameLength {
			continue
		}
		if r.band.Max > sizes[r.chr] {
			sizes[r.chr] = r.band.Max
		}
	}
	return sizes
}

// Chromosomes returns the distinct chromosome names in natural order, so that
// chr2 sorts before chr10.
func (t *Table) Chromosomes() []string {
	sizes := t.Sizes()
	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})
	return names
}

// Sort orders bands by ascending start position.
func Sort(bands []genomics.Band) {
	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].Min < bands[j].Min
	})
}

// Fallback returns the band drawn when nothing is known about a chromosome.
func Fallback(chrLen int) genomics.Band {
	return genomics.Band{Min: 1, Max: chrLen, Label: "gneg"}
}

// naturalLess compares strings treating runs of digits as numbers.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := a[0], b[0]
		if isDigit(ca) && isDigit(cb) {
			na, ra := leadingNumber(a)
			nb, rb := leadingNumber(b)
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func leadingNumber(s string) (uint64, string) {
	var i int
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		n = ^uint64(0)
	}
	return n, s[i:]
}
