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

// Package spans maintains unions of genomic intervals.
package spans

import (
	"fmt"
	"sort"
)

// Range is the half open interval [Start, End).
type Range struct {
	Start, End int
}

// String returns a human readable description of the receiver.
func (r Range) String() string {
	return fmt.Sprintf("[%d-%d)", r.Start, r.End)
}

// Set is a union of ranges.  The zero value is an empty set.
type Set struct {
	ranges []Range
}

// Add adds r to the set.  Ranges that overlap or touch r are merged with it.
func (s *Set) Add(r Range) {
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	s.ranges = append(s.ranges, r)
	s.ranges = Merge(s.ranges)
}

// Ranges returns the disjoint ranges of the set in ascending order.
func (s *Set) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Len returns the number of bases covered by the set.
func (s *Set) Len() int {
	var n int
	for _, r := range s.ranges {
		n += r.End - r.Start
	}
	return n
}

// Contains reports whether pos lies inside the set.
func (s *Set) Contains(pos int) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End > pos
	})
	return i < len(s.ranges) && s.ranges[i].Start <= pos
}

// Merge sorts input and joins every pair of ranges that overlap or touch.
// The input slice is reordered in place.
func Merge(input []Range) []Range {
	if len(input) == 0 {
		return nil
	}
	sort.Slice(input, func(i, j int) bool {
		return input[i].Start < input[j].Start
	})

	var (
		merged = []Range{input[0]}
		output = &merged[0]
	)
	for i := 1; i < len(input); i++ {
		if input[i].Start <= output.End {
			if output.End < input[i].End {
				output.End = input[i].End
			}
		} else {
			merged = append(merged, input[i])
			output = &merged[len(merged)-1]
		}
	}
	return merged
}
