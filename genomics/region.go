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

// Package genomics contains definitions related to cytogenetic band data.
package genomics

import (
	"fmt"
	"strings"
)

// FallbackLength is the chromosome length assumed when no bands are known
// for a chromosome.
const FallbackLength = 200000000

// Region defines the currently viewed part of a chromosome.
type Region struct {
	// Chr names the chromosome, for example "chr17".
	Chr string `json:"chr"`
	// Start and End specify the viewed range in base pairs.  End may exceed
	// the chromosome length; it is up to the host to avoid that.
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bases covered by the region.
func (region Region) Len() int {
	if region.End < region.Start {
		return 0
	}
	return region.End - region.Start
}

func (region Region) String() string {
	return fmt.Sprintf("[chr:%s, start:%d, end:%d]", region.Chr, region.Start, region.End)
}

// Band is a contiguous cytogenetic sub-region of a chromosome.
type Band struct {
	// ID is the band name, for example "p13.3".
	ID string `json:"id"`
	// Min and Max are the band boundaries in base pairs, Min <= Max.
	Min int `json:"min"`
	Max int `json:"max"`
	// Label is the staining label (gneg, gpos50, acen, ...).
	Label string `json:"label"`
}

// IsCentromere reports whether the band depicts the centromere or a stalk.
// Such bands are drawn with reduced height.
func (b Band) IsCentromere() bool {
	return b.Label == "acen" || b.Label == "stalk"
}

// IsGreyscale reports whether the band carries a Giemsa staining label.
func (b Band) IsGreyscale() bool {
	return strings.HasPrefix(b.Label, "g")
}

func (b Band) String() string {
	return fmt.Sprintf("[band:%s, min:%d, max:%d, label:%s]", b.ID, b.Min, b.Max, b.Label)
}
