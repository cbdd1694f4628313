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

package bands

import (
	"fmt"

	"github.com/googlegenomics/karyotype/genomics"
)

// Kind describes which corners of a band outline are rounded.
type Kind int

const (
	// Plain bands are drawn as rectangles.
	Plain Kind = iota
	// LeftRounded bands start a chromosome arm.
	LeftRounded
	// RightRounded bands end a chromosome arm.
	RightRounded
)

func (k Kind) String() string {
	switch k {
	case LeftRounded:
		return "left-rounded"
	case RightRounded:
		return "right-rounded"
	default:
		return "plain"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{Plain, LeftRounded, RightRounded} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown band outline %q", text)
}

// Classify returns the outline of each band in the sorted input.  Bands next
// to the centromere are rounded towards it, which makes the arms taper; the
// remaining first and last bands are rounded towards the telomeres.  A single
// band is LeftRounded.
func Classify(bands []genomics.Band) []Kind {
	if len(bands) == 0 {
		return nil
	}
	kinds := make([]Kind, len(bands))
	last := len(bands) - 1
	for i, b := range bands {
		nextIsCentromere := i < last && bands[i+1].IsCentromere()
		prevWasCentromere := i > 0 && bands[i-1].IsCentromere()
		switch {
		case !b.IsCentromere() && nextIsCentromere:
			kinds[i] = RightRounded
		case !b.IsCentromere() && prevWasCentromere:
			kinds[i] = LeftRounded
		case i == 0:
			kinds[i] = LeftRounded
		case i == last:
			kinds[i] = RightRounded
		default:
			kinds[i] = Plain
		}
	}
	return kinds
}
