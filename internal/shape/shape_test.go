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

package shape

import (
	"strings"
	"testing"
)

func TestClampRadius(t *testing.T) {
	testCases := []struct {
		name string
		w, r float64
		want float64
	}{
		{"wide band", 100, 5, 5},
		{"narrow band", 3, 5, 2},
		{"width equals radius", 5, 5, 4},
		{"single pixel", 1, 5, 1},
		{"sub pixel", 0.5, 5, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClampRadius(tc.w, tc.r); got != tc.want {
				t.Errorf("Wrong radius: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRoundedRect(t *testing.T) {
	testCases := []struct {
		name    string
		corners Corners
		want    string
	}{
		{"square", None, "M5,0h10h5v5v10v5h-5h-10h-5v-5v-10v-5h5z"},
		{"left", Left, "M5,0h10h5v5v10v5h-5h-10a5,5 0 0 1 -5,-5v-10a5,5 0 0 1 5,-5z"},
		{"right", Right, "M5,0h10a5,5 0 0 1 5,5v10a5,5 0 0 1 -5,5h-10h-5v-5v-10v-5h5z"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoundedRect(0, 0, 20, 20, 5, tc.corners); got != tc.want {
				t.Errorf("Wrong path:\n got %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestRoundedRect_NarrowClampsRadius(t *testing.T) {
	got := RoundedRect(0, 0, 3, 10, 5, Corners{true, true, true, true})
	if !strings.HasPrefix(got, "M2,0h-1a2,2 0 0 1 2,2") {
		t.Errorf("Radius was not clamped to 2: %s", got)
	}
	if strings.Contains(got, "a-") {
		t.Errorf("Negative arc radius in %s", got)
	}
}

func TestRoundedRect_Closed(t *testing.T) {
	got := RoundedRect(10.5, 6, 33.25, 16, 5, Left)
	if !strings.HasPrefix(got, "M15.5,6") || !strings.HasSuffix(got, "z") {
		t.Errorf("Path is not a closed outline starting at the top edge: %s", got)
	}
}
