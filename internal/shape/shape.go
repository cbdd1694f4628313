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

// Package shape builds vector outlines for band shapes.
package shape

import (
	"strconv"
	"strings"
)

// Corners selects which corners of a rectangle are rounded.
type Corners struct {
	TopLeft, TopRight, BottomLeft, BottomRight bool
}

var (
	// None rounds no corner.
	None = Corners{}
	// Left rounds both left corners.
	Left = Corners{TopLeft: true, BottomLeft: true}
	// Right rounds both right corners.
	Right = Corners{TopRight: true, BottomRight: true}
)

// ClampRadius limits the corner radius r for a rectangle of width w so that
// narrow rectangles never get a zero or negative arc radius.
func ClampRadius(w, r float64) float64 {
	if w-r <= 0 {
		r = w - 1
	}
	if r < 1 {
		r = 1
	}
	return r
}

// RoundedRect returns an SVG path for the rectangle at (x, y) of size w by h.
// The outline starts on the top edge and runs clockwise; corners selected in
// c are replaced by quarter circle arcs of radius r.
func RoundedRect(x, y, w, h, r float64, c Corners) string {
	r = ClampRadius(w, r)

	var p path
	p.move(x+r, y)
	p.line('h', w-2*r)
	if c.TopRight {
		p.arc(r, r, r)
	} else {
		p.line('h', r)
		p.line('v', r)
	}
	p.line('v', h-2*r)
	if c.BottomRight {
		p.arc(r, -r, r)
	} else {
		p.line('v', r)
		p.line('h', -r)
	}
	p.line('h', 2*r-w)
	if c.BottomLeft {
		p.arc(r, -r, -r)
	} else {
		p.line('h', -r)
		p.line('v', -r)
	}
	p.line('v', 2*r-h)
	if c.TopLeft {
		p.arc(r, r, -r)
	} else {
		p.line('v', -r)
		p.line('h', r)
	}
	p.WriteByte('z')
	return p.String()
}

type path struct {
	strings.Builder
}

func (p *path) move(x, y float64) {
	p.WriteByte('M')
	p.WriteString(format(x))
	p.WriteByte(',')
	p.WriteString(format(y))
}

func (p *path) line(cmd byte, d float64) {
	p.WriteByte(cmd)
	p.WriteString(format(d))
}

// arc appends a clockwise quarter circle of radius r ending at (dx, dy)
// relative to the current point.
func (p *path) arc(r, dx, dy float64) {
	p.WriteByte('a')
	p.WriteString(format(r))
	p.WriteByte(',')
	p.WriteString(format(r))
	p.WriteString(" 0 0 1 ")
	p.WriteString(format(dx))
	p.WriteByte(',')
	p.WriteString(format(dy))
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
