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

// Package coords converts between genomic positions and screen pixels.
package coords

import (
	"errors"
	"fmt"
)

var (
	// ErrContainerTooSmall is returned when the container cannot hold a
	// karyotype.  The layout pass is abandoned and retried on the next resize.
	ErrContainerTooSmall = errors.New("container too small")
	// ErrZeroLength is returned when a mapper is requested for a chromosome
	// without length.
	ErrZeroLength = errors.New("chromosome length must be positive")
)

const (
	// NameMargin is the space reserved left of the bands for the chromosome
	// name.
	NameMargin = 40

	minimumAvailableWidth = 2
)

// Geometry holds the layout values of one drawing pass.  A Geometry is never
// modified after a pass has started; a rescale produces a new one.
type Geometry struct {
	Width       float64 `yaml:"width" json:"width"`
	LeftMargin  float64 `yaml:"leftMargin" json:"leftMargin"`
	Padding     float64 `yaml:"padding" json:"padding"`
	TrackHeight float64 `yaml:"trackHeight" json:"trackHeight"`
	Y           float64 `yaml:"y" json:"y"`
	ThumbWidth  float64 `yaml:"thumbWidth" json:"thumbWidth"`
	ThumbSpacer float64 `yaml:"thumbSpacer" json:"thumbSpacer"`
}

// DefaultGeometry returns the geometry used before the first layout pass.
func DefaultGeometry() Geometry {
	return Geometry{
		Width:       400,
		LeftMargin:  NameMargin,
		Padding:     1,
		TrackHeight: 10,
		Y:           6,
		ThumbWidth:  5,
		ThumbSpacer: 6,
	}
}

// NewGeometry derives the geometry for a container of the given width.  The
// drawable width is the container width less padding on both sides,
// multiplied by scale.
func NewGeometry(base Geometry, containerWidth, scale float64, showName bool) (Geometry, error) {
	g := base
	g.LeftMargin = 0
	if showName {
		g.LeftMargin = NameMargin
	}
	available := containerWidth - g.Padding*2
	if available < minimumAvailableWidth {
		return base, fmt.Errorf("laying out %v px: %w", containerWidth, ErrContainerTooSmall)
	}
	g.Width = available * scale
	return g, nil
}

// Height returns the height of the drawing, including one track height per
// extra track (labels, data tracks).
func (g Geometry) Height(extraTracks int) float64 {
	return g.Y + g.TrackHeight + g.ThumbSpacer*2 + g.Padding + float64(extraTracks)*g.TrackHeight
}

// Mapper converts coordinates for one chromosome under one geometry.
type Mapper struct {
	Geometry
	ChrLen int
}

// NewMapper returns a Mapper for a chromosome of length chrLen.
func NewMapper(g Geometry, chrLen int) (Mapper, error) {
	if chrLen <= 0 {
		return Mapper{}, ErrZeroLength
	}
	return Mapper{g, chrLen}, nil
}

// ToScreen returns the x coordinate of the genomic position pos.
func (m Mapper) ToScreen(pos float64) float64 {
	return m.LeftMargin + m.Padding + pos/float64(m.ChrLen)*(m.Width-m.LeftMargin)
}

// ToGenomic is the inverse of ToScreen.
func (m Mapper) ToGenomic(x float64) float64 {
	track := m.Width - m.LeftMargin
	if track <= 0 {
		return 0
	}
	return (x - m.LeftMargin - m.Padding) / track * float64(m.ChrLen)
}

// Span returns the number of pixels covered by [start, end).
func (m Mapper) Span(start, end float64) float64 {
	return m.ToScreen(end) - m.ToScreen(start)
}
