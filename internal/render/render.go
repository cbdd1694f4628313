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

// Package render turns a sorted band list into drawable shapes.  The output
// is a plain model; drawing surfaces (SVG, terminal) project it.
package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/googlegenomics/karyotype/genomics"
	"github.com/googlegenomics/karyotype/internal/bands"
	"github.com/googlegenomics/karyotype/internal/coords"
	"github.com/googlegenomics/karyotype/internal/shape"
	"github.com/googlegenomics/karyotype/internal/spans"
)

const (
	// cornerRadius is the radius of the rounded band ends.
	cornerRadius = 5
	// bandOverhang is added to the track height of full height bands.
	bandOverhang = 6
	// nameBaseline is the offset of the chromosome name below Y.
	nameBaseline = 12
)

// Gradient is a two stop vertical fill.  Top is used at 50% and Bottom at
// 100% of the shape height.
type Gradient struct {
	ID     string
	Top    string
	Bottom string
}

// Shape is one drawable band.
type Shape struct {
	// Index is the position of the band in the input list.
	Index  int
	Band   genomics.Band
	Kind   bands.Kind
	X, Y   float64
	Width  float64
	Height float64
	Path   string
	Fill   Gradient
	Stroke string
	Title  string
}

// Text is a piece of text anchored at its baseline.
type Text struct {
	X, Y  float64
	Value string
}

// Label annotates a genomic range below the bands.
type Label struct {
	Text        string
	Start, Stop int
}

// LabelShape is a positioned Label.
type LabelShape struct {
	Label
	X, Y, Width, Height float64
}

// Strip is the drawable form of one chromosome.
type Strip struct {
	Chr      string
	ChrLen   int
	Geometry coords.Geometry
	Shapes   []Shape
	// Greyscale is the union of all Giemsa stained band ranges.
	Greyscale spans.Set
	// Warnings lists bands that could not be drawn.
	Warnings []error
	Name     *Text
	Labels   []LabelShape
	Height   float64
}

// Builder renders bands for a single chromosome.
type Builder struct {
	Mapper  coords.Mapper
	Palette Palette
	Chr     string
	// GradientPrefix keeps gradient IDs unique when several karyotypes share
	// a document.
	GradientPrefix string
	ShowName       bool
	Labels         []Label
}

// Build returns the strip for bands, which must be sorted by start position.
// Bands without a known colour or without visible width are skipped and
// reported in Strip.Warnings.
func (b Builder) Build(input []genomics.Band) Strip {
	palette := b.Palette
	if palette == nil {
		palette = DefaultPalette()
	}
	g := b.Mapper.Geometry
	strip := Strip{
		Chr:      b.Chr,
		ChrLen:   b.Mapper.ChrLen,
		Geometry: g,
	}

	resolved := make([]genomics.Band, len(input))
	copy(resolved, input)
	for i := range resolved {
		if _, ok := palette[resolved[i].Label]; !ok {
			if _, ok := palette[resolved[i].ID]; ok {
				resolved[i].Label = resolved[i].ID
			}
		}
	}
	kinds := bands.Classify(resolved)

	for i, band := range resolved {
		col, ok := palette[band.Label]
		if !ok {
			strip.Warnings = append(strip.Warnings, fmt.Errorf("band %d %s: unknown label %q", i, band.ID, band.Label))
			continue
		}
		min, max := b.Mapper.ToScreen(float64(band.Min)), b.Mapper.ToScreen(float64(band.Max))
		if max <= min {
			strip.Warnings = append(strip.Warnings, fmt.Errorf("band %d %s: no visible width (%v <= %v)", i, band.ID, max, min))
			continue
		}

		y, height := g.Y, g.TrackHeight+bandOverhang
		if band.IsCentromere() {
			y = g.Y + g.TrackHeight/4
			height = bandOverhang + g.TrackHeight/2
		}

		stroke := Hex(BorderColor)
		if band.Label == "acen" {
			stroke = Hex(col)
		}

		strip.Shapes = append(strip.Shapes, Shape{
			Index:  i,
			Band:   band,
			Kind:   kinds[i],
			X:      min,
			Y:      y,
			Width:  max - min,
			Height: height,
			Path:   shape.RoundedRect(min, y, max-min, height, cornerRadius, corners(kinds[i])),
			Fill: Gradient{
				ID:     fmt.Sprintf("%sgradient-%s-%d", b.GradientPrefix, b.Chr, i),
				Top:    Hex(col),
				Bottom: Hex(GradientColor),
			},
			Stroke: stroke,
			Title:  b.title(band),
		})

		if band.IsGreyscale() {
			strip.Greyscale.Add(spans.Range{Start: band.Min, End: band.Max})
		}
	}

	if b.ShowName {
		strip.Name = &Text{X: 0, Y: g.Y + nameBaseline, Value: b.Chr}
	}

	var extra int
	if len(b.Labels) > 0 {
		extra++
		top := g.Y + g.TrackHeight + bandOverhang
		for _, l := range b.Labels {
			x := b.Mapper.ToScreen(float64(l.Start))
			strip.Labels = append(strip.Labels, LabelShape{
				Label:  l,
				X:      x,
				Y:      top,
				Width:  b.Mapper.ToScreen(float64(l.Stop)) - x,
				Height: g.TrackHeight,
			})
		}
	}
	strip.Height = g.Height(extra)
	return strip
}

// title describes a band as "<chromosome number><band> <min> - <max>".
func (b Builder) title(band genomics.Band) string {
	var number string
	if strings.HasPrefix(b.Chr, "chr") {
		number = b.Chr[len("chr"):]
	}
	return fmt.Sprintf("%s%s %s - %s", number, band.ID,
		humanize.Comma(int64(band.Min)), humanize.Comma(int64(band.Max)))
}

func corners(k bands.Kind) shape.Corners {
	switch k {
	case bands.LeftRounded:
		return shape.Left
	case bands.RightRounded:
		return shape.Right
	}
	return shape.None
}

// ShapeAt returns the index in s.Shapes of the shape under x, or -1.
func (s Strip) ShapeAt(x float64) int {
	for i, sh := range s.Shapes {
		if x >= sh.X && x < sh.X+sh.Width {
			return i
		}
	}
	return -1
}
