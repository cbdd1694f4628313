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

// Package svg encodes a rendered karyotype as a standalone SVG document.
package svg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/googlegenomics/karyotype/internal/render"
)

const namespace = "http://www.w3.org/2000/svg"

// ThumbOpacity is the opacity of the thumb rectangle.
const ThumbOpacity = 0.7

// Thumb is the horizontal extent of the thumb.
type Thumb struct {
	X, Width float64
}

type document struct {
	XMLName xml.Name `xml:"svg"`
	NS      string   `xml:"xmlns,attr"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	Class   string   `xml:"class,attr"`
	Defs    defs     `xml:"defs"`
	Paths   []path   `xml:"path"`
	Texts   []text   `xml:"text"`
	Rects   []rect   `xml:"rect"`
}

type defs struct {
	Gradients []gradient `xml:"linearGradient"`
}

type gradient struct {
	ID    string `xml:"id,attr"`
	X1    string `xml:"x1,attr"`
	Y1    string `xml:"y1,attr"`
	X2    string `xml:"x2,attr"`
	Y2    string `xml:"y2,attr"`
	Units string `xml:"gradientUnits,attr"`
	Stops []stop `xml:"stop"`
}

type stop struct {
	Offset string `xml:"offset,attr"`
	Color  string `xml:"stop-color,attr"`
}

type path struct {
	ID          string `xml:"id,attr,omitempty"`
	D           string `xml:"d,attr"`
	Fill        string `xml:"fill,attr"`
	Stroke      string `xml:"stroke,attr"`
	StrokeWidth string `xml:"stroke-width,attr"`
	Title       string `xml:"title,omitempty"`
}

type text struct {
	X     string `xml:"x,attr"`
	Y     string `xml:"y,attr"`
	Class string `xml:"class,attr,omitempty"`
	Value string `xml:",chardata"`
}

type rect struct {
	ID      string `xml:"id,attr,omitempty"`
	X       string `xml:"x,attr"`
	Y       string `xml:"y,attr"`
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
	Fill    string `xml:"fill,attr"`
	Stroke  string `xml:"stroke,attr,omitempty"`
	Opacity string `xml:"opacity,attr,omitempty"`
}

// Encode writes strip to w.  The thumb is drawn on top of the bands when
// thumb is not nil.
func Encode(w io.Writer, strip render.Strip, thumb *Thumb) error {
	g := strip.Geometry
	doc := document{
		NS:     namespace,
		Width:  num(g.Width + g.Padding*2),
		Height: num(strip.Height),
		Class:  "karyotype",
	}
	for _, s := range strip.Shapes {
		doc.Defs.Gradients = append(doc.Defs.Gradients, gradient{
			ID:    s.Fill.ID,
			X1:    "0",
			Y1:    "0",
			X2:    "0",
			Y2:    "1",
			Units: "objectBoundingBox",
			Stops: []stop{
				{Offset: "50%", Color: s.Fill.Top},
				{Offset: "100%", Color: s.Fill.Bottom},
			},
		})
		doc.Paths = append(doc.Paths, path{
			ID:          fmt.Sprintf("band-%s-%d", strip.Chr, s.Index),
			D:           s.Path,
			Fill:        fmt.Sprintf("url(#%s)", s.Fill.ID),
			Stroke:      s.Stroke,
			StrokeWidth: "1",
			Title:       s.Title,
		})
	}
	if strip.Name != nil {
		doc.Texts = append(doc.Texts, text{
			X:     num(strip.Name.X),
			Y:     num(strip.Name.Y),
			Class: "name",
			Value: strip.Name.Value,
		})
	}
	for _, l := range strip.Labels {
		doc.Rects = append(doc.Rects, rect{
			X:      num(l.X),
			Y:      num(l.Y),
			Width:  num(l.Width),
			Height: num(l.Height),
			Fill:   "none",
			Stroke: render.Hex(render.BorderColor),
		})
		doc.Texts = append(doc.Texts, text{
			X:     num(l.X),
			Y:     num(l.Y + l.Height),
			Class: "label",
			Value: l.Text,
		})
	}
	if thumb != nil {
		doc.Rects = append(doc.Rects, rect{
			ID:      "thumb-" + strip.Chr,
			X:       num(thumb.X),
			Y:       num(g.Y - g.ThumbSpacer),
			Width:   num(thumb.Width),
			Height:  num(g.Y + g.TrackHeight + g.ThumbSpacer*2),
			Fill:    render.Hex(render.ThumbFill),
			Stroke:  render.Hex(render.ThumbStroke),
			Opacity: num(ThumbOpacity),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding %s: %v", strip.Chr, err)
	}
	return enc.Flush()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
