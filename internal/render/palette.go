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

package render

import (
	"fmt"
	"image/color"
)

// Palette maps staining labels to band colours.
type Palette map[string]color.RGBA

var (
	// GradientColor is the lower stop of every band gradient.
	GradientColor = rgb(128, 128, 128)
	// BorderColor outlines every band except the centromere.
	BorderColor = rgb(0, 0, 0)
	// ThumbFill and ThumbStroke colour the region indicator.
	ThumbFill   = rgb(0, 128, 0)
	ThumbStroke = rgb(0, 100, 0)
)

// DefaultPalette returns the standard Giemsa staining colours.
func DefaultPalette() Palette {
	return Palette{
		"gneg":    rgb(255, 255, 255),
		"gpos25":  rgb(200, 200, 200),
		"gpos33":  rgb(180, 180, 180),
		"gpos50":  rgb(128, 128, 128),
		"gpos66":  rgb(100, 100, 100),
		"gpos75":  rgb(64, 64, 64),
		"gpos100": rgb(0, 0, 0),
		"gpos":    rgb(0, 0, 0),
		"gvar":    rgb(100, 100, 100),
		"acen":    rgb(255, 0, 0),
		"stalk":   rgb(100, 100, 100),
	}
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Merge returns a copy of p with the entries of overrides applied.
func (p Palette) Merge(overrides Palette) Palette {
	out := make(Palette, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb or #rgb.
func ParseHex(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("wrong length %d", len(s))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: %v", s, err)
	}
	return c, nil
}
