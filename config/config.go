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

// Package config reads karyotype style files.
//
// A style file is YAML:
//
//	data: gs://bucket/cytoBand.txt.gz
//	scale: 0.5
//	show_name: false
//	geometry:
//	  trackHeight: 14
//	palette:
//	  gpos100: "#202020"
//	  acen: "#a00"
package config

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/googlegenomics/karyotype/internal/coords"
	"github.com/googlegenomics/karyotype/internal/render"
	"github.com/googlegenomics/karyotype/karyotype"
)

// Style holds the settings of a style file.  Geometry values that are not
// set keep their defaults.
type Style struct {
	Data      string            `yaml:"data"`
	Scale     float64           `yaml:"scale"`
	ShowName  *bool             `yaml:"show_name"`
	ShowThumb *bool             `yaml:"show_thumb"`
	Geometry  coords.Geometry   `yaml:"geometry"`
	Palette   map[string]string `yaml:"palette"`
}

// Default returns the style used when no style file is given.
func Default() Style {
	return Style{Geometry: coords.DefaultGeometry()}
}

// Load reads the style file at path.  An empty path returns Default.
func Load(path string) (Style, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("reading style file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a style file.
func Parse(data []byte) (Style, error) {
	style := Default()
	if err := yaml.Unmarshal(data, &style); err != nil {
		return Style{}, fmt.Errorf("parsing style file: %w", err)
	}
	if style.Geometry.TrackHeight <= 0 {
		return Style{}, fmt.Errorf("track height %v must be positive", style.Geometry.TrackHeight)
	}
	return style, nil
}

// Options returns karyotype options for the style.  Data is used unless
// location is not empty.
func (s Style) Options(location string) (karyotype.Options, error) {
	if location == "" {
		location = s.Data
	}
	geometry := s.Geometry
	opts := karyotype.Options{
		DataLocation: location,
		Geometry:     &geometry,
		Scale:        s.Scale,
		HideName:     s.ShowName != nil && !*s.ShowName,
		HideThumb:    s.ShowThumb != nil && !*s.ShowThumb,
	}
	if len(s.Palette) > 0 {
		opts.Palette = make(render.Palette)
		for label, hex := range s.Palette {
			c, err := render.ParseHex(hex)
			if err != nil {
				return karyotype.Options{}, fmt.Errorf("palette entry %q: %v", label, err)
			}
			opts.Palette[label] = c
		}
	}
	return opts, nil
}
