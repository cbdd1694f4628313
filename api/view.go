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

package api

import (
	"bytes"
	"net/http"

	"github.com/googlegenomics/karyotype/genomics"
	"github.com/googlegenomics/karyotype/internal/bands"
	"github.com/googlegenomics/karyotype/karyotype"
)

type thumbView struct {
	X       float64 `json:"x"`
	Width   float64 `json:"width"`
	Visible bool    `json:"visible"`
	State   string  `json:"state"`
}

type bandView struct {
	Index int           `json:"index"`
	Band  genomics.Band `json:"band"`
	Kind  bands.Kind    `json:"kind"`
	X     float64       `json:"x"`
	Width float64       `json:"width"`
	Path  string        `json:"path"`
	Fill  string        `json:"fill"`
	Title string        `json:"title"`
}

type karyotypeView struct {
	Chr      string          `json:"chr"`
	ChrLen   int             `json:"chrLen"`
	View     genomics.Region `json:"view"`
	Scale    float64         `json:"scale"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Bands    []bandView      `json:"bands"`
	Thumb    thumbView       `json:"thumb"`
	Warnings []string        `json:"warnings,omitempty"`
	Events   []event         `json:"events,omitempty"`
}

// writeViewer writes the drawn state of viewer to w as SVG or JSON.  Events
// are only included in JSON responses.
func writeViewer(w http.ResponseWriter, viewer *karyotype.Karyotype, format string, emitted []event) {
	if format == formatSVG {
		var buf bytes.Buffer
		if err := viewer.WriteSVG(&buf); err != nil {
			writeError(w, newInvalidTransitionError("drawing", err))
			return
		}
		w.Header().Add("Content-type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
		return
	}

	strip := viewer.Strip()
	view := karyotypeView{
		Chr:    viewer.Chr(),
		ChrLen: viewer.ChrLen(),
		View:   viewer.View(),
		Scale:  viewer.Scale(),
		Width:  viewer.Width(),
		Height: strip.Height,
		Bands:  []bandView{},
		Events: emitted,
	}
	for i, s := range strip.Shapes {
		view.Bands = append(view.Bands, bandView{
			Index: i,
			Band:  s.Band,
			Kind:  s.Kind,
			X:     s.X,
			Width: s.Width,
			Path:  s.Path,
			Fill:  s.Fill.Top,
			Title: s.Title,
		})
	}
	for _, warning := range strip.Warnings {
		view.Warnings = append(view.Warnings, warning.Error())
	}
	view.Thumb.X, view.Thumb.Width, view.Thumb.Visible = viewer.Thumb()
	view.Thumb.State = viewer.ThumbState().String()
	writeJSON(w, http.StatusOK, view)
}
