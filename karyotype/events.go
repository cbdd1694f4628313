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

package karyotype

import (
	"log"

	"github.com/googlegenomics/karyotype/genomics"
	"github.com/googlegenomics/karyotype/internal/events"
)

// ReadyEvent is published once the band table has been loaded.
type ReadyEvent struct {
	Viewer *Karyotype
}

// LoadDataTrackEvent asks the host to load the registered data track.
type LoadDataTrackEvent struct {
	Chr string `json:"chr"`
	URL string `json:"url"`
}

// BandClickedEvent reports a click on a band.
type BandClickedEvent struct {
	// Min is the genomic position under the pointer.
	Min int `json:"min"`
	// Max ends a window of one base per drawn pixel starting at Min.
	Max    int           `json:"max"`
	ChrLen int           `json:"chrLen"`
	Chr    string        `json:"chr"`
	Band   genomics.Band `json:"band"`
}

// HoverEvent reports the band under the pointer.
type HoverEvent struct {
	Chr  string        `json:"chr"`
	Band genomics.Band `json:"band"`
}

// SliderMovedEvent reports the region selected by dragging the thumb.
type SliderMovedEvent struct {
	Min int    `json:"min"`
	Max int    `json:"max"`
	Chr string `json:"chr"`
}

type dispatcher struct {
	viewerReady   *events.Topic[ReadyEvent]
	loadDataTrack *events.Topic[LoadDataTrackEvent]
	bandClicked   *events.Topic[BandClickedEvent]
	mouseOverBand *events.Topic[HoverEvent]
	sliderMoved   *events.Topic[SliderMovedEvent]
}

func newDispatcher(logger *log.Logger) dispatcher {
	return dispatcher{
		viewerReady:   events.NewTopic[ReadyEvent](events.ViewerReady, logger),
		loadDataTrack: events.NewTopic[LoadDataTrackEvent](events.LoadDataTrack, logger),
		bandClicked:   events.NewTopic[BandClickedEvent](events.BandClicked, logger),
		mouseOverBand: events.NewTopic[HoverEvent](events.MouseOverBand, logger),
		sliderMoved:   events.NewTopic[SliderMovedEvent](events.SliderMoved, logger),
	}
}

// OnViewerReady registers fn for the viewerReady event.  If the band table
// has already been loaded, fn is called immediately; listeners registered
// earlier are not called again.
func (k *Karyotype) OnViewerReady(fn func(ReadyEvent)) {
	k.events.viewerReady.Subscribe(fn)
}

// OnLoadDataTrack registers fn for the loadDataTrack event.
func (k *Karyotype) OnLoadDataTrack(fn func(LoadDataTrackEvent)) {
	k.events.loadDataTrack.Subscribe(fn)
}

// OnBandClicked registers fn for the bandClicked event.
func (k *Karyotype) OnBandClicked(fn func(BandClickedEvent)) {
	k.events.bandClicked.Subscribe(fn)
}

// OnMouseOverBand registers fn for the mouseOverBand event.
func (k *Karyotype) OnMouseOverBand(fn func(HoverEvent)) {
	k.events.mouseOverBand.Subscribe(fn)
}

// OnSliderMoved registers fn for the sliderMoved event.
func (k *Karyotype) OnSliderMoved(fn func(SliderMovedEvent)) {
	k.events.sliderMoved.Subscribe(fn)
}

// SetOnChange sets the single value thumb listener.  It receives the thumb
// position as a fraction of the track width before sliderMoved is
// published.
func (k *Karyotype) SetOnChange(fn func(fraction float64)) {
	k.onChange = fn
}
