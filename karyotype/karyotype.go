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

// Package karyotype implements an interactive chromosome band navigator.
//
// A Karyotype draws the cytogenetic bands of one chromosome scaled to the
// width of its container, and a thumb marking the region the host is
// currently viewing.  Dragging the thumb, clicking and hovering bands are
// reported to the host through typed events.  The engine is single threaded:
// all methods must be called from the goroutine that handles input.
package karyotype

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/googlegenomics/karyotype/genomics"
	"github.com/googlegenomics/karyotype/internal/bands"
	"github.com/googlegenomics/karyotype/internal/coords"
	"github.com/googlegenomics/karyotype/internal/render"
	"github.com/googlegenomics/karyotype/internal/thumb"
	"github.com/googlegenomics/karyotype/source"
	"github.com/googlegenomics/karyotype/svg"
)

var (
	// ErrScaleOutOfRange is returned when a scale outside [0, 1] was
	// replaced by a valid one.
	ErrScaleOutOfRange = errors.New("scale has to be a value between 0 and 1")
	// ErrNotReady is returned for input that needs a drawn karyotype.
	ErrNotReady = errors.New("karyotype not ready")
	// ErrNoSuchBand is returned for band input that does not match a drawn
	// band.
	ErrNoSuchBand = errors.New("no such band")
)

// Options configure a Karyotype.  The zero value shows the name and the
// thumb and loads the default hg38 band table.
type Options struct {
	// DataLocation is read by Init when Source is nil.
	DataLocation string
	Source       source.Source
	// Geometry overrides the default layout.  Width and LeftMargin are
	// recomputed on every resize.
	Geometry  *coords.Geometry
	Scale     float64
	HideName  bool
	HideThumb bool
	Palette   render.Palette
	Logger    *log.Logger
}

// Karyotype is the chromosome navigator.  Create instances with New.
type Karyotype struct {
	id       string
	location string
	src      source.Source
	logger   *log.Logger
	palette  render.Palette

	table *bands.Table
	ready bool

	base           coords.Geometry
	geometry       coords.Geometry
	containerWidth float64
	scale          float64
	showName       bool

	view   genomics.Region
	chrLen int
	bands  []genomics.Band
	labels []render.Label

	dataTrackURL string

	strip  render.Strip
	mapper coords.Mapper
	drawn  bool

	thumb        *thumb.Controller
	thumbEnabled bool
	deferred     bool
	reload       bool
	pendingWidth float64
	dragChr      string

	onChange func(float64)
	events   dispatcher
}

// New returns a Karyotype configured by opts.
func New(opts Options) *Karyotype {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "karyotype: ", log.LstdFlags)
	}
	location := opts.DataLocation
	if location == "" {
		location = source.DefaultLocation
	}
	palette := render.DefaultPalette()
	if opts.Palette != nil {
		palette = palette.Merge(opts.Palette)
	}
	base := coords.DefaultGeometry()
	if opts.Geometry != nil {
		base = *opts.Geometry
	}

	k := &Karyotype{
		id:           uuid.New().String(),
		location:     location,
		src:          opts.Source,
		logger:       logger,
		palette:      palette,
		base:         base,
		geometry:     base,
		scale:        1,
		showName:     !opts.HideName,
		thumbEnabled: !opts.HideThumb,
		chrLen:       1,
		events:       newDispatcher(logger),
	}
	k.thumb = thumb.New(k.released)
	if !k.showName {
		k.geometry.LeftMargin = 0
	}
	if opts.Scale != 0 {
		// SetScale logs adjusted values.
		_ = k.SetScale(opts.Scale)
	}
	return k
}

// ID returns the unique identifier of this instance.
func (k *Karyotype) ID() string {
	return k.id
}

// Init loads the band table from the configured source and marks the
// karyotype ready.
func (k *Karyotype) Init(ctx context.Context) error {
	src := k.src
	if src == nil {
		var gcs source.Client
		if strings.HasPrefix(k.location, "gs://") {
			gcs = source.NewPublicClient()
		}
		var err error
		if src, err = source.Parse(k.location, gcs, nil); err != nil {
			return fmt.Errorf("resolving data location: %v", err)
		}
	}
	table, err := source.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("loading bands: %w", err)
	}
	k.SetData(table)
	return nil
}

// SetData supplies the band table.  The first call makes the karyotype ready
// and publishes viewerReady.
func (k *Karyotype) SetData(table *bands.Table) {
	k.table = table
	for _, warning := range table.Warnings {
		k.logger.Printf("Skipping band table row: %v", warning)
	}
	if k.thumb.Dragging() {
		k.deferred, k.reload = true, k.view.Chr != ""
		return
	}
	if k.view.Chr != "" {
		k.loadBands()
	}
	if k.ready {
		k.redraw()
		return
	}
	k.ready = true
	k.redraw()
	k.events.viewerReady.Latch(ReadyEvent{Viewer: k})
}

// Ready reports whether the band table has been supplied.
func (k *Karyotype) Ready() bool {
	return k.ready
}

// Update shows chr with the view range [start, end).  Bands are rebuilt only
// when the chromosome changes; the thumb always follows the range.  A
// chromosome change during a drag is drawn once the drag is over.
func (k *Karyotype) Update(chr string, start, end int) {
	changed := chr != k.view.Chr
	k.view = genomics.Region{Chr: chr, Start: start, End: end}
	if changed && k.table != nil {
		if k.thumb.Dragging() {
			k.deferred, k.reload = true, true
		} else {
			k.loadBands()
			k.redraw()
		}
	}
	if k.ready {
		k.thumb.SetView(k.view)
	}
}

func (k *Karyotype) loadBands() {
	chr := k.view.Chr
	k.bands = k.table.Bands(chr)
	k.chrLen = k.table.Length(chr)
	if k.chrLen <= 0 {
		k.logger.Printf("Insufficient data to set up spatial navigator for %q, assuming %d bases", chr, genomics.FallbackLength)
		k.chrLen = genomics.FallbackLength
	}
	if len(k.bands) == 0 {
		k.bands = []genomics.Band{bands.Fallback(k.chrLen)}
	}
}

// SetScale sets the fraction of the container width used by the karyotype.
// Values above 1 are read as percentages when they are whole numbers up to
// 100; any other value outside [0, 1] becomes 1.  An adjusted value is
// applied and reported through the returned error.
func (k *Karyotype) SetScale(percent float64) error {
	scale, err := clampScale(percent)
	if err != nil {
		k.logger.Printf("SetScale: %v", err)
	}
	k.scale = scale
	if k.containerWidth > 0 {
		if rerr := k.Resize(k.containerWidth); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

func clampScale(v float64) (float64, error) {
	switch {
	case v < 0 || math.IsNaN(v):
		return 1, fmt.Errorf("got %v, using 1: %w", v, ErrScaleOutOfRange)
	case v > 1:
		if v <= 100 && v == math.Trunc(v) {
			return v / 100, fmt.Errorf("got %v, using %v: %w", v, v/100, ErrScaleOutOfRange)
		}
		return 1, fmt.Errorf("got %v, using 1: %w", v, ErrScaleOutOfRange)
	}
	return v, nil
}

// Resize lays the karyotype out for a container of the given width and
// redraws it.  A container too small to draw in leaves the previous layout
// in place.  During a drag the resize is deferred until the drag ends.
func (k *Karyotype) Resize(containerWidth float64) error {
	if k.thumb.Dragging() {
		k.deferred, k.pendingWidth = true, containerWidth
		return nil
	}
	g, err := coords.NewGeometry(k.base, containerWidth, k.scale, k.showName)
	if err != nil {
		k.logger.Printf("Something is wrong with this page: %v", err)
		return err
	}
	k.geometry, k.containerWidth = g, containerWidth
	if k.ready {
		k.redraw()
	}
	return nil
}

// Redraw rebuilds the drawable strip.  During a drag it is deferred until
// the drag ends.
func (k *Karyotype) Redraw() {
	if k.thumb.Dragging() {
		k.deferred = true
		return
	}
	k.redraw()
}

func (k *Karyotype) redraw() {
	if k.view.Chr == "" {
		return
	}
	mapper, err := coords.NewMapper(k.geometry, k.chrLen)
	if err != nil {
		k.logger.Printf("Drawing %s: %v", k.view.Chr, err)
		return
	}
	k.mapper = mapper
	b := render.Builder{
		Mapper:         mapper,
		Palette:        k.palette,
		Chr:            k.view.Chr,
		GradientPrefix: k.id + "-",
		ShowName:       k.showName,
		Labels:         k.labels,
	}
	k.strip = b.Build(k.bands)
	for _, warning := range k.strip.Warnings {
		k.logger.Printf("Not drawing %s: %v", k.view.Chr, warning)
	}
	k.drawn = true

	if !k.thumbEnabled {
		return
	}
	if k.thumb.State() == thumb.Hidden {
		if err := k.thumb.Enable(mapper, k.view); err != nil {
			k.logger.Printf("Showing thumb: %v", err)
		}
		return
	}
	k.thumb.SetView(k.view)
	if err := k.thumb.Relayout(mapper); err != nil {
		k.logger.Printf("Relayout: %v", err)
	}
}

// applyDeferred runs a resize or redraw requested during a drag.
func (k *Karyotype) applyDeferred() {
	if !k.deferred {
		return
	}
	k.deferred = false
	if k.reload {
		k.reload = false
		k.loadBands()
	}
	if k.pendingWidth > 0 {
		width := k.pendingWidth
		k.pendingWidth = 0
		if err := k.Resize(width); err == nil {
			return
		}
	}
	k.redraw()
}

// SetTrackHeight changes the height of the band track.  Non-positive values
// are ignored.
func (k *Karyotype) SetTrackHeight(height float64) {
	if height > 0 {
		k.base.TrackHeight = height
		k.geometry.TrackHeight = height
	}
	if k.ready {
		k.Redraw()
	}
}

// SetShowName shows or hides the chromosome name left of the bands.
func (k *Karyotype) SetShowName(show bool) {
	k.showName = show
	if k.containerWidth > 0 {
		if err := k.Resize(k.containerWidth); err != nil {
			k.logger.Printf("SetShowName: %v", err)
		}
		return
	}
	k.geometry.LeftMargin = 0
	if show {
		k.geometry.LeftMargin = coords.NameMargin
	}
	if k.ready {
		k.Redraw()
	}
}

// ShowThumb enables or disables the thumb.  Re-enabling recreates it at the
// current view range.
func (k *Karyotype) ShowThumb(show bool) {
	k.thumbEnabled = show
	if !show {
		k.thumb.Disable()
		k.applyDeferred()
		return
	}
	if k.drawn && k.thumb.State() == thumb.Hidden {
		if err := k.thumb.Enable(k.mapper, k.view); err != nil {
			k.logger.Printf("ShowThumb: %v", err)
		}
	}
}

// AddLabel annotates [start, stop) below the bands.
func (k *Karyotype) AddLabel(text string, start, stop int) {
	k.labels = append(k.labels, render.Label{Text: text, Start: start, Stop: stop})
	if k.ready {
		k.Redraw()
	}
}

// AddDataTrack registers the location of a data track for the host to load.
func (k *Karyotype) AddDataTrack(url string) {
	k.dataTrackURL = url
}

// NotifyLoadDataTracks publishes loadDataTrack.
func (k *Karyotype) NotifyLoadDataTracks() {
	k.events.loadDataTrack.Publish(LoadDataTrackEvent{Chr: k.view.Chr, URL: k.dataTrackURL})
}

// PointerDown starts dragging the thumb at x.
func (k *Karyotype) PointerDown(x float64) error {
	if err := k.thumb.Begin(x); err != nil {
		return err
	}
	k.dragChr = k.strip.Chr
	return nil
}

// PointerMove moves the thumb during a drag.  Nothing is published.
func (k *Karyotype) PointerMove(x float64) error {
	return k.thumb.Move(x)
}

// PointerUp ends a drag at x and publishes sliderMoved for the chromosome
// that was dragged.
func (k *Karyotype) PointerUp(x float64) error {
	if _, err := k.thumb.End(x); err != nil {
		return err
	}
	k.applyDeferred()
	return nil
}

// CancelDrag abandons a drag without publishing anything.
func (k *Karyotype) CancelDrag() error {
	if err := k.thumb.Cancel(); err != nil {
		return err
	}
	k.applyDeferred()
	return nil
}

func (k *Karyotype) released(r thumb.Release) {
	if k.onChange != nil {
		k.onChange(r.Fraction)
	}
	k.events.sliderMoved.Publish(SliderMovedEvent{Min: r.Min, Max: r.Max, Chr: k.dragChr})
}

// BandAt returns the index of the drawn band under x, or -1.
func (k *Karyotype) BandAt(x float64) int {
	return k.strip.ShapeAt(x)
}

// ClickBand reports a click at x on drawn band i.
func (k *Karyotype) ClickBand(i int, x float64) error {
	s, err := k.shape(i)
	if err != nil {
		return err
	}
	pos := int(math.Round(k.mapper.ToGenomic(x)))
	k.events.bandClicked.Publish(BandClickedEvent{
		Min:    pos,
		Max:    pos + int(k.geometry.Width),
		ChrLen: k.strip.ChrLen,
		Chr:    k.strip.Chr,
		Band:   s.Band,
	})
	return nil
}

// HoverBand reports the pointer entering drawn band i.
func (k *Karyotype) HoverBand(i int) error {
	s, err := k.shape(i)
	if err != nil {
		return err
	}
	k.events.mouseOverBand.Publish(HoverEvent{Chr: k.strip.Chr, Band: s.Band})
	return nil
}

func (k *Karyotype) shape(i int) (render.Shape, error) {
	if !k.drawn {
		return render.Shape{}, ErrNotReady
	}
	if i < 0 || i >= len(k.strip.Shapes) {
		return render.Shape{}, fmt.Errorf("band %d of %d: %w", i, len(k.strip.Shapes), ErrNoSuchBand)
	}
	return k.strip.Shapes[i], nil
}

// Strip returns the current drawable model.
func (k *Karyotype) Strip() render.Strip {
	return k.strip
}

// Thumb returns the thumb position and width, and whether it is shown.
func (k *Karyotype) Thumb() (x, width float64, visible bool) {
	x, width = k.thumb.Rect()
	return x, width, k.drawn && k.thumb.State() != thumb.Hidden
}

// ThumbState returns the interaction state of the thumb.
func (k *Karyotype) ThumbState() thumb.State {
	return k.thumb.State()
}

// WriteSVG writes the karyotype as an SVG document.
func (k *Karyotype) WriteSVG(w io.Writer) error {
	if !k.drawn {
		return ErrNotReady
	}
	var t *svg.Thumb
	if x, width, visible := k.Thumb(); visible {
		t = &svg.Thumb{X: x, Width: width}
	}
	return svg.Encode(w, k.strip, t)
}

// Chr returns the name of the displayed chromosome.
func (k *Karyotype) Chr() string {
	return k.view.Chr
}

// ChrLen returns the length of the displayed chromosome.
func (k *Karyotype) ChrLen() int {
	return k.chrLen
}

// View returns the view range last supplied by the host.
func (k *Karyotype) View() genomics.Region {
	return k.view
}

// Bands returns the sorted bands of the displayed chromosome.
func (k *Karyotype) Bands() []genomics.Band {
	return k.bands
}

// Scale returns the effective scale.
func (k *Karyotype) Scale() float64 {
	return k.scale
}

// Width returns the drawable width in pixels.
func (k *Karyotype) Width() float64 {
	return k.geometry.Width
}

// Padding returns the padding on either side of the drawing.
func (k *Karyotype) Padding() float64 {
	return k.geometry.Padding
}

// Geometry returns the current layout.
func (k *Karyotype) Geometry() coords.Geometry {
	return k.geometry
}

// Chromosomes returns the chromosomes of the band table in natural order.
func (k *Karyotype) Chromosomes() []string {
	return k.table.Chromosomes()
}

// Sizes returns the length of every chromosome in the band table.
func (k *Karyotype) Sizes() map[string]int {
	return k.table.Sizes()
}
