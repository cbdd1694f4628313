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
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/googlegenomics/karyotype/genomics"
	"github.com/googlegenomics/karyotype/internal/bands"
	"github.com/googlegenomics/karyotype/internal/coords"
	"github.com/googlegenomics/karyotype/internal/thumb"
	"github.com/googlegenomics/karyotype/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *log.Logger {
	return log.New(ioutil.Discard, "", 0)
}

func testBands() []genomics.Band {
	return []genomics.Band{
		{ID: "p11", Min: 0, Max: 40000, Label: "gpos50"},
		{ID: "p10", Min: 40000, Max: 50000, Label: "acen"},
		{ID: "q10", Min: 50000, Max: 60000, Label: "acen"},
		{ID: "q11", Min: 60000, Max: 100000, Label: "gneg"},
	}
}

// newTestKaryotype returns a karyotype laid out with a drawable width of 400
// pixels.
func newTestKaryotype(t *testing.T, opts Options) *Karyotype {
	if opts.Logger == nil {
		opts.Logger = quiet()
	}
	k := New(opts)
	require.NoError(t, k.Resize(402))
	require.Equal(t, float64(400), k.Width())
	return k
}

func TestSetScale(t *testing.T) {
	testCases := []struct {
		in      float64
		want    float64
		anomaly bool
	}{
		{0.5, 0.5, false},
		{1, 1, false},
		{0, 0, false},
		{1.5, 1, true},
		{-0.2, 1, true},
		{50, 0.5, true},
		{100, 1, true},
		{250, 1, true},
	}
	for _, tc := range testCases {
		k := New(Options{Logger: quiet()})
		err := k.SetScale(tc.in)
		if tc.anomaly {
			assert.True(t, errors.Is(err, ErrScaleOutOfRange), "SetScale(%v) = %v", tc.in, err)
		} else {
			assert.NoError(t, err, "SetScale(%v)", tc.in)
		}
		assert.Equal(t, tc.want, k.Scale(), "SetScale(%v)", tc.in)
	}
}

func TestSetScale_Relayout(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	require.NoError(t, k.SetScale(0.5))
	assert.Equal(t, float64(200), k.Width())
}

func TestResize_TooSmall(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	err := k.Resize(1)
	assert.True(t, errors.Is(err, coords.ErrContainerTooSmall))
	assert.Equal(t, float64(400), k.Width())
}

func TestThumbDrag(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	var moved []SliderMovedEvent
	k.OnSliderMoved(func(e SliderMovedEvent) { moved = append(moved, e) })
	var fractions []float64
	k.SetOnChange(func(f float64) { fractions = append(fractions, f) })

	k.Update("chr1", 1000, 5000)
	k.SetData(bands.NewTable("chr1", testBands()))
	require.Equal(t, 100000, k.ChrLen())

	m, err := coords.NewMapper(k.Geometry(), k.ChrLen())
	require.NoError(t, err)
	x, width, visible := k.Thumb()
	require.True(t, visible)
	assert.InDelta(t, m.ToScreen(1000), x, 1e-9)
	assert.True(t, width >= thumb.MinWidth)

	require.NoError(t, k.PointerDown(x))
	assert.Equal(t, thumb.Dragging, k.ThumbState())
	require.NoError(t, k.PointerMove(x+10))
	assert.Empty(t, moved)
	require.NoError(t, k.PointerUp(m.ToScreen(20000)))

	require.Len(t, moved, 1)
	assert.InDelta(t, 20000, moved[0].Min, 1)
	assert.Equal(t, "chr1", moved[0].Chr)
	assert.True(t, moved[0].Max > moved[0].Min)
	require.Len(t, fractions, 1)
	assert.Equal(t, thumb.Idle, k.ThumbState())

	// The host does not have to follow the thumb.
	assert.Equal(t, 1000, k.View().Start)
}

func TestThumbDrag_DeferredResize(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 1000, 5000)
	x, _, _ := k.Thumb()

	require.NoError(t, k.PointerDown(x))
	require.NoError(t, k.Resize(202))
	assert.Equal(t, float64(400), k.Width())
	require.NoError(t, k.CancelDrag())
	assert.Equal(t, float64(200), k.Width())

	m, err := coords.NewMapper(k.Geometry(), k.ChrLen())
	require.NoError(t, err)
	got, _, _ := k.Thumb()
	assert.InDelta(t, m.ToScreen(1000), got, 1e-9)
}

func TestThumbDrag_ChromosomeChange(t *testing.T) {
	table, err := bands.Parse(strings.NewReader(strings.Join([]string{
		"chr1\t0\t100000\tp11\tgneg",
		"chr2\t0\t1000000\tp11\tgpos50",
	}, "\n")))
	require.NoError(t, err)
	k := newTestKaryotype(t, Options{})
	k.SetData(table)
	k.Update("chr1", 1000, 5000)
	var moved []SliderMovedEvent
	k.OnSliderMoved(func(e SliderMovedEvent) { moved = append(moved, e) })

	m1, err := coords.NewMapper(k.Geometry(), 100000)
	require.NoError(t, err)
	x, _, _ := k.Thumb()
	require.NoError(t, k.PointerDown(x))
	k.Update("chr2", 500000, 600000)
	assert.Equal(t, "chr1", k.Strip().Chr)
	assert.Equal(t, thumb.Dragging, k.ThumbState())
	require.NoError(t, k.PointerUp(m1.ToScreen(20000)))

	require.Len(t, moved, 1)
	assert.Equal(t, "chr1", moved[0].Chr)
	assert.InDelta(t, 20000, moved[0].Min, 1)

	assert.Equal(t, "chr2", k.Strip().Chr)
	assert.Equal(t, 1000000, k.ChrLen())
	m2, err := coords.NewMapper(k.Geometry(), 1000000)
	require.NoError(t, err)
	got, width, visible := k.Thumb()
	require.True(t, visible)
	assert.InDelta(t, m2.ToScreen(500000), got, 1e-9)
	assert.InDelta(t, math.Round(m2.Span(500000, 600000)), width, 1e-9)
}

func TestThumbDrag_DeferredData(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 1000, 5000)
	x, _, _ := k.Thumb()

	require.NoError(t, k.PointerDown(x))
	k.SetData(bands.NewTable("chr1", []genomics.Band{
		{ID: "p11", Min: 0, Max: 200000, Label: "gneg"},
	}))
	assert.Equal(t, 100000, k.ChrLen())
	require.NoError(t, k.CancelDrag())
	assert.Equal(t, 200000, k.ChrLen())

	m, err := coords.NewMapper(k.Geometry(), 200000)
	require.NoError(t, err)
	got, _, _ := k.Thumb()
	assert.InDelta(t, m.ToScreen(1000), got, 1e-9)
}

func TestShowThumb_HideDuringDrag(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 1000, 5000)
	x, _, _ := k.Thumb()

	require.NoError(t, k.PointerDown(x))
	require.NoError(t, k.Resize(202))
	k.ShowThumb(false)
	assert.Equal(t, thumb.Hidden, k.ThumbState())
	assert.Equal(t, float64(200), k.Width())

	k.ShowThumb(true)
	require.NoError(t, k.Resize(302))
	x, _, _ = k.Thumb()
	require.NoError(t, k.PointerDown(x))
	require.NoError(t, k.PointerUp(x))
	assert.Equal(t, float64(300), k.Width())
}

func TestThumbDrag_NotShown(t *testing.T) {
	k := newTestKaryotype(t, Options{HideThumb: true})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 1000, 5000)

	_, _, visible := k.Thumb()
	assert.False(t, visible)
	assert.True(t, errors.Is(k.PointerDown(50), thumb.ErrInvalidTransition))

	k.ShowThumb(true)
	_, _, visible = k.Thumb()
	assert.True(t, visible)
}

func TestViewerReady_LateSubscriber(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	var early, late int
	k.OnViewerReady(func(e ReadyEvent) {
		assert.Equal(t, k, e.Viewer)
		early++
	})
	k.SetData(bands.NewTable("chr1", testBands()))
	assert.Equal(t, 1, early)

	k.OnViewerReady(func(ReadyEvent) { late++ })
	assert.Equal(t, 1, early)
	assert.Equal(t, 1, late)

	k.SetData(bands.NewTable("chr1", testBands()))
	assert.Equal(t, 1, early)
	assert.Equal(t, 1, late)
}

func TestUpdate_EmptyBands(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr2", 0, 100)

	assert.Equal(t, genomics.FallbackLength, k.ChrLen())
	require.Len(t, k.Bands(), 1)
	assert.Equal(t, genomics.Band{Min: 1, Max: genomics.FallbackLength, Label: "gneg"}, k.Bands()[0])

	strip := k.Strip()
	assert.Empty(t, strip.Warnings)
	require.Len(t, strip.Shapes, 1)

	var buf bytes.Buffer
	require.NoError(t, k.WriteSVG(&buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestUpdate_SameChromosome(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 1000, 5000)
	before := k.Strip()
	x1, _, _ := k.Thumb()

	k.Update("chr1", 50000, 60000)
	assert.Equal(t, before.Shapes, k.Strip().Shapes)
	x2, _, _ := k.Thumb()
	assert.True(t, x2 > x1)
}

func TestClickBand(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 1000, 5000)

	var clicks []BandClickedEvent
	k.OnBandClicked(func(e BandClickedEvent) { clicks = append(clicks, e) })
	var hovers []HoverEvent
	k.OnMouseOverBand(func(e HoverEvent) { hovers = append(hovers, e) })

	m, err := coords.NewMapper(k.Geometry(), k.ChrLen())
	require.NoError(t, err)
	x := m.ToScreen(70000)
	i := k.BandAt(x)
	require.NotEqual(t, -1, i)

	require.NoError(t, k.ClickBand(i, x))
	require.Len(t, clicks, 1)
	assert.Equal(t, "q11", clicks[0].Band.ID)
	assert.InDelta(t, 70000, clicks[0].Min, 1)
	assert.Equal(t, clicks[0].Min+400, clicks[0].Max)
	assert.Equal(t, 100000, clicks[0].ChrLen)

	require.NoError(t, k.HoverBand(i))
	require.Len(t, hovers, 1)
	assert.Equal(t, "chr1", hovers[0].Chr)

	assert.True(t, errors.Is(k.ClickBand(99, x), ErrNoSuchBand))
	assert.Equal(t, -1, k.BandAt(-100))
}

func TestClickBand_NotReady(t *testing.T) {
	k := New(Options{Logger: quiet()})
	assert.Equal(t, ErrNotReady, k.HoverBand(0))
	assert.Equal(t, ErrNotReady, k.WriteSVG(ioutil.Discard))
}

func TestListenerFailure(t *testing.T) {
	var logs bytes.Buffer
	k := newTestKaryotype(t, Options{Logger: log.New(&logs, "", 0)})
	var delivered bool
	k.OnLoadDataTrack(func(LoadDataTrackEvent) { panic("broken listener") })
	k.OnLoadDataTrack(func(e LoadDataTrackEvent) {
		delivered = true
		assert.Equal(t, "https://example.com/track.bed", e.URL)
	})

	k.AddDataTrack("https://example.com/track.bed")
	k.NotifyLoadDataTracks()
	assert.True(t, delivered)
	assert.Contains(t, logs.String(), "broken listener")
}

func TestShowName(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 0, 1)
	require.NotNil(t, k.Strip().Name)
	assert.Equal(t, float64(coords.NameMargin), k.Geometry().LeftMargin)

	k.SetShowName(false)
	assert.Nil(t, k.Strip().Name)
	assert.Equal(t, float64(0), k.Geometry().LeftMargin)
}

func TestAddLabel(t *testing.T) {
	k := newTestKaryotype(t, Options{})
	k.SetData(bands.NewTable("chr1", testBands()))
	k.Update("chr1", 0, 1)
	height := k.Strip().Height

	k.AddLabel("BRCA", 20000, 30000)
	strip := k.Strip()
	require.Len(t, strip.Labels, 1)
	assert.Equal(t, height+k.Geometry().TrackHeight, strip.Height)
}

func TestInit(t *testing.T) {
	dir, err := ioutil.TempDir("", "karyotype")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "bands.txt")
	data := strings.Join([]string{
		"chr1\t0\t2300000\tp36.33\tgneg",
		"chr1\t2300000\t5300000\tp36.32\tgpos25",
		"chr2\t0\t4400000\tp25.3\tgneg",
	}, "\n")
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))

	k := New(Options{DataLocation: path, Logger: quiet()})
	require.NoError(t, k.Init(context.Background()))
	assert.True(t, k.Ready())
	assert.Equal(t, []string{"chr1", "chr2"}, k.Chromosomes())
	assert.Equal(t, map[string]int{"chr1": 5300000, "chr2": 4400000}, k.Sizes())
}

func TestInit_Missing(t *testing.T) {
	k := New(Options{Source: source.File("/does/not/exist"), Logger: quiet()})
	err := k.Init(context.Background())
	assert.True(t, errors.Is(err, source.ErrNotFound), "Init() = %v", err)
	assert.False(t, k.Ready())
}

func TestIDsAreUnique(t *testing.T) {
	a, b := New(Options{Logger: quiet()}), New(Options{Logger: quiet()})
	assert.NotEqual(t, a.ID(), b.ID())
}
