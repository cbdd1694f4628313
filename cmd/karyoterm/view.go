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

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/googlegenomics/karyotype/internal/render"
	"github.com/googlegenomics/karyotype/internal/thumb"
	"github.com/googlegenomics/karyotype/karyotype"
)

const (
	statusRow = 0
	thumbRow  = 2
	bandRow   = 3
	helpRow   = 5

	help = "drag the thumb, click a band, ←/→ chromosome, esc cancels a drag, q quits"
)

// view draws one karyotype on a terminal.  Every screen column is one pixel.
type view struct {
	screen      tcell.Screen
	viewer      *karyotype.Karyotype
	chromosomes []string
	sizes       map[string]int
	current     int

	buttons tcell.ButtonMask
	hovered int
	status  string
}

func newView(screen tcell.Screen, viewer *karyotype.Karyotype) *view {
	v := &view{
		screen:      screen,
		viewer:      viewer,
		chromosomes: viewer.Chromosomes(),
		sizes:       viewer.Sizes(),
		hovered:     -1,
	}
	viewer.OnSliderMoved(func(e karyotype.SliderMovedEvent) {
		viewer.Update(e.Chr, e.Min, e.Max)
		v.status = fmt.Sprintf("%s:%s-%s", e.Chr, humanize.Comma(int64(e.Min)), humanize.Comma(int64(e.Max)))
	})
	viewer.OnBandClicked(func(e karyotype.BandClickedEvent) {
		length := viewer.View().Len()
		viewer.Update(e.Chr, e.Min, e.Min+length)
		v.status = fmt.Sprintf("%s %s at %s", e.Chr, e.Band.ID, humanize.Comma(int64(e.Min)))
	})
	viewer.OnMouseOverBand(func(e karyotype.HoverEvent) {
		v.status = fmt.Sprintf("%s%s %s", e.Chr, e.Band.ID, e.Band.Label)
	})
	return v
}

// show displays chromosome i of the band table with a view covering its
// first tenth.
func (v *view) show(i int) {
	if len(v.chromosomes) == 0 {
		return
	}
	i = (i + len(v.chromosomes)) % len(v.chromosomes)
	v.current = i
	chr := v.chromosomes[i]
	v.viewer.Update(chr, 0, v.sizes[chr]/10)
	v.hovered = -1
	v.status = chr
}

func (v *view) resize() {
	w, _ := v.screen.Size()
	if err := v.viewer.Resize(float64(w)); err != nil {
		v.status = err.Error()
	}
}

// handle processes one terminal event.  It returns false when the program
// should exit.
func (v *view) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	case *tcell.EventKey:
		return v.key(ev)
	case *tcell.EventMouse:
		x, y := ev.Position()
		v.mouse(x, y, ev.Buttons())
	}
	return true
}

func (v *view) key(ev *tcell.EventKey) bool {
	switch {
	case ev.Key() == tcell.KeyEsc && v.viewer.ThumbState() == thumb.Dragging:
		v.report(v.viewer.CancelDrag())
	case ev.Key() == tcell.KeyEsc, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
		return false
	case ev.Key() == tcell.KeyRight:
		v.show(v.current + 1)
	case ev.Key() == tcell.KeyLeft:
		v.show(v.current - 1)
	}
	return true
}

func (v *view) mouse(x, y int, buttons tcell.ButtonMask) {
	prev := v.buttons
	v.buttons = buttons
	pressed := buttons&tcell.Button1 != 0 && prev&tcell.Button1 == 0
	released := buttons&tcell.Button1 == 0 && prev&tcell.Button1 != 0
	pos := float64(x)

	if v.viewer.ThumbState() == thumb.Dragging {
		if released {
			v.report(v.viewer.PointerUp(pos))
		} else {
			v.report(v.viewer.PointerMove(pos))
		}
		return
	}

	switch {
	case pressed && y == thumbRow && v.onThumb(x):
		v.report(v.viewer.PointerDown(pos))
	case pressed && y == bandRow:
		if i := v.viewer.BandAt(pos + 0.5); i >= 0 {
			v.report(v.viewer.ClickBand(i, pos))
		}
	case buttons == tcell.ButtonNone && y == bandRow:
		if i := v.viewer.BandAt(pos + 0.5); i >= 0 && i != v.hovered {
			v.hovered = i
			v.report(v.viewer.HoverBand(i))
		}
	}
}

func (v *view) onThumb(x int) bool {
	tx, width, visible := v.viewer.Thumb()
	return visible && float64(x)+0.5 >= tx && float64(x) < tx+width
}

func (v *view) report(err error) {
	if err != nil {
		v.status = err.Error()
	}
}

func (v *view) draw() {
	v.screen.Clear()
	w, _ := v.screen.Size()

	strip := v.viewer.Strip()
	for x := 0; x < w; x++ {
		i := strip.ShapeAt(float64(x) + 0.5)
		if i < 0 {
			continue
		}
		s := strip.Shapes[i]
		style := tcell.StyleDefault.Background(colour(s.Fill.Top))
		ch := ' '
		if s.Band.IsCentromere() {
			ch = '▬'
			style = tcell.StyleDefault.Foreground(colour(s.Fill.Top))
		}
		v.screen.SetContent(x, bandRow, ch, nil, style)
	}

	if tx, width, visible := v.viewer.Thumb(); visible {
		style := tcell.StyleDefault.Foreground(colour(render.Hex(render.ThumbFill)))
		for x := int(tx); x < int(tx+width) && x < w; x++ {
			if x >= 0 {
				v.screen.SetContent(x, thumbRow, '▄', nil, style)
			}
		}
	}

	v.text(statusRow, v.status, w, tcell.StyleDefault.Bold(true))
	v.text(helpRow, help, w, tcell.StyleDefault.Dim(true))
	v.screen.Show()
}

// text writes s at the start of row, truncated to the screen width.
func (v *view) text(row int, s string, width int, style tcell.Style) {
	x := 0
	for _, r := range runewidth.Truncate(s, width, "…") {
		v.screen.SetContent(x, row, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func colour(hex string) tcell.Color {
	c, err := render.ParseHex(hex)
	if err != nil {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
