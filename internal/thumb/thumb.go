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

// Package thumb implements the draggable indicator of the viewed region.
//
// A Controller is Hidden, Idle or Dragging.  Host updates (SetView, Relayout)
// reposition an idle thumb without notifying anyone; only the end of a drag
// produces a Release.  While dragging, pointer moves are purely visual.
package thumb

import (
	"errors"
	"fmt"
	"math"

	"github.com/googlegenomics/karyotype/genomics"
	"github.com/googlegenomics/karyotype/internal/coords"
)

// ErrInvalidTransition is returned for pointer or host input that the
// current state does not accept.  The state is left unchanged.
var ErrInvalidTransition = errors.New("invalid thumb transition")

const (
	// MinWidth keeps very small regions draggable.
	MinWidth = 5
	// dragMargin lets the thumb reach slightly past both ends of the track.
	dragMargin = 4
)

// State is the interaction state of the thumb.
type State int

const (
	Hidden State = iota
	Idle
	Dragging
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Release describes where a drag ended.
type Release struct {
	// Min and Max are the genomic bounds covered by the thumb.
	Min, Max int
	// Fraction is the thumb position relative to the track width, as
	// reported to single value listeners.
	Fraction float64
}

// Controller owns the thumb state.  It is not safe for concurrent use.
type Controller struct {
	state     State
	mapper    coords.Mapper
	view      genomics.Region
	pending   *genomics.Region
	onRelease func(Release)

	x, width float64
	deltaX   float64
	origin   float64
}

// New returns a hidden controller.  onRelease is called exactly once at the
// end of every completed drag.
func New(onRelease func(Release)) *Controller {
	return &Controller{onRelease: onRelease}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.state == Dragging
}

// Rect returns the horizontal position and width of the thumb in pixels.
func (c *Controller) Rect() (x, width float64) {
	return c.x, c.width
}

// View returns the view range the thumb follows.
func (c *Controller) View() genomics.Region {
	return c.view
}

// Enable shows the thumb at view.  Enabling a visible thumb repositions it.
func (c *Controller) Enable(m coords.Mapper, view genomics.Region) error {
	if c.state == Dragging {
		return fmt.Errorf("enabling while %s: %w", c.state, ErrInvalidTransition)
	}
	c.mapper, c.view = m, view
	c.state = Idle
	c.place()
	return nil
}

// Disable hides the thumb.  A drag in progress is dropped without a Release.
func (c *Controller) Disable() {
	c.state = Hidden
	c.pending = nil
}

// SetView moves the thumb to view without reporting a Release.  During a
// drag the view is kept and applied once the drag is over.
func (c *Controller) SetView(view genomics.Region) {
	switch c.state {
	case Dragging:
		c.pending = &view
	case Idle:
		c.view = view
		c.place()
	default:
		c.view = view
	}
}

// Relayout repositions the thumb for a new geometry or chromosome length.
func (c *Controller) Relayout(m coords.Mapper) error {
	if c.state == Dragging {
		return fmt.Errorf("relayout while %s: %w", c.state, ErrInvalidTransition)
	}
	c.mapper = m
	if c.state == Idle {
		c.place()
	}
	return nil
}

// Begin starts a drag at pointer position pointerX.
func (c *Controller) Begin(pointerX float64) error {
	if c.state != Idle {
		return fmt.Errorf("drag start while %s: %w", c.state, ErrInvalidTransition)
	}
	c.deltaX = c.x - pointerX
	c.origin = c.x
	c.state = Dragging
	return nil
}

// Move follows the pointer during a drag.
func (c *Controller) Move(pointerX float64) error {
	if c.state != Dragging {
		return fmt.Errorf("drag move while %s: %w", c.state, ErrInvalidTransition)
	}
	c.x = math.Max(-dragMargin, math.Min(pointerX+c.deltaX, c.mapper.Width-dragMargin))
	return nil
}

// End finishes a drag at pointerX and reports the covered genomic range.
func (c *Controller) End(pointerX float64) (Release, error) {
	if err := c.Move(pointerX); err != nil {
		return Release{}, fmt.Errorf("drag end: %w", err)
	}
	c.state = Idle
	release := c.release()
	c.applyPending()
	if c.onRelease != nil {
		c.onRelease(release)
	}
	return release, nil
}

// Cancel abandons a drag and restores the thumb to where the drag started.
func (c *Controller) Cancel() error {
	if c.state != Dragging {
		return fmt.Errorf("drag cancel while %s: %w", c.state, ErrInvalidTransition)
	}
	c.state = Idle
	c.x = c.origin
	c.applyPending()
	return nil
}

func (c *Controller) applyPending() {
	if c.pending == nil {
		return
	}
	c.view = *c.pending
	c.pending = nil
	c.place()
}

func (c *Controller) place() {
	if c.mapper.ChrLen <= 0 {
		return
	}
	start, end := float64(c.view.Start), float64(c.view.End)
	c.x = c.mapper.ToScreen(start)
	c.width = math.Round(c.mapper.Span(start, end))
	if c.width < MinWidth {
		c.width = MinWidth
	}
}

func (c *Controller) release() Release {
	r := Release{
		Min: clamp(math.Round(c.mapper.ToGenomic(c.x)), c.mapper.ChrLen),
		Max: clamp(math.Round(c.mapper.ToGenomic(c.x+c.width)), c.mapper.ChrLen),
	}
	if c.mapper.Width > 0 {
		r.Fraction = (c.x + dragMargin) / c.mapper.Width
	}
	return r
}

func clamp(v float64, chrLen int) int {
	if v < 0 {
		return 0
	}
	if v > float64(chrLen) {
		return chrLen
	}
	return int(v)
}
