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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/googlegenomics/karyotype/analytics"
	"github.com/googlegenomics/karyotype/internal/events"
	"github.com/googlegenomics/karyotype/internal/thumb"
	"github.com/googlegenomics/karyotype/karyotype"
)

// event is a published karyotype event as returned to API clients.
type event struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload,omitempty"`
}

// session owns one karyotype.  The karyotype is single threaded so every
// access holds mu.
type session struct {
	mu      sync.Mutex
	id      string
	viewer  *karyotype.Karyotype
	emitted []event
	// track records published events while a request holds the session.
	track func(analytics.Hit)
}

func newSession(viewer *karyotype.Karyotype) *session {
	s := &session{id: uuid.New().String(), viewer: viewer}
	viewer.OnViewerReady(func(karyotype.ReadyEvent) {
		s.emit(events.ViewerReady, nil)
	})
	viewer.OnLoadDataTrack(func(e karyotype.LoadDataTrackEvent) {
		s.emit(events.LoadDataTrack, e)
	})
	viewer.OnBandClicked(func(e karyotype.BandClickedEvent) {
		s.emit(events.BandClicked, e)
	})
	viewer.OnMouseOverBand(func(e karyotype.HoverEvent) {
		s.emit(events.MouseOverBand, e)
	})
	viewer.OnSliderMoved(func(e karyotype.SliderMovedEvent) {
		s.emit(events.SliderMoved, e)
	})
	return s
}

func (s *session) emit(name events.Name, payload interface{}) {
	s.emitted = append(s.emitted, event{Name: name.String(), Payload: payload})
	if s.track != nil {
		s.track(analytics.Interaction(name.String(), s.viewer.Chr()))
	}
}

// drain returns and forgets the events published since the last call.
func (s *session) drain() []event {
	emitted := s.emitted
	s.emitted = nil
	if emitted == nil {
		return []event{}
	}
	return emitted
}

func (server *Server) lookup(c *gin.Context) (*session, error) {
	id := c.Param("id")
	server.mu.Lock()
	defer server.mu.Unlock()
	s, ok := server.sessions[id]
	if !ok {
		return nil, newNotFoundError(fmt.Sprintf("session %q", id), errUnknownSession)
	}
	return s, nil
}

// withSession runs fn with the locked session named in the request.  fn
// returns the response to encode, or an error.
func (server *Server) withSession(c *gin.Context, fn func(*session) (interface{}, error)) {
	s, err := server.lookup(c)
	if err != nil {
		writeError(c.Writer, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track = analytics.TrackerFromContext(c.Request.Context())
	defer func() { s.track = nil }()
	response, err := fn(s)
	if err != nil {
		writeError(c.Writer, err)
		return
	}
	writeJSON(c.Writer, http.StatusOK, response)
}

func (server *Server) createSession(c *gin.Context) {
	track := analytics.TrackerFromContext(c.Request.Context())
	track(analytics.Event("Sessions", "Session Created", "", nil))

	width, err := parseFloat(c.Query("width"), defaultContainerWidth)
	if err != nil {
		writeError(c.Writer, newInvalidInputError("parsing width", err))
		return
	}
	table, err := server.loadTable(c.Request)
	if err != nil {
		writeError(c.Writer, err)
		return
	}

	s := newSession(karyotype.New(server.opts))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track = track
	defer func() { s.track = nil }()
	if err := s.viewer.Resize(width); err != nil {
		writeError(c.Writer, newInvalidInputError("laying out", err))
		return
	}
	if chr := c.Query("chr"); chr != "" {
		region, err := parseRegion(chr, c.Query("start"), c.Query("end"))
		if err != nil {
			writeError(c.Writer, err)
			return
		}
		s.viewer.Update(region.Chr, region.Start, region.End)
	}
	s.viewer.SetData(table)

	server.mu.Lock()
	server.sessions[s.id] = s
	server.mu.Unlock()

	writeJSON(c.Writer, http.StatusCreated, map[string]interface{}{
		"id":     s.id,
		"events": s.drain(),
	})
}

func (server *Server) serveSession(c *gin.Context) {
	format, err := parseFormat(c.Query("format"))
	if err != nil {
		writeError(c.Writer, newUnsupportedFormatError(err))
		return
	}
	s, err := server.lookup(c)
	if err != nil {
		writeError(c.Writer, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeViewer(c.Writer, s.viewer, format, s.drain())
}

func (server *Server) deleteSession(c *gin.Context) {
	s, err := server.lookup(c)
	if err != nil {
		writeError(c.Writer, err)
		return
	}
	server.mu.Lock()
	delete(server.sessions, s.id)
	server.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (server *Server) updateView(c *gin.Context) {
	region, err := parseRegion(c.Query("chr"), c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c.Writer, err)
		return
	}
	server.withSession(c, func(s *session) (interface{}, error) {
		s.viewer.Update(region.Chr, region.Start, region.End)
		return map[string]interface{}{"events": s.drain()}, nil
	})
}

func (server *Server) updateWidth(c *gin.Context) {
	width, err := parseFloat(c.Query("width"), 0)
	if err != nil {
		writeError(c.Writer, newInvalidInputError("parsing width", err))
		return
	}
	server.withSession(c, func(s *session) (interface{}, error) {
		if err := s.viewer.Resize(width); err != nil {
			return nil, newInvalidInputError("laying out", err)
		}
		return map[string]interface{}{"width": s.viewer.Width()}, nil
	})
}

func (server *Server) updateScale(c *gin.Context) {
	scale, err := strconv.ParseFloat(c.Query("scale"), 64)
	if err != nil {
		writeError(c.Writer, newInvalidInputError("parsing scale", err))
		return
	}
	server.withSession(c, func(s *session) (interface{}, error) {
		response := map[string]interface{}{}
		if err := s.viewer.SetScale(scale); err != nil {
			response["warning"] = err.Error()
		}
		response["scale"] = s.viewer.Scale()
		response["width"] = s.viewer.Width()
		return response, nil
	})
}

func (server *Server) pointer(c *gin.Context) {
	action := c.Param("action")
	x, err := strconv.ParseFloat(c.Query("x"), 64)
	if err != nil && action != "cancel" {
		writeError(c.Writer, newInvalidInputError("parsing x", err))
		return
	}
	server.withSession(c, func(s *session) (interface{}, error) {
		var err error
		switch action {
		case "down":
			err = s.viewer.PointerDown(x)
		case "move":
			err = s.viewer.PointerMove(x)
		case "up":
			err = s.viewer.PointerUp(x)
		case "cancel":
			err = s.viewer.CancelDrag()
		default:
			return nil, newInvalidInputError("parsing action", fmt.Errorf("unknown pointer action %q", action))
		}
		if errors.Is(err, thumb.ErrInvalidTransition) {
			return nil, newInvalidTransitionError("pointer "+action, err)
		} else if err != nil {
			return nil, err
		}
		x, width, _ := s.viewer.Thumb()
		return map[string]interface{}{
			"thumb":  thumbView{X: x, Width: width, State: s.viewer.ThumbState().String()},
			"events": s.drain(),
		}, nil
	})
}

func (server *Server) band(c *gin.Context) {
	action := c.Param("action")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c.Writer, newInvalidInputError("parsing band index", err))
		return
	}
	x, err := parseFloat(c.Query("x"), 0)
	if err != nil {
		writeError(c.Writer, newInvalidInputError("parsing x", err))
		return
	}
	server.withSession(c, func(s *session) (interface{}, error) {
		var err error
		switch action {
		case "click":
			err = s.viewer.ClickBand(index, x)
		case "hover":
			err = s.viewer.HoverBand(index)
		default:
			return nil, newInvalidInputError("parsing action", fmt.Errorf("unknown band action %q", action))
		}
		switch {
		case errors.Is(err, karyotype.ErrNoSuchBand):
			return nil, newNotFoundError("band "+action, err)
		case errors.Is(err, karyotype.ErrNotReady):
			return nil, newInvalidTransitionError("band "+action, err)
		case err != nil:
			return nil, err
		}
		return map[string]interface{}{"events": s.drain()}, nil
	})
}
