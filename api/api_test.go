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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlegenomics/karyotype/analytics"
	"github.com/googlegenomics/karyotype/karyotype"
)

const testBands = "testdata/cytoBand.txt"

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(location string) *gin.Engine {
	server := NewServer(location, nil, karyotype.Options{
		Logger: log.New(ioutil.Discard, "", 0),
	})
	router := gin.New()
	server.Export(router)
	return router
}

func do(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func expectError(t *testing.T, name string, code int, w *httptest.ResponseRecorder) {
	t.Helper()
	if got, want := w.Code, code; got != want {
		t.Errorf("Wrong status code: got %v, want %v (%s)", got, want, w.Body.String())
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, name, body.Error)
	assert.NotEmpty(t, body.Message)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.Equal(t, "application/json", w.Header().Get("Content-type"), w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestChromosomes(t *testing.T) {
	w := do(t, testRouter(testBands), "GET", "/chromosomes")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Chromosomes []string       `json:"chromosomes"`
		Sizes       map[string]int `json:"sizes"`
	}
	decode(t, w, &body)
	assert.Equal(t, []string{"chr1", "chr2", "chr10"}, body.Chromosomes)
	assert.Equal(t, 100000, body.Sizes["chr1"])
}

func TestMissingTable(t *testing.T) {
	expectError(t, "NotFound", http.StatusNotFound,
		do(t, testRouter("testdata/missing.txt"), "GET", "/chromosomes"))
}

func TestInvalidInputs(t *testing.T) {
	testCases := []struct{ name, url, error string }{
		{"bad start", "/karyotype/chr1?start=x", "InvalidInput"},
		{"negative end", "/karyotype/chr1?end=-5", "InvalidInput"},
		{"bad width", "/karyotype/chr1?width=wide", "InvalidInput"},
		{"tiny container", "/karyotype/chr1?width=1", "InvalidInput"},
		{"start after end", "/karyotype/chr1?start=10&end=5", "InvalidRange"},
		{"unknown format", "/karyotype/chr1?format=png", "UnsupportedFormat"},
	}
	router := testRouter(testBands)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, tc.error, http.StatusBadRequest, do(t, router, "GET", tc.url))
		})
	}
}

func TestKaryotypeSVG(t *testing.T) {
	w := do(t, testRouter(testBands), "GET", "/karyotype/chr1?start=1000&end=5000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-type"))
	body := w.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Equal(t, 4, strings.Count(body, "<path"))
	assert.Contains(t, body, "thumb-chr1")
}

func TestKaryotypeJSON(t *testing.T) {
	w := do(t, testRouter(testBands), "GET", "/karyotype/chr1?start=1000&end=5000&format=json&scale=50")
	require.Equal(t, http.StatusOK, w.Code)

	var view karyotypeView
	decode(t, w, &view)
	assert.Equal(t, "chr1", view.Chr)
	assert.Equal(t, 100000, view.ChrLen)
	assert.Equal(t, 0.5, view.Scale)
	assert.Equal(t, float64(200), view.Width)
	require.Len(t, view.Bands, 4)
	assert.Equal(t, "right-rounded", view.Bands[0].Kind.String())
	assert.Equal(t, "left-rounded", view.Bands[3].Kind.String())
	assert.True(t, view.Thumb.Visible)
	assert.Equal(t, "idle", view.Thumb.State)
}

func TestKaryotypeUnknownChromosome(t *testing.T) {
	w := do(t, testRouter(testBands), "GET", "/karyotype/chrUn?format=json")
	require.Equal(t, http.StatusOK, w.Code)

	var view karyotypeView
	decode(t, w, &view)
	require.Len(t, view.Bands, 1)
	assert.Equal(t, "gneg", view.Bands[0].Band.Label)
	assert.Equal(t, 1, view.Bands[0].Band.Min)
}

func TestForwardOrigin(t *testing.T) {
	req, err := http.NewRequest("GET", "/chromosomes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://genome.example.org")
	w := httptest.NewRecorder()
	testRouter(testBands).ServeHTTP(w, req)
	assert.Equal(t, "https://genome.example.org", w.Header().Get("Access-Control-Allow-Origin"))
}

type sessionResponse struct {
	ID     string  `json:"id"`
	Events []event `json:"events"`
	Thumb  struct {
		X     float64 `json:"x"`
		Width float64 `json:"width"`
		State string  `json:"state"`
	} `json:"thumb"`
}

func eventNames(events []event) []string {
	var names []string
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}

func TestSessionDrag(t *testing.T) {
	router := testRouter(testBands)

	w := do(t, router, "POST", "/sessions?chr=chr1&start=1000&end=5000")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created sessionResponse
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"viewerReady"}, eventNames(created.Events))

	w = do(t, router, "GET", "/sessions/"+created.ID+"?format=json")
	require.Equal(t, http.StatusOK, w.Code)
	var view karyotypeView
	decode(t, w, &view)
	x := view.Thumb.X

	base := "/sessions/" + created.ID + "/pointer/"
	var resp sessionResponse
	w = do(t, router, "POST", fmt.Sprintf("%sdown?x=%v", base, x))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &resp)
	assert.Equal(t, "dragging", resp.Thumb.State)

	w = do(t, router, "POST", fmt.Sprintf("%smove?x=%v", base, x+20))
	require.Equal(t, http.StatusOK, w.Code)
	resp = sessionResponse{}
	decode(t, w, &resp)
	assert.Empty(t, resp.Events)

	// With a 400 pixel track the thumb lands at 41 + 0.2 * 360 for 20000.
	w = do(t, router, "POST", base+"up?x=113")
	require.Equal(t, http.StatusOK, w.Code)
	resp = sessionResponse{}
	decode(t, w, &resp)
	require.Equal(t, []string{"sliderMoved"}, eventNames(resp.Events))
	payload := resp.Events[0].Payload.(map[string]interface{})
	assert.InDelta(t, 20000, payload["min"], 1)
	assert.Equal(t, "chr1", payload["chr"])

	expectError(t, "InvalidTransition", http.StatusConflict,
		do(t, router, "POST", base+"up?x=113"))
	expectError(t, "InvalidInput", http.StatusBadRequest,
		do(t, router, "POST", base+"jump?x=1"))
}

func TestSessionBands(t *testing.T) {
	router := testRouter(testBands)
	w := do(t, router, "POST", "/sessions?chr=chr1&start=0&end=10")
	require.Equal(t, http.StatusCreated, w.Code)
	var created sessionResponse
	decode(t, w, &created)
	base := "/sessions/" + created.ID

	w = do(t, router, "POST", base+"/bands/3/click?x=300")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp sessionResponse
	decode(t, w, &resp)
	require.Equal(t, []string{"bandClicked"}, eventNames(resp.Events))
	band := resp.Events[0].Payload.(map[string]interface{})["band"].(map[string]interface{})
	assert.Equal(t, "q11", band["id"])

	w = do(t, router, "POST", base+"/bands/0/hover")
	require.Equal(t, http.StatusOK, w.Code)
	resp = sessionResponse{}
	decode(t, w, &resp)
	assert.Equal(t, []string{"mouseOverBand"}, eventNames(resp.Events))

	expectError(t, "NotFound", http.StatusNotFound, do(t, router, "POST", base+"/bands/42/hover"))
	expectError(t, "InvalidInput", http.StatusBadRequest, do(t, router, "POST", base+"/bands/x/hover"))
}

func TestSessionBands_Skipped(t *testing.T) {
	router := testRouter("testdata/unknownStain.txt")
	w := do(t, router, "POST", "/sessions?chr=chr3&start=0&end=10")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created sessionResponse
	decode(t, w, &created)
	base := "/sessions/" + created.ID

	w = do(t, router, "GET", base+"?format=json")
	require.Equal(t, http.StatusOK, w.Code)
	var view karyotypeView
	decode(t, w, &view)
	require.Len(t, view.Bands, 2)
	assert.Len(t, view.Warnings, 1)
	last := view.Bands[1]
	assert.Equal(t, 1, last.Index)
	assert.Equal(t, "q1", last.Band.ID)

	w = do(t, router, "POST", fmt.Sprintf("%s/bands/%d/hover", base, last.Index))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp sessionResponse
	decode(t, w, &resp)
	require.Equal(t, []string{"mouseOverBand"}, eventNames(resp.Events))
	band := resp.Events[0].Payload.(map[string]interface{})["band"].(map[string]interface{})
	assert.Equal(t, "q1", band["id"])
}

func TestSessionUpdates(t *testing.T) {
	router := testRouter(testBands)
	w := do(t, router, "POST", "/sessions")
	require.Equal(t, http.StatusCreated, w.Code)
	var created sessionResponse
	decode(t, w, &created)
	base := "/sessions/" + created.ID

	require.Equal(t, http.StatusOK, do(t, router, "PUT", base+"/view?chr=chr2&start=100&end=200").Code)

	w = do(t, router, "PUT", base+"/scale?scale=1.5")
	require.Equal(t, http.StatusOK, w.Code)
	var scaled struct {
		Scale   float64 `json:"scale"`
		Warning string  `json:"warning"`
	}
	decode(t, w, &scaled)
	assert.Equal(t, float64(1), scaled.Scale)
	assert.NotEmpty(t, scaled.Warning)

	w = do(t, router, "PUT", base+"/width?width=202")
	require.Equal(t, http.StatusOK, w.Code)
	var resized struct {
		Width float64 `json:"width"`
	}
	decode(t, w, &resized)
	assert.Equal(t, float64(200), resized.Width)

	w = do(t, router, "GET", base+"?format=json")
	var view karyotypeView
	decode(t, w, &view)
	assert.Equal(t, "chr2", view.Chr)
	assert.Equal(t, 80000, view.ChrLen)

	assert.Equal(t, http.StatusNoContent, do(t, router, "DELETE", base).Code)
	expectError(t, "NotFound", http.StatusNotFound, do(t, router, "GET", base))
	expectError(t, "NotFound", http.StatusNotFound, do(t, router, "DELETE", base))
}

func TestTracking(t *testing.T) {
	var hits []analytics.Hit
	handler := analytics.TrackingHandler(testRouter(testBands), func(h []analytics.Hit) {
		hits = append(hits, h...)
	})
	do(t, handler, "GET", "/karyotype/chr1")
	require.Len(t, hits, 2)
	assert.Equal(t, "Karyotype Request Received", hits[0]["ea"])
	assert.Equal(t, "chr1", hits[0]["el"])
	assert.Equal(t, "4", hits[1]["ev"])
}

func TestTracking_Interactions(t *testing.T) {
	var hits []analytics.Hit
	handler := analytics.TrackingHandler(testRouter(testBands), func(h []analytics.Hit) {
		hits = append(hits, h...)
	})
	w := do(t, handler, "POST", "/sessions?chr=chr2")
	require.Equal(t, http.StatusCreated, w.Code)
	var created sessionResponse
	decode(t, w, &created)
	require.Len(t, hits, 2)
	assert.Equal(t, analytics.Interaction("viewerReady", "chr2"), hits[1])

	hits = nil
	do(t, handler, "POST", "/sessions/"+created.ID+"/bands/0/hover")
	assert.Equal(t, []analytics.Hit{analytics.Interaction("mouseOverBand", "chr2")}, hits)
}
