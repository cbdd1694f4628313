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

// Package api serves karyotypes over HTTP.
//
// Stateless requests render a chromosome for a given view range.  Sessions
// hold one interactive karyotype each; pointer and band input posted to a
// session returns the events the karyotype published in response.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/googlegenomics/karyotype/analytics"
	"github.com/googlegenomics/karyotype/genomics"
	"github.com/googlegenomics/karyotype/internal/bands"
	"github.com/googlegenomics/karyotype/karyotype"
	"github.com/googlegenomics/karyotype/source"
)

const (
	defaultContainerWidth = 402

	formatSVG  = "svg"
	formatJSON = "json"
)

var (
	errMissingChromosome = errors.New("no chromosome specified")
	errUnknownSession    = errors.New("unknown session")
)

// NewStorageClientFunc is the type of function that constructs the storage
// client used to read a gs:// band table on behalf of the incoming request.
type NewStorageClientFunc func(*http.Request) (source.Client, error)

// Server provides the karyotype HTTP API.  Must be created with NewServer.
type Server struct {
	location         string
	newStorageClient NewStorageClientFunc
	opts             karyotype.Options
	logger           *log.Logger

	mu       sync.Mutex
	table    *bands.Table
	sessions map[string]*session
}

// NewServer returns a Server that reads bands from location.  The band table
// is loaded on the first request that needs it, using newStorageClient for
// gs:// locations.  Every karyotype created by the server is configured with
// opts.
func NewServer(location string, newStorageClient NewStorageClientFunc, opts karyotype.Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "karyotype: ", log.LstdFlags)
		opts.Logger = logger
	}
	return &Server{
		location:         location,
		newStorageClient: newStorageClient,
		opts:             opts,
		logger:           logger,
		sessions:         make(map[string]*session),
	}
}

// Export registers the API endpoints with router.
func (server *Server) Export(router gin.IRoutes) {
	router.Use(forwardOrigin)
	router.GET("/chromosomes", server.serveChromosomes)
	router.GET("/karyotype/:chr", server.serveKaryotype)

	router.POST("/sessions", server.createSession)
	router.GET("/sessions/:id", server.serveSession)
	router.DELETE("/sessions/:id", server.deleteSession)
	router.PUT("/sessions/:id/view", server.updateView)
	router.PUT("/sessions/:id/width", server.updateWidth)
	router.PUT("/sessions/:id/scale", server.updateScale)
	router.POST("/sessions/:id/pointer/:action", server.pointer)
	router.POST("/sessions/:id/bands/:index/:action", server.band)
}

// Handler returns a gin engine serving the API.
func (server *Server) Handler() http.Handler {
	router := gin.Default()
	server.Export(router)
	return router
}

// loadTable returns the band table, reading it on first use.  Failed loads
// are retried by the next request.
func (server *Server) loadTable(req *http.Request) (*bands.Table, error) {
	server.mu.Lock()
	defer server.mu.Unlock()
	if server.table != nil {
		return server.table, nil
	}

	var gcs source.Client
	if server.newStorageClient != nil && strings.HasPrefix(server.location, "gs://") {
		client, err := server.newStorageClient(req)
		if err != nil {
			return nil, newStorageError("creating client", err)
		}
		gcs = client
	}
	src, err := source.Parse(server.location, gcs, nil)
	if err != nil {
		return nil, fmt.Errorf("resolving band table: %v", err)
	}
	table, err := source.Load(req.Context(), src)
	if err != nil {
		return nil, newStorageError("loading bands", err)
	}
	for _, warning := range table.Warnings {
		server.logger.Printf("Skipping band table row: %v", warning)
	}
	server.table = table
	return table, nil
}

func (server *Server) serveChromosomes(c *gin.Context) {
	track := analytics.TrackerFromContext(c.Request.Context())
	track(analytics.Event("Chromosomes", "Chromosomes Request Received", "", nil))

	table, err := server.loadTable(c.Request)
	if err != nil {
		writeError(c.Writer, err)
		return
	}
	writeJSON(c.Writer, http.StatusOK, map[string]interface{}{
		"chromosomes": table.Chromosomes(),
		"sizes":       table.Sizes(),
	})
}

func (server *Server) serveKaryotype(c *gin.Context) {
	track := analytics.TrackerFromContext(c.Request.Context())
	chr := c.Param("chr")
	track(analytics.Event("Karyotype", "Karyotype Request Received", chr, nil))

	format, err := parseFormat(c.Query("format"))
	if err != nil {
		writeError(c.Writer, newUnsupportedFormatError(err))
		return
	}
	region, err := parseRegion(chr, c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c.Writer, err)
		return
	}
	width, err := parseFloat(c.Query("width"), defaultContainerWidth)
	if err != nil {
		writeError(c.Writer, newInvalidInputError("parsing width", err))
		return
	}
	scale, err := parseFloat(c.Query("scale"), 1)
	if err != nil {
		writeError(c.Writer, newInvalidInputError("parsing scale", err))
		return
	}

	table, err := server.loadTable(c.Request)
	if err != nil {
		writeError(c.Writer, err)
		return
	}

	viewer := karyotype.New(server.opts)
	if err := viewer.SetScale(scale); err != nil {
		track(analytics.Event("Karyotype", "Scale Adjusted", strconv.FormatFloat(scale, 'f', -1, 64), nil))
	}
	if err := viewer.Resize(width); err != nil {
		writeError(c.Writer, newInvalidInputError("laying out", err))
		return
	}
	viewer.SetData(table)
	viewer.Update(region.Chr, region.Start, region.End)

	writeViewer(c.Writer, viewer, format, nil)

	count := int64(len(viewer.Strip().Shapes))
	track(analytics.Event("Karyotype", "Karyotype Band Count", chr, &count))
}

// parseRegion parses the view range of chr.  Missing bounds are zero.
func parseRegion(chr, start, end string) (genomics.Region, error) {
	if chr == "" {
		return genomics.Region{}, newInvalidInputError("parsing region", errMissingChromosome)
	}
	region := genomics.Region{Chr: chr}
	if start != "" {
		n, err := strconv.ParseUint(start, 10, 32)
		if err != nil {
			return genomics.Region{}, newInvalidInputError("parsing start", err)
		}
		region.Start = int(n)
	}
	if end != "" {
		n, err := strconv.ParseUint(end, 10, 32)
		if err != nil {
			return genomics.Region{}, newInvalidInputError("parsing end", err)
		}
		region.End = int(n)
	}
	if region.End > 0 && region.Start > region.End {
		return genomics.Region{}, newInvalidRangeError(fmt.Errorf("%s: start > end", region))
	}
	return region, nil
}

func parseFormat(format string) (string, error) {
	switch format {
	case "", formatSVG:
		return formatSVG, nil
	case formatJSON:
		return formatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q", format)
}

func parseFloat(value string, fallback float64) (float64, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(value, 64)
}

// apiError is used to capture errors that have a name and status code in the
// API.
type apiError struct {
	name  string
	code  int
	cause error
}

func (err *apiError) Error() string {
	return fmt.Sprintf("%s (%d): %v", err.name, err.code, err.cause)
}

func newAPIError(name string, code int, context string, err error) error {
	return &apiError{name, code, fmt.Errorf("%s: %v", context, err)}
}

func newInvalidInputError(context string, err error) error {
	return newAPIError("InvalidInput", http.StatusBadRequest, context, err)
}

func newInvalidRangeError(err error) error {
	return &apiError{"InvalidRange", http.StatusBadRequest, err}
}

func newInvalidTransitionError(context string, err error) error {
	return newAPIError("InvalidTransition", http.StatusConflict, context, err)
}

func newNotFoundError(context string, err error) error {
	return newAPIError("NotFound", http.StatusNotFound, context, err)
}

func newPermissionDeniedError(context string, err error) error {
	return newAPIError("PermissionDenied", http.StatusForbidden, context, err)
}

func newUnsupportedFormatError(err error) error {
	return &apiError{"UnsupportedFormat", http.StatusBadRequest, err}
}

// newStorageError maps errors from the source package to API errors.
func newStorageError(context string, err error) error {
	switch {
	case errors.Is(err, source.ErrNotFound):
		return newNotFoundError(context, err)
	case errors.Is(err, source.ErrPermission):
		return newPermissionDeniedError(context, err)
	}
	return fmt.Errorf("%s: %v", context, err)
}

// writeError writes either a JSON object or bare HTTP error describing err to
// w.  A JSON object is written only for errors with an API name and code.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.code, map[string]interface{}{
			"error":   apiErr.name,
			"message": fmt.Sprintf("%s: %v", http.StatusText(apiErr.code), apiErr.cause),
		})
		return
	}

	writeHTTPError(w, http.StatusInternalServerError, err)
}

func writeHTTPError(w http.ResponseWriter, code int, err error) {
	http.Error(w, fmt.Sprintf("%s: %v", http.StatusText(code), err), code)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Add("Content-type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func forwardOrigin(c *gin.Context) {
	if origin := c.Request.Header.Get("Origin"); origin != "" {
		c.Header("Access-Control-Allow-Origin", origin)
	}
	c.Next()
}
