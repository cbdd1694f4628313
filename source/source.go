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

// Package source loads cytogenetic band tables from local files, HTTP(S)
// servers and Google Cloud Storage.
package source

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/googlegenomics/karyotype/internal/bands"
)

// DefaultLocation is the hg38 band table published by the RCSB.
const DefaultLocation = "http://cdn.rcsb.org/gene/hg38/chromosome.band.hg38.txt.gz"

var (
	// ErrNotFound is returned when the band table does not exist.
	ErrNotFound = errors.New("band table not found")
	// ErrPermission is returned when the caller may not read the band table.
	ErrPermission = errors.New("permission denied")

	errInvalidLocation = errors.New("invalid location")
)

// Source provides the raw bytes of a band table.
type Source interface {
	// Name returns the location of the table.  Names ending in ".gz" are
	// decompressed by Load.
	Name() string
	// Open returns a reader for the whole table.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Parse returns the Source for location.  gs://bucket/object locations are
// read with gcs, http:// and https:// locations with client (or
// http.DefaultClient if nil), and anything else is a local path.
func Parse(location string, gcs Client, client *http.Client) (Source, error) {
	switch {
	case location == "":
		return nil, fmt.Errorf("empty location: %w", errInvalidLocation)
	case strings.HasPrefix(location, "gs://"):
		bucket, object, err := parseGCSPath(strings.TrimPrefix(location, "gs://"))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", location, err)
		}
		if gcs == nil {
			return nil, fmt.Errorf("%q: no storage client configured", location)
		}
		return &GCS{Bucket: bucket, Object: object, Client: gcs}, nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return &HTTP{URL: location, Client: client}, nil
	}
	return File(location), nil
}

// Load reads and parses the band table provided by src.
func Load(ctx context.Context, src Source) (*bands.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src.Name(), err)
	}
	defer rc.Close()

	r := io.Reader(rc)
	if strings.HasSuffix(src.Name(), ".gz") {
		gzr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("initializing gzip reader for %s: %v", src.Name(), err)
		}
		defer gzr.Close()
		r = gzr
	}

	table, err := bands.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %v", src.Name(), err)
	}
	return table, nil
}

// parseGCSPath splits path into a bucket and an object name.
func parseGCSPath(path string) (string, string, error) {
	if parts := strings.SplitN(path, "/", 2); len(parts) == 2 {
		if parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
	}
	return "", "", errInvalidLocation
}
