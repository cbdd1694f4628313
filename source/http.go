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

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTP is a band table served over HTTP or HTTPS.
type HTTP struct {
	URL string
	// Client performs the request.  If nil, http.DefaultClient is used.
	Client *http.Client
}

// Name returns the URL of the table.
func (h *HTTP) Name() string {
	return h.URL
}

// Open issues a GET request for the table.
func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequest("GET", h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %v", err)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching data: %v", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", resp.Status, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", resp.Status, ErrPermission)
	}
	resp.Body.Close()
	return nil, fmt.Errorf("unexpected response status: %q", resp.Status)
}
