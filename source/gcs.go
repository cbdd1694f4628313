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
	"log"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client is an interface to the storage engine.
type Client interface {
	// NewObjectHandle returns a handle to a specified object in the storage
	// engine.
	NewObjectHandle(bucket, object string) ObjectHandle
}

// ObjectHandle is an interface to a single stored object.
type ObjectHandle interface {
	// NewRangeReader returns a reader that reads from a specified range.
	// Length of -1 means to capture everything until the end.
	NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}

// GCS is a band table stored in Google Cloud Storage.
type GCS struct {
	Bucket, Object string
	Client         Client
}

// Name returns the gs:// URL of the object.
func (g *GCS) Name() string {
	return "gs://" + g.Bucket + "/" + g.Object
}

// Open reads the whole object.
func (g *GCS) Open(ctx context.Context) (io.ReadCloser, error) {
	rc, err := g.Client.NewObjectHandle(g.Bucket, g.Object).NewRangeReader(ctx, 0, -1)
	if err != nil {
		return nil, newStorageError(err)
	}
	return rc, nil
}

// GCSClient is a Client for accessing Google Cloud Storage.
type GCSClient struct {
	*storage.Client
}

// NewObjectHandle returns a handle to a specified object in the storage
// engine.
func (c GCSClient) NewObjectHandle(bucket, object string) ObjectHandle {
	return gcsObjectHandle{c.Bucket(bucket).Object(object)}
}

type gcsObjectHandle struct {
	*storage.ObjectHandle
}

func (h gcsObjectHandle) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	return h.ObjectHandle.NewRangeReader(ctx, offset, length)
}

var (
	defaultStorageClient           *storage.Client
	initializeDefaultStorageClient sync.Once
)

func newClientWithOptions(opts ...option.ClientOption) Client {
	initializeDefaultStorageClient.Do(func() {
		gcs, err := storage.NewClient(context.Background(), opts...)
		if err != nil {
			log.Fatalf("Creating default storage client: %v", err)
		}
		defaultStorageClient = gcs
	})
	return GCSClient{defaultStorageClient}
}

// NewDefaultClient returns a storage client that uses the application default
// credentials.  It caches the storage client for efficiency.
func NewDefaultClient() Client {
	return newClientWithOptions()
}

// NewPublicClient returns a storage client that does not use any form of
// client authorization.  It can only be used to read publicly-readable
// objects.  It caches the storage client for efficiency.
func NewPublicClient() Client {
	return newClientWithOptions(option.WithHTTPClient(http.DefaultClient))
}

// NewClientWithHTTPClient returns an uncached storage client that sends its
// requests through client.
func NewClientWithHTTPClient(ctx context.Context, client *http.Client) (Client, error) {
	gcs, err := storage.NewClient(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating client: %v", err)
	}
	return GCSClient{gcs}, nil
}

// NewClientFromBearerToken constructs a storage client that uses the OAuth2
// bearer token found in req to make storage requests.
func NewClientFromBearerToken(req *http.Request) (Client, error) {
	authorization := req.Header.Get("Authorization")

	fields := strings.Split(authorization, " ")
	if len(fields) != 2 || fields[0] != "Bearer" {
		return nil, fmt.Errorf("missing or invalid token: %w", ErrPermission)
	}

	token := oauth2.Token{
		TokenType:   fields[0],
		AccessToken: fields[1],
	}
	client, err := storage.NewClient(req.Context(), option.WithTokenSource(oauth2.StaticTokenSource(&token)))
	if err != nil {
		return nil, fmt.Errorf("creating client with token source: %v", err)
	}
	return GCSClient{client}, nil
}

func newStorageError(err error) error {
	if err == storage.ErrObjectNotExist || err == storage.ErrBucketNotExist {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%v: %w", err, ErrPermission)
		case http.StatusNotFound:
			return fmt.Errorf("%v: %w", err, ErrNotFound)
		}
	}
	return err
}
