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
	"os"
)

// File is a band table on the local file system.
type File string

// Name returns the path of the file.
func (f File) Name() string {
	return string(f)
}

// Open opens the file.  The context is not consulted.
func (f File) Open(_ context.Context) (io.ReadCloser, error) {
	file, err := os.Open(string(f))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	if os.IsPermission(err) {
		return nil, fmt.Errorf("%v: %w", err, ErrPermission)
	}
	return file, err
}
