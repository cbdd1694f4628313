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

// This binary renders a chromosome as SVG.  Band tables in GCS are read with
// Google application default credentials.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/googlegenomics/karyotype/config"
	"github.com/googlegenomics/karyotype/karyotype"
	"github.com/googlegenomics/karyotype/source"
)

const (
	scope = "https://www.googleapis.com/auth/devstorage.read_only"
)

var (
	data   = flag.String("data", "", "band table location; defaults to the hg38 table")
	style  = flag.String("style", "", "YAML style file")
	start  = flag.Int("start", 0, "start of the viewed range")
	end    = flag.Int("end", 0, "end of the viewed range")
	width  = flag.Float64("width", 402, "container width in pixels")
	output = flag.String("o", "", "output filename")
	list   = flag.Bool("list", false, "list the chromosomes of the band table and exit")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 && !*list {
		log.Fatalf("Usage: karyotype-render [flags] <chromosome>")
	}

	w := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to open output file: %v", err)
		}
		defer f.Close()

		w = f
	}

	s, err := config.Load(*style)
	if err != nil {
		log.Fatalf("Failed to load style: %v", err)
	}
	opts, err := s.Options(*data)
	if err != nil {
		log.Fatalf("Invalid style: %v", err)
	}

	ctx := context.Background()

	// For compatibility with other tools, read the standard cURL certificate
	// authority override from the environment.
	if bundle := os.Getenv("CURL_CA_BUNDLE"); bundle != "" {
		pem, err := ioutil.ReadFile(bundle)
		if err != nil {
			log.Fatalf("Failed to read CA override file %q: %v", bundle, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			log.Fatalf("Failed to initialize system certificate pool: %v", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			log.Fatalf("Failed to add certificates from bundle %q", bundle)
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs: pool,
				}},
		})
		log.Printf("Using CA override bundle from %q", bundle)
	}

	location := opts.DataLocation
	if location == "" {
		location = source.DefaultLocation
	}
	opts.Source, err = newSource(ctx, location)
	if err != nil {
		log.Fatalf("Failed to resolve %q: %v", location, err)
	}

	viewer := karyotype.New(opts)
	if err := viewer.Init(ctx); err != nil {
		log.Fatalf("Failed to load bands: %v", err)
	}

	if *list {
		sizes := viewer.Sizes()
		for _, chr := range viewer.Chromosomes() {
			fmt.Fprintf(w, "%s\t%d\n", chr, sizes[chr])
		}
		return
	}

	if err := viewer.Resize(*width); err != nil {
		log.Fatalf("Failed to lay out: %v", err)
	}
	chr := flag.Arg(0)
	viewer.Update(chr, *start, *end)
	if err := viewer.WriteSVG(w); err != nil {
		log.Fatalf("Failed to write %s: %v", chr, err)
	}
	log.Printf("Wrote %s with %d bands", chr, len(viewer.Strip().Shapes))
}

// newSource resolves location.  GCS locations are read with application
// default credentials; other locations never see them.
func newSource(ctx context.Context, location string) (source.Source, error) {
	if !strings.HasPrefix(location, "gs://") {
		client, _ := ctx.Value(oauth2.HTTPClient).(*http.Client)
		return source.Parse(location, nil, client)
	}
	client, err := google.DefaultClient(ctx, scope)
	if err != nil {
		log.Printf("No default credentials (%v), reading %s anonymously", err, location)
		return source.Parse(location, source.NewPublicClient(), nil)
	}
	gcs, err := source.NewClientWithHTTPClient(ctx, client)
	if err != nil {
		return nil, err
	}
	return source.Parse(location, gcs, nil)
}
