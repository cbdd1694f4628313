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

// This binary serves karyotypes over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/profile"

	"github.com/googlegenomics/karyotype/analytics"
	"github.com/googlegenomics/karyotype/api"
	"github.com/googlegenomics/karyotype/config"
	"github.com/googlegenomics/karyotype/source"
)

var (
	port = flag.Int("port", 80, "HTTP service port")
	data = flag.String("data", "", "band table location (local path, http(s):// or gs:// URL); defaults to the hg38 table")

	secure    = flag.Bool("secure", false, "serve in HTTPS-only mode and forward client bearer tokens")
	httpsCert = flag.String("https_cert", "", "HTTPS certificate file")
	httpsKey  = flag.String("https_key", "", "HTTPS key file")

	style        = flag.String("style", "", "YAML style file")
	profileCPU   = flag.Bool("profile", false, "write a CPU profile to the working directory")
	profileAlloc = flag.Bool("profile_mem", false, "write a memory profile to the working directory")

	// Enable or disable anonymous usage tracking.
	//
	// If enabled, anonymous information about requests handled by the server is
	// logged to Google via Google Analytics.
	//
	// This information helps Google determine how well the software is
	// performing and where improvements should be made.  No user identifying
	// information is ever sent to Google.
	trackUsage = flag.Bool("track_usage", false, "anonymous usage tracking")
)

func main() {
	flag.Parse()

	if *secure && (*httpsCert == "" || *httpsKey == "") {
		log.Fatalf("You must specify both -https_cert and -https_key in secure mode.")
	}

	switch {
	case *profileCPU:
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case *profileAlloc:
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	s, err := config.Load(*style)
	if err != nil {
		log.Fatalf("Failed to load style: %v", err)
	}
	opts, err := s.Options(*data)
	if err != nil {
		log.Fatalf("Invalid style: %v", err)
	}
	location := opts.DataLocation
	if location == "" {
		location = source.DefaultLocation
	}

	newStorageClient := func(*http.Request) (source.Client, error) {
		return source.NewPublicClient(), nil
	}
	if *secure {
		newStorageClient = source.NewClientFromBearerToken
	}

	server := api.NewServer(location, newStorageClient, opts)
	handler := server.Handler()
	if *trackUsage {
		log.Printf("Enabling anonymous usage tracking")

		client := analytics.NewClient("UA-103022118-1", uuid.New().String())
		handler = analytics.TrackingHandler(handler, func(hits []analytics.Hit) {
			if err := client.Send(context.Background(), hits); err != nil {
				log.Printf("Failed to send %d hits to analytics: %v", len(hits), err)
			}
		})
	}

	address := fmt.Sprintf(":%d", *port)
	log.Printf("Serving bands from %s on %s", location, address)
	if *secure {
		if err := http.ListenAndServeTLS(address, *httpsCert, *httpsKey, handler); err != nil {
			log.Fatalf("HTTPS server returned an error: %v", err)
		}
	} else {
		if err := http.ListenAndServe(address, handler); err != nil {
			log.Fatalf("HTTP server returned an error: %v", err)
		}
	}
}
