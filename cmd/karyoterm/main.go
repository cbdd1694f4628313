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

// This binary navigates karyotypes in a terminal.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/googlegenomics/karyotype/config"
	"github.com/googlegenomics/karyotype/karyotype"
	"github.com/googlegenomics/karyotype/source"
)

var (
	data  = flag.String("data", "", "band table location; defaults to the hg38 table")
	style = flag.String("style", "", "YAML style file")
	chr   = flag.String("chr", "", "chromosome to show first")
)

func main() {
	flag.Parse()

	s, err := config.Load(*style)
	if err != nil {
		log.Fatalf("Failed to load style: %v", err)
	}
	opts, err := s.Options(*data)
	if err != nil {
		log.Fatalf("Invalid style: %v", err)
	}
	// The name would take up most of a terminal row.
	opts.HideName = true
	if strings.HasPrefix(opts.DataLocation, "gs://") {
		opts.Source, err = source.Parse(opts.DataLocation, source.NewDefaultClient(), nil)
		if err != nil {
			log.Fatalf("Failed to resolve %q: %v", opts.DataLocation, err)
		}
	}

	viewer := karyotype.New(opts)
	if err := viewer.Init(context.Background()); err != nil {
		log.Fatalf("Failed to load bands: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to initialize screen: %v", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	v := newView(screen, viewer)
	v.resize()
	first := 0
	for i, name := range v.chromosomes {
		if name == *chr {
			first = i
		}
	}
	v.show(first)

	for {
		v.draw()
		if !v.handle(screen.PollEvent()) {
			return
		}
	}
}
