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

// Package events provides synchronous, typed publish/subscribe topics.
package events

import (
	"fmt"
	"log"
)

// Name identifies one of the events a karyotype reports to its host.
type Name int

const (
	ViewerReady Name = iota
	LoadDataTrack
	BandClicked
	MouseOverBand
	SliderMoved
)

var names = [...]string{
	ViewerReady:   "viewerReady",
	LoadDataTrack: "loadDataTrack",
	BandClicked:   "bandClicked",
	MouseOverBand: "mouseOverBand",
	SliderMoved:   "sliderMoved",
}

func (n Name) String() string {
	if n < 0 || int(n) >= len(names) {
		return fmt.Sprintf("event(%d)", int(n))
	}
	return names[n]
}

// Topic is an ordered list of listeners for one event.  Listeners run on the
// publishing goroutine in the order they subscribed.  A Topic is not safe
// for concurrent use.
type Topic[T any] struct {
	name      Name
	logger    *log.Logger
	listeners []func(T)

	latched bool
	value   T
}

// NewTopic returns a topic for the named event.  Listener failures are
// reported to logger, or to the standard logger if it is nil.
func NewTopic[T any](name Name, logger *log.Logger) *Topic[T] {
	return &Topic[T]{name: name, logger: logger}
}

// Name returns the event name of the topic.
func (t *Topic[T]) Name() Name {
	return t.name
}

// Len returns the number of subscribed listeners.
func (t *Topic[T]) Len() int {
	return len(t.listeners)
}

// Subscribe appends fn to the listeners.  If the topic has been latched, fn
// is invoked immediately with the latched value; earlier listeners are not
// invoked again.
func (t *Topic[T]) Subscribe(fn func(T)) {
	t.listeners = append(t.listeners, fn)
	if t.latched {
		t.deliver(fn, t.value)
	}
}

// Publish invokes every listener with v and returns the number of listeners
// that panicked.  A failing listener does not prevent delivery to the
// listeners after it.
func (t *Topic[T]) Publish(v T) int {
	var failures int
	for _, fn := range t.listeners {
		if !t.deliver(fn, v) {
			failures++
		}
	}
	return failures
}

// Latch publishes v and remembers it for listeners that subscribe later.
func (t *Topic[T]) Latch(v T) int {
	t.latched, t.value = true, v
	return t.Publish(v)
}

// Latched reports whether Latch has been called.
func (t *Topic[T]) Latched() bool {
	return t.latched
}

func (t *Topic[T]) deliver(fn func(T), v T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.printf("%s listener failed: %v", t.name, r)
			ok = false
		}
	}()
	fn(v)
	return true
}

func (t *Topic[T]) printf(format string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
