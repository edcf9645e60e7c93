// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"net/http"
	"testing"
	"time"
)

func TestServerClockUnobserved(t *testing.T) {
	t.Parallel()

	c := NewServerClock()
	if _, ok := c.Now(); ok {
		t.Error("Now must report false before any observation")
	}
}

func TestServerClockObserve(t *testing.T) {
	t.Parallel()

	c := NewServerClock()
	h := http.Header{}
	h.Set("Date", "Mon, 02 Jan 2006 15:04:05 GMT")
	c.Observe(h)

	now, ok := c.Now()
	if !ok {
		t.Fatal("expected an estimate after observing a Date header")
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	// The estimate advances with elapsed local time; it can only be at or
	// after the captured server time, and only by the tiny test runtime.
	if now.Before(want) {
		t.Errorf("estimate %v precedes observed server time %v", now, want)
	}
	if now.Sub(want) > time.Minute {
		t.Errorf("estimate drifted too far from observed time: %v", now.Sub(want))
	}
}

func TestServerClockAdvances(t *testing.T) {
	t.Parallel()

	c := NewServerClock()
	h := http.Header{}
	h.Set("Date", "Mon, 02 Jan 2006 15:04:05 GMT")
	c.Observe(h)

	first, _ := c.Now()
	time.Sleep(15 * time.Millisecond)
	second, _ := c.Now()
	if !second.After(first) {
		t.Errorf("estimate did not advance: %v then %v", first, second)
	}
}

func TestServerClockOverwrites(t *testing.T) {
	t.Parallel()

	c := NewServerClock()
	h := http.Header{}
	h.Set("Date", "Mon, 02 Jan 2006 15:04:05 GMT")
	c.Observe(h)

	h.Set("Date", "Tue, 01 Jan 2030 00:00:00 GMT")
	c.Observe(h)

	now, _ := c.Now()
	if now.Year() != 2030 {
		t.Errorf("later observation must overwrite, got %v", now)
	}
}

func TestServerClockIgnoresBadHeaders(t *testing.T) {
	t.Parallel()

	c := NewServerClock()

	c.Observe(http.Header{}) // no Date at all
	if _, ok := c.Now(); ok {
		t.Error("missing header must not create an estimate")
	}

	h := http.Header{}
	h.Set("Date", "not a date")
	c.Observe(h)
	if _, ok := c.Now(); ok {
		t.Error("unparsable header must not create an estimate")
	}

	// A good observation followed by a bad one keeps the good one.
	h.Set("Date", "Mon, 02 Jan 2006 15:04:05 GMT")
	c.Observe(h)
	h.Set("Date", "garbage")
	c.Observe(h)
	if _, ok := c.Now(); !ok {
		t.Error("bad observation must not erase an existing estimate")
	}
}
