// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package expect

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"
)

// stringSource wraps a fixed device transcript as an io.ReadCloser.
type stringSource struct {
	io.Reader
}

func newStringSource(s string) *stringSource {
	return &stringSource{strings.NewReader(s)}
}

func (s *stringSource) Close() error { return nil }

func TestExpectExact(t *testing.T) {
	r := NewReader(newStringSource("noise\r\nthe banner\r\nrest\r\n"), 0)
	defer r.Close()

	if err := r.ExpectExact(context.Background(), "the banner"); err != nil {
		t.Errorf("ExpectExact failed: %v", err)
	}

	// The next line after the banner must still be available.
	idx, line, err := r.ExpectPattern(context.Background(), []*regexp.Regexp{regexp.MustCompile(`.*`)})
	if err != nil {
		t.Fatalf("ExpectPattern failed: %v", err)
	}
	if idx != 0 || line != "rest" {
		t.Errorf("ExpectPattern = (%d, %q); want (0, %q)", idx, line, "rest")
	}
}

func TestExpectExactEOF(t *testing.T) {
	r := NewReader(newStringSource("noise\n"), 0)
	defer r.Close()

	if err := r.ExpectExact(context.Background(), "never printed"); err == nil {
		t.Error("ExpectExact unexpectedly succeeded after EOF")
	}
}

func TestExpectPatternOrder(t *testing.T) {
	// Both patterns match the line; the first must win.
	pats := []*regexp.Regexp{
		regexp.MustCompile(`^boot:`),
		regexp.MustCompile(`.*`),
	}
	r := NewReader(newStringSource("boot:[OK]\r\n"), 0)
	defer r.Close()

	idx, line, err := r.ExpectPattern(context.Background(), pats)
	if err != nil {
		t.Fatalf("ExpectPattern failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("ExpectPattern matched pattern %d; want 0", idx)
	}
	if want := "boot:[OK]"; line != want {
		t.Errorf("ExpectPattern returned line %q; want %q", line, want)
	}
}

func TestExpectPatternSkipsNonMatching(t *testing.T) {
	pats := []*regexp.Regexp{regexp.MustCompile(`^hit$`)}
	r := NewReader(newStringSource("miss\nmiss\nhit\n"), 0)
	defer r.Close()

	idx, line, err := r.ExpectPattern(context.Background(), pats)
	if err != nil {
		t.Fatalf("ExpectPattern failed: %v", err)
	}
	if idx != 0 || line != "hit" {
		t.Errorf("ExpectPattern = (%d, %q); want (0, %q)", idx, line, "hit")
	}
}

func TestExpectTimeout(t *testing.T) {
	// A pipe that never produces output forces the deadline to fire.
	pr, pw := io.Pipe()
	r := NewReader(pr, 10*time.Millisecond)
	defer pw.Close()
	defer r.Close()

	err := r.ExpectExact(context.Background(), "the banner")
	if err == nil {
		t.Fatal("ExpectExact unexpectedly succeeded with silent device")
	}
	if !IsTimeout(err) {
		t.Errorf("ExpectExact returned %v; want timeout", err)
	}
}

func TestExpectPatternTimeout(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewReader(pr, 10*time.Millisecond)
	defer pw.Close()
	defer r.Close()

	_, _, err := r.ExpectPattern(context.Background(), []*regexp.Regexp{regexp.MustCompile(`.*`)})
	if !IsTimeout(err) {
		t.Errorf("ExpectPattern returned %v; want timeout", err)
	}
}

func TestExpectContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewReader(pr, 0)
	defer pw.Close()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := r.ExpectExact(ctx, "the banner"); err == nil {
		t.Error("ExpectExact unexpectedly succeeded after cancellation")
	} else if IsTimeout(err) {
		t.Errorf("ExpectExact returned timeout %v; want cancellation", err)
	}
}

func TestCRLFStripped(t *testing.T) {
	pats := []*regexp.Regexp{regexp.MustCompile(`^mem:\[OK\]$`)}
	r := NewReader(newStringSource("mem:[OK]\r\n"), 0)
	defer r.Close()

	idx, line, err := r.ExpectPattern(context.Background(), pats)
	if err != nil {
		t.Fatalf("ExpectPattern failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("Anchored pattern did not match CRLF line %q", line)
	}
}
