// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package judge drives one device test run to a pass/fail verdict.
//
// Test firmware announces itself with a fixed banner line, prints one
// NAME:[OK] or NAME:[FAILED] line per test, and prints a fixed end marker
// after the last test. The judge waits for the banner, classifies every
// following line against an ordered pattern list, and stops at the first
// failure or at the end marker.
package judge

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/expect"
	"github.com/seritest/seritest/internal/logging"
)

// DefaultEndMarker is the end-of-run line printed by firmware built with the
// stock test harness.
const DefaultEndMarker = "Test end."

// Outcome classifies one consumed line of device output.
type Outcome int

const (
	// TestPassed is a NAME:[OK] line.
	TestPassed Outcome = iota
	// RunEnded is the end-of-run marker.
	RunEnded
	// TestFailed is a NAME:[FAILED] line.
	TestFailed
	// Unrecognized is any other line. It is deliberately treated the
	// same as TestFailed: a device printing unexpected output is a
	// failure signal, not something to skip over.
	Unrecognized
)

// String returns the name used for the outcome in logs and results files.
func (o Outcome) String() string {
	switch o {
	case TestPassed:
		return "passed"
	case RunEnded:
		return "ended"
	case TestFailed:
		return "failed"
	default:
		return "unrecognized"
	}
}

// MarshalJSON renders the outcome as its string name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// outcomes maps a pattern index returned by ExpectPattern to its Outcome.
// The order must match Suite.patterns.
var outcomes = []Outcome{TestPassed, RunEnded, TestFailed, Unrecognized}

// Suite describes the output format of one test firmware build.
type Suite struct {
	// Banner is the literal line announcing the start of test output.
	// It must be observed before any classification happens.
	Banner string

	// EndMarker is the literal line printed after the last test.
	// Empty means DefaultEndMarker.
	EndMarker string
}

func (s *Suite) endMarker() string {
	if s.EndMarker == "" {
		return DefaultEndMarker
	}
	return s.EndMarker
}

// patterns returns the ordered alternation classified lines are tried
// against. The first match wins, and the final catch-all guarantees every
// line resolves to some index, leaving true silence as the only way to time
// out.
func (s *Suite) patterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`^[^\r\n]*:\[OK\]$`),
		regexp.MustCompile(`^` + regexp.QuoteMeta(s.endMarker()) + `$`),
		regexp.MustCompile(`^.[^\r\n]*:\[FAILED\]$`),
		regexp.MustCompile(``),
	}
}

// Result records the classification of one consumed test line.
type Result struct {
	// Name is the test's name: the text before the first colon, or the
	// whole line if it has none.
	Name string `json:"name"`
	// Outcome is the line's classification.
	Outcome Outcome `json:"outcome"`
	// Time is when the line was classified.
	Time time.Time `json:"time"`
}

// TestFailedError reports the first test that did not pass. Name follows the
// same extraction rule as Result.Name.
type TestFailedError struct {
	Name string
}

func (e *TestFailedError) Error() string {
	return fmt.Sprintf("test %q failed", e.Name)
}

// testName extracts the test name from a classified line.
func testName(line string) string {
	name, _, _ := strings.Cut(line, ":")
	return name
}

// Run drives one run to a verdict: it waits for the suite banner, then
// classifies lines until the end marker arrives or a test fails. It returns
// one Result per classified test line, in order.
//
// The only success path is observing the end marker. A NAME:[FAILED] line or
// any unrecognized line stops classification immediately and returns a
// *TestFailedError. Timeouts from m are propagated unchanged, both before
// the banner (the run never started) and during classification (an
// unresponsive device must not pass). Run keeps no state between calls, so
// independent streams produce independent verdicts.
func Run(ctx context.Context, m expect.Matcher, s *Suite) ([]Result, error) {
	if s.Banner == "" {
		return nil, errors.New("suite banner must be specified")
	}
	if err := m.ExpectExact(ctx, s.Banner); err != nil {
		return nil, err
	}
	logging.Debugf(ctx, "Observed banner %q", s.Banner)

	pats := s.patterns()
	var results []Result
	for {
		idx, line, err := m.ExpectPattern(ctx, pats)
		if err != nil {
			return results, err
		}
		outcome := outcomes[idx]
		switch outcome {
		case TestPassed:
			name := testName(line)
			results = append(results, Result{Name: name, Outcome: outcome, Time: time.Now()})
			logging.Debugf(ctx, "Test %s passed", name)
		case RunEnded:
			logging.Debugf(ctx, "Observed end marker after %d test(s)", len(results))
			return results, nil
		default:
			name := testName(line)
			results = append(results, Result{Name: name, Outcome: outcome, Time: time.Now()})
			return results, &TestFailedError{Name: name}
		}
	}
}
