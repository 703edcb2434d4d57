// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package expect matches expected text in a device's output stream.
//
// It provides the blocking line-source contract consumed by the classifier:
// wait for an exact literal, or wait for the next line and report which of an
// ordered list of patterns it matched.
package expect

import (
	"context"
	"fmt"
	"regexp"

	"github.com/seritest/seritest/errors"
)

// Matcher is the contract the classifier requires from a line source.
//
// Both methods block until matching output is observed, the deadline passes,
// or ctx is canceled. Implementations may buffer and perform I/O on
// background goroutines, but calls must be made from a single goroutine.
type Matcher interface {
	// ExpectExact consumes lines until one containing the literal text is
	// observed. It returns a *TimeoutError if the deadline passes first.
	ExpectExact(ctx context.Context, text string) error

	// ExpectPattern consumes lines until one matches any of pats, and
	// returns the index of the first pattern that matched together with
	// the matched line. Patterns are tried in order; the first match
	// wins. Callers should place a catch-all pattern last so that only
	// true silence can time out.
	ExpectPattern(ctx context.Context, pats []*regexp.Regexp) (idx int, line string, err error)
}

// TimeoutError reports that expected device output did not arrive in time.
type TimeoutError struct {
	// What describes the output that was awaited.
	What string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s", e.What)
}

// IsTimeout reports whether any error in err's chain is a *TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
