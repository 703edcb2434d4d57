// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package run

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/expect"
	"github.com/seritest/seritest/internal/judge"
)

// ResultsFilename is the name of the results file written to the results
// directory.
const ResultsFilename = "results.json"

// Verdict values recorded in the results file.
const (
	VerdictPassed  = "passed"
	VerdictFailed  = "failed"
	VerdictTimeout = "timeout"
	VerdictError   = "error"
)

// runResults is the schema of results.json.
type runResults struct {
	// Verdict is one of the Verdict constants above.
	Verdict string `json:"verdict"`
	// Failure is the failing test's name when Verdict is "failed".
	Failure string `json:"failure,omitempty"`
	// Reason is the error text for "timeout" and "error" verdicts.
	Reason string `json:"reason,omitempty"`
	// Tests lists every classified test line, in order.
	Tests []judge.Result `json:"tests"`
}

// WriteResults records the outcome of one run under dir, creating it if
// needed. runErr is the error returned by the judge, nil on success.
func WriteResults(dir string, results []judge.Result, runErr error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create results dir")
	}

	rr := runResults{Verdict: VerdictPassed, Tests: results}
	var tf *judge.TestFailedError
	switch {
	case runErr == nil:
	case errors.As(runErr, &tf):
		rr.Verdict = VerdictFailed
		rr.Failure = tf.Name
	case expect.IsTimeout(runErr):
		rr.Verdict = VerdictTimeout
		rr.Reason = runErr.Error()
	default:
		rr.Verdict = VerdictError
		rr.Reason = runErr.Error()
	}

	b, err := json.MarshalIndent(&rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.WriteFile(filepath.Join(dir, ResultsFilename), b, 0644); err != nil {
		return errors.Wrap(err, "failed to write results file")
	}
	return nil
}
