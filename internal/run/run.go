// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package run executes one classifier run end to end: it opens the device
// output channel, drives the judge to a verdict and writes results.
package run

import (
	"context"
	"io"

	"github.com/seritest/seritest/internal/config"
	"github.com/seritest/seritest/internal/expect"
	"github.com/seritest/seritest/internal/judge"
	"github.com/seritest/seritest/internal/logging"
	"github.com/seritest/seritest/internal/source"
	"github.com/seritest/seritest/internal/xcontext"
)

// Run opens the source described by cfg and classifies its output.
// Results are written to cfg.ResDir if set. The returned error is nil only
// when the end marker was observed; a *judge.TestFailedError names the
// failing test, and a timeout means the device went silent.
func Run(ctx context.Context, cfg *config.Config) ([]judge.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src, err := source.New(ctx, &cfg.Source)
	if err != nil {
		return nil, err
	}
	return RunStream(ctx, cfg, src)
}

// RunStream is like Run but classifies output from an already-open stream.
// It takes ownership of src and closes it before returning.
func RunStream(ctx context.Context, cfg *config.Config, src io.ReadCloser) ([]judge.Result, error) {
	rd := expect.NewReader(src, cfg.EffectiveLineTimeout())
	defer rd.Close()

	if cfg.RunTimeout > 0 {
		var cancel xcontext.CancelFunc
		ctx, cancel = xcontext.WithTimeout(ctx, cfg.RunTimeout,
			&expect.TimeoutError{What: "run to finish"})
		defer cancel(context.Canceled)
	}

	results, runErr := judge.Run(ctx, rd, cfg.Suite())

	if cfg.ResDir != "" {
		if err := WriteResults(cfg.ResDir, results, runErr); err != nil {
			// Reporting failures must not mask the run's verdict.
			logging.Logf(ctx, "Failed to write results: %v", err)
		}
	}
	return results, runErr
}
