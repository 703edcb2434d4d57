// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package source opens the byte stream carrying device output.
//
// Three channels are supported: a locally spawned device process (native
// firmware builds and emulators), a serial port, and a command run over SSH
// on a host that owns the device. All of them surface as an io.ReadCloser;
// closing the source tears down the channel and unblocks pending reads.
package source

import (
	"context"
	"io"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/config"
)

// New opens the device output channel described by cfg.
func New(ctx context.Context, cfg *config.Source) (io.ReadCloser, error) {
	switch cfg.Type {
	case config.SourceExec:
		return StartExec(ctx, cfg.Command)
	case config.SourceSerial:
		return OpenSerial(ctx, cfg.Port, cfg.Baud)
	case config.SourceSSH:
		return DialSSH(ctx, cfg.Target, cfg.KeyFile, cfg.Command)
	default:
		return nil, errors.Errorf("unknown source type %q", cfg.Type)
	}
}
