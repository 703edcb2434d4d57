// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package source

import (
	"context"
	"io"

	"go.bug.st/serial"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/logging"
)

// defaultBaudRate is used when the configuration leaves the rate unset.
// Stock firmware consoles run at 115200.
const defaultBaudRate = 115200

// OpenSerial opens the serial port the device console is attached to.
// Closing the returned source closes the port, which unblocks pending reads.
func OpenSerial(ctx context.Context, port string, baud int) (io.ReadCloser, error) {
	if baud == 0 {
		baud = defaultBaudRate
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", port)
	}
	logging.Debugf(ctx, "Opened %s at %d baud", port, baud)
	return p, nil
}
