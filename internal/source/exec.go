// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package source

import (
	"context"
	"io"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/logging"
)

// killGracePeriod is how long Close waits after SIGTERM before sending
// SIGKILL to the device process session.
const killGracePeriod = 3 * time.Second

// execSource runs the device binary locally and exposes its output.
// The process is started in its own session so that everything it spawns
// (emulators fork helpers) can be killed together on teardown.
type execSource struct {
	cmd *exec.Cmd
	out io.ReadCloser
	sid int
}

// StartExec starts the device command and returns its combined output
// stream. Stderr is merged into stdout, matching how both would interleave
// on a real serial console.
func StartExec(ctx context.Context, args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return nil, errors.New("no device command specified")
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open stdout pipe")
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %q", args[0])
	}
	logging.Debugf(ctx, "Started device process %d: %s", cmd.Process.Pid, args[0])
	return &execSource{cmd: cmd, out: out, sid: cmd.Process.Pid}, nil
}

func (s *execSource) Read(p []byte) (int, error) {
	return s.out.Read(p)
}

// Close terminates the device process session and reaps the process.
// Pending reads fail once the process exits and the pipe drains.
func (s *execSource) Close() error {
	killSession(s.sid, unix.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(killGracePeriod):
		killSession(s.sid, unix.SIGKILL)
		<-done
	}
	return s.out.Close()
}
