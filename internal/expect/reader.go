// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package expect

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/logging"
	"github.com/seritest/seritest/internal/xcontext"
)

// maxLineLen is the longest device line the reader accepts. Serial consoles
// occasionally emit binary garbage after a crash; anything longer than this
// fails the scan instead of exhausting memory.
const maxLineLen = 1 << 20

// Reader is a Matcher reading newline-delimited output from a byte stream.
//
// A background goroutine pumps complete lines from the source into a
// channel; the Expect methods consume from that channel under a deadline.
// Lines are terminated by '\n'; a preceding '\r' is stripped, so CRLF serial
// output and LF pipe output look the same to pattern authors.
type Reader struct {
	src     io.ReadCloser
	timeout time.Duration
	lines   chan string
	stop    chan struct{}
	eg      errgroup.Group
}

var _ Matcher = &Reader{}

// NewReader returns a Reader pumping lines from src. timeout bounds each
// Expect call; zero means no deadline beyond ctx's own. The Reader owns src
// and closes it in Close.
func NewReader(src io.ReadCloser, timeout time.Duration) *Reader {
	r := &Reader{
		src:     src,
		timeout: timeout,
		lines:   make(chan string),
		stop:    make(chan struct{}),
	}
	r.eg.Go(func() error { return r.pump(src) })
	return r
}

// pump reads lines from src until EOF, a read error, or Close.
func (r *Reader) pump(src io.Reader) error {
	defer close(r.lines)
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 4096), maxLineLen)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		select {
		case r.lines <- line:
		case <-r.stop:
			return nil
		}
	}
	return sc.Err()
}

// Close closes the underlying source and waits for the pump goroutine to
// finish. Any in-flight Expect call fails once the stream is torn down.
func (r *Reader) Close() error {
	close(r.stop)
	err := r.src.Close()
	if werr := r.eg.Wait(); werr != nil && err == nil {
		err = werr
	}
	return err
}

// withDeadline applies the reader's per-expect deadline to ctx. The deadline
// surfaces as a *TimeoutError describing what was awaited.
func (r *Reader) withDeadline(ctx context.Context, what string) (context.Context, xcontext.CancelFunc) {
	if r.timeout <= 0 {
		ctx, cancel := xcontext.WithCancel(ctx)
		return ctx, cancel
	}
	return xcontext.WithTimeout(ctx, r.timeout, &TimeoutError{What: what})
}

// recv returns the next complete line from the stream.
func (r *Reader) recv(ctx context.Context, what string) (string, error) {
	select {
	case line, ok := <-r.lines:
		if !ok {
			return "", errors.Errorf("device output ended while waiting for %s", what)
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ExpectExact implements Matcher. The deadline covers the whole call, not
// each consumed line, so a device spewing unrelated output still times out.
func (r *Reader) ExpectExact(ctx context.Context, text string) error {
	what := fmt.Sprintf("%q", text)
	ctx, cancel := r.withDeadline(ctx, what)
	defer cancel(context.Canceled)
	for {
		line, err := r.recv(ctx, what)
		if err != nil {
			return err
		}
		if strings.Contains(line, text) {
			return nil
		}
		logging.Debugf(ctx, "Ignoring %q while waiting for %s", line, what)
	}
}

// ExpectPattern implements Matcher.
func (r *Reader) ExpectPattern(ctx context.Context, pats []*regexp.Regexp) (int, string, error) {
	const what = "test output"
	ctx, cancel := r.withDeadline(ctx, what)
	defer cancel(context.Canceled)
	for {
		line, err := r.recv(ctx, what)
		if err != nil {
			return -1, "", err
		}
		for i, p := range pats {
			if p.MatchString(line) {
				return i, line, nil
			}
		}
	}
}
