// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package logging provides the logger used by the seritest executable.
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
)

// Logger is the interface used for logging by the seritest executable.
type Logger interface {
	// Close deinitializes the logger.
	Close() error

	// Log formats args using default formatting and logs them
	// unconditionally.
	Log(args ...interface{})
	// Logf is similar to Log but formats args as per fmt.Sprintf.
	Logf(format string, args ...interface{})

	// Debug formats args using default formatting and logs them only in
	// verbose mode.
	Debug(args ...interface{})
	// Debugf is similar to Debug but formats args as per fmt.Sprintf.
	Debugf(format string, args ...interface{})

	// AddWriter adds a writer to which all messages are additionally
	// logged regardless of verbosity. flag contains logging properties
	// to be passed to log.New. An error is returned if w was already
	// added.
	AddWriter(w io.Writer, flag int) error
	// RemoveWriter stops logging to a writer previously passed to
	// AddWriter. An error is returned if w was not added.
	RemoveWriter(w io.Writer) error
}

// Key type for objects attached to context.Context objects.
type contextKeyType string

// Key used for attaching a Logger to a context.Context.
var loggerKey contextKeyType = "logger"

// NewContext returns a new context derived from ctx that carries lg.
func NewContext(ctx context.Context, lg Logger) context.Context {
	return context.WithValue(ctx, loggerKey, lg)
}

// FromContext returns the Logger stored in ctx, if any.
func FromContext(ctx context.Context) (Logger, bool) {
	lg, ok := ctx.Value(loggerKey).(Logger)
	return lg, ok
}

// Log emits an unconditional log via the Logger attached to ctx. Messages
// are dropped if no Logger is attached, so library code can log without
// caring how it was invoked.
func Log(ctx context.Context, args ...interface{}) {
	if lg, ok := FromContext(ctx); ok {
		lg.Log(args...)
	}
}

// Logf is similar to Log but formats args as per fmt.Sprintf.
func Logf(ctx context.Context, format string, args ...interface{}) {
	if lg, ok := FromContext(ctx); ok {
		lg.Logf(format, args...)
	}
}

// Debug emits a verbose-only log via the Logger attached to ctx.
func Debug(ctx context.Context, args ...interface{}) {
	if lg, ok := FromContext(ctx); ok {
		lg.Debug(args...)
	}
}

// Debugf is similar to Debug but formats args as per fmt.Sprintf.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	if lg, ok := FromContext(ctx); ok {
		lg.Debugf(format, args...)
	}
}

// loggerCommon holds the writer fan-out shared by Logger implementations.
// The zero value is ready for use. Its methods may be called from multiple
// goroutines concurrently.
type loggerCommon struct {
	mu sync.Mutex // protects ws
	ws map[io.Writer]*log.Logger
}

// AddWriter starts writing to w.
func (c *loggerCommon) AddWriter(w io.Writer, flag int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ws[w]; ok {
		return fmt.Errorf("writer %v already added", w)
	}
	if c.ws == nil {
		c.ws = make(map[io.Writer]*log.Logger)
	}
	c.ws[w] = log.New(w, "", flag)
	return nil
}

// RemoveWriter stops writing to w.
func (c *loggerCommon) RemoveWriter(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ws[w]; !ok {
		return fmt.Errorf("writer %v not registered", w)
	}
	delete(c.ws, w)
	return nil
}

// print formats args using default formatting and writes them to all writers.
func (c *loggerCommon) print(args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.ws {
		l.Print(args...)
	}
}

// printf formats args as per fmt.Sprintf and writes them to all writers.
func (c *loggerCommon) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.ws {
		l.Printf(format, args...)
	}
}
