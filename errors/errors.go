// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package errors constructs errors that carry stack traces.
//
// Use this package instead of the standard errors package or fmt.Errorf.
// Errors created here record where they were constructed and chain to their
// causes, so a failed run leaves a readable trail when formatted with "%+v".
//
// Construct new errors with New or Errorf:
//
//	errors.New("port not open")
//	errors.Errorf("unknown source type %q", typ)
//
// Add context to an existing error with Wrap or Wrapf:
//
//	errors.Wrap(err, "failed to open serial port")
//	errors.Wrapf(err, "failed to start %q", cmd)
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/seritest/seritest/errors/stack"
)

// impl is the error implementation used by this package.
type impl struct {
	msg   string      // message prepended to the cause
	stk   stack.Stack // where this error was created
	cause error       // wrapped error, or nil
}

// Error implements the error interface.
func (e *impl) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
}

// Unwrap returns the wrapped error, making the chain visible to errors.Is
// and errors.As.
func (e *impl) Unwrap() error {
	return e.cause
}

// formatChain renders every error in the chain with its stack trace.
func formatChain(err error) string {
	var chain []string
	for err != nil {
		if e, ok := err.(*impl); ok {
			chain = append(chain, fmt.Sprintf("%s\n%v", e.msg, e.stk))
			err = e.cause
		} else {
			chain = append(chain, fmt.Sprintf("%s\n\tat ???", err.Error()))
			err = nil
		}
	}
	return strings.Join(chain, "\n")
}

// Format implements fmt.Formatter. The "%+v" verb prints the full chain with
// stack traces.
func (e *impl) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		io.WriteString(s, formatChain(e))
	} else {
		io.WriteString(s, e.Error())
	}
}

// New creates a new error with the given message, recording the location of
// the call.
func New(msg string) error {
	return &impl{msg, stack.New(1), nil}
}

// Errorf creates a new error with a formatted message, recording the location
// of the call.
func Errorf(format string, args ...interface{}) error {
	return &impl{fmt.Sprintf(format, args...), stack.New(1), nil}
}

// Wrap creates a new error wrapping cause, recording the location of the
// call. If cause is nil, this is equivalent to New.
func Wrap(cause error, msg string) error {
	return &impl{msg, stack.New(1), cause}
}

// Wrapf creates a new error with a formatted message wrapping cause,
// recording the location of the call. If cause is nil, this is equivalent to
// Errorf.
func Wrapf(cause error, format string, args ...interface{}) error {
	return &impl{fmt.Sprintf(format, args...), stack.New(1), cause}
}

// As finds the first error in err's chain that matches target. It is a thin
// forwarder to the standard library so that callers need only this package.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
