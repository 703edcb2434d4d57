// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package stack captures and formats stack traces. It backs the errors
// package; use that package instead of this one.
package stack

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	maxDepth = 8 // maximum number of frames to record

	ellipsis = "\t..." // trailing marker added when a trace is truncated
)

// Stack holds a snapshot of program counters.
type Stack []uintptr

// New captures a stack trace. skip is the number of frames to drop from the
// top; skip=0 records the New call itself as the innermost frame.
func New(skip int) Stack {
	pc := make([]uintptr, maxDepth+1)
	pc = pc[:runtime.Callers(skip+2, pc)]
	return Stack(pc)
}

// String formats the trace as human-friendly text.
func (s Stack) String() string {
	var lines []string

	// runtime.CallersFrames is required to expand inlined frames correctly.
	// https://github.com/golang/go/issues/19426
	cf := runtime.CallersFrames(s)
	for {
		f, more := cf.Next()
		lines = append(lines, fmt.Sprintf("\tat %s (%s:%d)", f.Function, filepath.Base(f.File), f.Line))
		if !more {
			break
		} else if len(lines) >= maxDepth {
			lines = append(lines, ellipsis)
			break
		}
	}
	return strings.Join(lines, "\n")
}
