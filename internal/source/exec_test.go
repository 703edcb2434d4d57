// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package source

import (
	"bufio"
	"context"
	"testing"
	"time"
)

func TestStartExec(t *testing.T) {
	src, err := StartExec(context.Background(), []string{"sh", "-c", "echo out; echo err 1>&2"})
	if err != nil {
		t.Fatalf("StartExec failed: %v", err)
	}
	defer src.Close()

	sc := bufio.NewScanner(src)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 2 {
		t.Errorf("Read %d line(s) %q; want 2", len(lines), lines)
	}
	// Stderr is merged into the stream; ordering between the two writes
	// is not guaranteed.
	seen := map[string]bool{}
	for _, l := range lines {
		seen[l] = true
	}
	for _, want := range []string{"out", "err"} {
		if !seen[want] {
			t.Errorf("Line %q missing from output %q", want, lines)
		}
	}
}

func TestStartExecNoCommand(t *testing.T) {
	if _, err := StartExec(context.Background(), nil); err == nil {
		t.Error("StartExec unexpectedly succeeded with empty command")
	}
}

func TestExecCloseKillsProcess(t *testing.T) {
	// The child sleeps far longer than the test; Close must not wait
	// for it to exit on its own.
	src, err := StartExec(context.Background(), []string{"sleep", "60"})
	if err != nil {
		t.Fatalf("StartExec failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- src.Close() }()
	select {
	case <-done:
	case <-time.After(2 * killGracePeriod):
		t.Fatal("Close did not terminate the device process in time")
	}
}

func TestParseTarget(t *testing.T) {
	for _, tc := range []struct {
		target, user, hostPort string
	}{
		{"dut1", "root", "dut1:22"},
		{"dut1:2222", "root", "dut1:2222"},
		{"tester@dut1", "tester", "dut1:22"},
		{"tester@dut1:2222", "tester", "dut1:2222"},
	} {
		user, hostPort := parseTarget(tc.target)
		if user != tc.user || hostPort != tc.hostPort {
			t.Errorf("parseTarget(%q) = (%q, %q); want (%q, %q)", tc.target, user, hostPort, tc.user, tc.hostPort)
		}
	}
}
