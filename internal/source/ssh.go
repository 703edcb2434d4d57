// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package source

import (
	"context"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/logging"
	"github.com/seritest/seritest/internal/shutil"
)

// sshDialTimeout bounds establishing the SSH connection. Timeouts while
// waiting for device output are handled by the expect reader, not here.
const sshDialTimeout = 10 * time.Second

// sshSource runs the console-reader command on a remote host that owns the
// device and exposes the command's stdout.
type sshSource struct {
	client *ssh.Client
	sess   *ssh.Session
	out    io.Reader
}

// DialSSH connects to target ("[user@]host[:port]"), starts command there
// and returns its output stream. The user defaults to root and the port to
// 22, matching lab hosts that front a board farm.
func DialSSH(ctx context.Context, target, keyFile string, command []string) (io.ReadCloser, error) {
	user, hostPort := parseTarget(target)

	key, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read SSH key")
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse SSH key")
	}

	cfg := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		// Lab hosts are reimaged often; their host keys are not stable
		// enough to pin.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshDialTimeout,
	}
	client, err := ssh.Dial("tcp", hostPort, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", hostPort)
	}

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to open SSH session")
	}
	out, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		client.Close()
		return nil, errors.Wrap(err, "failed to open stdout pipe")
	}

	cmdline := shutil.EscapeSlice(command)
	if err := sess.Start(cmdline); err != nil {
		sess.Close()
		client.Close()
		return nil, errors.Wrapf(err, "failed to start %q", cmdline)
	}
	logging.Debugf(ctx, "Started %q on %s", cmdline, hostPort)
	return &sshSource{client: client, sess: sess, out: out}, nil
}

// parseTarget splits an SSH connection spec of the form "[user@]host[:port]".
func parseTarget(target string) (user, hostPort string) {
	user = "root"
	hostPort = target
	if i := strings.Index(target, "@"); i >= 0 {
		user = target[:i]
		hostPort = target[i+1:]
	}
	if _, _, err := net.SplitHostPort(hostPort); err != nil {
		hostPort = net.JoinHostPort(hostPort, "22")
	}
	return user, hostPort
}

func (s *sshSource) Read(p []byte) (int, error) {
	return s.out.Read(p)
}

// Close tears down the session and connection. The remote command receives
// SIGHUP when its session goes away.
func (s *sshSource) Close() error {
	err := s.sess.Close()
	if cerr := s.client.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
