// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/config"
	"github.com/seritest/seritest/internal/ctxutil"
	"github.com/seritest/seritest/internal/judge"
	"github.com/seritest/seritest/internal/logging"
	"github.com/seritest/seritest/internal/run"
)

const (
	fullLogName = "full.txt" // file in the results dir containing full output
)

// runCmd implements subcommands.Command to support classifying one device run.
type runCmd struct {
	configPath  string        // YAML config file; flags override its fields
	banner      string        // start-of-output banner
	endMarker   string        // end-of-run marker
	lineTimeout time.Duration // per-wait deadline; 0 keeps config/default
	timeout     time.Duration // overall timeout; 0 if no timeout
	resDir      string        // results directory; empty disables reporting

	srcType string // device output channel: exec, serial or ssh
	port    string // serial port path
	baud    int    // serial baud rate
	target  string // SSH connection spec
	keyFile string // SSH private key path

	wrapper runWrapper // can be set by tests to stub out calls to run package
}

var _ = subcommands.Command(&runCmd{})

// runWrapper is a thin wrapper around the run package, stubbed in unit tests.
type runWrapper interface {
	run(ctx context.Context, cfg *config.Config) ([]judge.Result, error)
}

type realRunWrapper struct{}

func (realRunWrapper) run(ctx context.Context, cfg *config.Config) ([]judge.Result, error) {
	return run.Run(ctx, cfg)
}

func newRunCmd() *runCmd {
	return &runCmd{wrapper: realRunWrapper{}}
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "classify one device test run" }
func (*runCmd) Usage() string {
	return `Usage: run [flag]... [command arg]...

Description:
    Reads the device's test output line by line and drives it to a verdict.
    The run passes only if every NAME:[OK] line is followed by the end
    marker; a NAME:[FAILED] line or any unrecognized line fails the run with
    that test's name, and a silent device times out.

    The trailing arguments are the device command for the exec and ssh
    sources. The serial source reads from -port instead.

Flag:
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "YAML run config; other flags override it")
	f.StringVar(&c.banner, "banner", "", "literal line marking the start of test output")
	f.StringVar(&c.endMarker, "endmarker", "", `literal end-of-run line (default "`+judge.DefaultEndMarker+`")`)
	f.DurationVar(&c.lineTimeout, "linetimeout", 0, "maximum wait for each expected line (default 10s)")
	f.DurationVar(&c.timeout, "timeout", 0, "maximum time for the whole run (default none)")
	f.StringVar(&c.resDir, "resdir", "", "directory for results.json and the full log")
	f.StringVar(&c.srcType, "source", config.SourceExec, "device output channel (exec, serial or ssh)")
	f.StringVar(&c.port, "port", "", "serial port the device console is attached to")
	f.IntVar(&c.baud, "baud", 0, "serial baud rate (default 115200)")
	f.StringVar(&c.target, "target", "", `SSH connection spec of the form "[user@]host[:port]"`)
	f.StringVar(&c.keyFile, "keyfile", "", "SSH private key path")
}

// buildConfig merges the config file, defaults and flag overrides.
func (c *runCmd) buildConfig(args []string) (*config.Config, error) {
	cfg := &config.Config{}
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return nil, err
		}
	}

	if c.banner != "" {
		cfg.Banner = c.banner
	}
	if c.endMarker != "" {
		cfg.EndMarker = c.endMarker
	}
	if c.lineTimeout != 0 {
		cfg.LineTimeout = c.lineTimeout
	}
	if c.resDir != "" {
		cfg.ResDir = c.resDir
	}
	if cfg.Source.Type == "" || c.srcType != config.SourceExec {
		cfg.Source.Type = c.srcType
	}
	if len(args) > 0 {
		cfg.Source.Command = args
	}
	if c.port != "" {
		cfg.Source.Port = c.port
	}
	if c.baud != 0 {
		cfg.Source.Baud = c.baud
	}
	if c.target != "" {
		cfg.Source.Target = c.target
	}
	if c.keyFile != "" {
		cfg.Source.KeyFile = c.keyFile
	}
	return cfg, cfg.Validate()
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	lg, ok := logging.FromContext(ctx)
	if !ok {
		panic("logger not attached to context")
	}

	cfg, err := c.buildConfig(f.Args())
	if err != nil {
		lg.Log("Bad run config: ", err)
		return subcommands.ExitUsageError
	}

	// Tee everything into the results dir so a failed lab run can be
	// diagnosed afterwards.
	if cfg.ResDir != "" {
		if err := os.MkdirAll(cfg.ResDir, 0755); err != nil {
			lg.Log("Failed to create results dir: ", err)
			return subcommands.ExitFailure
		}
		fullLog, err := os.Create(filepath.Join(cfg.ResDir, fullLogName))
		if err != nil {
			lg.Log("Failed to open log file: ", err)
			return subcommands.ExitFailure
		}
		defer fullLog.Close()
		if err := lg.AddWriter(fullLog, log.LstdFlags); err != nil {
			lg.Log("Failed to add log writer: ", err)
			return subcommands.ExitFailure
		}
		defer lg.RemoveWriter(fullLog)
	}

	ctx, cancel := ctxutil.OptionalTimeout(ctx, c.timeout)
	defer cancel()

	results, runErr := c.wrapper.run(ctx, cfg)
	lg.Logf("Classified %d test line(s)", len(results))

	var tf *judge.TestFailedError
	switch {
	case runErr == nil:
		lg.Log("Run passed")
		return subcommands.ExitSuccess
	case errors.As(runErr, &tf):
		lg.Logf("Run failed: test %q failed", tf.Name)
	default:
		lg.Log("Run failed: ", runErr)
	}
	return subcommands.ExitFailure
}
