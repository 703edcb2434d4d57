// Copyright 2026 The Seritest Authors.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the configuration of one classifier run.
//
// Configuration is normally loaded from a YAML file checked in next to the
// firmware it describes, then overridden by command-line flags.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/seritest/seritest/errors"
	"github.com/seritest/seritest/internal/judge"
)

// DefaultLineTimeout bounds each wait for device output. Ten seconds is the
// stock deadline used by the firmware-side harness.
const DefaultLineTimeout = 10 * time.Second

// Source types accepted in Source.Type.
const (
	SourceExec   = "exec"
	SourceSerial = "serial"
	SourceSSH    = "ssh"
)

// Source selects and configures the channel carrying device output.
type Source struct {
	// Type is one of SourceExec, SourceSerial or SourceSSH.
	Type string

	// Command is the local argv (exec) or remote command (ssh).
	Command []string

	// Port and Baud configure the serial source. Baud zero means 115200.
	Port string
	Baud int

	// Target is the SSH connection spec of the form "[user@]host[:port]".
	Target string
	// KeyFile is the path to the private key used for SSH.
	KeyFile string
}

// Config describes one classifier run.
type Config struct {
	// Banner is the literal line announcing the start of test output.
	Banner string
	// EndMarker is the literal end-of-run line. Empty means
	// judge.DefaultEndMarker.
	EndMarker string

	// LineTimeout bounds each wait for device output. Zero means
	// DefaultLineTimeout; negative disables the deadline.
	LineTimeout time.Duration
	// RunTimeout bounds the whole run. Zero disables it.
	RunTimeout time.Duration

	// ResDir is the directory results and logs are written to.
	ResDir string

	// Source configures the device output channel.
	Source Source
}

// fileConfig is the YAML schema of a config file. Durations are strings in
// time.ParseDuration syntax.
type fileConfig struct {
	Banner      string `yaml:"banner"`
	EndMarker   string `yaml:"end_marker"`
	LineTimeout string `yaml:"line_timeout"`
	RunTimeout  string `yaml:"run_timeout"`
	ResDir      string `yaml:"res_dir"`
	Source      struct {
		Type    string   `yaml:"type"`
		Command []string `yaml:"command"`
		Port    string   `yaml:"port"`
		Baud    int      `yaml:"baud"`
		Target  string   `yaml:"target"`
		KeyFile string   `yaml:"key_file"`
	} `yaml:"source"`
}

// Load reads a run configuration from the YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(b)
}

// Parse parses a run configuration from YAML data.
func Parse(b []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.UnmarshalStrict(b, &fc); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	cfg := &Config{
		Banner:    fc.Banner,
		EndMarker: fc.EndMarker,
		ResDir:    fc.ResDir,
		Source: Source{
			Type:    fc.Source.Type,
			Command: fc.Source.Command,
			Port:    fc.Source.Port,
			Baud:    fc.Source.Baud,
			Target:  fc.Source.Target,
			KeyFile: fc.Source.KeyFile,
		},
	}

	if fc.LineTimeout != "" {
		d, err := time.ParseDuration(fc.LineTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "bad line_timeout")
		}
		cfg.LineTimeout = d
	}
	if fc.RunTimeout != "" {
		d, err := time.ParseDuration(fc.RunTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "bad run_timeout")
		}
		cfg.RunTimeout = d
	}
	return cfg, nil
}

// Validate checks that cfg is complete enough to start a run.
func (c *Config) Validate() error {
	if c.Banner == "" {
		return errors.New("banner must be specified")
	}
	switch c.Source.Type {
	case SourceExec:
		if len(c.Source.Command) == 0 {
			return errors.New("exec source needs a command")
		}
	case SourceSerial:
		if c.Source.Port == "" {
			return errors.New("serial source needs a port")
		}
	case SourceSSH:
		if c.Source.Target == "" {
			return errors.New("ssh source needs a target")
		}
		if len(c.Source.Command) == 0 {
			return errors.New("ssh source needs a remote command")
		}
	case "":
		return errors.New("source type must be specified")
	default:
		return errors.Errorf("unknown source type %q", c.Source.Type)
	}
	return nil
}

// Suite returns the judge.Suite described by the configuration.
func (c *Config) Suite() *judge.Suite {
	return &judge.Suite{Banner: c.Banner, EndMarker: c.EndMarker}
}

// EffectiveLineTimeout resolves LineTimeout's zero/negative conventions.
func (c *Config) EffectiveLineTimeout() time.Duration {
	if c.LineTimeout == 0 {
		return DefaultLineTimeout
	}
	if c.LineTimeout < 0 {
		return 0
	}
	return c.LineTimeout
}
