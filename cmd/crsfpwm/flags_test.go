// go-crsfpwm
// Copyright (c) 2026 The Waybeam Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-crsfpwm.
//
// go-crsfpwm is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-crsfpwm is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-crsfpwm; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crsfpwm "github.com/waybeam/go-crsfpwm"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, crsfpwm.DefaultConfig(), cfg)

	st, err := cfg.ResolveMux()
	require.NoError(t, err)
	assert.Equal(t, crsfpwm.MuxCombined, st.Mode)
}

func TestParseConfigFlags(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]string{
		"-p", "5600", "--pwm0-ch", "3", "--pwm1-ch=0", "--hz", "0x32",
		"--center-us", "1520", "--mux-pwm0", "0x1103", "-vv",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 5600, cfg.Port)
	assert.Equal(t, 3, cfg.PWM0Channel)
	assert.Equal(t, 0, cfg.PWM1Channel)
	assert.Equal(t, 50, cfg.FrequencyHz, "numbers accept a base prefix")
	assert.Equal(t, 1520, cfg.CenterUS)
	assert.Equal(t, 2, cfg.Verbose)
	require.NotNil(t, cfg.Mux.PWM0)
	assert.Equal(t, uint16(0x1103), *cfg.Mux.PWM0)
	assert.Nil(t, cfg.Mux.InitValue)

	st, err := cfg.ResolveMux()
	require.NoError(t, err)
	assert.Equal(t, crsfpwm.MuxPerChannel, st.Mode)
}

func TestParseConfigInvalidNamesOption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		option string
		args   []string
	}{
		{name: "not a number", option: "port", args: []string{"--port", "nine"}},
		{name: "port range", option: "port", args: []string{"--port", "70000"}},
		{name: "channel range", option: "pwm1-ch", args: []string{"--pwm1-ch", "17"}},
		{name: "hold after timeout", option: "center-timeout-ms", args: []string{"--hold-ms", "600"}},
		{name: "timeout overflows duration", option: "center-timeout-ms", args: []string{"--hold-ms", "0", "--center-timeout-ms", "9300000000000"}},
		{name: "frequency too high", option: "hz", args: []string{"--hz", "18446744073711"}},
		{name: "missing argument", option: "port", args: []string{"--port"}},
		{name: "flag taken as argument", option: "hold-ms", args: []string{"--hold-ms", "--hz", "5"}},
		{name: "mux value too wide", option: "mux-pwm0", args: []string{"--mux-pwm0", "0x10000"}},
		{name: "ambiguous mux", option: "mux-init-val", args: []string{"--mux-init-val", "0x1122", "--mux-pwm1", "0x1121"}},
		{name: "too verbose", option: "verbose", args: []string{"-vvvv"}},
		{name: "unknown flag", option: "bogus", args: []string{"--bogus"}},
	}

	for _, tt := range tests {
		tt := tt // capture loop variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseConfig(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.option)
		})
	}
}

func TestParseConfigNoMuxWins(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]string{"--no-mux", "--mux-init-val", "0x1122", "--mux-pwm0", "1"}, &bytes.Buffer{})
	require.NoError(t, err)
	st, err := cfg.ResolveMux()
	require.NoError(t, err)
	assert.Equal(t, crsfpwm.MuxDisabled, st.Mode)
}

func TestParseConfigFileThenFlags(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "crsfpwm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nhz: 333\nverbose: 1\n"), 0o600))

	cfg, err := parseConfig([]string{"--config", path, "--hz", "400"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port, "file value kept")
	assert.Equal(t, 400, cfg.FrequencyHz, "flag overrides file")
	assert.Equal(t, 1, cfg.Verbose)
}

func TestParseConfigHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := parseConfig([]string{"--help"}, &out)
	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, out.String(), "--center-timeout-ms")
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{"--min-us", "100"}, &out))
	assert.Contains(t, out.String(), "--min-us")
	assert.Equal(t, 0, run([]string{"-h"}, &bytes.Buffer{}))
}

func TestParseConfigListSerial(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]string{"--list-serial", "--serial-ignore", "/dev/ttyS0,/dev/ttyAMA0"}, &bytes.Buffer{})
	require.ErrorIs(t, err, errListSerial)
	assert.Equal(t, []string{"/dev/ttyS0", "/dev/ttyAMA0"}, cfg.SerialIgnore)
}
