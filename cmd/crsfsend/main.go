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

// Command crsfsend streams CRSF RC channel frames over UDP for bench tests
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	crsfpwm "github.com/waybeam/go-crsfpwm"
	"github.com/waybeam/go-crsfpwm/internal/frame"
)

// maxRate keeps the send interval at a millisecond or more
const maxRate = 1000

type config struct {
	channels map[string]int
	target   string
	rate     int
	count    int
	garbage  int
	split    bool
	sweep    bool
	verbose  int
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	fs := pflag.NewFlagSet("crsfsend", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&cfg.target, "target", "t", "127.0.0.1:9000", "bridge address")
	fs.IntVarP(&cfg.rate, "rate", "r", 50, "frames per second")
	fs.IntVarP(&cfg.count, "count", "n", 0, "frames to send, 0 sends until interrupted")
	fs.StringToIntVar(&cfg.channels, "ch", nil, "channel pulse widths, e.g. 1=1700,2=1300")
	fs.BoolVar(&cfg.sweep, "sweep", false, "sweep channel 1 from 1000 to 2000us")
	fs.IntVar(&cfg.garbage, "garbage", 0, "random bytes to prepend to every frame")
	fs.BoolVar(&cfg.split, "split", false, "send each frame as two datagrams")
	fs.CountVarP(&cfg.verbose, "verbose", "v", "log every frame")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.rate <= 0 || cfg.rate > maxRate {
		return nil, crsfpwm.NewConfigError("rate", cfg.rate, fmt.Sprintf("expected 1..%d", maxRate))
	}
	if cfg.garbage < 0 || cfg.garbage > frame.MaxDatagramBytes {
		return nil, crsfpwm.NewConfigError("garbage", cfg.garbage,
			fmt.Sprintf("expected 0..%d", frame.MaxDatagramBytes))
	}
	if _, err := cfg.baseChannels(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// baseChannels returns all channels centered with the --ch overrides applied
func (c *config) baseChannels() (frame.Channels, error) {
	var channels frame.Channels
	for i := range channels {
		channels[i] = frame.CenterMicros
	}
	for key, us := range c.channels {
		ch, err := strconv.Atoi(key)
		if err != nil || ch < 1 || ch > frame.NumChannels {
			return channels, crsfpwm.NewConfigError("ch", key, "expected a channel 1..16")
		}
		channels[ch-1] = us
	}
	return channels, nil
}

// sweepValue moves linearly 1000..2000us and back over 100 frames
func sweepValue(seq int) int {
	step := seq % 100
	if step >= 50 {
		step = 100 - step
	}
	return 1000 + step*20
}

// datagrams builds the payloads for frame number seq
func (c *config) datagrams(channels frame.Channels, seq int, rng *rand.Rand) [][]byte {
	if c.sweep {
		channels[0] = sweepValue(seq)
	}
	frm := frame.EncodeChannels(channels)

	data := make([]byte, 0, c.garbage+len(frm))
	for i := 0; i < c.garbage; i++ {
		data = append(data, byte(rng.IntN(256)))
	}
	data = append(data, frm...)

	if !c.split {
		return [][]byte{data}
	}
	half := len(data) / 2
	return [][]byte{data[:half], data[half:]}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "crsfsend: %v\n", err)
		return 1
	}
	logger := crsfpwm.NewLogger(stderr, cfg.verbose+1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sent, err := send(ctx, cfg, logger)
	logger.Info("done", "frames", sent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("send failed", "err", err)
		return 1
	}
	return 0
}

func send(ctx context.Context, cfg *config, logger *log.Logger) (int, error) {
	conn, err := net.Dial("udp", cfg.target)
	if err != nil {
		return 0, fmt.Errorf("dial %s: %w", cfg.target, err)
	}
	defer func() { _ = conn.Close() }()

	channels, err := cfg.baseChannels()
	if err != nil {
		return 0, err
	}
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	ticker := time.NewTicker(time.Second / time.Duration(cfg.rate))
	defer ticker.Stop()

	logger.Info("sending", "target", cfg.target, "rate", cfg.rate, "sweep", cfg.sweep, "split", cfg.split)
	for seq := 0; cfg.count == 0 || seq < cfg.count; seq++ {
		for _, d := range cfg.datagrams(channels, seq, rng) {
			if _, err := conn.Write(d); err != nil {
				return seq, fmt.Errorf("write: %w", err)
			}
		}
		if cfg.verbose > 0 {
			logger.Debug("frame", "seq", seq, "ch01", channels[0], "sweep", cfg.sweep)
		}

		select {
		case <-ctx.Done():
			return seq + 1, ctx.Err()
		case <-ticker.C:
		}
	}
	return cfg.count, nil
}
