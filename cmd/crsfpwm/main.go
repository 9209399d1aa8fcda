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

// Command crsfpwm receives CRSF RC channel frames over UDP or a serial port
// and drives two hardware PWM outputs from them
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	crsfpwm "github.com/waybeam/go-crsfpwm"
	"github.com/waybeam/go-crsfpwm/indicator/gpio"
	"github.com/waybeam/go-crsfpwm/mux"
	"github.com/waybeam/go-crsfpwm/pwm"
	"github.com/waybeam/go-crsfpwm/status/mqtt"
	"github.com/waybeam/go-crsfpwm/transport/uart"
	"github.com/waybeam/go-crsfpwm/transport/udp"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errListSerial) {
		return listSerial(cfg.SerialIgnore, stderr)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "crsfpwm: %v\n", err)
		return 1
	}

	logger := crsfpwm.NewLogger(stderr, cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("exiting", "err", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *crsfpwm.Config, logger *log.Logger) error {
	source, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	strategy, err := cfg.ResolveMux()
	if err != nil {
		return err
	}
	gateway, err := crsfpwm.NewGateway(cfg, strategy, registerWriter(cfg), pwm.NewChip(cfg.PWMChip),
		crsfpwm.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := gateway.Init(); err != nil {
		return fmt.Errorf("pwm init: %w", err)
	}

	opts := []crsfpwm.Option{crsfpwm.WithLogger(logger)}
	for _, obs := range observers(cfg, logger) {
		defer func() { _ = obs.Close() }()
		opts = append(opts, crsfpwm.WithObserver(obs))
	}

	bridge, err := crsfpwm.NewBridge(source, gateway, cfg, opts...)
	if err != nil {
		return err
	}

	err = bridge.Run(ctx)
	st := bridge.Stats()
	logger.Info("stats",
		"datagrams", st.Datagrams, "rc_frames", st.RCFrames, "bad_crc", st.FramesBadCRC,
		"overruns", st.Overruns, "centerings", st.Centerings, "writes", st.OutputWrites)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openSource(cfg *crsfpwm.Config) (crsfpwm.Source, error) {
	if cfg.Serial != "" {
		src, err := uart.New(cfg.Serial, cfg.Baud)
		if err != nil {
			return nil, fmt.Errorf("serial: %w", err)
		}
		return src, nil
	}
	src, err := udp.Listen(cfg.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	return src, nil
}

func listSerial(ignore []string, w io.Writer) int {
	ports, err := uart.ListPorts(ignore)
	if err != nil {
		_, _ = fmt.Fprintf(w, "crsfpwm: %v\n", err)
		return 1
	}
	if len(ports) == 0 {
		_, _ = fmt.Fprintln(w, "no serial ports found")
	}
	for _, p := range ports {
		_, _ = fmt.Fprintln(w, p)
	}
	return 0
}

func registerWriter(cfg *crsfpwm.Config) crsfpwm.RegisterWriter {
	if cfg.Mux.Disabled {
		return nil
	}
	if cfg.Mux.Method == crsfpwm.MuxMethodMem {
		return &mux.PhysMem{}
	}
	return &mux.Devmem{Binary: cfg.Mux.Devmem}
}

type closingObserver interface {
	crsfpwm.LinkObserver
	io.Closer
}

// observers sets up the optional link outputs. They are auxiliary, so a
// failure is logged and the bridge runs without them.
func observers(cfg *crsfpwm.Config, logger *log.Logger) []closingObserver {
	var out []closingObserver

	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.Connect(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.ClientID, logger)
		if err != nil {
			logger.Warn("MQTT status disabled", "err", err)
		} else {
			out = append(out, pub)
		}
	}

	if cfg.LinkLED != "" {
		ref, err := crsfpwm.ParseLinkLED(cfg.LinkLED)
		if err == nil {
			var led *gpio.LED
			if ref.Sysfs() {
				led, err = gpio.OpenSysfsLED(ref.Name, logger)
			} else {
				led, err = gpio.Open(ref.Chip, ref.Line, logger)
			}
			if err == nil {
				out = append(out, led)
			}
		}
		if err != nil {
			logger.Warn("link LED disabled", "err", err)
		}
	}
	return out
}
