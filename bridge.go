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

package crsfpwm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/waybeam/go-crsfpwm/internal/frame"
)

// Bridge turns CRSF channel frames from a Source into PWM pulse widths.
// All state is owned by the goroutine running Run.
type Bridge struct {
	source    Source
	gateway   *Gateway
	config    *Config
	logger    *log.Logger
	now       func() time.Time
	buffer    *frame.Buffer
	observers []LinkObserver
	rx        []byte
	link      LinkState
	stats     Stats
	tick      time.Duration
}

// NewBridge creates a bridge around an initialized gateway
func NewBridge(source Source, gateway *Gateway, config *Config, opts ...Option) (*Bridge, error) {
	if source == nil {
		return nil, errors.New("source cannot be nil")
	}
	if gateway == nil {
		return nil, errors.New("gateway cannot be nil")
	}
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Bridge{
		source:    source,
		gateway:   gateway,
		config:    config,
		logger:    s.logger,
		now:       s.now,
		tick:      s.tick,
		observers: s.observers,
		buffer:    frame.NewBuffer(s.bufferCapacity),
		rx:        make([]byte, frame.MaxDatagramBytes),
		link:      NewLinkState(config.HoldWindow(), config.CenterTimeout()),
	}, nil
}

// Run drives the receive loop until ctx is done or the source fails.
// Outputs are centered on the way out in both cases. It returns ctx.Err()
// on cancellation and the source error on a hard failure.
func (b *Bridge) Run(ctx context.Context) error {
	b.logStartup()
	b.gateway.CenterAll()
	defer func() {
		b.logger.Info("Stopping, centering outputs")
		b.gateway.CenterAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := b.step(); err != nil {
			return err
		}
	}
}

// step waits at most one tick for input, then runs the failsafe check
func (b *Bridge) step() error {
	n, from, err := b.source.Receive(b.rx, b.tick)
	now := b.now()

	switch {
	case err == nil:
		b.handleData(b.rx[:n], from, now)
	case IsRetryable(err):
		if !errors.Is(err, ErrNoData) {
			b.stats.ReceiveErrors++
			b.logger.Debug("receive interrupted", "source", b.source.Type(), "err", err)
		}
	default:
		b.stats.ReceiveErrors++
		b.handleSourceFailure(err, now)
		return fmt.Errorf("receive from %s: %w", b.source.Type(), err)
	}

	b.checkFailsafe(now)
	return nil
}

func (b *Bridge) handleData(data []byte, from string, now time.Time) {
	if len(data) == 0 {
		b.stats.EmptyDatagrams++
		b.logger.Debug("received 0 bytes", "from", from)
		return
	}
	b.stats.Datagrams++
	b.stats.Bytes += uint64(len(data))

	if dropped := b.buffer.Feed(data); dropped > 0 {
		b.stats.Overruns++
		b.stats.OverrunBytes += uint64(dropped)
		b.logger.Warn("reassembly buffer overrun, dropped oldest bytes", "dropped", dropped)
	}

	consumed, res := frame.Scan(b.buffer.Bytes())
	b.buffer.Consume(consumed)
	b.stats.addScan(res)
	b.logReceive(len(data), from, res)

	if res.RCIgnored > 0 {
		b.logger.Debug("RC frame ignored, bad payload length", "count", res.RCIgnored)
	}
	if !res.HasChannels {
		return
	}

	t := b.link.Accept(now)
	if t.Recovered() {
		b.stats.Recoveries++
		b.logger.Info("Link recovered: valid RC frame received")
	}
	if t.Changed() {
		b.notify(t, now)
	}

	assignments := MapChannels(b.config, res.Channels)
	for _, a := range assignments {
		b.logger.Debug("Map", "ch", a.Channel, "us", a.RawUS, "pwm", a.Output, "out_us", a.US)
	}
	b.gateway.Apply(assignments)

	if b.config.Verbose >= TraceVerbosity {
		b.logger.Debug("RC",
			"ch01", res.Channels[0], "ch02", res.Channels[1],
			"ch03", res.Channels[2], "ch04", res.Channels[3])
	}
}

func (b *Bridge) checkFailsafe(now time.Time) {
	t := b.link.Check(now)
	if !t.Changed() {
		return
	}

	switch t.To {
	case LinkHeld:
		b.logger.Debug("holding last command", "age", b.link.Age(now))
	case LinkCentered:
		b.logger.Warn(fmt.Sprintf("FAILSAFE: no valid CRSF for %dms -> center outputs",
			b.link.Age(now).Milliseconds()))
		b.center()
	}
	b.notify(t, now)
}

// handleSourceFailure centers outputs and drops partial frames so nothing
// stale is acted on if the loop is restarted
func (b *Bridge) handleSourceFailure(err error, now time.Time) {
	b.logger.Error("source error, centering outputs", "source", b.source.Type(), "err", err)
	t := b.link.ForceCentered()
	if t.NeedsCentering() {
		b.center()
	}
	b.buffer.Reset()
	if t.Changed() {
		b.notify(t, now)
	}
}

func (b *Bridge) center() {
	b.stats.Centerings++
	b.logger.Info(fmt.Sprintf("Centering PWM outputs to %dus", b.config.CenterUS))
	b.gateway.CenterAll()
}

func (b *Bridge) notify(t Transition, now time.Time) {
	if len(b.observers) == 0 {
		return
	}
	ev := LinkEvent{
		At:    now,
		From:  t.From,
		To:    t.To,
		Age:   b.link.Age(now),
		Stats: b.Stats(),
	}
	for _, o := range b.observers {
		o.LinkStateChanged(ev)
	}
}

func (b *Bridge) logReceive(n int, from string, res frame.Result) {
	if b.config.Verbose >= 2 {
		b.logger.Debug("rx", "bytes", n, "from", from,
			"frames", res.FramesSeen, "crc_ok", res.FramesCRCOK, "rc", res.RCFrames,
			"bad_addr", res.FramesBadAddr, "bad_crc", res.FramesBadCRC)
		return
	}
	update := "no RC"
	if res.HasChannels {
		update = "RC update"
	}
	b.logger.Info("rx", "bytes", n, "from", from, "update", update)
}

func (b *Bridge) logStartup() {
	b.logger.Info("Listening",
		"source", b.source.Type(), "addr", b.source.Addr(),
		"pwm0_ch", b.config.PWM0Channel, "pwm1_ch", b.config.PWM1Channel,
		"hz", b.config.FrequencyHz,
		"clamp", fmt.Sprintf("%d..%dus", b.config.MinUS, b.config.MaxUS),
		"center_us", b.config.CenterUS,
		"hold", b.config.HoldWindow(), "center_after", b.config.CenterTimeout())

	st := b.gateway.Strategy()
	switch st.Mode {
	case MuxDisabled:
		b.logger.Info("MUX mode: disabled")
	case MuxCombined:
		b.logger.Info("MUX mode: one-shot",
			"reg", fmt.Sprintf("%#x", st.Register), "val", fmt.Sprintf("%#04x", st.Combined))
	case MuxPerChannel:
		b.logger.Info("MUX mode: per-channel",
			"reg", fmt.Sprintf("%#x", st.Register),
			"pwm0", fmt.Sprintf("%#04x", st.PerChannel[0]),
			"pwm1", fmt.Sprintf("%#04x", st.PerChannel[1]))
	}
}

// Stats returns a snapshot of the counters
func (b *Bridge) Stats() Stats {
	s := b.stats
	c := b.gateway.Counters()
	s.OutputWrites = c.Writes
	s.OutputFailures = c.Failures
	return s
}

// Link returns a snapshot of the link state
func (b *Bridge) Link() LinkState {
	return b.link
}
