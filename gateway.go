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
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/physic"
)

// PWMChannel is one hardware PWM output
type PWMChannel interface {
	// Init configures the output: disable, period, duty at center, enable
	Init(freq physic.Frequency, centerUS int) error
	// SetDuty sets the pulse width in microseconds
	SetDuty(us int) error
	String() string
}

// ChannelOpener opens PWM outputs by index
type ChannelOpener interface {
	Open(index int) (PWMChannel, error)
}

// ChannelOpenerFunc adapts a function to ChannelOpener
type ChannelOpenerFunc func(index int) (PWMChannel, error)

// Open implements ChannelOpener
func (f ChannelOpenerFunc) Open(index int) (PWMChannel, error) {
	return f(index)
}

// Output is the state of one PWM output
type Output struct {
	pwm       PWMChannel
	Index     int
	Channel   int
	LastUS    int
	Available bool
}

// GatewayCounters counts output writes
type GatewayCounters struct {
	Writes   uint64
	Failures uint64
}

// Gateway owns the PWM outputs and the pin mux. It applies the mux strategy
// once at startup and deduplicates duty writes afterwards.
type Gateway struct {
	config    *Config
	registers RegisterWriter
	opener    ChannelOpener
	logger    *log.Logger
	outputs   [NumOutputs]Output
	strategy  MuxStrategy
	counters  GatewayCounters
}

// NewGateway creates a gateway. registers may be nil when the strategy is
// MuxDisabled.
func NewGateway(config *Config, strategy MuxStrategy, registers RegisterWriter,
	opener ChannelOpener, opts ...Option,
) (*Gateway, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if opener == nil {
		return nil, errors.New("channel opener cannot be nil")
	}
	if registers == nil && strategy.Mode != MuxDisabled {
		return nil, fmt.Errorf("mux strategy %s needs a register writer", strategy.Mode)
	}
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		config:    config,
		strategy:  strategy,
		registers: registers,
		opener:    opener,
		logger:    s.logger,
	}
	for i := range g.outputs {
		g.outputs[i] = Output{Index: i, Channel: config.Channel(i)}
	}
	return g, nil
}

// Init routes the pins and initializes every enabled output. Mux write
// failures are logged and tolerated; output failures are fatal.
func (g *Gateway) Init() error {
	if g.config.Channel(0) == 0 && g.config.Channel(1) == 0 {
		g.logger.Warn("no PWM outputs enabled, frames will only be counted")
	}

	if g.strategy.Mode == MuxCombined {
		g.writeMux(g.strategy.Combined, "one-shot")
	}

	for i := range g.outputs {
		if g.outputs[i].Channel == 0 {
			g.logger.Info("PWM output disabled", "pwm", i)
			continue
		}
		if err := g.initOutput(i); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) initOutput(index int) error {
	out := &g.outputs[index]

	switch g.strategy.Mode {
	case MuxPerChannel:
		g.writeMux(g.strategy.PerChannel[index], fmt.Sprintf("pwm%d", index))
	case MuxCombined:
		g.logger.Debug("MUX already applied", "pwm", index)
	case MuxDisabled:
		g.logger.Info("MUX disabled, leaving pin routing alone", "pwm", index)
	}

	pwm, err := g.opener.Open(index)
	if err != nil {
		return fmt.Errorf("open pwm%d: %w", index, err)
	}
	if err := pwm.Init(g.config.Frequency(), g.config.CenterUS); err != nil {
		return fmt.Errorf("init pwm%d: %w", index, err)
	}

	out.pwm = pwm
	out.LastUS = g.config.CenterUS
	out.Available = true
	g.logger.Info("PWM output ready",
		"pwm", index, "ch", out.Channel, "path", pwm.String(),
		"hz", g.config.FrequencyHz, "center_us", g.config.CenterUS)
	return nil
}

func (g *Gateway) writeMux(value uint16, what string) {
	err := g.registers.WriteRegister(g.strategy.Register, value)
	if err != nil {
		g.logger.Warn("MUX write failed",
			"for", what, "reg", fmt.Sprintf("%#x", g.strategy.Register),
			"val", fmt.Sprintf("%#04x", value), "err", err)
		return
	}
	g.logger.Info("MUX set",
		"for", what, "reg", fmt.Sprintf("%#x", g.strategy.Register),
		"val", fmt.Sprintf("%#04x", value))
}

// SetOutput commands an output. The value is clamped to the configured range
// and written only when it differs from the last accepted value. A failed
// write is logged and keeps the previous value. It reports whether a write
// was made.
func (g *Gateway) SetOutput(index, us int) bool {
	if index < 0 || index >= NumOutputs {
		return false
	}
	out := &g.outputs[index]
	if !out.Available {
		return false
	}

	clamped := Clamp(us, g.config.MinUS, g.config.MaxUS)
	if clamped == out.LastUS {
		if g.config.Verbose >= TraceVerbosity {
			g.logger.Debug("PWM unchanged", "pwm", index, "us", clamped)
		}
		return false
	}

	if err := out.pwm.SetDuty(clamped); err != nil {
		g.counters.Failures++
		g.logger.Warn("PWM write failed", "pwm", index, "us", clamped, "err", err)
		return false
	}
	g.counters.Writes++
	if g.config.Verbose >= TraceVerbosity {
		g.logger.Debug("PWM write", "pwm", index, "from_us", out.LastUS, "us", clamped)
	}
	out.LastUS = clamped
	return true
}

// Apply writes each assignment to its output
func (g *Gateway) Apply(assignments []Assignment) {
	for _, a := range assignments {
		g.SetOutput(a.Output, a.US)
	}
}

// CenterAll commands every available output to the center value
func (g *Gateway) CenterAll() {
	for i := range g.outputs {
		g.SetOutput(i, g.config.CenterUS)
	}
}

// Output returns a copy of output state
func (g *Gateway) Output(index int) (Output, error) {
	if index < 0 || index >= NumOutputs {
		return Output{}, fmt.Errorf("pwm%d: %w", index, ErrOutputUnavailable)
	}
	return g.outputs[index], nil
}

// Strategy returns the mux strategy in use
func (g *Gateway) Strategy() MuxStrategy {
	return g.strategy
}

// Counters returns write counters
func (g *Gateway) Counters() GatewayCounters {
	return g.counters
}
