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

/*
Package crsfpwm bridges CRSF RC channel frames to hardware PWM outputs.

A Bridge reads bytes from a Source (a UDP socket or a serial receiver),
reassembles CRSF frames from them, and drives up to two PWM outputs through a
Gateway. Frames may be split across datagrams or share one; garbage between
frames is skipped a byte at a time until the stream resynchronises.

Basic Usage:

	import (
	    crsfpwm "github.com/waybeam/go-crsfpwm"
	    "github.com/waybeam/go-crsfpwm/mux"
	    "github.com/waybeam/go-crsfpwm/pwm"
	    "github.com/waybeam/go-crsfpwm/transport/udp"
	)

	cfg := crsfpwm.DefaultConfig()
	if err := cfg.Validate(); err != nil {
	    return err
	}

	source, err := udp.Listen(cfg.ListenAddr())
	if err != nil {
	    return err
	}
	defer source.Close()

	strategy, err := cfg.ResolveMux()
	if err != nil {
	    return err
	}
	gateway, err := crsfpwm.NewGateway(cfg, strategy, &mux.Devmem{}, pwm.NewChip(cfg.PWMChip))
	if err != nil {
	    return err
	}
	if err := gateway.Init(); err != nil {
	    return err
	}

	bridge, err := crsfpwm.NewBridge(source, gateway, cfg)
	if err != nil {
	    return err
	}
	return bridge.Run(ctx)

Failsafe:

Outputs hold the last command for the hold window after the last valid RC
frame, then return to the center pulse width once the center timeout has
elapsed. Centering happens once per link loss; the next valid frame resumes
normal output. Before the first frame outputs stay at center and no failsafe
action is taken.

Pin Mux:

Some SoCs route PWM signals to pins through a 16-bit mux register. The mux is
written before outputs are opened, either once with a combined value or once
per enabled output. A failed mux write is logged and the bridge carries on.

Observers:

LinkObserver implementations receive every link phase change together with a
snapshot of Stats. The status/mqtt and indicator/gpio packages provide an MQTT
publisher and a link LED.

Error Handling:

Configuration problems are reported as *ConfigError naming the offending
option:

	var cfgErr *crsfpwm.ConfigError
	if errors.As(err, &cfgErr) {
	    fmt.Println("bad option", cfgErr.Option)
	}

Source failures are *SourceError values; IsRetryable separates transient
receive errors from ones that stop the bridge.

Thread Safety:

A Bridge is not safe for concurrent use. Call Stats and Link after Run has
returned, or watch the link through a LinkObserver, which receives a
snapshot with every event.
*/
package crsfpwm
