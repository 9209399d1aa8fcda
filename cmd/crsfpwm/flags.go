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
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	crsfpwm "github.com/waybeam/go-crsfpwm"
)

// errListSerial asks run to print the serial ports and exit
var errListSerial = errors.New("list serial ports")

// parseConfig builds the configuration from defaults, an optional YAML file
// and the command line, in increasing precedence
func parseConfig(args []string, stderr io.Writer) (*crsfpwm.Config, error) {
	def := crsfpwm.DefaultConfig()
	fs := pflag.NewFlagSet("crsfpwm", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	configPath := fs.String("config", "", "YAML configuration file")
	listen := fs.String("listen", def.Listen, "UDP bind address (default all interfaces)")
	port := fs.IntP("port", "p", def.Port, "UDP listen port")
	serial := fs.String("serial", def.Serial, "read CRSF from this serial port instead of UDP")
	baud := fs.Int("baud", def.Baud, "serial baud rate")
	pwm0 := fs.Int("pwm0-ch", def.PWM0Channel, "CRSF channel driving pwm0 (1..16, 0 disables)")
	pwm1 := fs.Int("pwm1-ch", def.PWM1Channel, "CRSF channel driving pwm1 (1..16, 0 disables)")
	hz := fs.Int("hz", def.FrequencyHz, "PWM frequency in Hz")
	minUS := fs.Int("min-us", def.MinUS, "minimum pulse width in us")
	maxUS := fs.Int("max-us", def.MaxUS, "maximum pulse width in us")
	centerUS := fs.Int("center-us", def.CenterUS, "failsafe center pulse width in us")
	holdMS := fs.Int("hold-ms", def.HoldMS, "hold the last command this long after link loss")
	timeoutMS := fs.Int("center-timeout-ms", def.CenterTimeoutMS, "center outputs after this long without valid frames")
	pwmChip := fs.String("pwmchip", def.PWMChip, "sysfs pwmchip directory")
	noMux := fs.Bool("no-mux", false, "never write the pin mux register")
	muxReg := fs.String("mux-reg", def.Mux.Register, "pin mux register address")
	muxPWM0 := fs.Uint16("mux-pwm0", crsfpwm.DefaultMuxPWM0, "mux value written for pwm0")
	muxPWM1 := fs.Uint16("mux-pwm1", crsfpwm.DefaultMuxPWM1, "mux value written for pwm1")
	muxInit := fs.Uint16("mux-init-val", crsfpwm.DefaultMuxCombined, "write this mux value once before any output")
	muxMethod := fs.String("mux-method", def.Mux.Method, "mux write method: devmem or mem")
	devmem := fs.String("devmem", def.Mux.Devmem, "devmem helper binary")
	mqttBroker := fs.String("mqtt-broker", def.MQTT.Broker, "publish link state to this MQTT broker (tcp://host:1883)")
	mqttTopic := fs.String("mqtt-topic", def.MQTT.Topic, "MQTT topic prefix")
	linkLED := fs.String("link-led", def.LinkLED, "drive a link LED on CHIP:LINE or led:NAME")
	verbose := fs.CountP("verbose", "v", "increase verbosity (-v, -vv, -vvv)")
	listSerial := fs.Bool("list-serial", false, "list serial ports and exit")
	serialIgnore := fs.StringSlice("serial-ignore", nil, "ports left out of --list-serial")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg := def
	if *configPath != "" {
		loaded, err := crsfpwm.LoadConfigFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// explicit flags override the file
	apply := map[string]func(){
		"listen":            func() { cfg.Listen = *listen },
		"port":              func() { cfg.Port = *port },
		"serial":            func() { cfg.Serial = *serial },
		"baud":              func() { cfg.Baud = *baud },
		"pwm0-ch":           func() { cfg.PWM0Channel = *pwm0 },
		"pwm1-ch":           func() { cfg.PWM1Channel = *pwm1 },
		"hz":                func() { cfg.FrequencyHz = *hz },
		"min-us":            func() { cfg.MinUS = *minUS },
		"max-us":            func() { cfg.MaxUS = *maxUS },
		"center-us":         func() { cfg.CenterUS = *centerUS },
		"hold-ms":           func() { cfg.HoldMS = *holdMS },
		"center-timeout-ms": func() { cfg.CenterTimeoutMS = *timeoutMS },
		"pwmchip":           func() { cfg.PWMChip = *pwmChip },
		"no-mux":            func() { cfg.Mux.Disabled = *noMux },
		"mux-reg":           func() { cfg.Mux.Register = *muxReg },
		"mux-pwm0":          func() { cfg.Mux.PWM0 = muxPWM0 },
		"mux-pwm1":          func() { cfg.Mux.PWM1 = muxPWM1 },
		"mux-init-val":      func() { cfg.Mux.InitValue = muxInit },
		"mux-method":        func() { cfg.Mux.Method = *muxMethod },
		"devmem":            func() { cfg.Mux.Devmem = *devmem },
		"mqtt-broker":       func() { cfg.MQTT.Broker = *mqttBroker },
		"mqtt-topic":        func() { cfg.MQTT.Topic = *mqttTopic },
		"link-led":          func() { cfg.LinkLED = *linkLED },
		"verbose":           func() { cfg.Verbose = *verbose },
		"serial-ignore":     func() { cfg.SerialIgnore = *serialIgnore },
	}
	fs.Visit(func(f *pflag.Flag) {
		if fn, ok := apply[f.Name]; ok {
			fn()
		}
	})

	if *listSerial {
		return cfg, errListSerial
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
