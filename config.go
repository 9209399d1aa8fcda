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
	"net"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"
)

// NumOutputs is the number of physical PWM lines the bridge drives
const NumOutputs = 2

// Configuration defaults
const (
	DefaultPort            = 9000
	DefaultBaud            = 420000
	DefaultFrequencyHz     = 50
	DefaultMinUS           = 1000
	DefaultMaxUS           = 2000
	DefaultCenterUS        = 1500
	DefaultHoldMS          = 300
	DefaultCenterTimeoutMS = 500
	DefaultPWMChip         = "/sys/class/pwm/pwmchip0"
	DefaultMQTTTopic       = "crsfpwm"

	// Limits accepted for pulse widths
	LowestUS   = 500
	HighestUS  = 2500
	MaxVerbose = 3

	// Upper bounds for the PWM frequency and the failsafe windows
	MaxFrequencyHz = 1_000_000
	MaxWindowMS    = 3_600_000
)

// Mux register write methods
const (
	MuxMethodDevmem = "devmem" // external devmem helper
	MuxMethodMem    = "mem"    // map /dev/mem directly
)

// Config holds every runtime option of the bridge.
// Option names in errors match the command line flags.
type Config struct {
	Listen  string     `yaml:"listen"`
	Serial  string     `yaml:"serial"`
	PWMChip string     `yaml:"pwmchip"`
	LinkLED string     `yaml:"link_led"`
	MQTT    MQTTConfig `yaml:"mqtt"`
	Mux     MuxConfig  `yaml:"mux"`

	// SerialIgnore lists ports left out of --list-serial
	SerialIgnore []string `yaml:"serial_ignore"`

	Port            int `yaml:"port"`
	Baud            int `yaml:"baud"`
	PWM0Channel     int `yaml:"pwm0_ch"`
	PWM1Channel     int `yaml:"pwm1_ch"`
	FrequencyHz     int `yaml:"hz"`
	MinUS           int `yaml:"min_us"`
	MaxUS           int `yaml:"max_us"`
	CenterUS        int `yaml:"center_us"`
	HoldMS          int `yaml:"hold_ms"`
	CenterTimeoutMS int `yaml:"center_timeout_ms"`
	Verbose         int `yaml:"verbose"`
}

// MuxConfig selects how the pin mux register is written.
// Nil values were not given explicitly and take their defaults.
type MuxConfig struct {
	PWM0      *uint16 `yaml:"pwm0"`
	PWM1      *uint16 `yaml:"pwm1"`
	InitValue *uint16 `yaml:"init_value"`
	Register  string  `yaml:"register"`
	Method    string  `yaml:"method"`
	Devmem    string  `yaml:"devmem"`
	Disabled  bool    `yaml:"disabled"`
}

// MQTTConfig configures the optional link status publisher
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// DefaultConfig returns the configuration used when no option is given
func DefaultConfig() *Config {
	return &Config{
		Port:            DefaultPort,
		Baud:            DefaultBaud,
		PWM0Channel:     1,
		PWM1Channel:     2,
		FrequencyHz:     DefaultFrequencyHz,
		MinUS:           DefaultMinUS,
		MaxUS:           DefaultMaxUS,
		CenterUS:        DefaultCenterUS,
		HoldMS:          DefaultHoldMS,
		CenterTimeoutMS: DefaultCenterTimeoutMS,
		PWMChip:         DefaultPWMChip,
		Mux: MuxConfig{
			Register: fmt.Sprintf("%#x", DefaultMuxRegister),
			Method:   MuxMethodDevmem,
			Devmem:   "devmem",
		},
		MQTT: MQTTConfig{
			Topic: DefaultMQTTTopic,
		},
	}
}

// Validate checks every option against its domain. The first violation is
// returned as a *ConfigError naming the option.
func (c *Config) Validate() error {
	checks := []struct {
		option string
		value  int
		ok     bool
		reason string
	}{
		{"port", c.Port, c.Port > 0 && c.Port <= 65535, "expected 1..65535"},
		{"pwm0-ch", c.PWM0Channel, c.PWM0Channel >= 0 && c.PWM0Channel <= 16, "expected 0..16"},
		{"pwm1-ch", c.PWM1Channel, c.PWM1Channel >= 0 && c.PWM1Channel <= 16, "expected 0..16"},
		{"hz", c.FrequencyHz, c.FrequencyHz > 0 && c.FrequencyHz <= MaxFrequencyHz, fmt.Sprintf("expected 1..%d", MaxFrequencyHz)},
		{"min-us", c.MinUS, c.MinUS >= LowestUS, fmt.Sprintf("expected at least %d", LowestUS)},
		{"max-us", c.MaxUS, c.MaxUS <= HighestUS, fmt.Sprintf("expected at most %d", HighestUS)},
		{"max-us", c.MaxUS, c.MaxUS >= c.MinUS, "expected at least --min-us"},
		{"center-us", c.CenterUS, c.CenterUS >= c.MinUS && c.CenterUS <= c.MaxUS, "expected within --min-us..--max-us"},
		{"hold-ms", c.HoldMS, c.HoldMS >= 0 && c.HoldMS <= MaxWindowMS, fmt.Sprintf("expected 0..%d", MaxWindowMS)},
		{"center-timeout-ms", c.CenterTimeoutMS, c.CenterTimeoutMS <= MaxWindowMS, fmt.Sprintf("expected at most %d", MaxWindowMS)},
		{"center-timeout-ms", c.CenterTimeoutMS, c.CenterTimeoutMS >= c.HoldMS, "expected at least --hold-ms"},
		{"verbose", c.Verbose, c.Verbose >= 0 && c.Verbose <= MaxVerbose, fmt.Sprintf("expected 0..%d", MaxVerbose)},
		{"baud", c.Baud, c.Serial == "" || c.Baud > 0, "expected a positive baud rate"},
	}
	for _, check := range checks {
		if !check.ok {
			return NewConfigError(check.option, check.value, check.reason)
		}
	}

	if c.Serial == "" && c.Listen != "" && net.ParseIP(c.Listen) == nil {
		return NewConfigError("listen", c.Listen, "expected an IP address")
	}

	if _, err := c.ResolveMux(); err != nil {
		return err
	}

	switch c.Mux.Method {
	case MuxMethodDevmem, MuxMethodMem:
	default:
		return NewConfigError("mux-method", c.Mux.Method,
			fmt.Sprintf("expected %s or %s", MuxMethodDevmem, MuxMethodMem))
	}

	if c.LinkLED != "" {
		if _, err := ParseLinkLED(c.LinkLED); err != nil {
			return &ConfigError{Option: "link-led", Value: c.LinkLED, Reason: err.Error()}
		}
	}

	return nil
}

// Channel returns the CRSF channel (1..16) mapped to output, 0 when disabled
func (c *Config) Channel(output int) int {
	switch output {
	case 0:
		return c.PWM0Channel
	case 1:
		return c.PWM1Channel
	default:
		return 0
	}
}

// Frequency returns the PWM frequency
func (c *Config) Frequency() physic.Frequency {
	return physic.Frequency(c.FrequencyHz) * physic.Hertz
}

// HoldWindow returns how long the last command is held after link loss
func (c *Config) HoldWindow() time.Duration {
	return time.Duration(c.HoldMS) * time.Millisecond
}

// CenterTimeout returns how long after the last valid frame outputs are centered
func (c *Config) CenterTimeout() time.Duration {
	return time.Duration(c.CenterTimeoutMS) * time.Millisecond
}

// ListenAddr returns the UDP address to bind
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Listen, strconv.Itoa(c.Port))
}

// ParseRegister parses a register address such as 0x1f207994
func ParseRegister(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty address")
	}
	addr, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("not an address: %w", err)
	}
	if addr%2 != 0 {
		return 0, errors.New("address of a 16-bit register must be even")
	}
	return addr, nil
}

// ParseGPIOLine parses a "chip:line" GPIO reference such as gpiochip0:17
func ParseGPIOLine(s string) (chip string, line int, err error) {
	chip, lineStr, ok := strings.Cut(s, ":")
	if !ok || chip == "" {
		return "", 0, errors.New("expected chip:line")
	}
	line, err = strconv.Atoi(lineStr)
	if err != nil || line < 0 {
		return "", 0, fmt.Errorf("invalid line %q", lineStr)
	}
	return chip, line, nil
}

// LinkLEDRef names a link LED, either a GPIO line or a /sys/class/leds entry
type LinkLEDRef struct {
	Chip string
	Name string
	Line int
}

// Sysfs reports whether the reference is a /sys/class/leds entry
func (r LinkLEDRef) Sysfs() bool {
	return r.Name != ""
}

// ParseLinkLED parses "chip:line" or "led:NAME"
func ParseLinkLED(s string) (LinkLEDRef, error) {
	if name, ok := strings.CutPrefix(s, "led:"); ok {
		if name == "" || strings.ContainsAny(name, "/") {
			return LinkLEDRef{}, fmt.Errorf("invalid led name %q", name)
		}
		return LinkLEDRef{Name: name}, nil
	}
	chip, line, err := ParseGPIOLine(s)
	if err != nil {
		return LinkLEDRef{}, err
	}
	return LinkLEDRef{Chip: chip, Line: line}, nil
}
