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

// Package pwm drives PWM outputs through the Linux sysfs PWM interface.
//
// The SigmaStar BSP patches the interface: period takes a frequency in Hz
// and duty_us takes the pulse width in microseconds.
package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"periph.io/x/conn/v3/physic"

	crsfpwm "github.com/waybeam/go-crsfpwm"
	"github.com/waybeam/go-crsfpwm/internal/retry"
)

// Defaults for Chip
const (
	DefaultExportTimeout = 500 * time.Millisecond
	DefaultWriteRetries  = 2
	exportPollInterval   = 5 * time.Millisecond
	busyRetryDelay       = time.Millisecond
)

// ErrDutyPathMissing means the kernel lacks the duty_us patch
var ErrDutyPathMissing = errors.New("duty_us missing (driver patch not present?)")

// Chip is a sysfs pwmchip directory such as /sys/class/pwm/pwmchip0
type Chip struct {
	Dir           string
	ExportTimeout time.Duration
	WriteRetries  int
}

// NewChip returns a chip with default timeouts
func NewChip(dir string) *Chip {
	return &Chip{
		Dir:           dir,
		ExportTimeout: DefaultExportTimeout,
		WriteRetries:  DefaultWriteRetries,
	}
}

// Open implements crsfpwm.ChannelOpener
func (c *Chip) Open(index int) (crsfpwm.PWMChannel, error) {
	return c.OpenChannel(index)
}

// OpenChannel exports output index if needed and waits for its nodes
func (c *Chip) OpenChannel(index int) (*Channel, error) {
	if index < 0 {
		return nil, fmt.Errorf("pwm%d: invalid index", index)
	}
	ch := &Channel{
		index:   index,
		dir:     filepath.Join(c.Dir, fmt.Sprintf("pwm%d", index)),
		retries: c.WriteRetries,
	}

	if !exists(ch.dir) {
		exportErr := writeInt(filepath.Join(c.Dir, "export"), index)
		// udev may create the node after the export write returns
		_, err := retry.Poll(c.ExportTimeout, exportPollInterval, func() (struct{}, bool, error) {
			return struct{}{}, !exists(ch.dir), nil
		})
		if err != nil {
			if exportErr != nil {
				return nil, fmt.Errorf("export pwm%d: %w", index, exportErr)
			}
			return nil, fmt.Errorf("export pwm%d: %w", index, err)
		}
	}

	if !exists(ch.dutyPath()) {
		return nil, fmt.Errorf("%s: %w", ch.dutyPath(), ErrDutyPathMissing)
	}
	return ch, nil
}

// Channel is one exported PWM output
type Channel struct {
	dir     string
	index   int
	retries int
}

// Init disables the output, sets the frequency, writes the center pulse and
// enables it again
func (ch *Channel) Init(freq physic.Frequency, centerUS int) error {
	hz := int64(freq / physic.Hertz)
	if hz <= 0 {
		return fmt.Errorf("pwm%d: frequency %s below 1Hz", ch.index, freq)
	}

	// the output may already be disabled, which some drivers report as an error
	_ = writeInt(ch.path("enable"), 0)

	if err := writeInt(ch.path("period"), int(hz)); err != nil {
		return fmt.Errorf("write period: %w", err)
	}
	if err := ch.SetDuty(centerUS); err != nil {
		return fmt.Errorf("write duty_us center: %w", err)
	}
	if err := writeInt(ch.path("enable"), 1); err != nil {
		return fmt.Errorf("enable pwm%d: %w", ch.index, err)
	}
	return nil
}

// SetDuty writes the pulse width in microseconds. A busy device is retried
// briefly.
func (ch *Channel) SetDuty(us int) error {
	_, err := retry.WithRetry(retry.Config{
		Description: "write " + ch.dutyPath(),
		MaxRetries:  ch.retries,
		Delay:       busyRetryDelay,
	}, func() (struct{}, bool, error) {
		err := writeInt(ch.dutyPath(), us)
		if errors.Is(err, syscall.EBUSY) {
			return struct{}{}, true, nil
		}
		return struct{}{}, false, err
	})
	return err
}

// Index returns the output index
func (ch *Channel) Index() int {
	return ch.index
}

func (ch *Channel) String() string {
	return ch.dutyPath()
}

func (ch *Channel) dutyPath() string {
	return ch.path("duty_us")
}

func (ch *Channel) path(attr string) string {
	return filepath.Join(ch.dir, attr)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeInt writes a decimal value to an existing attribute. Attributes are
// never created.
func writeInt(path string, v int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	s := strconv.Itoa(v)
	n, err := f.WriteString(s)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if n != len(s) {
		return fmt.Errorf("%s: short write %d/%d", path, n, len(s))
	}
	return nil
}
