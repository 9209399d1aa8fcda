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

// Package uart reads CRSF bytes straight from a serial receiver
package uart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	crsfpwm "github.com/waybeam/go-crsfpwm"
)

// DefaultBaud is the CRSF receiver baud rate
const DefaultBaud = 420000

// Transport reads from a serial port. Reads carry no frame boundaries; the
// bridge reassembles frames across calls.
type Transport struct {
	port     serial.Port
	portName string
	timeout  time.Duration
	mu       sync.Mutex
}

// New opens portName at baud, 8N1
func New(portName string, baud int) (*Transport, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	return newTransport(port, portName), nil
}

func newTransport(port serial.Port, portName string) *Transport {
	return &Transport{
		port:     port,
		portName: portName,
	}
}

// Receive implements crsfpwm.Source
func (t *Transport) Receive(p []byte, timeout time.Duration) (n int, from string, err error) {
	t.mu.Lock()
	port := t.port
	if port == nil {
		t.mu.Unlock()
		return 0, t.portName, crsfpwm.ErrSourceClosed
	}
	if timeout != t.timeout {
		if err := port.SetReadTimeout(timeout); err != nil {
			t.mu.Unlock()
			return 0, t.portName, crsfpwm.NewSourceError("set timeout", t.portName, err, false)
		}
		t.timeout = timeout
	}
	t.mu.Unlock()

	n, err = port.Read(p)
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
			return 0, t.portName, crsfpwm.ErrSourceClosed
		}
		return 0, t.portName, crsfpwm.NewSourceError("read", t.portName, err, false)
	}
	if n == 0 {
		return 0, t.portName, crsfpwm.ErrNoData
	}
	return n, t.portName, nil
}

// Addr implements crsfpwm.Source
func (t *Transport) Addr() string {
	return t.portName
}

// Type implements crsfpwm.Source
func (*Transport) Type() crsfpwm.SourceType {
	return crsfpwm.SourceUART
}

// IsConnected reports whether the port is open
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Close closes the port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", t.portName, err)
	}
	return nil
}
