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

import "time"

// SourceType identifies the kind of byte source feeding the bridge
type SourceType string

const (
	SourceUDP  SourceType = "udp"
	SourceUART SourceType = "uart"
	SourceMock SourceType = "mock"
)

// Source delivers raw CRSF bytes. UDP sources return one datagram per call;
// serial sources return whatever arrived, with no boundary guarantees.
type Source interface {
	// Receive waits up to timeout for input and copies it into p.
	// It returns ErrNoData when the timeout passes without input.
	Receive(p []byte, timeout time.Duration) (n int, from string, err error)

	// Addr describes where the source listens
	Addr() string

	// Type returns the source type
	Type() SourceType

	Close() error
}
