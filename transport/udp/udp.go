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

// Package udp receives CRSF datagrams on a UDP socket
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	crsfpwm "github.com/waybeam/go-crsfpwm"
)

// Transport is a bound UDP socket. Each Receive returns at most one datagram.
type Transport struct {
	conn *net.UDPConn
	addr string
	mu   sync.Mutex
}

// Listen binds addr, for example ":9000" or "192.168.1.10:9000"
func Listen(addr string) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Transport{
		conn: conn,
		addr: conn.LocalAddr().String(),
	}, nil
}

// Receive implements crsfpwm.Source
func (t *Transport) Receive(p []byte, timeout time.Duration) (n int, from string, err error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, "", crsfpwm.ErrSourceClosed
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, "", crsfpwm.NewSourceError("set deadline", t.addr, err, false)
	}

	n, src, err := conn.ReadFromUDP(p)
	if err != nil {
		return 0, "", t.classify(err)
	}
	return n, src.String(), nil
}

func (t *Transport) classify(err error) error {
	switch {
	case errors.Is(err, net.ErrClosed):
		return crsfpwm.ErrSourceClosed
	case isTimeout(err):
		return crsfpwm.ErrNoData
	default:
		return crsfpwm.NewSourceError("read", t.addr, err, isTransient(err))
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Addr implements crsfpwm.Source
func (t *Transport) Addr() string {
	return t.addr
}

// Type implements crsfpwm.Source
func (*Transport) Type() crsfpwm.SourceType {
	return crsfpwm.SourceUDP
}

// Close closes the socket
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", t.addr, err)
	}
	return nil
}
