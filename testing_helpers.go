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
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// MockEvent is one scripted result of MockSource.Receive
type MockEvent struct {
	Err  error
	From string
	Data []byte
}

// MockSource replays scripted receive results. Once the script is exhausted
// it returns ErrNoData and calls OnDrained, which tests use to stop the loop.
type MockSource struct {
	OnDrained func()
	events    []MockEvent
	calls     int
	mu        sync.Mutex
	closed    bool
}

// NewMockSource creates a mock source with the given script
func NewMockSource(events ...MockEvent) *MockSource {
	return &MockSource{events: events}
}

// Push appends events to the script
func (m *MockSource) Push(events ...MockEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

// PushData appends one chunk of data from a fixed peer
func (m *MockSource) PushData(data []byte) {
	m.Push(MockEvent{Data: data, From: "127.0.0.1:5600"})
}

// Receive implements Source
func (m *MockSource) Receive(p []byte, _ time.Duration) (n int, from string, err error) {
	m.mu.Lock()
	m.calls++
	if m.closed {
		m.mu.Unlock()
		return 0, "", ErrSourceClosed
	}
	if len(m.events) == 0 {
		drained := m.OnDrained
		m.mu.Unlock()
		if drained != nil {
			drained()
		}
		return 0, "", ErrNoData
	}
	ev := m.events[0]
	m.events = m.events[1:]
	m.mu.Unlock()

	if ev.Err != nil {
		return 0, ev.From, ev.Err
	}
	return copy(p, ev.Data), ev.From, nil
}

// Calls returns how many times Receive was called
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Addr implements Source
func (*MockSource) Addr() string {
	return "mock"
}

// Type implements Source
func (*MockSource) Type() SourceType {
	return SourceMock
}

// Close implements Source
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// MockPWMChannel records duty writes
type MockPWMChannel struct {
	InitErr   error
	WriteErr  error
	Writes    []int
	Frequency physic.Frequency
	CenterUS  int
	Index     int
	mu        sync.Mutex
}

// Init implements PWMChannel
func (m *MockPWMChannel) Init(freq physic.Frequency, centerUS int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Frequency = freq
	m.CenterUS = centerUS
	return nil
}

// SetDuty implements PWMChannel. Failed writes are not recorded.
func (m *MockPWMChannel) SetDuty(us int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes = append(m.Writes, us)
	return nil
}

// SetWriteErr makes subsequent writes fail, nil restores them
func (m *MockPWMChannel) SetWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteErr = err
}

// WriteLog returns a copy of recorded writes
func (m *MockPWMChannel) WriteLog() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.Writes...)
}

func (m *MockPWMChannel) String() string {
	return fmt.Sprintf("mock/pwm%d", m.Index)
}

// MockPWMChip hands out MockPWMChannels and remembers them
type MockPWMChip struct {
	OpenErr  error
	Channels [NumOutputs]*MockPWMChannel
	Opened   []int
}

// NewMockPWMChip creates a chip with fresh channels
func NewMockPWMChip() *MockPWMChip {
	chip := &MockPWMChip{}
	for i := range chip.Channels {
		chip.Channels[i] = &MockPWMChannel{Index: i}
	}
	return chip
}

// Open implements ChannelOpener
func (m *MockPWMChip) Open(index int) (PWMChannel, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	if index < 0 || index >= NumOutputs {
		return nil, fmt.Errorf("pwm%d: %w", index, ErrOutputUnavailable)
	}
	m.Opened = append(m.Opened, index)
	return m.Channels[index], nil
}

// RegisterWrite is one recorded register write
type RegisterWrite struct {
	Addr  uint64
	Value uint16
}

// MockRegisterWriter records register writes
type MockRegisterWriter struct {
	Err    error
	Writes []RegisterWrite
}

// WriteRegister implements RegisterWriter. Writes are recorded even when
// Err is set, as an attempt was made.
func (m *MockRegisterWriter) WriteRegister(addr uint64, value uint16) error {
	m.Writes = append(m.Writes, RegisterWrite{Addr: addr, Value: value})
	return m.Err
}
