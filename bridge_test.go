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
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waybeam/go-crsfpwm/internal/frame"
)

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(ms int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at(ms)
}

type recordingObserver struct {
	events []LinkEvent
	mu     sync.Mutex
}

func (r *recordingObserver) LinkStateChanged(ev LinkEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingObserver) phases() []LinkPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LinkPhase, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.To)
	}
	return out
}

// rcFrame builds a channel frame with ch1 and ch2 set and the rest centered
func rcFrame(ch1, ch2 int) []byte {
	var channels frame.Channels
	for i := range channels {
		channels[i] = frame.CenterMicros
	}
	channels[0], channels[1] = ch1, ch2
	return frame.EncodeChannels(channels)
}

type bridgeFixture struct {
	bridge   *Bridge
	chip     *MockPWMChip
	source   *MockSource
	clock    *fakeClock
	observer *recordingObserver
}

func newBridgeFixture(t *testing.T, cfg *Config, opts ...Option) *bridgeFixture {
	t.Helper()
	gw, chip, _ := newTestGateway(t, cfg)
	require.NoError(t, gw.Init())

	f := &bridgeFixture{
		chip:     chip,
		source:   NewMockSource(),
		clock:    &fakeClock{now: epoch},
		observer: &recordingObserver{},
	}
	opts = append([]Option{WithClock(f.clock.Now), WithObserver(f.observer)}, opts...)
	b, err := NewBridge(f.source, gw, cfg, opts...)
	require.NoError(t, err)
	f.bridge = b
	return f
}

func (f *bridgeFixture) feed(ms int, data []byte) {
	f.clock.Set(ms)
	f.bridge.handleData(data, "127.0.0.1:5600", at(ms))
	f.bridge.checkFailsafe(at(ms))
}

func (f *bridgeFixture) tick(ms int) {
	f.clock.Set(ms)
	f.bridge.checkFailsafe(at(ms))
}

func TestBridgeAppliesChannels(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	f.feed(0, rcFrame(1700, 1300))

	assert.Equal(t, []int{1700}, f.chip.Channels[0].WriteLog())
	assert.Equal(t, []int{1300}, f.chip.Channels[1].WriteLog())
	assert.Equal(t, LinkActive, f.bridge.Link().Phase)

	st := f.bridge.Stats()
	assert.Equal(t, uint64(1), st.Datagrams)
	assert.Equal(t, uint64(26), st.Bytes)
	assert.Equal(t, uint64(1), st.RCFrames)
	assert.Equal(t, uint64(2), st.OutputWrites)
}

func TestBridgeIdleStaysCentered(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	for ms := 0; ms <= 5000; ms += 20 {
		f.tick(ms)
	}

	assert.Empty(t, f.chip.Channels[0].WriteLog())
	assert.Empty(t, f.chip.Channels[1].WriteLog())
	assert.Equal(t, LinkIdle, f.bridge.Link().Phase)
	assert.Zero(t, f.bridge.Stats().Centerings)
	assert.Empty(t, f.observer.phases())
}

func TestBridgeFailsafeCentersOnceThenRecovers(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	f.feed(0, rcFrame(1800, 1200))

	f.tick(299)
	f.tick(300)
	assert.Equal(t, LinkHeld, f.bridge.Link().Phase)
	assert.Equal(t, []int{1800}, f.chip.Channels[0].WriteLog(), "hold keeps the last command")

	f.tick(499)
	assert.Equal(t, []int{1800}, f.chip.Channels[0].WriteLog())

	f.tick(500)
	assert.Equal(t, []int{1800, 1500}, f.chip.Channels[0].WriteLog())
	assert.Equal(t, []int{1200, 1500}, f.chip.Channels[1].WriteLog())

	for ms := 520; ms <= 3000; ms += 20 {
		f.tick(ms)
	}
	assert.Equal(t, []int{1800, 1500}, f.chip.Channels[0].WriteLog(), "centering fires once")
	assert.Equal(t, uint64(1), f.bridge.Stats().Centerings)

	f.feed(3010, rcFrame(1600, 1500))
	assert.Equal(t, []int{1800, 1500, 1600}, f.chip.Channels[0].WriteLog())
	assert.Equal(t, []int{1200, 1500}, f.chip.Channels[1].WriteLog())
	assert.Equal(t, uint64(1), f.bridge.Stats().Recoveries)

	assert.Equal(t, []LinkPhase{LinkActive, LinkHeld, LinkCentered, LinkActive}, f.observer.phases())
}

func TestBridgeLongestWindowsDoNotCenterEarly(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.HoldMS, cfg.CenterTimeoutMS = 0, MaxWindowMS
	require.NoError(t, cfg.Validate())

	f := newBridgeFixture(t, cfg)
	for ms := 0; ms <= 40; ms += 20 {
		f.feed(ms, rcFrame(1800, 1200))
	}
	assert.Equal(t, []int{1800}, f.chip.Channels[0].WriteLog())
	assert.Zero(t, f.bridge.Stats().Centerings)

	f.tick(MaxWindowMS + 40)
	assert.Equal(t, []int{1800, 1500}, f.chip.Channels[0].WriteLog())
	assert.Equal(t, uint64(1), f.bridge.Stats().Centerings)
}

func TestBridgeReassemblesSplitFrames(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	frm := rcFrame(1100, 1900)

	f.feed(0, frm[:7])
	assert.Empty(t, f.chip.Channels[0].WriteLog())
	assert.Equal(t, LinkIdle, f.bridge.Link().Phase)

	f.feed(5, frm[7:])
	assert.Equal(t, []int{1100}, f.chip.Channels[0].WriteLog())
	assert.Equal(t, []int{1900}, f.chip.Channels[1].WriteLog())
}

func TestBridgeResyncsAfterGarbage(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	data := append([]byte{0x00, 0xC8, 0xFF, 0x12, 0xC8}, rcFrame(1250, 1750)...)
	f.feed(0, data)

	assert.Equal(t, []int{1250}, f.chip.Channels[0].WriteLog())
	st := f.bridge.Stats()
	assert.Equal(t, uint64(1), st.RCFrames)
	assert.Positive(t, st.FramesBadAddr+st.FramesBadLength+st.FramesBadCRC)
}

func TestBridgeLastFrameInDatagramWins(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	data := append(rcFrame(1100, 1100), rcFrame(1900, 1900)...)
	f.feed(0, data)

	assert.Equal(t, []int{1900}, f.chip.Channels[0].WriteLog())
	assert.Equal(t, uint64(2), f.bridge.Stats().RCFrames)
}

func TestBridgeIgnoresShortRCPayload(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	short, err := frame.Encode(frame.AddrFlightController, frame.TypeRCChannelsPacked, make([]byte, 10))
	require.NoError(t, err)
	f.feed(0, short)

	assert.Empty(t, f.chip.Channels[0].WriteLog())
	assert.Equal(t, LinkIdle, f.bridge.Link().Phase, "unusable frames do not refresh the link")
	assert.Equal(t, uint64(1), f.bridge.Stats().RCIgnored)
}

func TestBridgeIgnoresOtherFrameTypes(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	f.feed(0, rcFrame(1700, 1700))
	battery, err := frame.Encode(frame.AddrFlightController, 0x08, make([]byte, 8))
	require.NoError(t, err)

	for ms := 100; ms <= 600; ms += 100 {
		f.feed(ms, battery)
	}
	assert.Equal(t, LinkCentered, f.bridge.Link().Phase)
	assert.Equal(t, uint64(7), f.bridge.Stats().FramesCRCOK)
}

func TestBridgeCountsEmptyDatagrams(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	f.feed(0, nil)
	st := f.bridge.Stats()
	assert.Equal(t, uint64(1), st.EmptyDatagrams)
	assert.Zero(t, st.Datagrams)
}

func TestBridgeReportsOverrun(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig(), WithBufferCapacity(32))

	f.feed(0, make([]byte, 40))
	st := f.bridge.Stats()
	assert.Equal(t, uint64(1), st.Overruns)
	assert.Equal(t, uint64(8), st.OverrunBytes)
	assert.Equal(t, 3, f.bridge.buffer.Len(), "scan keeps the short tail")

	f.feed(1, make([]byte, 32))
	st = f.bridge.Stats()
	assert.Equal(t, uint64(2), st.Overruns)
	assert.Equal(t, uint64(11), st.OverrunBytes)

	// a frame still decodes after overruns
	f.feed(2, rcFrame(1700, 1700))
	assert.Equal(t, []int{1700}, f.chip.Channels[0].WriteLog())
}

func TestBridgeRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	f.source.PushData(rcFrame(1900, 1100))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.source.OnDrained = cancel

	err := f.bridge.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []int{1900, 1500}, f.chip.Channels[0].WriteLog(), "outputs are centered on stop")
	assert.Equal(t, []int{1100, 1500}, f.chip.Channels[1].WriteLog())
}

func TestBridgeRunHardErrorCentersAndClears(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	frm := rcFrame(1900, 1100)
	f.source.Push(
		MockEvent{Data: frm},
		MockEvent{Err: NewSourceError("read", "udp", syscall.EINTR, true)},
		MockEvent{Data: frm[:10]},
		MockEvent{Err: NewSourceError("read", "udp", syscall.EBADF, false)},
	)

	err := f.bridge.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.EBADF)

	assert.Equal(t, []int{1900, 1500}, f.chip.Channels[0].WriteLog())
	assert.Equal(t, LinkCentered, f.bridge.Link().Phase)
	assert.Zero(t, f.bridge.buffer.Len(), "partial frame is discarded")

	st := f.bridge.Stats()
	assert.Equal(t, uint64(2), st.ReceiveErrors)
	assert.Equal(t, uint64(1), st.Centerings)
	assert.Equal(t, []LinkPhase{LinkActive, LinkCentered}, f.observer.phases())
}

func TestBridgeRunClosedSource(t *testing.T) {
	t.Parallel()

	f := newBridgeFixture(t, DefaultConfig())
	require.NoError(t, f.source.Close())
	err := f.bridge.Run(context.Background())
	assert.True(t, errors.Is(err, ErrSourceClosed))
}

func TestBridgeObserverFunc(t *testing.T) {
	t.Parallel()

	var seen []Transition
	obs := LinkObserverFunc(func(ev LinkEvent) {
		seen = append(seen, Transition{From: ev.From, To: ev.To})
	})
	f := newBridgeFixture(t, DefaultConfig(), WithObserver(obs))
	f.feed(0, rcFrame(1600, 1400))
	f.tick(300)

	assert.Equal(t, []Transition{
		{From: LinkIdle, To: LinkActive},
		{From: LinkActive, To: LinkHeld},
	}, seen)
}

func TestNewBridgeValidates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	gw, _, _ := newTestGateway(t, cfg)

	_, err := NewBridge(nil, gw, cfg)
	assert.Error(t, err)
	_, err = NewBridge(NewMockSource(), nil, cfg)
	assert.Error(t, err)
	_, err = NewBridge(NewMockSource(), gw, nil)
	assert.Error(t, err)
	_, err = NewBridge(NewMockSource(), gw, cfg, WithTick(0))
	assert.Error(t, err)
	_, err = NewBridge(NewMockSource(), gw, cfg, WithLogger(nil))
	assert.Error(t, err)
}
