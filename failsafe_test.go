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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func TestLinkStateIdleIsStable(t *testing.T) {
	t.Parallel()

	s := NewLinkState(300*time.Millisecond, 500*time.Millisecond)
	assert.True(t, s.CenteredByTimeout())
	for _, ms := range []int{0, 500, 10_000, 1_000_000} {
		tr := s.Check(at(ms))
		assert.False(t, tr.Changed())
		assert.Equal(t, LinkIdle, s.Phase)
	}
	assert.Equal(t, time.Duration(0), s.Age(at(1000)))
}

func TestLinkStateTransitions(t *testing.T) {
	t.Parallel()

	s := NewLinkState(300*time.Millisecond, 500*time.Millisecond)

	tr := s.Accept(at(0))
	assert.Equal(t, Transition{From: LinkIdle, To: LinkActive}, tr)
	assert.False(t, tr.Recovered())
	assert.True(t, s.Active())
	assert.False(t, s.CenteredByTimeout())

	assert.False(t, s.Check(at(299)).Changed())

	tr = s.Check(at(300))
	assert.Equal(t, Transition{From: LinkActive, To: LinkHeld}, tr)
	assert.False(t, tr.NeedsCentering())
	assert.False(t, s.Active())

	assert.False(t, s.Check(at(499)).Changed())

	tr = s.Check(at(500))
	assert.Equal(t, Transition{From: LinkHeld, To: LinkCentered}, tr)
	assert.True(t, tr.NeedsCentering())
	assert.True(t, s.CenteredByTimeout())

	// stays centered without another centering action
	for _, ms := range []int{520, 540, 5000} {
		assert.False(t, s.Check(at(ms)).Changed())
	}

	tr = s.Accept(at(6000))
	assert.True(t, tr.Recovered())
	assert.Equal(t, LinkActive, s.Phase)
	assert.Equal(t, 20*time.Millisecond, s.Age(at(6020)))
}

func TestLinkStateFrameRefreshesHold(t *testing.T) {
	t.Parallel()

	s := NewLinkState(300*time.Millisecond, 500*time.Millisecond)
	for ms := 0; ms <= 2000; ms += 100 {
		s.Accept(at(ms))
		require.False(t, s.Check(at(ms+50)).Changed(), "at %dms", ms)
	}

	s.Check(at(2350))
	assert.Equal(t, LinkHeld, s.Phase)
	s.Accept(at(2360))
	assert.Equal(t, LinkActive, s.Phase)
}

func TestLinkStateSkipsHeldWhenTimeoutReached(t *testing.T) {
	t.Parallel()

	s := NewLinkState(300*time.Millisecond, 500*time.Millisecond)
	s.Accept(at(0))

	tr := s.Check(at(900))
	assert.Equal(t, Transition{From: LinkActive, To: LinkCentered}, tr)
	assert.True(t, tr.NeedsCentering())
}

func TestLinkStateEqualWindows(t *testing.T) {
	t.Parallel()

	s := NewLinkState(400*time.Millisecond, 400*time.Millisecond)
	s.Accept(at(0))
	assert.Equal(t, LinkCentered, s.Check(at(400)).To)
}

func TestLinkStateForceCentered(t *testing.T) {
	t.Parallel()

	idle := NewLinkState(300*time.Millisecond, 500*time.Millisecond)
	tr := idle.ForceCentered()
	assert.False(t, tr.NeedsCentering(), "idle outputs are already centered")
	assert.Equal(t, LinkCentered, idle.Phase)

	active := NewLinkState(300*time.Millisecond, 500*time.Millisecond)
	active.Accept(at(0))
	tr = active.ForceCentered()
	assert.True(t, tr.NeedsCentering())
	assert.True(t, active.CenteredByTimeout())
	assert.True(t, active.Accept(at(10)).Recovered())
}

func TestLinkPhaseString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", LinkIdle.String())
	assert.Equal(t, "active", LinkActive.String())
	assert.Equal(t, "held", LinkHeld.String())
	assert.Equal(t, "centered", LinkCentered.String())
	assert.Equal(t, "LinkPhase(7)", LinkPhase(7).String())
}
