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
	"time"
)

// LinkPhase is the failsafe phase of the control link
type LinkPhase int

const (
	// LinkIdle is the startup phase before any valid channel frame
	LinkIdle LinkPhase = iota
	// LinkActive means a valid frame arrived within the hold window
	LinkActive
	// LinkHeld keeps the last command after the hold window elapsed
	LinkHeld
	// LinkCentered means the outputs were centered by the failsafe
	LinkCentered
)

func (p LinkPhase) String() string {
	switch p {
	case LinkIdle:
		return "idle"
	case LinkActive:
		return "active"
	case LinkHeld:
		return "held"
	case LinkCentered:
		return "centered"
	default:
		return fmt.Sprintf("LinkPhase(%d)", int(p))
	}
}

// Centered reports whether outputs sit at center in this phase
func (p LinkPhase) Centered() bool {
	return p == LinkIdle || p == LinkCentered
}

// Transition is the result of feeding an event to LinkState
type Transition struct {
	From LinkPhase
	To   LinkPhase
}

// Changed reports whether the phase moved
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Recovered reports whether a valid frame ended a failsafe centering
func (t Transition) Recovered() bool {
	return t.From == LinkCentered && t.To == LinkActive
}

// NeedsCentering reports whether the outputs must now be driven to center
func (t Transition) NeedsCentering() bool {
	return t.To == LinkCentered && !t.From.Centered()
}

// LinkState tracks link health from the time of the last accepted frame.
// It holds no timers; the caller advances it with Check on every loop tick.
type LinkState struct {
	LastValid time.Time
	Phase     LinkPhase
	hold      time.Duration
	timeout   time.Duration
}

// NewLinkState creates an idle link state
func NewLinkState(hold, timeout time.Duration) LinkState {
	return LinkState{
		Phase:   LinkIdle,
		hold:    hold,
		timeout: timeout,
	}
}

// Active reports whether a valid frame arrived within the hold window
func (s *LinkState) Active() bool {
	return s.Phase == LinkActive
}

// CenteredByTimeout reports whether outputs were left at center, which is
// also true at startup
func (s *LinkState) CenteredByTimeout() bool {
	return s.Phase.Centered()
}

// Age returns the time since the last accepted frame, zero before the first
func (s *LinkState) Age(now time.Time) time.Duration {
	if s.LastValid.IsZero() {
		return 0
	}
	return now.Sub(s.LastValid)
}

// Accept records an accepted channel frame
func (s *LinkState) Accept(now time.Time) Transition {
	t := Transition{From: s.Phase, To: LinkActive}
	s.LastValid = now
	s.Phase = LinkActive
	return t
}

// Check advances the phase by elapsed time. It never leaves Idle, and a
// centered link stays centered until the next accepted frame.
func (s *LinkState) Check(now time.Time) Transition {
	t := Transition{From: s.Phase, To: s.Phase}
	if s.Phase.Centered() {
		return t
	}

	age := now.Sub(s.LastValid)
	switch {
	case age >= s.timeout:
		t.To = LinkCentered
	case age >= s.hold && s.Phase == LinkActive:
		t.To = LinkHeld
	}
	s.Phase = t.To
	return t
}

// ForceCentered moves to Centered regardless of elapsed time, used when the
// input source fails
func (s *LinkState) ForceCentered() Transition {
	t := Transition{From: s.Phase, To: LinkCentered}
	s.Phase = LinkCentered
	return t
}
