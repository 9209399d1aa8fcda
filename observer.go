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

// LinkEvent describes a link phase change
type LinkEvent struct {
	At    time.Time
	Stats Stats
	Age   time.Duration
	From  LinkPhase
	To    LinkPhase
}

// LinkObserver is notified on every link phase change. Calls are made from
// the bridge loop and must not block.
type LinkObserver interface {
	LinkStateChanged(ev LinkEvent)
}

// LinkObserverFunc adapts a function to LinkObserver
type LinkObserverFunc func(ev LinkEvent)

// LinkStateChanged implements LinkObserver
func (f LinkObserverFunc) LinkStateChanged(ev LinkEvent) {
	f(ev)
}
