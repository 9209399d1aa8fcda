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

// Package mqtt publishes link state changes to an MQTT broker
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"

	crsfpwm "github.com/waybeam/go-crsfpwm"
)

// Publisher defaults
const (
	AppID                 = "crsfpwm"
	DefaultConnectTimeout = 5 * time.Second
	QoS                   = 1
	queueDepth            = 16
	disconnectQuiesceMS   = 250
)

// ErrConnectTimeout is returned when the broker does not answer in time
var ErrConnectTimeout = errors.New("mqtt connect timed out")

// Message is the retained payload published on <topic>/link
type Message struct {
	At    time.Time     `json:"at"`
	State string        `json:"state"`
	From  string        `json:"from"`
	Stats crsfpwm.Stats `json:"stats"`
	AgeMS int64         `json:"age_ms"`
}

// Publisher is a crsfpwm.LinkObserver. Events are queued and published from
// a separate goroutine so the bridge loop never waits on the network.
type Publisher struct {
	client  paho.Client
	logger  *log.Logger
	queue   chan crsfpwm.LinkEvent
	done    chan struct{}
	topic   string
	once    sync.Once
	dropped uint64
	mu      sync.Mutex
	closed  bool
}

// ClientID derives a stable client id from the machine id, falling back to
// the application name
func ClientID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil || len(id) < 12 {
		return AppID
	}
	return AppID + "-" + id[:12]
}

// Connect dials broker and returns a running publisher
func Connect(broker, topic, clientID string, logger *log.Logger) (*Publisher, error) {
	if clientID == "" {
		clientID = ClientID()
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(DefaultConnectTimeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(DefaultConnectTimeout) {
		return nil, fmt.Errorf("%s: %w", broker, ErrConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	logger.Info("MQTT connected", "broker", broker, "client_id", clientID, "topic", LinkTopic(topic))
	return NewPublisher(client, topic, logger), nil
}

// NewPublisher wraps a connected client
func NewPublisher(client paho.Client, topic string, logger *log.Logger) *Publisher {
	p := &Publisher{
		client: client,
		topic:  LinkTopic(topic),
		logger: logger,
		queue:  make(chan crsfpwm.LinkEvent, queueDepth),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// LinkTopic returns the topic link events are published on
func LinkTopic(prefix string) string {
	if prefix == "" {
		prefix = crsfpwm.DefaultMQTTTopic
	}
	return prefix + "/link"
}

// LinkStateChanged implements crsfpwm.LinkObserver. When the queue is full
// or the publisher is closed the event is dropped.
func (p *Publisher) LinkStateChanged(ev crsfpwm.LinkEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.dropped++
		return
	}
	select {
	case p.queue <- ev:
	default:
		p.dropped++
	}
}

// Dropped returns the number of events lost to a full queue
func (p *Publisher) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

func (p *Publisher) run() {
	defer close(p.done)
	for ev := range p.queue {
		payload, err := Encode(ev)
		if err != nil {
			p.logger.Warn("MQTT encode failed", "err", err)
			continue
		}
		token := p.client.Publish(p.topic, QoS, true, payload)
		if token.WaitTimeout(DefaultConnectTimeout) && token.Error() != nil {
			p.logger.Warn("MQTT publish failed", "topic", p.topic, "err", token.Error())
		}
	}
}

// Close flushes queued events and disconnects
func (p *Publisher) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		<-p.done
		if dropped := p.Dropped(); dropped > 0 {
			p.logger.Warn("MQTT link events dropped", "count", dropped)
		}
		p.client.Disconnect(disconnectQuiesceMS)
	})
	return nil
}

// Encode builds the retained payload for ev
func Encode(ev crsfpwm.LinkEvent) ([]byte, error) {
	return json.Marshal(Message{
		State: ev.To.String(),
		From:  ev.From.String(),
		At:    ev.At.UTC(),
		AgeMS: ev.Age.Milliseconds(),
		Stats: ev.Stats,
	})
}
