// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package events provides a simple event manager. Pipeline components emit
// one event per successful state mutating call; the events are the only
// externally observable audit trail.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record wraps an emitted event with the metadata that external indexers
// need: a unique event ID and the emission timestamp.
type Record struct {
	ID        string      // UUID, assigned on emission
	Type      string      // Event type
	Timestamp int64       // Emission UNIX timestamp
	Data      interface{} // Event payload
}

// Manager manages event listeners for different event types.
type Manager struct {
	sync.Mutex
	listeners map[string][]chan Record
}

// Register registers an event listener (channel) to listen for the provided
// event type.
func (e *Manager) Register(event string, listener chan Record) {
	e.Lock()
	defer e.Unlock()

	l, ok := e.listeners[event]
	if !ok {
		l = make([]chan Record, 0)
	}

	l = append(l, listener)
	e.listeners[event] = l
}

// Emit emits an event by passing it to all channels that have been
// registered to listen for the event. The event is stamped with a UUID and
// the emission timestamp.
func (e *Manager) Emit(event string, data interface{}) {
	e.Lock()
	defer e.Unlock()

	listeners, ok := e.listeners[event]
	if !ok {
		return
	}

	r := Record{
		ID:        uuid.New().String(),
		Type:      event,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	for _, ch := range listeners {
		ch <- r
	}
}

// NewManager returns a new Manager context.
func NewManager() *Manager {
	return &Manager{
		listeners: make(map[string][]chan Record),
	}
}
