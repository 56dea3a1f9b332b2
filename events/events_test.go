// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package events

import (
	"testing"
)

func TestEvents(t *testing.T) {
	m := NewManager()

	// Emitting with no listeners is a noop
	m.Emit("test", "data")

	ch1 := make(chan Record, 1)
	ch2 := make(chan Record, 1)
	m.Register("test", ch1)
	m.Register("test", ch2)
	m.Register("other", make(chan Record, 1))

	m.Emit("test", "data")

	for _, ch := range []chan Record{ch1, ch2} {
		r := <-ch
		if r.Type != "test" {
			t.Errorf("got type %v, want test", r.Type)
		}
		if r.Data.(string) != "data" {
			t.Errorf("got data %v, want data", r.Data)
		}
		if r.ID == "" {
			t.Error("event ID not stamped")
		}
		if r.Timestamp == 0 {
			t.Error("event timestamp not stamped")
		}
	}

	// Both deliveries carry the same event ID
	m.Emit("test", "again")
	r1, r2 := <-ch1, <-ch2
	if r1.ID != r2.ID {
		t.Errorf("IDs differ across listeners: %v != %v", r1.ID, r2.ID)
	}
}
