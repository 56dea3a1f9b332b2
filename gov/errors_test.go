// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gov

import (
	"testing"

	"github.com/amanahdao/amanah/unittest"
	"github.com/go-test/deep"
)

func TestErrorCodes(t *testing.T) {
	err := unittest.TestGenericConstMap(ErrorCodes, uint64(ErrorCodeLast))
	if err != nil {
		t.Error(err)
	}
}

func TestCaps(t *testing.T) {
	c := NewCaps()
	var (
		alice = Identity("alice")
		bob   = Identity("bob")
	)

	if c.Has(alice, CapabilityAdmin) {
		t.Error("empty table granted a capability")
	}

	c.Grant(alice, CapabilityAdmin)
	c.Grant(bob, CapabilityAdmin)
	c.Grant(alice, CapabilitySigner)

	if !c.Has(alice, CapabilityAdmin) || !c.Has(bob, CapabilityAdmin) {
		t.Error("granted capability not found")
	}
	if c.Has(bob, CapabilitySigner) {
		t.Error("capability leaked across identities")
	}

	// Holders are sorted for deterministic output
	want := []Identity{alice, bob}
	if diff := deep.Equal(c.Holders(CapabilityAdmin), want); diff != nil {
		t.Errorf("holders diff: %v", diff)
	}

	// Revoking the last capability removes the identity entirely
	c.Revoke(alice, CapabilityAdmin)
	c.Revoke(alice, CapabilitySigner)
	if c.Has(alice, CapabilitySigner) {
		t.Error("revoked capability still present")
	}
	want = []Identity{bob}
	if diff := deep.Equal(c.Holders(CapabilityAdmin), want); diff != nil {
		t.Errorf("holders diff: %v", diff)
	}

	// Revoking something that was never granted is a noop
	c.Revoke(bob, CapabilityCouncil)
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	if c.BestHeight() != 100 {
		t.Errorf("got height %v, want 100", c.BestHeight())
	}
	c.Advance(5)
	if c.BestHeight() != 105 {
		t.Errorf("got height %v, want 105", c.BestHeight())
	}

	// The clock never runs backwards
	c.SetHeight(50)
	if c.BestHeight() != 105 {
		t.Errorf("got height %v, want 105", c.BestHeight())
	}
	c.SetHeight(200)
	if c.BestHeight() != 200 {
		t.Errorf("got height %v, want 200", c.BestHeight())
	}
}
