// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package soulbound

import (
	"testing"

	"github.com/amanahdao/amanah/gov"
)

const alice = gov.Identity("alice")

func TestMemRegistry(t *testing.T) {
	r := NewMemRegistry()

	if r.IsRegistered(alice) {
		t.Error("unregistered identity reported registered")
	}
	r.Register(alice)
	if !r.IsRegistered(alice) {
		t.Error("registered identity reported unregistered")
	}

	// Re-registration is a noop
	r.Register(alice)
	if !r.IsRegistered(alice) {
		t.Error("identity lost after re-registration")
	}

	r.Deregister(alice)
	if r.IsRegistered(alice) {
		t.Error("deregistered identity reported registered")
	}
}

func TestMemLedger(t *testing.T) {
	l := NewMemLedger()

	if got := l.WeightOf(alice); got != 0 {
		t.Errorf("got weight %v, want 0", got)
	}

	l.SetWeight(alice, 100)
	if got := l.WeightOf(alice); got != 100 {
		t.Errorf("got weight %v, want 100", got)
	}
	if !l.MeetsThreshold(alice, 100) {
		t.Error("weight 100 does not meet threshold 100")
	}
	if l.MeetsThreshold(alice, 101) {
		t.Error("weight 100 meets threshold 101")
	}

	l.AddWeight(alice, 10)
	if got := l.WeightOf(alice); got != 110 {
		t.Errorf("got weight %v, want 110", got)
	}
	l.AddWeight(alice, -60)
	if got := l.WeightOf(alice); got != 50 {
		t.Errorf("got weight %v, want 50", got)
	}

	// The weight floors at zero
	l.AddWeight(alice, -1000)
	if got := l.WeightOf(alice); got != 0 {
		t.Errorf("got weight %v, want 0", got)
	}
}
