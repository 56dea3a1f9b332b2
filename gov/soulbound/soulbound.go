// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package soulbound defines the external collaborator interfaces that gate
// participation in the governance pipeline: the soulbound identity registry
// and the reputation ledger. The pipeline only ever consumes these
// interfaces; issuing identities and the ledger bookkeeping itself are not
// part of the pipeline core.
//
// In-memory reference implementations are provided for standalone
// deployments and tests.
package soulbound

import (
	"sync"

	"github.com/amanahdao/amanah/gov"
)

// Registry answers whether an identity has been issued a valid, non
// transferable identity record.
type Registry interface {
	// IsRegistered returns whether the identity is registered.
	IsRegistered(id gov.Identity) bool
}

// Ledger holds a reputation weight per identity. The ledger is mutated by
// governance outcomes; the pipeline itself only reads from it. The weight
// that a vote uses is snapshotted at cast time, so later ledger mutations
// never affect votes that have already been cast.
type Ledger interface {
	// WeightOf returns the identity's current reputation weight.
	WeightOf(id gov.Identity) uint64

	// MeetsThreshold returns whether the identity's current weight is
	// greater than or equal to the provided minimum.
	MeetsThreshold(id gov.Identity, min uint64) bool
}

// MemRegistry is an in-memory Registry implementation.
type MemRegistry struct {
	sync.RWMutex
	ids map[gov.Identity]struct{}
}

// Register registers the identity. Registering an identity that is already
// registered is a noop.
func (r *MemRegistry) Register(id gov.Identity) {
	r.Lock()
	defer r.Unlock()

	r.ids[id] = struct{}{}
}

// Deregister removes the identity from the registry.
func (r *MemRegistry) Deregister(id gov.Identity) {
	r.Lock()
	defer r.Unlock()

	delete(r.ids, id)
}

// IsRegistered satisfies the Registry interface.
func (r *MemRegistry) IsRegistered(id gov.Identity) bool {
	r.RLock()
	defer r.RUnlock()

	_, ok := r.ids[id]
	return ok
}

// NewMemRegistry returns a new MemRegistry.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		ids: make(map[gov.Identity]struct{}),
	}
}

// MemLedger is an in-memory Ledger implementation.
type MemLedger struct {
	sync.RWMutex
	weights map[gov.Identity]uint64
}

// SetWeight sets the identity's weight.
func (l *MemLedger) SetWeight(id gov.Identity, weight uint64) {
	l.Lock()
	defer l.Unlock()

	l.weights[id] = weight
}

// AddWeight adds delta to the identity's weight. The weight floors at zero.
func (l *MemLedger) AddWeight(id gov.Identity, delta int64) {
	l.Lock()
	defer l.Unlock()

	w := l.weights[id]
	if delta < 0 && uint64(-delta) > w {
		l.weights[id] = 0
		return
	}
	l.weights[id] = uint64(int64(w) + delta)
}

// WeightOf satisfies the Ledger interface.
func (l *MemLedger) WeightOf(id gov.Identity) uint64 {
	l.RLock()
	defer l.RUnlock()

	return l.weights[id]
}

// MeetsThreshold satisfies the Ledger interface.
func (l *MemLedger) MeetsThreshold(id gov.Identity, min uint64) bool {
	l.RLock()
	defer l.RUnlock()

	return l.weights[id] >= min
}

// NewMemLedger returns a new MemLedger.
func NewMemLedger() *MemLedger {
	return &MemLedger{
		weights: make(map[gov.Identity]uint64),
	}
}
