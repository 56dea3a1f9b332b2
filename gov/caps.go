// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gov

import "sort"

// Capability is a named permission that an identity can hold on a pipeline
// component. Each component owns its own capability table; there is no global
// ambient authority object.
type Capability string

const (
	// CapabilityAdmin allows administrative operations: parameter
	// updates, registration, batching, vetos, signer set management.
	CapabilityAdmin Capability = "admin"

	// CapabilityExecutor allows batch execution.
	CapabilityExecutor Capability = "executor"

	// CapabilityCouncil allows submitting compliance reviews.
	CapabilityCouncil Capability = "council"

	// CapabilitySigner allows submitting and confirming multisig
	// transactions.
	CapabilitySigner Capability = "signer"
)

// Caps is a capability grant table: identity to the set of capabilities that
// have been granted to it.
//
// Caps is not safe for concurrent access. The component that owns the table
// must serialize access using its own mutex.
type Caps struct {
	Grants map[Identity]map[Capability]struct{} `json:"grants"`
}

// NewCaps returns a new Caps table.
func NewCaps() *Caps {
	return &Caps{
		Grants: make(map[Identity]map[Capability]struct{}),
	}
}

// Grant grants the capability to the identity. Granting a capability that is
// already held is a noop.
func (c *Caps) Grant(id Identity, cap Capability) {
	caps, ok := c.Grants[id]
	if !ok {
		caps = make(map[Capability]struct{})
		c.Grants[id] = caps
	}
	caps[cap] = struct{}{}
}

// Revoke revokes the capability from the identity. Revoking a capability
// that is not held is a noop.
func (c *Caps) Revoke(id Identity, cap Capability) {
	caps, ok := c.Grants[id]
	if !ok {
		return
	}
	delete(caps, cap)
	if len(caps) == 0 {
		delete(c.Grants, id)
	}
}

// Has returns whether the identity holds the capability.
func (c *Caps) Has(id Identity, cap Capability) bool {
	caps, ok := c.Grants[id]
	if !ok {
		return false
	}
	_, ok = caps[cap]
	return ok
}

// Holders returns the identities that hold the capability, sorted so that
// the output is deterministic.
func (c *Caps) Holders(cap Capability) []Identity {
	holders := make([]Identity, 0, len(c.Grants))
	for id, caps := range c.Grants {
		if _, ok := caps[cap]; ok {
			holders = append(holders, id)
		}
	}
	sort.Slice(holders, func(i, j int) bool {
		return holders[i] < holders[j]
	})
	return holders
}
