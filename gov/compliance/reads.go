// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compliance

import (
	"sort"

	"github.com/amanahdao/amanah/gov"
)

// Review returns the review for a registry record.
func (c *Compliance) Review(recordID uint64) (*Review, error) {
	log.Tracef("Review: %v", recordID)

	c.Lock()
	defer c.Unlock()

	rv, ok := c.reviews[recordID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	rc := *rv
	return &rc, nil
}

// Council returns the current council membership, sorted so that the output
// is deterministic.
func (c *Compliance) Council() []gov.Identity {
	log.Tracef("Council")

	c.Lock()
	defer c.Unlock()

	members := append([]gov.Identity(nil), c.memberList...)
	sort.Slice(members, func(i, j int) bool {
		return members[i] < members[j]
	})
	return members
}

// IsCouncilMember returns whether the identity is on the council.
func (c *Compliance) IsCouncilMember(id gov.Identity) bool {
	c.Lock()
	defer c.Unlock()

	return c.members[id]
}

// CapHolders returns the identities that hold the provided capability on the
// compliance component.
func (c *Compliance) CapHolders(cap gov.Capability) []gov.Identity {
	c.Lock()
	defer c.Unlock()

	return c.caps.Holders(cap)
}
