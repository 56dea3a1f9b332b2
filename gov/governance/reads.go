// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package governance

import (
	"sort"

	"github.com/amanahdao/amanah/gov"
)

// computeState returns the computed state of the proposal. The stored
// terminal and administrative statuses short-circuit the time based
// computation; everything else is a pure function of the vote tallies, the
// voting window, and the current height.
//
// This function must be called WITH the lock held.
func (g *Governance) computeState(p *Proposal) StatusT {
	switch p.Status {
	case StatusCanceled, StatusExecuted, StatusQueued:
		return p.Status
	}

	height := g.clock.BestHeight()
	switch {
	case height < p.StartHeight:
		return StatusPending
	case height <= p.EndHeight:
		return StatusActive
	}

	// Voting window has closed. Tally the outcome. A tie resolves to
	// defeated.
	totalVotes := p.ForVotes + p.AgainstVotes + p.AbstainVotes
	switch {
	case totalVotes < g.params.Quorum:
		return StatusDefeated
	case p.ForVotes > p.AgainstVotes:
		return StatusSucceeded
	default:
		return StatusDefeated
	}
}

// State returns the computed state of a proposal.
func (g *Governance) State(proposalID uint64) (StatusT, error) {
	log.Tracef("State: %v", proposalID)

	g.Lock()
	defer g.Unlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return StatusInvalid, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	return g.computeState(p), nil
}

// Proposal returns a proposal.
func (g *Governance) Proposal(proposalID uint64) (*Proposal, error) {
	log.Tracef("Proposal: %v", proposalID)

	g.Lock()
	defer g.Unlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	pr := *p
	return &pr, nil
}

// Votes returns all vote records for a proposal, sorted by cast order
// (timestamp, then voter for determinism).
func (g *Governance) Votes(proposalID uint64) ([]VoteRecord, error) {
	log.Tracef("Votes: %v", proposalID)

	g.Lock()
	defer g.Unlock()

	votes, ok := g.votes[proposalID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	vrs := make([]VoteRecord, 0, len(votes))
	for _, vr := range votes {
		vrs = append(vrs, vr)
	}
	sort.Slice(vrs, func(i, j int) bool {
		if vrs[i].Timestamp != vrs[j].Timestamp {
			return vrs[i].Timestamp < vrs[j].Timestamp
		}
		return vrs[i].Voter < vrs[j].Voter
	})
	return vrs, nil
}

// Params returns the current governance parameters.
func (g *Governance) Params() Params {
	g.Lock()
	defer g.Unlock()

	return g.params
}

// Inventory returns the proposal IDs categorized by their computed state,
// sorted from smallest ID to largest.
func (g *Governance) Inventory() map[StatusT][]uint64 {
	log.Tracef("Inventory")

	g.Lock()
	defer g.Unlock()

	inv := make(map[StatusT][]uint64)
	for id, p := range g.proposals {
		s := g.computeState(p)
		inv[s] = append(inv[s], id)
	}
	for _, ids := range inv {
		sort.Slice(ids, func(i, j int) bool {
			return ids[i] < ids[j]
		})
	}
	return inv
}

// CapHolders returns the identities that hold the provided capability on the
// governance component.
func (g *Governance) CapHolders(cap gov.Capability) []gov.Identity {
	g.Lock()
	defer g.Unlock()

	return g.caps.Holders(cap)
}
