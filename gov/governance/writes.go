// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package governance

import (
	"fmt"
	"time"

	"github.com/amanahdao/amanah/gov"
)

// Propose submits a new proposal. The caller must hold a registered
// soulbound identity and must meet the proposal reputation threshold. The
// voting window opens VotingDelay heights from now and stays open for
// VotingPeriod heights.
func (g *Governance) Propose(caller gov.Identity, title, description string, payload []byte) (*Proposal, error) {
	log.Tracef("Propose: %v %v", caller, title)

	if !g.identities.IsRegistered(caller) {
		return nil, gov.UserError{
			ErrorCode:    gov.ErrorCodeUnauthorized,
			ErrorContext: "identity not registered",
		}
	}

	g.Lock()
	defer g.Unlock()

	if !g.ledger.MeetsThreshold(caller, g.params.ProposalThreshold) {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeInsufficientReputation,
			ErrorContext: fmt.Sprintf("threshold %v",
				g.params.ProposalThreshold),
		}
	}

	var (
		id    = g.nextID
		start = g.clock.BestHeight() + g.params.VotingDelay
	)
	p := Proposal{
		ID:          id,
		Proposer:    caller,
		Title:       title,
		Description: description,
		Payload:     payload,
		StartHeight: start,
		EndHeight:   start + g.params.VotingPeriod,
		Status:      StatusPending,
		Timestamp:   time.Now().Unix(),
	}

	g.proposals[id] = &p
	g.votes[id] = make(map[gov.Identity]VoteRecord)
	g.nextID++
	err := g.save()
	if err != nil {
		delete(g.proposals, id)
		delete(g.votes, id)
		g.nextID--
		return nil, err
	}

	log.Infof("Proposal submitted: %v by %v, voting %v-%v",
		id, caller, p.StartHeight, p.EndHeight)

	g.events.Emit(EventTypeNew, EventNew{Proposal: p})

	pr := p
	return &pr, nil
}

// CastVote casts a vote on an active proposal. The caller's current
// reputation weight is snapshotted and added to the selected tally. An
// identity can vote at most once per proposal.
func (g *Governance) CastVote(caller gov.Identity, proposalID uint64, vote VoteT) (*VoteRecord, error) {
	log.Tracef("CastVote: %v %v %v", caller, proposalID, vote)

	switch vote {
	case VoteAgainst, VoteFor, VoteAbstain:
		// These are allowed
	default:
		return nil, gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidProposal,
			ErrorContext: fmt.Sprintf("%v not a valid vote option", vote),
		}
	}
	if !g.identities.IsRegistered(caller) {
		return nil, gov.UserError{
			ErrorCode:    gov.ErrorCodeUnauthorized,
			ErrorContext: "identity not registered",
		}
	}

	g.Lock()
	defer g.Unlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	if g.computeState(p) != StatusActive {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotActive,
		}
	}
	if _, ok := g.votes[proposalID][caller]; ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeAlreadyVoted,
		}
	}

	// Snapshot the voter's weight. The tallies must only ever be
	// updated with snapshotted weights so that the tally invariant
	// holds when the ledger changes later.
	weight := g.ledger.WeightOf(caller)
	vr := VoteRecord{
		Proposal:  proposalID,
		Voter:     caller,
		Vote:      vote,
		Weight:    weight,
		Timestamp: time.Now().Unix(),
	}

	switch vote {
	case VoteAgainst:
		p.AgainstVotes += weight
	case VoteFor:
		p.ForVotes += weight
	case VoteAbstain:
		p.AbstainVotes += weight
	}
	g.votes[proposalID][caller] = vr

	err := g.save()
	if err != nil {
		switch vote {
		case VoteAgainst:
			p.AgainstVotes -= weight
		case VoteFor:
			p.ForVotes -= weight
		case VoteAbstain:
			p.AbstainVotes -= weight
		}
		delete(g.votes[proposalID], caller)
		return nil, err
	}

	log.Debugf("Vote cast on %v: %v %v weight %v",
		proposalID, caller, VoteOptions[vote], weight)

	g.events.Emit(EventTypeVote, EventVote{Vote: vr})

	return &vr, nil
}

// Cancel cancels a proposal. Only the original proposer or an administrator
// may cancel. The stored status is set unconditionally; there is no check on
// the current computed state.
func (g *Governance) Cancel(caller gov.Identity, proposalID uint64) error {
	log.Tracef("Cancel: %v %v", caller, proposalID)

	g.Lock()
	defer g.Unlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	if caller != p.Proposer && !g.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeUnauthorized,
			ErrorContext: "caller is not the proposer or an admin",
		}
	}

	prev := p.Status
	p.Status = StatusCanceled
	err := g.save()
	if err != nil {
		p.Status = prev
		return err
	}

	log.Infof("Proposal canceled: %v by %v", proposalID, caller)

	g.events.Emit(EventTypeCancel, EventCancel{
		Proposal:   *p,
		CanceledBy: caller,
	})

	return nil
}

// Execute marks a succeeded proposal as executed. Administrator only. This
// only flips the stored status; the actual side effects against target
// systems are carried out through the multisig authority.
func (g *Governance) Execute(caller gov.Identity, proposalID uint64) error {
	log.Tracef("Execute: %v %v", caller, proposalID)

	g.Lock()
	defer g.Unlock()

	if !g.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}
	p, ok := g.proposals[proposalID]
	if !ok {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	if g.computeState(p) != StatusSucceeded {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidProposal,
			ErrorContext: "proposal has not succeeded",
		}
	}

	prev := p.Status
	p.Status = StatusExecuted
	err := g.save()
	if err != nil {
		p.Status = prev
		return err
	}

	log.Infof("Proposal executed: %v", proposalID)

	g.events.Emit(EventTypeExecute, EventExecute{Proposal: *p})

	return nil
}

// UpdateParams replaces all governance parameters atomically. Administrator
// only. No bounds are enforced on the values.
func (g *Governance) UpdateParams(caller gov.Identity, params Params) error {
	log.Tracef("UpdateParams: %v %+v", caller, params)

	g.Lock()
	defer g.Unlock()

	if !g.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	prev := g.params
	g.params = params
	err := g.save()
	if err != nil {
		g.params = prev
		return err
	}

	log.Infof("Governance parameters updated: %+v", params)

	g.events.Emit(EventTypeParams, EventParams{Params: params})

	return nil
}

// CapGrant grants a capability on the governance component. Administrator
// only.
func (g *Governance) CapGrant(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapGrant: %v %v %v", caller, id, cap)

	g.Lock()
	defer g.Unlock()

	if !g.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := g.caps.Has(id, cap)
	g.caps.Grant(id, cap)
	err := g.save()
	if err != nil {
		if !had {
			g.caps.Revoke(id, cap)
		}
		return err
	}

	g.events.Emit(EventTypeCapGrant, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}

// CapRevoke revokes a capability on the governance component. Administrator
// only.
func (g *Governance) CapRevoke(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapRevoke: %v %v %v", caller, id, cap)

	g.Lock()
	defer g.Unlock()

	if !g.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := g.caps.Has(id, cap)
	g.caps.Revoke(id, cap)
	err := g.save()
	if err != nil {
		if had {
			g.caps.Grant(id, cap)
		}
		return err
	}

	g.events.Emit(EventTypeCapRevoke, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}
