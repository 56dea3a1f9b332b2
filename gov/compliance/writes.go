// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compliance

import (
	"fmt"
	"time"

	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/registry"
)

// SubmitReview records a council decision on a registry record. Council
// member only. A record can be reviewed at most once; only an emergency veto
// may overwrite a recorded review.
//
// An approved or rejected decision is written back into the proposal
// registry through the status port. Pending and under-review decisions are
// recorded here but do not propagate.
func (c *Compliance) SubmitReview(caller gov.Identity, recordID uint64, status StatusT, proof, justification string) (*Review, error) {
	log.Tracef("SubmitReview: %v %v %v", caller, recordID, status)

	c.Lock()
	defer c.Unlock()

	if !c.members[caller] {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeNotCouncilMember,
		}
	}
	switch status {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		// These are allowed
	default:
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeInvalidStatus,
			ErrorContext: fmt.Sprintf("%v not a valid review decision",
				status),
		}
	}
	if prev, ok := c.reviews[recordID]; ok && prev.Timestamp != 0 {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeAlreadyReviewed,
		}
	}
	err := verifyProof(proof)
	if err != nil {
		return nil, err
	}

	rv := Review{
		RecordID:      recordID,
		Status:        status,
		Timestamp:     time.Now().Unix(),
		Proof:         proof,
		Justification: justification,
		ReviewedBy:    caller,
	}

	// Propagate the outcome to the registry first. If the registry
	// rejects the write-back, e.g. the record does not exist, nothing
	// is recorded here either.
	switch status {
	case StatusApproved:
		err = c.port.SetStatus(recordID, registry.StatusApproved)
	case StatusRejected:
		err = c.port.SetStatus(recordID, registry.StatusRejected)
	}
	if err != nil {
		return nil, err
	}

	c.reviews[recordID] = &rv
	err = c.save()
	if err != nil {
		delete(c.reviews, recordID)
		return nil, err
	}

	log.Infof("Review recorded: record %v %v by %v",
		recordID, Statuses[status], caller)

	c.events.Emit(EventTypeReview, EventReview{Review: rv})

	rc := rv
	return &rc, nil
}

// EmergencyVeto vetoes a registry record. Administrator only. The veto
// unconditionally overwrites any existing review with a vetoed decision, a
// zeroed proof commitment, and the reason as justification, and always
// propagates a rejection to the registry.
func (c *Compliance) EmergencyVeto(caller gov.Identity, recordID uint64, reason string) (*Review, error) {
	log.Tracef("EmergencyVeto: %v %v", caller, recordID)

	c.Lock()
	defer c.Unlock()

	if !c.caps.Has(caller, gov.CapabilityAdmin) {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	rv := Review{
		RecordID:      recordID,
		Status:        StatusVetoed,
		Timestamp:     time.Now().Unix(),
		Proof:         "",
		Justification: reason,
		ReviewedBy:    caller,
	}

	err := c.port.SetStatus(recordID, registry.StatusRejected)
	if err != nil {
		return nil, err
	}

	prev, overwrote := c.reviews[recordID]
	c.reviews[recordID] = &rv
	err = c.save()
	if err != nil {
		if overwrote {
			c.reviews[recordID] = prev
		} else {
			delete(c.reviews, recordID)
		}
		return nil, err
	}

	log.Infof("Emergency veto: record %v by %v", recordID, caller)

	c.events.Emit(EventTypeVeto, EventVeto{
		Review:    rv,
		Overwrote: overwrote,
	})

	rc := rv
	return &rc, nil
}

// CouncilAdd seats a council member. Administrator only. Seating an
// identity that is already on the council is a noop.
func (c *Compliance) CouncilAdd(caller, member gov.Identity) error {
	log.Tracef("CouncilAdd: %v %v", caller, member)

	c.Lock()
	defer c.Unlock()

	if !c.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}
	if c.members[member] {
		return nil
	}

	c.members[member] = true
	c.memberList = append(c.memberList, member)
	c.caps.Grant(member, gov.CapabilityCouncil)
	err := c.save()
	if err != nil {
		delete(c.members, member)
		c.memberList = c.memberList[:len(c.memberList)-1]
		c.caps.Revoke(member, gov.CapabilityCouncil)
		return err
	}

	log.Infof("Council member seated: %v", member)

	c.events.Emit(EventTypeCouncilAdd, EventCouncil{Member: member})

	return nil
}

// CouncilRemove removes a council member. Administrator only. The backing
// list removal swaps with the last entry and pops; council order is not
// meaningful, only membership.
func (c *Compliance) CouncilRemove(caller, member gov.Identity) error {
	log.Tracef("CouncilRemove: %v %v", caller, member)

	c.Lock()
	defer c.Unlock()

	if !c.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}
	if !c.members[member] {
		return nil
	}

	prevList := append([]gov.Identity(nil), c.memberList...)
	for i, m := range c.memberList {
		if m != member {
			continue
		}
		last := len(c.memberList) - 1
		c.memberList[i] = c.memberList[last]
		c.memberList = c.memberList[:last]
		break
	}
	delete(c.members, member)
	c.caps.Revoke(member, gov.CapabilityCouncil)
	err := c.save()
	if err != nil {
		c.memberList = prevList
		c.members[member] = true
		c.caps.Grant(member, gov.CapabilityCouncil)
		return err
	}

	log.Infof("Council member removed: %v", member)

	c.events.Emit(EventTypeCouncilRemove, EventCouncil{Member: member})

	return nil
}

// CapGrant grants a capability on the compliance component. Administrator
// only.
func (c *Compliance) CapGrant(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapGrant: %v %v %v", caller, id, cap)

	c.Lock()
	defer c.Unlock()

	if !c.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := c.caps.Has(id, cap)
	c.caps.Grant(id, cap)
	err := c.save()
	if err != nil {
		if !had {
			c.caps.Revoke(id, cap)
		}
		return err
	}

	c.events.Emit(EventTypeCapGrant, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}

// CapRevoke revokes a capability on the compliance component. Administrator
// only.
func (c *Compliance) CapRevoke(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapRevoke: %v %v %v", caller, id, cap)

	c.Lock()
	defer c.Unlock()

	if !c.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := c.caps.Has(id, cap)
	c.caps.Revoke(id, cap)
	err := c.save()
	if err != nil {
		if had {
			c.caps.Grant(id, cap)
		}
		return err
	}

	c.events.Emit(EventTypeCapRevoke, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}
