// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"fmt"
	"time"

	"github.com/amanahdao/amanah/gov"
)

// Register registers a community proposal into the registry. Administrator
// only. Registration is an administrative staging step: the community
// proposal must exist, but its outcome is not checked here. Status
// enforcement happens at the compliance and batching stages.
//
// There is no uniqueness guard on the community ID. Registering the same
// community proposal twice creates a second record; the community index
// points at the most recent registration.
func (r *Registry) Register(caller gov.Identity, communityID uint64, payload []byte) (*Record, error) {
	log.Tracef("Register: %v %v", caller, communityID)

	r.Lock()
	defer r.Unlock()

	if !r.caps.Has(caller, gov.CapabilityAdmin) {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	// Look up the community proposal. A not found error is propagated
	// as-is.
	p, err := r.source.Proposal(communityID)
	if err != nil {
		return nil, err
	}

	id := r.nextID
	rec := Record{
		ID:          id,
		CommunityID: communityID,
		Proposer:    p.Proposer,
		Status:      StatusRegistered,
		Payload:     payload,
		Timestamp:   time.Now().Unix(),
	}

	var (
		prevIndex, hadIndex = r.byCommunity[communityID]
	)
	r.records[id] = &rec
	r.byCommunity[communityID] = id
	r.nextID++
	err = r.save()
	if err != nil {
		delete(r.records, id)
		if hadIndex {
			r.byCommunity[communityID] = prevIndex
		} else {
			delete(r.byCommunity, communityID)
		}
		r.nextID--
		return nil, err
	}

	log.Infof("Proposal registered: community %v as record %v",
		communityID, id)

	r.events.Emit(EventTypeRegister, EventRegister{Record: rec})

	rc := rec
	return &rc, nil
}

// setStatus overwrites a record status. No transition table is enforced;
// this is intentionally permissive so that the compliance review component
// can drive the approved/rejected statuses directly.
//
// This function must be called WITH the lock held.
func (r *Registry) setStatus(recordID uint64, status StatusT) error {
	if _, ok := Statuses[status]; !ok || status == StatusInvalid {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidStatus,
			ErrorContext: fmt.Sprintf("unknown status %v", status),
		}
	}
	rec, ok := r.records[recordID]
	if !ok {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}

	prev := rec.Status
	rec.Status = status
	err := r.save()
	if err != nil {
		rec.Status = prev
		return err
	}

	log.Debugf("Record %v status: %v -> %v",
		recordID, Statuses[prev], Statuses[status])

	r.events.Emit(EventTypeSetStatus, EventSetStatus{
		Record: *rec,
		Prev:   prev,
	})

	return nil
}

// SetStatus overwrites a record status. Administrator only.
func (r *Registry) SetStatus(caller gov.Identity, recordID uint64, status StatusT) error {
	log.Tracef("SetStatus: %v %v %v", caller, recordID, status)

	r.Lock()
	defer r.Unlock()

	if !r.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	return r.setStatus(recordID, status)
}

// statusPort implements the StatusSetter interface. The port carries its own
// authorization: it is handed to the compliance review component on setup
// and allows only the review outcomes.
type statusPort struct {
	r *Registry
}

// SetStatus satisfies the StatusSetter interface.
func (p statusPort) SetStatus(recordID uint64, status StatusT) error {
	log.Tracef("StatusSetter SetStatus: %v %v", recordID, status)

	switch status {
	case StatusApproved, StatusRejected:
		// These are allowed
	default:
		return gov.UserError{
			ErrorCode: gov.ErrorCodeInvalidStatus,
			ErrorContext: fmt.Sprintf("%v not a review outcome",
				status),
		}
	}

	p.r.Lock()
	defer p.r.Unlock()

	return p.r.setStatus(recordID, status)
}

// StatusPort returns the write-back port that the compliance review
// component uses to record review outcomes.
func (r *Registry) StatusPort() StatusSetter {
	return statusPort{r: r}
}

// CreateBatch creates a new batch from the provided registry IDs.
// Administrator only. Every member must currently be approved and unbatched;
// if any member fails the check the whole call fails and no member is
// modified. The batch holds the exact input order and is immutable once
// created.
func (r *Registry) CreateBatch(caller gov.Identity, recordIDs []uint64) (*Batch, error) {
	log.Tracef("CreateBatch: %v %v", caller, recordIDs)

	r.Lock()
	defer r.Unlock()

	if !r.caps.Has(caller, gov.CapabilityAdmin) {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}
	if len(recordIDs) == 0 {
		return nil, gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidStatus,
			ErrorContext: "batch is empty",
		}
	}

	// Check every member before committing anything. A partial batch
	// must never be persisted.
	for _, id := range recordIDs {
		rec, ok := r.records[id]
		if !ok {
			return nil, gov.UserError{
				ErrorCode:    gov.ErrorCodeProposalNotFound,
				ErrorContext: fmt.Sprintf("record %v", id),
			}
		}
		if rec.BatchID != 0 {
			return nil, gov.UserError{
				ErrorCode: gov.ErrorCodeAlreadyBatched,
				ErrorContext: fmt.Sprintf("record %v in batch %v",
					id, rec.BatchID),
			}
		}
		if rec.Status != StatusApproved {
			return nil, gov.UserError{
				ErrorCode: gov.ErrorCodeInvalidStatus,
				ErrorContext: fmt.Sprintf("record %v is %v, not %v",
					id, Statuses[rec.Status],
					Statuses[StatusApproved]),
			}
		}
	}

	// Commit. All members are flipped to batched and the batch record
	// is created in one save.
	batchID := r.nextBatchID
	b := Batch{
		ID:        batchID,
		Records:   append([]uint64(nil), recordIDs...),
		Timestamp: time.Now().Unix(),
	}
	for _, id := range recordIDs {
		rec := r.records[id]
		rec.Status = StatusBatched
		rec.BatchID = batchID
	}
	r.batches[batchID] = &b
	r.nextBatchID++

	err := r.save()
	if err != nil {
		for _, id := range recordIDs {
			rec := r.records[id]
			rec.Status = StatusApproved
			rec.BatchID = 0
		}
		delete(r.batches, batchID)
		r.nextBatchID--
		return nil, err
	}

	log.Infof("Batch created: %v with %v records", batchID, len(recordIDs))

	r.events.Emit(EventTypeBatch, EventBatch{Batch: b})

	bc := b
	return &bc, nil
}

// ExecuteBatch marks the members of a batch as executed. Executor only.
// Members that are not currently in the batched status are left untouched
// rather than erroring, which makes this call idempotent per member.
func (r *Registry) ExecuteBatch(caller gov.Identity, batchID uint64) error {
	log.Tracef("ExecuteBatch: %v %v", caller, batchID)

	r.Lock()
	defer r.Unlock()

	if !r.caps.Has(caller, gov.CapabilityExecutor) {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeUnauthorized,
			ErrorContext: "caller is not an executor",
		}
	}
	b, ok := r.batches[batchID]
	if !ok {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeProposalNotFound,
			ErrorContext: fmt.Sprintf("batch %v", batchID),
		}
	}

	executed := make([]uint64, 0, len(b.Records))
	for _, id := range b.Records {
		rec, ok := r.records[id]
		if !ok || rec.Status != StatusBatched {
			// Defensive: skip members that are not batched.
			continue
		}
		rec.Status = StatusExecuted
		executed = append(executed, id)
	}

	err := r.save()
	if err != nil {
		for _, id := range executed {
			r.records[id].Status = StatusBatched
		}
		return err
	}

	log.Infof("Batch executed: %v (%v records)", batchID, len(executed))

	r.events.Emit(EventTypeBatchExecute, EventBatchExecute{
		Batch:    *b,
		Executed: executed,
	})

	return nil
}

// CapGrant grants a capability on the registry component. Administrator
// only.
func (r *Registry) CapGrant(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapGrant: %v %v %v", caller, id, cap)

	r.Lock()
	defer r.Unlock()

	if !r.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := r.caps.Has(id, cap)
	r.caps.Grant(id, cap)
	err := r.save()
	if err != nil {
		if !had {
			r.caps.Revoke(id, cap)
		}
		return err
	}

	r.events.Emit(EventTypeCapGrant, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}

// CapRevoke revokes a capability on the registry component. Administrator
// only.
func (r *Registry) CapRevoke(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapRevoke: %v %v %v", caller, id, cap)

	r.Lock()
	defer r.Unlock()

	if !r.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := r.caps.Has(id, cap)
	r.caps.Revoke(id, cap)
	err := r.save()
	if err != nil {
		if had {
			r.caps.Grant(id, cap)
		}
		return err
	}

	r.events.Emit(EventTypeCapRevoke, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}
