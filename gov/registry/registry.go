// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry implements the registration and batching stage of the
// decision pipeline. Finalized community proposals are re-keyed into
// registry records, the compliance council drives the record statuses
// through an explicit write-back port, and approved records are grouped into
// immutable batches for execution.
package registry

import (
	"encoding/json"
	"sync"

	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/governance"
	"github.com/amanahdao/amanah/store"
	"github.com/pkg/errors"
)

// StatusT represents the registry-local status of a registered proposal.
// This lifecycle is distinct from the community proposal status.
type StatusT uint32

const (
	// StatusInvalid is an invalid registry status.
	StatusInvalid StatusT = 0

	// StatusRegistered indicates the proposal has been registered but
	// not yet reviewed.
	StatusRegistered StatusT = 1

	// StatusUnderReview indicates a compliance review is in progress.
	StatusUnderReview StatusT = 2

	// StatusApproved indicates the compliance council approved the
	// proposal. Only approved records can be batched.
	StatusApproved StatusT = 3

	// StatusRejected indicates the compliance council rejected or
	// vetoed the proposal.
	StatusRejected StatusT = 4

	// StatusBatched indicates the record has been assigned to a batch.
	// The batch assignment is immutable.
	StatusBatched StatusT = 5

	// StatusExecuted indicates the record's batch has been executed.
	StatusExecuted StatusT = 6

	// StatusLast is used for unit test validation of human readable
	// statuses.
	StatusLast StatusT = 7
)

var (
	// Statuses contains the human readable registry statuses.
	Statuses = map[StatusT]string{
		StatusInvalid:     "invalid",
		StatusRegistered:  "registered",
		StatusUnderReview: "under review",
		StatusApproved:    "approved",
		StatusRejected:    "rejected",
		StatusBatched:     "batched",
		StatusExecuted:    "executed",
	}
)

// Record is a registry-local record of a community proposal.
type Record struct {
	ID          uint64       `json:"id"`          // Registry identifier
	CommunityID uint64       `json:"communityid"` // Community proposal back-reference
	Proposer    gov.Identity `json:"proposer"`    // Copied at registration time
	Status      StatusT      `json:"status"`      // Registry-local status
	BatchID     uint64       `json:"batchid"`     // 0 = unbatched; immutable once set
	Payload     []byte       `json:"payload"`     // Opaque action payload
	Timestamp   int64        `json:"timestamp"`   // Registration UNIX timestamp
}

// Batch is an immutable, ordered group of approved registry records that is
// queued for joint execution.
type Batch struct {
	ID        uint64   `json:"id"`
	Records   []uint64 `json:"records"` // Registry IDs, creation order
	Timestamp int64    `json:"timestamp"`
}

// ProposalSource provides read access to the community proposals that get
// registered. The community governance component satisfies this interface.
type ProposalSource interface {
	// Proposal returns the community proposal.
	Proposal(proposalID uint64) (*governance.Proposal, error)
}

// StatusSetter is the write-back port that the registry exposes to the
// compliance review component. Possession of the port is the authorization;
// the port only allows the approve/reject outcomes that a review can
// produce.
type StatusSetter interface {
	// SetStatus sets the status of a registry record to approved or
	// rejected.
	SetStatus(recordID uint64, status StatusT) error
}

// Registry provides the proposal registry API. All exported methods are safe
// for concurrent access and are all-or-nothing: a method that returns an
// error has not modified any state.
type Registry struct {
	sync.Mutex
	source ProposalSource
	events *events.Manager
	db     store.BlobKV

	caps        *gov.Caps
	records     map[uint64]*Record
	byCommunity map[uint64]uint64 // [communityID]registryID
	batches     map[uint64]*Batch
	nextID      uint64
	nextBatchID uint64
}

// dbKey is the store key that the registry state is saved under.
const dbKey = "registry-v1"

// state is the registry state that gets persisted to the store.
type state struct {
	Caps        *gov.Caps          `json:"caps"`
	Records     map[uint64]*Record `json:"records"`
	ByCommunity map[uint64]uint64  `json:"bycommunity"`
	Batches     map[uint64]*Batch  `json:"batches"`
	NextID      uint64             `json:"nextid"`
	NextBatchID uint64             `json:"nextbatchid"`
}

// save persists the full registry state to the store.
//
// This function must be called WITH the lock held.
func (r *Registry) save() error {
	s := state{
		Caps:        r.caps,
		Records:     r.records,
		ByCommunity: r.byCommunity,
		Batches:     r.batches,
		NextID:      r.nextID,
		NextBatchID: r.nextBatchID,
	}
	b, err := json.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	return r.db.Put(map[string][]byte{dbKey: b}, false)
}

// New returns a new Registry. Any previously saved state is loaded from the
// provided store. The admins are granted the admin capability and the
// executors the executor capability on first startup.
func New(source ProposalSource, ev *events.Manager, db store.BlobKV, admins, executors []gov.Identity) (*Registry, error) {
	r := Registry{
		source:      source,
		events:      ev,
		db:          db,
		caps:        gov.NewCaps(),
		records:     make(map[uint64]*Record),
		byCommunity: make(map[uint64]uint64),
		batches:     make(map[uint64]*Batch),
		nextID:      1,
		nextBatchID: 1,
	}

	blobs, err := db.Get([]string{dbKey})
	if err != nil {
		return nil, err
	}
	if b, ok := blobs[dbKey]; ok {
		var s state
		err = json.Unmarshal(b, &s)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		r.caps = s.Caps
		r.records = s.Records
		r.byCommunity = s.ByCommunity
		r.batches = s.Batches
		r.nextID = s.NextID
		r.nextBatchID = s.NextBatchID

		log.Infof("Registry state loaded: %v records, %v batches",
			len(r.records), len(r.batches))

		return &r, nil
	}

	// Fresh start. Seed the initial capability grants.
	for _, id := range admins {
		r.caps.Grant(id, gov.CapabilityAdmin)
	}
	for _, id := range executors {
		r.caps.Grant(id, gov.CapabilityExecutor)
	}
	err = r.save()
	if err != nil {
		return nil, err
	}

	return &r, nil
}
