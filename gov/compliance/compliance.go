// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package compliance implements the council review overlay of the decision
// pipeline. A council member records one approval/rejection/veto decision
// per registry record, each decision carrying an opaque proof commitment and
// a justification reference, and the outcome is written back into the
// proposal registry through an explicit port.
//
// The proof commitment shields the reasoning behind the decision: only a
// fixed-size commitment is recorded here, and real verification of the
// underlying proof is performed off-core by an external verifier. This
// package only rejects the zero commitment.
package compliance

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/registry"
	"github.com/amanahdao/amanah/store"
	"github.com/pkg/errors"
)

// StatusT represents the decision status of a review.
type StatusT uint32

const (
	// StatusInvalid is an invalid review status.
	StatusInvalid StatusT = 0

	// StatusPending indicates a review has been opened but no decision
	// has been made.
	StatusPending StatusT = 1

	// StatusUnderReview indicates the council is actively reviewing.
	StatusUnderReview StatusT = 2

	// StatusApproved indicates the council approved the proposal.
	StatusApproved StatusT = 3

	// StatusRejected indicates the council rejected the proposal.
	StatusRejected StatusT = 4

	// StatusVetoed indicates an administrator vetoed the proposal. A
	// veto is the only decision that may overwrite an existing review.
	StatusVetoed StatusT = 5

	// StatusLast is used for unit test validation of human readable
	// statuses.
	StatusLast StatusT = 6
)

var (
	// Statuses contains the human readable review statuses.
	Statuses = map[StatusT]string{
		StatusInvalid:     "invalid",
		StatusPending:     "pending",
		StatusUnderReview: "under review",
		StatusApproved:    "approved",
		StatusRejected:    "rejected",
		StatusVetoed:      "vetoed",
	}
)

const (
	// ProofSize is the size in bytes of a proof commitment.
	ProofSize = 32
)

// Review is a council decision on a registry record. A non-zero timestamp
// means the review has been recorded; recorded reviews can only be
// overwritten by an emergency veto.
type Review struct {
	RecordID      uint64       `json:"recordid"`
	Status        StatusT      `json:"status"`
	Timestamp     int64        `json:"timestamp"`     // Non-zero once recorded
	Proof         string       `json:"proof"`         // Hex encoded commitment, empty on veto
	Justification string       `json:"justification"` // Opaque reference
	ReviewedBy    gov.Identity `json:"reviewedby"`
}

// Compliance provides the compliance review API. All exported methods are
// safe for concurrent access and are all-or-nothing: a method that returns
// an error has not modified any state.
type Compliance struct {
	sync.Mutex
	port   registry.StatusSetter
	events *events.Manager
	db     store.BlobKV

	caps    *gov.Caps
	reviews map[uint64]*Review

	// Council membership is tracked with a membership flag for O(1)
	// duplicate checks plus a backing list. Removal swaps with the
	// last entry and pops; order is not meaningful, only membership.
	members    map[gov.Identity]bool
	memberList []gov.Identity
}

// dbKey is the store key that the compliance state is saved under.
const dbKey = "compliance-v1"

// state is the compliance state that gets persisted to the store. Reviews
// are privacy sensitive, so the blob is encrypted at rest.
type state struct {
	Caps       *gov.Caps             `json:"caps"`
	Reviews    map[uint64]*Review    `json:"reviews"`
	Members    map[gov.Identity]bool `json:"members"`
	MemberList []gov.Identity        `json:"memberlist"`
}

// save persists the full compliance state to the store.
//
// This function must be called WITH the lock held.
func (c *Compliance) save() error {
	s := state{
		Caps:       c.caps,
		Reviews:    c.reviews,
		Members:    c.members,
		MemberList: c.memberList,
	}
	b, err := json.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	return c.db.Put(map[string][]byte{dbKey: b}, true)
}

// New returns a new Compliance. Any previously saved state is loaded from
// the provided store. The admins are granted the admin capability and the
// council members are seated on first startup.
func New(port registry.StatusSetter, ev *events.Manager, db store.BlobKV, admins, council []gov.Identity) (*Compliance, error) {
	c := Compliance{
		port:    port,
		events:  ev,
		db:      db,
		caps:    gov.NewCaps(),
		reviews: make(map[uint64]*Review),
		members: make(map[gov.Identity]bool),
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
		c.caps = s.Caps
		c.reviews = s.Reviews
		c.members = s.Members
		c.memberList = s.MemberList

		log.Infof("Compliance state loaded: %v reviews, %v council members",
			len(c.reviews), len(c.memberList))

		return &c, nil
	}

	// Fresh start. Seed the initial administrators and council.
	for _, id := range admins {
		c.caps.Grant(id, gov.CapabilityAdmin)
	}
	for _, id := range council {
		if c.members[id] {
			continue
		}
		c.members[id] = true
		c.memberList = append(c.memberList, id)
		c.caps.Grant(id, gov.CapabilityCouncil)
	}
	err = c.save()
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// verifyProof verifies a hex encoded proof commitment: it must decode to
// ProofSize bytes and must not be the zero value. Real cryptographic
// verification is explicitly out of scope and must be supplied by an
// external verifier.
func verifyProof(proof string) error {
	b, err := hex.DecodeString(proof)
	if err != nil || len(b) != ProofSize {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidProof,
			ErrorContext: "proof commitment is not a 32 byte hex string",
		}
	}
	var zero [ProofSize]byte
	if bytes.Equal(b, zero[:]) {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidProof,
			ErrorContext: "proof commitment is the zero value",
		}
	}
	return nil
}
