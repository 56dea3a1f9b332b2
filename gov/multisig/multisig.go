// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package multisig implements the threshold-signature execution authority of
// the decision pipeline. It is a general purpose M-of-N transaction queue:
// it knows nothing about proposals or batches, it just queues transactions
// against external targets and carries them out once enough signers have
// confirmed.
package multisig

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/store"
	"github.com/pkg/errors"
)

// Caller carries out an executed transaction against its external target,
// e.g. the treasury or the fundraising manager. The pipeline does not define
// the targets; it only requires that a call either succeeds or reports
// failure.
type Caller interface {
	// Call performs the external call.
	Call(target string, value uint64, payload []byte) error
}

// Transaction is a queued transaction. The ID is the transaction's index in
// the queue and is assigned monotonically.
type Transaction struct {
	ID            uint64                `json:"id"`
	Target        string                `json:"target"`  // External target address
	Value         uint64                `json:"value"`   // Amount to transfer
	Payload       []byte                `json:"payload"` // Opaque call payload
	Executed      bool                  `json:"executed"`
	Confirmations uint32                `json:"confirmations"`
	ConfirmedBy   map[gov.Identity]bool `json:"confirmedby"` // Per-signer confirmation set
	SubmittedBy   gov.Identity          `json:"submittedby"`
	Timestamp     int64                 `json:"timestamp"` // Submission UNIX timestamp
}

// Multisig provides the threshold execution API. All exported methods are
// safe for concurrent access and are all-or-nothing: a method that returns
// an error has not modified any state.
//
// Execution follows an effects-before-callout discipline: a transaction is
// marked executed and the mark is persisted before the external call is
// made, so a re-entrant execute observes the already-updated state and fails
// with an already-executed error. If the external call reports failure, the
// mark is rolled back and the failure surfaced.
type Multisig struct {
	sync.Mutex
	caller Caller
	events *events.Manager
	db     store.BlobKV

	caps      *gov.Caps
	signers   []gov.Identity
	isSigner  map[gov.Identity]bool
	threshold uint32
	txs       []*Transaction
}

// dbKey is the store key that the multisig state is saved under.
const dbKey = "multisig-v1"

// state is the multisig state that gets persisted to the store.
type state struct {
	Caps      *gov.Caps      `json:"caps"`
	Signers   []gov.Identity `json:"signers"`
	Threshold uint32         `json:"threshold"`
	Txs       []*Transaction `json:"txs"`
}

// save persists the full multisig state to the store.
//
// This function must be called WITH the lock held.
func (m *Multisig) save() error {
	s := state{
		Caps:      m.caps,
		Signers:   m.signers,
		Threshold: m.threshold,
		Txs:       m.txs,
	}
	b, err := json.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	return m.db.Put(map[string][]byte{dbKey: b}, false)
}

// verifySignerSet verifies that the signer set contains no zero identities
// and no duplicates, and that the threshold is within [1, signer count].
func verifySignerSet(signers []gov.Identity, threshold uint32) error {
	seen := make(map[gov.Identity]struct{}, len(signers))
	for _, s := range signers {
		if s == gov.IdentityZero {
			return gov.UserError{
				ErrorCode:    gov.ErrorCodeInvalidSigner,
				ErrorContext: "zero identity signer",
			}
		}
		if _, ok := seen[s]; ok {
			return gov.UserError{
				ErrorCode:    gov.ErrorCodeInvalidSigner,
				ErrorContext: fmt.Sprintf("duplicate signer %v", s),
			}
		}
		seen[s] = struct{}{}
	}
	if threshold < 1 || threshold > uint32(len(signers)) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeInvalidThreshold,
			ErrorContext: fmt.Sprintf("threshold %v, %v signers",
				threshold, len(signers)),
		}
	}
	return nil
}

// New returns a new Multisig with the provided signer set and confirmation
// threshold. Any previously saved state is loaded from the provided store
// and wins over the provided arguments.
func New(caller Caller, ev *events.Manager, db store.BlobKV, signers []gov.Identity, threshold uint32, admins []gov.Identity) (*Multisig, error) {
	m := Multisig{
		caller:   caller,
		events:   ev,
		db:       db,
		caps:     gov.NewCaps(),
		isSigner: make(map[gov.Identity]bool),
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
		m.caps = s.Caps
		m.signers = s.Signers
		m.threshold = s.Threshold
		m.txs = s.Txs
		for _, id := range m.signers {
			m.isSigner[id] = true
		}

		log.Infof("Multisig state loaded: %v signers, threshold %v, "+
			"%v transactions", len(m.signers), m.threshold, len(m.txs))

		return &m, nil
	}

	// Fresh start. Verify and seed the signer set.
	err = verifySignerSet(signers, threshold)
	if err != nil {
		return nil, err
	}
	m.signers = append([]gov.Identity(nil), signers...)
	m.threshold = threshold
	for _, id := range m.signers {
		m.isSigner[id] = true
	}
	for _, id := range admins {
		m.caps.Grant(id, gov.CapabilityAdmin)
	}
	err = m.save()
	if err != nil {
		return nil, err
	}

	return &m, nil
}
