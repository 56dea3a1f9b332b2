// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"fmt"
	"sort"

	"github.com/amanahdao/amanah/gov"
)

// Record returns a registry record.
func (r *Registry) Record(recordID uint64) (*Record, error) {
	log.Tracef("Record: %v", recordID)

	r.Lock()
	defer r.Unlock()

	rec, ok := r.records[recordID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	rc := *rec
	return &rc, nil
}

// RecordByCommunity returns the registry record for a community proposal ID.
// If the community proposal has been registered more than once, the most
// recent registration is returned.
func (r *Registry) RecordByCommunity(communityID uint64) (*Record, error) {
	log.Tracef("RecordByCommunity: %v", communityID)

	r.Lock()
	defer r.Unlock()

	id, ok := r.byCommunity[communityID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
			ErrorContext: fmt.Sprintf("community proposal %v not registered",
				communityID),
		}
	}
	rc := *r.records[id]
	return &rc, nil
}

// Batch returns a batch.
func (r *Registry) Batch(batchID uint64) (*Batch, error) {
	log.Tracef("Batch: %v", batchID)

	r.Lock()
	defer r.Unlock()

	b, ok := r.batches[batchID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode:    gov.ErrorCodeProposalNotFound,
			ErrorContext: fmt.Sprintf("batch %v", batchID),
		}
	}
	bc := *b
	return &bc, nil
}

// Inventory returns the registry record IDs categorized by status, sorted
// from smallest ID to largest.
func (r *Registry) Inventory() map[StatusT][]uint64 {
	log.Tracef("Inventory")

	r.Lock()
	defer r.Unlock()

	inv := make(map[StatusT][]uint64)
	for id, rec := range r.records {
		inv[rec.Status] = append(inv[rec.Status], id)
	}
	for _, ids := range inv {
		sort.Slice(ids, func(i, j int) bool {
			return ids[i] < ids[j]
		})
	}
	return inv
}

// CapHolders returns the identities that hold the provided capability on the
// registry component.
func (r *Registry) CapHolders(cap gov.Capability) []gov.Identity {
	r.Lock()
	defer r.Unlock()

	return r.caps.Holders(cap)
}
