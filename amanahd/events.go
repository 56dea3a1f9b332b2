// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov/compliance"
	"github.com/amanahdao/amanah/gov/governance"
	"github.com/amanahdao/amanah/gov/multisig"
	"github.com/amanahdao/amanah/gov/registry"
	"github.com/davecgh/go-spew/spew"
)

// proposerReward is the reputation weight credited to the proposer when
// their proposal is marked executed.
const proposerReward = 10

// setupEventListeners registers a listener for every pipeline event type.
// Each emitted event is logged with its UUID; the event log is the audit
// trail of the pipeline.
func (d *amanahd) setupEventListeners() {
	eventTypes := []string{
		governance.EventTypeNew,
		governance.EventTypeVote,
		governance.EventTypeCancel,
		governance.EventTypeExecute,
		governance.EventTypeParams,
		governance.EventTypeCapGrant,
		governance.EventTypeCapRevoke,
		registry.EventTypeRegister,
		registry.EventTypeSetStatus,
		registry.EventTypeBatch,
		registry.EventTypeBatchExecute,
		registry.EventTypeCapGrant,
		registry.EventTypeCapRevoke,
		compliance.EventTypeReview,
		compliance.EventTypeVeto,
		compliance.EventTypeCouncilAdd,
		compliance.EventTypeCouncilRemove,
		compliance.EventTypeCapGrant,
		compliance.EventTypeCapRevoke,
		multisig.EventTypeSubmit,
		multisig.EventTypeConfirm,
		multisig.EventTypeRevoke,
		multisig.EventTypeExecute,
		multisig.EventTypeSignerAdd,
		multisig.EventTypeSignerRemove,
		multisig.EventTypeThreshold,
		multisig.EventTypeCapGrant,
		multisig.EventTypeCapRevoke,
	}

	ch := make(chan events.Record, 64)
	for _, t := range eventTypes {
		d.events.Register(t, ch)
	}

	go d.handleEvents(ch)
}

// handleEvents processes emitted pipeline events.
func (d *amanahd) handleEvents(ch chan events.Record) {
	for r := range ch {
		log.Infof("Event %v %v", r.Type, r.ID)
		log.Debugf("Event data: %v", newLogClosure(func() string {
			return spew.Sdump(r.Data)
		}))

		if r.Type == governance.EventTypeExecute {
			e, ok := r.Data.(governance.EventExecute)
			if !ok {
				log.Errorf("handleEvents: invalid %v payload",
					r.Type)
				continue
			}
			// Credit the proposer for a decision that made it all
			// the way through.
			d.ledger.AddWeight(e.Proposal.Proposer, proposerReward)
			log.Infof("Proposer %v credited %v reputation for "+
				"proposal %v", e.Proposal.Proposer,
				proposerReward, e.Proposal.ID)
		}
	}
}
