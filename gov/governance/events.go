// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package governance

import "github.com/amanahdao/amanah/gov"

const (
	// EventTypeNew is emitted when a new proposal is submitted.
	EventTypeNew = "governance-new"

	// EventTypeVote is emitted when a vote is cast.
	EventTypeVote = "governance-vote"

	// EventTypeCancel is emitted when a proposal is canceled.
	EventTypeCancel = "governance-cancel"

	// EventTypeExecute is emitted when a proposal is marked executed.
	EventTypeExecute = "governance-execute"

	// EventTypeParams is emitted when the governance parameters are
	// replaced.
	EventTypeParams = "governance-params"

	// EventTypeCapGrant is emitted when a capability is granted.
	EventTypeCapGrant = "governance-capgrant"

	// EventTypeCapRevoke is emitted when a capability is revoked.
	EventTypeCapRevoke = "governance-caprevoke"
)

// EventNew is the event data for the EventTypeNew.
type EventNew struct {
	Proposal Proposal
}

// EventVote is the event data for the EventTypeVote.
type EventVote struct {
	Vote VoteRecord
}

// EventCancel is the event data for the EventTypeCancel.
type EventCancel struct {
	Proposal   Proposal
	CanceledBy gov.Identity
}

// EventExecute is the event data for the EventTypeExecute.
type EventExecute struct {
	Proposal Proposal
}

// EventParams is the event data for the EventTypeParams.
type EventParams struct {
	Params Params
}

// EventCapGrant is the event data for the EventTypeCapGrant and the
// EventTypeCapRevoke.
type EventCapGrant struct {
	Identity   gov.Identity
	Capability gov.Capability
}
