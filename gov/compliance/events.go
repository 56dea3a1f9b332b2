// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compliance

import "github.com/amanahdao/amanah/gov"

const (
	// EventTypeReview is emitted when a review is submitted.
	EventTypeReview = "compliance-review"

	// EventTypeVeto is emitted when an emergency veto is recorded.
	EventTypeVeto = "compliance-veto"

	// EventTypeCouncilAdd is emitted when a council member is seated.
	EventTypeCouncilAdd = "compliance-counciladd"

	// EventTypeCouncilRemove is emitted when a council member is
	// removed.
	EventTypeCouncilRemove = "compliance-councilremove"

	// EventTypeCapGrant is emitted when a capability is granted.
	EventTypeCapGrant = "compliance-capgrant"

	// EventTypeCapRevoke is emitted when a capability is revoked.
	EventTypeCapRevoke = "compliance-caprevoke"
)

// EventReview is the event data for the EventTypeReview.
type EventReview struct {
	Review Review
}

// EventVeto is the event data for the EventTypeVeto.
type EventVeto struct {
	Review Review

	// Overwrote is set when the veto overwrote a previously recorded
	// review.
	Overwrote bool
}

// EventCouncil is the event data for the EventTypeCouncilAdd and the
// EventTypeCouncilRemove.
type EventCouncil struct {
	Member gov.Identity
}

// EventCapGrant is the event data for the EventTypeCapGrant and the
// EventTypeCapRevoke.
type EventCapGrant struct {
	Identity   gov.Identity
	Capability gov.Capability
}
