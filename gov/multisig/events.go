// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package multisig

import "github.com/amanahdao/amanah/gov"

const (
	// EventTypeSubmit is emitted when a transaction is submitted.
	EventTypeSubmit = "multisig-submit"

	// EventTypeConfirm is emitted when a signer confirms a
	// transaction.
	EventTypeConfirm = "multisig-confirm"

	// EventTypeRevoke is emitted when a signer revokes a confirmation.
	EventTypeRevoke = "multisig-revoke"

	// EventTypeExecute is emitted when a transaction is executed.
	EventTypeExecute = "multisig-execute"

	// EventTypeSignerAdd is emitted when a signer is added.
	EventTypeSignerAdd = "multisig-signeradd"

	// EventTypeSignerRemove is emitted when a signer is removed.
	EventTypeSignerRemove = "multisig-signerremove"

	// EventTypeThreshold is emitted when the confirmation threshold is
	// updated.
	EventTypeThreshold = "multisig-threshold"

	// EventTypeCapGrant is emitted when a capability is granted.
	EventTypeCapGrant = "multisig-capgrant"

	// EventTypeCapRevoke is emitted when a capability is revoked.
	EventTypeCapRevoke = "multisig-caprevoke"
)

// EventSubmit is the event data for the EventTypeSubmit.
type EventSubmit struct {
	Tx Transaction
}

// EventConfirm is the event data for the EventTypeConfirm and the
// EventTypeRevoke.
type EventConfirm struct {
	Tx     Transaction
	Signer gov.Identity
}

// EventExecute is the event data for the EventTypeExecute.
type EventExecute struct {
	Tx         Transaction
	ExecutedBy gov.Identity
}

// EventSigner is the event data for the EventTypeSignerAdd and the
// EventTypeSignerRemove.
type EventSigner struct {
	Signer gov.Identity
}

// EventThreshold is the event data for the EventTypeThreshold.
type EventThreshold struct {
	Threshold uint32
}

// EventCapGrant is the event data for the EventTypeCapGrant and the
// EventTypeCapRevoke.
type EventCapGrant struct {
	Identity   gov.Identity
	Capability gov.Capability
}
