// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import "github.com/amanahdao/amanah/gov"

const (
	// EventTypeRegister is emitted when a community proposal is
	// registered.
	EventTypeRegister = "registry-register"

	// EventTypeSetStatus is emitted when a record status is updated,
	// either administratively or through the compliance write-back
	// port.
	EventTypeSetStatus = "registry-setstatus"

	// EventTypeBatch is emitted when a batch is created.
	EventTypeBatch = "registry-batch"

	// EventTypeBatchExecute is emitted when a batch is executed.
	EventTypeBatchExecute = "registry-batchexecute"

	// EventTypeCapGrant is emitted when a capability is granted.
	EventTypeCapGrant = "registry-capgrant"

	// EventTypeCapRevoke is emitted when a capability is revoked.
	EventTypeCapRevoke = "registry-caprevoke"
)

// EventRegister is the event data for the EventTypeRegister.
type EventRegister struct {
	Record Record
}

// EventSetStatus is the event data for the EventTypeSetStatus.
type EventSetStatus struct {
	Record Record
	Prev   StatusT
}

// EventBatch is the event data for the EventTypeBatch.
type EventBatch struct {
	Batch Batch
}

// EventBatchExecute is the event data for the EventTypeBatchExecute.
type EventBatchExecute struct {
	Batch Batch

	// Executed contains the registry IDs that transitioned to the
	// executed status during this call. Members that were not in the
	// batched status are skipped, which makes batch execution
	// idempotent per member.
	Executed []uint64
}

// EventCapGrant is the event data for the EventTypeCapGrant and the
// EventTypeCapRevoke.
type EventCapGrant struct {
	Identity   gov.Identity
	Capability gov.Capability
}
