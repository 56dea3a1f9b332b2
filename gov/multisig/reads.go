// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package multisig

import (
	"github.com/amanahdao/amanah/gov"
)

// copyTx returns a deep copy of a transaction.
func copyTx(tx *Transaction) Transaction {
	txc := *tx
	txc.ConfirmedBy = make(map[gov.Identity]bool, len(tx.ConfirmedBy))
	for k, v := range tx.ConfirmedBy {
		txc.ConfirmedBy[k] = v
	}
	txc.Payload = append([]byte(nil), tx.Payload...)
	return txc
}

// Transaction returns a transaction.
func (m *Multisig) Transaction(txID uint64) (*Transaction, error) {
	log.Tracef("Transaction: %v", txID)

	m.Lock()
	defer m.Unlock()

	tx, err := m.tx(txID)
	if err != nil {
		return nil, err
	}
	txc := copyTx(tx)
	return &txc, nil
}

// Transactions returns all queued transactions in submission order.
func (m *Multisig) Transactions() []Transaction {
	log.Tracef("Transactions")

	m.Lock()
	defer m.Unlock()

	txs := make([]Transaction, 0, len(m.txs))
	for _, tx := range m.txs {
		txs = append(txs, copyTx(tx))
	}
	return txs
}

// Signers returns the current signer set in addition order.
func (m *Multisig) Signers() []gov.Identity {
	m.Lock()
	defer m.Unlock()

	return append([]gov.Identity(nil), m.signers...)
}

// Threshold returns the current confirmation threshold.
func (m *Multisig) Threshold() uint32 {
	m.Lock()
	defer m.Unlock()

	return m.threshold
}

// CapHolders returns the identities that hold the provided capability on the
// multisig component.
func (m *Multisig) CapHolders(cap gov.Capability) []gov.Identity {
	m.Lock()
	defer m.Unlock()

	return m.caps.Holders(cap)
}
