// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package multisig

import (
	"fmt"
	"time"

	"github.com/amanahdao/amanah/gov"
)

// Submit queues a new transaction with zero confirmations. Signer only.
func (m *Multisig) Submit(caller gov.Identity, target string, value uint64, payload []byte) (*Transaction, error) {
	log.Tracef("Submit: %v %v %v", caller, target, value)

	m.Lock()
	defer m.Unlock()

	if !m.isSigner[caller] {
		return nil, gov.UserError{
			ErrorCode:    gov.ErrorCodeUnauthorized,
			ErrorContext: "caller is not a signer",
		}
	}

	tx := Transaction{
		ID:          uint64(len(m.txs)),
		Target:      target,
		Value:       value,
		Payload:     payload,
		ConfirmedBy: make(map[gov.Identity]bool),
		SubmittedBy: caller,
		Timestamp:   time.Now().Unix(),
	}

	m.txs = append(m.txs, &tx)
	err := m.save()
	if err != nil {
		m.txs = m.txs[:len(m.txs)-1]
		return nil, err
	}

	log.Infof("Transaction submitted: %v to %v by %v",
		tx.ID, target, caller)

	txc := copyTx(&tx)
	m.events.Emit(EventTypeSubmit, EventSubmit{Tx: txc})

	return &txc, nil
}

// tx returns the transaction for the provided ID.
//
// This function must be called WITH the lock held.
func (m *Multisig) tx(txID uint64) (*Transaction, error) {
	if txID >= uint64(len(m.txs)) {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeTransactionNotFound,
		}
	}
	return m.txs[txID], nil
}

// Confirm adds the caller's confirmation to a transaction. Signer only.
func (m *Multisig) Confirm(caller gov.Identity, txID uint64) error {
	log.Tracef("Confirm: %v %v", caller, txID)

	m.Lock()
	defer m.Unlock()

	if !m.isSigner[caller] {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeUnauthorized,
			ErrorContext: "caller is not a signer",
		}
	}
	tx, err := m.tx(txID)
	if err != nil {
		return err
	}
	if tx.Executed {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeAlreadyExecuted,
		}
	}
	if tx.ConfirmedBy[caller] {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeAlreadyConfirmed,
		}
	}

	tx.ConfirmedBy[caller] = true
	tx.Confirmations++
	err = m.save()
	if err != nil {
		delete(tx.ConfirmedBy, caller)
		tx.Confirmations--
		return err
	}

	log.Debugf("Transaction %v confirmed by %v (%v/%v)",
		txID, caller, tx.Confirmations, m.threshold)

	m.events.Emit(EventTypeConfirm, EventConfirm{
		Tx:     copyTx(tx),
		Signer: caller,
	})

	return nil
}

// Revoke removes the caller's confirmation from a transaction. Signer only.
func (m *Multisig) Revoke(caller gov.Identity, txID uint64) error {
	log.Tracef("Revoke: %v %v", caller, txID)

	m.Lock()
	defer m.Unlock()

	if !m.isSigner[caller] {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeUnauthorized,
			ErrorContext: "caller is not a signer",
		}
	}
	tx, err := m.tx(txID)
	if err != nil {
		return err
	}
	if tx.Executed {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeAlreadyExecuted,
		}
	}
	if !tx.ConfirmedBy[caller] {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotConfirmed,
		}
	}

	delete(tx.ConfirmedBy, caller)
	tx.Confirmations--
	err = m.save()
	if err != nil {
		tx.ConfirmedBy[caller] = true
		tx.Confirmations++
		return err
	}

	log.Debugf("Transaction %v confirmation revoked by %v (%v/%v)",
		txID, caller, tx.Confirmations, m.threshold)

	m.events.Emit(EventTypeRevoke, EventConfirm{
		Tx:     copyTx(tx),
		Signer: caller,
	})

	return nil
}

// Execute carries out a transaction whose confirmation count has met the
// threshold. Execution is not signer restricted; anyone may trigger it once
// the threshold is met.
//
// The executed mark is set and persisted before the external call is made
// (effects before callout), so a re-entrant execute fails with an
// already-executed error. If the external call reports failure, the mark is
// rolled back and an execution-failed error returned.
func (m *Multisig) Execute(caller gov.Identity, txID uint64) error {
	log.Tracef("Execute: %v %v", caller, txID)

	m.Lock()
	tx, err := m.tx(txID)
	if err != nil {
		m.Unlock()
		return err
	}
	if tx.Executed {
		m.Unlock()
		return gov.UserError{
			ErrorCode: gov.ErrorCodeAlreadyExecuted,
		}
	}
	if tx.Confirmations < m.threshold {
		m.Unlock()
		return gov.UserError{
			ErrorCode: gov.ErrorCodeInsufficientConfirmations,
			ErrorContext: fmt.Sprintf("%v of %v",
				tx.Confirmations, m.threshold),
		}
	}

	// Mark the transaction executed before making the external call.
	tx.Executed = true
	err = m.save()
	if err != nil {
		tx.Executed = false
		m.Unlock()
		return err
	}
	txc := copyTx(tx)

	// The lock is released for the duration of the external call. The
	// persisted executed mark guards against re-entrant execution.
	m.Unlock()

	callErr := m.caller.Call(txc.Target, txc.Value, txc.Payload)
	if callErr != nil {
		// The downstream call failed. Roll the executed mark back
		// and surface the failure.
		m.Lock()
		tx.Executed = false
		err = m.save()
		m.Unlock()
		if err != nil {
			log.Errorf("Execute %v: rollback failed: %v", txID, err)
		}
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeExecutionFailed,
			ErrorContext: callErr.Error(),
		}
	}

	log.Infof("Transaction executed: %v to %v value %v",
		txID, txc.Target, txc.Value)

	m.events.Emit(EventTypeExecute, EventExecute{
		Tx:         txc,
		ExecutedBy: caller,
	})

	return nil
}

// SignerAdd adds a signer. Administrator only.
func (m *Multisig) SignerAdd(caller, signer gov.Identity) error {
	log.Tracef("SignerAdd: %v %v", caller, signer)

	m.Lock()
	defer m.Unlock()

	if !m.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}
	if signer == gov.IdentityZero {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidSigner,
			ErrorContext: "zero identity signer",
		}
	}
	if m.isSigner[signer] {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidSigner,
			ErrorContext: fmt.Sprintf("duplicate signer %v", signer),
		}
	}

	m.signers = append(m.signers, signer)
	m.isSigner[signer] = true
	err := m.save()
	if err != nil {
		m.signers = m.signers[:len(m.signers)-1]
		delete(m.isSigner, signer)
		return err
	}

	log.Infof("Signer added: %v", signer)

	m.events.Emit(EventTypeSignerAdd, EventSigner{Signer: signer})

	return nil
}

// SignerRemove removes a signer. Administrator only. Removal fails if it
// would drop the signer count below the current threshold.
func (m *Multisig) SignerRemove(caller, signer gov.Identity) error {
	log.Tracef("SignerRemove: %v %v", caller, signer)

	m.Lock()
	defer m.Unlock()

	if !m.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}
	if !m.isSigner[signer] {
		return gov.UserError{
			ErrorCode:    gov.ErrorCodeInvalidSigner,
			ErrorContext: fmt.Sprintf("%v is not a signer", signer),
		}
	}
	if uint32(len(m.signers)-1) < m.threshold {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeInvalidThreshold,
			ErrorContext: fmt.Sprintf("removal would leave %v signers "+
				"below threshold %v", len(m.signers)-1, m.threshold),
		}
	}

	prev := append([]gov.Identity(nil), m.signers...)
	for i, s := range m.signers {
		if s != signer {
			continue
		}
		m.signers = append(m.signers[:i], m.signers[i+1:]...)
		break
	}
	delete(m.isSigner, signer)
	err := m.save()
	if err != nil {
		m.signers = prev
		m.isSigner[signer] = true
		return err
	}

	log.Infof("Signer removed: %v", signer)

	m.events.Emit(EventTypeSignerRemove, EventSigner{Signer: signer})

	return nil
}

// ThresholdUpdate updates the confirmation threshold. Administrator only.
// The new threshold must be within [1, signer count].
func (m *Multisig) ThresholdUpdate(caller gov.Identity, threshold uint32) error {
	log.Tracef("ThresholdUpdate: %v %v", caller, threshold)

	m.Lock()
	defer m.Unlock()

	if !m.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}
	if threshold < 1 || threshold > uint32(len(m.signers)) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeInvalidThreshold,
			ErrorContext: fmt.Sprintf("threshold %v, %v signers",
				threshold, len(m.signers)),
		}
	}

	prev := m.threshold
	m.threshold = threshold
	err := m.save()
	if err != nil {
		m.threshold = prev
		return err
	}

	log.Infof("Threshold updated: %v", threshold)

	m.events.Emit(EventTypeThreshold, EventThreshold{Threshold: threshold})

	return nil
}

// CapGrant grants a capability on the multisig component. Administrator
// only.
func (m *Multisig) CapGrant(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapGrant: %v %v %v", caller, id, cap)

	m.Lock()
	defer m.Unlock()

	if !m.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := m.caps.Has(id, cap)
	m.caps.Grant(id, cap)
	err := m.save()
	if err != nil {
		if !had {
			m.caps.Revoke(id, cap)
		}
		return err
	}

	m.events.Emit(EventTypeCapGrant, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}

// CapRevoke revokes a capability on the multisig component. Administrator
// only.
func (m *Multisig) CapRevoke(caller, id gov.Identity, cap gov.Capability) error {
	log.Tracef("CapRevoke: %v %v %v", caller, id, cap)

	m.Lock()
	defer m.Unlock()

	if !m.caps.Has(caller, gov.CapabilityAdmin) {
		return gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		}
	}

	had := m.caps.Has(id, cap)
	m.caps.Revoke(id, cap)
	err := m.save()
	if err != nil {
		if had {
			m.caps.Grant(id, cap)
		}
		return err
	}

	m.events.Emit(EventTypeCapRevoke, EventCapGrant{
		Identity:   id,
		Capability: cap,
	})

	return nil
}
