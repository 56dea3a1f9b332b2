// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package multisig

import (
	"testing"

	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/store"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

const (
	admin    = gov.Identity("admin")
	signerA  = gov.Identity("signer-a")
	signerB  = gov.Identity("signer-b")
	signerC  = gov.Identity("signer-c")
	stranger = gov.Identity("stranger")
)

// testCall is a recorded external call.
type testCall struct {
	target  string
	value   uint64
	payload []byte
}

// testCaller is a Caller that records its calls and fails on demand.
type testCaller struct {
	calls []testCall
	err   error
}

func (c *testCaller) Call(target string, value uint64, payload []byte) error {
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, testCall{
		target:  target,
		value:   value,
		payload: payload,
	})
	return nil
}

type testMultisig struct {
	m      *Multisig
	caller *testCaller
	db     *store.Mem
}

// newTestMultisig returns a 2-of-3 multisig.
func newTestMultisig(t *testing.T) *testMultisig {
	t.Helper()

	var (
		caller = &testCaller{}
		db     = store.NewMem()
	)
	m, err := New(caller, events.NewManager(), db,
		[]gov.Identity{signerA, signerB, signerC}, 2,
		[]gov.Identity{admin})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testMultisig{
		m:      m,
		caller: caller,
		db:     db,
	}
}

// submit queues a transaction as signer A and fails the test on error.
func (tm *testMultisig) submit(t *testing.T) *Transaction {
	t.Helper()

	tx, err := tm.m.Submit(signerA, "treasury", 500, []byte("payload"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return tx
}

func wantUserErr(t *testing.T, err error, code gov.ErrorCodeT) {
	t.Helper()

	var ue gov.UserError
	if !errors.As(err, &ue) {
		t.Fatalf("got error %v, want user error %v",
			err, gov.ErrorCodes[code])
	}
	if ue.ErrorCode != code {
		t.Errorf("got user error %v, want %v",
			gov.ErrorCodes[ue.ErrorCode], gov.ErrorCodes[code])
	}
}

func TestNew(t *testing.T) {
	var (
		ev = events.NewManager()
		ca = &testCaller{}
	)
	tests := []struct {
		name      string
		signers   []gov.Identity
		threshold uint32
		wantErr   gov.ErrorCodeT
	}{
		{"zero identity", []gov.Identity{signerA, gov.IdentityZero}, 1,
			gov.ErrorCodeInvalidSigner},
		{"duplicate signer", []gov.Identity{signerA, signerA}, 1,
			gov.ErrorCodeInvalidSigner},
		{"zero threshold", []gov.Identity{signerA}, 0,
			gov.ErrorCodeInvalidThreshold},
		{"threshold above count", []gov.Identity{signerA}, 2,
			gov.ErrorCodeInvalidThreshold},
		{"no signers", nil, 1,
			gov.ErrorCodeInvalidThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ca, ev, store.NewMem(), tt.signers,
				tt.threshold, nil)
			wantUserErr(t, err, tt.wantErr)
		})
	}
}

func TestSubmit(t *testing.T) {
	tm := newTestMultisig(t)

	// Signer only
	_, err := tm.m.Submit(stranger, "treasury", 1, nil)
	wantUserErr(t, err, gov.ErrorCodeUnauthorized)

	// Transaction IDs are queue indexes and start at 0
	tx := tm.submit(t)
	switch {
	case tx.ID != 0:
		t.Errorf("got ID %v, want 0", tx.ID)
	case tx.Executed:
		t.Error("new transaction marked executed")
	case tx.Confirmations != 0:
		t.Errorf("got %v confirmations, want 0", tx.Confirmations)
	case tx.SubmittedBy != signerA:
		t.Errorf("got submitter %v, want %v", tx.SubmittedBy, signerA)
	}
	tx2 := tm.submit(t)
	if tx2.ID != 1 {
		t.Errorf("got ID %v, want 1", tx2.ID)
	}
}

func TestConfirmRevoke(t *testing.T) {
	tm := newTestMultisig(t)
	tx := tm.submit(t)

	// Signer only
	err := tm.m.Confirm(stranger, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeUnauthorized)

	// Unknown transaction
	err = tm.m.Confirm(signerA, 999)
	wantUserErr(t, err, gov.ErrorCodeTransactionNotFound)

	if err := tm.m.Confirm(signerA, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// Confirming twice is not allowed
	err = tm.m.Confirm(signerA, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeAlreadyConfirmed)

	got, err := tm.m.Transaction(tx.ID)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if got.Confirmations != 1 || !got.ConfirmedBy[signerA] {
		t.Errorf("got %v confirmations by %v, want 1 by %v",
			got.Confirmations, got.ConfirmedBy, signerA)
	}

	// Only an existing confirmation can be revoked
	err = tm.m.Revoke(signerB, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeNotConfirmed)

	if err := tm.m.Revoke(signerA, tx.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	got, err = tm.m.Transaction(tx.ID)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if got.Confirmations != 0 || got.ConfirmedBy[signerA] {
		t.Errorf("confirmation not revoked: %v by %v",
			got.Confirmations, got.ConfirmedBy)
	}
}

func TestExecute(t *testing.T) {
	tm := newTestMultisig(t)
	tx := tm.submit(t)

	// The threshold has not been met
	err := tm.m.Execute(signerA, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeInsufficientConfirmations)

	if err := tm.m.Confirm(signerA, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := tm.m.Confirm(signerB, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// Execution is not signer restricted
	if err := tm.m.Execute(stranger, tx.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []testCall{{
		target:  "treasury",
		value:   500,
		payload: []byte("payload"),
	}}
	if diff := deep.Equal(tm.caller.calls, want); diff != nil {
		t.Errorf("calls diff: %v", diff)
	}

	// An executed transaction cannot be executed, confirmed, or
	// revoked again.
	err = tm.m.Execute(signerA, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeAlreadyExecuted)
	err = tm.m.Confirm(signerC, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeAlreadyExecuted)
	err = tm.m.Revoke(signerA, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeAlreadyExecuted)
}

func TestExecuteFailedCall(t *testing.T) {
	tm := newTestMultisig(t)
	tx := tm.submit(t)
	if err := tm.m.Confirm(signerA, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := tm.m.Confirm(signerB, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// A failed external call surfaces as an execution failure and rolls
	// the executed mark back.
	tm.caller.err = errors.New("treasury unavailable")
	err := tm.m.Execute(signerA, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeExecutionFailed)

	got, err := tm.m.Transaction(tx.ID)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if got.Executed {
		t.Error("executed mark not rolled back")
	}

	// The transaction can be executed again once the target recovers
	tm.caller.err = nil
	if err := tm.m.Execute(signerA, tx.ID); err != nil {
		t.Fatalf("Execute after recovery: %v", err)
	}
}

func TestSigners(t *testing.T) {
	tm := newTestMultisig(t)

	// Administrator only
	err := tm.m.SignerAdd(signerA, stranger)
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)
	err = tm.m.SignerRemove(signerA, signerB)
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)

	// Duplicate and zero signers are rejected
	err = tm.m.SignerAdd(admin, signerA)
	wantUserErr(t, err, gov.ErrorCodeInvalidSigner)
	err = tm.m.SignerAdd(admin, gov.IdentityZero)
	wantUserErr(t, err, gov.ErrorCodeInvalidSigner)

	if err := tm.m.SignerAdd(admin, stranger); err != nil {
		t.Fatalf("SignerAdd: %v", err)
	}
	want := []gov.Identity{signerA, signerB, signerC, stranger}
	if diff := deep.Equal(tm.m.Signers(), want); diff != nil {
		t.Errorf("signers diff: %v", diff)
	}

	// The new signer can confirm right away
	tx := tm.submit(t)
	if err := tm.m.Confirm(stranger, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// Removing a non-signer fails
	err = tm.m.SignerRemove(admin, gov.Identity("nobody"))
	wantUserErr(t, err, gov.ErrorCodeInvalidSigner)

	if err := tm.m.SignerRemove(admin, stranger); err != nil {
		t.Fatalf("SignerRemove: %v", err)
	}

	// Removal cannot drop the signer count below the threshold
	if err := tm.m.ThresholdUpdate(admin, 3); err != nil {
		t.Fatalf("ThresholdUpdate: %v", err)
	}
	err = tm.m.SignerRemove(admin, signerC)
	wantUserErr(t, err, gov.ErrorCodeInvalidThreshold)
}

func TestThresholdUpdate(t *testing.T) {
	tm := newTestMultisig(t)

	err := tm.m.ThresholdUpdate(signerA, 1)
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)

	// Bounds are [1, signer count]
	err = tm.m.ThresholdUpdate(admin, 0)
	wantUserErr(t, err, gov.ErrorCodeInvalidThreshold)
	err = tm.m.ThresholdUpdate(admin, 4)
	wantUserErr(t, err, gov.ErrorCodeInvalidThreshold)

	if err := tm.m.ThresholdUpdate(admin, 3); err != nil {
		t.Fatalf("ThresholdUpdate: %v", err)
	}
	if tm.m.Threshold() != 3 {
		t.Errorf("got threshold %v, want 3", tm.m.Threshold())
	}

	// A previously executable transaction now needs a third signature
	tx := tm.submit(t)
	if err := tm.m.Confirm(signerA, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := tm.m.Confirm(signerB, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	err = tm.m.Execute(signerA, tx.ID)
	wantUserErr(t, err, gov.ErrorCodeInsufficientConfirmations)
}

func TestReload(t *testing.T) {
	tm := newTestMultisig(t)
	tx := tm.submit(t)
	if err := tm.m.Confirm(signerA, tx.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// Persisted state wins over the constructor arguments
	m2, err := New(tm.caller, events.NewManager(), tm.db,
		[]gov.Identity{stranger}, 1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []gov.Identity{signerA, signerB, signerC}
	if diff := deep.Equal(m2.Signers(), want); diff != nil {
		t.Errorf("signers diff: %v", diff)
	}
	if m2.Threshold() != 2 {
		t.Errorf("got threshold %v, want 2", m2.Threshold())
	}
	got, err := m2.Transaction(tx.ID)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if got.Confirmations != 1 || !got.ConfirmedBy[signerA] {
		t.Errorf("confirmations lost on reload: %v by %v",
			got.Confirmations, got.ConfirmedBy)
	}
}
