// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"testing"

	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/governance"
	"github.com/amanahdao/amanah/store"
	"github.com/amanahdao/amanah/unittest"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

const (
	admin    = gov.Identity("admin")
	executor = gov.Identity("executor")
	alice    = gov.Identity("alice")
)

// testSource is a canned ProposalSource.
type testSource map[uint64]*governance.Proposal

func (s testSource) Proposal(proposalID uint64) (*governance.Proposal, error) {
	p, ok := s[proposalID]
	if !ok {
		return nil, gov.UserError{
			ErrorCode: gov.ErrorCodeProposalNotFound,
		}
	}
	return p, nil
}

type testRegistry struct {
	r      *Registry
	source testSource
	db     *store.Mem
}

func newTestRegistry(t *testing.T) *testRegistry {
	t.Helper()

	var (
		source = testSource{
			1: {ID: 1, Proposer: alice},
			2: {ID: 2, Proposer: alice},
			3: {ID: 3, Proposer: alice},
		}
		db = store.NewMem()
	)
	r, err := New(source, events.NewManager(), db,
		[]gov.Identity{admin}, []gov.Identity{executor})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testRegistry{
		r:      r,
		source: source,
		db:     db,
	}
}

// register registers the community proposal and fails the test on error.
func (tr *testRegistry) register(t *testing.T, communityID uint64) *Record {
	t.Helper()

	rec, err := tr.r.Register(admin, communityID, []byte("payload"))
	if err != nil {
		t.Fatalf("Register %v: %v", communityID, err)
	}
	return rec
}

// approve moves the record through the status port to approved.
func (tr *testRegistry) approve(t *testing.T, recordID uint64) {
	t.Helper()

	err := tr.r.StatusPort().SetStatus(recordID, StatusApproved)
	if err != nil {
		t.Fatalf("SetStatus %v: %v", recordID, err)
	}
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

func TestMaps(t *testing.T) {
	err := unittest.TestGenericConstMap(Statuses, uint64(StatusLast))
	if err != nil {
		t.Error(err)
	}
}

func TestRegister(t *testing.T) {
	tr := newTestRegistry(t)

	// Administrator only
	_, err := tr.r.Register(alice, 1, nil)
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)

	// Unknown community proposal; the source error is passed through
	_, err = tr.r.Register(admin, 999, nil)
	wantUserErr(t, err, gov.ErrorCodeProposalNotFound)

	// Success. The proposer is copied from the community proposal.
	rec := tr.register(t, 1)
	switch {
	case rec.ID != 1:
		t.Errorf("got ID %v, want 1", rec.ID)
	case rec.CommunityID != 1:
		t.Errorf("got community ID %v, want 1", rec.CommunityID)
	case rec.Proposer != alice:
		t.Errorf("got proposer %v, want %v", rec.Proposer, alice)
	case rec.Status != StatusRegistered:
		t.Errorf("got status %v, want %v",
			Statuses[rec.Status], Statuses[StatusRegistered])
	case rec.BatchID != 0:
		t.Errorf("got batch ID %v, want 0", rec.BatchID)
	}

	// Registering the same community proposal again is permitted. The
	// community index points at the most recent registration.
	rec2 := tr.register(t, 1)
	if rec2.ID != 2 {
		t.Errorf("got ID %v, want 2", rec2.ID)
	}
	got, err := tr.r.RecordByCommunity(1)
	if err != nil {
		t.Fatalf("RecordByCommunity: %v", err)
	}
	if got.ID != rec2.ID {
		t.Errorf("index points at record %v, want %v", got.ID, rec2.ID)
	}
}

func TestSetStatus(t *testing.T) {
	tr := newTestRegistry(t)
	rec := tr.register(t, 1)

	// Administrator only
	err := tr.r.SetStatus(alice, rec.ID, StatusApproved)
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)

	// Unknown status value
	err = tr.r.SetStatus(admin, rec.ID, StatusT(99))
	wantUserErr(t, err, gov.ErrorCodeInvalidStatus)

	// Unknown record
	err = tr.r.SetStatus(admin, 999, StatusUnderReview)
	wantUserErr(t, err, gov.ErrorCodeProposalNotFound)

	// The admin path performs no transition checks
	if err := tr.r.SetStatus(admin, rec.ID, StatusExecuted); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := tr.r.Record(rec.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Status != StatusExecuted {
		t.Errorf("got status %v, want %v",
			Statuses[got.Status], Statuses[StatusExecuted])
	}
}

func TestStatusPort(t *testing.T) {
	tr := newTestRegistry(t)
	rec := tr.register(t, 1)
	port := tr.r.StatusPort()

	// The port only permits the review outcomes
	for _, s := range []StatusT{
		StatusRegistered,
		StatusUnderReview,
		StatusBatched,
		StatusExecuted,
	} {
		err := port.SetStatus(rec.ID, s)
		wantUserErr(t, err, gov.ErrorCodeInvalidStatus)
	}

	if err := port.SetStatus(rec.ID, StatusApproved); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := tr.r.Record(rec.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("got status %v, want %v",
			Statuses[got.Status], Statuses[StatusApproved])
	}
}

func TestCreateBatch(t *testing.T) {
	tr := newTestRegistry(t)
	r1 := tr.register(t, 1)
	r2 := tr.register(t, 2)
	r3 := tr.register(t, 3)
	tr.approve(t, r1.ID)
	tr.approve(t, r2.ID)

	// Administrator only
	_, err := tr.r.CreateBatch(alice, []uint64{r1.ID})
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)

	// Empty batch
	_, err = tr.r.CreateBatch(admin, nil)
	wantUserErr(t, err, gov.ErrorCodeInvalidStatus)

	// Batch creation is all-or-nothing. r3 is not approved so the whole
	// batch must fail and r1 and r2 must be left untouched.
	_, err = tr.r.CreateBatch(admin, []uint64{r1.ID, r2.ID, r3.ID})
	wantUserErr(t, err, gov.ErrorCodeInvalidStatus)
	for _, id := range []uint64{r1.ID, r2.ID} {
		got, err := tr.r.Record(id)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if got.Status != StatusApproved || got.BatchID != 0 {
			t.Errorf("record %v modified by failed batch: %v/%v",
				id, Statuses[got.Status], got.BatchID)
		}
	}

	// Unknown member
	_, err = tr.r.CreateBatch(admin, []uint64{r1.ID, 999})
	wantUserErr(t, err, gov.ErrorCodeProposalNotFound)

	// Success. Member order is preserved.
	b, err := tr.r.CreateBatch(admin, []uint64{r2.ID, r1.ID})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if b.ID != 1 {
		t.Errorf("got batch ID %v, want 1", b.ID)
	}
	if diff := deep.Equal(b.Records, []uint64{r2.ID, r1.ID}); diff != nil {
		t.Errorf("members diff: %v", diff)
	}
	got, err := tr.r.Record(r1.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Status != StatusBatched || got.BatchID != b.ID {
		t.Errorf("got %v/%v, want %v/%v", Statuses[got.Status],
			got.BatchID, Statuses[StatusBatched], b.ID)
	}

	// A batched record cannot be batched again
	_, err = tr.r.CreateBatch(admin, []uint64{r1.ID})
	wantUserErr(t, err, gov.ErrorCodeAlreadyBatched)
}

func TestExecuteBatch(t *testing.T) {
	tr := newTestRegistry(t)
	r1 := tr.register(t, 1)
	r2 := tr.register(t, 2)
	tr.approve(t, r1.ID)
	tr.approve(t, r2.ID)
	b, err := tr.r.CreateBatch(admin, []uint64{r1.ID, r2.ID})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	// Executor capability required; the admin does not hold it
	err = tr.r.ExecuteBatch(admin, b.ID)
	wantUserErr(t, err, gov.ErrorCodeUnauthorized)

	// Unknown batch
	err = tr.r.ExecuteBatch(executor, 999)
	wantUserErr(t, err, gov.ErrorCodeProposalNotFound)

	if err := tr.r.ExecuteBatch(executor, b.ID); err != nil {
		t.Fatalf("ExecuteBatch: %v", err)
	}
	for _, id := range []uint64{r1.ID, r2.ID} {
		got, err := tr.r.Record(id)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if got.Status != StatusExecuted {
			t.Errorf("record %v status %v, want %v",
				id, Statuses[got.Status], Statuses[StatusExecuted])
		}
	}

	// Execution is idempotent
	if err := tr.r.ExecuteBatch(executor, b.ID); err != nil {
		t.Fatalf("ExecuteBatch twice: %v", err)
	}
}

func TestReload(t *testing.T) {
	tr := newTestRegistry(t)
	rec := tr.register(t, 1)
	tr.approve(t, rec.ID)

	r2, err := New(tr.source, events.NewManager(), tr.db, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := r2.Record(rec.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("got status %v, want %v",
			Statuses[got.Status], Statuses[StatusApproved])
	}

	// Persisted capabilities win over the constructor arguments
	next, err := r2.Register(admin, 2, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if next.ID != rec.ID+1 {
		t.Errorf("got ID %v, want %v", next.ID, rec.ID+1)
	}
}
