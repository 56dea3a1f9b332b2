// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package compliance

import (
	"encoding/hex"
	"testing"

	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/governance"
	"github.com/amanahdao/amanah/gov/registry"
	"github.com/amanahdao/amanah/store"
	"github.com/amanahdao/amanah/unittest"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

const (
	admin   = gov.Identity("admin")
	council = gov.Identity("council")
	alice   = gov.Identity("alice")
)

// testSource is a canned registry.ProposalSource.
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

// testProof returns a valid hex encoded proof commitment.
func testProof() string {
	b := make([]byte, ProofSize)
	b[0] = 0x01
	return hex.EncodeToString(b)
}

type testCompliance struct {
	c  *Compliance
	r  *registry.Registry
	db *store.Mem
}

// newTestCompliance wires a compliance engine to a real registry through the
// status port and registers one record with registry ID 1.
func newTestCompliance(t *testing.T) *testCompliance {
	t.Helper()

	var (
		source = testSource{
			1: {ID: 1, Proposer: alice},
		}
		db = store.NewMem()
	)
	r, err := registry.New(source, events.NewManager(), store.NewMem(),
		[]gov.Identity{admin}, nil)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	if _, err := r.Register(admin, 1, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}

	c, err := New(r.StatusPort(), events.NewManager(), db,
		[]gov.Identity{admin}, []gov.Identity{council})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testCompliance{
		c:  c,
		r:  r,
		db: db,
	}
}

// registryStatus returns the status of a registry record.
func (tc *testCompliance) registryStatus(t *testing.T, recordID uint64) registry.StatusT {
	t.Helper()

	rec, err := tc.r.Record(recordID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	return rec.Status
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

func TestVerifyProof(t *testing.T) {
	tests := []struct {
		name  string
		proof string
		valid bool
	}{
		{"valid", testProof(), true},
		{"empty", "", false},
		{"not hex", "zz", false},
		{"too short", "0102", false},
		{"too long", testProof() + "01", false},
		{"zero commitment", hex.EncodeToString(make([]byte, ProofSize)),
			false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyProof(tt.proof)
			if tt.valid && err != nil {
				t.Errorf("got %v, want nil", err)
			}
			if !tt.valid {
				wantUserErr(t, err, gov.ErrorCodeInvalidProof)
			}
		})
	}
}

func TestSubmitReview(t *testing.T) {
	tc := newTestCompliance(t)

	// Council member only; the admin does not sit on the council
	_, err := tc.c.SubmitReview(admin, 1, StatusApproved, testProof(), "j")
	wantUserErr(t, err, gov.ErrorCodeNotCouncilMember)

	// Veto is not a valid review decision
	_, err = tc.c.SubmitReview(council, 1, StatusVetoed, testProof(), "j")
	wantUserErr(t, err, gov.ErrorCodeInvalidStatus)

	// Invalid proof commitment
	_, err = tc.c.SubmitReview(council, 1, StatusApproved, "", "j")
	wantUserErr(t, err, gov.ErrorCodeInvalidProof)

	// The registry write-back gates the review. An unknown record is
	// rejected by the port and nothing is recorded here.
	_, err = tc.c.SubmitReview(council, 999, StatusApproved, testProof(), "j")
	wantUserErr(t, err, gov.ErrorCodeProposalNotFound)
	_, err = tc.c.Review(999)
	wantUserErr(t, err, gov.ErrorCodeProposalNotFound)

	// Success. The approval propagates to the registry.
	rv, err := tc.c.SubmitReview(council, 1, StatusApproved, testProof(), "j")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	switch {
	case rv.Status != StatusApproved:
		t.Errorf("got status %v, want %v",
			Statuses[rv.Status], Statuses[StatusApproved])
	case rv.Timestamp == 0:
		t.Error("timestamp not set")
	case rv.ReviewedBy != council:
		t.Errorf("got reviewer %v, want %v", rv.ReviewedBy, council)
	}
	if s := tc.registryStatus(t, 1); s != registry.StatusApproved {
		t.Errorf("registry status %v, want %v",
			registry.Statuses[s], registry.Statuses[registry.StatusApproved])
	}

	// One review per record
	_, err = tc.c.SubmitReview(council, 1, StatusRejected, testProof(), "j")
	wantUserErr(t, err, gov.ErrorCodeAlreadyReviewed)
}

func TestSubmitReviewNoPropagation(t *testing.T) {
	tc := newTestCompliance(t)

	// A pending decision is recorded but does not touch the registry
	_, err := tc.c.SubmitReview(council, 1, StatusPending, testProof(), "j")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if s := tc.registryStatus(t, 1); s != registry.StatusRegistered {
		t.Errorf("registry status %v, want %v",
			registry.Statuses[s],
			registry.Statuses[registry.StatusRegistered])
	}
}

func TestEmergencyVeto(t *testing.T) {
	tc := newTestCompliance(t)

	// Administrator only
	_, err := tc.c.EmergencyVeto(council, 1, "reason")
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)

	// A veto overwrites a recorded review. The proof commitment is
	// zeroed and a rejection is propagated even though the record was
	// previously approved.
	_, err = tc.c.SubmitReview(council, 1, StatusApproved, testProof(), "j")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	rv, err := tc.c.EmergencyVeto(admin, 1, "reason")
	if err != nil {
		t.Fatalf("EmergencyVeto: %v", err)
	}
	switch {
	case rv.Status != StatusVetoed:
		t.Errorf("got status %v, want %v",
			Statuses[rv.Status], Statuses[StatusVetoed])
	case rv.Proof != "":
		t.Errorf("got proof %q, want empty", rv.Proof)
	case rv.Justification != "reason":
		t.Errorf("got justification %q, want %q",
			rv.Justification, "reason")
	}
	if s := tc.registryStatus(t, 1); s != registry.StatusRejected {
		t.Errorf("registry status %v, want %v",
			registry.Statuses[s],
			registry.Statuses[registry.StatusRejected])
	}

	got, err := tc.c.Review(1)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.Status != StatusVetoed {
		t.Errorf("stored review %v, want %v",
			Statuses[got.Status], Statuses[StatusVetoed])
	}
}

func TestCouncil(t *testing.T) {
	tc := newTestCompliance(t)

	// Administrator only
	err := tc.c.CouncilAdd(council, alice)
	wantUserErr(t, err, gov.ErrorCodeNotAdmin)

	if err := tc.c.CouncilAdd(admin, alice); err != nil {
		t.Fatalf("CouncilAdd: %v", err)
	}

	// Seating twice is a noop
	if err := tc.c.CouncilAdd(admin, alice); err != nil {
		t.Fatalf("CouncilAdd twice: %v", err)
	}
	want := []gov.Identity{alice, council}
	if diff := deep.Equal(tc.c.Council(), want); diff != nil {
		t.Errorf("council diff: %v", diff)
	}

	if err := tc.c.CouncilRemove(admin, council); err != nil {
		t.Fatalf("CouncilRemove: %v", err)
	}
	if tc.c.IsCouncilMember(council) {
		t.Error("removed member still on council")
	}
	want = []gov.Identity{alice}
	if diff := deep.Equal(tc.c.Council(), want); diff != nil {
		t.Errorf("council diff: %v", diff)
	}

	// Removing a non-member is a noop
	if err := tc.c.CouncilRemove(admin, council); err != nil {
		t.Fatalf("CouncilRemove non-member: %v", err)
	}
}

func TestReload(t *testing.T) {
	tc := newTestCompliance(t)
	_, err := tc.c.SubmitReview(council, 1, StatusApproved, testProof(), "j")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}

	c2, err := New(tc.r.StatusPort(), events.NewManager(), tc.db, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c2.Review(1)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if got.Status != StatusApproved {
		t.Errorf("got status %v, want %v",
			Statuses[got.Status], Statuses[StatusApproved])
	}
	if !c2.IsCouncilMember(council) {
		t.Error("council membership lost on reload")
	}
}
