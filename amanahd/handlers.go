// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"

	v1 "github.com/amanahdao/amanah/api/v1"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/compliance"
	"github.com/amanahdao/amanah/gov/governance"
	"github.com/amanahdao/amanah/gov/multisig"
	"github.com/amanahdao/amanah/gov/registry"
	"github.com/amanahdao/amanah/util"
)

// caller returns the caller identity from the request header. A false
// return means the header was missing and an error reply has already been
// sent.
func caller(w http.ResponseWriter, r *http.Request) (gov.Identity, bool) {
	id := r.Header.Get(v1.IdentityHeader)
	if id == "" {
		respondWithUserError(w, v1.ErrorCodeIdentityMissing,
			v1.IdentityHeader)
		return gov.IdentityZero, false
	}
	return gov.Identity(id), true
}

// decodeReq decodes a JSON request body. A false return means decoding
// failed and an error reply has already been sent.
func decodeReq(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(payload); err != nil {
		respondWithUserError(w, v1.ErrorCodeInvalidPayload, "")
		return false
	}
	return true
}

func convertProposal(p *governance.Proposal, s governance.StatusT) v1.Proposal {
	return v1.Proposal{
		ID:           p.ID,
		Proposer:     string(p.Proposer),
		Title:        p.Title,
		Description:  p.Description,
		Payload:      p.Payload,
		Status:       uint32(s),
		StartHeight:  p.StartHeight,
		EndHeight:    p.EndHeight,
		ForVotes:     p.ForVotes,
		AgainstVotes: p.AgainstVotes,
		AbstainVotes: p.AbstainVotes,
		Timestamp:    p.Timestamp,
	}
}

func convertRecord(rec *registry.Record) v1.Record {
	return v1.Record{
		ID:          rec.ID,
		CommunityID: rec.CommunityID,
		Proposer:    string(rec.Proposer),
		Status:      uint32(rec.Status),
		BatchID:     rec.BatchID,
		Payload:     rec.Payload,
		Timestamp:   rec.Timestamp,
	}
}

func convertBatch(b *registry.Batch) v1.Batch {
	return v1.Batch{
		ID:        b.ID,
		Records:   b.Records,
		Timestamp: b.Timestamp,
	}
}

func convertReview(rv *compliance.Review) v1.Review {
	return v1.Review{
		RecordID:      rv.RecordID,
		Status:        uint32(rv.Status),
		Proof:         rv.Proof,
		Justification: rv.Justification,
		ReviewedBy:    string(rv.ReviewedBy),
		Timestamp:     rv.Timestamp,
	}
}

func convertTx(tx *multisig.Transaction) v1.Transaction {
	confirmedBy := make([]string, 0, len(tx.ConfirmedBy))
	for id := range tx.ConfirmedBy {
		confirmedBy = append(confirmedBy, string(id))
	}
	return v1.Transaction{
		ID:            tx.ID,
		Target:        tx.Target,
		Value:         tx.Value,
		Payload:       tx.Payload,
		Executed:      tx.Executed,
		Confirmations: tx.Confirmations,
		ConfirmedBy:   confirmedBy,
		SubmittedBy:   string(tx.SubmittedBy),
		Timestamp:     tx.Timestamp,
	}
}

func convertIdentities(ids []gov.Identity) []string {
	ss := make([]string, 0, len(ids))
	for _, id := range ids {
		ss = append(ss, string(id))
	}
	return ss
}

func (d *amanahd) handleVersion(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleVersion")

	util.RespondWithJSON(w, http.StatusOK, v1.VersionReply{
		Version: 1,
		Height:  d.clock.BestHeight(),
	})
}

func (d *amanahd) handleProposalNew(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleProposalNew")

	var pn v1.ProposalNew
	if !decodeReq(w, r, &pn) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	p, err := d.governance.Propose(id, pn.Title, pn.Description, pn.Payload)
	if err != nil {
		respondWithError(w, r, "handleProposalNew: Propose: %v", err)
		return
	}

	log.Infof("%v Proposal submitted %v", util.RemoteAddr(r), p.ID)

	util.RespondWithJSON(w, http.StatusOK, v1.ProposalNewReply{
		Proposal: convertProposal(p, governance.StatusPending),
	})
}

func (d *amanahd) handleProposalVote(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleProposalVote")

	var pv v1.ProposalVote
	if !decodeReq(w, r, &pv) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	vr, err := d.governance.CastVote(id, pv.ProposalID,
		governance.VoteT(pv.Vote))
	if err != nil {
		respondWithError(w, r, "handleProposalVote: CastVote: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProposalVoteReply{
		Weight:    vr.Weight,
		Timestamp: vr.Timestamp,
	})
}

func (d *amanahd) handleProposalCancel(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleProposalCancel")

	var pc v1.ProposalCancel
	if !decodeReq(w, r, &pc) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.governance.Cancel(id, pc.ProposalID)
	if err != nil {
		respondWithError(w, r, "handleProposalCancel: Cancel: %v", err)
		return
	}

	log.Infof("%v Proposal canceled %v", util.RemoteAddr(r), pc.ProposalID)

	util.RespondWithJSON(w, http.StatusOK, v1.ProposalCancelReply{})
}

func (d *amanahd) handleProposalExecute(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleProposalExecute")

	var pe v1.ProposalExecute
	if !decodeReq(w, r, &pe) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.governance.Execute(id, pe.ProposalID)
	if err != nil {
		respondWithError(w, r, "handleProposalExecute: Execute: %v", err)
		return
	}

	log.Infof("%v Proposal executed %v", util.RemoteAddr(r), pe.ProposalID)

	util.RespondWithJSON(w, http.StatusOK, v1.ProposalExecuteReply{})
}

func (d *amanahd) handleProposalDetails(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleProposalDetails")

	var pd v1.ProposalDetails
	if !decodeReq(w, r, &pd) {
		return
	}

	p, err := d.governance.Proposal(pd.ProposalID)
	if err != nil {
		respondWithError(w, r, "handleProposalDetails: Proposal: %v", err)
		return
	}
	s, err := d.governance.State(pd.ProposalID)
	if err != nil {
		respondWithError(w, r, "handleProposalDetails: State: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProposalDetailsReply{
		Proposal: convertProposal(p, s),
	})
}

func (d *amanahd) handleProposalVotes(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleProposalVotes")

	var pv v1.ProposalVotes
	if !decodeReq(w, r, &pv) {
		return
	}

	votes, err := d.governance.Votes(pv.ProposalID)
	if err != nil {
		respondWithError(w, r, "handleProposalVotes: Votes: %v", err)
		return
	}

	vs := make([]v1.VoteRecord, 0, len(votes))
	for _, v := range votes {
		vs = append(vs, v1.VoteRecord{
			Voter:     string(v.Voter),
			Vote:      uint32(v.Vote),
			Weight:    v.Weight,
			Timestamp: v.Timestamp,
		})
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProposalVotesReply{
		Votes: vs,
	})
}

func (d *amanahd) handleProposals(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleProposals")

	inv := d.governance.Inventory()
	proposals := make(map[string][]uint64, len(inv))
	for s, ids := range inv {
		proposals[governance.Statuses[s]] = ids
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProposalsReply{
		Proposals: proposals,
	})
}

func (d *amanahd) handleParams(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleParams")

	params := d.governance.Params()
	util.RespondWithJSON(w, http.StatusOK, v1.ParamsReply{
		Params: v1.Params{
			ProposalThreshold: params.ProposalThreshold,
			VotingDelay:       params.VotingDelay,
			VotingPeriod:      params.VotingPeriod,
			Quorum:            params.Quorum,
		},
	})
}

func (d *amanahd) handleParamsSet(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleParamsSet")

	var ps v1.ParamsSet
	if !decodeReq(w, r, &ps) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.governance.UpdateParams(id, governance.Params{
		ProposalThreshold: ps.Params.ProposalThreshold,
		VotingDelay:       ps.Params.VotingDelay,
		VotingPeriod:      ps.Params.VotingPeriod,
		Quorum:            ps.Params.Quorum,
	})
	if err != nil {
		respondWithError(w, r, "handleParamsSet: UpdateParams: %v", err)
		return
	}

	log.Infof("%v Governance parameters updated", util.RemoteAddr(r))

	util.RespondWithJSON(w, http.StatusOK, v1.ParamsSetReply{})
}

func (d *amanahd) handleRegister(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleRegister")

	var reg v1.Register
	if !decodeReq(w, r, &reg) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	rec, err := d.registry.Register(id, reg.CommunityID, reg.Payload)
	if err != nil {
		respondWithError(w, r, "handleRegister: Register: %v", err)
		return
	}

	log.Infof("%v Proposal registered %v (community %v)",
		util.RemoteAddr(r), rec.ID, rec.CommunityID)

	util.RespondWithJSON(w, http.StatusOK, v1.RegisterReply{
		Record: convertRecord(rec),
	})
}

func (d *amanahd) handleRecordStatus(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleRecordStatus")

	var rs v1.RecordStatus
	if !decodeReq(w, r, &rs) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.registry.SetStatus(id, rs.RecordID,
		registry.StatusT(rs.Status))
	if err != nil {
		respondWithError(w, r, "handleRecordStatus: SetStatus: %v", err)
		return
	}
	rec, err := d.registry.Record(rs.RecordID)
	if err != nil {
		respondWithError(w, r, "handleRecordStatus: Record: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.RecordStatusReply{
		Record: convertRecord(rec),
	})
}

func (d *amanahd) handleRecord(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleRecord")

	var rr v1.RecordRequest
	if !decodeReq(w, r, &rr) {
		return
	}

	var (
		rec *registry.Record
		err error
	)
	if rr.RecordID != 0 {
		rec, err = d.registry.Record(rr.RecordID)
	} else {
		rec, err = d.registry.RecordByCommunity(rr.CommunityID)
	}
	if err != nil {
		respondWithError(w, r, "handleRecord: Record: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.RecordReply{
		Record: convertRecord(rec),
	})
}

func (d *amanahd) handleBatchNew(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleBatchNew")

	var bn v1.BatchNew
	if !decodeReq(w, r, &bn) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	b, err := d.registry.CreateBatch(id, bn.RecordIDs)
	if err != nil {
		respondWithError(w, r, "handleBatchNew: CreateBatch: %v", err)
		return
	}

	log.Infof("%v Batch created %v (%v records)",
		util.RemoteAddr(r), b.ID, len(b.Records))

	util.RespondWithJSON(w, http.StatusOK, v1.BatchNewReply{
		Batch: convertBatch(b),
	})
}

func (d *amanahd) handleBatchExecute(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleBatchExecute")

	var be v1.BatchExecute
	if !decodeReq(w, r, &be) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.registry.ExecuteBatch(id, be.BatchID)
	if err != nil {
		respondWithError(w, r, "handleBatchExecute: ExecuteBatch: %v", err)
		return
	}

	log.Infof("%v Batch executed %v", util.RemoteAddr(r), be.BatchID)

	util.RespondWithJSON(w, http.StatusOK, v1.BatchExecuteReply{})
}

func (d *amanahd) handleBatch(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleBatch")

	var br v1.BatchRequest
	if !decodeReq(w, r, &br) {
		return
	}

	b, err := d.registry.Batch(br.BatchID)
	if err != nil {
		respondWithError(w, r, "handleBatch: Batch: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.BatchReply{
		Batch: convertBatch(b),
	})
}

func (d *amanahd) handleRecords(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleRecords")

	inv := d.registry.Inventory()
	records := make(map[string][]uint64, len(inv))
	for s, ids := range inv {
		records[registry.Statuses[s]] = ids
	}

	util.RespondWithJSON(w, http.StatusOK, v1.RecordsReply{
		Records: records,
	})
}

func (d *amanahd) handleReviewSubmit(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleReviewSubmit")

	var rs v1.ReviewSubmit
	if !decodeReq(w, r, &rs) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	rv, err := d.compliance.SubmitReview(id, rs.RecordID,
		compliance.StatusT(rs.Status), rs.Proof, rs.Justification)
	if err != nil {
		respondWithError(w, r, "handleReviewSubmit: SubmitReview: %v", err)
		return
	}

	log.Infof("%v Review recorded for record %v",
		util.RemoteAddr(r), rs.RecordID)

	util.RespondWithJSON(w, http.StatusOK, v1.ReviewSubmitReply{
		Review: convertReview(rv),
	})
}

func (d *amanahd) handleReviewVeto(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleReviewVeto")

	var rv v1.ReviewVeto
	if !decodeReq(w, r, &rv) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	review, err := d.compliance.EmergencyVeto(id, rv.RecordID, rv.Reason)
	if err != nil {
		respondWithError(w, r, "handleReviewVeto: EmergencyVeto: %v", err)
		return
	}

	log.Infof("%v Record vetoed %v", util.RemoteAddr(r), rv.RecordID)

	util.RespondWithJSON(w, http.StatusOK, v1.ReviewVetoReply{
		Review: convertReview(review),
	})
}

func (d *amanahd) handleReviewDetails(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleReviewDetails")

	var rd v1.ReviewDetails
	if !decodeReq(w, r, &rd) {
		return
	}

	rv, err := d.compliance.Review(rd.RecordID)
	if err != nil {
		respondWithError(w, r, "handleReviewDetails: Review: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ReviewDetailsReply{
		Review: convertReview(rv),
	})
}

func (d *amanahd) handleCouncil(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCouncil")

	util.RespondWithJSON(w, http.StatusOK, v1.CouncilReply{
		Members: convertIdentities(d.compliance.Council()),
	})
}

func (d *amanahd) handleCouncilAdd(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCouncilAdd")

	var ca v1.CouncilAdd
	if !decodeReq(w, r, &ca) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.compliance.CouncilAdd(id, gov.Identity(ca.Member))
	if err != nil {
		respondWithError(w, r, "handleCouncilAdd: CouncilAdd: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.CouncilAddReply{})
}

func (d *amanahd) handleCouncilRemove(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCouncilRemove")

	var cr v1.CouncilRemove
	if !decodeReq(w, r, &cr) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.compliance.CouncilRemove(id, gov.Identity(cr.Member))
	if err != nil {
		respondWithError(w, r,
			"handleCouncilRemove: CouncilRemove: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.CouncilRemoveReply{})
}

func (d *amanahd) handleTxSubmit(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTxSubmit")

	var ts v1.TxSubmit
	if !decodeReq(w, r, &ts) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	tx, err := d.multisig.Submit(id, ts.Target, ts.Value, ts.Payload)
	if err != nil {
		respondWithError(w, r, "handleTxSubmit: Submit: %v", err)
		return
	}

	log.Infof("%v Transaction submitted %v", util.RemoteAddr(r), tx.ID)

	util.RespondWithJSON(w, http.StatusOK, v1.TxSubmitReply{
		Tx: convertTx(tx),
	})
}

func (d *amanahd) handleTxConfirm(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTxConfirm")

	var tc v1.TxConfirm
	if !decodeReq(w, r, &tc) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.multisig.Confirm(id, tc.TxID)
	if err != nil {
		respondWithError(w, r, "handleTxConfirm: Confirm: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.TxConfirmReply{})
}

func (d *amanahd) handleTxRevoke(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTxRevoke")

	var tr v1.TxRevoke
	if !decodeReq(w, r, &tr) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.multisig.Revoke(id, tr.TxID)
	if err != nil {
		respondWithError(w, r, "handleTxRevoke: Revoke: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.TxRevokeReply{})
}

func (d *amanahd) handleTxExecute(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTxExecute")

	var te v1.TxExecute
	if !decodeReq(w, r, &te) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.multisig.Execute(id, te.TxID)
	if err != nil {
		respondWithError(w, r, "handleTxExecute: Execute: %v", err)
		return
	}

	log.Infof("%v Transaction executed %v", util.RemoteAddr(r), te.TxID)

	util.RespondWithJSON(w, http.StatusOK, v1.TxExecuteReply{})
}

func (d *amanahd) handleTxDetails(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTxDetails")

	var td v1.TxDetails
	if !decodeReq(w, r, &td) {
		return
	}

	tx, err := d.multisig.Transaction(td.TxID)
	if err != nil {
		respondWithError(w, r, "handleTxDetails: Transaction: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.TxDetailsReply{
		Tx: convertTx(tx),
	})
}

func (d *amanahd) handleTxInventory(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleTxInventory")

	txs := d.multisig.Transactions()
	vtxs := make([]v1.Transaction, 0, len(txs))
	for i := range txs {
		vtxs = append(vtxs, convertTx(&txs[i]))
	}

	util.RespondWithJSON(w, http.StatusOK, v1.TxInventoryReply{
		Txs:       vtxs,
		Signers:   convertIdentities(d.multisig.Signers()),
		Threshold: d.multisig.Threshold(),
	})
}

func (d *amanahd) handleSignerAdd(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleSignerAdd")

	var sa v1.SignerAdd
	if !decodeReq(w, r, &sa) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.multisig.SignerAdd(id, gov.Identity(sa.Signer))
	if err != nil {
		respondWithError(w, r, "handleSignerAdd: SignerAdd: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.SignerAddReply{})
}

func (d *amanahd) handleSignerRemove(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleSignerRemove")

	var sr v1.SignerRemove
	if !decodeReq(w, r, &sr) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.multisig.SignerRemove(id, gov.Identity(sr.Signer))
	if err != nil {
		respondWithError(w, r, "handleSignerRemove: SignerRemove: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.SignerRemoveReply{})
}

func (d *amanahd) handleThreshold(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleThreshold")

	var th v1.Threshold
	if !decodeReq(w, r, &th) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	err := d.multisig.ThresholdUpdate(id, th.Threshold)
	if err != nil {
		respondWithError(w, r, "handleThreshold: ThresholdUpdate: %v", err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ThresholdReply{})
}

func (d *amanahd) handleCapGrant(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCapGrant")

	var cg v1.CapGrant
	if !decodeReq(w, r, &cg) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var err error
	switch cg.Component {
	case v1.ComponentGovernance:
		err = d.governance.CapGrant(id, gov.Identity(cg.Identity),
			gov.Capability(cg.Capability))
	case v1.ComponentRegistry:
		err = d.registry.CapGrant(id, gov.Identity(cg.Identity),
			gov.Capability(cg.Capability))
	case v1.ComponentCompliance:
		err = d.compliance.CapGrant(id, gov.Identity(cg.Identity),
			gov.Capability(cg.Capability))
	case v1.ComponentMultisig:
		err = d.multisig.CapGrant(id, gov.Identity(cg.Identity),
			gov.Capability(cg.Capability))
	default:
		respondWithUserError(w, v1.ErrorCodeInvalidComponent,
			cg.Component)
		return
	}
	if err != nil {
		respondWithError(w, r, "handleCapGrant: CapGrant: %v", err)
		return
	}

	log.Infof("%v Capability %v granted to %v on %v", util.RemoteAddr(r),
		cg.Capability, cg.Identity, cg.Component)

	util.RespondWithJSON(w, http.StatusOK, v1.CapGrantReply{})
}

func (d *amanahd) handleCapRevoke(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCapRevoke")

	var cr v1.CapRevoke
	if !decodeReq(w, r, &cr) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var err error
	switch cr.Component {
	case v1.ComponentGovernance:
		err = d.governance.CapRevoke(id, gov.Identity(cr.Identity),
			gov.Capability(cr.Capability))
	case v1.ComponentRegistry:
		err = d.registry.CapRevoke(id, gov.Identity(cr.Identity),
			gov.Capability(cr.Capability))
	case v1.ComponentCompliance:
		err = d.compliance.CapRevoke(id, gov.Identity(cr.Identity),
			gov.Capability(cr.Capability))
	case v1.ComponentMultisig:
		err = d.multisig.CapRevoke(id, gov.Identity(cr.Identity),
			gov.Capability(cr.Capability))
	default:
		respondWithUserError(w, v1.ErrorCodeInvalidComponent,
			cr.Component)
		return
	}
	if err != nil {
		respondWithError(w, r, "handleCapRevoke: CapRevoke: %v", err)
		return
	}

	log.Infof("%v Capability %v revoked from %v on %v", util.RemoteAddr(r),
		cr.Capability, cr.Identity, cr.Component)

	util.RespondWithJSON(w, http.StatusOK, v1.CapRevokeReply{})
}

func (d *amanahd) handleCapHolders(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleCapHolders")

	var ch v1.CapHolders
	if !decodeReq(w, r, &ch) {
		return
	}

	var holders []gov.Identity
	switch ch.Component {
	case v1.ComponentGovernance:
		holders = d.governance.CapHolders(gov.Capability(ch.Capability))
	case v1.ComponentRegistry:
		holders = d.registry.CapHolders(gov.Capability(ch.Capability))
	case v1.ComponentCompliance:
		holders = d.compliance.CapHolders(gov.Capability(ch.Capability))
	case v1.ComponentMultisig:
		holders = d.multisig.CapHolders(gov.Capability(ch.Capability))
	default:
		respondWithUserError(w, v1.ErrorCodeInvalidComponent,
			ch.Component)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.CapHoldersReply{
		Holders: convertIdentities(holders),
	})
}

// isAdmin checks the governance capability table for the admin capability.
// The identity admin routes put the governance component in charge of who
// may administer the reference soulbound collaborators.
func (d *amanahd) isAdmin(id gov.Identity) bool {
	for _, holder := range d.governance.CapHolders(gov.CapabilityAdmin) {
		if holder == id {
			return true
		}
	}
	return false
}

func (d *amanahd) handleIdentityNew(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleIdentityNew")

	var in v1.IdentityNew
	if !decodeReq(w, r, &in) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if !d.isAdmin(id) {
		respondWithError(w, r, "handleIdentityNew: %v", gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		})
		return
	}

	d.identities.Register(gov.Identity(in.Identity))

	log.Infof("%v Identity registered %v", util.RemoteAddr(r), in.Identity)

	util.RespondWithJSON(w, http.StatusOK, v1.IdentityNewReply{})
}

func (d *amanahd) handleWeightSet(w http.ResponseWriter, r *http.Request) {
	log.Tracef("handleWeightSet")

	var ws v1.WeightSet
	if !decodeReq(w, r, &ws) {
		return
	}
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if !d.isAdmin(id) {
		respondWithError(w, r, "handleWeightSet: %v", gov.UserError{
			ErrorCode: gov.ErrorCodeNotAdmin,
		})
		return
	}

	d.ledger.SetWeight(gov.Identity(ws.Identity), ws.Weight)

	log.Infof("%v Reputation weight of %v set to %v", util.RemoteAddr(r),
		ws.Identity, ws.Weight)

	util.RespondWithJSON(w, http.StatusOK, v1.WeightSetReply{})
}
