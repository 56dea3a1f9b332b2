// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package v1 contains the amanahd v1 HTTP API: the routes, the request and
// reply payloads, and the error replies. All payloads are JSON encoded.
//
// Callers identify themselves with the IdentityHeader request header.
// Authorization decisions are made by the pipeline components, not by this
// API layer.
package v1

// ErrorCodeT represents a v1 transport error. Domain errors from the
// pipeline components are returned in a PipelineErrorReply instead.
type ErrorCodeT uint32

const (
	// Routes
	VersionRoute = "/v1/version" // Retrieve server version

	// Community governance routes
	ProposalNewRoute     = "/v1/proposal/new"     // Submit proposal
	ProposalVoteRoute    = "/v1/proposal/vote"    // Cast vote
	ProposalCancelRoute  = "/v1/proposal/cancel"  // Cancel proposal
	ProposalExecuteRoute = "/v1/proposal/execute" // Execute proposal
	ProposalDetailsRoute = "/v1/proposal/details" // Retrieve proposal
	ProposalVotesRoute   = "/v1/proposal/votes"   // Retrieve cast votes
	ProposalsRoute       = "/v1/proposals"        // Proposal inventory
	ParamsRoute          = "/v1/params"           // Retrieve parameters
	ParamsSetRoute       = "/v1/params/set"       // Update parameters

	// Proposal registry routes
	RegisterRoute     = "/v1/registry/register"     // Register proposal
	RecordStatusRoute = "/v1/registry/setstatus"    // Set record status
	RecordRoute       = "/v1/registry/record"       // Retrieve record
	BatchNewRoute     = "/v1/registry/batchnew"     // Create batch
	BatchExecuteRoute = "/v1/registry/batchexecute" // Execute batch
	BatchRoute        = "/v1/registry/batch"        // Retrieve batch
	RecordsRoute      = "/v1/registry/records"      // Record inventory

	// Compliance review routes
	ReviewSubmitRoute  = "/v1/review/submit"        // Submit review
	ReviewVetoRoute    = "/v1/review/veto"          // Emergency veto
	ReviewDetailsRoute = "/v1/review/details"       // Retrieve review
	CouncilRoute       = "/v1/review/council"       // Retrieve council
	CouncilAddRoute    = "/v1/review/counciladd"    // Seat council member
	CouncilRemoveRoute = "/v1/review/councilremove" // Remove council member

	// Multisig execution routes
	TxSubmitRoute      = "/v1/tx/submit"       // Queue transaction
	TxConfirmRoute     = "/v1/tx/confirm"      // Confirm transaction
	TxRevokeRoute      = "/v1/tx/revoke"       // Revoke confirmation
	TxExecuteRoute     = "/v1/tx/execute"      // Execute transaction
	TxDetailsRoute     = "/v1/tx/details"      // Retrieve transaction
	TxInventoryRoute   = "/v1/tx/inventory"    // Transaction inventory
	SignerAddRoute     = "/v1/tx/signeradd"    // Add signer
	SignerRemoveRoute  = "/v1/tx/signerremove" // Remove signer
	ThresholdRoute     = "/v1/tx/threshold"    // Update threshold

	// Capability routes. Capabilities are per component; the requests
	// name the component they apply to.
	CapGrantRoute   = "/v1/cap/grant"   // Grant capability
	CapRevokeRoute  = "/v1/cap/revoke"  // Revoke capability
	CapHoldersRoute = "/v1/cap/holders" // Retrieve capability holders

	// Identity admin routes for the reference soulbound collaborator
	IdentityNewRoute = "/v1/identity/new"    // Register identity
	WeightSetRoute   = "/v1/identity/weight" // Set reputation weight

	// Components that capabilities can be granted on
	ComponentGovernance = "governance"
	ComponentRegistry   = "registry"
	ComponentCompliance = "compliance"
	ComponentMultisig   = "multisig"

	// IdentityHeader is the request header that carries the caller's
	// identity.
	IdentityHeader = "X-Amanah-Identity"

	// Error codes
	ErrorCodeInvalid          ErrorCodeT = 0
	ErrorCodeInvalidPayload   ErrorCodeT = 1
	ErrorCodeIdentityMissing  ErrorCodeT = 2
	ErrorCodeInvalidComponent ErrorCodeT = 3

	// ErrorCodeLast is used for unit test validation of human readable
	// errors.
	ErrorCodeLast ErrorCodeT = 4
)

var (
	// ErrorCodes contains the human readable errors.
	ErrorCodes = map[ErrorCodeT]string{
		ErrorCodeInvalid:          "invalid error",
		ErrorCodeInvalidPayload:   "invalid request payload",
		ErrorCodeIdentityMissing:  "identity header missing",
		ErrorCodeInvalidComponent: "invalid component",
	}
)

// UserErrorReply is the reply that the server returns when it encounters a
// transport level error that is caused by something that the user did.
// The HTTP status code will be 400.
type UserErrorReply struct {
	ErrorCode    ErrorCodeT `json:"errorcode"`
	ErrorContext string     `json:"errorcontext,omitempty"`
}

// PipelineErrorReply is the reply that the server returns when a pipeline
// component rejects the request. The error code is the component error code
// and the error message is its human readable form. The HTTP status code
// will be 400.
type PipelineErrorReply struct {
	ErrorCode    uint32 `json:"errorcode"`
	ErrorMessage string `json:"errormessage"`
	ErrorContext string `json:"errorcontext,omitempty"`
}

// ServerErrorReply is the reply that the server returns when it encounters
// an unrecoverable error. The error code is a UNIX timestamp that can be
// used to correlate the user report with the server logs. The HTTP status
// code will be 500.
type ServerErrorReply struct {
	ErrorCode int64 `json:"errorcode"`
}

// Version requests the server version. There is no request payload.
type Version struct{}

// VersionReply is the reply to the Version command.
type VersionReply struct {
	Version uint32 `json:"version"` // API version
	Height  uint64 `json:"height"`  // Current pipeline height
}

// Proposal is a community governance proposal.
type Proposal struct {
	ID           uint64 `json:"id"`
	Proposer     string `json:"proposer"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Payload      []byte `json:"payload,omitempty"`
	Status       uint32 `json:"status"` // Computed from the current height
	StartHeight  uint64 `json:"startheight"`
	EndHeight    uint64 `json:"endheight"`
	ForVotes     uint64 `json:"forvotes"`
	AgainstVotes uint64 `json:"againstvotes"`
	AbstainVotes uint64 `json:"abstainvotes"`
	Timestamp    int64  `json:"timestamp"`
}

// ProposalNew submits a new proposal.
type ProposalNew struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Payload     []byte `json:"payload,omitempty"`
}

// ProposalNewReply is the reply to the ProposalNew command.
type ProposalNewReply struct {
	Proposal Proposal `json:"proposal"`
}

// ProposalVote casts a vote on an active proposal.
type ProposalVote struct {
	ProposalID uint64 `json:"proposalid"`
	Vote       uint32 `json:"vote"`
}

// ProposalVoteReply is the reply to the ProposalVote command.
type ProposalVoteReply struct {
	Weight    uint64 `json:"weight"` // Weight the vote was cast with
	Timestamp int64  `json:"timestamp"`
}

// ProposalCancel cancels a proposal. Proposer or administrator only.
type ProposalCancel struct {
	ProposalID uint64 `json:"proposalid"`
}

// ProposalCancelReply is the reply to the ProposalCancel command.
type ProposalCancelReply struct{}

// ProposalExecute marks a succeeded proposal executed. Administrator only.
type ProposalExecute struct {
	ProposalID uint64 `json:"proposalid"`
}

// ProposalExecuteReply is the reply to the ProposalExecute command.
type ProposalExecuteReply struct{}

// ProposalDetails requests a proposal.
type ProposalDetails struct {
	ProposalID uint64 `json:"proposalid"`
}

// ProposalDetailsReply is the reply to the ProposalDetails command.
type ProposalDetailsReply struct {
	Proposal Proposal `json:"proposal"`
}

// VoteRecord is a single cast vote.
type VoteRecord struct {
	Voter     string `json:"voter"`
	Vote      uint32 `json:"vote"`
	Weight    uint64 `json:"weight"`
	Timestamp int64  `json:"timestamp"`
}

// ProposalVotes requests the cast votes of a proposal.
type ProposalVotes struct {
	ProposalID uint64 `json:"proposalid"`
}

// ProposalVotesReply is the reply to the ProposalVotes command.
type ProposalVotesReply struct {
	Votes []VoteRecord `json:"votes"`
}

// Proposals requests the proposal inventory, grouped by computed status.
type Proposals struct{}

// ProposalsReply is the reply to the Proposals command. The map keys are
// the human readable statuses.
type ProposalsReply struct {
	Proposals map[string][]uint64 `json:"proposals"`
}

// Params are the community governance parameters.
type Params struct {
	ProposalThreshold uint64 `json:"proposalthreshold"`
	VotingDelay       uint64 `json:"votingdelay"`
	VotingPeriod      uint64 `json:"votingperiod"`
	Quorum            uint64 `json:"quorum"`
}

// ParamsReply is the reply to the Params command.
type ParamsReply struct {
	Params Params `json:"params"`
}

// ParamsSet updates the governance parameters. Administrator only.
type ParamsSet struct {
	Params Params `json:"params"`
}

// ParamsSetReply is the reply to the ParamsSet command.
type ParamsSetReply struct{}

// Record is a registry record.
type Record struct {
	ID          uint64 `json:"id"`
	CommunityID uint64 `json:"communityid"`
	Proposer    string `json:"proposer"`
	Status      uint32 `json:"status"`
	BatchID     uint64 `json:"batchid,omitempty"`
	Payload     []byte `json:"payload,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// Register registers a community proposal. Administrator only.
type Register struct {
	CommunityID uint64 `json:"communityid"`
	Payload     []byte `json:"payload,omitempty"`
}

// RegisterReply is the reply to the Register command.
type RegisterReply struct {
	Record Record `json:"record"`
}

// RecordStatus sets the status of a registry record. Administrator only.
type RecordStatus struct {
	RecordID uint64 `json:"recordid"`
	Status   uint32 `json:"status"`
}

// RecordStatusReply is the reply to the RecordStatus command.
type RecordStatusReply struct {
	Record Record `json:"record"`
}

// RecordRequest requests a registry record, by registry ID or by community
// proposal ID.
type RecordRequest struct {
	RecordID    uint64 `json:"recordid,omitempty"`
	CommunityID uint64 `json:"communityid,omitempty"`
}

// RecordReply is the reply to the RecordRequest command.
type RecordReply struct {
	Record Record `json:"record"`
}

// Batch is an immutable group of approved records.
type Batch struct {
	ID        uint64   `json:"id"`
	Records   []uint64 `json:"records"`
	Timestamp int64    `json:"timestamp"`
}

// BatchNew creates a batch from approved records. Administrator only.
type BatchNew struct {
	RecordIDs []uint64 `json:"recordids"`
}

// BatchNewReply is the reply to the BatchNew command.
type BatchNewReply struct {
	Batch Batch `json:"batch"`
}

// BatchExecute executes a batch. Executor only.
type BatchExecute struct {
	BatchID uint64 `json:"batchid"`
}

// BatchExecuteReply is the reply to the BatchExecute command.
type BatchExecuteReply struct{}

// BatchRequest requests a batch.
type BatchRequest struct {
	BatchID uint64 `json:"batchid"`
}

// BatchReply is the reply to the BatchRequest command.
type BatchReply struct {
	Batch Batch `json:"batch"`
}

// Records requests the registry inventory, grouped by status.
type Records struct{}

// RecordsReply is the reply to the Records command. The map keys are the
// human readable statuses.
type RecordsReply struct {
	Records map[string][]uint64 `json:"records"`
}

// Review is a compliance review of a registry record.
type Review struct {
	RecordID      uint64 `json:"recordid"`
	Status        uint32 `json:"status"`
	Proof         string `json:"proof,omitempty"` // Hex encoded commitment
	Justification string `json:"justification,omitempty"`
	ReviewedBy    string `json:"reviewedby"`
	Timestamp     int64  `json:"timestamp"`
}

// ReviewSubmit records a council decision. Council member only.
type ReviewSubmit struct {
	RecordID      uint64 `json:"recordid"`
	Status        uint32 `json:"status"`
	Proof         string `json:"proof"` // Hex encoded commitment
	Justification string `json:"justification,omitempty"`
}

// ReviewSubmitReply is the reply to the ReviewSubmit command.
type ReviewSubmitReply struct {
	Review Review `json:"review"`
}

// ReviewVeto vetoes a registry record. Administrator only.
type ReviewVeto struct {
	RecordID uint64 `json:"recordid"`
	Reason   string `json:"reason"`
}

// ReviewVetoReply is the reply to the ReviewVeto command.
type ReviewVetoReply struct {
	Review Review `json:"review"`
}

// ReviewDetails requests the review of a registry record.
type ReviewDetails struct {
	RecordID uint64 `json:"recordid"`
}

// ReviewDetailsReply is the reply to the ReviewDetails command.
type ReviewDetailsReply struct {
	Review Review `json:"review"`
}

// Council requests the council membership. There is no request payload.
type Council struct{}

// CouncilReply is the reply to the Council command.
type CouncilReply struct {
	Members []string `json:"members"`
}

// CouncilAdd seats a council member. Administrator only.
type CouncilAdd struct {
	Member string `json:"member"`
}

// CouncilAddReply is the reply to the CouncilAdd command.
type CouncilAddReply struct{}

// CouncilRemove removes a council member. Administrator only.
type CouncilRemove struct {
	Member string `json:"member"`
}

// CouncilRemoveReply is the reply to the CouncilRemove command.
type CouncilRemoveReply struct{}

// Transaction is a queued multisig transaction.
type Transaction struct {
	ID            uint64   `json:"id"`
	Target        string   `json:"target"`
	Value         uint64   `json:"value"`
	Payload       []byte   `json:"payload,omitempty"`
	Executed      bool     `json:"executed"`
	Confirmations uint32   `json:"confirmations"`
	ConfirmedBy   []string `json:"confirmedby,omitempty"`
	SubmittedBy   string   `json:"submittedby"`
	Timestamp     int64    `json:"timestamp"`
}

// TxSubmit queues a transaction. Signer only.
type TxSubmit struct {
	Target  string `json:"target"`
	Value   uint64 `json:"value"`
	Payload []byte `json:"payload,omitempty"`
}

// TxSubmitReply is the reply to the TxSubmit command.
type TxSubmitReply struct {
	Tx Transaction `json:"tx"`
}

// TxConfirm confirms a transaction. Signer only.
type TxConfirm struct {
	TxID uint64 `json:"txid"`
}

// TxConfirmReply is the reply to the TxConfirm command.
type TxConfirmReply struct{}

// TxRevoke revokes the caller's confirmation. Signer only.
type TxRevoke struct {
	TxID uint64 `json:"txid"`
}

// TxRevokeReply is the reply to the TxRevoke command.
type TxRevokeReply struct{}

// TxExecute executes a transaction whose confirmations have met the
// threshold. Any caller may trigger the execution.
type TxExecute struct {
	TxID uint64 `json:"txid"`
}

// TxExecuteReply is the reply to the TxExecute command.
type TxExecuteReply struct{}

// TxDetails requests a transaction.
type TxDetails struct {
	TxID uint64 `json:"txid"`
}

// TxDetailsReply is the reply to the TxDetails command.
type TxDetailsReply struct {
	Tx Transaction `json:"tx"`
}

// TxInventory requests all queued transactions. There is no request
// payload.
type TxInventory struct{}

// TxInventoryReply is the reply to the TxInventory command. Transactions
// are in submission order.
type TxInventoryReply struct {
	Txs       []Transaction `json:"txs"`
	Signers   []string      `json:"signers"`
	Threshold uint32        `json:"threshold"`
}

// SignerAdd adds a multisig signer. Administrator only.
type SignerAdd struct {
	Signer string `json:"signer"`
}

// SignerAddReply is the reply to the SignerAdd command.
type SignerAddReply struct{}

// SignerRemove removes a multisig signer. Administrator only.
type SignerRemove struct {
	Signer string `json:"signer"`
}

// SignerRemoveReply is the reply to the SignerRemove command.
type SignerRemoveReply struct{}

// Threshold updates the confirmation threshold. Administrator only.
type Threshold struct {
	Threshold uint32 `json:"threshold"`
}

// ThresholdReply is the reply to the Threshold command.
type ThresholdReply struct{}

// CapGrant grants a capability on a component. Administrator only.
type CapGrant struct {
	Component  string `json:"component"`
	Identity   string `json:"identity"`
	Capability string `json:"capability"`
}

// CapGrantReply is the reply to the CapGrant command.
type CapGrantReply struct{}

// CapRevoke revokes a capability on a component. Administrator only.
type CapRevoke struct {
	Component  string `json:"component"`
	Identity   string `json:"identity"`
	Capability string `json:"capability"`
}

// CapRevokeReply is the reply to the CapRevoke command.
type CapRevokeReply struct{}

// CapHolders requests the holders of a capability on a component.
type CapHolders struct {
	Component  string `json:"component"`
	Capability string `json:"capability"`
}

// CapHoldersReply is the reply to the CapHolders command.
type CapHoldersReply struct {
	Holders []string `json:"holders"`
}

// IdentityNew registers an identity with the soulbound identity registry.
type IdentityNew struct {
	Identity string `json:"identity"`
}

// IdentityNewReply is the reply to the IdentityNew command.
type IdentityNewReply struct{}

// WeightSet sets the reputation weight of an identity.
type WeightSet struct {
	Identity string `json:"identity"`
	Weight   uint64 `json:"weight"`
}

// WeightSetReply is the reply to the WeightSet command.
type WeightSetReply struct{}
