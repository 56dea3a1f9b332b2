// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gov

import "fmt"

// ErrorCodeT represents a user error code. The pipeline components share one
// error taxonomy: a failing call reports exactly one of these codes and
// leaves all state untouched. None of these failures are retried internally.
type ErrorCodeT uint32

const (
	// ErrorCodeInvalid is an invalid error code.
	ErrorCodeInvalid ErrorCodeT = 0

	// Authorization errors

	// ErrorCodeUnauthorized is returned when the caller does not hold
	// the capability that an operation requires.
	ErrorCodeUnauthorized ErrorCodeT = 1

	// ErrorCodeNotAdmin is returned when an administrator only
	// operation is invoked by a non-administrator.
	ErrorCodeNotAdmin ErrorCodeT = 2

	// ErrorCodeNotCouncilMember is returned when a council only
	// operation is invoked by an identity that is not on the council.
	ErrorCodeNotCouncilMember ErrorCodeT = 3

	// Not found errors

	// ErrorCodeProposalNotFound is returned when the provided proposal
	// does not exist.
	ErrorCodeProposalNotFound ErrorCodeT = 4

	// ErrorCodeTransactionNotFound is returned when the provided
	// multisig transaction does not exist.
	ErrorCodeTransactionNotFound ErrorCodeT = 5

	// ErrorCodeAllocationNotFound is returned when the provided
	// allocation does not exist.
	ErrorCodeAllocationNotFound ErrorCodeT = 6

	// State conflict errors

	// ErrorCodeAlreadyVoted is returned when the caller has already
	// cast a vote on the proposal.
	ErrorCodeAlreadyVoted ErrorCodeT = 7

	// ErrorCodeAlreadyReviewed is returned when a compliance review has
	// already been recorded for the proposal.
	ErrorCodeAlreadyReviewed ErrorCodeT = 8

	// ErrorCodeAlreadyBatched is returned when the registry record has
	// already been assigned to a batch.
	ErrorCodeAlreadyBatched ErrorCodeT = 9

	// ErrorCodeAlreadyConfirmed is returned when the signer has already
	// confirmed the transaction.
	ErrorCodeAlreadyConfirmed ErrorCodeT = 10

	// ErrorCodeAlreadyExecuted is returned when the transaction has
	// already been executed.
	ErrorCodeAlreadyExecuted ErrorCodeT = 11

	// ErrorCodeNotConfirmed is returned when a signer attempts to
	// revoke a confirmation that they have not given.
	ErrorCodeNotConfirmed ErrorCodeT = 12

	// Validation errors

	// ErrorCodeInvalidProposal is returned when a proposal argument is
	// not valid for the operation, e.g. an unknown vote option or an
	// execute on a proposal that has not succeeded.
	ErrorCodeInvalidProposal ErrorCodeT = 13

	// ErrorCodeInvalidStatus is returned when a status argument or a
	// record status does not allow the operation.
	ErrorCodeInvalidStatus ErrorCodeT = 14

	// ErrorCodeInvalidThreshold is returned when a signature threshold
	// is outside of [1, signer count].
	ErrorCodeInvalidThreshold ErrorCodeT = 15

	// ErrorCodeInvalidSigner is returned when a signer identity is the
	// zero value or a duplicate.
	ErrorCodeInvalidSigner ErrorCodeT = 16

	// ErrorCodeInvalidProof is returned when a proof commitment is the
	// zero value.
	ErrorCodeInvalidProof ErrorCodeT = 17

	// ErrorCodeInvalidAmount is returned when an amount argument is not
	// valid.
	ErrorCodeInvalidAmount ErrorCodeT = 18

	// Insufficiency errors

	// ErrorCodeInsufficientReputation is returned when the caller's
	// reputation weight does not meet the required threshold.
	ErrorCodeInsufficientReputation ErrorCodeT = 19

	// ErrorCodeInsufficientConfirmations is returned when a transaction
	// is executed before the confirmation threshold has been met.
	ErrorCodeInsufficientConfirmations ErrorCodeT = 20

	// ErrorCodeInsufficientBalance is returned when the target cannot
	// cover the transaction value.
	ErrorCodeInsufficientBalance ErrorCodeT = 21

	// Lifecycle errors

	// ErrorCodeProposalNotActive is returned when a vote is cast
	// outside of the proposal's voting window.
	ErrorCodeProposalNotActive ErrorCodeT = 22

	// ErrorCodeExecutionFailed is returned when the downstream call of
	// an executed transaction reports failure.
	ErrorCodeExecutionFailed ErrorCodeT = 23

	// ErrorCodeLast is used for unit test validation of human readable
	// errors. It is not a valid error code.
	ErrorCodeLast ErrorCodeT = 24
)

var (
	// ErrorCodes contains the human readable error messages.
	ErrorCodes = map[ErrorCodeT]string{
		ErrorCodeInvalid:                   "error invalid",
		ErrorCodeUnauthorized:              "unauthorized",
		ErrorCodeNotAdmin:                  "not an administrator",
		ErrorCodeNotCouncilMember:          "not a council member",
		ErrorCodeProposalNotFound:          "proposal not found",
		ErrorCodeTransactionNotFound:       "transaction not found",
		ErrorCodeAllocationNotFound:        "allocation not found",
		ErrorCodeAlreadyVoted:              "already voted",
		ErrorCodeAlreadyReviewed:           "already reviewed",
		ErrorCodeAlreadyBatched:            "already batched",
		ErrorCodeAlreadyConfirmed:          "already confirmed",
		ErrorCodeAlreadyExecuted:           "already executed",
		ErrorCodeNotConfirmed:              "not confirmed",
		ErrorCodeInvalidProposal:           "invalid proposal",
		ErrorCodeInvalidStatus:             "invalid status",
		ErrorCodeInvalidThreshold:          "invalid threshold",
		ErrorCodeInvalidSigner:             "invalid signer",
		ErrorCodeInvalidProof:              "invalid proof",
		ErrorCodeInvalidAmount:             "invalid amount",
		ErrorCodeInsufficientReputation:    "insufficient reputation",
		ErrorCodeInsufficientConfirmations: "insufficient confirmations",
		ErrorCodeInsufficientBalance:       "insufficient balance",
		ErrorCodeProposalNotActive:         "proposal not active",
		ErrorCodeExecutionFailed:           "execution failed",
	}
)

// UserError represents an error that is caused by the caller. A UserError is
// a synchronous all-or-nothing failure: the call that returns it has not
// modified any state.
type UserError struct {
	ErrorCode    ErrorCodeT
	ErrorContext string
}

// Error satisfies the error interface.
func (e UserError) Error() string {
	if e.ErrorContext == "" {
		return fmt.Sprintf("user error (%v): %v",
			e.ErrorCode, ErrorCodes[e.ErrorCode])
	}
	return fmt.Sprintf("user error (%v): %v, %v",
		e.ErrorCode, ErrorCodes[e.ErrorCode], e.ErrorContext)
}
