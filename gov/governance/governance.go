// Copyright (c) 2023 The Amanah developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package governance implements the community stage of the decision
// pipeline: members propose actions and vote on them, with each vote
// weighted by the member's reputation at cast time. Finalized outcomes are
// consumed by the proposal registry.
package governance

import (
	"encoding/json"
	"sync"

	"github.com/amanahdao/amanah/events"
	"github.com/amanahdao/amanah/gov"
	"github.com/amanahdao/amanah/gov/soulbound"
	"github.com/amanahdao/amanah/store"
	"github.com/pkg/errors"
)

// StatusT represents the status of a proposal.
type StatusT uint32

const (
	// StatusInvalid is an invalid proposal status.
	StatusInvalid StatusT = 0

	// StatusPending indicates the voting window has not opened yet.
	StatusPending StatusT = 1

	// StatusActive indicates the voting window is open.
	StatusActive StatusT = 2

	// StatusCanceled indicates the proposal was canceled by the
	// proposer or an administrator. Canceled proposals remain
	// addressable for audit.
	StatusCanceled StatusT = 3

	// StatusDefeated indicates the voting window has closed and the
	// proposal did not pass.
	StatusDefeated StatusT = 4

	// StatusSucceeded indicates the voting window has closed and the
	// proposal passed.
	StatusSucceeded StatusT = 5

	// StatusQueued is declared for compatibility with the stored
	// status set. No operation currently produces it.
	StatusQueued StatusT = 6

	// StatusExecuted indicates an administrator has marked a succeeded
	// proposal as executed. The actual side effects are carried out by
	// the multisig authority, not here.
	StatusExecuted StatusT = 7

	// StatusLast is used for unit test validation of human readable
	// statuses.
	StatusLast StatusT = 8
)

var (
	// Statuses contains the human readable proposal statuses.
	Statuses = map[StatusT]string{
		StatusInvalid:   "invalid",
		StatusPending:   "pending",
		StatusActive:    "active",
		StatusCanceled:  "canceled",
		StatusDefeated:  "defeated",
		StatusSucceeded: "succeeded",
		StatusQueued:    "queued",
		StatusExecuted:  "executed",
	}
)

// VoteT represents a vote option.
type VoteT uint32

const (
	// VoteAgainst votes against the proposal.
	VoteAgainst VoteT = 0

	// VoteFor votes for the proposal.
	VoteFor VoteT = 1

	// VoteAbstain abstains. Abstaining counts towards the quorum but
	// not towards either side.
	VoteAbstain VoteT = 2

	// VoteLast is used for unit test validation of human readable vote
	// options.
	VoteLast VoteT = 3
)

var (
	// VoteOptions contains the human readable vote options.
	VoteOptions = map[VoteT]string{
		VoteAgainst: "against",
		VoteFor:     "for",
		VoteAbstain: "abstain",
	}
)

// Params contains the governance parameters. The parameters are replaced
// atomically by UpdateParams.
type Params struct {
	// ProposalThreshold is the minimum reputation weight required to
	// submit a proposal.
	ProposalThreshold uint64 `json:"proposalthreshold"`

	// VotingDelay is the number of heights between proposal submission
	// and the opening of the voting window.
	VotingDelay uint64 `json:"votingdelay"`

	// VotingPeriod is the length of the voting window in heights.
	VotingPeriod uint64 `json:"votingperiod"`

	// Quorum is the minimum total vote weight, abstentions included,
	// required for the outcome to be considered.
	Quorum uint64 `json:"quorum"`
}

// Proposal is a unit of community decision making. Proposals are never
// destroyed; terminal proposals remain addressable for audit.
type Proposal struct {
	ID           uint64       `json:"id"`           // Sequential, starts at 1
	Proposer     gov.Identity `json:"proposer"`     // Submitting identity
	Title        string       `json:"title"`        // Opaque text reference
	Description  string       `json:"description"`  // Opaque text reference
	Payload      []byte       `json:"payload"`      // Opaque action payload
	ForVotes     uint64       `json:"forvotes"`     // Weight voted for
	AgainstVotes uint64       `json:"againstvotes"` // Weight voted against
	AbstainVotes uint64       `json:"abstainvotes"` // Weight abstained
	StartHeight  uint64       `json:"startheight"`  // Voting window open
	EndHeight    uint64       `json:"endheight"`    // Voting window close
	Status       StatusT      `json:"status"`       // Stored status
	Timestamp    int64        `json:"timestamp"`    // Submission UNIX timestamp
}

// VoteRecord records a single cast vote. The weight is the voter's
// reputation at cast time; later reputation changes never alter it.
type VoteRecord struct {
	Proposal  uint64       `json:"proposal"`
	Voter     gov.Identity `json:"voter"`
	Vote      VoteT        `json:"vote"`
	Weight    uint64       `json:"weight"`
	Timestamp int64        `json:"timestamp"`
}

// Governance provides the community governance API. All exported methods are
// safe for concurrent access and are all-or-nothing: a method that returns
// an error has not modified any state.
type Governance struct {
	sync.Mutex
	clock      gov.Clock
	identities soulbound.Registry
	ledger     soulbound.Ledger
	events     *events.Manager
	db         store.BlobKV

	params    Params
	caps      *gov.Caps
	proposals map[uint64]*Proposal
	votes     map[uint64]map[gov.Identity]VoteRecord // [proposal][voter]
	nextID    uint64
}

// dbKey is the store key that the governance state is saved under.
const dbKey = "governance-v1"

// state is the governance state that gets persisted to the store.
type state struct {
	Params    Params                                 `json:"params"`
	Caps      *gov.Caps                              `json:"caps"`
	Proposals map[uint64]*Proposal                   `json:"proposals"`
	Votes     map[uint64]map[gov.Identity]VoteRecord `json:"votes"`
	NextID    uint64                                 `json:"nextid"`
}

// save persists the full governance state to the store.
//
// This function must be called WITH the lock held.
func (g *Governance) save() error {
	s := state{
		Params:    g.params,
		Caps:      g.caps,
		Proposals: g.proposals,
		Votes:     g.votes,
		NextID:    g.nextID,
	}
	b, err := json.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	return g.db.Put(map[string][]byte{dbKey: b}, false)
}

// New returns a new Governance. Any previously saved state is loaded from
// the provided store. The admins are granted the admin capability on first
// startup; on subsequent startups the persisted capability table wins.
func New(clock gov.Clock, identities soulbound.Registry, ledger soulbound.Ledger, ev *events.Manager, db store.BlobKV, params Params, admins []gov.Identity) (*Governance, error) {
	g := Governance{
		clock:      clock,
		identities: identities,
		ledger:     ledger,
		events:     ev,
		db:         db,
		params:     params,
		caps:       gov.NewCaps(),
		proposals:  make(map[uint64]*Proposal),
		votes:      make(map[uint64]map[gov.Identity]VoteRecord),
		nextID:     1,
	}

	blobs, err := db.Get([]string{dbKey})
	if err != nil {
		return nil, err
	}
	if b, ok := blobs[dbKey]; ok {
		var s state
		err = json.Unmarshal(b, &s)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		g.params = s.Params
		g.caps = s.Caps
		g.proposals = s.Proposals
		g.votes = s.Votes
		g.nextID = s.NextID

		log.Infof("Governance state loaded: %v proposals",
			len(g.proposals))

		return &g, nil
	}

	// Fresh start. Seed the initial administrators.
	for _, id := range admins {
		g.caps.Grant(id, gov.CapabilityAdmin)
	}
	err = g.save()
	if err != nil {
		return nil, err
	}

	return &g, nil
}
