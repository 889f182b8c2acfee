package models

import (
	"slices"
	"time"
)

// Proposal statuses. The active to closed transition is driven by an external
// policy; the engine only records it and rejects votes on closed proposals.
const (
	ProposalActive = "active"
	ProposalClosed = "closed"
)

// Proposal is a governance item open for voting. Voters is append-only; a
// user appears in it at most once.
type Proposal struct {
	ID           string    `json:"id"`
	ProposerID   string    `json:"proposer_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	VotesFor     int64     `json:"votes_for"`
	VotesAgainst int64     `json:"votes_against"`
	Voters       []string  `json:"voters"`
	CreatedAt    time.Time `json:"created_at"`
	ClosedAt     time.Time `json:"closed_at,omitzero"`
}

// HasVoted reports whether the user already voted on the proposal.
func (p Proposal) HasVoted(userID string) bool {
	return slices.Contains(p.Voters, userID)
}
