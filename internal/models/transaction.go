package models

import "time"

// Transaction kinds.
const (
	TxTransfer   = "transfer"
	TxJobReward  = "job_reward"
	TxVoteReward = "vote_reward"
)

// Transaction is an immutable entry in the append-only token ledger. An empty
// FromUserID marks a system mint (job or vote reward). The ledger is the
// source of truth for balance history; User.Balance is the materialized sum
// of the signed transactions touching that user.
type Transaction struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id,omitempty"`
	ToUserID   string    `json:"to_user_id"`
	Amount     int64     `json:"amount"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}
