package models

import "time"

// JobAttempt states. An attempt is created on apply and becomes terminal on
// completion; a completed job can never be re-applied for by the same user.
const (
	AttemptApplied   = "applied"
	AttemptCompleted = "completed"
)

// Job is an immutable catalog entry in the job marketplace.
type Job struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Zone          string        `json:"zone"`
	RequiredLevel int           `json:"required_level"`
	Reward        int64         `json:"reward"`
	XPReward      int64         `json:"xp_reward"`
	Duration      time.Duration `json:"duration"`
}

// JobAttempt records one user's progress on one job. At most one live attempt
// exists per (user, job) pair.
type JobAttempt struct {
	UserID      string    `json:"user_id"`
	JobID       string    `json:"job_id"`
	State       string    `json:"state"`
	AppliedAt   time.Time `json:"applied_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}
