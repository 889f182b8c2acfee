package models

import (
	"slices"
	"time"
)

// User is a participant in the digital society. Balance, XP, level, badges,
// and the job sets are mutated only through the economy engine so invariants
// stay centralized and auditable.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"`
	Balance       int64     `json:"balance"`
	XP            int64     `json:"xp"`
	Level         int       `json:"level"`
	Badges        []string  `json:"badges"`
	ActiveJobs    []string  `json:"active_jobs"`
	CompletedJobs []string  `json:"completed_jobs"`
	VotesCast     int64     `json:"votes_cast"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasBadge reports whether the user already earned the badge.
func (u User) HasBadge(badgeID string) bool {
	return slices.Contains(u.Badges, badgeID)
}

// HasActiveJob reports whether the user has a live attempt for the job.
func (u User) HasActiveJob(jobID string) bool {
	return slices.Contains(u.ActiveJobs, jobID)
}

// HasCompletedJob reports whether the user already completed the job.
func (u User) HasCompletedJob(jobID string) bool {
	return slices.Contains(u.CompletedJobs, jobID)
}
