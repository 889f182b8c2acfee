package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/civic-engine/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConflict indicates a transient concurrency conflict (e.g. a serialization
// failure). Safe to retry before any side effect has been committed.
var ErrConflict = errors.New("storage conflict")

// Store captures persistence for the economy engine. The Commit* operations
// are atomic: every write in them applies, or none does. Record identity and
// timestamps are assigned by the caller; stores persist records verbatim.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	FindUserByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)

	// Job catalog. Jobs are immutable once created.
	CreateJob(ctx context.Context, job models.Job) (models.Job, error)
	GetJob(ctx context.Context, id string) (models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)

	// Per-user job attempts.
	GetAttempt(ctx context.Context, userID, jobID string) (models.JobAttempt, error)
	ListAttempts(ctx context.Context, userID string) ([]models.JobAttempt, error)

	// Proposals.
	GetProposal(ctx context.Context, id string) (models.Proposal, error)
	ListProposals(ctx context.Context, limit int) ([]models.Proposal, error)
	UpdateProposal(ctx context.Context, proposal models.Proposal) (models.Proposal, error)

	// Ledger reads, most recent first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)

	// Atomic commits.
	CommitTransfer(ctx context.Context, from, to models.User, tx models.Transaction) (models.Transaction, error)
	CommitCredit(ctx context.Context, to models.User, tx models.Transaction) (models.Transaction, error)
	CommitApply(ctx context.Context, user models.User, attempt models.JobAttempt) error
	CommitJobCompletion(ctx context.Context, user models.User, attempt models.JobAttempt, tx models.Transaction) (models.Transaction, error)
	CommitProposal(ctx context.Context, proposer models.User, proposal models.Proposal) (models.Proposal, error)
	// CommitVote persists the updated voter and proposal together with the
	// vote reward transaction; a zero-ID transaction means no token reward.
	CommitVote(ctx context.Context, voter models.User, proposal models.Proposal, tx models.Transaction) (models.Transaction, error)
}
