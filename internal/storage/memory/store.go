package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store is a mutex-guarded in-memory implementation of storage.Store. It
// backs tests and local development when no database is configured.
type Store struct {
	mu           sync.RWMutex
	users        map[string]models.User
	usersByName  map[string]string
	usersByEmail map[string]string
	jobs         map[string]models.Job
	jobOrder     []string
	attempts     map[string]models.JobAttempt
	proposals    map[string]models.Proposal
	transactions []models.Transaction
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[string]models.User),
		usersByName:  make(map[string]string),
		usersByEmail: make(map[string]string),
		jobs:         make(map[string]models.Job),
		attempts:     make(map[string]models.JobAttempt),
		proposals:    make(map[string]models.Proposal),
	}
}

func attemptKey(userID, jobID string) string {
	return userID + "/" + jobID
}

// cloneUser detaches the slice fields so callers never alias stored state.
func cloneUser(u models.User) models.User {
	u.Badges = slices.Clone(u.Badges)
	u.ActiveJobs = slices.Clone(u.ActiveJobs)
	u.CompletedJobs = slices.Clone(u.CompletedJobs)
	return u
}

func cloneProposal(p models.Proposal) models.Proposal {
	p.Voters = slices.Clone(p.Voters)
	return p
}

// Users

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	if _, ok := s.usersByName[user.Username]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	if _, ok := s.usersByEmail[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.users[user.ID] = cloneUser(user)
	s.usersByName[user.Username] = user.ID
	s.usersByEmail[user.Email] = user.ID
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) FindUserByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[identifier]
	if !ok {
		id, ok = s.usersByEmail[identifier]
	}
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.putUser(user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// putUser replaces a stored user; the caller must hold the write lock.
func (s *Store) putUser(user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

// Jobs

func (s *Store) CreateJob(ctx context.Context, job models.Job) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return models.Job{}, storage.ErrAlreadyExists
	}
	s.jobs[job.ID] = job
	s.jobOrder = append(s.jobOrder, job.ID)
	return job, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, storage.ErrNotFound
	}
	return job, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]models.Job, 0, len(s.jobOrder))
	for _, id := range s.jobOrder {
		jobs = append(jobs, s.jobs[id])
	}
	return jobs, nil
}

// Attempts

func (s *Store) GetAttempt(ctx context.Context, userID, jobID string) (models.JobAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempt, ok := s.attempts[attemptKey(userID, jobID)]
	if !ok {
		return models.JobAttempt{}, storage.ErrNotFound
	}
	return attempt, nil
}

func (s *Store) ListAttempts(ctx context.Context, userID string) ([]models.JobAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var attempts []models.JobAttempt
	for _, attempt := range s.attempts {
		if attempt.UserID == userID {
			attempts = append(attempts, attempt)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].AppliedAt.After(attempts[j].AppliedAt)
	})
	return attempts, nil
}

// Proposals

func (s *Store) GetProposal(ctx context.Context, id string) (models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposal, ok := s.proposals[id]
	if !ok {
		return models.Proposal{}, storage.ErrNotFound
	}
	return cloneProposal(proposal), nil
}

func (s *Store) ListProposals(ctx context.Context, limit int) ([]models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposals := make([]models.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		proposals = append(proposals, cloneProposal(proposal))
	}
	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].CreatedAt.After(proposals[j].CreatedAt)
	})
	if limit > 0 && len(proposals) > limit {
		proposals = proposals[:limit]
	}
	return proposals, nil
}

func (s *Store) UpdateProposal(ctx context.Context, proposal models.Proposal) (models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[proposal.ID]; !ok {
		return models.Proposal{}, storage.ErrNotFound
	}
	s.proposals[proposal.ID] = cloneProposal(proposal)
	return proposal, nil
}

// Ledger

func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []models.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if tx.FromUserID == userID || tx.ToUserID == userID {
			txs = append(txs, tx)
			if limit > 0 && len(txs) == limit {
				break
			}
		}
	}
	return txs, nil
}

// Atomic commits. All validation happens before the first write so a failed
// commit leaves the store untouched.

func (s *Store) CommitTransfer(ctx context.Context, from, to models.User, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[from.ID]; !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	if _, ok := s.users[to.ID]; !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	s.users[from.ID] = cloneUser(from)
	s.users[to.ID] = cloneUser(to)
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) CommitCredit(ctx context.Context, to models.User, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.putUser(to); err != nil {
		return models.Transaction{}, err
	}
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) CommitApply(ctx context.Context, user models.User, attempt models.JobAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey(attempt.UserID, attempt.JobID)
	if _, ok := s.attempts[key]; ok {
		return storage.ErrAlreadyExists
	}
	if err := s.putUser(user); err != nil {
		return err
	}
	s.attempts[key] = attempt
	return nil
}

func (s *Store) CommitJobCompletion(ctx context.Context, user models.User, attempt models.JobAttempt, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey(attempt.UserID, attempt.JobID)
	if _, ok := s.attempts[key]; !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	if err := s.putUser(user); err != nil {
		return models.Transaction{}, err
	}
	s.attempts[key] = attempt
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) CommitProposal(ctx context.Context, proposer models.User, proposal models.Proposal) (models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[proposal.ID]; ok {
		return models.Proposal{}, storage.ErrAlreadyExists
	}
	if err := s.putUser(proposer); err != nil {
		return models.Proposal{}, err
	}
	s.proposals[proposal.ID] = cloneProposal(proposal)
	return proposal, nil
}

func (s *Store) CommitVote(ctx context.Context, voter models.User, proposal models.Proposal, tx models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[proposal.ID]; !ok {
		return models.Transaction{}, storage.ErrNotFound
	}
	if err := s.putUser(voter); err != nil {
		return models.Transaction{}, err
	}
	s.proposals[proposal.ID] = cloneProposal(proposal)
	if tx.ID != "" {
		s.transactions = append(s.transactions, tx)
	}
	return tx, nil
}
