package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the economy engine. The
// Commit* operations run inside database transactions so every operation
// either fully applies or fully fails.
type Store struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'citizen',
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			xp BIGINT NOT NULL DEFAULT 0 CHECK (xp >= 0),
			level INT NOT NULL DEFAULT 1,
			badges TEXT[] NOT NULL DEFAULT '{}',
			active_jobs TEXT[] NOT NULL DEFAULT '{}',
			completed_jobs TEXT[] NOT NULL DEFAULT '{}',
			votes_cast BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			zone TEXT NOT NULL,
			required_level INT NOT NULL,
			reward BIGINT NOT NULL CHECK (reward > 0),
			xp_reward BIGINT NOT NULL CHECK (xp_reward >= 0),
			duration_ns BIGINT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS job_attempts (
			user_id TEXT NOT NULL REFERENCES users(id),
			job_id TEXT NOT NULL REFERENCES jobs(id),
			state TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ,
			PRIMARY KEY (user_id, job_id)
		);`,
		`CREATE TABLE IF NOT EXISTS proposals (
			id TEXT PRIMARY KEY,
			proposer_id TEXT NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			votes_for BIGINT NOT NULL DEFAULT 0,
			votes_against BIGINT NOT NULL DEFAULT 0,
			voters TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			closed_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			from_user_id TEXT REFERENCES users(id),
			to_user_id TEXT NOT NULL REFERENCES users(id),
			amount BIGINT NOT NULL CHECK (amount > 0),
			kind TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS transactions_to_user_idx ON transactions (to_user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS transactions_from_user_idx ON transactions (from_user_id, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// mapError translates pgx errors into the storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return storage.ErrAlreadyExists
		case "40001", "40P01":
			return storage.ErrConflict
		}
	}
	return err
}

func (s *Store) inTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return mapError(err)
	}
	return mapError(tx.Commit(ctx))
}

// nullable turns zero values into NULLs for optional columns.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Users

const userColumns = `id, username, email, password_hash, role, balance, xp, level,
	badges, active_jobs, completed_jobs, votes_cast, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.Balance, &user.XP, &user.Level, &user.Badges, &user.ActiveJobs,
		&user.CompletedJobs, &user.VotesCast, &user.CreatedAt)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	INSERT INTO users (id, username, email, password_hash, role, balance, xp, level,
		badges, active_jobs, completed_jobs, votes_cast, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
		COALESCE($9, '{}'), COALESCE($10, '{}'), COALESCE($11, '{}'), $12, $13)
	RETURNING ` + userColumns + `;`
	row := s.pool.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash,
		user.Role, user.Balance, user.XP, user.Level, user.Badges, user.ActiveJobs,
		user.CompletedJobs, user.VotesCast, user.CreatedAt)
	return scanUser(row)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) FindUserByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 LIMIT 1;`
	return scanUser(s.pool.QueryRow(ctx, query, identifier))
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	return s.updateUser(ctx, s.pool, user)
}

func (s *Store) updateUser(ctx context.Context, q querier, user models.User) (models.User, error) {
	const query = `
	UPDATE users SET balance = $2, xp = $3, level = $4,
		badges = COALESCE($5, '{}'), active_jobs = COALESCE($6, '{}'),
		completed_jobs = COALESCE($7, '{}'), votes_cast = $8, role = $9
	WHERE id = $1
	RETURNING ` + userColumns + `;`
	row := q.QueryRow(ctx, query, user.ID, user.Balance, user.XP, user.Level,
		user.Badges, user.ActiveJobs, user.CompletedJobs, user.VotesCast, user.Role)
	return scanUser(row)
}

// Jobs

const jobColumns = `id, title, zone, required_level, reward, xp_reward, duration_ns`

func scanJob(row pgx.Row) (models.Job, error) {
	var job models.Job
	var durationNS int64
	err := row.Scan(&job.ID, &job.Title, &job.Zone, &job.RequiredLevel, &job.Reward,
		&job.XPReward, &durationNS)
	if err != nil {
		return models.Job{}, mapError(err)
	}
	job.Duration = time.Duration(durationNS)
	return job, nil
}

func (s *Store) CreateJob(ctx context.Context, job models.Job) (models.Job, error) {
	const query = `
	INSERT INTO jobs (id, title, zone, required_level, reward, xp_reward, duration_ns)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + jobColumns + `;`
	row := s.pool.QueryRow(ctx, query, job.ID, job.Title, job.Zone, job.RequiredLevel,
		job.Reward, job.XPReward, int64(job.Duration))
	return scanJob(row)
}

func (s *Store) GetJob(ctx context.Context, id string) (models.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1;`
	return scanJob(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) ListJobs(ctx context.Context) ([]models.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs ORDER BY required_level, id;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, mapError(rows.Err())
}

// Attempts

const attemptColumns = `user_id, job_id, state, applied_at, completed_at`

func scanAttempt(row pgx.Row) (models.JobAttempt, error) {
	var attempt models.JobAttempt
	var completedAt *time.Time
	err := row.Scan(&attempt.UserID, &attempt.JobID, &attempt.State, &attempt.AppliedAt, &completedAt)
	if err != nil {
		return models.JobAttempt{}, mapError(err)
	}
	if completedAt != nil {
		attempt.CompletedAt = *completedAt
	}
	return attempt, nil
}

func (s *Store) GetAttempt(ctx context.Context, userID, jobID string) (models.JobAttempt, error) {
	const query = `SELECT ` + attemptColumns + ` FROM job_attempts WHERE user_id = $1 AND job_id = $2;`
	return scanAttempt(s.pool.QueryRow(ctx, query, userID, jobID))
}

func (s *Store) ListAttempts(ctx context.Context, userID string) ([]models.JobAttempt, error) {
	const query = `SELECT ` + attemptColumns + ` FROM job_attempts WHERE user_id = $1 ORDER BY applied_at DESC;`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var attempts []models.JobAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, mapError(rows.Err())
}

// Proposals

const proposalColumns = `id, proposer_id, title, description, status, votes_for,
	votes_against, voters, created_at, closed_at`

func scanProposal(row pgx.Row) (models.Proposal, error) {
	var proposal models.Proposal
	var closedAt *time.Time
	err := row.Scan(&proposal.ID, &proposal.ProposerID, &proposal.Title, &proposal.Description,
		&proposal.Status, &proposal.VotesFor, &proposal.VotesAgainst, &proposal.Voters,
		&proposal.CreatedAt, &closedAt)
	if err != nil {
		return models.Proposal{}, mapError(err)
	}
	if closedAt != nil {
		proposal.ClosedAt = *closedAt
	}
	return proposal, nil
}

func (s *Store) GetProposal(ctx context.Context, id string) (models.Proposal, error) {
	const query = `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1;`
	return scanProposal(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) ListProposals(ctx context.Context, limit int) ([]models.Proposal, error) {
	const query = `SELECT ` + proposalColumns + ` FROM proposals ORDER BY created_at DESC LIMIT $1;`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}
	return proposals, mapError(rows.Err())
}

func (s *Store) UpdateProposal(ctx context.Context, proposal models.Proposal) (models.Proposal, error) {
	return s.updateProposal(ctx, s.pool, proposal)
}

func (s *Store) updateProposal(ctx context.Context, q querier, proposal models.Proposal) (models.Proposal, error) {
	const query = `
	UPDATE proposals SET status = $2, votes_for = $3, votes_against = $4,
		voters = COALESCE($5, '{}'), closed_at = $6
	WHERE id = $1
	RETURNING ` + proposalColumns + `;`
	row := q.QueryRow(ctx, query, proposal.ID, proposal.Status, proposal.VotesFor,
		proposal.VotesAgainst, proposal.Voters, nullableTime(proposal.ClosedAt))
	return scanProposal(row)
}

// Ledger

func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	const query = `
	SELECT id, COALESCE(from_user_id, ''), to_user_id, amount, kind, created_at
	FROM transactions
	WHERE from_user_id = $1 OR to_user_id = $1
	ORDER BY created_at DESC, id
	LIMIT $2;`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.FromUserID, &tx.ToUserID, &tx.Amount, &tx.Kind, &tx.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		txs = append(txs, tx)
	}
	return txs, mapError(rows.Err())
}

func insertTransaction(ctx context.Context, q querier, tx models.Transaction) error {
	const query = `
	INSERT INTO transactions (id, from_user_id, to_user_id, amount, kind, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);`
	_, err := q.Exec(ctx, query, tx.ID, nullableString(tx.FromUserID), tx.ToUserID,
		tx.Amount, tx.Kind, tx.CreatedAt)
	return err
}

func upsertAttempt(ctx context.Context, q querier, attempt models.JobAttempt) error {
	const query = `
	INSERT INTO job_attempts (user_id, job_id, state, applied_at, completed_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, job_id)
	DO UPDATE SET state = EXCLUDED.state, completed_at = EXCLUDED.completed_at;`
	_, err := q.Exec(ctx, query, attempt.UserID, attempt.JobID, attempt.State,
		attempt.AppliedAt, nullableTime(attempt.CompletedAt))
	return err
}

// Atomic commits

func (s *Store) CommitTransfer(ctx context.Context, from, to models.User, tx models.Transaction) (models.Transaction, error) {
	err := s.inTx(ctx, func(q querier) error {
		if _, err := s.updateUser(ctx, q, from); err != nil {
			return err
		}
		if _, err := s.updateUser(ctx, q, to); err != nil {
			return err
		}
		return insertTransaction(ctx, q, tx)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) CommitCredit(ctx context.Context, to models.User, tx models.Transaction) (models.Transaction, error) {
	err := s.inTx(ctx, func(q querier) error {
		if _, err := s.updateUser(ctx, q, to); err != nil {
			return err
		}
		return insertTransaction(ctx, q, tx)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) CommitApply(ctx context.Context, user models.User, attempt models.JobAttempt) error {
	return s.inTx(ctx, func(q querier) error {
		if _, err := s.updateUser(ctx, q, user); err != nil {
			return err
		}
		const query = `
		INSERT INTO job_attempts (user_id, job_id, state, applied_at)
		VALUES ($1, $2, $3, $4);`
		_, err := q.Exec(ctx, query, attempt.UserID, attempt.JobID, attempt.State, attempt.AppliedAt)
		return err
	})
}

func (s *Store) CommitJobCompletion(ctx context.Context, user models.User, attempt models.JobAttempt, tx models.Transaction) (models.Transaction, error) {
	err := s.inTx(ctx, func(q querier) error {
		if _, err := s.updateUser(ctx, q, user); err != nil {
			return err
		}
		if err := upsertAttempt(ctx, q, attempt); err != nil {
			return err
		}
		return insertTransaction(ctx, q, tx)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) CommitProposal(ctx context.Context, proposer models.User, proposal models.Proposal) (models.Proposal, error) {
	err := s.inTx(ctx, func(q querier) error {
		if _, err := s.updateUser(ctx, q, proposer); err != nil {
			return err
		}
		const query = `
		INSERT INTO proposals (id, proposer_id, title, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`
		_, err := q.Exec(ctx, query, proposal.ID, proposal.ProposerID, proposal.Title,
			proposal.Description, proposal.Status, proposal.CreatedAt)
		return err
	})
	if err != nil {
		return models.Proposal{}, err
	}
	return proposal, nil
}

func (s *Store) CommitVote(ctx context.Context, voter models.User, proposal models.Proposal, tx models.Transaction) (models.Transaction, error) {
	err := s.inTx(ctx, func(q querier) error {
		if _, err := s.updateUser(ctx, q, voter); err != nil {
			return err
		}
		if _, err := s.updateProposal(ctx, q, proposal); err != nil {
			return err
		}
		if tx.ID == "" {
			return nil
		}
		return insertTransaction(ctx, q, tx)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}
