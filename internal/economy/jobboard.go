package economy

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage"
)

// DefaultJobs is the initial immutable job catalog, seeded at startup.
var DefaultJobs = []models.Job{
	{ID: "courier-run", Title: "Courier Run", Zone: "downtown", RequiredLevel: 1, Reward: 50, XPReward: 100, Duration: 30 * time.Minute},
	{ID: "market-stall", Title: "Market Stall Shift", Zone: "bazaar", RequiredLevel: 1, Reward: 80, XPReward: 120, Duration: time.Hour},
	{ID: "archive-digitizer", Title: "Archive Digitizer", Zone: "digital", RequiredLevel: 2, Reward: 150, XPReward: 200, Duration: 2 * time.Hour},
	{ID: "workshop-mentor", Title: "Workshop Mentor", Zone: "commons", RequiredLevel: 3, Reward: 300, XPReward: 350, Duration: 3 * time.Hour},
	{ID: "grid-inspector", Title: "Grid Inspector", Zone: "industrial", RequiredLevel: 4, Reward: 500, XPReward: 500, Duration: 4 * time.Hour},
	{ID: "council-clerk", Title: "Council Clerk", Zone: "civic", RequiredLevel: 5, Reward: 800, XPReward: 700, Duration: 6 * time.Hour},
}

// EnsureJobCatalog inserts any catalog jobs that are not stored yet.
// Idempotent across restarts; existing entries are never modified.
func (e *Engine) EnsureJobCatalog(ctx context.Context, jobs []models.Job) error {
	for _, job := range jobs {
		if _, err := e.store.GetJob(ctx, job.ID); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if _, err := e.store.CreateJob(ctx, job); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
	}
	return nil
}

// Job returns one catalog entry.
func (e *Engine) Job(ctx context.Context, jobID string) (models.Job, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Job{}, ErrJobNotFound
	}
	return job, err
}

// Jobs returns the full catalog.
func (e *Engine) Jobs(ctx context.Context) ([]models.Job, error) {
	return e.store.ListJobs(ctx)
}

// Attempts returns the user's job attempts, most recent first.
func (e *Engine) Attempts(ctx context.Context, userID string) ([]models.JobAttempt, error) {
	if _, err := userOrNotFound(e.store.GetUser(ctx, userID)); err != nil {
		return nil, err
	}
	return e.store.ListAttempts(ctx, userID)
}

// Apply creates a live job attempt for the user. A user can hold at most one
// live attempt per job, and a completed job can never be re-applied for.
func (e *Engine) Apply(ctx context.Context, userID, jobID string) (models.JobAttempt, error) {
	job, err := e.Job(ctx, jobID)
	if err != nil {
		return models.JobAttempt{}, err
	}

	unlock := e.locks.Lock(userKey(userID))
	defer unlock()

	var attempt models.JobAttempt
	err = e.withRetry(ctx, func() error {
		user, err := userOrNotFound(e.store.GetUser(ctx, userID))
		if err != nil {
			return err
		}
		if user.Level < job.RequiredLevel {
			return ErrLevelTooLow
		}
		switch existing, err := e.store.GetAttempt(ctx, userID, jobID); {
		case err == nil && existing.State == models.AttemptCompleted:
			return ErrAlreadyCompleted
		case err == nil:
			return ErrAlreadyActive
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		attempt = models.JobAttempt{
			UserID:    userID,
			JobID:     jobID,
			State:     models.AttemptApplied,
			AppliedAt: time.Now().UTC(),
		}
		user.ActiveJobs = append(user.ActiveJobs, jobID)
		return e.store.CommitApply(ctx, user, attempt)
	})
	if err != nil {
		return models.JobAttempt{}, err
	}

	e.log.Info().Str("user_id", userID).Str("job_id", jobID).Msg("job application accepted")
	return attempt, nil
}

// Complete finishes the user's live attempt: the attempt transition, the
// reward credit, and the XP grant commit as one atomic unit, so a concurrent
// duplicate call observes NotActive and exactly one reward is ever paid.
func (e *Engine) Complete(ctx context.Context, userID, jobID string) (models.User, error) {
	job, err := e.Job(ctx, jobID)
	if err != nil {
		return models.User{}, err
	}

	unlock := e.locks.Lock(userKey(userID))
	defer unlock()

	var updated models.User
	err = e.withRetry(ctx, func() error {
		attempt, err := e.store.GetAttempt(ctx, userID, jobID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotActive
		} else if err != nil {
			return err
		}
		if attempt.State != models.AttemptApplied {
			return ErrNotActive
		}
		user, err := userOrNotFound(e.store.GetUser(ctx, userID))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		attempt.State = models.AttemptCompleted
		attempt.CompletedAt = now
		user.ActiveJobs = slices.DeleteFunc(user.ActiveJobs, func(id string) bool { return id == jobID })
		user.CompletedJobs = append(user.CompletedJobs, jobID)
		user.Balance += job.Reward
		e.applyXP(&user, job.XPReward)

		tx := e.newTransaction("", userID, job.Reward, models.TxJobReward)
		if _, err := e.store.CommitJobCompletion(ctx, user, attempt, tx); err != nil {
			return err
		}
		updated = e.awardBadges(ctx, user)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	e.log.Info().
		Str("user_id", userID).
		Str("job_id", jobID).
		Int64("reward", job.Reward).
		Int64("xp", job.XPReward).
		Msg("job completed")
	return updated, nil
}
