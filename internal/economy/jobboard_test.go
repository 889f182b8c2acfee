package economy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/civic-engine/internal/models"
)

func TestJobLifecycle(t *testing.T) {
	e, ctx := newTestEngine(t)
	worker := newTestUser(t, e, ctx, "worker")

	attempt, err := e.Apply(ctx, worker.ID, "courier-run")
	require.NoError(t, err)
	require.Equal(t, models.AttemptApplied, attempt.State)

	applied, err := e.User(ctx, worker.ID)
	require.NoError(t, err)
	require.True(t, applied.HasActiveJob("courier-run"))

	completed, err := e.Complete(ctx, worker.ID, "courier-run")
	require.NoError(t, err)
	require.Equal(t, int64(50), completed.Balance)
	require.Equal(t, int64(100), completed.XP)
	require.Equal(t, e.LevelOf(100), completed.Level)
	require.False(t, completed.HasActiveJob("courier-run"))
	require.True(t, completed.HasCompletedJob("courier-run"))
	require.True(t, completed.HasBadge("first-shift"))

	txs, err := e.History(ctx, worker.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.TxJobReward, txs[0].Kind)
	require.Equal(t, int64(50), txs[0].Amount)
	require.Empty(t, txs[0].FromUserID)

	attempts, err := e.Attempts(ctx, worker.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, models.AttemptCompleted, attempts[0].State)

	requireLedgerInvariant(t, e, ctx, worker.ID)
}

func TestApplyErrors(t *testing.T) {
	e, ctx := newTestEngine(t)
	worker := newTestUser(t, e, ctx, "worker")

	_, err := e.Apply(ctx, worker.ID, "no-such-job")
	require.ErrorIs(t, err, ErrJobNotFound)

	_, err = e.Apply(ctx, "nobody", "courier-run")
	require.ErrorIs(t, err, ErrUserNotFound)

	// grid-inspector requires level 4; a fresh user is level 1.
	_, err = e.Apply(ctx, worker.ID, "grid-inspector")
	require.ErrorIs(t, err, ErrLevelTooLow)

	_, err = e.Apply(ctx, worker.ID, "courier-run")
	require.NoError(t, err)
	_, err = e.Apply(ctx, worker.ID, "courier-run")
	require.ErrorIs(t, err, ErrAlreadyActive)

	_, err = e.Complete(ctx, worker.ID, "courier-run")
	require.NoError(t, err)
	_, err = e.Apply(ctx, worker.ID, "courier-run")
	require.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompleteErrors(t *testing.T) {
	e, ctx := newTestEngine(t)
	worker := newTestUser(t, e, ctx, "worker")

	_, err := e.Complete(ctx, worker.ID, "no-such-job")
	require.ErrorIs(t, err, ErrJobNotFound)

	_, err = e.Complete(ctx, worker.ID, "courier-run")
	require.ErrorIs(t, err, ErrNotActive)

	_, err = e.Apply(ctx, worker.ID, "courier-run")
	require.NoError(t, err)
	_, err = e.Complete(ctx, worker.ID, "courier-run")
	require.NoError(t, err)

	// Completing twice pays out exactly once.
	_, err = e.Complete(ctx, worker.ID, "courier-run")
	require.ErrorIs(t, err, ErrNotActive)

	worker, err = e.User(ctx, worker.ID)
	require.NoError(t, err)
	require.Equal(t, int64(50), worker.Balance)
}

func TestConcurrentCompletePaysOnce(t *testing.T) {
	e, ctx := newTestEngine(t)
	worker := newTestUser(t, e, ctx, "worker")
	_, err := e.Apply(ctx, worker.ID, "courier-run")
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.Complete(ctx, worker.ID, "courier-run")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrNotActive)
		}
	}
	require.Equal(t, 1, succeeded, "exactly one completion may pay out")

	after, err := e.User(ctx, worker.ID)
	require.NoError(t, err)
	require.Equal(t, int64(50), after.Balance)
	require.Equal(t, int64(100), after.XP)

	txs, err := e.History(ctx, worker.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	requireLedgerInvariant(t, e, ctx, worker.ID)
}

func TestJobCatalog(t *testing.T) {
	e, ctx := newTestEngine(t)

	jobs, err := e.Jobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, len(DefaultJobs))

	job, err := e.Job(ctx, "courier-run")
	require.NoError(t, err)
	require.Equal(t, "downtown", job.Zone)
	require.Equal(t, 1, job.RequiredLevel)

	// Seeding again must not duplicate or modify entries.
	require.NoError(t, e.EnsureJobCatalog(ctx, DefaultJobs))
	jobs, err = e.Jobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, len(DefaultJobs))
}
