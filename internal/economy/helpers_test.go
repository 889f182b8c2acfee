package economy

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage/memory"
)

func newTestEngine(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	ctx := context.Background()
	e := New(memory.New(), zerolog.Nop())
	require.NoError(t, e.EnsureJobCatalog(ctx, DefaultJobs))
	return e, ctx
}

func newTestUser(t *testing.T, e *Engine, ctx context.Context, name string) models.User {
	t.Helper()
	user, err := e.CreateUser(ctx, name, name+"@example.com", "hash")
	require.NoError(t, err)
	return user
}

// fundUser mints tokens through the ledger so the balance invariant holds.
func fundUser(t *testing.T, e *Engine, ctx context.Context, userID string, amount int64) {
	t.Helper()
	_, err := e.Credit(ctx, userID, amount, models.TxJobReward)
	require.NoError(t, err)
}

// raiseToLevel grants exactly the XP needed for a fresh user to reach level.
func raiseToLevel(t *testing.T, e *Engine, ctx context.Context, userID string, level int) {
	t.Helper()
	user, err := e.GrantXP(ctx, userID, DefaultCurve[level-1])
	require.NoError(t, err)
	require.Equal(t, level, user.Level)
}

// requireLedgerInvariant checks that the user's balance equals the signed sum
// of the transaction log and is non-negative.
func requireLedgerInvariant(t *testing.T, e *Engine, ctx context.Context, userID string) {
	t.Helper()
	user, err := e.User(ctx, userID)
	require.NoError(t, err)

	txs, err := e.History(ctx, userID, 0)
	require.NoError(t, err)

	var sum int64
	for _, tx := range txs {
		if tx.ToUserID == userID {
			sum += tx.Amount
		}
		if tx.FromUserID == userID {
			sum -= tx.Amount
		}
	}
	require.Equal(t, sum, user.Balance, "balance must equal signed ledger sum")
	require.GreaterOrEqual(t, user.Balance, int64(0))
	require.Equal(t, e.LevelOf(user.XP), user.Level, "level must be derived from xp")
}
