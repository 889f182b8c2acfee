package economy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurveLevelOf(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{1000, 5},
		{31999, 9},
		{32000, 10},
		{1_000_000, 10},
	}
	for _, tc := range cases {
		require.Equal(t, tc.level, DefaultCurve.LevelOf(tc.xp), "xp=%d", tc.xp)
	}
}

func TestGrantXPRecomputesLevel(t *testing.T) {
	e, ctx := newTestEngine(t)
	user := newTestUser(t, e, ctx, "climber")
	require.Equal(t, 1, user.Level)

	updated, err := e.GrantXP(ctx, user.ID, 120)
	require.NoError(t, err)
	require.Equal(t, int64(120), updated.XP)
	require.Equal(t, 2, updated.Level)

	// XP accumulates across grants; the level is always recomputed.
	updated, err = e.GrantXP(ctx, user.ID, 400)
	require.NoError(t, err)
	require.Equal(t, int64(520), updated.XP)
	require.Equal(t, 4, updated.Level)
}

func TestGrantXPRejectsNegativeAmount(t *testing.T) {
	e, ctx := newTestEngine(t)
	user := newTestUser(t, e, ctx, "cheater")

	_, err := e.GrantXP(ctx, user.ID, -10)
	require.ErrorIs(t, err, ErrInvalidInput)

	unchanged, err := e.User(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, unchanged.XP)
}

func TestGrantXPUnknownUser(t *testing.T) {
	e, ctx := newTestEngine(t)
	_, err := e.GrantXP(ctx, "nobody", 10)
	require.ErrorIs(t, err, ErrUserNotFound)
}
