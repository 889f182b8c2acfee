package economy

import (
	"context"

	"github.com/hongminglow/civic-engine/internal/models"
)

// Curve is the fixed, strictly increasing table of cumulative XP thresholds
// indexed by level: Curve[i] is the XP required to reach level i+1. Any
// strictly increasing sequence starting at 0 is valid configuration.
type Curve []int64

// DefaultCurve covers levels 1 through 10.
var DefaultCurve = Curve{0, 100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000}

// LevelOf returns the highest level whose threshold does not exceed xp.
func (c Curve) LevelOf(xp int64) int {
	level := 1
	for i, threshold := range c {
		if xp < threshold {
			break
		}
		level = i + 1
	}
	return level
}

// LevelOf is a pure lookup on the engine's curve.
func (e *Engine) LevelOf(xp int64) int {
	return e.curve.LevelOf(xp)
}

// applyXP adds earned XP to the user and recomputes the level from the curve.
// Level is always a derived value; XP and level are never decremented here.
func (e *Engine) applyXP(u *models.User, amount int64) {
	u.XP += amount
	u.Level = e.curve.LevelOf(u.XP)
}

// GrantXP adds XP to the user and recomputes the level. Deduplication of the
// underlying event is the caller's responsibility.
func (e *Engine) GrantXP(ctx context.Context, userID string, amount int64) (models.User, error) {
	if amount < 0 {
		return models.User{}, ErrInvalidInput
	}

	unlock := e.locks.Lock(userKey(userID))
	defer unlock()

	var updated models.User
	err := e.withRetry(ctx, func() error {
		user, err := userOrNotFound(e.store.GetUser(ctx, userID))
		if err != nil {
			return err
		}
		e.applyXP(&user, amount)
		user, err = e.store.UpdateUser(ctx, user)
		if err != nil {
			return err
		}
		updated = e.awardBadges(ctx, user)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	e.log.Debug().Str("user_id", userID).Int64("xp", amount).Int("level", updated.Level).Msg("xp granted")
	return updated, nil
}
