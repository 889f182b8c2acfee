package economy

import (
	"context"

	"github.com/hongminglow/civic-engine/internal/models"
)

// BadgeRule pairs a badge with its award criterion: a pure predicate over a
// user state snapshot.
type BadgeRule struct {
	Badge    models.Badge
	Criteria func(models.User) bool
}

// DefaultBadges is the production badge catalog.
var DefaultBadges = []BadgeRule{
	{
		Badge:    models.Badge{ID: "first-shift", Name: "First Shift", Rarity: "common", Icon: "wrench"},
		Criteria: func(u models.User) bool { return len(u.CompletedJobs) >= 1 },
	},
	{
		Badge:    models.Badge{ID: "working-hands", Name: "Working Hands", Rarity: "rare", Icon: "hammer"},
		Criteria: func(u models.User) bool { return len(u.CompletedJobs) >= 5 },
	},
	{
		Badge:    models.Badge{ID: "first-voice", Name: "First Voice", Rarity: "common", Icon: "megaphone"},
		Criteria: func(u models.User) bool { return u.VotesCast >= 1 },
	},
	{
		Badge:    models.Badge{ID: "ballot-regular", Name: "Ballot Regular", Rarity: "rare", Icon: "ballot"},
		Criteria: func(u models.User) bool { return u.VotesCast >= 10 },
	},
	{
		Badge:    models.Badge{ID: "rising-star", Name: "Rising Star", Rarity: "rare", Icon: "star"},
		Criteria: func(u models.User) bool { return u.Level >= 5 },
	},
	{
		Badge:    models.Badge{ID: "pillar-of-society", Name: "Pillar of Society", Rarity: "legendary", Icon: "column"},
		Criteria: func(u models.User) bool { return u.Level >= 10 },
	},
	{
		Badge:    models.Badge{ID: "first-thousand", Name: "First Thousand", Rarity: "epic", Icon: "coins"},
		Criteria: func(u models.User) bool { return u.Balance >= 1000 },
	},
}

// Badges returns the badge catalog.
func (e *Engine) Badges() []models.Badge {
	catalog := make([]models.Badge, 0, len(e.badges))
	for _, rule := range e.badges {
		catalog = append(catalog, rule.Badge)
	}
	return catalog
}

// EvaluateBadges re-runs the badge scan for the user. Awarding is idempotent:
// already-earned badges are skipped and an unmet criterion is simply not
// awarded.
func (e *Engine) EvaluateBadges(ctx context.Context, userID string) (models.User, error) {
	unlock := e.locks.Lock(userKey(userID))
	defer unlock()

	user, err := userOrNotFound(e.store.GetUser(ctx, userID))
	if err != nil {
		return models.User{}, err
	}
	return e.awardBadges(ctx, user), nil
}

// awardBadges is the post-commit hook: it scans the catalog against the given
// snapshot and persists any newly earned badges. The caller must hold the
// user's lock. Badge awarding never fails the surrounding operation.
func (e *Engine) awardBadges(ctx context.Context, user models.User) models.User {
	var earned []string
	for _, rule := range e.badges {
		if user.HasBadge(rule.Badge.ID) {
			continue
		}
		if rule.Criteria(user) {
			user.Badges = append(user.Badges, rule.Badge.ID)
			earned = append(earned, rule.Badge.ID)
		}
	}
	if len(earned) == 0 {
		return user
	}

	updated, err := e.store.UpdateUser(ctx, user)
	if err != nil {
		e.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to persist earned badges")
		return user
	}
	e.log.Info().Str("user_id", user.ID).Strs("badges", earned).Msg("badges awarded")
	return updated
}
