package economy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage"
)

// Policy holds the tunable business constants of the economy.
type Policy struct {
	MinProposalLevel int
	ProposalXP       int64
	VoteXP           int64
	VoteReward       int64
}

// DefaultPolicy returns the production policy constants.
func DefaultPolicy() Policy {
	return Policy{
		MinProposalLevel: 2,
		ProposalXP:       50,
		VoteXP:           10,
		VoteReward:       5,
	}
}

// Engine owns all mutable participant state: balances, XP, levels, badges,
// job attempts, and votes. Every mutation goes through one of its operations;
// serialization is scoped to the smallest resource in contention (a user, a
// pair of users, or a proposal) and there is no global lock.
type Engine struct {
	store  storage.Store
	curve  Curve
	policy Policy
	badges []BadgeRule
	locks  *keyedMutex
	log    zerolog.Logger
}

// New creates an engine over the store with the default curve, policy, and
// badge catalog.
func New(store storage.Store, log zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		curve:  DefaultCurve,
		policy: DefaultPolicy(),
		badges: DefaultBadges,
		locks:  newKeyedMutex(),
		log:    log.With().Str("component", "economy").Logger(),
	}
}

// Policy returns the active policy constants.
func (e *Engine) Policy() Policy {
	return e.policy
}

const (
	retryAttempts  = 3
	retryBaseDelay = 10 * time.Millisecond
)

// withRetry runs fn, retrying transient storage conflicts with backoff. Each
// attempt re-reads state and commits atomically, so a retry never happens
// after a side effect.
func (e *Engine) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if !errors.Is(err, storage.ErrConflict) || attempt == retryAttempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBaseDelay << attempt):
		}
	}
}

func (e *Engine) newTransaction(fromID, toID string, amount int64, kind string) models.Transaction {
	return models.Transaction{
		ID:         uuid.NewString(),
		FromUserID: fromID,
		ToUserID:   toID,
		Amount:     amount,
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
	}
}

// userOrNotFound translates the storage sentinel into the engine error.
func userOrNotFound(user models.User, err error) (models.User, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
