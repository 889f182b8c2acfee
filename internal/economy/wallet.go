package economy

import (
	"context"

	"github.com/hongminglow/civic-engine/internal/models"
)

// Transfer moves tokens between two users. The balance check and the ledger
// append are linearizable with respect to any concurrent transfer touching
// either account: both user locks are held, ordered, for the whole
// read-check-commit sequence.
func (e *Engine) Transfer(ctx context.Context, fromID, toID string, amount int64) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	if fromID == toID {
		return models.Transaction{}, ErrSelfTransfer
	}

	unlock := e.locks.LockPair(userKey(fromID), userKey(toID))
	defer unlock()

	var out models.Transaction
	err := e.withRetry(ctx, func() error {
		from, err := userOrNotFound(e.store.GetUser(ctx, fromID))
		if err != nil {
			return err
		}
		to, err := userOrNotFound(e.store.GetUser(ctx, toID))
		if err != nil {
			return err
		}
		if from.Balance < amount {
			return ErrInsufficientFunds
		}
		from.Balance -= amount
		to.Balance += amount
		out, err = e.store.CommitTransfer(ctx, from, to, e.newTransaction(fromID, toID, amount, models.TxTransfer))
		if err != nil {
			return err
		}
		e.awardBadges(ctx, to)
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	e.log.Info().
		Str("from", fromID).
		Str("to", toID).
		Int64("amount", amount).
		Str("tx_id", out.ID).
		Msg("transfer committed")
	return out, nil
}

// Credit mints tokens into a user's account for a system-originated reward.
// It is called internally by the job board and governance ledger and is never
// exposed for arbitrary external minting.
func (e *Engine) Credit(ctx context.Context, toID string, amount int64, kind string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}

	unlock := e.locks.Lock(userKey(toID))
	defer unlock()

	var out models.Transaction
	err := e.withRetry(ctx, func() error {
		to, err := userOrNotFound(e.store.GetUser(ctx, toID))
		if err != nil {
			return err
		}
		to.Balance += amount
		out, err = e.store.CommitCredit(ctx, to, e.newTransaction("", toID, amount, kind))
		if err != nil {
			return err
		}
		e.awardBadges(ctx, to)
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	e.log.Info().Str("to", toID).Int64("amount", amount).Str("kind", kind).Msg("credit committed")
	return out, nil
}

// History returns the transactions touching the user, most recent first.
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if _, err := userOrNotFound(e.store.GetUser(ctx, userID)); err != nil {
		return nil, err
	}
	return e.store.ListTransactions(ctx, userID, limit)
}
