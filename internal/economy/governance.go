package economy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage"
)

// Proposal returns one proposal.
func (e *Engine) Proposal(ctx context.Context, proposalID string) (models.Proposal, error) {
	proposal, err := e.store.GetProposal(ctx, proposalID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Proposal{}, ErrProposalNotFound
	}
	return proposal, err
}

// Proposals lists proposals, most recent first.
func (e *Engine) Proposals(ctx context.Context, limit int) ([]models.Proposal, error) {
	if limit <= 0 {
		limit = 50
	}
	return e.store.ListProposals(ctx, limit)
}

// CreateProposal opens a new proposal for voting and grants the proposer the
// participation XP reward in the same commit.
func (e *Engine) CreateProposal(ctx context.Context, userID, title, description string) (models.Proposal, error) {
	if strings.TrimSpace(title) == "" {
		return models.Proposal{}, ErrInvalidInput
	}

	unlock := e.locks.Lock(userKey(userID))
	defer unlock()

	var created models.Proposal
	err := e.withRetry(ctx, func() error {
		user, err := userOrNotFound(e.store.GetUser(ctx, userID))
		if err != nil {
			return err
		}
		if user.Level < e.policy.MinProposalLevel {
			return ErrLevelTooLow
		}

		proposal := models.Proposal{
			ID:          uuid.NewString(),
			ProposerID:  userID,
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(description),
			Status:      models.ProposalActive,
			CreatedAt:   time.Now().UTC(),
		}
		e.applyXP(&user, e.policy.ProposalXP)
		created, err = e.store.CommitProposal(ctx, user, proposal)
		if err != nil {
			return err
		}
		e.awardBadges(ctx, user)
		return nil
	})
	if err != nil {
		return models.Proposal{}, err
	}

	e.log.Info().Str("proposal_id", created.ID).Str("proposer", userID).Msg("proposal created")
	return created, nil
}

// Vote records the user's vote. The already-voted check and the tally
// increment are serialized per proposal, so concurrent votes by different
// users are all counted while a concurrent duplicate counts exactly once.
// Voting grants the participation XP reward and a small token reward.
func (e *Engine) Vote(ctx context.Context, userID, proposalID string, inFavor bool) (models.Proposal, error) {
	unlockProposal := e.locks.Lock(proposalKey(proposalID))
	defer unlockProposal()

	var updated models.Proposal
	err := e.withRetry(ctx, func() error {
		proposal, err := e.Proposal(ctx, proposalID)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalActive {
			return ErrProposalClosed
		}
		if proposal.HasVoted(userID) {
			return ErrAlreadyVoted
		}

		// Proposal locks are always taken before user locks; no engine
		// operation acquires them in the opposite order.
		unlockUser := e.locks.Lock(userKey(userID))
		defer unlockUser()

		user, err := userOrNotFound(e.store.GetUser(ctx, userID))
		if err != nil {
			return err
		}

		proposal.Voters = append(proposal.Voters, userID)
		if inFavor {
			proposal.VotesFor++
		} else {
			proposal.VotesAgainst++
		}
		user.VotesCast++
		e.applyXP(&user, e.policy.VoteXP)

		var tx models.Transaction
		if e.policy.VoteReward > 0 {
			user.Balance += e.policy.VoteReward
			tx = e.newTransaction("", userID, e.policy.VoteReward, models.TxVoteReward)
		}
		if _, err := e.store.CommitVote(ctx, user, proposal, tx); err != nil {
			return err
		}
		e.awardBadges(ctx, user)
		updated = proposal
		return nil
	})
	if err != nil {
		return models.Proposal{}, err
	}

	e.log.Info().
		Str("proposal_id", proposalID).
		Str("voter", userID).
		Bool("in_favor", inFavor).
		Msg("vote recorded")
	return updated, nil
}

// CloseProposal records the externally decided active to closed transition.
// The engine does not infer timing or quorum rules; it only applies the
// injected decision and rejects further votes.
func (e *Engine) CloseProposal(ctx context.Context, proposalID string) (models.Proposal, error) {
	unlock := e.locks.Lock(proposalKey(proposalID))
	defer unlock()

	var updated models.Proposal
	err := e.withRetry(ctx, func() error {
		proposal, err := e.Proposal(ctx, proposalID)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalActive {
			return ErrProposalClosed
		}
		proposal.Status = models.ProposalClosed
		proposal.ClosedAt = time.Now().UTC()
		updated, err = e.store.UpdateProposal(ctx, proposal)
		return err
	})
	if err != nil {
		return models.Proposal{}, err
	}

	e.log.Info().Str("proposal_id", proposalID).Msg("proposal closed")
	return updated, nil
}
