package economy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/civic-engine/internal/models"
)

func TestCreateProposalLevelGate(t *testing.T) {
	e, ctx := newTestEngine(t)
	novice := newTestUser(t, e, ctx, "novice")

	_, err := e.CreateProposal(ctx, novice.ID, "More benches", "benches in the commons")
	require.ErrorIs(t, err, ErrLevelTooLow)

	raiseToLevel(t, e, ctx, novice.ID, e.Policy().MinProposalLevel)
	proposal, err := e.CreateProposal(ctx, novice.ID, "More benches", "benches in the commons")
	require.NoError(t, err)
	require.Equal(t, models.ProposalActive, proposal.Status)
	require.Equal(t, novice.ID, proposal.ProposerID)
	require.Empty(t, proposal.Voters)

	// Creating a proposal grants the participation XP reward.
	proposer, err := e.User(ctx, novice.ID)
	require.NoError(t, err)
	require.Equal(t, DefaultCurve[e.Policy().MinProposalLevel-1]+e.Policy().ProposalXP, proposer.XP)
}

func TestCreateProposalEmptyTitle(t *testing.T) {
	e, ctx := newTestEngine(t)
	user := newTestUser(t, e, ctx, "user")
	raiseToLevel(t, e, ctx, user.ID, e.Policy().MinProposalLevel)

	_, err := e.CreateProposal(ctx, user.ID, "   ", "no title")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestVoteScenario(t *testing.T) {
	e, ctx := newTestEngine(t)
	carol := newTestUser(t, e, ctx, "carol")
	raiseToLevel(t, e, ctx, carol.ID, 2)
	proposal, err := e.CreateProposal(ctx, carol.ID, "Night market", "open the bazaar at night")
	require.NoError(t, err)

	dave := newTestUser(t, e, ctx, "dave")
	erin := newTestUser(t, e, ctx, "erin")
	frank := newTestUser(t, e, ctx, "frank")

	for _, voter := range []models.User{dave, erin} {
		_, err := e.Vote(ctx, voter.ID, proposal.ID, true)
		require.NoError(t, err)
	}
	updated, err := e.Vote(ctx, frank.ID, proposal.ID, false)
	require.NoError(t, err)

	require.Equal(t, int64(2), updated.VotesFor)
	require.Equal(t, int64(1), updated.VotesAgainst)
	require.ElementsMatch(t, []string{dave.ID, erin.ID, frank.ID}, updated.Voters)

	// Voting again leaves the tallies unchanged.
	_, err = e.Vote(ctx, dave.ID, proposal.ID, true)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	final, err := e.Proposal(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), final.VotesFor)
	require.Equal(t, int64(1), final.VotesAgainst)

	// Each vote grants XP and the small token reward through the ledger.
	daveAfter, err := e.User(ctx, dave.ID)
	require.NoError(t, err)
	require.Equal(t, e.Policy().VoteXP, daveAfter.XP)
	require.Equal(t, e.Policy().VoteReward, daveAfter.Balance)
	require.Equal(t, int64(1), daveAfter.VotesCast)
	require.True(t, daveAfter.HasBadge("first-voice"))

	txs, err := e.History(ctx, dave.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.TxVoteReward, txs[0].Kind)
	requireLedgerInvariant(t, e, ctx, dave.ID)
}

func TestVoteErrors(t *testing.T) {
	e, ctx := newTestEngine(t)
	user := newTestUser(t, e, ctx, "user")

	_, err := e.Vote(ctx, user.ID, "no-such-proposal", true)
	require.ErrorIs(t, err, ErrProposalNotFound)

	raiseToLevel(t, e, ctx, user.ID, 2)
	proposal, err := e.CreateProposal(ctx, user.ID, "Quiet hours", "")
	require.NoError(t, err)

	_, err = e.Vote(ctx, "nobody", proposal.ID, true)
	require.ErrorIs(t, err, ErrUserNotFound)

	closed, err := e.CloseProposal(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProposalClosed, closed.Status)
	require.False(t, closed.ClosedAt.IsZero())

	_, err = e.Vote(ctx, user.ID, proposal.ID, true)
	require.ErrorIs(t, err, ErrProposalClosed)

	// Closing is not idempotent: the transition happens once.
	_, err = e.CloseProposal(ctx, proposal.ID)
	require.ErrorIs(t, err, ErrProposalClosed)

	_, err = e.CloseProposal(ctx, "no-such-proposal")
	require.ErrorIs(t, err, ErrProposalNotFound)
}

func TestConcurrentDuplicateVotesCountOnce(t *testing.T) {
	e, ctx := newTestEngine(t)
	proposer := newTestUser(t, e, ctx, "proposer")
	raiseToLevel(t, e, ctx, proposer.ID, 2)
	proposal, err := e.CreateProposal(ctx, proposer.ID, "Fountain repair", "")
	require.NoError(t, err)

	voter := newTestUser(t, e, ctx, "eager")

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.Vote(ctx, voter.ID, proposal.ID, true)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrAlreadyVoted)
		}
	}
	require.Equal(t, 1, succeeded)

	final, err := e.Proposal(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), final.VotesFor)
	require.Len(t, final.Voters, 1)

	voterAfter, err := e.User(ctx, voter.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), voterAfter.VotesCast)
	require.Equal(t, e.Policy().VoteReward, voterAfter.Balance)
}

func TestConcurrentDistinctVotersAllCounted(t *testing.T) {
	e, ctx := newTestEngine(t)
	proposer := newTestUser(t, e, ctx, "proposer")
	raiseToLevel(t, e, ctx, proposer.ID, 2)
	proposal, err := e.CreateProposal(ctx, proposer.ID, "Street lights", "")
	require.NoError(t, err)

	const voters = 5
	ids := make([]string, voters)
	for i := range voters {
		ids[i] = newTestUser(t, e, ctx, "voter"+string(rune('a'+i))).ID
	}

	var wg sync.WaitGroup
	for i := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Vote(ctx, ids[i], proposal.ID, i%2 == 0)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := e.Proposal(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, int64(voters), final.VotesFor+final.VotesAgainst)
	require.Len(t, final.Voters, voters)
}

func TestProposalsListing(t *testing.T) {
	e, ctx := newTestEngine(t)
	user := newTestUser(t, e, ctx, "user")
	raiseToLevel(t, e, ctx, user.ID, 2)

	for _, title := range []string{"one", "two", "three"} {
		_, err := e.CreateProposal(ctx, user.ID, title, "")
		require.NoError(t, err)
	}

	proposals, err := e.Proposals(ctx, 2)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	all, err := e.Proposals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
