package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage"
)

func TestCreateUserUniqueness(t *testing.T) {
	s := New()
	ctx := t.Context()

	_, err := s.CreateUser(ctx, models.User{ID: "u1", Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, models.User{ID: "u2", Username: "alice", Email: "other@example.com"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.CreateUser(ctx, models.User{ID: "u3", Username: "other", Email: "alice@example.com"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestFindUserByUsernameOrEmail(t *testing.T) {
	s := New()
	ctx := t.Context()
	_, err := s.CreateUser(ctx, models.User{ID: "u1", Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	byName, err := s.FindUserByUsernameOrEmail(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "u1", byName.ID)

	byEmail, err := s.FindUserByUsernameOrEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", byEmail.ID)

	_, err = s.FindUserByUsernameOrEmail(ctx, "nobody")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetUserDetachesSlices(t *testing.T) {
	s := New()
	ctx := t.Context()
	_, err := s.CreateUser(ctx, models.User{ID: "u1", Username: "alice", Email: "a@example.com", Badges: []string{"first-shift"}})
	require.NoError(t, err)

	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	got.Badges[0] = "mutated"

	again, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"first-shift"}, again.Badges)
}

func TestListJobsPreservesInsertionOrder(t *testing.T) {
	s := New()
	ctx := t.Context()
	for _, id := range []string{"c", "a", "b"} {
		_, err := s.CreateJob(ctx, models.Job{ID: id})
		require.NoError(t, err)
	}

	jobs, err := s.ListJobs(ctx)
	require.NoError(t, err)
	require.Equal(t, "c", jobs[0].ID)
	require.Equal(t, "a", jobs[1].ID)
	require.Equal(t, "b", jobs[2].ID)

	_, err = s.CreateJob(ctx, models.Job{ID: "a"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestCommitApplyRejectsDuplicateAttempt(t *testing.T) {
	s := New()
	ctx := t.Context()
	user := models.User{ID: "u1", Username: "alice", Email: "a@example.com"}
	_, err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	attempt := models.JobAttempt{UserID: "u1", JobID: "j1", State: models.AttemptApplied, AppliedAt: time.Now()}
	require.NoError(t, s.CommitApply(ctx, user, attempt))
	require.ErrorIs(t, s.CommitApply(ctx, user, attempt), storage.ErrAlreadyExists)
}

func TestCommitTransferLeavesStoreUntouchedOnUnknownUser(t *testing.T) {
	s := New()
	ctx := t.Context()
	from := models.User{ID: "u1", Username: "alice", Email: "a@example.com", Balance: 70}
	_, err := s.CreateUser(ctx, from)
	require.NoError(t, err)

	to := models.User{ID: "ghost", Balance: 30}
	_, err = s.CommitTransfer(ctx, from, to, models.Transaction{ID: "t1", FromUserID: "u1", ToUserID: "ghost", Amount: 30})
	require.ErrorIs(t, err, storage.ErrNotFound)

	txs, err := s.ListTransactions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestListTransactionsNewestFirstWithLimit(t *testing.T) {
	s := New()
	ctx := t.Context()
	user := models.User{ID: "u1", Username: "alice", Email: "a@example.com"}
	_, err := s.CreateUser(ctx, user)
	require.NoError(t, err)

	for i, amount := range []int64{10, 20, 30} {
		_, err := s.CommitCredit(ctx, user, models.Transaction{
			ID: string(rune('a' + i)), ToUserID: "u1", Amount: amount, Kind: models.TxJobReward,
		})
		require.NoError(t, err)
	}

	txs, err := s.ListTransactions(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, int64(30), txs[0].Amount)
	require.Equal(t, int64(20), txs[1].Amount)
}

func TestCommitVoteSkipsZeroTransaction(t *testing.T) {
	s := New()
	ctx := t.Context()
	voter := models.User{ID: "u1", Username: "alice", Email: "a@example.com"}
	_, err := s.CreateUser(ctx, voter)
	require.NoError(t, err)

	proposal := models.Proposal{ID: "p1", ProposerID: "u1", Title: "t", Status: models.ProposalActive, CreatedAt: time.Now()}
	_, err = s.CommitProposal(ctx, voter, proposal)
	require.NoError(t, err)

	proposal.VotesFor = 1
	proposal.Voters = []string{"u1"}
	_, err = s.CommitVote(ctx, voter, proposal, models.Transaction{})
	require.NoError(t, err)

	txs, err := s.ListTransactions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Empty(t, txs)

	stored, err := s.GetProposal(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.VotesFor)
}
