package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeTokenOnce(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	token, err := tokens.Consume(context.Background(), issued[0].RawToken)
	require.NoError(t, err)
	assert.Equal(t, proposal.ID, token.ProposalID)
	assert.Equal(t, "bob@example.com", token.RecipientEmail)
	assert.True(t, token.ConsumedAt.Valid)

	_, err = tokens.Consume(context.Background(), issued[0].RawToken)
	assert.ErrorIs(t, err, ErrTokenConsumed)
}

func TestConcurrentConsumeSingleWinner(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	_, issued := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	const contenders = 8
	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tokens.Consume(context.Background(), issued[0].RawToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, replays := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrTokenConsumed):
			replays++
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent consume may win")
	assert.Equal(t, contenders-1, replays)
}

func TestReissueInvalidatesOldLink(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com"})
	oldRaw := issued[0].RawToken

	reissued, err := tokens.Issue(context.Background(), proposal.ID, "bob@example.com", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, oldRaw, reissued.RawToken)

	// The link mailed earlier now matches no row at all.
	_, err = tokens.Lookup(context.Background(), oldRaw)
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = tokens.Consume(context.Background(), oldRaw)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	token, err := tokens.Consume(context.Background(), reissued.RawToken)
	require.NoError(t, err)
	assert.Equal(t, proposal.ID, token.ProposalID)
}

func TestReissueClearsConsumedState(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	_, err := tokens.Consume(context.Background(), issued[0].RawToken)
	require.NoError(t, err)

	reissued, err := tokens.Issue(context.Background(), proposal.ID, "bob@example.com", time.Hour)
	require.NoError(t, err)

	token, err := tokens.Lookup(context.Background(), reissued.RawToken)
	require.NoError(t, err)
	assert.False(t, token.ConsumedAt.Valid, "a reissued token is fresh again")
}

func TestIssueOnClosedProposal(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	proposals := NewProposalRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, _ := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	require.NoError(t, proposals.Cancel(context.Background(), proposal.ID))

	_, err := tokens.Issue(context.Background(), proposal.ID, "bob@example.com", time.Hour)
	assert.ErrorIs(t, err, ErrProposalClosed)
}

func TestIssueOnMissingProposal(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)

	_, err := tokens.Issue(context.Background(), -1, "bob@example.com", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeExpiredToken(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, _ := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	expired, err := tokens.Issue(context.Background(), proposal.ID, "bob@example.com", -time.Hour)
	require.NoError(t, err)

	_, err = tokens.Consume(context.Background(), expired.RawToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestConsumeUnknownToken(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)

	_, err := tokens.Consume(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	_, err = tokens.Lookup(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestPurgeExpiredKeepsConsumedTokens(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com", "carol@example.com"})

	// bob answered, carol's token expired two days ago without a click.
	_, err := tokens.Consume(context.Background(), issued[0].RawToken)
	require.NoError(t, err)

	stale := formatSQLTime(time.Now().Add(-48 * time.Hour))
	_, err = db.Exec(`UPDATE response_tokens SET expires_at = ? WHERE proposal_id = ?`, stale, proposal.ID)
	require.NoError(t, err)

	purged, err := tokens.PurgeExpired(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, purged, int64(1))

	_, err = tokens.Lookup(context.Background(), issued[1].RawToken)
	assert.ErrorIs(t, err, ErrTokenNotFound, "the stale unanswered token is gone")

	consumed, err := tokens.Lookup(context.Background(), issued[0].RawToken)
	require.NoError(t, err, "consumed tokens survive the purge as an audit trail")
	assert.True(t, consumed.ConsumedAt.Valid)
}

func TestPurgeExpiredSparesRecentTokens(t *testing.T) {
	db := testDB(t)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	// Expired an hour ago: too recent for a 24h purge threshold.
	recent := formatSQLTime(time.Now().Add(-time.Hour))
	_, err := db.Exec(`UPDATE response_tokens SET expires_at = ? WHERE proposal_id = ?`, recent, proposal.ID)
	require.NoError(t, err)

	_, err = tokens.PurgeExpired(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	_, err = tokens.Lookup(context.Background(), issued[0].RawToken)
	require.NoError(t, err, "a recently expired token still classifies as expired, not invalid")

	_, err = tokens.Consume(context.Background(), issued[0].RawToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
