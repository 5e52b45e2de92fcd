package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"planbuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStoresAnswer(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com", "carol@example.com"})

	recorded, err := responses.Record(context.Background(), issued[0].RawToken, models.AnswerYes, nil, "sounds good")
	require.NoError(t, err)

	assert.Equal(t, proposal.ID, recorded.Response.ProposalID)
	assert.Equal(t, "bob@example.com", recorded.Response.RecipientEmail)
	assert.Equal(t, models.AnswerYes, recorded.Response.Answer)
	assert.Equal(t, "sounds good", recorded.Response.Note.String)
	assert.False(t, recorded.Resolved, "one of two answers does not resolve")
	assert.Equal(t, ResponseTally{Yes: 1, Pending: 1}, recorded.Tally)

	stored, err := responses.GetByRecipient(context.Background(), proposal.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AnswerYes, stored.Answer)
}

func TestRecordSupersedesEarlierAnswer(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com", "carol@example.com"})

	_, err := responses.Record(context.Background(), issued[0].RawToken, models.AnswerYes, nil, "")
	require.NoError(t, err)

	// Changing an answer takes a fresh token; the consumed one is dead.
	reissued, err := tokens.Issue(context.Background(), proposal.ID, "bob@example.com", time.Hour)
	require.NoError(t, err)

	recorded, err := responses.Record(context.Background(), reissued.RawToken, models.AnswerNo, nil, "plans changed")
	require.NoError(t, err)

	assert.Equal(t, ResponseTally{No: 1, Pending: 1}, recorded.Tally, "the new answer replaces the old one")
	assert.False(t, recorded.Resolved)

	all, err := responses.ListByProposal(context.Background(), proposal.ID)
	require.NoError(t, err)
	require.Len(t, all, 1, "one recipient holds one answer, however often it changes")
	assert.Equal(t, models.AnswerNo, all[0].Answer)
	assert.Equal(t, "plans changed", all[0].Note.String)
}

func TestRecordResolvesOnLastAnswer(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	proposals := NewProposalRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com", "carol@example.com"})

	first, err := responses.Record(context.Background(), issued[0].RawToken, models.AnswerYes, nil, "")
	require.NoError(t, err)
	assert.False(t, first.Resolved)

	second, err := responses.Record(context.Background(), issued[1].RawToken, models.AnswerNo, nil, "")
	require.NoError(t, err)
	assert.True(t, second.Resolved, "the final expected answer resolves the proposal")
	assert.Equal(t, models.ProposalResolved, second.Proposal.Status)
	assert.Equal(t, ResponseTally{Yes: 1, No: 1}, second.Tally)

	stored, err := proposals.GetByID(context.Background(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalResolved, stored.Status)
	assert.True(t, stored.ResolvedAt.Valid)

	// Replaying the first recipient's spent token changes nothing.
	_, err = responses.Record(context.Background(), issued[0].RawToken, models.AnswerNo, nil, "")
	assert.ErrorIs(t, err, ErrTokenConsumed)
}

func TestRecordOnCancelledProposalRollsBackConsume(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	proposals := NewProposalRepository(db)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	require.NoError(t, proposals.Cancel(context.Background(), proposal.ID))

	_, err := responses.Record(context.Background(), issued[0].RawToken, models.AnswerYes, nil, "")
	assert.ErrorIs(t, err, ErrProposalClosed)

	// The consume rolled back with the failure, so the token reads as
	// unused rather than silently burned.
	token, err := tokens.Lookup(context.Background(), issued[0].RawToken)
	require.NoError(t, err)
	assert.False(t, token.ConsumedAt.Valid)
}

func TestRecordAlternateAnswer(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com", "carol@example.com"})

	window := &models.AlternateWindow{
		Start: time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 4, 2, 20, 0, 0, 0, time.UTC),
	}
	recorded, err := responses.Record(context.Background(), issued[0].RawToken, models.AnswerAlternate, window, "earlier works better")
	require.NoError(t, err)

	assert.Equal(t, models.AnswerAlternate, recorded.Response.Answer)
	assert.Equal(t, "2026-04-02 18:00:00", recorded.Response.AlternateStart.String)
	assert.Equal(t, "2026-04-02 20:00:00", recorded.Response.AlternateEnd.String)
	assert.Equal(t, ResponseTally{Alternate: 1, Pending: 1}, recorded.Tally)

	stored, err := responses.GetByRecipient(context.Background(), proposal.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2026-04-02 18:00:00", stored.AlternateStart.String)
}

func TestRecordValidation(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	tokens := NewTokenRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	_, issued := seedProposal(t, db, organizerID, []string{"bob@example.com"})
	raw := issued[0].RawToken
	ctx := context.Background()

	window := &models.AlternateWindow{Start: time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)}
	backwards := &models.AlternateWindow{
		Start: time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 4, 2, 17, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name      string
		answer    models.Answer
		alternate *models.AlternateWindow
		note      string
	}{
		{"unknown answer", models.Answer("maybe"), nil, ""},
		{"alternate without a window", models.AnswerAlternate, nil, ""},
		{"alternate window ends before it starts", models.AnswerAlternate, backwards, ""},
		{"yes with an alternate window", models.AnswerYes, window, ""},
		{"overlong note", models.AnswerYes, nil, strings.Repeat("x", 501)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responses.Record(ctx, raw, tt.answer, tt.alternate, tt.note)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Validation happens before the token is touched, so the recipient
	// can still answer after a rejected submission.
	token, err := tokens.Lookup(ctx, raw)
	require.NoError(t, err)
	assert.False(t, token.ConsumedAt.Valid)
}

func TestPendingRecipients(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID, []string{"bob@example.com", "carol@example.com"})

	pending, err := responses.PendingRecipients(context.Background(), proposal.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob@example.com", "carol@example.com"}, pending)

	_, err = responses.Record(context.Background(), issued[0].RawToken, models.AnswerYes, nil, "")
	require.NoError(t, err)

	pending, err = responses.PendingRecipients(context.Background(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol@example.com"}, pending)
}

func TestGetByRecipientMissing(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, _ := seedProposal(t, db, organizerID, []string{"bob@example.com"})

	_, err := responses.GetByRecipient(context.Background(), proposal.ID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTallyCountsAnswers(t *testing.T) {
	db := testDB(t)
	responses := NewResponseRepository(db)
	organizerID, _ := seedUser(t, db, "organizer")
	proposal, issued := seedProposal(t, db, organizerID,
		[]string{"bob@example.com", "carol@example.com", "dave@example.com"})

	_, err := responses.Record(context.Background(), issued[0].RawToken, models.AnswerYes, nil, "")
	require.NoError(t, err)
	_, err = responses.Record(context.Background(), issued[1].RawToken, models.AnswerNo, nil, "")
	require.NoError(t, err)

	tally, err := responses.Tally(context.Background(), proposal.ID, proposal.ExpectedResponses)
	require.NoError(t, err)
	assert.Equal(t, ResponseTally{Yes: 1, No: 1, Pending: 1}, tally)
}
