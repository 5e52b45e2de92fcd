package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"planbuddy/internal/models"
	"planbuddy/pkg/utils"
)

// ResponseRepository records attendee answers and keeps the proposal's
// aggregate status in step with them.
type ResponseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// ResponseTally counts current answers against the expected set.
type ResponseTally struct {
	Yes       int `json:"yes"`
	No        int `json:"no"`
	Alternate int `json:"alternate"`
	Pending   int `json:"pending"`
}

// RecordedResponse is the outcome of one successful Record call.
type RecordedResponse struct {
	Proposal models.MeetingProposal
	Response models.ProposalResponse
	// Resolved is set when this response was the last one expected and
	// flipped the proposal to resolved.
	Resolved bool
	Tally    ResponseTally
}

// Record consumes the token and stores the answer in one transaction.
// If anything after the consume fails, the consume rolls back with it,
// so a recipient is never locked out with no recorded answer. The
// proposal row is locked for the duration, which serializes the
// aggregate recompute and pins the status check against a concurrent
// cancel.
func (r *ResponseRepository) Record(ctx context.Context, rawToken string, answer models.Answer, alternate *models.AlternateWindow, note string) (*RecordedResponse, error) {
	if !answer.Valid() {
		return nil, fmt.Errorf("unknown answer '%s': %w", answer, ErrValidation)
	}
	if answer == models.AnswerAlternate {
		if alternate == nil || alternate.Start.IsZero() {
			return nil, fmt.Errorf("an alternate answer needs a suggested start time: %w", ErrValidation)
		}
		if !alternate.End.IsZero() && alternate.End.Before(alternate.Start) {
			return nil, fmt.Errorf("alternate window ends before it starts: %w", ErrValidation)
		}
	} else if alternate != nil {
		return nil, fmt.Errorf("only alternate answers carry a suggested time: %w", ErrValidation)
	}
	if len(note) > 500 {
		return nil, fmt.Errorf("note is longer than 500 characters: %w", ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to start transaction")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	token, err := consumeToken(ctx, tx, rawToken, now)
	if err != nil {
		return nil, err
	}

	proposal, err := scanProposal(tx.QueryRowContext(ctx, `
		SELECT `+proposalColumns+` FROM meeting_proposals WHERE id = ? FOR UPDATE
	`, token.ProposalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("proposal %d: %w", token.ProposalID, ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch proposal")
	}
	if proposal.Status != models.ProposalOpen {
		return nil, fmt.Errorf("proposal is %s: %w", proposal.Status, ErrProposalClosed)
	}

	var alternateStart, alternateEnd, noteValue interface{}
	if alternate != nil {
		alternateStart = formatSQLTime(alternate.Start)
		if !alternate.End.IsZero() {
			alternateEnd = formatSQLTime(alternate.End)
		}
	}
	if note != "" {
		noteValue = note
	}

	respondedAt := formatSQLTime(now)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO proposal_responses
			(proposal_id, recipient_email, answer, alternate_start, alternate_end, note, responded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			answer = VALUES(answer),
			alternate_start = VALUES(alternate_start),
			alternate_end = VALUES(alternate_end),
			note = VALUES(note),
			responded_at = VALUES(responded_at)
	`, token.ProposalID, token.RecipientEmail, answer, alternateStart, alternateEnd, noteValue, respondedAt)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to record response")
	}

	tally, err := tallyResponses(ctx, tx, token.ProposalID, proposal.ExpectedResponses)
	if err != nil {
		return nil, err
	}

	resolved := false
	active := tally.Yes + tally.No + tally.Alternate
	if active >= proposal.ExpectedResponses {
		_, err = tx.ExecContext(ctx, `
			UPDATE meeting_proposals SET status = ?, resolved_at = ? WHERE id = ? AND status = ?
		`, models.ProposalResolved, respondedAt, token.ProposalID, models.ProposalOpen)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to resolve proposal")
		}
		resolved = true
		proposal.Status = models.ProposalResolved
		proposal.ResolvedAt = sql.NullString{String: respondedAt, Valid: true}
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to commit transaction")
	}

	response := models.ProposalResponse{
		ProposalID:     token.ProposalID,
		RecipientEmail: token.RecipientEmail,
		Answer:         answer,
		RespondedAt:    sql.NullString{String: respondedAt, Valid: true},
	}
	if s, ok := alternateStart.(string); ok {
		response.AlternateStart = sql.NullString{String: s, Valid: true}
	}
	if s, ok := alternateEnd.(string); ok {
		response.AlternateEnd = sql.NullString{String: s, Valid: true}
	}
	if note != "" {
		response.Note = sql.NullString{String: note, Valid: true}
	}

	return &RecordedResponse{
		Proposal: *proposal,
		Response: response,
		Resolved: resolved,
		Tally:    tally,
	}, nil
}

func tallyResponses(ctx context.Context, q dbtx, proposalID, expected int) (ResponseTally, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT answer, COUNT(*) FROM proposal_responses WHERE proposal_id = ? GROUP BY answer
	`, proposalID)
	if err != nil {
		return ResponseTally{}, utils.ErrorHandler(err, "failed to tally responses")
	}
	defer rows.Close()

	var tally ResponseTally
	for rows.Next() {
		var answer models.Answer
		var count int
		if err := rows.Scan(&answer, &count); err != nil {
			return ResponseTally{}, utils.ErrorHandler(err, "failed to scan tally")
		}
		switch answer {
		case models.AnswerYes:
			tally.Yes = count
		case models.AnswerNo:
			tally.No = count
		case models.AnswerAlternate:
			tally.Alternate = count
		}
	}
	if err := rows.Err(); err != nil {
		return ResponseTally{}, utils.ErrorHandler(err, "failed to tally responses")
	}

	tally.Pending = expected - (tally.Yes + tally.No + tally.Alternate)
	if tally.Pending < 0 {
		tally.Pending = 0
	}
	return tally, nil
}

// Tally counts the current answers for a proposal.
func (r *ResponseRepository) Tally(ctx context.Context, proposalID, expected int) (ResponseTally, error) {
	return tallyResponses(ctx, r.db, proposalID, expected)
}

// GetByRecipient returns the recipient's current answer on a proposal.
func (r *ResponseRepository) GetByRecipient(ctx context.Context, proposalID int, recipientEmail string) (*models.ProposalResponse, error) {
	var resp models.ProposalResponse
	err := r.db.QueryRowContext(ctx, `
		SELECT id, proposal_id, recipient_email, answer, alternate_start, alternate_end, note, responded_at
		FROM proposal_responses
		WHERE proposal_id = ? AND recipient_email = ?
	`, proposalID, recipientEmail).Scan(&resp.ID, &resp.ProposalID, &resp.RecipientEmail,
		&resp.Answer, &resp.AlternateStart, &resp.AlternateEnd, &resp.Note, &resp.RespondedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no response from %s: %w", recipientEmail, ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch response")
	}
	return &resp, nil
}

func (r *ResponseRepository) ListByProposal(ctx context.Context, proposalID int) ([]models.ProposalResponse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, proposal_id, recipient_email, answer, alternate_start, alternate_end, note, responded_at
		FROM proposal_responses
		WHERE proposal_id = ?
		ORDER BY responded_at ASC
	`, proposalID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch responses")
	}
	defer rows.Close()

	responses := make([]models.ProposalResponse, 0)
	for rows.Next() {
		var resp models.ProposalResponse
		err := rows.Scan(&resp.ID, &resp.ProposalID, &resp.RecipientEmail,
			&resp.Answer, &resp.AlternateStart, &resp.AlternateEnd, &resp.Note, &resp.RespondedAt)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan response")
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// PendingRecipients lists token holders who have not answered yet.
func (r *ResponseRepository) PendingRecipients(ctx context.Context, proposalID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rt.recipient_email
		FROM response_tokens rt
		LEFT JOIN proposal_responses pr
			ON pr.proposal_id = rt.proposal_id AND pr.recipient_email = rt.recipient_email
		WHERE rt.proposal_id = ? AND pr.id IS NULL
	`, proposalID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch pending recipients")
	}
	defer rows.Close()

	pending := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan pending recipient")
		}
		pending = append(pending, email)
	}
	return pending, rows.Err()
}
