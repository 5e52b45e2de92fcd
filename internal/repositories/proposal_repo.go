package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"planbuddy/internal/models"
	"planbuddy/pkg/utils"
)

// ProposalRepository owns meeting proposal records and their
// open → resolved → archived / open → cancelled state machine.
type ProposalRepository struct {
	db *sql.DB
}

func NewProposalRepository(db *sql.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `id, public_id, group_id, organizer_id, title, description,
	proposed_date, window_start, window_end, status, expected_responses,
	created_at, resolved_at, cancelled_at, archived_at`

func scanProposal(row *sql.Row) (*models.MeetingProposal, error) {
	var p models.MeetingProposal
	err := row.Scan(&p.ID, &p.PublicID, &p.GroupID, &p.OrganizerID, &p.Title, &p.Description,
		&p.ProposedDate, &p.WindowStart, &p.WindowEnd, &p.Status, &p.ExpectedResponses,
		&p.CreatedAt, &p.ResolvedAt, &p.CancelledAt, &p.ArchivedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateWithTokens inserts the proposal and one response token per
// recipient in a single transaction, so a half-created proposal can
// never leak tokens (and vice versa). The returned raw tokens exist
// only in memory for the notifier to dispatch.
func (r *ProposalRepository) CreateWithTokens(ctx context.Context, proposal *models.MeetingProposal, recipients []string, ttl time.Duration) ([]IssuedToken, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("a proposal needs at least one recipient: %w", ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to start transaction")
	}
	defer tx.Rollback()

	proposal.PublicID = uuid.NewString()
	proposal.Status = models.ProposalOpen
	proposal.ExpectedResponses = len(recipients)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO meeting_proposals
			(public_id, group_id, organizer_id, title, description, proposed_date, window_start, window_end, status, expected_responses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, proposal.PublicID, proposal.GroupID, proposal.OrganizerID, proposal.Title, proposal.Description,
		proposal.ProposedDate, proposal.WindowStart, proposal.WindowEnd, proposal.Status, proposal.ExpectedResponses)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to create proposal")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to get proposal ID")
	}
	proposal.ID = int(id)

	issued := make([]IssuedToken, 0, len(recipients))
	for _, recipient := range recipients {
		token, err := issueToken(ctx, tx, proposal.ID, recipient, ttl)
		if err != nil {
			return nil, err
		}
		issued = append(issued, token)
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to commit transaction")
	}
	return issued, nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, proposalID int) (*models.MeetingProposal, error) {
	proposal, err := scanProposal(r.db.QueryRowContext(ctx, `
		SELECT `+proposalColumns+` FROM meeting_proposals WHERE id = ?
	`, proposalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("proposal %d: %w", proposalID, ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch proposal")
	}
	return proposal, nil
}

// GetByPublicID resolves the UUID used in URLs. Internal integer IDs
// never leave the API.
func (r *ProposalRepository) GetByPublicID(ctx context.Context, publicID string) (*models.MeetingProposal, error) {
	proposal, err := scanProposal(r.db.QueryRowContext(ctx, `
		SELECT `+proposalColumns+` FROM meeting_proposals WHERE public_id = ?
	`, publicID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("proposal %s: %w", publicID, ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch proposal")
	}
	return proposal, nil
}

func (r *ProposalRepository) listProposals(ctx context.Context, query string, args ...interface{}) ([]models.MeetingProposal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch proposals")
	}
	defer rows.Close()

	proposals := make([]models.MeetingProposal, 0)
	for rows.Next() {
		var p models.MeetingProposal
		err := rows.Scan(&p.ID, &p.PublicID, &p.GroupID, &p.OrganizerID, &p.Title, &p.Description,
			&p.ProposedDate, &p.WindowStart, &p.WindowEnd, &p.Status, &p.ExpectedResponses,
			&p.CreatedAt, &p.ResolvedAt, &p.CancelledAt, &p.ArchivedAt)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan proposal")
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (r *ProposalRepository) ListByGroup(ctx context.Context, groupID int) ([]models.MeetingProposal, error) {
	return r.listProposals(ctx, `
		SELECT `+proposalColumns+` FROM meeting_proposals
		WHERE group_id = ?
		ORDER BY created_at DESC
	`, groupID)
}

func (r *ProposalRepository) ListByOrganizer(ctx context.Context, organizerID int) ([]models.MeetingProposal, error) {
	return r.listProposals(ctx, `
		SELECT `+proposalColumns+` FROM meeting_proposals
		WHERE organizer_id = ?
		ORDER BY created_at DESC
	`, organizerID)
}

// ListOpen returns every proposal still collecting responses. The
// reminder cron walks this.
func (r *ProposalRepository) ListOpen(ctx context.Context) ([]models.MeetingProposal, error) {
	return r.listProposals(ctx, `
		SELECT `+proposalColumns+` FROM meeting_proposals
		WHERE status = ?
		ORDER BY created_at ASC
	`, models.ProposalOpen)
}

// transition performs one conditional state-machine step. It reports
// whether the row moved and, when it did not, the status it was
// actually in so callers can classify the refusal.
func (r *ProposalRepository) transition(ctx context.Context, proposalID int, from, to models.ProposalStatus, stampColumn string) (bool, models.ProposalStatus, error) {
	query := fmt.Sprintf(`
		UPDATE meeting_proposals SET status = ?, %s = ? WHERE id = ? AND status = ?
	`, stampColumn)

	res, err := r.db.ExecContext(ctx, query, to, formatSQLTime(time.Now()), proposalID, from)
	if err != nil {
		return false, "", utils.ErrorHandler(err, "failed to update proposal status")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, "", utils.ErrorHandler(err, "failed to read status update result")
	}
	if rows == 1 {
		return true, to, nil
	}

	var current models.ProposalStatus
	err = r.db.QueryRowContext(ctx, `
		SELECT status FROM meeting_proposals WHERE id = ?
	`, proposalID).Scan(&current)
	if err == sql.ErrNoRows {
		return false, "", fmt.Errorf("proposal %d: %w", proposalID, ErrNotFound)
	}
	if err != nil {
		return false, "", utils.ErrorHandler(err, "failed to check proposal status")
	}
	return false, current, nil
}

// Cancel terminates an open proposal. Responses that race past this
// point fail with ErrProposalClosed instead of landing silently.
func (r *ProposalRepository) Cancel(ctx context.Context, proposalID int) error {
	ok, current, err := r.transition(ctx, proposalID, models.ProposalOpen, models.ProposalCancelled, "cancelled_at")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("proposal is already %s: %w", current, ErrProposalClosed)
	}
	return nil
}

// Close resolves an open proposal on the organizer's say-so without
// waiting for the remaining responses.
func (r *ProposalRepository) Close(ctx context.Context, proposalID int) error {
	ok, current, err := r.transition(ctx, proposalID, models.ProposalOpen, models.ProposalResolved, "resolved_at")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("proposal is already %s: %w", current, ErrProposalClosed)
	}
	return nil
}

// Archive moves a resolved proposal out of the active set.
func (r *ProposalRepository) Archive(ctx context.Context, proposalID int) error {
	ok, current, err := r.transition(ctx, proposalID, models.ProposalResolved, models.ProposalArchived, "archived_at")
	if err != nil {
		return err
	}
	if !ok {
		if current == models.ProposalOpen {
			return fmt.Errorf("proposal is still collecting responses: %w", ErrConflict)
		}
		return fmt.Errorf("proposal is already %s: %w", current, ErrProposalClosed)
	}
	return nil
}

// ArchiveResolvedBefore archives every proposal resolved longer than
// the given age ago. Returns the number archived for the cron log.
func (r *ProposalRepository) ArchiveResolvedBefore(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	res, err := r.db.ExecContext(ctx, `
		UPDATE meeting_proposals
		SET status = ?, archived_at = ?
		WHERE status = ? AND resolved_at < ?
	`, models.ProposalArchived, formatSQLTime(time.Now()), models.ProposalResolved, formatSQLTime(cutoff))
	if err != nil {
		return 0, utils.ErrorHandler(err, "failed to archive resolved proposals")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, utils.ErrorHandler(err, "failed to read archive result")
	}
	return rows, nil
}
