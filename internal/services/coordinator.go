package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"planbuddy/internal/models"
	"planbuddy/internal/repositories"
	"planbuddy/pkg/utils"
)

// The coordinator depends on narrow store interfaces so tests can run
// it against in-memory fakes.

type MembershipStore interface {
	RequireRole(ctx context.Context, groupID, userID int, minimum models.Role) error
	ListMemberContacts(ctx context.Context, groupID, excludeUserID int) ([]models.MemberContact, error)
}

type ProposalStore interface {
	CreateWithTokens(ctx context.Context, proposal *models.MeetingProposal, recipients []string, ttl time.Duration) ([]repositories.IssuedToken, error)
	GetByID(ctx context.Context, proposalID int) (*models.MeetingProposal, error)
	GetByPublicID(ctx context.Context, publicID string) (*models.MeetingProposal, error)
	ListByGroup(ctx context.Context, groupID int) ([]models.MeetingProposal, error)
	ListByOrganizer(ctx context.Context, organizerID int) ([]models.MeetingProposal, error)
	ListOpen(ctx context.Context) ([]models.MeetingProposal, error)
	Cancel(ctx context.Context, proposalID int) error
	Close(ctx context.Context, proposalID int) error
	Archive(ctx context.Context, proposalID int) error
}

type TokenStore interface {
	Issue(ctx context.Context, proposalID int, recipientEmail string, ttl time.Duration) (repositories.IssuedToken, error)
	Lookup(ctx context.Context, rawToken string) (*models.ResponseToken, error)
}

type ResponseStore interface {
	Record(ctx context.Context, rawToken string, answer models.Answer, alternate *models.AlternateWindow, note string) (*repositories.RecordedResponse, error)
	GetByRecipient(ctx context.Context, proposalID int, recipientEmail string) (*models.ProposalResponse, error)
	ListByProposal(ctx context.Context, proposalID int) ([]models.ProposalResponse, error)
	Tally(ctx context.Context, proposalID, expected int) (repositories.ResponseTally, error)
	PendingRecipients(ctx context.Context, proposalID int) ([]string, error)
}

type UserStore interface {
	GetContact(ctx context.Context, userID int) (models.MemberContact, error)
}

// Coordinator glues the stores together: it authorizes, runs the data
// operation, and only then hands side effects to the notifier. A
// notification failure can never unwind a committed write.
type Coordinator struct {
	memberships MembershipStore
	proposals   ProposalStore
	tokens      TokenStore
	responses   ResponseStore
	users       UserStore
	notifier    Notifier
	tokenTTL    time.Duration
}

func NewCoordinator(memberships MembershipStore, proposals ProposalStore, tokens TokenStore, responses ResponseStore, users UserStore, notifier Notifier, tokenTTL time.Duration) *Coordinator {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &Coordinator{
		memberships: memberships,
		proposals:   proposals,
		tokens:      tokens,
		responses:   responses,
		users:       users,
		notifier:    notifier,
		tokenTTL:    tokenTTL,
	}
}

// ProposeMeetingInput carries everything needed to open a proposal.
// GroupID zero means an ad hoc proposal sent straight to Attendees.
type ProposeMeetingInput struct {
	OrganizerID  int
	GroupID      int
	Attendees    []string
	Title        string
	Description  string
	ProposedDate time.Time
	WindowStart  time.Time
	WindowEnd    time.Time
}

// ProposeMeeting authorizes the organizer, creates the proposal with
// its tokens in one transaction, and fans the invites out afterwards.
func (c *Coordinator) ProposeMeeting(ctx context.Context, in ProposeMeetingInput) (*models.MeetingProposal, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("proposal title is required: %w", repositories.ErrValidation)
	}
	if in.ProposedDate.IsZero() || in.WindowStart.IsZero() || in.WindowEnd.IsZero() {
		return nil, fmt.Errorf("proposed date and time window are required: %w", repositories.ErrValidation)
	}
	if !in.WindowEnd.After(in.WindowStart) {
		return nil, fmt.Errorf("time window ends before it starts: %w", repositories.ErrValidation)
	}

	organizer, err := c.users.GetContact(ctx, in.OrganizerID)
	if err != nil {
		return nil, err
	}

	var recipients []string
	var groupID sql.NullInt64
	if in.GroupID != 0 {
		if err := c.memberships.RequireRole(ctx, in.GroupID, in.OrganizerID, models.RoleAdmin); err != nil {
			return nil, err
		}
		contacts, err := c.memberships.ListMemberContacts(ctx, in.GroupID, in.OrganizerID)
		if err != nil {
			return nil, err
		}
		for _, contact := range contacts {
			recipients = append(recipients, contact.Email)
		}
		groupID = sql.NullInt64{Int64: int64(in.GroupID), Valid: true}
	} else {
		recipients = in.Attendees
	}

	recipients, err = normalizeRecipients(recipients)
	if err != nil {
		return nil, err
	}

	proposal := &models.MeetingProposal{
		GroupID:      groupID,
		OrganizerID:  in.OrganizerID,
		Title:        in.Title,
		Description:  strings.TrimSpace(in.Description),
		ProposedDate: in.ProposedDate.UTC().Format("2006-01-02"),
		WindowStart:  in.WindowStart.UTC().Format("2006-01-02 15:04:05"),
		WindowEnd:    in.WindowEnd.UTC().Format("2006-01-02 15:04:05"),
	}

	issued, err := c.proposals.CreateWithTokens(ctx, proposal, recipients, c.tokenTTL)
	if err != nil {
		return nil, err
	}

	c.notifier.ProposalInvites(*proposal, organizer, issued)
	return proposal, nil
}

// normalizeRecipients lowercases, trims and dedupes the fan-out list.
func normalizeRecipients(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	recipients := make([]string, 0, len(raw))
	for _, email := range raw {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" || seen[email] {
			continue
		}
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("'%s' is not a valid email address: %w", email, repositories.ErrValidation)
		}
		seen[email] = true
		recipients = append(recipients, email)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("a proposal needs at least one recipient: %w", repositories.ErrValidation)
	}
	return recipients, nil
}

// ResponseOutcome is what a recipient's submission came to.
type ResponseOutcome struct {
	Proposal models.MeetingProposal
	Answer   models.Answer
	Tally    repositories.ResponseTally
	// AlreadyRecorded is set when a consumed token was replayed with
	// the same answer: the caller shows "already recorded", not an
	// error page.
	AlreadyRecorded bool
	Resolved        bool
}

// HandleResponse records an answer against a token. The only error it
// translates is the double-click: a replayed token whose stored answer
// matches the resubmission reads as success. A replay with a different
// answer still surfaces ErrTokenConsumed, since a consumed token can
// never change an answer.
func (c *Coordinator) HandleResponse(ctx context.Context, rawToken string, answer models.Answer, alternate *models.AlternateWindow, note string) (*ResponseOutcome, error) {
	recorded, err := c.responses.Record(ctx, rawToken, answer, alternate, note)
	if errors.Is(err, repositories.ErrTokenConsumed) {
		return c.replayedResponse(ctx, rawToken, answer, err)
	}
	if err != nil {
		return nil, err
	}

	organizer, contactErr := c.users.GetContact(ctx, recorded.Proposal.OrganizerID)
	if contactErr != nil {
		utils.Logger.Warnf("response recorded but organizer lookup failed for proposal %s: %v",
			recorded.Proposal.PublicID, contactErr)
	} else if recorded.Resolved {
		c.notifier.ProposalResolved(recorded.Proposal, organizer, recorded.Tally)
	} else {
		c.notifier.ResponseReceived(recorded.Proposal, organizer, recorded.Response.RecipientEmail, answer, recorded.Tally)
	}

	return &ResponseOutcome{
		Proposal: recorded.Proposal,
		Answer:   answer,
		Tally:    recorded.Tally,
		Resolved: recorded.Resolved,
	}, nil
}

func (c *Coordinator) replayedResponse(ctx context.Context, rawToken string, answer models.Answer, consumedErr error) (*ResponseOutcome, error) {
	token, err := c.tokens.Lookup(ctx, rawToken)
	if err != nil {
		return nil, consumedErr
	}
	existing, err := c.responses.GetByRecipient(ctx, token.ProposalID, token.RecipientEmail)
	if err != nil || existing.Answer != answer {
		return nil, consumedErr
	}
	proposal, err := c.proposals.GetByID(ctx, token.ProposalID)
	if err != nil {
		return nil, consumedErr
	}
	tally, err := c.responses.Tally(ctx, proposal.ID, proposal.ExpectedResponses)
	if err != nil {
		return nil, consumedErr
	}

	return &ResponseOutcome{
		Proposal:        *proposal,
		Answer:          existing.Answer,
		Tally:           tally,
		AlreadyRecorded: true,
		Resolved:        proposal.Status == models.ProposalResolved,
	}, nil
}

// authorizeProposalAction admits the organizer, and admins of the
// proposal's group. Everyone else is turned away here, regardless of
// what the store layers would allow.
func (c *Coordinator) authorizeProposalAction(ctx context.Context, proposal *models.MeetingProposal, actorID int) error {
	if actorID == proposal.OrganizerID {
		return nil
	}
	if proposal.GroupID.Valid {
		return c.memberships.RequireRole(ctx, int(proposal.GroupID.Int64), actorID, models.RoleAdmin)
	}
	return fmt.Errorf("user %d cannot manage proposal %s: %w", actorID, proposal.PublicID, repositories.ErrNotAuthorized)
}

// CancelProposal terminates an open proposal.
func (c *Coordinator) CancelProposal(ctx context.Context, publicID string, actorID int) (*models.MeetingProposal, error) {
	proposal, err := c.proposals.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := c.authorizeProposalAction(ctx, proposal, actorID); err != nil {
		return nil, err
	}
	if err := c.proposals.Cancel(ctx, proposal.ID); err != nil {
		return nil, err
	}
	proposal.Status = models.ProposalCancelled
	return proposal, nil
}

// CloseProposal resolves an open proposal without waiting for the
// stragglers.
func (c *Coordinator) CloseProposal(ctx context.Context, publicID string, actorID int) (*models.MeetingProposal, error) {
	proposal, err := c.proposals.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := c.authorizeProposalAction(ctx, proposal, actorID); err != nil {
		return nil, err
	}
	if err := c.proposals.Close(ctx, proposal.ID); err != nil {
		return nil, err
	}
	proposal.Status = models.ProposalResolved
	return proposal, nil
}

// ArchiveProposal retires a resolved proposal.
func (c *Coordinator) ArchiveProposal(ctx context.Context, publicID string, actorID int) (*models.MeetingProposal, error) {
	proposal, err := c.proposals.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := c.authorizeProposalAction(ctx, proposal, actorID); err != nil {
		return nil, err
	}
	if err := c.proposals.Archive(ctx, proposal.ID); err != nil {
		return nil, err
	}
	proposal.Status = models.ProposalArchived
	return proposal, nil
}

// ProposalDetails is the organizer's view of a proposal: the record,
// every current answer, who is still pending, and the tally.
type ProposalDetails struct {
	Proposal  models.MeetingProposal     `json:"proposal"`
	Responses []models.ProposalResponse  `json:"responses"`
	Pending   []string                   `json:"pending"`
	Tally     repositories.ResponseTally `json:"tally"`
}

// GetProposal returns full details to the organizer or any member of
// the proposal's group.
func (c *Coordinator) GetProposal(ctx context.Context, publicID string, actorID int) (*ProposalDetails, error) {
	proposal, err := c.proposals.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if actorID != proposal.OrganizerID {
		if !proposal.GroupID.Valid {
			return nil, fmt.Errorf("user %d cannot view proposal %s: %w", actorID, proposal.PublicID, repositories.ErrNotAuthorized)
		}
		if err := c.memberships.RequireRole(ctx, int(proposal.GroupID.Int64), actorID, models.RoleMember); err != nil {
			return nil, err
		}
	}

	responses, err := c.responses.ListByProposal(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	pending, err := c.responses.PendingRecipients(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	tally, err := c.responses.Tally(ctx, proposal.ID, proposal.ExpectedResponses)
	if err != nil {
		return nil, err
	}

	return &ProposalDetails{
		Proposal:  *proposal,
		Responses: responses,
		Pending:   pending,
		Tally:     tally,
	}, nil
}

// ListGroupProposals lists a group's proposals for any member.
func (c *Coordinator) ListGroupProposals(ctx context.Context, groupID, actorID int) ([]models.MeetingProposal, error) {
	if err := c.memberships.RequireRole(ctx, groupID, actorID, models.RoleMember); err != nil {
		return nil, err
	}
	return c.proposals.ListByGroup(ctx, groupID)
}

// ListMyProposals lists everything the user has organized.
func (c *Coordinator) ListMyProposals(ctx context.Context, organizerID int) ([]models.MeetingProposal, error) {
	return c.proposals.ListByOrganizer(ctx, organizerID)
}

// RemindPendingRecipients walks every open proposal and mails fresh
// links to recipients who have not answered. Each reminder reissues
// the token, superseding the one sent before. Returns how many
// reminders went out.
func (c *Coordinator) RemindPendingRecipients(ctx context.Context) (int, error) {
	open, err := c.proposals.ListOpen(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, proposal := range open {
		pending, err := c.responses.PendingRecipients(ctx, proposal.ID)
		if err != nil {
			utils.Logger.Errorf("failed to list pending recipients for proposal %s: %v", proposal.PublicID, err)
			continue
		}
		if len(pending) == 0 {
			continue
		}

		organizer, err := c.users.GetContact(ctx, proposal.OrganizerID)
		if err != nil {
			utils.Logger.Errorf("failed to look up organizer for proposal %s: %v", proposal.PublicID, err)
			continue
		}

		for _, email := range pending {
			issued, err := c.tokens.Issue(ctx, proposal.ID, email, c.tokenTTL)
			if err != nil {
				utils.Logger.Errorf("failed to reissue token for %s on proposal %s: %v", email, proposal.PublicID, err)
				continue
			}
			c.notifier.ResponseReminder(proposal, organizer, issued)
			count++
		}
	}
	return count, nil
}
