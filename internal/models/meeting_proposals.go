package models

import (
	"database/sql"
	"time"
)

// ProposalStatus is the aggregate state of a meeting proposal.
type ProposalStatus string

const (
	ProposalOpen      ProposalStatus = "open"
	ProposalResolved  ProposalStatus = "resolved"
	ProposalCancelled ProposalStatus = "cancelled"
	ProposalArchived  ProposalStatus = "archived"
)

// WindowStartTime parses the stored window start. The zero time comes
// back when the stored value is malformed.
func (p *MeetingProposal) WindowStartTime() time.Time {
	t, _ := time.Parse("2006-01-02 15:04:05", p.WindowStart)
	return t
}

func (p *MeetingProposal) WindowEndTime() time.Time {
	t, _ := time.Parse("2006-01-02 15:04:05", p.WindowEnd)
	return t
}

type MeetingProposal struct {
	ID                int            `json:"id,omitempty" db:"id,omitempty"`
	PublicID          string         `json:"public_id,omitempty" db:"public_id,omitempty"`
	GroupID           sql.NullInt64  `json:"group_id,omitempty" db:"group_id,omitempty"`
	OrganizerID       int            `json:"organizer_id,omitempty" db:"organizer_id,omitempty"`
	Title             string         `json:"title,omitempty" db:"title,omitempty"`
	Description       string         `json:"description,omitempty" db:"description,omitempty"`
	ProposedDate      string         `json:"proposed_date,omitempty" db:"proposed_date,omitempty"`
	WindowStart       string         `json:"window_start,omitempty" db:"window_start,omitempty"`
	WindowEnd         string         `json:"window_end,omitempty" db:"window_end,omitempty"`
	Status            ProposalStatus `json:"status,omitempty" db:"status,omitempty"`
	ExpectedResponses int            `json:"expected_responses,omitempty" db:"expected_responses,omitempty"`
	CreatedAt         sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	ResolvedAt        sql.NullString `json:"resolved_at,omitempty" db:"resolved_at,omitempty"`
	CancelledAt       sql.NullString `json:"cancelled_at,omitempty" db:"cancelled_at,omitempty"`
	ArchivedAt        sql.NullString `json:"archived_at,omitempty" db:"archived_at,omitempty"`
}
