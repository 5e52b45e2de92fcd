package models

import (
	"database/sql"
	"time"
)

// Answer is a recipient's reply to a proposed meeting time.
type Answer string

const (
	AnswerYes       Answer = "yes"
	AnswerNo        Answer = "no"
	AnswerAlternate Answer = "alternate"
)

func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerNo, AnswerAlternate:
		return true
	}
	return false
}

type ProposalResponse struct {
	ID             int            `json:"id,omitempty" db:"id,omitempty"`
	ProposalID     int            `json:"proposal_id,omitempty" db:"proposal_id,omitempty"`
	RecipientEmail string         `json:"recipient_email,omitempty" db:"recipient_email,omitempty"`
	Answer         Answer         `json:"answer,omitempty" db:"answer,omitempty"`
	AlternateStart sql.NullString `json:"alternate_start,omitempty" db:"alternate_start,omitempty"`
	AlternateEnd   sql.NullString `json:"alternate_end,omitempty" db:"alternate_end,omitempty"`
	Note           sql.NullString `json:"note,omitempty" db:"note,omitempty"`
	RespondedAt    sql.NullString `json:"responded_at,omitempty" db:"responded_at,omitempty"`
}

// AlternateWindow carries the suggested start/end a recipient attaches
// to an alternate answer.
type AlternateWindow struct {
	Start time.Time
	End   time.Time
}
