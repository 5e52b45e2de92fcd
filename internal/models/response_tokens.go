package models

import "database/sql"

// ResponseToken is the stored record of a single-use response credential.
// Only the SHA-256 hash of the token ever reaches this struct; the raw
// value exists just long enough to be mailed to the recipient.
type ResponseToken struct {
	ID             int            `json:"id,omitempty" db:"id,omitempty"`
	ProposalID     int            `json:"proposal_id,omitempty" db:"proposal_id,omitempty"`
	RecipientEmail string         `json:"recipient_email,omitempty" db:"recipient_email,omitempty"`
	TokenHash      string         `json:"-" db:"token_hash,omitempty"`
	ExpiresAt      sql.NullString `json:"expires_at,omitempty" db:"expires_at,omitempty"`
	ConsumedAt     sql.NullString `json:"consumed_at,omitempty" db:"consumed_at,omitempty"`
	CreatedAt      sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
}
