package models

import "database/sql"

// GroupMemberDetails is a membership row joined with the member's
// user record, for listing endpoints.
type GroupMemberDetails struct {
	UserID    int            `json:"user_id"`
	Username  string         `json:"username"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Role      Role           `json:"role"`
	JoinedAt  sql.NullString `json:"joined_at"`
}

// MemberContact is the slice of a user record the notifier needs.
type MemberContact struct {
	UserID    int    `json:"user_id"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}
