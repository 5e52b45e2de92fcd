package models

import "database/sql"

type User struct {
	ID                int            `json:"id,omitempty" db:"id,omitempty"`
	FirstName         string         `json:"first_name,omitempty" db:"first_name,omitempty"`
	LastName          string         `json:"last_name,omitempty" db:"last_name,omitempty"`
	Username          string         `json:"username,omitempty" db:"username,omitempty"`
	Email             string         `json:"email,omitempty" db:"email,omitempty"`
	Password          string         `json:"password,omitempty" db:"password,omitempty"`
	Role              string         `json:"role,omitempty" db:"role,omitempty"`
	EmailConfirmed    bool           `json:"email_confirmed,omitempty" db:"email_confirmed,omitempty"`
	Otp               string         `json:"otp,omitempty" db:"otp,omitempty"`
	OtpExpires        string         `json:"otp_expires,omitempty" db:"otp_expires,omitempty"`
	InactiveStatus    bool           `json:"inactive_status,omitempty" db:"inactive_status,omitempty"`
	PasswordChangedAt sql.NullString `json:"password_changed_at,omitempty" db:"password_changed_at,omitempty"`
	CreatedAt         sql.NullString `json:"created_at,omitempty" db:"-"`
	UpdatedAt         sql.NullString `json:"updated_at,omitempty" db:"-"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
