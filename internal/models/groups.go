package models

import "database/sql"

type Group struct {
	ID          int            `json:"id,omitempty" db:"id,omitempty"`
	Name        string         `json:"name,omitempty" db:"name,omitempty"`
	Description string         `json:"description,omitempty" db:"description,omitempty"`
	GroupType   string         `json:"group_type,omitempty" db:"group_type,omitempty"`
	CreatedBy   int            `json:"created_by,omitempty" db:"created_by,omitempty"`
	CreatedAt   sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt   sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	DeletedAt   sql.NullString `json:"deleted_at,omitempty" db:"deleted_at,omitempty"`
}
