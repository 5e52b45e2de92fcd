package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"planbuddy/internal/models"
	"planbuddy/pkg/utils"
)

// UserRepository covers the couple of user lookups the coordination
// layer needs. The auth handlers keep their own queries.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetContact(ctx context.Context, userID int) (models.MemberContact, error) {
	var contact models.MemberContact
	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, email FROM users WHERE id = ? AND inactive_status = FALSE
	`, userID).Scan(&contact.UserID, &contact.FirstName, &contact.Email)
	if err == sql.ErrNoRows {
		return models.MemberContact{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return models.MemberContact{}, utils.ErrorHandler(err, "failed to fetch user")
	}
	return contact, nil
}
