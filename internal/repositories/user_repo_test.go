package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContact(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	userID, email := seedUser(t, db, "ada")

	contact, err := users.GetContact(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, contact.UserID)
	assert.Equal(t, "ada", contact.FirstName)
	assert.Equal(t, email, contact.Email)
}

func TestGetContactSkipsInactiveUsers(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)
	userID, _ := seedUser(t, db, "gone")

	_, err := db.Exec(`UPDATE users SET inactive_status = TRUE WHERE id = ?`, userID)
	require.NoError(t, err)

	_, err = users.GetContact(context.Background(), userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetContactMissing(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)

	_, err := users.GetContact(context.Background(), -1)
	assert.ErrorIs(t, err, ErrNotFound)
}
