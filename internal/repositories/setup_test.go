package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"planbuddy/internal/models"
	"planbuddy/internal/repositories/sqlconnect"
)

// The repository tests run against a real MySQL database named by
// PLANBUDDY_TEST_DB_DSN and skip when it is unset. Every seeded row
// gets a unique suffix so tests never collide with each other or with
// leftovers from earlier runs.

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("PLANBUDDY_TEST_DB_DSN")
	if dsn == "" {
		t.Skipf("set PLANBUDDY_TEST_DB_DSN to run repository integration tests")
	}

	db, err := sqlconnect.OpenDSN(dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := sqlconnect.EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, name string) (int, string) {
	t.Helper()

	email := fmt.Sprintf("%s_%d@example.com", name, time.Now().UnixNano())
	username := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	res, err := db.Exec(`
		INSERT INTO users (first_name, last_name, username, email, password, email_confirmed)
		VALUES (?, 'Tester', ?, ?, 'not-a-real-hash', TRUE)
	`, name, username, email)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read seeded user ID: %v", err)
	}
	return int(id), email
}

func seedGroup(t *testing.T, repo *MembershipRepository, ownerID int, name string) *models.Group {
	t.Helper()

	group := &models.Group{
		Name:      fmt.Sprintf("%s %d", name, time.Now().UnixNano()),
		CreatedBy: ownerID,
	}
	if err := repo.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("failed to seed group: %v", err)
	}
	return group
}

func seedProposal(t *testing.T, db *sql.DB, organizerID int, recipients []string) (*models.MeetingProposal, []IssuedToken) {
	t.Helper()

	proposal := &models.MeetingProposal{
		OrganizerID:  organizerID,
		Title:        "Team sync",
		ProposedDate: "2026-04-01",
		WindowStart:  "2026-04-01 18:00:00",
		WindowEnd:    "2026-04-01 20:00:00",
	}
	issued, err := NewProposalRepository(db).CreateWithTokens(context.Background(), proposal, recipients, time.Hour)
	if err != nil {
		t.Fatalf("failed to seed proposal: %v", err)
	}
	return proposal, issued
}
