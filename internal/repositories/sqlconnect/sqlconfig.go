package sqlconnect

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open builds the database handle from the DB_* environment variables.
// The handle is constructed once at process start, handed to the
// repositories that need it, and closed by the caller at shutdown.
func Open() (*sql.DB, error) {
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	port := os.Getenv("DB_PORT")
	host := os.Getenv("DB_HOST")

	connectionString := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=false", user, password, host, port, dbname)

	return OpenDSN(connectionString)
}

// OpenDSN opens and pings a handle for an explicit DSN. Tests use this
// directly with their own database.
func OpenDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the planbuddy tables when they do not exist yet.
// The server runs this at boot; the repository integration tests run it
// against the test database.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		otp VARCHAR(10) NULL,
		otp_expires VARCHAR(40) NULL,
		inactive_status BOOLEAN NOT NULL DEFAULT FALSE,
		password_changed_at VARCHAR(40) NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		group_type VARCHAR(50) NOT NULL DEFAULT 'general',
		created_by INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		deleted_at DATETIME NULL,
		FOREIGN KEY (created_by) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		id INT AUTO_INCREMENT PRIMARY KEY,
		group_id INT NOT NULL,
		user_id INT NOT NULL,
		role ENUM('owner','admin','member') NOT NULL DEFAULT 'member',
		joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY idx_group_user (group_id, user_id),
		FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_proposals (
		id INT AUTO_INCREMENT PRIMARY KEY,
		public_id CHAR(36) NOT NULL UNIQUE,
		group_id INT NULL,
		organizer_id INT NOT NULL,
		title VARCHAR(200) NOT NULL,
		description VARCHAR(1000) NOT NULL DEFAULT '',
		proposed_date DATE NOT NULL,
		window_start DATETIME NOT NULL,
		window_end DATETIME NOT NULL,
		status ENUM('open','resolved','cancelled','archived') NOT NULL DEFAULT 'open',
		expected_responses INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		resolved_at DATETIME NULL,
		cancelled_at DATETIME NULL,
		archived_at DATETIME NULL,
		FOREIGN KEY (group_id) REFERENCES groups(id),
		FOREIGN KEY (organizer_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS response_tokens (
		id INT AUTO_INCREMENT PRIMARY KEY,
		proposal_id INT NOT NULL,
		recipient_email VARCHAR(255) NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		consumed_at DATETIME NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY idx_proposal_recipient (proposal_id, recipient_email),
		FOREIGN KEY (proposal_id) REFERENCES meeting_proposals(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS proposal_responses (
		id INT AUTO_INCREMENT PRIMARY KEY,
		proposal_id INT NOT NULL,
		recipient_email VARCHAR(255) NOT NULL,
		answer ENUM('yes','no','alternate') NOT NULL,
		alternate_start DATETIME NULL,
		alternate_end DATETIME NULL,
		note VARCHAR(500) NULL,
		responded_at DATETIME NOT NULL,
		UNIQUE KEY idx_proposal_recipient_response (proposal_id, recipient_email),
		FOREIGN KEY (proposal_id) REFERENCES meeting_proposals(id) ON DELETE CASCADE
	)`,
}
