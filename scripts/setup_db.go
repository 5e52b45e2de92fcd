package main

import (
	"fmt"
	"log"

	"planbuddy/internal/repositories/sqlconnect"

	"github.com/joho/godotenv"
)

// Creates the planbuddy tables in the database named by the DB_* env
// variables. Safe to re-run: every statement is CREATE TABLE IF NOT
// EXISTS.
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, relying on the environment")
	}

	db, err := sqlconnect.Open()
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Database connection successful")
	fmt.Println("📄 Applying schema...")

	if err := sqlconnect.EnsureSchema(db); err != nil {
		log.Fatalf("❌ Failed to apply schema: %v", err)
	}

	tables := []string{"users", "groups", "group_members", "meeting_proposals", "response_tokens", "proposal_responses"}
	for _, table := range tables {
		var count int
		err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			log.Printf("⚠️ Failed to query table %s: %v", table, err)
		} else {
			fmt.Printf("✅ Table %s: %d records\n", table, count)
		}
	}

	fmt.Println("🎉 Database setup completed!")
}
