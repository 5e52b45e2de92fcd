package utils

import (
	"reflect"
	"testing"
)

type insertModel struct {
	ID        int    `json:"id" db:"id,omitempty"`
	Name      string `json:"name" db:"name,omitempty"`
	Email     string `json:"email" db:"email,omitempty"`
	Untracked string `json:"untracked" db:"-"`
	NoTag     string `json:"no_tag"`
	Role      string `json:"role" db:"role,omitempty"`
}

func TestGenerateInsertQuery(t *testing.T) {
	got := GenerateInsertQuery("users", insertModel{})
	want := "INSERT INTO users (name, email, role) VALUES (?, ?, ?)"
	if got != want {
		t.Errorf("GenerateInsertQuery = %q, want %q", got, want)
	}
}

func TestGetStructValues(t *testing.T) {
	model := insertModel{
		ID:        9,
		Name:      "grace",
		Email:     "grace@example.com",
		Untracked: "skip me",
		NoTag:     "skip me too",
		Role:      "user",
	}

	got := GetStructValues(model)
	want := []interface{}{"grace", "grace@example.com", "user"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetStructValues = %v, want %v", got, want)
	}
}

func TestInsertQueryAndValuesAlign(t *testing.T) {
	query := GenerateInsertQuery("users", insertModel{})
	values := GetStructValues(insertModel{Name: "a", Email: "b", Role: "c"})

	placeholders := 0
	for _, ch := range query {
		if ch == '?' {
			placeholders++
		}
	}
	if placeholders != len(values) {
		t.Errorf("query has %d placeholders, values has %d entries", placeholders, len(values))
	}
}
