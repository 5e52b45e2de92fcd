package handlers

import (
	"errors"
	"net/http"
	"planbuddy/pkg/utils"
	"reflect"
	"regexp"
)

func CheckBlankFields(value interface{}) error {
	val := reflect.ValueOf(value)
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if field.Kind() == reflect.String && field.String() == "" {
			// http.Error(w, "All fields are required", http.StatusBadRequest)
			return utils.ErrorHandler(errors.New("all fields are required"), "all fields are required")
		}
	}
	return nil
}

func ValidateEmail(w http.ResponseWriter, email string) bool {
	if !regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`).MatchString(email) {
		utils.WriteError(w, "invalid email address format", http.StatusBadRequest)
		return false
	}

	return true
}

// RequestUserID pulls the authenticated user's ID out of the request
// context set by the JWT middleware.
func RequestUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return int(idFloat), true
}
