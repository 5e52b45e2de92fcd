package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"planbuddy/internal/api/handlers"
	"planbuddy/internal/models"
	"planbuddy/pkg/utils"
	"strconv"
	"strings"
	"time"
)

// Handler owns the identity endpoints. The database handle is injected
// at startup rather than pulled from package state.
type Handler struct {
	db *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

func otpExpiry() (time.Time, string, error) {
	duration, err := strconv.Atoi(os.Getenv("OTP_TOKEN_EXP_DURATION"))
	if err != nil {
		return time.Time{}, "", utils.ErrorHandler(err, "failed to read OTP_TOKEN_EXP_DURATION")
	}
	mins := time.Duration(duration)
	expiryTime := time.Now().Add(mins * time.Minute)
	return expiryTime, expiryTime.Format(time.RFC3339), nil
}

// FUNC TO REGISTER USERS
func (h *Handler) RegisterUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var newUser models.User
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&newUser); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	newUser.Role = "user"

	newUser.Username = strings.ToLower(newUser.Username)
	newUser.Email = strings.ToLower(newUser.Email)

	// Generate OTP and expiry
	expiryTime, expiryStr, err := otpExpiry()
	if err != nil {
		utils.WriteError(w, "failed to generate otp", http.StatusInternalServerError)
		return
	}

	otp, err := utils.GenerateSecureOTP()
	if err != nil {
		utils.Logger.Errorf("failed to generate otp: %v", err)
		utils.WriteError(w, "failed to generate otp", http.StatusInternalServerError)
		return
	}

	newUser.Otp = otp
	newUser.OtpExpires = expiryStr

	if err := handlers.CheckBlankFields(newUser); err != nil {
		utils.WriteError(w, "missing required fields", http.StatusBadRequest)
		return
	}

	hashedPwd, err := utils.HashPassword(newUser.Password)
	if err != nil {
		utils.WriteError(w, "error hashing password", http.StatusInternalServerError)
		return
	}
	newUser.Password = hashedPwd

	stmt, err := h.db.Prepare(utils.GenerateInsertQuery("users", models.User{}))
	if err != nil {
		utils.Logger.Errorf("failed to prepare statement: %v", err)
		utils.WriteError(w, "error signing up", http.StatusInternalServerError)
		return
	}
	defer stmt.Close()

	values := utils.GetStructValues(newUser)
	res, err := stmt.Exec(values...)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			utils.WriteError(w, "email or username already exists", http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to insert user: %v", err)
		utils.WriteError(w, "error signing up", http.StatusInternalServerError)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		utils.Logger.Errorf("failed to get last insert ID: %v", err)
		utils.WriteError(w, "error signing up", http.StatusInternalServerError)
		return
	}

	go func(email, username, otp string, expiry time.Time) {
		if err := utils.SendOTPEmail(email, username, otp, expiry); err != nil {
			utils.Logger.Errorf("failed to send OTP email to %s: %v", email, err)
		}
	}(newUser.Email, newUser.Username, otp, expiryTime)

	newUser.ID = int(id)
	newUser.Password = ""
	newUser.Otp = ""
	newUser.OtpExpires = ""

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "OTP sent to your email for verification",
		"data":    newUser,
	})
}

// FUNC TO CONFIRM OTP
func (h *Handler) ConfirmOtp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		Otp string `json:"otp"`
	}

	var otp request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&otp); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if otp.Otp == "" {
		utils.WriteError(w, "please enter otp", http.StatusBadRequest)
		return
	}

	var user models.User
	query := "SELECT id, email, username FROM users WHERE otp = ? AND otp_expires > ?"
	err := h.db.QueryRow(query, otp.Otp, time.Now().Format(time.RFC3339)).Scan(&user.ID, &user.Email, &user.Username)
	if err != nil {
		utils.WriteError(w, "invalid or expired otp", http.StatusBadRequest)
		return
	}

	updateQuery := "UPDATE users SET otp = NULL, otp_expires = NULL, email_confirmed = ? WHERE id = ?"

	_, err = h.db.Exec(updateQuery, true, user.ID)
	if err != nil {
		utils.WriteError(w, "could not verify otp", http.StatusInternalServerError)
		return
	}

	go func(email, username string) {
		if err := utils.SendWelcomeEmail(email, username); err != nil {
			utils.Logger.Errorf("failed to send welcome email to %s: %v", email, err)
		}
	}(user.Email, user.Username)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "OTP verified successfully, Welcome onboard!",
	})
}

// FUNC TO RESEND OTP
func (h *Handler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		Email string `json:"email"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Email = strings.ToLower(req.Email)
	if req.Email == "" {
		utils.WriteError(w, "please enter your email", http.StatusBadRequest)
		return
	}

	var user models.User
	query := "SELECT id, email, username, email_confirmed FROM users WHERE email = ?"
	err := h.db.QueryRow(query, req.Email).Scan(&user.ID, &user.Email, &user.Username, &user.EmailConfirmed)
	if err != nil {
		utils.WriteError(w, "user not found", http.StatusNotFound)
		return
	}

	if user.EmailConfirmed {
		utils.WriteError(w, "email already verified", http.StatusBadRequest)
		return
	}

	expiryTime, expiryStr, err := otpExpiry()
	if err != nil {
		utils.WriteError(w, "failed to generate otp", http.StatusInternalServerError)
		return
	}

	otp, err := utils.GenerateSecureOTP()
	if err != nil {
		utils.Logger.Errorf("failed to generate otp: %v", err)
		utils.WriteError(w, "failed to generate otp", http.StatusInternalServerError)
		return
	}

	updatedQuery := "UPDATE users SET otp = ?, otp_expires = ? WHERE id = ?"
	_, err = h.db.Exec(updatedQuery, otp, expiryStr, user.ID)
	if err != nil {
		utils.Logger.Errorf("failed to update user otp: %v", err)
		utils.WriteError(w, "could not update otp", http.StatusInternalServerError)
		return
	}

	go func(email, username, otp string, expiry time.Time) {
		if err := utils.SendOTPEmail(email, username, otp, expiry); err != nil {
			utils.Logger.Errorf("failed to send OTP email to %s: %v", email, err)
		}
	}(user.Email, user.Username, otp, expiryTime)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "New OTP sent to your email successfully",
	})
}

// FUNC TO LOGIN
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	type loginRequest struct {
		AccountID string `json:"account_id"`
		Password  string `json:"password"`
	}

	var req loginRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.AccountID == "" || req.Password == "" {
		utils.WriteError(w, "email or username and password are required", http.StatusBadRequest)
		return
	}

	user := &models.User{}

	query := "SELECT id, first_name, last_name, email, username, password, inactive_status, role FROM users WHERE username = ? OR email = ?"
	err = h.db.QueryRow(query, req.AccountID, req.AccountID).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Username, &user.Password, &user.InactiveStatus, &user.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			utils.Logger.Error("user not found")
			return
		}
		utils.Logger.Error("database query error")
		utils.WriteError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if user.InactiveStatus {
		utils.WriteError(w, "user account is not active", http.StatusForbidden)
		return
	}

	if err := utils.VerifyPassword(req.Password, user.Password); err != nil {
		utils.WriteError(w, "incorrect password or account ID", http.StatusForbidden)
		return
	}

	tokenString, err := utils.SignToken(user.ID, user.Username, user.Role)
	if err != nil {
		utils.Logger.Error("could not create login token")
		utils.WriteError(w, "error signing in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Now().Add(24 * time.Hour),
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]interface{}{
		"status":  "success",
		"message": "login successful",
		"token":   tokenString,
		"user": map[string]interface{}{
			"id":        user.ID,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"email":     user.Email,
			"username":  user.Username,
			"role":      user.Role,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// FUNC FOR LOGOUT
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "logged out successfully"}`))
}

// FUNC TO UPDATE PASSWORD
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	var req models.UpdatePasswordRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "all fields are required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.CurrentPassword == "" || req.NewPassword == "" {
		utils.WriteError(w, "please enter all fields", http.StatusBadRequest)
		return
	}

	var userRole string
	var username string
	var userPassword string

	err := h.db.QueryRow("SELECT password, username, role FROM users WHERE id = ?", userID).Scan(&userPassword, &username, &userRole)
	if err != nil {
		utils.WriteError(w, "user not found", http.StatusNotFound)
		return
	}

	err = utils.VerifyPassword(req.CurrentPassword, userPassword)
	if err != nil {
		utils.WriteError(w, "the password you entered does not match the current password", http.StatusBadRequest)
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Logger.Error("failed to hash password")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	currentTime := time.Now().Format(time.RFC3339)

	_, err = h.db.Exec("UPDATE users SET password = ?, password_changed_at = ? WHERE id = ?", hashedPassword, currentTime, userID)
	if err != nil {
		utils.WriteError(w, "failed to update password", http.StatusInternalServerError)
		return
	}

	token, err := utils.SignToken(userID, username, userRole)
	if err != nil {
		utils.Logger.Error("could not create token")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Now().Add(24 * time.Hour),
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]interface{}{
		"status":  "success",
		"message": "password updated successfully",
	}

	json.NewEncoder(w).Encode(response)
}
