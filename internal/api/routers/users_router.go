package routers

import (
	"net/http"
	"planbuddy/internal/api/handlers/auth"
)

func usersRouter(h *auth.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/users/signup", h.RegisterUsers)
	mux.HandleFunc("/users/confirmotp", h.ConfirmOtp)
	mux.HandleFunc("/users/resendotp", h.ResendOtp)

	mux.HandleFunc("/users/login", h.Login)
	mux.HandleFunc("/users/logout", h.Logout)
	mux.HandleFunc("/users/updatepassword", h.UpdatePassword)

	return mux
}
