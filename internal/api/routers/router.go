package routers

import (
	"net/http"
	"planbuddy/internal/api/handlers/auth"
	"planbuddy/internal/api/handlers/groups"
	"planbuddy/internal/api/handlers/proposals"
)

func MainRouter(authHandler *auth.Handler, groupsHandler *groups.Handler, proposalsHandler *proposals.Handler) *http.ServeMux {

	mux := http.NewServeMux()

	uRouter := usersRouter(authHandler)
	mux.Handle("/users/", uRouter)

	gRouter := groupsRouter(groupsHandler)
	mux.Handle("/groups/", gRouter)

	pRouter := proposalsRouter(proposalsHandler)
	mux.Handle("/proposals/", pRouter)
	mux.Handle("/respond", pRouter)

	return mux
}
