package routers

import (
	"net/http"
	"planbuddy/internal/api/handlers/proposals"
)

func proposalsRouter(h *proposals.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/proposals/create", h.CreateProposal)

	mux.HandleFunc("/proposals/my", h.ListMyProposals)

	mux.HandleFunc("/proposals/group/{id}", h.ListGroupProposals)

	mux.HandleFunc("/proposals/{publicId}", h.GetProposal)

	mux.HandleFunc("/proposals/{publicId}/cancel", h.CancelProposal)

	mux.HandleFunc("/proposals/{publicId}/close", h.CloseProposal)

	mux.HandleFunc("/proposals/{publicId}/archive", h.ArchiveProposal)

	// The one-click links from invite emails land here, outside the
	// JWT wall.
	mux.HandleFunc("/respond", h.Respond)

	return mux
}
