package routers

import (
	"net/http"
	"planbuddy/internal/api/handlers/groups"
)

func groupsRouter(h *groups.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/groups/create", h.CreateGroup)

	mux.HandleFunc("/groups/", h.GetMyGroups)

	mux.HandleFunc("/groups/{id}", h.GetGroupByID)

	mux.HandleFunc("/groups/update/{id}", h.UpdateGroup)

	mux.HandleFunc("/groups/delete/{id}", h.DeleteGroup)

	mux.HandleFunc("/groups/member/{id}/add", h.AddMember)

	mux.HandleFunc("/groups/member/{id}/remove", h.RemoveMember)

	mux.HandleFunc("/groups/member/{id}/leave", h.LeaveGroup)

	mux.HandleFunc("/groups/{id}/transfer-ownership", h.TransferOwnership)

	return mux
}
