package proposals

import (
	"encoding/json"
	"errors"
	"net/http"
	"planbuddy/internal/api/handlers"
	"planbuddy/internal/models"
	"planbuddy/internal/repositories"
	"planbuddy/internal/services"
	"planbuddy/pkg/utils"
	"strconv"
	"strings"
	"time"
)

// Handler exposes the proposal lifecycle over HTTP. Everything goes
// through the coordinator, which owns authorization and the engine
// semantics; this layer only parses, translates errors and shapes the
// JSON envelope.
type Handler struct {
	coordinator *services.Coordinator
}

func NewHandler(coordinator *services.Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// writeProposalError maps engine sentinels onto the management surface.
func writeProposalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrValidation):
		utils.WriteError(w, "invalid proposal details", http.StatusBadRequest)
	case errors.Is(err, repositories.ErrNotAuthorized):
		utils.WriteError(w, "forbidden: you cannot manage this proposal", http.StatusForbidden)
	case errors.Is(err, repositories.ErrNotFound):
		utils.WriteError(w, "proposal not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrProposalClosed):
		utils.WriteError(w, "proposal is no longer open", http.StatusConflict)
	case errors.Is(err, repositories.ErrConflict):
		utils.WriteError(w, "proposal is still collecting responses", http.StatusConflict)
	default:
		utils.Logger.Errorf("proposal operation failed: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeResponseError maps engine sentinels onto the respond surface,
// where the caller followed an emailed link and deserves a plain
// explanation of what happened to it.
func writeResponseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrTokenNotFound):
		utils.WriteError(w, "this response link is invalid or has been replaced by a newer one", http.StatusNotFound)
	case errors.Is(err, repositories.ErrTokenExpired):
		utils.WriteError(w, "this response link has expired, ask the organizer for a fresh one", http.StatusGone)
	case errors.Is(err, repositories.ErrTokenConsumed):
		utils.WriteError(w, "this response link was already used with a different answer", http.StatusConflict)
	case errors.Is(err, repositories.ErrProposalClosed):
		utils.WriteError(w, "this proposal is no longer accepting responses", http.StatusGone)
	case errors.Is(err, repositories.ErrValidation):
		utils.WriteError(w, "invalid response details", http.StatusBadRequest)
	case errors.Is(err, repositories.ErrNotFound):
		utils.WriteError(w, "proposal not found", http.StatusNotFound)
	default:
		utils.Logger.Errorf("response recording failed: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

// FUNC TO CREATE A MEETING PROPOSAL
func (h *Handler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.RequestUserID(w, r)
	if !ok {
		return
	}

	type request struct {
		GroupID      int      `json:"group_id"`
		Attendees    []string `json:"attendees"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		ProposedDate string   `json:"proposed_date"`
		WindowStart  string   `json:"window_start"`
		WindowEnd    string   `json:"window_end"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		utils.WriteError(w, "proposal title is required", http.StatusBadRequest)
		return
	}
	if len(req.Title) > 200 || len(req.Description) > 1000 {
		utils.WriteError(w, "title or description too long", http.StatusBadRequest)
		return
	}

	proposedDate, err := time.Parse("2006-01-02", req.ProposedDate)
	if err != nil {
		utils.WriteError(w, "invalid proposed_date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	windowStart, err := time.Parse(time.RFC3339, req.WindowStart)
	if err != nil {
		utils.WriteError(w, "invalid window_start, use an RFC3339 timestamp", http.StatusBadRequest)
		return
	}

	windowEnd, err := time.Parse(time.RFC3339, req.WindowEnd)
	if err != nil {
		utils.WriteError(w, "invalid window_end, use an RFC3339 timestamp", http.StatusBadRequest)
		return
	}

	if !windowEnd.After(windowStart) {
		utils.WriteError(w, "the time window must end after it starts", http.StatusBadRequest)
		return
	}

	if req.GroupID == 0 {
		if len(req.Attendees) == 0 {
			utils.WriteError(w, "provide a group_id or a list of attendee emails", http.StatusBadRequest)
			return
		}
		for _, email := range req.Attendees {
			if !handlers.ValidateEmail(w, strings.TrimSpace(email)) {
				return
			}
		}
	}

	proposal, err := h.coordinator.ProposeMeeting(r.Context(), services.ProposeMeetingInput{
		OrganizerID:  userID,
		GroupID:      req.GroupID,
		Attendees:    req.Attendees,
		Title:        req.Title,
		Description:  req.Description,
		ProposedDate: proposedDate,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotAuthorized) {
			utils.WriteError(w, "forbidden: you must be a group admin to propose meetings", http.StatusForbidden)
			return
		}
		writeProposalError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "meeting proposal sent",
		"data":    proposal,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET A PROPOSAL WITH RESPONSES AND TALLY
func (h *Handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	publicID := r.PathValue("publicId")
	if publicID == "" {
		utils.WriteError(w, "invalid proposal ID", http.StatusBadRequest)
		return
	}

	userID, ok := handlers.RequestUserID(w, r)
	if !ok {
		return
	}

	details, err := h.coordinator.GetProposal(r.Context(), publicID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotAuthorized) {
			utils.WriteError(w, "forbidden: you are not part of this proposal", http.StatusForbidden)
			return
		}
		writeProposalError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data":   details,
	})
}

// FUNC TO LIST PROPOSALS ORGANIZED BY THE LOGGED-IN USER
func (h *Handler) ListMyProposals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.RequestUserID(w, r)
	if !ok {
		return
	}

	proposals, err := h.coordinator.ListMyProposals(r.Context(), userID)
	if err != nil {
		writeProposalError(w, err)
		return
	}

	utils.WriteJSON(w, struct {
		Status string                   `json:"status"`
		Count  int                      `json:"count"`
		Data   []models.MeetingProposal `json:"data"`
	}{
		Status: "success",
		Count:  len(proposals),
		Data:   proposals,
	})
}

// FUNC TO LIST A GROUP'S PROPOSALS
func (h *Handler) ListGroupProposals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	groupID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}

	userID, ok := handlers.RequestUserID(w, r)
	if !ok {
		return
	}

	proposals, err := h.coordinator.ListGroupProposals(r.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotAuthorized) {
			utils.WriteError(w, "forbidden: you are not a member of this group", http.StatusForbidden)
			return
		}
		writeProposalError(w, err)
		return
	}

	utils.WriteJSON(w, struct {
		Status string                   `json:"status"`
		Count  int                      `json:"count"`
		Data   []models.MeetingProposal `json:"data"`
	}{
		Status: "success",
		Count:  len(proposals),
		Data:   proposals,
	})
}

func (h *Handler) transitionProposal(w http.ResponseWriter, r *http.Request, message string,
	transition func(publicID string, actorID int) (*models.MeetingProposal, error)) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	publicID := r.PathValue("publicId")
	if publicID == "" {
		utils.WriteError(w, "invalid proposal ID", http.StatusBadRequest)
		return
	}

	userID, ok := handlers.RequestUserID(w, r)
	if !ok {
		return
	}

	proposal, err := transition(publicID, userID)
	if err != nil {
		writeProposalError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": message,
		"data":    proposal,
	})
}

// FUNC TO CANCEL A PROPOSAL
func (h *Handler) CancelProposal(w http.ResponseWriter, r *http.Request) {
	h.transitionProposal(w, r, "proposal cancelled", func(publicID string, actorID int) (*models.MeetingProposal, error) {
		return h.coordinator.CancelProposal(r.Context(), publicID, actorID)
	})
}

// FUNC TO CLOSE A PROPOSAL EARLY
func (h *Handler) CloseProposal(w http.ResponseWriter, r *http.Request) {
	h.transitionProposal(w, r, "proposal closed and resolved", func(publicID string, actorID int) (*models.MeetingProposal, error) {
		return h.coordinator.CloseProposal(r.Context(), publicID, actorID)
	})
}

// FUNC TO ARCHIVE A RESOLVED PROPOSAL
func (h *Handler) ArchiveProposal(w http.ResponseWriter, r *http.Request) {
	h.transitionProposal(w, r, "proposal archived", func(publicID string, actorID int) (*models.MeetingProposal, error) {
		return h.coordinator.ArchiveProposal(r.Context(), publicID, actorID)
	})
}

func respondOutcomeMessage(outcome *services.ResponseOutcome) string {
	switch {
	case outcome.AlreadyRecorded:
		return "your response was already recorded"
	case outcome.Resolved:
		return "your response has been recorded and the proposal is now resolved"
	default:
		return "your response has been recorded"
	}
}

func writeRespondOutcome(w http.ResponseWriter, outcome *services.ResponseOutcome) {
	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": respondOutcomeMessage(outcome),
		"data": map[string]interface{}{
			"proposal":         outcome.Proposal,
			"answer":           outcome.Answer,
			"tally":            outcome.Tally,
			"resolved":         outcome.Resolved,
			"already_recorded": outcome.AlreadyRecorded,
		},
	})
}

// Respond splits the shared /respond path: GET serves the one-click
// email links, POST takes the full form with alternate window and note.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.RespondViaLink(w, r)
	case http.MethodPost:
		h.SubmitResponse(w, r)
	default:
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// FUNC TO RECORD A ONE-CLICK RESPONSE FROM AN EMAIL LINK
func (h *Handler) RespondViaLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		utils.WriteError(w, "missing response token", http.StatusBadRequest)
		return
	}

	answer := models.Answer(strings.ToLower(r.URL.Query().Get("response")))
	if answer != models.AnswerYes && answer != models.AnswerNo {
		utils.WriteError(w, "response must be 'yes' or 'no'; to suggest another time, submit the respond form", http.StatusBadRequest)
		return
	}

	outcome, err := h.coordinator.HandleResponse(r.Context(), token, answer, nil, "")
	if err != nil {
		writeResponseError(w, err)
		return
	}

	writeRespondOutcome(w, outcome)
}

// FUNC TO RECORD A FULL RESPONSE WITH ALTERNATE WINDOW AND NOTE
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		Token          string `json:"token"`
		Response       string `json:"response"`
		AlternateStart string `json:"alternate_start,omitempty"`
		AlternateEnd   string `json:"alternate_end,omitempty"`
		Note           string `json:"note,omitempty"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Token == "" {
		utils.WriteError(w, "missing response token", http.StatusBadRequest)
		return
	}

	answer := models.Answer(strings.ToLower(strings.TrimSpace(req.Response)))
	if !answer.Valid() {
		utils.WriteError(w, "response must be yes, no or alternate", http.StatusBadRequest)
		return
	}

	var alternate *models.AlternateWindow
	if req.AlternateStart != "" || req.AlternateEnd != "" {
		start, err := time.Parse(time.RFC3339, req.AlternateStart)
		if err != nil {
			utils.WriteError(w, "invalid alternate_start, use an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		window := models.AlternateWindow{Start: start}
		if req.AlternateEnd != "" {
			end, err := time.Parse(time.RFC3339, req.AlternateEnd)
			if err != nil {
				utils.WriteError(w, "invalid alternate_end, use an RFC3339 timestamp", http.StatusBadRequest)
				return
			}
			window.End = end
		}
		alternate = &window
	}

	outcome, err := h.coordinator.HandleResponse(r.Context(), req.Token, answer, alternate, req.Note)
	if err != nil {
		writeResponseError(w, err)
		return
	}

	writeRespondOutcome(w, outcome)
}
