package groups

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"planbuddy/internal/api/handlers"
	"planbuddy/internal/models"
	"planbuddy/internal/repositories"
	"planbuddy/pkg/utils"
	"strconv"
	"strings"
	"time"
)

// Handler owns the group endpoints. Mutations and role checks go
// through the membership store; the plain listing query keeps the
// database handle directly.
type Handler struct {
	db    *sql.DB
	store *repositories.MembershipRepository
}

func NewHandler(db *sql.DB, store *repositories.MembershipRepository) *Handler {
	return &Handler{db: db, store: store}
}

// writeStoreError maps repository sentinels to HTTP statuses. Handlers
// that need a more specific message check errors.Is before falling
// through to this.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrValidation):
		utils.WriteError(w, "invalid request", http.StatusBadRequest)
	case errors.Is(err, repositories.ErrNotAuthorized):
		utils.WriteError(w, "forbidden: insufficient group role", http.StatusForbidden)
	case errors.Is(err, repositories.ErrNotFound):
		utils.WriteError(w, "group not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrConflict):
		utils.WriteError(w, "conflict with an existing record", http.StatusConflict)
	case errors.Is(err, repositories.ErrInvariantViolation):
		utils.WriteError(w, "operation not allowed", http.StatusBadRequest)
	default:
		utils.Logger.Errorf("group operation failed: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

// FUNC TO CREATE A GROUP
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.RequestUserID(w, r)
	if !ok {
		return
	}

	var newGroup models.Group
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&newGroup); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	newGroup.Name = strings.TrimSpace(newGroup.Name)
	if newGroup.Name == "" || newGroup.Description == "" {
		utils.WriteError(w, "group name and description is required", http.StatusBadRequest)
		return
	}

	if len(newGroup.Name) > 100 || len(newGroup.Description) > 500 {
		utils.WriteError(w, "name or description too long", http.StatusBadRequest)
		return
	}

	newGroup.CreatedBy = userID

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.CreateGroup(ctx, &newGroup); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			utils.WriteError(w, "you already have a group with this name", http.StatusConflict)
			return
		}
		writeStoreError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Group created successfully",
		"data": map[string]interface{}{
			"group_id":   newGroup.ID,
			"group_name": newGroup.Name,
			"role":       string(models.RoleOwner),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET ALL GROUPS THE LOGGED-IN USER BELONGS TO
func (h *Handler) GetMyGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := handlers.RequestUserID(w, r)
	if !ok {
		return
	}

	query := `
		SELECT g.id, g.name, g.description, g.group_type, g.created_by, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ? AND g.deleted_at IS NULL
	`
	args := []interface{}{userID}

	query, args = utils.AddFilters(r, query, args)
	query = utils.AddSorting(r, query)

	page, limit := utils.GetPaginationParams(r)
	offset := (page - 1) * limit
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := h.db.Query(query, args...)
	if err != nil {
		utils.Logger.Errorf("internal server error: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	groupList := make([]models.Group, 0)
	for rows.Next() {
		var group models.Group
		err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.GroupType,
			&group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
		if err != nil {
			utils.Logger.Errorf("error fetching data: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		groupList = append(groupList, group)
	}

	response := struct {
		Status   string         `json:"status"`
		Count    int            `json:"count"`
		Page     int            `json:"page"`
		PageSize int            `json:"page_size"`
		Data     []models.Group `json:"data"`
	}{
		Status:   "success",
		Count:    len(groupList),
		Page:     page,
		PageSize: limit,
		Data:     groupList,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET A SINGLE GROUP AND ITS MEMBERS
func (h *Handler) GetGroupByID(w http.ResponseWriter, r *http.Request) {
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

	_, member, err := h.store.GetRole(r.Context(), groupID, userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !member {
		utils.WriteError(w, "forbidden: you are not a member of this group", http.StatusForbidden)
		return
	}

	group, err := h.store.GetGroupByID(r.Context(), groupID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	members, err := h.store.ListMembers(r.Context(), groupID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	response := struct {
		Status  string                      `json:"status"`
		Group   models.Group                `json:"group"`
		Members []models.GroupMemberDetails `json:"members"`
	}{
		Status:  "success",
		Group:   *group,
		Members: members,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// FUNC TO UPDATE GROUP NAME/DESCRIPTION
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	type request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Name != "" && strings.TrimSpace(req.Name) == "" {
		utils.WriteError(w, "name cannot be empty or whitespace", http.StatusBadRequest)
		return
	}

	if len(req.Name) > 100 || len(req.Description) > 500 {
		utils.WriteError(w, "name or description too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err = h.store.GetGroupByID(ctx, groupID); err != nil {
		writeStoreError(w, err)
		return
	}

	if err = h.store.RequireRole(ctx, groupID, userID, models.RoleAdmin); err != nil {
		writeStoreError(w, err)
		return
	}

	if err = h.store.UpdateGroup(ctx, groupID, req.Name, req.Description); err != nil {
		if errors.Is(err, repositories.ErrValidation) {
			utils.WriteError(w, "no updates provided", http.StatusBadRequest)
			return
		}
		writeStoreError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Group updated successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO DELETE A GROUP BY ITS OWNER
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err = h.store.GetGroupByID(ctx, groupID); err != nil {
		writeStoreError(w, err)
		return
	}

	if err = h.store.RequireRole(ctx, groupID, userID, models.RoleOwner); err != nil {
		if errors.Is(err, repositories.ErrNotAuthorized) {
			utils.WriteError(w, "forbidden: only the group owner can delete the group", http.StatusForbidden)
			return
		}
		writeStoreError(w, err)
		return
	}

	if err = h.store.SoftDeleteGroup(ctx, groupID); err != nil {
		writeStoreError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "group deleted successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO ADD A MEMBER TO A GROUP
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	type request struct {
		UserID int    `json:"user_id"`
		Role   string `json:"role"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.UserID == 0 {
		utils.WriteError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleMember
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err = h.store.GetGroupByID(ctx, groupID); err != nil {
		writeStoreError(w, err)
		return
	}

	// Granting admin is an owner call; plain members can be added by
	// any admin.
	minimum := models.RoleAdmin
	if role == models.RoleAdmin {
		minimum = models.RoleOwner
	}
	if err = h.store.RequireRole(ctx, groupID, userID, minimum); err != nil {
		writeStoreError(w, err)
		return
	}

	var id int
	err = h.db.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ?", req.UserID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "user not found, please ask them to sign up", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("internal server error: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err = h.store.AddMember(ctx, groupID, req.UserID, role); err != nil {
		if errors.Is(err, repositories.ErrValidation) {
			utils.WriteError(w, "invalid member role", http.StatusBadRequest)
			return
		}
		writeStoreError(w, err)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "member added successfully",
		"data": map[string]interface{}{
			"group_id": groupID,
			"user_id":  req.UserID,
			"role":     string(role),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO REMOVE MEMBER
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	type request struct {
		UserID int `json:"user_id"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.UserID == userID {
		utils.WriteError(w, "use the leave endpoint to remove yourself", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err = h.store.GetGroupByID(ctx, groupID); err != nil {
		writeStoreError(w, err)
		return
	}

	if err = h.store.RequireRole(ctx, groupID, userID, models.RoleAdmin); err != nil {
		writeStoreError(w, err)
		return
	}

	removed, err := h.store.RemoveMember(ctx, groupID, req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvariantViolation) {
			utils.WriteError(w, "the group owner cannot be removed. Transfer ownership first.", http.StatusBadRequest)
			return
		}
		writeStoreError(w, err)
		return
	}
	if !removed {
		utils.WriteError(w, "user is not a member of this group", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "member removed successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC FOR A MEMBER TO LEAVE GROUP
func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err = h.store.GetGroupByID(ctx, groupID); err != nil {
		writeStoreError(w, err)
		return
	}

	removed, err := h.store.RemoveMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvariantViolation) {
			utils.WriteError(w, "group owners cannot leave. Transfer ownership or delete the group.", http.StatusBadRequest)
			return
		}
		writeStoreError(w, err)
		return
	}
	if !removed {
		utils.WriteError(w, "you are not a member of this group", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "you have successfully left the group",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO TRANSFER GROUP OWNERSHIP
func (h *Handler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	type request struct {
		UserID int `json:"user_id"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.UserID == 0 {
		utils.WriteError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if req.UserID == userID {
		utils.WriteError(w, "you already own this group", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err = h.store.GetGroupByID(ctx, groupID); err != nil {
		writeStoreError(w, err)
		return
	}

	if err = h.store.TransferOwnership(ctx, groupID, userID, req.UserID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotAuthorized):
			utils.WriteError(w, "only the group owner can transfer ownership", http.StatusForbidden)
		case errors.Is(err, repositories.ErrValidation):
			utils.WriteError(w, "the new owner must already be a group member", http.StatusBadRequest)
		default:
			writeStoreError(w, err)
		}
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "group ownership transferred successfully",
		"data": map[string]interface{}{
			"group_id":  groupID,
			"new_owner": req.UserID,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
