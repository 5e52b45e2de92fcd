package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"planbuddy/internal/models"
	"planbuddy/pkg/utils"
)

// MembershipRepository owns groups, their member rows and the role
// invariants that gate every group mutation.
type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// CreateGroup inserts the group and its owner membership as one unit.
// A group is never left ownerless, so a failed membership insert rolls
// the group back too. The group's ID is filled in on success.
func (r *MembershipRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return fmt.Errorf("group name is required: %w", ErrValidation)
	}
	if group.GroupType == "" {
		group.GroupType = "general"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return utils.ErrorHandler(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM groups WHERE created_by = ? AND name = ? AND deleted_at IS NULL)
	`, group.CreatedBy, group.Name).Scan(&taken)
	if err != nil {
		return utils.ErrorHandler(err, "failed to check group name")
	}
	if taken {
		return fmt.Errorf("you already have a group named '%s': %w", group.Name, ErrConflict)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO groups (name, description, group_type, created_by)
		VALUES (?, ?, ?, ?)
	`, group.Name, group.Description, group.GroupType, group.CreatedBy)
	if err != nil {
		return utils.ErrorHandler(err, "failed to create group")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return utils.ErrorHandler(err, "failed to get group ID")
	}
	group.ID = int(id)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES (?, ?, ?)
	`, group.ID, group.CreatedBy, models.RoleOwner)
	if err != nil {
		return utils.ErrorHandler(err, "failed to add group owner")
	}

	if err := tx.Commit(); err != nil {
		return utils.ErrorHandler(err, "failed to commit transaction")
	}
	return nil
}

// AddMember is idempotent: re-adding an existing member is a no-op and
// the stored role keeps whatever it already was.
func (r *MembershipRepository) AddMember(ctx context.Context, groupID, userID int, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role '%s': %w", role, ErrValidation)
	}
	if role == models.RoleOwner {
		return fmt.Errorf("ownership is set at creation or by transfer: %w", ErrValidation)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES (?, ?, ?)
	`, groupID, userID, role)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil
		}
		return utils.ErrorHandler(err, "failed to add member")
	}
	return nil
}

// RemoveMember deletes a membership. A missing membership returns
// (false, nil); removing the only owner is refused outright.
func (r *MembershipRepository) RemoveMember(ctx context.Context, groupID, userID int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, utils.ErrorHandler(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var role models.Role
	err = tx.QueryRowContext(ctx, `
		SELECT role FROM group_members WHERE group_id = ? AND user_id = ? FOR UPDATE
	`, groupID, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, utils.ErrorHandler(err, "failed to look up membership")
	}

	if role == models.RoleOwner {
		var owners int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM group_members WHERE group_id = ? AND role = ? FOR UPDATE
		`, groupID, models.RoleOwner).Scan(&owners)
		if err != nil {
			return false, utils.ErrorHandler(err, "failed to count owners")
		}
		if owners <= 1 {
			return false, fmt.Errorf("group %d would be left without an owner: %w", groupID, ErrInvariantViolation)
		}
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = ? AND user_id = ?
	`, groupID, userID)
	if err != nil {
		return false, utils.ErrorHandler(err, "failed to remove member")
	}

	if err := tx.Commit(); err != nil {
		return false, utils.ErrorHandler(err, "failed to commit transaction")
	}
	return true, nil
}

// TransferOwnership demotes the current owner to admin and promotes an
// existing member in the same transaction, so the one-owner invariant
// holds at every commit point.
func (r *MembershipRepository) TransferOwnership(ctx context.Context, groupID, fromUserID, toUserID int) error {
	if fromUserID == toUserID {
		return fmt.Errorf("cannot transfer ownership to yourself: %w", ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return utils.ErrorHandler(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var fromRole models.Role
	err = tx.QueryRowContext(ctx, `
		SELECT role FROM group_members WHERE group_id = ? AND user_id = ? FOR UPDATE
	`, groupID, fromUserID).Scan(&fromRole)
	if err == sql.ErrNoRows || (err == nil && fromRole != models.RoleOwner) {
		return fmt.Errorf("only the group owner can transfer ownership: %w", ErrNotAuthorized)
	}
	if err != nil {
		return utils.ErrorHandler(err, "failed to look up current owner")
	}

	var toRole models.Role
	err = tx.QueryRowContext(ctx, `
		SELECT role FROM group_members WHERE group_id = ? AND user_id = ? FOR UPDATE
	`, groupID, toUserID).Scan(&toRole)
	if err == sql.ErrNoRows {
		return fmt.Errorf("the new owner must already be a group member: %w", ErrValidation)
	}
	if err != nil {
		return utils.ErrorHandler(err, "failed to look up new owner")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE group_members SET role = ? WHERE group_id = ? AND user_id = ?
	`, models.RoleAdmin, groupID, fromUserID)
	if err != nil {
		return utils.ErrorHandler(err, "failed to demote current owner")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE group_members SET role = ? WHERE group_id = ? AND user_id = ?
	`, models.RoleOwner, groupID, toUserID)
	if err != nil {
		return utils.ErrorHandler(err, "failed to promote new owner")
	}

	if err := tx.Commit(); err != nil {
		return utils.ErrorHandler(err, "failed to commit transaction")
	}
	return nil
}

// GetRole returns the member's role in an alive group. The second
// return is false when the user is not a member (or the group is gone).
func (r *MembershipRepository) GetRole(ctx context.Context, groupID, userID int) (models.Role, bool, error) {
	var role models.Role
	err := r.db.QueryRowContext(ctx, `
		SELECT gm.role FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		WHERE gm.group_id = ? AND gm.user_id = ? AND g.deleted_at IS NULL
	`, groupID, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, utils.ErrorHandler(err, "failed to look up role")
	}
	return role, true, nil
}

// RequireRole is the capability check every mutating group operation
// goes through. Role ordering means owner passes any admin check.
func (r *MembershipRepository) RequireRole(ctx context.Context, groupID, userID int, minimum models.Role) error {
	role, ok, err := r.GetRole(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %d is not a member of group %d: %w", userID, groupID, ErrNotAuthorized)
	}
	if !role.AtLeast(minimum) {
		return fmt.Errorf("user %d needs %s access on group %d: %w", userID, minimum, groupID, ErrNotAuthorized)
	}
	return nil
}

func (r *MembershipRepository) GetGroupByID(ctx context.Context, groupID int) (*models.Group, error) {
	var group models.Group
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, group_type, created_by, created_at, updated_at
		FROM groups
		WHERE id = ? AND deleted_at IS NULL
	`, groupID).Scan(&group.ID, &group.Name, &group.Description, &group.GroupType,
		&group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %d: %w", groupID, ErrNotFound)
	}
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch group")
	}
	return &group, nil
}

func (r *MembershipRepository) ListMembers(ctx context.Context, groupID int) ([]models.GroupMemberDetails, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.email, gm.role, gm.joined_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at ASC
	`, groupID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch members")
	}
	defer rows.Close()

	members := make([]models.GroupMemberDetails, 0)
	for rows.Next() {
		var m models.GroupMemberDetails
		err := rows.Scan(&m.UserID, &m.Username, &m.FirstName, &m.LastName, &m.Email, &m.Role, &m.JoinedAt)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan member")
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListMemberContacts returns member contact details for notification
// fan-out, excluding the given user (the organizer mails everyone else).
func (r *MembershipRepository) ListMemberContacts(ctx context.Context, groupID, excludeUserID int) ([]models.MemberContact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.first_name, u.email
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ? AND gm.user_id != ?
	`, groupID, excludeUserID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to fetch member contacts")
	}
	defer rows.Close()

	contacts := make([]models.MemberContact, 0)
	for rows.Next() {
		var c models.MemberContact
		if err := rows.Scan(&c.UserID, &c.FirstName, &c.Email); err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan member contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// UpdateGroup patches name and/or description. Empty values mean
// "leave as is".
func (r *MembershipRepository) UpdateGroup(ctx context.Context, groupID int, name, description string) error {
	setClauses := []string{}
	args := []interface{}{}

	if name = strings.TrimSpace(name); name != "" {
		setClauses = append(setClauses, "name = ?")
		args = append(args, name)
	}
	if description != "" {
		setClauses = append(setClauses, "description = ?")
		args = append(args, description)
	}
	if len(setClauses) == 0 {
		return fmt.Errorf("nothing to update: %w", ErrValidation)
	}

	query := "UPDATE groups SET " + strings.Join(setClauses, ", ") + " WHERE id = ? AND deleted_at IS NULL"
	args = append(args, groupID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return utils.ErrorHandler(err, "failed to update group")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return utils.ErrorHandler(err, "failed to read update result")
	}
	if rows == 0 {
		return fmt.Errorf("group %d: %w", groupID, ErrNotFound)
	}
	return nil
}

// SoftDeleteGroup stamps deleted_at. Member rows stay in place until a
// hard delete cascades them away.
func (r *MembershipRepository) SoftDeleteGroup(ctx context.Context, groupID int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE groups SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL
	`, formatSQLTime(time.Now()), groupID)
	if err != nil {
		return utils.ErrorHandler(err, "failed to delete group")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return utils.ErrorHandler(err, "failed to read delete result")
	}
	if rows == 0 {
		return fmt.Errorf("group %d: %w", groupID, ErrNotFound)
	}
	return nil
}
