package repositories

import (
	"context"
	"testing"

	"planbuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupSetsOwner(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")

	group := seedGroup(t, repo, ownerID, "book club")

	assert.NotZero(t, group.ID)
	role, ok, err := repo.GetRole(context.Background(), group.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleOwner, role)
}

func TestCreateGroupDuplicateName(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")

	group := seedGroup(t, repo, ownerID, "book club")

	dup := &models.Group{Name: group.Name, CreatedBy: ownerID}
	err := repo.CreateGroup(context.Background(), dup)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateGroupNeedsName(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")

	err := repo.CreateGroup(context.Background(), &models.Group{Name: "   ", CreatedBy: ownerID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddMemberIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	memberID, _ := seedUser(t, db, "member")
	group := seedGroup(t, repo, ownerID, "hiking")

	require.NoError(t, repo.AddMember(context.Background(), group.ID, memberID, models.RoleAdmin))

	// Re-adding is a no-op and never downgrades the stored role.
	require.NoError(t, repo.AddMember(context.Background(), group.ID, memberID, models.RoleMember))

	role, ok, err := repo.GetRole(context.Background(), group.ID, memberID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestAddMemberRoleValidation(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	memberID, _ := seedUser(t, db, "member")
	group := seedGroup(t, repo, ownerID, "hiking")

	err := repo.AddMember(context.Background(), group.ID, memberID, models.RoleOwner)
	assert.ErrorIs(t, err, ErrValidation, "ownership is set at creation or by transfer")

	err = repo.AddMember(context.Background(), group.ID, memberID, models.Role("superuser"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveMember(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	memberID, _ := seedUser(t, db, "member")
	group := seedGroup(t, repo, ownerID, "hiking")
	require.NoError(t, repo.AddMember(context.Background(), group.ID, memberID, models.RoleMember))

	removed, err := repo.RemoveMember(context.Background(), group.ID, memberID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err := repo.GetRole(context.Background(), group.ID, memberID)
	require.NoError(t, err)
	assert.False(t, ok)

	// A second removal finds nothing to do.
	removed, err = repo.RemoveMember(context.Background(), group.ID, memberID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveMemberRefusesLastOwner(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	group := seedGroup(t, repo, ownerID, "hiking")

	removed, err := repo.RemoveMember(context.Background(), group.ID, ownerID)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.False(t, removed)

	// The owner row is untouched.
	role, ok, err := repo.GetRole(context.Background(), group.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleOwner, role)
}

func TestTransferOwnership(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	memberID, _ := seedUser(t, db, "member")
	group := seedGroup(t, repo, ownerID, "hiking")
	require.NoError(t, repo.AddMember(context.Background(), group.ID, memberID, models.RoleMember))

	require.NoError(t, repo.TransferOwnership(context.Background(), group.ID, ownerID, memberID))

	newRole, _, err := repo.GetRole(context.Background(), group.ID, memberID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, newRole)

	oldRole, _, err := repo.GetRole(context.Background(), group.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, oldRole, "the previous owner stays on as admin")

	// The demoted owner can now leave.
	removed, err := repo.RemoveMember(context.Background(), group.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestTransferOwnershipRules(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	adminID, _ := seedUser(t, db, "admin")
	outsiderID, _ := seedUser(t, db, "outsider")
	group := seedGroup(t, repo, ownerID, "hiking")
	require.NoError(t, repo.AddMember(context.Background(), group.ID, adminID, models.RoleAdmin))

	err := repo.TransferOwnership(context.Background(), group.ID, adminID, ownerID)
	assert.ErrorIs(t, err, ErrNotAuthorized, "only the owner can transfer")

	err = repo.TransferOwnership(context.Background(), group.ID, ownerID, outsiderID)
	assert.ErrorIs(t, err, ErrValidation, "the new owner must already be a member")

	err = repo.TransferOwnership(context.Background(), group.ID, ownerID, ownerID)
	assert.ErrorIs(t, err, ErrValidation, "transferring to yourself is meaningless")
}

func TestRequireRoleOrdering(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	memberID, _ := seedUser(t, db, "member")
	outsiderID, _ := seedUser(t, db, "outsider")
	group := seedGroup(t, repo, ownerID, "hiking")
	require.NoError(t, repo.AddMember(context.Background(), group.ID, memberID, models.RoleMember))

	ctx := context.Background()
	assert.NoError(t, repo.RequireRole(ctx, group.ID, ownerID, models.RoleMember))
	assert.NoError(t, repo.RequireRole(ctx, group.ID, ownerID, models.RoleAdmin))
	assert.NoError(t, repo.RequireRole(ctx, group.ID, ownerID, models.RoleOwner))

	assert.NoError(t, repo.RequireRole(ctx, group.ID, memberID, models.RoleMember))
	assert.ErrorIs(t, repo.RequireRole(ctx, group.ID, memberID, models.RoleAdmin), ErrNotAuthorized)

	assert.ErrorIs(t, repo.RequireRole(ctx, group.ID, outsiderID, models.RoleMember), ErrNotAuthorized)
}

func TestSoftDeleteGroupHidesIt(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	group := seedGroup(t, repo, ownerID, "hiking")

	require.NoError(t, repo.SoftDeleteGroup(context.Background(), group.ID))

	_, err := repo.GetGroupByID(context.Background(), group.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok, err := repo.GetRole(context.Background(), group.ID, ownerID)
	require.NoError(t, err)
	assert.False(t, ok, "memberships of a deleted group no longer grant anything")

	err = repo.SoftDeleteGroup(context.Background(), group.ID)
	assert.ErrorIs(t, err, ErrNotFound, "a second delete finds no alive group")
}

func TestUpdateGroup(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	group := seedGroup(t, repo, ownerID, "hiking")

	err := repo.UpdateGroup(context.Background(), group.ID, "trail runners", "we run now")
	require.NoError(t, err)

	updated, err := repo.GetGroupByID(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Equal(t, "trail runners", updated.Name)
	assert.Equal(t, "we run now", updated.Description)

	err = repo.UpdateGroup(context.Background(), group.ID, "", "")
	assert.ErrorIs(t, err, ErrValidation, "an empty patch is rejected")

	err = repo.UpdateGroup(context.Background(), -1, "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMemberContactsExcludesOrganizer(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	bobID, bobEmail := seedUser(t, db, "bob")
	carolID, carolEmail := seedUser(t, db, "carol")
	group := seedGroup(t, repo, ownerID, "hiking")
	require.NoError(t, repo.AddMember(context.Background(), group.ID, bobID, models.RoleMember))
	require.NoError(t, repo.AddMember(context.Background(), group.ID, carolID, models.RoleMember))

	contacts, err := repo.ListMemberContacts(context.Background(), group.ID, ownerID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	emails := []string{contacts[0].Email, contacts[1].Email}
	assert.ElementsMatch(t, []string{bobEmail, carolEmail}, emails)
}

func TestListMembers(t *testing.T) {
	db := testDB(t)
	repo := NewMembershipRepository(db)
	ownerID, _ := seedUser(t, db, "owner")
	bobID, _ := seedUser(t, db, "bob")
	group := seedGroup(t, repo, ownerID, "hiking")
	require.NoError(t, repo.AddMember(context.Background(), group.ID, bobID, models.RoleAdmin))

	members, err := repo.ListMembers(context.Background(), group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	byID := map[int]models.Role{}
	for _, m := range members {
		byID[m.UserID] = m.Role
	}
	assert.Equal(t, models.RoleOwner, byID[ownerID])
	assert.Equal(t, models.RoleAdmin, byID[bobID])
}
