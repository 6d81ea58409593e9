package rbac_test

import (
	"testing"

	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/rbac"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func testStore(t *testing.T) *rbac.GormStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(&models.Role{}, &models.Permission{}, &models.RolePermission{})
	assert.NoError(t, err, "Failed to migrate test database")

	return rbac.NewStore(db)
}

func createRole(t *testing.T, store *rbac.GormStore, code rbac.RoleCode, name string) *models.Role {
	role, err := store.CreateRole(rbac.RoleSpec{Code: code, Name: name})
	assert.NoError(t, err)
	return role
}

func createPermission(t *testing.T, store *rbac.GormStore, resource string, action rbac.Action, scope rbac.Scope) *models.Permission {
	perm, err := store.CreatePermission(rbac.PermissionSpec{
		Resource: resource,
		Action:   action,
		Scope:    scope,
	})
	assert.NoError(t, err)
	return perm
}

func TestCreatePermission(t *testing.T) {
	store := testStore(t)

	t.Run("defaults name and attributes", func(t *testing.T) {
		perm := createPermission(t, store, "user", rbac.ActionRead, rbac.ScopeAny)
		assert.Equal(t, "read:any:user", perm.Name)
		assert.Equal(t, []string{"*"}, rbac.DecodeAttributes(perm))
		assert.True(t, perm.IsActive)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := store.CreatePermission(rbac.PermissionSpec{
			Resource: "user",
			Action:   rbac.ActionRead,
			Scope:    rbac.ScopeAny,
		})
		assert.ErrorIs(t, err, rbac.ErrConflict)
	})

	t.Run("duplicate triple under a different name is allowed", func(t *testing.T) {
		perm, err := store.CreatePermission(rbac.PermissionSpec{
			Name:     "legacy:read:any:user",
			Resource: "user",
			Action:   rbac.ActionRead,
			Scope:    rbac.ScopeAny,
		})
		assert.NoError(t, err)
		assert.Equal(t, "legacy:read:any:user", perm.Name)
	})

	t.Run("invalid action rejected", func(t *testing.T) {
		_, err := store.CreatePermission(rbac.PermissionSpec{
			Resource: "user",
			Action:   "destroy",
			Scope:    rbac.ScopeAny,
		})
		assert.ErrorIs(t, err, rbac.ErrInvalidArgument)
	})

	t.Run("explicit inactive create", func(t *testing.T) {
		inactive := false
		perm, err := store.CreatePermission(rbac.PermissionSpec{
			Resource: "report",
			Action:   rbac.ActionExecute,
			Scope:    rbac.ScopeAny,
			IsActive: &inactive,
		})
		assert.NoError(t, err)
		assert.False(t, perm.IsActive)
	})
}

func TestUpdatePermission(t *testing.T) {
	store := testStore(t)
	first := createPermission(t, store, "user", rbac.ActionRead, rbac.ScopeAny)
	second := createPermission(t, store, "user", rbac.ActionUpdate, rbac.ScopeAny)

	t.Run("rename to a taken name conflicts", func(t *testing.T) {
		_, err := store.UpdatePermission(second.ID, rbac.PermissionUpdate{Name: &first.Name})
		assert.ErrorIs(t, err, rbac.ErrConflict)
	})

	t.Run("merges partial fields", func(t *testing.T) {
		desc := "read all users"
		updated, err := store.UpdatePermission(first.ID, rbac.PermissionUpdate{
			Description: &desc,
			Attributes:  []string{"!password"},
		})
		assert.NoError(t, err)
		assert.Equal(t, "read all users", updated.Description)
		assert.Equal(t, []string{"!password"}, rbac.DecodeAttributes(updated))
		assert.Equal(t, first.Name, updated.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.UpdatePermission(9999, rbac.PermissionUpdate{})
		assert.ErrorIs(t, err, rbac.ErrNotFound)
	})
}

func TestDeletePermissionCascades(t *testing.T) {
	store := testStore(t)
	role := createRole(t, store, rbac.RoleAdmin, "Administrator")
	perm := createPermission(t, store, "user", rbac.ActionDelete, rbac.ScopeAny)

	_, err := store.Bind(role.ID, perm.ID)
	assert.NoError(t, err)

	assert.NoError(t, store.DeletePermission(perm.ID))

	// The binding must be gone with the permission, so nothing resolves as
	// granted afterwards.
	bindings, err := store.ActiveBindings(role.ID)
	assert.NoError(t, err)
	assert.Empty(t, bindings)

	_, err = store.MatchPermission(role.ID, "user", rbac.ActionDelete, rbac.ScopeAny)
	assert.ErrorIs(t, err, rbac.ErrNotFound)

	assert.ErrorIs(t, store.DeletePermission(perm.ID), rbac.ErrNotFound)
}

func TestRoleCatalog(t *testing.T) {
	store := testStore(t)

	t.Run("create and resolve by code", func(t *testing.T) {
		role := createRole(t, store, rbac.RoleManager, "Manager")

		id, err := store.ResolveIDByCode(rbac.RoleManager)
		assert.NoError(t, err)
		assert.Equal(t, role.ID, id)

		code, err := store.ResolveCodeByID(role.ID)
		assert.NoError(t, err)
		assert.Equal(t, rbac.RoleManager, code)
	})

	t.Run("unknown code resolves to not found", func(t *testing.T) {
		_, err := store.ResolveIDByCode(rbac.RoleGuest)
		assert.ErrorIs(t, err, rbac.ErrNotFound)
	})

	t.Run("invalid code rejected", func(t *testing.T) {
		_, err := store.CreateRole(rbac.RoleSpec{Code: "root", Name: "Root"})
		assert.ErrorIs(t, err, rbac.ErrInvalidArgument)
	})

	t.Run("duplicate code conflicts", func(t *testing.T) {
		_, err := store.CreateRole(rbac.RoleSpec{Code: rbac.RoleManager, Name: "Other"})
		assert.ErrorIs(t, err, rbac.ErrConflict)
	})

	t.Run("at most one default role", func(t *testing.T) {
		admin, err := store.CreateRole(rbac.RoleSpec{Code: rbac.RoleAdmin, Name: "Administrator", IsDefault: true})
		assert.NoError(t, err)
		assert.True(t, admin.IsDefault)

		user, err := store.CreateRole(rbac.RoleSpec{Code: rbac.RoleUser, Name: "User", IsDefault: true})
		assert.NoError(t, err)
		assert.True(t, user.IsDefault)

		admin, err = store.RoleByID(admin.ID)
		assert.NoError(t, err)
		assert.False(t, admin.IsDefault)

		flag := true
		admin, err = store.UpdateRole(admin.ID, rbac.RoleUpdate{IsDefault: &flag})
		assert.NoError(t, err)
		assert.True(t, admin.IsDefault)

		user, err = store.RoleByID(user.ID)
		assert.NoError(t, err)
		assert.False(t, user.IsDefault)
	})
}

func TestBindIdempotent(t *testing.T) {
	store := testStore(t)
	role := createRole(t, store, rbac.RoleAdmin, "Administrator")
	perm := createPermission(t, store, "user", rbac.ActionCreate, rbac.ScopeOwn)

	first, err := store.Bind(role.ID, perm.ID)
	assert.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := store.Bind(role.ID, perm.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsActive)

	t.Run("unknown role", func(t *testing.T) {
		_, err := store.Bind(9999, perm.ID)
		assert.ErrorIs(t, err, rbac.ErrNotFound)
	})

	t.Run("unknown permission", func(t *testing.T) {
		_, err := store.Bind(role.ID, 9999)
		assert.ErrorIs(t, err, rbac.ErrNotFound)
	})
}

func TestBindReactivates(t *testing.T) {
	store := testStore(t)
	role := createRole(t, store, rbac.RoleAdmin, "Administrator")
	perm := createPermission(t, store, "user", rbac.ActionArchive, rbac.ScopeAny)

	binding, err := store.Bind(role.ID, perm.ID)
	assert.NoError(t, err)

	// Switch the binding off directly, like an admin toggling a grant.
	matched, err := store.MatchPermission(role.ID, "user", rbac.ActionArchive, rbac.ScopeAny)
	assert.NoError(t, err)
	assert.Equal(t, perm.ID, matched.ID)

	assert.NoError(t, store.Unbind(role.ID, perm.ID))
	_, err = store.MatchPermission(role.ID, "user", rbac.ActionArchive, rbac.ScopeAny)
	assert.ErrorIs(t, err, rbac.ErrNotFound)

	rebound, err := store.Bind(role.ID, perm.ID)
	assert.NoError(t, err)
	assert.True(t, rebound.IsActive)
	assert.NotEqual(t, binding.ID, rebound.ID, "unbind is a hard delete, rebind creates a fresh row")
}

func TestUnbindNotFound(t *testing.T) {
	store := testStore(t)
	role := createRole(t, store, rbac.RoleAdmin, "Administrator")

	err := store.Unbind(role.ID, 42)
	assert.ErrorIs(t, err, rbac.ErrNotFound)
}

func TestListPermissionsFilter(t *testing.T) {
	store := testStore(t)
	createPermission(t, store, "user", rbac.ActionRead, rbac.ScopeAny)
	createPermission(t, store, "user", rbac.ActionRead, rbac.ScopeOwn)
	createPermission(t, store, "loyalty", rbac.ActionRead, rbac.ScopeAny)

	perms, err := store.ListPermissions(rbac.PermissionFilter{Resource: "user"})
	assert.NoError(t, err)
	assert.Len(t, perms, 2)

	perms, err = store.ListPermissions(rbac.PermissionFilter{Scope: rbac.ScopeOwn})
	assert.NoError(t, err)
	assert.Len(t, perms, 1)

	active := true
	perms, err = store.ListPermissions(rbac.PermissionFilter{IsActive: &active})
	assert.NoError(t, err)
	assert.Len(t, perms, 3)
}
