package rbac_test

import (
	"testing"

	"github.com/Kyz7/console/internal/rbac"
	"github.com/stretchr/testify/assert"
)

func TestGrantCreatesAndBinds(t *testing.T) {
	store := testStore(t)
	createRole(t, store, rbac.RoleAdmin, "Administrator")

	orch := rbac.NewOrchestrator(store)
	err := orch.Grant([]rbac.GrantSpec{
		{Role: rbac.RoleAdmin, Resource: "user", Action: rbac.ActionCreate, Scope: rbac.ScopeOwn},
	})
	assert.NoError(t, err)

	perm, err := store.PermissionByName("create:own:user")
	assert.NoError(t, err)
	assert.Equal(t, []string{"*"}, rbac.DecodeAttributes(perm))

	checker := rbac.NewChecker(store)
	decision, err := checker.CreateOwn(rbac.RoleAdmin, "user")
	assert.NoError(t, err)
	assert.True(t, decision.Granted)
}

func TestGrantIsIdempotent(t *testing.T) {
	store := testStore(t)
	role := createRole(t, store, rbac.RoleAdmin, "Administrator")

	orch := rbac.NewOrchestrator(store)
	grants := []rbac.GrantSpec{
		{Role: rbac.RoleAdmin, Resource: "user", Action: rbac.ActionCreate, Scope: rbac.ScopeOwn},
	}

	assert.NoError(t, orch.Grant(grants))
	assert.NoError(t, orch.Grant(grants))

	// Exactly one permission and one active binding after both runs.
	perms, err := store.ListPermissions(rbac.PermissionFilter{Resource: "user"})
	assert.NoError(t, err)
	assert.Len(t, perms, 1)

	bindings, err := store.ActiveBindings(role.ID)
	assert.NoError(t, err)
	assert.Len(t, bindings, 1)
	assert.True(t, bindings[0].IsActive)
}

func TestGrantUnknownRoleAborts(t *testing.T) {
	store := testStore(t)
	createRole(t, store, rbac.RoleAdmin, "Administrator")

	orch := rbac.NewOrchestrator(store)
	err := orch.Grant([]rbac.GrantSpec{
		{Role: rbac.RoleAdmin, Resource: "user", Action: rbac.ActionRead, Scope: rbac.ScopeAny},
		{Role: rbac.RoleGuest, Resource: "user", Action: rbac.ActionRead, Scope: rbac.ScopeOwn},
		{Role: rbac.RoleAdmin, Resource: "role", Action: rbac.ActionRead, Scope: rbac.ScopeAny},
	})
	assert.ErrorIs(t, err, rbac.ErrNotFound)

	// The batch is not atomic: grants before the failing item stay committed,
	// items after it are never processed.
	_, err = store.PermissionByName("read:any:user")
	assert.NoError(t, err)

	_, err = store.PermissionByName("read:any:role")
	assert.ErrorIs(t, err, rbac.ErrNotFound)
}

func TestGrantKeepsCustomAttributes(t *testing.T) {
	store := testStore(t)
	createRole(t, store, rbac.RoleManager, "Manager")

	orch := rbac.NewOrchestrator(store)
	err := orch.Grant([]rbac.GrantSpec{
		{
			Role:       rbac.RoleManager,
			Resource:   "user",
			Action:     rbac.ActionRead,
			Scope:      rbac.ScopeDepartment,
			Attributes: []string{"!password", "!profile.salary"},
		},
	})
	assert.NoError(t, err)

	checker := rbac.NewChecker(store)
	decision, err := checker.Check(rbac.RoleManager, "user", rbac.ActionRead, rbac.ScopeDepartment)
	assert.NoError(t, err)
	assert.True(t, decision.Granted)
	assert.Equal(t, []string{"!password", "!profile.salary"}, decision.Attributes)
}

func TestGrantReactivatesUnboundPermission(t *testing.T) {
	store := testStore(t)
	role := createRole(t, store, rbac.RoleAdmin, "Administrator")

	orch := rbac.NewOrchestrator(store)
	grants := []rbac.GrantSpec{
		{Role: rbac.RoleAdmin, Resource: "user", Action: rbac.ActionDelete, Scope: rbac.ScopeAny},
	}
	assert.NoError(t, orch.Grant(grants))

	perm, err := store.PermissionByName("delete:any:user")
	assert.NoError(t, err)
	assert.NoError(t, store.Unbind(role.ID, perm.ID))

	// Re-running the grant restores the binding without duplicating the
	// permission.
	assert.NoError(t, orch.Grant(grants))

	bindings, err := store.ActiveBindings(role.ID)
	assert.NoError(t, err)
	assert.Len(t, bindings, 1)

	perms, err := store.ListPermissions(rbac.PermissionFilter{Resource: "user"})
	assert.NoError(t, err)
	assert.Len(t, perms, 1)
}
