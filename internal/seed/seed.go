package seed

import (
	"errors"

	"github.com/Kyz7/console/internal/rbac"
	"gorm.io/gorm"
)

type seedRole struct {
	code        rbac.RoleCode
	name        string
	description string
	isDefault   bool
}

var defaultRoles = []seedRole{
	{rbac.RoleSuperAdmin, "Super Administrator", "Unrestricted access to every resource", false},
	{rbac.RoleAdmin, "Administrator", "Full access to console resources", false},
	{rbac.RoleManager, "Manager", "Department-level oversight and approvals", false},
	{rbac.RoleUser, "User", "Own-record access", true},
	{rbac.RoleGuest, "Guest", "Read-only access to own profile", false},
}

func allScopes(role rbac.RoleCode, resources []string, actions []rbac.Action, scope rbac.Scope) []rbac.GrantSpec {
	var grants []rbac.GrantSpec
	for _, res := range resources {
		for _, act := range actions {
			grants = append(grants, rbac.GrantSpec{Role: role, Resource: res, Action: act, Scope: scope})
		}
	}
	return grants
}

// Run creates the canonical roles and issues the bootstrap grants
// through the orchestrator. Safe to run on every boot.
func Run(db *gorm.DB) error {
	store := rbac.NewStore(db)

	for _, r := range defaultRoles {
		_, err := store.CreateRole(rbac.RoleSpec{
			Code:        r.code,
			Name:        r.name,
			Description: r.description,
			IsDefault:   r.isDefault,
		})
		if err != nil && !errors.Is(err, rbac.ErrConflict) {
			return err
		}
	}

	adminResources := []string{"user", "role", "permission", "loyalty", "translation"}
	crud := []rbac.Action{rbac.ActionCreate, rbac.ActionRead, rbac.ActionUpdate, rbac.ActionDelete}

	grants := allScopes(rbac.RoleSuperAdmin, adminResources, crud, rbac.ScopeAny)
	grants = append(grants, allScopes(rbac.RoleAdmin, adminResources, crud, rbac.ScopeAny)...)
	grants = append(grants,
		rbac.GrantSpec{Role: rbac.RoleSuperAdmin, Resource: "loyalty", Action: rbac.ActionApprove, Scope: rbac.ScopeAny},
		rbac.GrantSpec{Role: rbac.RoleAdmin, Resource: "loyalty", Action: rbac.ActionApprove, Scope: rbac.ScopeAny},
		rbac.GrantSpec{Role: rbac.RoleAdmin, Resource: "translation", Action: rbac.ActionPublish, Scope: rbac.ScopeAny},

		// Managers see their department and approve loyalty adjustments, but
		// never see salary data on user records.
		rbac.GrantSpec{Role: rbac.RoleManager, Resource: "user", Action: rbac.ActionRead, Scope: rbac.ScopeDepartment,
			Attributes: []string{"!password", "!profile.salary"}},
		rbac.GrantSpec{Role: rbac.RoleManager, Resource: "loyalty", Action: rbac.ActionRead, Scope: rbac.ScopeDepartment},
		rbac.GrantSpec{Role: rbac.RoleManager, Resource: "loyalty", Action: rbac.ActionApprove, Scope: rbac.ScopeDepartment},
		rbac.GrantSpec{Role: rbac.RoleManager, Resource: "translation", Action: rbac.ActionRead, Scope: rbac.ScopeAny},

		rbac.GrantSpec{Role: rbac.RoleUser, Resource: "user", Action: rbac.ActionRead, Scope: rbac.ScopeOwn,
			Attributes: []string{"!role"}},
		rbac.GrantSpec{Role: rbac.RoleUser, Resource: "user", Action: rbac.ActionUpdate, Scope: rbac.ScopeOwn},
		rbac.GrantSpec{Role: rbac.RoleUser, Resource: "loyalty", Action: rbac.ActionRead, Scope: rbac.ScopeOwn},
		rbac.GrantSpec{Role: rbac.RoleUser, Resource: "loyalty", Action: rbac.ActionUpdate, Scope: rbac.ScopeOwn},
		rbac.GrantSpec{Role: rbac.RoleUser, Resource: "translation", Action: rbac.ActionRead, Scope: rbac.ScopeAny},

		rbac.GrantSpec{Role: rbac.RoleGuest, Resource: "user", Action: rbac.ActionRead, Scope: rbac.ScopeOwn,
			Attributes: []string{"!email", "!role"}},
		rbac.GrantSpec{Role: rbac.RoleGuest, Resource: "translation", Action: rbac.ActionRead, Scope: rbac.ScopeAny},
	)

	return rbac.NewOrchestrator(store).Grant(grants)
}
