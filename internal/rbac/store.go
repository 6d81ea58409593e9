package rbac

import "github.com/Kyz7/console/internal/models"

// PermissionSpec carries the fields accepted by the permission catalog on
// create. Attributes defaults to ["*"] when empty; IsActive defaults to true
// when nil.
type PermissionSpec struct {
	Name        string
	Resource    string
	Action      Action
	Scope       Scope
	Description string
	Attributes  []string
	IsActive    *bool
}

// PermissionUpdate is a partial update; nil fields are left untouched.
type PermissionUpdate struct {
	Name        *string
	Resource    *string
	Action      *Action
	Scope       *Scope
	Description *string
	Attributes  []string
	IsActive    *bool
}

type PermissionFilter struct {
	Resource string
	Action   Action
	Scope    Scope
	IsActive *bool
}

type RoleSpec struct {
	Code        RoleCode
	Name        string
	Description string
	IsActive    *bool
	IsDefault   bool
}

// RoleUpdate is a partial update. The role code is immutable once assigned;
// there is deliberately no code field here.
type RoleUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
	IsDefault   *bool
}

type RoleFilter struct {
	IsActive *bool
}

// Store is the persistence boundary for the authorization core. The checker
// and the grant orchestrator take a Store at construction instead of reaching
// for a package-level database handle.
type Store interface {
	CreatePermission(spec PermissionSpec) (*models.Permission, error)
	PermissionByID(id uint) (*models.Permission, error)
	PermissionByName(name string) (*models.Permission, error)
	UpdatePermission(id uint, upd PermissionUpdate) (*models.Permission, error)
	DeletePermission(id uint) error
	ListPermissions(filter PermissionFilter) ([]models.Permission, error)

	CreateRole(spec RoleSpec) (*models.Role, error)
	RoleByID(id uint) (*models.Role, error)
	UpdateRole(id uint, upd RoleUpdate) (*models.Role, error)
	DeleteRole(id uint) error
	ListRoles(filter RoleFilter) ([]models.Role, error)
	ResolveIDByCode(code RoleCode) (uint, error)
	ResolveCodeByID(id uint) (RoleCode, error)

	Bind(roleID, permissionID uint) (*models.RolePermission, error)
	Unbind(roleID, permissionID uint) error
	ActiveBindings(roleID uint) ([]models.RolePermission, error)
	MatchPermission(roleID uint, resource string, action Action, scope Scope) (*models.Permission, error)
}
