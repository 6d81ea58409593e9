// Package rbac implements the authorization core: the permission and role
// catalogs, role-permission bindings, the scoped permission checker, the
// attribute-level response filter, and the bulk grant orchestrator.
//
// Everything here runs against an injected Store; the package keeps no global
// state of its own.
package rbac

import "fmt"

type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionExecute Action = "execute"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPublish Action = "publish"
	ActionArchive Action = "archive"
)

type Scope string

const (
	ScopeOwn          Scope = "own"
	ScopeDepartment   Scope = "department"
	ScopeOrganization Scope = "organization"
	ScopeAny          Scope = "any"
)

type RoleCode string

const (
	RoleSuperAdmin RoleCode = "super_admin"
	RoleAdmin      RoleCode = "admin"
	RoleManager    RoleCode = "manager"
	RoleUser       RoleCode = "user"
	RoleGuest      RoleCode = "guest"
)

var actions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {},
	ActionExecute: {}, ActionApprove: {}, ActionReject: {}, ActionPublish: {},
	ActionArchive: {},
}

var scopes = map[Scope]struct{}{
	ScopeOwn: {}, ScopeDepartment: {}, ScopeOrganization: {}, ScopeAny: {},
}

var roleCodes = map[RoleCode]struct{}{
	RoleSuperAdmin: {}, RoleAdmin: {}, RoleManager: {}, RoleUser: {}, RoleGuest: {},
}

func (a Action) Valid() bool {
	_, ok := actions[a]
	return ok
}

func (s Scope) Valid() bool {
	_, ok := scopes[s]
	return ok
}

func (r RoleCode) Valid() bool {
	_, ok := roleCodes[r]
	return ok
}

// PermissionName builds the conventional unique name for a permission. The
// grant orchestrator uses it as the application-level dedup key.
func PermissionName(resource string, action Action, scope Scope) string {
	return fmt.Sprintf("%s:%s:%s", action, scope, resource)
}
