package rbac

import (
	"errors"
	"fmt"
)

// Decision is the outcome of a permission check. Attributes is the raw
// attribute mask of the matched permission, empty when not granted.
type Decision struct {
	Granted    bool     `json:"granted"`
	Attributes []string `json:"attributes"`
}

// Checker answers scoped permission checks against the store it was built
// with. It holds no mutable state and is safe for concurrent use.
type Checker struct {
	store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// Check resolves the role code and looks for an active permission on the
// exact (resource, action, scope) triple actively bound to that role.
//
// An unresolvable role code returns ErrNotFound rather than a denied
// decision: "role does not exist" and "role has no such permission" are
// distinct failure modes and collapsing them would hide misconfiguration
// behind an innocuous forbidden response.
func (c *Checker) Check(role RoleCode, resource string, action Action, scope Scope) (Decision, error) {
	if !action.Valid() {
		return Decision{}, fmt.Errorf("%w: action %q", ErrInvalidArgument, action)
	}
	if !scope.Valid() {
		return Decision{}, fmt.Errorf("%w: scope %q", ErrInvalidArgument, scope)
	}

	roleID, err := c.store.ResolveIDByCode(role)
	if err != nil {
		return Decision{}, err
	}

	perm, err := c.store.MatchPermission(roleID, resource, action, scope)
	if errors.Is(err, ErrNotFound) {
		return Decision{Granted: false, Attributes: []string{}}, nil
	}
	if err != nil {
		return Decision{}, err
	}
	return Decision{Granted: true, Attributes: DecodeAttributes(perm)}, nil
}

type actionScope struct {
	action Action
	scope  Scope
}

// shorthands enumerates the conventional create/read/update/delete x own/any
// combinations exposed as named calls. Other action/scope pairs are reachable
// only through Check.
var shorthands = map[string]actionScope{
	"createOwn": {ActionCreate, ScopeOwn},
	"createAny": {ActionCreate, ScopeAny},
	"readOwn":   {ActionRead, ScopeOwn},
	"readAny":   {ActionRead, ScopeAny},
	"updateOwn": {ActionUpdate, ScopeOwn},
	"updateAny": {ActionUpdate, ScopeAny},
	"deleteOwn": {ActionDelete, ScopeOwn},
	"deleteAny": {ActionDelete, ScopeAny},
}

// Can dispatches a shorthand check by name ("readAny", "updateOwn", ...).
// Unknown names return ErrInvalidArgument.
func (c *Checker) Can(role RoleCode, shorthand, resource string) (Decision, error) {
	as, ok := shorthands[shorthand]
	if !ok {
		return Decision{}, fmt.Errorf("%w: unknown shorthand %q", ErrInvalidArgument, shorthand)
	}
	return c.Check(role, resource, as.action, as.scope)
}

func (c *Checker) CreateOwn(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionCreate, ScopeOwn)
}

func (c *Checker) CreateAny(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionCreate, ScopeAny)
}

func (c *Checker) ReadOwn(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionRead, ScopeOwn)
}

func (c *Checker) ReadAny(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionRead, ScopeAny)
}

func (c *Checker) UpdateOwn(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionUpdate, ScopeOwn)
}

func (c *Checker) UpdateAny(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionUpdate, ScopeAny)
}

func (c *Checker) DeleteOwn(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionDelete, ScopeOwn)
}

func (c *Checker) DeleteAny(role RoleCode, resource string) (Decision, error) {
	return c.Check(role, resource, ActionDelete, ScopeAny)
}
