package rbac

import (
	"errors"
	"fmt"
	"log"
)

// GrantSpec is one "ensure the permission exists, then bind it to the role"
// instruction.
type GrantSpec struct {
	Role       RoleCode
	Resource   string
	Action     Action
	Scope      Scope
	Attributes []string
}

// Orchestrator performs idempotent bulk grants, used at bootstrap to populate
// the catalogs ahead of any check.
type Orchestrator struct {
	store Store
}

func NewOrchestrator(store Store) *Orchestrator {
	return &Orchestrator{store: store}
}

// Grant processes the specs sequentially, one at a time. The batch is not
// atomic: a failure partway through leaves earlier grants committed. A
// Conflict raised purely because the permission name already existed is
// swallowed and logged, since repeated bootstrap runs are an expected
// operational pattern; any other error aborts the call.
func (o *Orchestrator) Grant(grants []GrantSpec) error {
	for _, g := range grants {
		name := PermissionName(g.Resource, g.Action, g.Scope)

		perm, err := o.store.PermissionByName(name)
		if errors.Is(err, ErrNotFound) {
			perm, err = o.store.CreatePermission(PermissionSpec{
				Name:       name,
				Resource:   g.Resource,
				Action:     g.Action,
				Scope:      g.Scope,
				Attributes: g.Attributes,
			})
			if errors.Is(err, ErrConflict) {
				// Created concurrently between the lookup and the create.
				log.Printf("permission %s already exists, reusing it", name)
				perm, err = o.store.PermissionByName(name)
			}
		}
		if err != nil {
			return fmt.Errorf("grant %s: %w", name, err)
		}

		roleID, err := o.store.ResolveIDByCode(g.Role)
		if err != nil {
			return fmt.Errorf("grant %s to role %s: %w", name, g.Role, err)
		}

		if _, err := o.store.Bind(roleID, perm.ID); err != nil {
			return fmt.Errorf("grant %s to role %s: %w", name, g.Role, err)
		}
	}
	return nil
}
