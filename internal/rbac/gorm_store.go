package rbac

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kyz7/console/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormStore implements Store on top of a GORM connection.
type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func encodeAttributes(mask []string) datatypes.JSON {
	b, _ := json.Marshal(mask)
	return datatypes.JSON(b)
}

// DecodeAttributes returns the raw attribute mask stored on a permission.
func DecodeAttributes(p *models.Permission) []string {
	if len(p.Attributes) == 0 {
		return nil
	}
	var mask []string
	if err := json.Unmarshal(p.Attributes, &mask); err != nil {
		return nil
	}
	return mask
}

// ---------- permissions ----------

func (s *GormStore) CreatePermission(spec PermissionSpec) (*models.Permission, error) {
	if !spec.Action.Valid() {
		return nil, fmt.Errorf("%w: action %q", ErrInvalidArgument, spec.Action)
	}
	if !spec.Scope.Valid() {
		return nil, fmt.Errorf("%w: scope %q", ErrInvalidArgument, spec.Scope)
	}
	if spec.Name == "" {
		spec.Name = PermissionName(spec.Resource, spec.Action, spec.Scope)
	}

	var existing models.Permission
	if err := s.db.Where("name = ?", spec.Name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: permission name %q already exists", ErrConflict, spec.Name)
	}

	attrs := spec.Attributes
	if len(attrs) == 0 {
		attrs = []string{"*"}
	}

	perm := models.Permission{
		Name:        spec.Name,
		Resource:    spec.Resource,
		Action:      string(spec.Action),
		Scope:       string(spec.Scope),
		Description: spec.Description,
		Attributes:  encodeAttributes(attrs),
	}
	if err := s.db.Create(&perm).Error; err != nil {
		return nil, err
	}
	// GORM skips zero-value fields carrying a default tag on insert, so an
	// explicit inactive create needs a follow-up update.
	if spec.IsActive != nil && !*spec.IsActive {
		if err := s.db.Model(&perm).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	}
	return s.PermissionByID(perm.ID)
}

func (s *GormStore) PermissionByID(id uint) (*models.Permission, error) {
	var perm models.Permission
	if err := s.db.First(&perm, id).Error; err != nil {
		return nil, permNotFound(err, fmt.Sprintf("id %d", id))
	}
	return &perm, nil
}

func (s *GormStore) PermissionByName(name string) (*models.Permission, error) {
	var perm models.Permission
	if err := s.db.Where("name = ?", name).First(&perm).Error; err != nil {
		return nil, permNotFound(err, fmt.Sprintf("name %q", name))
	}
	return &perm, nil
}

func (s *GormStore) UpdatePermission(id uint, upd PermissionUpdate) (*models.Permission, error) {
	perm, err := s.PermissionByID(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if upd.Name != nil && *upd.Name != perm.Name {
		var other models.Permission
		if err := s.db.Where("name = ? AND id != ?", *upd.Name, id).First(&other).Error; err == nil {
			return nil, fmt.Errorf("%w: permission name %q already exists", ErrConflict, *upd.Name)
		}
		changes["name"] = *upd.Name
	}
	if upd.Resource != nil {
		changes["resource"] = *upd.Resource
	}
	if upd.Action != nil {
		if !upd.Action.Valid() {
			return nil, fmt.Errorf("%w: action %q", ErrInvalidArgument, *upd.Action)
		}
		changes["action"] = string(*upd.Action)
	}
	if upd.Scope != nil {
		if !upd.Scope.Valid() {
			return nil, fmt.Errorf("%w: scope %q", ErrInvalidArgument, *upd.Scope)
		}
		changes["scope"] = string(*upd.Scope)
	}
	if upd.Description != nil {
		changes["description"] = *upd.Description
	}
	if upd.Attributes != nil {
		changes["attributes"] = encodeAttributes(upd.Attributes)
	}
	if upd.IsActive != nil {
		changes["is_active"] = *upd.IsActive
	}

	if len(changes) > 0 {
		if err := s.db.Model(perm).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return s.PermissionByID(id)
}

// DeletePermission hard-deletes a permission and cascades its bindings in the
// same transaction, so a deleted permission can never leave a grantable
// orphan row behind.
func (s *GormStore) DeletePermission(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Permission{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: permission id %d", ErrNotFound, id)
		}
		return nil
	})
}

func (s *GormStore) ListPermissions(filter PermissionFilter) ([]models.Permission, error) {
	q := s.db.Model(&models.Permission{})
	if filter.Resource != "" {
		q = q.Where("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", string(filter.Action))
	}
	if filter.Scope != "" {
		q = q.Where("scope = ?", string(filter.Scope))
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var perms []models.Permission
	if err := q.Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// ---------- roles ----------

func (s *GormStore) CreateRole(spec RoleSpec) (*models.Role, error) {
	if !spec.Code.Valid() {
		return nil, fmt.Errorf("%w: role code %q", ErrInvalidArgument, spec.Code)
	}

	var existing models.Role
	if err := s.db.Where("code = ? OR name = ?", string(spec.Code), spec.Name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: role code or name already exists", ErrConflict)
	}

	role := models.Role{
		Code:        string(spec.Code),
		Name:        spec.Name,
		Description: spec.Description,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if spec.IsDefault {
			// At most one default role for new-user assignment.
			if err := tx.Model(&models.Role{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
				return err
			}
			role.IsDefault = true
		}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		if spec.IsActive != nil && !*spec.IsActive {
			return tx.Model(&role).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.RoleByID(role.ID)
}

func (s *GormStore) RoleByID(id uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		return nil, roleNotFound(err, fmt.Sprintf("id %d", id))
	}
	return &role, nil
}

func (s *GormStore) UpdateRole(id uint, upd RoleUpdate) (*models.Role, error) {
	role, err := s.RoleByID(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if upd.Name != nil && *upd.Name != role.Name {
		var other models.Role
		if err := s.db.Where("name = ? AND id != ?", *upd.Name, id).First(&other).Error; err == nil {
			return nil, fmt.Errorf("%w: role name %q already exists", ErrConflict, *upd.Name)
		}
		changes["name"] = *upd.Name
	}
	if upd.Description != nil {
		changes["description"] = *upd.Description
	}
	if upd.IsActive != nil {
		changes["is_active"] = *upd.IsActive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if upd.IsDefault != nil {
			if *upd.IsDefault {
				if err := tx.Model(&models.Role{}).Where("id != ?", id).Update("is_default", false).Error; err != nil {
					return err
				}
			}
			changes["is_default"] = *upd.IsDefault
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(role).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}
	return s.RoleByID(id)
}

func (s *GormStore) DeleteRole(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Role{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: role id %d", ErrNotFound, id)
		}
		return nil
	})
}

func (s *GormStore) ListRoles(filter RoleFilter) ([]models.Role, error) {
	q := s.db.Model(&models.Role{})
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var roles []models.Role
	if err := q.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *GormStore) ResolveIDByCode(code RoleCode) (uint, error) {
	var role models.Role
	if err := s.db.Where("code = ?", string(code)).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: role code %q", ErrNotFound, code)
		}
		return 0, err
	}
	return role.ID, nil
}

func (s *GormStore) ResolveCodeByID(id uint) (RoleCode, error) {
	role, err := s.RoleByID(id)
	if err != nil {
		return "", err
	}
	return RoleCode(role.Code), nil
}

// ---------- bindings ----------

// Bind is idempotent: an existing active binding is returned unchanged, an
// inactive one is reactivated in place, and only a missing row is created.
// A unique-constraint violation from a concurrent bind resolves through the
// reactivation path instead of surfacing the raw error.
func (s *GormStore) Bind(roleID, permissionID uint) (*models.RolePermission, error) {
	if _, err := s.RoleByID(roleID); err != nil {
		return nil, err
	}
	if _, err := s.PermissionByID(permissionID); err != nil {
		return nil, err
	}

	existing, err := s.binding(roleID, permissionID)
	if err == nil {
		if !existing.IsActive {
			if err := s.db.Model(existing).Update("is_active", true).Error; err != nil {
				return nil, err
			}
			existing.IsActive = true
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	binding := models.RolePermission{RoleID: roleID, PermissionID: permissionID}
	if err := s.db.Create(&binding).Error; err != nil {
		// Lost a race to another bind for the same pair; reuse its row.
		raced, rerr := s.binding(roleID, permissionID)
		if rerr != nil {
			return nil, err
		}
		if !raced.IsActive {
			if uerr := s.db.Model(raced).Update("is_active", true).Error; uerr != nil {
				return nil, uerr
			}
			raced.IsActive = true
		}
		return raced, nil
	}
	return s.binding(roleID, permissionID)
}

func (s *GormStore) Unbind(roleID, permissionID uint) error {
	res := s.db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no binding for role %d and permission %d", ErrNotFound, roleID, permissionID)
	}
	return nil
}

// ActiveBindings returns the binding-active rows for a role with their
// permissions resolved. Rows whose permission is itself inactive are included;
// the checker requires both flags.
func (s *GormStore) ActiveBindings(roleID uint) ([]models.RolePermission, error) {
	var bindings []models.RolePermission
	err := s.db.Where("role_id = ? AND is_active = ?", roleID, true).
		Preload("Permission").
		Order("id").
		Find(&bindings).Error
	if err != nil {
		return nil, err
	}
	return bindings, nil
}

// MatchPermission finds an active permission on the exact (resource, action,
// scope) triple actively bound to the role. No wildcard matching, no scope
// hierarchy: each triple is an independent grantable unit. When duplicate
// triples exist in the catalog the lowest permission id wins, deterministically.
func (s *GormStore) MatchPermission(roleID uint, resource string, action Action, scope Scope) (*models.Permission, error) {
	var perm models.Permission
	err := s.db.Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ? AND role_permissions.is_active = ?", roleID, true).
		Where("permissions.resource = ? AND permissions.action = ? AND permissions.scope = ? AND permissions.is_active = ?",
			resource, string(action), string(scope), true).
		Order("permissions.id").
		First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active grant of %s for role %d", ErrNotFound, PermissionName(resource, action, scope), roleID)
		}
		return nil, err
	}
	return &perm, nil
}

func (s *GormStore) binding(roleID, permissionID uint) (*models.RolePermission, error) {
	var binding models.RolePermission
	err := s.db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).First(&binding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: binding (%d, %d)", ErrNotFound, roleID, permissionID)
		}
		return nil, err
	}
	return &binding, nil
}

func permNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: permission %s", ErrNotFound, what)
	}
	return err
}

func roleNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: role %s", ErrNotFound, what)
	}
	return err
}
