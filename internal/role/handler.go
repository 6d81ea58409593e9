package role

import (
	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/rbac"
	"github.com/Kyz7/console/internal/response"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func store() *rbac.GormStore {
	return rbac.NewStore(database.DB)
}

type createRoleRequest struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	IsDefault   bool   `json:"is_default"`
}

func CreateRoleHandler(c *fiber.Ctx) error {
	var body createRoleRequest

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if err := validate.Struct(body); err != nil {
		fields := map[string]string{}
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		return response.ValidationError(c, fields)
	}

	role, err := store().CreateRole(rbac.RoleSpec{
		Code:        rbac.RoleCode(body.Code),
		Name:        body.Name,
		Description: body.Description,
		IsActive:    body.IsActive,
		IsDefault:   body.IsDefault,
	})
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Created(c, role, "Role created successfully")
}

func ListRolesHandler(c *fiber.Ctx) error {
	filter := rbac.RoleFilter{}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	roles, err := store().ListRoles(filter)
	if err != nil {
		return response.InternalError(c, "Failed to fetch roles")
	}

	return response.Success(c, roles, "Roles retrieved successfully")
}

func GetRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	role, err := store().RoleByID(uint(id))
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Success(c, role, "Role retrieved successfully")
}

func UpdateRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	// The role code is immutable once assigned; it is deliberately absent
	// from the update body.
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
		IsDefault   *bool   `json:"is_default"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	role, err := store().UpdateRole(uint(id), rbac.RoleUpdate{
		Name:        body.Name,
		Description: body.Description,
		IsActive:    body.IsActive,
		IsDefault:   body.IsDefault,
	})
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Success(c, role, "Role updated successfully")
}

func DeleteRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var userCount int64
	if err := database.DB.Model(&models.User{}).Where("role_id = ?", id).Count(&userCount).Error; err != nil {
		return response.InternalError(c, "Failed to check role usage")
	}
	if userCount > 0 {
		return response.Conflict(c, "Cannot delete role that is assigned to users")
	}

	if err := store().DeleteRole(uint(id)); err != nil {
		return response.FromRBAC(c, err)
	}

	return response.NoContent(c)
}

func BindPermissionHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var body struct {
		PermissionID uint `json:"permission_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.PermissionID == 0 {
		return response.ValidationError(c, map[string]string{
			"permission_id": "permission_id is required",
		})
	}

	binding, err := store().Bind(uint(id), body.PermissionID)
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Created(c, binding, "Permission bound to role")
}

func UnbindPermissionHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}
	permID, err := c.ParamsInt("permission_id")
	if err != nil {
		return response.BadRequest(c, "Invalid permission ID", nil)
	}

	if err := store().Unbind(uint(id), uint(permID)); err != nil {
		return response.FromRBAC(c, err)
	}

	return response.NoContent(c)
}

func ListRolePermissionsHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	if _, err := store().RoleByID(uint(id)); err != nil {
		return response.FromRBAC(c, err)
	}

	bindings, err := store().ActiveBindings(uint(id))
	if err != nil {
		return response.InternalError(c, "Failed to fetch role permissions")
	}

	return response.Success(c, bindings, "Role permissions retrieved successfully")
}
