package permission

import (
	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/rbac"
	"github.com/Kyz7/console/internal/response"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func store() *rbac.GormStore {
	return rbac.NewStore(database.DB)
}

type createPermissionRequest struct {
	Name        string   `json:"name"`
	Resource    string   `json:"resource" validate:"required"`
	Action      string   `json:"action" validate:"required"`
	Scope       string   `json:"scope" validate:"required"`
	Description string   `json:"description"`
	Attributes  []string `json:"attributes"`
	IsActive    *bool    `json:"is_active"`
}

func CreatePermissionHandler(c *fiber.Ctx) error {
	var body createPermissionRequest

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

	perm, err := store().CreatePermission(rbac.PermissionSpec{
		Name:        body.Name,
		Resource:    body.Resource,
		Action:      rbac.Action(body.Action),
		Scope:       rbac.Scope(body.Scope),
		Description: body.Description,
		Attributes:  body.Attributes,
		IsActive:    body.IsActive,
	})
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Created(c, perm, "Permission created successfully")
}

func ListPermissionsHandler(c *fiber.Ctx) error {
	filter := rbac.PermissionFilter{
		Resource: c.Query("resource"),
		Action:   rbac.Action(c.Query("action")),
		Scope:    rbac.Scope(c.Query("scope")),
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	perms, err := store().ListPermissions(filter)
	if err != nil {
		return response.InternalError(c, "Failed to fetch permissions")
	}

	return response.Success(c, perms, "Permissions retrieved successfully")
}

func GetPermissionHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid permission ID", nil)
	}

	perm, err := store().PermissionByID(uint(id))
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Success(c, perm, "Permission retrieved successfully")
}

func UpdatePermissionHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid permission ID", nil)
	}

	var body struct {
		Name        *string  `json:"name"`
		Resource    *string  `json:"resource"`
		Action      *string  `json:"action"`
		Scope       *string  `json:"scope"`
		Description *string  `json:"description"`
		Attributes  []string `json:"attributes"`
		IsActive    *bool    `json:"is_active"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	upd := rbac.PermissionUpdate{
		Name:        body.Name,
		Resource:    body.Resource,
		Description: body.Description,
		Attributes:  body.Attributes,
		IsActive:    body.IsActive,
	}
	if body.Action != nil {
		a := rbac.Action(*body.Action)
		upd.Action = &a
	}
	if body.Scope != nil {
		s := rbac.Scope(*body.Scope)
		upd.Scope = &s
	}

	perm, err := store().UpdatePermission(uint(id), upd)
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Success(c, perm, "Permission updated successfully")
}

func DeletePermissionHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid permission ID", nil)
	}

	if err := store().DeletePermission(uint(id)); err != nil {
		return response.FromRBAC(c, err)
	}

	return response.NoContent(c)
}

type grantRequest struct {
	Grants []struct {
		Role       string   `json:"role" validate:"required"`
		Resource   string   `json:"resource" validate:"required"`
		Action     string   `json:"action" validate:"required"`
		Scope      string   `json:"scope" validate:"required"`
		Attributes []string `json:"attributes"`
	} `json:"grants" validate:"required,min=1,dive"`
}

// GrantHandler runs a bulk grant through the orchestrator. Processing is
// sequential and non-atomic: a failing item leaves earlier grants committed.
func GrantHandler(c *fiber.Ctx) error {
	var body grantRequest

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if err := validate.Struct(body); err != nil {
		return response.ValidationError(c, map[string]string{
			"grants": "at least one complete grant is required",
		})
	}

	specs := make([]rbac.GrantSpec, len(body.Grants))
	for i, g := range body.Grants {
		specs[i] = rbac.GrantSpec{
			Role:       rbac.RoleCode(g.Role),
			Resource:   g.Resource,
			Action:     rbac.Action(g.Action),
			Scope:      rbac.Scope(g.Scope),
			Attributes: g.Attributes,
		}
	}

	if err := rbac.NewOrchestrator(store()).Grant(specs); err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Success(c, fiber.Map{"granted": len(specs)}, "Grants applied successfully")
}

// CheckHandler is a decision probe for the admin UI: it runs the general
// check and returns the decision without acting on it.
func CheckHandler(c *fiber.Ctx) error {
	var body struct {
		Role     string `json:"role" validate:"required"`
		Resource string `json:"resource" validate:"required"`
		Action   string `json:"action" validate:"required"`
		Scope    string `json:"scope" validate:"required"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if err := validate.Struct(body); err != nil {
		return response.ValidationError(c, map[string]string{
			"role": "role, resource, action and scope are required",
		})
	}

	checker := rbac.NewChecker(store())
	decision, err := checker.Check(rbac.RoleCode(body.Role), body.Resource,
		rbac.Action(body.Action), rbac.Scope(body.Scope))
	if err != nil {
		return response.FromRBAC(c, err)
	}

	return response.Success(c, decision, "Check evaluated")
}
