package middleware

import (
	"errors"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/rbac"
	"github.com/Kyz7/console/internal/response"
	"github.com/gofiber/fiber/v2"
)

const maskKey = "attribute_mask"

// Authorize gates a route on a scoped permission check for the caller's role
// code (set by auth.JWTProtected). On success the matched permission's
// attribute mask is left in locals for response filtering.
//
// A role code missing from the catalog is a server-side misconfiguration and
// surfaces as a 500, never as a plain forbidden.
func Authorize(resource string, action rbac.Action, scope rbac.Scope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleCode, ok := c.Locals("role_code").(string)
		if !ok || roleCode == "" {
			return response.Unauthorized(c, "Missing role context")
		}

		checker := rbac.NewChecker(rbac.NewStore(database.DB))
		decision, err := checker.Check(rbac.RoleCode(roleCode), resource, action, scope)
		if err != nil {
			if errors.Is(err, rbac.ErrNotFound) {
				return response.Error(c, fiber.StatusInternalServerError, "ROLE_NOT_FOUND",
					"Authenticated role is not configured", nil)
			}
			return response.InternalError(c, "Authorization check failed")
		}

		if !decision.Granted {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}

		c.Locals(maskKey, decision.Attributes)
		return c.Next()
	}
}

// Mask returns the attribute mask stored by Authorize, or nil when the route
// was not gated.
func Mask(c *fiber.Ctx) []string {
	mask, _ := c.Locals(maskKey).([]string)
	return mask
}

// FilterPayload applies the route's attribute mask to a response payload.
func FilterPayload(c *fiber.Ctx, payload map[string]interface{}) map[string]interface{} {
	return rbac.Filter(payload, Mask(c))
}

// FilterPayloads applies the route's attribute mask to a list of payloads.
func FilterPayloads(c *fiber.Ctx, payloads []map[string]interface{}) []map[string]interface{} {
	mask := Mask(c)
	if len(mask) == 0 {
		return payloads
	}
	rules := rbac.ParseRules(mask)
	out := make([]map[string]interface{}, len(payloads))
	for i, p := range payloads {
		out[i] = rbac.FilterRules(p, rules)
	}
	return out
}
