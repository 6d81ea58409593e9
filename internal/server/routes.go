package server

import (
	"time"

	"github.com/Kyz7/console/internal/auth"
	"github.com/Kyz7/console/internal/loyalty"
	"github.com/Kyz7/console/internal/middleware"
	"github.com/Kyz7/console/internal/permission"
	"github.com/Kyz7/console/internal/rbac"
	"github.com/Kyz7/console/internal/role"
	"github.com/Kyz7/console/internal/translation"
	"github.com/Kyz7/console/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Console API is running",
		})
	})

	// ==========================================
	// AUTH ROUTES (No authentication required)
	// ==========================================
	authGroup := app.Group("/auth")
	app.Use("/auth", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
	}))
	authGroup.Post("/register", auth.RegisterHandler)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.LoginHandler)
	authGroup.Get("/google/login", auth.GoogleLogin)
	authGroup.Get("/google/callback", auth.GoogleCallback)
	authGroup.Post("/forgot-password", auth.ForgotPasswordHandler)
	authGroup.Post("/reset-password", auth.ResetPasswordHandler)
	authGroup.Post("/refresh", limiter.New(limiter.Config{
		Max:        3,
		Expiration: 5 * time.Minute,
	}), auth.RefreshHandler)
	authGroup.Post("/logout", auth.JWTProtected(), auth.LogoutHandler)

	// ==========================================
	// USER MANAGEMENT
	// ==========================================
	userGroup := app.Group("/users")
	userGroup.Use(auth.JWTProtected())

	userGroup.Get("/me",
		middleware.Authorize("user", rbac.ActionRead, rbac.ScopeOwn),
		user.GetProfileHandler)

	userGroup.Post("/",
		middleware.Authorize("user", rbac.ActionCreate, rbac.ScopeAny),
		user.CreateUserHandler)
	userGroup.Get("/",
		middleware.Authorize("user", rbac.ActionRead, rbac.ScopeAny),
		user.ListUsersHandler)
	userGroup.Get("/:id",
		middleware.Authorize("user", rbac.ActionRead, rbac.ScopeAny),
		user.GetUserHandler)
	userGroup.Put("/:id",
		middleware.Authorize("user", rbac.ActionUpdate, rbac.ScopeAny),
		user.UpdateUserHandler)
	userGroup.Delete("/:id",
		middleware.Authorize("user", rbac.ActionDelete, rbac.ScopeAny),
		user.DeleteUserHandler)
	userGroup.Post("/assign-role",
		middleware.Authorize("role", rbac.ActionExecute, rbac.ScopeAny),
		user.AssignRoleHandler)

	// ==========================================
	// ROLE CATALOG
	// ==========================================
	roleGroup := app.Group("/roles")
	roleGroup.Use(auth.JWTProtected())

	roleGroup.Post("/",
		middleware.Authorize("role", rbac.ActionCreate, rbac.ScopeAny),
		role.CreateRoleHandler)
	roleGroup.Get("/",
		middleware.Authorize("role", rbac.ActionRead, rbac.ScopeAny),
		role.ListRolesHandler)
	roleGroup.Get("/:id",
		middleware.Authorize("role", rbac.ActionRead, rbac.ScopeAny),
		role.GetRoleHandler)
	roleGroup.Put("/:id",
		middleware.Authorize("role", rbac.ActionUpdate, rbac.ScopeAny),
		role.UpdateRoleHandler)
	roleGroup.Delete("/:id",
		middleware.Authorize("role", rbac.ActionDelete, rbac.ScopeAny),
		role.DeleteRoleHandler)

	// Permission bindings
	roleGroup.Get("/:id/permissions",
		middleware.Authorize("role", rbac.ActionRead, rbac.ScopeAny),
		role.ListRolePermissionsHandler)
	roleGroup.Post("/:id/permissions",
		middleware.Authorize("role", rbac.ActionUpdate, rbac.ScopeAny),
		role.BindPermissionHandler)
	roleGroup.Delete("/:id/permissions/:permission_id",
		middleware.Authorize("role", rbac.ActionUpdate, rbac.ScopeAny),
		role.UnbindPermissionHandler)

	// ==========================================
	// PERMISSION CATALOG
	// ==========================================
	permGroup := app.Group("/permissions")
	permGroup.Use(auth.JWTProtected())

	permGroup.Post("/",
		middleware.Authorize("permission", rbac.ActionCreate, rbac.ScopeAny),
		permission.CreatePermissionHandler)
	permGroup.Get("/",
		middleware.Authorize("permission", rbac.ActionRead, rbac.ScopeAny),
		permission.ListPermissionsHandler)
	permGroup.Get("/:id",
		middleware.Authorize("permission", rbac.ActionRead, rbac.ScopeAny),
		permission.GetPermissionHandler)
	permGroup.Put("/:id",
		middleware.Authorize("permission", rbac.ActionUpdate, rbac.ScopeAny),
		permission.UpdatePermissionHandler)
	permGroup.Delete("/:id",
		middleware.Authorize("permission", rbac.ActionDelete, rbac.ScopeAny),
		permission.DeletePermissionHandler)

	// Bulk grants and the decision probe
	permGroup.Post("/grant",
		middleware.Authorize("permission", rbac.ActionExecute, rbac.ScopeAny),
		permission.GrantHandler)
	permGroup.Post("/check",
		middleware.Authorize("permission", rbac.ActionRead, rbac.ScopeAny),
		permission.CheckHandler)

	// ==========================================
	// LOYALTY LEDGER
	// ==========================================
	loyaltyGroup := app.Group("/loyalty")
	loyaltyGroup.Use(auth.JWTProtected())

	loyaltyGroup.Get("/balance",
		middleware.Authorize("loyalty", rbac.ActionRead, rbac.ScopeOwn),
		loyalty.GetBalanceHandler)
	loyaltyGroup.Get("/statement",
		middleware.Authorize("loyalty", rbac.ActionRead, rbac.ScopeOwn),
		loyalty.GetStatementHandler)
	loyaltyGroup.Post("/redeem",
		middleware.Authorize("loyalty", rbac.ActionUpdate, rbac.ScopeOwn),
		loyalty.RedeemHandler)

	loyaltyGroup.Get("/users/:id/balance",
		middleware.Authorize("loyalty", rbac.ActionRead, rbac.ScopeAny),
		loyalty.AdminBalanceHandler)
	loyaltyGroup.Get("/users/:id/statement",
		middleware.Authorize("loyalty", rbac.ActionRead, rbac.ScopeAny),
		loyalty.AdminStatementHandler)
	loyaltyGroup.Post("/users/:id/earn",
		middleware.Authorize("loyalty", rbac.ActionUpdate, rbac.ScopeAny),
		loyalty.EarnHandler)
	loyaltyGroup.Post("/users/:id/adjust",
		middleware.Authorize("loyalty", rbac.ActionApprove, rbac.ScopeAny),
		loyalty.AdjustHandler)

	// ==========================================
	// TRANSLATIONS
	// ==========================================
	translationGroup := app.Group("/translations")
	translationGroup.Use(auth.JWTProtected())

	translationGroup.Get("/",
		middleware.Authorize("translation", rbac.ActionRead, rbac.ScopeAny),
		translation.ListTranslationsHandler)
	translationGroup.Get("/:locale",
		middleware.Authorize("translation", rbac.ActionRead, rbac.ScopeAny),
		translation.GetLocaleHandler)
	translationGroup.Post("/",
		middleware.Authorize("translation", rbac.ActionCreate, rbac.ScopeAny),
		translation.CreateTranslationHandler)
	translationGroup.Put("/:id",
		middleware.Authorize("translation", rbac.ActionUpdate, rbac.ScopeAny),
		translation.UpdateTranslationHandler)
	translationGroup.Delete("/:id",
		middleware.Authorize("translation", rbac.ActionDelete, rbac.ScopeAny),
		translation.DeleteTranslationHandler)
}
