package user

import (
	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/middleware"
	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/response"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type createUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   uint   `json:"role_id" validate:"required"`
}

func CreateUserHandler(c *fiber.Ctx) error {
	var body createUserRequest

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

	var role models.Role
	if err := database.DB.First(&role, body.RoleID).Error; err != nil {
		return response.NotFound(c, "Role")
	}

	var existing models.User
	if err := database.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	u := models.User{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		RoleID:   body.RoleID,
	}

	if _, err := CreateUser(database.DB, &u); err != nil {
		return response.InternalError(c, "Failed to create user")
	}

	database.DB.Preload("Role").First(&u, u.ID)

	return response.Created(c, middleware.FilterPayload(c, Payload(&u)), "User created successfully")
}

func ListUsersHandler(c *fiber.Ctx) error {
	users, err := ListUsers()
	if err != nil {
		return response.InternalError(c, "Failed to fetch users")
	}

	payloads := make([]map[string]interface{}, len(users))
	for i := range users {
		payloads[i] = Payload(&users[i])
	}

	return response.Success(c, middleware.FilterPayloads(c, payloads), "Users retrieved successfully")
}

func GetUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var u models.User
	if err := database.DB.Preload("Role").First(&u, id).Error; err != nil {
		return response.NotFound(c, "User")
	}

	return response.Success(c, middleware.FilterPayload(c, Payload(&u)), "User retrieved successfully")
}

// GetProfileHandler returns the authenticated caller's own record; it sits
// behind an own-scoped read check.
func GetProfileHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var u models.User
	if err := database.DB.Preload("Role").First(&u, userID).Error; err != nil {
		return response.NotFound(c, "User")
	}

	return response.Success(c, middleware.FilterPayload(c, Payload(&u)), "Profile retrieved successfully")
}

func UpdateUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var body struct {
		Name   string `json:"name"`
		Email  string `json:"email" validate:"omitempty,email"`
		RoleID uint   `json:"role_id"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if err := validate.Struct(body); err != nil {
		return response.ValidationError(c, map[string]string{"email": "must be a valid email"})
	}

	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return response.NotFound(c, "User")
	}

	if body.Email != "" && body.Email != u.Email {
		var existing models.User
		if err := database.DB.Where("email = ? AND id != ?", body.Email, id).First(&existing).Error; err == nil {
			return response.Conflict(c, "Email already taken")
		}
		u.Email = body.Email
	}

	if body.Name != "" {
		u.Name = body.Name
	}

	if body.RoleID != 0 {
		var role models.Role
		if err := database.DB.First(&role, body.RoleID).Error; err != nil {
			return response.NotFound(c, "Role")
		}
		u.RoleID = body.RoleID
	}

	if err := database.DB.Save(&u).Error; err != nil {
		return response.InternalError(c, "Failed to update user")
	}

	database.DB.Preload("Role").First(&u, u.ID)

	return response.Success(c, middleware.FilterPayload(c, Payload(&u)), "User updated successfully")
}

func DeleteUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		return response.NotFound(c, "User")
	}

	if err := database.DB.Delete(&u).Error; err != nil {
		return response.InternalError(c, "Failed to delete user")
	}

	return response.NoContent(c)
}

func AssignRoleHandler(c *fiber.Ctx) error {
	var body struct {
		UserID uint `json:"user_id"`
		RoleID uint `json:"role_id"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.UserID == 0 || body.RoleID == 0 {
		return response.ValidationError(c, map[string]string{
			"user_id": "user_id is required",
			"role_id": "role_id is required",
		})
	}

	var role models.Role
	if err := database.DB.First(&role, body.RoleID).Error; err != nil {
		return response.NotFound(c, "Role")
	}

	if err := AssignRole(database.DB, body.UserID, body.RoleID); err != nil {
		return response.NotFound(c, "User")
	}

	var u models.User
	database.DB.Preload("Role").First(&u, body.UserID)

	return response.Success(c, middleware.FilterPayload(c, Payload(&u)), "Role assigned successfully")
}
