package auth

import (
	"fmt"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/utils"
)

// DefaultRoleID returns the role flagged as default for new registrations.
func DefaultRoleID() (uint, error) {
	var role models.Role
	if err := database.DB.Where("is_default = ?", true).First(&role).Error; err != nil {
		return 0, fmt.Errorf("no default role configured: %w", err)
	}
	return role.ID, nil
}

func RegisterUser(name, email, password string) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	roleID, err := DefaultRoleID()
	if err != nil {
		return nil, err
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Provider: "local",
		Status:   "active",
		RoleID:   roleID,
	}

	if err := database.DB.Create(&u).Error; err != nil {
		return nil, err
	}

	return &u, nil
}

func LoginUser(email, password string) (string, string, error) {
	var user models.User
	if err := database.DB.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return "", "", err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", "", fmt.Errorf("invalid credentials")
	}
	if user.Role == nil {
		return "", "", fmt.Errorf("user has no role assigned")
	}

	accessToken, err := utils.GenerateJWT(user.ID, user.Role.Code)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
