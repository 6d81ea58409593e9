package user

import (
	"encoding/json"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/utils"
	"gorm.io/gorm"
)

func CreateUser(db *gorm.DB, u *models.User) (*models.User, error) {
	hash, err := utils.HashPassword(u.Password)
	if err != nil {
		return nil, err
	}
	u.Password = hash
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func AssignRole(db *gorm.DB, userID uint, roleID uint) error {
	var u models.User
	if err := db.First(&u, userID).Error; err != nil {
		return err
	}
	u.RoleID = roleID
	return db.Save(&u).Error
}

func ListUsers() ([]models.User, error) {
	var users []models.User
	if err := database.DB.Preload("Role").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Payload renders a user as a generic map so the attribute filter can strip
// masked fields before the response is written.
func Payload(u *models.User) map[string]interface{} {
	u.Password = ""
	b, _ := json.Marshal(u)
	var m map[string]interface{}
	_ = json.Unmarshal(b, &m)
	return m
}
