package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/seed"
	"github.com/Kyz7/console/internal/server"
	"github.com/Kyz7/console/internal/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.ResetToken{},
		&models.RefreshToken{},
		&models.LoyaltyAccount{},
		&models.LoyaltyTransaction{},
		&models.Translation{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

// SetupTestApp builds a fiber app on an in-memory database with the default
// roles and bootstrap grants already seeded.
func SetupTestApp(t *testing.T) *fiber.App {
	db := TestDB(t)
	database.DB = db
	database.Cache = nil

	err := seed.Run(db)
	assert.NoError(t, err, "Failed to seed default roles")

	return server.New(db)
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password, roleCode string) *models.User {
	hashedPassword, _ := utils.HashPassword(password)

	var role models.Role
	if err := db.Where("code = ?", roleCode).First(&role).Error; err != nil {
		t.Fatalf("Failed to find role '%s': %v. Make sure seed.Run was called.", roleCode, err)
	}

	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: hashedPassword,
		Status:   "active",
		RoleID:   role.ID,
	}

	err := db.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	db.Preload("Role").First(user, user.ID)

	return user
}

func GetAuthToken(t *testing.T, userID uint, roleCode string) string {
	token, err := utils.GenerateJWT(userID, roleCode)
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	if result.Error != nil {
		assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
	}
}
