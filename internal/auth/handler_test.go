package auth_test

import (
	"testing"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/models"
	"github.com/Kyz7/console/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestRegisterHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	t.Run("Success - Register new user", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "John Doe",
			"email":    "john@example.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/auth/register", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)

		data := result.Data.(map[string]interface{})
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["refresh_token"])

		// New registrations land on the default role.
		var u models.User
		assert.NoError(t, database.DB.Preload("Role").
			Where("email = ?", "john@example.com").First(&u).Error)
		assert.Equal(t, "user", u.Role.Code)
	})

	t.Run("Error - Missing required fields", func(t *testing.T) {
		body := map[string]interface{}{
			"email": "incomplete@example.com",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/auth/register", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("Error - Duplicate email", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "Jane Doe",
			"email":    "john@example.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/auth/register", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)

		testutils.AssertError(t, resp, "CONFLICT")
	})
}

func TestLoginHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	testutils.CreateTestUser(t, database.DB, "test@example.com", "password123", "user")

	t.Run("Success - Valid credentials", func(t *testing.T) {
		body := map[string]interface{}{
			"email":    "test@example.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/auth/login", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)

		data := result.Data.(map[string]interface{})
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["refresh_token"])
	})

	t.Run("Error - Invalid credentials", func(t *testing.T) {
		body := map[string]interface{}{
			"email":    "test@example.com",
			"password": "wrongpassword",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/auth/login", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)

		testutils.AssertError(t, resp, "UNAUTHORIZED")
	})
}

func TestRefreshHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	testutils.CreateTestUser(t, database.DB, "refresh@example.com", "password123", "user")

	loginBody := map[string]interface{}{
		"email":    "refresh@example.com",
		"password": "password123",
	}
	resp, err := testutils.MakeRequest(app, "POST", "/auth/login", loginBody, "")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var login testutils.StandardResponse
	testutils.ParseResponse(t, resp, &login)
	refreshToken := login.Data.(map[string]interface{})["refresh_token"].(string)

	var u models.User
	database.DB.Where("email = ?", "refresh@example.com").First(&u)

	t.Run("Success - Rotates the pair", func(t *testing.T) {
		body := map[string]interface{}{
			"user_id":       u.ID,
			"refresh_token": refreshToken,
		}

		resp, err := testutils.MakeRequest(app, "POST", "/auth/refresh", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.NotEmpty(t, data["access_token"])
		assert.NotEqual(t, refreshToken, data["refresh_token"])
	})

	t.Run("Error - Reusing the old token", func(t *testing.T) {
		body := map[string]interface{}{
			"user_id":       u.ID,
			"refresh_token": refreshToken,
		}

		resp, err := testutils.MakeRequest(app, "POST", "/auth/refresh", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func TestLogoutHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	u := testutils.CreateTestUser(t, database.DB, "logout@example.com", "password123", "user")
	token := testutils.GetAuthToken(t, u.ID, u.Role.Code)

	loginBody := map[string]interface{}{
		"email":    "logout@example.com",
		"password": "password123",
	}
	resp, err := testutils.MakeRequest(app, "POST", "/auth/login", loginBody, "")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	resp, err = testutils.MakeRequest(app, "POST", "/auth/logout", nil, token)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var remaining int64
	database.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = false", u.ID).
		Count(&remaining)
	assert.Zero(t, remaining)
}
