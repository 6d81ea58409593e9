package user_test

import (
	"fmt"
	"testing"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/testutils"
	"github.com/stretchr/testify/assert"
)

func TestCreateUserHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password123", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role.Code)

	t.Run("Success - Admin creates user", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "New User",
			"email":    "new@test.com",
			"password": "password123",
			"role_id":  admin.RoleID,
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		testutils.AssertSuccess(t, resp)
	})

	t.Run("Error - Missing required fields", func(t *testing.T) {
		body := map[string]interface{}{
			"name":  "Incomplete",
			"email": "incomplete@test.com",
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)

		testutils.AssertError(t, resp, "VALIDATION_ERROR")
	})

	t.Run("Error - Duplicate email", func(t *testing.T) {
		body := map[string]interface{}{
			"name":     "Dup",
			"email":    "new@test.com",
			"password": "password123",
			"role_id":  admin.RoleID,
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)

		testutils.AssertError(t, resp, "CONFLICT")
	})

	t.Run("Error - Guest is forbidden", func(t *testing.T) {
		guest := testutils.CreateTestUser(t, database.DB, "guest@test.com", "password123", "guest")
		guestToken := testutils.GetAuthToken(t, guest.ID, guest.Role.Code)

		body := map[string]interface{}{
			"name":     "Blocked",
			"email":    "blocked@test.com",
			"password": "password123",
			"role_id":  admin.RoleID,
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users", body, guestToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})

	t.Run("Error - Unauthorized", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "POST", "/users", map[string]interface{}{}, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func TestListUsersHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password123", "admin")
	testutils.CreateTestUser(t, database.DB, "other@test.com", "password123", "user")

	t.Run("Success - Admin lists users", func(t *testing.T) {
		token := testutils.GetAuthToken(t, admin.ID, admin.Role.Code)

		resp, err := testutils.MakeRequest(app, "GET", "/users", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)

		data := result.Data.([]interface{})
		assert.GreaterOrEqual(t, len(data), 2)
	})

	// A department-scoped read does not satisfy an any-scoped route.
	t.Run("Error - Manager is forbidden", func(t *testing.T) {
		manager := testutils.CreateTestUser(t, database.DB, "manager@test.com", "password123", "manager")
		token := testutils.GetAuthToken(t, manager.ID, manager.Role.Code)

		resp, err := testutils.MakeRequest(app, "GET", "/users", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		testutils.AssertError(t, resp, "FORBIDDEN")
	})
}

func TestGetProfileHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	t.Run("Own read strips masked fields for regular users", func(t *testing.T) {
		u := testutils.CreateTestUser(t, database.DB, "user@test.com", "password123", "user")
		token := testutils.GetAuthToken(t, u.ID, u.Role.Code)

		resp, err := testutils.MakeRequest(app, "GET", "/users/me", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.True(t, result.Success)

		data := result.Data.(map[string]interface{})
		assert.Equal(t, "user@test.com", data["email"])
		assert.NotContains(t, data, "role")
	})

	t.Run("Guest mask also hides email", func(t *testing.T) {
		g := testutils.CreateTestUser(t, database.DB, "guest@test.com", "password123", "guest")
		token := testutils.GetAuthToken(t, g.ID, g.Role.Code)

		resp, err := testutils.MakeRequest(app, "GET", "/users/me", nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)

		data := result.Data.(map[string]interface{})
		assert.NotContains(t, data, "email")
		assert.NotContains(t, data, "role")
		assert.Equal(t, "Test User", data["name"])
	})

	t.Run("Admin sees the full record", func(t *testing.T) {
		admin := testutils.CreateTestUser(t, database.DB, "admin2@test.com", "password123", "admin")
		token := testutils.GetAuthToken(t, admin.ID, admin.Role.Code)

		resp, err := testutils.MakeRequest(app, "GET", fmt.Sprintf("/users/%d", admin.ID), nil, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)

		data := result.Data.(map[string]interface{})
		assert.Equal(t, "admin2@test.com", data["email"])
		assert.Contains(t, data, "role")
	})
}

func TestAssignRoleHandler(t *testing.T) {
	app := testutils.SetupTestApp(t)

	admin := testutils.CreateTestUser(t, database.DB, "admin@test.com", "password123", "admin")
	token := testutils.GetAuthToken(t, admin.ID, admin.Role.Code)

	target := testutils.CreateTestUser(t, database.DB, "target@test.com", "password123", "user")
	manager := testutils.CreateTestUser(t, database.DB, "manager@test.com", "password123", "manager")

	t.Run("Success - Reassign role", func(t *testing.T) {
		body := map[string]interface{}{
			"user_id": target.ID,
			"role_id": manager.RoleID,
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users/assign-role", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, float64(manager.RoleID), data["role_id"])
	})

	t.Run("Error - Unknown role", func(t *testing.T) {
		body := map[string]interface{}{
			"user_id": target.ID,
			"role_id": 9999,
		}

		resp, err := testutils.MakeRequest(app, "POST", "/users/assign-role", body, token)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}
