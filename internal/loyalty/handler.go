package loyalty

import (
	"errors"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/response"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type pointsRequest struct {
	Points int64  `json:"points" validate:"required"`
	Note   string `json:"note"`
}

// parsePoints writes the error response itself and returns nil on failure.
func parsePoints(c *fiber.Ctx) *pointsRequest {
	var body pointsRequest
	if err := c.BodyParser(&body); err != nil {
		_ = response.BadRequest(c, "Invalid request body", err.Error())
		return nil
	}
	if err := validate.Struct(body); err != nil {
		fields := map[string]string{}
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		_ = response.ValidationError(c, fields)
		return nil
	}
	return &body
}

func callerID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// GetBalanceHandler returns the caller's own points balance.
func GetBalanceHandler(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "Missing user context")
	}

	account, err := Account(database.DB, userID)
	if err != nil {
		return response.InternalError(c, "Failed to fetch loyalty account")
	}

	return response.Success(c, fiber.Map{
		"user_id": account.UserID,
		"balance": account.Balance,
	}, "Balance retrieved successfully")
}

// GetStatementHandler lists the caller's own transactions, newest first.
func GetStatementHandler(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "Missing user context")
	}

	txns, err := Statement(database.DB, userID, c.QueryInt("limit", 50))
	if err != nil {
		return response.InternalError(c, "Failed to fetch statement")
	}

	return response.Success(c, txns, "Statement retrieved successfully")
}

// RedeemHandler spends points from the caller's own account.
func RedeemHandler(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return response.Unauthorized(c, "Missing user context")
	}

	body := parsePoints(c)
	if body == nil {
		return nil
	}

	txn, err := Redeem(database.DB, userID, body.Points, body.Note)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return response.Error(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE",
				"Not enough points to redeem", nil)
		}
		return response.BadRequest(c, "Failed to redeem points", err.Error())
	}

	return response.Created(c, txn, "Points redeemed successfully")
}

// AdminBalanceHandler returns any user's balance.
func AdminBalanceHandler(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	account, err := Account(database.DB, uint(userID))
	if err != nil {
		return response.InternalError(c, "Failed to fetch loyalty account")
	}

	return response.Success(c, account, "Balance retrieved successfully")
}

// AdminStatementHandler lists any user's transactions.
func AdminStatementHandler(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	txns, err := Statement(database.DB, uint(userID), c.QueryInt("limit", 50))
	if err != nil {
		return response.InternalError(c, "Failed to fetch statement")
	}

	return response.Success(c, txns, "Statement retrieved successfully")
}

// EarnHandler credits points to any user's account.
func EarnHandler(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	body := parsePoints(c)
	if body == nil {
		return nil
	}

	txn, err := Earn(database.DB, uint(userID), body.Points, body.Note)
	if err != nil {
		return response.BadRequest(c, "Failed to credit points", err.Error())
	}

	return response.Created(c, txn, "Points credited successfully")
}

// AdjustHandler applies a signed correction to any user's balance.
func AdjustHandler(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	body := parsePoints(c)
	if body == nil {
		return nil
	}

	txn, err := Adjust(database.DB, uint(userID), body.Points, body.Note)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return response.Error(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE",
				"Adjustment would take the balance below zero", nil)
		}
		return response.BadRequest(c, "Failed to adjust points", err.Error())
	}

	return response.Created(c, txn, "Balance adjusted successfully")
}
