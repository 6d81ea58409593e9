package translation

import (
	"errors"

	"github.com/Kyz7/console/internal/database"
	"github.com/Kyz7/console/internal/response"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func service() *Service {
	return NewService(database.DB, database.Cache)
}

type createTranslationRequest struct {
	Locale string `json:"locale" validate:"required,min=2,max=10"`
	Key    string `json:"key" validate:"required,max=255"`
	Value  string `json:"value" validate:"required"`
}

func CreateTranslationHandler(c *fiber.Ctx) error {
	var body createTranslationRequest

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

	t, err := service().Create(c.Context(), body.Locale, body.Key, body.Value)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return response.Conflict(c, "Translation already exists for this locale and key")
		}
		return response.InternalError(c, "Failed to create translation")
	}

	return response.Created(c, t, "Translation created successfully")
}

func UpdateTranslationHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid translation ID", nil)
	}

	var body struct {
		Value string `json:"value" validate:"required"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if body.Value == "" {
		return response.BadRequest(c, "Value is required", nil)
	}

	t, err := service().Update(c.Context(), uint(id), body.Value)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.NotFound(c, "Translation")
		}
		return response.InternalError(c, "Failed to update translation")
	}

	return response.Success(c, t, "Translation updated successfully")
}

func DeleteTranslationHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid translation ID", nil)
	}

	if err := service().Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.NotFound(c, "Translation")
		}
		return response.InternalError(c, "Failed to delete translation")
	}

	return response.Success(c, nil, "Translation deleted successfully")
}

func ListTranslationsHandler(c *fiber.Ctx) error {
	rows, err := service().List(c.Query("locale"))
	if err != nil {
		return response.InternalError(c, "Failed to fetch translations")
	}

	return response.Success(c, rows, "Translations retrieved successfully")
}

// GetLocaleHandler returns the flattened key→value map consumed by the UI.
func GetLocaleHandler(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if locale == "" {
		return response.BadRequest(c, "Locale is required", nil)
	}

	flat, err := service().LocaleMap(c.Context(), locale)
	if err != nil {
		return response.InternalError(c, "Failed to fetch translations")
	}

	return response.Success(c, flat, "Translations retrieved successfully")
}
