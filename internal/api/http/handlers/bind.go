package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-portal/internal/auth"
	apperrors "github.com/spec-kit/gym-portal/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON parses the body into out and validates it, reporting failing fields by JSON name.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		details := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.NewValidationError("validation failed", details)
	}
	return nil
}

func sessionClient(c *fiber.Ctx) (*auth.Client, error) {
	client, ok := auth.ClientFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(errors.New("session middleware not installed"))
	}
	return client, nil
}

// currentUser returns the signed-in user's id. A guard has admitted the request,
// but the session can still end before the handler runs.
func currentUser(c *fiber.Ctx) (*auth.Client, string, error) {
	client, err := sessionClient(c)
	if err != nil {
		return nil, "", err
	}
	identity := client.Store.Identity()
	if identity == nil {
		return nil, "", apperrors.NewUnauthorized("sign in required")
	}
	return client, identity.ID, nil
}
