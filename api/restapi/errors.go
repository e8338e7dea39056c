package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// detail is the uniform error response body
func detail(msg string) fiber.Map {
	return fiber.Map{"detail": msg}
}

// storageError maps typed storage errors to their status codes; anything
// untyped is a server error.
func storageError(c *fiber.Ctx, err error) error {
	var notFound model.NotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(detail(notFound.Error()))
	}
	var alreadyExists model.AlreadyExistsError
	if errors.As(err, &alreadyExists) {
		return c.Status(fiber.StatusConflict).JSON(detail(alreadyExists.Error()))
	}
	var invalid model.InvalidRequestError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(detail(invalid.Error()))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(detail(err.Error()))
}
