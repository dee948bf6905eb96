package server

import (
	"errors"
	"io"

	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// currentUserID returns the authenticated user set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(middleware.LocalUserID).(uint)
	return id
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten,
// matching what an unknown ID would produce.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			&models.AppError{Code: models.CodeNotFound, Message: "Not found."})
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// mapServiceError maps an AppError code to its HTTP status.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeMethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes err with the status mapped from its code.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, mapServiceError(err), err)
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}

// respondRequestError answers a body that failed to decode: unreadable bodies
// get the generic message, type errors keep their per-field messages.
func respondRequestError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errMalformedBody) {
		return invalidBody(c)
	}
	return respondServiceError(c, err)
}

// readUpload reads the multipart "image" field. A missing field yields an
// empty input so the image service reports it as a field error.
func readUpload(c *fiber.Ctx) (service.UploadImageInput, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return service.UploadImageInput{}, nil
	}

	src, err := file.Open()
	if err != nil {
		return service.UploadImageInput{}, models.NewFieldError("image", "Unable to read uploaded file.")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.UploadImageInput{}, models.NewFieldError("image", "Unable to read uploaded file.")
	}

	return service.UploadImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// MethodNotAllowed answers methods a resource does not support.
func (s *Server) MethodNotAllowed(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusMethodNotAllowed,
		models.NewMethodNotAllowedError(c.Method()))
}
