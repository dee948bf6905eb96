package server

import (
	"pantry/internal/models"
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /user/create/
// @Summary Register a user
// @Description Create a new account. The password must have at least 12 characters.
// @Tags user
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /user/create/ [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(s.toUserResponse(user))
}

// CreateToken handles POST /user/token/
// @Summary Obtain an auth token
// @Description Exchange email and password for a bearer token
// @Tags user
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /user/token/ [post]
func (s *Server) CreateToken(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(TokenResponse{Token: token})
}
