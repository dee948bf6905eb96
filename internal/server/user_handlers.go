package server

import (
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMe handles GET /user/me/
// @Summary Get my profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/me/ [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(s.toUserResponse(user))
}

// UpdateMe handles PATCH /user/me/
// @Summary Update my profile
// @Description Any of email, name and password may be supplied
// @Tags user
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param request body ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/me/ [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(s.toUserResponse(user))
}

// UploadUserImage handles POST /user/upload-image/
// @Summary Upload my profile image
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 200 {object} ImageUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /user/upload-image/ [post]
func (s *Server) UploadUserImage(c *fiber.Ctx) error {
	in, err := readUpload(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.userService.UploadImage(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(ImageUploadResponse{ID: user.ID, Image: s.userService.ImageURL(user)})
}
