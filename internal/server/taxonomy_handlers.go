package server

import (
	"github.com/gofiber/fiber/v2"
)

type nameRequest struct {
	Name string `json:"name" form:"name"`
}

// assignedOnly reads the assigned_only flag; any non-zero integer enables it.
func assignedOnly(c *fiber.Ctx) bool {
	return c.QueryInt("assigned_only", 0) != 0
}

// ListTags handles GET /recipe/tags/
// @Summary List my tags
// @Tags recipe
// @Produce json
// @Security BearerAuth
// @Param assigned_only query int false "Only tags attached to a recipe"
// @Success 200 {array} NamedResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /recipe/tags/ [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.taxonomyService.ListTags(c.UserContext(), currentUserID(c), assignedOnly(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toTagResponses(tags))
}

// CreateTag handles POST /recipe/tags/
// @Summary Create a tag
// @Tags recipe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body nameRequest true "Tag"
// @Success 201 {object} NamedResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/tags/ [post]
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	tag, err := s.taxonomyService.CreateTag(c.UserContext(), currentUserID(c), req.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(NamedResponse{ID: tag.ID, Name: tag.Name})
}

// ListIngredients handles GET /recipe/ingredients/
// @Summary List my ingredients
// @Tags recipe
// @Produce json
// @Security BearerAuth
// @Param assigned_only query int false "Only ingredients attached to a recipe"
// @Success 200 {array} NamedResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /recipe/ingredients/ [get]
func (s *Server) ListIngredients(c *fiber.Ctx) error {
	ingredients, err := s.taxonomyService.ListIngredients(c.UserContext(), currentUserID(c), assignedOnly(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toIngredientResponses(ingredients))
}

// CreateIngredient handles POST /recipe/ingredients/
// @Summary Create an ingredient
// @Tags recipe
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body nameRequest true "Ingredient"
// @Success 201 {object} NamedResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /recipe/ingredients/ [post]
func (s *Server) CreateIngredient(c *fiber.Ctx) error {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	ingredient, err := s.taxonomyService.CreateIngredient(c.UserContext(), currentUserID(c), req.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(NamedResponse{ID: ingredient.ID, Name: ingredient.Name})
}
