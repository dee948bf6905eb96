package server

import (
	"pantry/internal/repository"
	"pantry/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListRecipes handles GET /recipe/recipes/
// @Summary List my recipes
// @Description Newest first. tags and ingredients take comma-separated IDs and combine with AND.
// @Tags recipe
// @Produce json
// @Security BearerAuth
// @Param tags query string false "Comma-separated tag IDs"
// @Param ingredients query string false "Comma-separated ingredient IDs"
// @Success 200 {array} RecipeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /recipe/recipes/ [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	var filter repository.RecipeFilter
	var err error
	if raw := c.Query("tags"); raw != "" {
		if filter.TagIDs, err = service.ParseIDList("tags", raw); err != nil {
			return respondServiceError(c, err)
		}
	}
	if raw := c.Query("ingredients"); raw != "" {
		if filter.IngredientIDs, err = service.ParseIDList("ingredients", raw); err != nil {
			return respondServiceError(c, err)
		}
	}

	recipes, err := s.recipeService.List(c.UserContext(), currentUserID(c), filter)
	if err != nil {
		return respondServiceError(c, err)
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeResponse(&recipes[i]))
	}
	return c.JSON(out)
}

// CreateRecipe handles POST /recipe/recipes/
// @Summary Create a recipe
// @Tags recipe
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param request body recipeRequest true "Recipe"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /recipe/recipes/ [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	req, err := parseRecipeRequest(c)
	if err != nil {
		return respondRequestError(c, err)
	}

	recipe, err := s.recipeService.Create(c.UserContext(), currentUserID(c), req.input())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toRecipeResponse(recipe))
}

// GetRecipe handles GET /recipe/recipes/:id/
// @Summary Get a recipe
// @Tags recipe
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeDetailResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id}/ [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(s.toRecipeDetailResponse(recipe))
}

// ReplaceRecipe handles PUT /recipe/recipes/:id/
// @Summary Replace a recipe
// @Description title, time_minutes and price are required; omitted link, tags and ingredients are cleared.
// @Tags recipe
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body recipeRequest true "Recipe"
// @Success 200 {object} RecipeDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id}/ [put]
func (s *Server) ReplaceRecipe(c *fiber.Ctx) error {
	return s.updateRecipe(c, false)
}

// PatchRecipe handles PATCH /recipe/recipes/:id/
// @Summary Partially update a recipe
// @Description Only supplied fields change. A supplied tags or ingredients list replaces that set.
// @Tags recipe
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body recipeRequest true "Fields to change"
// @Success 200 {object} RecipeDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id}/ [patch]
func (s *Server) PatchRecipe(c *fiber.Ctx) error {
	return s.updateRecipe(c, true)
}

func (s *Server) updateRecipe(c *fiber.Ctx, partial bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := parseRecipeRequest(c)
	if err != nil {
		return respondRequestError(c, err)
	}

	userID := currentUserID(c)
	if _, err := s.recipeService.Update(c.UserContext(), userID, id, req.input(), partial); err != nil {
		return respondServiceError(c, err)
	}

	recipe, err := s.recipeService.Get(c.UserContext(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(s.toRecipeDetailResponse(recipe))
}

// UploadRecipeImage handles POST /recipe/recipes/:id/upload-image/
// @Summary Upload a recipe image
// @Tags recipe
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param image formData file true "Image file"
// @Success 200 {object} ImageUploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipe/recipes/{id}/upload-image/ [post]
func (s *Server) UploadRecipeImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	in, err := readUpload(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	recipe, err := s.recipeService.UploadImage(c.UserContext(), currentUserID(c), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(ImageUploadResponse{ID: recipe.ID, Image: s.recipeService.ImageURL(recipe)})
}
