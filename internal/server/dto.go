package server

import (
	"pantry/internal/models"
)

// RegisterRequest is the body of POST /user/create/.
type RegisterRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

// CredentialsRequest is the body of POST /user/token/.
type CredentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ProfileUpdateRequest is the body of PATCH /user/me/. Absent fields stay unchanged.
type ProfileUpdateRequest struct {
	Email    *string `json:"email" form:"email"`
	Password *string `json:"password" form:"password"`
	Name     *string `json:"name" form:"name"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ImageUploadResponse is returned after an image upload.
type ImageUploadResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}

// NamedResponse is a tag or ingredient.
type NamedResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeResponse is the list representation of a recipe; relations are IDs.
type RecipeResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Tags        []uint `json:"tags"`
	Ingredients []uint `json:"ingredients"`
}

// RecipeDetailResponse nests tags and ingredients and includes the image URL.
type RecipeDetailResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       string          `json:"price"`
	Link        string          `json:"link"`
	Image       string          `json:"image"`
	Tags        []NamedResponse `json:"tags"`
	Ingredients []NamedResponse `json:"ingredients"`
}

func (s *Server) toUserResponse(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name, Image: s.userService.ImageURL(u)}
}

func toRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
	}
}

func (s *Server) toRecipeDetailResponse(r *models.Recipe) RecipeDetailResponse {
	tags := make([]NamedResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, NamedResponse{ID: t.ID, Name: t.Name})
	}
	ingredients := make([]NamedResponse, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, NamedResponse{ID: i.ID, Name: i.Name})
	}
	return RecipeDetailResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Image:       s.recipeService.ImageURL(r),
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func toTagResponses(tags []models.Tag) []NamedResponse {
	out := make([]NamedResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, NamedResponse{ID: t.ID, Name: t.Name})
	}
	return out
}

func toIngredientResponses(ingredients []models.Ingredient) []NamedResponse {
	out := make([]NamedResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, NamedResponse{ID: i.ID, Name: i.Name})
	}
	return out
}
