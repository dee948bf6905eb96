package service

import (
	"context"
	"strings"

	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/validation"
)

// TaxonomyService manages a user's tags and ingredients.
type TaxonomyService struct {
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
}

func NewTaxonomyService(tagRepo repository.TagRepository, ingredientRepo repository.IngredientRepository) *TaxonomyService {
	return &TaxonomyService{tagRepo: tagRepo, ingredientRepo: ingredientRepo}
}

func validateName(name string) (string, error) {
	if err := validation.ValidateRequiredText(name); err != nil {
		return "", models.NewFieldError("name", err.Error())
	}
	return strings.TrimSpace(name), nil
}

func (s *TaxonomyService) ListTags(ctx context.Context, userID uint, assignedOnly bool) ([]models.Tag, error) {
	return s.tagRepo.List(ctx, userID, assignedOnly)
}

func (s *TaxonomyService) CreateTag(ctx context.Context, userID uint, name string) (*models.Tag, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{UserID: userID, Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TaxonomyService) ListIngredients(ctx context.Context, userID uint, assignedOnly bool) ([]models.Ingredient, error) {
	return s.ingredientRepo.List(ctx, userID, assignedOnly)
}

func (s *TaxonomyService) CreateIngredient(ctx context.Context, userID uint, name string) (*models.Ingredient, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	ing := &models.Ingredient{UserID: userID, Name: name}
	if err := s.ingredientRepo.Create(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}
