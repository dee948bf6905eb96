package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/observability"
	"pantry/internal/repository"
	"pantry/internal/validation"

	"github.com/shopspring/decimal"
)

// RecipeInput carries recipe fields from a request. A nil field was not supplied.
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        *[]uint
	IngredientIDs *[]uint
}

type RecipeService struct {
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.TagRepository
	ingredientRepo repository.IngredientRepository
	images         *ImageService
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	tagRepo repository.TagRepository,
	ingredientRepo repository.IngredientRepository,
	images *ImageService,
) *RecipeService {
	return &RecipeService{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		images:         images,
	}
}

// ParseIDList parses a comma-separated ID list such as "1, 2,3". Blank
// entries are skipped; anything else that is not a positive integer fails.
func ParseIDList(field, raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, models.NewFieldError(field, fmt.Sprintf("%q is not a valid ID.", part))
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func (s *RecipeService) List(ctx context.Context, userID uint, filter repository.RecipeFilter) ([]models.Recipe, error) {
	return s.recipeRepo.List(ctx, userID, filter)
}

func (s *RecipeService) Get(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(ctx, userID, id)
}

// Create requires title, time_minutes and price.
func (s *RecipeService) Create(ctx context.Context, userID uint, in RecipeInput) (*models.Recipe, error) {
	recipe := &models.Recipe{UserID: userID}
	if _, err := s.apply(ctx, recipe, in, false); err != nil {
		return nil, err
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	observability.RecipeWrites.WithLabelValues("create").Inc()
	middleware.Logger.InfoContext(ctx, "recipe created", slog.Uint64("recipe_id", uint64(recipe.ID)))
	return recipe, nil
}

// Update changes an existing recipe. With partial set only supplied fields
// change; otherwise the input replaces the recipe, and omitted link, tags
// and ingredients are cleared.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, in RecipeInput, partial bool) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	relations, err := s.apply(ctx, recipe, in, partial)
	if err != nil {
		return nil, err
	}

	if err := s.recipeRepo.Update(ctx, recipe, relations); err != nil {
		return nil, err
	}

	op := "replace"
	if partial {
		op = "patch"
	}
	observability.RecipeWrites.WithLabelValues(op).Inc()
	return recipe, nil
}

// apply validates in and copies it onto recipe. Fields required for a full
// write are enforced unless partial is set. It reports which relation sets
// must be rewritten.
func (s *RecipeService) apply(ctx context.Context, recipe *models.Recipe, in RecipeInput, partial bool) (repository.RecipeRelations, error) {
	errs := models.FieldErrors{}
	required := func(field string, supplied bool) bool {
		if !supplied && !partial {
			errs.Add(field, "This field is required.")
		}
		return supplied
	}

	if required("title", in.Title != nil) {
		if err := validation.ValidateRequiredText(*in.Title); err != nil {
			errs.Add("title", err.Error())
		}
	}
	if required("time_minutes", in.TimeMinutes != nil) {
		if err := validation.ValidateTimeMinutes(*in.TimeMinutes); err != nil {
			errs.Add("time_minutes", err.Error())
		}
	}
	if required("price", in.Price != nil) {
		if err := validation.ValidatePrice(*in.Price); err != nil {
			errs.Add("price", err.Error())
		}
	}
	if in.Link != nil {
		if err := validation.ValidateOptionalText(*in.Link); err != nil {
			errs.Add("link", err.Error())
		}
	}

	var tags []models.Tag
	if in.TagIDs != nil {
		found, err := s.tagRepo.FindOwned(ctx, recipe.UserID, *in.TagIDs)
		if err != nil {
			return repository.RecipeRelations{}, err
		}
		if missing := missingIDs(*in.TagIDs, found, func(t models.Tag) uint { return t.ID }); len(missing) > 0 {
			errs.Add("tags", invalidPKMessage(missing))
		}
		tags = found
	}
	var ingredients []models.Ingredient
	if in.IngredientIDs != nil {
		found, err := s.ingredientRepo.FindOwned(ctx, recipe.UserID, *in.IngredientIDs)
		if err != nil {
			return repository.RecipeRelations{}, err
		}
		if missing := missingIDs(*in.IngredientIDs, found, func(i models.Ingredient) uint { return i.ID }); len(missing) > 0 {
			errs.Add("ingredients", invalidPKMessage(missing))
		}
		ingredients = found
	}

	if err := errs.Err(); err != nil {
		return repository.RecipeRelations{}, err
	}

	if in.Title != nil {
		recipe.Title = strings.TrimSpace(*in.Title)
	}
	if in.TimeMinutes != nil {
		recipe.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		recipe.Price = *in.Price
	}
	switch {
	case in.Link != nil:
		recipe.Link = strings.TrimSpace(*in.Link)
	case !partial:
		recipe.Link = ""
	}

	relations := repository.RecipeRelations{
		Tags:        in.TagIDs != nil || !partial,
		Ingredients: in.IngredientIDs != nil || !partial,
	}
	if relations.Tags {
		recipe.Tags = tags
	}
	if relations.Ingredients {
		recipe.Ingredients = ingredients
	}
	return relations, nil
}

func missingIDs[T any](want []uint, found []T, id func(T) uint) []uint {
	have := make(map[uint]struct{}, len(found))
	for _, f := range found {
		have[id(f)] = struct{}{}
	}
	var missing []uint
	seen := make(map[uint]struct{}, len(want))
	for _, w := range want {
		if _, ok := have[w]; ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		missing = append(missing, w)
	}
	return missing
}

func invalidPKMessage(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("Invalid pk %q - object does not exist.", strings.Join(parts, ", "))
}

// UploadImage stores a new recipe image; the previous files are removed only
// after the recipe row points at the new image.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id uint, in UploadImageInput) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rel, err := s.images.Store(ctx, ImageKindRecipe, in)
	if err != nil {
		return nil, err
	}

	previous := recipe.Image
	if err := s.recipeRepo.UpdateImage(ctx, recipe.ID, rel); err != nil {
		s.images.Remove(ctx, rel)
		return nil, err
	}
	recipe.Image = rel
	s.images.Remove(ctx, previous)
	return recipe, nil
}

// ImageURL returns the public URL of the recipe's image, or "" when unset.
func (s *RecipeService) ImageURL(recipe *models.Recipe) string {
	return s.images.URL(recipe.Image)
}
