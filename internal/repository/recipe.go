package repository

import (
	"context"
	"errors"

	"pantry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter restricts a recipe listing to recipes sharing at least one tag
// and at least one ingredient with the given IDs. Empty slices do not filter.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	List(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error)
	GetByID(ctx context.Context, userID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe, fields RecipeRelations) error
	UpdateImage(ctx context.Context, id uint, image string) error
}

// RecipeRelations selects which relation sets Update rewrites from the recipe value.
type RecipeRelations struct {
	Tags        bool
	Ingredients bool
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func preloadRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id ASC")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredients.id ASC")
		})
}

func (r *recipeRepository) List(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&models.Recipe{}).Where("recipes.user_id = ?", userID)

	if len(filter.TagIDs) > 0 {
		q = q.Where("recipes.id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Table("recipe_tags").
			Select("recipe_id").
			Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("recipes.id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Table("recipe_ingredients").
			Select("recipe_id").
			Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	recipes := []models.Recipe{}
	if err := preloadRelations(q).Order("recipes.id DESC").Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// GetByID returns a not-found error when the recipe belongs to another user.
func (r *recipeRepository) GetByID(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := preloadRelations(r.db.WithContext(ctx)).
		Where("recipes.user_id = ?", userID).
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &recipe, nil
}

// Create inserts the recipe and links its Tags and Ingredients in one transaction.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := replaceAssociation(tx, recipe, "Tags", recipe.Tags); err != nil {
			return err
		}
		return replaceAssociation(tx, recipe, "Ingredients", recipe.Ingredients)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Update saves scalar columns and rewrites the selected relation sets.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, fields RecipeRelations) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return err
		}
		if fields.Tags {
			if err := replaceAssociation(tx, recipe, "Tags", recipe.Tags); err != nil {
				return err
			}
		}
		if fields.Ingredients {
			if err := replaceAssociation(tx, recipe, "Ingredients", recipe.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) UpdateImage(ctx context.Context, id uint, image string) error {
	result := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Update("image", image)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Recipe", id)
	}
	return nil
}

// replaceAssociation makes the named many2many set equal to values. An empty
// slice clears the set.
func replaceAssociation[T any](tx *gorm.DB, recipe *models.Recipe, name string, values []T) error {
	assoc := tx.Model(recipe).Omit(name + ".*").Association(name)
	if len(values) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}
