package repository

import (
	"context"

	"pantry/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Tag, error)
	FindOwned(ctx context.Context, userID uint, ids []uint) ([]models.Tag, error)
}

// IngredientRepository defines persistence operations for ingredients.
type IngredientRepository interface {
	Create(ctx context.Context, ingredient *models.Ingredient) error
	List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Ingredient, error)
	FindOwned(ctx context.Context, userID uint, ids []uint) ([]models.Ingredient, error)
}

// ownedTable describes a user-owned name table and the recipe join table referencing it.
type ownedTable struct {
	table      string
	joinTable  string
	joinColumn string
}

var (
	tagTable        = ownedTable{table: "tags", joinTable: "recipe_tags", joinColumn: "tag_id"}
	ingredientTable = ownedTable{table: "ingredients", joinTable: "recipe_ingredients", joinColumn: "ingredient_id"}
)

// listQuery scopes rows to the owner, newest name first. Rows attached to no
// recipe are dropped when assignedOnly is set.
func (t ownedTable) listQuery(db *gorm.DB, userID uint, assignedOnly bool) *gorm.DB {
	q := db.Where(t.table+".user_id = ?", userID)
	if assignedOnly {
		q = q.Where(t.table+".id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Table(t.joinTable).
			Select(t.joinColumn))
	}
	return q.Order(t.table + ".name DESC").Order(t.table + ".id DESC")
}

func (t ownedTable) ownedQuery(db *gorm.DB, userID uint, ids []uint) *gorm.DB {
	return db.Where(t.table+".user_id = ? AND "+t.table+".id IN ?", userID, ids)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := tagTable.listQuery(r.db.WithContext(ctx), userID, assignedOnly).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// FindOwned returns the subset of ids that exist and belong to userID.
func (r *tagRepository) FindOwned(ctx context.Context, userID uint, ids []uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := tagTable.ownedQuery(r.db.WithContext(ctx), userID, ids).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository returns a new IngredientRepository implementation.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ingredientRepository) List(ctx context.Context, userID uint, assignedOnly bool) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if err := ingredientTable.listQuery(r.db.WithContext(ctx), userID, assignedOnly).Find(&ingredients).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredients, nil
}

// FindOwned returns the subset of ids that exist and belong to userID.
func (r *ingredientRepository) FindOwned(ctx context.Context, userID uint, ids []uint) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := ingredientTable.ownedQuery(r.db.WithContext(ctx), userID, ids).Find(&ingredients).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ingredients, nil
}
