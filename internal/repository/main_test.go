package repository

import (
	"context"
	"testing"

	"pantry/internal/models"
	"pantry/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB returns a postgres-dialect GORM handle backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewTestDB(t)
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "hash", Name: "Test User", IsActive: true}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createTag(t *testing.T, db *gorm.DB, userID uint, name string) models.Tag {
	t.Helper()
	tag := models.Tag{UserID: userID, Name: name}
	require.NoError(t, NewTagRepository(db).Create(context.Background(), &tag))
	return tag
}

func createIngredient(t *testing.T, db *gorm.DB, userID uint, name string) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{UserID: userID, Name: name}
	require.NoError(t, NewIngredientRepository(db).Create(context.Background(), &ing))
	return ing
}

func createRecipe(t *testing.T, db *gorm.DB, userID uint, title string, tags []models.Tag, ingredients []models.Ingredient) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		UserID:      userID,
		Title:       title,
		TimeMinutes: 22,
		Price:       decimal.RequireFromString("5.25"),
		Tags:        tags,
		Ingredients: ingredients,
	}
	require.NoError(t, NewRecipeRepository(db).Create(context.Background(), recipe))
	return recipe
}
