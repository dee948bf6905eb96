package service

import (
	"os"
	"testing"

	"pantry/internal/config"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	PasswordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	db       *gorm.DB
	images   *ImageService
	users    *UserService
	taxonomy *TaxonomyService
	recipes  *RecipeService
	userRepo repository.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	images := NewImageService(&config.Config{MediaRoot: t.TempDir(), MediaURL: "/media/"})
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	return &fixture{
		db:       db,
		images:   images,
		users:    NewUserService(userRepo, images),
		taxonomy: NewTaxonomyService(tagRepo, ingredientRepo),
		recipes:  NewRecipeService(repository.NewRecipeRepository(db), tagRepo, ingredientRepo, images),
		userRepo: userRepo,
	}
}

func assertValidationError(t *testing.T, err error, fields ...string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	for _, f := range fields {
		assert.Contains(t, appErr.Fields, f)
	}
}

func ptr[T any](v T) *T {
	return &v
}
