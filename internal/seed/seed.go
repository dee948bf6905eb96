// Package seed creates demo data for development databases. Records are
// written through the service layer so they obey the same validation as
// API requests.
package seed

import (
	"context"
	"fmt"

	"pantry/internal/config"
	"pantry/internal/repository"
	"pantry/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPassword is given to every seeded account unless overridden.
const DefaultPassword = "pantry-demo-password"

// Options controls how much data is generated.
type Options struct {
	Users          int
	RecipesPerUser int
	TagsPerUser    int
	// Seed makes the generated data reproducible; zero picks a random seed.
	Seed     int64
	Password string
}

// Summary counts the rows created by a run.
type Summary struct {
	Users       int
	Recipes     int
	Tags        int
	Ingredients int
}

// Seeder generates users with tags, ingredients and recipes.
type Seeder struct {
	faker    *gofakeit.Faker
	opts     Options
	users    *service.UserService
	taxonomy *service.TaxonomyService
	recipes  *service.RecipeService
}

// New builds a Seeder writing to db.
func New(db *gorm.DB, cfg *config.Config, opts Options) *Seeder {
	if opts.Users <= 0 {
		opts.Users = 3
	}
	if opts.RecipesPerUser < 0 {
		opts.RecipesPerUser = 0
	}
	if opts.TagsPerUser <= 0 {
		opts.TagsPerUser = 4
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	images := service.NewImageService(cfg)

	return &Seeder{
		faker:    gofakeit.New(opts.Seed),
		opts:     opts,
		users:    service.NewUserService(userRepo, images),
		taxonomy: service.NewTaxonomyService(tagRepo, ingredientRepo),
		recipes:  service.NewRecipeService(repository.NewRecipeRepository(db), tagRepo, ingredientRepo, images),
	}
}

// Run creates the configured number of users and their data.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	for i := 0; i < s.opts.Users; i++ {
		if err := s.seedUser(ctx, i, &sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func (s *Seeder) seedUser(ctx context.Context, n int, sum *Summary) error {
	f := s.faker
	email := fmt.Sprintf("%s.%d@example.com", f.Username(), n)
	user, err := s.users.CreateUser(ctx, service.CreateUserInput{
		Email:    email,
		Password: s.opts.Password,
		Name:     f.Name(),
	})
	if err != nil {
		return fmt.Errorf("create user %s: %w", email, err)
	}
	sum.Users++

	tagIDs := make([]uint, 0, s.opts.TagsPerUser)
	for i := 0; i < s.opts.TagsPerUser; i++ {
		tag, err := s.taxonomy.CreateTag(ctx, user.ID, f.RandomString(tagNames))
		if err != nil {
			return fmt.Errorf("create tag: %w", err)
		}
		tagIDs = append(tagIDs, tag.ID)
		sum.Tags++
	}

	for i := 0; i < s.opts.RecipesPerUser; i++ {
		count := f.Number(1, 3)
		ingredientIDs := make([]uint, 0, count)
		for j := 0; j < count; j++ {
			name := f.Vegetable()
			if j%2 == 1 {
				name = f.Fruit()
			}
			ing, err := s.taxonomy.CreateIngredient(ctx, user.ID, name)
			if err != nil {
				return fmt.Errorf("create ingredient: %w", err)
			}
			ingredientIDs = append(ingredientIDs, ing.ID)
			sum.Ingredients++
		}

		picked := pick(f, tagIDs, f.Number(0, min(2, len(tagIDs))))
		title := f.Dinner()
		minutes := f.Number(5, 180)
		price := decimal.NewFromFloat(f.Price(1, 99)).Round(2)
		link := f.URL()

		if _, err := s.recipes.Create(ctx, user.ID, service.RecipeInput{
			Title:         &title,
			TimeMinutes:   &minutes,
			Price:         &price,
			Link:          &link,
			TagIDs:        &picked,
			IngredientIDs: &ingredientIDs,
		}); err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		sum.Recipes++
	}
	return nil
}

var tagNames = []string{"Vegan", "Vegetarian", "Dessert", "Breakfast", "Quick", "Spicy", "Comfort", "Gluten free", "Dinner", "Lunch"}

// pick returns n distinct IDs from ids in random order.
func pick(f *gofakeit.Faker, ids []uint, n int) []uint {
	shuffled := append([]uint(nil), ids...)
	f.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}
