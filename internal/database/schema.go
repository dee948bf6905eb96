package database

import (
	"context"
	"fmt"

	"pantry/internal/middleware"
	"pantry/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Join tables for recipe tags and ingredients are created from the many2many tags.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
	}
}

// ApplySchema creates or updates every table the application uses.
func ApplySchema(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.InfoContext(ctx, "Running GORM AutoMigrate")
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// SchemaTables lists the tables that must exist after ApplySchema.
func SchemaTables() []string {
	return []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients"}
}

// MissingTables reports which schema tables are absent from db.
func MissingTables(ctx context.Context, db *gorm.DB) []string {
	migrator := db.WithContext(ctx).Migrator()
	var missing []string
	for _, table := range SchemaTables() {
		if !migrator.HasTable(table) {
			missing = append(missing, table)
		}
	}
	return missing
}
