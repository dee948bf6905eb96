package main

import (
	"pantry/internal/config"
	"pantry/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connector loads configuration and opens the database.
type connector func() (*config.Config, *gorm.DB, error)

func defaultConnector() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	// Schema changes are explicit through the migrate command.
	cfg.DBAutoMigrate = false
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newRootCmd(connect connector) *cobra.Command {
	root := &cobra.Command{
		Use:           "pantry-admin",
		Short:         "Pantry administration CLI",
		Long:          "Manage the Pantry database schema, accounts and demo data.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(connect),
		newWaitForDBCmd(connect),
		newCreateUserCmd(connect),
		newSeedCmd(connect),
	)
	return root
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
