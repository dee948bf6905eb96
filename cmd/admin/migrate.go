package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pantry/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := database.ApplySchema(cmd.Context(), db); err != nil {
				return err
			}
			if missing := database.MissingTables(cmd.Context(), db); len(missing) > 0 {
				return fmt.Errorf("tables missing after migration: %v", missing)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newWaitForDBCmd(connect connector) *cobra.Command {
	var timeout, interval time.Duration

	cmd := &cobra.Command{
		Use:   "wait-for-db",
		Short: "Block until the database accepts connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Waiting for database...")
			for {
				err := pingOnce(ctx, connect)
				if err == nil {
					fmt.Fprintln(out, "Database available!")
					return nil
				}
				fmt.Fprintf(out, "Database unavailable, waiting %s...\n", interval)

				select {
				case <-ctx.Done():
					return errors.Join(errors.New("timed out waiting for database"), err)
				case <-time.After(interval):
				}
			}
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between attempts")
	return cmd
}

func pingOnce(ctx context.Context, connect connector) error {
	_, db, err := connect()
	if err != nil {
		return err
	}
	defer closeDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
