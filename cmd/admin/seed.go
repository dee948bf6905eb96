package main

import (
	"fmt"

	"pantry/internal/repository"
	"pantry/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd(connect connector) *cobra.Command {
	var opts seed.Options
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo users and recipes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			existing, err := repository.NewUserRepository(db).Count(cmd.Context())
			if err != nil {
				return err
			}
			if existing > 0 && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Database already has %d users; pass --force to seed anyway.\n", existing)
				return nil
			}

			sum, err := seed.New(db, cfg, opts).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d recipes, %d tags, %d ingredients\n",
				sum.Users, sum.Recipes, sum.Tags, sum.Ingredients)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", 3, "number of users")
	cmd.Flags().IntVar(&opts.RecipesPerUser, "recipes", 3, "recipes per user")
	cmd.Flags().IntVar(&opts.TagsPerUser, "tags", 4, "tags per user")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed; 0 picks one")
	cmd.Flags().BoolVar(&force, "force", false, "seed even when users already exist")
	return cmd
}
