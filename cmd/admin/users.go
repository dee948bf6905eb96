package main

import (
	"fmt"

	"pantry/internal/repository"
	"pantry/internal/service"

	"github.com/spf13/cobra"
)

func newCreateUserCmd(connect connector) *cobra.Command {
	var in service.CreateUserInput

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account, optionally with staff access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, err := connect()
			if err != nil {
				return err
			}
			defer closeDB(db)

			users := service.NewUserService(repository.NewUserRepository(db), service.NewImageService(cfg))
			user, err := users.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (ID: %d, staff: %t)\n", user.Email, user.ID, user.IsStaff)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().BoolVar(&in.IsStaff, "staff", false, "grant staff access")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
