package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GTDGit/bookstore_api/internal/config"
	"github.com/GTDGit/bookstore_api/internal/database"
	"github.com/GTDGit/bookstore_api/internal/repository"
	"github.com/GTDGit/bookstore_api/internal/service"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts (needs the database settings)",
	}
	cmd.AddCommand(adminCreateCmd())
	return cmd
}

func adminCreateCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account for the quote log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := database.Connect(ctx, &cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewAdminAuthService(repository.NewAdminUserRepository(db), cfg.JWTSecret)
			if err := svc.CreateAdmin(ctx, email, password, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}
