package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"kodi-rentals/app/config"
	"kodi-rentals/app/database"
	"kodi-rentals/app/models"
	"kodi-rentals/app/routes/auth"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "add_user",
		Short: "Create a verified user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.user()
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Logging)

			db, err := config.InitDB(cfg.DB, logger)
			if err != nil {
				return err
			}
			defer config.CloseDB(db)

			if err := database.CreateUser(db, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User created successfully: %s (%s, %s)\n", user.FullName(), user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&opts.password, "password", "", "initial password, at least 8 characters (required)")
	cmd.Flags().StringVar(&opts.firstName, "first-name", "", "first name (required)")
	cmd.Flags().StringVar(&opts.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&opts.role, "role", string(models.RoleManager), "admin or manager; the first account is always admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("first-name")
	return cmd
}

func (o *options) user() (*models.User, error) {
	role := models.UserRole(strings.ToLower(o.role))
	if role != models.RoleAdmin && role != models.RoleManager {
		return nil, fmt.Errorf("unknown role %q", o.role)
	}
	if len(o.password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hashed, err := auth.HashPassword(o.password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:      o.email,
		Password:   hashed,
		FirstName:  o.firstName,
		LastName:   o.lastName,
		Role:       role,
		IsVerified: true,
	}, nil
}
