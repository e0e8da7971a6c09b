package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"oticas/internal/auth"
	apperrors "oticas/internal/errors"
	"oticas/internal/infrastructure/database"
)

var (
	adminEmail    string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Dashboard user management",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a dashboard user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := database.Open(ctx, cfg.Database, zapLogger)
		if err != nil {
			return err
		}
		defer db.Close()

		registrar, err := auth.NewAdminRegistrar(db, cfg.Auth, zapLogger)
		if err != nil {
			return err
		}

		id, err := registrar.CreateAdmin(ctx, adminEmail, adminPassword)
		if err != nil {
			if ve, ok := apperrors.IsValidationError(err); ok {
				for _, d := range ve.Details {
					fmt.Printf("  %s %s: %s\n", color.New(color.FgRed).Sprint("✗"), d.Field, d.Message)
				}
			}
			return err
		}

		fmt.Printf("%s admin %s created (id %d)\n", color.New(color.FgGreen).Sprint("✓"), adminEmail, id)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "login e-mail")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "login password (at least 8 characters)")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
