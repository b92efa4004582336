package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"bendahara/internal/database"
	"bendahara/internal/models"
)

func seedCmd() *cobra.Command {
	var adminName, adminEmail, adminPassword string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert system categories and the first admin account",
		Long: `Insert the system categories whose code is missing. Existing rows are left alone.

With --admin-email and --admin-password, also create an admin account unless one exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			n, err := database.SeedSystemCategories(cmd.Context(), a.db.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "system categories inserted: %d\n", n)

			if adminEmail == "" {
				return nil
			}
			if len(adminPassword) < 8 {
				return fmt.Errorf("--admin-password must be at least 8 characters")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			created, err := database.SeedAdmin(cmd.Context(), a.db.DB(), &models.User{
				Name:     adminName,
				Email:    strings.ToLower(strings.TrimSpace(adminEmail)),
				Password: string(hash),
			})
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin created: %s\n", adminEmail)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "an admin already exists, skipped")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&adminName, "admin-name", "Administrator", "display name of the first admin")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "email of the first admin")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the first admin")

	return cmd
}
