package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/advision/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateDatabaseURL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	databaseURL, err := resolveDatabaseURL(migrateDatabaseURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("schema applied")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

func resolveDatabaseURL(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v, nil
	}
	logger.Debug("no database url", zap.String("env", "DATABASE_URL"))
	return "", fmt.Errorf("--db-url or DATABASE_URL is required")
}
