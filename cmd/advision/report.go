package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/db"
	"github.com/jonathan/advision/internal/observability"
	"github.com/jonathan/advision/internal/rendering"
	"github.com/jonathan/advision/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportProjectID   string
	reportUserID      string
	reportDatabaseURL string
	reportOut         string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a project's campaign report to a file",
	Long: "Loads a project and its saved ad copies, keywords, audiences and brand styles and writes " +
		"the campaign report. An output path ending in .pdf is printed with headless Chrome; " +
		"anything else gets HTML.",
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportProjectID, "project-id", "p", "", "Project ID (required)")
	reportCmd.Flags().StringVarP(&reportUserID, "user-id", "u", "", "Owning user ID (required)")
	reportCmd.Flags().StringVar(&reportDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "campaign-report.html", "Output file (.html or .pdf)")

	_ = reportCmd.MarkFlagRequired("project-id")
	_ = reportCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	projectID, err := uuid.Parse(reportProjectID)
	if err != nil {
		return fmt.Errorf("invalid --project-id: %w", err)
	}
	userID, err := uuid.Parse(reportUserID)
	if err != nil {
		return fmt.Errorf("invalid --user-id: %w", err)
	}
	databaseURL, err := resolveDatabaseURL(reportDatabaseURL)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	data, err := report.NewAssembler(database, logger).Data(ctx, projectID, userID)
	if err != nil {
		return err
	}
	document, err := rendering.RenderReport(*data)
	if err != nil {
		return err
	}

	out := []byte(document)
	if strings.EqualFold(filepath.Ext(reportOut), ".pdf") {
		opts, err := pdfOptionsFromEnv()
		if err != nil {
			return err
		}
		if out, err = rendering.RenderPDF(ctx, document, opts); err != nil {
			return err
		}
	}

	if err := os.WriteFile(reportOut, out, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintReportSummary(data, reportOut)
	return nil
}
