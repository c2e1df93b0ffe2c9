package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/advision/internal/config"
	"github.com/jonathan/advision/internal/rendering"
	"github.com/jonathan/advision/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the campaign REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	port := servePort
	if !cmd.Flags().Changed("port") {
		if v := os.Getenv("PORT"); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid PORT: %w", err)
			}
			port = p
		}
	}

	pdfOpts, err := pdfOptionsFromEnv()
	if err != nil {
		return err
	}

	cfg := server.Config{
		Port:               port,
		DatabaseURL:        databaseURL,
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		PDF:                pdfOpts,
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func pdfOptionsFromEnv() (rendering.PDFOptions, error) {
	timeout, err := config.DurationFromEnv("PDF_TIMEOUT", rendering.DefaultPDFTimeout)
	if err != nil {
		return rendering.PDFOptions{}, err
	}
	return rendering.PDFOptions{ExecPath: os.Getenv("CHROME_PATH"), Timeout: timeout}, nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
