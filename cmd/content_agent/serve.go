package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/db"
	"github.com/jonathan/content-agent/internal/publish"
	"github.com/jonathan/content-agent/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard REST API",
	Long:  `Start an HTTP server that exposes the session cache (sessions, records, distillations, posts) and publishing endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	if err := database.InitSchema(ctx); err != nil {
		return err
	}

	// Publishing routes stay disabled when no credential is configured.
	var publisher server.Publisher
	if apiKey := os.Getenv("TYPEFULLY_API_KEY"); apiKey != "" {
		client, err := publish.NewClient(apiKey)
		if err != nil {
			return err
		}
		publisher = client
	}

	return server.New(database, publisher).Run(serveAddr)
}
