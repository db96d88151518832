// Package main provides the entry point for the content agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "content_agent",
	Short: "Content generation pipeline CLI",
	Long:  "Content agent researches a topic across the web and social posts, distills the findings into marketing angles, composes posts, and optionally schedules them for publishing.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()
	logger.InitFromEnv("LOG_LEVEL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
