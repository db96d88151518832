package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/db"
	"github.com/jonathan/content-agent/internal/pipeline"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect cached pipeline sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and which stages have cached output",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and all its cached records",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsLimit int

func init() {
	sessionsListCmd.Flags().IntVar(&sessionsLimit, "limit", 50, "Maximum sessions to list")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func connectFromEnv(ctx context.Context) (*db.DB, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return db.Connect(ctx, databaseURL)
}

func runSessionsList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := connectFromEnv(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	sessions, err := database.ListSessions(ctx, sessionsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTOPIC\tCREATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Topic, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runSessionsShow(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}

	database, err := connectFromEnv(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	session, err := database.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %s not found", id)
	}

	stages, err := pipeline.StageStatus(ctx, database, id)
	if err != nil {
		return err
	}

	fmt.Printf("Session: %s (%s)\n", session.Name, session.ID)
	fmt.Printf("Topic:   %s\n", session.Topic)
	fmt.Printf("Product: %s\n", session.ProductName)
	fmt.Printf("Created: %s\n\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	for _, stage := range pipeline.StageOrder {
		mark := " "
		if stages[stage] {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, stage)
	}
	return nil
}

func runSessionsDelete(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}

	database, err := connectFromEnv(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteSession(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted session %s\n", id)
	return nil
}
