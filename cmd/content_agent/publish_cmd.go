package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/compose"
	"github.com/jonathan/content-agent/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish <post-id>",
	Short: "Publish a composed post as a scheduling draft",
	Long: `Looks up a composed post in the session cache and creates a draft for it on the scheduling service.

By default the draft is left unscheduled; use --schedule to put it into the next free slot, or --schedule-date for an exact RFC 3339 time.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

var (
	publishThreadify    bool
	publishSplit        bool
	publishShare        bool
	publishSchedule     bool
	publishScheduleDate string
)

func init() {
	publishCmd.Flags().BoolVar(&publishThreadify, "threadify", false, "Let the service split long content into a thread")
	publishCmd.Flags().BoolVar(&publishSplit, "split", false, "Split long content into 280-char tweets locally before uploading")
	publishCmd.Flags().BoolVar(&publishShare, "share", false, "Request a share URL for the draft")
	publishCmd.Flags().BoolVar(&publishSchedule, "schedule", false, "Schedule into the next free slot")
	publishCmd.Flags().StringVar(&publishScheduleDate, "schedule-date", "", "Exact RFC 3339 time to schedule at")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	postID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid post id: %w", err)
	}

	apiKey := os.Getenv("TYPEFULLY_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("TYPEFULLY_API_KEY environment variable is required")
	}

	database, err := connectFromEnv(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	post, err := database.GetComposedPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %s not found", postID)
	}
	if compose.IsErrorPost(post) {
		return fmt.Errorf("post %s carries a composition failure and cannot be published", postID)
	}

	client, err := publish.NewClient(apiKey)
	if err != nil {
		return err
	}

	scheduleDate := publishScheduleDate
	if publishSchedule && scheduleDate == "" {
		scheduleDate = publish.NextFreeSlot
	}

	content := post.Body
	if publishSplit {
		content = publish.FormatThreadContent(publish.SplitLongContent(post.Body))
	}

	draft, err := client.CreateDraft(ctx, publish.DraftRequest{
		Content:      content,
		Threadify:    publishThreadify,
		Share:        publishShare,
		ScheduleDate: scheduleDate,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created draft %d (%s)\n", draft.ID, draft.Status)
	if draft.ShareURL != "" {
		fmt.Printf("Share URL: %s\n", draft.ShareURL)
	}
	return nil
}
