package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/content-agent/internal/publish"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect drafts on the scheduling service",
}

var draftsScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "List recently scheduled drafts",
	RunE: func(_ *cobra.Command, _ []string) error {
		return listDrafts(func(ctx context.Context, client *publish.Client) ([]publish.Draft, error) {
			return client.RecentlyScheduled(ctx, draftsContentFilter)
		})
	},
}

var draftsPublishedCmd = &cobra.Command{
	Use:   "published",
	Short: "List recently published drafts",
	RunE: func(_ *cobra.Command, _ []string) error {
		return listDrafts(func(ctx context.Context, client *publish.Client) ([]publish.Draft, error) {
			return client.RecentlyPublished(ctx, draftsContentFilter)
		})
	},
}

var draftsContentFilter string

func init() {
	draftsCmd.PersistentFlags().StringVar(&draftsContentFilter, "content-filter", "", `Narrow to "threads" or "tweets"`)
	draftsCmd.AddCommand(draftsScheduledCmd, draftsPublishedCmd)
	rootCmd.AddCommand(draftsCmd)
}

func listDrafts(fetch func(context.Context, *publish.Client) ([]publish.Draft, error)) error {
	ctx := context.Background()

	apiKey := os.Getenv("TYPEFULLY_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("TYPEFULLY_API_KEY environment variable is required")
	}
	client, err := publish.NewClient(apiKey)
	if err != nil {
		return err
	}

	drafts, err := fetch(ctx, client)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTWEETS\tFIRST TWEET")
	for _, d := range drafts {
		text := d.TextFirstTweet
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", d.ID, d.Status, d.NumTweets, text)
	}
	return w.Flush()
}
