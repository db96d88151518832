// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/content-agent/internal/compose"
	"github.com/jonathan/content-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSession outputs the session the run is operating under.
func (p *Printer) PrintSession(session *types.Session) {
	if session == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session:  %s\n", session.Name))
	sb.WriteString(fmt.Sprintf("ID:       %s\n", session.ID))
	sb.WriteString(fmt.Sprintf("Topic:    %s\n", session.Topic))
	sb.WriteString(fmt.Sprintf("Product:  %s", session.ProductName))

	p.printBox("SESSION", sb.String())
}

// PrintResearchRecords outputs a summary of the gathered research records.
func (p *Printer) PrintResearchRecords(records []types.ResearchRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Gathered %d research records:\n\n", len(records)))

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		snippet := records[i].Snippet
		if len(snippet) > 50 {
			snippet = snippet[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", records[i].URL))
		sb.WriteString(fmt.Sprintf("  %s\n", snippet))
	}
	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more records", len(records)-maxItemsToShow))
	}

	p.printBox("RESEARCH RECORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSocialRecords outputs a summary of the gathered social posts.
func (p *Printer) PrintSocialRecords(records []types.SocialRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Gathered %d social posts:\n\n", len(records)))

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := records[i]
		snippet := rec.Snippet
		if len(snippet) > 45 {
			snippet = snippet[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("@%s (%d followers)\n", rec.ScreenName, rec.FollowersCount))
		sb.WriteString(fmt.Sprintf("  %s\n", snippet))
		sb.WriteString(fmt.Sprintf("  ♥%d ↻%d\n", rec.FavoriteCount, rec.RetweetCount))
	}
	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more posts", len(records)-maxItemsToShow))
	}

	p.printBox("SOCIAL POSTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDistillation outputs the distilled topics and talking points.
func (p *Printer) PrintDistillation(dist *types.Distillation) {
	if dist == nil || dist.Empty() {
		return
	}

	var sb strings.Builder
	sb.WriteString("Topics:\n")
	for _, topic := range dist.Topics {
		if len(topic) > 50 {
			topic = topic[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("  • %s\n", topic))
	}

	if len(dist.TalkingPoints) > 0 {
		sb.WriteString("\nTalking Points:\n")
		count := min(len(dist.TalkingPoints), maxItemsToShow)
		for i := 0; i < count; i++ {
			point := dist.TalkingPoints[i]
			if len(point) > 50 {
				point = point[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", point))
		}
		if len(dist.TalkingPoints) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(dist.TalkingPoints)-maxItemsToShow))
		}
	}

	p.printBox("DISTILLATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComposedPosts outputs the generated posts, flagging failed ones.
func (p *Printer) PrintComposedPosts(posts []types.ComposedPost) {
	if len(posts) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Composed %d posts:\n\n", len(posts)))

	for i, post := range posts {
		topic := post.Topic
		if len(topic) > 45 {
			topic = topic[:42] + "..."
		}
		body := post.Body
		if len(body) > 50 {
			body = body[:47] + "..."
		}
		marker := "•"
		if compose.IsErrorPost(&post) {
			marker = "⚠"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, topic))
		sb.WriteString(fmt.Sprintf("  %s\n", body))
		if i < len(posts)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("COMPOSED POSTS", strings.TrimSuffix(sb.String(), "\n"))
}
