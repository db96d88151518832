// Package compose generates one social post per distilled topic using
// the advanced-tier model.
package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/prompts"
	"github.com/jonathan/content-agent/internal/types"
)

// ErrorSentinelPrefix marks a post whose generation failed. The failure
// is recorded in the post body itself so a re-run of the same session
// still sees a complete post set, and the dashboard can surface which
// topics need another pass.
const ErrorSentinelPrefix = "#Error:"

// Composer drives the composition stage.
type Composer struct {
	client llm.Client
}

func NewComposer(client llm.Client) *Composer {
	return &Composer{client: client}
}

// ComposeAll writes one post for every distilled topic. Generation
// failures do not abort the batch: the affected topic gets a sentinel
// body and the remaining topics are still composed.
func (c *Composer) ComposeAll(ctx context.Context, session *types.Session, dist *types.Distillation, features string) []types.ComposedPost {
	posts := make([]types.ComposedPost, 0, len(dist.Topics))
	for _, topic := range dist.Topics {
		posts = append(posts, c.compose(ctx, session, topic, dist.TalkingPoints, features))
	}
	return posts
}

func (c *Composer) compose(ctx context.Context, session *types.Session, topic string, talkingPoints []string, features string) types.ComposedPost {
	prompt := buildPrompt(session, topic, talkingPoints, features)

	reply, err := c.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		logger.ErrorWithFields("composing post failed", logger.Fields{
			"topic": topic,
			"error": err.Error(),
		})
		return types.ComposedPost{
			SessionID: session.ID,
			Topic:     topic,
			Body:      fmt.Sprintf("%s %v", ErrorSentinelPrefix, err),
		}
	}

	return types.ComposedPost{
		SessionID:   session.ID,
		Topic:       topic,
		Body:        strings.TrimSpace(reply),
		RawResponse: reply,
	}
}

// IsErrorPost reports whether a stored post carries the failure
// sentinel instead of generated content.
func IsErrorPost(p *types.ComposedPost) bool {
	return strings.HasPrefix(p.Body, ErrorSentinelPrefix)
}

func buildPrompt(session *types.Session, topic string, talkingPoints []string, features string) string {
	var points strings.Builder
	for _, tp := range talkingPoints {
		fmt.Fprintf(&points, "- %s\n", tp)
	}

	featuresBlock := ""
	if features != "" {
		featuresBlock = prompts.Format(prompts.MustGet("distill", "features"), map[string]string{
			"features": features,
		})
	}

	return prompts.Format(prompts.MustGet("compose", "compose"), map[string]string{
		"product_name":        session.ProductName,
		"product_description": session.ProductDescription,
		"features":            featuresBlock,
		"topic":               topic,
		"talking_points":      points.String(),
	})
}
