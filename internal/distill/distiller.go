// Package distill turns the combined research and social records for a
// session into a set of marketing topics and supporting talking points,
// using the standard-tier model.
package distill

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/prompts"
	"github.com/jonathan/content-agent/internal/schemas"
	"github.com/jonathan/content-agent/internal/types"
)

// Source is one url/snippet pair fed to the distiller. Research and
// social records are both reduced to this shape before prompting.
type Source struct {
	URL     string
	Snippet string
}

// Distiller drives the distillation stage.
type Distiller struct {
	client llm.Client
}

func NewDistiller(client llm.Client) *Distiller {
	return &Distiller{client: client}
}

// Distill asks the model to condense the gathered sources into topics
// and talking points for the session's product.
//
// A transport failure is returned to the caller. A reply the model got
// wrong, on the other hand, is not an error: the raw reply is kept on
// an otherwise empty Distillation so the run can be inspected later.
func (d *Distiller) Distill(ctx context.Context, session *types.Session, sources []Source, features string) (*types.Distillation, error) {
	prompt := buildPrompt(session, sources, features)

	reply, err := d.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("distillation request: %w", err)
	}

	dist := parseReply(reply)
	dist.SessionID = session.ID
	return dist, nil
}

// parseReply recovers the structured result from a model reply. Every
// failure mode collapses to an empty distillation carrying the raw
// reply; parse problems never propagate as errors.
func parseReply(reply string) *types.Distillation {
	empty := &types.Distillation{RawResponse: reply}

	doc, ok := ExtractJSONObject(reply)
	if !ok {
		logger.WarnWithFields("no JSON object in distillation reply", logger.Fields{
			"reply_snippet": snippet(reply, 200),
		})
		return empty
	}

	if err := schemas.ValidateDistillation([]byte(doc)); err != nil {
		logger.WarnWithFields("distillation reply failed schema validation", logger.Fields{
			"error": err.Error(),
		})
		return empty
	}

	var result struct {
		Topics        []string `json:"distilled_topics"`
		TalkingPoints []string `json:"talking_points"`
	}
	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		logger.WarnWithFields("unmarshaling distillation reply", logger.Fields{
			"error": err.Error(),
		})
		return empty
	}

	return &types.Distillation{
		Topics:        result.Topics,
		TalkingPoints: result.TalkingPoints,
		RawResponse:   reply,
	}
}

func buildPrompt(session *types.Session, sources []Source, features string) string {
	var records strings.Builder
	for _, s := range sources {
		fmt.Fprintf(&records, "- url: %s\n  snippet: %s\n", s.URL, s.Snippet)
	}

	featuresBlock := ""
	if features != "" {
		featuresBlock = prompts.Format(prompts.MustGet("distill", "features"), map[string]string{
			"features": features,
		})
	}

	return prompts.Format(prompts.MustGet("distill", "distill"), map[string]string{
		"topic":               session.Topic,
		"product_name":        session.ProductName,
		"product_description": session.ProductDescription,
		"features":            featuresBlock,
		"records":             records.String(),
	})
}

func snippet(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
