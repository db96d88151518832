package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Stage names, in execution order.
const (
	StageResearch = "research"
	StageSocial   = "social"
	StageDistill  = "distill"
	StageCompose  = "compose"
)

// StageOrder lists the stages in the order the pipeline runs them.
var StageOrder = []string{StageResearch, StageSocial, StageDistill, StageCompose}

// StageStatus reports which stages already have cached output for a
// session. A stage with cached output is skipped on re-runs of the
// same session.
func StageStatus(ctx context.Context, store Store, sessionID uuid.UUID) (map[string]bool, error) {
	checks := map[string]func(context.Context, uuid.UUID) (bool, error){
		StageResearch: store.HasResearchResults,
		StageSocial:   store.HasSocialResults,
		StageDistill:  store.HasDistillation,
		StageCompose:  store.HasComposedPosts,
	}

	status := make(map[string]bool, len(StageOrder))
	for _, stage := range StageOrder {
		done, err := checks[stage](ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("checking stage %s: %w", stage, err)
		}
		status[stage] = done
	}
	return status, nil
}
