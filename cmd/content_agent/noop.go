package main

import (
	"context"

	"github.com/jonathan/content-agent/internal/types"
)

// noopResearcher stands in for the research client when the stage is
// skipped by flag. The pipeline never calls it in that case.
type noopResearcher struct{}

func (noopResearcher) Search(context.Context, string) ([]types.ResearchRecord, string, error) {
	return nil, "", nil
}

type noopSocialSearcher struct{}

func (noopSocialSearcher) SearchPosts(context.Context, string, int, string) ([]types.SocialRecord, string, error) {
	return nil, "", nil
}
