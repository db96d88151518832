// Package pipeline provides the high-level orchestration for the content
// generation process: research, social search, distillation, composition.
// Stages run sequentially; each stage checks the session cache first and
// only calls its provider when the session has no stored output yet.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/content-agent/internal/compose"
	"github.com/jonathan/content-agent/internal/distill"
	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/observability"
	"github.com/jonathan/content-agent/internal/social"
	"github.com/jonathan/content-agent/internal/types"
)

// Store is the persistence surface the pipeline needs. *db.DB satisfies it.
type Store interface {
	CreateSession(ctx context.Context, name, topic, productName, productDescription string) (*types.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error)
	GetLatestSession(ctx context.Context) (*types.Session, error)

	SaveResearchResults(ctx context.Context, sessionID uuid.UUID, records []types.ResearchRecord, rawResponse string) error
	GetResearchResults(ctx context.Context, sessionID uuid.UUID) ([]types.ResearchRecord, error)
	HasResearchResults(ctx context.Context, sessionID uuid.UUID) (bool, error)

	SaveSocialResults(ctx context.Context, sessionID uuid.UUID, records []types.SocialRecord, rawResponse string) error
	GetSocialResults(ctx context.Context, sessionID uuid.UUID) ([]types.SocialRecord, error)
	HasSocialResults(ctx context.Context, sessionID uuid.UUID) (bool, error)

	SaveDistillation(ctx context.Context, sessionID uuid.UUID, d *types.Distillation) error
	GetLatestDistillation(ctx context.Context, sessionID uuid.UUID) (*types.Distillation, error)
	HasDistillation(ctx context.Context, sessionID uuid.UUID) (bool, error)

	SaveComposedPosts(ctx context.Context, sessionID uuid.UUID, posts []types.ComposedPost) error
	GetComposedPosts(ctx context.Context, sessionID uuid.UUID) ([]types.ComposedPost, error)
	HasComposedPosts(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// Researcher is the web-research provider surface.
type Researcher interface {
	Search(ctx context.Context, topic string) ([]types.ResearchRecord, string, error)
}

// SocialSearcher is the social-post-search provider surface.
type SocialSearcher interface {
	SearchPosts(ctx context.Context, query string, count int, searchType string) ([]types.SocialRecord, string, error)
}

// TopicDistiller condenses gathered records into topics and talking points.
type TopicDistiller interface {
	Distill(ctx context.Context, session *types.Session, sources []distill.Source, features string) (*types.Distillation, error)
}

// PostComposer writes one post per distilled topic.
type PostComposer interface {
	ComposeAll(ctx context.Context, session *types.Session, dist *types.Distillation, features string) []types.ComposedPost
}

// RunOptions holds configuration for one pipeline run.
type RunOptions struct {
	Topic              string
	Query              string // social search query; defaults to Topic
	SessionName        string
	ProductName        string
	ProductDescription string
	Features           string

	// Session selection. SessionID pins an exact session; ReuseLatest
	// picks up the most recent one; ForceNewSession always creates a
	// fresh session even when an older one could be reused.
	SessionID       uuid.UUID
	ReuseLatest     bool
	ForceNewSession bool

	SkipResearch bool
	SkipSocial   bool

	Verbose bool
}

// Result collects everything a run produced or loaded from cache.
type Result struct {
	Session         *types.Session
	ResearchRecords []types.ResearchRecord
	SocialRecords   []types.SocialRecord
	Distillation    *types.Distillation
	Posts           []types.ComposedPost
}

// Pipeline wires the stages together over a shared session store.
type Pipeline struct {
	store     Store
	research  Researcher
	social    SocialSearcher
	distiller TopicDistiller
	composer  PostComposer
	printer   *observability.Printer
}

func New(store Store, research Researcher, socialSearch SocialSearcher, distiller TopicDistiller, composer PostComposer) *Pipeline {
	return &Pipeline{
		store:     store,
		research:  research,
		social:    socialSearch,
		distiller: distiller,
		composer:  composer,
		printer:   observability.NewPrinter(os.Stdout),
	}
}

// Run executes the pipeline for one session. Provider failures in the
// gathering stages are logged and downgraded to empty record sets; only
// storage failures and session resolution failures abort the run.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	session, err := p.resolveSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		p.printer.PrintSession(session)
	}

	result := &Result{Session: session}

	if result.ResearchRecords, err = p.researchStage(ctx, session, opts); err != nil {
		return nil, err
	}
	if result.SocialRecords, err = p.socialStage(ctx, session, opts); err != nil {
		return nil, err
	}

	if result.Distillation, err = p.distillStage(ctx, session, result, opts); err != nil {
		return nil, err
	}
	if result.Distillation.Empty() {
		logger.InfoWithFields("distillation produced no topics, skipping composition", logger.Fields{
			"session_id": session.ID.String(),
		})
		return result, nil
	}
	if opts.Verbose {
		p.printer.PrintDistillation(result.Distillation)
	}

	if result.Posts, err = p.composeStage(ctx, session, result.Distillation, opts); err != nil {
		return nil, err
	}
	if opts.Verbose {
		p.printer.PrintComposedPosts(result.Posts)
	}

	return result, nil
}

// resolveSession picks the session this run operates under.
func (p *Pipeline) resolveSession(ctx context.Context, opts RunOptions) (*types.Session, error) {
	if opts.SessionID != uuid.Nil {
		session, err := p.store.GetSession(ctx, opts.SessionID)
		if err != nil {
			return nil, fmt.Errorf("loading session %s: %w", opts.SessionID, err)
		}
		if session == nil {
			return nil, fmt.Errorf("session %s not found", opts.SessionID)
		}
		return session, nil
	}

	if opts.ReuseLatest && !opts.ForceNewSession {
		session, err := p.store.GetLatestSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading latest session: %w", err)
		}
		if session != nil {
			logger.InfoWithFields("reusing latest session", logger.Fields{
				"session_id": session.ID.String(),
				"name":       session.Name,
			})
			return session, nil
		}
	}

	name := opts.SessionName
	if name == "" {
		name = fmt.Sprintf("session-%s", time.Now().UTC().Format("20060102-150405"))
	}
	session, err := p.store.CreateSession(ctx, name, opts.Topic, opts.ProductName, opts.ProductDescription)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	logger.InfoWithFields("created session", logger.Fields{
		"session_id": session.ID.String(),
		"name":       session.Name,
	})
	return session, nil
}

func (p *Pipeline) researchStage(ctx context.Context, session *types.Session, opts RunOptions) ([]types.ResearchRecord, error) {
	if opts.SkipResearch {
		logger.Log.Info("research stage skipped by flag")
		return nil, nil
	}

	cached, err := p.store.HasResearchResults(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("checking cached research: %w", err)
	}
	if cached {
		logger.Log.Info("reusing cached research results")
		return p.store.GetResearchResults(ctx, session.ID)
	}

	fmt.Printf("Stage 1/4: Researching topic: %s...\n", session.Topic)
	records, raw, err := p.research.Search(ctx, session.Topic)
	if err != nil {
		logger.ErrorWithFields("research provider failed, continuing with no records", logger.Fields{
			"error": err.Error(),
		})
		return nil, nil
	}
	if err := p.store.SaveResearchResults(ctx, session.ID, records, raw); err != nil {
		return nil, fmt.Errorf("saving research results: %w", err)
	}
	if opts.Verbose {
		p.printer.PrintResearchRecords(records)
	}
	return records, nil
}

func (p *Pipeline) socialStage(ctx context.Context, session *types.Session, opts RunOptions) ([]types.SocialRecord, error) {
	if opts.SkipSocial {
		logger.Log.Info("social stage skipped by flag")
		return nil, nil
	}

	cached, err := p.store.HasSocialResults(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("checking cached social results: %w", err)
	}
	if cached {
		logger.Log.Info("reusing cached social results")
		return p.store.GetSocialResults(ctx, session.ID)
	}

	query := opts.Query
	if query == "" {
		query = session.Topic
	}
	fmt.Printf("Stage 2/4: Searching posts: %s...\n", query)
	records, raw, err := p.social.SearchPosts(ctx, query, social.DefaultCount, social.DefaultSearchType)
	if err != nil {
		logger.ErrorWithFields("social provider failed, continuing with no records", logger.Fields{
			"error": err.Error(),
		})
		return nil, nil
	}
	if err := p.store.SaveSocialResults(ctx, session.ID, records, raw); err != nil {
		return nil, fmt.Errorf("saving social results: %w", err)
	}
	if opts.Verbose {
		p.printer.PrintSocialRecords(records)
	}
	return records, nil
}

func (p *Pipeline) distillStage(ctx context.Context, session *types.Session, result *Result, opts RunOptions) (*types.Distillation, error) {
	cached, err := p.store.HasDistillation(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("checking cached distillation: %w", err)
	}
	if cached {
		logger.Log.Info("reusing cached distillation")
		return p.store.GetLatestDistillation(ctx, session.ID)
	}

	sources := combineSources(result.ResearchRecords, result.SocialRecords)
	if len(sources) == 0 {
		logger.Log.Warn("no records gathered, nothing to distill")
		return &types.Distillation{SessionID: session.ID}, nil
	}

	fmt.Printf("Stage 3/4: Distilling %d records...\n", len(sources))
	dist, err := p.distiller.Distill(ctx, session, sources, opts.Features)
	if err != nil {
		logger.ErrorWithFields("distiller failed, continuing with empty distillation", logger.Fields{
			"error": err.Error(),
		})
		return &types.Distillation{SessionID: session.ID}, nil
	}
	if err := p.store.SaveDistillation(ctx, session.ID, dist); err != nil {
		return nil, fmt.Errorf("saving distillation: %w", err)
	}
	return dist, nil
}

func (p *Pipeline) composeStage(ctx context.Context, session *types.Session, dist *types.Distillation, opts RunOptions) ([]types.ComposedPost, error) {
	cached, err := p.store.HasComposedPosts(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("checking cached posts: %w", err)
	}
	if cached {
		logger.Log.Info("reusing cached composed posts")
		return p.store.GetComposedPosts(ctx, session.ID)
	}

	fmt.Printf("Stage 4/4: Composing %d posts...\n", len(dist.Topics))
	posts := p.composer.ComposeAll(ctx, session, dist, opts.Features)
	for _, post := range posts {
		if compose.IsErrorPost(&post) {
			logger.WarnWithFields("post composition failed for topic", logger.Fields{
				"topic": post.Topic,
			})
		}
	}
	if err := p.store.SaveComposedPosts(ctx, session.ID, posts); err != nil {
		return nil, fmt.Errorf("saving composed posts: %w", err)
	}
	return posts, nil
}

// combineSources flattens research and social records into the shape the
// distiller prompts with.
func combineSources(research []types.ResearchRecord, posts []types.SocialRecord) []distill.Source {
	sources := make([]distill.Source, 0, len(research)+len(posts))
	for _, r := range research {
		sources = append(sources, distill.Source{URL: r.URL, Snippet: r.Snippet})
	}
	for _, s := range posts {
		sources = append(sources, distill.Source{URL: s.URL, Snippet: s.Snippet})
	}
	return sources
}
