package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
	"github.com/jonathan/content-agent/internal/distill"
	"github.com/jonathan/content-agent/internal/types"
)

// fakeStore is an in-memory Store for orchestration tests.
type fakeStore struct {
	sessions      map[uuid.UUID]*types.Session
	latest        *types.Session
	research      map[uuid.UUID][]types.ResearchRecord
	social        map[uuid.UUID][]types.SocialRecord
	distillations map[uuid.UUID][]*types.Distillation
	posts         map[uuid.UUID][]types.ComposedPost
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:      map[uuid.UUID]*types.Session{},
		research:      map[uuid.UUID][]types.ResearchRecord{},
		social:        map[uuid.UUID][]types.SocialRecord{},
		distillations: map[uuid.UUID][]*types.Distillation{},
		posts:         map[uuid.UUID][]types.ComposedPost{},
	}
}

func (f *fakeStore) CreateSession(_ context.Context, name, topic, productName, productDescription string) (*types.Session, error) {
	s := &types.Session{
		ID:                 uuid.New(),
		Name:               name,
		Topic:              topic,
		ProductName:        productName,
		ProductDescription: productDescription,
	}
	f.sessions[s.ID] = s
	f.latest = s
	return s, nil
}

func (f *fakeStore) GetSession(_ context.Context, id uuid.UUID) (*types.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeStore) GetLatestSession(_ context.Context) (*types.Session, error) {
	return f.latest, nil
}

func (f *fakeStore) SaveResearchResults(_ context.Context, id uuid.UUID, records []types.ResearchRecord, _ string) error {
	f.research[id] = append(f.research[id], records...)
	return nil
}

func (f *fakeStore) GetResearchResults(_ context.Context, id uuid.UUID) ([]types.ResearchRecord, error) {
	return f.research[id], nil
}

func (f *fakeStore) HasResearchResults(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.research[id]
	return ok, nil
}

func (f *fakeStore) SaveSocialResults(_ context.Context, id uuid.UUID, records []types.SocialRecord, _ string) error {
	f.social[id] = append(f.social[id], records...)
	return nil
}

func (f *fakeStore) GetSocialResults(_ context.Context, id uuid.UUID) ([]types.SocialRecord, error) {
	return f.social[id], nil
}

func (f *fakeStore) HasSocialResults(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.social[id]
	return ok, nil
}

func (f *fakeStore) SaveDistillation(_ context.Context, id uuid.UUID, d *types.Distillation) error {
	f.distillations[id] = append(f.distillations[id], d)
	return nil
}

func (f *fakeStore) GetLatestDistillation(_ context.Context, id uuid.UUID) (*types.Distillation, error) {
	all := f.distillations[id]
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

func (f *fakeStore) HasDistillation(_ context.Context, id uuid.UUID) (bool, error) {
	return len(f.distillations[id]) > 0, nil
}

func (f *fakeStore) SaveComposedPosts(_ context.Context, id uuid.UUID, posts []types.ComposedPost) error {
	f.posts[id] = append(f.posts[id], posts...)
	return nil
}

func (f *fakeStore) GetComposedPosts(_ context.Context, id uuid.UUID) ([]types.ComposedPost, error) {
	return f.posts[id], nil
}

func (f *fakeStore) HasComposedPosts(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.posts[id]
	return ok, nil
}

type fakeResearcher struct {
	records []types.ResearchRecord
	err     error
	calls   int
}

func (f *fakeResearcher) Search(_ context.Context, _ string) ([]types.ResearchRecord, string, error) {
	f.calls++
	return f.records, `{"raw":"research"}`, f.err
}

type fakeSocial struct {
	records   []types.SocialRecord
	err       error
	calls     int
	lastQuery string
}

func (f *fakeSocial) SearchPosts(_ context.Context, query string, _ int, _ string) ([]types.SocialRecord, string, error) {
	f.calls++
	f.lastQuery = query
	return f.records, `{"raw":"social"}`, f.err
}

type fakeDistiller struct {
	dist    *types.Distillation
	err     error
	calls   int
	sources []distill.Source
}

func (f *fakeDistiller) Distill(_ context.Context, _ *types.Session, sources []distill.Source, _ string) (*types.Distillation, error) {
	f.calls++
	f.sources = sources
	return f.dist, f.err
}

type fakeComposer struct {
	calls int
}

func (f *fakeComposer) ComposeAll(_ context.Context, session *types.Session, dist *types.Distillation, _ string) []types.ComposedPost {
	f.calls++
	posts := make([]types.ComposedPost, 0, len(dist.Topics))
	for _, topic := range dist.Topics {
		posts = append(posts, types.ComposedPost{SessionID: session.ID, Topic: topic, Body: "post about " + topic})
	}
	return posts
}

func testFixtures() (*fakeStore, *fakeResearcher, *fakeSocial, *fakeDistiller, *fakeComposer) {
	store := newFakeStore()
	researcher := &fakeResearcher{records: []types.ResearchRecord{
		{URL: "https://example.com/a", Snippet: "finding a"},
	}}
	socialSearch := &fakeSocial{records: []types.SocialRecord{
		{URL: "https://twitter.com/u/status/1", Snippet: "post one", ScreenName: "u"},
		{URL: "https://twitter.com/v/status/2", Snippet: "post two", ScreenName: "v"},
	}}
	distiller := &fakeDistiller{dist: &types.Distillation{
		Topics:        []string{"latency", "sampling"},
		TalkingPoints: []string{"p99 matters"},
	}}
	return store, researcher, socialSearch, distiller, &fakeComposer{}
}

func TestRunFullPipeline(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	p := New(store, researcher, socialSearch, distiller, composer)

	result, err := p.Run(context.Background(), RunOptions{
		Topic:       "observability tooling",
		ProductName: "TraceLens",
	})
	require.NoError(t, err)

	assert.Equal(t, "observability tooling", result.Session.Topic)
	assert.Len(t, result.ResearchRecords, 1)
	assert.Len(t, result.SocialRecords, 2)
	assert.Len(t, result.Posts, 2)

	// Distiller saw research and social records flattened together.
	require.Len(t, distiller.sources, 3)
	assert.Equal(t, "https://example.com/a", distiller.sources[0].URL)
	assert.Equal(t, "post one", distiller.sources[1].Snippet)

	// Everything was persisted under the session.
	id := result.Session.ID
	assert.Len(t, store.research[id], 1)
	assert.Len(t, store.social[id], 2)
	assert.Len(t, store.distillations[id], 1)
	assert.Len(t, store.posts[id], 2)
}

func TestRerunReusesCachedStages(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	p := New(store, researcher, socialSearch, distiller, composer)

	first, err := p.Run(context.Background(), RunOptions{Topic: "t"})
	require.NoError(t, err)

	second, err := p.Run(context.Background(), RunOptions{SessionID: first.Session.ID})
	require.NoError(t, err)

	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, 1, researcher.calls)
	assert.Equal(t, 1, socialSearch.calls)
	assert.Equal(t, 1, distiller.calls)
	assert.Equal(t, 1, composer.calls)
	assert.Len(t, second.Posts, 2)
}

func TestResearchFailureDoesNotAbortRun(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	researcher.err = errors.New("upstream down")
	p := New(store, researcher, socialSearch, distiller, composer)

	result, err := p.Run(context.Background(), RunOptions{Topic: "t"})
	require.NoError(t, err)

	assert.Empty(t, result.ResearchRecords)
	assert.Len(t, result.SocialRecords, 2)
	// A failed stage is not persisted, so a re-run retries it.
	has, _ := store.HasResearchResults(context.Background(), result.Session.ID)
	assert.False(t, has)
	// Distiller still ran on the social records alone.
	assert.Len(t, distiller.sources, 2)
}

func TestEmptyDistillationSkipsComposition(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	distiller.dist = &types.Distillation{RawResponse: "nonsense reply"}
	p := New(store, researcher, socialSearch, distiller, composer)

	result, err := p.Run(context.Background(), RunOptions{Topic: "t"})
	require.NoError(t, err)

	assert.True(t, result.Distillation.Empty())
	assert.Empty(t, result.Posts)
	assert.Equal(t, 0, composer.calls)
	// The raw reply is still persisted for inspection.
	assert.Len(t, store.distillations[result.Session.ID], 1)
}

func TestNoRecordsMeansNothingToDistill(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	researcher.records = nil
	socialSearch.records = nil
	p := New(store, researcher, socialSearch, distiller, composer)

	result, err := p.Run(context.Background(), RunOptions{Topic: "t"})
	require.NoError(t, err)

	assert.Equal(t, 0, distiller.calls)
	assert.True(t, result.Distillation.Empty())
	assert.Equal(t, 0, composer.calls)
}

func TestSkipFlags(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	p := New(store, researcher, socialSearch, distiller, composer)

	result, err := p.Run(context.Background(), RunOptions{
		Topic:        "t",
		SkipResearch: true,
		SkipSocial:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, researcher.calls)
	assert.Equal(t, 0, socialSearch.calls)
	assert.True(t, result.Distillation.Empty())
}

func TestReuseLatestAndForceNew(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	p := New(store, researcher, socialSearch, distiller, composer)

	first, err := p.Run(context.Background(), RunOptions{Topic: "t"})
	require.NoError(t, err)

	reused, err := p.Run(context.Background(), RunOptions{Topic: "t", ReuseLatest: true})
	require.NoError(t, err)
	assert.Equal(t, first.Session.ID, reused.Session.ID)

	forced, err := p.Run(context.Background(), RunOptions{Topic: "t", ReuseLatest: true, ForceNewSession: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.Session.ID, forced.Session.ID)
}

func TestSocialQueryDefaultsToTopic(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	p := New(store, researcher, socialSearch, distiller, composer)

	_, err := p.Run(context.Background(), RunOptions{Topic: "observability tooling"})
	require.NoError(t, err)
	assert.Equal(t, "observability tooling", socialSearch.lastQuery)

	_, err = p.Run(context.Background(), RunOptions{Topic: "observability tooling", Query: "tracing rant", ForceNewSession: true})
	require.NoError(t, err)
	assert.Equal(t, "tracing rant", socialSearch.lastQuery)
}

func TestStageStatus(t *testing.T) {
	store, researcher, socialSearch, distiller, composer := testFixtures()
	p := New(store, researcher, socialSearch, distiller, composer)

	result, err := p.Run(context.Background(), RunOptions{Topic: "t"})
	require.NoError(t, err)

	status, err := StageStatus(context.Background(), store, result.Session.ID)
	require.NoError(t, err)
	for _, stage := range StageOrder {
		assert.True(t, status[stage], stage)
	}

	status, err = StageStatus(context.Background(), store, uuid.New())
	require.NoError(t, err)
	for _, stage := range StageOrder {
		assert.False(t, status[stage], stage)
	}
}
