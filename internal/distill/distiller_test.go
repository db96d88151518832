package distill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/types"
)

type stubLLM struct {
	reply      string
	err        error
	lastPrompt string
}

func (s *stubLLM) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.lastPrompt = prompt
	return s.reply, s.err
}

func (s *stubLLM) GetModel(tier llm.ModelTier) string { return "stub-model" }
func (s *stubLLM) Close() error                       { return nil }

func testSession() *types.Session {
	return &types.Session{
		ID:                 uuid.New(),
		Topic:              "observability tooling",
		ProductName:        "TraceLens",
		ProductDescription: "distributed tracing for small teams",
	}
}

func TestDistillParsesFencedReply(t *testing.T) {
	reply := "```json\n{\"distilled_topics\": [\"x\"], \"talking_points\": [\"y\"]}\n```"
	client := &stubLLM{reply: reply}

	sess := testSession()
	dist, err := NewDistiller(client).Distill(context.Background(), sess, nil, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, dist.Topics)
	assert.Equal(t, []string{"y"}, dist.TalkingPoints)
	assert.Equal(t, reply, dist.RawResponse)
	assert.Equal(t, sess.ID, dist.SessionID)
	assert.False(t, dist.Empty())
}

func TestDistillNonJSONReplyYieldsEmptyResult(t *testing.T) {
	client := &stubLLM{reply: "I could not find anything relevant."}

	dist, err := NewDistiller(client).Distill(context.Background(), testSession(), nil, "")
	require.NoError(t, err)

	assert.True(t, dist.Empty())
	assert.Equal(t, "I could not find anything relevant.", dist.RawResponse)
}

func TestDistillSchemaViolationYieldsEmptyResult(t *testing.T) {
	client := &stubLLM{reply: `{"distilled_topics": "not-a-list", "talking_points": []}`}

	dist, err := NewDistiller(client).Distill(context.Background(), testSession(), nil, "")
	require.NoError(t, err)
	assert.True(t, dist.Empty())
	assert.NotEmpty(t, dist.RawResponse)
}

func TestDistillMissingRequiredFieldYieldsEmptyResult(t *testing.T) {
	client := &stubLLM{reply: `{"distilled_topics": ["x"]}`}

	dist, err := NewDistiller(client).Distill(context.Background(), testSession(), nil, "")
	require.NoError(t, err)
	assert.True(t, dist.Empty())
}

func TestDistillTransportErrorPropagates(t *testing.T) {
	client := &stubLLM{err: errors.New("connection refused")}

	_, err := NewDistiller(client).Distill(context.Background(), testSession(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "distillation request")
}

func TestDistillPromptCarriesSessionAndSources(t *testing.T) {
	client := &stubLLM{reply: `{"distilled_topics": [], "talking_points": []}`}

	sources := []Source{
		{URL: "https://example.com/a", Snippet: "first finding"},
		{URL: "https://example.com/b", Snippet: "second finding"},
	}
	_, err := NewDistiller(client).Distill(context.Background(), testSession(), sources, "fast setup")
	require.NoError(t, err)

	assert.Contains(t, client.lastPrompt, "observability tooling")
	assert.Contains(t, client.lastPrompt, "TraceLens")
	assert.Contains(t, client.lastPrompt, "https://example.com/a")
	assert.Contains(t, client.lastPrompt, "second finding")
	assert.Contains(t, client.lastPrompt, "fast setup")
	assert.NotContains(t, client.lastPrompt, "{{")
}
