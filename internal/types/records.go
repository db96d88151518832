// Package types defines the shared domain types passed between pipeline stages.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies one pipeline run and is the unit of cache partitioning.
// Sessions are created once and never mutated.
type Session struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Topic              string    `json:"topic"`
	ProductName        string    `json:"product_name"`
	ProductDescription string    `json:"product_description"`
	CreatedAt          time.Time `json:"created_at"`
}

// ResearchRecord is one normalized hit from the web-research provider.
// URL may be a placeholder when the provider returned free text instead of
// discrete links. RawResponse is the opaque provider payload, stored for
// inspection and never reparsed.
type ResearchRecord struct {
	ID          uuid.UUID `json:"id,omitempty"`
	SessionID   uuid.UUID `json:"session_id,omitempty"`
	URL         string    `json:"url"`
	Snippet     string    `json:"snippet"`
	RawResponse string    `json:"raw_response,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// SocialRecord is one normalized hit from the social-search provider.
// PostedAt keeps the provider's native timestamp string; it is not reparsed
// at storage time.
type SocialRecord struct {
	ID             uuid.UUID `json:"id,omitempty"`
	SessionID      uuid.UUID `json:"session_id,omitempty"`
	URL            string    `json:"url"`
	Snippet        string    `json:"snippet"`
	ScreenName     string    `json:"screen_name"`
	FollowersCount int       `json:"followers_count"`
	FavoriteCount  int       `json:"favorite_count"`
	QuoteCount     int       `json:"quote_count"`
	ReplyCount     int       `json:"reply_count"`
	RetweetCount   int       `json:"retweet_count"`
	PostedAt       string    `json:"posted_at"`
	RawResponse    string    `json:"raw_response,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// Distillation is the output of the distiller stage: marketing topics and
// talking points extracted from the combined research records.
type Distillation struct {
	ID            uuid.UUID `json:"id,omitempty"`
	SessionID     uuid.UUID `json:"session_id,omitempty"`
	Topics        []string  `json:"distilled_topics"`
	TalkingPoints []string  `json:"talking_points"`
	RawResponse   string    `json:"raw_response,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Empty reports whether the distillation carries no usable topics.
func (d *Distillation) Empty() bool {
	return d == nil || len(d.Topics) == 0
}

// ComposedPost is one generated post tied to one distilled topic. Topic is a
// denormalized copy of the topic text, not a reference. Body may carry the
// composer's error sentinel when the upstream call failed.
type ComposedPost struct {
	ID          uuid.UUID `json:"id,omitempty"`
	SessionID   uuid.UUID `json:"session_id,omitempty"`
	Topic       string    `json:"topic"`
	Body        string    `json:"body"`
	RawResponse string    `json:"raw_response,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
