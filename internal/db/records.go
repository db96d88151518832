package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/content-agent/internal/types"
)

// SaveResearchResults appends normalized research records for a session.
// rawResponse is the opaque provider payload shared by the whole batch.
func (db *DB) SaveResearchResults(ctx context.Context, sessionID uuid.UUID, records []types.ResearchRecord, rawResponse string) error {
	for _, rec := range records {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO search_results (session_id, url, snippet, raw_response)
			 VALUES ($1, $2, $3, $4)`,
			sessionID, rec.URL, rec.Snippet, rawResponse,
		)
		if err != nil {
			return fmt.Errorf("failed to save research result: %w", err)
		}
	}
	return nil
}

// GetResearchResults retrieves research records for a session in insertion
// order.
func (db *DB) GetResearchResults(ctx context.Context, sessionID uuid.UUID) ([]types.ResearchRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, url, snippet, raw_response, created_at
		 FROM search_results WHERE session_id = $1 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get research results: %w", err)
	}
	defer rows.Close()

	var records []types.ResearchRecord
	for rows.Next() {
		var rec types.ResearchRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.URL, &rec.Snippet, &rec.RawResponse, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan research result: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// HasResearchResults reports whether at least one research row exists for the
// session, regardless of content.
func (db *DB) HasResearchResults(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return db.hasRows(ctx, "search_results", sessionID)
}

// SaveSocialResults appends normalized social records for a session.
func (db *DB) SaveSocialResults(ctx context.Context, sessionID uuid.UUID, records []types.SocialRecord, rawResponse string) error {
	for _, rec := range records {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO social_results
			 (session_id, url, snippet, screen_name, followers_count,
			  favorite_count, quote_count, reply_count, retweet_count, posted_at, raw_response)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			sessionID, rec.URL, rec.Snippet, rec.ScreenName, rec.FollowersCount,
			rec.FavoriteCount, rec.QuoteCount, rec.ReplyCount, rec.RetweetCount,
			rec.PostedAt, rawResponse,
		)
		if err != nil {
			return fmt.Errorf("failed to save social result: %w", err)
		}
	}
	return nil
}

// GetSocialResults retrieves social records for a session in insertion order.
func (db *DB) GetSocialResults(ctx context.Context, sessionID uuid.UUID) ([]types.SocialRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, url, snippet, screen_name, followers_count,
		        favorite_count, quote_count, reply_count, retweet_count, posted_at,
		        raw_response, created_at
		 FROM social_results WHERE session_id = $1 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get social results: %w", err)
	}
	defer rows.Close()

	var records []types.SocialRecord
	for rows.Next() {
		var rec types.SocialRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.URL, &rec.Snippet, &rec.ScreenName,
			&rec.FollowersCount, &rec.FavoriteCount, &rec.QuoteCount, &rec.ReplyCount,
			&rec.RetweetCount, &rec.PostedAt, &rec.RawResponse, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan social result: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// HasSocialResults reports whether at least one social row exists for the
// session.
func (db *DB) HasSocialResults(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return db.hasRows(ctx, "social_results", sessionID)
}
