package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/content-agent/internal/types"
)

// SaveDistillation appends a distillation row for a session. Older rows are
// kept; retrieval takes the newest.
func (db *DB) SaveDistillation(ctx context.Context, sessionID uuid.UUID, d *types.Distillation) error {
	topics, err := json.Marshal(d.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}
	points, err := json.Marshal(d.TalkingPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal talking points: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO distillations (session_id, distilled_topics, talking_points, raw_response)
		 VALUES ($1, $2, $3, $4)`,
		sessionID, topics, points, d.RawResponse,
	)
	if err != nil {
		return fmt.Errorf("failed to save distillation: %w", err)
	}
	return nil
}

// GetLatestDistillation retrieves the most recent distillation for a session.
// Returns nil without error when no distillation exists.
func (db *DB) GetLatestDistillation(ctx context.Context, sessionID uuid.UUID) (*types.Distillation, error) {
	var d types.Distillation
	var topics, points []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, distilled_topics, talking_points, raw_response, created_at
		 FROM distillations WHERE session_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		sessionID,
	).Scan(&d.ID, &d.SessionID, &topics, &points, &d.RawResponse, &d.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get distillation: %w", err)
	}

	if err := json.Unmarshal(topics, &d.Topics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
	}
	if err := json.Unmarshal(points, &d.TalkingPoints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal talking points: %w", err)
	}
	return &d, nil
}

// HasDistillation reports whether at least one distillation row exists for
// the session.
func (db *DB) HasDistillation(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return db.hasRows(ctx, "distillations", sessionID)
}

// SaveComposedPosts appends generated posts for a session.
func (db *DB) SaveComposedPosts(ctx context.Context, sessionID uuid.UUID, posts []types.ComposedPost) error {
	for _, post := range posts {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO composed_posts (session_id, topic, body, raw_response)
			 VALUES ($1, $2, $3, $4)`,
			sessionID, post.Topic, post.Body, post.RawResponse,
		)
		if err != nil {
			return fmt.Errorf("failed to save composed post: %w", err)
		}
	}
	return nil
}

// GetComposedPosts retrieves generated posts for a session in insertion
// order.
func (db *DB) GetComposedPosts(ctx context.Context, sessionID uuid.UUID) ([]types.ComposedPost, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, topic, body, raw_response, created_at
		 FROM composed_posts WHERE session_id = $1 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get composed posts: %w", err)
	}
	defer rows.Close()

	var posts []types.ComposedPost
	for rows.Next() {
		var post types.ComposedPost
		if err := rows.Scan(&post.ID, &post.SessionID, &post.Topic, &post.Body, &post.RawResponse, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan composed post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// GetComposedPost retrieves one generated post by ID. Returns nil without
// error when it does not exist.
func (db *DB) GetComposedPost(ctx context.Context, postID uuid.UUID) (*types.ComposedPost, error) {
	var post types.ComposedPost
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, topic, body, raw_response, created_at
		 FROM composed_posts WHERE id = $1`,
		postID,
	).Scan(&post.ID, &post.SessionID, &post.Topic, &post.Body, &post.RawResponse, &post.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get composed post: %w", err)
	}
	return &post, nil
}

// HasComposedPosts reports whether at least one composed post exists for the
// session.
func (db *DB) HasComposedPosts(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return db.hasRows(ctx, "composed_posts", sessionID)
}
