package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/content-agent/internal/types"
)

// CreateSession inserts a new session and returns it with the generated ID.
func (db *DB) CreateSession(ctx context.Context, name, topic, productName, productDescription string) (*types.Session, error) {
	var s types.Session
	err := db.pool.QueryRow(ctx,
		`INSERT INTO sessions (session_name, topic, product_name, product_description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, session_name, topic, product_name, product_description, created_at`,
		name, topic, productName, productDescription,
	).Scan(&s.ID, &s.Name, &s.Topic, &s.ProductName, &s.ProductDescription, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &s, nil
}

// GetSession retrieves a session by ID. Returns nil without error when the
// session does not exist.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	var s types.Session
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_name, topic, product_name, product_description, created_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &s.Topic, &s.ProductName, &s.ProductDescription, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// GetLatestSession retrieves the most recently created session, or nil when
// no sessions exist yet.
func (db *DB) GetLatestSession(ctx context.Context) (*types.Session, error) {
	var s types.Session
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_name, topic, product_name, product_description, created_at
		 FROM sessions ORDER BY created_at DESC LIMIT 1`,
	).Scan(&s.ID, &s.Name, &s.Topic, &s.ProductName, &s.ProductDescription, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}
	return &s, nil
}

// ListSessions retrieves sessions newest-first.
func (db *DB) ListSessions(ctx context.Context, limit int) ([]types.Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, session_name, topic, product_name, product_description, created_at
		 FROM sessions ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.Session
	for rows.Next() {
		var s types.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.Topic, &s.ProductName, &s.ProductDescription, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// DeleteSession removes a session and all its records (via cascade). This is
// the only way session data is ever removed.
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}
