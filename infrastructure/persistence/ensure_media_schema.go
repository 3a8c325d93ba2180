package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"video-publisher/infrastructure/logger"
)

// EnsureMediaSchema creates the media_items table if not exists
func EnsureMediaSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS media_items (
        id TEXT PRIMARY KEY,
        owner_id TEXT NOT NULL,
        title VARCHAR(100) NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        source_ref TEXT NOT NULL DEFAULT '',
        platforms JSONB NOT NULL DEFAULT '[]',
        privacy JSONB NOT NULL DEFAULT '{}',
        external_ids JSONB NOT NULL DEFAULT '{}',
        statuses JSONB NOT NULL DEFAULT '{}',
        history JSONB NOT NULL DEFAULT '[]',
        version BIGINT NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create media_items table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_media_items_owner_created ON media_items(owner_id, created_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_media_items_owner_created")
	}
	return nil
}

// EnsureOAuthTokenSchema creates the oauth_tokens table keyed by (user_id, platform)
func EnsureOAuthTokenSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS oauth_tokens (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL,
        platform TEXT NOT NULL,
        access_token TEXT NOT NULL,
        refresh_token TEXT NOT NULL DEFAULT '',
        expires_at TIMESTAMPTZ NULL,
        scopes TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        UNIQUE (user_id, platform)
    )`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create oauth_tokens table: %w", err)
	}
	return nil
}
