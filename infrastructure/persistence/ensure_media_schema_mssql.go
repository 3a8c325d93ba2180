package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureMediaSchemaMSSQL creates dbo.media_items on SQL Server. JSON state lives in NVARCHAR(MAX) columns.
func EnsureMediaSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.media_items') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[media_items] (
        id NVARCHAR(64) NOT NULL PRIMARY KEY,
        owner_id NVARCHAR(128) NOT NULL,
        title NVARCHAR(100) NOT NULL,
        description NVARCHAR(MAX) NOT NULL DEFAULT '',
        source_ref NVARCHAR(1024) NOT NULL DEFAULT '',
        platforms NVARCHAR(MAX) NOT NULL DEFAULT '[]',
        privacy NVARCHAR(MAX) NOT NULL DEFAULT '{}',
        external_ids NVARCHAR(MAX) NOT NULL DEFAULT '{}',
        statuses NVARCHAR(MAX) NOT NULL DEFAULT '{}',
        history NVARCHAR(MAX) NOT NULL DEFAULT '[]',
        version BIGINT NOT NULL DEFAULT 0,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE INDEX IX_media_items_owner_created ON dbo.[media_items](owner_id, created_at);
END`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create media_items (mssql): %w", err)
	}
	return nil
}

// EnsureOAuthTokenSchemaMSSQL creates dbo.oauth_tokens keyed by (user_id, platform).
func EnsureOAuthTokenSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.oauth_tokens') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[oauth_tokens] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(16) NOT NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        refresh_token NVARCHAR(MAX) NOT NULL DEFAULT '',
        expires_at DATETIME2 NULL,
        scopes NVARCHAR(MAX) NOT NULL DEFAULT '',
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE UNIQUE INDEX UX_oauth_tokens_user_platform ON dbo.[oauth_tokens](user_id, platform);
END`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create oauth_tokens (mssql): %w", err)
	}
	return nil
}
