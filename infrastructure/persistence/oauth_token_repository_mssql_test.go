package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"video-publisher/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthTokenRepositoryMSSQL_GetToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM dbo.[oauth_tokens] WHERE user_id=@p1 AND platform=@p2`)).
		WithArgs("alice", "DM").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "platform", "access_token", "refresh_token", "expires_at", "scopes", "created_at", "updated_at"}).
			AddRow(1, "alice", "DM", "acc", "ref", nil, "manage_videos", now, now))

	tok, err := NewOAuthTokenRepositoryMSSQL(db).GetToken(context.Background(), "alice", "DM")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Nil(t, tok.ExpiresAt)
	assert.Equal(t, "ref", tok.RefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOAuthTokenRepositoryMSSQL_GetToken_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`oauth_tokens`).WithArgs("bob", "DM").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tok, err := NewOAuthTokenRepositoryMSSQL(db).GetToken(context.Background(), "bob", "DM")
	require.NoError(t, err)
	assert.Nil(t, tok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOAuthTokenRepositoryMSSQL_UpsertToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`MERGE dbo\.\[oauth_tokens\] .* WHEN NOT MATCHED THEN`).
		WithArgs("alice", "DM", "acc", "ref", sqlmock.AnyArg(), "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tok := &model.OAuthToken{UserID: "alice", Platform: "DM", AccessToken: "acc", RefreshToken: "ref"}
	require.NoError(t, NewOAuthTokenRepositoryMSSQL(db).UpsertToken(context.Background(), tok))
	assert.False(t, tok.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOAuthTokenRepositoryMSSQL_DeleteToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM dbo.[oauth_tokens] WHERE user_id=@p1 AND platform=@p2`)).
		WithArgs("alice", "DM").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewOAuthTokenRepositoryMSSQL(db).DeleteToken(context.Background(), "alice", "DM"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureOAuthTokenSchemaMSSQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE UNIQUE INDEX UX_oauth_tokens_user_platform`)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, EnsureOAuthTokenSchemaMSSQL(db))
	require.NoError(t, mock.ExpectationsWereMet())
}
