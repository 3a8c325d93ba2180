package persistence

import (
	"context"
	"database/sql"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
)

const mediaValuesMSSQL = `@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9,@p10,@p11,@p12,@p13`

// MediaRepositoryMSSQL stores media items in SQL Server with JSON kept in NVARCHAR(MAX) columns.
type MediaRepositoryMSSQL struct {
	db *sql.DB
}

func NewMediaRepositoryMSSQL(db *sql.DB) *MediaRepositoryMSSQL {
	return &MediaRepositoryMSSQL{db: db}
}

var _ repository.IMedia = (*MediaRepositoryMSSQL)(nil)

func (r *MediaRepositoryMSSQL) Create(ctx context.Context, item *model.MediaItem) error {
	args, err := mediaArgsMSSQL(item)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO dbo.[media_items] (`+mediaColumns+`) VALUES (`+mediaValuesMSSQL+`)`, args...)
	return err
}

func (r *MediaRepositoryMSSQL) Load(ctx context.Context, id string) (*model.MediaItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM dbo.[media_items] WHERE id=@p1`, id)
	return scanMedia(row)
}

// Save upserts the whole item.
func (r *MediaRepositoryMSSQL) Save(ctx context.Context, item *model.MediaItem) error {
	args, err := mediaArgsMSSQL(item)
	if err != nil {
		return err
	}
	q := `MERGE dbo.[media_items] WITH (HOLDLOCK) AS target
USING (VALUES (@p1)) AS src(id)
ON target.id = src.id
WHEN MATCHED THEN UPDATE SET
    title=@p3,
    description=@p4,
    source_ref=@p5,
    platforms=@p6,
    privacy=@p7,
    external_ids=@p8,
    statuses=@p9,
    history=@p10,
    version=target.version + 1,
    updated_at=@p13
WHEN NOT MATCHED THEN
    INSERT (` + mediaColumns + `) VALUES (` + mediaValuesMSSQL + `);`
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

// Update holds an update lock on the row for the whole read-modify-write.
func (r *MediaRepositoryMSSQL) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*model.MediaItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var item *model.MediaItem
	item, err = scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM dbo.[media_items] WITH (UPDLOCK, ROWLOCK) WHERE id=@p1`, id))
	if err != nil {
		return nil, err
	}
	if err = mutate(item); err != nil {
		return nil, err
	}
	item.Version++
	var args []interface{}
	if args, err = mediaArgsMSSQL(item); err != nil {
		return nil, err
	}
	q := `UPDATE dbo.[media_items] SET owner_id=@p2, title=@p3, description=@p4, source_ref=@p5, platforms=@p6, privacy=@p7,
    external_ids=@p8, statuses=@p9, history=@p10, version=@p11, created_at=@p12, updated_at=@p13 WHERE id=@p1`
	if _, err = tx.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *MediaRepositoryMSSQL) List(ctx context.Context, ownerID string) ([]*model.MediaItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM dbo.[media_items] WHERE (@p1 = '' OR owner_id = @p1) ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMediaRows(rows)
}

// ListPending expands the platforms array with OPENJSON and looks each status up by code.
func (r *MediaRepositoryMSSQL) ListPending(ctx context.Context, ownerID string, limit int) ([]*model.MediaItem, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT TOP (@p2) ` + mediaColumns + ` FROM dbo.[media_items] m
WHERE (@p1 = '' OR m.owner_id = @p1)
  AND EXISTS (
    SELECT 1 FROM OPENJSON(m.platforms) p
    WHERE COALESCE(JSON_VALUE(m.statuses, CONCAT('$.', p.[value])), 'pending') NOT IN ('uploaded', 'exists')
  )
ORDER BY m.created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMediaRows(rows)
}

// mediaArgsMSSQL sends the JSON columns as strings; []byte would bind as VARBINARY.
func mediaArgsMSSQL(item *model.MediaItem) ([]interface{}, error) {
	args, err := mediaArgs(item)
	if err != nil {
		return nil, err
	}
	for i, a := range args {
		if b, ok := a.([]byte); ok {
			args[i] = string(b)
		}
	}
	return args, nil
}
