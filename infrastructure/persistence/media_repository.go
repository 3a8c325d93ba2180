package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"video-publisher/domain/model"
	"video-publisher/domain/repository"
)

const mediaColumns = `id, owner_id, title, description, source_ref, platforms, privacy, external_ids, statuses, history, version, created_at, updated_at`

// MediaRepository stores media items in PostgreSQL with JSONB state columns.
type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository { return &MediaRepository{db: db} }

var _ repository.IMedia = (*MediaRepository)(nil)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *MediaRepository) Create(ctx context.Context, item *model.MediaItem) error {
	args, err := mediaArgs(item)
	if err != nil {
		return err
	}
	q := `INSERT INTO media_items (` + mediaColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *MediaRepository) Load(ctx context.Context, id string) (*model.MediaItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id=$1`, id)
	return scanMedia(row)
}

// Save upserts the whole item.
func (r *MediaRepository) Save(ctx context.Context, item *model.MediaItem) error {
	args, err := mediaArgs(item)
	if err != nil {
		return err
	}
	q := `INSERT INTO media_items (` + mediaColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
          ON CONFLICT (id) DO UPDATE SET
            title=EXCLUDED.title,
            description=EXCLUDED.description,
            source_ref=EXCLUDED.source_ref,
            platforms=EXCLUDED.platforms,
            privacy=EXCLUDED.privacy,
            external_ids=EXCLUDED.external_ids,
            statuses=EXCLUDED.statuses,
            history=EXCLUDED.history,
            version=media_items.version + 1,
            updated_at=EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

// Update locks the row with SELECT ... FOR UPDATE so concurrent writers on one item are serialized.
func (r *MediaRepository) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*model.MediaItem, error) {
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
	item, err = scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err = mutate(item); err != nil {
		return nil, err
	}
	item.Version++
	var args []interface{}
	if args, err = mediaArgs(item); err != nil {
		return nil, err
	}
	q := `UPDATE media_items SET owner_id=$2, title=$3, description=$4, source_ref=$5, platforms=$6, privacy=$7,
          external_ids=$8, statuses=$9, history=$10, version=$11, created_at=$12, updated_at=$13 WHERE id=$1`
	if _, err = tx.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *MediaRepository) List(ctx context.Context, ownerID string) ([]*model.MediaItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE ($1 = '' OR owner_id = $1) ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMediaRows(rows)
}

// ListPending returns items with at least one target not yet uploaded or confirmed.
func (r *MediaRepository) ListPending(ctx context.Context, ownerID string, limit int) ([]*model.MediaItem, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + mediaColumns + ` FROM media_items m
          WHERE ($1 = '' OR m.owner_id = $1)
            AND EXISTS (
              SELECT 1 FROM jsonb_array_elements_text(m.platforms) AS p(code)
              WHERE COALESCE(m.statuses->>p.code, 'pending') NOT IN ('uploaded', 'exists')
            )
          ORDER BY m.created_at ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMediaRows(rows)
}

func scanMediaRows(rows *sql.Rows) ([]*model.MediaItem, error) {
	list := []*model.MediaItem{}
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanMedia(row rowScanner) (*model.MediaItem, error) {
	item := &model.MediaItem{}
	var platforms, privacy, externalIDs, statuses, history []byte
	err := row.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description, &item.SourceRef,
		&platforms, &privacy, &externalIDs, &statuses, &history,
		&item.Version, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrMediaNotFound
		}
		return nil, err
	}
	for _, col := range []struct {
		name string
		data []byte
		dst  interface{}
	}{
		{"platforms", platforms, &item.Platforms},
		{"privacy", privacy, &item.Privacy},
		{"external_ids", externalIDs, &item.ExternalIDs},
		{"statuses", statuses, &item.Statuses},
		{"history", history, &item.History},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, fmt.Errorf("decode media_items.%s: %w", col.name, err)
		}
	}
	item.Normalize()
	return item, nil
}

func mediaArgs(item *model.MediaItem) ([]interface{}, error) {
	item.Normalize()
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	encoded := make([][]byte, 0, 5)
	for _, v := range []interface{}{item.Platforms, item.Privacy, item.ExternalIDs, item.Statuses, item.History} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, b)
	}
	return []interface{}{
		item.ID, item.OwnerID, item.Title, item.Description, item.SourceRef,
		encoded[0], encoded[1], encoded[2], encoded[3], encoded[4],
		item.Version, item.CreatedAt, item.UpdatedAt,
	}, nil
}
