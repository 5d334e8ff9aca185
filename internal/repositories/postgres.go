package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/videoserver/provider/internal/db"
	"github.com/videoserver/provider/internal/models"
	"github.com/videoserver/provider/internal/videos"
)

// maxAncestorDepth bounds the ancestor walk so a cyclic tree cannot loop forever.
const maxAncestorDepth = 64

// PostgresAssetRepository provides PostgreSQL-backed access to video assets and
// the content tree above them.
type PostgresAssetRepository struct {
	pool db.Pool
}

// NewPostgresAssetRepository constructs an asset repository backed by PostgreSQL.
func NewPostgresAssetRepository(pool db.Pool) *PostgresAssetRepository {
	return &PostgresAssetRepository{pool: pool}
}

// FindByContentID loads a video asset.
func (r *PostgresAssetRepository) FindByContentID(ctx context.Context, contentID string) (models.VideoAsset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoAsset{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT content_id, name, COALESCE(video_uuid, ''), COALESCE(video_path, '')
        FROM video_assets
        WHERE content_id = $1
    `, contentID)

	var asset models.VideoAsset
	if err := row.Scan(&asset.ContentID, &asset.Name, &asset.VideoUUID, &asset.VideoPath); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoAsset{}, ErrNotFound
		}
		return models.VideoAsset{}, fmt.Errorf("select video asset: %w", err)
	}

	return asset, nil
}

// SaveVideoUUID records the UUID the backend was given for an asset.
func (r *PostgresAssetRepository) SaveVideoUUID(ctx context.Context, contentID, videoUUID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE video_assets
        SET video_uuid = $2
        WHERE content_id = $1
    `, contentID, videoUUID)
	if err != nil {
		return fmt.Errorf("update video uuid: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AncestorChain returns the containers above the asset, nearest parent first
// and the tree root last.
func (r *PostgresAssetRepository) AncestorChain(ctx context.Context, asset models.VideoAsset) ([]models.Container, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        WITH RECURSIVE ancestors AS (
            SELECT n.content_id, n.parent_id, n.external_id, n.is_site, 1 AS depth
            FROM content_nodes n
            WHERE n.content_id = (SELECT parent_id FROM content_nodes WHERE content_id = $1)
            UNION ALL
            SELECT p.content_id, p.parent_id, p.external_id, p.is_site, a.depth + 1
            FROM content_nodes p
            JOIN ancestors a ON p.content_id = a.parent_id
            WHERE a.depth < $2
        )
        SELECT content_id, external_id, is_site
        FROM ancestors
        ORDER BY depth ASC
    `, asset.ContentID, maxAncestorDepth)
	if err != nil {
		return nil, fmt.Errorf("query ancestor chain: %w", err)
	}
	defer rows.Close()

	var chain []models.Container
	for rows.Next() {
		var c models.Container
		if err := rows.Scan(&c.ContentID, &c.ExternalID, &c.IsSite); err != nil {
			return nil, fmt.Errorf("scan ancestor: %w", err)
		}
		chain = append(chain, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ancestor chain: %w", err)
	}

	return chain, nil
}

var _ videos.AncestorResolver = (*PostgresAssetRepository)(nil)
var _ videos.UUIDWriter = (*PostgresAssetRepository)(nil)
