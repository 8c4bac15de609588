package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getAsset = `-- name: GetAsset :one
SELECT id, sub_project_canon, image_url, description, created_at, updated_at
FROM dim_assets
WHERE sub_project_canon = $1
`

func (q *Queries) GetAsset(ctx context.Context, subProjectCanon string) (DimAsset, error) {
	row := q.db.QueryRow(ctx, getAsset, subProjectCanon)
	var i DimAsset
	err := row.Scan(
		&i.ID,
		&i.SubProjectCanon,
		&i.ImageUrl,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertAssetIfMissing = `-- name: InsertAssetIfMissing :execrows
INSERT INTO dim_assets (sub_project_canon, image_url, description)
VALUES ($1, $2, $3)
ON CONFLICT (sub_project_canon) DO NOTHING
`

type InsertAssetIfMissingParams struct {
	SubProjectCanon string
	ImageUrl        pgtype.Text
	Description     pgtype.Text
}

// InsertAssetIfMissing returns 0 when the sub-project already has an asset.
func (q *Queries) InsertAssetIfMissing(ctx context.Context, arg InsertAssetIfMissingParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertAssetIfMissing, arg.SubProjectCanon, arg.ImageUrl, arg.Description)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listDistinctSubProjects = `-- name: ListDistinctSubProjects :many
SELECT DISTINCT sub_project_canon
FROM tracker_raw
WHERE sub_project_canon IS NOT NULL
ORDER BY sub_project_canon
`

func (q *Queries) ListDistinctSubProjects(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listDistinctSubProjects)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var subProject string
		if err := rows.Scan(&subProject); err != nil {
			return nil, err
		}
		items = append(items, subProject)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
