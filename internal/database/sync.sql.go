package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSyncMetadata = `-- name: GetSyncMetadata :one
SELECT sync_source, last_synced_row_count, last_sync_timestamp, last_sync_status,
    last_sync_error, total_rows_synced, updated_at
FROM sync_metadata
WHERE sync_source = $1
`

func (q *Queries) GetSyncMetadata(ctx context.Context, syncSource string) (SyncMetadatum, error) {
	row := q.db.QueryRow(ctx, getSyncMetadata, syncSource)
	var i SyncMetadatum
	err := row.Scan(
		&i.SyncSource,
		&i.LastSyncedRowCount,
		&i.LastSyncTimestamp,
		&i.LastSyncStatus,
		&i.LastSyncError,
		&i.TotalRowsSynced,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertSyncMetadata = `-- name: UpsertSyncMetadata :exec
INSERT INTO sync_metadata (
    sync_source, last_synced_row_count, last_sync_timestamp, last_sync_status,
    last_sync_error, total_rows_synced
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (sync_source) DO UPDATE SET
    last_synced_row_count = EXCLUDED.last_synced_row_count,
    last_sync_timestamp = EXCLUDED.last_sync_timestamp,
    last_sync_status = EXCLUDED.last_sync_status,
    last_sync_error = EXCLUDED.last_sync_error,
    total_rows_synced = EXCLUDED.total_rows_synced,
    updated_at = NOW()
`

type UpsertSyncMetadataParams struct {
	SyncSource         string
	LastSyncedRowCount int32
	LastSyncTimestamp  pgtype.Timestamptz
	LastSyncStatus     pgtype.Text
	LastSyncError      pgtype.Text
	TotalRowsSynced    int32
}

func (q *Queries) UpsertSyncMetadata(ctx context.Context, arg UpsertSyncMetadataParams) error {
	_, err := q.db.Exec(ctx, upsertSyncMetadata,
		arg.SyncSource,
		arg.LastSyncedRowCount,
		arg.LastSyncTimestamp,
		arg.LastSyncStatus,
		arg.LastSyncError,
		arg.TotalRowsSynced,
	)
	return err
}

const insertSyncRun = `-- name: InsertSyncRun :exec
INSERT INTO sync_runs (
    id, sync_source, trigger, started_at, finished_at, total_rows_in_sheet,
    last_synced_count, new_rows_fetched, rows_synced, errors, status, error
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type InsertSyncRunParams struct {
	ID               pgtype.UUID
	SyncSource       string
	Trigger          string
	StartedAt        pgtype.Timestamptz
	FinishedAt       pgtype.Timestamptz
	TotalRowsInSheet int32
	LastSyncedCount  int32
	NewRowsFetched   int32
	RowsSynced       int32
	Errors           int32
	Status           string
	Error            pgtype.Text
}

func (q *Queries) InsertSyncRun(ctx context.Context, arg InsertSyncRunParams) error {
	_, err := q.db.Exec(ctx, insertSyncRun,
		arg.ID,
		arg.SyncSource,
		arg.Trigger,
		arg.StartedAt,
		arg.FinishedAt,
		arg.TotalRowsInSheet,
		arg.LastSyncedCount,
		arg.NewRowsFetched,
		arg.RowsSynced,
		arg.Errors,
		arg.Status,
		arg.Error,
	)
	return err
}

const listSyncRuns = `-- name: ListSyncRuns :many
SELECT id, sync_source, trigger, started_at, finished_at, total_rows_in_sheet,
    last_synced_count, new_rows_fetched, rows_synced, errors, status, error
FROM sync_runs
WHERE sync_source = $1
ORDER BY started_at DESC
LIMIT $2
`

type ListSyncRunsParams struct {
	SyncSource string
	Limit      int32
}

func (q *Queries) ListSyncRuns(ctx context.Context, arg ListSyncRunsParams) ([]SyncRun, error) {
	rows, err := q.db.Query(ctx, listSyncRuns, arg.SyncSource, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SyncRun
	for rows.Next() {
		var i SyncRun
		if err := rows.Scan(
			&i.ID,
			&i.SyncSource,
			&i.Trigger,
			&i.StartedAt,
			&i.FinishedAt,
			&i.TotalRowsInSheet,
			&i.LastSyncedCount,
			&i.NewRowsFetched,
			&i.RowsSynced,
			&i.Errors,
			&i.Status,
			&i.Error,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
