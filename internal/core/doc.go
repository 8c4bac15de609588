// Package core provides the business logic of the impact tracker.
//
// This package holds the domain operations independent of any transport.
// The web server, the scheduler and the tracker CLI all drive the same
// [Service].
//
// # Sources and Stores
//
// Rows come from a [source.Source] looked up by name in a
// [source.Registry]. Cleaned records and sync bookkeeping go to a [Store],
// implemented for Postgres by [PostgresStore] and for MongoDB by
// [MongoStore].
//
// # Incremental Sync
//
// [Service.Sync] compares the row count of the source with the stored
// last_synced_row_count and only cleans and upserts rows past it. Upserts
// are keyed by row hash, so replaying rows is harmless. Individual row
// failures are counted and leave the run partial; a failure to read the
// source marks the run failed and keeps the previous position.
//
// Only one sync runs at a time. See [SyncLimiter].
//
// # Dashboard
//
// [Service.Metrics] aggregates the facts matching a [FilterState] into
// per sub-project, per year and per cause totals.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SYNC001-SYNC003: Sync errors (in progress, unknown source, state)
//   - SRC001-SRC005: Source errors (sheet, credentials, access, workbook)
//   - DB001-DB005: Database errors (connections, timeouts)
//   - VAL001-VAL002: Request validation
package core
