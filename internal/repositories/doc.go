// Package repositories implements SQLite persistence for domain entities.
//
// [SubmissionRepository] stores received manuscripts with their author list serialized as JSON.
// Deletes are soft: a deleted_at timestamp hides the row from Get and List.
//
// Sequence numbers provide stable, human-readable ordering (e.g. submission #42) independent of UUIDs and creation timestamps.
// [NextSequence] increments per-table counters kept in "{table}_sequence" tables.
package repositories
