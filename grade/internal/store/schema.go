// CLAUDE:SUMMARY DDL for the evaluation-run history table.
package store

// Schema is the run-history DDL, applied idempotently on open.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	report_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`
