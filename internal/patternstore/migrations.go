package patternstore

import "database/sql"

// RunMigrations creates every table and index patternstore needs, idempotently.
// There is a single schema version today; this grows into a dispatch table
// keyed by schema_version the way the teacher's own migrations.go does once
// a second version exists.
func RunMigrations(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS patterns (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			code            TEXT NOT NULL,
			language        TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			tags            TEXT NOT NULL DEFAULT '[]',
			test_code       TEXT NOT NULL DEFAULT '',
			fingerprint     TEXT NOT NULL,
			syntax          REAL NOT NULL DEFAULT 0,
			readability     REAL NOT NULL DEFAULT 0,
			security        REAL NOT NULL DEFAULT 0,
			test_proof      REAL NOT NULL DEFAULT 0,
			reliability     REAL NOT NULL DEFAULT 0,
			composite       REAL NOT NULL DEFAULT 0,
			usage_returned  INTEGER NOT NULL DEFAULT 0,
			usage_succeeded INTEGER NOT NULL DEFAULT 0,
			usage_bugged    INTEGER NOT NULL DEFAULT 0,
			provenance      TEXT,
			lineage_parent  TEXT NOT NULL DEFAULT '',
			version         INTEGER NOT NULL DEFAULT 1,
			retired         INTEGER NOT NULL DEFAULT 0,
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_patterns_fingerprint ON patterns(fingerprint)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_patterns_name ON patterns(name)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_language ON patterns(language)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_composite ON patterns(composite)`,

		`CREATE TABLE IF NOT EXISTS pattern_tags (
			pattern_id TEXT NOT NULL REFERENCES patterns(id) ON DELETE CASCADE,
			tag        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pattern_by_tag ON pattern_tags(tag)`,
		`CREATE INDEX IF NOT EXISTS idx_pattern_tags_pattern_id ON pattern_tags(pattern_id)`,

		`CREATE TABLE IF NOT EXISTS pattern_versions (
			pattern_id  TEXT NOT NULL REFERENCES patterns(id) ON DELETE CASCADE,
			version     INTEGER NOT NULL,
			code        TEXT NOT NULL,
			composite   REAL NOT NULL,
			created_at  TEXT NOT NULL,
			PRIMARY KEY (pattern_id, version)
		)`,

		`CREATE TABLE IF NOT EXISTS candidates (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			code              TEXT NOT NULL,
			language          TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			tags              TEXT NOT NULL DEFAULT '[]',
			test_code         TEXT NOT NULL DEFAULT '',
			fingerprint       TEXT NOT NULL,
			syntax            REAL NOT NULL DEFAULT 0,
			readability       REAL NOT NULL DEFAULT 0,
			security          REAL NOT NULL DEFAULT 0,
			test_proof        REAL NOT NULL DEFAULT 0,
			reliability        REAL NOT NULL DEFAULT 0,
			composite         REAL NOT NULL DEFAULT 0,
			usage_returned    INTEGER NOT NULL DEFAULT 0,
			usage_succeeded   INTEGER NOT NULL DEFAULT 0,
			usage_bugged      INTEGER NOT NULL DEFAULT 0,
			provenance        TEXT,
			lineage_parent    TEXT NOT NULL DEFAULT '',
			version           INTEGER NOT NULL DEFAULT 1,
			retired           INTEGER NOT NULL DEFAULT 0,
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL,
			generation_method TEXT NOT NULL,
			parent_id         TEXT NOT NULL DEFAULT '',
			test_status       TEXT NOT NULL,
			state             TEXT NOT NULL,
			heal_attempts     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_state ON candidates(state)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_fingerprint ON candidates(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_parent ON candidates(parent_id)`,

		`CREATE TABLE IF NOT EXISTS run_records (
			id             TEXT PRIMARY KEY,
			started_at     TEXT NOT NULL,
			ended_at       TEXT NOT NULL,
			pre_composite  REAL NOT NULL,
			post_composite REAL NOT NULL,
			changes        TEXT NOT NULL DEFAULT '[]',
			outcome        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_records_started ON run_records(started_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
