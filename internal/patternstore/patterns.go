package patternstore

import (
	"database/sql"
	"encoding/json"
	"time"

	"codenerd/internal/logging"
	"codenerd/internal/model"
)

const timeLayout = time.RFC3339Nano

func marshalTags(tags []string) (string, error) {
	data, err := json.Marshal(model.NormalizeTags(tags))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalTags(raw string) []string {
	var tags []string
	_ = json.Unmarshal([]byte(raw), &tags)
	return tags
}

func marshalProvenance(p *model.Provenance) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalProvenance(ns sql.NullString) *model.Provenance {
	if !ns.Valid {
		return nil
	}
	var p model.Provenance
	if err := json.Unmarshal([]byte(ns.String), &p); err != nil {
		return nil
	}
	return &p
}

// versionRingSize bounds how many prior snapshots of a pattern's code
// Put retains in pattern_versions, per §4.C's "bounded ring, default 10".
const versionRingSize = 10

// Put inserts a new pattern, or writes over an existing one under
// optimistic concurrency: p.Version must equal the row's current version,
// or the write fails with ErrStaleVersion and nothing changes. On success
// the prior copy (code + composite, at its old version number) is
// retained in the pattern_versions ring and the stored version becomes
// p.Version+1. New inserts (no existing row) skip the version check
// entirely and start at whatever version p carries, floored at 1.
func (s *Store) Put(p model.Pattern) error {
	if p.ID == "" || p.Fingerprint == "" {
		return ErrInvalidArgument
	}
	if s.Tripped() {
		return ErrStoreTripped
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, err := marshalTags(p.Tags)
	if err != nil {
		return err
	}
	prov, err := marshalProvenance(p.Provenance)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existingVersion int
	var existingCode string
	var existingComposite float64
	err = tx.QueryRow(`SELECT version, code, composite FROM patterns WHERE id = ?`, p.ID).
		Scan(&existingVersion, &existingCode, &existingComposite)
	switch {
	case err == sql.ErrNoRows:
		if p.Version < 1 {
			p.Version = 1
		}
	case err != nil:
		return err
	default:
		if p.Version != existingVersion {
			return ErrStaleVersion
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO pattern_versions (pattern_id, version, code, composite, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			p.ID, existingVersion, existingCode, existingComposite, now.Format(timeLayout),
		); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			DELETE FROM pattern_versions WHERE pattern_id = ? AND version NOT IN (
				SELECT version FROM pattern_versions WHERE pattern_id = ? ORDER BY version DESC LIMIT ?
			)`, p.ID, p.ID, versionRingSize); err != nil {
			return err
		}
		p.Version = existingVersion + 1
	}

	_, err = tx.Exec(`
		INSERT INTO patterns (
			id, name, code, language, description, tags, test_code, fingerprint,
			syntax, readability, security, test_proof, reliability, composite,
			usage_returned, usage_succeeded, usage_bugged, provenance,
			lineage_parent, version, retired, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, code=excluded.code, language=excluded.language,
			description=excluded.description, tags=excluded.tags,
			test_code=excluded.test_code, fingerprint=excluded.fingerprint,
			syntax=excluded.syntax, readability=excluded.readability,
			security=excluded.security, test_proof=excluded.test_proof,
			reliability=excluded.reliability, composite=excluded.composite,
			usage_returned=excluded.usage_returned, usage_succeeded=excluded.usage_succeeded,
			usage_bugged=excluded.usage_bugged, provenance=excluded.provenance,
			lineage_parent=excluded.lineage_parent, version=excluded.version,
			retired=excluded.retired, updated_at=excluded.updated_at
	`,
		p.ID, p.Name, p.Code, string(p.Language), p.Description, tagsJSON, p.TestCode, p.Fingerprint,
		p.Coherency.Syntax, p.Coherency.Readability, p.Coherency.Security, p.Coherency.TestProof, p.Coherency.Reliability, p.Coherency.Composite,
		p.Usage.Returned, p.Usage.Succeeded, p.Usage.Bugged, prov,
		p.LineageParent, p.Version, boolToInt(p.Retired), p.CreatedAt.Format(timeLayout), p.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM pattern_tags WHERE pattern_id = ?`, p.ID); err != nil {
		return err
	}
	for _, tag := range model.NormalizeTags(p.Tags) {
		if _, err := tx.Exec(`INSERT INTO pattern_tags (pattern_id, tag) VALUES (?, ?)`, p.ID, tag); err != nil {
			return err
		}
	}

	if err := s.commitOrTrip(tx, "Put"); err != nil {
		return err
	}

	logging.StoreDebug("patternstore: put pattern %s v%d (composite=%.3f)", p.ID, p.Version, p.Coherency.Composite)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const patternColumns = `id, name, code, language, description, tags, test_code, fingerprint,
	syntax, readability, security, test_proof, reliability, composite,
	usage_returned, usage_succeeded, usage_bugged, provenance,
	lineage_parent, version, retired, created_at, updated_at`

func scanPattern(row interface {
	Scan(dest ...interface{}) error
}) (model.Pattern, error) {
	var p model.Pattern
	var lang string
	var tagsJSON string
	var prov sql.NullString
	var retired int
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ID, &p.Name, &p.Code, &lang, &p.Description, &tagsJSON, &p.TestCode, &p.Fingerprint,
		&p.Coherency.Syntax, &p.Coherency.Readability, &p.Coherency.Security, &p.Coherency.TestProof, &p.Coherency.Reliability, &p.Coherency.Composite,
		&p.Usage.Returned, &p.Usage.Succeeded, &p.Usage.Bugged, &prov,
		&p.LineageParent, &p.Version, &retired, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Pattern{}, err
	}
	p.Language = model.Language(lang)
	p.Tags = unmarshalTags(tagsJSON)
	p.Provenance = unmarshalProvenance(prov)
	p.Retired = retired != 0
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return p, nil
}

// Get returns the pattern with the given id.
func (s *Store) Get(id string) (model.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT `+patternColumns+` FROM patterns WHERE id = ?`, id)
	p, err := scanPattern(row)
	if err == sql.ErrNoRows {
		return model.Pattern{}, ErrNotFound
	}
	return p, err
}

// GetByName returns the pattern with the given unique name.
func (s *Store) GetByName(name string) (model.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT `+patternColumns+` FROM patterns WHERE name = ?`, name)
	p, err := scanPattern(row)
	if err == sql.ErrNoRows {
		return model.Pattern{}, ErrNotFound
	}
	return p, err
}

// GetByFingerprint returns the pattern with the given content fingerprint,
// used by the dedup layer for exact-duplicate lookups.
func (s *Store) GetByFingerprint(fingerprint string) (model.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT `+patternColumns+` FROM patterns WHERE fingerprint = ?`, fingerprint)
	p, err := scanPattern(row)
	if err == sql.ErrNoRows {
		return model.Pattern{}, ErrNotFound
	}
	return p, err
}

// Iter returns every non-retired pattern, optionally filtered by tag and/or
// language. An empty filter value matches every row for that field.
func (s *Store) Iter(tag string, lang model.Language) ([]model.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	var args []interface{}
	if tag != "" {
		query = `SELECT ` + prefixedColumns("patterns") + ` FROM patterns
			JOIN pattern_tags ON pattern_tags.pattern_id = patterns.id
			WHERE patterns.retired = 0 AND pattern_tags.tag = ?`
		args = append(args, tag)
		if lang != "" {
			query += " AND patterns.language = ?"
			args = append(args, string(lang))
		}
	} else {
		query = `SELECT ` + patternColumns + ` FROM patterns WHERE retired = 0`
		if lang != "" {
			query += " AND language = ?"
			args = append(args, string(lang))
		}
	}
	query += " ORDER BY patterns.id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func prefixedColumns(table string) string {
	cols := []string{"id", "name", "code", "language", "description", "tags", "test_code", "fingerprint",
		"syntax", "readability", "security", "test_proof", "reliability", "composite",
		"usage_returned", "usage_succeeded", "usage_bugged", "provenance",
		"lineage_parent", "version", "retired", "created_at", "updated_at"}
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += table + "." + c
	}
	return out
}

// Delete removes a pattern and its tag rows.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRetired flips a pattern's retired flag, used by the pipeline's
// retire sweep (§4.F) once a pattern's success rate falls below floor.
func (s *Store) SetRetired(id string, retired bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`UPDATE patterns SET retired = ?, updated_at = ? WHERE id = ?`,
		boolToInt(retired), time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordUsage increments the returned/succeeded counters for a pattern
// query hit, per §4.D's usage-tracking contract.
func (s *Store) RecordUsage(id string, succeeded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	succ := 0
	if succeeded {
		succ = 1
	}
	res, err := s.db.Exec(`
		UPDATE patterns SET usage_returned = usage_returned + 1,
			usage_succeeded = usage_succeeded + ?, updated_at = ?
		WHERE id = ?`, succ, time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordBug increments a pattern's bug counter.
func (s *Store) RecordBug(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`
		UPDATE patterns SET usage_bugged = usage_bugged + 1, updated_at = ?
		WHERE id = ?`, time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
