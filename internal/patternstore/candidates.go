package patternstore

import (
	"database/sql"
	"fmt"
	"time"

	"codenerd/internal/logging"
	"codenerd/internal/model"
)

const candidateColumns = `id, name, code, language, description, tags, test_code, fingerprint,
	syntax, readability, security, test_proof, reliability, composite,
	usage_returned, usage_succeeded, usage_bugged, provenance,
	lineage_parent, version, retired, created_at, updated_at,
	generation_method, parent_id, test_status, state, heal_attempts`

func scanCandidate(row interface {
	Scan(dest ...interface{}) error
}) (model.Candidate, error) {
	var c model.Candidate
	var lang, method, testStatus, state string
	var tagsJSON string
	var prov sql.NullString
	var retired int
	var createdAt, updatedAt string

	err := row.Scan(
		&c.ID, &c.Name, &c.Code, &lang, &c.Description, &tagsJSON, &c.TestCode, &c.Fingerprint,
		&c.Coherency.Syntax, &c.Coherency.Readability, &c.Coherency.Security, &c.Coherency.TestProof, &c.Coherency.Reliability, &c.Coherency.Composite,
		&c.Usage.Returned, &c.Usage.Succeeded, &c.Usage.Bugged, &prov,
		&c.LineageParent, &c.Version, &retired, &createdAt, &updatedAt,
		&method, &c.ParentID, &testStatus, &state, &c.HealAttempts,
	)
	if err != nil {
		return model.Candidate{}, err
	}
	c.Language = model.Language(lang)
	c.Tags = unmarshalTags(tagsJSON)
	c.Provenance = unmarshalProvenance(prov)
	c.Retired = retired != 0
	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	c.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	c.GenerationMethod = model.GenerationMethod(method)
	c.TestStatus = model.TestStatus(testStatus)
	c.State = model.CandidateState(state)
	return c, nil
}

// PutCandidate inserts or fully replaces a candidate record.
func (s *Store) PutCandidate(c model.Candidate) error {
	if c.ID == "" || c.Fingerprint == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tagsJSON, err := marshalTags(c.Tags)
	if err != nil {
		return err
	}
	prov, err := marshalProvenance(c.Provenance)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO candidates (
			id, name, code, language, description, tags, test_code, fingerprint,
			syntax, readability, security, test_proof, reliability, composite,
			usage_returned, usage_succeeded, usage_bugged, provenance,
			lineage_parent, version, retired, created_at, updated_at,
			generation_method, parent_id, test_status, state, heal_attempts
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
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
			retired=excluded.retired, updated_at=excluded.updated_at,
			generation_method=excluded.generation_method, parent_id=excluded.parent_id,
			test_status=excluded.test_status, state=excluded.state,
			heal_attempts=excluded.heal_attempts
	`,
		c.ID, c.Name, c.Code, string(c.Language), c.Description, tagsJSON, c.TestCode, c.Fingerprint,
		c.Coherency.Syntax, c.Coherency.Readability, c.Coherency.Security, c.Coherency.TestProof, c.Coherency.Reliability, c.Coherency.Composite,
		c.Usage.Returned, c.Usage.Succeeded, c.Usage.Bugged, prov,
		c.LineageParent, c.Version, boolToInt(c.Retired), c.CreatedAt.Format(timeLayout), c.UpdatedAt.Format(timeLayout),
		string(c.GenerationMethod), c.ParentID, string(c.TestStatus), string(c.State), c.HealAttempts,
	)
	if err != nil {
		return err
	}
	logging.PipelineDebug("patternstore: put candidate %s state=%s", c.ID, c.State)
	return nil
}

// GetCandidate returns the candidate with the given id.
func (s *Store) GetCandidate(id string) (model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return model.Candidate{}, ErrNotFound
	}
	return c, err
}

// IterCandidatesByState returns every candidate in the given state,
// ordered by creation time, used by the auto-promote sweep (§4.F).
func (s *Store) IterCandidatesByState(state model.CandidateState) ([]model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`SELECT `+candidateColumns+` FROM candidates WHERE state = ? ORDER BY created_at`, string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCandidateState transitions a candidate to a new state in place.
// Callers are expected to have already validated the transition against
// model.CandidateState's rules; this call just persists it.
func (s *Store) SetCandidateState(id string, state model.CandidateState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`UPDATE candidates SET state = ?, updated_at = ? WHERE id = ?`,
		string(state), time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementHealAttempts bumps a candidate's heal counter and returns the
// new total, so callers can compare it against the configured bound.
func (s *Store) IncrementHealAttempts(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE candidates SET heal_attempts = heal_attempts + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return 0, err
	}
	var attempts int
	if err := s.db.QueryRow(`SELECT heal_attempts FROM candidates WHERE id = ?`, id).Scan(&attempts); err != nil {
		return 0, err
	}
	return attempts, nil
}

// PromoteCandidate moves a candidate to Proven and writes it into the
// patterns table in a single transaction, recording a version-history row.
// If the target pattern name already exists at a different id, promotion
// fails with ErrDuplicateName rather than silently overwriting it.
func (s *Store) PromoteCandidate(candidateID string) (model.Pattern, error) {
	if s.Tripped() {
		return model.Pattern{}, ErrStoreTripped
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return model.Pattern{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, candidateID)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return model.Pattern{}, ErrNotFound
	}
	if err != nil {
		return model.Pattern{}, err
	}

	var existingID string
	err = tx.QueryRow(`SELECT id FROM patterns WHERE name = ?`, c.Name).Scan(&existingID)
	if err == nil && existingID != c.ID {
		return model.Pattern{}, ErrDuplicateName
	}
	if err != nil && err != sql.ErrNoRows {
		return model.Pattern{}, err
	}

	pattern := c.Pattern
	pattern.Version++
	pattern.UpdatedAt = time.Now().UTC()

	tagsJSON, err := marshalTags(pattern.Tags)
	if err != nil {
		return model.Pattern{}, err
	}
	prov, err := marshalProvenance(pattern.Provenance)
	if err != nil {
		return model.Pattern{}, err
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
			version=excluded.version, updated_at=excluded.updated_at
	`,
		pattern.ID, pattern.Name, pattern.Code, string(pattern.Language), pattern.Description, tagsJSON, pattern.TestCode, pattern.Fingerprint,
		pattern.Coherency.Syntax, pattern.Coherency.Readability, pattern.Coherency.Security, pattern.Coherency.TestProof, pattern.Coherency.Reliability, pattern.Coherency.Composite,
		pattern.Usage.Returned, pattern.Usage.Succeeded, pattern.Usage.Bugged, prov,
		pattern.LineageParent, pattern.Version, boolToInt(pattern.Retired), pattern.CreatedAt.Format(timeLayout), pattern.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return model.Pattern{}, err
	}

	if _, err := tx.Exec(`DELETE FROM pattern_tags WHERE pattern_id = ?`, pattern.ID); err != nil {
		return model.Pattern{}, err
	}
	for _, tag := range model.NormalizeTags(pattern.Tags) {
		if _, err := tx.Exec(`INSERT INTO pattern_tags (pattern_id, tag) VALUES (?, ?)`, pattern.ID, tag); err != nil {
			return model.Pattern{}, err
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO pattern_versions (pattern_id, version, code, composite, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		pattern.ID, pattern.Version, pattern.Code, pattern.Coherency.Composite, pattern.UpdatedAt.Format(timeLayout),
	); err != nil {
		return model.Pattern{}, err
	}

	if _, err := tx.Exec(`UPDATE candidates SET state = ?, updated_at = ? WHERE id = ?`,
		string(model.StateProven), time.Now().UTC().Format(timeLayout), candidateID); err != nil {
		return model.Pattern{}, err
	}

	if err := s.commitOrTrip(tx, "PromoteCandidate"); err != nil {
		return model.Pattern{}, err
	}
	logging.Pipeline("patternstore: promoted candidate %s to pattern %s v%d", candidateID, pattern.ID, pattern.Version)
	return pattern, nil
}

// RollbackPattern restores a pattern to a prior stored version from its
// pattern_versions snapshots.
func (s *Store) RollbackPattern(patternID string, toVersion int) (model.Pattern, error) {
	if s.Tripped() {
		return model.Pattern{}, ErrStoreTripped
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return model.Pattern{}, err
	}
	defer tx.Rollback()

	var code string
	var composite float64
	err = tx.QueryRow(`SELECT code, composite FROM pattern_versions WHERE pattern_id = ? AND version = ?`,
		patternID, toVersion).Scan(&code, &composite)
	if err == sql.ErrNoRows {
		return model.Pattern{}, fmt.Errorf("patternstore: no stored version %d for pattern %s: %w", toVersion, patternID, ErrNotFound)
	}
	if err != nil {
		return model.Pattern{}, err
	}

	row := tx.QueryRow(`SELECT `+patternColumns+` FROM patterns WHERE id = ?`, patternID)
	p, err := scanPattern(row)
	if err != nil {
		return model.Pattern{}, err
	}
	p.Code = code
	p.Coherency.Composite = composite
	p.Version = toVersion
	p.UpdatedAt = time.Now().UTC()

	if _, err := tx.Exec(`UPDATE patterns SET code = ?, composite = ?, version = ?, updated_at = ? WHERE id = ?`,
		p.Code, p.Coherency.Composite, p.Version, p.UpdatedAt.Format(timeLayout), p.ID); err != nil {
		return model.Pattern{}, err
	}

	if err := s.commitOrTrip(tx, "RollbackPattern"); err != nil {
		return model.Pattern{}, err
	}
	logging.Pipeline("patternstore: rolled back pattern %s to v%d", patternID, toVersion)
	return p, nil
}
