package patternstore

import (
	"encoding/json"
	"time"

	"codenerd/internal/model"
)

// AppendRunRecord writes one append-only maintenance-cycle history entry,
// then drops the oldest entries so at most 50 are retained.
func (s *Store) AppendRunRecord(r model.RunRecord) error {
	const runRecordLimit = 50
	if r.ID == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	changesJSON, err := json.Marshal(r.Changes)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO run_records (id, started_at, ended_at, pre_composite, post_composite, changes, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(timeLayout), r.EndedAt.UTC().Format(timeLayout),
		r.PreComposite, r.PostComposite, string(changesJSON), r.Outcome,
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		DELETE FROM run_records WHERE id NOT IN (
			SELECT id FROM run_records ORDER BY started_at DESC LIMIT ?)`, runRecordLimit)
	return err
}

// RecentRunRecords returns the most recent run records, newest first,
// bounded by limit.
func (s *Store) RecentRunRecords(limit int) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, started_at, ended_at, pre_composite, post_composite, changes, outcome
		FROM run_records ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		var started, ended, changesJSON string
		if err := rows.Scan(&r.ID, &started, &ended, &r.PreComposite, &r.PostComposite, &changesJSON, &r.Outcome); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.EndedAt, _ = time.Parse(timeLayout, ended)
		_ = json.Unmarshal([]byte(changesJSON), &r.Changes)
		out = append(out, r)
	}
	return out, rows.Err()
}
