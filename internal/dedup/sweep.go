package dedup

import (
	"codenerd/internal/logging"
	"codenerd/internal/model"
)

// Store is the subset of patternstore.Store Sweep needs.
type Store interface {
	Iter(tag string, lang model.Language) ([]model.Pattern, error)
	Put(p model.Pattern) error
}

// Sweep recomputes and backfills fingerprints for any stored pattern
// whose fingerprint is missing or stale relative to its current code,
// the maintenance-time analogue of the teacher's own content-hash
// backfill pass.
func Sweep(store Store) (int, error) {
	patterns, err := store.Iter("", "")
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, p := range patterns {
		want := Fingerprint(p.Code, p.Language)
		if p.Fingerprint == want {
			continue
		}
		p.Fingerprint = want
		if err := store.Put(p); err != nil {
			return fixed, err
		}
		fixed++
	}
	if fixed > 0 {
		logging.Get(logging.CategoryDedup).Info("dedup sweep backfilled %d fingerprints", fixed)
	}
	return fixed, nil
}
