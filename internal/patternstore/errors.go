package patternstore

import "errors"

// Sentinel errors returned by patternstore operations (§7).
var (
	ErrNotFound        = errors.New("patternstore: record not found")
	ErrDuplicateName   = errors.New("patternstore: name already in use")
	ErrStaleVersion    = errors.New("patternstore: version conflict, refresh and retry")
	ErrStoreTripped    = errors.New("patternstore: store tripped by an integrity violation, reload required")
	ErrInvalidArgument = errors.New("patternstore: invalid argument")
)
