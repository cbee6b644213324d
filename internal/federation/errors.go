package federation

import "errors"

// Sentinel errors returned by federation operations (§7).
var (
	ErrLicenseBlocked  = errors.New("federation: source license is not on the community allowlist")
	ErrBelowShareFloor = errors.New("federation: composite score below the community share floor")
)
