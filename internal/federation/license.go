package federation

// spdxAllowed is the fixed set of SPDX license identifiers patternkeep
// will share to the community tier without an explicit override, the
// same closed-allowlist shape the teacher uses for its import allowlist.
var spdxAllowed = map[string]bool{
	"MIT":          true,
	"Apache-2.0":   true,
	"BSD-2-Clause": true,
	"BSD-3-Clause": true,
	"ISC":          true,
	"0BSD":         true,
	"Unlicense":    true,
}

// copyleftLicenses are recognized but excluded by default, requiring
// AllowCopyleftOverride to share.
var copyleftLicenses = map[string]bool{
	"GPL-2.0":     true,
	"GPL-3.0":     true,
	"AGPL-3.0":    true,
	"LGPL-2.1":    true,
	"LGPL-3.0":    true,
	"MPL-2.0":     true,
}

// licenseAllowed reports whether license may be shared to the community
// tier under the given override policy. An empty license string is
// treated as unknown and is never allowed, regardless of override.
func licenseAllowed(license string, allowCopyleftOverride bool) bool {
	if license == "" {
		return false
	}
	if spdxAllowed[license] {
		return true
	}
	if copyleftLicenses[license] {
		return allowCopyleftOverride
	}
	return false
}
