package scoring

import (
	"regexp"
	"strings"
)

var assertionTokenRe = regexp.MustCompile(`(?i)\b(?:assert\w*|expect|require\.\w+|t\.Error\w*|t\.Fatal\w*)\b`)

// testProofScore buckets a test file's assertion density into the fixed
// thresholds of §4.B, and falls back to a low score when a test exists
// but doesn't appear to reference the source it's meant to prove.
func testProofScore(sourceName, testCode string) float64 {
	if strings.TrimSpace(testCode) == "" {
		return 0
	}
	if sourceName != "" && !strings.Contains(testCode, sourceName) {
		return 0.3
	}
	n := len(assertionTokenRe.FindAllString(testCode, -1))
	switch {
	case n >= 10:
		return 1.0
	case n >= 5:
		return 0.85
	case n >= 2:
		return 0.7
	case n >= 1:
		return 0.5
	default:
		return 0.3
	}
}
