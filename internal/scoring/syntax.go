package scoring

import (
	"codenerd/internal/lexical"
	"codenerd/internal/model"
)

// syntaxScore starts at 1.0 and deducts for each lexical imbalance found:
// 0.3 for mismatched braces, 0.15 each for mismatched brackets and
// parens, and 0.2 if the code fails the covenant check. Patternkeep has
// no parser to ask (§1 non-goals), so balance counting is the structural
// signal available to it.
func syntaxScore(code string, lang model.Language) float64 {
	if _, err := lexical.ExtractFunctionSpans(code, lang); err != nil {
		return 0
	}

	score := 1.0
	if lang.IsBraceLanguage() {
		if lexical.CountBalance(code, '{', '}', lang) != 0 {
			score -= 0.3
		}
		if lexical.CountBalance(code, '[', ']', lang) != 0 {
			score -= 0.15
		}
		if lexical.CountBalance(code, '(', ')', lang) != 0 {
			score -= 0.15
		}
	}
	if !CheckCovenant(code).Sealed {
		score -= 0.2
	}
	return clamp01(score)
}
