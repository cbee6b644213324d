// Package relevance scores how well a stored pattern answers a free-text,
// tag, and language query (§4.D), and owns the Unicode-aware tokenizer
// shared with the dedup layer's near-duplicate detector (§4.H).
package relevance

import (
	"strings"
	"unicode"
)

// stopwords excludes common English and code-keyword noise from token
// sets, the same closed list style the teacher keeps for its own
// keyword-search stopword filtering.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "must": true, "shall": true,
	"to": true, "of": true, "in": true, "for": true, "on": true,
	"with": true, "at": true, "by": true, "from": true, "as": true,
	"into": true, "through": true, "and": true, "but": true, "or": true,
	"if": true, "then": true, "else": true, "when": true, "where": true,
	"this": true, "that": true, "these": true, "those": true, "it": true,
	"its": true, "self": true, "none": true, "true": true, "false": true,
	"def": true, "class": true, "import": true, "return": true,
}

// Tokenize splits src into lowercase word tokens, dropping punctuation,
// stopwords, and single-character noise. Both the relevance engine's
// textual similarity and the dedup layer's near-duplicate Jaccard use
// this single tokenizer so that "similar text" means the same thing in
// both places (Open Question 3).
func Tokenize(src string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		word := strings.ToLower(cur.String())
		cur.Reset()
		if len(word) <= 1 || stopwords[word] {
			return
		}
		tokens = append(tokens, word)
	}
	for _, r := range src {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// TokenSet returns the unique token set of src, used by Jaccard similarity.
func TokenSet(src string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokenize(src) {
		set[t] = true
	}
	return set
}

// Jaccard computes |a ∩ b| / |a ∪ b| over two token sets. An empty union
// reports 0 similarity rather than dividing by zero.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
