package relevance

import (
	"math"
	"sort"

	"codenerd/internal/model"
)

// Query is a free-text, tag, and language search request against the
// pattern store, per §4.D.
type Query struct {
	Text     string
	Tags     []string
	Language model.Language
}

// Defaults for the relevance floor and result limit (§4.D).
const (
	DefaultFloor = 0.1
	DefaultLimit = 5
)

// Result pairs a pattern with the query-specific score that ranked it.
type Result struct {
	Pattern model.Pattern
	Score   float64
}

// score combines textual similarity (0.5), tag overlap (0.3), and
// language match (0.2 exact; 0.1 when the query names no language or the
// pattern's language is model.LanguageOther)
// into a raw relevance value, then scales it by the square root of the
// pattern's coherency composite. The square root damps the multiplier
// compared to a straight product: a merely-decent composite (~0.7-0.8)
// keeps most of its raw score, while a composite near 0 still collapses
// the result toward the floor. Tags are scored only through the
// dedicated tag-overlap term, never folded into the textual field, so a
// tag match doesn't also inflate the Jaccard similarity.
func score(q Query, p model.Pattern) float64 {
	textual := Jaccard(TokenSet(q.Text), TokenSet(p.Name+" "+p.Description))

	tagScore := 0.0
	if len(q.Tags) > 0 {
		qTags := make(map[string]bool, len(q.Tags))
		for _, t := range q.Tags {
			qTags[t] = true
		}
		pTags := make(map[string]bool, len(p.Tags))
		for _, t := range p.Tags {
			pTags[t] = true
		}
		tagScore = Jaccard(qTags, pTags)
	}

	langScore := 0.0
	switch {
	case q.Language == "":
		langScore = 0.1
	case q.Language == p.Language:
		langScore = 0.2
	case p.Language == model.LanguageOther:
		langScore = 0.1
	}

	raw := 0.5*textual + 0.3*tagScore + langScore
	return raw * math.Sqrt(p.Coherency.Composite)
}

// Rank scores every pattern against q, drops results below floor, sorts
// descending by score with ties broken by usage success rate then id for
// determinism, and returns at most limit results.
func Rank(q Query, patterns []model.Pattern, floor float64, limit int) []Result {
	var results []Result
	for _, p := range patterns {
		s := score(q, p)
		if s < floor {
			continue
		}
		results = append(results, Result{Pattern: p, Score: s})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		si, sj := results[i].Pattern.Usage.SuccessRate(), results[j].Pattern.Usage.SuccessRate()
		if si != sj {
			return si > sj
		}
		return results[i].Pattern.ID < results[j].Pattern.ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
