package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenerd/internal/model"
)

func TestTokenizeDropsStopwordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("The quick brown fox is a sorting algorithm")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "is")
	assert.NotContains(t, tokens, "a")
	assert.Contains(t, tokens, "quick")
	assert.Contains(t, tokens, "sorting")
	assert.Contains(t, tokens, "algorithm")
}

func TestJaccardIdenticalSetsIsOne(t *testing.T) {
	a := TokenSet("binary search tree")
	b := TokenSet("binary search tree")
	assert.InDelta(t, 1.0, Jaccard(a, b), 1e-9)
}

func TestJaccardDisjointSetsIsZero(t *testing.T) {
	a := TokenSet("binary search")
	b := TokenSet("linked list")
	assert.Equal(t, 0.0, Jaccard(a, b))
}

func pattern(id, name, desc string, tags []string, lang model.Language, composite float64) model.Pattern {
	return model.Pattern{ID: id, Name: name, Description: desc, Tags: tags, Language: lang,
		Coherency: model.CoherencyRecord{Composite: composite}}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	patterns := []model.Pattern{
		pattern("p1", "binary search", "search a sorted array", []string{"search", "array"}, model.LanguageGo, 0.9),
		pattern("p2", "unrelated sort thing", "bubble sort implementation", []string{"sort"}, model.LanguageGo, 0.9),
	}
	q := Query{Text: "binary search sorted array", Tags: []string{"search"}, Language: model.LanguageGo}
	results := Rank(q, patterns, DefaultFloor, DefaultLimit)
	require.NotEmpty(t, results)
	assert.Equal(t, "p1", results[0].Pattern.ID)
}

func TestRankDropsBelowFloor(t *testing.T) {
	patterns := []model.Pattern{
		pattern("p1", "totally unrelated", "nothing in common here", nil, model.LanguageRust, 0.5),
	}
	q := Query{Text: "binary search sorted array", Language: model.LanguageGo}
	results := Rank(q, patterns, DefaultFloor, DefaultLimit)
	assert.Empty(t, results)
}

func TestRankRespectsLimit(t *testing.T) {
	var patterns []model.Pattern
	for i := 0; i < 10; i++ {
		patterns = append(patterns, pattern(string(rune('a'+i)), "search algorithm", "search a sorted array", []string{"search"}, model.LanguageGo, 0.9))
	}
	q := Query{Text: "search sorted array", Tags: []string{"search"}, Language: model.LanguageGo}
	results := Rank(q, patterns, DefaultFloor, DefaultLimit)
	assert.LessOrEqual(t, len(results), DefaultLimit)
}

func TestRankTieBreaksBySuccessRateThenID(t *testing.T) {
	p1 := pattern("p2", "search algorithm", "search a sorted array", []string{"search"}, model.LanguageGo, 0.9)
	p1.Usage = model.UsageCounters{Returned: 10, Succeeded: 5}
	p2 := pattern("p1", "search algorithm", "search a sorted array", []string{"search"}, model.LanguageGo, 0.9)
	p2.Usage = model.UsageCounters{Returned: 10, Succeeded: 9}

	q := Query{Text: "search sorted array", Tags: []string{"search"}, Language: model.LanguageGo}
	results := Rank(q, []model.Pattern{p1, p2}, DefaultFloor, DefaultLimit)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].Pattern.ID)
}
