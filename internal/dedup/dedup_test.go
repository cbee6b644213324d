package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenerd/internal/model"
)

func TestFingerprintStableAcrossWhitespaceAndComments(t *testing.T) {
	a := "function add(a, b) {\n  // sum two numbers\n  return a + b;\n}"
	b := "function add(a,b){return a+b;}"
	assert.Equal(t, Fingerprint(a, model.LanguageJS), Fingerprint(b, model.LanguageJS))
}

func TestFingerprintDiffersForDifferentLogic(t *testing.T) {
	a := "function add(a, b) { return a + b; }"
	b := "function sub(a, b) { return a - b; }"
	assert.NotEqual(t, Fingerprint(a, model.LanguageJS), Fingerprint(b, model.LanguageJS))
}

func TestCheckDetectsExactDuplicate(t *testing.T) {
	code := "function add(a, b) { return a + b; }"
	existing := []model.Pattern{{ID: "p1", Code: code, Fingerprint: Fingerprint(code, model.LanguageJS)}}
	result := Check(code, model.LanguageJS, existing, DefaultConfig())
	assert.Equal(t, VerdictDuplicate, result.Verdict)
	assert.Equal(t, "p1", result.MatchID)
}

func TestCheckDetectsNearDuplicate(t *testing.T) {
	existing := []model.Pattern{
		{ID: "p1", Code: "function addNumbers(first, second) { return first + second; }", Fingerprint: "different"},
	}
	code := "function addNumbers(first, second) { return first + second + 0; }"
	result := Check(code, model.LanguageJS, existing, DefaultConfig())
	assert.Equal(t, VerdictNearDuplicate, result.Verdict)
}

func TestCheckReturnsUniqueForDissimilarCode(t *testing.T) {
	existing := []model.Pattern{
		{ID: "p1", Code: "function add(a, b) { return a + b; }", Fingerprint: "fp1"},
	}
	code := "def fibonacci_sequence(count): pass"
	result := Check(code, model.LanguagePy, existing, DefaultConfig())
	assert.Equal(t, VerdictUnique, result.Verdict)
}

func TestCheckTruncatesToSampleSize(t *testing.T) {
	cfg := Config{SampleSize: 1, Threshold: 0.85}
	code := "function add(a, b) { return a + b; }"
	existing := []model.Pattern{
		{ID: "old", Code: "totally unrelated content here", Fingerprint: "fp-old"},
		{ID: "recent", Code: code, Fingerprint: Fingerprint(code, model.LanguageJS)},
	}
	result := Check(code, model.LanguageJS, existing, cfg)
	assert.NotEqual(t, "recent", result.MatchID)
}

type fakeSweepStore struct {
	patterns map[string]model.Pattern
}

func (f *fakeSweepStore) Iter(tag string, lang model.Language) ([]model.Pattern, error) {
	var out []model.Pattern
	for _, p := range f.patterns {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeSweepStore) Put(p model.Pattern) error {
	f.patterns[p.ID] = p
	return nil
}

func TestSweepBackfillsStaleFingerprints(t *testing.T) {
	store := &fakeSweepStore{patterns: map[string]model.Pattern{
		"p1": {ID: "p1", Code: "function add(a, b) { return a + b; }", Language: model.LanguageJS, Fingerprint: "stale"},
	}}
	fixed, err := Sweep(store)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, Fingerprint(store.patterns["p1"].Code, model.LanguageJS), store.patterns["p1"].Fingerprint)
}

func TestSweepSkipsAlreadyCorrectFingerprints(t *testing.T) {
	code := "function add(a, b) { return a + b; }"
	store := &fakeSweepStore{patterns: map[string]model.Pattern{
		"p1": {ID: "p1", Code: code, Language: model.LanguageJS, Fingerprint: Fingerprint(code, model.LanguageJS)},
	}}
	fixed, err := Sweep(store)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)
}
