package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagsCollapsesDuplicatesPreservingOrder(t *testing.T) {
	got := NormalizeTags([]string{"math", "array", "math", "", "sort"})
	assert.Equal(t, []string{"math", "array", "sort"}, got)
}

func TestLanguageValid(t *testing.T) {
	assert.True(t, LanguageGo.Valid())
	assert.True(t, LanguageOther.Valid())
	assert.False(t, Language("cobol").Valid())
}

func TestIsBraceLanguage(t *testing.T) {
	assert.True(t, LanguageJS.IsBraceLanguage())
	assert.True(t, LanguageGo.IsBraceLanguage())
	assert.False(t, LanguagePy.IsBraceLanguage())
	assert.False(t, LanguageOther.IsBraceLanguage())
}

func TestUsageCountersSuccessRateNeutralWhenNoHistory(t *testing.T) {
	u := UsageCounters{}
	assert.Equal(t, 1.0, u.SuccessRate())
}

func TestUsageCountersSuccessRate(t *testing.T) {
	u := UsageCounters{Returned: 10, Succeeded: 7}
	assert.InDelta(t, 0.7, u.SuccessRate(), 1e-9)
}

func TestCandidateStateIsTerminal(t *testing.T) {
	assert.True(t, StateRejected.IsTerminal())
	assert.True(t, StateRetired.IsTerminal())
	assert.True(t, StateExhausted.IsTerminal())
	assert.False(t, StateCandidate.IsTerminal())
	assert.False(t, StateProven.IsTerminal())
}
