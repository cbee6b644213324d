package patternstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenerd/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patternkeep.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePattern(id, name string) model.Pattern {
	return model.Pattern{
		ID:          id,
		Name:        name,
		Code:        "function add(a, b) { return a + b; }",
		Language:    model.LanguageJS,
		Description: "adds two numbers",
		Tags:        []string{"math", "arithmetic"},
		Fingerprint: "fp-" + id,
		Coherency:   model.CoherencyRecord{Composite: 0.8},
		Version:     1,
	}
}

func TestPutAndGetPattern(t *testing.T) {
	s := openTestStore(t)
	p := samplePattern("pat-1", "add")
	require.NoError(t, s.Put(p))

	got, err := s.Get("pat-1")
	require.NoError(t, err)
	assert.Equal(t, "add", got.Name)
	assert.Equal(t, []string{"math", "arithmetic"}, got.Tags)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetByNameAndFingerprint(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(samplePattern("pat-1", "add")))

	byName, err := s.GetByName("add")
	require.NoError(t, err)
	assert.Equal(t, "pat-1", byName.ID)

	byFp, err := s.GetByFingerprint("fp-pat-1")
	require.NoError(t, err)
	assert.Equal(t, "pat-1", byFp.ID)
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIterFiltersByTagAndLanguage(t *testing.T) {
	s := openTestStore(t)
	a := samplePattern("pat-1", "add")
	b := samplePattern("pat-2", "sub")
	b.Tags = []string{"math", "subtraction"}
	b.Language = model.LanguageGo
	require.NoError(t, s.Put(a))
	require.NoError(t, s.Put(b))

	byTag, err := s.Iter("subtraction", "")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "pat-2", byTag[0].ID)

	byLang, err := s.Iter("", model.LanguageGo)
	require.NoError(t, err)
	require.Len(t, byLang, 1)
	assert.Equal(t, "pat-2", byLang[0].ID)
}

func TestRecordUsageAndRecordBug(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(samplePattern("pat-1", "add")))

	require.NoError(t, s.RecordUsage("pat-1", true))
	require.NoError(t, s.RecordUsage("pat-1", false))
	require.NoError(t, s.RecordBug("pat-1"))

	got, err := s.Get("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Usage.Returned)
	assert.Equal(t, 1, got.Usage.Succeeded)
	assert.Equal(t, 1, got.Usage.Bugged)
}

func TestPromoteCandidateWritesPatternAndVersion(t *testing.T) {
	s := openTestStore(t)
	c := model.Candidate{
		Pattern:          samplePattern("pat-1", "add"),
		GenerationMethod: model.MethodHarvest,
		TestStatus:       model.TestPassed,
		State:            model.StateCandidate,
	}
	require.NoError(t, s.PutCandidate(c))

	pattern, err := s.PromoteCandidate("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, pattern.Version)

	updated, err := s.GetCandidate("pat-1")
	require.NoError(t, err)
	assert.Equal(t, model.StateProven, updated.State)

	stored, err := s.Get("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
}

func TestPromoteCandidateRejectsDuplicateName(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(samplePattern("pat-existing", "add")))

	c := model.Candidate{
		Pattern:    samplePattern("pat-1", "add"),
		TestStatus: model.TestPassed,
		State:      model.StateCandidate,
	}
	require.NoError(t, s.PutCandidate(c))

	_, err := s.PromoteCandidate("pat-1")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRollbackPatternRestoresPriorVersion(t *testing.T) {
	s := openTestStore(t)
	c := model.Candidate{
		Pattern:    samplePattern("pat-1", "add"),
		TestStatus: model.TestPassed,
		State:      model.StateCandidate,
	}
	require.NoError(t, s.PutCandidate(c))
	_, err := s.PromoteCandidate("pat-1")
	require.NoError(t, err)

	updated, err := s.Get("pat-1")
	require.NoError(t, err)
	updated.Code = "function add(a, b) { return a - b; }"
	updated.Coherency.Composite = 0.2
	require.NoError(t, s.Put(updated))

	rolled, err := s.RollbackPattern("pat-1", 2)
	require.NoError(t, err)
	assert.Contains(t, rolled.Code, "return a + b")
}

func TestPutRejectsStaleVersion(t *testing.T) {
	s := openTestStore(t)
	p := samplePattern("pat-1", "add")
	require.NoError(t, s.Put(p))

	stale := p
	stale.Code = "function add(a, b) { return b + a; }"
	stale.Version = 99

	err := s.Put(stale)
	assert.ErrorIs(t, err, ErrStaleVersion)

	unchanged, err := s.Get("pat-1")
	require.NoError(t, err)
	assert.Equal(t, "function add(a, b) { return a + b; }", unchanged.Code)
}

func TestPutIncrementsVersionAndRetainsHistory(t *testing.T) {
	s := openTestStore(t)
	p := samplePattern("pat-1", "add")
	require.NoError(t, s.Put(p))

	current, err := s.Get("pat-1")
	require.NoError(t, err)
	require.Equal(t, 1, current.Version)

	current.Code = "function add(a, b) { return b + a; }"
	require.NoError(t, s.Put(current))

	updated, err := s.Get("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Contains(t, updated.Code, "return b + a")

	rolled, err := s.RollbackPattern("pat-1", 1)
	require.NoError(t, err)
	assert.Contains(t, rolled.Code, "return a + b")
}

func TestAppendAndRecentRunRecords(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	r := model.RunRecord{
		ID:            uuid.NewString(),
		StartedAt:     now,
		EndedAt:       now.Add(time.Second),
		PreComposite:  0.5,
		PostComposite: 0.7,
		Outcome:       "merged",
	}
	require.NoError(t, s.AppendRunRecord(r))

	recent, err := s.RecentRunRecords(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "merged", recent[0].Outcome)
}

func TestIncrementHealAttempts(t *testing.T) {
	s := openTestStore(t)
	c := model.Candidate{
		Pattern:    samplePattern("pat-1", "add"),
		TestStatus: model.TestFailed,
		State:      model.StateCandidate,
	}
	require.NoError(t, s.PutCandidate(c))

	n, err := s.IncrementHealAttempts("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.IncrementHealAttempts("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
