package federation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenerd/internal/model"
)

type fakeStore struct {
	patterns map[string]model.Pattern
}

func newFakeStore(patterns ...model.Pattern) *fakeStore {
	m := make(map[string]model.Pattern)
	for _, p := range patterns {
		m[p.ID] = p
	}
	return &fakeStore{patterns: m}
}

func (f *fakeStore) Get(id string) (model.Pattern, error) {
	p, ok := f.patterns[id]
	if !ok {
		return model.Pattern{}, errNotFound
	}
	return p, nil
}

func (f *fakeStore) Put(p model.Pattern) error {
	f.patterns[p.ID] = p
	return nil
}

func (f *fakeStore) Iter(tag string, lang model.Language) ([]model.Pattern, error) {
	var out []model.Pattern
	for _, p := range f.patterns {
		out = append(out, p)
	}
	return out, nil
}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }

var errNotFound = &testErr{"not found"}

func TestPushCopiesPatternToPersonal(t *testing.T) {
	local := newFakeStore(model.Pattern{ID: "p1", Name: "add"})
	personal := newFakeStore()
	community := newFakeStore()
	f := New(DefaultConfig(), local, personal, community)

	got, err := f.Push("p1")
	require.NoError(t, err)
	assert.Equal(t, "add", got.Name)

	stored, err := personal.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "add", stored.Name)
}

func TestShareRejectsBelowFloor(t *testing.T) {
	personal := newFakeStore(model.Pattern{ID: "p1", Coherency: model.CoherencyRecord{Composite: 0.5}})
	f := New(DefaultConfig(), newFakeStore(), personal, newFakeStore())

	_, err := f.Share("p1")
	assert.ErrorIs(t, err, ErrBelowShareFloor)
}

func TestShareRejectsDisallowedLicense(t *testing.T) {
	personal := newFakeStore(model.Pattern{
		ID: "p1", Coherency: model.CoherencyRecord{Composite: 0.9},
		Provenance: &model.Provenance{SourceLicense: "GPL-3.0"},
	})
	f := New(DefaultConfig(), newFakeStore(), personal, newFakeStore())

	_, err := f.Share("p1")
	assert.ErrorIs(t, err, ErrLicenseBlocked)
}

func TestShareAllowsCopyleftWithOverride(t *testing.T) {
	personal := newFakeStore(model.Pattern{
		ID: "p1", Coherency: model.CoherencyRecord{Composite: 0.9},
		Provenance: &model.Provenance{SourceLicense: "GPL-3.0"},
	})
	cfg := DefaultConfig()
	cfg.AllowCopyleftOverride = true
	community := newFakeStore()
	f := New(cfg, newFakeStore(), personal, community)

	_, err := f.Share("p1")
	require.NoError(t, err)
	_, err = community.Get("p1")
	require.NoError(t, err)
}

func TestShareAllowsPermissiveLicense(t *testing.T) {
	personal := newFakeStore(model.Pattern{
		ID: "p1", Coherency: model.CoherencyRecord{Composite: 0.9},
		Provenance: &model.Provenance{SourceLicense: "MIT"},
	})
	community := newFakeStore()
	f := New(DefaultConfig(), newFakeStore(), personal, community)

	_, err := f.Share("p1")
	require.NoError(t, err)
}

func TestPullCopiesFromCommunityToPersonal(t *testing.T) {
	community := newFakeStore(model.Pattern{ID: "p1", Name: "add"})
	personal := newFakeStore()
	f := New(DefaultConfig(), newFakeStore(), personal, community)

	got, err := f.Pull(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "add", got.Name)
}

func TestFederatedQueryMergesKeepingHighestComposite(t *testing.T) {
	local := newFakeStore(model.Pattern{ID: "p1", Coherency: model.CoherencyRecord{Composite: 0.6}})
	personal := newFakeStore(model.Pattern{ID: "p1", Coherency: model.CoherencyRecord{Composite: 0.9}})
	community := newFakeStore()
	f := New(DefaultConfig(), local, personal, community)

	results, err := f.FederatedQuery(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.9, results[0].Coherency.Composite, 1e-9)
}
