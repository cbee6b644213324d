package reflection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codenerd/internal/model"
)

type stubProposer struct {
	codeForKind map[TransformKind]string
}

func (s *stubProposer) Propose(ctx context.Context, in ProposeInput) (string, error) {
	if code, ok := s.codeForKind[in.Kind]; ok {
		return code, nil
	}
	return in.Code, nil
}

type stubVerifier struct {
	passing map[string]bool
}

func (s *stubVerifier) Verify(ctx context.Context, code, testCode string, lang model.Language) (model.VerifyResult, error) {
	if s.passing[code] {
		return model.VerifyResult{Passed: true}, nil
	}
	return model.VerifyResult{Passed: false, Output: "assertion failed"}, nil
}

func basePattern() model.Pattern {
	return model.Pattern{
		Name:     "add",
		Code:     "function add(a, b) { return a + b; }",
		Language: model.LanguageJS,
		TestCode: "test('add', () => { expect(add(1,2)).toBe(3); })",
		Coherency: model.CoherencyRecord{Composite: 0.4},
	}
}

func TestRunNoOpWithoutProposerOrVerifier(t *testing.T) {
	loop := New(DefaultConfig(), nil, nil)
	p := basePattern()
	got, record, err := loop.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.Coherency.Composite, got.Coherency.Composite)
	assert.Equal(t, "skipped", record.Outcome)
}

func TestRunStopsAtTargetComposite(t *testing.T) {
	improved := "function add(a, b) {\n  // adds two numbers\n  return a + b;\n}"
	proposer := &stubProposer{codeForKind: map[TransformKind]string{TransformReadable: improved}}
	verifier := &stubVerifier{passing: map[string]bool{improved: true}}

	cfg := DefaultConfig()
	cfg.TargetComposite = 0.01
	loop := New(cfg, proposer, verifier)

	p := basePattern()
	got, record, err := loop.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.Coherency.Composite, record.PreComposite)
	assert.Equal(t, p.Code, got.Code)
}

func TestRunMergesImprovedVariant(t *testing.T) {
	improved := "function add(a, b) {\n  // adds two numbers together\n  return a + b;\n}"
	proposer := &stubProposer{codeForKind: map[TransformKind]string{TransformReadable: improved}}
	verifier := &stubVerifier{passing: map[string]bool{improved: true}}

	loop := New(DefaultConfig(), proposer, verifier)
	p := basePattern()

	got, record, err := loop.Run(context.Background(), p)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Coherency.Composite, p.Coherency.Composite)
	assert.Equal(t, "merged", record.Outcome)
}

func TestRunReachesFixedPointWhenNothingImproves(t *testing.T) {
	proposer := &stubProposer{}
	verifier := &stubVerifier{passing: map[string]bool{}}
	loop := New(DefaultConfig(), proposer, verifier)

	p := basePattern()
	got, record, err := loop.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.Code, got.Code)
	assert.Equal(t, "skipped", record.Outcome)
}

func TestPerLoopBudgetIsRespected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerLoopBudget = time.Millisecond
	loop := New(cfg, &stubProposer{}, &stubVerifier{})
	p := basePattern()
	_, _, err := loop.Run(context.Background(), p)
	require.NoError(t, err)
}
