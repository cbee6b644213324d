// Package reflection implements the bounded fixed-point iterative
// refinement loop of §4.E: propose a handful of rewrites of a pattern
// each round, keep only the ones that still pass their tests and score
// higher than the incumbent, and stop either at the composite target,
// the loop budget, or the first round that improves nothing.
package reflection

import (
	"context"
	"time"

	"github.com/google/uuid"

	"codenerd/internal/logging"
	"codenerd/internal/model"
	"codenerd/internal/scoring"
)

// Loop runs bounded refinement rounds over one pattern at a time.
type Loop struct {
	cfg      Config
	proposer Proposer
	verifier Verifier
}

// New builds a reflection Loop. proposer and verifier are required; a nil
// proposer or verifier makes Run a no-op that returns the input unchanged.
func New(cfg Config, proposer Proposer, verifier Verifier) *Loop {
	return &Loop{cfg: cfg, proposer: proposer, verifier: verifier}
}

// Run attempts to improve p's composite score within the configured
// budgets. It returns the best version found (p itself if nothing beat
// it) and a RunRecord describing the attempt for the maintenance history.
func (l *Loop) Run(ctx context.Context, p model.Pattern) (model.Pattern, model.RunRecord, error) {
	record := model.RunRecord{
		ID:           uuid.NewString(),
		StartedAt:    time.Now().UTC(),
		PreComposite: p.Coherency.Composite,
		Outcome:      "skipped",
	}

	if l.proposer == nil || l.verifier == nil {
		record.EndedAt = time.Now().UTC()
		record.PostComposite = p.Coherency.Composite
		return p, record, nil
	}

	best := p
	for round := 0; round < l.cfg.LoopBudget; round++ {
		if best.Coherency.Composite >= l.cfg.TargetComposite {
			break
		}

		loopCtx, cancel := context.WithTimeout(ctx, l.cfg.PerLoopBudget)
		improved := l.tryRound(loopCtx, best)
		cancel()

		if improved == nil {
			break // fixed point: this round found nothing better
		}
		best = *improved
	}

	record.EndedAt = time.Now().UTC()
	record.PostComposite = best.Coherency.Composite
	delta := best.Coherency.Composite - p.Coherency.Composite
	record.Changes = []model.FileChange{{Path: p.Name, Delta: delta}}
	switch {
	case delta > 0:
		record.Outcome = "merged"
	default:
		record.Outcome = "skipped"
	}

	logging.Get(logging.CategoryReflection).Info(
		"reflection round for %s: %.3f -> %.3f (%s)", p.Name, record.PreComposite, record.PostComposite, record.Outcome)
	return best, record, nil
}

// tryRound proposes up to VariantsPerLoop rewrites, verifies and scores
// each, and returns the best one that beats incumbent -- or nil if none
// did.
func (l *Loop) tryRound(ctx context.Context, incumbent model.Pattern) *model.Pattern {
	var best *model.Pattern
	bestComposite := incumbent.Coherency.Composite

	n := l.cfg.VariantsPerLoop
	if n > len(loopKinds) {
		n = len(loopKinds)
	}
	for i := 0; i < n; i++ {
		kind := loopKinds[i]
		candidate, ok := l.proposeAndVerify(ctx, incumbent, kind, "")
		if !ok {
			continue
		}
		if candidate.Coherency.Composite > bestComposite {
			bestComposite = candidate.Coherency.Composite
			c := candidate
			best = &c
		}
	}
	return best
}

// proposeAndVerify generates one variant, verifies it, and -- if the
// first verify fails -- retries once as a heal attempt using the
// failure output as context, per §4.E's heal-on-failure rule.
func (l *Loop) proposeAndVerify(ctx context.Context, base model.Pattern, kind TransformKind, failureCtx string) (model.Pattern, bool) {
	code, err := l.proposer.Propose(ctx, ProposeInput{
		Code: base.Code, Language: base.Language, Kind: kind, FailureContext: failureCtx,
	})
	if err != nil || code == "" {
		return model.Pattern{}, false
	}

	result, err := l.verifier.Verify(ctx, code, base.TestCode, base.Language)
	if err != nil {
		return model.Pattern{}, false
	}
	if !result.Passed {
		if kind == TransformHeal {
			return model.Pattern{}, false
		}
		return l.proposeAndVerify(ctx, base, TransformHeal, result.Output)
	}

	rec := scoring.Score(scoring.Input{
		Code: code, Language: base.Language, SourceName: base.Name, TestCode: base.TestCode,
	})
	candidate := base
	candidate.Code = code
	candidate.Coherency = rec
	return candidate, true
}
