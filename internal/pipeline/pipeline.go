// Package pipeline implements the candidate state machine of §4.F:
// Submitted -> Candidate -> Proven/Exhausted, Proven -> Retired, gated by
// the covenant safety check, the submit/promote composite floors, a
// bounded heal-retry count, and lineage cycle detection.
package pipeline

import (
	"context"
	"fmt"

	"codenerd/internal/logging"
	"codenerd/internal/model"
	"codenerd/internal/scoring"
)

// Store is the subset of patternstore.Store the pipeline depends on.
// Pipeline accepts this as an interface so it can be tested against a
// fake without a real SQLite file.
type Store interface {
	PutCandidate(c model.Candidate) error
	GetCandidate(id string) (model.Candidate, error)
	Get(id string) (model.Pattern, error)
	IterCandidatesByState(state model.CandidateState) ([]model.Candidate, error)
	PromoteCandidate(candidateID string) (model.Pattern, error)
	SetCandidateState(id string, state model.CandidateState) error
	IncrementHealAttempts(id string) (int, error)
	SetRetired(id string, retired bool) error
}

// Pipeline drives candidates through their state machine.
type Pipeline struct {
	cfg      Config
	store    Store
	verifier Verifier
}

// New builds a Pipeline over store, using verifier to test-proof submissions.
func New(cfg Config, store Store, verifier Verifier) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, verifier: verifier}
}

// Submit evaluates a freshly-proposed candidate against the covenant and
// submit floor, runs its test proof, and persists it in whichever state
// that leaves it in. A covenant failure or below-floor score rejects the
// candidate outright rather than storing it as Submitted.
func (p *Pipeline) Submit(ctx context.Context, c model.Candidate) (model.Candidate, error) {
	report := scoring.CheckCovenant(c.Code)
	if !report.Sealed {
		c.State = model.StateRejected
		return c, ErrCovenantFailed
	}

	rec := scoring.Score(scoring.Input{
		Code: c.Code, Language: c.Language, SourceName: c.Name, TestCode: c.TestCode,
	})
	c.Coherency = rec

	if rec.Composite < p.cfg.SubmitFloor {
		c.State = model.StateRejected
		return c, ErrBelowFloor
	}

	if err := p.checkCycle(c); err != nil {
		c.State = model.StateRejected
		return c, err
	}

	c.State = model.StateSubmitted
	if c.TestCode != "" && p.verifier != nil {
		result, err := p.verifier.Verify(ctx, c.Code, c.TestCode, c.Language)
		if err == nil && result.Passed {
			c.State = model.StateCandidate
			c.TestStatus = model.TestPassed
		} else {
			c.TestStatus = model.TestFailed
		}
	} else if c.TestCode != "" {
		c.TestStatus = model.TestPending
	}

	if err := p.store.PutCandidate(c); err != nil {
		return c, err
	}
	logging.Pipeline("submitted candidate %s as %s (composite=%.3f)", c.ID, c.State, rec.Composite)
	return c, nil
}

// Promote moves one Candidate-state record to Proven, writing it into the
// pattern store. It refuses candidates below the promote floor or not
// currently in the Candidate state.
func (p *Pipeline) Promote(ctx context.Context, candidateID string) (model.Pattern, error) {
	c, err := p.store.GetCandidate(candidateID)
	if err != nil {
		return model.Pattern{}, err
	}
	if c.State != model.StateCandidate {
		return model.Pattern{}, ErrInvalidTransition
	}
	if c.Coherency.Composite < p.cfg.PromoteFloor {
		return model.Pattern{}, ErrBelowFloor
	}
	return p.store.PromoteCandidate(candidateID)
}

// AutoPromote promotes every Candidate-state record at or above the
// promote floor, up to MaxAutoPromoteRun per call (§4.F).
func (p *Pipeline) AutoPromote(ctx context.Context) ([]model.Pattern, error) {
	candidates, err := p.store.IterCandidatesByState(model.StateCandidate)
	if err != nil {
		return nil, err
	}

	var promoted []model.Pattern
	for _, c := range candidates {
		if len(promoted) >= p.cfg.MaxAutoPromoteRun {
			break
		}
		if c.Coherency.Composite < p.cfg.PromoteFloor {
			continue
		}
		pattern, err := p.store.PromoteCandidate(c.ID)
		if err != nil {
			logging.Get(logging.CategoryPipeline).Warn("auto-promote failed for %s: %v", c.ID, err)
			continue
		}
		promoted = append(promoted, pattern)
	}
	logging.Pipeline("auto-promote run: %d of %d eligible candidates promoted", len(promoted), len(candidates))
	return promoted, nil
}

// Heal verifies a reworked candidate body. On success it moves the
// candidate to Candidate state; on failure it increments the heal
// counter and, once MaxHealAttempts is reached, marks the candidate
// Exhausted so it stops being retried forever.
func (p *Pipeline) Heal(ctx context.Context, candidateID, newCode string) (model.Candidate, error) {
	c, err := p.store.GetCandidate(candidateID)
	if err != nil {
		return model.Candidate{}, err
	}
	if c.State.IsTerminal() {
		return c, ErrInvalidTransition
	}

	var result model.VerifyResult
	if p.verifier != nil {
		result, err = p.verifier.Verify(ctx, newCode, c.TestCode, c.Language)
	}
	if err == nil && result.Passed {
		c.Code = newCode
		c.TestStatus = model.TestPassed
		c.State = model.StateCandidate
		rec := scoring.Score(scoring.Input{Code: newCode, Language: c.Language, SourceName: c.Name, TestCode: c.TestCode})
		c.Coherency = rec
		if err := p.store.PutCandidate(c); err != nil {
			return c, err
		}
		return c, nil
	}

	attempts, err := p.store.IncrementHealAttempts(candidateID)
	if err != nil {
		return c, err
	}
	c.HealAttempts = attempts
	if attempts >= p.cfg.MaxHealAttempts {
		c.State = model.StateExhausted
		if err := p.store.SetCandidateState(candidateID, model.StateExhausted); err != nil {
			return c, err
		}
		return c, ErrHealExhausted
	}
	return c, nil
}

// Retire marks a Proven pattern Retired once it has accumulated enough
// usage samples and its success rate has fallen below RetireSuccessRate.
func (p *Pipeline) Retire(ctx context.Context, patternID string) error {
	pattern, err := p.store.Get(patternID)
	if err != nil {
		return err
	}
	if pattern.Usage.Returned < p.cfg.RetireMinSamples {
		return nil
	}
	if pattern.Usage.SuccessRate() >= p.cfg.RetireSuccessRate {
		return nil
	}
	logging.Pipeline("retiring pattern %s: success rate %.3f below floor", patternID, pattern.Usage.SuccessRate())
	return p.store.SetRetired(patternID, true)
}

// checkCycle walks a candidate's lineage parent chain looking for a
// repeated id, which would indicate a cyclic derivation (§4.F).
func (p *Pipeline) checkCycle(c model.Candidate) error {
	visited := map[string]bool{c.ID: true}
	parentID := c.ParentID
	for depth := 0; parentID != ""; depth++ {
		if depth > 1000 {
			return fmt.Errorf("pipeline: lineage chain exceeded safety bound: %w", ErrCycleDetected)
		}
		if visited[parentID] {
			return ErrCycleDetected
		}
		visited[parentID] = true

		parent, err := p.store.Get(parentID)
		if err != nil {
			return nil // parent not yet promoted to a pattern; nothing further to walk
		}
		parentID = parent.LineageParent
	}
	return nil
}
