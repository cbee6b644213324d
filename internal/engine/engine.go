// Package engine wires the pattern store, scorer, reflection loop,
// candidate pipeline, harvester, deduplicator, federation tiers, and
// dispatcher into one process, the way cmd/nerd's root command wires the
// teacher's shards together. It owns no domain logic of its own; every
// decision still lives in the package that the spec assigns it to.
package engine

import (
	"context"
	"fmt"
	"sort"

	"codenerd/internal/config"
	"codenerd/internal/dedup"
	"codenerd/internal/dispatcher"
	"codenerd/internal/federation"
	"codenerd/internal/harvest"
	"codenerd/internal/logging"
	"codenerd/internal/model"
	"codenerd/internal/patternstore"
	"codenerd/internal/pipeline"
	"codenerd/internal/reflection"
	"codenerd/internal/relevance"
	"codenerd/internal/scoring"
)

// Verifier is the single external test-running collaborator both the
// reflection loop and the candidate pipeline consume. patternkeep ships
// no implementation of it -- spawning an external test process is a
// non-goal (§6) -- so engines run with a nil Verifier unless the caller
// supplies one.
type Verifier interface {
	pipeline.Verifier
	reflection.Verifier
}

// Proposer is the code-generation collaborator the reflection loop
// consumes to produce variants. reflection.DefaultProposer is the shipped,
// deterministic implementation; callers may supply another.
type Proposer = reflection.Proposer

// Engine holds every wired component for one running process.
type Engine struct {
	cfg *config.Config

	local     *patternstore.Store
	personal  *patternstore.Store
	community *patternstore.Store

	Pipeline    *pipeline.Pipeline
	Reflection  *reflection.Loop
	Federation  *federation.Federation
	Dispatcher  *dispatcher.Registry

	dedupCfg   dedup.Config
	harvestCfg harvest.Config
	cloner     harvest.Cloner
}

// New opens the three store tiers named by cfg and wires every component
// over them. proposer and verifier may be nil: with either one nil,
// reflection is a no-op, and with a nil verifier, submitted candidates
// that carry test code stay Submitted with TestStatus TestPending.
func New(cfg *config.Config, proposer Proposer, verifier Verifier) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid config: %w", err)
	}

	local, err := patternstore.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("engine: open local store: %w", err)
	}
	personal, err := patternstore.Open(cfg.Federation.PersonalStorePath)
	if err != nil {
		local.Close()
		return nil, fmt.Errorf("engine: open personal store: %w", err)
	}
	community, err := patternstore.Open(cfg.Federation.CommunityStorePath)
	if err != nil {
		local.Close()
		personal.Close()
		return nil, fmt.Errorf("engine: open community store: %w", err)
	}

	var rv reflection.Verifier
	var pv pipeline.Verifier
	if verifier != nil {
		rv, pv = verifier, verifier
	}

	e := &Engine{
		cfg:       cfg,
		local:     local,
		personal:  personal,
		community: community,

		Pipeline: pipeline.New(pipeline.Config{
			SubmitFloor:       cfg.Pipeline.SubmitFloor,
			PromoteFloor:      cfg.Pipeline.PromoteFloor,
			MaxAutoPromoteRun: cfg.Pipeline.MaxAutoPromoteRun,
			MaxHealAttempts:   cfg.Pipeline.MaxHealAttempts,
			RetireSuccessRate: cfg.Pipeline.RetireSuccessRate,
			RetireMinSamples:  cfg.Pipeline.RetireMinSamples,
		}, local, pv),

		Reflection: reflection.New(reflection.Config{
			LoopBudget:      cfg.Reflection.LoopBudget,
			VariantsPerLoop: cfg.Reflection.VariantsPerLoop,
			TargetComposite: cfg.Reflection.TargetComposite,
			PerLoopBudget:   cfg.Reflection.PerLoopBudget,
		}, proposer, rv),

		Federation: federation.New(federation.Config{
			ShareFloor:            cfg.Federation.ShareFloor,
			AllowCopyleftOverride: cfg.Federation.AllowCopyleftOverride,
			PullTimeout:           cfg.Timeouts.Federation,
		}, local, personal, community),

		dedupCfg: dedup.Config{
			SampleSize: cfg.Dedup.SampleSize,
			Threshold:  cfg.Dedup.Threshold,
		},
		harvestCfg: harvest.Config{
			IgnorePatterns:      cfg.Harvest.IgnorePatterns,
			MaxFileSizeBytes:    cfg.Harvest.MaxFileSizeBytes,
			MinFunctionsPerFile: cfg.Harvest.MinFunctionsPerFile,
			MaxFiles:            cfg.Harvest.MaxFiles,
		},
		cloner: harvest.GitCloner{},
	}

	e.Dispatcher = dispatcher.New()
	if err := e.registerOperations(); err != nil {
		e.Close()
		return nil, fmt.Errorf("engine: register operations: %w", err)
	}

	logging.Get(logging.CategoryBoot).Info("engine wired: store=%s personal=%s community=%s", cfg.Store.Path, cfg.Federation.PersonalStorePath, cfg.Federation.CommunityStorePath)
	return e, nil
}

// Close releases all three store tiers. Safe to call once, after which
// the engine must not be used again.
func (e *Engine) Close() error {
	var firstErr error
	for _, s := range []*patternstore.Store{e.local, e.personal, e.community} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Score computes a fresh CoherencyRecord for code without touching the
// store, e.g. for a dispatcher "score" operation that only previews.
func (e *Engine) Score(code string, lang model.Language, sourceName, testCode string, runs []scoring.RunSample) model.CoherencyRecord {
	return scoring.Score(scoring.Input{
		Code:       code,
		Language:   lang,
		SourceName: sourceName,
		TestCode:   testCode,
		RunHistory: runs,
	})
}

// Query ranks the local store's patterns against a free-text/tag/language
// query, per §4.D.
func (e *Engine) Query(q relevance.Query, floor float64, limit int) ([]relevance.Result, error) {
	patterns, err := e.local.Iter(firstTag(q.Tags), q.Language)
	if err != nil {
		return nil, err
	}
	if floor <= 0 {
		floor = relevance.DefaultFloor
	}
	if limit <= 0 {
		limit = relevance.DefaultLimit
	}
	return relevance.Rank(q, patterns, floor, limit), nil
}

// Reflect runs the bounded reflection loop over one stored pattern and
// persists the refined result plus its run record.
func (e *Engine) Reflect(ctx context.Context, patternID string) (model.Pattern, model.RunRecord, error) {
	p, err := e.local.Get(patternID)
	if err != nil {
		return model.Pattern{}, model.RunRecord{}, err
	}
	refined, record, err := e.Reflection.Run(ctx, p)
	if err != nil {
		return model.Pattern{}, model.RunRecord{}, err
	}
	if err := e.local.Put(refined); err != nil {
		return model.Pattern{}, model.RunRecord{}, err
	}
	if err := e.local.AppendRunRecord(record); err != nil {
		return model.Pattern{}, model.RunRecord{}, err
	}
	return refined, record, nil
}

func firstTag(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}

// Harvest scans root for source files, checks each extracted function
// against the local store for duplicates, and submits the unique ones as
// candidates through the pipeline, per §4.G + §4.H working together.
func (e *Engine) Harvest(ctx context.Context, root string) ([]model.Candidate, error) {
	found, err := harvest.Scan(root, e.harvestCfg)
	if err != nil {
		return nil, fmt.Errorf("engine: harvest scan: %w", err)
	}

	existing, err := e.local.Iter("", "")
	if err != nil {
		return nil, fmt.Errorf("engine: list existing patterns: %w", err)
	}
	// dedup.Check samples the front of the slice, so keep it newest-first.
	sort.SliceStable(existing, func(i, j int) bool {
		return existing[i].CreatedAt.After(existing[j].CreatedAt)
	})

	var submitted []model.Candidate
	for i, h := range found {
		result := dedup.Check(h.Code, h.Language, existing, e.dedupCfg)
		if result.Verdict != dedup.VerdictUnique {
			logging.Get(logging.CategoryHarvest).Info("skipping duplicate of %s from %s", result.MatchID, h.Path)
			continue
		}
		candidate := harvest.ToCandidate(h, fmt.Sprintf("harvest-%d-%s", i, result.Verdict))
		candidate.Fingerprint = dedup.Fingerprint(h.Code, h.Language)
		out, err := e.Pipeline.Submit(ctx, candidate)
		if err != nil {
			logging.Get(logging.CategoryHarvest).Warn("submit failed for %s: %v", h.Path, err)
			continue
		}
		submitted = append(submitted, out)
		existing = append([]model.Pattern{out.Pattern}, existing...)
	}
	return submitted, nil
}
