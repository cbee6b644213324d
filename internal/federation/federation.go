// Package federation implements the three-tier local/personal/community
// sharing model of §4.I: push copies local patterns to the personal tier
// without any gate, share to the community tier passes the share floor
// and the license gate, and queries can fan out across all three tiers
// concurrently with per-tier timeouts.
package federation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"codenerd/internal/logging"
	"codenerd/internal/model"
)

// Tier identifies one of the three independent stores.
type Tier string

const (
	TierLocal     Tier = "local"
	TierPersonal  Tier = "personal"
	TierCommunity Tier = "community"
)

// Store is the subset of patternstore.Store federation depends on.
type Store interface {
	Get(id string) (model.Pattern, error)
	Put(p model.Pattern) error
	Iter(tag string, lang model.Language) ([]model.Pattern, error)
}

// Config bounds federation behavior (§4.I).
type Config struct {
	ShareFloor            float64
	AllowCopyleftOverride bool
	PullTimeout           time.Duration
}

// DefaultConfig matches §4.I's defaults: only patterns at or above 0.7
// composite may be shared to the community tier, with a 15 second
// per-tier timeout on federated queries and pulls.
func DefaultConfig() Config {
	return Config{ShareFloor: 0.7, PullTimeout: 15 * time.Second}
}

// Federation wires together the three independent stores.
type Federation struct {
	cfg       Config
	local     Store
	personal  Store
	community Store
}

// New builds a Federation over three independently-opened stores.
func New(cfg Config, local, personal, community Store) *Federation {
	return &Federation{cfg: cfg, local: local, personal: personal, community: community}
}

// replicate writes p into dst as a last-writer-wins copy (§1 non-goals:
// federation is not a multi-writer transaction, conflict resolution is
// last-writer-wins on content hash). It adopts dst's current version for
// p so the destination store's own optimistic-concurrency check in Put
// never rejects a cross-tier copy as stale.
func replicate(dst Store, p model.Pattern) error {
	if existing, err := dst.Get(p.ID); err == nil {
		p.Version = existing.Version
	}
	return dst.Put(p)
}

func (f *Federation) storeFor(tier Tier) (Store, error) {
	switch tier {
	case TierLocal:
		return f.local, nil
	case TierPersonal:
		return f.personal, nil
	case TierCommunity:
		return f.community, nil
	default:
		return nil, fmt.Errorf("federation: unknown tier %q", tier)
	}
}

// Push copies a pattern from the local tier up to the personal tier
// unconditionally -- personal is the user's own namespace, not gated by
// license or composite floor.
func (f *Federation) Push(patternID string) (model.Pattern, error) {
	p, err := f.local.Get(patternID)
	if err != nil {
		return model.Pattern{}, err
	}
	if err := replicate(f.personal, p); err != nil {
		return model.Pattern{}, err
	}
	logging.Get(logging.CategoryFederation).Info("pushed pattern %s to personal tier", patternID)
	return p, nil
}

// Share copies a pattern from the personal tier to the community tier,
// gated on both the share floor and the SPDX license allowlist.
func (f *Federation) Share(patternID string) (model.Pattern, error) {
	p, err := f.personal.Get(patternID)
	if err != nil {
		return model.Pattern{}, err
	}
	if p.Coherency.Composite < f.cfg.ShareFloor {
		return model.Pattern{}, ErrBelowShareFloor
	}
	license := ""
	if p.Provenance != nil {
		license = p.Provenance.SourceLicense
	}
	if !licenseAllowed(license, f.cfg.AllowCopyleftOverride) {
		return model.Pattern{}, ErrLicenseBlocked
	}
	if err := replicate(f.community, p); err != nil {
		return model.Pattern{}, err
	}
	logging.Get(logging.CategoryFederation).Info("shared pattern %s to community tier", patternID)
	return p, nil
}

// Pull copies a pattern from the community tier down into the personal
// tier, bounded by the configured pull timeout.
func (f *Federation) Pull(ctx context.Context, patternID string) (model.Pattern, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.PullTimeout)
	defer cancel()

	type result struct {
		p   model.Pattern
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := f.community.Get(patternID)
		done <- result{p, err}
	}()

	select {
	case <-ctx.Done():
		return model.Pattern{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return model.Pattern{}, r.err
		}
		if err := replicate(f.personal, r.p); err != nil {
			return model.Pattern{}, err
		}
		return r.p, nil
	}
}

// FederatedQuery fans a tag/language query out across all three tiers
// concurrently, each under its own pull-timeout context, and merges the
// results by pattern id, keeping the copy with the highest composite
// score when the same id appears in more than one tier.
func (f *Federation) FederatedQuery(ctx context.Context, tag string, lang model.Language) ([]model.Pattern, error) {
	tiers := []struct {
		name  Tier
		store Store
	}{
		{TierLocal, f.local}, {TierPersonal, f.personal}, {TierCommunity, f.community},
	}

	var mu sync.Mutex
	merged := make(map[string]model.Pattern)
	var wg sync.WaitGroup

	for _, t := range tiers {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			tierCtx, cancel := context.WithTimeout(ctx, f.cfg.PullTimeout)
			defer cancel()

			type result struct {
				patterns []model.Pattern
				err      error
			}
			done := make(chan result, 1)
			go func() {
				patterns, err := t.store.Iter(tag, lang)
				done <- result{patterns, err}
			}()

			select {
			case <-tierCtx.Done():
				logging.Get(logging.CategoryFederation).Warn("federated query to %s tier timed out", t.name)
			case r := <-done:
				if r.err != nil {
					logging.Get(logging.CategoryFederation).Warn("federated query to %s tier failed: %v", t.name, r.err)
					return
				}
				mu.Lock()
				for _, p := range r.patterns {
					existing, ok := merged[p.ID]
					if !ok || p.Coherency.Composite > existing.Coherency.Composite {
						merged[p.ID] = p
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	out := make([]model.Pattern, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Coherency.Composite > out[j].Coherency.Composite })
	return out, nil
}
