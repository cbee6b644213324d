package engine

import (
	"context"
	"fmt"

	"codenerd/internal/dedup"
	"codenerd/internal/dispatcher"
	"codenerd/internal/model"
	"codenerd/internal/relevance"
)

// registerOperations exposes every caller-facing capability through the
// dispatcher's flat name table, the way the teacher's tool registry
// exposes its Code/Test/Review shards under a single namespace. Wire
// framing (turning a JSON-RPC request into these params) is explicitly
// out of scope here, per §4.J.
func (e *Engine) registerOperations() error {
	ops := []dispatcher.Operation{
		{
			Name:        "pattern.query",
			Description: "ranks stored patterns against a text/tag/language query",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "text", Type: dispatcher.ParamString},
				{Name: "tags", Type: dispatcher.ParamObject},
				{Name: "language", Type: dispatcher.ParamString},
			}},
			Handler: e.opQuery,
		},
		{
			Name:        "pattern.submit",
			Description: "submits a candidate through the covenant check, scorer, and submit floor",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "code", Type: dispatcher.ParamString, Required: true},
				{Name: "language", Type: dispatcher.ParamString, Required: true},
				{Name: "name", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opSubmit,
		},
		{
			Name:        "pattern.promote",
			Description: "promotes a proven candidate to a durable pattern",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "candidate_id", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opPromote,
		},
		{
			Name:        "pattern.auto_promote",
			Description: "promotes every proven candidate up to the per-run cap",
			Handler:     e.opAutoPromote,
		},
		{
			Name:        "pattern.retire",
			Description: "retires a pattern whose recent success rate has fallen below floor",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "pattern_id", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opRetire,
		},
		{
			Name:        "pattern.reflect",
			Description: "runs the bounded reflection loop over one stored pattern",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "pattern_id", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opReflect,
		},
		{
			Name:        "pattern.harvest",
			Description: "scans a directory tree and submits unique functions as candidates",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "root", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opHarvest,
		},
		{
			Name:        "federation.push",
			Description: "copies a local pattern up to the personal tier",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "pattern_id", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opPush,
		},
		{
			Name:        "federation.share",
			Description: "copies a personal pattern to the community tier, gated by floor and license",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "pattern_id", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opShare,
		},
		{
			Name:        "federation.pull",
			Description: "copies a community pattern down into the personal tier",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "pattern_id", Type: dispatcher.ParamString, Required: true},
			}},
			Handler: e.opPull,
		},
		{
			Name:        "federation.query",
			Description: "fans a tag/language query out across all three tiers concurrently",
			Schema: dispatcher.Schema{Params: []dispatcher.ParamSchema{
				{Name: "tag", Type: dispatcher.ParamString},
				{Name: "language", Type: dispatcher.ParamString},
			}},
			Handler: e.opFederatedQuery,
		},
	}

	for _, op := range ops {
		if err := e.Dispatcher.Register(op); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) opQuery(ctx context.Context, params map[string]any) (any, error) {
	q := relevance.Query{}
	if text, ok := params["text"].(string); ok {
		q.Text = text
	}
	if lang, ok := params["language"].(string); ok {
		q.Language = model.Language(lang)
	}
	if raw, ok := params["tags"].(map[string]any); ok {
		for k := range raw {
			q.Tags = append(q.Tags, k)
		}
	}
	return e.Query(q, 0, 0)
}

func (e *Engine) opSubmit(ctx context.Context, params map[string]any) (any, error) {
	code, _ := params["code"].(string)
	lang, _ := params["language"].(string)
	name, _ := params["name"].(string)

	candidate := model.Candidate{
		Pattern: model.Pattern{
			ID:          fmt.Sprintf("submit-%s", name),
			Name:        name,
			Code:        code,
			Language:    model.Language(lang),
			Fingerprint: dedup.Fingerprint(code, model.Language(lang)),
		},
		GenerationMethod: model.MethodVariant,
		State:            model.StateSubmitted,
	}
	return e.Pipeline.Submit(ctx, candidate)
}

func (e *Engine) opPromote(ctx context.Context, params map[string]any) (any, error) {
	id, _ := params["candidate_id"].(string)
	return e.Pipeline.Promote(ctx, id)
}

func (e *Engine) opAutoPromote(ctx context.Context, params map[string]any) (any, error) {
	return e.Pipeline.AutoPromote(ctx)
}

func (e *Engine) opRetire(ctx context.Context, params map[string]any) (any, error) {
	id, _ := params["pattern_id"].(string)
	return nil, e.Pipeline.Retire(ctx, id)
}

func (e *Engine) opReflect(ctx context.Context, params map[string]any) (any, error) {
	id, _ := params["pattern_id"].(string)
	refined, _, err := e.Reflect(ctx, id)
	if err != nil {
		return nil, err
	}
	return refined, nil
}

func (e *Engine) opHarvest(ctx context.Context, params map[string]any) (any, error) {
	root, _ := params["root"].(string)
	return e.Harvest(ctx, root)
}

func (e *Engine) opPush(ctx context.Context, params map[string]any) (any, error) {
	id, _ := params["pattern_id"].(string)
	return e.Federation.Push(id)
}

func (e *Engine) opShare(ctx context.Context, params map[string]any) (any, error) {
	id, _ := params["pattern_id"].(string)
	return e.Federation.Share(id)
}

func (e *Engine) opPull(ctx context.Context, params map[string]any) (any, error) {
	id, _ := params["pattern_id"].(string)
	return e.Federation.Pull(ctx, id)
}

func (e *Engine) opFederatedQuery(ctx context.Context, params map[string]any) (any, error) {
	tag, _ := params["tag"].(string)
	lang, _ := params["language"].(string)
	return e.Federation.FederatedQuery(ctx, tag, model.Language(lang))
}
