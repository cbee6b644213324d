package reflection

import (
	"context"

	"codenerd/internal/model"
)

// TransformKind is one of the variant-generation strategies of §4.E.
// Heal is only attempted after a verify failure, not on every loop.
type TransformKind string

const (
	TransformSimplify TransformKind = "simplify"
	TransformSecure   TransformKind = "secure"
	TransformReadable TransformKind = "readable"
	TransformUnify    TransformKind = "unify"
	TransformCorrect  TransformKind = "correct"
	TransformHeal     TransformKind = "heal"
)

// loopKinds is the fixed rotation of non-heal transformations tried each
// loop, in order, bounded by Config.VariantsPerLoop.
var loopKinds = []TransformKind{
	TransformSimplify, TransformSecure, TransformReadable,
	TransformUnify, TransformCorrect,
}

// ProposeInput carries everything a Proposer needs to generate one
// variant, including the prior failure output when kind is TransformHeal.
type ProposeInput struct {
	Code           string
	Language       model.Language
	Kind           TransformKind
	FailureContext string
}

// Proposer generates one candidate rewrite of a pattern's code. Real
// implementations are expected to be backed by whatever code-generation
// tool the dispatcher has registered; reflection itself has no opinion on
// how a variant is produced, only on how many are tried and when to stop.
type Proposer interface {
	Propose(ctx context.Context, in ProposeInput) (string, error)
}

// Verifier runs a pattern's test code against a candidate rewrite and
// reports whether it passed, matching §6's verifier protocol.
type Verifier interface {
	Verify(ctx context.Context, code, testCode string, lang model.Language) (model.VerifyResult, error)
}
