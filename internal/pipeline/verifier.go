package pipeline

import (
	"context"

	"codenerd/internal/model"
)

// Verifier runs a candidate's test code and reports pass/fail, matching
// §6's {code, testCode, language} -> {passed, output, durationMs} protocol.
type Verifier interface {
	Verify(ctx context.Context, code, testCode string, lang model.Language) (model.VerifyResult, error)
}
