// Package scoring computes the five-dimension coherency composite and the
// independent covenant safety check of §4.B. Score is a pure function:
// every input it needs (source, resolved test code, run history) is
// passed in, so the scorer itself never touches a filesystem or a clock.
package scoring

import "codenerd/internal/model"

// Input is everything Score needs to compute one CoherencyRecord. Callers
// are responsible for resolving TestCode (e.g. by searching alongside the
// source file) before calling in -- that search is explicitly kept out of
// this package so Score stays trivially testable.
type Input struct {
	Code       string
	Language   model.Language
	SourceName string
	TestCode   string
	RunHistory []RunSample
}

// Score computes the weighted composite described in §3/§4.B. It does not
// consult the covenant; callers that need the hard safety gate call
// CheckCovenant separately.
func Score(in Input) model.CoherencyRecord {
	syn := syntaxScore(in.Code, in.Language)
	read := readability(in.Code, in.Language)
	sec := securityScore(in.Code)
	test := testProofScore(in.SourceName, in.TestCode)
	rel := reliabilityScore(in.RunHistory)

	return model.CoherencyRecord{
		Syntax:      syn,
		Readability: read,
		Security:    sec,
		TestProof:   test,
		Reliability: rel,
		Composite:   DefaultWeights.Composite(syn, read, sec, test, rel),
	}
}
