package pipeline

// Config bounds the candidate state machine's gates (§4.F): the minimum
// composite to accept a submission, the minimum to auto-promote, how many
// candidates one auto-promote sweep will touch, and how many heal
// attempts a candidate gets before it's given up on as Exhausted.
type Config struct {
	SubmitFloor       float64
	PromoteFloor      float64
	MaxAutoPromoteRun int
	MaxHealAttempts   int
	RetireSuccessRate float64
	RetireMinSamples  int
}

// DefaultConfig matches §4.F's defaults: submit floor 0.5, promote floor
// 0.7, 20 candidates per auto-promote run, 3 heal attempts, retirement
// below a 0.3 success rate once at least 5 samples exist.
func DefaultConfig() Config {
	return Config{
		SubmitFloor:       0.5,
		PromoteFloor:      0.7,
		MaxAutoPromoteRun: 20,
		MaxHealAttempts:   3,
		RetireSuccessRate: 0.3,
		RetireMinSamples:  5,
	}
}
