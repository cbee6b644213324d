package reflection

import "time"

// Config bounds one reflection run: how many fixed-point loops to try,
// how many variants to propose per loop, the composite target that ends
// the loop early, and the wall-clock budget for each loop (§4.E).
type Config struct {
	LoopBudget      int
	VariantsPerLoop int
	TargetComposite float64
	PerLoopBudget   time.Duration
}

// DefaultConfig matches §4.E's defaults: 3 loops, VariantsPerLoop 6,
// target composite 0.9, 2 seconds per loop. A loop proposes at most
// len(loopKinds) (5) standalone variants whatever VariantsPerLoop says;
// heal is proposed only as a retry after a failed verify.
func DefaultConfig() Config {
	return Config{
		LoopBudget:      3,
		VariantsPerLoop: 6,
		TargetComposite: 0.9,
		PerLoopBudget:   2 * time.Second,
	}
}
