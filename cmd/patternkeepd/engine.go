package main

import (
	"codenerd/internal/config"
	"codenerd/internal/engine"
	"codenerd/internal/reflection"
)

// engineHandle wraps the wired engine for the CLI layer. No external test
// runner ships with patternkeepd (§6 non-goal), so the engine always runs
// with a nil Verifier. DefaultProposer is passed in, but with a nil
// Verifier the reflection loop returns every pattern unchanged.
type engineHandle struct {
	*engine.Engine
}

func newEngineHandle(cfg *config.Config) (*engineHandle, error) {
	e, err := engine.New(cfg, reflection.DefaultProposer{}, nil)
	if err != nil {
		return nil, err
	}
	return &engineHandle{Engine: e}, nil
}
