// Package config loads and defaults patternkeep's process configuration:
// store location, reflection/pipeline floors and budgets, harvester
// options, federation tiers, and logging policy. It is a single injected
// struct rather than module-scope mutable state, per the project's
// no-singletons design note.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"codenerd/internal/logging"
)

// Config holds all patternkeep configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Store      StoreConfig      `yaml:"store"`
	Reflection ReflectionConfig `yaml:"reflection"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Harvest    HarvestConfig    `yaml:"harvest"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Federation FederationConfig `yaml:"federation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
}

// StoreConfig locates the on-disk pattern store and bounds its history rings.
type StoreConfig struct {
	Path                  string `yaml:"path"`
	VersionHistoryPerItem int    `yaml:"version_history_per_item"`
	MaxRunRecords         int    `yaml:"max_run_records"`
}

// ReflectionConfig bounds the iterative refiner of §4.E.
type ReflectionConfig struct {
	TargetComposite float64       `yaml:"target_composite"`
	LoopBudget      int           `yaml:"loop_budget"`
	VariantsPerLoop int           `yaml:"variants_per_loop"`
	PerLoopBudget   time.Duration `yaml:"per_loop_budget"`
}

// PipelineConfig holds the candidate state machine's floors and bounds of §4.F.
type PipelineConfig struct {
	SubmitFloor       float64 `yaml:"submit_floor"`
	PromoteFloor      float64 `yaml:"promote_floor"`
	MaxHealAttempts   int     `yaml:"max_heal_attempts"`
	MaxAutoPromoteRun int     `yaml:"max_auto_promote_run"`
	RetireSuccessRate float64 `yaml:"retire_success_rate"`
	RetireMinSamples  int     `yaml:"retire_min_samples"`
}

// HarvestConfig holds the bulk ingestor's options of §4.G.
type HarvestConfig struct {
	MaxFileSizeBytes    int64    `yaml:"max_file_size_bytes"`
	MinFunctionsPerFile int      `yaml:"min_functions_per_file"`
	MaxFiles            int      `yaml:"max_files"`
	IgnorePatterns      []string `yaml:"ignore_patterns"`
	SplitMode           string   `yaml:"split_mode"` // "function" | "file"
}

// DedupConfig bounds the near-duplicate sweep of §4.H.
type DedupConfig struct {
	SampleSize int     `yaml:"sample_size"`
	Threshold  float64 `yaml:"threshold"`
}

// FederationConfig locates the personal/community tiers and share gates of §4.I.
type FederationConfig struct {
	PersonalStorePath     string   `yaml:"personal_store_path"`
	CommunityStorePath    string   `yaml:"community_store_path"`
	ShareFloor            float64  `yaml:"share_floor"`
	AllowedLicenses       []string `yaml:"allowed_licenses"`
	AllowCopyleftOverride bool     `yaml:"allow_copyleft_override"`
}

// LoggingConfig controls the logging package's debug mode and categories.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// TimeoutConfig holds the per-call timeouts of §5.
type TimeoutConfig struct {
	Verifier  time.Duration `yaml:"verifier"`
	Clone     time.Duration `yaml:"clone"`
	Federation time.Duration `yaml:"federation"`
}

// DefaultConfig returns patternkeep's default configuration. The scoring
// sub-score weights are a process-wide constant (see internal/scoring)
// and deliberately do not appear here, per spec §3's "not per-pattern".
func DefaultConfig() *Config {
	return &Config{
		Name:    "patternkeep",
		Version: "0.1.0",

		Store: StoreConfig{
			Path:                  ".patternkeep/local.db",
			VersionHistoryPerItem: 10,
			MaxRunRecords:         50,
		},
		Reflection: ReflectionConfig{
			TargetComposite: 0.9,
			LoopBudget:      3,
			VariantsPerLoop: 6,
			PerLoopBudget:   2 * time.Second,
		},
		Pipeline: PipelineConfig{
			SubmitFloor:       0.5,
			PromoteFloor:      0.7,
			MaxHealAttempts:   3,
			MaxAutoPromoteRun: 20,
			RetireSuccessRate: 0.3,
			RetireMinSamples:  5,
		},
		Harvest: HarvestConfig{
			MaxFileSizeBytes:    50 * 1024,
			MinFunctionsPerFile: 1,
			MaxFiles:            200,
			SplitMode:           "function",
			IgnorePatterns: []string{
				".git", ".hg", ".svn",
				"node_modules", "vendor", "dist", "build",
				".venv", "venv", ".cache", "target", "bin", "obj",
			},
		},
		Dedup: DedupConfig{
			SampleSize: 100,
			Threshold:  0.85,
		},
		Federation: FederationConfig{
			PersonalStorePath:  ".patternkeep/personal.db",
			CommunityStorePath: ".patternkeep/community.db",
			ShareFloor:         0.7,
			AllowedLicenses:    []string{"MIT", "Apache-2.0", "BSD-3-Clause", "BSD-2-Clause", "ISC", "MPL-2.0"},
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
		Timeouts: TimeoutConfig{
			Verifier:   60 * time.Second,
			Clone:      60 * time.Second,
			Federation: 15 * time.Second,
		},
	}
}

// Load reads a YAML config file at path, falling back to defaults if the
// file does not exist, then applies PATTERNKEEP_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Get(logging.CategoryBoot).Info("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides applies PATTERNKEEP_* environment variable overrides,
// per §6's "environment variables recognized" contract.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PATTERNKEEP_STORE_PATH"); path != "" {
		c.Store.Path = path
	}
	if path := os.Getenv("PATTERNKEEP_PERSONAL_STORE_PATH"); path != "" {
		c.Federation.PersonalStorePath = path
	}
	if path := os.Getenv("PATTERNKEEP_COMMUNITY_STORE_PATH"); path != "" {
		c.Federation.CommunityStorePath = path
	}
	if os.Getenv("PATTERNKEEP_DEBUG") == "true" {
		c.Logging.DebugMode = true
	}
	if d := os.Getenv("PATTERNKEEP_VERIFIER_TIMEOUT"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil {
			c.Timeouts.Verifier = parsed
		}
	}
	if d := os.Getenv("PATTERNKEEP_CLONE_TIMEOUT"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil {
			c.Timeouts.Clone = parsed
		}
	}
}

// Validate checks invariants that must hold before the config is used to
// wire up the engine.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Reflection.LoopBudget <= 0 {
		return fmt.Errorf("reflection.loop_budget must be positive")
	}
	if c.Pipeline.SubmitFloor < 0 || c.Pipeline.SubmitFloor > 1 {
		return fmt.Errorf("pipeline.submit_floor must be in [0,1]")
	}
	if c.Pipeline.PromoteFloor < c.Pipeline.SubmitFloor {
		return fmt.Errorf("pipeline.promote_floor must be >= submit_floor")
	}
	return nil
}
