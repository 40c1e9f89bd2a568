package lifecycle

import (
	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// Config carries the runtime knobs the dispatch loop needs. Local mode is an
// explicit configuration value injected at construction, never sniffed from
// ambient process state.
type Config struct {
	// LocalMode disables metrics publication and routes continuations through
	// the in-process backend. Used by local harnesses and tests.
	LocalMode bool `yaml:"local_mode" json:"local_mode"`

	// SafetyMarginSeconds is subtracted from the remaining execution budget
	// before the scheduler considers waiting in process. Tunable policy, not a
	// fixed constant.
	SafetyMarginSeconds int `yaml:"safety_margin_seconds" json:"safety_margin_seconds"`

	// MaxInProcessWaitSeconds caps how long the scheduler may wait in process
	// before it must register an external continuation instead.
	MaxInProcessWaitSeconds int `yaml:"max_in_process_wait_seconds" json:"max_in_process_wait_seconds"`

	// MetricsNamespace prefixes published metric names.
	MetricsNamespace string `yaml:"metrics_namespace" json:"metrics_namespace"`
}

// DefaultConfig returns the defaults applied when a field is unset.
func DefaultConfig() Config {
	return Config{
		SafetyMarginSeconds:     30,
		MaxInProcessWaitSeconds: 60,
		MetricsNamespace:        "lifecycle",
	}
}

// ParseConfig attempts to parse JSON or YAML into a Config, applying defaults
// for unset fields. yaml can handle JSON too, so a single attempt is fine.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, errors.CategoryBadInput, "invalid config document").
			WithTextCode(CodeInternalFailure)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the scheduler policy cannot work with.
func (c Config) Validate() error {
	if c.SafetyMarginSeconds < 0 {
		return errors.New("safety margin cannot be negative", errors.CategoryValidation).
			WithTextCode(CodeInternalFailure)
	}
	if c.MaxInProcessWaitSeconds < 0 {
		return errors.New("max in-process wait cannot be negative", errors.CategoryValidation).
			WithTextCode(CodeInternalFailure)
	}
	if c.MetricsNamespace == "" {
		return errors.New("metrics namespace cannot be empty", errors.CategoryValidation).
			WithTextCode(CodeInternalFailure)
	}
	return nil
}
