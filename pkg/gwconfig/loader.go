// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package gwconfig

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/discovery"
)

// envPattern matches ${VAR} references inside string config values, expanded
// against the process environment before viper unmarshals — the same
// ${ENV} convention pkg/template uses for tool routing configs, applied here
// to the gateway's own config file.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// YAMLLoader reads a gwconfig.Config from a YAML file, expanding ${ENV}
// references, mirroring config.NewYAMLLoader in the teacher.
type YAMLLoader struct {
	path string
}

// NewYAMLLoader constructs a loader bound to path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{path: path}
}

// Load reads, expands and unmarshals the configuration file, applying
// defaults for anything the file leaves zero.
func (l *YAMLLoader) Load() (*Config, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}

	expanded := envPattern.ReplaceAllStringFunc(string(raw), func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return match
	})

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(expanded)); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", l.path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = conflict.PolicyLocalFirst
	}
	if cfg.QuarantineThreshold == 0 {
		cfg.QuarantineThreshold = 5
	}
	if cfg.Discovery.Mode == "" {
		cfg.Discovery.Mode = discovery.ModeHybrid
	}
	if cfg.Discovery.ConfidenceThreshold == 0 {
		cfg.Discovery.ConfidenceThreshold = discovery.DefaultConfig.ConfidenceThreshold
	}
	if cfg.Discovery.HighQualityThreshold == 0 {
		cfg.Discovery.HighQualityThreshold = discovery.DefaultConfig.HighQualityThreshold
	}
	if cfg.Discovery.MaxHighQualityMatches == 0 {
		cfg.Discovery.MaxHighQualityMatches = discovery.DefaultConfig.MaxHighQualityMatches
	}
	if cfg.Discovery.RuleWeight == 0 && cfg.Discovery.SemanticWeight == 0 && cfg.Discovery.LLMWeight == 0 {
		cfg.Discovery.RuleWeight = discovery.DefaultWeights.Rule
		cfg.Discovery.SemanticWeight = discovery.DefaultWeights.Semantic
		cfg.Discovery.LLMWeight = discovery.DefaultWeights.LLM
	}
}
