// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package gwconfig loads the gateway process's own configuration — listen
// addresses, capability directories, external server list, conflict policy,
// discovery weights — distinct from the per-tool capability files C1 parses.
// Grounded on cmd/vmcp/app/commands.go's config.Config/NewYAMLLoader/
// NewValidator pattern from the teacher.
package gwconfig

import (
	"time"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/discovery"
	"github.com/stacklok/vgate/pkg/external/client"
)

// Config is the top-level gateway process configuration, bound from YAML via
// viper in Loader, per SPEC_FULL §2.
type Config struct {
	Name string `mapstructure:"name"`

	// Transports this instance exposes the unified catalog over.
	Transports TransportsConfig `mapstructure:"transports"`

	// CapabilityDirs are the directories C2 watches for capability files.
	CapabilityDirs []string `mapstructure:"capability_dirs"`

	// ExternalServers are the remote MCP servers C6 supervises.
	ExternalServers []ExternalServerConfig `mapstructure:"external_servers"`

	// ConflictPolicy selects C7's merge strategy.
	ConflictPolicy conflict.Policy `mapstructure:"conflict_policy"`

	// Discovery tunes C9.
	Discovery DiscoveryConfig `mapstructure:"discovery"`

	// LLM is the default OpenAI-compatible provider used by the LLM routing
	// variant and the discovery engine's llm_based/hybrid scorers, unless a
	// tool overrides it per-call. The gateway does not run the tool
	// enhancement pipeline (discovery.Enhancer), so it is not used for that.
	LLM LLMConfig `mapstructure:"llm"`

	// Postgres, when set, backs the semantic scorer's persisted tool
	// embeddings (SPEC_FULL §5.9); omitted, the scorer falls back to a
	// pure in-memory cache.
	Postgres PostgresConfig `mapstructure:"postgres"`

	QuarantineThreshold int           `mapstructure:"quarantine_threshold"`
	ShutdownGrace       time.Duration `mapstructure:"shutdown_grace"`
	Debug               bool          `mapstructure:"debug"`
}

// TransportsConfig enables/configures C10's four client-facing transports.
type TransportsConfig struct {
	Stdio bool `mapstructure:"stdio"`

	HTTPSSE struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	} `mapstructure:"http_sse"`

	StreamableHTTP struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	} `mapstructure:"streamable_http"`

	WebSocket struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	} `mapstructure:"websocket"`
}

// ExternalServerConfig is one entry of the external_servers list, lowered
// into a client.ServerSpec by Loader.
type ExternalServerConfig struct {
	Name             string            `mapstructure:"name"`
	Transport        client.TransportKind `mapstructure:"transport"`
	Command          string            `mapstructure:"command"`
	Args             []string          `mapstructure:"args"`
	Env              map[string]string `mapstructure:"env"`
	URL              string            `mapstructure:"url"`
	Headers          map[string]string `mapstructure:"headers"`
	HandshakeTimeout time.Duration     `mapstructure:"handshake_timeout"`
	HeartbeatPeriod  time.Duration     `mapstructure:"heartbeat_period"`
}

// DiscoveryConfig binds discovery.Config's fields plus the enable switch.
type DiscoveryConfig struct {
	Enabled               bool           `mapstructure:"enabled"`
	Mode                  discovery.Mode `mapstructure:"mode"`
	RuleWeight            float64        `mapstructure:"rule_weight"`
	SemanticWeight        float64        `mapstructure:"semantic_weight"`
	LLMWeight             float64        `mapstructure:"llm_weight"`
	ConfidenceThreshold   float64        `mapstructure:"confidence_threshold"`
	HighQualityThreshold  float64        `mapstructure:"high_quality_threshold"`
	MaxHighQualityMatches int            `mapstructure:"max_high_quality_matches"`
	FallbackEnabled       bool           `mapstructure:"fallback_enabled"`
	EnhancementEnabled    bool           `mapstructure:"enhancement_enabled"`
}

// LLMConfig points the gateway's LLM-backed components at an
// OpenAI-compatible endpoint.
type LLMConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	Model           string `mapstructure:"model"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
}

// PostgresConfig is the optional DSN backing the semantic scorer's
// persisted embeddings.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ToDiscoveryConfig lowers the YAML-bound DiscoveryConfig into discovery.Config,
// falling back to discovery.DefaultConfig's values for any numeric field or
// mode left zero. FallbackEnabled is copied as is, so an unset
// fallback_enabled turns fallback off.
func (d DiscoveryConfig) ToDiscoveryConfig() discovery.Config {
	cfg := discovery.DefaultConfig
	if d.Mode != "" {
		cfg.Mode = d.Mode
	}
	if d.RuleWeight != 0 || d.SemanticWeight != 0 || d.LLMWeight != 0 {
		cfg.Weights = discovery.Weights{Rule: d.RuleWeight, Semantic: d.SemanticWeight, LLM: d.LLMWeight}
	}
	if d.ConfidenceThreshold != 0 {
		cfg.ConfidenceThreshold = d.ConfidenceThreshold
	}
	if d.HighQualityThreshold != 0 {
		cfg.HighQualityThreshold = d.HighQualityThreshold
	}
	if d.MaxHighQualityMatches != 0 {
		cfg.MaxHighQualityMatches = d.MaxHighQualityMatches
	}
	cfg.FallbackEnabled = d.FallbackEnabled
	return cfg
}

// ToServerSpec lowers one ExternalServerConfig into a client.ServerSpec.
func (e ExternalServerConfig) ToServerSpec() client.ServerSpec {
	return client.ServerSpec{
		Name:             e.Name,
		Transport:        e.Transport,
		Command:          e.Command,
		Args:             e.Args,
		Env:              e.Env,
		URL:              e.URL,
		Headers:          e.Headers,
		HandshakeTimeout: e.HandshakeTimeout,
		HeartbeatPeriod:  e.HeartbeatPeriod,
	}
}
