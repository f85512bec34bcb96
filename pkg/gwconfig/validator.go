// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package gwconfig

import (
	"fmt"
	"strings"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/external/client"
)

// Validator checks semantic correctness of a loaded Config, mirroring
// config.NewValidator in the teacher.
type Validator struct{}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns the first structural problem found, or nil.
func (*Validator) Validate(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(cfg.CapabilityDirs) == 0 && len(cfg.ExternalServers) == 0 {
		return fmt.Errorf("at least one capability directory or external server must be configured")
	}
	if !cfg.Transports.Stdio && !cfg.Transports.HTTPSSE.Enabled &&
		!cfg.Transports.StreamableHTTP.Enabled && !cfg.Transports.WebSocket.Enabled {
		return fmt.Errorf("at least one transport must be enabled")
	}

	switch cfg.ConflictPolicy {
	case conflict.PolicyLocalFirst, conflict.PolicyRemoteFirst, conflict.PolicyPrefix,
		conflict.PolicyReject, conflict.PolicyFirstFound:
	default:
		return fmt.Errorf("invalid conflict_policy %q", cfg.ConflictPolicy)
	}

	seen := make(map[string]bool, len(cfg.ExternalServers))
	for _, s := range cfg.ExternalServers {
		if s.Name == "" {
			return fmt.Errorf("external server entry missing name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate external server name %q", s.Name)
		}
		seen[s.Name] = true

		if err := validateTransport(s); err != nil {
			return fmt.Errorf("external server %q: %w", s.Name, err)
		}
	}

	if w := cfg.Discovery; w.Enabled {
		sum := w.RuleWeight + w.SemanticWeight + w.LLMWeight
		if sum != 0 && (sum < 0.99 || sum > 1.01) {
			return fmt.Errorf("discovery weights must sum to 1.0, got %.3f", sum)
		}
	}

	return nil
}

func validateTransport(s ExternalServerConfig) error {
	switch s.Transport {
	case client.TransportStdio:
		if s.Command == "" {
			return fmt.Errorf("stdio transport requires command")
		}
	case client.TransportHTTP, client.TransportSSE, client.TransportWebSocket:
		if s.URL == "" {
			return fmt.Errorf("%s transport requires url", s.Transport)
		}
		if s.Transport == client.TransportWebSocket && !strings.HasPrefix(s.URL, "ws") {
			return fmt.Errorf("websocket transport url must use ws:// or wss://")
		}
	default:
		return fmt.Errorf("unknown transport %q", s.Transport)
	}
	return nil
}
