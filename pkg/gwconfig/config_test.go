// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package gwconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/external/client"
)

const sampleConfig = `
name: test-gateway
transports:
  stdio: true
capability_dirs:
  - ./tools
conflict_policy: local_first
external_servers:
  - name: weather
    transport: http
    url: ${WEATHER_URL}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("WEATHER_URL", "https://weather.example.com")
	path := writeConfig(t, sampleConfig)

	cfg, err := NewYAMLLoader(path).Load()
	require.NoError(t, err)
	require.Len(t, cfg.ExternalServers, 1)
	assert.Equal(t, "https://weather.example.com", cfg.ExternalServers[0].URL)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("WEATHER_URL", "https://weather.example.com")

	cfg, err := NewYAMLLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.QuarantineThreshold)
	assert.Equal(t, 0.7, cfg.Discovery.ConfidenceThreshold)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := NewYAMLLoader("/nonexistent/path.yaml").Load()
	require.Error(t, err)
}

func TestValidate_RejectsEmptyName(t *testing.T) {
	cfg := &Config{CapabilityDirs: []string{"./tools"}, Transports: TransportsConfig{Stdio: true}, ConflictPolicy: conflict.PolicyLocalFirst}
	err := NewValidator().Validate(cfg)
	require.Error(t, err)
}

func TestValidate_RequiresAtLeastOneSource(t *testing.T) {
	cfg := &Config{Name: "x", Transports: TransportsConfig{Stdio: true}, ConflictPolicy: conflict.PolicyLocalFirst}
	err := NewValidator().Validate(cfg)
	require.Error(t, err)
}

func TestValidate_RejectsUnknownConflictPolicy(t *testing.T) {
	cfg := &Config{
		Name: "x", CapabilityDirs: []string{"./tools"},
		Transports: TransportsConfig{Stdio: true}, ConflictPolicy: "nonsense",
	}
	err := NewValidator().Validate(cfg)
	require.Error(t, err)
}

func TestValidate_StdioServerRequiresCommand(t *testing.T) {
	cfg := &Config{
		Name: "x", CapabilityDirs: []string{"./tools"},
		Transports:     TransportsConfig{Stdio: true},
		ConflictPolicy: conflict.PolicyLocalFirst,
		ExternalServers: []ExternalServerConfig{
			{Name: "svc", Transport: client.TransportStdio},
		},
	}
	err := NewValidator().Validate(cfg)
	require.Error(t, err)
}

func TestValidate_ValidConfigPasses(t *testing.T) {
	cfg := &Config{
		Name: "x", CapabilityDirs: []string{"./tools"},
		Transports:     TransportsConfig{Stdio: true},
		ConflictPolicy: conflict.PolicyLocalFirst,
		ExternalServers: []ExternalServerConfig{
			{Name: "svc", Transport: client.TransportHTTP, URL: "https://example.com"},
		},
	}
	assert.NoError(t, NewValidator().Validate(cfg))
}
