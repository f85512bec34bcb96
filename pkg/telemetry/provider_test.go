// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_RegistersInstruments(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(context.Background(), Config{ServiceName: "vgate-test"})
	require.NoError(t, err)
	require.NotNil(t, p.ToolInvocations)
	require.NotNil(t, p.ToolLatency)

	p.ToolInvocations.Add(context.Background(), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	p.Handler().ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)

	require.NoError(t, p.Shutdown(context.Background()))
}
