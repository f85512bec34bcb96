// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEVariant_UnderCapIsNotTruncated(t *testing.T) {
	t.Parallel()

	body := "data: one\n\ndata: two\n\n"
	doer := &fakeDoer{responses: []fakeResponse{{status: 200, body: body}}}
	v := &SSEVariant{Client: doer}

	res, err := v.Invoke(context.Background(), map[string]any{
		"url":        "https://example.com/stream",
		"max_events": 5,
	})
	require.NoError(t, err)
	assert.False(t, res.Truncated)
	assert.Equal(t, "one\ntwo", res.Content[0].Text)
}

func TestSSEVariant_ReachingMaxEventsSetsTruncated(t *testing.T) {
	t.Parallel()

	body := "data: one\n\ndata: two\n\ndata: three\n\n"
	doer := &fakeDoer{responses: []fakeResponse{{status: 200, body: body}}}
	v := &SSEVariant{Client: doer}

	res, err := v.Invoke(context.Background(), map[string]any{
		"url":        "https://example.com/stream",
		"max_events": 2,
	})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "one\ntwo", res.Content[0].Text)
}

func TestSSEVariant_EventFilterSkipsNonMatchingEvents(t *testing.T) {
	t.Parallel()

	body := "event: keep\ndata: yes\n\nevent: drop\ndata: no\n\n"
	doer := &fakeDoer{responses: []fakeResponse{{status: 200, body: body}}}
	v := &SSEVariant{Client: doer}

	res, err := v.Invoke(context.Background(), map[string]any{
		"url":          "https://example.com/stream",
		"max_events":   5,
		"event_filter": "keep",
	})
	require.NoError(t, err)
	assert.False(t, res.Truncated)
	assert.Equal(t, "keep:yes", res.Content[0].Text)
}

func TestSSEVariant_Upstream5xxErrors(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{responses: []fakeResponse{{status: 503, body: ""}}}
	v := &SSEVariant{Client: doer}

	_, err := v.Invoke(context.Background(), map[string]any{"url": "https://example.com/stream"})
	require.Error(t, err)
}
