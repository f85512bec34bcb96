// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandle(req rpcRequest) *rpcResponse {
	resp := resultResponse(req.ID, map[string]string{"method": req.Method})
	return &resp
}

func TestHandleFrame_SingleRequest(t *testing.T) {
	t.Parallel()

	out := handleFrame([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`), echoHandle)
	require.NotNil(t, out)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, "1", string(resp.ID))
}

func TestHandleFrame_Batch_PreservesOrderAndSize(t *testing.T) {
	t.Parallel()

	out := handleFrame([]byte(`[
		{"jsonrpc":"2.0","id":1,"method":"a"},
		{"jsonrpc":"2.0","id":2,"method":"b"}
	]`), echoHandle)
	require.NotNil(t, out)

	var resps []rpcResponse
	require.NoError(t, json.Unmarshal(out, &resps))
	require.Len(t, resps, 2)
	assert.Equal(t, "1", string(resps[0].ID))
	assert.Equal(t, "2", string(resps[1].ID))
}

func TestHandleFrame_NotificationGetsNoResponse(t *testing.T) {
	t.Parallel()

	out := handleFrame([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`), func(req rpcRequest) *rpcResponse {
		assert.True(t, req.isNotification())
		return nil
	})
	assert.Nil(t, out)
}

func TestHandleFrame_BatchDropsNotificationResponses(t *testing.T) {
	t.Parallel()

	out := handleFrame([]byte(`[
		{"jsonrpc":"2.0","id":1,"method":"a"},
		{"jsonrpc":"2.0","method":"notify_only"}
	]`), func(req rpcRequest) *rpcResponse {
		if req.isNotification() {
			return nil
		}
		resp := resultResponse(req.ID, "ok")
		return &resp
	})
	require.NotNil(t, out)

	var resps []rpcResponse
	require.NoError(t, json.Unmarshal(out, &resps))
	require.Len(t, resps, 1)
}

func TestHandleFrame_MalformedJSONReturnsParseError(t *testing.T) {
	t.Parallel()

	out := handleFrame([]byte(`not json`), echoHandle)
	require.NotNil(t, out)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32700, resp.Error.Code)
}
