// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/json"
)

// handleFrame parses one WebSocket text frame as either a single JSON-RPC
// request or a batch (array) of requests, processes every request
// independently in input order via handle, and returns the reply frame: nil
// when every request in the frame was a notification (no reply is sent).
// Batching semantics per spec §4.10: each element is handled independently
// and the response array keeps the request order, with no entry for a
// notification, so it is shorter than the request array when the batch
// holds notifications.
func handleFrame(raw []byte, handle func(rpcRequest) *rpcResponse) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '[' {
		var reqs []rpcRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			resp := errorResponse(nil, -32700, "parse error: "+err.Error())
			out, _ := json.Marshal(resp)
			return out
		}
		responses := make([]rpcResponse, 0, len(reqs))
		for _, req := range reqs {
			if resp := handle(req); resp != nil {
				responses = append(responses, *resp)
			}
		}
		if len(responses) == 0 {
			return nil
		}
		out, _ := json.Marshal(responses)
		return out
	}

	var req rpcRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		resp := errorResponse(nil, -32700, "parse error: "+err.Error())
		out, _ := json.Marshal(resp)
		return out
	}
	resp := handle(req)
	if resp == nil {
		return nil
	}
	out, _ := json.Marshal(resp)
	return out
}
