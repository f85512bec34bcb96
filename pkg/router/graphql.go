// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stacklok/vgate/pkg/errs"
)

// GraphQLVariant implements the GraphQL routing backend over plain
// net/http: the retrieval pack carries no GraphQL client library for any
// language runtime this gateway targets, so a POST of {query, variables,
// operationName} per the GraphQL-over-HTTP convention is the grounded
// choice (documented in SPEC_FULL.md §3's stdlib-justification note).
type GraphQLVariant struct {
	Client HTTPDoer
}

func (v *GraphQLVariant) client() HTTPDoer {
	if v.Client != nil {
		return v.Client
	}
	return http.DefaultClient
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

func (v *GraphQLVariant) Invoke(ctx context.Context, config map[string]any) (*Result, error) {
	endpoint, err := stringField(config, "endpoint")
	if err != nil {
		return nil, err
	}
	query, err := stringField(config, "query")
	if err != nil {
		return nil, err
	}

	variables, _ := config["variables"].(map[string]any)
	reqBody := graphQLRequest{
		Query:         query,
		Variables:     variables,
		OperationName: optionalStringField(config, "operation_name", ""),
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errs.NewInvalidArgumentsError("encoding graphql request", err)
	}

	runCtx, cancel := withTimeout(ctx, timeoutField(config, "timeout_ms", 0))
	defer cancel()

	req, err := http.NewRequestWithContext(runCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.NewTransportError("building graphql request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, val := range stringMapField(config, "headers") {
		req.Header.Set(k, val)
	}

	resp, err := v.client().Do(req)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errs.NewTimeoutError(fmt.Sprintf("graphql request to %s timed out", endpoint), err)
		}
		return nil, errs.NewTransportError(fmt.Sprintf("graphql request to %s failed", endpoint), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewTransportError("reading graphql response", err)
	}
	if resp.StatusCode >= 500 {
		return nil, errs.NewUpstream5xxError(fmt.Sprintf("%s returned %d", endpoint, resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return nil, errs.NewUpstream4xxError(fmt.Sprintf("%s returned %d", endpoint, resp.StatusCode), nil)
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(data, &gqlResp); err != nil {
		return nil, errs.NewRemoteError("graphql response is not valid JSON", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, errs.NewGraphQlError(gqlResp.Errors[0].Message, nil)
	}

	return textResult(true, string(gqlResp.Data)), nil
}
