// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcp exposes the archive tools over the MCP JSON-RPC protocol.
// Requests arrive as HTTP POSTs; each response is written as a single
// server-sent event so streaming MCP clients can consume it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/pride-gateway/internal/tools"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

const protocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// Request is an incoming MCP JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing MCP JSON-RPC response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server dispatches MCP requests to the tool runner.
type Server struct {
	Runner *tools.Runner

	// ServerName and Version identify the gateway in initialize.
	ServerName string
	Version    string
}

// ServeHTTP handles one MCP request per POST. The response is framed as
// a single SSE "data:" event.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeEvent(w, Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: codeParseError, Message: "reading request body"},
		})
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeEvent(w, Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: codeParseError, Message: "invalid JSON-RPC request"},
		})
		return
	}

	writeEvent(w, s.Handle(r.Context(), req))
}

// Handle dispatches one decoded request.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeMethodNotFound, Message: "method not found: " + req.Method},
		}
	}
}

func (s *Server) handleInitialize(req Request) Response {
	name := s.ServerName
	if name == "" {
		name = "pride-gateway"
	}
	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    name,
				"version": s.Version,
			},
		},
	}
}

func (s *Server) handleToolsList(req Request) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]any{"tools": tools.Catalog()},
	}
}

// callParams are the tools/call parameters.
type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) Response {
	var params callParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeInvalidParams, Message: "invalid tools/call params"},
		}
	}
	if !tools.Known(params.Name) {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeInvalidParams, Message: "unknown tool: " + params.Name},
		}
	}

	call := types.ToolCall{ToolName: params.Name, Parameters: stringArguments(params.Arguments)}
	payload, err := s.Runner.Run(ctx, call)
	if err != nil {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeToolFailed, Message: err.Error()},
		}
	}

	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": string(payload)},
			},
		},
	}
}

// stringArguments flattens a JSON arguments object into the string map
// the runner expects. Non-string scalars are rendered with %v; nested
// values are re-encoded as JSON.
func stringArguments(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil
	}
	out := make(map[string]string, len(args))
	for k, v := range args {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			// JSON numbers for paging parameters are whole values.
			out[k] = fmt.Sprintf("%d", int64(val))
		case bool:
			out[k] = fmt.Sprintf("%v", val)
		default:
			if data, err := json.Marshal(v); err == nil {
				out[k] = string(data)
			}
		}
	}
	return out
}

// writeEvent frames resp as one SSE event.
func writeEvent(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	data, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
