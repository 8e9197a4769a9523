package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/rjt/pkg/compiler"
	"github.com/gnana997/rjt/pkg/emit"
)

func (s *Server) handleCompileTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := emit.ParseFormat(req.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path = s.resolvePath(path)

	s.mu.Lock()
	var code string
	if source, ok := req.GetArguments()["source"].(string); ok {
		code, err = s.compiler.CompileSource(path, []byte(source), s.syntax, s.cache)
	} else {
		code, err = s.compiler.Compile(path, s.syntax, s.cache)
	}
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := emit.Emit(code, compiler.OutputName(path), format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleAnalyzeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path = s.resolvePath(path)

	s.mu.Lock()
	result, err := s.compiler.Analyzer().Analyze(path, s.syntax, s.cache)
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleInspectTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path = s.resolvePath(path)

	s.mu.Lock()
	var in *compiler.Inspection
	if source, ok := req.GetArguments()["source"].(string); ok {
		in, err = s.compiler.InspectSource(path, []byte(source), s.syntax, s.cache)
	} else {
		in, err = s.compiler.Inspect(path, s.syntax, s.cache)
	}
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(in)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
