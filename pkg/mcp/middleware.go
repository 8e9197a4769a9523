package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/rjt/pkg/mcplog"
)

// loggingMiddleware records every tool call in the call log and at debug
// level on the server logger.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)
			elapsed := time.Since(start).Milliseconds()

			var errStr *string
			if err != nil {
				msg := err.Error()
				errStr = &msg
			}
			file := ""
			if path, ok := req.GetArguments()["path"].(string); ok && path != "" {
				file = s.resolvePath(path)
			}

			entry := mcplog.LogEntry{
				Ts:            start.UTC().Format(time.RFC3339),
				Tool:          req.Params.Name,
				Params:        mcplog.SanitizeParams(req.GetArguments()),
				File:          file,
				DurationMs:    elapsed,
				ResponseBytes: mcplog.ResponseBytes(result),
				IsError:       result != nil && result.IsError,
				Error:         errStr,
			}
			_ = s.callLog.Write(entry)

			s.logger.Debug("tool call",
				"tool", entry.Tool,
				"file", file,
				"duration_ms", elapsed,
				"is_error", entry.IsError)
			return result, err
		}
	}
}
