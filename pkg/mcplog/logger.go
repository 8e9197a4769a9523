// Package mcplog writes one JSON line per MCP tool call.
package mcplog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// LogEntry is the schema for one JSONL line.
type LogEntry struct {
	Ts     string         `json:"ts"`
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
	// File is the template or module the call was about, when there is one.
	File          string `json:"file,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
	ResponseBytes int    `json:"response_bytes"`
	// IsError is set when the tool reported a failure to the client, e.g. a
	// template that does not compile.
	IsError bool `json:"is_error"`
	// Error is a transport-level handler error.
	Error *string `json:"error"`
}

// Logger appends JSONL entries to a writer. It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	w   io.WriteCloser
	enc *json.Encoder
}

// NewLogger opens (or creates) the file at path for append-only writing,
// creating parent directories. An empty path returns nil, nil; every method
// of a nil Logger is a no-op.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return New(f), nil
}

// New returns a Logger writing to w. Close closes w.
func New(w io.WriteCloser) *Logger {
	return &Logger{w: w, enc: json.NewEncoder(w)}
}

// Write appends a single entry. Callers ignore the error so that log
// failures never change a tool result.
func (l *Logger) Write(entry LogEntry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// Close closes the underlying writer.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}

// SanitizeParams returns a copy of args safe for logging. String values
// longer than shortStringMax bytes, such as unsaved template sources, are
// replaced by a "{key}_len" entry.
func SanitizeParams(args map[string]any) map[string]any {
	const shortStringMax = 256
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > shortStringMax {
			out[k+"_len"] = len(s)
		} else {
			out[k] = v
		}
	}
	return out
}

// ResponseBytes returns the serialized length of a result's content, or 0
// for a nil result.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is a replaceable clock for testing.
var Now = func() time.Time { return time.Now() }
