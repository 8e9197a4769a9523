package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/compiler"
	"github.com/gnana997/rjt/pkg/mcplog"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/resolver"
)

// --- helpers ---

const components = `import { Serializable } from "@react-json-templates/core";
export const Card = Serializable("card", C1);
export default Serializable("page", C2);
`

func testServer(t *testing.T, callLog *mcplog.Logger) (*Server, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := parser.NewParserManager(logger)
	t.Cleanup(func() { manager.Close() })

	root := t.TempDir()
	files := map[string]string{
		"components.tsx": components,
		"Page.rjt.tsx":   "import { Card } from \"./components\";\ntype Props = { title: string };\n<Card title={props.title} />\n",
		"Broken.rjt.tsx": "<Missing />\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
	}

	c := compiler.New(compiler.Config{
		Analyzer: analyzer.New(manager, analyzer.Config{Logger: logger}),
		Resolver: resolver.New(resolver.Config{Root: root, Logger: logger}),
		Logger:   logger,
	})
	return NewServer(Config{
		Compiler: c,
		Root:     root,
		Syntax:   parser.DefaultSyntax(),
		Version:  "test",
		Logger:   logger,
		CallLog:  callLog,
	}), root
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "compile_template":
		handler = s.handleCompileTemplate
	case "analyze_file":
		handler = s.handleAnalyzeFile
	case "inspect_template":
		handler = s.handleInspectTemplate
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- compile_template ---

func TestHandleCompileTemplate(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest("compile_template", map[string]any{"path": "Page.rjt.tsx"}))
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "// @ts-nocheck")
	assert.Contains(t, text, "export default function (props: Props) {")
	assert.Contains(t, text, `name: "card"`)
}

func TestHandleCompileTemplate_JS(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest("compile_template", map[string]any{"path": "Page.rjt.tsx", "format": "js"}))
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.NotContains(t, text, "type Props")
	assert.Contains(t, text, "__RJT_COMPONENT__")
}

func TestHandleCompileTemplate_Source(t *testing.T) {
	s, root := testServer(t, nil)
	result := callTool(t, s, makeRequest("compile_template", map[string]any{
		"path":   filepath.Join(root, "Draft.rjt.tsx"),
		"source": "import Page from \"./components\";\n<Page />\n",
	}))
	assert.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), `name: "page"`)
}

func TestHandleCompileTemplate_Errors(t *testing.T) {
	s, _ := testServer(t, nil)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing path", nil, "path"},
		{"unclassifiable tag", map[string]any{"path": "Broken.rjt.tsx"}, "Missing is neither a Template nor a Serializable"},
		{"missing file", map[string]any{"path": "Nope.rjt.tsx"}, "failed to read"},
		{"bad format", map[string]any{"path": "Page.rjt.tsx", "format": "wasm"}, "unknown output format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := callTool(t, s, makeRequest("compile_template", tc.args))
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tc.want)
		})
	}
}

// --- analyze_file ---

func TestHandleAnalyzeFile(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest("analyze_file", map[string]any{"path": "components.tsx"}))
	assert.False(t, result.IsError)

	var got analyzer.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, analyzer.ResultExports, got.Type)
	assert.Equal(t, analyzer.Serializable("card"), got.Exports["Card"])
	assert.Equal(t, analyzer.Serializable("page"), got.Exports["default"])
}

func TestHandleAnalyzeFile_Template(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest("analyze_file", map[string]any{"path": "Page.rjt.tsx"}))
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"type": "Template"`)
}

func TestHandleAnalyzeFile_MissingPath(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest("analyze_file", nil))
	assert.True(t, result.IsError)
}

// --- inspect_template ---

func TestHandleInspectTemplate(t *testing.T) {
	s, _ := testServer(t, nil)
	result := callTool(t, s, makeRequest("inspect_template", map[string]any{"path": "Broken.rjt.tsx"}))
	assert.False(t, result.IsError)

	var in compiler.Inspection
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &in))
	require.Len(t, in.Tags, 1)
	assert.Equal(t, "Missing", in.Tags[0].Tag)
	assert.Contains(t, in.Tags[0].Error, "neither a Template nor a Serializable")
}

func TestHandleInspectTemplate_Source(t *testing.T) {
	s, root := testServer(t, nil)
	result := callTool(t, s, makeRequest("inspect_template", map[string]any{
		"path":   filepath.Join(root, "Draft.rjt.tsx"),
		"source": "import { Card } from \"./components\";\n<Card a=\"1\" b />\n",
	}))
	assert.False(t, result.IsError)

	var in compiler.Inspection
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &in))
	require.Len(t, in.Tags, 1)
	assert.Equal(t, []string{"a", "b"}, in.Tags[0].Props)
	require.NotNil(t, in.Tags[0].Component)
	assert.Equal(t, analyzer.Serializable("card"), *in.Tags[0].Component)
}

// --- call log ---

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	callLog, err := mcplog.NewLogger(path)
	require.NoError(t, err)

	s, root := testServer(t, callLog)
	handler := s.loggingMiddleware()(s.handleCompileTemplate)

	_, err = handler(context.Background(), makeRequest("compile_template", map[string]any{"path": "Broken.rjt.tsx"}))
	require.NoError(t, err)
	require.NoError(t, callLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry mcplog.LogEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "compile_template", entry.Tool)
	assert.Equal(t, filepath.Join(root, "Broken.rjt.tsx"), entry.File)
	assert.True(t, entry.IsError)
	assert.Nil(t, entry.Error)
	assert.Positive(t, entry.ResponseBytes)
}
