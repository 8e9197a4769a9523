package analyzer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/rjt/pkg/diagnostic"
	"github.com/gnana997/rjt/pkg/parser"
)

const coreImport = `import { Serializable } from "@react-json-templates/core";` + "\n"

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	manager := parser.NewParserManager(logger)
	t.Cleanup(func() { manager.Close() })
	return New(manager, Config{Logger: logger})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func analyzeSource(t *testing.T, source string) *Result {
	t.Helper()
	a := newTestAnalyzer(t)
	path := writeFile(t, t.TempDir(), "module.tsx", source)
	result, err := a.Analyze(path, parser.DefaultSyntax(), NewMapCache())
	require.NoError(t, err)
	require.Equal(t, ResultExports, result.Type)
	return result
}

func TestHistoryRules(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   map[string]ComponentType
	}{
		{
			name:   "direct default export",
			source: `export default Serializable("card", Card);`,
			want:   map[string]ComponentType{"default": Serializable("card")},
		},
		{
			name:   "unconditional override",
			source: "let v = Serializable(\"a\", f);\nv = Serializable(\"b\", g);\nexport default v;",
			want:   map[string]ComponentType{"default": Serializable("b")},
		},
		{
			name:   "conditional agreement",
			source: "let v = Serializable(\"a\", f);\nif (c) { v = Serializable(\"a\", f) }\nexport default v;",
			want:   map[string]ComponentType{"default": Serializable("a")},
		},
		{
			name:   "conditional disagreement",
			source: "let v = Serializable(\"a\", f);\nif (c) { v = Serializable(\"b\", f) }\nexport default v;",
			want:   map[string]ComponentType{},
		},
		{
			name:   "ternary is conditional",
			source: "let v = c ? Serializable(\"a\", f) : (() => null);\nexport default v;",
			want:   map[string]ComponentType{},
		},
		{
			name:   "override after conditional",
			source: "let v = Serializable(\"a\", f);\nif (c) { v = Serializable(\"b\", f) }\nv = Serializable(\"c\", f);\nexport default v;",
			want:   map[string]ComponentType{"default": Serializable("c")},
		},
		{
			name:   "conditional then unresolvable baseline",
			source: "let v = f;\nif (c) { v = Serializable(\"a\", f) }\nexport default v;",
			want:   map[string]ComponentType{},
		},
		{
			name:   "update drops classification",
			source: "let v = Serializable(\"a\", f);\nv++;\nexport default v;",
			want:   map[string]ComponentType{},
		},
		{
			name:   "re-export passthrough",
			source: "const _s = Serializable(\"s1\", f);\nexport { _s as s1 }",
			want:   map[string]ComponentType{"s1": Serializable("s1")},
		},
		{
			name:   "alias chain",
			source: "const a = Serializable(\"x\", f);\nconst b = a;\nexport const c = (b);",
			want:   map[string]ComponentType{"c": Serializable("x")},
		},
		{
			name:   "several declarators",
			source: "export const a = Serializable(\"a\", f), b = 1, { c } = o;",
			want:   map[string]ComponentType{"a": Serializable("a")},
		},
		{
			name:   "self reference",
			source: "let a = b;\nlet b = a;\nexport { a, b };",
			want:   map[string]ComponentType{},
		},
		{
			name:   "default function declaration",
			source: "export default function Card() { return null; }",
			want:   map[string]ComponentType{},
		},
		{
			name:   "re-exports contribute nothing",
			source: "export * from \"./other\";\nexport { x } from \"./other\";",
			want:   map[string]ComponentType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzeSource(t, coreImport+tt.source)
			assert.Equal(t, tt.want, result.Exports)
		})
	}
}

func TestMarkerMustComeFromRuntime(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   map[string]ComponentType
	}{
		{
			name:   "aliased import",
			source: "import { Serializable as S } from \"@react-json-templates/core\";\nexport default S(\"x\", f);",
			want:   map[string]ComponentType{"default": Serializable("x")},
		},
		{
			name:   "other module",
			source: "import { Serializable } from \"./local\";\nexport default Serializable(\"x\", f);",
			want:   map[string]ComponentType{},
		},
		{
			name:   "namespace member",
			source: "import * as RJT from \"@react-json-templates/core\";\nexport default RJT.Serializable(\"x\", f);",
			want:   map[string]ComponentType{},
		},
		{
			name:   "local function",
			source: "function Serializable(n, c) { return c; }\nexport default Serializable(\"x\", f);",
			want:   map[string]ComponentType{},
		},
		{
			name:   "non literal name",
			source: coreImport + "const n = \"x\";\nexport default Serializable(n, f);",
			want:   map[string]ComponentType{},
		},
		{
			name:   "escaped literal name",
			source: coreImport + "export default Serializable('a\\'b', f);",
			want:   map[string]ComponentType{"default": Serializable("a'b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzeSource(t, tt.source)
			assert.Equal(t, tt.want, result.Exports)
		})
	}
}

func TestCacheReturnsSameResult(t *testing.T) {
	a := newTestAnalyzer(t)
	dir := t.TempDir()
	source := coreImport + `export default Serializable("card", Card);`
	first := writeFile(t, dir, "a.tsx", source)
	second := writeFile(t, dir, "b.tsx", source)

	cache := NewMapCache()
	r1, err := a.Analyze(first, parser.DefaultSyntax(), cache)
	require.NoError(t, err)
	r2, err := a.Analyze(second, parser.DefaultSyntax(), cache)
	require.NoError(t, err)

	assert.Same(t, r1, r2)
	assert.Equal(t, Stats{Analyses: 1, CacheHits: 1}, a.Stats())
	assert.Equal(t, 1, cache.Len())

	_, ok := cache.Get(Hash([]byte(source)))
	assert.True(t, ok)
}

func TestLRUCache(t *testing.T) {
	a := newTestAnalyzer(t)
	dir := t.TempDir()

	cache, err := NewLRUCache(1, nil)
	require.NoError(t, err)

	one := writeFile(t, dir, "one.tsx", "export const x = 1;")
	two := writeFile(t, dir, "two.tsx", "export const y = 2;")

	_, err = a.Analyze(one, parser.DefaultSyntax(), cache)
	require.NoError(t, err)
	_, err = a.Analyze(two, parser.DefaultSyntax(), cache)
	require.NoError(t, err)
	_, err = a.Analyze(one, parser.DefaultSyntax(), cache)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 3, a.Stats().Analyses)

	_, err = NewLRUCache(0, nil)
	assert.Error(t, err)
}

func TestTemplateFiles(t *testing.T) {
	a := newTestAnalyzer(t)
	dir := t.TempDir()

	valid := writeFile(t, dir, "Page.rjt.tsx", "import { A } from \"./a\";\n<A />\n")
	result, err := a.Analyze(valid, parser.DefaultSyntax(), nil)
	require.NoError(t, err)
	assert.Equal(t, ResultTemplate, result.Type)
	assert.Nil(t, result.Exports)

	invalid := writeFile(t, dir, "Broken.rjt.tsx", "export const x = 5;\n<A />\n")
	_, err = a.Analyze(invalid, parser.DefaultSyntax(), nil)
	var syntaxErr *diagnostic.InvalidSyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 1, syntaxErr.Range.Start.Line)
}

func TestAnalyzeErrors(t *testing.T) {
	a := newTestAnalyzer(t)

	_, err := a.Analyze(filepath.Join(t.TempDir(), "missing.tsx"), parser.DefaultSyntax(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := writeFile(t, t.TempDir(), "bad.tsx", "export const = ;")
	_, err = a.Analyze(path, parser.DefaultSyntax(), nil)
	var syntaxErr *diagnostic.InvalidSyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestIsTemplatePath(t *testing.T) {
	assert.True(t, IsTemplatePath("src/Page.rjt.tsx"))
	assert.True(t, IsTemplatePath("Page.rjt.jsx"))
	assert.False(t, IsTemplatePath("Page.tsx"))
	assert.False(t, IsTemplatePath("Page.rjt.ts"))
}

func TestResultJSON(t *testing.T) {
	result := &Result{Type: ResultExports, Exports: map[string]ComponentType{
		"default": Serializable("card"),
		"page":    Template(),
	}}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Exports","exports":{"default":{"type":"Serializable","name":"card"},"page":{"type":"Template"}}}`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *result, decoded)

	data, err = json.Marshal(&Result{Type: ResultTemplate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Template","exports":null}`, string(data))
}
