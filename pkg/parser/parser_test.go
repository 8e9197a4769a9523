package parser

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger creates a logger for tests
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

const (
	tsSource  = "type Props = { title: string };\nexport const x: number = 1;\n"
	tsxSource = "import Card from \"./card\";\n<Card title={props.title}>hi</Card>\n"
	jsSource  = "export default Serializable(\"card\", Card);\nconst el = <div />;\n"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"Page.rjt.tsx", LanguageTypeScript},
		{"src/types.ts", LanguageTypeScript},
		{"lib/a.mts", LanguageTypeScript},
		{"lib/a.CTS", LanguageTypeScript},
		{"card.jsx", LanguageJavaScript},
		{"card.js", LanguageJavaScript},
		{"esm.mjs", LanguageJavaScript},
		{"cjs.cjs", LanguageJavaScript},
		{"README.md", LanguageUnknown},
		{"Makefile", LanguageUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestLanguageString(t *testing.T) {
	assert.Equal(t, "typescript", LanguageTypeScript.String())
	assert.Equal(t, "javascript", LanguageJavaScript.String())
	assert.Equal(t, "unknown", LanguageUnknown.String())
}

func TestParse(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tests := []struct {
		name   string
		source string
		lang   Language
		isTSX  bool
		root   string
	}{
		{"typescript", tsSource, LanguageTypeScript, false, "program"},
		{"tsx", tsxSource, LanguageTypeScript, true, "program"},
		{"javascript", jsSource, LanguageJavaScript, false, "program"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := manager.Parse([]byte(tt.source), tt.lang, tt.isTSX)
			require.NoError(t, err)
			defer tree.Close()

			root := tree.RootNode()
			assert.Equal(t, tt.root, root.Kind())
			assert.False(t, root.HasError())
			assert.Positive(t, root.NamedChildCount())
		})
	}
}

func TestParse_UnknownLanguage(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	_, err := manager.Parse([]byte("x"), LanguageUnknown, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown language")
}

func TestParse_InvalidSyntaxKeepsTree(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte("const = ;\n"), LanguageTypeScript, true)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestParserManager_LazyInitialization(t *testing.T) {
	manager := NewParserManagerWithPoolSize(testLogger(), 2)
	defer manager.Close()

	stats := manager.GetStats()
	assert.Equal(t, 0, stats.ParsersCreated)
	assert.Equal(t, 0, stats.ParsesCalled)

	tree, err := manager.Parse([]byte(tsxSource), LanguageTypeScript, true)
	require.NoError(t, err)
	tree.Close()

	stats = manager.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated)
	assert.Equal(t, 1, stats.ParsesCalled)

	// The idle parser is reused for the same grammar.
	tree, err = manager.Parse([]byte(tsxSource), LanguageTypeScript, true)
	require.NoError(t, err)
	tree.Close()
	assert.Equal(t, 1, manager.GetStats().ParsersCreated)

	// A different grammar gets its own pool.
	tree, err = manager.Parse([]byte(jsSource), LanguageJavaScript, false)
	require.NoError(t, err)
	tree.Close()

	stats = manager.GetStats()
	assert.Equal(t, 2, stats.ParsersCreated)
	assert.Equal(t, 3, stats.ParsesCalled)
}

func TestParserManager_Close(t *testing.T) {
	manager := NewParserManager(testLogger())

	tree, err := manager.Parse([]byte(tsSource), LanguageTypeScript, false)
	require.NoError(t, err)
	tree.Close()
	require.Equal(t, 1, manager.GetStats().ParsersCreated)

	require.NoError(t, manager.Close())
	assert.Equal(t, 0, manager.GetStats().ParsersCreated)
}

func TestGetPoolSize(t *testing.T) {
	assert.Equal(t, 3, getPoolSize(3))
	assert.GreaterOrEqual(t, getPoolSize(0), 1)
}

func TestSyntax(t *testing.T) {
	tests := []struct {
		name    string
		syntax  Syntax
		lang    Language
		isTSX   bool
		wantErr string
	}{
		{"default", DefaultSyntax(), LanguageTypeScript, true, ""},
		{"typescript only", Syntax{Plugins: []string{PluginTypeScript}}, LanguageTypeScript, false, ""},
		{"jsx only", Syntax{Plugins: []string{PluginJSX}}, LanguageJavaScript, false, ""},
		{"no plugins", Syntax{SourceType: SourceTypeModule}, LanguageJavaScript, false, ""},
		{"script source type", Syntax{SourceType: "script"}, LanguageJavaScript, false, "unsupported source type"},
		{"unknown plugin", Syntax{Plugins: []string{"flow"}}, LanguageJavaScript, false, "unsupported syntax plugin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.syntax.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			lang, isTSX := tt.syntax.Grammar()
			assert.Equal(t, tt.lang, lang)
			assert.Equal(t, tt.isTSX, isTSX)
		})
	}
}

func TestSyntax_Has(t *testing.T) {
	s := DefaultSyntax()
	assert.True(t, s.Has(PluginJSX))
	assert.True(t, s.Has(PluginTypeScript))
	assert.False(t, Syntax{}.Has(PluginJSX))
}
