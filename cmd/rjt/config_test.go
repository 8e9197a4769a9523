package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/emit"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/watcher"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rjt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProjectConfig_MissingUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := loadProjectConfig(DefaultConfigFile, false)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, dir, cfg.outDir())
	assert.Equal(t, analyzer.DefaultRuntimeModule, cfg.RuntimeModule)
	assert.Equal(t, parser.DefaultSyntax(), cfg.Syntax)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, watcher.DefaultDebounceMs, cfg.Watch.DebounceMs)
	assert.Equal(t, emit.FormatSource, cfg.format())
	assert.NoError(t, cfg.Validate())
}

func TestLoadProjectConfig_ExplicitMissing(t *testing.T) {
	_, err := loadProjectConfig(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.Error(t, err)
}

func TestLoadProjectConfig_Values(t *testing.T) {
	path := writeConfig(t, `root: app
out_dir: build/gen
include: ["templates/**/*.rjt.tsx"]
exclude: ["templates/drafts/**"]
aliases:
  "@/": app/src/
runtime_module: "@acme/rjt"
syntax:
  plugins: [jsx]
cache_size: 16
format: js
watch:
  debounce_ms: 50
log:
  level: debug
  format: json
mcp:
  log_file: logs/mcp.jsonl
`)
	base := filepath.Dir(path)

	cfg, err := loadProjectConfig(path, true)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Join(base, "app"), cfg.Root)
	assert.Equal(t, filepath.Join(base, "build/gen"), cfg.outDir())
	assert.Equal(t, filepath.Join(base, "logs/mcp.jsonl"), cfg.MCP.LogFile)
	assert.Equal(t, map[string]string{"@/": "app/src/"}, cfg.Aliases)
	assert.Equal(t, "@acme/rjt", cfg.RuntimeModule)
	assert.Equal(t, []string{parser.PluginJSX}, cfg.Syntax.Plugins)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, emit.FormatJS, cfg.format())
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	scan := cfg.scanConfig()
	assert.Equal(t, []string{"templates/**/*.rjt.tsx"}, scan.Include)
	assert.Contains(t, scan.Exclude, "templates/drafts/**")
	assert.Contains(t, scan.Exclude, "node_modules/**")
}

func TestProjectConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plugin", "syntax:\n  plugins: [flow]\n", "unsupported syntax plugin"},
		{"log level", "log:\n  level: loud\n", "unknown log level"},
		{"log format", "log:\n  format: xml\n", "unknown log format"},
		{"format", "format: wasm\n", "unknown output format"},
		{"cache size", "cache_size: -1\n", "cache_size"},
		{"debounce", "watch:\n  debounce_ms: -5\n", "debounce_ms"},
		{"glob", "include: [\"[abc\"]\n", "invalid include pattern"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := loadProjectConfig(writeConfig(t, tc.content), true)
			require.NoError(t, err)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadProjectConfig_Malformed(t *testing.T) {
	_, err := loadProjectConfig(writeConfig(t, "root: [unterminated\n"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
