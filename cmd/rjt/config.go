package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/emit"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/scanner"
	"github.com/gnana997/rjt/pkg/util"
	"github.com/gnana997/rjt/pkg/watcher"
)

// DefaultConfigFile is the project config loaded from the working directory.
const DefaultConfigFile = "rjt.yaml"

// DefaultCacheSize bounds the analysis cache of watch and serve sessions.
const DefaultCacheSize = 1024

// ProjectConfig holds the contents of rjt.yaml.
type ProjectConfig struct {
	// Root is the project root. Relative paths are relative to the config file.
	Root string `yaml:"root"`
	// OutDir receives compiled modules. Defaults to Root.
	OutDir        string            `yaml:"out_dir"`
	Include       []string          `yaml:"include"`
	Exclude       []string          `yaml:"exclude"`
	Aliases       map[string]string `yaml:"aliases"`
	RuntimeModule string            `yaml:"runtime_module"`
	Syntax        parser.Syntax     `yaml:"syntax"`
	CacheSize     int               `yaml:"cache_size"`
	// Format is the output format: source or js.
	Format string `yaml:"format"`

	Watch struct {
		DebounceMs int `yaml:"debounce_ms"`
	} `yaml:"watch"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	MCP struct {
		LogFile string `yaml:"log_file"`
	} `yaml:"mcp"`
}

// defaultProjectConfig returns the configuration used without rjt.yaml.
func defaultProjectConfig() ProjectConfig {
	cfg := ProjectConfig{
		Root:          ".",
		RuntimeModule: analyzer.DefaultRuntimeModule,
		Syntax:        parser.DefaultSyntax(),
		CacheSize:     DefaultCacheSize,
		Format:        string(emit.FormatSource),
	}
	cfg.Watch.DebounceMs = watcher.DefaultDebounceMs
	cfg.Log.Level = string(util.LevelWarn)
	cfg.Log.Format = string(util.FormatText)
	return cfg
}

// loadProjectConfig reads the config at path over the defaults. A missing
// file is not an error unless it was named explicitly.
func loadProjectConfig(path string, explicit bool) (ProjectConfig, error) {
	cfg := defaultProjectConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, cfg.resolve(".")
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.resolve(filepath.Dir(path))
}

// resolve makes the paths of cfg absolute against base and fills defaults
// the file may have cleared.
func (cfg *ProjectConfig) resolve(base string) error {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(base, cfg.Root)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}
	cfg.Root = root

	if cfg.OutDir != "" && !filepath.IsAbs(cfg.OutDir) {
		cfg.OutDir = filepath.Join(base, cfg.OutDir)
	}
	if cfg.MCP.LogFile != "" && !filepath.IsAbs(cfg.MCP.LogFile) {
		cfg.MCP.LogFile = filepath.Join(base, cfg.MCP.LogFile)
	}
	if cfg.RuntimeModule == "" {
		cfg.RuntimeModule = analyzer.DefaultRuntimeModule
	}
	if len(cfg.Syntax.Plugins) == 0 {
		cfg.Syntax.Plugins = parser.DefaultSyntax().Plugins
	}
	return nil
}

// Validate rejects values no command could run with.
func (cfg ProjectConfig) Validate() error {
	if err := cfg.Syntax.Validate(); err != nil {
		return fmt.Errorf("syntax: %w", err)
	}
	if err := util.ValidateLoggerConfig(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if _, err := emit.ParseFormat(cfg.Format); err != nil {
		return err
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", cfg.CacheSize)
	}
	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", cfg.Watch.DebounceMs)
	}
	return cfg.scanConfig().Validate()
}

// outDir returns the output directory, Root when unset.
func (cfg ProjectConfig) outDir() string {
	if cfg.OutDir == "" {
		return cfg.Root
	}
	return cfg.OutDir
}

// scanConfig returns the template discovery globs.
func (cfg ProjectConfig) scanConfig() scanner.ScanConfig {
	scan := scanner.DefaultScanConfig()
	if len(cfg.Include) > 0 {
		scan.Include = cfg.Include
	}
	scan.Exclude = append(scan.Exclude, cfg.Exclude...)
	return scan
}

// format returns the parsed output format.
func (cfg ProjectConfig) format() emit.Format {
	f, _ := emit.ParseFormat(cfg.Format)
	return f
}
