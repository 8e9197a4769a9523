package main

import (
	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/compiler"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/resolver"
	"github.com/gnana997/rjt/pkg/util"
)

// toolchain is the compiler stack of one command run.
type toolchain struct {
	parser   *parser.ParserManager
	files    util.FileCache // nil for one-shot commands
	compiler *compiler.Compiler
	cache    analyzer.Cache
}

// newToolchain builds the compiler for the project. Long-lived sessions
// read through a memory-mapped file cache and bound the analysis cache;
// one-shot commands read files directly and keep every analysis.
func (a *app) newToolchain(longLived bool) (*toolchain, error) {
	cfg := a.config
	t := &toolchain{parser: parser.NewParserManager(a.logger)}

	analyzerConfig := analyzer.Config{Logger: a.logger, RuntimeModule: cfg.RuntimeModule}
	if longLived {
		fcConfig := util.DefaultFileCacheConfig()
		fcConfig.Logger = a.logger
		t.files = util.NewFileCache(fcConfig)
		analyzerConfig.Reader = t.files

		cache, err := analyzer.NewLRUCache(max(cfg.CacheSize, 1), a.logger)
		if err != nil {
			t.Close()
			return nil, err
		}
		t.cache = cache
	} else {
		t.cache = analyzer.NewMapCache()
	}

	t.compiler = compiler.New(compiler.Config{
		Analyzer: analyzer.New(t.parser, analyzerConfig),
		Resolver: resolver.New(resolver.Config{Root: cfg.Root, Aliases: cfg.Aliases, Logger: a.logger}),
		Logger:   a.logger,
	})
	return t, nil
}

// Close releases the parsers and mapped files.
func (t *toolchain) Close() {
	if t.files != nil {
		t.files.Close()
	}
	t.parser.Close()
}
