package analyzer

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/scope"
	"github.com/gnana997/rjt/pkg/validator"
)

// FileReader reads source files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// ReaderFunc adapts a function to FileReader.
type ReaderFunc func(path string) ([]byte, error)

func (f ReaderFunc) ReadFile(path string) ([]byte, error) {
	return f(path)
}

// Config configures an Analyzer. Zero fields take defaults.
type Config struct {
	// Reader defaults to os.ReadFile.
	Reader FileReader
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// RuntimeModule defaults to DefaultRuntimeModule.
	RuntimeModule string
}

// Stats counts analyzer work.
type Stats struct {
	// Analyses is the number of files actually parsed and classified.
	Analyses int
	// CacheHits is the number of calls answered from the cache.
	CacheHits int
}

// Analyzer is the exports analyzer.
type Analyzer struct {
	parser        *parser.ParserManager
	reader        FileReader
	logger        *slog.Logger
	runtimeModule string

	// mutex guards stats
	mutex sync.Mutex
	stats Stats
}

// New returns an Analyzer parsing with pm.
func New(pm *parser.ParserManager, config Config) *Analyzer {
	if config.Reader == nil {
		config.Reader = ReaderFunc(os.ReadFile)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.RuntimeModule == "" {
		config.RuntimeModule = DefaultRuntimeModule
	}
	return &Analyzer{
		parser:        pm,
		reader:        config.Reader,
		logger:        config.Logger,
		runtimeModule: config.RuntimeModule,
	}
}

// Reader returns the reader the analyzer loads files with.
func (a *Analyzer) Reader() FileReader {
	return a.reader
}

// RuntimeModule returns the module Serializable markers are imported from.
func (a *Analyzer) RuntimeModule() string {
	return a.runtimeModule
}

// Parser returns the parser manager.
func (a *Analyzer) Parser() *parser.ParserManager {
	return a.parser
}

// Analyze classifies the exports of filePath.
//
// The file is read and hashed first; a cached result for the same content is
// returned as is, without parsing. Template files (see IsTemplatePath) are
// validated and yield a ResultTemplate. A nil cache analyzes without caching
// across calls.
func (a *Analyzer) Analyze(filePath string, syntax parser.Syntax, cache Cache) (*Result, error) {
	source, err := a.reader.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return a.AnalyzeSource(filePath, source, syntax, cache)
}

// AnalyzeSource is Analyze for content that has already been read.
func (a *Analyzer) AnalyzeSource(filePath string, source []byte, syntax parser.Syntax, cache Cache) (*Result, error) {
	if cache == nil {
		cache = NewMapCache()
	}

	hash := Hash(source)
	if result, ok := cache.Get(hash); ok {
		a.mutex.Lock()
		a.stats.CacheHits++
		a.mutex.Unlock()
		a.logger.Debug("analysis cache hit", "file", filePath, "hash", hash)
		return result, nil
	}

	tree, err := a.parser.ParseModule(source, filePath, syntax)
	if err != nil {
		return nil, err
	}

	var result *Result
	if IsTemplatePath(filePath) {
		if err := validator.Validate(tree); err != nil {
			return nil, err
		}
		result = &Result{Type: ResultTemplate}
	} else {
		result = a.Exports(tree)
	}

	a.mutex.Lock()
	a.stats.Analyses++
	a.mutex.Unlock()

	cache.Add(hash, result)
	a.logger.Debug("analyzed file",
		"file", filePath,
		"hash", hash,
		"type", string(result.Type),
		"exports", len(result.Exports))
	return result, nil
}

// Exports classifies the top-level exports of a parsed module.
//
// `export const|let|var NAME = ...` classifies the binding NAME, export
// clauses classify their local binding under the exported name and
// `export default expr` classifies expr under "default". Re-exports from
// other modules, default function and class declarations and type exports
// contribute nothing.
func (a *Analyzer) Exports(tree *ast.AST) *Result {
	table := scope.Build(tree.Stmts)
	resolver := NewResolver(table, a.runtimeModule)
	result := &Result{Type: ResultExports, Exports: make(map[string]ComponentType)}

	set := func(name string, c ComponentType, ok bool) {
		if ok {
			result.Exports[name] = c
		}
	}

	for _, stmt := range tree.Stmts {
		switch d := stmt.Data.(type) {
		case *ast.SLocal:
			if !d.IsExport {
				continue
			}
			for _, decl := range d.Decls {
				if decl.Pattern != nil {
					continue
				}
				c, ok := resolver.ClassifyBinding(table.Own(table.Program, decl.Name))
				set(decl.Name, c, ok)
			}

		case *ast.SExportClause:
			for _, item := range d.Items {
				c, ok := resolver.ClassifyBinding(table.Lookup(table.Program, item.Local))
				set(item.Exported, c, ok)
			}

		case *ast.SExportDefault:
			if d.Decl != nil {
				continue
			}
			c, ok := resolver.Classify(d.Value, table.Program)
			set("default", c, ok)
		}
	}
	return result
}

// Stats returns a snapshot of the analyzer counters.
func (a *Analyzer) Stats() Stats {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.stats
}
