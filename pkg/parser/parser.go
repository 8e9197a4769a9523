package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/rjt/pkg/ast"
)

// poolKey uniquely identifies a parser pool (language + TSX variant)
type poolKey struct {
	lang  Language
	isTSX bool
}

// ParserManager manages tree-sitter parsers for the TypeScript, TSX and
// JavaScript grammars with lazy initialization and thread-safe concurrent
// access.
//
// Memory Management:
// - Parser pools are created lazily on first use per grammar
// - ParserManager owns parser pool instances and must be closed via Close()
// - Callers own Tree instances returned by Parse and must call tree.Close()
// - ParseModule closes its tree before returning; the AST holds no C memory
//
// Thread Safety:
// - Uses parser pools for true concurrent parsing
// - Pool creation is synchronized with write locks
//
// Example:
//
//	logger := util.NewLogger(util.DefaultLoggerConfig())
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	module, err := manager.ParseModule(source, "Page.rjt.tsx", DefaultSyntax())
//	if err != nil {
//	    log.Fatal(err)
//	}
type ParserManager struct {
	// pools stores parser pools per grammar (lazily initialized)
	pools map[poolKey]*parserPool

	// mutex provides thread-safe access to pools map and stats
	mutex sync.RWMutex

	// logger for structured logging
	logger *slog.Logger

	// poolSize overrides the CPU-based pool size when > 0
	poolSize int

	// stats tracks parser usage statistics
	stats struct {
		parsesCalled int
		syntaxErrors int
	}
}

// NewParserManager creates a new ParserManager instance.
//
// The returned manager must be closed via Close() to free resources.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(logger, 0)
}

// NewParserManagerWithPoolSize is NewParserManager with an explicit number of
// parsers per grammar. A size of 0 uses the CPU-based default.
func NewParserManagerWithPoolSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[poolKey]*parserPool),
		logger:   logger,
		poolSize: poolSize,
	}
}

// Parse parses source code using the specified grammar.
//
// The isTSX parameter is only relevant for TypeScript - it enables JSX support.
//
// Returns a Tree that MUST be closed by the caller via tree.Close() to avoid
// memory leaks. Trees with syntax errors are returned as-is; ParseModule is
// the entry point that rejects them.
func (pm *ParserManager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}

	tree := parser.Parse(source, nil)

	// Release parser back to pool immediately
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	return tree, nil
}

// ParseModule parses a module with the given syntax configuration and lowers
// it into an ast.AST.
//
// Errors of the host grammar are reported as *diagnostic.InvalidSyntaxError
// located at the first ERROR or MISSING node.
func (pm *ParserManager) ParseModule(source []byte, path string, syntax Syntax) (*ast.AST, error) {
	if err := syntax.Validate(); err != nil {
		return nil, err
	}

	lang, isTSX := syntax.Grammar()
	tree, err := pm.Parse(source, lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		pm.mutex.Lock()
		pm.stats.syntaxErrors++
		pm.mutex.Unlock()

		pm.logger.Debug("parse tree contains errors",
			"file", path,
			"language", lang.String(),
			"isTSX", isTSX)
		return nil, syntaxError(path, source, root)
	}

	l := &lowerer{src: source}
	return &ast.AST{
		Path:   path,
		Source: source,
		Stmts:  l.stmtList(root),
	}, nil
}

// Close releases all parser pool resources.
//
// MUST be called when ParserManager is no longer needed to avoid memory leaks.
// After Close(), the ParserManager cannot be used.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager",
		"parses_called", pm.stats.parsesCalled,
		"syntax_errors", pm.stats.syntaxErrors)

	for key, pool := range pm.pools {
		if pool != nil {
			pool.close()
			pm.logger.Debug("closed parser pool",
				"language", key.lang.String(),
				"isTSX", key.isTSX)
		}
	}

	pm.pools = make(map[poolKey]*parserPool)

	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one.
// Thread-safe using double-checked locking pattern.
func (pm *ParserManager) getOrCreatePool(lang Language, isTSX bool) (*parserPool, error) {
	key := poolKey{lang: lang, isTSX: isTSX}

	// Fast path: pool already exists (read lock)
	pm.mutex.RLock()
	pool, exists := pm.pools[key]
	pm.mutex.RUnlock()

	if exists {
		return pool, nil
	}

	// Slow path: create pool (write lock)
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if pool, exists = pm.pools[key]; exists {
		return pool, nil
	}

	langPtr, err := languagePointer(lang, isTSX)
	if err != nil {
		return nil, err
	}

	poolSize := getPoolSize(pm.poolSize)
	pool = newParserPool(lang, langPtr, isTSX, poolSize, pm.logger)
	pm.pools[key] = pool

	pm.logger.Debug("created new parser pool",
		"language", lang.String(),
		"isTSX", isTSX,
		"maxSize", poolSize)

	return pool, nil
}

// languagePointer returns the tree-sitter grammar for a language.
// The isTSX parameter is only relevant for TypeScript (enables JSX support).
func languagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil

	case LanguageJavaScript:
		return ts_javascript.Language(), nil

	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	totalParsers := 0
	for _, pool := range pm.pools {
		totalParsers += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: totalParsers,
		ParsesCalled:   pm.stats.parsesCalled,
		SyntaxErrors:   pm.stats.syntaxErrors,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the total number of parser instances created
	ParsersCreated int

	// ParsesCalled is the total number of Parse() calls
	ParsesCalled int

	// SyntaxErrors counts ParseModule calls rejected for host syntax errors
	SyntaxErrors int
}
