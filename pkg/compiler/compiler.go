// Package compiler turns template files into plain component modules.
//
// A template is a module whose last statement is a markup expression. Each
// element of that markup is classified through its binding: imported
// templates become calls, imported Serializable components become JSON
// component nodes. The statements of the template then become the body of a
// default-exported function taking props.
package compiler

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/ast"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/printer"
	"github.com/gnana997/rjt/pkg/scope"
	"github.com/gnana997/rjt/pkg/validator"
)

// Node tags understood by the runtime.
const (
	ComponentTag = "__RJT_COMPONENT__"
	FragmentTag  = "__RJT_FRAGMENT__"
	ActionTag    = "__RJT_ACTION__"
	ConstantTag  = "__RJT_CONSTANT__"
	OperationTag = "__RJT_OPERATION__"
)

// ModuleResolver maps an import specifier to a file path.
type ModuleResolver interface {
	Resolve(fromDir, specifier string) (string, error)
}

// Config configures a Compiler.
type Config struct {
	Analyzer *analyzer.Analyzer
	Resolver ModuleResolver
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Stats counts compiler work.
type Stats struct {
	Compiled int
	Failed   int
}

// Compiler compiles template files.
type Compiler struct {
	analyzer *analyzer.Analyzer
	resolver ModuleResolver
	logger   *slog.Logger

	mutex sync.Mutex
	stats Stats
}

// New returns a Compiler.
func New(config Config) *Compiler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Compiler{
		analyzer: config.Analyzer,
		resolver: config.Resolver,
		logger:   config.Logger,
	}
}

// Analyzer returns the exports analyzer used for imported modules.
func (c *Compiler) Analyzer() *analyzer.Analyzer {
	return c.analyzer
}

// Compile reads and compiles the template at filePath. Imported modules are
// analyzed through cache, which may be shared across calls; nil disables
// sharing.
func (c *Compiler) Compile(filePath string, syntax parser.Syntax, cache analyzer.Cache) (string, error) {
	source, err := c.analyzer.Reader().ReadFile(filePath)
	if err != nil {
		c.count(false)
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return c.CompileSource(filePath, source, syntax, cache)
}

// CompileSource is Compile for content that has already been read. filePath
// is used for diagnostics and to resolve the template's imports.
func (c *Compiler) CompileSource(filePath string, source []byte, syntax parser.Syntax, cache analyzer.Cache) (string, error) {
	out, err := c.compile(filePath, source, syntax, cache)
	c.count(err == nil)
	if err != nil {
		c.logger.Debug("compile failed", "file", filePath, "error", err)
		return "", err
	}
	c.logger.Debug("compiled template", "file", filePath, "bytes", len(out))
	return out, nil
}

func (c *Compiler) compile(filePath string, source []byte, syntax parser.Syntax, cache analyzer.Cache) (string, error) {
	if cache == nil {
		cache = analyzer.NewMapCache()
	}

	tree, err := c.analyzer.Parser().ParseModule(source, filePath, syntax)
	if err != nil {
		return "", err
	}
	if err := validator.Validate(tree); err != nil {
		return "", err
	}

	normalizeAttributes(tree.Stmts)

	table := scope.Build(tree.Stmts)
	rw := &rewriter{
		tree: tree,
		tags: c.tagResolver(tree, table, syntax, cache),
	}
	if err := rw.run(); err != nil {
		return "", err
	}

	stmts, err := synthesize(tree.Stmts)
	if err != nil {
		return "", err
	}
	stmts = eliminateDeadLocals(stmts)
	stmts = eliminateDeadImports(stmts)
	c.rewriteTemplateImports(stmts, filepath.Dir(tree.Path))

	var b strings.Builder
	b.WriteString(printer.NoCheckDirective)
	b.WriteString("\n")
	b.WriteString(printer.Print(stmts))
	return b.String(), nil
}

func (c *Compiler) tagResolver(tree *ast.AST, table *scope.Table, syntax parser.Syntax, cache analyzer.Cache) *tagResolver {
	return &tagResolver{
		dir:      filepath.Dir(tree.Path),
		table:    table,
		bindings: analyzer.NewResolver(table, c.analyzer.RuntimeModule()),
		modules:  c.resolver,
		analyzer: c.analyzer,
		syntax:   syntax,
		cache:    cache,
	}
}

func (c *Compiler) count(ok bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if ok {
		c.stats.Compiled++
	} else {
		c.stats.Failed++
	}
}

// Stats returns a snapshot of the compiler counters.
func (c *Compiler) Stats() Stats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stats
}
