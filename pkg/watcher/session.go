package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/compiler"
	"github.com/gnana997/rjt/pkg/emit"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/scanner"
)

// Invalidator drops cached file contents. util.FileCache implements it.
type Invalidator interface {
	Invalidate(path string)
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Compiler *compiler.Compiler
	// Cache is shared by every build of the session.
	Cache analyzer.Cache
	// Files, when set, is invalidated for every changed path.
	Files  Invalidator
	Root   string
	OutDir string
	// Scan selects the templates to build. Defaults to
	// scanner.DefaultScanConfig().
	Scan   *scanner.ScanConfig
	Syntax parser.Syntax
	Format emit.Format
	Logger *slog.Logger
}

// BuildResult is the outcome of building one template.
type BuildResult struct {
	Template string
	// Output is the file written. Empty when the build failed.
	Output string
	Err    error
}

// Session keeps the outputs of a project in sync with its templates. Builds
// are serialized: Handle and BuildAll never run concurrently.
type Session struct {
	config SessionConfig
	scan   scanner.ScanConfig
	logger *slog.Logger

	mu sync.Mutex
	// outputs holds every file the session wrote.
	outputs map[string]bool
}

// NewSession returns a Session for config.
func NewSession(config SessionConfig) (*Session, error) {
	if config.Compiler == nil {
		return nil, errors.New("session requires a compiler")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Cache == nil {
		config.Cache = analyzer.NewMapCache()
	}
	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	config.Root = root
	if config.OutDir, err = filepath.Abs(config.OutDir); err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}

	scan := scanner.DefaultScanConfig()
	if config.Scan != nil {
		scan = *config.Scan
	}
	if err := scan.Validate(); err != nil {
		return nil, err
	}
	return &Session{config: config, scan: scan, logger: config.Logger, outputs: make(map[string]bool)}, nil
}

// BuildAll compiles every template under the root.
func (s *Session) BuildAll() ([]BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildAll()
}

// Handle reacts to a change. A changed template is rebuilt alone; any other
// change, and the removal of a template, rebuilds every template. The
// output of a removed template is deleted. Changes to files the session
// wrote itself are ignored.
func (s *Session) Handle(ev Event) []BuildResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outputs[ev.Path] {
		return nil
	}

	if s.config.Files != nil {
		s.config.Files.Invalidate(ev.Path)
	}
	s.logger.Info("file "+ev.Op.String(), "file", ev.Path)

	if analyzer.IsTemplatePath(ev.Path) {
		if ev.Op == OpChanged {
			return []BuildResult{s.build(ev.Path)}
		}
		s.removeOutput(ev.Path)
	}

	results, err := s.buildAll()
	if err != nil {
		s.logger.Error("failed to list templates", "root", s.config.Root, "error", err)
	}
	return results
}

func (s *Session) buildAll() ([]BuildResult, error) {
	templates, err := scanner.DiscoverTemplates(s.config.Root, s.scan)
	if err != nil {
		return nil, err
	}

	results := make([]BuildResult, 0, len(templates))
	for _, t := range templates {
		results = append(results, s.build(t))
	}
	return results, nil
}

func (s *Session) build(template string) BuildResult {
	result := BuildResult{Template: template}
	result.Output, result.Err = s.compile(template)
	if result.Err != nil {
		s.logger.Error("compile failed", "template", template, "error", result.Err)
	} else {
		s.logger.Info("compiled", "template", template, "output", result.Output)
	}
	return result
}

func (s *Session) compile(template string) (string, error) {
	outPath, err := compiler.OutputPath(s.config.Root, s.config.OutDir, template)
	if err != nil {
		return "", err
	}
	code, err := s.config.Compiler.Compile(template, s.config.Syntax, s.config.Cache)
	if err != nil {
		return "", err
	}
	written, err := emit.WriteFile(outPath, code, s.config.Format)
	if err == nil {
		s.outputs[written] = true
	}
	return written, err
}

func (s *Session) removeOutput(template string) {
	outPath, err := compiler.OutputPath(s.config.Root, s.config.OutDir, template)
	if err != nil {
		return
	}
	target := emit.Path(outPath, s.config.Format)
	delete(s.outputs, target)
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove output", "output", target, "error", err)
		return
	}
	s.logger.Info("removed output", "output", target)
}

// OutDir returns the absolute output directory.
func (s *Session) OutDir() string {
	return s.config.OutDir
}

// Summary counts failed results.
func Summary(results []BuildResult) (built, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			built++
		}
	}
	return built, failed
}

// Describe renders a result the way the CLI prints it.
func (r BuildResult) Describe(root string) string {
	name := r.Template
	if rel, err := filepath.Rel(root, r.Template); err == nil {
		name = rel
	}
	if r.Err != nil {
		return fmt.Sprintf("✗ %s\n%v", name, r.Err)
	}
	return fmt.Sprintf("✓ %s -> %s", name, r.Output)
}
