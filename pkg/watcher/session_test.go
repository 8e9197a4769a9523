package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/compiler"
	"github.com/gnana997/rjt/pkg/emit"
	"github.com/gnana997/rjt/pkg/parser"
	"github.com/gnana997/rjt/pkg/resolver"
	"github.com/gnana997/rjt/pkg/util"
)

const components = `import { Serializable } from "@react-json-templates/core";
export const Card = Serializable("card", C1);
export const Badge = Serializable("badge", C2);
`

type project struct {
	root    string
	out     string
	files   util.FileCache
	session *Session
}

func newProject(t *testing.T, format emit.Format) *project {
	t.Helper()
	logger := testLogger()
	manager := parser.NewParserManager(logger)
	t.Cleanup(func() { manager.Close() })

	root := t.TempDir()
	files := util.NewFileCache(util.UnboundedFileCacheConfig())
	t.Cleanup(func() { files.Close() })

	c := compiler.New(compiler.Config{
		Analyzer: analyzer.New(manager, analyzer.Config{Reader: files, Logger: logger}),
		Resolver: resolver.New(resolver.Config{Root: root, Logger: logger}),
		Logger:   logger,
	})
	cache, err := analyzer.NewLRUCache(64, logger)
	require.NoError(t, err)

	p := &project{root: root, out: filepath.Join(root, "dist"), files: files}
	p.session, err = NewSession(SessionConfig{
		Compiler: c,
		Cache:    cache,
		Files:    files,
		Root:     root,
		OutDir:   p.out,
		Syntax:   parser.DefaultSyntax(),
		Format:   format,
		Logger:   logger,
	})
	require.NoError(t, err)

	p.write(t, "components.tsx", components)
	p.write(t, "Page.rjt.tsx", "import { Card } from \"./components\";\n<Card />\n")
	p.write(t, "pages/About.rjt.tsx", "import { Badge } from \"../components\";\n<Badge />\n")
	return p
}

func (p *project) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(p.root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (p *project) output(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.out, name))
	require.NoError(t, err)
	return string(data)
}

func TestSession_BuildAll(t *testing.T) {
	p := newProject(t, emit.FormatSource)

	results, err := p.session.BuildAll()
	require.NoError(t, err)
	built, failed := Summary(results)
	assert.Equal(t, 2, built)
	assert.Equal(t, 0, failed)

	assert.Contains(t, p.output(t, "Page.tsx"), `name: "card"`)
	assert.Contains(t, p.output(t, "pages/About.tsx"), `name: "badge"`)
	assert.Contains(t, results[0].Describe(p.root), "Page.rjt.tsx ->")
}

func TestSession_TemplateChange(t *testing.T) {
	p := newProject(t, emit.FormatSource)
	_, err := p.session.BuildAll()
	require.NoError(t, err)

	path := p.write(t, "Page.rjt.tsx", "import { Badge } from \"./components\";\n<Badge />\n")
	results := p.session.Handle(Event{Path: path, Op: OpChanged})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Contains(t, p.output(t, "Page.tsx"), `name: "badge"`)
}

func TestSession_ModuleChangeRebuildsAll(t *testing.T) {
	p := newProject(t, emit.FormatSource)
	_, err := p.session.BuildAll()
	require.NoError(t, err)

	path := p.write(t, "components.tsx", `import { Serializable } from "@react-json-templates/core";
export const Card = Serializable("card-v2", C1);
`)
	results := p.session.Handle(Event{Path: path, Op: OpChanged})

	require.Len(t, results, 2)
	built, failed := Summary(results)
	assert.Equal(t, 1, built)
	assert.Equal(t, 1, failed)
	assert.Contains(t, p.output(t, "Page.tsx"), `name: "card-v2"`)
	assert.Contains(t, results[1].Describe(p.root), "Badge is neither a Template nor a Serializable")
}

func TestSession_TemplateRemoved(t *testing.T) {
	p := newProject(t, emit.FormatJS)
	_, err := p.session.BuildAll()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(p.out, "pages", "About.js"))

	path := filepath.Join(p.root, "pages", "About.rjt.tsx")
	require.NoError(t, os.Remove(path))
	results := p.session.Handle(Event{Path: path, Op: OpRemoved})

	assert.NoFileExists(t, filepath.Join(p.out, "pages", "About.js"))
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestNewSessionRequiresCompiler(t *testing.T) {
	_, err := NewSession(SessionConfig{Root: t.TempDir()})
	assert.Error(t, err)
}

func TestSession_IgnoresOwnOutputs(t *testing.T) {
	p := newProject(t, emit.FormatSource)
	results, err := p.session.BuildAll()
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Nil(t, p.session.Handle(Event{Path: results[0].Output, Op: OpChanged}))
}
