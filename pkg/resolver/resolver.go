// Package resolver maps import specifiers to files on disk.
package resolver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/rjt/pkg/diagnostic"
)

// DefaultExtensions are tried, in order, after the exact path.
var DefaultExtensions = []string{".tsx", ".jsx", ".ts", ".js"}

// Config configures a Resolver.
type Config struct {
	// Root is the project root aliases are relative to.
	Root string
	// Aliases rewrite specifier prefixes, e.g. {"@/": "src/"}.
	Aliases map[string]string
	// Extensions defaults to DefaultExtensions.
	Extensions []string
	Logger     *slog.Logger
}

// Resolver resolves specifiers the way a bundler does for TypeScript
// sources: relative and absolute paths with extension and index probing,
// configured aliases, and packages under node_modules.
type Resolver struct {
	root       string
	aliases    []alias
	extensions []string
	logger     *slog.Logger
}

type alias struct {
	prefix string
	target string
}

// New returns a Resolver for config.
func New(config Config) *Resolver {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultExtensions
	}

	r := &Resolver{
		root:       config.Root,
		extensions: config.Extensions,
		logger:     config.Logger,
	}
	for prefix, target := range config.Aliases {
		r.aliases = append(r.aliases, alias{prefix: prefix, target: target})
	}
	// Longest prefix first.
	sort.Slice(r.aliases, func(i, j int) bool {
		return len(r.aliases[i].prefix) > len(r.aliases[j].prefix)
	})
	return r
}

// Resolve returns the absolute path specifier refers to when imported from a
// file in fromDir. A specifier that maps to no file yields a
// *diagnostic.ResolutionError.
func (r *Resolver) Resolve(fromDir, specifier string) (string, error) {
	path, ok := r.resolve(fromDir, specifier)
	if !ok {
		r.logger.Debug("module not found", "from", fromDir, "specifier", specifier)
		return "", &diagnostic.ResolutionError{From: fromDir, Specifier: specifier}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
	}
	return abs, nil
}

func (r *Resolver) resolve(fromDir, specifier string) (string, bool) {
	switch {
	case specifier == "":
		return "", false
	case isRelative(specifier):
		return r.file(filepath.Join(fromDir, filepath.FromSlash(specifier)))
	case filepath.IsAbs(specifier):
		return r.file(filepath.Clean(specifier))
	}

	for _, a := range r.aliases {
		if rest, ok := strings.CutPrefix(specifier, a.prefix); ok {
			target := filepath.Join(r.root, filepath.FromSlash(a.target+rest))
			return r.file(target)
		}
	}

	return r.pkg(fromDir, specifier)
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// file resolves a path as a file, then with each extension, then as a
// directory holding an index file.
func (r *Resolver) file(path string) (string, bool) {
	if isFile(path) {
		return path, true
	}
	for _, ext := range r.extensions {
		if isFile(path + ext) {
			return path + ext, true
		}
	}
	if isDir(path) {
		for _, ext := range r.extensions {
			index := filepath.Join(path, "index"+ext)
			if isFile(index) {
				return index, true
			}
		}
	}
	return "", false
}

// pkg looks a bare specifier up in the node_modules directories above fromDir.
func (r *Resolver) pkg(fromDir, specifier string) (string, bool) {
	name, subpath := splitPackage(specifier)

	dir := fromDir
	for {
		pkgDir := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
		if isDir(pkgDir) {
			if subpath != "" {
				return r.file(filepath.Join(pkgDir, filepath.FromSlash(subpath)))
			}
			return r.entry(pkgDir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// splitPackage splits "@scope/name/sub/path" into "@scope/name" and "sub/path".
func splitPackage(specifier string) (name, subpath string) {
	parts := strings.SplitN(specifier, "/", 3)
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		name = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			subpath = parts[2]
		}
		return name, subpath
	}
	name, subpath, _ = strings.Cut(specifier, "/")
	return name, subpath
}

type packageJSON struct {
	Module string `json:"module"`
	Main   string `json:"main"`
}

// entry resolves the entry point of a package directory.
func (r *Resolver) entry(pkgDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err == nil {
		var manifest packageJSON
		if err := json.Unmarshal(data, &manifest); err != nil {
			r.logger.Warn("invalid package.json", "dir", pkgDir, "error", err)
		}
		for _, field := range []string{manifest.Module, manifest.Main} {
			if field == "" {
				continue
			}
			if path, ok := r.file(filepath.Join(pkgDir, filepath.FromSlash(field))); ok {
				return path, true
			}
		}
	}
	return r.file(filepath.Join(pkgDir, "index"))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
