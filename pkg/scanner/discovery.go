package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/rjt/pkg/analyzer"
)

// DiscoverFiles walks rootDir applying include/exclude globs from cfg.
// Returns a sorted slice of absolute file paths for deterministic output.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if cfg.Excluded(relPath) {
			if d.IsDir() && relPath != "." {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !cfg.Included(relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// DiscoverTemplates returns the template files under rootDir matched by cfg.
// Files matched by the globs that do not carry a template suffix are skipped.
func DiscoverTemplates(rootDir string, cfg ScanConfig) ([]string, error) {
	files, err := DiscoverFiles(rootDir, cfg)
	if err != nil {
		return nil, err
	}

	templates := files[:0]
	for _, f := range files {
		if analyzer.IsTemplatePath(f) {
			templates = append(templates, f)
		}
	}
	return templates, nil
}

// Validate checks every pattern.
func (cfg ScanConfig) Validate() error {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return nil
}

// Excluded reports whether a slash-separated relative path matches an exclude
// pattern.
func (cfg ScanConfig) Excluded(relPath string) bool {
	for _, pattern := range cfg.Exclude {
		if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// Included reports whether a slash-separated relative path matches an include
// pattern. An empty include list matches everything.
func (cfg ScanConfig) Included(relPath string) bool {
	if len(cfg.Include) == 0 {
		return true
	}
	for _, pattern := range cfg.Include {
		if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
			return true
		}
	}
	return false
}
