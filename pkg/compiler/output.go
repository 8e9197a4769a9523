package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnana997/rjt/pkg/analyzer"
)

// OutputPath maps a template under root to its compiled file under outDir,
// keeping the relative directory and dropping the template infix:
// root/a/Page.rjt.tsx becomes outDir/a/Page.tsx.
func OutputPath(root, outDir, templatePath string) (string, error) {
	rel, err := filepath.Rel(root, templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to locate %s under %s: %w", templatePath, root, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("template %s is outside of %s", templatePath, root)
	}
	if !analyzer.IsTemplatePath(rel) {
		return "", fmt.Errorf("%s is not a template (want %s)", templatePath, strings.Join(analyzer.TemplateSuffixes, " or "))
	}
	return filepath.Join(outDir, OutputName(rel)), nil
}

// OutputName returns the compiled file name of a template path. Other paths
// are returned unchanged.
func OutputName(templatePath string) string {
	for _, suffix := range analyzer.TemplateSuffixes {
		if strings.HasSuffix(templatePath, suffix) {
			// ".rjt.tsx" -> ".tsx"
			return strings.TrimSuffix(templatePath, suffix) + suffix[len(".rjt"):]
		}
	}
	return templatePath
}
