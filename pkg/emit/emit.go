// Package emit turns compiled component modules into the file formats the
// CLI writes.
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Format is an output format.
type Format string

const (
	// FormatSource writes the compiled TypeScript/JSX module as is.
	FormatSource Format = "source"
	// FormatJS strips types and writes an ES module.
	FormatJS Format = "js"
)

// ParseFormat validates a format name. Empty means FormatSource.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatSource:
		return FormatSource, nil
	case FormatJS:
		return FormatJS, nil
	}
	return "", fmt.Errorf("unknown output format %q (want %q or %q)", name, FormatSource, FormatJS)
}

// Path returns the file an output is written to for the given format.
func Path(outPath string, format Format) string {
	if format != FormatJS {
		return outPath
	}
	return strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".js"
}

// Emit converts compiled code for sourcefile into format.
func Emit(code, sourcefile string, format Format) (string, error) {
	if format != FormatJS {
		return code, nil
	}

	result := api.Transform(code, api.TransformOptions{
		Loader:     loaderForExt(filepath.Ext(sourcefile)),
		Format:     api.FormatESModule,
		Target:     api.ESNext,
		JSX:        api.JSXAutomatic,
		Sourcefile: filepath.Base(sourcefile),
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			if e.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%s:%d:%d: %s", sourcefile, e.Location.Line, e.Location.Column, e.Text))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s: %s", sourcefile, e.Text))
			}
		}
		return "", fmt.Errorf("transpilation failed for %s:\n%s", sourcefile, strings.Join(msgs, "\n"))
	}
	return string(result.Code), nil
}

// WriteFile emits code in format and writes it next to outPath, creating
// parent directories. It returns the path written.
func WriteFile(outPath, code string, format Format) (string, error) {
	out, err := Emit(code, outPath, format)
	if err != nil {
		return "", err
	}

	target := Path(outPath, format)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(out), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}

func loaderForExt(ext string) api.Loader {
	switch ext {
	case ".jsx":
		return api.LoaderJSX
	case ".ts":
		return api.LoaderTS
	case ".js":
		return api.LoaderJS
	default:
		return api.LoaderTSX
	}
}
