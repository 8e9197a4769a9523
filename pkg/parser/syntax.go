package parser

import (
	"fmt"
	"slices"
)

// Syntax plugin names.
const (
	PluginTypeScript = "typescript"
	PluginJSX        = "jsx"
)

// SourceTypeModule is the only supported source type.
const SourceTypeModule = "module"

// Syntax declares which syntax extensions a source file is parsed with.
//
// The plugin set picks the grammar explicitly instead of inferring it from
// the file extension:
//
//	typescript + jsx -> TSX grammar
//	typescript       -> TypeScript grammar
//	jsx / none       -> JavaScript grammar (JSX is always accepted there)
type Syntax struct {
	SourceType string   `yaml:"source_type" json:"sourceType"`
	Plugins    []string `yaml:"plugins" json:"plugins"`
}

// DefaultSyntax returns the configuration templates are written in: ES
// modules with static types and embedded markup.
func DefaultSyntax() Syntax {
	return Syntax{
		SourceType: SourceTypeModule,
		Plugins:    []string{PluginTypeScript, PluginJSX},
	}
}

// Has reports whether the plugin is enabled.
func (s Syntax) Has(plugin string) bool {
	return slices.Contains(s.Plugins, plugin)
}

// Validate rejects source types and plugins the parser does not know.
func (s Syntax) Validate() error {
	if s.SourceType != "" && s.SourceType != SourceTypeModule {
		return fmt.Errorf("unsupported source type %q (only %q)", s.SourceType, SourceTypeModule)
	}
	for _, p := range s.Plugins {
		if p != PluginTypeScript && p != PluginJSX {
			return fmt.Errorf("unsupported syntax plugin %q", p)
		}
	}
	return nil
}

// Grammar returns the grammar family and TSX flag to parse with.
func (s Syntax) Grammar() (Language, bool) {
	if s.Has(PluginTypeScript) {
		return LanguageTypeScript, s.Has(PluginJSX)
	}
	return LanguageJavaScript, false
}
