// Package analyzer classifies the exports of a module as Templates or
// Serializable components.
package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultRuntimeModule is the package the Serializable marker is imported from.
const DefaultRuntimeModule = "@react-json-templates/core"

// SerializableMarker is the runtime function that registers a component.
const SerializableMarker = "Serializable"

// TemplateSuffixes are the file suffixes that mark template sources.
var TemplateSuffixes = []string{".rjt.tsx", ".rjt.jsx"}

// IsTemplatePath reports whether path names a template source file.
func IsTemplatePath(path string) bool {
	for _, suffix := range TemplateSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// ComponentKind is the variant of a ComponentType.
type ComponentKind int

const (
	KindTemplate ComponentKind = iota
	KindSerializable
)

func (k ComponentKind) String() string {
	if k == KindSerializable {
		return "Serializable"
	}
	return "Template"
}

// ComponentType is the classification of a binding's value. Two values are
// equal with == when they name the same classification.
type ComponentType struct {
	Kind ComponentKind
	// Name is the registration key of a Serializable. It is empty for
	// Templates.
	Name string
}

// Template returns the Template classification.
func Template() ComponentType {
	return ComponentType{Kind: KindTemplate}
}

// Serializable returns the classification of a component registered as name.
func Serializable(name string) ComponentType {
	return ComponentType{Kind: KindSerializable, Name: name}
}

func (c ComponentType) String() string {
	if c.Kind == KindSerializable {
		return fmt.Sprintf("Serializable(%q)", c.Name)
	}
	return "Template"
}

type componentJSON struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

func (c ComponentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(componentJSON{Type: c.Kind.String(), Name: c.Name})
}

func (c *ComponentType) UnmarshalJSON(data []byte) error {
	var v componentJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Type {
	case "Template":
		*c = Template()
	case "Serializable":
		*c = Serializable(v.Name)
	default:
		return fmt.Errorf("unknown component type %q", v.Type)
	}
	return nil
}

// ResultType discriminates the two shapes of a Result.
type ResultType string

const (
	ResultExports  ResultType = "Exports"
	ResultTemplate ResultType = "Template"
)

// Result is the outcome of analyzing one file.
type Result struct {
	Type ResultType `json:"type"`
	// Exports maps each resolvable export name, "default" included, to its
	// classification. It is nil for templates.
	Exports map[string]ComponentType `json:"exports"`
}

// Export returns the classification of an export name.
func (r *Result) Export(name string) (ComponentType, bool) {
	if r == nil || r.Exports == nil {
		return ComponentType{}, false
	}
	c, ok := r.Exports[name]
	return c, ok
}
