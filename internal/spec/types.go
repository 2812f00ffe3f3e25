package spec

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Spec is the raw specification aggregate: the merge of every spec
// document given on the command line. It is created once per invocation
// by ParseSpecs and is not mutated afterwards.
type Spec struct {
	// Headers lists the native headers the bindings must include.
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Primitives lists the type names that map directly onto target
	// language primitives.
	Primitives []string `json:"primitives,omitempty" yaml:"primitives,omitempty"`

	// TypeAliases maps an alias name to the type it stands for.
	TypeAliases map[string]string `json:"typeAliases,omitempty" yaml:"typeAliases,omitempty"`

	Enums     map[string]*Enum     `json:"enums,omitempty" yaml:"enums,omitempty"`
	Records   map[string]*Record   `json:"records,omitempty" yaml:"records,omitempty"`
	Classes   map[string]*Class    `json:"classes,omitempty" yaml:"classes,omitempty"`
	Constants map[string]*Constant `json:"constants,omitempty" yaml:"constants,omitempty"`
}

// Enum is a named set of values.
type Enum struct {
	CppName string   `json:"cppName,omitempty" yaml:"cppName,omitempty"`
	IsFlag  bool     `json:"isFlag,omitempty" yaml:"isFlag,omitempty"`
	Values  []string `json:"values" yaml:"values"`
}

// Record is a plain value type with named fields.
type Record struct {
	CppName string            `json:"cppName,omitempty" yaml:"cppName,omitempty"`
	Fields  map[string]*Field `json:"fields" yaml:"fields"`
}

// Field is a single record field. In documents it is written either as a
// bare type name or as an object with a type and an optional default.
type Field struct {
	Type    string `json:"type" yaml:"type"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// UnmarshalJSON accepts both the shorthand ("int64_t") and the object
// form ({"type": "int64_t", "default": 0}).
func (f *Field) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &f.Type)
	}

	// Use an alias to avoid infinite recursion.
	type fieldAlias Field
	var fa fieldAlias
	if err := decodeJSON(trimmed, &fa); err != nil {
		return err
	}
	*f = Field(fa)
	return nil
}

// Class is a reference type exposing methods and properties.
type Class struct {
	CppName string `json:"cppName,omitempty" yaml:"cppName,omitempty"`

	// Base names the class this class derives from, if any.
	Base string `json:"base,omitempty" yaml:"base,omitempty"`

	// Methods and StaticMethods map a method name to its signature.
	Methods       map[string]string `json:"methods,omitempty" yaml:"methods,omitempty"`
	StaticMethods map[string]string `json:"staticMethods,omitempty" yaml:"staticMethods,omitempty"`

	// Properties maps a property name to its type.
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Constant is a named, typed literal.
type Constant struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// OptInList names the methods and fields an SDK explicitly opts into.
// Applying it annotates a BoundSpec; it never removes entries.
type OptInList struct {
	Classes map[string]*OptInClass  `json:"classes,omitempty" yaml:"classes,omitempty"`
	Records map[string]*OptInRecord `json:"records,omitempty" yaml:"records,omitempty"`
}

// OptInClass lists the opted-in methods (instance or static) of a class.
type OptInClass struct {
	Methods []string `json:"methods" yaml:"methods"`
}

// OptInRecord lists the opted-in fields of a record.
type OptInRecord struct {
	Fields []string `json:"fields" yaml:"fields"`
}

// normalizeNumbers replaces the json.Number values left by decoding in
// constant values and field defaults with int64, uint64 or float64, picking
// the first type that holds the literal exactly.
func (s *Spec) normalizeNumbers() {
	for _, c := range s.Constants {
		c.Value = exactNumber(c.Value)
	}
	for _, r := range s.Records {
		for _, f := range r.Fields {
			f.Default = exactNumber(f.Default)
		}
	}
}

func exactNumber(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return u
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []any:
		for i := range v {
			v[i] = exactNumber(v[i])
		}
	case map[string]any:
		for k := range v {
			v[k] = exactNumber(v[k])
		}
	}
	return v
}
