package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// BoundSpec is the template-facing view of a Spec: every map is turned
// into a slice sorted by name, class bases are linked, and methods and
// fields carry an opt-in flag. A BoundSpec is built fresh for every
// generation run, so applying an opt-in list never touches the raw Spec.
type BoundSpec struct {
	Headers     []string          `yaml:"headers"`
	Primitives  []string          `yaml:"primitives"`
	TypeAliases []*BoundTypeAlias `yaml:"typeAliases"`
	Enums       []*BoundEnum      `yaml:"enums"`
	Records     []*BoundRecord    `yaml:"records"`
	Classes     []*BoundClass     `yaml:"classes"`
	Constants   []*BoundConstant  `yaml:"constants"`

	classes map[string]*BoundClass
	records map[string]*BoundRecord
}

// BoundTypeAlias is a type alias and the type it stands for.
type BoundTypeAlias struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

// BoundEnum is an enum with its values in declaration order.
type BoundEnum struct {
	Name    string   `yaml:"name"`
	CppName string   `yaml:"cppName"`
	IsFlag  bool     `yaml:"isFlag"`
	Values  []string `yaml:"values"`
}

// BoundRecord is a value type with its fields sorted by name.
type BoundRecord struct {
	Name    string        `yaml:"name"`
	CppName string        `yaml:"cppName"`
	Fields  []*BoundField `yaml:"fields"`
}

// BoundField is a record field and its optional default value.
type BoundField struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Default     any    `yaml:"default,omitempty"`
	HasDefault  bool   `yaml:"hasDefault"`
	IsOptedInTo bool   `yaml:"isOptedInTo"`
}

// BoundClass is a reference type linked into the inheritance tree.
type BoundClass struct {
	Name    string `yaml:"name"`
	CppName string `yaml:"cppName"`

	// BaseName is the name of the base class, empty for root classes.
	BaseName string `yaml:"base,omitempty"`

	// Base and Subclasses link the inheritance tree. They are excluded
	// from serialization because the links are cyclic.
	Base       *BoundClass   `yaml:"-"`
	Subclasses []*BoundClass `yaml:"-"`

	// Methods holds instance methods followed by static methods, each
	// group sorted by name.
	Methods    []*BoundMethod   `yaml:"methods"`
	Properties []*BoundProperty `yaml:"properties"`
}

// BoundMethod is an instance or static method of a class.
type BoundMethod struct {
	Name        string `yaml:"name"`
	Sig         string `yaml:"sig"`
	IsStatic    bool   `yaml:"isStatic"`
	IsOptedInTo bool   `yaml:"isOptedInTo"`
}

// BoundProperty is a class property and its type.
type BoundProperty struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// BoundConstant is a named literal. Integer values are int64 or uint64.
type BoundConstant struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

// Bind builds a BoundSpec from a raw Spec. The raw Spec is only read.
func Bind(s *Spec) *BoundSpec {
	b := &BoundSpec{
		Headers:    append([]string(nil), s.Headers...),
		Primitives: append([]string(nil), s.Primitives...),
		classes:    make(map[string]*BoundClass, len(s.Classes)),
		records:    make(map[string]*BoundRecord, len(s.Records)),
	}

	for _, name := range sortedKeys(s.TypeAliases) {
		b.TypeAliases = append(b.TypeAliases, &BoundTypeAlias{Name: name, Target: s.TypeAliases[name]})
	}

	for _, name := range sortedKeys(s.Enums) {
		e := s.Enums[name]
		b.Enums = append(b.Enums, &BoundEnum{
			Name:    name,
			CppName: orDefault(e.CppName, name),
			IsFlag:  e.IsFlag,
			Values:  append([]string(nil), e.Values...),
		})
	}

	for _, name := range sortedKeys(s.Records) {
		r := s.Records[name]
		br := &BoundRecord{Name: name, CppName: orDefault(r.CppName, name)}
		for _, fieldName := range sortedKeys(r.Fields) {
			f := r.Fields[fieldName]
			br.Fields = append(br.Fields, &BoundField{
				Name:       fieldName,
				Type:       f.Type,
				Default:    f.Default,
				HasDefault: f.Default != nil,
			})
		}
		b.Records = append(b.Records, br)
		b.records[name] = br
	}

	for _, name := range sortedKeys(s.Classes) {
		c := s.Classes[name]
		bc := &BoundClass{Name: name, CppName: orDefault(c.CppName, name), BaseName: c.Base}
		for _, m := range sortedKeys(c.Methods) {
			bc.Methods = append(bc.Methods, &BoundMethod{Name: m, Sig: c.Methods[m]})
		}
		for _, m := range sortedKeys(c.StaticMethods) {
			bc.Methods = append(bc.Methods, &BoundMethod{Name: m, Sig: c.StaticMethods[m], IsStatic: true})
		}
		for _, p := range sortedKeys(c.Properties) {
			bc.Properties = append(bc.Properties, &BoundProperty{Name: p, Type: c.Properties[p]})
		}
		b.Classes = append(b.Classes, bc)
		b.classes[name] = bc
	}
	for _, bc := range b.Classes {
		if base, ok := b.classes[bc.BaseName]; ok {
			bc.Base = base
			base.Subclasses = append(base.Subclasses, bc)
		}
	}

	for _, name := range sortedKeys(s.Constants) {
		c := s.Constants[name]
		b.Constants = append(b.Constants, &BoundConstant{Name: name, Type: c.Type, Value: c.Value})
	}

	return b
}

// Class returns the bound class with the given name, or nil.
func (b *BoundSpec) Class(name string) *BoundClass {
	return b.classes[name]
}

// Record returns the bound record with the given name, or nil.
func (b *BoundSpec) Record(name string) *BoundRecord {
	return b.records[name]
}

// Method returns the method with the given name, or nil.
func (c *BoundClass) Method(name string) *BoundMethod {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Field returns the field with the given name, or nil.
func (r *BoundRecord) Field(name string) *BoundField {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ApplyOptInList marks every method and field named in list as opted
// into and every other one as not opted into. Names the model does not
// contain are collected and returned as a single error; the flags are
// still applied for the names that do exist.
func (b *BoundSpec) ApplyOptInList(list *OptInList) error {
	for _, c := range b.Classes {
		for _, m := range c.Methods {
			m.IsOptedInTo = false
		}
	}
	for _, r := range b.Records {
		for _, f := range r.Fields {
			f.IsOptedInTo = false
		}
	}
	if list == nil {
		return nil
	}

	var unknown []string
	for _, className := range sortedKeys(list.Classes) {
		c := b.Class(className)
		if c == nil {
			unknown = append(unknown, fmt.Sprintf("class %q", className))
			continue
		}
		for _, methodName := range list.Classes[className].Methods {
			m := c.Method(methodName)
			if m == nil {
				unknown = append(unknown, fmt.Sprintf("method %q of class %q", methodName, className))
				continue
			}
			m.IsOptedInTo = true
		}
	}
	for _, recordName := range sortedKeys(list.Records) {
		r := b.Record(recordName)
		if r == nil {
			unknown = append(unknown, fmt.Sprintf("record %q", recordName))
			continue
		}
		for _, fieldName := range list.Records[recordName].Fields {
			f := r.Field(fieldName)
			if f == nil {
				unknown = append(unknown, fmt.Sprintf("field %q of record %q", fieldName, recordName))
				continue
			}
			f.IsOptedInTo = true
		}
	}

	if len(unknown) > 0 {
		return errors.Errorf("opt-in list refers to unknown %s", strings.Join(unknown, ", "))
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// ClassesInDeclarationOrder returns classes ordered so that every base
// class precedes the classes deriving from it, ties broken by name.
func (b *BoundSpec) ClassesInDeclarationOrder() []*BoundClass {
	depth := func(c *BoundClass) int {
		d := 0
		// The bound guards against cycles, which ParseSpecs rejects anyway.
		for p := c.Base; p != nil && d <= len(b.Classes); p = p.Base {
			d++
		}
		return d
	}
	out := append([]*BoundClass(nil), b.Classes...)
	sort.SliceStable(out, func(i, j int) bool {
		return depth(out[i]) < depth(out[j])
	})
	return out
}
