package spec

import (
	"context"
	"slices"
	"strconv"

	"github.com/pkg/errors"

	"github.com/realm/realm-bindgen/internal/debug"
)

const invalidSpecSummary = "Invalid spec"

// ParseSpecs loads every spec document in order and merges them into one
// Spec. Later documents extend or override earlier ones: list entries are
// appended without duplicates, map entries are replaced, and records and
// classes are merged member by member.
//
// The merged aggregate is then checked for internal consistency. Any
// content problem is returned as an *InvalidSpecError; the first document
// that fails to load or validate aborts parsing.
func ParseSpecs(ctx context.Context, paths []string) (*Spec, error) {
	log := debug.FromContext(ctx)
	if len(paths) == 0 {
		return nil, errors.New("no spec files given")
	}

	agg := newAggregate()
	for _, path := range paths {
		doc, err := loadDocument(path, specSchemaName, invalidSpecSummary)
		if err != nil {
			return nil, err
		}

		var s Spec
		if err := doc.decode(&s, invalidSpecSummary); err != nil {
			return nil, err
		}
		s.normalizeNumbers()
		agg.merge(doc, &s)
		log.Debug("Loaded spec", "path", path)
	}

	if issues := agg.validate(); len(issues) > 0 {
		return nil, newInvalidSpecError(invalidSpecSummary, issues...)
	}

	log.Debug("Parsed specs",
		"files", len(paths),
		"primitives", len(agg.spec.Primitives),
		"typeAliases", len(agg.spec.TypeAliases),
		"enums", len(agg.spec.Enums),
		"records", len(agg.spec.Records),
		"classes", len(agg.spec.Classes),
		"constants", len(agg.spec.Constants),
	)
	return agg.spec, nil
}

// origin records where an aggregate entry was last defined: the document
// and the JSON pointer inside that document.
type origin struct {
	doc     *document
	pointer string
}

// aggregate accumulates merged spec documents together with the origin of
// each entry, so consistency issues can point at the right file and line.
type aggregate struct {
	spec *Spec

	// origins is keyed by the logical pointer of an entry in the merged
	// spec, e.g. "/classes/Realm/base" or "/primitives/bool".
	origins map[string]origin
}

func newAggregate() *aggregate {
	return &aggregate{
		spec: &Spec{
			TypeAliases: make(map[string]string),
			Enums:       make(map[string]*Enum),
			Records:     make(map[string]*Record),
			Classes:     make(map[string]*Class),
			Constants:   make(map[string]*Constant),
		},
		origins: make(map[string]origin),
	}
}

// define records that key was (re)defined by doc at pointer.
func (a *aggregate) define(key string, doc *document, pointer string) {
	a.origins[key] = origin{doc: doc, pointer: pointer}
}

// issue builds an Issue for the logical key, attributed to the document
// that last defined the key or its closest defined ancestor.
func (a *aggregate) issue(key, message string) Issue {
	for k := key; k != ""; k = parentPointer(k) {
		if o, ok := a.origins[k]; ok {
			return Issue{Path: o.doc.path, Line: o.doc.line(o.pointer), Pointer: key, Message: message}
		}
	}
	return Issue{Pointer: key, Message: message}
}

// merge folds one decoded document into the aggregate.
func (a *aggregate) merge(doc *document, s *Spec) {
	for i, h := range s.Headers {
		if !slices.Contains(a.spec.Headers, h) {
			a.spec.Headers = append(a.spec.Headers, h)
			a.define(pointerOf("headers", h), doc, pointerOf("headers", strconv.Itoa(i)))
		}
	}
	for i, p := range s.Primitives {
		if !slices.Contains(a.spec.Primitives, p) {
			a.spec.Primitives = append(a.spec.Primitives, p)
		}
		// The latest definition wins for diagnostics, like any other entry.
		a.define(pointerOf("primitives", p), doc, pointerOf("primitives", strconv.Itoa(i)))
	}
	for name, target := range s.TypeAliases {
		a.spec.TypeAliases[name] = target
		a.define(pointerOf("typeAliases", name), doc, pointerOf("typeAliases", name))
	}
	for name, e := range s.Enums {
		a.spec.Enums[name] = e
		a.define(pointerOf("enums", name), doc, pointerOf("enums", name))
	}
	for name, c := range s.Constants {
		a.spec.Constants[name] = c
		a.define(pointerOf("constants", name), doc, pointerOf("constants", name))
	}
	for name, r := range s.Records {
		a.mergeRecord(doc, name, r)
	}
	for name, c := range s.Classes {
		a.mergeClass(doc, name, c)
	}
}

func (a *aggregate) mergeRecord(doc *document, name string, r *Record) {
	key := pointerOf("records", name)
	a.define(key, doc, key)

	existing, ok := a.spec.Records[name]
	if !ok {
		if r.Fields == nil {
			r.Fields = make(map[string]*Field)
		}
		a.spec.Records[name] = r
		for field := range r.Fields {
			fk := pointerOf("records", name, "fields", field)
			a.define(fk, doc, fk)
		}
		return
	}

	if r.CppName != "" {
		existing.CppName = r.CppName
	}
	for field, f := range r.Fields {
		existing.Fields[field] = f
		fk := pointerOf("records", name, "fields", field)
		a.define(fk, doc, fk)
	}
}

func (a *aggregate) mergeClass(doc *document, name string, c *Class) {
	key := pointerOf("classes", name)
	a.define(key, doc, key)
	if c.Base != "" {
		bk := pointerOf("classes", name, "base")
		a.define(bk, doc, bk)
	}

	existing, ok := a.spec.Classes[name]
	if !ok {
		existing = &Class{}
		a.spec.Classes[name] = existing
	}
	if c.CppName != "" {
		existing.CppName = c.CppName
	}
	if c.Base != "" {
		existing.Base = c.Base
	}
	existing.Methods = a.mergeMembers(doc, existing.Methods, c.Methods, "classes", name, "methods")
	existing.StaticMethods = a.mergeMembers(doc, existing.StaticMethods, c.StaticMethods, "classes", name, "staticMethods")
	existing.Properties = a.mergeMembers(doc, existing.Properties, c.Properties, "classes", name, "properties")
}

// mergeMembers copies src over dst, recording the origin of every member.
func (a *aggregate) mergeMembers(doc *document, dst, src map[string]string, tokens ...string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for member, value := range src {
		dst[member] = value
		mk := pointerOf(append(slices.Clone(tokens), member)...)
		a.define(mk, doc, mk)
	}
	return dst
}
