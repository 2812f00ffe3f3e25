package spec

import (
	"bytes"
	"embed"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

const (
	specSchemaName  = "spec.schema.json"
	optInSchemaName = "optin.schema.json"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaErr  error
	schemas    map[string]*jsonschema.Schema
)

// loadSchema returns the compiled schema with the given file name. All
// embedded schemas are compiled once per process.
func loadSchema(name string) (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemas = make(map[string]*jsonschema.Schema)
		for _, n := range []string{specSchemaName, optInSchemaName} {
			data, err := schemaFS.ReadFile("schema/" + n)
			if err != nil {
				schemaErr = errors.Wrapf(err, "read embedded schema %s", n)
				return
			}
			compiler := jsonschema.NewCompiler()
			compiler.Draft = jsonschema.Draft7
			if err := compiler.AddResource(n, bytes.NewReader(data)); err != nil {
				schemaErr = errors.Wrapf(err, "add schema %s", n)
				return
			}
			sch, err := compiler.Compile(n)
			if err != nil {
				schemaErr = errors.Wrapf(err, "compile schema %s", n)
				return
			}
			schemas[n] = sch
		}
	})
	if schemaErr != nil {
		return nil, schemaErr
	}
	return schemas[name], nil
}

// document is one loaded and schema-checked input file.
type document struct {
	// path is the absolute path the document was read from.
	path string

	// json is the document converted to plain JSON.
	json []byte

	// tree maps JSON pointers back to source lines. May be nil.
	tree *yaml.Node
}

// line returns the source line of pointer within the document.
func (d *document) line(pointer string) int {
	return lineOf(d.tree, pointer)
}

// issue builds an Issue located in this document.
func (d *document) issue(pointer, message string) Issue {
	return Issue{Path: d.path, Line: d.line(pointer), Pointer: pointer, Message: message}
}

// loadDocument reads path, converts it to JSON and validates it against
// the named schema. Read failures are returned as plain errors; content
// problems are returned as an *InvalidSpecError.
func loadDocument(path, schemaName, summary string) (*document, error) {
	sch, err := loadSchema(schemaName)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	doc := &document{path: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Strip JSONC comments and trailing commas. The result keeps every
		// line break at its original offset.
		doc.json = jsonc.ToJSON(raw)
		doc.tree = parseNodeTree(doc.json)
	default:
		doc.json, err = k8syaml.YAMLToJSON(raw)
		if err != nil {
			return nil, newInvalidSpecError(summary, Issue{Path: path, Message: err.Error()})
		}
		doc.tree = parseNodeTree(raw)
	}

	var value any
	if err := json.Unmarshal(doc.json, &value); err != nil {
		issue := Issue{Path: path, Message: err.Error()}
		var syntaxErr *json.SyntaxError
		if stderrors.As(err, &syntaxErr) {
			issue.Line = lineAtOffset(doc.json, syntaxErr.Offset)
		}
		return nil, newInvalidSpecError(summary, issue)
	}

	if err := sch.Validate(value); err != nil {
		var validationErr *jsonschema.ValidationError
		if !stderrors.As(err, &validationErr) {
			return nil, errors.Wrapf(err, "failed to validate %s", path)
		}
		return nil, newInvalidSpecError(summary, schemaIssues(doc, validationErr)...)
	}

	return doc, nil
}

// schemaIssues flattens a schema validation error into one Issue per
// leaf cause, ordered by pointer for deterministic output.
func schemaIssues(doc *document, verr *jsonschema.ValidationError) []Issue {
	var leaves []*jsonschema.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)

	issues := make([]Issue, 0, len(leaves))
	seen := make(map[string]bool)
	for _, leaf := range leaves {
		key := leaf.InstanceLocation + "\x00" + leaf.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		issues = append(issues, doc.issue(leaf.InstanceLocation, leaf.Message))
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Pointer < issues[j].Pointer
	})
	return issues
}

// decode unmarshals the document's JSON into v. The schema has already
// accepted the document, so failures here are unusual and reported as
// content problems.
func (d *document) decode(v any, summary string) error {
	if err := decodeJSON(d.json, v); err != nil {
		return newInvalidSpecError(summary, Issue{Path: d.path, Message: err.Error()})
	}
	return nil
}

// decodeJSON unmarshals data into v, keeping numbers in untyped values as
// json.Number so integers beyond 2^53 keep their exact text.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
