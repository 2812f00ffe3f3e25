package spec

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile is a test helper that writes content to dir/name and returns
// the absolute path of the new file.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// requireInvalidSpec asserts that err is an *InvalidSpecError and returns it.
func requireInvalidSpec(t *testing.T, err error) *InvalidSpecError {
	t.Helper()
	require.Error(t, err)
	var specErr *InvalidSpecError
	require.True(t, errors.As(err, &specErr), "error should be an *InvalidSpecError, got %T: %v", err, err)
	require.NotEmpty(t, specErr.Issues)
	return specErr
}

// issueLines indexes issues by pointer for order-independent assertions.
func issueLines(issues []Issue) map[string]int {
	lines := make(map[string]int, len(issues))
	for _, i := range issues {
		lines[i.Pointer] = i.Line
	}
	return lines
}

const coreSpec = `headers:
  - realm.hpp
primitives: [void, bool, int64_t, std::string]
typeAliases:
  ObjKey: int64_t
enums:
  SchemaMode:
    values: [Automatic, Immutable]
records:
  Property:
    fields:
      name: std::string
      is_primary:
        type: bool
        default: false
classes:
  Object:
    methods:
      get_key: "() -> ObjKey"
  Realm:
    base: Object
    methods:
      close: "() -> void"
    staticMethods:
      get_shared_realm: "(path: std::string) -> Realm"
    properties:
      is_closed: bool
constants:
  null_key:
    type: int64_t
    value: -1
`

// TestParseSpecs_YAML verifies that a single YAML document is parsed into
// the expected aggregate, including shorthand and object-form fields.
func TestParseSpecs_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "core.yml", coreSpec)

	s, err := ParseSpecs(context.Background(), []string{path})
	require.NoError(t, err)

	assert.Equal(t, []string{"realm.hpp"}, s.Headers)
	assert.Equal(t, []string{"void", "bool", "int64_t", "std::string"}, s.Primitives)
	assert.Equal(t, map[string]string{"ObjKey": "int64_t"}, s.TypeAliases)

	require.Contains(t, s.Enums, "SchemaMode")
	assert.Equal(t, []string{"Automatic", "Immutable"}, s.Enums["SchemaMode"].Values)

	require.Contains(t, s.Records, "Property")
	fields := s.Records["Property"].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "std::string", fields["name"].Type)
	assert.Nil(t, fields["name"].Default)
	assert.Equal(t, "bool", fields["is_primary"].Type)
	assert.Equal(t, false, fields["is_primary"].Default)

	require.Contains(t, s.Classes, "Realm")
	realm := s.Classes["Realm"]
	assert.Equal(t, "Object", realm.Base)
	assert.Equal(t, "() -> void", realm.Methods["close"])
	assert.Equal(t, "(path: std::string) -> Realm", realm.StaticMethods["get_shared_realm"])
	assert.Equal(t, "bool", realm.Properties["is_closed"])

	require.Contains(t, s.Constants, "null_key")
	assert.Equal(t, "int64_t", s.Constants["null_key"].Type)
	assert.Equal(t, int64(-1), s.Constants["null_key"].Value)
}

// TestParseSpecs_ExactNumbers verifies that integer literals beyond the
// float64 mantissa keep their exact value through ParseSpecs and Bind.
func TestParseSpecs_ExactNumbers(t *testing.T) {
	dir := t.TempDir()
	yml := writeFile(t, dir, "consts.yml", `constants:
  max_key:
    type: int64_t
    value: 9223372036854775807
  big:
    type: int64_t
    value: 9007199254740993
  max_u64:
    type: uint64_t
    value: 18446744073709551615
  ratio:
    type: double
    value: 0.5
records:
  Limits:
    fields:
      cap:
        type: int64_t
        default: 9007199254740993
`)
	jsonc := writeFile(t, dir, "more.jsonc", `{
  // comments are allowed
  "constants": {"min_key": {"type": "int64_t", "value": -9223372036854775808}}
}`)

	s, err := ParseSpecs(context.Background(), []string{yml, jsonc})
	require.NoError(t, err)

	assert.Equal(t, int64(math.MaxInt64), s.Constants["max_key"].Value)
	assert.Equal(t, int64(9007199254740993), s.Constants["big"].Value)
	assert.Equal(t, uint64(math.MaxUint64), s.Constants["max_u64"].Value)
	assert.Equal(t, 0.5, s.Constants["ratio"].Value)
	assert.Equal(t, int64(math.MinInt64), s.Constants["min_key"].Value)
	assert.Equal(t, int64(9007199254740993), s.Records["Limits"].Fields["cap"].Default)

	b := Bind(s)
	values := make(map[string]any)
	for _, c := range b.Constants {
		values[c.Name] = c.Value
	}
	assert.Equal(t, int64(math.MaxInt64), values["max_key"])
	assert.Equal(t, int64(9007199254740993), values["big"])
	assert.Equal(t, "9223372036854775807", fmt.Sprint(values["max_key"]))
	assert.Equal(t, int64(9007199254740993), b.Record("Limits").Field("cap").Default)
}

// TestParseSpecs_MergeOrder verifies that later documents extend and
// override earlier ones, in command-line order.
func TestParseSpecs_MergeOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.yml", `headers: [a.hpp, b.hpp]
primitives: [int]
typeAliases:
  Key: int
classes:
  Realm:
    methods:
      close: "() -> void"
records:
  Config:
    fields:
      path: string
`)
	second := writeFile(t, dir, "b.yml", `headers: [b.hpp, c.hpp]
primitives: [int, string]
typeAliases:
  Key: string
classes:
  Realm:
    methods:
      close: "(force: bool) -> void"
      open: "() -> void"
    properties:
      is_closed: bool
records:
  Config:
    fields:
      schema_version: int
`)

	s, err := ParseSpecs(context.Background(), []string{first, second})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.hpp", "b.hpp", "c.hpp"}, s.Headers)
	assert.Equal(t, []string{"int", "string"}, s.Primitives)
	assert.Equal(t, "string", s.TypeAliases["Key"], "later alias should replace earlier one")

	realm := s.Classes["Realm"]
	assert.Equal(t, map[string]string{
		"close": "(force: bool) -> void",
		"open":  "() -> void",
	}, realm.Methods)
	assert.Equal(t, map[string]string{"is_closed": "bool"}, realm.Properties)

	config := s.Records["Config"]
	require.Len(t, config.Fields, 2)
	assert.Equal(t, "string", config.Fields["path"].Type)
	assert.Equal(t, "int", config.Fields["schema_version"].Type)

	// Reversing the order changes which alias wins.
	s, err = ParseSpecs(context.Background(), []string{second, first})
	require.NoError(t, err)
	assert.Equal(t, "int", s.TypeAliases["Key"])
	assert.Equal(t, []string{"b.hpp", "c.hpp", "a.hpp"}, s.Headers)
}

// TestParseSpecs_JSONC verifies that .jsonc documents with comments and
// trailing commas are accepted.
func TestParseSpecs_JSONC(t *testing.T) {
	path := writeFile(t, t.TempDir(), "core.jsonc", `{
  // core types
  "primitives": ["int"],
  "classes": {
    "Realm": { "methods": { "close": "() -> void" } }, /* trailing comma next */
  },
}
`)

	s, err := ParseSpecs(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"int"}, s.Primitives)
	assert.Equal(t, "() -> void", s.Classes["Realm"].Methods["close"])
}

// TestParseSpecs_SchemaViolation verifies that schema failures are reported
// with file, JSON pointer and source line.
func TestParseSpecs_SchemaViolation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yml", `enums:
  SchemaMode:
    isFlag: true
classes:
  Realm:
    methods:
      close: 42
`)

	_, err := ParseSpecs(context.Background(), []string{path})
	specErr := requireInvalidSpec(t, err)

	assert.Equal(t, "Invalid spec", specErr.Summary)
	for _, issue := range specErr.Issues {
		assert.Equal(t, path, issue.Path)
	}

	lines := issueLines(specErr.Issues)
	assert.Equal(t, 2, lines["/enums/SchemaMode"], "missing values should point at the enum")
	assert.Equal(t, 7, lines["/classes/Realm/methods/close"], "wrong type should point at the method")
}

// TestParseSpecs_UnknownTopLevelKey verifies that additional properties are
// rejected by the schema.
func TestParseSpecs_UnknownTopLevelKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yml", "interfaces:\n  Foo: {}\n")

	_, err := ParseSpecs(context.Background(), []string{path})
	specErr := requireInvalidSpec(t, err)
	assert.Equal(t, path, specErr.Issues[0].Path)
	assert.Contains(t, specErr.Issues[0].Message, "interfaces")
}

// TestParseSpecs_SyntaxErrors verifies that malformed YAML and JSON are
// reported as spec errors rather than generic failures.
func TestParseSpecs_SyntaxErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, dir, "broken.yml", "classes: [unclosed\n")
		_, err := ParseSpecs(context.Background(), []string{path})
		specErr := requireInvalidSpec(t, err)
		assert.Equal(t, path, specErr.Issues[0].Path)
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, dir, "broken.json", "{\n  \"classes\": {\n    \"Realm\":\n  }\n}\n")
		_, err := ParseSpecs(context.Background(), []string{path})
		specErr := requireInvalidSpec(t, err)
		assert.Equal(t, path, specErr.Issues[0].Path)
		assert.Equal(t, 4, specErr.Issues[0].Line)
	})
}

// TestParseSpecs_FirstInvalidFileAborts verifies that parsing stops at the
// first document that fails, without looking at later ones.
func TestParseSpecs_FirstInvalidFileAborts(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yml", "enums: 3\n")
	missing := filepath.Join(dir, "never-read.yml")

	_, err := ParseSpecs(context.Background(), []string{bad, missing})
	specErr := requireInvalidSpec(t, err)
	assert.Equal(t, bad, specErr.Issues[0].Path)
}

// TestParseSpecs_ReadError verifies that I/O failures are not reported as
// spec errors.
func TestParseSpecs_ReadError(t *testing.T) {
	_, err := ParseSpecs(context.Background(), []string{filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)

	var specErr *InvalidSpecError
	assert.False(t, errors.As(err, &specErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseSpecs_NoPaths(t *testing.T) {
	_, err := ParseSpecs(context.Background(), nil)
	require.Error(t, err)
}

// TestParseSpecs_Consistency verifies the checks that run on the merged
// aggregate, and that each issue points at the defining line.
func TestParseSpecs_Consistency(t *testing.T) {
	path := writeFile(t, t.TempDir(), "inconsistent.yml", `primitives: [int64_t]
classes:
  A:
    base: B
  B:
    base: A
  C:
    base: Missing
enums:
  Mode:
    values: [X, X]
typeAliases:
  Loop: Loop
`)

	_, err := ParseSpecs(context.Background(), []string{path})
	specErr := requireInvalidSpec(t, err)
	require.Len(t, specErr.Issues, 4)

	tests := []struct {
		pointer string
		line    int
		message string
	}{
		{"/typeAliases/Loop", 13, `type alias "Loop" refers to itself`},
		{"/enums/Mode", 10, `enum "Mode" declares value "X" more than once`},
		{"/classes/C/base", 8, `base "Missing" of class "C" is not a declared class`},
		{"/classes/A/base", 4, "inheritance cycle: A -> B -> A"},
	}
	for i, tt := range tests {
		t.Run(tt.pointer, func(t *testing.T) {
			issue := specErr.Issues[i]
			assert.Equal(t, path, issue.Path)
			assert.Equal(t, tt.pointer, issue.Pointer)
			assert.Equal(t, tt.line, issue.Line)
			assert.Equal(t, tt.message, issue.Message)
		})
	}
}

// TestParseSpecs_DuplicateKindsAcrossFiles verifies that a name declared
// with different kinds in different files is attributed to the later file.
func TestParseSpecs_DuplicateKindsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "records.yml", `records:
  Thing:
    fields:
      a: string
`)
	second := writeFile(t, dir, "classes.yml", `primitives: [string]
classes:
  Thing:
    methods:
      run: "() -> void"
`)

	_, err := ParseSpecs(context.Background(), []string{first, second})
	specErr := requireInvalidSpec(t, err)
	require.Len(t, specErr.Issues, 1)

	issue := specErr.Issues[0]
	assert.Equal(t, second, issue.Path)
	assert.Equal(t, 3, issue.Line)
	assert.Equal(t, "/classes/Thing", issue.Pointer)
	assert.Equal(t, `type "Thing" is declared as both a record and a class`, issue.Message)
}

// TestParseSpecs_InstanceAndStaticMethod verifies that a method name may
// not be declared both as an instance and as a static method, even when
// the two declarations come from different files.
func TestParseSpecs_InstanceAndStaticMethod(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "instance.yml", `classes:
  Realm:
    methods:
      close: "() -> void"
      refresh: "() -> bool"
`)
	second := writeFile(t, dir, "static.yml", `classes:
  Realm:
    staticMethods:
      close: "() -> void"
      open: "(path: std::string) -> Realm"
`)

	_, err := ParseSpecs(context.Background(), []string{first, second})
	specErr := requireInvalidSpec(t, err)
	require.Len(t, specErr.Issues, 1)

	issue := specErr.Issues[0]
	assert.Equal(t, second, issue.Path)
	assert.Equal(t, 4, issue.Line)
	assert.Equal(t, "/classes/Realm/staticMethods/close", issue.Pointer)
	assert.Equal(t, `method "close" of class "Realm" is declared as both instance and static`, issue.Message)
}

// TestParseOptInSpec verifies loading a valid opt-in list.
func TestParseOptInSpec(t *testing.T) {
	path := writeFile(t, t.TempDir(), "optin.yml", `classes:
  Realm:
    methods: [close, get_shared_realm]
records:
  Property:
    fields: [name]
`)

	list, err := ParseOptInSpec(context.Background(), path)
	require.NoError(t, err)

	require.Contains(t, list.Classes, "Realm")
	assert.Equal(t, []string{"close", "get_shared_realm"}, list.Classes["Realm"].Methods)
	require.Contains(t, list.Records, "Property")
	assert.Equal(t, []string{"name"}, list.Records["Property"].Fields)
}

// TestParseOptInSpec_Invalid verifies that opt-in problems are reported
// with their own summary.
func TestParseOptInSpec_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "optin.yml", `classes:
  Realm:
    methods: close
`)

	_, err := ParseOptInSpec(context.Background(), path)
	specErr := requireInvalidSpec(t, err)
	assert.Equal(t, "Invalid opt-in list", specErr.Summary)
	assert.Equal(t, 3, issueLines(specErr.Issues)["/classes/Realm/methods"])
}
