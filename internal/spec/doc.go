// Package spec parses and validates API specification documents and
// opt-in lists for the binding generator.
//
// Specification files may be written in YAML, or in JSON with comments
// (.json/.jsonc, stripped with github.com/tidwall/jsonc). Every document
// is converted to JSON, validated against an embedded JSON Schema
// (github.com/santhosh-tekuri/jsonschema/v5) and decoded into Go types.
// Several documents are merged in command-line order into one Spec; later
// documents extend or override earlier ones.
//
// Key responsibilities:
//   - Load, schema-check and merge specification documents (ParseSpecs)
//   - Check the merged aggregate for internal consistency
//   - Load opt-in lists (ParseOptInSpec)
//   - Bind a Spec into the sorted, template-friendly BoundSpec and apply
//     an opt-in list to it
//
// Every content problem is reported as an *InvalidSpecError, which carries
// file, line and JSON pointer for each issue and can print itself.
package spec
