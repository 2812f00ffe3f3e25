package spec

import (
	"bytes"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseNodeTree parses data into a yaml.v3 node tree, used only to map
// JSON pointers back to source lines. JSON is valid YAML, and the output
// of jsonc.ToJSON keeps every line break at its original offset, so the
// same lookup works for all supported formats. A document that yaml.v3
// cannot read yields nil, and lines are then reported as unknown.
func parseNodeTree(data []byte) *yaml.Node {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil
	}
	return &node
}

// lineOf returns the source line of the value at pointer. When the
// pointer does not fully resolve (e.g. a missing property), the line of
// the deepest existing ancestor is returned. Returns 0 when unknown.
func lineOf(root *yaml.Node, pointer string) int {
	if root == nil {
		return 0
	}
	n := root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return 0
		}
		n = n.Content[0]
	}
	line := n.Line
	for _, token := range splitPointer(pointer) {
		keyLine, next := child(n, token)
		if next == nil {
			break
		}
		line, n = keyLine, next
	}
	return line
}

// child resolves a single pointer token against a mapping or sequence
// node. It returns the line to report (the key's line for mappings) and
// the child value node.
func child(n *yaml.Node, token string) (int, *yaml.Node) {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == token {
				return n.Content[i].Line, n.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(token)
		if err == nil && idx >= 0 && idx < len(n.Content) {
			return n.Content[idx].Line, n.Content[idx]
		}
	}
	return 0, nil
}

// splitPointer splits an RFC 6901 JSON pointer into unescaped tokens.
func splitPointer(pointer string) []string {
	if pointer == "" || pointer == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
	}
	return parts
}

// pointerOf joins tokens into an escaped JSON pointer.
func pointerOf(tokens ...string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(t, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// parentPointer drops the last token of pointer. The root pointer is
// its own parent.
func parentPointer(pointer string) string {
	idx := strings.LastIndexByte(pointer, '/')
	if idx <= 0 {
		return ""
	}
	return pointer[:idx]
}

// lineAtOffset converts a byte offset into a 1-based line number.
func lineAtOffset(data []byte, offset int64) int {
	if offset < 0 {
		return 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte{'\n'}) + 1
}
