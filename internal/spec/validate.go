package spec

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Kinds of type declarations, used in duplicate-name diagnostics.
const (
	kindPrimitive = "primitive"
	kindTypeAlias = "type alias"
	kindEnum      = "enum"
	kindRecord    = "record"
	kindClass     = "class"
)

// validate performs consistency checks on the merged aggregate that a
// per-document schema cannot express. It returns all issues found (empty
// slice = consistent aggregate).
//
// Checks performed:
//   - Each type name is declared by at most one kind
//   - Type aliases do not refer to themselves
//   - Enum values are unique within an enum
//   - Class bases name declared classes, and inheritance is acyclic
//   - No class declares a method as both instance and static
func (a *aggregate) validate() []Issue {
	var issues []Issue
	s := a.spec

	// Check 1: one declaration kind per type name. Primitives are checked
	// first, in declaration order, so that the later kind is the one flagged.
	declared := make(map[string]string)
	declare := func(name, kind, key string) {
		if prev, ok := declared[name]; ok {
			issues = append(issues, a.issue(key,
				fmt.Sprintf("type %q is declared as both %s and %s", name, article(prev), article(kind))))
			return
		}
		declared[name] = kind
	}
	for _, p := range s.Primitives {
		declare(p, kindPrimitive, pointerOf("primitives", p))
	}
	for _, name := range sortedKeys(s.TypeAliases) {
		declare(name, kindTypeAlias, pointerOf("typeAliases", name))
	}
	for _, name := range sortedKeys(s.Enums) {
		declare(name, kindEnum, pointerOf("enums", name))
	}
	for _, name := range sortedKeys(s.Records) {
		declare(name, kindRecord, pointerOf("records", name))
	}
	for _, name := range sortedKeys(s.Classes) {
		declare(name, kindClass, pointerOf("classes", name))
	}

	// Check 2: aliases must not be self-referential.
	for _, name := range sortedKeys(s.TypeAliases) {
		if s.TypeAliases[name] == name {
			issues = append(issues, a.issue(pointerOf("typeAliases", name),
				fmt.Sprintf("type alias %q refers to itself", name)))
		}
	}

	// Check 3: enum values are unique.
	for _, name := range sortedKeys(s.Enums) {
		seen := make(map[string]bool)
		for _, v := range s.Enums[name].Values {
			if seen[v] {
				issues = append(issues, a.issue(pointerOf("enums", name),
					fmt.Sprintf("enum %q declares value %q more than once", name, v)))
			}
			seen[v] = true
		}
	}

	// Check 4: class bases exist and inheritance is acyclic.
	for _, name := range sortedKeys(s.Classes) {
		base := s.Classes[name].Base
		if base == "" {
			continue
		}
		if _, ok := s.Classes[base]; !ok {
			issues = append(issues, a.issue(pointerOf("classes", name, "base"),
				fmt.Sprintf("base %q of class %q is not a declared class", base, name)))
		}
	}
	issues = append(issues, a.inheritanceCycles()...)

	// Check 5: method names are unique across instance and static methods,
	// since opt-in lists and templates look methods up by name.
	for _, name := range sortedKeys(s.Classes) {
		c := s.Classes[name]
		for _, m := range sortedKeys(c.StaticMethods) {
			if _, ok := c.Methods[m]; ok {
				issues = append(issues, a.issue(pointerOf("classes", name, "staticMethods", m),
					fmt.Sprintf("method %q of class %q is declared as both instance and static", m, name)))
			}
		}
	}

	return issues
}

// inheritanceCycles reports each base-class cycle once, attributed to the
// lexicographically smallest class on the cycle.
func (a *aggregate) inheritanceCycles() []Issue {
	var issues []Issue
	classes := a.spec.Classes
	for _, start := range sortedKeys(classes) {
		chain := []string{start}
		for current := classes[start].Base; current != ""; {
			if current == start {
				if slices.Min(chain) == start {
					issues = append(issues, a.issue(pointerOf("classes", start, "base"),
						fmt.Sprintf("inheritance cycle: %s -> %s", strings.Join(chain, " -> "), start)))
				}
				break
			}
			if slices.Contains(chain, current) {
				// Cycle that does not include start; reported from its own members.
				break
			}
			next, ok := classes[current]
			if !ok {
				break
			}
			chain = append(chain, current)
			current = next.Base
		}
	}
	return issues
}

// article prefixes a kind with "a" or "an".
func article(kind string) string {
	switch kind[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + kind
	default:
		return "a " + kind
	}
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
