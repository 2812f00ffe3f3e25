package spec

import (
	"context"

	"github.com/realm/realm-bindgen/internal/debug"
)

const invalidOptInSummary = "Invalid opt-in list"

// ParseOptInSpec loads an opt-in list. The document goes through the same
// format detection and schema validation as spec documents, against the
// opt-in schema. Content problems are returned as an *InvalidSpecError.
//
// Whether the listed names exist is only known once the list is applied
// to a bound model (see BoundSpec.ApplyOptInList).
func ParseOptInSpec(ctx context.Context, path string) (*OptInList, error) {
	log := debug.FromContext(ctx)

	doc, err := loadDocument(path, optInSchemaName, invalidOptInSummary)
	if err != nil {
		return nil, err
	}

	var list OptInList
	if err := doc.decode(&list, invalidOptInSummary); err != nil {
		return nil, err
	}

	log.Debug("Parsed opt-in list", "path", path, "classes", len(list.Classes), "records", len(list.Records))
	return &list, nil
}
