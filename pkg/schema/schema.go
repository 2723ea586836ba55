// Package schema defines the metadata boundary the query core consults:
// a pure, side-effect-free lookup of source names, field types, primary
// keys, and default prefixes. Implementations must be safe for concurrent
// reads; the core never writes through this interface.
package schema

import (
	"sort"

	"github.com/leapstack-labs/querykit/pkg/ir"
)

// Metadata is the lookup interface supplied by the surrounding system.
type Metadata interface {
	// SourceName returns the table the schema maps to.
	SourceName() string
	// FieldType returns the declared type of a field. The boolean reports
	// whether the field exists.
	FieldType(field string) (ir.ParamType, bool)
	// PrimaryKey returns the primary key field, if one is declared.
	PrimaryKey() (string, bool)
	// Prefix returns the default namespace prefix, or "".
	Prefix() string
}

// Table is a declarative Metadata implementation.
type Table struct {
	Name        string
	TablePrefix string
	PK          string
	FieldTypes  map[string]ir.ParamType
}

var _ Metadata = (*Table)(nil)

// SourceName implements Metadata.
func (t *Table) SourceName() string { return t.Name }

// FieldType implements Metadata.
func (t *Table) FieldType(field string) (ir.ParamType, bool) {
	typ, ok := t.FieldTypes[field]
	return typ, ok
}

// PrimaryKey implements Metadata.
func (t *Table) PrimaryKey() (string, bool) {
	return t.PK, t.PK != ""
}

// Prefix implements Metadata.
func (t *Table) Prefix() string { return t.TablePrefix }

// Fields returns the declared field names, sorted for determinism.
func (t *Table) Fields() []string {
	out := make([]string, 0, len(t.FieldTypes))
	for f := range t.FieldTypes {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
