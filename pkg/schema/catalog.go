package schema

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/querykit/pkg/ir"
)

// Catalog maps metadata names to tables.
type Catalog struct {
	tables map[string]*Table
}

// NewCatalog builds a catalog from tables, keyed by table name.
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		c.tables[t.Name] = t
	}
	return c
}

// Get looks up a table by name.
func (c *Catalog) Get(name string) (Metadata, bool) {
	t, ok := c.tables[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// Names returns the catalog's table names.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.tables))
	for n := range c.tables {
		out = append(out, n)
	}
	return out
}

// tableConfig is the on-disk shape of one table entry.
type tableConfig struct {
	Prefix     string            `koanf:"prefix"`
	PrimaryKey string            `koanf:"primary_key"`
	Fields     map[string]string `koanf:"fields"`
}

// catalogConfig is the on-disk shape of a catalog file.
type catalogConfig struct {
	Tables map[string]tableConfig `koanf:"tables"`
}

// LoadCatalog reads a YAML catalog file. Field types are declared as
// strings; "[]t" declares an array of t.
func LoadCatalog(path string) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}

	var cfg catalogConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	c := &Catalog{tables: make(map[string]*Table, len(cfg.Tables))}
	for name, tc := range cfg.Tables {
		t := &Table{
			Name:        name,
			TablePrefix: tc.Prefix,
			PK:          tc.PrimaryKey,
			FieldTypes:  make(map[string]ir.ParamType, len(tc.Fields)),
		}
		for field, typ := range tc.Fields {
			t.FieldTypes[field] = parseType(typ)
		}
		c.tables[name] = t
	}
	return c, nil
}

func parseType(s string) ir.ParamType {
	if rest, ok := strings.CutPrefix(s, "[]"); ok {
		return ir.ArrayType{Elem: parseType(rest)}
	}
	if s == "" || s == "any" {
		return ir.AnyType{}
	}
	return ir.ScalarType{Name: s}
}
