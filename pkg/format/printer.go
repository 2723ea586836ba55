// Package format renders query values to a compact canonical text form
// used by diagnostics and error messages. The rendering is stable: the
// same query always formats to the same string.
package format

import (
	"bytes"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/querykit/pkg/ir"
)

// printer accumulates one query's rendering. Binding names are derived
// once from the query's sources so every clause refers to them uniformly.
type printer struct {
	output *bytes.Buffer
	names  []string
	first  bool
}

func newPrinter(q *ir.Query) *printer {
	return &printer{
		output: &bytes.Buffer{},
		names:  bindingNames(q),
		first:  true,
	}
}

// String returns the rendered output.
func (p *printer) String() string {
	return p.output.String()
}

func (p *printer) write(s string) {
	p.output.WriteString(s)
}

// clause starts a new top-level clause, separating it from the previous
// one with a comma.
func (p *printer) clause(keyword string) {
	if !p.first {
		p.write(", ")
	}
	p.first = false
	if keyword != "" {
		p.write(keyword)
		p.write(": ")
	}
}

// binding returns the derived name for a binding index. Indices past the
// derived list come from opaque runtime queries and fall back to a bare
// positional form.
func (p *printer) binding(ix int) string {
	if ix >= 0 && ix < len(p.names) {
		return p.names[ix]
	}
	return "b" + strconv.Itoa(ix)
}

// formatList renders items with separators.
func (p *printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		if i > 0 {
			p.write(sep)
		}
		format(i)
	}
}

// bindingNames derives one short name per declared source: the source
// name's first letter plus the positional index, so posts joined to
// comments reads p0 and c1.
func bindingNames(q *ir.Query) []string {
	if q == nil {
		return nil
	}
	var names []string
	if q.From != nil {
		names = append(names, bindingName(q.From.Source, 0))
	}
	for i := range q.Joins {
		names = append(names, bindingName(q.Joins[i].Source, len(names)))
	}
	return names
}

func bindingName(src ir.JoinSource, ix int) string {
	letter := "b"
	switch s := src.(type) {
	case *ir.TableSource:
		letter = firstLetter(s.Table)
	case *ir.SchemaSource:
		letter = firstLetter(s.Source)
	case *ir.AssocSource:
		letter = firstLetter(s.Field)
	case *ir.SubquerySource:
		letter = "s"
	case *ir.FragmentSource:
		letter = "f"
	}
	return letter + strconv.Itoa(ix)
}

func firstLetter(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || !unicode.IsLetter(r) {
		return "b"
	}
	return string(unicode.ToLower(r))
}
