package format

import (
	"sort"
	"strconv"

	"github.com/leapstack-labs/querykit/pkg/ir"
)

// Format renders a query to its one-line canonical form. Parameters render
// as ^ix placeholders and bindings by derived positional names.
func Format(q *ir.Query) string {
	if q == nil {
		return "#query<>"
	}
	p := newPrinter(q)
	p.write("#query<")
	p.formatQuery(q)
	p.write(">")
	return p.String()
}

// FormatExpr renders a lone expression the way Format renders it inside a
// query, with bare positional binding names.
func FormatExpr(e ir.Expr) string {
	p := newPrinter(nil)
	p.formatExpr(e)
	return p.String()
}

func (p *printer) formatQuery(q *ir.Query) {
	if q.With != nil && q.With.CTEs.Len() > 0 {
		p.formatWith(q.With)
	}
	if q.From != nil {
		p.clause("")
		p.write("from " + p.binding(0) + " in ")
		p.formatSource(q.From.Source)
		p.formatSourceOpts(q.From.As, q.From.Prefix, q.From.Hints)
	}
	for i := range q.Joins {
		p.formatJoin(&q.Joins[i], i+1)
	}
	for i := range q.Wheres {
		p.formatBoolean(&q.Wheres[i], "where", "or_where")
	}
	for i := range q.GroupBys {
		p.clause("group_by")
		p.write("[")
		p.formatExprs(q.GroupBys[i].Exprs)
		p.write("]")
	}
	for i := range q.Havings {
		p.formatBoolean(&q.Havings[i], "having", "or_having")
	}
	if q.Windows.Len() > 0 {
		p.formatWindows(q.Windows)
	}
	if q.Distinct != nil {
		p.formatDistinct(q.Distinct)
	}
	for i := range q.OrderBys {
		p.clause("order_by")
		p.write("[")
		p.formatOrderItems(q.OrderBys[i].Items)
		p.write("]")
	}
	if q.Limit != nil {
		p.clause("limit")
		p.formatExpr(q.Limit.Expr)
		if q.Limit.WithTies {
			p.clause("with_ties")
			p.write("true")
		}
	}
	if q.Offset != nil {
		p.clause("offset")
		p.formatExpr(q.Offset.Expr)
	}
	if q.Lock != nil {
		p.clause("lock")
		if q.Lock.Frag != nil {
			p.formatFragment(q.Lock.Frag)
		} else {
			p.write(strconv.Quote(q.Lock.Keyword))
		}
	}
	for i := range q.Updates {
		p.formatUpdate(&q.Updates[i])
	}
	if q.Select != nil {
		p.clause("select")
		p.formatExpr(q.Select.Expr)
		p.formatTake(q.Select.Take)
	}
	if len(q.Preloads) > 0 {
		p.clause("preload")
		p.write("[")
		p.formatPreloads(q.Preloads)
		p.write("]")
	}
	if !q.Assocs.Empty() {
		p.formatAssocs(q.Assocs)
	}
	for _, c := range q.Combinations {
		p.clause(c.Kind.String())
		p.write("(" + Format(c.Query) + ")")
	}
	for _, c := range q.Comments {
		p.clause("comment")
		p.write(strconv.Quote(c))
	}
}

func (p *printer) formatSource(src ir.JoinSource) {
	switch s := src.(type) {
	case *ir.TableSource:
		p.write(strconv.Quote(s.Table))
	case *ir.SchemaSource:
		p.write(s.Schema)
	case *ir.SubquerySource:
		p.write("subquery(" + Format(s.Sub.Query) + ")")
	case *ir.FragmentSource:
		p.formatFragment(s.Frag)
	case *ir.AssocSource:
		p.write("assoc(" + p.binding(s.Binding) + ", " + s.Field + ")")
	}
}

func (p *printer) formatSourceOpts(as, prefix string, hints []string) {
	if as != "" {
		p.write(" as: " + as)
	}
	if prefix != "" {
		p.write(" prefix: " + strconv.Quote(prefix))
	}
	if len(hints) > 0 {
		p.write(" hints: [")
		p.formatList(len(hints), func(i int) { p.write(strconv.Quote(hints[i])) }, ", ")
		p.write("]")
	}
}

func (p *printer) formatJoin(j *ir.JoinExpr, ix int) {
	p.clause(j.Qual.String() + "_join")
	p.write(p.binding(ix) + " in ")
	p.formatSource(j.Source)
	p.formatSourceOpts(j.As, j.Prefix, j.Hints)
	if j.On != nil {
		p.write(" on: ")
		p.formatExpr(j.On.Expr)
	}
}

func (p *printer) formatBoolean(b *ir.BooleanExpr, andKw, orKw string) {
	kw := andKw
	if b.Op == ir.CombineOr {
		kw = orKw
	}
	p.clause(kw)
	p.formatExpr(b.Expr)
}

func (p *printer) formatDistinct(d *ir.DistinctExpr) {
	p.clause("distinct")
	if len(d.Exprs) == 0 {
		p.write(strconv.FormatBool(d.Value))
		return
	}
	p.write("[")
	p.formatExprs(d.Exprs)
	p.write("]")
}

func (p *printer) formatOrderItems(items []ir.OrderByItem) {
	p.formatList(len(items), func(i int) {
		p.write(items[i].Dir.String() + ": ")
		p.formatExpr(items[i].Expr)
	}, ", ")
}

func (p *printer) formatWindows(ws *ir.Keystore[*ir.WindowExpr]) {
	p.clause("windows")
	p.write("[")
	keys := ws.Keys()
	p.formatList(len(keys), func(i int) {
		w, _ := ws.Get(keys[i])
		p.write(keys[i] + ": [")
		inner := false
		if len(w.PartitionBy) > 0 {
			p.write("partition_by: [")
			p.formatExprs(w.PartitionBy)
			p.write("]")
			inner = true
		}
		if len(w.OrderBy) > 0 {
			if inner {
				p.write(", ")
			}
			p.write("order_by: [")
			p.formatOrderItems(w.OrderBy)
			p.write("]")
			inner = true
		}
		if w.Frame != nil {
			if inner {
				p.write(", ")
			}
			p.write("frame: ")
			p.formatFragment(w.Frame)
		}
		p.write("]")
	}, ", ")
	p.write("]")
}

func (p *printer) formatUpdate(u *ir.UpdateExpr) {
	p.clause("update")
	p.write("[")
	p.formatList(len(u.Ops), func(i int) {
		op := u.Ops[i]
		p.write(op.Kind.String() + ": [")
		p.formatKVs(op.Fields)
		p.write("]")
	}, ", ")
	p.write("]")
}

func (p *printer) formatTake(take map[int]ir.TakeSpec) {
	if len(take) == 0 {
		return
	}
	ixs := make([]int, 0, len(take))
	for ix := range take {
		ixs = append(ixs, ix)
	}
	sort.Ints(ixs)
	p.clause("take")
	p.write("[")
	p.formatList(len(ixs), func(i int) {
		spec := take[ixs[i]]
		p.write(p.binding(ixs[i]) + ": " + spec.Kind.String() + "([")
		p.formatList(len(spec.Fields), func(j int) { p.write(spec.Fields[j]) }, ", ")
		p.write("])")
	}, ", ")
	p.write("]")
}

func (p *printer) formatPreloads(entries []ir.PreloadEntry) {
	p.formatList(len(entries), func(i int) {
		e := entries[i]
		p.write(e.Field)
		if len(e.Children) > 0 {
			p.write(": [")
			p.formatPreloads(e.Children)
			p.write("]")
		}
	}, ", ")
}

func (p *printer) formatAssocs(f ir.AssocForest) {
	p.clause("assoc")
	p.write("[")
	var formatNode func(ix int)
	formatNode = func(ix int) {
		node := f.Nodes[ix]
		p.write(node.Field + " in " + p.binding(node.Binding))
		if len(node.Preloads) > 0 {
			p.write(" preload: [")
			p.formatPreloads(node.Preloads)
			p.write("]")
		}
		if len(node.Children) > 0 {
			p.write(": [")
			p.formatList(len(node.Children), func(i int) { formatNode(node.Children[i]) }, ", ")
			p.write("]")
		}
	}
	p.formatList(len(f.Roots), func(i int) { formatNode(f.Roots[i]) }, ", ")
	p.write("]")
}

func (p *printer) formatWith(w *ir.WithExpr) {
	kw := "with_ctes"
	if w.Recursive {
		kw = "with_recursive"
	}
	p.clause(kw)
	p.write("[")
	keys := w.CTEs.Keys()
	p.formatList(len(keys), func(i int) {
		cte, _ := w.CTEs.Get(keys[i])
		p.write(keys[i] + ": ")
		switch {
		case cte.Query != nil:
			p.write("(" + Format(cte.Query) + ")")
		case cte.Frag != nil:
			p.formatFragment(cte.Frag)
		}
		if cte.Materialized == ir.MaterializedYes {
			p.write(" materialized")
		}
		if cte.Materialized == ir.MaterializedNo {
			p.write(" not_materialized")
		}
	}, ", ")
	p.write("]")
}
