package format

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/querykit/pkg/ir"
)

// infix lists operators rendered between their two operands. Everything
// else renders call-style.
var infix = map[string]bool{
	ir.OpEq:    true,
	ir.OpNeq:   true,
	ir.OpLt:    true,
	ir.OpLte:   true,
	ir.OpGt:    true,
	ir.OpGte:   true,
	ir.OpAnd:   true,
	ir.OpOr:    true,
	ir.OpIn:    true,
	ir.OpLike:  true,
	ir.OpILike: true,
}

func (p *printer) formatExpr(e ir.Expr) {
	if e == nil {
		return
	}

	switch expr := e.(type) {
	case *ir.Literal:
		p.formatLiteral(expr.Value)
	case *ir.Param:
		p.write("^" + strconv.Itoa(expr.Ix))
	case *ir.BindingRef:
		p.write(p.binding(expr.Binding))
		if expr.Field != "" {
			p.write("." + expr.Field)
		}
	case *ir.Op:
		p.formatOp(expr)
	case *ir.Tuple:
		p.write("{")
		p.formatExprs(expr.Elems)
		p.write("}")
	case *ir.List:
		p.write("[")
		p.formatExprs(expr.Elems)
		p.write("]")
	case *ir.MapExpr:
		p.write("%{")
		p.formatKVs(expr.Fields)
		p.write("}")
	case *ir.StructExpr:
		p.write("%" + expr.Schema + "{")
		p.formatKVs(expr.Fields)
		p.write("}")
	case *ir.Subquery:
		p.write("subquery(" + strconv.Itoa(expr.Ix) + ")")
	case *ir.Fragment:
		p.formatFragment(expr)
	}
}

func (p *printer) formatOp(op *ir.Op) {
	if infix[op.Name] && len(op.Args) == 2 {
		p.formatExpr(op.Args[0])
		p.write(" " + op.Name + " ")
		p.formatExpr(op.Args[1])
		return
	}
	if op.Name == ir.OpNot && len(op.Args) == 1 {
		p.write("not ")
		p.formatExpr(op.Args[0])
		return
	}
	p.write(op.Name + "(")
	p.formatExprs(op.Args)
	p.write(")")
}

// formatFragment reconstructs the fragment's format string, then lists the
// embedded expressions as arguments.
func (p *printer) formatFragment(f *ir.Fragment) {
	p.write("fragment(")
	text := ""
	var args []ir.Expr
	for _, part := range f.Parts {
		if part.Expr != nil {
			text += "?"
			args = append(args, part.Expr)
			continue
		}
		text += part.Text
	}
	p.write(strconv.Quote(text))
	for _, arg := range args {
		p.write(", ")
		p.formatExpr(arg)
	}
	p.write(")")
}

func (p *printer) formatLiteral(v any) {
	switch lit := v.(type) {
	case string:
		p.write(strconv.Quote(lit))
	case nil:
		p.write("nil")
	default:
		p.write(fmt.Sprintf("%v", lit))
	}
}

func (p *printer) formatExprs(exprs []ir.Expr) {
	p.formatList(len(exprs), func(i int) { p.formatExpr(exprs[i]) }, ", ")
}

func (p *printer) formatKVs(kvs []ir.KV) {
	p.formatList(len(kvs), func(i int) {
		p.write(kvs[i].Key + ": ")
		p.formatExpr(kvs[i].Value)
	}, ", ")
}
