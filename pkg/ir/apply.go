package ir

import "fmt"

// ---------- Apply Contract ----------
//
// Each method returns a new Query; the receiver is never modified and an
// error leaves the accumulated query unaffected. Where/having/group_by/
// order_by/join/update/combination/comment append in call order; select is
// set at most once; limit/offset/lock/distinct replace; windows reject
// duplicate names; CTEs replace in place, keeping their original position.

// SetFrom installs the first data source (binding 0) and registers its
// alias, if any.
func (q *Query) SetFrom(f FromExpr) (*Query, error) {
	if q.From != nil {
		return nil, fmt.Errorf("query already has a from clause (%s)", describeSource(q.From.Source))
	}
	nq := q.clone()
	nq.From = &f
	if f.As != "" {
		var err error
		nq, err = nq.AddAlias(f.As, 0)
		if err != nil {
			return nil, err
		}
	}
	return nq, nil
}

// AppendJoin adds a join, assigns it the next binding index, and registers
// its alias, if any. Returns the new query and the join's binding index.
func (q *Query) AppendJoin(j JoinExpr) (*Query, int, error) {
	if !j.Qual.Valid() {
		return nil, 0, fmt.Errorf("invalid join qualifier %d", int(j.Qual))
	}
	nq := q.clone()
	nq.Joins = append(clip(q.Joins), j)
	ix := nq.BindingCount() - 1
	if j.As != "" {
		var err error
		nq, err = nq.AddAlias(j.As, ix)
		if err != nil {
			return nil, 0, err
		}
	}
	return nq, ix, nil
}

// AddAlias registers a named alias for a binding index.
func (q *Query) AddAlias(name string, ix int) (*Query, error) {
	if _, ok := q.Aliases[name]; ok {
		return nil, &DuplicateAliasError{Name: name}
	}
	nq := q.clone()
	nq.Aliases = make(map[string]int, len(q.Aliases)+1)
	for k, v := range q.Aliases {
		nq.Aliases[k] = v
	}
	nq.Aliases[name] = ix
	return nq, nil
}

// AppendWhere appends a boolean clause; its CombineOp states how it relates
// to the clauses before it.
func (q *Query) AppendWhere(b BooleanExpr) *Query {
	nq := q.clone()
	nq.Wheres = append(clip(q.Wheres), b)
	return nq
}

// AppendHaving appends a having clause.
func (q *Query) AppendHaving(b BooleanExpr) *Query {
	nq := q.clone()
	nq.Havings = append(clip(q.Havings), b)
	return nq
}

// AppendGroupBy appends a group_by clause.
func (q *Query) AppendGroupBy(g QueryExpr) *Query {
	nq := q.clone()
	nq.GroupBys = append(clip(q.GroupBys), g)
	return nq
}

// AppendOrderBy appends an order_by clause.
func (q *Query) AppendOrderBy(o OrderByExpr) *Query {
	nq := q.clone()
	nq.OrderBys = append(clip(q.OrderBys), o)
	return nq
}

// ReverseOrderBys returns the query with every order_by direction reversed.
// A query with no order_by gets a descending order on the primary key
// supplied by the caller, or none if pk is empty.
func (q *Query) ReverseOrderBys(pk string) *Query {
	nq := q.clone()
	if len(q.OrderBys) == 0 {
		if pk != "" {
			nq.OrderBys = []OrderByExpr{{
				Items: []OrderByItem{{Dir: Desc, Expr: &BindingRef{Binding: 0, Field: pk}}},
			}}
		}
		return nq
	}
	nq.OrderBys = make([]OrderByExpr, len(q.OrderBys))
	for i, ob := range q.OrderBys {
		items := make([]OrderByItem, len(ob.Items))
		for j, it := range ob.Items {
			items[j] = OrderByItem{Dir: it.Dir.Reverse(), Expr: it.Expr}
		}
		nq.OrderBys[i] = OrderByExpr{Items: items, Params: ob.Params, Origin: ob.Origin}
	}
	return nq
}

// SetDistinct replaces the distinct clause.
func (q *Query) SetDistinct(d DistinctExpr) *Query {
	nq := q.clone()
	nq.Distinct = &d
	return nq
}

// SetSelect installs the projection. A query may carry at most one.
func (q *Query) SetSelect(s SelectExpr) (*Query, error) {
	if q.Select != nil {
		return nil, ErrOnlyOneSelect
	}
	nq := q.clone()
	nq.Select = &s
	return nq, nil
}

// ReplaceSelect swaps the projection wholesale. Used by select-merge, which
// is always legal.
func (q *Query) ReplaceSelect(s SelectExpr) *Query {
	nq := q.clone()
	nq.Select = &s
	return nq
}

// SetLimit replaces the limit clause.
func (q *Query) SetLimit(l LimitExpr) *Query {
	nq := q.clone()
	nq.Limit = &l
	return nq
}

// SetOffset replaces the offset clause.
func (q *Query) SetOffset(l LimitExpr) *Query {
	nq := q.clone()
	nq.Offset = &l
	return nq
}

// SetLock replaces the lock clause.
func (q *Query) SetLock(l LockExpr) *Query {
	nq := q.clone()
	nq.Lock = &l
	return nq
}

// AppendPreloads appends plain preload entries in call order.
func (q *Query) AppendPreloads(entries ...PreloadEntry) *Query {
	nq := q.clone()
	nq.Preloads = append(clip(q.Preloads), entries...)
	return nq
}

// WithAssocs replaces the resolved join-preload overlay.
func (q *Query) WithAssocs(f AssocForest) *Query {
	nq := q.clone()
	nq.Assocs = f
	return nq
}

// AppendUpdate appends an update clause.
func (q *Query) AppendUpdate(u UpdateExpr) *Query {
	nq := q.clone()
	nq.Updates = append(clip(q.Updates), u)
	return nq
}

// AppendCombination appends a set operation; the adapter executes
// combinations in this order.
func (q *Query) AppendCombination(c Combination) *Query {
	nq := q.clone()
	nq.Combinations = append(clip(q.Combinations), c)
	return nq
}

// PutCTE adds or replaces a named CTE. Replacement keeps the name's
// original position so recursive references stay valid.
func (q *Query) PutCTE(c *CTE) *Query {
	nq := q.clone()
	with := WithExpr{}
	if q.With != nil {
		with = *q.With
	}
	with.CTEs = with.CTEs.Put(c.Name, c)
	nq.With = &with
	return nq
}

// SetRecursive flags the CTE set as recursive.
func (q *Query) SetRecursive(recursive bool) *Query {
	nq := q.clone()
	with := WithExpr{}
	if q.With != nil {
		with = *q.With
	}
	with.Recursive = recursive
	nq.With = &with
	return nq
}

// PutWindow adds a named window definition; duplicate names error.
func (q *Query) PutWindow(name string, w *WindowExpr) (*Query, error) {
	if q.Windows.Has(name) {
		return nil, &DuplicateWindowError{Name: name}
	}
	nq := q.clone()
	nq.Windows = q.Windows.Put(name, w)
	return nq, nil
}

// AppendComment appends a comment attached to the emitted query.
func (q *Query) AppendComment(c string) *Query {
	nq := q.clone()
	nq.Comments = append(clip(q.Comments), c)
	return nq
}

func describeSource(s JoinSource) string {
	switch src := s.(type) {
	case *TableSource:
		return src.Table
	case *SchemaSource:
		return src.Source
	case *SubquerySource:
		return "subquery"
	case *FragmentSource:
		return "fragment"
	case *AssocSource:
		return fmt.Sprintf("assoc %d.%s", src.Binding, src.Field)
	}
	return "unknown"
}
