package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bookshelf-backend/internal/shared/apperror"
)

var operators = map[string]func(exp.IdentifierExpression, any) exp.BooleanExpression{
	"=":    func(c exp.IdentifierExpression, v any) exp.BooleanExpression { return c.Eq(v) },
	"!=":   func(c exp.IdentifierExpression, v any) exp.BooleanExpression { return c.Neq(v) },
	"<":    func(c exp.IdentifierExpression, v any) exp.BooleanExpression { return c.Lt(v) },
	"<=":   func(c exp.IdentifierExpression, v any) exp.BooleanExpression { return c.Lte(v) },
	">":    func(c exp.IdentifierExpression, v any) exp.BooleanExpression { return c.Gt(v) },
	">=":   func(c exp.IdentifierExpression, v any) exp.BooleanExpression { return c.Gte(v) },
	"like": func(c exp.IdentifierExpression, v any) exp.BooleanExpression { return c.Like(v) },
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

// Statement holds the two queries behind one list request.
type Statement struct {
	Count *goqu.SelectDataset
	Page  *goqu.SelectDataset
}

// Build validates p against the source and prepares the count and page
// queries. Validation problems come back as a single 422 error.
func (s *Source) Build(p Params) (*Statement, error) {
	p = p.normalized()
	fields := map[string][]string{}

	where := append([]exp.Expression{}, s.Scope...)

	if cond := s.searchCondition(p.Search); cond != nil {
		where = append(where, cond)
	}

	for _, f := range p.Filters {
		cond, key, msg := s.filterCondition(f)
		if key != "" {
			fields[key] = append(fields[key], msg)
			continue
		}
		where = append(where, cond)
	}

	order, ok := s.ordering(p.Sort)
	if !ok {
		fields["sort.0.column"] = append(fields["sort.0.column"], "The selected sort column is invalid.")
	}

	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}

	base := dialect.From(s.Table).Prepared(true).Where(where...)

	page := base.Select(s.selection()...).
		Order(order...).
		Limit(uint(p.PerPage)).
		Offset(uint(p.offset()))

	return &Statement{
		Count: base.Select(goqu.COUNT(goqu.Star())),
		Page:  page,
	}, nil
}

// List runs the count query and, when the page is in range, the page query.
// Rows are scanned into T by column name.
func List[T any](ctx context.Context, db pgxscan.Querier, src *Source, p Params) ([]T, PageInfo, error) {
	p = p.normalized()

	stmt, err := src.Build(p)
	if err != nil {
		return nil, PageInfo{}, err
	}

	countSQL, countArgs, err := stmt.Count.ToSQL()
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, db, &total, countSQL, countArgs...); err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to count %s: %w", src.Table, err)
	}

	items := []T{}
	if p.offset() < total {
		pageSQL, pageArgs, err := stmt.Page.ToSQL()
		if err != nil {
			return nil, PageInfo{}, fmt.Errorf("failed to build page query: %w", err)
		}
		if err := pgxscan.Select(ctx, db, &items, pageSQL, pageArgs...); err != nil {
			return nil, PageInfo{}, fmt.Errorf("failed to list %s: %w", src.Table, err)
		}
	}

	return items, NewPageInfo(int(total), p.Page, p.PerPage, len(items)), nil
}

// ====================================
// CONDITIONS
// ====================================

// EscapeLike escapes LIKE wildcards so text matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Source) searchCondition(text string) exp.Expression {
	if text == "" || len(s.SearchFields) == 0 {
		return nil
	}
	pattern := "%" + EscapeLike(text) + "%"

	ors := make([]exp.Expression, 0, len(s.SearchFields))
	for _, field := range s.SearchFields {
		if rel, col, ok := s.related(field); ok {
			sub := s.pivotJoin(rel).
				Select(goqu.L("1")).
				Where(goqu.T(rel.Table).Col(col).ILike(pattern))
			ors = append(ors, goqu.L("EXISTS ?", sub))
			continue
		}
		ors = append(ors, s.Col(field).ILike(pattern))
	}
	return goqu.Or(ors...)
}

// filterCondition returns either a condition or a validation key/message.
func (s *Source) filterCondition(f Filter) (exp.Expression, string, string) {
	prefix := fmt.Sprintf("filter.%d.", f.Index)

	op, ok := operators[strings.ToLower(f.Operator)]
	if !ok {
		return nil, prefix + "operator", "The selected operator is invalid."
	}

	typ, ok := s.Columns[f.Column]
	if !ok {
		return nil, prefix + "column", "The selected column is invalid."
	}

	if strings.ToLower(f.Operator) == "like" && typ != Text {
		return nil, prefix + "operator", fmt.Sprintf("The like operator cannot be used on %s columns.", typ)
	}

	value, err := parseValue(typ, f.Value)
	if err != nil {
		return nil, prefix + "value", fmt.Sprintf("The value must be a valid %s.", typ)
	}

	return op(s.Col(f.Column), value), "", ""
}

func parseValue(typ ColumnType, raw string) (any, error) {
	switch typ {
	case Integer:
		return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	case Boolean:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case Date:
		return time.Parse(time.DateOnly, strings.TrimSpace(raw))
	case Timestamp:
		var lastErr error
		for _, layout := range timestampLayouts {
			t, err := time.Parse(layout, strings.TrimSpace(raw))
			if err == nil {
				return t, nil
			}
			lastErr = err
		}
		return nil, lastErr
	default:
		return raw, nil
	}
}

// ordering resolves the requested sort, falling back to the source default,
// and always ends with the base id so pages are stable.
func (s *Source) ordering(sort *Sort) ([]exp.OrderedExpression, bool) {
	if sort == nil {
		sort = s.DefaultSort
	}
	if sort == nil {
		sort = &Sort{Column: "created_at", Order: "desc"}
	}
	desc := strings.EqualFold(sort.Order, "desc")

	var primary exp.OrderedExpression
	// Aliases win over a local column of the same name.
	_, aliased := s.Aliases[sort.Column]
	switch {
	case !aliased && s.isLocal(sort.Column):
		primary = direction(s.Col(sort.Column), desc)
	default:
		rel, col, ok := s.related(sort.Column)
		if !ok {
			return nil, false
		}
		sub := s.pivotJoin(rel).Select(goqu.MIN(goqu.T(rel.Table).Col(col)))
		primary = direction(goqu.L("?", sub), desc).NullsLast()
	}

	if sort.Column == "id" {
		return []exp.OrderedExpression{primary}, true
	}
	return []exp.OrderedExpression{primary, direction(s.Col("id"), desc)}, true
}

func (s *Source) isLocal(col string) bool {
	_, ok := s.Columns[col]
	return ok
}

func direction(e exp.Orderable, desc bool) exp.OrderedExpression {
	if desc {
		return e.Desc()
	}
	return e.Asc()
}
