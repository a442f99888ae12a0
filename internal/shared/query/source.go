package query

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

// dialect is shared by every dataset built here. Subqueries must use it
// too, since goqu renders a nested dataset with that dataset's dialect.
var dialect = goqu.Dialect("postgres")

// Dialect exposes the postgres dialect so repositories build
// statements the same way the list queries are built.
func Dialect() goqu.DialectWrapper { return dialect }

// ColumnType decides how a filter value is parsed.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Boolean
	Date
	Timestamp
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Relation is a many-to-many link through a pivot table,
// e.g. books -> book_author -> authors.
type Relation struct {
	Table      string // related table, e.g. authors
	Pivot      string // pivot table, e.g. book_author
	LocalKey   string // pivot column pointing at the base row, e.g. book_id
	ForeignKey string // pivot column pointing at the related row, e.g. author_id
	// Columns of the related table usable in search and sort.
	Columns map[string]ColumnType
}

// Source describes one listable table.
type Source struct {
	Table string
	// Select lists the base columns returned for each row.
	Select []string
	// Columns is the filter/sort allow-list for base columns.
	Columns map[string]ColumnType
	// SearchFields are base columns ("title") or related columns ("authors.name").
	SearchFields []string
	// Relations is keyed by related table name.
	Relations map[string]Relation
	// Aliases maps a bare sort column onto a related one, e.g. name -> authors.name.
	Aliases map[string]string
	// Scope is ANDed into every query built from the source.
	Scope []exp.Expression
	// DefaultSort applies when the request has no sort. Falls back to created_at DESC.
	DefaultSort *Sort
}

// WithScope returns a copy of s restricted by the given conditions.
func (s *Source) WithScope(conds ...exp.Expression) *Source {
	c := *s
	c.Scope = append(append([]exp.Expression{}, s.Scope...), conds...)
	return &c
}

// Col qualifies a base column with the source table.
func (s *Source) Col(name string) exp.IdentifierExpression {
	return goqu.T(s.Table).Col(name)
}

func (s *Source) selection() []any {
	cols := make([]any, 0, len(s.Select))
	for _, c := range s.Select {
		cols = append(cols, s.Col(c))
	}
	return cols
}

// related resolves "table.column" (or an alias of it) to a known relation.
func (s *Source) related(name string) (Relation, string, bool) {
	if target, ok := s.Aliases[name]; ok {
		name = target
	}
	for i := 0; i < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		rel, ok := s.Relations[name[:i]]
		if !ok {
			return Relation{}, "", false
		}
		col := name[i+1:]
		if _, ok := rel.Columns[col]; !ok {
			return Relation{}, "", false
		}
		return rel, col, true
	}
	return Relation{}, "", false
}

// pivotJoin selects from the pivot joined to the related table,
// correlated to the current base row.
func (s *Source) pivotJoin(rel Relation) *goqu.SelectDataset {
	return dialect.From(rel.Pivot).
		InnerJoin(goqu.T(rel.Table), goqu.On(
			goqu.T(rel.Table).Col("id").Eq(goqu.T(rel.Pivot).Col(rel.ForeignKey)),
		)).
		Where(goqu.T(rel.Pivot).Col(rel.LocalKey).Eq(s.Col("id")))
}
