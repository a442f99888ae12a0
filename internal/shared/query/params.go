package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"bookshelf-backend/internal/shared/apperror"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage bounds page so the row offset always fits in an int64.
	MaxPage = math.MaxInt32
)

// Filter is one column/operator/value condition. Index is the position the
// client used in filter[i][...] and keys validation errors.
type Filter struct {
	Index    int
	Column   string
	Operator string
	Value    string
}

type Sort struct {
	Column string
	Order  string // asc or desc
}

// Params is everything a list request can ask for.
type Params struct {
	Search  string
	Filters []Filter
	Sort    *Sort
	Page    int
	PerPage int
}

// offset of the first row on the requested page.
func (p Params) offset() int64 {
	return int64(p.Page-1) * int64(p.PerPage)
}

// normalized fills zero values the way ParseParams would.
func (p Params) normalized() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

var filterKey = regexp.MustCompile(`^filter\[(\d+)\]\[(column|operator|value)\]$`)

// ParseParams reads first, page, search, sort[0][column|order] and
// filter[i][column|operator|value] from a query string.
func ParseParams(values url.Values) (Params, error) {
	fields := map[string][]string{}
	p := Params{Search: strings.TrimSpace(values.Get("search"))}

	p.PerPage = positiveInt(values, "first", DefaultPerPage, fields)
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	p.Page = positiveInt(values, "page", 1, fields)
	if p.Page > MaxPage {
		p.Page = MaxPage
	}

	column := strings.TrimSpace(values.Get("sort[0][column]"))
	order := strings.ToLower(strings.TrimSpace(values.Get("sort[0][order]")))
	switch {
	case column != "":
		if order == "" {
			order = "asc"
		}
		if order != "asc" && order != "desc" {
			fields["sort.0.order"] = append(fields["sort.0.order"], "The selected sort order is invalid.")
		}
		p.Sort = &Sort{Column: column, Order: order}
	case order != "":
		fields["sort.0.column"] = append(fields["sort.0.column"], "The sort column field is required.")
	}

	byIndex := map[int]*Filter{}
	for key, vals := range values {
		m := filterKey.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		f, ok := byIndex[idx]
		if !ok {
			f = &Filter{Index: idx}
			byIndex[idx] = f
		}
		switch m[2] {
		case "column":
			f.Column = strings.TrimSpace(vals[0])
		case "operator":
			f.Operator = strings.ToLower(strings.TrimSpace(vals[0]))
		case "value":
			f.Value = vals[0]
		}
	}

	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	for _, idx := range indexes {
		f := byIndex[idx]
		if f.Column == "" {
			key := fmt.Sprintf("filter.%d.column", idx)
			fields[key] = append(fields[key], "The filter column field is required.")
		}
		if f.Operator == "" {
			key := fmt.Sprintf("filter.%d.operator", idx)
			fields[key] = append(fields[key], "The filter operator field is required.")
		}
		if _, ok := values[fmt.Sprintf("filter[%d][value]", idx)]; !ok {
			key := fmt.Sprintf("filter.%d.value", idx)
			fields[key] = append(fields[key], "The filter value field is required.")
		}
		p.Filters = append(p.Filters, *f)
	}

	if len(fields) > 0 {
		return Params{}, apperror.ValidationFields(fields)
	}
	return p, nil
}

func positiveInt(values url.Values, key string, def int, fields map[string][]string) int {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fields[key] = append(fields[key], fmt.Sprintf("The %s must be an integer.", key))
		return def
	}
	if n < 1 {
		fields[key] = append(fields[key], fmt.Sprintf("The %s must be at least 1.", key))
		return def
	}
	return n
}

// OptionalID reads a positive integer scope such as ?user_id=3.
// A missing key gives nil.
func OptionalID(values url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return nil, apperror.Validation(key, fmt.Sprintf("The %s must be a positive integer.", strings.ReplaceAll(key, "_", " ")))
	}
	return &n, nil
}
