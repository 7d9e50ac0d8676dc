package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/types"
)

// AllPages is the pageIndex sentinel requesting every row as one page.
const AllPages = -1

// Paging parameter names shared by every list endpoint.
const (
	ParamPageIndex  = "pageIndex"
	ParamPageSize   = "pageSize"
	ParamSortColumn = "sortColumn"
	ParamSortOrder  = "sortOrder"
)

// Column maps a public sort name to its storage column.
type Column struct {
	Name    string
	Storage string
}

// SortSpec is an endpoint's sort allow-list. Public names match
// case-insensitively; anything else is rejected, never ignored.
type SortSpec struct {
	columns     map[string]string
	names       []string
	defaultName string
	descDefault bool
	tieBreak    string
}

// NewSortSpec builds a sort allow-list. When descDefault is set, omitting
// sortOrder while the sort column is the default yields descending order.
// tieBreak, if non-empty, is appended ascending to keep paging stable.
func NewSortSpec(defaultName string, descDefault bool, tieBreak string, columns ...Column) *SortSpec {
	s := &SortSpec{
		columns:     make(map[string]string, len(columns)),
		defaultName: strings.ToLower(defaultName),
		descDefault: descDefault,
		tieBreak:    tieBreak,
	}
	for _, c := range columns {
		key := strings.ToLower(c.Name)
		s.columns[key] = c.Storage
		s.names = append(s.names, key)
	}
	if _, ok := s.columns[s.defaultName]; !ok {
		panic(fmt.Sprintf("query: default sort column %q not in allow-list", defaultName))
	}
	return s
}

// Order is a resolved ORDER BY.
type Order struct {
	Column    string
	Direction string // ASC or DESC
}

// Clause renders the ORDER BY fragment. Column names come from the
// allow-list only.
func (o Order) Clause(tieBreak string) string {
	clause := "ORDER BY " + o.Column + " " + o.Direction
	if tieBreak != "" && tieBreak != o.Column {
		clause += ", " + tieBreak + " ASC"
	}
	return clause
}

// PageRequest is a normalized page window.
type PageRequest struct {
	Index int64
	Size  int64
	All   bool
	max   int64
}

// FirstRow is the zero-based offset of the page's first row.
func (p PageRequest) FirstRow() int64 {
	if p.All {
		return 0
	}
	return (p.Index - 1) * p.Size
}

// Limit is the number of rows fetched for the page.
func (p PageRequest) Limit() int64 {
	if p.All {
		return p.max
	}
	return p.Size
}

// PageFields returns the paging and sorting FieldSpecs for an endpoint
// sorted by s.
func PageFields(s *SortSpec, defaultPageSize int64) []params.FieldSpec {
	return []params.FieldSpec{
		{
			Name:       ParamPageIndex,
			Type:       params.TypeInteger,
			Default:    int64(1),
			Validators: []params.Validator{pageIndex()},
			Relations:  []params.Relation{pageWindow(ParamPageSize)},
		},
		{
			Name:       ParamPageSize,
			Type:       params.TypePositiveInteger,
			Default:    defaultPageSize,
			Validators: []params.Validator{params.Max(types.MaxInt)},
		},
		{
			Name:       ParamSortColumn,
			Type:       params.TypeEnumString,
			Validators: []params.Validator{params.Lower(), params.OneOf(s.names...)},
		},
		{
			Name:       ParamSortOrder,
			Type:       params.TypeEnumString,
			Validators: []params.Validator{params.Lower(), params.OneOf("asc", "desc")},
		},
	}
}

// pageIndex accepts the AllPages sentinel or a positive index.
func pageIndex() params.Validator {
	return func(field string, value any) (any, error) {
		n, ok := value.(int64)
		if !ok || (n != AllPages && n < 1) {
			return nil, types.InvalidArgument(field, "%s should be positive or %d", field, AllPages)
		}
		return n, nil
	}
}

// pageWindow rejects an index whose first row offset does not fit in an
// int64 for the resolved page size.
func pageWindow(with string) params.Relation {
	return params.Relation{With: with, Check: func(field string, value any, with string, other any) error {
		index, okA := value.(int64)
		size, okB := other.(int64)
		if !okA || !okB || index == AllPages || size < 1 {
			return nil
		}
		if limit := math.MaxInt64 / size; index-1 > limit {
			return types.InvalidArgument(field, "%s should not exceed %d for %s %d", field, limit+1, with, size)
		}
		return nil
	}}
}

// ResolvePage normalizes the resolved paging and sorting values. maxPageSize
// replaces the page size when every row is requested.
func ResolvePage(values params.Values, s *SortSpec, maxPageSize int64) (PageRequest, Order) {
	page := PageRequest{
		Index: values.IntOr(ParamPageIndex, 1),
		Size:  values.IntOr(ParamPageSize, 1),
		max:   maxPageSize,
	}
	if page.Index == AllPages {
		page.All = true
		page.Index = 1
		page.Size = maxPageSize
	}

	name := values.String(ParamSortColumn)
	if name == "" {
		name = s.defaultName
	}
	direction := "ASC"
	switch values.String(ParamSortOrder) {
	case "desc":
		direction = "DESC"
	case "":
		if s.descDefault && name == s.defaultName {
			direction = "DESC"
		}
	}

	return page, Order{Column: s.columns[name], Direction: direction}
}
