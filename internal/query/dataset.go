package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/solatis/roundsapi/internal/params"
)

// Templates resolves named SQL templates.
type Templates interface {
	Raw(name string) (string, error)
}

// Store executes composed statements. Implementations rebind `?`
// placeholders for their driver.
type Store interface {
	Templates
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Dataset is one filterable, sortable, paginated listing: a count template,
// a data template, its filter clauses and its sort allow-list. Datasets are
// defined once at startup and never mutated.
type Dataset struct {
	Name       string
	CountQuery string
	DataQuery  string
	Filters    []FilterClause
	Sort       *SortSpec
}

// Compose builds the count and data statements for one request.
func (d *Dataset) Compose(t Templates, values params.Values, page PageRequest, order Order, env Env) (Query, Query, error) {
	countTpl, err := t.Raw(d.CountQuery)
	if err != nil {
		return Query{}, Query{}, err
	}
	dataTpl, err := t.Raw(d.DataQuery)
	if err != nil {
		return Query{}, Query{}, err
	}

	cb := NewBuilder(countTpl)
	if err := ApplyFilters(cb, d.Filters, values, env); err != nil {
		return Query{}, Query{}, err
	}

	db := NewBuilder(dataTpl)
	if err := ApplyFilters(db, d.Filters, values, env); err != nil {
		return Query{}, Query{}, err
	}
	db.Set("sort", order.Clause(d.Sort.tieBreak))
	db.Set("page", "LIMIT ? OFFSET ?", page.Limit(), page.FirstRow())

	return cb.Build(), db.Build(), nil
}

// Search runs a Dataset for resolved values: it fixes paging and sorting,
// composes both statements, issues the count and data reads concurrently,
// and shapes the envelope.
func Search[R any, T any](ctx context.Context, store Store, d *Dataset, values params.Values, env Env, maxPageSize int64, mapRow func(R) T) (Envelope[T], error) {
	page, order := ResolvePage(values, d.Sort, maxPageSize)

	countQ, dataQ, err := d.Compose(store, values, page, order, env)
	if err != nil {
		return Envelope[T]{}, fmt.Errorf("compose %s: %w", d.Name, err)
	}

	var total int64
	var rows []R
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return store.GetContext(gctx, &total, countQ.SQL, countQ.Args...)
	})
	g.Go(func() error {
		return store.SelectContext(gctx, &rows, dataQ.SQL, dataQ.Args...)
	})
	if err := g.Wait(); err != nil {
		return Envelope[T]{}, fmt.Errorf("search %s: %w", d.Name, err)
	}

	return BuildEnvelope(page, total, rows, mapRow), nil
}
