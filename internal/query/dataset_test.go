package query

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/types"
)

type fakeStore struct {
	templates map[string]string
	total     int64
	rows      []row
	failData  error

	mu      sync.Mutex
	queries []Query
}

func (f *fakeStore) Raw(name string) (string, error) {
	tpl, ok := f.templates[name]
	if !ok {
		return "", fmt.Errorf("query %q not found", name)
	}
	return tpl, nil
}

func (f *fakeStore) record(q string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, Query{SQL: q, Args: args})
}

func (f *fakeStore) GetContext(_ context.Context, dest any, q string, args ...any) error {
	f.record(q, args)
	*(dest.(*int64)) = f.total
	return nil
}

func (f *fakeStore) SelectContext(_ context.Context, dest any, q string, args ...any) error {
	f.record(q, args)
	if f.failData != nil {
		return f.failData
	}
	*(dest.(*[]row)) = f.rows
	return nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{templates: map[string]string{
		"count-rounds": "SELECT COUNT(*) FROM round r WHERE 1 = 1 /*@name*/",
		"data-rounds":  "SELECT r.round_id AS id FROM round r WHERE 1 = 1 /*@name*/ /*@sort*/ /*@page*/",
	}}
}

var roundsDataset = &Dataset{
	Name:       "rounds",
	CountQuery: "count-rounds",
	DataQuery:  "data-rounds",
	Filters: []FilterClause{
		{Param: "name", Predicate: "AND LOWER(r.name) LIKE {?} ESCAPE '!'", Transform: Contains()},
	},
	Sort: challengeSort,
}

func TestSearch(t *testing.T) {
	store := newFakeStore()
	store.total = 12
	store.rows = []row{{21}, {22}}

	values := params.Values{"name": "Open", "pageIndex": int64(3), "pageSize": int64(10)}
	got, err := Search(context.Background(), store, roundsDataset, values, Env{}, types.MaxInt, func(r row) int64 { return r.ID })
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got.Total != 12 || got.PageIndex != 3 || got.PageSize != 10 {
		t.Errorf("Search() envelope = %+v", got)
	}
	if !reflect.DeepEqual(got.Data, []int64{21, 22}) {
		t.Errorf("Data = %v", got.Data)
	}

	if len(store.queries) != 2 {
		t.Fatalf("issued %d queries, want 2", len(store.queries))
	}
	for _, q := range store.queries {
		if strings.HasPrefix(q.SQL, "SELECT COUNT") {
			if !reflect.DeepEqual(q.Args, []any{"%open%"}) {
				t.Errorf("count args = %v", q.Args)
			}
			if strings.Contains(q.SQL, "LIMIT") {
				t.Errorf("count query is paged: %q", q.SQL)
			}
			continue
		}
		if !strings.Contains(q.SQL, "ORDER BY r.start_time DESC, r.round_id ASC LIMIT ? OFFSET ?") {
			t.Errorf("data SQL = %q", q.SQL)
		}
		if !reflect.DeepEqual(q.Args, []any{"%open%", int64(10), int64(20)}) {
			t.Errorf("data args = %v", q.Args)
		}
	}
}

func TestSearch_Failures(t *testing.T) {
	t.Run("read error", func(t *testing.T) {
		store := newFakeStore()
		store.failData = errors.New("connection reset")
		_, err := Search(context.Background(), store, roundsDataset, params.Values{}, Env{}, types.MaxInt, func(r row) int64 { return r.ID })
		if err == nil || !strings.Contains(err.Error(), "search rounds") {
			t.Errorf("Search() error = %v", err)
		}
	})

	t.Run("missing template", func(t *testing.T) {
		store := newFakeStore()
		delete(store.templates, "data-rounds")
		_, err := Search(context.Background(), store, roundsDataset, params.Values{}, Env{}, types.MaxInt, func(r row) int64 { return r.ID })
		if err == nil || !strings.Contains(err.Error(), "compose rounds") {
			t.Errorf("Search() error = %v", err)
		}
	})
}
