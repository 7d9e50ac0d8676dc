// Package rounds implements the SRM round data endpoints: challenge,
// schedule, practice-problem and problem-round search, round detail, and the
// admin contest, room, language and event writes.
//
// Every endpoint is a row of data: its FieldSpecs, filter clauses, sort
// allow-list and named queries are declared in endpoints.go and compiled
// once by New. Request handling is the same for all of them:
//
//  1. Ping the store; a failed ping is reported as unavailable before any
//     parameter is looked at
//  2. Resolve the raw parameters against the endpoint's compiled Spec
//  3. Reads: compose and run the dataset's count and data queries
//     Writes: execute the endpoint's write plan
package rounds

import (
	"context"
	"time"

	"github.com/solatis/roundsapi/internal/core/db"
	"github.com/solatis/roundsapi/internal/params"
	"github.com/solatis/roundsapi/internal/query"
	"github.com/solatis/roundsapi/internal/types"
)

// Options configures a Service.
type Options struct {
	// Location is the zone of the store's date-time literals.
	Location *time.Location

	// DefaultPageSize applies when a request omits pageSize.
	DefaultPageSize int64

	// MaxPageSize replaces the page size for the all-rows page index.
	MaxPageSize int64

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service serves the round data endpoints from one store.
type Service struct {
	store   *db.Queries
	opts    Options
	catalog *catalog
}

// New compiles the endpoint catalog and returns a Service.
func New(store *db.Queries, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 50
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = types.MaxInt
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{store: store, opts: opts}
	s.catalog = newCatalog(s)
	return s
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// env is the immutable composition context of one request.
func (s *Service) env() query.Env {
	return query.Env{Location: s.opts.Location, Now: s.opts.Now()}
}

// resolve pings the store and then resolves in against spec.
func (s *Service) resolve(ctx context.Context, spec *params.Spec, in params.Input) (params.Values, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, err
	}
	return spec.Resolve(ctx, in)
}

// storeTime renders a resolved date as a store literal, or nil when absent.
func (s *Service) storeTime(values params.Values, name string) any {
	t, ok := values.Time(name)
	if !ok {
		return nil
	}
	return t.In(s.opts.Location).Format(types.StoreDateFormat)
}

// wireTime renders a store timestamp in the wire format, or nil when null.
func (s *Service) wireTime(ts db.Timestamp) *string {
	t, ok := ts.In(s.opts.Location)
	if !ok {
		return nil
	}
	out := t.Format(types.WireDateFormat)
	return &out
}

// nullable returns nil for an absent value so it is written as NULL.
func nullable(values params.Values, name string) any {
	return values[name]
}
