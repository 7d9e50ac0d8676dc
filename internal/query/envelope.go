package query

// Envelope is the uniform paged response of every list endpoint.
type Envelope[T any] struct {
	Total     int64 `json:"total"`
	PageIndex int64 `json:"pageIndex"`
	PageSize  int64 `json:"pageSize"`
	Data      []T   `json:"data"`
}

// BuildEnvelope shapes a count and a page of rows into an Envelope.
//
// Zero rows short-circuit to total 0 whatever the count query said. For the
// all-rows sentinel the reported page size is the total (0 when empty), never
// the internal maximum. Count and data are read separately, so for non-empty
// pages total may trail concurrent writes.
func BuildEnvelope[R any, T any](page PageRequest, total int64, rows []R, mapRow func(R) T) Envelope[T] {
	env := Envelope[T]{
		PageIndex: page.Index,
		PageSize:  page.Size,
		Data:      make([]T, 0, len(rows)),
	}

	if len(rows) == 0 {
		if page.All {
			env.PageSize = 0
		}
		return env
	}

	env.Total = total
	if page.All {
		env.PageSize = total
	}
	for _, r := range rows {
		env.Data = append(env.Data, mapRow(r))
	}
	return env
}
