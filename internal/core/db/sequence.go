package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ContestSequence names the identifier source for new contests.
const ContestSequence = "contest_seq"

// NextID draws the next value of a monotonic identifier source. The
// increment and the read happen in one transaction, so concurrent callers
// never observe the same value.
func (q *Queries) NextID(ctx context.Context, sequence string) (int64, error) {
	var id int64
	err := q.InTx(ctx, func(tx *Tx) error {
		res, err := tx.Exec(ctx, "increment-sequence", sequence)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("sequence %s does not exist", sequence)
		}
		if err := tx.Get(ctx, "current-sequence", &id, sequence); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("sequence %s does not exist", sequence)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("next id from %s: %w", sequence, err)
	}
	return id, nil
}
