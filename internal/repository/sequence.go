package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/backoffice/internal/sequence"
)

type SequenceRepository struct{}

func NewSequenceRepository() *SequenceRepository {
	return &SequenceRepository{}
}

// Allocate reserves the current value of the named counter and advances it.
// The row lock taken by the upsert serialises concurrent allocations until
// the surrounding transaction ends.
func (r *SequenceRepository) Allocate(ctx context.Context, tx *sql.Tx, name, defaultPrefix string, defaultPadding int) (*sequence.Allocation, error) {
	var a sequence.Allocation
	err := tx.QueryRowContext(ctx,
		`INSERT INTO sequences (name, prefix, next_value, padding)
		VALUES ($1, $2, 2, $3)
		ON CONFLICT (name) DO UPDATE SET next_value = sequences.next_value + 1
		RETURNING prefix, next_value - 1, padding`,
		name, defaultPrefix, defaultPadding,
	).Scan(&a.Prefix, &a.Value, &a.Padding)
	if err != nil {
		return nil, fmt.Errorf("Allocate: %w", err)
	}
	return &a, nil
}
