// Package sequence hands out human-readable document numbers such as
// INV-000042. Numbers are allocated inside the caller's transaction so a
// rolled-back document does not consume a number.
package sequence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const DefaultPadding = 6

// Allocation is the raw counter value reserved for one document.
type Allocation struct {
	Prefix  string
	Value   int64
	Padding int
}

type store interface {
	Allocate(ctx context.Context, tx *sql.Tx, name, defaultPrefix string, defaultPadding int) (*Allocation, error)
}

type Generator struct {
	store store
}

func NewGenerator(store store) *Generator {
	return &Generator{store: store}
}

// Next reserves the next number of the named sequence. The sequence is
// created with defaultPrefix on first use.
func (g *Generator) Next(ctx context.Context, tx *sql.Tx, name, defaultPrefix string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("Next: empty sequence name")
	}
	a, err := g.store.Allocate(ctx, tx, name, defaultPrefix, DefaultPadding)
	if err != nil {
		return "", fmt.Errorf("Next: %s: %w", name, err)
	}
	return Format(a.Prefix, a.Value, a.Padding), nil
}

// Format renders prefix and value as PREFIX-000042. Values wider than the
// padding are printed in full; an empty prefix yields the bare number.
func Format(prefix string, value int64, padding int) string {
	if padding < 1 {
		padding = 1
	}
	num := fmt.Sprintf("%0*d", padding, value)
	prefix = strings.TrimSuffix(prefix, "-")
	if prefix == "" {
		return num
	}
	return prefix + "-" + num
}
