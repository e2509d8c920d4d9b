package repository

import (
	"fmt"
	"strings"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// where accumulates AND-ed conditions. Each condition uses a single "?"
// placeholder which is rewritten to the next $n.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

// search adds an ILIKE match of term against any of the columns.
func (w *where) search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	w.args = append(w.args, "%"+escapeLike(term)+"%")
	n := len(w.args)
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", c, n)
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page renders ORDER BY / LIMIT / OFFSET. Sort keys outside sortable fall
// back to fallback.
func (w *where) page(p domain.Page, sortable map[string]string, fallback string) string {
	col, ok := sortable[p.Sort]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	w.args = append(w.args, limit, offset)
	return fmt.Sprintf(" ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d", col, dir, len(w.args)-1, len(w.args))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
