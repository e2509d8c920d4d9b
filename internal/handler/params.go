package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const dateLayout = "2006-01-02"

// Paging holds the page size defaults applied to list endpoints.
type Paging struct {
	Default int
	Max     int
}

// parse reads page_size, offset, sort and order from the query string.
// Out-of-range values are clamped rather than rejected.
func (p Paging) parse(r *http.Request) domain.Page {
	q := r.URL.Query()
	page := domain.Page{Limit: p.Default, Sort: q.Get("sort")}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page.Limit = n
		}
	}
	if page.Limit > p.Max {
		page.Limit = p.Max
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page.Offset = n
		}
	}
	page.Desc = strings.EqualFold(q.Get("order"), "desc")
	return page
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// queryParams collects typed query values and the field errors found while
// parsing them.
type queryParams struct {
	r    *http.Request
	errs []FieldError
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{r: r}
}

func (q *queryParams) uuid(name string) *uuid.UUID {
	v := q.r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		q.errs = append(q.errs, FieldError{Field: name, Message: "must be a UUID"})
		return nil
	}
	return &id
}

func (q *queryParams) bool(name string) *bool {
	v := q.r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.errs = append(q.errs, FieldError{Field: name, Message: "must be true or false"})
		return nil
	}
	return &b
}

func (q *queryParams) date(name string) *time.Time {
	v := q.r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		q.errs = append(q.errs, FieldError{Field: name, Message: "must be YYYY-MM-DD"})
		return nil
	}
	return &t
}

func (q *queryParams) string(name string) string {
	return strings.TrimSpace(q.r.URL.Query().Get(name))
}

// Date is a calendar date carried as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

func timePtr(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// nonNegative appends a field error when v is set and below zero.
func nonNegative(errs []FieldError, field string, v *decimal.Decimal) []FieldError {
	if v != nil && v.IsNegative() {
		return append(errs, FieldError{Field: field, Message: "must not be negative"})
	}
	return errs
}
