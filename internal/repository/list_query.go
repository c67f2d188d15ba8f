package repository

import "strings"

const maxPerPage = 100

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Normalize clamps paging values into range
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}
}

// Offset returns the number of rows to skip
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// Descending reports whether the caller asked for descending order
func (q *ListQuery) Descending() bool {
	return strings.EqualFold(q.SortDir, "desc")
}

// OrderClause maps SortBy through the allowed columns, falling back to def
func (q *ListQuery) OrderClause(allowed map[string]string, def string) string {
	column, ok := allowed[q.SortBy]
	if !ok {
		return def
	}
	if q.Descending() {
		return column + " DESC"
	}
	return column + " ASC"
}
