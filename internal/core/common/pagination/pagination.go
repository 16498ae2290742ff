package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSize = 100
	MaxSize     = 1000
)

// Request is the paging window shared by every list endpoint.
type Request struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
	Search  string
}

// FromQuery reads page, size, sortBy, sortDir and search. Invalid numbers fall back to defaults.
func FromQuery(q url.Values, defaultSortBy, defaultSortDir string) Request {
	req := Request{
		Page:    0,
		Size:    DefaultSize,
		SortBy:  defaultSortBy,
		SortDir: defaultSortDir,
		Search:  strings.TrimSpace(q.Get("search")),
	}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p >= 0 {
		req.Page = p
	}
	if s, err := strconv.Atoi(q.Get("size")); err == nil && s > 0 {
		req.Size = s
	}
	if v := strings.TrimSpace(q.Get("sortBy")); v != "" {
		req.SortBy = v
	}
	if v := strings.TrimSpace(q.Get("sortDir")); v != "" {
		req.SortDir = v
	}

	return req.Normalize()
}

func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultSize
	}
	if r.Size > MaxSize {
		r.Size = MaxSize
	}
	if strings.EqualFold(r.SortDir, "desc") {
		r.SortDir = "desc"
	} else {
		r.SortDir = "asc"
	}
	return r
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// OrderClause resolves SortBy against an allow-list of columns and falls back to fallback.
func (r Request) OrderClause(columns map[string]string, fallback string) string {
	column, ok := columns[r.SortBy]
	if !ok {
		column = fallback
	}
	return column + " " + strings.ToUpper(r.SortDir)
}

// LikePattern returns the lower-cased substring pattern for Search.
func (r Request) LikePattern() string {
	return "%" + strings.ToLower(r.Search) + "%"
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
}

func NewPage[T any](content []T, total int64, req Request) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		TotalPages:    totalPages,
		TotalElements: total,
		Page:          req.Page,
		Size:          req.Size,
	}
}
