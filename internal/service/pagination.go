package service

import "github.com/sakif/foodgram/internal/repository"

// MaxPageSize caps the ?limit= a client may request.
const MaxPageSize = 100

// PageRequest is a 1-based page number plus a page size. Zero values fall
// back to page 1 and the configured default size.
type PageRequest struct {
	Page  int
	Limit int
}

// Page is one page of results together with the total across all pages.
type Page[T any] struct {
	Items []T
	Count int
	Page  int
	Limit int
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Page*p.Limit < p.Count
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}

func (r PageRequest) normalize(defaultLimit int) PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > MaxPageSize {
		r.Limit = MaxPageSize
	}
	return r
}

func (r PageRequest) listOptions() repository.ListOptions {
	return repository.ListOptions{Limit: r.Limit, Offset: (r.Page - 1) * r.Limit}
}

func newPage[T any](items []T, count int, r PageRequest) Page[T] {
	return Page[T]{Items: items, Count: count, Page: r.Page, Limit: r.Limit}
}
