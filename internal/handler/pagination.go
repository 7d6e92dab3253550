package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/sakif/foodgram/internal/service"
)

// paginated is the list envelope: the total count, absolute links to the
// neighbouring pages (null at either end) and this page's results.
type paginated[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest reads ?page= and ?limit=.
func pageRequest(r *http.Request) (service.PageRequest, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return service.PageRequest{}, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return service.PageRequest{}, err
	}
	return service.PageRequest{Page: page, Limit: limit}, nil
}

func newPaginated[T any](r *http.Request, p service.Page[T]) paginated[T] {
	out := paginated[T]{Count: p.Count, Results: p.Items}
	if out.Results == nil {
		out.Results = []T{}
	}
	if p.HasNext() {
		link := pageLink(r, p.Page+1)
		out.Next = &link
	}
	if p.HasPrevious() {
		link := pageLink(r, p.Page-1)
		out.Previous = &link
	}
	return out
}

// pageLink rebuilds the request URL with page replaced. Every other query
// parameter (filters, limit) is kept.
func pageLink(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
