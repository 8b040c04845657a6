// Package content wraps the post, comment and asset endpoints of the blog API.
package content

import (
	"net/url"
	"strconv"
)

// DefaultPageSize is used when a caller passes a size of zero.
const DefaultPageSize = 10

// Page is one page of a paginated listing, as the backend serializes it.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return !p.Last && p.Number+1 < p.TotalPages
}

// pageQuery returns the page/size parameters, pages are zero based.
func pageQuery(page, size int) url.Values {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}
