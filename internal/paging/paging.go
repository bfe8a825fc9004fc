// Package paging splits ordered sequences into fixed-size pages.
package paging

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 10

// Page is one slice of a sequence plus the numbers needed to navigate it.
type Page[T any] struct {
	Items     []T `json:"items"`
	Page      int `json:"page"`
	PageCount int `json:"page_count"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
}

// PageCount returns ceil(total/size).
func PageCount(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Clamp moves page into [1, pageCount]. With no pages it returns 1.
func Clamp(page, pageCount int) int {
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the 1-based page of items. Out-of-range pages are clamped,
// never rejected; an empty sequence yields no items and a page count of 0.
func Paginate[T any](items []T, size, page int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	count := PageCount(len(items), size)
	page = Clamp(page, count)

	p := Page[T]{
		Items:     []T{},
		Page:      page,
		PageCount: count,
		PageSize:  size,
		Total:     len(items),
	}
	if count == 0 {
		return p
	}

	lo := (page - 1) * size
	hi := lo + size
	if hi > len(items) {
		hi = len(items)
	}
	p.Items = items[lo:hi]
	return p
}

// State is a client's position in a paginated view together with the
// fingerprint of the sequence that position refers to.
type State struct {
	Page int    `json:"page"`
	Key  string `json:"key"`
}

// Sync returns the state to use for the sequence fingerprinted by key: the
// current page while the sequence is unchanged, page 1 once it changes. A
// state without a key has not seen any sequence yet, so its page is kept
// and left to Paginate to clamp.
func (s State) Sync(key string) State {
	if s.Page < 1 || (s.Key != "" && s.Key != key) {
		return State{Page: 1, Key: key}
	}
	return State{Page: s.Page, Key: key}
}

// Fingerprint hashes the parts describing a filtered sequence, such as the
// filter values and the identity of its records.
func Fingerprint(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(strconv.Itoa(len(p)))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(p)
	}
	return strconv.FormatUint(d.Sum64(), 36)
}
