// Package pagination splits ordered collections into numbered pages.
package pagination

import (
	"context"
	"strconv"
	"strings"
)

// DefaultPerPage is used when a caller passes a non-positive page size.
const DefaultPerPage = 10

// Ellipsis marks a gap in ElidedRange.
const Ellipsis = 0

// Page is one page of a collection. Numbers are 1-based.
type Page[T any] struct {
	Items    []T
	Number   int
	PerPage  int
	Count    int64
	NumPages int
}

// ParseNumber resolves the raw ?page= value. Anything that is not a positive
// integer becomes 1; the upper clamp happens once the count is known.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages returns the page count for count items. An empty collection still
// has one page.
func NumPages(count int64, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// Clamp moves number into [1, numPages].
func Clamp(number, numPages int) int {
	if number < 1 {
		return 1
	}
	if number > numPages {
		return numPages
	}
	return number
}

// Fetcher loads one window of an ordered collection.
type Fetcher[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// Paginate counts the collection, clamps the requested page and fetches it.
func Paginate[T any](ctx context.Context, raw string, perPage int, count func(context.Context) (int64, error), fetch Fetcher[T]) (*Page[T], error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	total, err := count(ctx)
	if err != nil {
		return nil, err
	}

	numPages := NumPages(total, perPage)
	number := Clamp(ParseNumber(raw), numPages)

	items := []T{}
	if total > 0 {
		items, err = fetch(ctx, (number-1)*perPage, perPage)
		if err != nil {
			return nil, err
		}
	}

	return &Page[T]{
		Items:    items,
		Number:   number,
		PerPage:  perPage,
		Count:    total,
		NumPages: numPages,
	}, nil
}

// FromSlice pages an in-memory slice.
func FromSlice[T any](all []T, raw string, perPage int) *Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	numPages := NumPages(int64(len(all)), perPage)
	number := Clamp(ParseNumber(raw), numPages)

	start := (number - 1) * perPage
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	if start > end {
		start = end
	}
	return &Page[T]{
		Items:    all[start:end],
		Number:   number,
		PerPage:  perPage,
		Count:    int64(len(all)),
		NumPages: numPages,
	}
}

func (p *Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

// NextNumber is the next page number, or the last page when there is none.
func (p *Page[T]) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.NumPages
}

// PreviousNumber is the previous page number, or 1 when there is none.
func (p *Page[T]) PreviousNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return 1
}

// StartIndex is the 1-based index of the first item on the page, 0 when empty.
func (p *Page[T]) StartIndex() int64 {
	if p.Count == 0 {
		return 0
	}
	return int64(p.PerPage)*int64(p.Number-1) + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (p *Page[T]) EndIndex() int64 {
	if p.Number == p.NumPages {
		return p.Count
	}
	return int64(p.Number) * int64(p.PerPage)
}

// PageRange lists every page number.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// ElidedRange lists page numbers around the current page, the first and last
// two pages, and Ellipsis where numbers were skipped.
func (p *Page[T]) ElidedRange() []int {
	const onEachSide, onEnds = 3, 2

	if p.NumPages <= (onEachSide+onEnds)*2 {
		return p.PageRange()
	}

	var out []int
	if p.Number > 1+onEachSide+onEnds+1 {
		for i := 1; i <= onEnds; i++ {
			out = append(out, i)
		}
		out = append(out, Ellipsis)
		for i := p.Number - onEachSide; i <= p.Number; i++ {
			out = append(out, i)
		}
	} else {
		for i := 1; i <= p.Number; i++ {
			out = append(out, i)
		}
	}

	if p.Number < p.NumPages-onEachSide-onEnds-1 {
		for i := p.Number + 1; i <= p.Number+onEachSide; i++ {
			out = append(out, i)
		}
		out = append(out, Ellipsis)
		for i := p.NumPages - onEnds + 1; i <= p.NumPages; i++ {
			out = append(out, i)
		}
	} else {
		for i := p.Number + 1; i <= p.NumPages; i++ {
			out = append(out, i)
		}
	}
	return out
}
