package todo

import (
	"context"

	"go.hackfix.me/todo/mediator"
)

// PaginatedList is a single page of a larger, ordered result set.
type PaginatedList[T any] struct {
	Items           []T  `json:"items"`
	PageNumber      int  `json:"pageNumber"`
	TotalPages      int  `json:"totalPages"`
	TotalCount      int  `json:"totalCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewPaginatedList returns the page pageNumber of a result set of totalCount
// items split into pages of pageSize items. A pageSize of 0 yields an empty
// page with no total pages.
func NewPaginatedList[T any](items []T, totalCount, pageNumber, pageSize int) (*PaginatedList[T], error) {
	if err := checkPage(pageNumber, pageSize); err != nil {
		return nil, err
	}
	if items == nil || pageSize == 0 {
		items = []T{}
	}

	totalPages := pageCount(totalCount, pageSize)

	return &PaginatedList[T]{
		Items:           items,
		PageNumber:      pageNumber,
		TotalPages:      totalPages,
		TotalCount:      totalCount,
		HasPreviousPage: pageNumber > 1,
		HasNextPage:     pageNumber < totalPages,
	}, nil
}

// PageSource is an ordered result set that can be read in pages.
type PageSource[T any] interface {
	Count(ctx context.Context) (int, error)
	Page(ctx context.Context, offset, limit int) ([]T, error)
}

// Paginate reads page pageNumber from src, and maps every item with mapFn.
func Paginate[T, D any](
	ctx context.Context, src PageSource[T], pageNumber, pageSize int, mapFn func(T) D,
) (*PaginatedList[D], error) {
	if err := checkPage(pageNumber, pageSize); err != nil {
		return nil, err
	}

	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	// Pages past the last one are empty and never read from src.
	var items []D
	if pageSize > 0 && pageNumber <= pageCount(count, pageSize) {
		page, err := src.Page(ctx, (pageNumber-1)*pageSize, pageSize)
		if err != nil {
			return nil, err
		}
		items = make([]D, 0, len(page))
		for _, v := range page {
			items = append(items, mapFn(v))
		}
	}

	return NewPaginatedList(items, count, pageNumber, pageSize)
}

// SlicePageSource is a PageSource backed by an in-memory slice.
type SlicePageSource[T any] []T

// Count implements PageSource.
func (s SlicePageSource[T]) Count(context.Context) (int, error) {
	return len(s), nil
}

// Page implements PageSource.
func (s SlicePageSource[T]) Page(_ context.Context, offset, limit int) ([]T, error) {
	if offset < 0 {
		return nil, mediator.ArgumentError{Name: "offset", Msg: "must be greater than or equal to 0"}
	}
	if limit < 0 {
		return nil, mediator.ArgumentError{Name: "limit", Msg: "must be greater than or equal to 0"}
	}
	if offset >= len(s) {
		return []T{}, nil
	}
	end := len(s)
	if limit < end-offset {
		end = offset + limit
	}

	return s[offset:end], nil
}

// pageCount returns the number of pages of size pageSize needed for count
// items, or 0 if pageSize is 0.
func pageCount(count, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	n := count / pageSize
	if count%pageSize != 0 {
		n++
	}

	return n
}

func checkPage(pageNumber, pageSize int) error {
	if pageNumber < 1 {
		return mediator.ArgumentError{
			Name: "pageNumber", Msg: "must be greater than or equal to 1",
		}
	}
	if pageSize < 0 {
		return mediator.ArgumentError{
			Name: "pageSize", Msg: "must be greater than or equal to 0",
		}
	}

	return nil
}
