package todo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"go.hackfix.me/todo/mediator"
)

func TestPaginate(t *testing.T) {
	t.Parallel()

	src := SlicePageSource[int]{1, 2, 3, 4, 5, 6, 7}
	double := func(v int) int { return v * 2 }

	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
		exp        *PaginatedList[int]
		expErr     error
	}{
		{
			name: "ok/first_page", pageNumber: 1, pageSize: 3,
			exp: &PaginatedList[int]{
				Items: []int{2, 4, 6}, PageNumber: 1, TotalPages: 3, TotalCount: 7,
				HasNextPage: true,
			},
		},
		{
			name: "ok/middle_page", pageNumber: 2, pageSize: 3,
			exp: &PaginatedList[int]{
				Items: []int{8, 10, 12}, PageNumber: 2, TotalPages: 3, TotalCount: 7,
				HasPreviousPage: true, HasNextPage: true,
			},
		},
		{
			name: "ok/last_partial_page", pageNumber: 3, pageSize: 3,
			exp: &PaginatedList[int]{
				Items: []int{14}, PageNumber: 3, TotalPages: 3, TotalCount: 7,
				HasPreviousPage: true,
			},
		},
		{
			name: "ok/past_last_page", pageNumber: 5, pageSize: 3,
			exp: &PaginatedList[int]{
				Items: []int{}, PageNumber: 5, TotalPages: 3, TotalCount: 7,
				HasPreviousPage: true,
			},
		},
		{
			name: "ok/huge_page_number", pageNumber: math.MaxInt/2 + 2, pageSize: 2,
			exp: &PaginatedList[int]{
				Items: []int{}, PageNumber: math.MaxInt/2 + 2, TotalPages: 4, TotalCount: 7,
				HasPreviousPage: true,
			},
		},
		{
			name: "ok/max_page_size", pageNumber: 1, pageSize: math.MaxInt,
			exp: &PaginatedList[int]{
				Items: []int{2, 4, 6, 8, 10, 12, 14}, PageNumber: 1, TotalPages: 1, TotalCount: 7,
			},
		},
		{
			name: "ok/zero_page_size", pageNumber: 1, pageSize: 0,
			exp: &PaginatedList[int]{
				Items: []int{}, PageNumber: 1, TotalPages: 0, TotalCount: 7,
			},
		},
		{
			name: "err/zero_page_number", pageNumber: 0, pageSize: 3,
			expErr: mediator.ArgumentError{
				Name: "pageNumber", Msg: "must be greater than or equal to 1",
			},
		},
		{
			name: "err/negative_page_size", pageNumber: 1, pageSize: -1,
			expErr: mediator.ArgumentError{
				Name: "pageSize", Msg: "must be greater than or equal to 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := Paginate(t.Context(), src, tt.pageNumber, tt.pageSize, double)
			if tt.expErr != nil {
				assert.Equal(t, tt.expErr, err)
				assert.Nil(t, page)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, page)
		})
	}
}

// pageRecorder fails the test if a page is requested past the end of src.
type pageRecorder struct {
	t   *testing.T
	src SlicePageSource[int]
}

func (r pageRecorder) Count(ctx context.Context) (int, error) { return r.src.Count(ctx) }

func (r pageRecorder) Page(ctx context.Context, offset, limit int) ([]int, error) {
	if offset < 0 || offset >= len(r.src) {
		r.t.Errorf("unexpected page request with offset %d", offset)
	}
	return r.src.Page(ctx, offset, limit)
}

func TestPaginatePastLastPage(t *testing.T) {
	t.Parallel()

	src := pageRecorder{t: t, src: SlicePageSource[int]{1, 2, 3}}
	page, err := Paginate(t.Context(), src, math.MaxInt/2+2, 2, func(v int) int { return v })
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNextPage)
}

func TestSlicePageSource(t *testing.T) {
	t.Parallel()

	src := SlicePageSource[int]{1, 2, 3}

	items, err := src.Page(t.Context(), 1, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, items)

	_, err = src.Page(t.Context(), -4, 2)
	assert.Equal(t, mediator.ArgumentError{Name: "offset", Msg: "must be greater than or equal to 0"}, err)

	_, err = src.Page(t.Context(), 0, -1)
	assert.Equal(t, mediator.ArgumentError{Name: "limit", Msg: "must be greater than or equal to 0"}, err)
}

type failingSource struct{ err error }

func (s failingSource) Count(context.Context) (int, error) { return 0, s.err }

func (s failingSource) Page(context.Context, int, int) ([]int, error) { return nil, s.err }

func TestPaginateSourceError(t *testing.T) {
	t.Parallel()

	errSrc := errors.New("boom")
	_, err := Paginate(t.Context(), failingSource{err: errSrc}, 1, 10,
		func(v int) int { return v })
	assert.ErrorIs(t, err, errSrc)
}

func TestPaginateProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		src := SlicePageSource[int](rapid.SliceOfN(rapid.Int(), 0, 100).Draw(t, "items"))
		pageSize := rapid.IntRange(1, 20).Draw(t, "pageSize")
		pageNumber := rapid.IntRange(1, 12).Draw(t, "pageNumber")

		page, err := Paginate(context.Background(), src, pageNumber, pageSize,
			func(v int) int { return v })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.TotalCount != len(src) {
			t.Fatalf("total count %d != %d", page.TotalCount, len(src))
		}
		if page.TotalPages*pageSize < len(src) || (page.TotalPages > 0 && (page.TotalPages-1)*pageSize >= len(src)) {
			t.Fatalf("total pages %d doesn't cover %d items of size %d",
				page.TotalPages, len(src), pageSize)
		}
		if len(page.Items) > pageSize {
			t.Fatalf("page has %d items, more than %d", len(page.Items), pageSize)
		}
		if page.HasPreviousPage != (pageNumber > 1) {
			t.Fatalf("HasPreviousPage = %v for page %d", page.HasPreviousPage, pageNumber)
		}
		if page.HasNextPage != (pageNumber < page.TotalPages) {
			t.Fatalf("HasNextPage = %v for page %d of %d",
				page.HasNextPage, pageNumber, page.TotalPages)
		}

		offset := (pageNumber - 1) * pageSize
		for i, v := range page.Items {
			if src[offset+i] != v {
				t.Fatalf("item %d = %d, expected %d", i, v, src[offset+i])
			}
		}
	})
}
