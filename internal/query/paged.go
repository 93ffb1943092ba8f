package query

// PagedResult is the stable list envelope: one page of items plus enough
// information to derive the page count and neighbor flags.
type PagedResult[T any] struct {
	Items      []T
	PageNumber int
	PageSize   int
	TotalCount int
}

// NewPagedResult builds the envelope for one page.
func NewPagedResult[T any](items []T, pageNumber, pageSize, totalCount int) *PagedResult[T] {
	return &PagedResult[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}

// TotalPages is ceil(TotalCount / PageSize).
func (p *PagedResult[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasPreviousPage reports whether a page precedes the current one.
func (p *PagedResult[T]) HasPreviousPage() bool {
	return p.PageNumber > 1
}

// HasNextPage reports whether a page follows the current one.
func (p *PagedResult[T]) HasNextPage() bool {
	return p.PageNumber < p.TotalPages()
}
