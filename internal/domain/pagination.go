package domain

// Window sizes shared by every tenant listing: the comics index served on
// index domains and the editor's tenant list.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams selects one window of a title-ordered tenant listing.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds a window from the optional ?page= and ?limit=
// query values. Missing or non-positive values take the defaults and the
// limit never exceeds MaxPageSize.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxPageSize)
	}
	return p
}

// Offset is the number of rows before this window.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// HasMore reports whether rows remain after this window out of total.
func (p PaginationParams) HasMore(total int64) bool {
	return int64(p.Offset()+p.Limit) < total
}
