package ports

const (
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 100_000
)

// PageRequest is a 1-based page window.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the page to [1, MaxPage] and the limit to [1, MaxLimit].
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Skip is the number of documents before the page.
func (p PageRequest) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// TotalPages returns ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total / int64(limit))
	if total%int64(limit) > 0 {
		pages++
	}
	return pages
}
