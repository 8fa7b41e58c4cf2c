package response

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// Paginate slices an in-memory list. Page is 1-based; out-of-range pages
// return an empty slice with the pagination still describing the list.
// From and To are 1-based item positions, both 0 when the page is empty.
func Paginate[T any](items []T, page, pageSize int) ([]T, *Pagination) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int64(totalPages),
		TotalItems: int64(total),
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, p
	}
	end := min(start+pageSize, total)

	p.From = start + 1
	p.To = end
	p.HasMore = end < total
	return items[start:end], p
}
