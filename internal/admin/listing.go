package admin

// Page is one window over a client-side filtered list. Editors bulk-fetch
// their whole collection once and page through it in memory.
type Page[T any] struct {
	Items      []T
	Number     int // 1-based
	TotalItems int
	TotalPages int
}

func paginate[T any](items []T, number, size int) Page[T] {
	if size < 1 {
		size = 1
	}
	totalPages := (len(items) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	page := Page[T]{
		Number:     number,
		TotalItems: len(items),
		TotalPages: totalPages,
	}
	page.Items = append(page.Items, items[start:end]...)
	return page
}
