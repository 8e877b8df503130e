package application

// Pagination describes one page of a list, either sliced locally or
// reported by the backend.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	Total       int
	PageSize    int
}

func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}

func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

func (p Pagination) Pages() []int {
	out := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		out = append(out, i)
	}
	return out
}

func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Paginate slices a filtered list. Pages past the end clamp to the last page.
func Paginate(list []Application, page, size int) ([]Application, Pagination) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(list)
	pages := TotalPages(total, size)
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	p := Pagination{CurrentPage: page, TotalPages: pages, Total: total, PageSize: size}
	start := (page - 1) * size
	if start >= total {
		return []Application{}, p
	}
	end := start + size
	if end > total {
		end = total
	}
	return list[start:end], p
}

func (pg Page) Pagination(size int) Pagination {
	return Pagination{
		CurrentPage: pg.CurrentPage,
		TotalPages:  pg.TotalPages,
		Total:       pg.TotalApplications,
		PageSize:    size,
	}
}
