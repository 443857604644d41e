package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	windowSize = 5
)

// Pager describes one page of a listing and the page links around it.
type Pager struct {
	TotalItems  int   `json:"total_items"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	Pages       []int `json:"-"`
}

func NewPager(totalItems, currentPage, pageSize int) Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	if currentPage < 1 {
		currentPage = 1
	}
	if totalPages > 0 && currentPage > totalPages {
		currentPage = totalPages
	}

	return Pager{
		TotalItems:  totalItems,
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		Pages:       window(currentPage, totalPages),
	}
}

// Request reads page and page_size from the query string. The total is not
// known yet, so TotalItems and TotalPages stay zero until WithTotal.
func Request(r *http.Request) Pager {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return Pager{CurrentPage: page, PageSize: size}
}

func (p Pager) WithTotal(totalItems int) Pager {
	return NewPager(totalItems, p.CurrentPage, p.PageSize)
}

func (p Pager) Offset() int {
	if p.CurrentPage < 1 {
		return 0
	}
	return (p.CurrentPage - 1) * p.PageSize
}

func (p Pager) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// window centres up to five page numbers on current.
func window(current, total int) []int {
	start := current - windowSize/2
	end := current + windowSize/2

	if start <= 0 {
		end -= start - 1
		start = 1
	}
	if end > total {
		end = total
		if end > windowSize {
			start = end - windowSize + 1
		}
	}

	var pages []int
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
