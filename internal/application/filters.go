package application

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	FilterAll       = "all"
	DefaultPageSize = 10
)

type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByName   SortKey = "name"
	SortByAge    SortKey = "age"
	SortByCity   SortKey = "city"
	SortByStatus SortKey = "status"
)

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

type Filters struct {
	Query  string
	Status string
	City   string
	Sort   SortKey
	Dir    SortDir
	Page   int
}

func DefaultFilters() Filters {
	return Filters{
		Status: FilterAll,
		City:   FilterAll,
		Sort:   SortByDate,
		Dir:    Desc,
		Page:   1,
	}
}

func ParseFiltersFromQuery(query url.Values) Filters {
	f := DefaultFilters()
	f.Query = query.Get("q")

	if st, ok := ParseStatus(query.Get("status")); ok {
		f.Status = string(st)
	}
	if city := strings.TrimSpace(query.Get("city")); city != "" {
		f.City = city
	}
	switch k := SortKey(query.Get("sort")); k {
	case SortByDate, SortByName, SortByAge, SortByCity, SortByStatus:
		f.Sort = k
	}
	switch d := SortDir(query.Get("dir")); d {
	case Asc, Desc:
		f.Dir = d
	}
	// a bad page number just means the first page
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		f.Page = p
	}
	return f
}

// Values renders the filters back to a query string, page excluded.
func (f Filters) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Status != "" && f.Status != FilterAll {
		v.Set("status", f.Status)
	}
	if f.City != "" && f.City != FilterAll {
		v.Set("city", f.City)
	}
	v.Set("sort", string(f.Sort))
	v.Set("dir", string(f.Dir))
	return v
}

// Toggle mirrors clicking a column header: same key flips direction, a new
// key starts ascending.
func (f Filters) Toggle(key SortKey) Filters {
	if f.Sort == key {
		if f.Dir == Asc {
			f.Dir = Desc
		} else {
			f.Dir = Asc
		}
		return f
	}
	f.Sort = key
	f.Dir = Asc
	return f
}
