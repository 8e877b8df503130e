package application

import (
	"sort"
	"strings"
)

// Apply derives the rendered view from the fetched collection: status
// filter, city filter, free text query, then a stable single key sort. The
// input slice is never reordered.
func Apply(list []Application, f Filters) []Application {
	out := make([]Application, 0, len(list))
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, a := range list {
		if f.Status != "" && f.Status != FilterAll && string(NormalizeStatus(string(a.Status))) != f.Status {
			continue
		}
		if f.City != "" && f.City != FilterAll && a.City != f.City {
			continue
		}
		if q != "" && !Matches(a, q) {
			continue
		}
		out = append(out, a)
	}
	Sort(out, f.Sort, f.Dir)
	return out
}

// Matches reports whether the lower cased query is contained in any of the
// searchable fields.
func Matches(a Application, q string) bool {
	fields := []string{a.FullName, a.Email, a.ContactNumber, a.PositionText(), a.City}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func Sort(list []Application, key SortKey, dir SortDir) {
	less := lessFunc(key)
	sort.SliceStable(list, func(i, j int) bool {
		if dir == Asc {
			return less(list[i], list[j])
		}
		return less(list[j], list[i])
	})
}

func lessFunc(key SortKey) func(a, b Application) bool {
	switch key {
	case SortByName:
		return func(a, b Application) bool { return a.FullName < b.FullName }
	case SortByAge:
		return func(a, b Application) bool { return a.Age < b.Age }
	case SortByCity:
		return func(a, b Application) bool { return a.City < b.City }
	case SortByStatus:
		return func(a, b Application) bool {
			return NormalizeStatus(string(a.Status)) < NormalizeStatus(string(b.Status))
		}
	}
	return func(a, b Application) bool { return a.CreatedAt.Before(b.CreatedAt) }
}

// ScopeToLocation keeps the applications an admin with a location scope may
// see. The "all" scope sees everything.
func ScopeToLocation(list []Application, location string) []Application {
	if location == "" || location == FilterAll {
		return list
	}
	out := make([]Application, 0, len(list))
	for _, a := range list {
		if a.City == location {
			out = append(out, a)
		}
	}
	return out
}

// Cities lists the distinct non empty cities in first seen order, prefixed
// with the "all" choice.
func Cities(list []Application) []string {
	seen := map[string]struct{}{}
	out := []string{FilterAll}
	for _, a := range list {
		if a.City == "" {
			continue
		}
		if _, ok := seen[a.City]; ok {
			continue
		}
		seen[a.City] = struct{}{}
		out = append(out, a.City)
	}
	return out
}

type Bucket struct {
	Category     Category
	Applications []Application
}

func (b Bucket) Count() int {
	return len(b.Applications)
}

// GroupByCategory splits the collection into one bucket per known category,
// in dashboard order. Applications with an unknown job title are dropped.
func GroupByCategory(list []Application) []Bucket {
	idx := make(map[Category]int, len(Categories))
	buckets := make([]Bucket, len(Categories))
	for i, c := range Categories {
		idx[c] = i
		buckets[i] = Bucket{Category: c, Applications: []Application{}}
	}
	for _, a := range list {
		i, ok := idx[a.JobTitle]
		if !ok {
			continue
		}
		buckets[i].Applications = append(buckets[i].Applications, a)
	}
	return buckets
}

func FilterCategory(list []Application, c Category) []Application {
	out := make([]Application, 0)
	for _, a := range list {
		if a.JobTitle == c {
			out = append(out, a)
		}
	}
	return out
}

// Recent returns at most n applications of an already filtered view.
func Recent(list []Application, n int) []Application {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

func FindByID(list []Application, id string) (Application, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return Application{}, false
}
