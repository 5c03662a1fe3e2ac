package handler

import (
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// parsePagination reads limit/offset query params with the shared defaults
// and caps.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= maxPageLimit {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// parseSort whitelists the sort column and order direction.
func parseSort(r *http.Request, allowed ...string) (sort, order string) {
	sort = "created_at"
	if raw := r.URL.Query().Get("sort"); raw != "" {
		for _, a := range allowed {
			if raw == a {
				sort = raw
				break
			}
		}
	}
	order = "desc"
	if r.URL.Query().Get("order") == "asc" {
		order = "asc"
	}
	return sort, order
}
