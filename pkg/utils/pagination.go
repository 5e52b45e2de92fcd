package utils

import (
	"net/http"
	"strconv"
	"strings"
)

// GetPaginationParams reads page and limit from the query string,
// falling back to page 1 with 10 items.
func GetPaginationParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

// Whitelists cover the group listing, the one query that sorts and
// filters straight from the URL.
var validSortFields = map[string]bool{
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

var validSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// AddSorting appends ORDER BY clauses for sortby=field:order params.
// Unknown fields and orders are dropped rather than interpolated.
func AddSorting(r *http.Request, query string) string {
	sortParams := r.URL.Query()["sortby"]
	if len(sortParams) == 0 {
		return query
	}

	clauses := []string{}
	for _, param := range sortParams {
		parts := strings.Split(param, ":")
		if len(parts) != 2 {
			continue
		}
		field, order := parts[0], strings.ToLower(parts[1])
		if !validSortFields[field] || !validSortOrders[order] {
			continue
		}
		clauses = append(clauses, field+" "+strings.ToUpper(order))
	}

	if len(clauses) > 0 {
		query += " ORDER BY " + strings.Join(clauses, ", ")
	}
	return query
}

var validFilterFields = map[string]string{
	"name":       "name",
	"group_type": "group_type",
}

// AddFilters appends AND conditions for whitelisted query params.
func AddFilters(r *http.Request, query string, args []interface{}) (string, []interface{}) {
	params := r.URL.Query()
	for param, column := range validFilterFields {
		if value := params.Get(param); value != "" {
			query += " AND " + column + " = ?"
			args = append(args, value)
		}
	}
	return query, args
}
