package reservations

import (
	"strings"

	"podgate/api/internal/models"
)

// Page sizes the dashboards offer. Anything else clamps to the default.
var PageSizes = []int{10, 20, 50}

const DefaultPageSize = 10

// Filter returns the reservations where at least one of user name, phone,
// AWB number or pod name contains the query, case-insensitively. An empty
// query returns the input unchanged.
func Filter(items []models.Reservation, query string) []models.Reservation {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	out := make([]models.Reservation, 0, len(items))
	for _, r := range items {
		if strings.Contains(strings.ToLower(r.UserName), query) ||
			strings.Contains(r.UserPhone, query) ||
			strings.Contains(strings.ToLower(r.AWBNumber), query) ||
			strings.Contains(strings.ToLower(r.PodName), query) {
			out = append(out, r)
		}
	}
	return out
}

// ClampPageSize snaps per-page to one of the offered sizes.
func ClampPageSize(perPage int) int {
	for _, size := range PageSizes {
		if perPage == size {
			return perPage
		}
	}
	return DefaultPageSize
}

type PageResult struct {
	Items      []models.Reservation `json:"items"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"per_page"`
	TotalItems int                  `json:"total_items"`
	TotalPages int                  `json:"total_pages"`
}

// Paginate slices the already-filtered list. Pages are 1-based; a page past
// the end yields the last non-empty page, and page <= 0 resets to 1.
func Paginate(items []models.Reservation, page, perPage int) PageResult {
	perPage = ClampPageSize(perPage)
	totalItems := len(items)
	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page <= 0 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return PageResult{
		Items:      items[start:end],
		Page:       page,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
