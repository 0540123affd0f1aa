package models

import "time"

// RecordFilter scopes record source queries. Nil bounds are open.
type RecordFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	CourseID   string
	StudentIDs []string
}

// Pagination describes paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
