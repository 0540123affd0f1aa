package dto

import "github.com/noah-isme/training-admin-api/internal/models"

// AnalyticsQuery captures the shared analytics query string. Dates accept
// YYYY-MM-DD or RFC3339.
type AnalyticsQuery struct {
	Range     string `form:"range"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	CourseID  string `form:"course_id"`
	Days      int    `form:"days"`
}

// PageQuery captures optional paging on ranked listings. A zero page size
// returns the full listing.
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// CacheInvalidateRequest captures POST /analytics/cache/invalidate. An empty
// entity drops every analytics entry.
type CacheInvalidateRequest struct {
	Entity string `json:"entity"`
}

// ExportQuery captures GET /reports/export.
type ExportQuery struct {
	AnalyticsQuery
	Type   string `form:"type" binding:"required,oneof=summary courses students departments timeseries"`
	Format string `form:"format" binding:"omitempty,oneof=csv html pdf"`
}

// DuplicateDecisionsRequest captures POST /imports/trainees/duplicates.
type DuplicateDecisionsRequest struct {
	Decisions []models.DuplicateDecision `json:"decisions" binding:"required,min=1,dive"`
}
