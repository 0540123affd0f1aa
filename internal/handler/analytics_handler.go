package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/training-admin-api/internal/dto"
	"github.com/noah-isme/training-admin-api/internal/middleware"
	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/internal/service"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/response"
)

type analyticsService interface {
	Summary(ctx context.Context, req service.AnalyticsRequest) (*models.AnalyticsSummary, bool, error)
	Courses(ctx context.Context, req service.AnalyticsRequest) ([]models.CoursePerformance, bool, error)
	Students(ctx context.Context, req service.AnalyticsRequest) ([]models.StudentPerformance, bool, error)
	Departments(ctx context.Context) ([]models.DepartmentStats, bool, error)
	TimeSeries(ctx context.Context, req service.AnalyticsRequest) ([]models.TimeSeriesPoint, bool, error)
	SystemMetrics() models.AnalyticsSystemMetrics
	Invalidate(ctx context.Context, entity string) error
}

// AnalyticsHandler exposes dashboard-ready training analytics.
type AnalyticsHandler struct {
	analytics analyticsService
	location  *time.Location
}

// NewAnalyticsHandler constructs the analytics handler. loc interprets bare
// dates in query parameters.
func NewAnalyticsHandler(analytics analyticsService, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{analytics: analytics, location: loc}
}

// Summary godoc
// @Summary Training summary with growth against the previous period
// @Tags Analytics
// @Produce json
// @Param range query string false "today|week|month|quarter|year|custom"
// @Param start_date query string false "Custom range start"
// @Param end_date query string false "Custom range end"
// @Param course_id query string false "Restrict to one course"
// @Success 200 {object} response.Envelope
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := bindAnalyticsQuery(c, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.analytics.Summary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeAnalytics(c, start, summary, cacheHit)
}

// Courses godoc
// @Summary Per-course performance
// @Tags Analytics
// @Produce json
// @Param range query string false "today|week|month|quarter|year|custom"
// @Param course_id query string false "Restrict to one course"
// @Success 200 {object} response.Envelope
// @Router /analytics/courses [get]
func (h *AnalyticsHandler) Courses(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := bindAnalyticsQuery(c, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	courses, cacheHit, err := h.analytics.Courses(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeAnalytics(c, start, courses, cacheHit)
}

// Students godoc
// @Summary Per-trainee performance and ranking
// @Tags Analytics
// @Produce json
// @Param range query string false "today|week|month|quarter|year|custom"
// @Param page query int false "1-based page"
// @Param page_size query int false "rows per page, 0 for all"
// @Success 200 {object} response.Envelope
// @Router /analytics/students [get]
func (h *AnalyticsHandler) Students(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := bindAnalyticsQuery(c, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	var page dto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid page parameters"))
		return
	}
	start := time.Now()
	students, cacheHit, err := h.analytics.Students(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	visible, pagination := paginate(students, page)
	writeAnalyticsPage(c, start, visible, pagination, cacheHit)
}

// Departments godoc
// @Summary Department statistics over all recorded history
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/departments [get]
func (h *AnalyticsHandler) Departments(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	start := time.Now()
	departments, cacheHit, err := h.analytics.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	writeAnalytics(c, start, departments, cacheHit)
}

// TimeSeries godoc
// @Summary Daily activity series ending on the period's last day
// @Tags Analytics
// @Produce json
// @Param range query string false "today|week|month|quarter|year|custom"
// @Param days query int false "Number of days"
// @Success 200 {object} response.Envelope
// @Router /analytics/timeseries [get]
func (h *AnalyticsHandler) TimeSeries(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req, err := bindAnalyticsQuery(c, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	points, cacheHit, err := h.analytics.TimeSeries(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeAnalytics(c, start, points, cacheHit)
}

// System returns instrumentation metrics snapshots.
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	writeAnalytics(c, time.Now(), h.analytics.SystemMetrics(), false)
}

// InvalidateCache godoc
// @Summary Drop cached analytics
// @Tags Analytics
// @Accept json
// @Param payload body dto.CacheInvalidateRequest false "Entity to drop"
// @Success 204
// @Router /analytics/cache/invalidate [post]
func (h *AnalyticsHandler) InvalidateCache(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.CacheInvalidateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid invalidation payload"))
			return
		}
	}
	if err := h.analytics.Invalidate(c.Request.Context(), req.Entity); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func writeAnalytics(c *gin.Context, start time.Time, data interface{}, cacheHit bool) {
	writeAnalyticsPage(c, start, data, nil, cacheHit)
}

func writeAnalyticsPage(c *gin.Context, start time.Time, data interface{}, pagination *models.Pagination, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, pagination, meta)
}

// paginate slices a ranked listing. Pages past the end yield an empty slice.
func paginate[T any](items []T, q dto.PageQuery) ([]T, *models.Pagination) {
	if q.PageSize <= 0 {
		return items, nil
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	from := len(items)
	if pages := (len(items) + q.PageSize - 1) / q.PageSize; page-1 < pages {
		from = (page - 1) * q.PageSize
	}
	to := min(from+q.PageSize, len(items))
	return items[from:to], &models.Pagination{Page: page, PageSize: q.PageSize, TotalCount: len(items)}
}
