package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/training-admin-api/internal/dto"
	"github.com/noah-isme/training-admin-api/internal/service"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
}

// ReportHandler renders analytics as downloadable documents.
type ReportHandler struct {
	exports  exportService
	location *time.Location
}

// NewReportHandler constructs a report handler.
func NewReportHandler(exports exportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{exports: exports, location: loc}
}

// Export godoc
// @Summary Download an analytics report
// @Tags Reports
// @Produce text/csv,text/html,application/pdf
// @Param type query string true "summary|courses|students|departments|timeseries"
// @Param format query string false "csv|html|pdf"
// @Param range query string false "today|week|month|quarter|year|custom"
// @Success 200 {file} file
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type must be one of summary, courses, students, departments, timeseries and format one of csv, html, pdf"))
		return
	}
	analyticsReq, err := analyticsRequest(query.AnalyticsQuery, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Export(c.Request.Context(), service.ExportRequest{
		Type:      service.ReportType(query.Type),
		Format:    service.ReportFormat(query.Format),
		Analytics: analyticsReq,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}
