package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"

	"github.com/noah-isme/training-admin-api/internal/dto"
	"github.com/noah-isme/training-admin-api/internal/service"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/period"
)

const dateLayout = "2006-01-02"

func bindAnalyticsQuery(c *gin.Context, loc *time.Location) (service.AnalyticsRequest, error) {
	var query dto.AnalyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return service.AnalyticsRequest{}, appErrors.Clone(appErrors.ErrValidation, "invalid analytics query")
	}
	return analyticsRequest(query, loc)
}

// analyticsRequest converts query parameters. Supplying both dates without a
// range selects a custom period.
func analyticsRequest(query dto.AnalyticsQuery, loc *time.Location) (service.AnalyticsRequest, error) {
	if query.Range == "" && query.StartDate != "" && query.EndDate != "" {
		query.Range = string(period.Custom)
	}
	sel, err := period.ParseSelector(query.Range)
	if err != nil {
		return service.AnalyticsRequest{}, err
	}
	req := service.AnalyticsRequest{Selector: sel, CourseID: query.CourseID, Days: query.Days}
	if sel != period.Custom {
		return req, nil
	}

	var explicit period.Range
	if query.StartDate != "" {
		if explicit.Start, err = parseQueryTime(query.StartDate, loc, false); err != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, "invalid start_date parameter")
		}
	}
	if query.EndDate != "" {
		if explicit.End, err = parseQueryTime(query.EndDate, loc, true); err != nil {
			return req, appErrors.Clone(appErrors.ErrValidation, "invalid end_date parameter")
		}
	}
	req.Explicit = &explicit
	return req, nil
}

// parseQueryTime reads a bare date as the start of that day, or its last
// instant when endOfDay is set.
func parseQueryTime(raw string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return now.With(t).EndOfDay(), nil
	}
	return t, nil
}
