package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/training-admin-api/internal/models"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
)

type analyticsStub struct {
	err error
}

func (a analyticsStub) Summary(context.Context, AnalyticsRequest) (*models.AnalyticsSummary, bool, error) {
	if a.err != nil {
		return nil, false, a.err
	}
	return &models.AnalyticsSummary{
		PeriodStart:    time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		TotalStudents:  12,
		CompletionRate: 66.666,
		StudentGrowth:  -25,
	}, false, nil
}

func (a analyticsStub) Courses(context.Context, AnalyticsRequest) ([]models.CoursePerformance, bool, error) {
	return []models.CoursePerformance{{CourseName: "Safety", Category: "Compliance", TotalEnrollments: 3, CompletionRate: 66.67}}, false, a.err
}

func (a analyticsStub) Students(context.Context, AnalyticsRequest) ([]models.StudentPerformance, bool, error) {
	return []models.StudentPerformance{{StudentName: "Kim", Rank: 1, AverageScore: 96}}, false, a.err
}

func (a analyticsStub) Departments(context.Context) ([]models.DepartmentStats, bool, error) {
	return []models.DepartmentStats{{Department: models.UnassignedDepartment, TotalStudents: 2}}, false, a.err
}

func (a analyticsStub) TimeSeries(context.Context, AnalyticsRequest) ([]models.TimeSeriesPoint, bool, error) {
	return []models.TimeSeriesPoint{{Date: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), NewEnrollments: 4}}, false, a.err
}

func newTestExportService(stub analyticsStub) *ExportService {
	svc := NewExportService(stub, "", zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceSummaryCSV(t *testing.T) {
	result, err := newTestExportService(analyticsStub{}).Export(context.Background(), ExportRequest{Type: ReportTypeSummary})
	require.NoError(t, err)
	assert.Equal(t, "summary_20240515_090000.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)

	body := string(bytes.TrimPrefix(result.Payload, []byte{0xEF, 0xBB, 0xBF}))
	assert.True(t, strings.HasPrefix(body, "Metric,Value,Growth (%)\n"))
	assert.Contains(t, body, "Total Students,12,-25.00")
	assert.Contains(t, body, "Completion Rate (%),66.67,0.00")
}

func TestExportServiceEveryTypeAndFormat(t *testing.T) {
	svc := newTestExportService(analyticsStub{})
	types := []ReportType{ReportTypeSummary, ReportTypeCourses, ReportTypeStudents, ReportTypeDepartments, ReportTypeTimeSeries}
	for _, typ := range types {
		for _, format := range []ReportFormat{ReportFormatCSV, ReportFormatHTML, ReportFormatPDF} {
			result, err := svc.Export(context.Background(), ExportRequest{Type: typ, Format: format})
			require.NoError(t, err, "%s/%s", typ, format)
			assert.NotEmpty(t, result.Payload)
			assert.True(t, strings.HasSuffix(result.Filename, "."+string(format)))
		}
	}
}

func TestExportServiceStudentGrade(t *testing.T) {
	result, err := newTestExportService(analyticsStub{}).Export(context.Background(), ExportRequest{Type: ReportTypeStudents, Format: ReportFormatHTML})
	require.NoError(t, err)
	assert.Contains(t, string(result.Payload), "<td>A+</td>")
}

func TestExportServiceRejectsUnknownInput(t *testing.T) {
	svc := newTestExportService(analyticsStub{})

	_, err := svc.Export(context.Background(), ExportRequest{Type: "grades"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Export(context.Background(), ExportRequest{Type: ReportTypeSummary, Format: "docx"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportServicePropagatesAnalyticsErrors(t *testing.T) {
	_, err := newTestExportService(analyticsStub{err: assert.AnError}).Export(context.Background(), ExportRequest{Type: ReportTypeCourses})
	assert.ErrorIs(t, err, assert.AnError)
}
