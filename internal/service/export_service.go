package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/training-admin-api/internal/models"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/export"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

// ReportType names a dataset that can be exported.
type ReportType string

const (
	ReportTypeSummary     ReportType = "summary"
	ReportTypeCourses     ReportType = "courses"
	ReportTypeStudents    ReportType = "students"
	ReportTypeDepartments ReportType = "departments"
	ReportTypeTimeSeries  ReportType = "timeseries"
)

// ReportFormat names an export encoding.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatHTML ReportFormat = "html"
	ReportFormatPDF  ReportFormat = "pdf"
)

type analyticsProvider interface {
	Summary(ctx context.Context, req AnalyticsRequest) (*models.AnalyticsSummary, bool, error)
	Courses(ctx context.Context, req AnalyticsRequest) ([]models.CoursePerformance, bool, error)
	Students(ctx context.Context, req AnalyticsRequest) ([]models.StudentPerformance, bool, error)
	Departments(ctx context.Context) ([]models.DepartmentStats, bool, error)
	TimeSeries(ctx context.Context, req AnalyticsRequest) ([]models.TimeSeriesPoint, bool, error)
}

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportRequest selects what to export and how.
type ExportRequest struct {
	Type      ReportType
	Format    ReportFormat
	Analytics AnalyticsRequest
}

// ExportResult is a rendered report ready to be written out.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService turns analytics output into downloadable reports.
type ExportService struct {
	analytics     analyticsProvider
	renderers     map[ReportFormat]renderer
	defaultFormat ReportFormat
	logger        *zap.Logger
	now           func() time.Time
}

// NewExportService constructs an ExportService with the CSV, HTML and PDF renderers.
func NewExportService(analytics analyticsProvider, defaultFormat string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	format := ReportFormat(strings.ToLower(defaultFormat))
	if format == "" {
		format = ReportFormatCSV
	}
	return &ExportService{
		analytics: analytics,
		renderers: map[ReportFormat]renderer{
			ReportFormatCSV:  export.NewCSVExporter(),
			ReportFormatHTML: export.NewHTMLExporter(),
			ReportFormatPDF:  export.NewPDFExporter(),
		},
		defaultFormat: format,
		logger:        logger,
		now:           time.Now,
	}
}

// Export builds the dataset for req.Type and renders it in req.Format.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	format := req.Format
	if format == "" {
		format = s.defaultFormat
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	dataset, title, err := s.buildDataset(ctx, req)
	if err != nil {
		return nil, err
	}
	payload, err := r.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render report")
	}

	filename := fmt.Sprintf("%s_%s.%s", req.Type, s.now().UTC().Format("20060102_150405"), format)
	s.logger.Info("report exported",
		zap.String("type", string(req.Type)),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportResult{Filename: filename, ContentType: r.ContentType(), Payload: payload}, nil
}

func (s *ExportService) buildDataset(ctx context.Context, req ExportRequest) (export.Dataset, string, error) {
	switch req.Type {
	case ReportTypeSummary:
		return s.buildSummaryDataset(ctx, req.Analytics)
	case ReportTypeCourses:
		return s.buildCourseDataset(ctx, req.Analytics)
	case ReportTypeStudents:
		return s.buildStudentDataset(ctx, req.Analytics)
	case ReportTypeDepartments:
		return s.buildDepartmentDataset(ctx)
	case ReportTypeTimeSeries:
		return s.buildTimeSeriesDataset(ctx, req.Analytics)
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report type %q", req.Type))
	}
}

func (s *ExportService) buildSummaryDataset(ctx context.Context, req AnalyticsRequest) (export.Dataset, string, error) {
	summary, _, err := s.analytics.Summary(ctx, req)
	if err != nil {
		return export.Dataset{}, "", err
	}
	metric := func(name, value, growth string) map[string]string {
		return map[string]string{"Metric": name, "Value": value, "Growth (%)": growth}
	}
	rows := []map[string]string{
		metric("Total Students", strconv.Itoa(summary.TotalStudents), formatDecimal(summary.StudentGrowth)),
		metric("Active Students", strconv.Itoa(summary.ActiveStudents), ""),
		metric("Total Courses", strconv.Itoa(summary.TotalCourses), ""),
		metric("Active Courses", strconv.Itoa(summary.ActiveCourses), formatDecimal(summary.ActiveCourseGrowth)),
		metric("Completion Rate (%)", formatDecimal(summary.CompletionRate), formatDecimal(summary.CompletionRateGrowth)),
		metric("Average Score", formatDecimal(summary.AverageScore), formatDecimal(summary.AverageScoreGrowth)),
		metric("Average Attendance (%)", formatDecimal(summary.AverageAttendance), ""),
		metric("Certificates Issued", strconv.Itoa(summary.CertificateCount), ""),
	}
	title := fmt.Sprintf("Training Summary %s - %s", formatDay(summary.PeriodStart), formatDay(summary.PeriodEnd))
	return export.Dataset{Headers: []string{"Metric", "Value", "Growth (%)"}, Rows: rows}, title, nil
}

func (s *ExportService) buildCourseDataset(ctx context.Context, req AnalyticsRequest) (export.Dataset, string, error) {
	courses, _, err := s.analytics.Courses(ctx, req)
	if err != nil {
		return export.Dataset{}, "", err
	}
	headers := []string{"Course", "Category", "Enrolled", "Completed", "Completion (%)", "Dropout (%)", "Average", "Median", "Attendance (%)", "Exam Pass (%)", "Avg Days"}
	rows := make([]map[string]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, map[string]string{
			"Course":         c.CourseName,
			"Category":       c.Category,
			"Enrolled":       strconv.Itoa(c.TotalEnrollments),
			"Completed":      strconv.Itoa(c.CompletedCount),
			"Completion (%)": formatDecimal(c.CompletionRate),
			"Dropout (%)":    formatDecimal(c.DropoutRate),
			"Average":        formatDecimal(c.AverageScore),
			"Median":         formatDecimal(c.MedianScore),
			"Attendance (%)": formatDecimal(c.AverageAttendance),
			"Exam Pass (%)":  formatDecimal(c.ExamPassRate),
			"Avg Days":       formatDecimal(c.AverageCompletionDays),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Course Performance", nil
}

func (s *ExportService) buildStudentDataset(ctx context.Context, req AnalyticsRequest) (export.Dataset, string, error) {
	students, _, err := s.analytics.Students(ctx, req)
	if err != nil {
		return export.Dataset{}, "", err
	}
	headers := []string{"Rank", "Name", "Department", "Enrolled", "Completed", "Average", "Highest", "Lowest", "Attendance (%)", "Grade"}
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, map[string]string{
			"Rank":           strconv.Itoa(st.Rank),
			"Name":           st.StudentName,
			"Department":     st.Department,
			"Enrolled":       strconv.Itoa(st.EnrolledCourses),
			"Completed":      strconv.Itoa(st.CompletedCourses),
			"Average":        formatDecimal(st.AverageScore),
			"Highest":        formatDecimal(st.HighestScore),
			"Lowest":         formatDecimal(st.LowestScore),
			"Attendance (%)": formatDecimal(st.AttendanceRate),
			"Grade":          string(stats.GradeOf(st.AverageScore)),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Student Performance", nil
}

func (s *ExportService) buildDepartmentDataset(ctx context.Context) (export.Dataset, string, error) {
	depts, _, err := s.analytics.Departments(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	headers := []string{"Department", "Students", "Active", "Enrollments", "Completion (%)", "Average", "Attendance (%)", "Certificates"}
	rows := make([]map[string]string, 0, len(depts))
	for _, d := range depts {
		rows = append(rows, map[string]string{
			"Department":     d.Department,
			"Students":       strconv.Itoa(d.TotalStudents),
			"Active":         strconv.Itoa(d.ActiveStudents),
			"Enrollments":    strconv.Itoa(d.TotalEnrollments),
			"Completion (%)": formatDecimal(d.CompletionRate),
			"Average":        formatDecimal(d.AverageScore),
			"Attendance (%)": formatDecimal(d.AverageAttendance),
			"Certificates":   strconv.Itoa(d.CertificateCount),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Department Statistics", nil
}

func (s *ExportService) buildTimeSeriesDataset(ctx context.Context, req AnalyticsRequest) (export.Dataset, string, error) {
	points, _, err := s.analytics.TimeSeries(ctx, req)
	if err != nil {
		return export.Dataset{}, "", err
	}
	headers := []string{"Date", "New Enrollments", "Completions", "Dropouts", "Active Users", "Average Score", "Attendance (%)"}
	rows := make([]map[string]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, map[string]string{
			"Date":            formatDay(p.Date),
			"New Enrollments": strconv.Itoa(p.NewEnrollments),
			"Completions":     strconv.Itoa(p.Completions),
			"Dropouts":        strconv.Itoa(p.Dropouts),
			"Active Users":    strconv.Itoa(p.ActiveUsers),
			"Average Score":   formatDecimal(p.AverageScore),
			"Attendance (%)":  formatDecimal(p.AttendanceRate),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}, "Daily Activity", nil
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
