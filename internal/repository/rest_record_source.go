package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/noah-isme/training-admin-api/internal/models"
)

// RESTRecordSource reads training records from a PostgREST compatible
// endpoint such as Supabase. Timestamps must be served as RFC3339 values.
type RESTRecordSource struct {
	client *resty.Client
}

// NewRESTRecordSource builds a source rooted at baseURL. apiKey is sent both as
// the apikey header and as a bearer token.
func NewRESTRecordSource(baseURL, apiKey string, timeout time.Duration) *RESTRecordSource {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if apiKey != "" {
		client.SetHeader("apikey", apiKey).SetAuthToken(apiKey)
	}
	return &RESTRecordSource{client: client}
}

type restQuery struct {
	values url.Values
}

func newRESTQuery() *restQuery {
	return &restQuery{values: url.Values{"select": []string{"*"}}}
}

func (q *restQuery) bound(column string, filter models.RecordFilter, withFrom bool) *restQuery {
	if withFrom && filter.DateFrom != nil {
		q.values.Add(column, "gte."+filter.DateFrom.UTC().Format(time.RFC3339Nano))
	}
	if filter.DateTo != nil {
		q.values.Add(column, "lte."+filter.DateTo.UTC().Format(time.RFC3339Nano))
	}
	return q
}

func (q *restQuery) scope(filter models.RecordFilter, courseColumn, studentColumn string) *restQuery {
	if courseColumn != "" && filter.CourseID != "" {
		q.values.Add(courseColumn, "eq."+filter.CourseID)
	}
	if studentColumn != "" && len(filter.StudentIDs) > 0 {
		q.values.Add(studentColumn, "in.("+strings.Join(filter.StudentIDs, ",")+")")
	}
	return q
}

func (q *restQuery) order(columns string) *restQuery {
	q.values.Set("order", columns)
	return q
}

func fetchTable[T any](ctx context.Context, client *resty.Client, table string, q *restQuery) ([]T, error) {
	var rows []T
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.values).
		SetResult(&rows).
		Get("/rest/v1/" + table)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d: %s", table, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// ListTrainees returns trainees registered on or before DateTo.
func (s *RESTRecordSource) ListTrainees(ctx context.Context, filter models.RecordFilter) ([]models.Trainee, error) {
	q := newRESTQuery().bound("created_at", filter, false).scope(filter, "", "id").order("created_at,id")
	return fetchTable[models.Trainee](ctx, s.client, "trainees", q)
}

// ListCourses returns courses started on or before DateTo.
func (s *RESTRecordSource) ListCourses(ctx context.Context, filter models.RecordFilter) ([]models.Course, error) {
	q := newRESTQuery().bound("start_date", filter, false).scope(filter, "id", "").order("start_date,id")
	return fetchTable[models.Course](ctx, s.client, "courses", q)
}

// ListEnrollments returns enrollments created on or before DateTo.
func (s *RESTRecordSource) ListEnrollments(ctx context.Context, filter models.RecordFilter) ([]models.Enrollment, error) {
	q := newRESTQuery().bound("enrolled_at", filter, false).scope(filter, "course_id", "student_id").order("enrolled_at,id")
	return fetchTable[models.Enrollment](ctx, s.client, "course_enrollments", q)
}

// ListAttendance returns attendance records within the filter window.
func (s *RESTRecordSource) ListAttendance(ctx context.Context, filter models.RecordFilter) ([]models.AttendanceRecord, error) {
	q := newRESTQuery().bound("date", filter, true).scope(filter, "course_id", "student_id").order("date")
	return fetchTable[models.AttendanceRecord](ctx, s.client, "attendance_records", q)
}

// ListExamSubmissions reads the flattened exam_submission_details view.
func (s *RESTRecordSource) ListExamSubmissions(ctx context.Context, filter models.RecordFilter) ([]models.ExamSubmission, error) {
	q := newRESTQuery().bound("submitted_at", filter, true).scope(filter, "course_id", "student_id").order("submitted_at")
	return fetchTable[models.ExamSubmission](ctx, s.client, "exam_submission_details", q)
}

// ListCertificates returns certificates issued within the filter window.
func (s *RESTRecordSource) ListCertificates(ctx context.Context, filter models.RecordFilter) ([]models.Certificate, error) {
	q := newRESTQuery().bound("issued_at", filter, true).scope(filter, "course_id", "student_id").order("issued_at")
	return fetchTable[models.Certificate](ctx, s.client, "certificates", q)
}
