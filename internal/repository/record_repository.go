package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/training-admin-api/internal/models"
)

// RecordRepository reads the raw training records analytics aggregate over.
//
// DateTo bounds every table. DateFrom bounds only event tables (attendance,
// exam submissions, certificates); enrollments and trainees are returned as of
// DateTo so cohort figures can be computed.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository instantiates the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const traineeColumns = `id, name, email, phone, external_id, COALESCE(department, '') AS department,
        COALESCE(position, '') AS position, hire_date, is_active,
        COALESCE(emergency_name, '') AS emergency_name, COALESCE(emergency_relationship, '') AS emergency_relationship,
        COALESCE(emergency_phone, '') AS emergency_phone, created_at, updated_at`

type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(format string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *whereBuilder) bound(column string, filter models.RecordFilter, withFrom bool) {
	if withFrom && filter.DateFrom != nil {
		w.add(column+" >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		w.add(column+" <= $%d", *filter.DateTo)
	}
}

func (w *whereBuilder) scope(filter models.RecordFilter, courseColumn, studentColumn string) {
	if courseColumn != "" && filter.CourseID != "" {
		w.add(courseColumn+" = $%d", filter.CourseID)
	}
	if studentColumn != "" && len(filter.StudentIDs) > 0 {
		w.add(studentColumn+" = ANY($%d)", pq.Array(filter.StudentIDs))
	}
}

// ListTrainees returns trainees registered on or before DateTo.
func (r *RecordRepository) ListTrainees(ctx context.Context, filter models.RecordFilter) ([]models.Trainee, error) {
	var w whereBuilder
	w.bound("created_at", filter, false)
	w.scope(filter, "", "id")
	query := "SELECT " + traineeColumns + " FROM trainees" + w.String() + " ORDER BY created_at, id"
	var trainees []models.Trainee
	if err := r.db.SelectContext(ctx, &trainees, query, w.args...); err != nil {
		return nil, fmt.Errorf("list trainees: %w", err)
	}
	return trainees, nil
}

// ListCourses returns courses started on or before DateTo.
func (r *RecordRepository) ListCourses(ctx context.Context, filter models.RecordFilter) ([]models.Course, error) {
	var w whereBuilder
	w.bound("start_date", filter, false)
	w.scope(filter, "id", "")
	query := "SELECT id, name, COALESCE(category, '') AS category, start_date, end_date, created_at FROM courses" + w.String() + " ORDER BY start_date, id"
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, w.args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListEnrollments returns enrollments created on or before DateTo.
func (r *RecordRepository) ListEnrollments(ctx context.Context, filter models.RecordFilter) ([]models.Enrollment, error) {
	var w whereBuilder
	w.bound("enrolled_at", filter, false)
	w.scope(filter, "course_id", "student_id")
	query := `SELECT id, student_id, course_id, enrolled_at, status, final_score, completion_date, updated_at
        FROM course_enrollments` + w.String() + " ORDER BY enrolled_at, id"
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, w.args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListAttendance returns attendance records dated within the filter window.
func (r *RecordRepository) ListAttendance(ctx context.Context, filter models.RecordFilter) ([]models.AttendanceRecord, error) {
	var w whereBuilder
	w.bound("date", filter, true)
	w.scope(filter, "course_id", "student_id")
	query := "SELECT student_id, course_id, date, status FROM attendance_records" + w.String() + " ORDER BY date"
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, w.args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ListExamSubmissions returns submissions within the filter window.
func (r *RecordRepository) ListExamSubmissions(ctx context.Context, filter models.RecordFilter) ([]models.ExamSubmission, error) {
	var w whereBuilder
	w.bound("s.submitted_at", filter, true)
	w.scope(filter, "e.course_id", "s.student_id")
	query := `SELECT s.student_id, s.exam_id, e.course_id, s.score, e.max_score, s.submitted_at
        FROM exam_submissions s JOIN exams e ON e.id = s.exam_id` + w.String() + " ORDER BY s.submitted_at"
	var exams []models.ExamSubmission
	if err := r.db.SelectContext(ctx, &exams, query, w.args...); err != nil {
		return nil, fmt.Errorf("list exam submissions: %w", err)
	}
	return exams, nil
}

// ListCertificates returns certificates issued within the filter window.
func (r *RecordRepository) ListCertificates(ctx context.Context, filter models.RecordFilter) ([]models.Certificate, error) {
	var w whereBuilder
	w.bound("issued_at", filter, true)
	w.scope(filter, "course_id", "student_id")
	query := "SELECT id, student_id, course_id, issued_at FROM certificates" + w.String() + " ORDER BY issued_at"
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, w.args...); err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}
