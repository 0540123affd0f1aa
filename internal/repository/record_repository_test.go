package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-admin-api/internal/models"
)

func newRecordMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRecordRepositoryListEnrollmentsBoundsByEndOnly(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	score := 88.5
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "enrolled_at", "status", "final_score", "completion_date", "updated_at"}).
		AddRow("e1", "s1", "c1", from, "completed", score, to, to).
		AddRow("e2", "s2", "c1", from, "active", nil, nil, from)
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_enrollments WHERE enrolled_at <= $1 AND course_id = $2 ORDER BY enrolled_at, id")).
		WithArgs(to, "c1").
		WillReturnRows(rows)

	enrollments, err := repo.ListEnrollments(context.Background(), models.RecordFilter{DateFrom: &from, DateTo: &to, CourseID: "c1"})
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	require.NotNil(t, enrollments[0].FinalScore)
	assert.Equal(t, score, *enrollments[0].FinalScore)
	assert.Nil(t, enrollments[1].FinalScore)
	assert.Equal(t, models.EnrollmentStatusActive, enrollments[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryListAttendanceBoundsBothEnds(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, course_id, date, status FROM attendance_records WHERE date >= $1 AND date <= $2 AND student_id = ANY($3) ORDER BY date")).
		WithArgs(from, to, pq.Array([]string{"s1"})).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "course_id", "date", "status"}).AddRow("s1", "c1", from, "late"))

	records, err := repo.ListAttendance(context.Background(), models.RecordFilter{DateFrom: &from, DateTo: &to, StudentIDs: []string{"s1"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendanceStatusLate, records[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryListCoursesWithoutFilter(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses ORDER BY start_date, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "start_date", "end_date", "created_at"}).
			AddRow("c1", "Onboarding", "", time.Now(), nil, time.Now()))

	courses, err := repo.ListCourses(context.Background(), models.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Nil(t, courses[0].EndDate)
	assert.Equal(t, models.UncategorizedCourse, courses[0].CategoryLabel())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryWrapsQueryErrors(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery("FROM exam_submissions").WillReturnError(assert.AnError)

	_, err := repo.ListExamSubmissions(context.Background(), models.RecordFilter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "list exam submissions")
}
