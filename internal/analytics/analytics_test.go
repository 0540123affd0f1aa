package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/period"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

func score(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2024, time.May, d, 10, 0, 0, 0, time.UTC)
}

var may = period.Range{
	Start: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, time.May, 31, 23, 59, 59, 0, time.UTC),
}

func TestCoursePerformanceScenario(t *testing.T) {
	snap := Snapshot{
		Courses: []models.Course{{ID: "c1", Name: "Safety"}},
		Enrollments: []models.Enrollment{
			{StudentID: "s1", CourseID: "c1", EnrolledAt: day(1), Status: models.EnrollmentStatusCompleted, FinalScore: score(80)},
			{StudentID: "s2", CourseID: "c1", EnrolledAt: day(2), Status: models.EnrollmentStatusActive},
			{StudentID: "s3", CourseID: "c1", EnrolledAt: day(3), Status: models.EnrollmentStatusCompleted, FinalScore: score(100)},
		},
	}

	perfs := CoursePerformances(snap, "", may, 0)
	require.Len(t, perfs, 1)
	perf := perfs[0]
	assert.InDelta(t, 66.67, perf.CompletionRate, 0.01)
	assert.Equal(t, 90.0, perf.AverageScore)
	assert.Equal(t, 90.0, perf.MedianScore)
	assert.Equal(t, stats.Distribution{APlus: 1, B: 1}, perf.ScoreDistribution)
	assert.Equal(t, 1, perf.InProgressCount)
	assert.Equal(t, models.UncategorizedCourse, perf.Category)
	assert.Zero(t, perf.AverageCompletionDays)
	assert.Zero(t, perf.FastestCompletionDays)
}

func TestCoursePerformanceCompletionTimesAndAttendance(t *testing.T) {
	done := func(d int) *time.Time { v := day(d); return &v }
	snap := Snapshot{
		Courses: []models.Course{{ID: "c1", Category: "Compliance"}, {ID: "c2"}},
		Enrollments: []models.Enrollment{
			{StudentID: "s1", CourseID: "c1", EnrolledAt: day(1), Status: models.EnrollmentStatusCompleted, CompletionDate: done(4)},
			{StudentID: "s2", CourseID: "c1", EnrolledAt: day(1), Status: models.EnrollmentStatusCompleted, CompletionDate: done(11)},
			{StudentID: "s3", CourseID: "c1", EnrolledAt: day(2), Status: models.EnrollmentStatusDropped},
		},
		Attendance: []models.AttendanceRecord{
			{StudentID: "s1", CourseID: "c1", Date: day(5), Status: models.AttendanceStatusPresent},
			{StudentID: "s1", CourseID: "c1", Date: day(6), Status: models.AttendanceStatusPresent},
			{StudentID: "s2", CourseID: "c1", Date: day(5), Status: models.AttendanceStatusLate},
			{StudentID: "s3", CourseID: "c1", Date: day(5), Status: models.AttendanceStatusAbsent},
			{StudentID: "s3", CourseID: "c1", Date: day(6), Status: models.AttendanceStatusExcused},
		},
		Exams: []models.ExamSubmission{
			{StudentID: "s1", CourseID: "c1", Score: 45, MaxScore: 50, SubmittedAt: day(7)},
			{StudentID: "s2", CourseID: "c1", Score: 20, MaxScore: 50, SubmittedAt: day(7)},
			{StudentID: "s3", CourseID: "c1", Score: 10, MaxScore: 0, SubmittedAt: day(7)},
		},
	}

	perfs := CoursePerformances(snap, "c1", may, 60)
	require.Len(t, perfs, 1)
	perf := perfs[0]
	assert.Equal(t, "Compliance", perf.Category)
	assert.Equal(t, 6.5, perf.AverageCompletionDays)
	assert.Equal(t, 3.0, perf.FastestCompletionDays)
	assert.Equal(t, 10.0, perf.SlowestCompletionDays)
	assert.InDelta(t, 33.33, perf.DropoutRate, 0.01)
	assert.Equal(t, 75.0, perf.AverageAttendance)
	assert.Equal(t, 1, perf.PerfectAttendance)
	assert.InDelta(t, 33.33, perf.ExamPassRate, 0.01)
}

func TestCoursePerformanceEmptyCourseDegradesToZero(t *testing.T) {
	perfs := CoursePerformances(Snapshot{Courses: []models.Course{{ID: "empty"}}}, "", may, 0)
	require.Len(t, perfs, 1)
	assert.Equal(t, models.CoursePerformance{CourseID: "empty", Category: models.UncategorizedCourse}, perfs[0])
}

func TestStudentPerformanceRankingIsStable(t *testing.T) {
	snap := Snapshot{
		Trainees: []models.Trainee{{ID: "a", Name: "A"}, {ID: "b", Name: "B", Department: "Ops"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"}},
		Enrollments: []models.Enrollment{
			{StudentID: "a", EnrolledAt: day(1), Status: models.EnrollmentStatusCompleted, FinalScore: score(70)},
			{StudentID: "b", EnrolledAt: day(1), Status: models.EnrollmentStatusCompleted, FinalScore: score(90)},
			{StudentID: "c", EnrolledAt: day(1), Status: models.EnrollmentStatusCompleted, FinalScore: score(70)},
			{StudentID: "c", EnrolledAt: day(2), Status: models.EnrollmentStatusActive},
		},
		Attendance: []models.AttendanceRecord{
			{StudentID: "d", Date: day(9), Status: models.AttendanceStatusAbsent},
			{StudentID: "d", Date: day(10), Status: models.AttendanceStatusPresent},
		},
	}

	perfs := StudentPerformances(snap, may)
	require.Len(t, perfs, 4)

	byID := make(map[string]models.StudentPerformance)
	for _, p := range perfs {
		byID[p.StudentID] = p
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, []string{perfs[0].StudentID, perfs[1].StudentID, perfs[2].StudentID, perfs[3].StudentID})
	assert.Equal(t, 1, byID["b"].Rank)
	assert.Equal(t, 2, byID["a"].Rank)
	assert.Equal(t, 3, byID["c"].Rank)
	assert.Equal(t, 4, byID["d"].Rank)
	assert.Equal(t, 100.0, byID["b"].Percentile)
	assert.Equal(t, 25.0, byID["d"].Percentile)

	assert.Equal(t, 1, byID["c"].InProgressCourses)
	assert.Equal(t, 70.0, byID["c"].HighestScore)
	assert.Equal(t, models.UnassignedDepartment, byID["a"].Department)
	assert.Equal(t, 50.0, byID["d"].AttendanceRate)
	assert.Equal(t, 1, byID["d"].TotalAbsences)
	require.NotNil(t, byID["d"].LastActivity)
	assert.True(t, byID["d"].LastActivity.Equal(day(10)))
}

func TestDepartmentStatisticsUsesSentinelForMissingDepartment(t *testing.T) {
	snap := Snapshot{
		Trainees: []models.Trainee{{ID: "a", IsActive: true}, {ID: "b", Department: "   "}, {ID: "c"}},
		Enrollments: []models.Enrollment{
			{StudentID: "a", Status: models.EnrollmentStatusCompleted, FinalScore: score(88)},
			{StudentID: "b", Status: models.EnrollmentStatusActive},
		},
		Certificates: []models.Certificate{{StudentID: "a"}},
	}

	depts := DepartmentStatistics(snap)
	require.Len(t, depts, 1)
	assert.Equal(t, models.UnassignedDepartment, depts[0].Department)
	assert.Equal(t, 3, depts[0].TotalStudents)
	assert.Equal(t, 1, depts[0].ActiveStudents)
	assert.Equal(t, 50.0, depts[0].CompletionRate)
	assert.Equal(t, 88.0, depts[0].AverageScore)
	assert.Equal(t, 1, depts[0].CertificateCount)
}

func TestDepartmentStatisticsOrdering(t *testing.T) {
	snap := Snapshot{Trainees: []models.Trainee{
		{ID: "1", Department: "HR"},
		{ID: "2", Department: "Ops"},
		{ID: "3", Department: "Ops"},
		{ID: "4", Department: "Sales"},
	}}
	depts := DepartmentStatistics(snap)
	require.Len(t, depts, 3)
	assert.Equal(t, []string{"Ops", "HR", "Sales"}, []string{depts[0].Department, depts[1].Department, depts[2].Department})
}

func TestTimeSeriesLength(t *testing.T) {
	anchor := day(20)
	for _, snap := range []Snapshot{{}, {Enrollments: []models.Enrollment{{EnrolledAt: day(20)}, {EnrolledAt: day(2)}}}} {
		points := TimeSeries(snap, 3, anchor, time.UTC)
		require.Len(t, points, 3)
		assert.Equal(t, time.Date(2024, time.May, 18, 0, 0, 0, 0, time.UTC), points[0].Date)
		assert.Equal(t, time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC), points[2].Date)
	}
	assert.Empty(t, TimeSeries(Snapshot{}, 0, anchor, time.UTC))
	assert.NotNil(t, TimeSeries(Snapshot{}, -1, anchor, time.UTC))
}

func TestTimeSeriesDailyCounts(t *testing.T) {
	completed := day(19)
	snap := Snapshot{
		Enrollments: []models.Enrollment{
			{StudentID: "a", EnrolledAt: day(19), Status: models.EnrollmentStatusCompleted, CompletionDate: &completed},
			{StudentID: "b", EnrolledAt: day(20), Status: models.EnrollmentStatusDropped, UpdatedAt: day(20)},
		},
		Attendance: []models.AttendanceRecord{
			{StudentID: "a", Date: day(20), Status: models.AttendanceStatusPresent},
			{StudentID: "b", Date: day(20), Status: models.AttendanceStatusAbsent},
		},
		Exams: []models.ExamSubmission{{StudentID: "c", Score: 8, MaxScore: 10, SubmittedAt: day(20)}},
	}

	points := TimeSeries(snap, 2, day(20), time.UTC)
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].NewEnrollments)
	assert.Equal(t, 1, points[0].Completions)
	assert.Equal(t, 1, points[1].NewEnrollments)
	assert.Equal(t, 1, points[1].Dropouts)
	assert.Equal(t, 2, points[1].ActiveUsers)
	assert.Equal(t, 80.0, points[1].AverageScore)
	assert.Equal(t, 50.0, points[1].AttendanceRate)
}

func TestTimeSeriesDayBoundaries(t *testing.T) {
	lastInstant := time.Date(2024, time.May, 19, 23, 59, 59, 999_999_999, time.UTC)
	nextMidnight := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	afterAnchor := time.Date(2024, time.May, 21, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Enrollments: []models.Enrollment{
			{EnrolledAt: lastInstant},
			{EnrolledAt: nextMidnight},
			{EnrolledAt: nextMidnight},
			{EnrolledAt: afterAnchor},
		},
		Exams: []models.ExamSubmission{
			{StudentID: "a", Score: 5, MaxScore: 10, SubmittedAt: time.Date(2024, time.May, 19, 23, 59, 59, 999_000_000, time.UTC)},
			{StudentID: "b", Score: 9, MaxScore: 10, SubmittedAt: nextMidnight},
		},
	}

	points := TimeSeries(snap, 2, day(20), time.UTC)
	require.Len(t, points, 2)
	assert.Equal(t, 1, points[0].NewEnrollments, "23:59:59.999 stays on its own day")
	assert.Equal(t, 50.0, points[0].AverageScore)
	assert.Equal(t, 2, points[1].NewEnrollments, "00:00 opens the next day")
	assert.Equal(t, 90.0, points[1].AverageScore)
	assert.Equal(t, 1, points[1].ActiveUsers)
}

func TestTimeSeriesSeqIsRestartable(t *testing.T) {
	snap := Snapshot{Enrollments: []models.Enrollment{{EnrolledAt: day(20)}}}
	seq := TimeSeriesSeq(snap, 5, day(20), time.UTC)

	var first, second []models.TimeSeriesPoint
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}
	assert.Equal(t, first, second)

	taken := 0
	for range seq {
		taken++
		if taken == 2 {
			break
		}
	}
	assert.Equal(t, 2, taken)
}

func TestTimeSeriesHonoursLocation(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	// 2024-05-19 20:00 UTC is already 05-20 in Seoul.
	snap := Snapshot{Enrollments: []models.Enrollment{{EnrolledAt: time.Date(2024, time.May, 19, 20, 0, 0, 0, time.UTC)}}}
	points := TimeSeries(snap, 1, time.Date(2024, time.May, 20, 12, 0, 0, 0, kst), kst)
	require.Len(t, points, 1)
	assert.Equal(t, 1, points[0].NewEnrollments)
}

func TestSummarizeGrowth(t *testing.T) {
	prev := period.Previous(may)
	mid := func(r period.Range) time.Time { return r.Start.Add(r.Duration() / 2) }
	courseEnd := may.Start.AddDate(0, 0, -10)

	snap := Snapshot{
		Trainees: []models.Trainee{
			{ID: "old", CreatedAt: mid(prev), IsActive: true},
			{ID: "new", CreatedAt: mid(may)},
		},
		Courses: []models.Course{
			{ID: "ended", StartDate: prev.Start.AddDate(0, 0, -10), EndDate: &courseEnd},
			{ID: "running", StartDate: prev.Start},
		},
		Enrollments: []models.Enrollment{
			{StudentID: "old", EnrolledAt: mid(prev), Status: models.EnrollmentStatusCompleted, FinalScore: score(80)},
			{StudentID: "old", EnrolledAt: mid(prev), Status: models.EnrollmentStatusActive},
			{StudentID: "new", EnrolledAt: mid(may), Status: models.EnrollmentStatusCompleted, FinalScore: score(90)},
		},
		Attendance: []models.AttendanceRecord{
			{StudentID: "new", Date: mid(may), Status: models.AttendanceStatusPresent},
			{StudentID: "new", Date: mid(may), Status: models.AttendanceStatusAbsent},
		},
		Certificates: []models.Certificate{{StudentID: "new", IssuedAt: mid(may)}, {StudentID: "old", IssuedAt: mid(prev)}},
	}

	summary := Summarize(snap, snap, may, prev)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 1, summary.ActiveStudents)
	assert.Equal(t, 2, summary.TotalCourses)
	assert.Equal(t, 1, summary.ActiveCourses)
	assert.Equal(t, 100.0, summary.CompletionRate)
	assert.Equal(t, 90.0, summary.AverageScore)
	assert.Equal(t, 50.0, summary.AverageAttendance)
	assert.Equal(t, 1, summary.CertificateCount)

	assert.Equal(t, 1, summary.PreviousTotalStudents)
	assert.Equal(t, 100.0, summary.StudentGrowth)
	assert.Equal(t, 2, summary.PreviousActiveCourses)
	assert.Equal(t, -50.0, summary.ActiveCourseGrowth)
	assert.Equal(t, 100.0, summary.CompletionRateGrowth)
	assert.InDelta(t, 12.5, summary.AverageScoreGrowth, 1e-9)
}

func TestSummarizeEmptySnapshot(t *testing.T) {
	summary := Summarize(Snapshot{}, Snapshot{}, may, period.Previous(may))
	assert.Zero(t, summary.TotalStudents)
	assert.Zero(t, summary.CompletionRate)
	assert.Zero(t, summary.StudentGrowth)
	assert.Zero(t, summary.AverageScoreGrowth)
}
