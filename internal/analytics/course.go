package analytics

import (
	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/period"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

// CoursePerformances reports on every course in the snapshot, or only on
// courseID when it is set. Enrollments count when they exist by the end of r;
// attendance and exams count when they fall inside r.
func CoursePerformances(s Snapshot, courseID string, r period.Range, passThreshold float64) []models.CoursePerformance {
	if passThreshold <= 0 {
		passThreshold = DefaultPassThreshold
	}

	enrollments := make(map[string][]models.Enrollment)
	for _, e := range enrolledBy(s.Enrollments, r.End) {
		enrollments[e.CourseID] = append(enrollments[e.CourseID], e)
	}
	attendance := make(map[string][]models.AttendanceRecord)
	for _, rec := range attendanceWithin(s.Attendance, r) {
		attendance[rec.CourseID] = append(attendance[rec.CourseID], rec)
	}
	exams := make(map[string][]models.ExamSubmission)
	for _, ex := range s.Exams {
		if r.Contains(ex.SubmittedAt) {
			exams[ex.CourseID] = append(exams[ex.CourseID], ex)
		}
	}

	result := make([]models.CoursePerformance, 0, len(s.Courses))
	for _, course := range s.Courses {
		if courseID != "" && course.ID != courseID {
			continue
		}
		result = append(result, coursePerformance(course, enrollments[course.ID], attendance[course.ID], exams[course.ID], passThreshold))
	}
	return result
}

func coursePerformance(course models.Course, enrollments []models.Enrollment, attendance []models.AttendanceRecord, exams []models.ExamSubmission, passThreshold float64) models.CoursePerformance {
	total := len(enrollments)
	completed := countStatus(enrollments, models.EnrollmentStatusCompleted)
	dropped := countStatus(enrollments, models.EnrollmentStatusDropped)
	scores := finalScores(enrollments)

	var durations []float64
	for _, e := range enrollments {
		if e.Status != models.EnrollmentStatusCompleted || e.CompletionDate == nil || e.EnrolledAt.IsZero() {
			continue
		}
		durations = append(durations, wholeDays(e.EnrolledAt, *e.CompletionDate))
	}

	passed := 0
	for _, ex := range exams {
		if ex.Percentage() >= passThreshold {
			passed++
		}
	}

	return models.CoursePerformance{
		CourseID:              course.ID,
		CourseName:            course.Name,
		Category:              course.CategoryLabel(),
		TotalEnrollments:      total,
		CompletedCount:        completed,
		DroppedCount:          dropped,
		InProgressCount:       total - completed - dropped,
		CompletionRate:        stats.Rate(completed, total),
		DropoutRate:           stats.Rate(dropped, total),
		AverageScore:          stats.Mean(scores),
		MedianScore:           stats.Median(scores),
		ScoreDistribution:     stats.ScoreDistribution(scores),
		AverageCompletionDays: stats.Mean(durations),
		FastestCompletionDays: stats.Min(durations),
		SlowestCompletionDays: stats.Max(durations),
		AverageAttendance:     attendanceRate(attendance),
		PerfectAttendance:     perfectAttendance(attendance),
		ExamPassRate:          stats.Rate(passed, len(exams)),
	}
}

// perfectAttendance counts students whose every record is present.
func perfectAttendance(records []models.AttendanceRecord) int {
	perfect := make(map[string]bool)
	for _, rec := range records {
		ok, seen := perfect[rec.StudentID]
		if !seen {
			ok = true
		}
		perfect[rec.StudentID] = ok && rec.Status == models.AttendanceStatusPresent
	}
	n := 0
	for _, ok := range perfect {
		if ok {
			n++
		}
	}
	return n
}
